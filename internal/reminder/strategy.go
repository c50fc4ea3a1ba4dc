package reminder

import (
	"fmt"
	"io"
	"strings"

	"kalendar/internal/calendar"
	logx "kalendar/pkg/logx"
)

const (
	NameDefault     = "default"
	NamePrioritized = "prioritized"
)

// Strategy renders a single reminder. Calls are independent of each other.
type Strategy interface {
	Remind(r calendar.Reminder)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(r calendar.Reminder)

func (f StrategyFunc) Remind(r calendar.Reminder) { f(r) }

// Default prints reminders plainly.
type Default struct {
	W io.Writer
}

func (s Default) Remind(r calendar.Reminder) {
	_, _ = fmt.Fprintf(writerOr(s.W), "Напоминание: %s\n", r)
}

// Prioritized prints reminders marked as important.
type Prioritized struct {
	W io.Writer
}

func (s Prioritized) Remind(r calendar.Reminder) {
	_, _ = fmt.Fprintf(writerOr(s.W), "[Важно] Напоминание: %s\n", r)
}

// ByName resolves a built-in strategy writing to w (stdout if nil).
// An empty name means NameDefault.
func ByName(name string, w io.Writer) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameDefault:
		return Default{W: w}, nil
	case NamePrioritized:
		return Prioritized{W: w}, nil
	default:
		return nil, fmt.Errorf("unknown reminder strategy %q (want %q or %q)", name, NameDefault, NamePrioritized)
	}
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return logx.Stdout()
	}
	return w
}
