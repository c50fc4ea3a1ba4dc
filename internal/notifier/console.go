package notifier

import (
	"fmt"
	"io"
	"sync"

	"kalendar/internal/calendar"
	logx "kalendar/pkg/logx"
)

const (
	consolePrefix = "Уведомление в консоли"
	emailPrefix   = "Отправка email"
)

// lineWriter serializes whole lines onto a shared writer.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newLineWriter(w io.Writer) *lineWriter {
	if w == nil {
		w = logx.Stdout()
	}
	return &lineWriter{w: w}
}

func (lw *lineWriter) writeLine(prefix string, r calendar.Reminder) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := fmt.Fprintf(lw.w, "%s: %s\n", prefix, r)
	return err
}

// ConsoleObserver prints every new reminder.
type ConsoleObserver struct {
	out *lineWriter
	log logx.Logger
}

func NewConsole(w io.Writer, log logx.Logger) *ConsoleObserver {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &ConsoleObserver{out: newLineWriter(w), log: log}
}

func (o *ConsoleObserver) Update(r calendar.Reminder) {
	if err := o.out.writeLine(consolePrefix, r); err != nil {
		o.log.Warn("console notify failed", logx.Err(err))
	}
}

func (o *ConsoleObserver) String() string { return "console" }
