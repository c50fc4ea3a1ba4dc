package app

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"kalendar/internal/calendar"
	"kalendar/internal/config"
	"kalendar/internal/eventbus"
	"kalendar/internal/notifier"
	"kalendar/internal/reminder"
	logx "kalendar/pkg/logx"
)

func mapLoggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapRunnerConfig(cfg *config.Config) reminder.RunnerConfig {
	return reminder.RunnerConfig{Schedule: cfg.Reminders.Schedule}
}

// observers holds what buildObservers registered, so callers can remove
// individual observers later.
type observers struct {
	console *notifier.ConsoleObserver
	email   *notifier.EmailObserver
	bus     *notifier.BusObserver
}

func buildObservers(cfg *config.Config, cal *calendar.Calendar, bus eventbus.Bus, out io.Writer, log logx.Logger) observers {
	var obs observers
	if cfg.Observers.Console {
		obs.console = notifier.NewConsole(out, log.With(logx.String("comp", "notifier.console")))
		cal.AddObserver(obs.console)
	}
	if cfg.Observers.Email.Enabled {
		obs.email = notifier.NewEmail(notifier.EmailConfig{
			To:         cfg.Observers.Email.To,
			RatePerSec: cfg.Observers.Email.RatePerSec,
		}, out, log.With(logx.String("comp", "notifier.email")))
		cal.AddObserver(obs.email)
	}
	if cfg.Observers.Bus {
		obs.bus = notifier.NewBus(bus)
		cal.AddObserver(obs.bus)
	}
	return obs
}

// seedCalendar loads config seed data. Dates were checked by config.Validate;
// a bad one here is still reported rather than skipped.
func seedCalendar(cfg *config.Config, cal *calendar.Calendar) error {
	for i, e := range cfg.Seed.Events {
		d, err := calendar.ParseDate(e.Date)
		if err != nil {
			return fmt.Errorf("seed.events[%d]: %w", i, err)
		}
		cal.AddEvent(calendar.Event{Date: d, Description: e.Description})
	}
	for i, r := range cfg.Seed.Reminders {
		d, err := calendar.ParseDate(r.Date)
		if err != nil {
			return fmt.Errorf("seed.reminders[%d]: %w", i, err)
		}
		cal.AddReminder(calendar.Reminder{Date: d, Message: r.Message})
	}
	return nil
}

// restartOnly lists the config sections that only take effect on restart.
func restartOnly(prev, next *config.Config) []string {
	if prev == nil || next == nil {
		return nil
	}
	var out []string
	if !reflect.DeepEqual(prev.Observers, next.Observers) {
		out = append(out, "observers")
	}
	if !reflect.DeepEqual(prev.Seed, next.Seed) {
		out = append(out, "seed")
	}
	return out
}

// syncWriter lets observers and strategies share one output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
