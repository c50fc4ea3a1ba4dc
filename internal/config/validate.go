package config

import (
	"errors"
	"fmt"

	"kalendar/internal/calendar"
	"kalendar/internal/reminder"
	logx "kalendar/pkg/logx"
)

// Validate checks everything that can be checked without side effects.
// All problems are reported together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error
	if !logx.ValidLevel(cfg.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
	}
	if cfg.Observers.Email.RatePerSec < 0 {
		errs = append(errs, fmt.Errorf("observers.email.rate_per_sec: must be >= 0"))
	}
	if _, err := reminder.ByName(cfg.Reminders.Strategy, nil); err != nil {
		errs = append(errs, fmt.Errorf("reminders.strategy: %w", err))
	}
	if err := reminder.ParseSchedule(cfg.Reminders.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("reminders.schedule: %w", err))
	}
	for i, e := range cfg.Seed.Events {
		if _, err := calendar.ParseDate(e.Date); err != nil {
			errs = append(errs, fmt.Errorf("seed.events[%d].date: %w", i, err))
		}
	}
	for i, r := range cfg.Seed.Reminders {
		if _, err := calendar.ParseDate(r.Date); err != nil {
			errs = append(errs, fmt.Errorf("seed.reminders[%d].date: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
