package config

// Config is the on-disk configuration (JSON, or YAML by file extension).
//
// Example (YAML):
//
//	logging:
//	  level: info
//	  console: true
//	observers:
//	  console: true
//	  email: { enabled: true, to: ops@example.com, rate_per_sec: 5 }
//	reminders:
//	  strategy: prioritized
//	  schedule: "0 9 * * *"
//	seed:
//	  reminders:
//	    - { date: 15/11/2024, message: "Поздравить с днем рождения" }
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Observers ObserversConfig `json:"observers"`
	Reminders RemindersConfig `json:"reminders"`
	Seed      SeedConfig      `json:"seed,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// ObserversConfig selects which observers the calendar notifies.
// Changes apply on restart.
type ObserversConfig struct {
	Console bool        `json:"console"`
	Email   EmailConfig `json:"email"`
	// Bus forwards reminders to the in-process event bus (logged at debug).
	Bus bool `json:"bus,omitempty"`
}

type EmailConfig struct {
	Enabled    bool   `json:"enabled"`
	To         string `json:"to,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"` // 0 = unthrottled
}

// RemindersConfig controls replay. Both fields hot-reload.
type RemindersConfig struct {
	// Strategy is "default" or "prioritized".
	Strategy string `json:"strategy"`
	// Schedule is a cron spec ("0 9 * * *", "@daily"); empty disables replay.
	Schedule string `json:"schedule,omitempty"`
}

// SeedConfig is loaded into the calendar once at startup. Dates are D/M/YYYY.
type SeedConfig struct {
	Events    []SeedEvent    `json:"events,omitempty"`
	Reminders []SeedReminder `json:"reminders,omitempty"`
}

type SeedEvent struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

type SeedReminder struct {
	Date    string `json:"date"`
	Message string `json:"message"`
}

// Default returns the config used when fields are omitted.
func Default() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info", Console: true},
		Observers: ObserversConfig{Console: true},
		Reminders: RemindersConfig{Strategy: "default"},
	}
}
