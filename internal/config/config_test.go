package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
logging:
  level: debug
  console: false
observers:
  console: true
  email:
    enabled: true
    to: ops@example.com
    rate_per_sec: 5
reminders:
  strategy: prioritized
  schedule: "@daily"
seed:
  events:
    - date: 15/11/2024
      description: Встреча с друзьями
  reminders:
    - { date: 10/11/2024, message: Купить подарки }
`

const sampleJSON = `{
  "logging": {"level": "debug", "console": false},
  "observers": {"console": true, "email": {"enabled": true, "to": "ops@example.com", "rate_per_sec": 5}},
  "reminders": {"strategy": "prioritized", "schedule": "@daily"},
  "seed": {
    "events": [{"date": "15/11/2024", "description": "Встреча с друзьями"}],
    "reminders": [{"date": "10/11/2024", "message": "Купить подарки"}]
  }
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseYAMLAndJSONAgree(t *testing.T) {
	fromYAML, err := NewManager(writeFile(t, "kalendar.yaml", sampleYAML)).Parse()
	require.NoError(t, err)
	fromJSON, err := NewManager(writeFile(t, "kalendar.json", sampleJSON)).Parse()
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, "prioritized", fromYAML.Reminders.Strategy)
	assert.Equal(t, 5, fromYAML.Observers.Email.RatePerSec)
	require.Len(t, fromYAML.Seed.Reminders, 1)
	assert.Equal(t, "10/11/2024", fromYAML.Seed.Reminders[0].Date)
	assert.NoError(t, Validate(fromYAML))
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := NewManager(writeFile(t, "empty.yml", "")).Parse()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)

	cfg, err = NewManager(writeFile(t, "partial.json", `{"reminders":{"schedule":"@hourly"}}`)).Parse()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Reminders.Strategy)
	assert.Equal(t, "@hourly", cfg.Reminders.Schedule)
	assert.True(t, cfg.Observers.Console)
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name, file, body string
	}{
		{name: "unknown field", file: "c.json", body: `{"telegram": {}}`},
		{name: "unknown nested yaml field", file: "c.yaml", body: "reminders:\n  priority: high\n"},
		{name: "trailing data", file: "c.json", body: `{} {}`},
		{name: "broken yaml", file: "c.yaml", body: "logging: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(writeFile(t, tt.file, tt.body)).Parse()
			assert.Error(t, err)
		})
	}

	_, err := NewManager(filepath.Join(t.TempDir(), "missing.json")).Parse()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(nil))

	cfg := Default()
	require.NoError(t, Validate(&cfg))

	cfg.Logging.Level = "loud"
	cfg.Observers.Email.RatePerSec = -1
	cfg.Reminders.Strategy = "urgent"
	cfg.Reminders.Schedule = "whenever"
	cfg.Seed.Events = []SeedEvent{{Date: "15-11-2024"}}
	cfg.Seed.Reminders = []SeedReminder{{Date: "40/13/2024"}, {Date: "x"}}

	err := Validate(&cfg)
	require.Error(t, err)
	for _, want := range []string{
		"logging.level",
		"observers.email.rate_per_sec",
		"reminders.strategy",
		"reminders.schedule",
		"seed.events[0].date",
		"seed.reminders[1].date",
	} {
		assert.ErrorContains(t, err, want)
	}
	// Out-of-range dates are accepted; only the shape is checked.
	assert.NotContains(t, err.Error(), "seed.reminders[0]")
}

func TestLoadRunsValidator(t *testing.T) {
	m := NewManager(writeFile(t, "c.json", `{"reminders":{"strategy":"nope"}}`))
	m.SetValidator(func(_ context.Context, cfg *Config) error { return Validate(cfg) })

	_, err := m.Load()
	assert.ErrorContains(t, err, "reminders.strategy")
	assert.Nil(t, m.Get())
}

func TestPublishKeepsNewest(t *testing.T) {
	m := NewManager("unused.json")
	ch := m.Subscribe(1)

	first, second := Default(), Default()
	second.Reminders.Strategy = "prioritized"
	m.publish(&first)
	m.publish(&second)

	got := <-ch
	assert.Equal(t, "prioritized", got.Reminders.Strategy)

	m.Unsubscribe(ch)
	m.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestReloadSkipsUnchangedAndInvalid(t *testing.T) {
	path := writeFile(t, "c.json", `{"reminders":{"strategy":"default"}}`)
	m := NewManager(path)
	m.SetValidator(func(_ context.Context, cfg *Config) error { return Validate(cfg) })
	_, err := m.Load()
	require.NoError(t, err)
	ch := m.Subscribe(4)

	ctx := context.Background()
	assert.False(t, m.reload(ctx), "unchanged content must not publish")

	require.NoError(t, os.WriteFile(path, []byte(`{"reminders":{"strategy":"bogus"}}`), 0o600))
	assert.False(t, m.reload(ctx), "invalid content must not publish")
	assert.Equal(t, "default", m.Get().Reminders.Strategy)

	require.NoError(t, os.WriteFile(path, []byte(`{"reminders":{"strategy":"prioritized"}}`), 0o600))
	assert.True(t, m.reload(ctx))
	assert.Equal(t, "prioritized", (<-ch).Reminders.Strategy)
}

func TestWatchPublishesFileChanges(t *testing.T) {
	path := writeFile(t, "kalendar.yaml", "reminders:\n  strategy: default\n")
	m := NewManager(path)
	_, err := m.Load()
	require.NoError(t, err)
	ch := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Keep rewriting until the watcher is up and picks the change.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
	for {
		require.NoError(t, os.WriteFile(path, []byte("reminders:\n  strategy: prioritized\n"), 0o600))
		select {
		case cfg := <-ch:
			assert.Equal(t, "prioritized", cfg.Reminders.Strategy)
			return
		case <-deadline:
			t.Fatal("config change was not published")
		case <-tick.C:
		}
	}
}

func TestBackoffIsCapped(t *testing.T) {
	bo := newBackoff()
	var last time.Duration
	for i := 0; i < 10; i++ {
		last = bo.next()
	}
	assert.LessOrEqual(t, last, restartBackoffMax+restartBackoffMax/2)
	bo.reset()
	assert.Less(t, bo.next(), 2*restartBackoffBase)
}
