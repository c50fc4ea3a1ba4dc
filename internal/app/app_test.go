package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalendar/internal/calendar"
	"kalendar/internal/reminder"
)

const demoYAML = `
logging:
  level: error
  console: false
observers:
  console: true
  email:
    enabled: true
    to: friends@example.com
reminders:
  strategy: default
seed:
  events:
    - { date: 15/11/2024, description: Встреча с друзьями }
  reminders:
    - { date: 10/11/2024, message: Купить подарки }
    - { date: 15/11/2024, message: Поздравить с днем рождения }
`

// lockedBuffer is read by the test while app goroutines may write to it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := strings.TrimRight(b.buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kalendar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCalendarSession(t *testing.T) {
	out := &lockedBuffer{}
	a, err := New(writeConfig(t, demoYAML), WithOutput(out))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Stop(context.Background()) })

	assert.Equal(t, []string{
		"Уведомление в консоли: Купить подарки (10/11/2024)",
		"Отправка email: Купить подарки (10/11/2024)",
		"Уведомление в консоли: Поздравить с днем рождения (15/11/2024)",
		"Отправка email: Поздравить с днем рождения (15/11/2024)",
	}, out.Lines())

	cal := a.Calendar()
	day := calendar.NewDate(15, 11, 2024)
	events := cal.EventsByDate(day)
	require.Len(t, events, 1)
	assert.Equal(t, "Встреча с друзьями", events[0].Description)
	due := cal.RemindersByDate(day)
	require.Len(t, due, 1)
	assert.Equal(t, "Поздравить с днем рождения", due[0].Message)

	out.Reset()
	a.Scheduler().Run(cal.Reminders())
	st, err := reminder.ByName(reminder.NamePrioritized, a.out)
	require.NoError(t, err)
	a.Scheduler().SetStrategy(st)
	a.Scheduler().Run(cal.Reminders())
	assert.Equal(t, []string{
		"Напоминание: Купить подарки (10/11/2024)",
		"Напоминание: Поздравить с днем рождения (15/11/2024)",
		"[Важно] Напоминание: Купить подарки (10/11/2024)",
		"[Важно] Напоминание: Поздравить с днем рождения (15/11/2024)",
	}, out.Lines())

	out.Reset()
	require.NotNil(t, a.Email())
	cal.RemoveObserver(a.Email())
	cal.AddReminder(calendar.Reminder{Date: calendar.NewDate(16, 11, 2024), Message: "Сходить в кино"})
	assert.Equal(t, []string{"Уведомление в консоли: Сходить в кино (16/11/2024)"}, out.Lines())
	assert.EqualValues(t, 2, a.Email().Sent())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(writeConfig(t, "reminders:\n  strategy: loudest\n"))
	assert.ErrorContains(t, err, "reminders.strategy")

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBusObserverReachesSubscribers(t *testing.T) {
	body := "logging: {level: error, console: false}\nobservers: {console: false, bus: true}\n"
	a, err := New(writeConfig(t, body), WithOutput(&lockedBuffer{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Stop(context.Background()) })

	ch, unsub := a.Bus().Subscribe(1)
	defer unsub()
	a.Calendar().AddReminder(calendar.Reminder{Date: calendar.NewDate(1, 1, 2025), Message: "x"})

	select {
	case e := <-ch:
		assert.Equal(t, "calendar.reminder_added", e.Type)
	case <-time.After(time.Second):
		t.Fatal("no bus event")
	}
}

func TestReloadSwitchesStrategy(t *testing.T) {
	path := writeConfig(t, "logging: {level: error, console: false}\nreminders: {strategy: default}\n")
	a, err := New(path, WithOutput(&lockedBuffer{}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))
	assert.Error(t, a.Start(ctx))
	t.Cleanup(func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		assert.NoError(t, a.Stop(stopCtx))
	})

	updated := []byte("logging: {level: error, console: false}\nreminders: {strategy: prioritized, schedule: '@daily'}\n")
	assert.Eventually(t, func() bool {
		// Rewrite until the watcher is up.
		_ = os.WriteFile(path, updated, 0o600)
		_, ok := a.Scheduler().Strategy().(reminder.Prioritized)
		return ok && a.Runner().Running()
	}, 5*time.Second, 300*time.Millisecond)
	assert.NoError(t, a.Err())
}
