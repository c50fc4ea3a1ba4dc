package notifier

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalendar/internal/calendar"
	"kalendar/internal/eventbus"
	logx "kalendar/pkg/logx"
)

var giftReminder = calendar.Reminder{Date: calendar.NewDate(10, 11, 2024), Message: "Купить подарки"}

func TestConsoleObserverRendersLine(t *testing.T) {
	var out bytes.Buffer
	o := NewConsole(&out, logx.Nop())

	o.Update(giftReminder)

	assert.Equal(t, "Уведомление в консоли: Купить подарки (10/11/2024)\n", out.String())
	assert.Equal(t, "console", o.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestConsoleObserverLogsWriteFailure(t *testing.T) {
	var logs bytes.Buffer
	o := NewConsole(failingWriter{}, logx.NewWriter(&logs, "warn"))

	require.NotPanics(t, func() { o.Update(giftReminder) })
	assert.Contains(t, logs.String(), "closed pipe")
}

func TestEmailObserverStubRendersAndLogsRecipient(t *testing.T) {
	var out, logs bytes.Buffer
	o := NewEmail(EmailConfig{To: " ops@example.com "}, &out, logx.NewWriter(&logs, "debug"))

	o.Update(giftReminder)

	assert.Equal(t, "Отправка email: Купить подарки (10/11/2024)\n", out.String())
	assert.Contains(t, logs.String(), "email delivery skipped (stub)")
	assert.Contains(t, logs.String(), "ops@example.com")
	assert.EqualValues(t, 1, o.Sent())
	assert.Equal(t, "email:ops@example.com", o.String())
}

func TestEmailObserverThrottles(t *testing.T) {
	var out, logs bytes.Buffer
	o := NewEmail(EmailConfig{RatePerSec: 1}, &out, logx.NewWriter(&logs, "warn"))

	o.Update(giftReminder)
	o.Update(giftReminder)

	assert.EqualValues(t, 1, o.Sent())
	assert.EqualValues(t, 1, o.Dropped())
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("\n")))
	assert.Contains(t, logs.String(), "email notify throttled")
}

func TestEmailObserverUnthrottledByDefault(t *testing.T) {
	var out bytes.Buffer
	o := NewEmail(EmailConfig{}, &out, logx.Logger{})
	for i := 0; i < 50; i++ {
		o.Update(giftReminder)
	}
	assert.EqualValues(t, 50, o.Sent())
	assert.Zero(t, o.Dropped())
	assert.Equal(t, "email", o.String())
}

func TestBusObserverPublishes(t *testing.T) {
	bus := eventbus.New()
	ch, unsub := bus.Subscribe(2)
	defer unsub()

	at := time.Date(2024, 11, 10, 9, 0, 0, 0, time.UTC)
	o := NewBus(bus)
	o.now = func() time.Time { return at }
	o.Update(giftReminder)

	e := <-ch
	assert.Equal(t, EventReminderAdded, e.Type)
	assert.Equal(t, at, e.Time)
	assert.Equal(t, ReminderEvent{Date: "10/11/2024", Message: "Купить подарки"}, e.Data)
}

func TestBusObserverWithoutBusIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() { NewBus(nil).Update(giftReminder) })
}

func TestObserversPlugIntoCalendar(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(&out, logx.Nop())
	email := NewEmail(EmailConfig{}, &out, logx.Nop())

	cal := calendar.New()
	cal.AddObserver(console)
	cal.AddObserver(email)
	cal.AddReminder(giftReminder)

	cal.RemoveObserver(email)
	cal.AddReminder(calendar.Reminder{Date: calendar.NewDate(16, 11, 2024), Message: "Сходить в кино"})

	assert.Equal(t,
		"Уведомление в консоли: Купить подарки (10/11/2024)\n"+
			"Отправка email: Купить подарки (10/11/2024)\n"+
			"Уведомление в консоли: Сходить в кино (16/11/2024)\n",
		out.String())
}
