package notifier

import (
	"time"

	"kalendar/internal/calendar"
	"kalendar/internal/eventbus"
)

const EventReminderAdded = "calendar.reminder_added"

// ReminderEvent is the Data payload of EventReminderAdded.
// Keep it small; subscribers may log or serialize it.
type ReminderEvent struct {
	Date    string `json:"date"`
	Message string `json:"message"`
}

// BusObserver forwards new reminders to an event bus.
type BusObserver struct {
	bus eventbus.Bus
	now func() time.Time
}

func NewBus(bus eventbus.Bus) *BusObserver {
	return &BusObserver{bus: bus, now: time.Now}
}

func (o *BusObserver) Update(r calendar.Reminder) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(eventbus.Event{
		Type: EventReminderAdded,
		Time: o.now(),
		Data: ReminderEvent{Date: r.Date.String(), Message: r.Message},
	})
}

func (o *BusObserver) String() string { return "bus" }
