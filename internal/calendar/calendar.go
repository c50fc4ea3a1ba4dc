package calendar

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"

	logx "kalendar/pkg/logx"
)

type registration struct {
	id uint64
	o  Observer
}

// Calendar owns events, reminders and the observer registry.
//
// It is safe for concurrent use. A single mutex guards all state; it is
// released before observers are called.
type Calendar struct {
	mu sync.Mutex

	log logx.Logger

	seq       uint64
	observers []registration
	reminders []Reminder
	events    []Event
}

// Option configures a Calendar in New.
type Option func(c *Calendar)

// WithLogger sets the logger used for registry changes and observer panics.
func WithLogger(log logx.Logger) Option {
	return func(c *Calendar) { c.log = log }
}

// New returns an empty calendar.
func New(opts ...Option) *Calendar {
	c := &Calendar{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.log.IsZero() {
		c.log = logx.Nop()
	}
	return c
}

// AddObserver appends o to the registry and returns a func that removes this
// registration only. Adding the same observer twice registers it twice.
func (c *Calendar) AddObserver(o Observer) (remove func()) {
	if o == nil {
		return func() {}
	}
	c.mu.Lock()
	c.seq++
	id := c.seq
	c.observers = append(c.observers, registration{id: id, o: o})
	n := len(c.observers)
	c.mu.Unlock()

	c.log.Debug("observer added", logx.String("observer", observerName(o)), logx.Int("observers", n))

	var once sync.Once
	return func() {
		once.Do(func() { c.removeWhere(func(r registration) bool { return r.id == id }) })
	}
}

// RemoveObserver removes every registration of o. Unknown observers and
// observers whose value cannot be compared with == (funcs, or structs holding
// one) are ignored; use the handle from AddObserver for those.
func (c *Calendar) RemoveObserver(o Observer) {
	if !canCompare(o) {
		return
	}
	c.removeWhere(func(r registration) bool {
		return reflect.TypeOf(r.o) == reflect.TypeOf(o) && canCompare(r.o) && r.o == o
	})
}

// canCompare reports whether o can be used with == without panicking. It
// checks the dynamic value, so interface fields holding funcs or slices count.
func canCompare(o Observer) bool {
	return o != nil && reflect.ValueOf(o).Comparable()
}

func (c *Calendar) removeWhere(match func(r registration) bool) {
	removed, n := c.filterObservers(match)
	if removed > 0 {
		c.log.Debug("observer removed", logx.Int("registrations", removed), logx.Int("observers", n))
	}
}

// filterObservers drops matching registrations. The registry is replaced only
// after every match has run.
func (c *Calendar) filterObservers(match func(r registration) bool) (removed, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]registration, 0, len(c.observers))
	for _, r := range c.observers {
		if match(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed > 0 {
		c.observers = kept
	}
	return removed, len(c.observers)
}

// Observers returns the number of active registrations.
func (c *Calendar) Observers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observers)
}

// AddEvent stores e. Observers are not notified.
func (c *Calendar) AddEvent(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

// AddReminder stores r and then notifies every observer registered at this
// point, in registration order.
func (c *Calendar) AddReminder(r Reminder) {
	c.mu.Lock()
	c.reminders = append(c.reminders, r)
	obs := make([]Observer, len(c.observers))
	for i, reg := range c.observers {
		obs[i] = reg.o
	}
	c.mu.Unlock()

	c.log.Debug("reminder added", logx.String("date", r.Date.String()), logx.Int("observers", len(obs)))
	for _, o := range obs {
		c.notify(o, r)
	}
}

func (c *Calendar) notify(o Observer, r Reminder) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.Error("observer panicked",
				logx.String("observer", observerName(o)),
				logx.String("panic", fmt.Sprint(rec)),
				logx.String("stack", string(debug.Stack())),
			)
		}
	}()
	o.Update(r)
}

func (c *Calendar) RemindersByDate(d Date) []Reminder {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []Reminder{}
	for _, r := range c.reminders {
		if r.Date.Equal(d) {
			out = append(out, r)
		}
	}
	return out
}

func (c *Calendar) EventsByDate(d Date) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []Event{}
	for _, e := range c.events {
		if e.Date.Equal(d) {
			out = append(out, e)
		}
	}
	return out
}

// Reminders returns a copy of all reminders in insertion order.
func (c *Calendar) Reminders() []Reminder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Reminder{}, c.reminders...)
}

// Events returns a copy of all events in insertion order.
func (c *Calendar) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event{}, c.events...)
}

func observerName(o Observer) string {
	if s, ok := o.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", o)
}
