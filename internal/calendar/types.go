package calendar

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day. The zero value is 0/0/0.
type Date struct {
	Day   int
	Month int
	Year  int
}

// NewDate builds a Date as given; values are not range-checked.
func NewDate(day, month, year int) Date {
	return Date{Day: day, Month: month, Year: year}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Day: d, Month: int(m), Year: y}
}

// Equal reports whether both dates name the same day.
func (d Date) Equal(o Date) bool {
	return d.Day == o.Day && d.Month == o.Month && d.Year == o.Year
}

// Compare orders dates by (year, month, day) and returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	if c := cmp.Compare(d.Year, o.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, o.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, o.Day)
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// String renders D/M/YYYY without zero padding.
func (d Date) String() string {
	return fmt.Sprintf("%d/%d/%d", d.Day, d.Month, d.Year)
}

// ParseDate parses the D/M/YYYY form produced by String.
// Only the shape is checked; out-of-range numbers are accepted.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q, expected D/M/YYYY", s)
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		n[i] = v
	}
	return NewDate(n[0], n[1], n[2]), nil
}

type Event struct {
	Date        Date
	Description string
}

type Reminder struct {
	Date    Date
	Message string
}

// String renders "<message> (<date>)", the form every output sink uses.
func (r Reminder) String() string {
	return r.Message + " (" + r.Date.String() + ")"
}

// Observer is notified once per registration whenever a reminder is added.
// Update must not block for long: it runs on the caller's goroutine.
type Observer interface {
	Update(r Reminder)
}

// ObserverFunc adapts a function to Observer.
//
// Funcs are not comparable, so an ObserverFunc can only be removed through the
// handle returned by Calendar.AddObserver.
type ObserverFunc func(r Reminder)

func (f ObserverFunc) Update(r Reminder) { f(r) }
