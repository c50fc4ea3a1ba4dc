// Package calendar stores dated events and reminders and notifies observers.
//
// # Model
//
// Date is a plain (day, month, year) value. It is compared field by field and
// ordered by year, then month, then day. It is never validated: 40/13/2024 is a
// perfectly good Date as far as this package is concerned.
//
// Event and Reminder pair a Date with text. Both are values; callers and
// observers always receive copies.
//
// # Notification
//
// Calendar.AddReminder stores the reminder first and then calls Update on every
// registered Observer, in registration order, on the caller's goroutine. An
// observer may read the calendar from inside Update and will see the new
// reminder. Registering the same observer twice yields two notifications.
//
// A panic inside an observer is recovered and logged so the remaining observers
// are still notified.
package calendar
