// Package notifier provides the calendar observers that react to new reminders.
//
// Every observer renders the reminder as "<message> (<date>)" behind a fixed
// prefix and writes one line to its io.Writer (stdout by default):
//
//   - ConsoleObserver: "Уведомление в консоли: ..."
//   - EmailObserver:   "Отправка email: ..." (stub; nothing is delivered)
//   - BusObserver:     publishes calendar.reminder_added on the event bus
//
// # Throttling
//
// EmailObserver keeps a token bucket so a burst of reminders cannot flood the
// (future) mail transport. Over-limit notifications are dropped and logged;
// Update never blocks the calendar's notification loop.
package notifier
