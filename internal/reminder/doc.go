// Package reminder replays reminders through a swappable presentation strategy.
//
// # Strategies
//
// A Strategy renders one reminder. Two are built in:
//
//   - Default:     "Напоминание: <message> (<date>)"
//   - Prioritized: "[Важно] Напоминание: <message> (<date>)"
//
// ByName resolves them from config ("default", "prioritized").
//
// # Scheduler
//
// Scheduler owns exactly one active Strategy. Run applies it to a batch of
// reminders in order; SetStrategy swaps it for subsequent runs. The scheduler
// never touches a calendar: callers pass a snapshot in.
//
// # Runner
//
// Runner drives a Scheduler from a cron schedule, replaying the reminders due
// on the current day. Schedules use the 5-field cron syntax
// (min hour dom mon dow) or descriptors such as "@daily" and "@every 1h".
package reminder
