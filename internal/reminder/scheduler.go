package reminder

import (
	"sync"

	"kalendar/internal/calendar"
)

// Scheduler holds one active Strategy and replays reminder batches through it.
//
// It is safe for concurrent use. Run snapshots the strategy once, so a
// concurrent SetStrategy only affects later runs.
type Scheduler struct {
	mu       sync.Mutex
	strategy Strategy
}

// NewScheduler takes ownership of strategy. A nil strategy falls back to
// Default on stdout so the scheduler always has one.
func NewScheduler(strategy Strategy) *Scheduler {
	if strategy == nil {
		strategy = Default{}
	}
	return &Scheduler{strategy: strategy}
}

// SetStrategy replaces the active strategy. Nil is ignored.
func (s *Scheduler) SetStrategy(strategy Strategy) {
	if strategy == nil {
		return
	}
	s.mu.Lock()
	s.strategy = strategy
	s.mu.Unlock()
}

func (s *Scheduler) Strategy() Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy
}

// Run calls Remind on every reminder, in order.
func (s *Scheduler) Run(reminders []calendar.Reminder) {
	st := s.Strategy()
	for _, r := range reminders {
		st.Remind(r)
	}
}
