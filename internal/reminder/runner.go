package reminder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"kalendar/internal/calendar"
	logx "kalendar/pkg/logx"
)

// Source is the read side of a calendar the Runner needs.
type Source interface {
	RemindersByDate(d calendar.Date) []calendar.Reminder
}

type RunnerConfig struct {
	// Schedule is a 5-field cron spec or descriptor ("@daily", "@every 1h").
	// Empty disables the runner.
	Schedule string
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule validates a runner schedule. Empty is valid (disabled).
func ParseSchedule(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return nil
}

// Runner replays the current day's reminders on a cron schedule.
type Runner struct {
	mu sync.Mutex

	log   logx.Logger
	cfg   RunnerConfig
	src   Source
	sched *Scheduler
	now   func() time.Time

	c      *cron.Cron
	stopCh chan struct{}
}

func NewRunner(cfg RunnerConfig, src Source, sched *Scheduler, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg.Schedule = strings.TrimSpace(cfg.Schedule)
	return &Runner{cfg: cfg, src: src, sched: sched, log: log, now: time.Now}
}

// Start begins ticking. It is idempotent; an empty schedule is a no-op.
// The runner stops when ctx is done or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopCh != nil {
		return nil
	}
	if r.cfg.Schedule == "" {
		r.log.Info("reminder runner disabled (no schedule)")
		return nil
	}
	if err := r.startCronLocked(); err != nil {
		return err
	}

	stopCh := make(chan struct{})
	r.stopCh = stopCh
	go func() {
		select {
		case <-ctx.Done():
			r.Stop(context.Background())
		case <-stopCh:
		}
	}()
	return nil
}

func (r *Runner) startCronLocked() error {
	c := cron.New(cron.WithParser(parser), cron.WithLocation(time.Local))
	if _, err := c.AddFunc(r.cfg.Schedule, func() { r.RunOnce(r.now()) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", r.cfg.Schedule, err)
	}
	c.Start()
	r.c = c
	r.log.Info("reminder runner started", logx.String("schedule", r.cfg.Schedule))
	return nil
}

// Stop halts the cron loop and waits for a running replay, bounded by ctx.
func (r *Runner) Stop(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	if r.stopCh == nil {
		r.mu.Unlock()
		return
	}
	close(r.stopCh)
	r.stopCh = nil
	c := r.c
	r.c = nil
	r.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			r.log.Warn("reminder runner stop timed out", logx.Err(ctx.Err()))
		}
	}
	r.log.Info("reminder runner stopped")
}

// Running reports whether the cron loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.c != nil
}

// Apply swaps the schedule. A running runner restarts its cron loop; an
// empty schedule stops ticking until the next non-empty Apply.
// A replay still running on the old loop is waited for without holding the
// runner lock.
func (r *Runner) Apply(cfg RunnerConfig) error {
	cfg.Schedule = strings.TrimSpace(cfg.Schedule)
	if err := ParseSchedule(cfg.Schedule); err != nil {
		return err
	}
	old, err := r.swap(cfg)
	if old != nil {
		<-old.Done()
	}
	return err
}

// swap installs cfg and returns the stop context of the replaced cron
// loop, if any.
func (r *Runner) swap(cfg RunnerConfig) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg.Schedule == r.cfg.Schedule {
		return nil, nil
	}
	r.cfg = cfg
	if r.stopCh == nil {
		return nil, nil
	}
	var old context.Context
	if r.c != nil {
		old = r.c.Stop()
		r.c = nil
	}
	if cfg.Schedule == "" {
		r.log.Info("reminder runner paused (schedule cleared)")
		return old, nil
	}
	return old, r.startCronLocked()
}

// RunOnce replays the reminders due on now's calendar day and returns how
// many were replayed.
func (r *Runner) RunOnce(now time.Time) int {
	day := calendar.DateOf(now)
	due := r.src.RemindersByDate(day)
	r.sched.Run(due)
	r.log.Debug("reminders replayed", logx.String("date", day.String()), logx.Int("count", len(due)))
	return len(due)
}
