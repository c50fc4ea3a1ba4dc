package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"kalendar/internal/calendar"
	"kalendar/internal/config"
	"kalendar/internal/eventbus"
	"kalendar/internal/notifier"
	"kalendar/internal/reminder"
	"kalendar/internal/runtime/supervisor"
	logx "kalendar/pkg/logx"
)

type App struct {
	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus
	out  io.Writer

	cal    *calendar.Calendar
	obs    observers
	sched  *reminder.Scheduler
	runner *reminder.Runner

	mu      sync.Mutex
	applied *config.Config
}

type Option func(a *App)

// WithOutput redirects observer and strategy output (default stdout).
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

func New(cfgPath string, opts ...Option) (*App, error) {
	a := &App{out: logx.Stdout()}
	for _, o := range opts {
		if o != nil {
			o(a)
		}
	}
	if a.out == nil {
		a.out = logx.Stdout()
	}
	a.out = &syncWriter{w: a.out}

	cfgm := config.NewManager(cfgPath)
	cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return config.Validate(cfg)
	})
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLoggingConfig(cfg))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	a.cfgm = cfgm
	a.logs = logSvc
	a.log = log.With(logx.String("comp", "app"))
	a.bus = eventbus.New()
	a.applied = cfg

	a.cal = calendar.New(calendar.WithLogger(log.With(logx.String("comp", "calendar"))))
	a.obs = buildObservers(cfg, a.cal, a.bus, a.out, log)

	strategy, err := reminder.ByName(cfg.Reminders.Strategy, a.out)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	a.sched = reminder.NewScheduler(strategy)
	a.runner = reminder.NewRunner(mapRunnerConfig(cfg), a.cal, a.sched, log.With(logx.String("comp", "runner")))

	if err := seedCalendar(cfg, a.cal); err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	a.log.Info("calendar ready",
		logx.Int("events", len(a.cal.Events())),
		logx.Int("reminders", len(a.cal.Reminders())),
		logx.Int("observers", a.cal.Observers()),
		logx.String("strategy", strings.ToLower(strings.TrimSpace(cfg.Reminders.Strategy))),
	)
	return a, nil
}

func (a *App) Calendar() *calendar.Calendar   { return a.cal }
func (a *App) Scheduler() *reminder.Scheduler { return a.sched }
func (a *App) Runner() *reminder.Runner       { return a.runner }
func (a *App) Bus() eventbus.Bus              { return a.bus }

// Email returns the email observer, or nil when it is disabled.
func (a *App) Email() *notifier.EmailObserver { return a.obs.email }

// Done is closed when the app context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal background error (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	if a.sup != nil {
		return errors.New("app already started")
	}
	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)

	if err := a.runner.Start(a.sup.Context()); err != nil {
		a.sup.Cancel()
		return err
	}

	events, unsub := a.bus.Subscribe(128)
	a.sup.Go("eventbus.log", func(c context.Context) error {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time), logx.Any("data", e.Data))
			}
		}
	})

	sub := a.cfgm.Subscribe(8)
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return nil
			case cfg, ok := <-sub:
				if !ok {
					return nil
				}
				// Coalesce bursts: apply only the latest.
				for drained := false; !drained; {
					select {
					case newer := <-sub:
						if newer != nil {
							cfg = newer
						}
					default:
						drained = true
					}
				}
				a.apply(cfg)
			}
		}
	})

	a.sup.Go("config.watch", a.cfgm.Watch)

	a.log.Info("app started", logx.String("config", a.cfgm.Path()))
	return nil
}

// apply pushes a reloaded config into the running components.
func (a *App) apply(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.mu.Lock()
	prev := a.applied
	a.applied = cfg
	a.mu.Unlock()

	a.logs.Apply(mapLoggingConfig(cfg))

	if st, err := reminder.ByName(cfg.Reminders.Strategy, a.out); err != nil {
		a.log.Warn("strategy not applied", logx.Err(err))
	} else {
		a.sched.SetStrategy(st)
		a.log.Info("reminder strategy applied", logx.String("strategy", cfg.Reminders.Strategy))
	}

	if err := a.runner.Apply(mapRunnerConfig(cfg)); err != nil {
		a.log.Warn("reminder schedule not applied", logx.Err(err))
	} else if a.sup != nil && !a.runner.Running() {
		// A runner that started without a schedule picks one up here.
		if err := a.runner.Start(a.sup.Context()); err != nil {
			a.log.Warn("reminder runner not started", logx.Err(err))
		}
	}

	if changed := restartOnly(prev, cfg); len(changed) > 0 {
		a.log.Warn("config changed; restart required for changes to take effect",
			logx.String("sections", strings.Join(changed, ",")))
	}
}

// Stop shuts background work down, bounded by ctx.
func (a *App) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.runner.Stop(ctx)
	var err error
	if a.sup != nil {
		if werr := a.sup.Stop(ctx); werr != nil && !errors.Is(werr, context.Canceled) {
			err = werr
		}
	}
	a.log.Info("app stopped")
	return errors.Join(err, a.logs.Close())
}
