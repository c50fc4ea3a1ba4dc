package notifier

import (
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/time/rate"

	"kalendar/internal/calendar"
	logx "kalendar/pkg/logx"
)

// EmailConfig configures the email stub.
type EmailConfig struct {
	To string
	// RatePerSec caps notifications per second (burst = rate).
	// 0 disables throttling.
	RatePerSec int
}

// EmailObserver renders reminders as outgoing email. Delivery is not
// implemented: the rendered line goes to the writer and the recipient is logged.
type EmailObserver struct {
	cfg     EmailConfig
	out     *lineWriter
	log     logx.Logger
	limiter *rate.Limiter

	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewEmail(cfg EmailConfig, w io.Writer, log logx.Logger) *EmailObserver {
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg.To = strings.TrimSpace(cfg.To)
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	return &EmailObserver{cfg: cfg, out: newLineWriter(w), log: log, limiter: lim}
}

func (o *EmailObserver) Update(r calendar.Reminder) {
	if !o.limiter.Allow() {
		o.dropped.Add(1)
		o.log.Warn("email notify throttled",
			logx.String("to", o.cfg.To),
			logx.String("date", r.Date.String()),
			logx.Int("rate_per_sec", o.cfg.RatePerSec),
		)
		return
	}
	if err := o.out.writeLine(emailPrefix, r); err != nil {
		o.log.Warn("email render failed", logx.Err(err))
		return
	}
	o.sent.Add(1)
	o.log.Debug("email delivery skipped (stub)", logx.String("to", o.cfg.To), logx.String("date", r.Date.String()))
}

// Sent returns how many notifications were rendered.
func (o *EmailObserver) Sent() uint64 { return o.sent.Load() }

// Dropped returns how many notifications were throttled.
func (o *EmailObserver) Dropped() uint64 { return o.dropped.Load() }

func (o *EmailObserver) String() string {
	if o.cfg.To == "" {
		return "email"
	}
	return "email:" + o.cfg.To
}
