// Package journey schedules and tracks a learner's sequence of tasks.
//
// A journey of W weeks has 2W tasks on a Monday/Thursday cadence. The whole
// schedule is materialized up front as "scheduled" rows; tasks are released
// one at a time when the learner asks for the next one and are completed by
// submission.
package journey

import (
	"log/slog"
	"time"

	"github.com/abhisek/learnpath/internal/notify"
	"github.com/abhisek/learnpath/internal/observability"
	"github.com/abhisek/learnpath/internal/store"
)

// DefaultMaxAttempts bounds how often AssignNext restarts after losing a
// materialization race.
const DefaultMaxAttempts = 3

// MaxDurationWeeks is the longest journey accepted.
const MaxDurationWeeks = 52

type deps struct {
	tasks       store.TaskRepo
	notifier    notify.Notifier
	logger      *slog.Logger
	metrics     *observability.Metrics
	now         func() time.Time
	maxAttempts int
}

// Option customizes a Scheduler or Lifecycle.
type Option func(*deps)

// WithClock overrides the wall clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

// WithMetrics records outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *deps) { d.metrics = m }
}

// WithMaxAttempts sets the retry bound for materialization conflicts.
// Ignored by Lifecycle.
func WithMaxAttempts(n int) Option {
	return func(d *deps) { d.maxAttempts = n }
}

func newDeps(tasks store.TaskRepo, notifier notify.Notifier, logger *slog.Logger, opts []Option) deps {
	d := deps{
		tasks:       tasks,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(&d)
	}
	if d.notifier == nil {
		d.notifier = &notify.Disabled{Logger: logger}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.maxAttempts < 1 {
		d.maxAttempts = 1
	}
	return d
}
