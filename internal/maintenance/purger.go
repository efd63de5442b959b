package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leventyarali/vocanizer-sub000/internal/config"
	"github.com/leventyarali/vocanizer-sub000/internal/platform/logger"
	"github.com/leventyarali/vocanizer-sub000/internal/store"
	"github.com/robfig/cron/v3"
)

// DefaultRunTimeout bounds a single purge run.
const DefaultRunTimeout = 5 * time.Minute

// ErrAlreadyStarted is returned by Start when the scheduler is running.
var ErrAlreadyStarted = errors.New("maintenance scheduler already started")

// Purger deletes old completed occurrences on a cron schedule.
type Purger struct {
	tasks     store.TaskStore
	logger    *slog.Logger
	schedule  string
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time

	parser cron.Parser

	mu sync.Mutex
	c  *cron.Cron
}

// Option configures a Purger.
type Option func(*Purger)

// WithClock replaces time.Now when computing the retention cutoff.
func WithClock(now func() time.Time) Option {
	return func(p *Purger) { p.now = now }
}

// WithRunTimeout sets the deadline of a single purge run.
func WithRunTimeout(d time.Duration) Option {
	return func(p *Purger) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewPurger creates a Purger from cfg. The schedule is parsed eagerly so a
// bad expression fails at startup.
func NewPurger(tasks store.TaskStore, cfg config.MaintenanceConfig, log *slog.Logger, opts ...Option) (*Purger, error) {
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive, got %d", cfg.RetentionDays)
	}
	if log == nil {
		log = slog.Default()
	}

	p := &Purger{
		tasks:     tasks,
		logger:    log.With(slog.String("component", "maintenance")),
		schedule:  cfg.PurgeSchedule,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		timeout:   DefaultRunTimeout,
		now:       time.Now,
		parser:    cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
	for _, opt := range opts {
		opt(p)
	}

	if _, err := p.parser.Parse(p.schedule); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", p.schedule, err)
	}
	return p, nil
}

// Cutoff returns the due date before which completed occurrences are purged.
func (p *Purger) Cutoff() time.Time {
	return p.now().UTC().Add(-p.retention)
}

// RunOnce performs a single purge and returns the number of deleted rows.
func (p *Purger) RunOnce(ctx context.Context) (int64, error) {
	ctx = logger.WithLogger(ctx, p.logger)
	cutoff := p.Cutoff()

	n, err := p.tasks.PurgeCompletedOccurrences(ctx, cutoff)
	if err != nil {
		p.logger.Error("purge of completed occurrences failed",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, fmt.Errorf("purge completed occurrences: %w", err)
	}

	p.logger.Info("purged completed occurrences",
		slog.Int64("deleted", n),
		slog.Time("cutoff", cutoff))
	return n, nil
}

// Start schedules the purge job. It returns immediately; jobs run on the
// cron goroutine until Stop is called.
func (p *Purger) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.c != nil {
		return ErrAlreadyStarted
	}

	cl := cronLogger{p.logger}
	c := cron.New(
		cron.WithParser(p.parser),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	_, err := c.AddFunc(p.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		_, _ = p.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule purge job: %w", err)
	}

	c.Start()
	p.c = c
	p.logger.Info("maintenance scheduler started",
		slog.String("schedule", p.schedule),
		slog.Duration("retention", p.retention))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish or ctx to
// expire. Stop on a scheduler that was never started is a no-op.
func (p *Purger) Stop(ctx context.Context) error {
	p.mu.Lock()
	c := p.c
	p.c = nil
	p.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		p.logger.Info("maintenance scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
