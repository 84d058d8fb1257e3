// Package archive runs the periodic sweep that moves finished events out
// of the working schedule.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule fires the sweep once a minute, mirroring the refresh
// cadence of the schedule view.
const DefaultSchedule = "@every 60s"

// Archiver is the application operation the sweeper drives.
type Archiver interface {
	ArchivePastDue(ctx context.Context) (int, error)
}

// SessionPurger removes expired sessions. Optional; when set it runs as
// part of every sweep.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) error
}

// Sweeper owns the cron runner for the archival loop. A sweep that is
// still running when the next tick fires is not stacked; the tick is
// skipped and the following one picks up the work.
type Sweeper struct {
	archiver Archiver
	purger   SessionPurger
	schedule string
	logger   *slog.Logger

	cron    *cron.Cron
	running atomic.Bool
}

// Option adjusts sweeper construction.
type Option func(*Sweeper)

// WithSchedule overrides the cron schedule expression.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithSessionPurger makes the sweep also drop expired sessions.
func WithSessionPurger(purger SessionPurger) Option {
	return func(s *Sweeper) {
		s.purger = purger
	}
}

// WithLogger sets the sweeper's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSweeper builds a sweeper around the given archiver.
func NewSweeper(archiver Archiver, opts ...Option) *Sweeper {
	s := &Sweeper{
		archiver: archiver,
		schedule: DefaultSchedule,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs one sweep immediately, then schedules the periodic loop.
// The context bounds each individual sweep, not the runner itself; use
// Stop to halt the loop.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.archiver == nil {
		return fmt.Errorf("archiver not configured")
	}
	if s.cron != nil {
		return fmt.Errorf("sweeper already started")
	}

	s.sweep(ctx)

	runner := cron.New()
	if _, err := runner.AddFunc(s.schedule, func() { s.sweep(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	runner.Start()
	s.cron = runner
	s.logger.InfoContext(ctx, "archival sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.logger.Info("archival sweeper stopped")
}

func (s *Sweeper) sweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.WarnContext(ctx, "previous sweep still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	archived, err := s.archiver.ArchivePastDue(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "archival sweep failed", "error", err)
	} else if archived > 0 {
		s.logger.InfoContext(ctx, "archival sweep finished", "archived", archived)
	}

	if s.purger == nil {
		return
	}
	if err := s.purger.PurgeExpiredSessions(ctx); err != nil {
		s.logger.ErrorContext(ctx, "session purge failed", "error", err)
	}
}
