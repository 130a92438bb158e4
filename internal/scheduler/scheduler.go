package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"bulletin_sync/internal/config"
	"bulletin_sync/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	IncrementalSync(ctx context.Context) (*domain.SyncStats, error)
}

// Scheduler fires an incremental sync shortly after start and then on a
// fixed interval. Stopping it never interrupts a run in flight.
type Scheduler struct {
	syncer       Syncer
	interval     time.Duration
	initialDelay time.Duration
	runTimeout   time.Duration
	logger       *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func NewScheduler(syncer Syncer, cfg config.SyncConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:       syncer,
		interval:     cfg.Interval,
		initialDelay: cfg.InitialDelay,
		runTimeout:   cfg.RunTimeout,
		logger:       logger.With("component", "scheduler"),
		stop:         make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "initial_delay", s.initialDelay)

	delay := time.NewTimer(s.initialDelay)
	defer delay.Stop()

	select {
	case <-ctx.Done():
		s.logger.Info("scheduler stopped")
		return ctx.Err()
	case <-s.stop:
		s.logger.Info("scheduler stopped")
		return nil
	case <-delay.C:
		s.runSync(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-s.stop:
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

// Stop clears the schedule. A run already in progress completes.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Scheduler) runSync(ctx context.Context) {
	syncCtx := context.WithoutCancel(ctx)
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		syncCtx, cancel = context.WithTimeout(syncCtx, s.runTimeout)
		defer cancel()
	}

	_, err := s.syncer.IncrementalSync(syncCtx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSyncInProgress):
		s.logger.Info("skipping scheduled sync, another run is in progress")
	default:
		s.logger.Error("sync failed", "error", err)
	}
}
