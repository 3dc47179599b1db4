package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devpulse/tracker-api/pkg/jobs"
)

const jobTypeTokenSweep = "refresh_token_sweep"

type expiredTokenStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CleanupService periodically removes expired refresh tokens. Sweeps run on
// a background job queue so a slow delete never blocks the scheduler tick.
type CleanupService struct {
	tokens   expiredTokenStore
	metrics  *MetricsService
	logger   *zap.Logger
	interval time.Duration

	queue  *jobs.Queue
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCleanupService constructs the cleanup scheduler.
func NewCleanupService(tokens expiredTokenStore, metrics *MetricsService, logger *zap.Logger, interval time.Duration) *CleanupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	s := &CleanupService{tokens: tokens, metrics: metrics, logger: logger, interval: interval}
	s.queue = jobs.NewQueue("token-cleanup", s.sweep, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 4,
		MaxRetries: 2,
		RetryDelay: 30 * time.Second,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers and the scheduler tick. One sweep is
// enqueued immediately so restarts do not wait a full interval.
func (s *CleanupService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.queue.Start(ctx)
	s.enqueue()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.enqueue()
			}
		}
	}()
}

// Stop halts the scheduler and waits for in-flight sweeps.
func (s *CleanupService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.queue.Stop()
}

func (s *CleanupService) enqueue() {
	err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobTypeTokenSweep})
	if err != nil {
		s.logger.Sugar().Warnw("failed to enqueue token sweep", "error", err)
	}
}

func (s *CleanupService) sweep(ctx context.Context, _ jobs.Job) error {
	removed, err := s.tokens.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if removed > 0 {
		s.metrics.RecordTokensCleaned(removed)
		s.logger.Sugar().Infow("expired refresh tokens removed", "count", removed)
	}
	return nil
}
