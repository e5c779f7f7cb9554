package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/allisson/signum/internal/metrics"
)

// DefaultSweepInterval is used when no interval is configured.
const DefaultSweepInterval = 300 * time.Second

// RevocationSweeper periodically deletes revoked tokens whose expiry has passed. Runs never
// overlap: a Sweep that finds another one in progress returns immediately.
type RevocationSweeper struct {
	repo     RevokedTokenRepository
	interval time.Duration
	metrics  metrics.BusinessMetrics
	logger   *slog.Logger
	running  sync.Mutex
}

// NewRevocationSweeper creates a sweeper. An interval <= 0 disables the periodic loop; Sweep
// can still be called directly.
func NewRevocationSweeper(
	repo RevokedTokenRepository,
	interval time.Duration,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *RevocationSweeper {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &RevocationSweeper{
		repo:     repo,
		interval: interval,
		metrics:  businessMetrics,
		logger:   logger,
	}
}

// Sweep deletes every revoked token with expires_at < now and returns the count. A missing
// repository is an expected startup state: it is logged and the run skipped.
func (s *RevocationSweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	if s.repo == nil {
		s.logger.Warn("revoked token repository not initialized, skipping sweep")
		return 0, nil
	}

	if !s.running.TryLock() {
		s.logger.Debug("revocation sweep already running, skipping")
		return 0, nil
	}
	defer s.running.Unlock()

	start := time.Now()
	deleted, err := metrics.Measure(ctx, s.logger, "revocation_sweep", func(ctx context.Context) (int64, error) {
		return s.repo.DeleteExpiredBefore(ctx, now)
	})

	status := metrics.StatusOf(err)
	s.metrics.RecordOperation(ctx, metrics.DomainTokens, "revocation_sweep", status)
	s.metrics.RecordDuration(ctx, metrics.DomainTokens, "revocation_sweep", time.Since(start), status)

	if err != nil {
		return 0, err
	}

	s.metrics.RecordItems(ctx, metrics.DomainTokens, "revocation_sweep", deleted)
	if deleted > 0 {
		s.logger.Info("expired revoked tokens deleted", slog.Int64("count", deleted))
	}
	return deleted, nil
}

// Start runs Sweep on every tick until ctx is done. Failed runs are logged and the loop keeps
// going.
func (s *RevocationSweeper) Start(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("revocation sweeper disabled")
		return nil
	}

	s.logger.Info("starting revocation sweeper", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping revocation sweeper")
			return ctx.Err()
		case tick := <-ticker.C:
			if _, err := s.Sweep(ctx, tick.UTC()); err != nil {
				s.logger.Error("failed to sweep revoked tokens", slog.Any("error", err))
			}
		}
	}
}
