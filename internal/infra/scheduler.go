package infra

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"mirrorcaps/internal/domain"
)

// Scheduler runs the recurring background jobs: currently a single hourly
// sweep that alerts the admin about transactions stuck in pending. Settlement
// itself never happens here; the sweep only reads and mails.
type Scheduler struct {
	cron         *cron.Cron
	transactions domain.TransactionRepository
	notifier     domain.Notifier
	staleAfter   time.Duration
	logger       *zap.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(
	transactions domain.TransactionRepository,
	notifier domain.Notifier,
	staleAfter time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		transactions: transactions,
		notifier:     notifier,
		staleAfter:   staleAfter,
		logger:       logger,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.sweepStalePending); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.Duration("stale_pending_after", s.staleAfter))
	return nil
}

// Stop stops the cron loop
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) sweepStalePending() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stale, err := s.transactions.ListStalePending(ctx, s.staleAfter)
	if err != nil {
		s.logger.Error("stale pending sweep failed", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	s.logger.Info("found stale pending transactions", zap.Int("count", len(stale)))

	if err := s.notifier.StalePending(ctx, stale); err != nil {
		s.logger.Error("failed to send stale pending alert", zap.Error(err))
	}
}
