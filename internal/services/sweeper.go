package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

// Sweeper periodically removes expired notifications and announces each
// removal to every connected session.
type Sweeper struct {
	repo      repositories.NotificationRepository
	transport realtime.Transport
	ledger    *DeletionLedger
	interval  time.Duration
	now       func() time.Time
}

func NewSweeper(repo repositories.NotificationRepository, transport realtime.Transport, ledger *DeletionLedger, interval time.Duration) *Sweeper {
	return &Sweeper{
		repo:      repo,
		transport: transport,
		ledger:    ledger,
		interval:  interval,
		now:       time.Now,
	}
}

// SweepOnce deletes every expired notification and returns how many were
// removed. A failed deletion is logged and skipped.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, apperrors.Storage(err, "list notifications")
	}

	now := s.now()
	removed := 0
	for i := range all {
		n := &all[i]
		if !n.Expired(now) {
			continue
		}
		id := n.ID.Hex()
		s.ledger.Remember(id)
		if err := s.repo.Delete(ctx, id); err != nil {
			logger.Warn("expired notification not deleted",
				zap.String("notification_id", id),
				zap.Error(err),
			)
			continue
		}
		removed++
		broadcast(ctx, s.transport, realtime.EventNotificationDeleted, models.NotificationIDPayload{NotificationID: id})
	}
	return removed, nil
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("notification sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("notification sweeper stopped")
			return
		case <-ticker.C:
			removed, err := s.SweepOnce(ctx)
			if err != nil {
				logger.Error("notification sweep failed", zap.Error(err))
				continue
			}
			logger.Info("notification sweep finished", zap.Int("removed", removed))
		}
	}
}
