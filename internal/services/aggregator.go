package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

// Renderer produces the notification text for the current count.
type Renderer func(count int) string

// Aggregator is the only writer of notifications. Repeated events with the
// same (recipient, kind, related entity) collapse into one record whose
// count grows and whose createdAt restarts.
type Aggregator struct {
	repo      repositories.NotificationRepository
	transport realtime.Transport
	ledger    *DeletionLedger
	now       func() time.Time
}

func NewAggregator(repo repositories.NotificationRepository, transport realtime.Transport, ledger *DeletionLedger) *Aggregator {
	return &Aggregator{repo: repo, transport: transport, ledger: ledger, now: time.Now}
}

// Upsert creates or increments the notification of subject for recipient
// and pushes the full record to the recipient's channel.
func (a *Aggregator) Upsert(ctx context.Context, recipient string, subject models.Subject, render Renderer) (*models.Notification, error) {
	key := models.KeyFor(recipient, subject)

	n, err := a.repo.Increment(ctx, key, subject.Refs(), a.now())
	if err != nil {
		return nil, apperrors.Storage(err, "upsert notification")
	}
	n.Message = render(n.Count)
	if err := a.repo.SetMessage(ctx, n.ID, n.Message); err != nil {
		return nil, apperrors.Storage(err, "render notification")
	}

	emit(ctx, a.transport, recipient, realtime.EventNewNotification, n)
	return n, nil
}

// Consume deletes the notification at key, if any, and tells the recipient.
func (a *Aggregator) Consume(ctx context.Context, key models.NotificationKey) error {
	n, err := a.repo.FindByKey(ctx, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Storage(err, "find notification")
	}

	id := n.ID.Hex()
	a.ledger.Remember(id)
	if err := a.repo.Delete(ctx, id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Storage(err, "delete notification")
	}

	emit(ctx, a.transport, key.UserID, realtime.EventNotificationDeleted, models.NotificationIDPayload{NotificationID: id})
	return nil
}

// emit delivers to a channel. Delivery failures are logged, never returned:
// the primary action has already been committed.
func emit(ctx context.Context, t realtime.Transport, channel, event string, payload interface{}) {
	if err := t.Emit(ctx, channel, event, payload); err != nil {
		logger.Warn("realtime emit failed",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(apperrors.Transport(err, "emit")),
		)
	}
}

func broadcast(ctx context.Context, t realtime.Transport, event string, payload interface{}) {
	if err := t.BroadcastAll(ctx, event, payload); err != nil {
		logger.Warn("realtime broadcast failed",
			zap.String("event", event),
			zap.Error(apperrors.Transport(err, "broadcast")),
		)
	}
}
