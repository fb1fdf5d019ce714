package services

import (
	"context"
	"time"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

// NotificationService exposes the recipient-side notification operations.
// Every mutation is restricted to the owner and announced on the owner's channel.
type NotificationService struct {
	repo      repositories.NotificationRepository
	transport realtime.Transport
	ledger    *DeletionLedger
	now       func() time.Time
}

func NewNotificationService(repo repositories.NotificationRepository, transport realtime.Transport, ledger *DeletionLedger) *NotificationService {
	return &NotificationService{repo: repo, transport: transport, ledger: ledger, now: time.Now}
}

// ListMine returns the caller's notifications that have not expired.
func (s *NotificationService) ListMine(ctx context.Context, userID string) ([]models.Notification, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err, "list notifications")
	}
	now := s.now()
	live := make([]models.Notification, 0, len(all))
	for i := range all {
		if !all[i].Expired(now) {
			live = append(live, all[i])
		}
	}
	return live, nil
}

// UnreadCount counts the caller's live notifications not yet read.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	live, err := s.ListMine(ctx, userID)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, n := range live {
		if !n.Read {
			unread++
		}
	}
	return unread, nil
}

func (s *NotificationService) owned(ctx context.Context, userID, id string) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Notification not found", "get notification")
	}
	if n.UserID != userID {
		return nil, apperrors.Forbidden("Unauthorized")
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	n, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Notification not found", "mark notification read")
	}
	emit(ctx, s.transport, userID, realtime.EventNotificationRead, models.NotificationIDPayload{NotificationID: id})
	return n, nil
}

func (s *NotificationService) MarkViewed(ctx context.Context, userID, id string) (*models.Notification, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	n, err := s.repo.MarkViewed(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Notification not found", "mark notification viewed")
	}
	emit(ctx, s.transport, userID, realtime.EventNotificationViewed, models.NotificationIDPayload{NotificationID: id})
	return n, nil
}

// MarkAllViewed flags every unviewed notification of the caller and
// returns how many changed.
func (s *NotificationService) MarkAllViewed(ctx context.Context, userID string) (int, error) {
	ids, err := s.repo.MarkAllViewed(ctx, userID)
	if err != nil {
		return 0, apperrors.Storage(err, "mark notifications viewed")
	}
	for _, id := range ids {
		emit(ctx, s.transport, userID, realtime.EventNotificationViewed, models.NotificationIDPayload{NotificationID: id})
	}
	return len(ids), nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	s.ledger.Remember(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupErr(err, "Notification not found", "delete notification")
	}
	emit(ctx, s.transport, userID, realtime.EventNotificationDeleted, models.NotificationIDPayload{NotificationID: id})
	return nil
}
