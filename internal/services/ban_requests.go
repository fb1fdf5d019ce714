package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

// BanRequestService lets faculty report users and admins resolve reports.
type BanRequestService struct {
	requests repositories.BanRequestRepository
	users    repositories.UserRepository
	router   *Router
}

func NewBanRequestService(requests repositories.BanRequestRepository, users repositories.UserRepository, router *Router) *BanRequestService {
	return &BanRequestService{requests: requests, users: users, router: router}
}

// Create files a ban request and notifies every admin. Admins are resolved
// before anything is stored, so NoRecipients leaves no request behind.
func (s *BanRequestService) Create(ctx context.Context, requesterID string, in models.CreateBanRequest) (*models.BanRequest, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, apperrors.InvalidInput("Reason is required")
	}
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}
	if !requester.IsFaculty() {
		return nil, apperrors.Forbidden("Only faculty can submit ban requests")
	}
	if in.UserToBanID == requester.ID {
		return nil, apperrors.InvalidInput("Cannot request a ban on yourself")
	}
	target, err := s.users.GetByID(ctx, in.UserToBanID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}

	ev := Event{Audience: AudienceAdmins, Actor: requester.ID}
	admins, err := s.router.ResolveRecipients(ctx, ev)
	if err != nil {
		return nil, err
	}

	req := &models.BanRequest{
		RequesterID: requester.ID,
		UserToBanID: target.ID,
		PostID:      in.PostID,
		Reason:      reason,
		Status:      models.BanRequestPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.Storage(err, "create ban request")
	}

	ev.Subject = models.BanRequested{
		BanRequestID: req.ID,
		UserToBanID:  target.ID,
		RequesterID:  requester.ID,
		PostID:       in.PostID,
	}
	ev.Render = func(count int) string {
		if count > 1 {
			return fmt.Sprintf("%d ban requests have been submitted for %s, latest by %s.", count, target.Name, requester.Name)
		}
		return fmt.Sprintf("%s has submitted a ban request for %s.", requester.Name, target.Name)
	}
	if err := s.router.Dispatch(ctx, ev, admins); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *BanRequestService) Approve(ctx context.Context, adminID, id string) (*models.BanRequest, error) {
	return s.resolve(ctx, adminID, id, models.BanRequestApproved)
}

func (s *BanRequestService) Reject(ctx context.Context, adminID, id string) (*models.BanRequest, error) {
	return s.resolve(ctx, adminID, id, models.BanRequestRejected)
}

func (s *BanRequestService) resolve(ctx context.Context, adminID, id string, status models.BanRequestStatus) (*models.BanRequest, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Ban request not found", "get ban request")
	}
	if req.Status != models.BanRequestPending {
		return nil, apperrors.Conflict("Ban request has already been resolved")
	}
	if err := s.requests.Resolve(ctx, req.ID, status, adminID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Conflict("Ban request has already been resolved")
		}
		return nil, apperrors.Storage(err, "resolve ban request")
	}
	req.Status = status
	req.ResolvedBy = adminID

	target, err := s.users.GetByID(ctx, req.UserToBanID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}
	if status == models.BanRequestApproved {
		if err := s.users.SetBanned(ctx, target.ID, true); err != nil {
			return nil, lookupErr(err, "User not found", "ban user")
		}
	}

	var subject models.Subject = models.BanRequestRejected{BanRequestID: req.ID, UserToBanID: target.ID}
	if status == models.BanRequestApproved {
		subject = models.BanRequestApproved{BanRequestID: req.ID, UserToBanID: target.ID}
	}
	err = s.router.Fanout(ctx, Event{
		Audience:  AudienceDirect,
		Actor:     adminID,
		Recipient: req.RequesterID,
		Subject:   subject,
		Render: func(int) string {
			return fmt.Sprintf("Your ban request for %s has been %s.", target.Name, status)
		},
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// List returns ban requests with the given status, or all when status is empty.
func (s *BanRequestService) List(ctx context.Context, adminID string, status models.BanRequestStatus) ([]models.BanRequest, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	reqs, err := s.requests.List(ctx, status)
	if err != nil {
		return nil, apperrors.Storage(err, "list ban requests")
	}
	return reqs, nil
}

func (s *BanRequestService) requireAdmin(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "User not found", "get user")
	}
	if !user.IsAdmin() {
		return apperrors.Forbidden("Only admins can manage ban requests")
	}
	return nil
}
