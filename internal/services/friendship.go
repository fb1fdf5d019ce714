package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

// FriendshipService runs the friend request lifecycle. A pending request
// is represented to its receiver by a friend_request notification that is
// consumed when the request is decided.
type FriendshipService struct {
	friendships repositories.FriendshipRepository
	users       repositories.UserRepository
	aggregator  *Aggregator
	router      *Router
}

func NewFriendshipService(friendships repositories.FriendshipRepository, users repositories.UserRepository, aggregator *Aggregator, router *Router) *FriendshipService {
	return &FriendshipService{friendships: friendships, users: users, aggregator: aggregator, router: router}
}

func (s *FriendshipService) SendRequest(ctx context.Context, fromID, toID string) (*models.FriendRequest, error) {
	if fromID == toID {
		return nil, apperrors.InvalidInput("Cannot send friend request to yourself")
	}
	from, err := s.users.GetByID(ctx, fromID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}
	to, err := s.users.GetByID(ctx, toID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}

	acquainted, err := s.friendships.AreAcquainted(ctx, from.ID, to.ID)
	if err != nil {
		return nil, apperrors.Storage(err, "check acquaintance")
	}
	if acquainted {
		return nil, apperrors.Conflict("Already acquaintances")
	}
	_, err = s.friendships.FindRequestBetween(ctx, from.ID, to.ID)
	switch {
	case err == nil:
		return nil, apperrors.Conflict("Friend request already exists")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, apperrors.Storage(err, "find friend request")
	}

	req := &models.FriendRequest{SenderID: from.ID, ReceiverID: to.ID}
	if err := s.friendships.CreateRequest(ctx, req); err != nil {
		return nil, apperrors.Storage(err, "create friend request")
	}

	err = s.router.Fanout(ctx, Event{
		Audience:  AudienceDirect,
		Actor:     from.ID,
		Recipient: to.ID,
		Subject:   models.FriendRequestSent{SenderID: from.ID, RequestID: req.ID},
		Render: func(int) string {
			return fmt.Sprintf("%s sent you a friend request", from.Name)
		},
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Accept makes both users acquaintances and resolves the request.
func (s *FriendshipService) Accept(ctx context.Context, userID, requestID string) error {
	return s.respond(ctx, userID, requestID, true)
}

// Decline resolves the request without creating an acquaintance.
func (s *FriendshipService) Decline(ctx context.Context, userID, requestID string) error {
	return s.respond(ctx, userID, requestID, false)
}

func (s *FriendshipService) respond(ctx context.Context, userID, requestID string, accept bool) error {
	req, err := s.friendships.GetRequest(ctx, requestID)
	if err != nil {
		return lookupErr(err, "Friend request not found", "get friend request")
	}
	if req.ReceiverID != userID {
		return apperrors.Forbidden("You are not authorized to respond to this friend request")
	}
	responder, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "User not found", "get user")
	}

	if accept {
		if err := s.friendships.AddAcquaintance(ctx, req.SenderID, req.ReceiverID); err != nil {
			return apperrors.Storage(err, "add acquaintance")
		}
	}

	if err := s.aggregator.Consume(ctx, models.KeyFor(userID, models.FriendRequestSent{SenderID: req.SenderID})); err != nil {
		return err
	}
	if err := s.friendships.DeleteRequest(ctx, req.ID); err != nil {
		return apperrors.Storage(err, "delete friend request")
	}

	var subject models.Subject = models.FriendRequestDeclined{DeclinerID: responder.ID}
	verb := "declined"
	if accept {
		subject = models.FriendRequestAccepted{AccepterID: responder.ID}
		verb = "accepted"
	}
	return s.router.Fanout(ctx, Event{
		Audience:  AudienceDirect,
		Actor:     responder.ID,
		Recipient: req.SenderID,
		Subject:   subject,
		Render: func(int) string {
			return fmt.Sprintf("%s %s your friend request", responder.Name, verb)
		},
	})
}

func (s *FriendshipService) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	reqs, err := s.friendships.ListIncoming(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err, "list friend requests")
	}
	return reqs, nil
}

func (s *FriendshipService) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	reqs, err := s.friendships.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err, "list friend requests")
	}
	return reqs, nil
}

func (s *FriendshipService) ListAcquaintances(ctx context.Context, userID string) ([]models.UserSummary, error) {
	users, err := s.friendships.ListAcquaintances(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err, "list acquaintances")
	}
	out := make([]models.UserSummary, len(users))
	for i := range users {
		out[i] = users[i].Summary()
	}
	return out, nil
}

func (s *FriendshipService) RemoveAcquaintance(ctx context.Context, userID, otherID string) error {
	if err := s.friendships.RemoveAcquaintance(ctx, userID, otherID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("Not acquaintances")
		}
		return apperrors.Storage(err, "remove acquaintance")
	}
	return nil
}
