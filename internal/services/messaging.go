package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

// SendMessageInput targets exactly one of ReceiverID or GroupID.
type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	GroupID    string
	Content    string
	// Event is the domain event name delivered to channels. Empty means receiveMessage.
	Event string
}

// MessagingService persists messages, keeps group unread counters and
// hands delivery to the Router.
type MessagingService struct {
	messages    repositories.MessageRepository
	groups      repositories.GroupRepository
	users       repositories.UserRepository
	friendships repositories.FriendshipRepository
	router      *Router
	now         func() time.Time
}

func NewMessagingService(
	messages repositories.MessageRepository,
	groups repositories.GroupRepository,
	users repositories.UserRepository,
	friendships repositories.FriendshipRepository,
	router *Router,
) *MessagingService {
	return &MessagingService{
		messages:    messages,
		groups:      groups,
		users:       users,
		friendships: friendships,
		router:      router,
		now:         time.Now,
	}
}

// SendMessage validates, persists and delivers a message. If delivery or
// notification fails after the message is stored, the error is returned
// and the message stays.
func (s *MessagingService) SendMessage(ctx context.Context, in SendMessageInput) (*models.MessageView, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return nil, apperrors.InvalidInput("Message content is required")
	}
	if utf8.RuneCountInString(in.Content) > models.MaxMessageLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("content must be at most %d characters", models.MaxMessageLength))
	}
	if (in.ReceiverID == "") == (in.GroupID == "") {
		return nil, apperrors.InvalidInput("Exactly one of receiverId or groupId is required")
	}
	if in.Event == "" {
		in.Event = realtime.EventReceiveMessage
	}

	sender, err := s.users.GetByID(ctx, in.SenderID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get sender")
	}

	if in.GroupID != "" {
		return s.sendToGroup(ctx, sender, in)
	}
	return s.sendDirect(ctx, sender, in)
}

func (s *MessagingService) sendToGroup(ctx context.Context, sender *models.User, in SendMessageInput) (*models.MessageView, error) {
	group, err := s.groups.GetByID(ctx, in.GroupID)
	if err != nil {
		return nil, lookupErr(err, "Group not found", "get group")
	}
	if !group.IsMember(sender.ID) {
		return nil, apperrors.Forbidden("You are not a member of this group")
	}

	msg := &models.Message{
		SenderID:  sender.ID,
		GroupID:   group.ID.Hex(),
		Content:   in.Content,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.Storage(err, "create message")
	}

	unread := group.UnreadAfterSend(sender.ID)
	if err := s.groups.SetUnreadCounts(ctx, group.ID, unread); err != nil {
		logger.Error("group unread counters not updated",
			zap.String("group_id", msg.GroupID),
			zap.String("message_id", msg.ID.Hex()),
			zap.Error(err),
		)
		return nil, apperrors.Storage(err, "update unread counts")
	}
	group.UnreadCounts = unread

	summary := group.Summary()
	view := func(viewer string) interface{} {
		v := s.populate(msg, sender)
		v.Group = &summary
		v.IsSentByMe = viewer == sender.ID
		return v
	}

	err = s.router.Fanout(ctx, Event{
		Audience: AudienceGroup,
		Actor:    sender.ID,
		Group:    group,
		Subject: models.GroupMessage{
			GroupID:   msg.GroupID,
			MessageID: msg.ID.Hex(),
			SenderID:  sender.ID,
		},
		Render: func(count int) string {
			if count > 1 {
				return fmt.Sprintf("%d new messages in group %s from %s", count, group.Name, sender.Name)
			}
			return fmt.Sprintf("New message in group %s from %s", group.Name, sender.Name)
		},
		DomainEvent:   in.Event,
		DomainPayload: view,
		EchoActor:     true,
	})
	if err != nil {
		return nil, err
	}
	return view(sender.ID).(*models.MessageView), nil
}

// canMessage applies the direct-message rule: faculty may message anyone,
// others only acquaintances or users they already have a thread with.
func (s *MessagingService) canMessage(ctx context.Context, sender *models.User, receiverID string) (bool, error) {
	if sender.IsFaculty() {
		return true, nil
	}
	acquainted, err := s.friendships.AreAcquainted(ctx, sender.ID, receiverID)
	if err != nil {
		return false, apperrors.Storage(err, "check acquaintance")
	}
	if acquainted {
		return true, nil
	}
	exists, err := s.messages.ExistsBetween(ctx, sender.ID, receiverID)
	if err != nil {
		return false, apperrors.Storage(err, "check conversation")
	}
	return exists, nil
}

func (s *MessagingService) sendDirect(ctx context.Context, sender *models.User, in SendMessageInput) (*models.MessageView, error) {
	if in.ReceiverID == sender.ID {
		return nil, apperrors.InvalidInput("Cannot send a message to yourself")
	}
	receiver, err := s.users.GetByID(ctx, in.ReceiverID)
	if err != nil {
		return nil, lookupErr(err, "Receiver not found", "get receiver")
	}

	ok, err := s.canMessage(ctx, sender, receiver.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Forbidden("You can only message acquaintances or reply to existing conversations")
	}

	msg := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    in.Content,
		CreatedAt:  s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.Storage(err, "create message")
	}

	receiverSummary := receiver.Summary()
	view := func(viewer string) interface{} {
		v := s.populate(msg, sender)
		v.Receiver = &receiverSummary
		v.IsSentByMe = viewer == sender.ID
		return v
	}

	err = s.router.Fanout(ctx, Event{
		Audience:  AudienceDirect,
		Actor:     sender.ID,
		Recipient: receiver.ID,
		Subject:   models.DirectMessage{SenderID: sender.ID, MessageID: msg.ID.Hex()},
		Render: func(count int) string {
			if count > 1 {
				return fmt.Sprintf("You received %d messages from %s", count, sender.Name)
			}
			return fmt.Sprintf("New message from %s", sender.Name)
		},
		DomainEvent:   in.Event,
		DomainPayload: view,
		EchoActor:     true,
	})
	if err != nil {
		return nil, err
	}
	return view(sender.ID).(*models.MessageView), nil
}

func (s *MessagingService) populate(msg *models.Message, sender *models.User) *models.MessageView {
	return &models.MessageView{
		ID:        msg.ID.Hex(),
		Sender:    sender.Summary(),
		GroupID:   msg.GroupID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

// History returns the direct conversation between userID and otherID,
// subject to the same rule as sending.
func (s *MessagingService) History(ctx context.Context, userID, otherID string) ([]models.MessageView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}
	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}
	ok, err := s.canMessage(ctx, user, other.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Forbidden("You can only view conversations with acquaintances")
	}

	msgs, err := s.messages.Conversation(ctx, user.ID, other.ID)
	if err != nil {
		return nil, apperrors.Storage(err, "load conversation")
	}

	people := map[string]*models.User{user.ID: user, other.ID: other}
	views := make([]models.MessageView, 0, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		from, to := people[m.SenderID], people[m.ReceiverID]
		if from == nil || to == nil {
			continue
		}
		v := s.populate(m, from)
		toSummary := to.Summary()
		v.Receiver = &toSummary
		v.IsSentByMe = m.SenderID == user.ID
		views = append(views, *v)
	}
	return views, nil
}

// GroupHistory returns the messages of a group to one of its members.
func (s *MessagingService) GroupHistory(ctx context.Context, userID, groupID string) ([]models.MessageView, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, lookupErr(err, "Group not found", "get group")
	}
	if !group.IsMember(userID) {
		return nil, apperrors.Forbidden("You are not a member of this group")
	}

	msgs, err := s.messages.GroupHistory(ctx, group.ID.Hex())
	if err != nil {
		return nil, apperrors.Storage(err, "load group history")
	}

	senders, err := s.usersByID(ctx, senderIDs(msgs))
	if err != nil {
		return nil, err
	}
	summary := group.Summary()
	views := make([]models.MessageView, 0, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		from, ok := senders[m.SenderID]
		if !ok {
			from = &models.User{ID: m.SenderID, Name: "Unknown user"}
		}
		v := s.populate(m, from)
		v.Group = &summary
		v.IsSentByMe = m.SenderID == userID
		views = append(views, *v)
	}
	return views, nil
}

func (s *MessagingService) usersByID(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Storage(err, "load users")
	}
	out := make(map[string]*models.User, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func senderIDs(msgs []models.Message) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; ok {
			continue
		}
		seen[m.SenderID] = struct{}{}
		ids = append(ids, m.SenderID)
	}
	return ids
}

// ResetUnread zeroes the caller's unread counter in a group.
func (s *MessagingService) ResetUnread(ctx context.Context, userID, groupID string) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return lookupErr(err, "Group not found", "get group")
	}
	if !group.IsMember(userID) {
		return apperrors.Forbidden("You are not a member of this group")
	}
	if err := s.groups.ResetUnread(ctx, group.ID, userID); err != nil {
		return apperrors.Storage(err, "reset unread count")
	}
	return nil
}
