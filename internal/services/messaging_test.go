package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

func TestMessaging_DirectMessageScenario(t *testing.T) {
	e := newEnv(t, alice, bob)
	ctx := context.Background()

	_, err := e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: "hi"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	assert.Empty(t, e.messages.msgs)
	assert.Zero(t, e.notifications.count())

	require.NoError(t, e.friendships.AddAcquaintance(ctx, "alice", "bob"))

	view, err := e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: "hi"})
	require.NoError(t, err)
	assert.True(t, view.IsSentByMe)
	assert.Equal(t, "bob", view.Receiver.ID)
	require.Len(t, e.messages.msgs, 1)

	received := e.transport.to("bob", realtime.EventReceiveMessage)
	require.Len(t, received, 1)
	assert.False(t, received[0].Payload.(*models.MessageView).IsSentByMe)
	assert.Equal(t, "hi", received[0].Payload.(*models.MessageView).Content)
	echo := e.transport.to("alice", realtime.EventReceiveMessage)
	require.Len(t, echo, 1)
	assert.True(t, echo[0].Payload.(*models.MessageView).IsSentByMe)

	first := e.notificationFor(t, "bob", models.KindNewMessage)
	assert.Equal(t, 1, first.Count)
	assert.Equal(t, "New message from Alice", first.Message)

	e.advance(30 * time.Minute)
	_, err = e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: "hi again"})
	require.NoError(t, err)

	second := e.notificationFor(t, "bob", models.KindNewMessage)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, "You received 2 messages from Alice", second.Message)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
	assert.Len(t, e.transport.to("bob", realtime.EventNewNotification), 2)
	assert.Empty(t, e.transport.to("alice", realtime.EventNewNotification))
}

func TestMessaging_ReplyToExistingThreadIsAllowed(t *testing.T) {
	e := newEnv(t, alice, faculty)
	ctx := context.Background()

	_, err := e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "prof", Content: "question"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "prof", ReceiverID: "alice", Content: "office hours?"})
	require.NoError(t, err, "faculty may message anyone")

	_, err = e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "prof", Content: "yes please"})
	require.NoError(t, err)
	assert.Len(t, e.messages.msgs, 2)
}

func TestMessaging_Validation(t *testing.T) {
	e := newEnv(t, alice, bob)
	ctx := context.Background()

	cases := []struct {
		name string
		in   SendMessageInput
		kind apperrors.Kind
	}{
		{"blank content", SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: "   "}, apperrors.KindInvalidInput},
		{"too long", SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: strings.Repeat("a", models.MaxMessageLength+1)}, apperrors.KindInvalidInput},
		{"no target", SendMessageInput{SenderID: "alice", Content: "hi"}, apperrors.KindInvalidInput},
		{"two targets", SendMessageInput{SenderID: "alice", ReceiverID: "bob", GroupID: "65f000000000000000000000", Content: "hi"}, apperrors.KindInvalidInput},
		{"self", SendMessageInput{SenderID: "alice", ReceiverID: "alice", Content: "hi"}, apperrors.KindInvalidInput},
		{"unknown receiver", SendMessageInput{SenderID: "alice", ReceiverID: "zed", Content: "hi"}, apperrors.KindNotFound},
		{"unknown group", SendMessageInput{SenderID: "alice", GroupID: "65f000000000000000000000", Content: "hi"}, apperrors.KindNotFound},
		{"malformed group", SendMessageInput{SenderID: "alice", GroupID: "nope", Content: "hi"}, apperrors.KindInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.messaging.SendMessage(ctx, tc.in)
			assert.True(t, apperrors.IsKind(err, tc.kind), "got %v", err)
		})
	}
	assert.Empty(t, e.messages.msgs)
}

func newGroup(t *testing.T, e *env, members ...string) *models.Group {
	t.Helper()
	g, err := e.groupSvc.Create(context.Background(), "prof", models.CreateGroupRequest{Name: "Algorithms", MemberIDs: members})
	require.NoError(t, err)
	return g
}

func TestMessaging_GroupUnreadCounts(t *testing.T) {
	e := newEnv(t, alice, bob, faculty)
	ctx := context.Background()
	g := newGroup(t, e, "alice", "bob")
	gid := g.ID.Hex()

	_, err := e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "alice", GroupID: gid, Content: "hello"})
	require.NoError(t, err)
	stored, err := e.groups.GetByID(ctx, gid)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"prof": 1, "alice": 0, "bob": 1}, stored.UnreadCounts)

	_, err = e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "bob", GroupID: gid, Content: "hey"})
	require.NoError(t, err)
	stored, err = e.groups.GetByID(ctx, gid)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"prof": 2, "alice": 1, "bob": 0}, stored.UnreadCounts)

	require.NoError(t, e.messaging.ResetUnread(ctx, "prof", gid))
	stored, err = e.groups.GetByID(ctx, gid)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UnreadCounts["prof"])

	profNote := e.notificationFor(t, "prof", models.KindNewGroupMessage)
	assert.Equal(t, 2, profNote.Count)
	assert.Equal(t, "2 new messages in group Algorithms from Bob", profNote.Message)
	assert.Equal(t, gid, profNote.RelatedID)
	aliceNote := e.notificationFor(t, "alice", models.KindNewGroupMessage)
	assert.Equal(t, 1, aliceNote.Count)

	assert.Len(t, e.transport.to("alice", realtime.EventReceiveMessage), 2)
	assert.Len(t, e.transport.to("prof", realtime.EventReceiveMessage), 2)
}

func TestMessaging_GroupRequiresMembership(t *testing.T) {
	e := newEnv(t, alice, bob, carol, faculty)
	ctx := context.Background()
	g := newGroup(t, e, "alice")

	_, err := e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "carol", GroupID: g.ID.Hex(), Content: "let me in"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = e.messaging.GroupHistory(ctx, "carol", g.ID.Hex())
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	assert.Empty(t, e.messages.msgs)
}

func TestMessaging_WebsocketEventName(t *testing.T) {
	e := newEnv(t, alice, bob)
	ctx := context.Background()
	require.NoError(t, e.friendships.AddAcquaintance(ctx, "alice", "bob"))

	_, err := e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: "hi", Event: realtime.EventNewMessage})
	require.NoError(t, err)
	assert.Len(t, e.transport.to("bob", realtime.EventNewMessage), 1)
	assert.Empty(t, e.transport.to("bob", realtime.EventReceiveMessage))
}

func TestMessaging_History(t *testing.T) {
	e := newEnv(t, alice, bob, carol, faculty)
	ctx := context.Background()
	require.NoError(t, e.friendships.AddAcquaintance(ctx, "alice", "bob"))

	_, err := e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: "one"})
	require.NoError(t, err)
	_, err = e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "bob", ReceiverID: "alice", Content: "two"})
	require.NoError(t, err)

	history, err := e.messaging.History(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsSentByMe)
	assert.False(t, history[1].IsSentByMe)
	assert.Equal(t, "Bob", history[1].Sender.Name)

	_, err = e.messaging.History(ctx, "carol", "alice")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	g := newGroup(t, e, "alice")
	_, err = e.messaging.SendMessage(ctx, SendMessageInput{SenderID: "prof", GroupID: g.ID.Hex(), Content: "welcome"})
	require.NoError(t, err)
	groupHistory, err := e.messaging.GroupHistory(ctx, "alice", g.ID.Hex())
	require.NoError(t, err)
	require.Len(t, groupHistory, 1)
	assert.Equal(t, "Prof", groupHistory[0].Sender.Name)
	assert.False(t, groupHistory[0].IsSentByMe)
}
