package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
)

func TestFeedListener_BroadcastsExternalDeletions(t *testing.T) {
	e := newEnv(t)
	listener := NewFeedListener(e.notifications, e.transport, e.ledger)
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Stop()

	e.ledger.Remember("local")
	e.notifications.feed <- "local"
	e.notifications.feed <- "external"

	require.Eventually(t, func() bool {
		return len(e.transport.broadcasts(realtime.EventNotificationDeleted)) == 1
	}, time.Second, 5*time.Millisecond)

	frames := e.transport.broadcasts(realtime.EventNotificationDeleted)
	assert.Equal(t, models.NotificationIDPayload{NotificationID: "external"}, frames[0].Payload)
}

func TestFeedListener_LocalDeletionIsAnnouncedOnce(t *testing.T) {
	e := newEnv(t)
	listener := NewFeedListener(e.notifications, e.transport, e.ledger)
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Stop()

	n := e.notifications.put(models.Notification{UserID: "bob", Type: models.KindLike, RelatedID: "p1"})
	require.NoError(t, e.notifySvc.Delete(context.Background(), "bob", n.ID.Hex()))
	e.notifications.feed <- n.ID.Hex()
	e.notifications.feed <- "marker"

	require.Eventually(t, func() bool {
		return len(e.transport.broadcasts(realtime.EventNotificationDeleted)) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.NotificationIDPayload{NotificationID: "marker"},
		e.transport.broadcasts(realtime.EventNotificationDeleted)[0].Payload)
	assert.Len(t, e.transport.to("bob", realtime.EventNotificationDeleted), 1)
}

func TestFeedListener_StopIsIdempotent(t *testing.T) {
	e := newEnv(t)
	listener := NewFeedListener(e.notifications, e.transport, e.ledger)
	require.NoError(t, listener.Start(context.Background()))
	listener.Stop()
	listener.Stop()
}
