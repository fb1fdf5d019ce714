// Package realtime keeps the registry of live websocket sessions and
// delivers named events to logical channels.
package realtime

import (
	"context"
	"encoding/json"
)

// Outbound event names.
const (
	EventNewMessage          = "newMessage"
	EventReceiveMessage      = "receiveMessage"
	EventNewNotification     = "newNotification"
	EventNotificationDeleted = "notificationDeleted"
	EventNotificationRead    = "notificationRead"
	EventNotificationViewed  = "notificationViewed"
	EventError               = "error"
)

// Inbound event names.
const (
	EventJoin        = "join"
	EventSendMessage = "sendMessage"
)

// Transport delivers events to channels. Emitting to a channel with no
// bound session is a silent no-op.
type Transport interface {
	Emit(ctx context.Context, channel, event string, payload interface{}) error
	BroadcastAll(ctx context.Context, event string, payload interface{}) error
}

// Frame is the wire format of every websocket message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}
