package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

// ErrEmptyChannel is returned when joining without an identity.
var ErrEmptyChannel = errors.New("channel id is empty")

// MessageHandler processes an inbound sendMessage frame for an authenticated user.
type MessageHandler func(ctx context.Context, userID string, data json.RawMessage) error

// Hub is the session registry. It binds connections to channels and
// delivers frames to them. A connection may be bound to many channels and
// a channel may have many connections (one per device).
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	channels map[string]map[*Client]struct{}

	onMessage MessageHandler
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		channels: make(map[string]map[*Client]struct{}),
	}
}

// SetMessageHandler installs the handler for inbound sendMessage frames.
func (h *Hub) SetMessageHandler(fn MessageHandler) {
	h.mu.Lock()
	h.onMessage = fn
	h.mu.Unlock()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// unregister drops the connection from every channel and closes its queue.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for channel := range c.channels {
		if members, ok := h.channels[channel]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.channels, channel)
			}
		}
	}
	c.channels = nil
	close(c.send)
}

// Join binds c to channel. An empty channel is logged and rejected.
func (h *Hub) Join(c *Client, channel string) error {
	if channel == "" {
		logger.Warn("join without identity ignored", zap.String("conn_id", c.ID))
		return ErrEmptyChannel
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return nil
	}
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[*Client]struct{})
		h.channels[channel] = members
	}
	members[c] = struct{}{}
	c.channels[channel] = struct{}{}
	return nil
}

// Emit delivers to every connection bound to channel on this process.
func (h *Hub) Emit(ctx context.Context, channel, event string, payload interface{}) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	h.deliver(channel, frame)
	return nil
}

// BroadcastAll delivers to every connection on this process.
func (h *Hub) BroadcastAll(ctx context.Context, event string, payload interface{}) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	h.deliverAll(frame)
	return nil
}

func (h *Hub) deliver(channel string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.channels[channel] {
		c.enqueue(frame)
	}
}

func (h *Hub) deliverAll(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.enqueue(frame)
	}
}

// Bound returns how many connections are bound to channel.
func (h *Hub) Bound(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Connections returns the number of live connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleFrame dispatches one inbound frame from c.
func (h *Hub) handleFrame(ctx context.Context, c *Client, frame Frame) {
	switch frame.Event {
	case EventJoin:
		var identity string
		if err := json.Unmarshal(frame.Data, &identity); err != nil {
			logger.Warn("malformed join frame", zap.String("conn_id", c.ID), zap.Error(err))
			return
		}
		if identity != "" && identity != c.UserID {
			logger.Warn("join for foreign identity ignored",
				zap.String("conn_id", c.ID),
				zap.String("user_id", c.UserID),
				zap.String("requested", identity),
			)
			return
		}
		_ = h.Join(c, identity)

	case EventSendMessage:
		h.mu.RLock()
		fn := h.onMessage
		h.mu.RUnlock()
		if fn == nil {
			return
		}
		if err := fn(ctx, c.UserID, frame.Data); err != nil {
			c.replyError(err)
		}

	default:
		logger.Debug("unknown inbound event", zap.String("event", frame.Event))
	}
}
