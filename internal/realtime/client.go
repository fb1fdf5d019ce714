package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8 * 1024

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection of an authenticated user.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ID     string
	UserID string

	// guarded by hub.mu
	channels map[string]struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		ID:       uuid.NewString(),
		UserID:   userID,
		channels: make(map[string]struct{}),
	}
}

// enqueue must be called with hub.mu held. A full queue drops the frame.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		logger.Debug("send queue full, frame dropped",
			zap.String("conn_id", c.ID),
			zap.String("user_id", c.UserID),
		)
	}
}

func (c *Client) replyError(err error) {
	msg := apperrors.GenericMessage
	if appErr, ok := apperrors.As(err); ok {
		msg = appErr.PublicMessage()
	} else {
		logger.Error("inbound event failed", zap.String("user_id", c.UserID), zap.Error(err))
	}
	frame, encErr := encodeFrame(EventError, map[string]string{"message": msg})
	if encErr != nil {
		return
	}
	c.hub.mu.RLock()
	if _, ok := c.hub.clients[c]; ok {
		c.enqueue(frame)
	}
	c.hub.mu.RUnlock()
}

// ServeWS upgrades the request, registers the connection and binds it to
// the user's own channel. It returns once the pumps are running.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := newClient(h, conn, userID)
	h.register(c)
	if err := h.Join(c, userID); err != nil {
		h.unregister(c)
		_ = conn.Close()
		return err
	}
	logger.Debug("websocket connected", zap.String("conn_id", c.ID), zap.String("user_id", userID))

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump feeds inbound frames to the hub until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
		logger.Debug("websocket disconnected", zap.String("conn_id", c.ID), zap.String("user_id", c.UserID))
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read failed", zap.String("conn_id", c.ID), zap.Error(err))
			}
			return
		}
		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			logger.Debug("malformed frame", zap.String("conn_id", c.ID), zap.Error(err))
			continue
		}
		c.hub.handleFrame(context.Background(), c, frame)
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
