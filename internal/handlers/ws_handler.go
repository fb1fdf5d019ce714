package handlers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

// WSHandler upgrades authenticated requests to realtime sessions
type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect expects the token query parameter to have been resolved by the
// auth middleware; the session is bound to that user's channel.
func (h *WSHandler) Connect(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.hub.ServeWS(c.Response(), c.Request(), userID); err != nil {
		// the upgrader has already written the failure response
		logger.Warn("websocket upgrade failed", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}
