package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/internal/services"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

// MessageHandler handles direct and group messaging over HTTP
type MessageHandler struct {
	messaging *services.MessagingService
}

func NewMessageHandler(messaging *services.MessagingService) *MessageHandler {
	return &MessageHandler{messaging: messaging}
}

func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messages", h.SendMessage)
	g.GET("/messages/:userId", h.GetConversation)
	g.GET("/groups/:id/messages", h.GetGroupMessages)
	g.PUT("/groups/:id/read", h.MarkGroupRead)
}

// SendMessage sends to exactly one of receiverId or groupId
func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	view, err := h.messaging.SendMessage(c.Request().Context(), services.SendMessageInput{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		GroupID:    req.GroupID,
		Content:    req.Content,
		Event:      realtime.EventReceiveMessage,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *MessageHandler) GetConversation(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	msgs, err := h.messaging.History(c.Request().Context(), userID, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *MessageHandler) GetGroupMessages(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	msgs, err := h.messaging.GroupHistory(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// MarkGroupRead resets the caller's unread counter for a group
func (h *MessageHandler) MarkGroupRead(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.messaging.ResetUnread(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Inbound returns the websocket sendMessage handler. Messages sent over a
// socket are delivered as newMessage.
func (h *MessageHandler) Inbound() realtime.MessageHandler {
	return func(ctx context.Context, userID string, data json.RawMessage) error {
		var req models.SendMessageRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return apperrors.InvalidInput("Invalid message payload")
		}
		_, err := h.messaging.SendMessage(ctx, services.SendMessageInput{
			SenderID:   userID,
			ReceiverID: req.ReceiverID,
			GroupID:    req.GroupID,
			Content:    req.Content,
			Event:      realtime.EventNewMessage,
		})
		return err
	}
}
