package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/services"
)

// FriendshipHandler handles HTTP requests related to friend requests and acquaintances
type FriendshipHandler struct {
	friendships *services.FriendshipService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendships *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/requests", h.SendFriendRequest)
	g.GET("/friends/requests/pending", h.GetPendingFriendRequests)
	g.GET("/friends/requests/sent", h.GetSentFriendRequests)
	g.PUT("/friends/requests/:id/accept", h.AcceptFriendRequest)
	g.PUT("/friends/requests/:id/decline", h.DeclineFriendRequest)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:id", h.DeleteFriend)
}

// SendFriendRequest handles sending a friend request
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	fr, err := h.friendships.SendRequest(c.Request().Context(), userID, req.ReceiverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, fr)
}

// GetPendingFriendRequests lists requests addressed to the caller
func (h *FriendshipHandler) GetPendingFriendRequests(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	reqs, err := h.friendships.ListIncoming(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *FriendshipHandler) GetSentFriendRequests(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	reqs, err := h.friendships.ListOutgoing(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.friendships.Accept(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request accepted"})
}

func (h *FriendshipHandler) DeclineFriendRequest(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.friendships.Decline(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request declined"})
}

// GetFriends retrieves the caller's acquaintances
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	friends, err := h.friendships.ListAcquaintances(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, friends)
}

// DeleteFriend removes an acquaintance in both directions
func (h *FriendshipHandler) DeleteFriend(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.friendships.RemoveAcquaintance(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
