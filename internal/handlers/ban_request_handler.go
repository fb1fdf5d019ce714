package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/services"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

// BanRequestHandler handles faculty ban requests and their admin review
type BanRequestHandler struct {
	bans *services.BanRequestService
}

func NewBanRequestHandler(bans *services.BanRequestService) *BanRequestHandler {
	return &BanRequestHandler{bans: bans}
}

func (h *BanRequestHandler) RegisterBanRequestRoutes(g *echo.Group) {
	g.POST("/ban-requests", h.CreateBanRequest)
	g.GET("/ban-requests", h.GetBanRequests)
	g.PUT("/ban-requests/:id/approve", h.ApproveBanRequest)
	g.PUT("/ban-requests/:id/reject", h.RejectBanRequest)
}

func (h *BanRequestHandler) CreateBanRequest(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateBanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ban, err := h.bans.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ban)
}

// GetBanRequests lists ban requests; ?status=pending|approved|rejected filters them
func (h *BanRequestHandler) GetBanRequests(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	status := models.BanRequestStatus(c.QueryParam("status"))
	switch status {
	case "", models.BanRequestPending, models.BanRequestApproved, models.BanRequestRejected:
	default:
		return apperrors.InvalidInput("status must be one of: pending approved rejected")
	}
	reqs, err := h.bans.List(c.Request().Context(), userID, status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *BanRequestHandler) ApproveBanRequest(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	ban, err := h.bans.Approve(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ban)
}

func (h *BanRequestHandler) RejectBanRequest(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	ban, err := h.bans.Reject(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ban)
}
