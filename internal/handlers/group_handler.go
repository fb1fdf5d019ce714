package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/services"
)

type GroupHandler struct {
	groups *services.GroupService
}

func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups", h.GetMyGroups)
	g.GET("/groups/:id", h.GetGroup)
	g.POST("/groups/:id/members", h.AddMember)
	g.DELETE("/groups/:id/members/:userId", h.RemoveMember)
}

func (h *GroupHandler) CreateGroup(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	group, err := h.groups.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) GetMyGroups(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	groups, err := h.groups.ListMine(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) GetGroup(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	group, err := h.groups.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) AddMember(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.GroupMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	group, err := h.groups.AddMember(c.Request().Context(), userID, c.Param("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) RemoveMember(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	group, err := h.groups.RemoveMember(c.Request().Context(), userID, c.Param("id"), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, group)
}
