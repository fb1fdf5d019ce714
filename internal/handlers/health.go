package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/pkg/worker"
)

type HealthHandler struct {
	hub  *realtime.Hub
	pool *worker.Pool
}

func NewHealthHandler(hub *realtime.Hub, pool *worker.Pool) *HealthHandler {
	return &HealthHandler{hub: hub, pool: pool}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	body := echo.Map{
		"status":  "healthy",
		"service": "campus-connect-api",
	}
	if h.hub != nil {
		body["connections"] = h.hub.Connections()
	}
	if h.pool != nil {
		body["fanout_pool"] = h.pool.Metrics()
	}
	return c.JSON(http.StatusOK, body)
}
