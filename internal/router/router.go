package router

import (
	"github.com/labstack/echo/v4"

	"github.com/anonto42/campus-connect/backend/internal/handlers"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

// SetupRoutes configures all application routes on e.
func SetupRoutes(e *echo.Echo, app *App) {
	health := handlers.NewHealthHandler(app.Hub, app.Pool)
	e.GET("/health", health.HealthCheck)

	// --- Unprotected routes for authentication ---
	if app.Firebase != nil {
		authGroup := e.Group("/api/v1/auth")
		handlers.NewAuthHandler(app.Users, app.Firebase, app.Config.Auth.JWTSecret).RegisterAuthRoutes(authGroup)
		logger.Info("Auth routes configured.")
	}

	// --- Realtime sessions, token passed as ?token= ---
	messages := handlers.NewMessageHandler(app.Messaging)
	app.Hub.SetMessageHandler(messages.Inbound())
	e.GET("/ws", handlers.NewWSHandler(app.Hub).Connect, app.Auth.Middleware())

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(app.Auth.Middleware())

	handlers.NewUserHandler(app.Users).RegisterProfileRoutes(api)
	handlers.NewNotificationHandler(app.Notifications).RegisterNotificationRoutes(api)
	messages.RegisterMessageRoutes(api)
	handlers.NewGroupHandler(app.Groups).RegisterGroupRoutes(api)
	handlers.NewFriendshipHandler(app.Friendships).RegisterFriendshipRoutes(api)
	handlers.NewPostHandler(app.Posts).RegisterPostRoutes(api)
	handlers.NewBanRequestHandler(app.BanRequests).RegisterBanRequestRoutes(api)

	logger.Info("All routes configured.")
}
