package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/handlers"
	"github.com/anonto42/campus-connect/backend/internal/middleware"
	"github.com/anonto42/campus-connect/backend/internal/router"
	"github.com/anonto42/campus-connect/backend/internal/validators"
	"github.com/anonto42/campus-connect/backend/pkg/config"
	"github.com/anonto42/campus-connect/backend/pkg/firebase"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

func main() {
	if err := logger.Init("info", "json"); err != nil {
		panic(err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logger.Fatal("failed to configure logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Firebase sign-in is optional
	var verifier middleware.TokenVerifier
	if cfg.Auth.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.Auth.FirebaseCredentialsPath)
		if err != nil {
			logger.Fatal("failed to initialize Firebase", zap.Error(err))
		}
		verifier = firebaseApp.AuthClient
	}

	app, err := router.Build(ctx, cfg, db, verifier)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	if app.Relay != nil {
		if err := app.Relay.Start(ctx); err != nil {
			logger.Fatal("failed to start realtime relay", zap.Error(err))
		}
		defer func() { _ = app.Relay.Close() }()
	}

	if cfg.Notifications.WatchDeletions {
		if err := app.Feed.Start(ctx); err != nil {
			// change streams need a replica set; the sweeper still runs
			logger.Warn("notification change feed unavailable", zap.Error(err))
		} else {
			defer app.Feed.Stop()
		}
	}

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		app.Sweeper.Run(ctx)
	}()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e)
	router.SetupRoutes(e, app)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	<-sweepDone
	app.Pool.Release(cfg.Server.ShutdownTimeout)
}
