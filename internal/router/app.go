package router

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/middleware"
	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/internal/services"
	"github.com/anonto42/campus-connect/backend/pkg/config"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
	"github.com/anonto42/campus-connect/backend/pkg/worker"
)

const (
	ledgerSize = 4096
	ledgerTTL  = 10 * time.Minute
)

// App holds the wired components of one server instance.
type App struct {
	Config *config.Config

	Users    repositories.UserRepository
	Auth     *middleware.TokenAuth
	Firebase middleware.TokenVerifier

	Hub       *realtime.Hub
	Relay     *realtime.RedisRelay
	Transport realtime.Transport
	Pool      *worker.Pool

	Notifications *services.NotificationService
	Messaging     *services.MessagingService
	Friendships   *services.FriendshipService
	Posts         *services.PostService
	BanRequests   *services.BanRequestService
	Groups        *services.GroupService
	Sweeper       *services.Sweeper
	Feed          *services.FeedListener
}

// Build migrates the stores and wires repositories, transport and services.
// firebaseAuth may be nil when Firebase sign-in is not configured.
func Build(ctx context.Context, cfg *config.Config, db *config.DB, firebaseAuth middleware.TokenVerifier) (*App, error) {
	if err := db.Postgres.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Acquaintance{},
		&models.FriendRequest{},
		&models.BanRequest{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("PostgreSQL auto-migrations completed")

	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(db.Postgres)
	banRepo := repositories.NewPostgresBanRequestRepository(db.Postgres)

	notificationRepo := repositories.NewMongoNotificationRepository(db.MongoDB)
	messageRepo := repositories.NewMongoMessageRepository(db.MongoDB)
	groupRepo := repositories.NewMongoGroupRepository(db.MongoDB)
	postRepo := repositories.NewMongoPostRepository(db.MongoDB)

	if err := notificationRepo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("notification indexes: %w", err)
	}
	if err := messageRepo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("message indexes: %w", err)
	}

	pool, err := worker.New("fanout", cfg.Worker.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("fan-out pool: %w", err)
	}
	ledger, err := services.NewDeletionLedger(ledgerSize, ledgerTTL)
	if err != nil {
		return nil, fmt.Errorf("deletion ledger: %w", err)
	}

	app := &App{
		Config:   cfg,
		Users:    userRepo,
		Firebase: firebaseAuth,
		Hub:      realtime.NewHub(),
		Pool:     pool,
	}
	app.Transport = app.Hub
	if db.Redis != nil {
		app.Relay = realtime.NewRedisRelay(app.Hub, db.Redis, cfg.Redis.Channel)
		app.Transport = app.Relay
		logger.Info("realtime relay enabled", zap.String("channel", cfg.Redis.Channel))
	}

	app.Auth = middleware.NewTokenAuth(cfg.Auth.JWTSecret)
	if firebaseAuth != nil {
		app.Auth.WithFirebase(firebaseAuth, userRepo)
	}

	aggregator := services.NewAggregator(notificationRepo, app.Transport, ledger)
	fanout := services.NewRouter(userRepo, aggregator, app.Transport, pool)

	app.Notifications = services.NewNotificationService(notificationRepo, app.Transport, ledger)
	app.Messaging = services.NewMessagingService(messageRepo, groupRepo, userRepo, friendshipRepo, fanout)
	app.Friendships = services.NewFriendshipService(friendshipRepo, userRepo, aggregator, fanout)
	app.Posts = services.NewPostService(postRepo, userRepo, fanout)
	app.BanRequests = services.NewBanRequestService(banRepo, userRepo, fanout)
	app.Groups = services.NewGroupService(groupRepo, userRepo)
	app.Sweeper = services.NewSweeper(notificationRepo, sweepTransport(cfg.Notifications.WatchDeletions, app.Hub, app.Transport), ledger, cfg.Notifications.SweepInterval)
	// every instance sees the change feed, so announce only to local sessions
	app.Feed = services.NewFeedListener(notificationRepo, app.Hub, ledger)

	return app, nil
}

// sweepTransport picks where swept deletions are announced. With the change
// feed on, every other instance hears the delete from its own listener, so the
// sweeper only tells local sessions.
func sweepTransport(watchDeletions bool, hub *realtime.Hub, transport realtime.Transport) realtime.Transport {
	if watchDeletions {
		return hub
	}
	return transport
}
