package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

const feedRetryDelay = 5 * time.Second

// FeedListener follows the notification change feed and broadcasts
// deletions made outside this process, such as maintenance scripts.
// Its lifetime is bounded by Start and Stop.
type FeedListener struct {
	repo       repositories.NotificationRepository
	transport  realtime.Transport
	ledger     *DeletionLedger
	retryDelay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewFeedListener(repo repositories.NotificationRepository, transport realtime.Transport, ledger *DeletionLedger) *FeedListener {
	return &FeedListener{repo: repo, transport: transport, ledger: ledger, retryDelay: feedRetryDelay}
}

// Start opens the change feed. It fails if the feed cannot be opened at all.
func (f *FeedListener) Start(ctx context.Context) error {
	stream, err := f.repo.WatchDeletions(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	f.mu.Lock()
	f.cancel = cancel
	f.done = done
	f.mu.Unlock()

	go func() {
		defer close(done)
		f.run(runCtx, stream)
	}()
	logger.Info("notification change feed subscribed")
	return nil
}

// Stop closes the feed and waits for the listener to exit.
func (f *FeedListener) Stop() {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Info("notification change feed closed")
}

func (f *FeedListener) run(ctx context.Context, stream repositories.DeletionStream) {
	for {
		f.consume(ctx, stream)
		_ = stream.Close(context.Background())
		if ctx.Err() != nil {
			return
		}

		// reopen after the stream broke
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(f.retryDelay):
			}
			s, err := f.repo.WatchDeletions(ctx)
			if err == nil {
				stream = s
				break
			}
			logger.Warn("reopen notification change feed", zap.Error(err))
		}
	}
}

func (f *FeedListener) consume(ctx context.Context, stream repositories.DeletionStream) {
	for {
		id, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				logger.Warn("notification change feed interrupted", zap.Error(err))
			}
			return
		}
		if f.ledger.Claim(id) {
			continue
		}
		broadcast(ctx, f.transport, realtime.EventNotificationDeleted, models.NotificationIDPayload{NotificationID: id})
	}
}
