package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/pkg/logger"
)

// RedisRelay is a Transport that delivers locally and republishes every
// emission on a Redis channel so sessions held by other instances see it.
type RedisRelay struct {
	hub     *Hub
	rdb     *redis.Client
	channel string
	origin  string

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

type envelope struct {
	Origin    string          `json:"origin"`
	Channel   string          `json:"channel,omitempty"`
	Broadcast bool            `json:"broadcast,omitempty"`
	Frame     json.RawMessage `json:"frame"`
}

func NewRedisRelay(hub *Hub, rdb *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{
		hub:     hub,
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
	}
}

func (r *RedisRelay) Emit(ctx context.Context, channel, event string, payload interface{}) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	r.hub.deliver(channel, frame)
	return r.publish(ctx, envelope{Origin: r.origin, Channel: channel, Frame: frame})
}

func (r *RedisRelay) BroadcastAll(ctx context.Context, event string, payload interface{}) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	r.hub.deliverAll(frame)
	return r.publish(ctx, envelope{Origin: r.origin, Broadcast: true, Frame: frame})
}

func (r *RedisRelay) publish(ctx context.Context, env envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	return nil
}

// Start subscribes to the relay channel and delivers remote emissions to
// the local hub until Close is called.
func (r *RedisRelay) Start(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.pubsub = pubsub
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			r.handle(msg.Payload)
		}
	}()
	logger.Info("realtime relay subscribed", zap.String("channel", r.channel))
	return nil
}

func (r *RedisRelay) handle(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		logger.Warn("malformed relay envelope", zap.Error(err))
		return
	}
	if env.Origin == r.origin {
		return
	}
	if env.Broadcast {
		r.hub.deliverAll(env.Frame)
		return
	}
	r.hub.deliver(env.Channel, env.Frame)
}

// Close stops the subscription and waits for the delivery loop to exit.
func (r *RedisRelay) Close() error {
	r.mu.Lock()
	pubsub, done := r.pubsub, r.done
	r.pubsub, r.done = nil, nil
	r.mu.Unlock()
	if pubsub == nil {
		return nil
	}
	err := pubsub.Close()
	<-done
	return err
}
