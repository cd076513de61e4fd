package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appsync "opsdesk/internal/application/sync"
	"opsdesk/internal/shared/goroutine"
	"opsdesk/internal/shared/logger"
)

const syncCompletedChannel = "opsdesk:sync:completed"

// RedisSyncEventBus publishes sync completion events over Redis Pub/Sub so
// sibling instances (dashboards, cache invalidators) can react without
// polling the run table.
type RedisSyncEventBus struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisSyncEventBus(client *redis.Client, log logger.Interface) *RedisSyncEventBus {
	return &RedisSyncEventBus{
		client: client,
		logger: log,
	}
}

// PublishSyncCompleted publishes a run completion event. Delivery is
// best-effort; the run table remains the source of truth.
func (b *RedisSyncEventBus) PublishSyncCompleted(ctx context.Context, event appsync.CompletedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sync completed event: %w", err)
	}

	if err := b.client.Publish(ctx, syncCompletedChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish sync completed event",
			"run_uid", event.RunUID,
			"error", err,
		)
		return fmt.Errorf("failed to publish sync completed event: %w", err)
	}

	b.logger.Debugw("sync completed event published",
		"run_uid", event.RunUID,
		"status", event.Status,
	)
	return nil
}

// SubscribeSyncCompleted subscribes to completion events with automatic
// reconnection and exponential backoff. Blocks until ctx is cancelled.
func (b *RedisSyncEventBus) SubscribeSyncCompleted(ctx context.Context, handler func(event appsync.CompletedEvent)) error {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		err := b.subscribe(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.logger.Warnw("sync event subscription disconnected, reconnecting",
			"channel", syncCompletedChannel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

func (b *RedisSyncEventBus) subscribe(ctx context.Context, handler func(event appsync.CompletedEvent)) error {
	pubsub := b.client.Subscribe(ctx, syncCompletedChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", syncCompletedChannel, err)
	}

	b.logger.Infow("subscribed to sync event channel",
		"channel", syncCompletedChannel,
	)

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("sync event channel closed",
					"channel", syncCompletedChannel,
				)
				return nil
			}

			payload := msg.Payload
			goroutine.SafeGo(b.logger, "sync-event-handler", func() {
				var event appsync.CompletedEvent
				if err := json.Unmarshal([]byte(payload), &event); err != nil {
					b.logger.Warnw("failed to unmarshal sync completed event",
						"payload", payload,
						"error", err,
					)
					return
				}
				handler(event)
			})
		}
	}
}

// NoopSyncEventPublisher is used when Redis is disabled.
type NoopSyncEventPublisher struct{}

func NewNoopSyncEventPublisher() *NoopSyncEventPublisher {
	return &NoopSyncEventPublisher{}
}

func (p *NoopSyncEventPublisher) PublishSyncCompleted(ctx context.Context, event appsync.CompletedEvent) error {
	return nil
}
