package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/whiteboard/board/config"
	"github.com/wricardo/whiteboard/logging"
	"github.com/wricardo/whiteboard/transport/websocket"
)

const (
	publishTimeout = 2 * time.Second
	retryDelay     = 2 * time.Second
)

// Bridge relays frames through a Redis channel so every server instance
// fans out the same frames in the same order. It implements
// websocket.Publisher and stores nothing in Redis.
type Bridge struct {
	client  *redis.Client
	channel string
	local   websocket.Publisher
	doneCh  chan struct{}
}

// NewBridge connects to Redis and returns a bridge that delivers received
// frames to local.
func NewBridge(cfg config.RedisConfig, local websocket.Publisher) (*Bridge, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewBridgeWithClient(client, cfg.Channel, local), nil
}

// NewBridgeWithClient wraps an existing client without checking it
func NewBridgeWithClient(client *redis.Client, channel string, local websocket.Publisher) *Bridge {
	if channel == "" {
		channel = "whiteboard:frames"
	}
	return &Bridge{
		client:  client,
		channel: channel,
		local:   local,
		doneCh:  make(chan struct{}),
	}
}

// Publish sends the frame to Redis. If Redis is unreachable the frame is
// delivered to this instance only.
func (b *Bridge) Publish(frame []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.client.Publish(ctx, b.channel, frame).Err(); err != nil {
		logging.L().Warn().Err(err).Str(logging.FieldChannel, b.channel).Msg("redis publish failed, delivering locally")
		b.local.Publish(frame)
	}
}

// Done is closed when Run exits
func (b *Bridge) Done() <-chan struct{} { return b.doneCh }

// Run subscribes to the channel and publishes every message to the local
// hub until ctx is done. Subscription errors are retried.
func (b *Bridge) Run(ctx context.Context) {
	defer close(b.doneCh)
	l := logging.L().With().Str(logging.FieldChannel, b.channel).Logger()

	for {
		err := b.runSubscription(ctx)
		if ctx.Err() != nil {
			return
		}
		l.Warn().Err(err).Msg("redis subscription ended, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

func (b *Bridge) runSubscription(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// wait for the subscription to be active
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	logging.L().Info().Str(logging.FieldChannel, b.channel).Msg("redis subscription active")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription channel closed")
			}
			b.local.Publish([]byte(msg.Payload))
		}
	}
}

// Close releases the Redis client
func (b *Bridge) Close() error {
	return b.client.Close()
}
