package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/worktally/backend/internal/domain/chat"
	"go.uber.org/zap"
)

// RedisChatRelay fans chat frames out to every subscriber of a
// workspace channel using Redis Pub/Sub. Delivery is fire-and-forget:
// publishing succeeds once Redis accepts the frame, and the publisher
// receives its own frame back like any other subscriber. Each Subscribe
// call holds its own Pub/Sub connection, so any number of sessions can
// listen on the same relay concurrently.
type RedisChatRelay struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisChatRelayOption is a functional option for configuring the relay
type RedisChatRelayOption func(*RedisChatRelay)

// WithRelayLogger sets the logger for the relay
func WithRelayLogger(logger *zap.Logger) RedisChatRelayOption {
	return func(r *RedisChatRelay) {
		r.logger = logger
	}
}

// NewRedisChatRelay creates a new Redis Pub/Sub chat relay
func NewRedisChatRelay(cfg RedisConfig, opts ...RedisChatRelayOption) (*RedisChatRelay, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	relay := &RedisChatRelay{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(relay)
	}

	return relay, nil
}

// NewRedisChatRelayWithClient creates a relay with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisChatRelayWithClient(client *redis.Client, opts ...RedisChatRelayOption) *RedisChatRelay {
	relay := &RedisChatRelay{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(relay)
	}

	return relay
}

// Publish sends a frame to every subscriber of the workspace channel,
// the publisher included
func (r *RedisChatRelay) Publish(ctx context.Context, key chat.ChannelKey, frame chat.RelayFrame) error {
	data, err := frame.Encode()
	if err != nil {
		r.logger.Error("Failed to marshal relay frame",
			zap.String("kind", string(frame.Kind)),
			zap.Error(err))
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	channel := key.RelayChannel()
	if err := r.client.Publish(ctx, channel, data).Err(); err != nil {
		r.logger.Error("Failed to publish relay frame",
			zap.String("channel", channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish frame: %w", err)
	}

	r.logger.Debug("Published relay frame",
		zap.String("kind", string(frame.Kind)),
		zap.String("message_id", frame.MessageID),
		zap.String("channel", channel))

	return nil
}

// Subscribe starts listening for frames on the workspace channel.
// The callback function is invoked for each received frame.
// This method should be called in a goroutine as it blocks until the
// context is cancelled. Every call opens its own Pub/Sub subscription;
// concurrent subscriptions on the same relay do not interfere.
func (r *RedisChatRelay) Subscribe(ctx context.Context, key chat.ChannelKey, callback func(frame chat.RelayFrame)) error {
	channel := key.RelayChannel()
	pubsub := r.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	r.logger.Info("Subscribed to chat relay channel",
		zap.String("channel", channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Chat relay subscription stopped",
				zap.String("channel", channel))
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				r.logger.Warn("Chat relay channel closed",
					zap.String("channel", channel))
				return nil
			}

			frame, err := chat.DecodeFrame([]byte(msg.Payload))
			if err != nil {
				r.logger.Error("Failed to decode relay frame",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			r.logger.Debug("Received relay frame",
				zap.String("kind", string(frame.Kind)),
				zap.String("message_id", frame.MessageID))

			// Call the callback in a separate goroutine to prevent blocking
			go func(f chat.RelayFrame) {
				defer func() {
					if rec := recover(); rec != nil {
						r.logger.Error("Panic in relay frame callback",
							zap.Any("panic", rec))
					}
				}()
				callback(f)
			}(frame)
		}
	}
}

// Close releases any resources held by the relay. Active subscriptions
// stop through their own context cancellation.
func (r *RedisChatRelay) Close() error {
	if r.ownsClient {
		return r.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (r *RedisChatRelay) GetClient() *redis.Client {
	return r.client
}
