package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/worktally/backend/internal/domain/chat"
	"github.com/worktally/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// DefaultPresenceTTL is how long a member stays visible without a heartbeat
const DefaultPresenceTTL = 90 * time.Second

// RedisPresenceTracker tracks which members of a workspace are online.
// Each member heartbeat writes a TTL-bound key; readers never diff
// individual joins and leaves but rebuild the full roster from a scan,
// so a missed notification can only delay convergence, not corrupt it.
type RedisPresenceTracker struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisPresenceTrackerOption is a functional option for configuring the tracker
type RedisPresenceTrackerOption func(*RedisPresenceTracker)

// WithPresenceTTL sets how long a heartbeat keeps a member online
func WithPresenceTTL(ttl time.Duration) RedisPresenceTrackerOption {
	return func(t *RedisPresenceTracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithPresenceLogger sets the logger for the tracker
func WithPresenceLogger(logger *zap.Logger) RedisPresenceTrackerOption {
	return func(t *RedisPresenceTracker) {
		t.logger = logger
	}
}

// NewRedisPresenceTracker creates a new Redis-backed presence tracker
func NewRedisPresenceTracker(cfg RedisConfig, opts ...RedisPresenceTrackerOption) (*RedisPresenceTracker, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	tracker := &RedisPresenceTracker{
		client:     client,
		ownsClient: true,
		ttl:        DefaultPresenceTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(tracker)
	}

	return tracker, nil
}

// NewRedisPresenceTrackerWithClient creates a tracker with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisPresenceTrackerWithClient(client *redis.Client, opts ...RedisPresenceTrackerOption) *RedisPresenceTracker {
	tracker := &RedisPresenceTracker{
		client:     client,
		ownsClient: false,
		ttl:        DefaultPresenceTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(tracker)
	}

	return tracker
}

func presenceKey(workspaceID, userID uuid.UUID) string {
	return fmt.Sprintf("presence:%s:%s", workspaceID, userID)
}

func presencePattern(workspaceID uuid.UUID) string {
	return fmt.Sprintf("presence:%s:*", workspaceID)
}

// Heartbeat marks a member online and refreshes their TTL, then pings
// the workspace presence channel so peers rebuild their rosters
func (t *RedisPresenceTracker) Heartbeat(ctx context.Context, workspaceID uuid.UUID, member identity.ProfileSnapshot) error {
	data, err := json.Marshal(member)
	if err != nil {
		return fmt.Errorf("failed to marshal presence entry: %w", err)
	}

	key := presenceKey(workspaceID, member.UserID)
	if err := t.client.Set(ctx, key, data, t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write presence entry: %w", err)
	}

	return t.announce(ctx, workspaceID)
}

// Leave removes a member immediately instead of waiting for TTL expiry
func (t *RedisPresenceTracker) Leave(ctx context.Context, workspaceID, userID uuid.UUID) error {
	key := presenceKey(workspaceID, userID)
	if err := t.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to remove presence entry: %w", err)
	}

	return t.announce(ctx, workspaceID)
}

// announce pings the presence channel; the payload carries no state on
// purpose, receivers always rebuild from Snapshot
func (t *RedisPresenceTracker) announce(ctx context.Context, workspaceID uuid.UUID) error {
	channel := chat.NewWorkspaceChannel(workspaceID).PresenceChannel()
	if err := t.client.Publish(ctx, channel, "sync").Err(); err != nil {
		t.logger.Warn("Failed to announce presence change",
			zap.String("channel", channel),
			zap.Error(err))
	}
	return nil
}

// Snapshot rebuilds the full online roster for a workspace. Entries
// whose payload no longer parses are skipped; an expired key between
// scan and fetch is treated as offline.
func (t *RedisPresenceTracker) Snapshot(ctx context.Context, workspaceID uuid.UUID) ([]identity.ProfileSnapshot, error) {
	var keys []string
	iter := t.client.Scan(ctx, 0, presencePattern(workspaceID), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan presence keys: %w", err)
	}

	if len(keys) == 0 {
		return []identity.ProfileSnapshot{}, nil
	}

	values, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch presence entries: %w", err)
	}

	roster := make([]identity.ProfileSnapshot, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var member identity.ProfileSnapshot
		if err := json.Unmarshal([]byte(raw), &member); err != nil {
			t.logger.Warn("Skipping malformed presence entry",
				zap.String("key", keys[i]),
				zap.Error(err))
			continue
		}
		roster = append(roster, member)
	}

	sort.Slice(roster, func(i, j int) bool {
		return roster[i].UserID.String() < roster[j].UserID.String()
	})

	return roster, nil
}

// SubscribeSync blocks listening for presence pings on the workspace
// channel and invokes the callback for each one. The callback receives
// no payload; it is expected to call Snapshot and replace its roster.
func (t *RedisPresenceTracker) SubscribeSync(ctx context.Context, workspaceID uuid.UUID, callback func()) error {
	channel := chat.NewWorkspaceChannel(workspaceID).PresenceChannel()
	pubsub := t.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to presence channel: %w", err)
	}

	t.logger.Info("Subscribed to presence channel",
		zap.String("channel", channel))

	var wg sync.WaitGroup
	defer wg.Wait()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if rec := recover(); rec != nil {
						t.logger.Error("Panic in presence sync callback",
							zap.Any("panic", rec))
					}
				}()
				callback()
			}()
		}
	}
}

// Close releases the tracker's resources
func (t *RedisPresenceTracker) Close() error {
	if t.ownsClient {
		return t.client.Close()
	}
	return nil
}
