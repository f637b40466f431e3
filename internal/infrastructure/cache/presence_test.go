package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/chat"
	"github.com/worktally/backend/internal/domain/identity"
)

func presenceMember(name string) identity.ProfileSnapshot {
	return identity.ProfileSnapshot{UserID: uuid.New(), DisplayName: name}
}

func TestRedisPresenceTrackerHeartbeatAndSnapshot(t *testing.T) {
	_, client := newTestRedis(t)
	tracker := NewRedisPresenceTrackerWithClient(client)
	ctx := context.Background()

	workspaceID := uuid.New()
	alice := presenceMember("alice")
	bob := presenceMember("bob")

	require.NoError(t, tracker.Heartbeat(ctx, workspaceID, alice))
	require.NoError(t, tracker.Heartbeat(ctx, workspaceID, bob))

	roster, err := tracker.Snapshot(ctx, workspaceID)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	names := []string{roster[0].DisplayName, roster[1].DisplayName}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)

	// Roster ordering is stable across rebuilds
	assert.True(t, roster[0].UserID.String() < roster[1].UserID.String())

	// A repeated heartbeat refreshes, it does not duplicate
	require.NoError(t, tracker.Heartbeat(ctx, workspaceID, alice))
	roster, err = tracker.Snapshot(ctx, workspaceID)
	require.NoError(t, err)
	assert.Len(t, roster, 2)
}

func TestRedisPresenceTrackerSnapshotRebuildsWholesale(t *testing.T) {
	_, client := newTestRedis(t)
	tracker := NewRedisPresenceTrackerWithClient(client)
	ctx := context.Background()

	workspaceID := uuid.New()
	alice := presenceMember("alice")
	bob := presenceMember("bob")

	require.NoError(t, tracker.Heartbeat(ctx, workspaceID, alice))
	require.NoError(t, tracker.Heartbeat(ctx, workspaceID, bob))
	require.NoError(t, tracker.Leave(ctx, workspaceID, alice.UserID))

	// The snapshot after a leave is the full remaining set, not a diff
	roster, err := tracker.Snapshot(ctx, workspaceID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, bob.UserID, roster[0].UserID)

	require.NoError(t, tracker.Leave(ctx, workspaceID, bob.UserID))
	roster, err = tracker.Snapshot(ctx, workspaceID)
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestRedisPresenceTrackerTTLExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	tracker := NewRedisPresenceTrackerWithClient(client, WithPresenceTTL(30*time.Second))
	ctx := context.Background()

	workspaceID := uuid.New()
	require.NoError(t, tracker.Heartbeat(ctx, workspaceID, presenceMember("carol")))

	roster, err := tracker.Snapshot(ctx, workspaceID)
	require.NoError(t, err)
	require.Len(t, roster, 1)

	// A member whose heartbeats stop drops out once the TTL lapses
	mr.FastForward(31 * time.Second)

	roster, err = tracker.Snapshot(ctx, workspaceID)
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestRedisPresenceTrackerWorkspaceIsolation(t *testing.T) {
	_, client := newTestRedis(t)
	tracker := NewRedisPresenceTrackerWithClient(client)
	ctx := context.Background()

	wsA, wsB := uuid.New(), uuid.New()
	require.NoError(t, tracker.Heartbeat(ctx, wsA, presenceMember("alice")))
	require.NoError(t, tracker.Heartbeat(ctx, wsB, presenceMember("bob")))

	roster, err := tracker.Snapshot(ctx, wsA)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "alice", roster[0].DisplayName)
}

func TestRedisPresenceTrackerSkipsMalformedEntries(t *testing.T) {
	_, client := newTestRedis(t)
	tracker := NewRedisPresenceTrackerWithClient(client)
	ctx := context.Background()

	workspaceID := uuid.New()
	carol := presenceMember("carol")
	require.NoError(t, tracker.Heartbeat(ctx, workspaceID, carol))

	// An unparseable entry must not break the whole roster
	badKey := "presence:" + workspaceID.String() + ":" + uuid.NewString()
	require.NoError(t, client.Set(ctx, badKey, "not json", time.Minute).Err())

	roster, err := tracker.Snapshot(ctx, workspaceID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, carol.UserID, roster[0].UserID)
}

func TestRedisPresenceTrackerSubscribeSync(t *testing.T) {
	_, client := newTestRedis(t)
	tracker := NewRedisPresenceTrackerWithClient(client)

	workspaceID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())

	pings := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- tracker.SubscribeSync(ctx, workspaceID, func() {
			pings <- struct{}{}
		})
	}()
	channel := chat.NewWorkspaceChannel(workspaceID).PresenceChannel()
	waitForSubscribers(t, client, channel, 1)

	// A heartbeat announces; subscribers are expected to re-Snapshot
	require.NoError(t, tracker.Heartbeat(ctx, workspaceID, presenceMember("dana")))

	select {
	case <-pings:
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat did not ping the sync subscriber")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sync subscription did not stop on context cancellation")
	}
}
