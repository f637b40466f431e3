package chat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/identity"
)

func testSender() identity.ProfileSnapshot {
	return identity.ProfileSnapshot{
		UserID:      uuid.New(),
		DisplayName: "Alice",
		AvatarURL:   "https://cdn.example.com/alice.png",
	}
}

func TestNewDraft(t *testing.T) {
	wsID := uuid.New()

	t.Run("trims content", func(t *testing.T) {
		msg, err := NewDraft(wsID, nil, testSender(), "  hello  ")

		require.NoError(t, err)
		assert.Equal(t, "hello", msg.Content)
		assert.Equal(t, KindDraft, msg.State.Kind)
		assert.Empty(t, msg.ID)
	})

	t.Run("rejects whitespace-only content", func(t *testing.T) {
		_, err := NewDraft(wsID, nil, testSender(), "   \n\t ")
		assert.Error(t, err)
	})
}

func TestLifecycleTransitions(t *testing.T) {
	wsID := uuid.New()

	t.Run("draft to pending to confirmed", func(t *testing.T) {
		msg, err := NewDraft(wsID, nil, testSender(), "hello")
		require.NoError(t, err)

		tempID := NewTempID()
		require.NoError(t, msg.MarkPending(tempID))
		assert.Equal(t, tempID, msg.ID)
		assert.Equal(t, KindPending, msg.State.Kind)
		assert.Equal(t, tempID, msg.State.TempID)
		assert.True(t, msg.IsPending())
		assert.False(t, msg.CreatedAt.IsZero())

		serverTime := time.Now().Add(-time.Second).UTC()
		require.NoError(t, msg.Confirm("m-42", serverTime))
		assert.Equal(t, "m-42", msg.ID)
		assert.Equal(t, serverTime, msg.CreatedAt)
		assert.Equal(t, KindConfirmed, msg.State.Kind)
		assert.Empty(t, msg.State.TempID)
	})

	t.Run("confirm requires pending", func(t *testing.T) {
		msg, err := NewDraft(wsID, nil, testSender(), "hello")
		require.NoError(t, err)

		assert.Error(t, msg.Confirm("m-1", time.Now()))
	})

	t.Run("edited is sticky", func(t *testing.T) {
		msg, err := NewDraft(wsID, nil, testSender(), "hello")
		require.NoError(t, err)
		require.NoError(t, msg.MarkPending(NewTempID()))
		require.NoError(t, msg.Confirm("m-1", time.Now()))

		first := time.Now()
		require.NoError(t, msg.MarkEdited("hello, world", first))
		assert.Equal(t, KindEdited, msg.State.Kind)
		assert.Equal(t, "hello, world", msg.Content)
		require.NotNil(t, msg.EditedAt)

		second := first.Add(time.Minute)
		require.NoError(t, msg.MarkEdited("hello again", second))
		assert.Equal(t, KindEdited, msg.State.Kind)
		assert.Equal(t, second, *msg.EditedAt)
	})

	t.Run("pending cannot be edited", func(t *testing.T) {
		msg, err := NewDraft(wsID, nil, testSender(), "hello")
		require.NoError(t, err)
		require.NoError(t, msg.MarkPending(NewTempID()))

		assert.Error(t, msg.MarkEdited("nope", time.Now()))
	})

	t.Run("deleted is terminal", func(t *testing.T) {
		msg, err := NewDraft(wsID, nil, testSender(), "hello")
		require.NoError(t, err)
		require.NoError(t, msg.MarkPending(NewTempID()))

		msg.MarkDeleted()
		assert.True(t, msg.IsDeleted())
		assert.Error(t, msg.Confirm("m-1", time.Now()))
		assert.Error(t, msg.MarkEdited("nope", time.Now()))
	})
}

func TestNewTempIDUnique(t *testing.T) {
	a, b := NewTempID(), NewTempID()
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "temp-")
}
