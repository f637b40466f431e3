package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow() map[string]any {
	return map[string]any{
		"id":           uuid.NewString(),
		"workspace_id": uuid.NewString(),
		"sender_id":    uuid.NewString(),
		"content":      "hello",
		"created_at":   time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func TestCoerceRow(t *testing.T) {
	t.Run("accepts a minimal valid row", func(t *testing.T) {
		row := validRow()
		msg, ok := CoerceRow(row)

		require.True(t, ok)
		assert.Equal(t, row["id"], msg.ID)
		assert.Equal(t, "hello", msg.Content)
		assert.Nil(t, msg.TabID)
		assert.Equal(t, KindConfirmed, msg.State.Kind)
	})

	t.Run("drops rows missing required fields", func(t *testing.T) {
		for _, field := range []string{"id", "workspace_id", "sender_id", "content", "created_at"} {
			row := validRow()
			delete(row, field)

			_, ok := CoerceRow(row)
			assert.False(t, ok, "row without %s should be dropped", field)
		}
	})

	t.Run("drops rows with wrong field types", func(t *testing.T) {
		row := validRow()
		row["content"] = 42

		_, ok := CoerceRow(row)
		assert.False(t, ok)
	})

	t.Run("drops rows with malformed identifiers", func(t *testing.T) {
		row := validRow()
		row["workspace_id"] = "not-a-uuid"

		_, ok := CoerceRow(row)
		assert.False(t, ok)
	})

	t.Run("parses optional tab and edit timestamp", func(t *testing.T) {
		row := validRow()
		tabID := uuid.NewString()
		row["tab_id"] = tabID
		row["edited_at"] = time.Now().UTC().Format(time.RFC3339Nano)

		msg, ok := CoerceRow(row)
		require.True(t, ok)
		require.NotNil(t, msg.TabID)
		assert.Equal(t, tabID, msg.TabID.String())
		assert.NotNil(t, msg.EditedAt)
		assert.Equal(t, KindEdited, msg.State.Kind)
	})

	t.Run("accepts profile as object", func(t *testing.T) {
		row := validRow()
		row["profile"] = map[string]any{"display_name": "Alice", "avatar_url": "a.png"}

		msg, ok := CoerceRow(row)
		require.True(t, ok)
		assert.Equal(t, "Alice", msg.Sender.DisplayName)
		assert.Equal(t, "a.png", msg.Sender.AvatarURL)
	})

	t.Run("accepts profile as array-of-one", func(t *testing.T) {
		row := validRow()
		row["profile"] = []any{map[string]any{"display_name": "Bob"}}

		msg, ok := CoerceRow(row)
		require.True(t, ok)
		assert.Equal(t, "Bob", msg.Sender.DisplayName)
	})

	t.Run("degrades malformed profile to empty snapshot", func(t *testing.T) {
		for _, profile := range []any{"bogus", 7, []any{}, []any{"bogus"}, nil} {
			row := validRow()
			row["profile"] = profile

			msg, ok := CoerceRow(row)
			require.True(t, ok)
			assert.Empty(t, msg.Sender.DisplayName)
			assert.Equal(t, row["sender_id"], msg.Sender.UserID.String())
		}
	})
}

func TestParseRow(t *testing.T) {
	t.Run("rejects invalid JSON", func(t *testing.T) {
		_, ok := ParseRow([]byte("{not json"))
		assert.False(t, ok)
	})

	t.Run("rejects non-object JSON", func(t *testing.T) {
		_, ok := ParseRow([]byte(`[1,2,3]`))
		assert.False(t, ok)
	})

	t.Run("round-trips an encoded row", func(t *testing.T) {
		msg, err := NewDraft(uuid.New(), nil, testSender(), "round trip")
		require.NoError(t, err)
		require.NoError(t, msg.MarkPending(NewTempID()))
		require.NoError(t, msg.Confirm(uuid.NewString(), time.Now().UTC().Truncate(time.Millisecond)))

		parsed, ok := ParseRow(msg.EncodeRow())
		require.True(t, ok)
		assert.Equal(t, msg.ID, parsed.ID)
		assert.Equal(t, msg.Content, parsed.Content)
		assert.Equal(t, msg.Sender.DisplayName, parsed.Sender.DisplayName)
		assert.True(t, msg.CreatedAt.Equal(parsed.CreatedAt))
	})

	t.Run("round-trips tab scoping", func(t *testing.T) {
		tabID := uuid.New()
		msg, err := NewDraft(uuid.New(), &tabID, testSender(), "scoped")
		require.NoError(t, err)
		require.NoError(t, msg.MarkPending(NewTempID()))

		parsed, ok := ParseRow(msg.EncodeRow())
		require.True(t, ok)
		require.NotNil(t, parsed.TabID)
		assert.Equal(t, tabID, *parsed.TabID)
	})
}

func TestCoerceRowFromJSONNumbers(t *testing.T) {
	// Payloads decoded elsewhere may carry numbers; none of our
	// required fields are numeric, so they must be rejected
	raw := fmt.Sprintf(`{"id": 7, "workspace_id": %q, "sender_id": %q, "content": "x", "created_at": %q}`,
		uuid.NewString(), uuid.NewString(), time.Now().Format(time.RFC3339))

	_, ok := ParseRow([]byte(raw))
	assert.False(t, ok)
}
