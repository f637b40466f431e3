package chat

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/identity"
)

func TestRelayFrame_RoundTrip(t *testing.T) {
	sender := identity.ProfileSnapshot{UserID: uuid.New(), DisplayName: "Dana"}
	msg, err := NewDraft(uuid.New(), nil, sender, "over the wire")
	require.NoError(t, err)
	require.NoError(t, msg.MarkPending(NewTempID()))

	frame := NewInsertFrame(msg)
	data, err := frame.Encode()
	require.NoError(t, err)

	decoded, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, RelayInsert, decoded.Kind)
	assert.Equal(t, msg.ID, decoded.MessageID)

	row, ok := ParseRow(decoded.Row)
	require.True(t, ok)
	assert.Equal(t, "over the wire", row.Content)
	assert.Equal(t, "Dana", row.Sender.DisplayName)
}

func TestRelayFrame_DeleteCarriesOnlyID(t *testing.T) {
	frame := NewDeleteFrame("m-17")
	data, err := frame.Encode()
	require.NoError(t, err)

	decoded, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, RelayDelete, decoded.Kind)
	assert.Equal(t, "m-17", decoded.MessageID)
	assert.Empty(t, decoded.Row)
}

func TestDecodeFrame_Rejects(t *testing.T) {
	_, err := DecodeFrame([]byte(`{not json`))
	assert.Error(t, err)

	_, err = DecodeFrame([]byte(`{"kind":"explode","message_id":"m-1"}`))
	assert.Error(t, err)

	_, err = DecodeFrame([]byte(`{"kind":"insert"}`))
	assert.Error(t, err)
}
