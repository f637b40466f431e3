package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/identity"
)

// ParseRow coerces an externally-received row (relay payload or feed
// snapshot) into a LocalMessage. It is total: malformed input yields
// ok=false, never a panic or partial record. A row missing any
// required identity field is dropped entirely.
func ParseRow(raw []byte) (LocalMessage, bool) {
	var row map[string]any
	if err := json.Unmarshal(raw, &row); err != nil {
		return LocalMessage{}, false
	}
	return CoerceRow(row)
}

// CoerceRow validates an already-decoded row. Required: id,
// workspace_id, sender_id, content, created_at. Optional: tab_id,
// edited_at, profile (object or array-of-one).
func CoerceRow(row map[string]any) (LocalMessage, bool) {
	id, ok := stringField(row, "id")
	if !ok || id == "" {
		return LocalMessage{}, false
	}
	workspaceID, ok := uuidField(row, "workspace_id")
	if !ok {
		return LocalMessage{}, false
	}
	senderID, ok := uuidField(row, "sender_id")
	if !ok {
		return LocalMessage{}, false
	}
	content, ok := stringField(row, "content")
	if !ok {
		return LocalMessage{}, false
	}
	createdAt, ok := timeField(row, "created_at")
	if !ok {
		return LocalMessage{}, false
	}

	msg := LocalMessage{
		ID:          id,
		WorkspaceID: workspaceID,
		SenderID:    senderID,
		Content:     content,
		CreatedAt:   createdAt,
		Sender:      coerceProfile(row["profile"], senderID),
		State:       Lifecycle{Kind: KindConfirmed},
	}

	if tabID, ok := uuidField(row, "tab_id"); ok {
		msg.TabID = &tabID
	}
	if editedAt, ok := timeField(row, "edited_at"); ok {
		msg.EditedAt = &editedAt
		msg.State = Lifecycle{Kind: KindEdited}
	}

	return msg, true
}

// coerceProfile accepts the joined profile as an object or an
// array-of-one, depending on join cardinality, and degrades missing
// or malformed shapes to an empty snapshot
func coerceProfile(v any, senderID uuid.UUID) identity.ProfileSnapshot {
	snap := identity.ProfileSnapshot{UserID: senderID}

	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return snap
		}
		v = arr[0]
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return snap
	}
	if name, ok := obj["display_name"].(string); ok {
		snap.DisplayName = name
	}
	if avatar, ok := obj["avatar_url"].(string); ok {
		snap.AvatarURL = avatar
	}
	return snap
}

func stringField(row map[string]any, key string) (string, bool) {
	s, ok := row[key].(string)
	return s, ok
}

func uuidField(row map[string]any, key string) (uuid.UUID, bool) {
	s, ok := row[key].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func timeField(row map[string]any, key string) (time.Time, bool) {
	s, ok := row[key].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
