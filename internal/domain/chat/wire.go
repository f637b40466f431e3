package chat

import (
	"encoding/json"
	"time"
)

// wireRow is the JSON shape shared by relay payloads and feed
// snapshots; ParseRow decodes exactly this shape
type wireRow struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspace_id"`
	TabID       *string      `json:"tab_id,omitempty"`
	SenderID    string       `json:"sender_id"`
	Content     string       `json:"content"`
	CreatedAt   string       `json:"created_at"`
	EditedAt    *string      `json:"edited_at,omitempty"`
	Profile     *wireProfile `json:"profile,omitempty"`
}

type wireProfile struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// EncodeRow renders the message as a wire row, including the sender
// snapshot so receivers render without a profile lookup
func (m LocalMessage) EncodeRow() []byte {
	row := wireRow{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID.String(),
		SenderID:    m.SenderID.String(),
		Content:     m.Content,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339Nano),
		Profile: &wireProfile{
			DisplayName: m.Sender.DisplayName,
			AvatarURL:   m.Sender.AvatarURL,
		},
	}
	if m.TabID != nil {
		s := m.TabID.String()
		row.TabID = &s
	}
	if m.EditedAt != nil {
		s := m.EditedAt.Format(time.RFC3339Nano)
		row.EditedAt = &s
	}

	// Marshaling a flat struct of strings cannot fail
	buf, _ := json.Marshal(row)
	return buf
}
