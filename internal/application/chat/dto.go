package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/chat"
)

// ============================================================================
// Request DTOs
// ============================================================================

// SendMessageRequest represents a request to post a message
type SendMessageRequest struct {
	Content string     `json:"content" binding:"required,max=4000"`
	TabID   *uuid.UUID `json:"tab_id" binding:"omitempty"`
}

// EditMessageRequest represents a request to edit a message
type EditMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// HistoryFilter narrows a history read to one tab
type HistoryFilter struct {
	TabID *uuid.UUID `form:"tab_id"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// SenderResponse is the denormalized sender snapshot on a message
type SenderResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID        string         `json:"id"`
	TabID     *uuid.UUID     `json:"tab_id,omitempty"`
	Content   string         `json:"content"`
	Sender    SenderResponse `json:"sender"`
	CreatedAt time.Time      `json:"created_at"`
	EditedAt  *time.Time     `json:"edited_at,omitempty"`
}

// ToMessageResponse converts a local message to a response
func ToMessageResponse(m chat.LocalMessage) MessageResponse {
	return MessageResponse{
		ID:      m.ID,
		TabID:   m.TabID,
		Content: m.Content,
		Sender: SenderResponse{
			UserID:      m.Sender.UserID,
			DisplayName: m.Sender.DisplayName,
			AvatarURL:   m.Sender.AvatarURL,
		},
		CreatedAt: m.CreatedAt,
		EditedAt:  m.EditedAt,
	}
}

// ToMessageResponses converts local messages to responses
func ToMessageResponses(msgs []chat.LocalMessage) []MessageResponse {
	responses := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		responses[i] = ToMessageResponse(m)
	}
	return responses
}
