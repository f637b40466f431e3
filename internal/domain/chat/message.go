package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// Message is the persisted chat message aggregate. Sender profile data
// is never stored here; it is joined at read time or carried as a
// snapshot on relay payloads.
type Message struct {
	shared.WorkspaceAggregateRoot
	TabID    *uuid.UUID
	SenderID uuid.UUID
	Content  string
	EditedAt *time.Time
}

// NewMessage creates a persisted message. Content is trimmed; a message
// that is empty after trimming is rejected.
func NewMessage(workspaceID uuid.UUID, tabID *uuid.UUID, senderID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewDomainError("EMPTY_MESSAGE", "Message content cannot be empty")
	}
	if len(content) > 4000 {
		return nil, shared.NewDomainError("MESSAGE_TOO_LONG", "Message content cannot exceed 4000 characters")
	}
	if senderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SENDER", "Sender ID cannot be empty")
	}

	msg := &Message{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRootWithCreator(workspaceID, senderID),
		TabID:                  tabID,
		SenderID:               senderID,
		Content:                content,
	}

	msg.AddDomainEvent(NewMessageInsertedEvent(msg))

	return msg, nil
}

// Edit replaces the content and stamps the edit time.
// Only the sender may edit their message.
func (m *Message) Edit(editorID uuid.UUID, content string) error {
	if editorID != m.SenderID {
		return shared.ErrForbidden
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return shared.NewDomainError("EMPTY_MESSAGE", "Message content cannot be empty")
	}
	if len(content) > 4000 {
		return shared.NewDomainError("MESSAGE_TOO_LONG", "Message content cannot exceed 4000 characters")
	}

	now := time.Now()
	m.Content = content
	m.EditedAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewMessageUpdatedEvent(m))

	return nil
}

// CanBeDeletedBy returns true for the sender and for workspace
// owners/managers acting through the service layer
func (m *Message) CanBeDeletedBy(userID uuid.UUID, isModerator bool) bool {
	return userID == m.SenderID || isModerator
}
