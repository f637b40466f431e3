package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// Aggregate type constant for Message
const AggregateTypeMessage = "Message"

// Message change-feed event types. One event per durable row change;
// feed payloads never include joined profile data.
const (
	EventTypeMessageInserted = "MessageInserted"
	EventTypeMessageUpdated  = "MessageUpdated"
	EventTypeMessageDeleted  = "MessageDeleted"
)

// MessageInsertedEvent is published when a message row is inserted
type MessageInsertedEvent struct {
	shared.BaseDomainEvent
	TabID     *uuid.UUID `json:"tab_id,omitempty"`
	SenderID  uuid.UUID  `json:"sender_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewMessageInsertedEvent creates a new MessageInsertedEvent
func NewMessageInsertedEvent(msg *Message) *MessageInsertedEvent {
	return &MessageInsertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageInserted, AggregateTypeMessage, msg.ID, msg.WorkspaceID),
		TabID:           msg.TabID,
		SenderID:        msg.SenderID,
		Content:         msg.Content,
		CreatedAt:       msg.CreatedAt,
	}
}

// MessageUpdatedEvent is published when a message row is edited
type MessageUpdatedEvent struct {
	shared.BaseDomainEvent
	TabID    *uuid.UUID `json:"tab_id,omitempty"`
	Content  string     `json:"content"`
	EditedAt time.Time  `json:"edited_at"`
}

// NewMessageUpdatedEvent creates a new MessageUpdatedEvent
func NewMessageUpdatedEvent(msg *Message) *MessageUpdatedEvent {
	editedAt := time.Now()
	if msg.EditedAt != nil {
		editedAt = *msg.EditedAt
	}
	return &MessageUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageUpdated, AggregateTypeMessage, msg.ID, msg.WorkspaceID),
		TabID:           msg.TabID,
		Content:         msg.Content,
		EditedAt:        editedAt,
	}
}

// MessageDeletedEvent is published when a message row is deleted
type MessageDeletedEvent struct {
	shared.BaseDomainEvent
	TabID *uuid.UUID `json:"tab_id,omitempty"`
}

// NewMessageDeletedEvent creates a new MessageDeletedEvent
func NewMessageDeletedEvent(msg *Message) *MessageDeletedEvent {
	return &MessageDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageDeleted, AggregateTypeMessage, msg.ID, msg.WorkspaceID),
		TabID:           msg.TabID,
	}
}
