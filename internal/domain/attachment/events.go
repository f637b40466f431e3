package attachment

import (
	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// Aggregate type constant for Attachment
const AggregateTypeAttachment = "Attachment"

// Attachment domain event types
const (
	EventTypeAttachmentAdded   = "AttachmentAdded"
	EventTypeAttachmentRemoved = "AttachmentRemoved"
)

// AttachmentAddedEvent is published when an attachment is recorded
type AttachmentAddedEvent struct {
	shared.BaseDomainEvent
	TabID      uuid.UUID `json:"tab_id"`
	Kind       Kind      `json:"kind"`
	StorageKey string    `json:"storage_key"`
}

// NewAttachmentAddedEvent creates a new AttachmentAddedEvent
func NewAttachmentAddedEvent(att *Attachment) *AttachmentAddedEvent {
	return &AttachmentAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAttachmentAdded, AggregateTypeAttachment, att.ID, att.WorkspaceID),
		TabID:           att.TabID,
		Kind:            att.Kind,
		StorageKey:      att.StorageKey,
	}
}

// AttachmentRemovedEvent is published when an attachment is removed
type AttachmentRemovedEvent struct {
	shared.BaseDomainEvent
	TabID      uuid.UUID `json:"tab_id"`
	StorageKey string    `json:"storage_key"`
}

// NewAttachmentRemovedEvent creates a new AttachmentRemovedEvent
func NewAttachmentRemovedEvent(att *Attachment) *AttachmentRemovedEvent {
	return &AttachmentRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAttachmentRemoved, AggregateTypeAttachment, att.ID, att.WorkspaceID),
		TabID:           att.TabID,
		StorageKey:      att.StorageKey,
	}
}
