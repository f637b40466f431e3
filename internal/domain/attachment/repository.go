package attachment

import (
	"context"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// AttachmentRepository defines the persistence interface for attachments
type AttachmentRepository interface {
	shared.WorkspaceScopedRepository[Attachment]

	// FindByTab lists attachments for a tab in upload order,
	// optionally narrowed to one kind
	FindByTab(ctx context.Context, tabID uuid.UUID, kind *Kind) ([]Attachment, error)

	// SaveWithEvents saves an attachment and its domain events
	// atomically through the transactional outbox
	SaveWithEvents(ctx context.Context, att *Attachment, events []shared.DomainEvent) error

	// DeleteWithEvents deletes an attachment and persists its removal
	// events atomically
	DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error

	// DeleteByTab removes all attachment rows for a tab
	DeleteByTab(ctx context.Context, tabID uuid.UUID) error
}
