package timesheet

import (
	"context"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// TabRepository defines the persistence interface for tabs
type TabRepository interface {
	shared.WorkspaceScopedRepository[Tab]

	// FindByAssignee lists a single member's tabs in a workspace,
	// ordered by creation time ascending
	FindByAssignee(ctx context.Context, workspaceID, assigneeID uuid.UUID) ([]Tab, error)

	// SaveWithEvents saves a tab and its domain events atomically
	// through the transactional outbox
	SaveWithEvents(ctx context.Context, tab *Tab, events []shared.DomainEvent) error

	// DeleteWithEvents deletes a tab and persists its deletion events
	// atomically. Attachment rows go with it.
	DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error
}
