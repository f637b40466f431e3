package chat

import (
	"context"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// MessageRepository defines the persistence interface for messages
type MessageRepository interface {
	shared.WorkspaceScopedRepository[Message]

	// FindByScope returns the full history for a channel scope,
	// ordered by creation time ascending. Tab narrowing is exact:
	// an unscoped key matches only untabbed messages.
	FindByScope(ctx context.Context, key ChannelKey) ([]Message, error)

	// SaveWithEvents saves a message and its domain events atomically
	// through the transactional outbox
	SaveWithEvents(ctx context.Context, msg *Message, events []shared.DomainEvent) error

	// DeleteWithEvents deletes a message and persists its removal
	// events atomically
	DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error

	// DeleteByWorkspace removes all messages in a workspace,
	// used by workspace cascade deletion
	DeleteByWorkspace(ctx context.Context, workspaceID uuid.UUID) error
}
