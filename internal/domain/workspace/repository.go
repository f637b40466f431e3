package workspace

import (
	"context"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// WorkspaceRepository defines the persistence interface for workspaces
type WorkspaceRepository interface {
	shared.Repository[Workspace]

	// FindByUser lists workspaces the user is a member of,
	// ordered by creation time ascending
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Workspace, error)

	// ExistsByName checks name uniqueness (case-insensitive)
	ExistsByName(ctx context.Context, normalizedName string) (bool, error)

	// SaveWithEvents saves a workspace and its domain events
	// atomically through the transactional outbox
	SaveWithEvents(ctx context.Context, ws *Workspace, events []shared.DomainEvent) error

	// DeleteWithEvents deletes a workspace and persists its deletion
	// events atomically. Dependent rows go with it.
	DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error
}

// MemberRepository defines the persistence interface for memberships
type MemberRepository interface {
	// Find returns the membership of a user in a workspace, or shared.ErrNotFound
	Find(ctx context.Context, workspaceID, userID uuid.UUID) (*Member, error)

	// FindByWorkspace lists all members of a workspace
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Member, error)

	// Save inserts or updates a membership
	Save(ctx context.Context, member *Member) error

	// Delete removes a membership
	Delete(ctx context.Context, workspaceID, userID uuid.UUID) error
}

// InviteRepository defines the persistence interface for invites
type InviteRepository interface {
	shared.Repository[Invite]

	// FindByToken resolves an invite by its join token
	FindByToken(ctx context.Context, token string) (*Invite, error)

	// FindByWorkspace lists invites for a workspace, newest first
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Invite, error)

	// SaveWithEvents saves an invite and its domain events atomically
	// through the transactional outbox
	SaveWithEvents(ctx context.Context, inv *Invite, events []shared.DomainEvent) error
}
