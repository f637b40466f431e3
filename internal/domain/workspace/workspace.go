package workspace

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
	"golang.org/x/text/cases"
)

// Workspace is the tenant boundary grouping members, tabs, and chat.
// Names are unique across the system, compared case-insensitively.
type Workspace struct {
	shared.BaseAggregateRoot
	Name    string
	OwnerID uuid.UUID
}

// NewWorkspace creates a new workspace owned by the given user
func NewWorkspace(name string, ownerID uuid.UUID) (*Workspace, error) {
	name = strings.TrimSpace(name)
	if err := validateWorkspaceName(name); err != nil {
		return nil, err
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}

	ws := &Workspace{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		OwnerID:           ownerID,
	}

	ws.AddDomainEvent(NewWorkspaceCreatedEvent(ws))

	return ws, nil
}

// Rename changes the workspace name
func (w *Workspace) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateWorkspaceName(name); err != nil {
		return err
	}

	w.Name = name
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	w.AddDomainEvent(NewWorkspaceRenamedEvent(w))

	return nil
}

// IsOwnedBy returns true if the user owns this workspace
func (w *Workspace) IsOwnedBy(userID uuid.UUID) bool {
	return w.OwnerID == userID
}

// NormalizedName returns the name folded for uniqueness comparison
func (w *Workspace) NormalizedName() string {
	return NormalizeWorkspaceName(w.Name)
}

// NormalizeWorkspaceName folds a workspace name for case-insensitive comparison
func NormalizeWorkspaceName(name string) string {
	return nameFolder.String(strings.TrimSpace(name))
}

var nameFolder = cases.Fold()

func validateWorkspaceName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Workspace name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Workspace name cannot exceed 200 characters")
	}
	return nil
}
