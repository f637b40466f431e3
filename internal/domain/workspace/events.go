package workspace

import (
	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeWorkspace = "Workspace"
	AggregateTypeInvite    = "Invite"
)

// Workspace domain event types
const (
	EventTypeWorkspaceCreated = "WorkspaceCreated"
	EventTypeWorkspaceRenamed = "WorkspaceRenamed"
	EventTypeWorkspaceDeleted = "WorkspaceDeleted"
	EventTypeInviteCreated    = "InviteCreated"
	EventTypeInviteAccepted   = "InviteAccepted"
)

// WorkspaceCreatedEvent is published when a workspace is created
type WorkspaceCreatedEvent struct {
	shared.BaseDomainEvent
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// NewWorkspaceCreatedEvent creates a new WorkspaceCreatedEvent
func NewWorkspaceCreatedEvent(ws *Workspace) *WorkspaceCreatedEvent {
	return &WorkspaceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkspaceCreated, AggregateTypeWorkspace, ws.ID, ws.ID),
		Name:            ws.Name,
		OwnerID:         ws.OwnerID,
	}
}

// WorkspaceRenamedEvent is published when a workspace is renamed
type WorkspaceRenamedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewWorkspaceRenamedEvent creates a new WorkspaceRenamedEvent
func NewWorkspaceRenamedEvent(ws *Workspace) *WorkspaceRenamedEvent {
	return &WorkspaceRenamedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkspaceRenamed, AggregateTypeWorkspace, ws.ID, ws.ID),
		Name:            ws.Name,
	}
}

// WorkspaceDeletedEvent is published when a workspace is deleted
type WorkspaceDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewWorkspaceDeletedEvent creates a new WorkspaceDeletedEvent
func NewWorkspaceDeletedEvent(ws *Workspace) *WorkspaceDeletedEvent {
	return &WorkspaceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkspaceDeleted, AggregateTypeWorkspace, ws.ID, ws.ID),
		Name:            ws.Name,
	}
}

// InviteCreatedEvent is published when an invite is created
type InviteCreatedEvent struct {
	shared.BaseDomainEvent
	Role MemberRole `json:"role"`
}

// NewInviteCreatedEvent creates a new InviteCreatedEvent
func NewInviteCreatedEvent(inv *Invite) *InviteCreatedEvent {
	return &InviteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInviteCreated, AggregateTypeInvite, inv.ID, inv.WorkspaceID),
		Role:            inv.Role,
	}
}

// InviteAcceptedEvent is published when an invite is accepted
type InviteAcceptedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID  `json:"user_id"`
	Role   MemberRole `json:"role"`
}

// NewInviteAcceptedEvent creates a new InviteAcceptedEvent
func NewInviteAcceptedEvent(inv *Invite, userID uuid.UUID) *InviteAcceptedEvent {
	return &InviteAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInviteAccepted, AggregateTypeInvite, inv.ID, inv.WorkspaceID),
		UserID:          userID,
		Role:            inv.Role,
	}
}
