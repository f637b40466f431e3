package workspace

import (
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// MemberRole is the permission level of a workspace member
type MemberRole string

const (
	RoleOwner   MemberRole = "owner"
	RoleManager MemberRole = "manager"
	RoleMember  MemberRole = "member"

	// RoleUnknown is a loading-time sentinel used before the role has
	// been resolved. It is never persisted and grants no permissions.
	RoleUnknown MemberRole = "unknown"
)

// NormalizeRole maps an arbitrary role string to a known role,
// falling back to the unknown sentinel
func NormalizeRole(raw string) MemberRole {
	switch MemberRole(raw) {
	case RoleOwner, RoleManager, RoleMember:
		return MemberRole(raw)
	default:
		return RoleUnknown
	}
}

// IsValid returns true for the three persisted roles
func (r MemberRole) IsValid() bool {
	return r == RoleOwner || r == RoleManager || r == RoleMember
}

// CanInvite returns true if the role may create and revoke invites
func (r MemberRole) CanInvite() bool {
	return r == RoleOwner || r == RoleManager
}

// CanManageMembers returns true if the role may change roles and remove members
func (r MemberRole) CanManageMembers() bool {
	return r == RoleOwner
}

// CanRename returns true if the role may rename the workspace
func (r MemberRole) CanRename() bool {
	return r == RoleOwner || r == RoleManager
}

// SeesAllTabs returns true if the role sees every member's tabs;
// plain members are locked to their own
func (r MemberRole) SeesAllTabs() bool {
	return r == RoleOwner || r == RoleManager
}

// Member links a user to a workspace with a role
type Member struct {
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        MemberRole
	InvitedBy   *uuid.UUID
	CreatedAt   time.Time
}

// NewMember creates a membership record
func NewMember(workspaceID, userID uuid.UUID, role MemberRole, invitedBy *uuid.UUID) (*Member, error) {
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be owner, manager, or member")
	}
	return &Member{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		InvitedBy:   invitedBy,
		CreatedAt:   time.Now(),
	}, nil
}

// ChangeRole sets a new role. The owner role can neither be granted
// nor taken away here; ownership moves with the workspace itself.
func (m *Member) ChangeRole(role MemberRole) error {
	if m.Role == RoleOwner {
		return shared.NewDomainError("OWNER_IMMUTABLE", "The owner's role cannot be changed")
	}
	if role != RoleManager && role != RoleMember {
		return shared.NewDomainError("INVALID_ROLE", "Role must be manager or member")
	}
	m.Role = role
	return nil
}

// IsOwner returns true if this member holds the owner role
func (m *Member) IsOwner() bool {
	return m.Role == RoleOwner
}
