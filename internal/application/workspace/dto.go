package workspace

import (
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/workspace"
)

// ============================================================================
// Request DTOs
// ============================================================================

// CreateWorkspaceRequest represents a request to create a workspace
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// RenameWorkspaceRequest represents a request to rename a workspace
type RenameWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// ChangeRoleRequest represents a request to change a member's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=manager member"`
}

// CreateInviteRequest represents a request to create an invite
type CreateInviteRequest struct {
	Role           string `json:"role" binding:"required,oneof=manager member"`
	ExpiresInHours int    `json:"expires_in_hours" binding:"omitempty,gt=0,lte=720"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// WorkspaceResponse represents a workspace in API responses.
// Role is the calling user's role in the workspace.
type WorkspaceResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberResponse represents a workspace member with profile data
type MemberResponse struct {
	UserID      uuid.UUID  `json:"user_id"`
	Role        string     `json:"role"`
	DisplayName string     `json:"display_name"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Email       string     `json:"email,omitempty"`
	InvitedBy   *uuid.UUID `json:"invited_by,omitempty"`
	JoinedAt    time.Time  `json:"joined_at"`
}

// InviteResponse represents an invite in API responses
type InviteResponse struct {
	ID        uuid.UUID  `json:"id"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	JoinURL   string     `json:"join_url,omitempty"`
	CreatedBy uuid.UUID  `json:"created_by"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedBy    *uuid.UUID `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// InvitePreviewResponse is the public view of an invite shown on the
// join page before the user accepts
type InvitePreviewResponse struct {
	WorkspaceName string `json:"workspace_name"`
	Role          string `json:"role"`
	Status        string `json:"status"`
}

// ============================================================================
// Conversion Functions
// ============================================================================

// ToWorkspaceResponse converts a domain Workspace to WorkspaceResponse
func ToWorkspaceResponse(ws *workspace.Workspace, role workspace.MemberRole) WorkspaceResponse {
	resp := WorkspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		OwnerID:   ws.OwnerID,
		CreatedAt: ws.CreatedAt,
	}
	if role.IsValid() {
		resp.Role = string(role)
	}
	return resp
}

// ToMemberResponse converts a membership and its user profile to MemberResponse
func ToMemberResponse(m *workspace.Member, user *identity.User) MemberResponse {
	resp := MemberResponse{
		UserID:    m.UserID,
		Role:      string(m.Role),
		InvitedBy: m.InvitedBy,
		JoinedAt:  m.CreatedAt,
	}
	if user != nil {
		resp.DisplayName = user.DisplayLabel()
		resp.AvatarURL = user.AvatarURL
		resp.Email = user.Email
	}
	return resp
}

// ToInviteResponse converts a domain Invite to InviteResponse.
// joinURL is included for active invites only.
func ToInviteResponse(inv *workspace.Invite, joinURL string) InviteResponse {
	status := inv.Status()
	resp := InviteResponse{
		ID:        inv.ID,
		Role:      string(inv.Role),
		Status:    string(status),
		CreatedBy: inv.CreatedBy,
		ExpiresAt: inv.ExpiresAt,
		UsedBy:    inv.UsedBy,
		UsedAt:    inv.UsedAt,
		CreatedAt: inv.CreatedAt,
	}
	if status == workspace.InviteStatusActive {
		resp.JoinURL = joinURL
	}
	return resp
}
