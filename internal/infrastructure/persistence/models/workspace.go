package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/workspace"
)

// WorkspaceModel is the persistence model for the Workspace aggregate root.
type WorkspaceModel struct {
	AggregateModel
	Name string `gorm:"type:varchar(200);not null"`
	// NameNormalized holds the case-folded name used for uniqueness checks.
	NameNormalized string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	OwnerID        uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (WorkspaceModel) TableName() string {
	return "workspaces"
}

// ToDomain converts the persistence model to a domain Workspace entity.
func (m *WorkspaceModel) ToDomain() *workspace.Workspace {
	return &workspace.Workspace{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Name:    m.Name,
		OwnerID: m.OwnerID,
	}
}

// FromDomain populates the persistence model from a domain Workspace entity.
func (m *WorkspaceModel) FromDomain(w *workspace.Workspace) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.Name = w.Name
	m.NameNormalized = workspace.NormalizeWorkspaceName(w.Name)
	m.OwnerID = w.OwnerID
}

// WorkspaceModelFromDomain creates a new persistence model from a domain Workspace entity.
func WorkspaceModelFromDomain(w *workspace.Workspace) *WorkspaceModel {
	m := &WorkspaceModel{}
	m.FromDomain(w)
	return m
}

// MemberModel is the persistence model for the workspace membership relationship.
type MemberModel struct {
	WorkspaceID uuid.UUID            `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID            `gorm:"type:uuid;primaryKey;index"`
	Role        workspace.MemberRole `gorm:"type:varchar(20);not null;default:'member'"`
	InvitedBy   *uuid.UUID           `gorm:"type:uuid"`
	CreatedAt   time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string {
	return "workspace_members"
}

// ToDomain converts the persistence model to a domain Member.
func (m *MemberModel) ToDomain() *workspace.Member {
	return &workspace.Member{
		WorkspaceID: m.WorkspaceID,
		UserID:      m.UserID,
		Role:        m.Role,
		InvitedBy:   m.InvitedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Member.
func (m *MemberModel) FromDomain(member *workspace.Member) {
	m.WorkspaceID = member.WorkspaceID
	m.UserID = member.UserID
	m.Role = member.Role
	m.InvitedBy = member.InvitedBy
	m.CreatedAt = member.CreatedAt
}

// MemberModelFromDomain creates a new persistence model from a domain Member.
func MemberModelFromDomain(member *workspace.Member) *MemberModel {
	m := &MemberModel{}
	m.FromDomain(member)
	return m
}

// InviteModel is the persistence model for the Invite aggregate root.
type InviteModel struct {
	AggregateModel
	Token       string               `gorm:"type:varchar(64);not null;uniqueIndex"`
	WorkspaceID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Role        workspace.MemberRole `gorm:"type:varchar(20);not null;default:'member'"`
	CreatedBy   uuid.UUID            `gorm:"type:uuid;not null"`
	ExpiresAt   time.Time            `gorm:"not null;index"`
	UsedBy      *uuid.UUID           `gorm:"type:uuid"`
	UsedAt      *time.Time
	Revoked     bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InviteModel) TableName() string {
	return "workspace_invites"
}

// ToDomain converts the persistence model to a domain Invite entity.
func (m *InviteModel) ToDomain() *workspace.Invite {
	return &workspace.Invite{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Token:       m.Token,
		WorkspaceID: m.WorkspaceID,
		Role:        m.Role,
		CreatedBy:   m.CreatedBy,
		ExpiresAt:   m.ExpiresAt,
		UsedBy:      m.UsedBy,
		UsedAt:      m.UsedAt,
		Revoked:     m.Revoked,
	}
}

// FromDomain populates the persistence model from a domain Invite entity.
func (m *InviteModel) FromDomain(inv *workspace.Invite) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.Token = inv.Token
	m.WorkspaceID = inv.WorkspaceID
	m.Role = inv.Role
	m.CreatedBy = inv.CreatedBy
	m.ExpiresAt = inv.ExpiresAt
	m.UsedBy = inv.UsedBy
	m.UsedAt = inv.UsedAt
	m.Revoked = inv.Revoked
}

// InviteModelFromDomain creates a new persistence model from a domain Invite entity.
func InviteModelFromDomain(inv *workspace.Invite) *InviteModel {
	m := &InviteModel{}
	m.FromDomain(inv)
	return m
}
