package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// PopulateAggregateRoot populates a domain BaseAggregateRoot from persistence model
func (m *AggregateModel) PopulateAggregateRoot(a *shared.BaseAggregateRoot) {
	a.BaseEntity.ID = m.ID
	a.BaseEntity.CreatedAt = m.CreatedAt
	a.BaseEntity.UpdatedAt = m.UpdatedAt
	a.Version = m.Version
}

// WorkspaceAggregateModel provides common persistence fields for workspace-scoped
// aggregate roots. It extends AggregateModel with workspace ID and creator info.
type WorkspaceAggregateModel struct {
	AggregateModel
	WorkspaceID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainWorkspaceAggregateRoot populates WorkspaceAggregateModel from domain WorkspaceAggregateRoot
func (m *WorkspaceAggregateModel) FromDomainWorkspaceAggregateRoot(w shared.WorkspaceAggregateRoot) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.WorkspaceID = w.WorkspaceID
	m.CreatedBy = w.CreatedBy
}

// PopulateWorkspaceAggregateRoot populates a domain WorkspaceAggregateRoot from persistence model
func (m *WorkspaceAggregateModel) PopulateWorkspaceAggregateRoot(w *shared.WorkspaceAggregateRoot) {
	m.PopulateAggregateRoot(&w.BaseAggregateRoot)
	w.WorkspaceID = m.WorkspaceID
	w.CreatedBy = m.CreatedBy
}
