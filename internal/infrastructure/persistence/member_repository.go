package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/workspace"
	"github.com/worktally/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMemberRepository implements workspace.MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// Find finds a membership by workspace and user
func (r *GormMemberRepository) Find(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWorkspace finds all members of a workspace, oldest first
func (r *GormMemberRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]workspace.Member, error) {
	var rows []models.MemberModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	members := make([]workspace.Member, len(rows))
	for i := range rows {
		members[i] = *rows[i].ToDomain()
	}
	return members, nil
}

// Save creates or updates a membership
func (r *GormMemberRepository) Save(ctx context.Context, member *workspace.Member) error {
	model := models.MemberModelFromDomain(member)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a membership
func (r *GormMemberRepository) Delete(ctx context.Context, workspaceID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.MemberModel{}, "workspace_id = ? AND user_id = ?", workspaceID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
