package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/workspace"
	"github.com/worktally/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInviteRepository implements workspace.InviteRepository using GORM
type GormInviteRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormInviteRepository creates a new GormInviteRepository
func NewGormInviteRepository(db *gorm.DB) *GormInviteRepository {
	return &GormInviteRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormInviteRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an invite by its ID
func (r *GormInviteRepository) FindByID(ctx context.Context, id uuid.UUID) (*workspace.Invite, error) {
	var model models.InviteModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByToken finds an invite by its join token
func (r *GormInviteRepository) FindByToken(ctx context.Context, token string) (*workspace.Invite, error) {
	if token == "" {
		return nil, shared.ErrNotFound
	}
	var model models.InviteModel
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWorkspace finds all invites for a workspace, newest first
func (r *GormInviteRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]workspace.Invite, error) {
	var rows []models.InviteModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	invites := make([]workspace.Invite, len(rows))
	for i := range rows {
		invites[i] = *rows[i].ToDomain()
	}
	return invites, nil
}

// FindAll finds all invites matching the filter
func (r *GormInviteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]workspace.Invite, error) {
	var rows []models.InviteModel
	query := r.db.WithContext(ctx).Model(&models.InviteModel{})
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, InviteSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	invites := make([]workspace.Invite, len(rows))
	for i := range rows {
		invites[i] = *rows[i].ToDomain()
	}
	return invites, nil
}

// Save creates or updates an invite
func (r *GormInviteRepository) Save(ctx context.Context, inv *workspace.Invite) error {
	model := models.InviteModelFromDomain(inv)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithEvents saves an invite and its domain events in one transaction
func (r *GormInviteRepository) SaveWithEvents(ctx context.Context, inv *workspace.Invite, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.InviteModelFromDomain(inv)
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
}

// Delete deletes an invite
func (r *GormInviteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InviteModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts invites matching the filter
func (r *GormInviteRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InviteModel{})
	for key, value := range filter.Filters {
		switch key {
		case "workspace_id":
			query = query.Where("workspace_id = ?", value)
		case "revoked":
			query = query.Where("revoked = ?", value)
		}
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
