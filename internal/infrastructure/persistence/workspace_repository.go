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

// GormWorkspaceRepository implements workspace.WorkspaceRepository using GORM
type GormWorkspaceRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormWorkspaceRepository creates a new GormWorkspaceRepository
func NewGormWorkspaceRepository(db *gorm.DB) *GormWorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormWorkspaceRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a workspace by its ID
func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*workspace.Workspace, error) {
	var model models.WorkspaceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds all workspaces the user belongs to, oldest first
func (r *GormWorkspaceRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]workspace.Workspace, error) {
	var rows []models.WorkspaceModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Order("workspaces.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	workspaces := make([]workspace.Workspace, len(rows))
	for i := range rows {
		workspaces[i] = *rows[i].ToDomain()
	}
	return workspaces, nil
}

// FindAll finds all workspaces matching the filter
func (r *GormWorkspaceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]workspace.Workspace, error) {
	var rows []models.WorkspaceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.WorkspaceModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	workspaces := make([]workspace.Workspace, len(rows))
	for i := range rows {
		workspaces[i] = *rows[i].ToDomain()
	}
	return workspaces, nil
}

// ExistsByName checks whether a workspace with the given normalized name exists
func (r *GormWorkspaceRepository) ExistsByName(ctx context.Context, normalizedName string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.WorkspaceModel{}).
		Where("name_normalized = ?", normalizedName).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a workspace
func (r *GormWorkspaceRepository) Save(ctx context.Context, ws *workspace.Workspace) error {
	model := models.WorkspaceModelFromDomain(ws)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithEvents saves a workspace and its domain events in one transaction
func (r *GormWorkspaceRepository) SaveWithEvents(ctx context.Context, ws *workspace.Workspace, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.WorkspaceModelFromDomain(ws)
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

// Delete deletes a workspace
func (r *GormWorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.WorkspaceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteWithEvents deletes a workspace and persists its deletion events
// in one transaction. Dependent rows are removed by FK cascade.
func (r *GormWorkspaceRepository) DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.WorkspaceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
}

// Count counts workspaces matching the filter
func (r *GormWorkspaceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.WorkspaceModel{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormWorkspaceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, WorkspaceSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}
