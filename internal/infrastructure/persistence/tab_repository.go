package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/timesheet"
	"github.com/worktally/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTabRepository implements timesheet.TabRepository using GORM
type GormTabRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormTabRepository creates a new GormTabRepository
func NewGormTabRepository(db *gorm.DB) *GormTabRepository {
	return &GormTabRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormTabRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a tab by its ID
func (r *GormTabRepository) FindByID(ctx context.Context, id uuid.UUID) (*timesheet.Tab, error) {
	var model models.TabModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds a tab by ID within a workspace
func (r *GormTabRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*timesheet.Tab, error) {
	var model models.TabModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all tabs matching the filter
func (r *GormTabRepository) FindAll(ctx context.Context, filter shared.Filter) ([]timesheet.Tab, error) {
	var rows []models.TabModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TabModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(rows), nil
}

// FindAllForWorkspace finds all tabs for a workspace
func (r *GormTabRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]timesheet.Tab, error) {
	var rows []models.TabModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TabModel{}).Where("workspace_id = ?", workspaceID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(rows), nil
}

// FindByAssignee finds all tabs assigned to a user within a workspace
func (r *GormTabRepository) FindByAssignee(ctx context.Context, workspaceID, assigneeID uuid.UUID) ([]timesheet.Tab, error) {
	var rows []models.TabModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND assignee_id = ?", workspaceID, assigneeID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(rows), nil
}

// Save creates or updates a tab
func (r *GormTabRepository) Save(ctx context.Context, tab *timesheet.Tab) error {
	model := models.TabModelFromDomain(tab)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithEvents saves a tab and its domain events in one transaction
func (r *GormTabRepository) SaveWithEvents(ctx context.Context, tab *timesheet.Tab, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.TabModelFromDomain(tab)
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

// Delete deletes a tab
func (r *GormTabRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TabModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteWithEvents deletes a tab and persists its deletion events in
// one transaction. Attachment rows go with it by FK cascade.
func (r *GormTabRepository) DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.TabModel{}, "id = ?", id)
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

// Count counts tabs matching the filter
func (r *GormTabRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.TabModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTabRepository) toDomainSlice(rows []models.TabModel) []timesheet.Tab {
	tabs := make([]timesheet.Tab, len(rows))
	for i := range rows {
		tabs[i] = *rows[i].ToDomain()
	}
	return tabs
}

// applyFilter applies filter options to the query
func (r *GormTabRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TabSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTabRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "assignee_id":
			query = query.Where("assignee_id = ?", value)
		case "workspace_id":
			query = query.Where("workspace_id = ?", value)
		}
	}

	return query
}
