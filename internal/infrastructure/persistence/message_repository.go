package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/chat"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMessageRepository implements chat.MessageRepository using GORM
type GormMessageRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormMessageRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a message by its ID
func (r *GormMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*chat.Message, error) {
	var model models.MessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds a message by ID within a workspace
func (r *GormMessageRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*chat.Message, error) {
	var model models.MessageModel
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

// FindByScope finds all messages in a chat scope in chronological order.
// An unscoped key matches the whole workspace history, tabbed messages
// included; a tab-scoped key matches only that tab's messages.
func (r *GormMessageRepository) FindByScope(ctx context.Context, key chat.ChannelKey) ([]chat.Message, error) {
	query := r.db.WithContext(ctx).Where("workspace_id = ?", key.WorkspaceID)
	if key.TabID != nil {
		query = query.Where("tab_id = ?", *key.TabID)
	}

	var rows []models.MessageModel
	if err := query.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(rows), nil
}

// FindAll finds all messages matching the filter
func (r *GormMessageRepository) FindAll(ctx context.Context, filter shared.Filter) ([]chat.Message, error) {
	var rows []models.MessageModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MessageModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(rows), nil
}

// FindAllForWorkspace finds all messages for a workspace
func (r *GormMessageRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]chat.Message, error) {
	var rows []models.MessageModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.MessageModel{}).Where("workspace_id = ?", workspaceID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(rows), nil
}

// Save creates or updates a message
func (r *GormMessageRepository) Save(ctx context.Context, msg *chat.Message) error {
	model := models.MessageModelFromDomain(msg)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithEvents saves a message and its domain events in one transaction
func (r *GormMessageRepository) SaveWithEvents(ctx context.Context, msg *chat.Message, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.MessageModelFromDomain(msg)
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

// Delete deletes a message
func (r *GormMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MessageModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteWithEvents deletes a message and saves its domain events in one transaction
func (r *GormMessageRepository) DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.MessageModel{}, "id = ?", id)
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

// DeleteByWorkspace removes all messages belonging to a workspace
func (r *GormMessageRepository) DeleteByWorkspace(ctx context.Context, workspaceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.MessageModel{}, "workspace_id = ?", workspaceID).Error
}

// Count counts messages matching the filter
func (r *GormMessageRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.MessageModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormMessageRepository) toDomainSlice(rows []models.MessageModel) []chat.Message {
	messages := make([]chat.Message, len(rows))
	for i := range rows {
		messages[i] = *rows[i].ToDomain()
	}
	return messages
}

// applyFilter applies filter options to the query
func (r *GormMessageRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, MessageSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMessageRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("content ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "sender_id":
			query = query.Where("sender_id = ?", value)
		case "tab_id":
			query = query.Where("tab_id = ?", value)
		}
	}

	return query
}
