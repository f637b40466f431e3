package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/attachment"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAttachmentRepository implements attachment.AttachmentRepository using GORM
type GormAttachmentRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormAttachmentRepository creates a new GormAttachmentRepository
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormAttachmentRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an attachment by its ID
func (r *GormAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*attachment.Attachment, error) {
	var model models.AttachmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds an attachment by ID within a workspace
func (r *GormAttachmentRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*attachment.Attachment, error) {
	var model models.AttachmentModel
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

// FindAll finds all attachments matching the filter
func (r *GormAttachmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]attachment.Attachment, error) {
	var rows []models.AttachmentModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.AttachmentModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(rows), nil
}

// FindAllForWorkspace finds all attachments for a workspace
func (r *GormAttachmentRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]attachment.Attachment, error) {
	var rows []models.AttachmentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AttachmentModel{}).Where("workspace_id = ?", workspaceID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(rows), nil
}

// FindByTab finds attachments for a tab, optionally narrowed to one kind
func (r *GormAttachmentRepository) FindByTab(ctx context.Context, tabID uuid.UUID, kind *attachment.Kind) ([]attachment.Attachment, error) {
	query := r.db.WithContext(ctx).Where("tab_id = ?", tabID)
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}

	var rows []models.AttachmentModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(rows), nil
}

// Save creates or updates an attachment
func (r *GormAttachmentRepository) Save(ctx context.Context, att *attachment.Attachment) error {
	model := models.AttachmentModelFromDomain(att)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithEvents saves an attachment and its domain events in one transaction
func (r *GormAttachmentRepository) SaveWithEvents(ctx context.Context, att *attachment.Attachment, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.AttachmentModelFromDomain(att)
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

// DeleteWithEvents deletes an attachment and saves its removal events in one transaction
func (r *GormAttachmentRepository) DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.AttachmentModel{}, "id = ?", id)
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

// Delete deletes an attachment
func (r *GormAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AttachmentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByTab removes all attachment records for a tab
func (r *GormAttachmentRepository) DeleteByTab(ctx context.Context, tabID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.AttachmentModel{}, "tab_id = ?", tabID).Error
}

// Count counts attachments matching the filter
func (r *GormAttachmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.AttachmentModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAttachmentRepository) toDomainSlice(rows []models.AttachmentModel) []attachment.Attachment {
	attachments := make([]attachment.Attachment, len(rows))
	for i := range rows {
		attachments[i] = *rows[i].ToDomain()
	}
	return attachments
}

// applyFilter applies filter options to the query
func (r *GormAttachmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AttachmentSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAttachmentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("file_name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "tab_id":
			query = query.Where("tab_id = ?", value)
		}
	}

	return query
}
