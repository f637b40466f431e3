package models

import (
	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/attachment"
)

// AttachmentModel is the persistence model for the Attachment aggregate root.
type AttachmentModel struct {
	WorkspaceAggregateModel
	TabID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	UploadedBy  uuid.UUID       `gorm:"type:uuid;not null"`
	Kind        attachment.Kind `gorm:"type:varchar(20);not null;index"`
	FileName    string          `gorm:"type:varchar(255);not null"`
	StorageKey  string          `gorm:"type:varchar(500);not null;uniqueIndex"`
	ContentType string          `gorm:"type:varchar(100)"`
	Size        int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (AttachmentModel) TableName() string {
	return "attachments"
}

// ToDomain converts the persistence model to a domain Attachment entity.
func (m *AttachmentModel) ToDomain() *attachment.Attachment {
	att := &attachment.Attachment{
		TabID:       m.TabID,
		UploadedBy:  m.UploadedBy,
		Kind:        m.Kind,
		FileName:    m.FileName,
		StorageKey:  m.StorageKey,
		ContentType: m.ContentType,
		Size:        m.Size,
	}
	m.PopulateWorkspaceAggregateRoot(&att.WorkspaceAggregateRoot)
	return att
}

// FromDomain populates the persistence model from a domain Attachment entity.
func (m *AttachmentModel) FromDomain(att *attachment.Attachment) {
	m.FromDomainWorkspaceAggregateRoot(att.WorkspaceAggregateRoot)
	m.TabID = att.TabID
	m.UploadedBy = att.UploadedBy
	m.Kind = att.Kind
	m.FileName = att.FileName
	m.StorageKey = att.StorageKey
	m.ContentType = att.ContentType
	m.Size = att.Size
}

// AttachmentModelFromDomain creates a new persistence model from a domain Attachment entity.
func AttachmentModelFromDomain(att *attachment.Attachment) *AttachmentModel {
	m := &AttachmentModel{}
	m.FromDomain(att)
	return m
}
