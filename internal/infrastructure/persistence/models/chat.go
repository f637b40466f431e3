package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/chat"
)

// MessageModel is the persistence model for the chat Message aggregate root.
type MessageModel struct {
	WorkspaceAggregateModel
	TabID    *uuid.UUID `gorm:"type:uuid;index"`
	SenderID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Content  string     `gorm:"type:text;not null"`
	EditedAt *time.Time
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the persistence model to a domain Message entity.
func (m *MessageModel) ToDomain() *chat.Message {
	msg := &chat.Message{
		TabID:    m.TabID,
		SenderID: m.SenderID,
		Content:  m.Content,
		EditedAt: m.EditedAt,
	}
	m.PopulateWorkspaceAggregateRoot(&msg.WorkspaceAggregateRoot)
	return msg
}

// FromDomain populates the persistence model from a domain Message entity.
func (m *MessageModel) FromDomain(msg *chat.Message) {
	m.FromDomainWorkspaceAggregateRoot(msg.WorkspaceAggregateRoot)
	m.TabID = msg.TabID
	m.SenderID = msg.SenderID
	m.Content = msg.Content
	m.EditedAt = msg.EditedAt
}

// MessageModelFromDomain creates a new persistence model from a domain Message entity.
func MessageModelFromDomain(msg *chat.Message) *MessageModel {
	m := &MessageModel{}
	m.FromDomain(msg)
	return m
}
