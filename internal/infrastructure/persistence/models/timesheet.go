package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/worktally/backend/internal/domain/timesheet"
	"go.uber.org/zap"
)

// logger for model conversion errors (silent failures are logged for debugging)
var modelLogger = zap.L().Named("persistence.models")

// TabModel is the persistence model for the timesheet Tab aggregate root.
// Entries, roles and invoice metadata are stored as JSONB documents because
// they are always read and written as a unit with the tab.
type TabModel struct {
	WorkspaceAggregateModel
	AssigneeID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Hours       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	EntriesJSON string          `gorm:"column:entries;type:jsonb;default:'[]'"`
	RolesJSON   string          `gorm:"column:roles;type:jsonb;default:'[]'"`
	InvoiceJSON string          `gorm:"column:invoice;type:jsonb"`
	Notes       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TabModel) TableName() string {
	return "tabs"
}

// ToDomain converts the persistence model to a domain Tab entity.
// Malformed JSON documents are logged and replaced with empty values rather
// than failing the whole read.
func (m *TabModel) ToDomain() *timesheet.Tab {
	tab := &timesheet.Tab{
		AssigneeID: m.AssigneeID,
		Name:       m.Name,
		Hours:      m.Hours,
		Entries:    make([]timesheet.EntryRow, 0),
		Roles:      make([]timesheet.Role, 0),
		Notes:      m.Notes,
	}
	m.PopulateWorkspaceAggregateRoot(&tab.WorkspaceAggregateRoot)

	if m.EntriesJSON != "" && m.EntriesJSON != "[]" {
		var entries []timesheet.EntryRow
		if err := json.Unmarshal([]byte(m.EntriesJSON), &entries); err != nil {
			modelLogger.Warn("failed to parse tab entries JSON",
				zap.String("tab_id", m.ID.String()),
				zap.Error(err))
		} else {
			tab.Entries = entries
		}
	}

	if m.RolesJSON != "" && m.RolesJSON != "[]" {
		var roles []timesheet.Role
		if err := json.Unmarshal([]byte(m.RolesJSON), &roles); err != nil {
			modelLogger.Warn("failed to parse tab roles JSON",
				zap.String("tab_id", m.ID.String()),
				zap.Error(err))
		} else {
			tab.Roles = roles
		}
	}

	if m.InvoiceJSON != "" && m.InvoiceJSON != "null" {
		var invoice timesheet.InvoiceMeta
		if err := json.Unmarshal([]byte(m.InvoiceJSON), &invoice); err != nil {
			modelLogger.Warn("failed to parse tab invoice JSON",
				zap.String("tab_id", m.ID.String()),
				zap.Error(err))
		} else {
			tab.Invoice = &invoice
		}
	}

	return tab
}

// FromDomain populates the persistence model from a domain Tab entity.
func (m *TabModel) FromDomain(tab *timesheet.Tab) {
	m.FromDomainWorkspaceAggregateRoot(tab.WorkspaceAggregateRoot)
	m.AssigneeID = tab.AssigneeID
	m.Name = tab.Name
	m.Hours = tab.Hours
	m.Notes = tab.Notes

	m.EntriesJSON = "[]"
	if len(tab.Entries) > 0 {
		if data, err := json.Marshal(tab.Entries); err == nil {
			m.EntriesJSON = string(data)
		}
	}

	m.RolesJSON = "[]"
	if len(tab.Roles) > 0 {
		if data, err := json.Marshal(tab.Roles); err == nil {
			m.RolesJSON = string(data)
		}
	}

	m.InvoiceJSON = ""
	if tab.Invoice != nil {
		if data, err := json.Marshal(tab.Invoice); err == nil {
			m.InvoiceJSON = string(data)
		}
	}
}

// TabModelFromDomain creates a new persistence model from a domain Tab entity.
func TabModelFromDomain(tab *timesheet.Tab) *TabModel {
	m := &TabModel{}
	m.FromDomain(tab)
	return m
}
