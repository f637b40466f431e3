package timesheet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/worktally/backend/internal/domain/shared"
)

// DateLayout is the wire format for entry dates
const DateLayout = "2006-01-02"

// EntryRow is one day's worked hours within a tab
type EntryRow struct {
	ID     uuid.UUID       `json:"id"`
	Date   string          `json:"date"`
	Hours  decimal.Decimal `json:"hours"`
	Note   string          `json:"note,omitempty"`
	RoleID *uuid.UUID      `json:"role_id,omitempty"`
}

// NewEntryRow creates an entry for today with zero hours
func NewEntryRow(roleID *uuid.UUID) EntryRow {
	return EntryRow{
		ID:     uuid.New(),
		Date:   time.Now().Format(DateLayout),
		Hours:  decimal.Zero,
		RoleID: roleID,
	}
}

// Validate checks the entry's date format and hours range
func (e EntryRow) Validate() error {
	if e.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_ENTRY", "Entry ID cannot be empty")
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return shared.NewDomainError("INVALID_ENTRY", "Entry date must be YYYY-MM-DD")
	}
	if e.Hours.IsNegative() {
		return shared.NewDomainError("INVALID_ENTRY", "Entry hours cannot be negative")
	}
	return nil
}

// Role is a billable role with an hourly rate, scoped to one tab
type Role struct {
	ID   uuid.UUID       `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

// DefaultRoleName is the name given to the implicit zero-rate role
const DefaultRoleName = "Default"

// NewDefaultRole returns the zero-rate role used when a tab has none
func NewDefaultRole() Role {
	return Role{
		ID:   uuid.New(),
		Name: DefaultRoleName,
		Rate: decimal.Zero,
	}
}

// Validate checks the role's fields
func (r Role) Validate() error {
	if r.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_ROLE", "Role ID cannot be empty")
	}
	if r.Name == "" {
		return shared.NewDomainError("INVALID_ROLE", "Role name cannot be empty")
	}
	if r.Rate.IsNegative() {
		return shared.NewDomainError("INVALID_ROLE", "Role rate cannot be negative")
	}
	return nil
}
