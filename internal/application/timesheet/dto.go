package timesheet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/worktally/backend/internal/domain/timesheet"
)

// ============================================================================
// Request DTOs
// ============================================================================

// CreateTabRequest represents a request to create a tab. An empty name
// defaults to the current month's label; an empty assignee defaults to
// the caller.
type CreateTabRequest struct {
	Name       string     `json:"name" binding:"omitempty,max=200"`
	AssigneeID *uuid.UUID `json:"assignee_id" binding:"omitempty"`
}

// UpdateTabRequest represents a tab update. Nil fields are left
// unchanged.
type UpdateTabRequest struct {
	Name    *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Entries *[]EntryRowDTO   `json:"entries"`
	Roles   *[]RoleDTO       `json:"roles"`
	Invoice *InvoiceMetaDTO  `json:"invoice"`
	Notes   *string          `json:"notes"`
}

// TabListFilter represents filter options for tab listing
type TabListFilter struct {
	AssigneeID *uuid.UUID `form:"assignee_id"`
}

// EntryRowDTO is the wire form of one entry row
type EntryRowDTO struct {
	ID     uuid.UUID       `json:"id"`
	Date   string          `json:"date" binding:"required"`
	Hours  decimal.Decimal `json:"hours"`
	Note   string          `json:"note"`
	RoleID *uuid.UUID      `json:"role_id"`
}

// RoleDTO is the wire form of a rate role
type RoleDTO struct {
	ID   uuid.UUID       `json:"id"`
	Name string          `json:"name" binding:"required,max=200"`
	Rate decimal.Decimal `json:"rate"`
}

// InvoiceMetaDTO is the wire form of a tab's billing metadata
type InvoiceMetaDTO struct {
	Number   string `json:"number" binding:"omitempty,max=100"`
	IssuedOn string `json:"issued_on" binding:"omitempty,max=100"`
	BillTo   string `json:"bill_to" binding:"omitempty,max=2000"`
	Notes    string `json:"notes" binding:"omitempty,max=2000"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// TabResponse represents a tab in API responses
type TabResponse struct {
	ID         uuid.UUID       `json:"id"`
	WorkspaceID uuid.UUID      `json:"workspace_id"`
	AssigneeID uuid.UUID       `json:"assignee_id"`
	Name       string          `json:"name"`
	Hours      decimal.Decimal `json:"hours"`
	Amount     decimal.Decimal `json:"amount"`
	Entries    []EntryRowDTO   `json:"entries"`
	Roles      []RoleDTO       `json:"roles"`
	Invoice    *InvoiceMetaDTO `json:"invoice,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ============================================================================
// Conversion Functions
// ============================================================================

// ToTabResponse converts a domain Tab to TabResponse
func ToTabResponse(t *timesheet.Tab) TabResponse {
	resp := TabResponse{
		ID:          t.ID,
		WorkspaceID: t.WorkspaceID,
		AssigneeID:  t.AssigneeID,
		Name:        t.Name,
		Hours:       t.Hours,
		Amount:      t.Amount(),
		Entries:     toEntryDTOs(t.Entries),
		Roles:       toRoleDTOs(t.Roles),
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Invoice != nil {
		resp.Invoice = &InvoiceMetaDTO{
			Number:   t.Invoice.Number,
			IssuedOn: t.Invoice.IssuedOn,
			BillTo:   t.Invoice.BillTo,
			Notes:    t.Invoice.Notes,
		}
	}
	return resp
}

// ToTabResponses converts a slice of domain Tabs to responses
func ToTabResponses(tabs []timesheet.Tab) []TabResponse {
	responses := make([]TabResponse, len(tabs))
	for i := range tabs {
		responses[i] = ToTabResponse(&tabs[i])
	}
	return responses
}

func toEntryDTOs(entries []timesheet.EntryRow) []EntryRowDTO {
	dtos := make([]EntryRowDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EntryRowDTO{ID: e.ID, Date: e.Date, Hours: e.Hours, Note: e.Note, RoleID: e.RoleID}
	}
	return dtos
}

func toRoleDTOs(roles []timesheet.Role) []RoleDTO {
	dtos := make([]RoleDTO, len(roles))
	for i, r := range roles {
		dtos[i] = RoleDTO{ID: r.ID, Name: r.Name, Rate: r.Rate}
	}
	return dtos
}

func toDomainEntries(dtos []EntryRowDTO) []timesheet.EntryRow {
	entries := make([]timesheet.EntryRow, len(dtos))
	for i, d := range dtos {
		id := d.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		entries[i] = timesheet.EntryRow{ID: id, Date: d.Date, Hours: d.Hours, Note: d.Note, RoleID: d.RoleID}
	}
	return entries
}

func toDomainRoles(dtos []RoleDTO) []timesheet.Role {
	roles := make([]timesheet.Role, len(dtos))
	for i, d := range dtos {
		id := d.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		roles[i] = timesheet.Role{ID: id, Name: d.Name, Rate: d.Rate}
	}
	return roles
}
