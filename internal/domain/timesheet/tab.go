package timesheet

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/worktally/backend/internal/domain/shared"
)

// InvoiceMeta carries the billing details attached to a tab
type InvoiceMeta struct {
	Number   string `json:"number,omitempty"`
	IssuedOn string `json:"issued_on,omitempty"`
	BillTo   string `json:"bill_to,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Tab is a per-period record of hours, roles, and billing metadata
// for one assignee within a workspace
type Tab struct {
	shared.WorkspaceAggregateRoot
	AssigneeID uuid.UUID
	Name       string
	Hours      decimal.Decimal
	Entries    []EntryRow
	Roles      []Role
	Invoice    *InvoiceMeta
	Notes      string
}

// NewTab creates a tab for the assignee. An empty name defaults to the
// current month's label; an empty role list gets the zero-rate default.
func NewTab(workspaceID, assigneeID uuid.UUID, name string) (*Tab, error) {
	if assigneeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNEE", "Assignee ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = MonthLabel(time.Now())
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Tab name cannot exceed 200 characters")
	}

	tab := &Tab{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRootWithCreator(workspaceID, assigneeID),
		AssigneeID:             assigneeID,
		Name:                   name,
		Hours:                  decimal.Zero,
		Entries:                make([]EntryRow, 0),
		Roles:                  []Role{NewDefaultRole()},
	}

	tab.AddDomainEvent(NewTabCreatedEvent(tab))

	return tab, nil
}

// MonthLabel renders the default tab name for a point in time
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}

// SetName renames the tab
func (t *Tab) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Tab name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Tab name cannot exceed 200 characters")
	}
	t.Name = name
	t.touch()
	return nil
}

// SetEntries replaces the entry rows and recomputes total hours.
// The stored hours field is always the sum of entry hours.
func (t *Tab) SetEntries(entries []EntryRow) error {
	total := decimal.Zero
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
		total = total.Add(e.Hours)
	}

	t.Entries = entries
	t.Hours = total
	t.touch()
	return nil
}

// SetRoles replaces the rate roles. An empty list falls back to the
// zero-rate default so entries always have a role to reference.
func (t *Tab) SetRoles(roles []Role) error {
	if len(roles) == 0 {
		roles = []Role{NewDefaultRole()}
	}
	seen := make(map[uuid.UUID]bool, len(roles))
	for _, r := range roles {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.ID] {
			return shared.NewDomainError("INVALID_ROLE", "Duplicate role ID")
		}
		seen[r.ID] = true
	}

	t.Roles = roles
	t.touch()
	return nil
}

// SetInvoice replaces the billing metadata
func (t *Tab) SetInvoice(meta *InvoiceMeta) {
	t.Invoice = meta
	t.touch()
}

// SetNotes replaces the free-form notes
func (t *Tab) SetNotes(notes string) {
	t.Notes = notes
	t.touch()
}

// RoleByID resolves a rate role by ID
func (t *Tab) RoleByID(id uuid.UUID) (Role, bool) {
	for _, r := range t.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// Amount returns the billable total: sum of entry hours times the
// referenced role's rate. Entries with no resolvable role bill at zero.
func (t *Tab) Amount() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		if e.RoleID == nil {
			continue
		}
		role, ok := t.RoleByID(*e.RoleID)
		if !ok {
			continue
		}
		total = total.Add(e.Hours.Mul(role.Rate))
	}
	return total
}

// DeletableBy returns true if the user may delete this tab:
// the workspace owner or the tab's assignee
func (t *Tab) DeletableBy(userID, workspaceOwnerID uuid.UUID) bool {
	return userID == workspaceOwnerID || userID == t.AssigneeID
}

func (t *Tab) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}
