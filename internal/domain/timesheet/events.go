package timesheet

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/worktally/backend/internal/domain/shared"
)

// Aggregate type constant for Tab
const AggregateTypeTab = "Tab"

// Tab domain event types
const (
	EventTypeTabCreated = "TabCreated"
	EventTypeTabUpdated = "TabUpdated"
	EventTypeTabDeleted = "TabDeleted"
)

// TabCreatedEvent is published when a tab is created
type TabCreatedEvent struct {
	shared.BaseDomainEvent
	AssigneeID uuid.UUID `json:"assignee_id"`
	Name       string    `json:"name"`
}

// NewTabCreatedEvent creates a new TabCreatedEvent
func NewTabCreatedEvent(tab *Tab) *TabCreatedEvent {
	return &TabCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTabCreated, AggregateTypeTab, tab.ID, tab.WorkspaceID),
		AssigneeID:      tab.AssigneeID,
		Name:            tab.Name,
	}
}

// TabUpdatedEvent is published when a tab's contents change
type TabUpdatedEvent struct {
	shared.BaseDomainEvent
	Name  string          `json:"name"`
	Hours decimal.Decimal `json:"hours"`
}

// NewTabUpdatedEvent creates a new TabUpdatedEvent
func NewTabUpdatedEvent(tab *Tab) *TabUpdatedEvent {
	return &TabUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTabUpdated, AggregateTypeTab, tab.ID, tab.WorkspaceID),
		Name:            tab.Name,
		Hours:           tab.Hours,
	}
}

// TabDeletedEvent is published when a tab is deleted
type TabDeletedEvent struct {
	shared.BaseDomainEvent
	AssigneeID uuid.UUID `json:"assignee_id"`
}

// NewTabDeletedEvent creates a new TabDeletedEvent
func NewTabDeletedEvent(tab *Tab) *TabDeletedEvent {
	return &TabDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTabDeleted, AggregateTypeTab, tab.ID, tab.WorkspaceID),
		AssigneeID:      tab.AssigneeID,
	}
}
