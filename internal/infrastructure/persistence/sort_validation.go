package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"email":         true,
	"display_name":  true,
	"status":        true,
	"last_login_at": true,
}

// WorkspaceSortFields contains allowed sort fields for workspaces
var WorkspaceSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// TabSortFields contains allowed sort fields for timesheet tabs
var TabSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"assignee_id": true,
	"hours":       true,
}

// MessageSortFields contains allowed sort fields for chat messages
var MessageSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"sender_id":  true,
}

// InviteSortFields contains allowed sort fields for workspace invites
var InviteSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"expires_at": true,
	"role":       true,
}

// AttachmentSortFields contains allowed sort fields for attachments
var AttachmentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"file_name":  true,
	"kind":       true,
	"size":       true,
}
