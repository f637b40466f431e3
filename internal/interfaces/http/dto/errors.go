package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Input error codes
const (
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when the auth token has been revoked
	ErrCodeTokenRevoked = "TOKEN_REVOKED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to category heuristics in GetHTTPStatus.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	// Identity
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeTokenRevoked:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED": http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"INVALID_PASSWORD":    http.StatusBadRequest,
	"EMAIL_EXISTS":        http.StatusConflict,

	// Membership and access
	ErrCodeForbidden: http.StatusForbidden,
	"NOT_MEMBER":     http.StatusForbidden,
	"OWNER_IMMUTABLE":    http.StatusForbidden,
	"OWNER_CANNOT_LEAVE": http.StatusUnprocessableEntity,

	// Resources
	ErrCodeNotFound:            http.StatusNotFound,
	"INVALID_STATE":            http.StatusUnprocessableEntity,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	"NAME_TAKEN":               http.StatusConflict,
	"ALREADY_MEMBER":           http.StatusConflict,

	// Invites
	"INVITE_EXPIRED": http.StatusGone,
	"INVITE_REVOKED": http.StatusGone,
	"INVITE_USED":    http.StatusGone,

	// Tabs and backup
	"ASSIGNEE_NOT_MEMBER":        http.StatusUnprocessableEntity,
	"INVALID_BACKUP":             http.StatusUnprocessableEntity,
	"UNSUPPORTED_BACKUP_VERSION": http.StatusUnprocessableEntity,

	// Chat
	"EMPTY_MESSAGE":    http.StatusBadRequest,
	"MESSAGE_TOO_LONG": http.StatusBadRequest,

	// Attachments
	"FILE_TOO_LARGE":            http.StatusRequestEntityTooLarge,
	"ATTACHMENT_LIMIT_EXCEEDED": http.StatusUnprocessableEntity,
	"DISALLOWED_CONTENT_TYPE":   http.StatusUnprocessableEntity,
	"INVALID_FILE_NAME":         http.StatusBadRequest,

	// Invoices
	"RENDER_TIMEOUT": http.StatusGatewayTimeout,
	"RENDER_FAILED":  http.StatusInternalServerError,

	// Rate limiting
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unmapped codes are resolved by naming convention, then default to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	case strings.HasSuffix(code, "_STATE"):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
