package attachment

import (
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/attachment"
)

// ============================================================================
// Request DTOs
// ============================================================================

// InitiateUploadRequest represents a request to start a proof upload
type InitiateUploadRequest struct {
	TabID       uuid.UUID `json:"tab_id" binding:"required"`
	Kind        string    `json:"kind" binding:"required,oneof=image invoice"`
	FileName    string    `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string    `json:"content_type" binding:"required"`
	Size        int64     `json:"size" binding:"required,gt=0"`
}

// AttachmentListFilter represents filter options for attachment listing
type AttachmentListFilter struct {
	Kind string `form:"kind" binding:"omitempty,oneof=image invoice"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// InitiateUploadResponse carries the presigned upload URL for a new attachment
type InitiateUploadResponse struct {
	Attachment AttachmentResponse `json:"attachment"`
	UploadURL  string             `json:"upload_url"`
	ExpiresAt  time.Time          `json:"expires_at"`
}

// AttachmentResponse represents an attachment in API responses
type AttachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	TabID       uuid.UUID `json:"tab_id"`
	Kind        string    `json:"kind"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DownloadURLResponse carries a presigned download URL
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ============================================================================
// Conversion Functions
// ============================================================================

// ToAttachmentResponse converts a domain Attachment to AttachmentResponse
func ToAttachmentResponse(a *attachment.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		WorkspaceID: a.WorkspaceID,
		TabID:       a.TabID,
		Kind:        string(a.Kind),
		FileName:    a.FileName,
		ContentType: a.ContentType,
		Size:        a.Size,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAttachmentResponses converts a slice of domain Attachments to responses
func ToAttachmentResponses(attachments []attachment.Attachment) []AttachmentResponse {
	responses := make([]AttachmentResponse, len(attachments))
	for i := range attachments {
		responses[i] = ToAttachmentResponse(&attachments[i])
	}
	return responses
}
