package handler

import (
	"github.com/gin-gonic/gin"
	attachmentapp "github.com/worktally/backend/internal/application/attachment"
)

// AttachmentHandler handles proof attachment requests
type AttachmentHandler struct {
	BaseHandler
	attachmentService *attachmentapp.Service
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(attachmentService *attachmentapp.Service) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// RegisterRoutes registers attachment endpoints
func (h *AttachmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ws := rg.Group("/workspaces/:workspace_id")

	ws.POST("/attachments", h.InitiateUpload)
	ws.GET("/tabs/:tab_id/attachments", h.ListByTab)
	ws.GET("/attachments/:attachment_id/download", h.Download)
	ws.DELETE("/attachments/:attachment_id", h.Delete)
}

// InitiateUpload records an attachment and presigns its upload URL
func (h *AttachmentHandler) InitiateUpload(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	var req attachmentapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.attachmentService.InitiateUpload(c.Request.Context(), workspaceID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListByTab lists a tab's attachments with presigned download URLs
func (h *AttachmentHandler) ListByTab(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	tabID, err := parseUUIDParam(c, "tab_id")
	if err != nil {
		h.BadRequest(c, "Invalid tab ID")
		return
	}

	var filter attachmentapp.AttachmentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.attachmentService.ListByTab(c.Request.Context(), workspaceID, userID, tabID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Download returns a presigned download URL for one attachment
func (h *AttachmentHandler) Download(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	attachmentID, err := parseUUIDParam(c, "attachment_id")
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	resp, err := h.attachmentService.GetDownloadURL(c.Request.Context(), workspaceID, userID, attachmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an attachment row and its stored object
func (h *AttachmentHandler) Delete(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	attachmentID, err := parseUUIDParam(c, "attachment_id")
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), workspaceID, userID, attachmentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
