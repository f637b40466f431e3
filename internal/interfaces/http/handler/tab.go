package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/worktally/backend/internal/application/analytics"
	"github.com/worktally/backend/internal/application/invoice"
	timesheetapp "github.com/worktally/backend/internal/application/timesheet"
)

// TabHandler handles tab, backup, analytics, and invoice requests
type TabHandler struct {
	BaseHandler
	tabService       *timesheetapp.TabService
	analyticsService *analytics.Service
	invoiceService   *invoice.Service
}

// NewTabHandler creates a new tab handler
func NewTabHandler(
	tabService *timesheetapp.TabService,
	analyticsService *analytics.Service,
	invoiceService *invoice.Service,
) *TabHandler {
	return &TabHandler{
		tabService:       tabService,
		analyticsService: analyticsService,
		invoiceService:   invoiceService,
	}
}

// RegisterRoutes registers tab endpoints
func (h *TabHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ws := rg.Group("/workspaces/:workspace_id")

	ws.GET("/tabs", h.List)
	ws.POST("/tabs", h.Create)
	ws.GET("/tabs/:tab_id", h.Get)
	ws.PATCH("/tabs/:tab_id", h.Update)
	ws.DELETE("/tabs/:tab_id", h.Delete)

	ws.GET("/tabs/:tab_id/analytics", h.Analytics)
	ws.POST("/tabs/:tab_id/invoice", h.GenerateInvoice)

	ws.GET("/backup", h.ExportBackup)
	ws.POST("/backup", h.ImportBackup)
}

// Create creates a tab, by default assigned to the caller
func (h *TabHandler) Create(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	var req timesheetapp.CreateTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.tabService.Create(c.Request.Context(), workspaceID, userID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns the tabs the caller can see
func (h *TabHandler) List(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	var filter timesheetapp.TabListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.tabService.List(c.Request.Context(), workspaceID, userID, &filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one tab
func (h *TabHandler) Get(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	tabID, err := parseUUIDParam(c, "tab_id")
	if err != nil {
		h.BadRequest(c, "Invalid tab ID")
		return
	}

	resp, err := h.tabService.Get(c.Request.Context(), workspaceID, userID, tabID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update applies a partial update to a tab
func (h *TabHandler) Update(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	tabID, err := parseUUIDParam(c, "tab_id")
	if err != nil {
		h.BadRequest(c, "Invalid tab ID")
		return
	}

	var req timesheetapp.UpdateTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.tabService.Update(c.Request.Context(), workspaceID, userID, tabID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete deletes a tab along with its attachments
func (h *TabHandler) Delete(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	tabID, err := parseUUIDParam(c, "tab_id")
	if err != nil {
		h.BadRequest(c, "Invalid tab ID")
		return
	}

	if err := h.tabService.Delete(c.Request.Context(), workspaceID, userID, tabID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Analytics returns hours-by-day and amount-by-role buckets for a tab
func (h *TabHandler) Analytics(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	tabID, err := parseUUIDParam(c, "tab_id")
	if err != nil {
		h.BadRequest(c, "Invalid tab ID")
		return
	}

	resp, err := h.analyticsService.ForTab(c.Request.Context(), workspaceID, userID, tabID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GenerateInvoice renders a tab's invoice PDF and files it as an attachment
func (h *TabHandler) GenerateInvoice(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	tabID, err := parseUUIDParam(c, "tab_id")
	if err != nil {
		h.BadRequest(c, "Invalid tab ID")
		return
	}
	if h.invoiceService == nil {
		h.Error(c, http.StatusServiceUnavailable, "PRINTING_DISABLED", "Invoice rendering is not enabled")
		return
	}

	resp, err := h.invoiceService.Generate(c.Request.Context(), workspaceID, userID, tabID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ExportBackup returns the caller's visible tabs as a backup envelope
func (h *TabHandler) ExportBackup(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.tabService.ExportBackup(c.Request.Context(), workspaceID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ImportBackup restores tabs from a backup envelope as fresh rows
func (h *TabHandler) ImportBackup(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	var envelope timesheetapp.BackupEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.BadRequest(c, "Invalid backup payload")
		return
	}

	resp, err := h.tabService.ImportBackup(c.Request.Context(), workspaceID, userID, &envelope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
