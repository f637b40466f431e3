package handler

import (
	"github.com/gin-gonic/gin"
	workspaceapp "github.com/worktally/backend/internal/application/workspace"
)

// WorkspaceHandler handles workspace, membership, and invite requests
type WorkspaceHandler struct {
	BaseHandler
	workspaceService *workspaceapp.WorkspaceService
	memberService    *workspaceapp.MemberService
	inviteService    *workspaceapp.InviteService
	joinAuth         gin.HandlerFunc
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(
	workspaceService *workspaceapp.WorkspaceService,
	memberService *workspaceapp.MemberService,
	inviteService *workspaceapp.InviteService,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		memberService:    memberService,
		inviteService:    inviteService,
	}
}

// SetJoinAuth sets the middleware applied to the /join routes. They sit
// outside the mandatory auth layer so invite previews work anonymously,
// but accept still needs the caller's claims when a token is sent.
func (h *WorkspaceHandler) SetJoinAuth(mw gin.HandlerFunc) {
	h.joinAuth = mw
}

// RegisterRoutes registers workspace endpoints. The /join routes are
// public aside from accept, which needs an authenticated caller.
func (h *WorkspaceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/workspaces", h.Create)
	rg.GET("/workspaces", h.List)

	ws := rg.Group("/workspaces/:workspace_id")
	ws.GET("", h.Get)
	ws.PUT("", h.Rename)
	ws.DELETE("", h.Delete)
	ws.POST("/leave", h.Leave)

	ws.GET("/members", h.ListMembers)
	ws.PUT("/members/:user_id/role", h.ChangeMemberRole)
	ws.DELETE("/members/:user_id", h.RemoveMember)

	ws.GET("/invites", h.ListInvites)
	ws.POST("/invites", h.CreateInvite)
	ws.DELETE("/invites/:invite_id", h.RevokeInvite)

	join := rg.Group("/join")
	if h.joinAuth != nil {
		join.Use(h.joinAuth)
	}
	join.GET("/:token", h.PreviewInvite)
	join.POST("/:token", h.AcceptInvite)
}

// Create creates a workspace owned by the caller
func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req workspaceapp.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.workspaceService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns the caller's workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.workspaceService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one workspace the caller belongs to
func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.workspaceService.Get(c.Request.Context(), workspaceID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Rename renames a workspace
func (h *WorkspaceHandler) Rename(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	var req workspaceapp.RenameWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.workspaceService.Rename(c.Request.Context(), workspaceID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete deletes a workspace and everything in it
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(c.Request.Context(), workspaceID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Leave removes the caller's own membership
func (h *WorkspaceHandler) Leave(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.memberService.Leave(c.Request.Context(), workspaceID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListMembers returns the workspace roster with profile data
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.memberService.List(c.Request.Context(), workspaceID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeMemberRole changes another member's role, owner only
func (h *WorkspaceHandler) ChangeMemberRole(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	targetID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req workspaceapp.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.memberService.ChangeRole(c.Request.Context(), workspaceID, userID, targetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveMember removes another member from the workspace, owner only
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	targetID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.memberService.Remove(c.Request.Context(), workspaceID, userID, targetID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListInvites returns the workspace's invites
func (h *WorkspaceHandler) ListInvites(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.inviteService.List(c.Request.Context(), workspaceID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateInvite creates a join link for the workspace
func (h *WorkspaceHandler) CreateInvite(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	var req workspaceapp.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.inviteService.Create(c.Request.Context(), workspaceID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RevokeInvite revokes a pending invite
func (h *WorkspaceHandler) RevokeInvite(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	inviteID, err := parseUUIDParam(c, "invite_id")
	if err != nil {
		h.BadRequest(c, "Invalid invite ID")
		return
	}

	if err := h.inviteService.Revoke(c.Request.Context(), workspaceID, userID, inviteID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PreviewInvite shows what an invite token grants without accepting it.
// This endpoint is public.
func (h *WorkspaceHandler) PreviewInvite(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.BadRequest(c, "Missing invite token")
		return
	}

	resp, err := h.inviteService.Preview(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AcceptInvite joins the caller to the invite's workspace
func (h *WorkspaceHandler) AcceptInvite(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	token := c.Param("token")
	if token == "" {
		h.BadRequest(c, "Missing invite token")
		return
	}

	resp, err := h.inviteService.Accept(c.Request.Context(), token, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

