package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/worktally/backend/internal/application/identity"
)

// ProfileHandler handles profile requests for the authenticated user
type ProfileHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(userService *identity.UserService) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

// RegisterRoutes registers profile endpoints
func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	profile := rg.Group("/profile")
	profile.GET("", h.Get)
	profile.PUT("", h.Update)
	profile.POST("/avatar", h.InitiateAvatarUpload)
}

// Get returns the authenticated user's profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update changes display name and avatar URL
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req identity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// InitiateAvatarUpload presigns an avatar upload
func (h *ProfileHandler) InitiateAvatarUpload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req identity.AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.userService.InitiateAvatarUpload(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
