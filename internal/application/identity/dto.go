package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/identity"
)

// ============================================================================
// Request DTOs
// ============================================================================

// RegisterRequest represents a request to create a new account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"omitempty,max=200"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest represents a profile update. Nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=200"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=500"`
}

// AvatarUploadRequest represents a request to start an avatar upload
type AvatarUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// TokenResponse carries an issued access/refresh token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AvatarUploadResponse carries the presigned upload URL for a new avatar
// and the stable URL the avatar will be served from once uploaded
type AvatarUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
	AvatarURL string    `json:"avatar_url"`
}

// ============================================================================
// Conversion Functions
// ============================================================================

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayLabel(),
		AvatarURL:   u.AvatarURL,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
