package identity

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// allowedAvatarContentTypes whitelists content types for avatar uploads.
// SVG is excluded: it can carry scripts and inline event handlers.
var allowedAvatarContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// AvatarStorage defines the object storage operations needed for avatars.
// Implemented by the infrastructure layer against the avatar bucket.
type AvatarStorage interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// ObjectURL returns the stable public URL of an object
	ObjectURL(storageKey string) string
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	// AvatarUploadURLExpiry is the duration for which avatar upload
	// URLs are valid
	AvatarUploadURLExpiry time.Duration
}

// DefaultUserServiceConfig returns the default configuration
func DefaultUserServiceConfig() UserServiceConfig {
	return UserServiceConfig{
		AvatarUploadURLExpiry: 15 * time.Minute,
	}
}

// UserService handles profile operations
type UserService struct {
	userRepo      identity.UserRepository
	avatarStorage AvatarStorage
	config        UserServiceConfig
	logger        *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	avatarStorage AvatarStorage,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:      userRepo,
		avatarStorage: avatarStorage,
		config:        DefaultUserServiceConfig(),
		logger:        logger,
	}
}

// SetConfig sets the service configuration
func (s *UserService) SetConfig(config UserServiceConfig) {
	s.config = config
}

// GetProfile returns the user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile updates the user's display name and avatar URL.
// Nil request fields are left unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		if err := user.SetDisplayName(*req.DisplayName); err != nil {
			return nil, err
		}
	}
	if req.AvatarURL != nil {
		if err := user.SetAvatarURL(*req.AvatarURL); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update profile")
	}
	user.ClearDomainEvents()

	resp := ToUserResponse(user)
	return &resp, nil
}

// InitiateAvatarUpload presigns an avatar upload and points the profile
// at the stable URL the object will be served from
func (s *UserService) InitiateAvatarUpload(
	ctx context.Context,
	userID uuid.UUID,
	req AvatarUploadRequest,
) (*AvatarUploadResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	contentType := strings.ToLower(req.ContentType)
	if !allowedAvatarContentTypes[contentType] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed for avatars", req.ContentType))
	}

	name := sanitizeAvatarName(req.FileName)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name is invalid")
	}

	storageKey := AvatarKey(userID, name)
	uploadURL, expiresAt, err := s.avatarStorage.GenerateUploadURL(ctx, storageKey, contentType, s.config.AvatarUploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to presign avatar upload",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	avatarURL := s.avatarStorage.ObjectURL(storageKey)
	if err := user.SetAvatarURL(avatarURL); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save avatar URL", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update avatar")
	}
	user.ClearDomainEvents()

	return &AvatarUploadResponse{
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
		AvatarURL: avatarURL,
	}, nil
}

// AvatarKey builds the storage key for a user's avatar. The timestamp
// makes each upload a distinct object, never overwriting the previous one.
func AvatarKey(userID uuid.UUID, fileName string) string {
	return fmt.Sprintf("avatars/%s/avatar-%d-%s", userID, time.Now().Unix(), fileName)
}

func sanitizeAvatarName(name string) string {
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '\x00':
			return '_'
		}
		return r
	}, name)
}
