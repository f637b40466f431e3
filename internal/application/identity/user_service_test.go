package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/shared"
)

type MockAvatarStorage struct {
	mock.Mock
}

func (m *MockAvatarStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAvatarStorage) ObjectURL(storageKey string) string {
	args := m.Called(storageKey)
	return args.String(0)
}

var _ AvatarStorage = (*MockAvatarStorage)(nil)

type userFixture struct {
	userRepo *MockUserRepository
	storage  *MockAvatarStorage
	service  *UserService
}

func newUserFixture() *userFixture {
	userRepo := new(MockUserRepository)
	storage := new(MockAvatarStorage)
	return &userFixture{
		userRepo: userRepo,
		storage:  storage,
		service:  NewUserService(userRepo, storage, nil),
	}
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the profile", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		require.NoError(t, user.SetDisplayName("Dana"))
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		resp, err := f.service.GetProfile(ctx, user.ID)
		require.NoError(t, err)

		assert.Equal(t, user.ID, resp.ID)
		assert.Equal(t, "dana@example.com", resp.Email)
		assert.Equal(t, "Dana", resp.DisplayName)
	})

	t.Run("display name falls back to the email local part", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		resp, err := f.service.GetProfile(ctx, user.ID)
		require.NoError(t, err)

		assert.Equal(t, "dana", resp.DisplayName)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		f.userRepo.On("FindByID", ctx, user.ID).Return(nil, shared.ErrNotFound)

		_, err := f.service.GetProfile(ctx, user.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("updates only the provided fields", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		require.NoError(t, user.SetAvatarURL("https://storage.example.com/avatars/old.png"))
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)

		name := "Dana L."
		resp, err := f.service.UpdateProfile(ctx, user.ID, UpdateProfileRequest{DisplayName: &name})
		require.NoError(t, err)

		assert.Equal(t, "Dana L.", resp.DisplayName)
		assert.Equal(t, "https://storage.example.com/avatars/old.png", resp.AvatarURL)
	})

	t.Run("rejects an oversized display name", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		name := strings.Repeat("x", 201)
		_, err := f.service.UpdateProfile(ctx, user.ID, UpdateProfileRequest{DisplayName: &name})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DISPLAY_NAME", domainErr.Code)
		f.userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestUserService_InitiateAvatarUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns the upload and stores the stable URL", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)

		expiresAt := time.Now().Add(15 * time.Minute)
		var capturedKey string
		f.storage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "image/png", 15*time.Minute).
			Run(func(args mock.Arguments) { capturedKey = args.String(1) }).
			Return("https://storage.example.com/upload/signed", expiresAt, nil)
		f.storage.On("ObjectURL", mock.AnythingOfType("string")).
			Return("https://storage.example.com/avatars/stable.png")

		resp, err := f.service.InitiateAvatarUpload(ctx, user.ID, AvatarUploadRequest{
			FileName:    "me.png",
			ContentType: "image/png",
		})
		require.NoError(t, err)

		assert.Equal(t, "https://storage.example.com/upload/signed", resp.UploadURL)
		assert.Equal(t, "https://storage.example.com/avatars/stable.png", resp.AvatarURL)
		assert.Equal(t, resp.AvatarURL, user.AvatarURL)
		assert.True(t, strings.HasPrefix(capturedKey, "avatars/"+user.ID.String()+"/avatar-"))
		assert.True(t, strings.HasSuffix(capturedKey, "-me.png"))
	})

	t.Run("rejects non-image content types", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := f.service.InitiateAvatarUpload(ctx, user.ID, AvatarUploadRequest{
			FileName:    "cv.pdf",
			ContentType: "application/pdf",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DISALLOWED_CONTENT_TYPE", domainErr.Code)
	})

	t.Run("rejects svg", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := f.service.InitiateAvatarUpload(ctx, user.ID, AvatarUploadRequest{
			FileName:    "me.svg",
			ContentType: "image/svg+xml",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DISALLOWED_CONTENT_TYPE", domainErr.Code)
	})

	t.Run("path components are stripped from the file name", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)

		var capturedKey string
		f.storage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "image/png", mock.Anything).
			Run(func(args mock.Arguments) { capturedKey = args.String(1) }).
			Return("https://storage.example.com/upload/signed", time.Now().Add(time.Minute), nil)
		f.storage.On("ObjectURL", mock.AnythingOfType("string")).Return("https://storage.example.com/x.png")

		_, err := f.service.InitiateAvatarUpload(ctx, user.ID, AvatarUploadRequest{
			FileName:    "../../etc/me.png",
			ContentType: "image/png",
		})
		require.NoError(t, err)

		assert.NotContains(t, capturedKey, "..")
		assert.True(t, strings.HasSuffix(capturedKey, "-me.png"))
	})

	t.Run("presign failure leaves the profile untouched", func(t *testing.T) {
		f := newUserFixture()
		user := newActiveUser(t, "dana@example.com", "correct-horse")
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.storage.On("GenerateUploadURL", ctx, mock.Anything, "image/png", mock.Anything).
			Return("", time.Time{}, assert.AnError)

		_, err := f.service.InitiateAvatarUpload(ctx, user.ID, AvatarUploadRequest{
			FileName:    "me.png",
			ContentType: "image/png",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UPLOAD_URL_FAILED", domainErr.Code)
		assert.Empty(t, user.AvatarURL)
		f.userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
