package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/attachment"
	"github.com/worktally/backend/internal/infrastructure/config"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:          "worktally-test",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
		PresignExpiry:   15 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.AccessKeyID = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(testStorageConfig())
		require.NoError(t, err)
		require.NotNil(t, storage)
		assert.Equal(t, "worktally-test", storage.GetBucket())
		assert.Equal(t, 15*time.Minute, storage.presignExpiration)
	})

	t.Run("defaults region and presign expiry", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Region = ""
		cfg.PresignExpiry = 0
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, storage.presignExpiration)
	})

	t.Run("endpoint without scheme is accepted", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Endpoint = "localhost:9000"
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		require.NotNil(t, storage)
	})
}

func TestS3ObjectStorageOptions(t *testing.T) {
	t.Run("WithLogger sets custom logger", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(testStorageConfig(), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.NotNil(t, storage.logger)
	})

	t.Run("WithPresignExpiration sets custom duration", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(testStorageConfig(), WithPresignExpiration(1*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1*time.Hour, storage.presignExpiration)
	})

	t.Run("WithBucket overrides the bucket", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(testStorageConfig(), WithBucket("worktally-avatars"))
		require.NoError(t, err)
		assert.Equal(t, "worktally-avatars", storage.GetBucket())
	})
}

func TestS3ObjectStorage_GenerateUploadURL(t *testing.T) {
	storage, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)

	t.Run("empty storage key returns error", func(t *testing.T) {
		url, _, err := storage.GenerateUploadURL(context.Background(), "", "image/png", 15*time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
		assert.Empty(t, url)
	})

	t.Run("presigns the tab-scoped key", func(t *testing.T) {
		key := attachment.StorageKey(uuid.New(), uuid.New(), uuid.New(), "receipt.png")
		url, expiresAt, err := storage.GenerateUploadURL(context.Background(), key, "image/png", 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.Contains(url, "localhost:9000"))
		assert.True(t, strings.Contains(url, "worktally-test"))
		assert.True(t, strings.Contains(url, "receipt.png"))
		assert.True(t, expiresAt.After(time.Now()))
		assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
	})

	t.Run("uses default expiration when not provided", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateUploadURL(context.Background(), "a/b/c/receipt.png", "image/png", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.True(t, expiresAt.After(time.Now()))
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	storage, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)

	t.Run("empty storage key returns error", func(t *testing.T) {
		url, _, err := storage.GenerateDownloadURL(context.Background(), "", 1*time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
		assert.Empty(t, url)
	})

	t.Run("generates presigned URL", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateDownloadURL(context.Background(), "a/b/c/receipt.png", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, strings.Contains(url, "localhost:9000"))
		assert.True(t, strings.Contains(url, "worktally-test"))
		assert.True(t, expiresAt.After(time.Now()))
	})
}

func TestS3ObjectStorage_KeyValidation(t *testing.T) {
	storage, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, storage.DeleteObject(ctx, ""))
	assert.Error(t, storage.DeletePrefix(ctx, ""))
	assert.Error(t, storage.Upload(ctx, "", []byte("x"), "text/plain"))

	_, err = storage.ObjectExists(ctx, "")
	assert.Error(t, err)
}
