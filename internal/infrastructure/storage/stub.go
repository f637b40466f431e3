package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	attachmentapp "github.com/worktally/backend/internal/application/attachment"
)

// StubObjectStorage is an in-memory ObjectStorageService for development
// and tests. Presigned URLs are synthetic; Upload and delete operations
// track keys so existence checks and prefix cleanup behave realistically.
type StubObjectStorage struct {
	// BaseURL is the base URL for generated upload/download URLs
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Ensure StubObjectStorage implements ObjectStorageService
var _ attachmentapp.ObjectStorageService = (*StubObjectStorage)(nil)

// GenerateUploadURL generates a synthetic presigned upload URL
func (s *StubObjectStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// GenerateDownloadURL generates a synthetic presigned download URL
func (s *StubObjectStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// ObjectURL returns a stable synthetic URL for the key
func (s *StubObjectStorage) ObjectURL(storageKey string) string {
	return s.BaseURL + "/" + storageKey
}

// Upload stores data in memory under the key
func (s *StubObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = data
	return nil
}

// DeleteObject removes a stored key; deleting an absent key succeeds
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// DeletePrefix removes every stored key under the prefix
func (s *StubObjectStorage) DeletePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return errors.New("storage prefix is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
		}
	}
	return nil
}

// ObjectExists reports whether the key holds uploaded data. Keys never
// written through Upload are reported present so the presigned-upload
// confirmation flow works in development.
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.objects) == 0 {
		return true, nil
	}
	_, ok := s.objects[storageKey]
	return ok, nil
}

// Keys returns the stored keys, for test assertions
func (s *StubObjectStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		keys = append(keys, key)
	}
	return keys
}
