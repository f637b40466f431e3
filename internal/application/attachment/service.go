package attachment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/attachment"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/timesheet"
	"github.com/worktally/backend/internal/domain/workspace"
	"go.uber.org/zap"
)

// AllowedImageContentTypes whitelists content types for image proof uploads.
// SVG is excluded: it can carry scripts and inline event handlers.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/heic": true,
}

// ObjectStorageService defines the interface for object storage operations.
// Implemented by the infrastructure layer (S3 or the dev stub).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// Upload writes data directly to storage, used for server-generated
	// documents such as rendered invoices
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// DeletePrefix deletes every object whose key starts with the prefix,
	// used to clean a tab's storage before the tab row is removed
	DeletePrefix(ctx context.Context, prefix string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ServiceConfig holds configuration for the attachment service
type ServiceConfig struct {
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxAttachmentsPerTab caps the number of attachments on one tab
	MaxAttachmentsPerTab int
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		UploadURLExpiry:      15 * time.Minute,
		DownloadURLExpiry:    1 * time.Hour,
		MaxAttachmentsPerTab: 100,
	}
}

// Service handles tab attachment operations
type Service struct {
	attachmentRepo attachment.AttachmentRepository
	tabRepo        timesheet.TabRepository
	memberRepo     workspace.MemberRepository
	storage        ObjectStorageService
	config         ServiceConfig
	logger         *zap.Logger
}

// NewService creates a new attachment Service
func NewService(
	attachmentRepo attachment.AttachmentRepository,
	tabRepo timesheet.TabRepository,
	memberRepo workspace.MemberRepository,
	storage ObjectStorageService,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		attachmentRepo: attachmentRepo,
		tabRepo:        tabRepo,
		memberRepo:     memberRepo,
		storage:        storage,
		config:         DefaultServiceConfig(),
		logger:         logger,
	}
}

// SetConfig sets the service configuration
func (s *Service) SetConfig(config ServiceConfig) {
	s.config = config
}

// InitiateUpload records an attachment and returns a presigned upload URL.
// The caller must be able to see the target tab.
func (s *Service) InitiateUpload(
	ctx context.Context,
	workspaceID, userID uuid.UUID,
	req InitiateUploadRequest,
) (*InitiateUploadResponse, error) {
	tab, err := s.visibleTab(ctx, workspaceID, userID, req.TabID)
	if err != nil {
		return nil, err
	}

	count, err := s.attachmentRepo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"tab_id": req.TabID},
	})
	if err != nil {
		return nil, err
	}
	if count >= int64(s.config.MaxAttachmentsPerTab) {
		return nil, shared.NewDomainError("ATTACHMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d attachments per tab allowed", s.config.MaxAttachmentsPerTab))
	}

	kind := attachment.Kind(req.Kind)
	if err := validateContentType(kind, req.ContentType); err != nil {
		return nil, err
	}

	att, err := attachment.NewAttachment(
		workspaceID,
		tab.ID,
		tab.AssigneeID,
		userID,
		kind,
		req.FileName,
		req.ContentType,
		req.Size,
	)
	if err != nil {
		return nil, err
	}

	if err := s.attachmentRepo.SaveWithEvents(ctx, att, att.GetDomainEvents()); err != nil {
		return nil, err
	}
	att.ClearDomainEvents()

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(
		ctx,
		att.StorageKey,
		att.ContentType,
		s.config.UploadURLExpiry,
	)
	if err != nil {
		// Roll back the record so a failed presign leaves no orphan row
		_ = s.attachmentRepo.Delete(ctx, att.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		Attachment: ToAttachmentResponse(att),
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// GetDownloadURL returns a presigned download URL for an attachment
func (s *Service) GetDownloadURL(
	ctx context.Context,
	workspaceID, userID, attachmentID uuid.UUID,
) (*DownloadURLResponse, error) {
	att, err := s.attachmentRepo.FindByIDForWorkspace(ctx, workspaceID, attachmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleTab(ctx, workspaceID, userID, att.TabID); err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, att.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}

	return &DownloadURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// ListByTab lists a tab's attachments, optionally narrowed to one kind,
// each enriched with a presigned download URL
func (s *Service) ListByTab(
	ctx context.Context,
	workspaceID, userID, tabID uuid.UUID,
	filter AttachmentListFilter,
) ([]AttachmentResponse, error) {
	if _, err := s.visibleTab(ctx, workspaceID, userID, tabID); err != nil {
		return nil, err
	}

	var kind *attachment.Kind
	if filter.Kind != "" {
		k := attachment.Kind(filter.Kind)
		kind = &k
	}

	attachments, err := s.attachmentRepo.FindByTab(ctx, tabID, kind)
	if err != nil {
		return nil, err
	}

	responses := ToAttachmentResponses(attachments)
	for i := range attachments {
		url, _, err := s.storage.GenerateDownloadURL(ctx, attachments[i].StorageKey, s.config.DownloadURLExpiry)
		if err != nil {
			s.logger.Warn("failed to presign attachment download",
				zap.String("attachment_id", attachments[i].ID.String()),
				zap.Error(err))
			continue
		}
		responses[i].URL = url
	}

	return responses, nil
}

// Delete removes the storage object, then the attachment row.
// Allowed for the uploader, the tab assignee, and owner/manager roles.
func (s *Service) Delete(
	ctx context.Context,
	workspaceID, userID, attachmentID uuid.UUID,
) error {
	att, err := s.attachmentRepo.FindByIDForWorkspace(ctx, workspaceID, attachmentID)
	if err != nil {
		return err
	}

	tab, err := s.visibleTab(ctx, workspaceID, userID, att.TabID)
	if err != nil {
		return err
	}

	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if att.UploadedBy != userID && tab.AssigneeID != userID && !member.Role.SeesAllTabs() {
		return shared.ErrForbidden
	}

	// Storage first. An object that outlives its row is unreachable
	// garbage; a row that outlives its object is a broken link.
	if err := s.storage.DeleteObject(ctx, att.StorageKey); err != nil {
		s.logger.Warn("failed to delete attachment object",
			zap.String("attachment_id", att.ID.String()),
			zap.String("storage_key", att.StorageKey),
			zap.Error(err))
	}

	return s.attachmentRepo.DeleteWithEvents(ctx, att.ID, []shared.DomainEvent{
		attachment.NewAttachmentRemovedEvent(att),
	})
}

// visibleTab loads a tab and checks the caller may see it: owner and
// manager roles see every tab, plain members only their own
func (s *Service) visibleTab(ctx context.Context, workspaceID, userID, tabID uuid.UUID) (*timesheet.Tab, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	tab, err := s.tabRepo.FindByIDForWorkspace(ctx, workspaceID, tabID)
	if err != nil {
		return nil, err
	}

	if !member.Role.SeesAllTabs() && tab.AssigneeID != userID {
		return nil, shared.ErrForbidden
	}
	return tab, nil
}

func validateContentType(kind attachment.Kind, contentType string) error {
	ct := strings.ToLower(contentType)
	switch kind {
	case attachment.KindImage:
		if !AllowedImageContentTypes[ct] {
			return shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
				fmt.Sprintf("Content type '%s' is not allowed for image proofs", contentType))
		}
	case attachment.KindInvoice:
		if ct != "application/pdf" {
			return shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
				"Invoice attachments must be PDF documents")
		}
	}
	return nil
}
