package attachment

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// Kind distinguishes photo proof from generated invoice documents
type Kind string

const (
	KindImage   Kind = "image"
	KindInvoice Kind = "invoice"
)

// IsValid returns true for a known attachment kind
func (k Kind) IsValid() bool {
	return k == KindImage || k == KindInvoice
}

// MaxFileSize caps uploads at 20 MiB
const MaxFileSize = 20 << 20

// Attachment is a file proof linked to a tab, stored in object storage
// under a key derived from its workspace, assignee, and tab
type Attachment struct {
	shared.WorkspaceAggregateRoot
	TabID       uuid.UUID
	UploadedBy  uuid.UUID
	Kind        Kind
	FileName    string
	StorageKey  string
	ContentType string
	Size        int64
}

// NewAttachment creates an attachment record with a generated storage key
func NewAttachment(workspaceID, tabID, assigneeID, uploadedBy uuid.UUID, kind Kind, fileName, contentType string, size int64) (*Attachment, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Attachment kind must be image or invoice")
	}
	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILENAME", "File name cannot be empty")
	}
	if size <= 0 || size > MaxFileSize {
		return nil, shared.NewDomainError("INVALID_SIZE", "File size must be between 1 byte and 20 MiB")
	}
	if tabID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TAB", "Tab ID cannot be empty")
	}

	att := &Attachment{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRootWithCreator(workspaceID, uploadedBy),
		TabID:                  tabID,
		UploadedBy:             uploadedBy,
		Kind:                   kind,
		FileName:               fileName,
		StorageKey:             StorageKey(workspaceID, assigneeID, tabID, fileName),
		ContentType:            contentType,
		Size:                   size,
	}

	att.AddDomainEvent(NewAttachmentAddedEvent(att))

	return att, nil
}

// StorageKey builds the object key: workspace/assignee/tab/uuid-name.
// The random prefix keeps repeated uploads of the same file distinct.
func StorageKey(workspaceID, assigneeID, tabID uuid.UUID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s/%s-%s", workspaceID, assigneeID, tabID, uuid.New(), fileName)
}

// TabPrefix is the storage key prefix covering every attachment of a
// tab, used to clean up storage before the tab row is deleted
func TabPrefix(workspaceID, assigneeID, tabID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s/", workspaceID, assigneeID, tabID)
}

func sanitizeFileName(name string) string {
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
