package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/shared"
)

// LifecycleKind enumerates the states a displayed message moves through
type LifecycleKind uint8

const (
	// KindDraft is a composed but not yet sent message
	KindDraft LifecycleKind = iota
	// KindPending is optimistically shown under a temporary ID,
	// broadcast sent, awaiting the insert response
	KindPending
	// KindConfirmed has its server-assigned ID and timestamp
	KindConfirmed
	// KindEdited is confirmed with at least one content edit applied
	KindEdited
	// KindDeleted is terminal
	KindDeleted
)

// String returns the lifecycle kind name
func (k LifecycleKind) String() string {
	switch k {
	case KindDraft:
		return "draft"
	case KindPending:
		return "pending"
	case KindConfirmed:
		return "confirmed"
	case KindEdited:
		return "edited"
	case KindDeleted:
		return "deleted"
	default:
		return "invalid"
	}
}

// Lifecycle is the tagged per-message state. The temporary ID lives
// here, not as a prefix convention on the message ID field.
type Lifecycle struct {
	Kind   LifecycleKind
	TempID string
}

// LocalMessage is the record a session's message store holds: the
// display view of one logical message, carrying its lifecycle state
// and a denormalized sender snapshot
type LocalMessage struct {
	ID          string
	WorkspaceID uuid.UUID
	TabID       *uuid.UUID
	SenderID    uuid.UUID
	Content     string
	CreatedAt   time.Time
	EditedAt    *time.Time
	Sender      identity.ProfileSnapshot
	State       Lifecycle
}

// NewDraft composes a message for sending. The content is trimmed;
// an empty result is rejected so callers can drop the send silently.
func NewDraft(workspaceID uuid.UUID, tabID *uuid.UUID, sender identity.ProfileSnapshot, content string) (LocalMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return LocalMessage{}, shared.NewDomainError("EMPTY_MESSAGE", "Message content cannot be empty")
	}

	return LocalMessage{
		WorkspaceID: workspaceID,
		TabID:       tabID,
		SenderID:    sender.UserID,
		Content:     content,
		Sender:      sender,
		State:       Lifecycle{Kind: KindDraft},
	}, nil
}

// NewTempID generates a temporary message identifier. The prefix keeps
// the wire form recognizable for humans; code decides on State, never
// on the prefix.
func NewTempID() string {
	return "temp-" + uuid.NewString()
}

// MarkPending moves Draft -> Pending under the given temporary ID and
// stamps the optimistic creation time
func (m *LocalMessage) MarkPending(tempID string) error {
	if m.State.Kind != KindDraft {
		return shared.ErrInvalidState
	}
	m.ID = tempID
	m.CreatedAt = time.Now()
	m.State = Lifecycle{Kind: KindPending, TempID: tempID}
	return nil
}

// Confirm moves Pending -> Confirmed, correcting the ID and creation
// time in place with the server-assigned values
func (m *LocalMessage) Confirm(finalID string, createdAt time.Time) error {
	if m.State.Kind != KindPending {
		return shared.ErrInvalidState
	}
	m.ID = finalID
	m.CreatedAt = createdAt
	m.State = Lifecycle{Kind: KindConfirmed}
	return nil
}

// MarkEdited applies an edit to a confirmed message. Edited is sticky:
// further edits stay Edited.
func (m *LocalMessage) MarkEdited(content string, editedAt time.Time) error {
	if m.State.Kind != KindConfirmed && m.State.Kind != KindEdited {
		return shared.ErrInvalidState
	}
	m.Content = content
	m.EditedAt = &editedAt
	m.State = Lifecycle{Kind: KindEdited}
	return nil
}

// MarkDeleted moves any live state to the terminal Deleted state
func (m *LocalMessage) MarkDeleted() {
	m.State = Lifecycle{Kind: KindDeleted}
}

// IsPending returns true while the message awaits server confirmation
func (m *LocalMessage) IsPending() bool {
	return m.State.Kind == KindPending
}

// IsDeleted returns true once the message reached its terminal state
func (m *LocalMessage) IsDeleted() bool {
	return m.State.Kind == KindDeleted
}
