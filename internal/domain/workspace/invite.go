package workspace

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// DefaultInviteTTL is how long a new invite stays valid
const DefaultInviteTTL = 3 * 24 * time.Hour

// InviteStatus is the derived state of an invite
type InviteStatus string

const (
	InviteStatusActive  InviteStatus = "active"
	InviteStatusExpired InviteStatus = "expired"
	InviteStatusUsed    InviteStatus = "used"
	InviteStatusRevoked InviteStatus = "revoked"
)

// Invite is a single-use, expiring token that grants workspace membership
type Invite struct {
	shared.BaseAggregateRoot
	Token       string
	WorkspaceID uuid.UUID
	Role        MemberRole
	CreatedBy   uuid.UUID
	ExpiresAt   time.Time
	UsedBy      *uuid.UUID
	UsedAt      *time.Time
	Revoked     bool
}

// NewInvite creates an invite for the workspace. Only manager and member
// roles can be granted by invite; ttl <= 0 falls back to the default.
func NewInvite(workspaceID, createdBy uuid.UUID, role MemberRole, ttl time.Duration) (*Invite, error) {
	if role != RoleManager && role != RoleMember {
		return nil, shared.NewDomainError("INVALID_ROLE", "Invites can grant manager or member only")
	}
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to generate invite token")
	}

	inv := &Invite{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Token:             token,
		WorkspaceID:       workspaceID,
		Role:              role,
		CreatedBy:         createdBy,
		ExpiresAt:         time.Now().Add(ttl),
	}

	inv.AddDomainEvent(NewInviteCreatedEvent(inv))

	return inv, nil
}

// Status derives the invite state. Precedence: revoked beats used,
// used beats expired, expired beats active.
func (i *Invite) Status() InviteStatus {
	switch {
	case i.Revoked:
		return InviteStatusRevoked
	case i.UsedAt != nil:
		return InviteStatusUsed
	case time.Now().After(i.ExpiresAt):
		return InviteStatusExpired
	default:
		return InviteStatusActive
	}
}

// Accept marks the invite used by the given user. It fails unless the
// invite is currently active.
func (i *Invite) Accept(userID uuid.UUID) error {
	switch i.Status() {
	case InviteStatusRevoked:
		return shared.ErrInviteRevoked
	case InviteStatusUsed:
		return shared.ErrInviteUsed
	case InviteStatusExpired:
		return shared.ErrInviteExpired
	}

	now := time.Now()
	i.UsedBy = &userID
	i.UsedAt = &now
	i.UpdatedAt = now
	i.IncrementVersion()

	i.AddDomainEvent(NewInviteAcceptedEvent(i, userID))

	return nil
}

// Revoke invalidates the invite. Revoking an already-used invite fails;
// revoking twice is a no-op.
func (i *Invite) Revoke() error {
	if i.UsedAt != nil {
		return shared.ErrInviteUsed
	}
	if i.Revoked {
		return nil
	}

	i.Revoked = true
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

func newInviteToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
