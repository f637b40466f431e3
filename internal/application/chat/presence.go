package chat

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/workspace"
)

// PresenceTracker marks members online and rebuilds workspace rosters
type PresenceTracker interface {
	Heartbeat(ctx context.Context, workspaceID uuid.UUID, member identity.ProfileSnapshot) error
	Leave(ctx context.Context, workspaceID, userID uuid.UUID) error
	Snapshot(ctx context.Context, workspaceID uuid.UUID) ([]identity.ProfileSnapshot, error)
	SubscribeSync(ctx context.Context, workspaceID uuid.UUID, callback func()) error
}

// PresenceService exposes member-gated presence operations. A roster
// is always rebuilt wholesale from the tracker's snapshot; nothing in
// this service diffs joins and leaves.
type PresenceService struct {
	tracker    PresenceTracker
	memberRepo workspace.MemberRepository
	userRepo   identity.UserRepository
	logger     *zap.Logger
}

// NewPresenceService creates a new presence service
func NewPresenceService(
	tracker PresenceTracker,
	memberRepo workspace.MemberRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *PresenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresenceService{
		tracker:    tracker,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Heartbeat marks the caller online in the workspace under their
// current profile snapshot
func (s *PresenceService) Heartbeat(ctx context.Context, workspaceID, userID uuid.UUID) error {
	if err := s.requireMember(ctx, workspaceID, userID); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.tracker.Heartbeat(ctx, workspaceID, user.Snapshot())
}

// Leave marks the caller offline immediately. Called on clean session
// teardown; an unclean disconnect falls back to TTL expiry.
func (s *PresenceService) Leave(ctx context.Context, workspaceID, userID uuid.UUID) error {
	return s.tracker.Leave(ctx, workspaceID, userID)
}

// Roster returns everyone currently online in the workspace
func (s *PresenceService) Roster(ctx context.Context, workspaceID, userID uuid.UUID) ([]SenderResponse, error) {
	if err := s.requireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	snapshots, err := s.tracker.Snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	roster := make([]SenderResponse, len(snapshots))
	for i, snap := range snapshots {
		roster[i] = SenderResponse{UserID: snap.UserID, DisplayName: snap.DisplayName, AvatarURL: snap.AvatarURL}
	}
	return roster, nil
}

// SubscribeSync blocks delivering presence change pings until the
// context is cancelled. Callers rebuild their roster from Roster on
// every ping.
func (s *PresenceService) SubscribeSync(ctx context.Context, workspaceID, userID uuid.UUID, callback func()) error {
	if err := s.requireMember(ctx, workspaceID, userID); err != nil {
		return err
	}
	return s.tracker.SubscribeSync(ctx, workspaceID, callback)
}

func (s *PresenceService) requireMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	if _, err := s.memberRepo.Find(ctx, workspaceID, userID); err != nil {
		if err == shared.ErrNotFound {
			return shared.ErrNotMember
		}
		return err
	}
	return nil
}
