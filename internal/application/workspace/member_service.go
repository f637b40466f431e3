package workspace

import (
	"context"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/workspace"
	"go.uber.org/zap"
)

// MemberService handles membership operations within a workspace
type MemberService struct {
	memberRepo workspace.MemberRepository
	userRepo   identity.UserRepository
	logger     *zap.Logger
}

// NewMemberService creates a new member service
func NewMemberService(
	memberRepo workspace.MemberRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{
		memberRepo: memberRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// List returns the workspace's members enriched with profile data.
// Any member may list.
func (s *MemberService) List(ctx context.Context, workspaceID, userID uuid.UUID) ([]MemberResponse, error) {
	if _, err := s.requireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(members))
	for i := range members {
		ids[i] = members[i].UserID
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to load member profiles", zap.Error(err))
		users = nil
	}
	byID := make(map[uuid.UUID]*identity.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	responses := make([]MemberResponse, len(members))
	for i := range members {
		responses[i] = ToMemberResponse(&members[i], byID[members[i].UserID])
	}
	return responses, nil
}

// ChangeRole sets a member's role to manager or member. Owner only;
// the owner's own role cannot be changed.
func (s *MemberService) ChangeRole(ctx context.Context, workspaceID, callerID, targetUserID uuid.UUID, req ChangeRoleRequest) (*MemberResponse, error) {
	caller, err := s.requireMember(ctx, workspaceID, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.CanManageMembers() {
		return nil, shared.ErrForbidden
	}

	target, err := s.memberRepo.Find(ctx, workspaceID, targetUserID)
	if err != nil {
		return nil, err
	}

	if err := target.ChangeRole(workspace.MemberRole(req.Role)); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, target); err != nil {
		s.logger.Error("Failed to save role change", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to change role")
	}

	s.logger.Info("Member role changed",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("user_id", targetUserID.String()),
		zap.String("role", req.Role))

	resp := ToMemberResponse(target, nil)
	return &resp, nil
}

// Remove removes a member from the workspace. Owner only; the owner
// cannot be removed.
func (s *MemberService) Remove(ctx context.Context, workspaceID, callerID, targetUserID uuid.UUID) error {
	caller, err := s.requireMember(ctx, workspaceID, callerID)
	if err != nil {
		return err
	}
	if !caller.Role.CanManageMembers() {
		return shared.ErrForbidden
	}

	target, err := s.memberRepo.Find(ctx, workspaceID, targetUserID)
	if err != nil {
		return err
	}
	if target.IsOwner() {
		return shared.NewDomainError("OWNER_IMMUTABLE", "The owner cannot be removed")
	}

	if err := s.memberRepo.Delete(ctx, workspaceID, targetUserID); err != nil {
		return err
	}

	s.logger.Info("Member removed",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("user_id", targetUserID.String()))
	return nil
}

// Leave removes the caller's own membership. The owner cannot leave;
// they delete the workspace instead.
func (s *MemberService) Leave(ctx context.Context, workspaceID, userID uuid.UUID) error {
	member, err := s.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if member.IsOwner() {
		return shared.NewDomainError("OWNER_CANNOT_LEAVE", "The owner cannot leave the workspace")
	}

	if err := s.memberRepo.Delete(ctx, workspaceID, userID); err != nil {
		return err
	}

	s.logger.Info("Member left workspace",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("user_id", userID.String()))
	return nil
}

func (s *MemberService) requireMember(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotMember
		}
		return nil, err
	}
	return member, nil
}
