package workspace

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/workspace"
	"go.uber.org/zap"
)

// InviteServiceConfig holds configuration for the invite service
type InviteServiceConfig struct {
	// BaseURL is the public frontend base URL used to build join links
	BaseURL string
	// DefaultTTL is the invite lifetime when the request does not set one
	DefaultTTL time.Duration
}

// DefaultInviteServiceConfig returns the default configuration
func DefaultInviteServiceConfig() InviteServiceConfig {
	return InviteServiceConfig{
		BaseURL:    "http://localhost:3000",
		DefaultTTL: workspace.DefaultInviteTTL,
	}
}

// InviteService handles invite creation, revocation and acceptance
type InviteService struct {
	inviteRepo    workspace.InviteRepository
	memberRepo    workspace.MemberRepository
	workspaceRepo workspace.WorkspaceRepository
	config        InviteServiceConfig
	logger        *zap.Logger
}

// NewInviteService creates a new invite service
func NewInviteService(
	inviteRepo workspace.InviteRepository,
	memberRepo workspace.MemberRepository,
	workspaceRepo workspace.WorkspaceRepository,
	logger *zap.Logger,
) *InviteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InviteService{
		inviteRepo:    inviteRepo,
		memberRepo:    memberRepo,
		workspaceRepo: workspaceRepo,
		config:        DefaultInviteServiceConfig(),
		logger:        logger,
	}
}

// SetConfig sets the service configuration
func (s *InviteService) SetConfig(config InviteServiceConfig) {
	s.config = config
}

// Create creates an invite link. Allowed for owner and manager roles.
func (s *InviteService) Create(ctx context.Context, workspaceID, userID uuid.UUID, req CreateInviteRequest) (*InviteResponse, error) {
	member, err := s.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanInvite() {
		return nil, shared.ErrForbidden
	}

	ttl := s.config.DefaultTTL
	if req.ExpiresInHours > 0 {
		ttl = time.Duration(req.ExpiresInHours) * time.Hour
	}

	inv, err := workspace.NewInvite(workspaceID, userID, workspace.MemberRole(req.Role), ttl)
	if err != nil {
		return nil, err
	}

	if err := s.inviteRepo.SaveWithEvents(ctx, inv, inv.GetDomainEvents()); err != nil {
		s.logger.Error("Failed to save invite", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create invite")
	}
	inv.ClearDomainEvents()

	s.logger.Info("Invite created",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("invite_id", inv.ID.String()),
		zap.String("role", req.Role))

	resp := ToInviteResponse(inv, s.joinURL(inv.Token))
	return &resp, nil
}

// List returns the workspace's invites, newest first. Allowed for
// owner and manager roles.
func (s *InviteService) List(ctx context.Context, workspaceID, userID uuid.UUID) ([]InviteResponse, error) {
	member, err := s.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanInvite() {
		return nil, shared.ErrForbidden
	}

	invites, err := s.inviteRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	responses := make([]InviteResponse, len(invites))
	for i := range invites {
		responses[i] = ToInviteResponse(&invites[i], s.joinURL(invites[i].Token))
	}
	return responses, nil
}

// Revoke invalidates an invite. Allowed for owner and manager roles.
func (s *InviteService) Revoke(ctx context.Context, workspaceID, userID, inviteID uuid.UUID) error {
	member, err := s.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !member.Role.CanInvite() {
		return shared.ErrForbidden
	}

	inv, err := s.inviteRepo.FindByID(ctx, inviteID)
	if err != nil {
		return err
	}
	if inv.WorkspaceID != workspaceID {
		return shared.ErrNotFound
	}

	if err := inv.Revoke(); err != nil {
		return err
	}
	if err := s.inviteRepo.Save(ctx, inv); err != nil {
		s.logger.Error("Failed to save invite revocation", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke invite")
	}

	s.logger.Info("Invite revoked",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("invite_id", inviteID.String()))
	return nil
}

// Preview resolves a join token to the public invite view. No
// authentication required; the join page calls this before login.
func (s *InviteService) Preview(ctx context.Context, token string) (*InvitePreviewResponse, error) {
	inv, err := s.inviteRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	ws, err := s.workspaceRepo.FindByID(ctx, inv.WorkspaceID)
	if err != nil {
		return nil, err
	}

	return &InvitePreviewResponse{
		WorkspaceName: ws.Name,
		Role:          string(inv.Role),
		Status:        string(inv.Status()),
	}, nil
}

// Accept redeems an active invite for the calling user and inserts the
// membership it grants
func (s *InviteService) Accept(ctx context.Context, token string, userID uuid.UUID) (*WorkspaceResponse, error) {
	inv, err := s.inviteRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if _, err := s.memberRepo.Find(ctx, inv.WorkspaceID, userID); err == nil {
		return nil, shared.NewDomainError("ALREADY_MEMBER", "You are already a member of this workspace")
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	if err := inv.Accept(userID); err != nil {
		return nil, err
	}

	member, err := workspace.NewMember(inv.WorkspaceID, userID, inv.Role, &inv.CreatedBy)
	if err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		s.logger.Error("Failed to save membership", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to join workspace")
	}

	if err := s.inviteRepo.SaveWithEvents(ctx, inv, inv.GetDomainEvents()); err != nil {
		// Membership exists; the invite stays redeemable but a second
		// accept is stopped by the member check above
		s.logger.Error("Failed to mark invite used", zap.Error(err))
	}
	inv.ClearDomainEvents()

	ws, err := s.workspaceRepo.FindByID(ctx, inv.WorkspaceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invite accepted",
		zap.String("workspace_id", inv.WorkspaceID.String()),
		zap.String("user_id", userID.String()),
		zap.String("role", string(inv.Role)))

	resp := ToWorkspaceResponse(ws, inv.Role)
	return &resp, nil
}

func (s *InviteService) joinURL(token string) string {
	return strings.TrimSuffix(s.config.BaseURL, "/") + "/join/" + token
}

func (s *InviteService) requireMember(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotMember
		}
		return nil, err
	}
	return member, nil
}
