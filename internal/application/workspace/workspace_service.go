// Package workspace implements workspace, membership and invite
// operations on top of the domain model.
package workspace

import (
	"context"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/workspace"
	"go.uber.org/zap"
)

// StorageCleaner removes stored objects under a key prefix. Used to
// clean attachment storage when a workspace is deleted.
type StorageCleaner interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// WorkspaceService handles workspace lifecycle operations
type WorkspaceService struct {
	workspaceRepo workspace.WorkspaceRepository
	memberRepo    workspace.MemberRepository
	storage       StorageCleaner
	logger        *zap.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	workspaceRepo workspace.WorkspaceRepository,
	memberRepo workspace.MemberRepository,
	storage StorageCleaner,
	logger *zap.Logger,
) *WorkspaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		storage:       storage,
		logger:        logger,
	}
}

// Create creates a workspace and makes the creator its owner member
func (s *WorkspaceService) Create(ctx context.Context, userID uuid.UUID, req CreateWorkspaceRequest) (*WorkspaceResponse, error) {
	taken, err := s.workspaceRepo.ExistsByName(ctx, workspace.NormalizeWorkspaceName(req.Name))
	if err != nil {
		s.logger.Error("Failed to check workspace name", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check name availability")
	}
	if taken {
		return nil, shared.NewDomainError("NAME_TAKEN", "A workspace with this name already exists")
	}

	ws, err := workspace.NewWorkspace(req.Name, userID)
	if err != nil {
		return nil, err
	}

	if err := s.workspaceRepo.SaveWithEvents(ctx, ws, ws.GetDomainEvents()); err != nil {
		s.logger.Error("Failed to save workspace", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create workspace")
	}
	ws.ClearDomainEvents()

	owner, err := workspace.NewMember(ws.ID, userID, workspace.RoleOwner, nil)
	if err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, owner); err != nil {
		s.logger.Error("Failed to save owner membership", zap.Error(err))
		// A workspace without its owner row is unusable; take it back out
		_ = s.workspaceRepo.Delete(ctx, ws.ID)
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create workspace")
	}

	s.logger.Info("Workspace created",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("owner_id", userID.String()))

	resp := ToWorkspaceResponse(ws, workspace.RoleOwner)
	return &resp, nil
}

// List returns the workspaces the user belongs to, with the user's role
func (s *WorkspaceService) List(ctx context.Context, userID uuid.UUID) ([]WorkspaceResponse, error) {
	workspaces, err := s.workspaceRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]WorkspaceResponse, 0, len(workspaces))
	for i := range workspaces {
		role := workspace.RoleUnknown
		if member, err := s.memberRepo.Find(ctx, workspaces[i].ID, userID); err == nil {
			role = member.Role
		}
		responses = append(responses, ToWorkspaceResponse(&workspaces[i], role))
	}
	return responses, nil
}

// Get returns one workspace the user is a member of
func (s *WorkspaceService) Get(ctx context.Context, workspaceID, userID uuid.UUID) (*WorkspaceResponse, error) {
	member, err := s.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	resp := ToWorkspaceResponse(ws, member.Role)
	return &resp, nil
}

// Rename renames the workspace. Allowed for owner and manager roles.
func (s *WorkspaceService) Rename(ctx context.Context, workspaceID, userID uuid.UUID, req RenameWorkspaceRequest) (*WorkspaceResponse, error) {
	member, err := s.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanRename() {
		return nil, shared.ErrForbidden
	}

	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	newNormalized := workspace.NormalizeWorkspaceName(req.Name)
	if newNormalized != ws.NormalizedName() {
		taken, err := s.workspaceRepo.ExistsByName(ctx, newNormalized)
		if err != nil {
			s.logger.Error("Failed to check workspace name", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check name availability")
		}
		if taken {
			return nil, shared.NewDomainError("NAME_TAKEN", "A workspace with this name already exists")
		}
	}

	if err := ws.Rename(req.Name); err != nil {
		return nil, err
	}

	if err := s.workspaceRepo.SaveWithEvents(ctx, ws, ws.GetDomainEvents()); err != nil {
		s.logger.Error("Failed to save workspace rename", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to rename workspace")
	}
	ws.ClearDomainEvents()

	resp := ToWorkspaceResponse(ws, member.Role)
	return &resp, nil
}

// Delete removes the workspace with everything in it: members, invites,
// tabs, messages and stored attachments. Owner only.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, userID uuid.UUID) error {
	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if !ws.IsOwnedBy(userID) {
		return shared.ErrForbidden
	}

	// Attachment keys all start with "<workspace>/", so one prefix
	// sweep clears the workspace's storage
	if err := s.storage.DeletePrefix(ctx, workspaceID.String()+"/"); err != nil {
		s.logger.Warn("Failed to clean workspace storage",
			zap.String("workspace_id", workspaceID.String()),
			zap.Error(err))
	}

	if err := s.workspaceRepo.DeleteWithEvents(ctx, workspaceID, []shared.DomainEvent{
		workspace.NewWorkspaceDeletedEvent(ws),
	}); err != nil {
		s.logger.Error("Failed to delete workspace", zap.Error(err))
		return err
	}

	s.logger.Info("Workspace deleted",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("owner_id", userID.String()))
	return nil
}

// requireMember loads the caller's membership, mapping a missing row to
// the not-a-member error
func (s *WorkspaceService) requireMember(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotMember
		}
		return nil, err
	}
	return member, nil
}
