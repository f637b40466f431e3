package timesheet

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worktally/backend/internal/domain/attachment"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/timesheet"
	"github.com/worktally/backend/internal/domain/workspace"
)

// StorageCleaner removes stored objects under a key prefix
type StorageCleaner interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// TabService handles tab lifecycle within a workspace
type TabService struct {
	tabRepo        timesheet.TabRepository
	memberRepo     workspace.MemberRepository
	workspaceRepo  workspace.WorkspaceRepository
	attachmentRepo attachment.AttachmentRepository
	storage        StorageCleaner
	logger         *zap.Logger
}

// NewTabService creates a new tab service
func NewTabService(
	tabRepo timesheet.TabRepository,
	memberRepo workspace.MemberRepository,
	workspaceRepo workspace.WorkspaceRepository,
	attachmentRepo attachment.AttachmentRepository,
	storage StorageCleaner,
	logger *zap.Logger,
) *TabService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TabService{
		tabRepo:        tabRepo,
		memberRepo:     memberRepo,
		workspaceRepo:  workspaceRepo,
		attachmentRepo: attachmentRepo,
		storage:        storage,
		logger:         logger,
	}
}

// Create creates a tab. The assignee defaults to the caller; assigning
// another member requires a role that sees all tabs.
func (s *TabService) Create(ctx context.Context, workspaceID, userID uuid.UUID, req *CreateTabRequest) (*TabResponse, error) {
	member, err := s.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	assigneeID := userID
	if req.AssigneeID != nil && *req.AssigneeID != userID {
		if !member.Role.SeesAllTabs() {
			return nil, shared.ErrForbidden
		}
		if _, err := s.memberRepo.Find(ctx, workspaceID, *req.AssigneeID); err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewDomainError("ASSIGNEE_NOT_MEMBER", "Assignee is not a member of this workspace")
			}
			return nil, err
		}
		assigneeID = *req.AssigneeID
	}

	tab, err := timesheet.NewTab(workspaceID, assigneeID, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.tabRepo.SaveWithEvents(ctx, tab, []shared.DomainEvent{timesheet.NewTabCreatedEvent(tab)}); err != nil {
		s.logger.Error("Failed to create tab", zap.Error(err), zap.String("workspace_id", workspaceID.String()))
		return nil, err
	}

	resp := ToTabResponse(tab)
	return &resp, nil
}

// List returns the tabs visible to the caller. Plain members see only
// their own tabs; owners and managers see every member's, optionally
// narrowed by assignee.
func (s *TabService) List(ctx context.Context, workspaceID, userID uuid.UUID, filter *TabListFilter) ([]TabResponse, error) {
	member, err := s.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	if !member.Role.SeesAllTabs() {
		tabs, err := s.tabRepo.FindByAssignee(ctx, workspaceID, userID)
		if err != nil {
			return nil, err
		}
		return ToTabResponses(tabs), nil
	}

	if filter != nil && filter.AssigneeID != nil {
		tabs, err := s.tabRepo.FindByAssignee(ctx, workspaceID, *filter.AssigneeID)
		if err != nil {
			return nil, err
		}
		return ToTabResponses(tabs), nil
	}

	tabs, err := s.tabRepo.FindAllForWorkspace(ctx, workspaceID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	return ToTabResponses(tabs), nil
}

// Get returns a single tab if the caller may see it
func (s *TabService) Get(ctx context.Context, workspaceID, userID, tabID uuid.UUID) (*TabResponse, error) {
	tab, _, err := s.visibleTab(ctx, workspaceID, userID, tabID)
	if err != nil {
		return nil, err
	}
	resp := ToTabResponse(tab)
	return &resp, nil
}

// Update applies the non-nil fields of the request to a tab. Hours are
// recomputed whenever the entry rows change.
func (s *TabService) Update(ctx context.Context, workspaceID, userID, tabID uuid.UUID, req *UpdateTabRequest) (*TabResponse, error) {
	tab, _, err := s.visibleTab(ctx, workspaceID, userID, tabID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := tab.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Entries != nil {
		if err := tab.SetEntries(toDomainEntries(*req.Entries)); err != nil {
			return nil, err
		}
	}
	if req.Roles != nil {
		if err := tab.SetRoles(toDomainRoles(*req.Roles)); err != nil {
			return nil, err
		}
	}
	if req.Invoice != nil {
		tab.SetInvoice(&timesheet.InvoiceMeta{
			Number:   req.Invoice.Number,
			IssuedOn: req.Invoice.IssuedOn,
			BillTo:   req.Invoice.BillTo,
			Notes:    req.Invoice.Notes,
		})
	}
	if req.Notes != nil {
		tab.SetNotes(*req.Notes)
	}

	if err := s.tabRepo.SaveWithEvents(ctx, tab, []shared.DomainEvent{timesheet.NewTabUpdatedEvent(tab)}); err != nil {
		s.logger.Error("Failed to update tab", zap.Error(err), zap.String("tab_id", tabID.String()))
		return nil, err
	}

	resp := ToTabResponse(tab)
	return &resp, nil
}

// Delete removes a tab with its attachments. Only the workspace owner
// or the tab's assignee may delete it.
func (s *TabService) Delete(ctx context.Context, workspaceID, userID, tabID uuid.UUID) error {
	tab, _, err := s.visibleTab(ctx, workspaceID, userID, tabID)
	if err != nil {
		return err
	}

	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if !tab.DeletableBy(userID, ws.OwnerID) {
		return shared.ErrForbidden
	}

	prefix := attachment.TabPrefix(workspaceID, tab.AssigneeID, tab.ID)
	if err := s.storage.DeletePrefix(ctx, prefix); err != nil {
		// Orphaned objects are invisible without their attachment rows
		s.logger.Warn("Failed to clear tab storage", zap.Error(err), zap.String("prefix", prefix))
	}
	if err := s.attachmentRepo.DeleteByTab(ctx, tabID); err != nil {
		return err
	}

	return s.tabRepo.DeleteWithEvents(ctx, tabID, []shared.DomainEvent{timesheet.NewTabDeletedEvent(tab)})
}

func (s *TabService) requireMember(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotMember
		}
		return nil, err
	}
	return member, nil
}

// visibleTab loads a tab and checks the caller may see it: owners and
// managers see everything, members only their own.
func (s *TabService) visibleTab(ctx context.Context, workspaceID, userID, tabID uuid.UUID) (*timesheet.Tab, *workspace.Member, error) {
	member, err := s.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, nil, err
	}

	tab, err := s.tabRepo.FindByIDForWorkspace(ctx, workspaceID, tabID)
	if err != nil {
		return nil, nil, err
	}
	if !member.Role.SeesAllTabs() && tab.AssigneeID != userID {
		return nil, nil, shared.ErrNotFound
	}
	return tab, member, nil
}
