package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/worktally/backend/internal/domain/attachment"
	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/timesheet"
	"github.com/worktally/backend/internal/domain/workspace"
	"github.com/worktally/backend/internal/infrastructure/printing"
)

// DocumentStorage is the slice of object storage invoice generation
// needs: direct upload for the rendered PDF and a presigned read for
// the response
type DocumentStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ServiceConfig holds configuration for invoice generation
type ServiceConfig struct {
	// DownloadURLExpiry is how long the returned link stays valid
	DownloadURLExpiry time.Duration
	// RenderTimeout bounds one headless-Chrome print
	RenderTimeout time.Duration
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DownloadURLExpiry: 1 * time.Hour,
		RenderTimeout:     30 * time.Second,
	}
}

// InvoiceResponse is the result of generating a tab invoice
type InvoiceResponse struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	FileName     string    `json:"file_name"`
	Size         int64     `json:"size"`
	PageCount    int       `json:"page_count"`
	DownloadURL  string    `json:"download_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Service renders a tab summary to PDF and files it as an invoice
// attachment on the tab
type Service struct {
	tabRepo        timesheet.TabRepository
	memberRepo     workspace.MemberRepository
	workspaceRepo  workspace.WorkspaceRepository
	userRepo       identity.UserRepository
	attachmentRepo attachment.AttachmentRepository
	storage        DocumentStorage
	template       *printing.InvoiceTemplate
	renderer       printing.PDFRenderer
	config         ServiceConfig
	logger         *zap.Logger
}

// NewService creates a new invoice service
func NewService(
	tabRepo timesheet.TabRepository,
	memberRepo workspace.MemberRepository,
	workspaceRepo workspace.WorkspaceRepository,
	userRepo identity.UserRepository,
	attachmentRepo attachment.AttachmentRepository,
	storage DocumentStorage,
	template *printing.InvoiceTemplate,
	renderer printing.PDFRenderer,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tabRepo:        tabRepo,
		memberRepo:     memberRepo,
		workspaceRepo:  workspaceRepo,
		userRepo:       userRepo,
		attachmentRepo: attachmentRepo,
		storage:        storage,
		template:       template,
		renderer:       renderer,
		config:         DefaultServiceConfig(),
		logger:         logger,
	}
}

// SetConfig overrides the default configuration
func (s *Service) SetConfig(config ServiceConfig) {
	s.config = config
}

// Generate renders the tab's invoice PDF, stores it as an attachment,
// and returns a presigned download link
func (s *Service) Generate(ctx context.Context, workspaceID, userID, tabID uuid.UUID) (*InvoiceResponse, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotMember
		}
		return nil, err
	}

	tab, err := s.tabRepo.FindByIDForWorkspace(ctx, workspaceID, tabID)
	if err != nil {
		return nil, err
	}
	if !member.Role.SeesAllTabs() && tab.AssigneeID != userID {
		return nil, shared.ErrNotFound
	}

	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	assigneeName := tab.AssigneeID.String()
	if assignee, err := s.userRepo.FindByID(ctx, tab.AssigneeID); err == nil {
		assigneeName = assignee.DisplayLabel()
	}

	data := buildInvoiceData(tab, ws.Name, assigneeName)
	html, err := s.template.Render(data)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:    html,
		Title:   fmt.Sprintf("Invoice %s", invoiceLabel(tab)),
		Timeout: s.config.RenderTimeout,
	})
	if err != nil {
		s.logger.Error("Invoice render failed", zap.Error(err), zap.String("tab_id", tabID.String()))
		return nil, err
	}

	fileName := invoiceFileName(tab)
	att, err := attachment.NewAttachment(workspaceID, tabID, tab.AssigneeID, userID,
		attachment.KindInvoice, fileName, "application/pdf", int64(len(result.PDFData)))
	if err != nil {
		return nil, err
	}

	if err := s.storage.Upload(ctx, att.StorageKey, result.PDFData, "application/pdf"); err != nil {
		s.logger.Error("Invoice upload failed", zap.Error(err), zap.String("storage_key", att.StorageKey))
		return nil, err
	}

	if err := s.attachmentRepo.SaveWithEvents(ctx, att, att.GetDomainEvents()); err != nil {
		return nil, err
	}
	att.ClearDomainEvents()

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, att.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		// The attachment exists; the client can fetch a link later
		s.logger.Warn("Invoice download link failed", zap.Error(err), zap.String("attachment_id", att.ID.String()))
	}

	return &InvoiceResponse{
		AttachmentID: att.ID,
		FileName:     att.FileName,
		Size:         att.Size,
		PageCount:    result.PageCount,
		DownloadURL:  url,
		ExpiresAt:    expiresAt,
	}, nil
}

// buildInvoiceData flattens a tab into the template's view: one line
// per entry in stored order, per-role subtotals in first-appearance
// order, grand totals from the tab itself
func buildInvoiceData(tab *timesheet.Tab, workspaceName, assigneeName string) *printing.InvoiceData {
	lines := make([]printing.InvoiceLine, 0, len(tab.Entries))
	var order []uuid.UUID
	subtotals := make(map[uuid.UUID]*printing.InvoiceRoleTotal)

	for _, e := range tab.Entries {
		roleName := ""
		if e.RoleID != nil {
			if role, ok := tab.RoleByID(*e.RoleID); ok {
				roleName = role.Name
				sub, seen := subtotals[role.ID]
				if !seen {
					sub = &printing.InvoiceRoleTotal{Role: role.Name, Rate: role.Rate}
					subtotals[role.ID] = sub
					order = append(order, role.ID)
				}
				sub.Hours = sub.Hours.Add(e.Hours)
			}
		}
		lines = append(lines, printing.InvoiceLine{Date: e.Date, Note: e.Note, Role: roleName, Hours: e.Hours})
	}

	roleTotals := make([]printing.InvoiceRoleTotal, len(order))
	for i, id := range order {
		sub := subtotals[id]
		sub.Amount = sub.Hours.Mul(sub.Rate)
		roleTotals[i] = *sub
	}

	data := &printing.InvoiceData{
		WorkspaceName: workspaceName,
		TabName:       tab.Name,
		AssigneeName:  assigneeName,
		Lines:         lines,
		RoleTotals:    roleTotals,
		TotalHours:    tab.Hours,
		TotalAmount:   sumAmounts(roleTotals),
	}
	if tab.Invoice != nil {
		data.Number = tab.Invoice.Number
		data.IssuedOn = tab.Invoice.IssuedOn
		data.BillTo = tab.Invoice.BillTo
		data.Notes = tab.Invoice.Notes
	}
	return data
}

func sumAmounts(totals []printing.InvoiceRoleTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t.Amount)
	}
	return sum
}

func invoiceLabel(tab *timesheet.Tab) string {
	if tab.Invoice != nil && tab.Invoice.Number != "" {
		return tab.Invoice.Number
	}
	return tab.Name
}

func invoiceFileName(tab *timesheet.Tab) string {
	label := strings.ToLower(invoiceLabel(tab))
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, label)
	label = strings.Trim(label, "-")
	if label == "" {
		label = tab.ID.String()
	}
	return fmt.Sprintf("invoice-%s.pdf", label)
}
