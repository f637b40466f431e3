package timesheet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/timesheet"
)

// BackupApp identifies envelopes produced by this service
const BackupApp = "worktally"

// BackupVersion is the current envelope format version
const BackupVersion = 2

// BackupEnvelope is the portable backup format for a workspace's tabs
type BackupEnvelope struct {
	App         string        `json:"app"`
	Version     int           `json:"version"`
	ExportedAt  time.Time     `json:"exportedAt"`
	WorkspaceID uuid.UUID     `json:"workspaceId"`
	Tabs        []TabResponse `json:"tabs"`
}

// ImportResult reports how many tabs an import created
type ImportResult struct {
	Imported int `json:"imported"`
}

// ExportBackup bundles the caller's visible tabs into a backup envelope
func (s *TabService) ExportBackup(ctx context.Context, workspaceID, userID uuid.UUID) (*BackupEnvelope, error) {
	tabs, err := s.List(ctx, workspaceID, userID, nil)
	if err != nil {
		return nil, err
	}
	return &BackupEnvelope{
		App:         BackupApp,
		Version:     BackupVersion,
		ExportedAt:  time.Now().UTC(),
		WorkspaceID: workspaceID,
		Tabs:        tabs,
	}, nil
}

// ImportBackup creates the envelope's tabs in the workspace as new tabs
// assigned to the caller. Original IDs are not preserved so a backup can
// be restored into any workspace.
func (s *TabService) ImportBackup(ctx context.Context, workspaceID, userID uuid.UUID, envelope *BackupEnvelope) (*ImportResult, error) {
	if _, err := s.requireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	if envelope.App != BackupApp {
		return nil, shared.NewDomainError("INVALID_BACKUP", "Unrecognized backup file")
	}
	if envelope.Version > BackupVersion {
		return nil, shared.NewDomainError("UNSUPPORTED_BACKUP_VERSION", "Backup was made by a newer version")
	}

	imported := 0
	for i := range envelope.Tabs {
		src := &envelope.Tabs[i]

		tab, err := timesheet.NewTab(workspaceID, userID, src.Name)
		if err != nil {
			return nil, err
		}
		if len(src.Entries) > 0 {
			if err := tab.SetEntries(toDomainEntries(src.Entries)); err != nil {
				return nil, err
			}
		}
		if len(src.Roles) > 0 {
			if err := tab.SetRoles(toDomainRoles(src.Roles)); err != nil {
				return nil, err
			}
		}
		if src.Invoice != nil {
			tab.SetInvoice(&timesheet.InvoiceMeta{
				Number:   src.Invoice.Number,
				IssuedOn: src.Invoice.IssuedOn,
				BillTo:   src.Invoice.BillTo,
				Notes:    src.Invoice.Notes,
			})
		}
		if src.Notes != "" {
			tab.SetNotes(src.Notes)
		}

		if err := s.tabRepo.SaveWithEvents(ctx, tab, []shared.DomainEvent{timesheet.NewTabCreatedEvent(tab)}); err != nil {
			s.logger.Error("Failed to import tab", zap.Error(err), zap.Int("index", i))
			return nil, err
		}
		imported++
	}

	return &ImportResult{Imported: imported}, nil
}
