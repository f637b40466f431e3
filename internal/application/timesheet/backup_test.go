package timesheet

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/timesheet"
	"github.com/worktally/backend/internal/domain/workspace"
)

func TestExportBackup(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	f := newTabFixture()
	own := newTestTab(t, workspaceID, userID, "July 2026")
	f.memberRepo.On("Find", ctx, workspaceID, userID).
		Return(memberWithRole(t, workspaceID, userID, workspace.RoleMember), nil)
	f.tabRepo.On("FindByAssignee", ctx, workspaceID, userID).Return([]timesheet.Tab{*own}, nil)

	envelope, err := f.service.ExportBackup(ctx, workspaceID, userID)

	require.NoError(t, err)
	assert.Equal(t, BackupApp, envelope.App)
	assert.Equal(t, BackupVersion, envelope.Version)
	assert.Equal(t, workspaceID, envelope.WorkspaceID)
	assert.WithinDuration(t, time.Now(), envelope.ExportedAt, time.Minute)
	require.Len(t, envelope.Tabs, 1)
	assert.Equal(t, "July 2026", envelope.Tabs[0].Name)
}

func TestImportBackup(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	roleID := uuid.New()
	envelope := func() *BackupEnvelope {
		return &BackupEnvelope{
			App:         BackupApp,
			Version:     BackupVersion,
			ExportedAt:  time.Now(),
			WorkspaceID: uuid.New(),
			Tabs: []TabResponse{
				{
					Name: "July 2026",
					Entries: []EntryRowDTO{
						{ID: uuid.New(), Date: "2026-07-01", Hours: decimal.NewFromFloat(6.5), RoleID: &roleID},
					},
					Roles: []RoleDTO{{ID: roleID, Name: "Engineering", Rate: decimal.NewFromInt(90)}},
					Notes: "carried over",
				},
				{Name: "August 2026"},
			},
		}
	}

	t.Run("creates tabs assigned to the caller", func(t *testing.T) {
		f := newTabFixture()
		f.memberRepo.On("Find", ctx, workspaceID, userID).
			Return(memberWithRole(t, workspaceID, userID, workspace.RoleMember), nil)

		var saved []*timesheet.Tab
		f.tabRepo.On("SaveWithEvents", ctx, mock.AnythingOfType("*timesheet.Tab"), mock.Anything).
			Run(func(args mock.Arguments) {
				saved = append(saved, args.Get(1).(*timesheet.Tab))
			}).Return(nil)

		result, err := f.service.ImportBackup(ctx, workspaceID, userID, envelope())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		require.Len(t, saved, 2)
		assert.Equal(t, workspaceID, saved[0].WorkspaceID)
		assert.Equal(t, userID, saved[0].AssigneeID)
		assert.True(t, saved[0].Hours.Equal(decimal.NewFromFloat(6.5)))
		assert.Equal(t, "carried over", saved[0].Notes)
		assert.Equal(t, "August 2026", saved[1].Name)
	})

	t.Run("rejects foreign app envelope", func(t *testing.T) {
		f := newTabFixture()
		f.memberRepo.On("Find", ctx, workspaceID, userID).
			Return(memberWithRole(t, workspaceID, userID, workspace.RoleMember), nil)

		env := envelope()
		env.App = "someone-elses-tool"
		_, err := f.service.ImportBackup(ctx, workspaceID, userID, env)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_BACKUP", domainErr.Code)
		f.tabRepo.AssertNotCalled(t, "SaveWithEvents", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects newer envelope version", func(t *testing.T) {
		f := newTabFixture()
		f.memberRepo.On("Find", ctx, workspaceID, userID).
			Return(memberWithRole(t, workspaceID, userID, workspace.RoleMember), nil)

		env := envelope()
		env.Version = BackupVersion + 1
		_, err := f.service.ImportBackup(ctx, workspaceID, userID, env)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNSUPPORTED_BACKUP_VERSION", domainErr.Code)
	})

	t.Run("non member cannot import", func(t *testing.T) {
		f := newTabFixture()
		f.memberRepo.On("Find", ctx, workspaceID, userID).Return(nil, shared.ErrNotFound)

		_, err := f.service.ImportBackup(ctx, workspaceID, userID, envelope())

		assert.ErrorIs(t, err, shared.ErrNotMember)
	})
}
