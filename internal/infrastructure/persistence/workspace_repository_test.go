package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/workspace"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockWorkspaceRepository creates a GormWorkspaceRepository with a mocked SQL connection
func newMockWorkspaceRepository(t *testing.T) (*GormWorkspaceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormWorkspaceRepository(gormDB), mock, mockDB
}

func TestGormWorkspaceRepository_ExistsByName(t *testing.T) {
	t.Run("reports existing normalized name", func(t *testing.T) {
		repo, mock, mockDB := newMockWorkspaceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "workspaces" WHERE name_normalized = \$1`).
			WithArgs("acme studio").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByName(context.Background(), workspace.NormalizeWorkspaceName("Acme Studio"))

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports missing name", func(t *testing.T) {
		repo, mock, mockDB := newMockWorkspaceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "workspaces" WHERE name_normalized = \$1`).
			WithArgs("nobody here").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByName(context.Background(), "nobody here")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWorkspaceRepository_FindByUser(t *testing.T) {
	t.Run("returns memberships oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockWorkspaceRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "name", "name_normalized", "owner_id"}).
			AddRow(uuid.New(), now.Add(-time.Hour), now, 1, "First", "first", userID).
			AddRow(uuid.New(), now, now, 1, "Second", "second", uuid.New())

		mock.ExpectQuery(`SELECT "workspaces".* FROM "workspaces" JOIN workspace_members ON workspace_members.workspace_id = workspaces.id WHERE workspace_members.user_id = \$1 ORDER BY workspaces.created_at ASC`).
			WithArgs(userID).
			WillReturnRows(rows)

		workspaces, err := repo.FindByUser(context.Background(), userID)

		assert.NoError(t, err)
		require.Len(t, workspaces, 2)
		assert.Equal(t, "First", workspaces[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
