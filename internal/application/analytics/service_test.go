package analytics

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/timesheet"
	"github.com/worktally/backend/internal/domain/workspace"
)

type MockTabRepository struct {
	mock.Mock
}

func (m *MockTabRepository) FindByID(ctx context.Context, id uuid.UUID) (*timesheet.Tab, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timesheet.Tab), args.Error(1)
}

func (m *MockTabRepository) FindAll(ctx context.Context, filter shared.Filter) ([]timesheet.Tab, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timesheet.Tab), args.Error(1)
}

func (m *MockTabRepository) Save(ctx context.Context, tab *timesheet.Tab) error {
	args := m.Called(ctx, tab)
	return args.Error(0)
}

func (m *MockTabRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTabRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTabRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*timesheet.Tab, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timesheet.Tab), args.Error(1)
}

func (m *MockTabRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]timesheet.Tab, error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timesheet.Tab), args.Error(1)
}

func (m *MockTabRepository) FindByAssignee(ctx context.Context, workspaceID, assigneeID uuid.UUID) ([]timesheet.Tab, error) {
	args := m.Called(ctx, workspaceID, assigneeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timesheet.Tab), args.Error(1)
}

func (m *MockTabRepository) SaveWithEvents(ctx context.Context, tab *timesheet.Tab, events []shared.DomainEvent) error {
	args := m.Called(ctx, tab, events)
	return args.Error(0)
}

func (m *MockTabRepository) DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error {
	args := m.Called(ctx, id, events)
	return args.Error(0)
}

var _ timesheet.TabRepository = (*MockTabRepository)(nil)

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Find(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	args := m.Called(ctx, workspaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workspace.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]workspace.Member, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]workspace.Member), args.Error(1)
}

func (m *MockMemberRepository) Save(ctx context.Context, member *workspace.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) Delete(ctx context.Context, workspaceID, userID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, userID)
	return args.Error(0)
}

var _ workspace.MemberRepository = (*MockMemberRepository)(nil)

func memberWithRole(t *testing.T, workspaceID, userID uuid.UUID, role workspace.MemberRole) *workspace.Member {
	t.Helper()
	m, err := workspace.NewMember(workspaceID, userID, role, nil)
	require.NoError(t, err)
	return m
}

func TestAnalyticsForTab(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	newFixture := func() (*MockTabRepository, *MockMemberRepository, *Service) {
		tabRepo := new(MockTabRepository)
		memberRepo := new(MockMemberRepository)
		return tabRepo, memberRepo, NewService(tabRepo, memberRepo, nil)
	}

	buildTab := func(t *testing.T) *timesheet.Tab {
		t.Helper()
		tab, err := timesheet.NewTab(workspaceID, userID, "August 2026")
		require.NoError(t, err)

		engineering := timesheet.Role{ID: uuid.New(), Name: "Engineering", Rate: decimal.NewFromInt(100)}
		design := timesheet.Role{ID: uuid.New(), Name: "Design", Rate: decimal.NewFromInt(80)}
		require.NoError(t, tab.SetRoles([]timesheet.Role{engineering, design}))

		entries := []timesheet.EntryRow{
			{ID: uuid.New(), Date: "2026-08-04", Hours: decimal.NewFromFloat(2), RoleID: &engineering.ID},
			{ID: uuid.New(), Date: "2026-08-03", Hours: decimal.NewFromFloat(4), RoleID: &engineering.ID},
			{ID: uuid.New(), Date: "2026-08-03", Hours: decimal.NewFromFloat(1.5), RoleID: &design.ID},
			{ID: uuid.New(), Date: "2026-08-05", Hours: decimal.NewFromFloat(3), RoleID: nil},
		}
		require.NoError(t, tab.SetEntries(entries))
		return tab
	}

	t.Run("aggregates by day ascending", func(t *testing.T) {
		tabRepo, memberRepo, service := newFixture()
		tab := buildTab(t)
		memberRepo.On("Find", ctx, workspaceID, userID).
			Return(memberWithRole(t, workspaceID, userID, workspace.RoleMember), nil)
		tabRepo.On("FindByIDForWorkspace", ctx, workspaceID, tab.ID).Return(tab, nil)

		resp, err := service.ForTab(ctx, workspaceID, userID, tab.ID)

		require.NoError(t, err)
		require.Len(t, resp.ByDay, 3)
		assert.Equal(t, "2026-08-03", resp.ByDay[0].Date)
		assert.True(t, resp.ByDay[0].Hours.Equal(decimal.NewFromFloat(5.5)), "hours = %s", resp.ByDay[0].Hours)
		assert.Equal(t, "2026-08-04", resp.ByDay[1].Date)
		assert.Equal(t, "2026-08-05", resp.ByDay[2].Date)
	})

	t.Run("aggregates by role with amounts", func(t *testing.T) {
		tabRepo, memberRepo, service := newFixture()
		tab := buildTab(t)
		memberRepo.On("Find", ctx, workspaceID, userID).
			Return(memberWithRole(t, workspaceID, userID, workspace.RoleMember), nil)
		tabRepo.On("FindByIDForWorkspace", ctx, workspaceID, tab.ID).Return(tab, nil)

		resp, err := service.ForTab(ctx, workspaceID, userID, tab.ID)

		require.NoError(t, err)
		require.Len(t, resp.ByRole, 2, "role-less entries are not charted")
		assert.Equal(t, "Engineering", resp.ByRole[0].Name)
		assert.True(t, resp.ByRole[0].Hours.Equal(decimal.NewFromInt(6)))
		assert.True(t, resp.ByRole[0].Amount.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, "Design", resp.ByRole[1].Name)
		assert.True(t, resp.ByRole[1].Amount.Equal(decimal.NewFromInt(120)))
	})

	t.Run("totals derive from the buckets", func(t *testing.T) {
		tabRepo, memberRepo, service := newFixture()
		tab := buildTab(t)
		memberRepo.On("Find", ctx, workspaceID, userID).
			Return(memberWithRole(t, workspaceID, userID, workspace.RoleMember), nil)
		tabRepo.On("FindByIDForWorkspace", ctx, workspaceID, tab.ID).Return(tab, nil)

		resp, err := service.ForTab(ctx, workspaceID, userID, tab.ID)

		require.NoError(t, err)
		assert.True(t, resp.TotalHours.Equal(decimal.NewFromFloat(10.5)), "hours = %s", resp.TotalHours)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(720)), "amount = %s", resp.TotalAmount)
	})

	t.Run("undefined role keeps hours under placeholder", func(t *testing.T) {
		tabRepo, memberRepo, service := newFixture()
		tab, err := timesheet.NewTab(workspaceID, userID, "August 2026")
		require.NoError(t, err)
		ghostRole := uuid.New()
		require.NoError(t, tab.SetEntries([]timesheet.EntryRow{
			{ID: uuid.New(), Date: "2026-08-03", Hours: decimal.NewFromInt(2), RoleID: &ghostRole},
		}))
		memberRepo.On("Find", ctx, workspaceID, userID).
			Return(memberWithRole(t, workspaceID, userID, workspace.RoleMember), nil)
		tabRepo.On("FindByIDForWorkspace", ctx, workspaceID, tab.ID).Return(tab, nil)

		resp, err := service.ForTab(ctx, workspaceID, userID, tab.ID)

		require.NoError(t, err)
		require.Len(t, resp.ByRole, 1)
		assert.Equal(t, "—", resp.ByRole[0].Name)
		assert.True(t, resp.ByRole[0].Amount.IsZero())
	})

	t.Run("member cannot analyze another member's tab", func(t *testing.T) {
		tabRepo, memberRepo, service := newFixture()
		tab, err := timesheet.NewTab(workspaceID, uuid.New(), "Theirs")
		require.NoError(t, err)
		memberRepo.On("Find", ctx, workspaceID, userID).
			Return(memberWithRole(t, workspaceID, userID, workspace.RoleMember), nil)
		tabRepo.On("FindByIDForWorkspace", ctx, workspaceID, tab.ID).Return(tab, nil)

		_, err = service.ForTab(ctx, workspaceID, userID, tab.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("manager analyzes any tab", func(t *testing.T) {
		tabRepo, memberRepo, service := newFixture()
		tab, err := timesheet.NewTab(workspaceID, uuid.New(), "Theirs")
		require.NoError(t, err)
		memberRepo.On("Find", ctx, workspaceID, userID).
			Return(memberWithRole(t, workspaceID, userID, workspace.RoleManager), nil)
		tabRepo.On("FindByIDForWorkspace", ctx, workspaceID, tab.ID).Return(tab, nil)

		resp, err := service.ForTab(ctx, workspaceID, userID, tab.ID)

		require.NoError(t, err)
		assert.Empty(t, resp.ByDay)
		assert.True(t, resp.TotalHours.IsZero())
	})
}
