package workspace

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/workspace"
)

type inviteFixture struct {
	inviteRepo    *MockInviteRepository
	memberRepo    *MockMemberRepository
	workspaceRepo *MockWorkspaceRepository
	service       *InviteService
}

func newInviteFixture() *inviteFixture {
	inviteRepo := new(MockInviteRepository)
	memberRepo := new(MockMemberRepository)
	workspaceRepo := new(MockWorkspaceRepository)
	svc := NewInviteService(inviteRepo, memberRepo, workspaceRepo, nil)
	svc.SetConfig(InviteServiceConfig{
		BaseURL:    "https://worktally.example.com",
		DefaultTTL: workspace.DefaultInviteTTL,
	})
	return &inviteFixture{
		inviteRepo:    inviteRepo,
		memberRepo:    memberRepo,
		workspaceRepo: workspaceRepo,
		service:       svc,
	}
}

func newTestInvite(t *testing.T, workspaceID, createdBy uuid.UUID, role workspace.MemberRole) *workspace.Invite {
	t.Helper()
	inv, err := workspace.NewInvite(workspaceID, createdBy, role, 0)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func TestInviteService_Create(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()

	t.Run("manager creates an invite with the default TTL", func(t *testing.T) {
		f := newInviteFixture()
		managerID := uuid.New()
		f.memberRepo.On("Find", ctx, workspaceID, managerID).Return(memberWithRole(workspaceID, managerID, workspace.RoleManager), nil)

		var saved *workspace.Invite
		f.inviteRepo.On("SaveWithEvents", ctx, mock.AnythingOfType("*workspace.Invite"), mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*workspace.Invite) }).
			Return(nil)

		resp, err := f.service.Create(ctx, workspaceID, managerID, CreateInviteRequest{Role: "member"})
		require.NoError(t, err)

		assert.Equal(t, "member", resp.Role)
		assert.Equal(t, string(workspace.InviteStatusActive), resp.Status)
		require.NotNil(t, saved)
		assert.True(t, strings.HasPrefix(resp.JoinURL, "https://worktally.example.com/join/"))
		assert.True(t, strings.HasSuffix(resp.JoinURL, saved.Token))
		assert.WithinDuration(t, time.Now().Add(workspace.DefaultInviteTTL), resp.ExpiresAt, time.Minute)
	})

	t.Run("plain member may not invite", func(t *testing.T) {
		f := newInviteFixture()
		memberID := uuid.New()
		f.memberRepo.On("Find", ctx, workspaceID, memberID).Return(memberWithRole(workspaceID, memberID, workspace.RoleMember), nil)

		_, err := f.service.Create(ctx, workspaceID, memberID, CreateInviteRequest{Role: "member"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("custom expiry is honored", func(t *testing.T) {
		f := newInviteFixture()
		ownerID := uuid.New()
		f.memberRepo.On("Find", ctx, workspaceID, ownerID).Return(memberWithRole(workspaceID, ownerID, workspace.RoleOwner), nil)
		f.inviteRepo.On("SaveWithEvents", ctx, mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Create(ctx, workspaceID, ownerID, CreateInviteRequest{Role: "manager", ExpiresInHours: 2})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(2*time.Hour), resp.ExpiresAt, time.Minute)
	})
}

func TestInviteService_Revoke(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	ownerID := uuid.New()

	t.Run("revokes an active invite", func(t *testing.T) {
		f := newInviteFixture()
		inv := newTestInvite(t, workspaceID, ownerID, workspace.RoleMember)
		f.memberRepo.On("Find", ctx, workspaceID, ownerID).Return(memberWithRole(workspaceID, ownerID, workspace.RoleOwner), nil)
		f.inviteRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)
		f.inviteRepo.On("Save", ctx, inv).Return(nil)

		require.NoError(t, f.service.Revoke(ctx, workspaceID, ownerID, inv.ID))
		assert.Equal(t, workspace.InviteStatusRevoked, inv.Status())
	})

	t.Run("an invite from another workspace is not found", func(t *testing.T) {
		f := newInviteFixture()
		inv := newTestInvite(t, uuid.New(), ownerID, workspace.RoleMember)
		f.memberRepo.On("Find", ctx, workspaceID, ownerID).Return(memberWithRole(workspaceID, ownerID, workspace.RoleOwner), nil)
		f.inviteRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)

		err := f.service.Revoke(ctx, workspaceID, ownerID, inv.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("a used invite cannot be revoked", func(t *testing.T) {
		f := newInviteFixture()
		inv := newTestInvite(t, workspaceID, ownerID, workspace.RoleMember)
		require.NoError(t, inv.Accept(uuid.New()))
		f.memberRepo.On("Find", ctx, workspaceID, ownerID).Return(memberWithRole(workspaceID, ownerID, workspace.RoleOwner), nil)
		f.inviteRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)

		err := f.service.Revoke(ctx, workspaceID, ownerID, inv.ID)
		assert.ErrorIs(t, err, shared.ErrInviteUsed)
	})
}

func TestInviteService_Accept(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	creatorID := uuid.New()
	joinerID := uuid.New()

	t.Run("joins the workspace with the invited role", func(t *testing.T) {
		f := newInviteFixture()
		inv := newTestInvite(t, workspaceID, creatorID, workspace.RoleManager)
		ws := newTestWorkspace(t, "Acme", creatorID)
		ws.ID = workspaceID

		f.inviteRepo.On("FindByToken", ctx, inv.Token).Return(inv, nil)
		f.memberRepo.On("Find", ctx, workspaceID, joinerID).Return(nil, shared.ErrNotFound)

		var savedMember *workspace.Member
		f.memberRepo.On("Save", ctx, mock.AnythingOfType("*workspace.Member")).
			Run(func(args mock.Arguments) { savedMember = args.Get(1).(*workspace.Member) }).
			Return(nil)
		f.inviteRepo.On("SaveWithEvents", ctx, inv, mock.Anything).Return(nil)
		f.workspaceRepo.On("FindByID", ctx, workspaceID).Return(ws, nil)

		resp, err := f.service.Accept(ctx, inv.Token, joinerID)
		require.NoError(t, err)

		assert.Equal(t, "Acme", resp.Name)
		assert.Equal(t, "manager", resp.Role)
		require.NotNil(t, savedMember)
		assert.Equal(t, joinerID, savedMember.UserID)
		assert.Equal(t, workspace.RoleManager, savedMember.Role)
		require.NotNil(t, savedMember.InvitedBy)
		assert.Equal(t, creatorID, *savedMember.InvitedBy)
		assert.Equal(t, workspace.InviteStatusUsed, inv.Status())
	})

	t.Run("existing member cannot accept", func(t *testing.T) {
		f := newInviteFixture()
		inv := newTestInvite(t, workspaceID, creatorID, workspace.RoleMember)
		f.inviteRepo.On("FindByToken", ctx, inv.Token).Return(inv, nil)
		f.memberRepo.On("Find", ctx, workspaceID, joinerID).Return(memberWithRole(workspaceID, joinerID, workspace.RoleMember), nil)

		_, err := f.service.Accept(ctx, inv.Token, joinerID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_MEMBER", domainErr.Code)
	})

	t.Run("revoked beats expired", func(t *testing.T) {
		f := newInviteFixture()
		inv := newTestInvite(t, workspaceID, creatorID, workspace.RoleMember)
		require.NoError(t, inv.Revoke())
		inv.ExpiresAt = time.Now().Add(-time.Hour)
		f.inviteRepo.On("FindByToken", ctx, inv.Token).Return(inv, nil)
		f.memberRepo.On("Find", ctx, workspaceID, joinerID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Accept(ctx, inv.Token, joinerID)
		assert.ErrorIs(t, err, shared.ErrInviteRevoked)
	})

	t.Run("expired invite is rejected", func(t *testing.T) {
		f := newInviteFixture()
		inv := newTestInvite(t, workspaceID, creatorID, workspace.RoleMember)
		inv.ExpiresAt = time.Now().Add(-time.Hour)
		f.inviteRepo.On("FindByToken", ctx, inv.Token).Return(inv, nil)
		f.memberRepo.On("Find", ctx, workspaceID, joinerID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Accept(ctx, inv.Token, joinerID)
		assert.ErrorIs(t, err, shared.ErrInviteExpired)
	})

	t.Run("unknown token is not found", func(t *testing.T) {
		f := newInviteFixture()
		f.inviteRepo.On("FindByToken", ctx, "missing").Return(nil, shared.ErrNotFound)

		_, err := f.service.Accept(ctx, "missing", joinerID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInviteService_Preview(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	creatorID := uuid.New()

	f := newInviteFixture()
	inv := newTestInvite(t, workspaceID, creatorID, workspace.RoleMember)
	ws := newTestWorkspace(t, "Acme", creatorID)
	ws.ID = workspaceID
	f.inviteRepo.On("FindByToken", ctx, inv.Token).Return(inv, nil)
	f.workspaceRepo.On("FindByID", ctx, workspaceID).Return(ws, nil)

	resp, err := f.service.Preview(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, "Acme", resp.WorkspaceName)
	assert.Equal(t, "member", resp.Role)
	assert.Equal(t, string(workspace.InviteStatusActive), resp.Status)
}
