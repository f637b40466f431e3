package workspace

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkspace(t *testing.T) {
	ownerID := uuid.New()

	t.Run("creates workspace successfully", func(t *testing.T) {
		ws, err := NewWorkspace("  Acme GmbH  ", ownerID)

		require.NoError(t, err)
		assert.Equal(t, "Acme GmbH", ws.Name)
		assert.Equal(t, ownerID, ws.OwnerID)
		assert.True(t, ws.IsOwnedBy(ownerID))
		assert.Len(t, ws.GetDomainEvents(), 1)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		ws, err := NewWorkspace("   ", ownerID)

		assert.Error(t, err)
		assert.Nil(t, ws)
	})

	t.Run("fails without owner", func(t *testing.T) {
		ws, err := NewWorkspace("Acme", uuid.Nil)

		assert.Error(t, err)
		assert.Nil(t, ws)
	})
}

func TestNormalizeWorkspaceName(t *testing.T) {
	assert.Equal(t, NormalizeWorkspaceName("ACME GmbH"), NormalizeWorkspaceName("acme gmbh"))
	assert.Equal(t, NormalizeWorkspaceName("Straße"), NormalizeWorkspaceName("STRASSE"))
	assert.NotEqual(t, NormalizeWorkspaceName("acme"), NormalizeWorkspaceName("acme inc"))
}

func TestWorkspaceRename(t *testing.T) {
	ws, err := NewWorkspace("Before", uuid.New())
	require.NoError(t, err)
	versionBefore := ws.GetVersion()

	require.NoError(t, ws.Rename("After"))
	assert.Equal(t, "After", ws.Name)
	assert.Equal(t, versionBefore+1, ws.GetVersion())

	assert.Error(t, ws.Rename(""))
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleOwner, NormalizeRole("owner"))
	assert.Equal(t, RoleManager, NormalizeRole("manager"))
	assert.Equal(t, RoleMember, NormalizeRole("member"))
	assert.Equal(t, RoleUnknown, NormalizeRole("admin"))
	assert.Equal(t, RoleUnknown, NormalizeRole(""))
}

func TestMemberRolePermissions(t *testing.T) {
	assert.True(t, RoleOwner.CanInvite())
	assert.True(t, RoleManager.CanInvite())
	assert.False(t, RoleMember.CanInvite())
	assert.False(t, RoleUnknown.CanInvite())

	assert.True(t, RoleOwner.CanManageMembers())
	assert.False(t, RoleManager.CanManageMembers())

	assert.True(t, RoleManager.SeesAllTabs())
	assert.False(t, RoleMember.SeesAllTabs())
}

func TestMemberChangeRole(t *testing.T) {
	wsID, userID := uuid.New(), uuid.New()

	t.Run("owner role is immutable", func(t *testing.T) {
		m, err := NewMember(wsID, userID, RoleOwner, nil)
		require.NoError(t, err)

		assert.Error(t, m.ChangeRole(RoleMember))
		assert.Equal(t, RoleOwner, m.Role)
	})

	t.Run("manager and member are interchangeable", func(t *testing.T) {
		m, err := NewMember(wsID, userID, RoleMember, nil)
		require.NoError(t, err)

		require.NoError(t, m.ChangeRole(RoleManager))
		assert.Equal(t, RoleManager, m.Role)

		assert.Error(t, m.ChangeRole(RoleOwner))
	})
}

func TestNewInvite(t *testing.T) {
	wsID, creator := uuid.New(), uuid.New()

	t.Run("creates invite with default expiry", func(t *testing.T) {
		inv, err := NewInvite(wsID, creator, RoleMember, 0)

		require.NoError(t, err)
		assert.Len(t, inv.Token, 48)
		assert.Equal(t, InviteStatusActive, inv.Status())
		assert.WithinDuration(t, time.Now().Add(DefaultInviteTTL), inv.ExpiresAt, time.Minute)
	})

	t.Run("rejects owner role", func(t *testing.T) {
		inv, err := NewInvite(wsID, creator, RoleOwner, 0)

		assert.Error(t, err)
		assert.Nil(t, inv)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		a, err := NewInvite(wsID, creator, RoleMember, 0)
		require.NoError(t, err)
		b, err := NewInvite(wsID, creator, RoleMember, 0)
		require.NoError(t, err)

		assert.NotEqual(t, a.Token, b.Token)
	})
}

func TestInviteStatusPrecedence(t *testing.T) {
	wsID, creator, joiner := uuid.New(), uuid.New(), uuid.New()

	t.Run("expired", func(t *testing.T) {
		inv, err := NewInvite(wsID, creator, RoleMember, time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		assert.Equal(t, InviteStatusExpired, inv.Status())
	})

	t.Run("used beats expired", func(t *testing.T) {
		inv, err := NewInvite(wsID, creator, RoleMember, time.Hour)
		require.NoError(t, err)
		require.NoError(t, inv.Accept(joiner))
		inv.ExpiresAt = time.Now().Add(-time.Hour)

		assert.Equal(t, InviteStatusUsed, inv.Status())
	})

	t.Run("revoked beats used", func(t *testing.T) {
		inv, err := NewInvite(wsID, creator, RoleMember, time.Hour)
		require.NoError(t, err)
		require.NoError(t, inv.Accept(joiner))
		inv.Revoked = true

		assert.Equal(t, InviteStatusRevoked, inv.Status())
	})
}

func TestInviteAccept(t *testing.T) {
	wsID, creator, joiner := uuid.New(), uuid.New(), uuid.New()

	t.Run("active invite is accepted once", func(t *testing.T) {
		inv, err := NewInvite(wsID, creator, RoleManager, time.Hour)
		require.NoError(t, err)

		require.NoError(t, inv.Accept(joiner))
		assert.Equal(t, joiner, *inv.UsedBy)
		assert.NotNil(t, inv.UsedAt)

		assert.Error(t, inv.Accept(uuid.New()))
	})

	t.Run("expired invite is rejected", func(t *testing.T) {
		inv, err := NewInvite(wsID, creator, RoleMember, time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		assert.Error(t, inv.Accept(joiner))
		assert.Nil(t, inv.UsedAt)
	})

	t.Run("revoked invite is rejected", func(t *testing.T) {
		inv, err := NewInvite(wsID, creator, RoleMember, time.Hour)
		require.NoError(t, err)
		require.NoError(t, inv.Revoke())

		assert.Error(t, inv.Accept(joiner))
	})
}

func TestInviteRevoke(t *testing.T) {
	inv, err := NewInvite(uuid.New(), uuid.New(), RoleMember, time.Hour)
	require.NoError(t, err)

	require.NoError(t, inv.Revoke())
	require.NoError(t, inv.Revoke()) // idempotent

	used, err := NewInvite(uuid.New(), uuid.New(), RoleMember, time.Hour)
	require.NoError(t, err)
	require.NoError(t, used.Accept(uuid.New()))
	assert.Error(t, used.Revoke())
}
