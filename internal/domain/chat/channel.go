package chat

import (
	"github.com/google/uuid"
)

// ChannelKey identifies a chat scope: a workspace, optionally narrowed
// to one tab. It is resolved once at subscription time; publish and
// subscribe sites share the same key value instead of interpolating
// channel name strings ad hoc.
type ChannelKey struct {
	WorkspaceID uuid.UUID
	TabID       *uuid.UUID
}

// NewWorkspaceChannel keys the workspace-wide chat scope
func NewWorkspaceChannel(workspaceID uuid.UUID) ChannelKey {
	return ChannelKey{WorkspaceID: workspaceID}
}

// NewTabChannel keys a chat scope narrowed to one tab
func NewTabChannel(workspaceID, tabID uuid.UUID) ChannelKey {
	return ChannelKey{WorkspaceID: workspaceID, TabID: &tabID}
}

// RelayChannel renders the broadcast channel name. Fan-out is always
// per workspace; tab narrowing happens on the receiving side.
func (k ChannelKey) RelayChannel() string {
	return "ws:" + k.WorkspaceID.String() + ":chat"
}

// PresenceChannel renders the presence channel name for the workspace
func (k ChannelKey) PresenceChannel() string {
	return "presence:" + k.WorkspaceID.String()
}

// Accepts reports whether a message with the given tab reference
// belongs to this scope: an unscoped key accepts every message in the
// workspace, tabbed or not; a tab-scoped key accepts only its own tab
func (k ChannelKey) Accepts(tabID *uuid.UUID) bool {
	if k.TabID == nil {
		return true
	}
	return tabID != nil && *tabID == *k.TabID
}
