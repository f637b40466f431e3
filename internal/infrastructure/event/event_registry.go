package event

import (
	"github.com/worktally/backend/internal/domain/attachment"
	"github.com/worktally/backend/internal/domain/chat"
	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/timesheet"
	"github.com/worktally/backend/internal/domain/workspace"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	// Chat domain events
	serializer.Register(chat.EventTypeMessageInserted, &chat.MessageInsertedEvent{})
	serializer.Register(chat.EventTypeMessageUpdated, &chat.MessageUpdatedEvent{})
	serializer.Register(chat.EventTypeMessageDeleted, &chat.MessageDeletedEvent{})

	// Workspace domain events
	serializer.Register(workspace.EventTypeWorkspaceCreated, &workspace.WorkspaceCreatedEvent{})
	serializer.Register(workspace.EventTypeWorkspaceRenamed, &workspace.WorkspaceRenamedEvent{})
	serializer.Register(workspace.EventTypeWorkspaceDeleted, &workspace.WorkspaceDeletedEvent{})
	serializer.Register(workspace.EventTypeInviteCreated, &workspace.InviteCreatedEvent{})
	serializer.Register(workspace.EventTypeInviteAccepted, &workspace.InviteAcceptedEvent{})

	// Timesheet domain events
	serializer.Register(timesheet.EventTypeTabCreated, &timesheet.TabCreatedEvent{})
	serializer.Register(timesheet.EventTypeTabUpdated, &timesheet.TabUpdatedEvent{})
	serializer.Register(timesheet.EventTypeTabDeleted, &timesheet.TabDeletedEvent{})

	// Identity domain events
	serializer.Register(identity.EventTypeUserRegistered, &identity.UserRegisteredEvent{})
	serializer.Register(identity.EventTypeUserProfileUpdated, &identity.UserProfileUpdatedEvent{})

	// Attachment domain events
	serializer.Register(attachment.EventTypeAttachmentAdded, &attachment.AttachmentAddedEvent{})
	serializer.Register(attachment.EventTypeAttachmentRemoved, &attachment.AttachmentRemovedEvent{})
}
