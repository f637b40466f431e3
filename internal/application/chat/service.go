package chat

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worktally/backend/internal/domain/chat"
	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/shared"
	"github.com/worktally/backend/internal/domain/workspace"
)

// Relay fans frames out to every subscriber of a workspace channel.
// Delivery is best-effort; a dropped frame is recovered by the change
// feed, not by the relay.
type Relay interface {
	Publish(ctx context.Context, key chat.ChannelKey, frame chat.RelayFrame) error
	Subscribe(ctx context.Context, key chat.ChannelKey, callback func(frame chat.RelayFrame)) error
}

// ChatService handles durable message writes and history reads. Every
// write publishes a relay frame after the row is committed; relay
// failure is logged and swallowed since the outbox feed carries the
// same change.
type ChatService struct {
	messageRepo chat.MessageRepository
	memberRepo  workspace.MemberRepository
	userRepo    identity.UserRepository
	relay       Relay
	logger      *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	messageRepo chat.MessageRepository,
	memberRepo workspace.MemberRepository,
	userRepo identity.UserRepository,
	relay Relay,
	logger *zap.Logger,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		messageRepo: messageRepo,
		memberRepo:  memberRepo,
		userRepo:    userRepo,
		relay:       relay,
		logger:      logger,
	}
}

// Send persists a message and announces it on the workspace channel
func (s *ChatService) Send(ctx context.Context, key chat.ChannelKey, senderID uuid.UUID, content string) (*MessageResponse, error) {
	if _, err := s.requireMember(ctx, key.WorkspaceID, senderID); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.FindByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	msg, err := chat.NewMessage(key.WorkspaceID, key.TabID, senderID, content)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.SaveWithEvents(ctx, msg, msg.GetDomainEvents()); err != nil {
		s.logger.Error("Failed to save message", zap.Error(err), zap.String("workspace_id", key.WorkspaceID.String()))
		return nil, err
	}
	msg.ClearDomainEvents()

	local := toLocalMessage(msg, sender.Snapshot())
	s.publish(ctx, key, chat.NewInsertFrame(local))

	resp := ToMessageResponse(local)
	return &resp, nil
}

// Edit replaces a message's content. Only the sender may edit.
func (s *ChatService) Edit(ctx context.Context, key chat.ChannelKey, editorID, messageID uuid.UUID, content string) (*MessageResponse, error) {
	if _, err := s.requireMember(ctx, key.WorkspaceID, editorID); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.FindByIDForWorkspace(ctx, key.WorkspaceID, messageID)
	if err != nil {
		return nil, err
	}
	if err := msg.Edit(editorID, content); err != nil {
		return nil, err
	}

	if err := s.messageRepo.SaveWithEvents(ctx, msg, msg.GetDomainEvents()); err != nil {
		s.logger.Error("Failed to save message edit", zap.Error(err), zap.String("message_id", messageID.String()))
		return nil, err
	}
	msg.ClearDomainEvents()

	editor, err := s.userRepo.FindByID(ctx, editorID)
	if err != nil {
		return nil, err
	}

	local := toLocalMessage(msg, editor.Snapshot())
	s.publish(ctx, key, chat.NewUpdateFrame(local))

	resp := ToMessageResponse(local)
	return &resp, nil
}

// Delete removes a message. The sender always may; owners and managers
// moderate any message in their workspace.
func (s *ChatService) Delete(ctx context.Context, key chat.ChannelKey, userID, messageID uuid.UUID) error {
	member, err := s.requireMember(ctx, key.WorkspaceID, userID)
	if err != nil {
		return err
	}

	msg, err := s.messageRepo.FindByIDForWorkspace(ctx, key.WorkspaceID, messageID)
	if err != nil {
		return err
	}
	if !msg.CanBeDeletedBy(userID, member.Role.SeesAllTabs()) {
		return shared.ErrForbidden
	}

	events := []shared.DomainEvent{chat.NewMessageDeletedEvent(msg)}
	if err := s.messageRepo.DeleteWithEvents(ctx, messageID, events); err != nil {
		return err
	}

	s.publish(ctx, key, chat.NewDeleteFrame(messageID.String()))
	return nil
}

// History returns the scope's full message history ordered by creation
// time ascending, with sender profiles joined in
func (s *ChatService) History(ctx context.Context, key chat.ChannelKey) ([]chat.LocalMessage, error) {
	msgs, err := s.messageRepo.FindByScope(ctx, key)
	if err != nil {
		return nil, err
	}

	profiles := s.profilesFor(ctx, msgs)

	locals := make([]chat.LocalMessage, len(msgs))
	for i := range msgs {
		snap, ok := profiles[msgs[i].SenderID]
		if !ok {
			snap = identity.ProfileSnapshot{UserID: msgs[i].SenderID}
		}
		locals[i] = toLocalMessage(&msgs[i], snap)
	}
	return locals, nil
}

// HistoryForMember is the member-gated read used by the REST surface
func (s *ChatService) HistoryForMember(ctx context.Context, key chat.ChannelKey, userID uuid.UUID) ([]MessageResponse, error) {
	if _, err := s.requireMember(ctx, key.WorkspaceID, userID); err != nil {
		return nil, err
	}
	locals, err := s.History(ctx, key)
	if err != nil {
		return nil, err
	}
	return ToMessageResponses(locals), nil
}

// profilesFor batch-loads sender snapshots; a failed lookup degrades
// to bare sender ids instead of failing the read
func (s *ChatService) profilesFor(ctx context.Context, msgs []chat.Message) map[uuid.UUID]identity.ProfileSnapshot {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for i := range msgs {
		if !seen[msgs[i].SenderID] {
			seen[msgs[i].SenderID] = true
			ids = append(ids, msgs[i].SenderID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to load sender profiles", zap.Error(err))
		return nil
	}

	profiles := make(map[uuid.UUID]identity.ProfileSnapshot, len(users))
	for i := range users {
		profiles[users[i].ID] = users[i].Snapshot()
	}
	return profiles
}

func (s *ChatService) publish(ctx context.Context, key chat.ChannelKey, frame chat.RelayFrame) {
	if err := s.relay.Publish(ctx, key, frame); err != nil {
		// The outbox feed delivers the same change durably
		s.logger.Warn("Failed to publish relay frame",
			zap.String("kind", string(frame.Kind)),
			zap.String("message_id", frame.MessageID),
			zap.Error(err))
	}
}

// EnsureMember verifies the user belongs to the workspace. Streaming
// surfaces gate on this before opening a session.
func (s *ChatService) EnsureMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	_, err := s.requireMember(ctx, workspaceID, userID)
	return err
}

func (s *ChatService) requireMember(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotMember
		}
		return nil, err
	}
	return member, nil
}

func toLocalMessage(msg *chat.Message, sender identity.ProfileSnapshot) chat.LocalMessage {
	state := chat.Lifecycle{Kind: chat.KindConfirmed}
	if msg.EditedAt != nil {
		state = chat.Lifecycle{Kind: chat.KindEdited}
	}
	return chat.LocalMessage{
		ID:          msg.ID.String(),
		WorkspaceID: msg.WorkspaceID,
		TabID:       msg.TabID,
		SenderID:    msg.SenderID,
		Content:     msg.Content,
		CreatedAt:   msg.CreatedAt,
		EditedAt:    msg.EditedAt,
		Sender:      sender,
		State:       state,
	}
}
