package chat

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worktally/backend/internal/domain/chat"
	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/shared"
)

// FeedBus is the slice of the event bus a session needs: register a
// handler for message feed events and drop it on teardown
type FeedBus interface {
	Subscribe(handler shared.EventHandler, eventTypes ...string)
	Unsubscribe(handler shared.EventHandler)
}

// SessionEvent is one store mutation pushed to the connected client
type SessionEvent struct {
	Kind      chat.RelayKind   `json:"kind"`
	MessageID string           `json:"message_id"`
	Message   *MessageResponse `json:"message,omitempty"`
}

// Session is one client's live view of a channel scope. It owns a
// message store, feeds it from both the relay and the durable change
// feed, and emits each applied mutation on its event channel. All
// suspending work takes the session context; teardown cancels it and
// nothing mutates the store afterwards except in-flight callbacks that
// hit the store's idempotent operations.
type Session struct {
	key      chat.ChannelKey
	store    *MessageStore
	relay    Relay
	bus      FeedBus
	userRepo identity.UserRepository
	out      chan SessionEvent
	ready    chan struct{}
	logger   *zap.Logger
}

// NewSession creates a session for one channel scope
func NewSession(
	key chat.ChannelKey,
	history HistorySource,
	relay Relay,
	bus FeedBus,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		key:      key,
		store:    NewMessageStore(history, logger),
		relay:    relay,
		bus:      bus,
		userRepo: userRepo,
		out:      make(chan SessionEvent, 64),
		ready:    make(chan struct{}),
		logger:   logger,
	}
}

// Events returns the channel of applied mutations. The channel is
// never closed; consumers select against their own context.
func (s *Session) Events() <-chan SessionEvent {
	return s.out
}

// Ready is closed once the history load has completed. Snapshot is
// meaningful only after this fires.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Snapshot returns the store's current contents in display order
func (s *Session) Snapshot() []MessageResponse {
	return ToMessageResponses(s.store.Messages())
}

// Run loads history, wires the relay and feed subscriptions, and
// blocks until the context is cancelled
func (s *Session) Run(ctx context.Context) error {
	s.store.Load(ctx, s.key)
	close(s.ready)

	handler := &feedHandler{session: s}
	s.bus.Subscribe(handler, chat.EventTypeMessageInserted, chat.EventTypeMessageUpdated, chat.EventTypeMessageDeleted)
	defer s.bus.Unsubscribe(handler)

	go func() {
		if err := s.relay.Subscribe(ctx, s.key, s.onFrame); err != nil && err != context.Canceled {
			// Feed events still arrive; the session degrades to
			// durable-only delivery
			s.logger.Warn("Relay subscription ended",
				zap.String("channel", s.key.RelayChannel()),
				zap.Error(err))
		}
	}()

	<-ctx.Done()
	return ctx.Err()
}

// onFrame applies one relay frame to the store. Malformed rows are
// dropped; frames for other tabs in the workspace are filtered here.
func (s *Session) onFrame(frame chat.RelayFrame) {
	switch frame.Kind {
	case chat.RelayInsert:
		msg, ok := chat.ParseRow(frame.Row)
		if !ok {
			s.logger.Debug("Dropping malformed insert frame", zap.String("message_id", frame.MessageID))
			return
		}
		if !s.key.Accepts(msg.TabID) {
			return
		}
		if s.store.Append(msg) {
			s.emit(SessionEvent{Kind: chat.RelayInsert, MessageID: msg.ID, Message: responsePtr(msg)})
		}

	case chat.RelayUpdate:
		msg, ok := chat.ParseRow(frame.Row)
		if !ok {
			s.logger.Debug("Dropping malformed update frame", zap.String("message_id", frame.MessageID))
			return
		}
		if !s.key.Accepts(msg.TabID) {
			return
		}
		patch := MessagePatch{Content: &msg.Content, EditedAt: msg.EditedAt, Profile: &msg.Sender}
		if s.store.Update(msg.ID, patch) {
			s.emit(SessionEvent{Kind: chat.RelayUpdate, MessageID: msg.ID, Message: responsePtr(msg)})
		}

	case chat.RelayDelete:
		if s.store.Remove(frame.MessageID) {
			s.emit(SessionEvent{Kind: chat.RelayDelete, MessageID: frame.MessageID})
		}
	}
}

// applyFeedEvent applies one durable change-feed event to the store.
// Feed payloads carry no joined profile, so inserts look the sender up
// fresh; a failed lookup degrades to a bare id snapshot.
func (s *Session) applyFeedEvent(ctx context.Context, event shared.DomainEvent) {
	if event.WorkspaceID() != s.key.WorkspaceID {
		return
	}

	switch e := event.(type) {
	case *chat.MessageInsertedEvent:
		if !s.key.Accepts(e.TabID) {
			return
		}
		id := e.AggregateID().String()
		if s.store.Contains(id) {
			return
		}
		msg := chat.LocalMessage{
			ID:          id,
			WorkspaceID: e.WorkspaceID(),
			TabID:       e.TabID,
			SenderID:    e.SenderID,
			Content:     e.Content,
			CreatedAt:   e.CreatedAt,
			Sender:      s.lookupProfile(ctx, e.SenderID),
			State:       chat.Lifecycle{Kind: chat.KindConfirmed},
		}
		if s.store.Append(msg) {
			s.emit(SessionEvent{Kind: chat.RelayInsert, MessageID: msg.ID, Message: responsePtr(msg)})
		}

	case *chat.MessageUpdatedEvent:
		if !s.key.Accepts(e.TabID) {
			return
		}
		id := e.AggregateID().String()
		editedAt := e.EditedAt
		patch := MessagePatch{Content: &e.Content, EditedAt: &editedAt}
		if s.store.Update(id, patch) {
			s.emitFromStore(chat.RelayUpdate, id)
		}

	case *chat.MessageDeletedEvent:
		id := e.AggregateID().String()
		if s.store.Remove(id) {
			s.emit(SessionEvent{Kind: chat.RelayDelete, MessageID: id})
		}
	}
}

func (s *Session) lookupProfile(ctx context.Context, senderID uuid.UUID) identity.ProfileSnapshot {
	sender, err := s.userRepo.FindByID(ctx, senderID)
	if err != nil {
		s.logger.Debug("Sender profile lookup failed", zap.String("sender_id", senderID.String()), zap.Error(err))
		return identity.ProfileSnapshot{UserID: senderID}
	}
	return sender.Snapshot()
}

// emit pushes an event without blocking; a slow consumer loses
// incremental updates but can always resync from Snapshot
func (s *Session) emit(ev SessionEvent) {
	select {
	case s.out <- ev:
	default:
		s.logger.Warn("Dropping session event for slow consumer",
			zap.String("kind", string(ev.Kind)),
			zap.String("message_id", ev.MessageID))
	}
}

func (s *Session) emitFromStore(kind chat.RelayKind, id string) {
	for _, m := range s.store.Messages() {
		if m.ID == id {
			s.emit(SessionEvent{Kind: kind, MessageID: id, Message: responsePtr(m)})
			return
		}
	}
}

func responsePtr(m chat.LocalMessage) *MessageResponse {
	resp := ToMessageResponse(m)
	return &resp
}

// feedHandler adapts a session to the event bus handler interface
type feedHandler struct {
	session *Session
}

func (h *feedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.session.applyFeedEvent(ctx, event)
	return nil
}

func (h *feedHandler) EventTypes() []string {
	return []string{chat.EventTypeMessageInserted, chat.EventTypeMessageUpdated, chat.EventTypeMessageDeleted}
}
