package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/worktally/backend/internal/domain/chat"
	"github.com/worktally/backend/internal/domain/identity"
)

// HistorySource loads the full message history for one channel scope,
// ordered by creation time ascending
type HistorySource interface {
	History(ctx context.Context, key chat.ChannelKey) ([]chat.LocalMessage, error)
}

// MessagePatch carries the fields an update may change. Nil fields are
// left untouched.
type MessagePatch struct {
	Content  *string
	EditedAt *time.Time
	Profile  *identity.ProfileSnapshot
}

// MessageStore holds one session's ordered view of a channel scope.
// One session loop owns the store, but relay callbacks arrive on their
// own goroutines, so every mutation is guarded.
type MessageStore struct {
	mu       sync.Mutex
	history  HistorySource
	messages []chat.LocalMessage
	logger   *zap.Logger
}

// NewMessageStore creates an empty store backed by a history source
func NewMessageStore(history HistorySource, logger *zap.Logger) *MessageStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageStore{history: history, logger: logger}
}

// Load replaces the store contents with the scope's full history. A
// failed load degrades to an empty store; chat is a companion surface
// and must not take the session down.
func (s *MessageStore) Load(ctx context.Context, key chat.ChannelKey) {
	rows, err := s.history.History(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to load message history",
			zap.String("channel", key.RelayChannel()),
			zap.Error(err))
		rows = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = rows
}

// Append adds a message unless its id is already present. Optimistic
// append, relay self-echo and the change feed all route through here,
// so a message displays at most once however the copies race.
func (s *MessageStore) Append(msg chat.LocalMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(msg.ID) >= 0 {
		return false
	}
	s.messages = append(s.messages, msg)
	return true
}

// ReconcileID rewrites a pending record in place with its
// server-assigned id and creation time. A temp record that was already
// removed makes this a no-op.
func (s *MessageStore) ReconcileID(tempID, finalID string, createdAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(tempID)
	if i < 0 {
		return false
	}
	if j := s.indexOf(finalID); j >= 0 && j != i {
		// The confirmed copy already arrived through the feed;
		// drop the pending duplicate instead of creating a second row
		s.messages = append(s.messages[:i], s.messages[i+1:]...)
		return true
	}
	if err := s.messages[i].Confirm(finalID, createdAt); err != nil {
		return false
	}
	return true
}

// Update merges the patch into the message with the given id. An
// unknown id is dropped: the update raced a subscription that started
// after the insert.
func (s *MessageStore) Update(id string, patch MessagePatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	msg := &s.messages[i]
	if patch.Content != nil {
		msg.Content = *patch.Content
	}
	if patch.EditedAt != nil {
		edited := *patch.EditedAt
		msg.EditedAt = &edited
		if msg.State.Kind == chat.KindConfirmed || msg.State.Kind == chat.KindEdited {
			msg.State = chat.Lifecycle{Kind: chat.KindEdited}
		}
	}
	if patch.Profile != nil {
		msg.Sender = *patch.Profile
	}
	return true
}

// Remove deletes the message with the given id; absent is a no-op
func (s *MessageStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	return true
}

// Contains reports whether a message with the id is present
func (s *MessageStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Messages returns a copy of the current contents in display order
func (s *MessageStore) Messages() []chat.LocalMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]chat.LocalMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the store
func (s *MessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// indexOf is called with the lock held
func (s *MessageStore) indexOf(id string) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}
