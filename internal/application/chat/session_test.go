package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/worktally/backend/internal/domain/chat"
	"github.com/worktally/backend/internal/domain/identity"
	"github.com/worktally/backend/internal/domain/shared"
)

type sessionFixture struct {
	history  *MockHistorySource
	relay    *MockRelay
	userRepo *MockUserRepository
	session  *Session
}

type fakeBus struct{}

func (fakeBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {}
func (fakeBus) Unsubscribe(handler shared.EventHandler)                     {}

func newSessionFixture(key chat.ChannelKey) *sessionFixture {
	f := &sessionFixture{
		history:  new(MockHistorySource),
		relay:    new(MockRelay),
		userRepo: new(MockUserRepository),
	}
	f.session = NewSession(key, f.history, f.relay, fakeBus{}, f.userRepo, nil)
	return f
}

func relayInsertFor(msg chat.LocalMessage) chat.RelayFrame {
	return chat.NewInsertFrame(msg)
}

func insertedEventFor(t *testing.T, workspaceID uuid.UUID, tabID *uuid.UUID, senderID uuid.UUID, content string) (*chat.MessageInsertedEvent, uuid.UUID) {
	t.Helper()
	msg, err := chat.NewMessage(workspaceID, tabID, senderID, content)
	require.NoError(t, err)
	return chat.NewMessageInsertedEvent(msg), msg.ID
}

func drain(s *Session) []SessionEvent {
	var events []SessionEvent
	for {
		select {
		case ev := <-s.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestSessionRelayAndFeedDeduplicate(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	senderID := uuid.New()
	key := chat.NewWorkspaceChannel(workspaceID)
	f := newSessionFixture(key)

	event, msgID := insertedEventFor(t, workspaceID, nil, senderID, "seen once")
	local := chat.LocalMessage{
		ID:          msgID.String(),
		WorkspaceID: workspaceID,
		SenderID:    senderID,
		Content:     "seen once",
		CreatedAt:   time.Now(),
		Sender:      identity.ProfileSnapshot{UserID: senderID, DisplayName: "Dana"},
		State:       chat.Lifecycle{Kind: chat.KindConfirmed},
	}

	// Relay echo arrives first, then the durable feed reports the same row
	f.session.onFrame(relayInsertFor(local))
	f.session.applyFeedEvent(ctx, event)

	assert.Equal(t, 1, f.session.store.Len())
	events := drain(f.session)
	require.Len(t, events, 1)
	assert.Equal(t, chat.RelayInsert, events[0].Kind)
	f.userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSessionFeedInsertEnrichesProfile(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	senderID := uuid.New()
	key := chat.NewWorkspaceChannel(workspaceID)

	t.Run("fresh lookup on feed insert", func(t *testing.T) {
		f := newSessionFixture(key)
		f.userRepo.On("FindByID", ctx, senderID).Return(chatUser(t, senderID, "Dana"), nil)

		event, _ := insertedEventFor(t, workspaceID, nil, senderID, "from the feed")
		f.session.applyFeedEvent(ctx, event)

		msgs := f.session.store.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "Dana", msgs[0].Sender.DisplayName)
	})

	t.Run("failed lookup degrades to bare id", func(t *testing.T) {
		f := newSessionFixture(key)
		f.userRepo.On("FindByID", ctx, senderID).Return(nil, assert.AnError)

		event, _ := insertedEventFor(t, workspaceID, nil, senderID, "still shown")
		f.session.applyFeedEvent(ctx, event)

		msgs := f.session.store.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, senderID, msgs[0].Sender.UserID)
		assert.Empty(t, msgs[0].Sender.DisplayName)
	})
}

func TestSessionScopeFiltering(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	senderID := uuid.New()
	tabID := uuid.New()

	t.Run("workspace scope accepts tabbed rows", func(t *testing.T) {
		f := newSessionFixture(chat.NewWorkspaceChannel(workspaceID))
		f.userRepo.On("FindByID", ctx, senderID).Return(chatUser(t, senderID, "Dana"), nil)

		event, _ := insertedEventFor(t, workspaceID, &tabID, senderID, "tab talk")
		f.session.applyFeedEvent(ctx, event)

		assert.Equal(t, 1, f.session.store.Len())
	})

	t.Run("tab scope drops untabbed rows", func(t *testing.T) {
		f := newSessionFixture(chat.NewTabChannel(workspaceID, tabID))

		event, _ := insertedEventFor(t, workspaceID, nil, senderID, "lobby talk")
		f.session.applyFeedEvent(ctx, event)

		assert.Equal(t, 0, f.session.store.Len())
	})

	t.Run("tab scope accepts its own tab", func(t *testing.T) {
		f := newSessionFixture(chat.NewTabChannel(workspaceID, tabID))
		f.userRepo.On("FindByID", ctx, senderID).Return(chatUser(t, senderID, "Dana"), nil)

		event, _ := insertedEventFor(t, workspaceID, &tabID, senderID, "tab talk")
		f.session.applyFeedEvent(ctx, event)

		assert.Equal(t, 1, f.session.store.Len())
	})

	t.Run("other workspace is ignored", func(t *testing.T) {
		f := newSessionFixture(chat.NewWorkspaceChannel(workspaceID))

		event, _ := insertedEventFor(t, uuid.New(), nil, senderID, "wrong room")
		f.session.applyFeedEvent(ctx, event)

		assert.Equal(t, 0, f.session.store.Len())
	})
}

func TestSessionFeedUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	workspaceID := uuid.New()
	senderID := uuid.New()
	key := chat.NewWorkspaceChannel(workspaceID)

	seed := func(t *testing.T, f *sessionFixture) uuid.UUID {
		t.Helper()
		f.userRepo.On("FindByID", ctx, senderID).Return(chatUser(t, senderID, "Dana"), nil)
		event, msgID := insertedEventFor(t, workspaceID, nil, senderID, "original")
		f.session.applyFeedEvent(ctx, event)
		drain(f.session)
		return msgID
	}

	t.Run("update merges by id", func(t *testing.T) {
		f := newSessionFixture(key)
		msgID := seed(t, f)

		msg, err := chat.NewMessage(workspaceID, nil, senderID, "original")
		require.NoError(t, err)
		msg.ID = msgID
		require.NoError(t, msg.Edit(senderID, "revised"))
		f.session.applyFeedEvent(ctx, chat.NewMessageUpdatedEvent(msg))

		msgs := f.session.store.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "revised", msgs[0].Content)
		assert.Equal(t, chat.KindEdited, msgs[0].State.Kind)

		events := drain(f.session)
		require.Len(t, events, 1)
		assert.Equal(t, chat.RelayUpdate, events[0].Kind)
	})

	t.Run("update for unknown id is dropped", func(t *testing.T) {
		f := newSessionFixture(key)

		msg, err := chat.NewMessage(workspaceID, nil, senderID, "never seen")
		require.NoError(t, err)
		require.NoError(t, msg.Edit(senderID, "revised"))
		f.session.applyFeedEvent(ctx, chat.NewMessageUpdatedEvent(msg))

		assert.Equal(t, 0, f.session.store.Len())
		assert.Empty(t, drain(f.session))
	})

	t.Run("delete removes by id, absent is silent", func(t *testing.T) {
		f := newSessionFixture(key)
		msgID := seed(t, f)

		msg, err := chat.NewMessage(workspaceID, nil, senderID, "original")
		require.NoError(t, err)
		msg.ID = msgID
		f.session.applyFeedEvent(ctx, chat.NewMessageDeletedEvent(msg))
		f.session.applyFeedEvent(ctx, chat.NewMessageDeletedEvent(msg))

		assert.Equal(t, 0, f.session.store.Len())
		events := drain(f.session)
		require.Len(t, events, 1)
		assert.Equal(t, chat.RelayDelete, events[0].Kind)
	})
}

func TestSessionMalformedRelayFramesAreDropped(t *testing.T) {
	workspaceID := uuid.New()
	key := chat.NewWorkspaceChannel(workspaceID)
	f := newSessionFixture(key)

	f.session.onFrame(chat.RelayFrame{Kind: chat.RelayInsert, MessageID: "x", Row: []byte(`{"id": 42}`)})
	f.session.onFrame(chat.RelayFrame{Kind: chat.RelayUpdate, MessageID: "x", Row: []byte(`not json`)})

	assert.Equal(t, 0, f.session.store.Len())
	assert.Empty(t, drain(f.session))
}
