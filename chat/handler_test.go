package chat_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/chat"
	"github.com/dmitrymomot/relay/storage"
)

type fakeStore struct {
	mu       sync.Mutex
	channels map[uuid.UUID][]uuid.UUID // user -> channels
	messages []storage.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{channels: make(map[uuid.UUID][]uuid.UUID)}
}

func (f *fakeStore) grant(userID, channelID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[userID] = append(f.channels[userID], channelID)
}

func (f *fakeStore) CreateMessage(_ context.Context, params storage.CreateMessageParams) (storage.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	messageType := params.MessageType
	if messageType == "" {
		messageType = storage.MessageTypeDefault
	}
	msg := storage.Message{
		ID:          uuid.New(),
		ChannelID:   params.ChannelID,
		AuthorID:    params.AuthorID,
		Content:     params.Content,
		MessageType: messageType,
		Attachments: params.Attachments,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeStore) ListMessages(_ context.Context, channelID uuid.UUID, limit int) ([]storage.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.Message
	for i := len(f.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if f.messages[i].ChannelID == channelID {
			out = append(out, f.messages[i])
		}
	}
	return out, nil
}

func (f *fakeStore) UserChannels(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.channels[userID]...), nil
}

func (f *fakeStore) UserHasChannelAccess(_ context.Context, userID, channelID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.channels[userID] {
		if id == channelID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type staticVerifier struct {
	users map[string]uuid.UUID
}

func (v staticVerifier) VerifyToken(token string) (uuid.UUID, error) {
	id, ok := v.users[token]
	if !ok {
		return uuid.Nil, errors.New("unknown token")
	}
	return id, nil
}

func TestHandler_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	handler := chat.NewHandler(
		chat.NewService(newFakeStore()),
		staticVerifier{users: map[string]uuid.UUID{"good-token": userID}},
		nil,
	)

	got, err := handler.Authenticate(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = handler.Authenticate(context.Background(), "bad-token")
	assert.Error(t, err)
}

func TestHandler_Validate(t *testing.T) {
	t.Parallel()

	handler := chat.NewHandler(chat.NewService(newFakeStore()), staticVerifier{}, nil)
	channelID := uuid.New()

	t.Run("accepts a normal message", func(t *testing.T) {
		t.Parallel()

		err := handler.Validate(chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{ChannelID: channelID, Content: "hello"},
		})
		assert.NoError(t, err)
	})

	t.Run("rejects whitespace-only content", func(t *testing.T) {
		t.Parallel()

		err := handler.Validate(chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{ChannelID: channelID, Content: "   \n\t"},
		})
		assert.ErrorIs(t, err, chat.ErrEmptyContent)
	})

	t.Run("rejects oversized content", func(t *testing.T) {
		t.Parallel()

		err := handler.Validate(chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{ChannelID: channelID, Content: strings.Repeat("a", chat.MaxContentLength+1)},
		})
		assert.ErrorIs(t, err, chat.ErrContentTooLong)
	})

	t.Run("accepts content at the limit", func(t *testing.T) {
		t.Parallel()

		err := handler.Validate(chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{ChannelID: channelID, Content: strings.Repeat("a", chat.MaxContentLength)},
		})
		assert.NoError(t, err)
	})

	t.Run("rejects missing channel", func(t *testing.T) {
		t.Parallel()

		err := handler.Validate(chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{Content: "hello"},
		})
		assert.ErrorIs(t, err, chat.ErrMissingChannelID)
	})

	t.Run("rejects unknown message_type", func(t *testing.T) {
		t.Parallel()

		err := handler.Validate(chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{ChannelID: channelID, Content: "hi", MessageType: "presence"},
		})
		assert.ErrorIs(t, err, chat.ErrInvalidMessageType)
	})

	t.Run("accepts known message_type", func(t *testing.T) {
		t.Parallel()

		err := handler.Validate(chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{ChannelID: channelID, Content: "hi", MessageType: storage.MessageTypeReply},
		})
		assert.NoError(t, err)
	})

	t.Run("rejects server-only event from client", func(t *testing.T) {
		t.Parallel()

		err := handler.Validate(chat.Envelope{Type: chat.EventMessageCreated, Created: &storage.Message{}})
		assert.ErrorIs(t, err, chat.ErrServerOnlyEvent)
	})

	t.Run("accepts typing with channel", func(t *testing.T) {
		t.Parallel()

		err := handler.Validate(chat.Envelope{
			Type:   chat.EventTypingStart,
			Typing: &chat.Typing{ChannelID: channelID},
		})
		assert.NoError(t, err)
	})
}

func TestHandler_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("persists message and announces it to the channel", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		userID := uuid.New()
		channelID := uuid.New()
		store.grant(userID, channelID)

		handler := chat.NewHandler(chat.NewService(store), staticVerifier{}, nil)

		out, err := handler.Dispatch(context.Background(), uuid.New(), userID, chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{ChannelID: channelID, Content: "hello"},
		})
		require.NoError(t, err)
		require.NotNil(t, out)

		assert.Equal(t, channelID, out.Key)
		assert.Equal(t, chat.EventMessageCreated, out.Message.Type)
		require.NotNil(t, out.Message.Created)
		assert.Equal(t, "hello", out.Message.Created.Content)
		assert.Equal(t, userID, out.Message.Created.AuthorID)
		assert.Equal(t, 1, store.messageCount())
	})

	t.Run("persists the requested message_type", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		userID := uuid.New()
		channelID := uuid.New()
		store.grant(userID, channelID)

		handler := chat.NewHandler(chat.NewService(store), staticVerifier{}, nil)

		out, err := handler.Dispatch(context.Background(), uuid.New(), userID, chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{ChannelID: channelID, Content: "re: hello", MessageType: storage.MessageTypeReply},
		})
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, storage.MessageTypeReply, out.Message.Created.MessageType)
	})

	t.Run("denies posting without membership and persists nothing", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		handler := chat.NewHandler(chat.NewService(store), staticVerifier{}, nil)

		out, err := handler.Dispatch(context.Background(), uuid.New(), uuid.New(), chat.Envelope{
			Type:       chat.EventMessage,
			NewMessage: &chat.SendMessage{ChannelID: uuid.New(), Content: "hello"},
		})
		assert.ErrorIs(t, err, chat.ErrChannelAccessDenied)
		assert.Nil(t, out)
		assert.Zero(t, store.messageCount())
	})

	t.Run("relays typing stamped with the sender", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		userID := uuid.New()
		channelID := uuid.New()
		store.grant(userID, channelID)

		handler := chat.NewHandler(chat.NewService(store), staticVerifier{}, nil)

		spoofed := uuid.New()
		out, err := handler.Dispatch(context.Background(), uuid.New(), userID, chat.Envelope{
			Type:   chat.EventTypingStart,
			Typing: &chat.Typing{ChannelID: channelID, UserID: spoofed},
		})
		require.NoError(t, err)
		require.NotNil(t, out)

		assert.Equal(t, channelID, out.Key)
		assert.Equal(t, chat.EventTypingStart, out.Message.Type)
		assert.Equal(t, userID, out.Message.Typing.UserID)
		assert.Zero(t, store.messageCount())
	})

	t.Run("denies typing without membership", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		handler := chat.NewHandler(chat.NewService(store), staticVerifier{}, nil)

		_, err := handler.Dispatch(context.Background(), uuid.New(), uuid.New(), chat.Envelope{
			Type:   chat.EventTypingStop,
			Typing: &chat.Typing{ChannelID: uuid.New()},
		})
		assert.ErrorIs(t, err, chat.ErrChannelAccessDenied)
	})
}

func TestService_History(t *testing.T) {
	t.Parallel()

	t.Run("returns newest first for members", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		userID := uuid.New()
		channelID := uuid.New()
		store.grant(userID, channelID)

		svc := chat.NewService(store)
		for _, content := range []string{"first", "second", "third"} {
			_, err := store.CreateMessage(context.Background(), storage.CreateMessageParams{
				ChannelID: channelID,
				AuthorID:  userID,
				Content:   content,
			})
			require.NoError(t, err)
		}

		messages, err := svc.History(context.Background(), userID, channelID, 2)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "third", messages[0].Content)
		assert.Equal(t, "second", messages[1].Content)
	})

	t.Run("denies non-members", func(t *testing.T) {
		t.Parallel()

		svc := chat.NewService(newFakeStore())
		_, err := svc.History(context.Background(), uuid.New(), uuid.New(), 10)
		assert.ErrorIs(t, err, chat.ErrChannelAccessDenied)
	})
}

func TestService_UserChannelIDs(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	userID := uuid.New()
	a, b := uuid.New(), uuid.New()
	store.grant(userID, a)
	store.grant(userID, b)

	svc := chat.NewService(store)
	ids, err := svc.UserChannelIDs(context.Background(), userID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)
}
