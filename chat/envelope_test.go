package chat_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/chat"
	"github.com/dmitrymomot/relay/storage"
)

func TestEnvelope_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("message frame", func(t *testing.T) {
		t.Parallel()

		channelID := uuid.New()
		raw := `{"type":"message","channel_id":"` + channelID.String() + `","content":"hello"}`

		var env chat.Envelope
		require.NoError(t, json.Unmarshal([]byte(raw), &env))

		assert.Equal(t, chat.EventMessage, env.Type)
		require.NotNil(t, env.NewMessage)
		assert.Equal(t, channelID, env.NewMessage.ChannelID)
		assert.Equal(t, "hello", env.NewMessage.Content)
		assert.Nil(t, env.Created)
		assert.Nil(t, env.Typing)
	})

	t.Run("message frame keeps its message_type", func(t *testing.T) {
		t.Parallel()

		channelID := uuid.New()
		raw := `{"type":"message","channel_id":"` + channelID.String() + `","content":"x","message_type":"reply"}`

		var env chat.Envelope
		require.NoError(t, json.Unmarshal([]byte(raw), &env))

		require.NotNil(t, env.NewMessage)
		assert.Equal(t, storage.MessageTypeReply, env.NewMessage.MessageType)
	})

	t.Run("typing frame", func(t *testing.T) {
		t.Parallel()

		channelID := uuid.New()
		raw := `{"type":"typing_start","channel_id":"` + channelID.String() + `"}`

		var env chat.Envelope
		require.NoError(t, json.Unmarshal([]byte(raw), &env))

		assert.Equal(t, chat.EventTypingStart, env.Type)
		require.NotNil(t, env.Typing)
		assert.Equal(t, channelID, env.Typing.ChannelID)
	})

	t.Run("unknown discriminant", func(t *testing.T) {
		t.Parallel()

		var env chat.Envelope
		err := json.Unmarshal([]byte(`{"type":"presence_update"}`), &env)
		assert.ErrorIs(t, err, chat.ErrUnknownEventType)
	})

	t.Run("missing discriminant", func(t *testing.T) {
		t.Parallel()

		var env chat.Envelope
		err := json.Unmarshal([]byte(`{"content":"hello"}`), &env)
		assert.ErrorIs(t, err, chat.ErrUnknownEventType)
	})
}

func TestEnvelope_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("message_created nests the persisted message", func(t *testing.T) {
		t.Parallel()

		msg := storage.Message{
			ID:          uuid.New(),
			ChannelID:   uuid.New(),
			AuthorID:    uuid.New(),
			Content:     "hello",
			MessageType: storage.MessageTypeDefault,
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   time.Now().UTC(),
		}
		env := chat.Envelope{Type: chat.EventMessageCreated, Created: &msg}

		raw, err := json.Marshal(env)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, "message_created", decoded["type"])

		nested, ok := decoded["message"].(map[string]any)
		require.True(t, ok, "persisted message must live under the message key")
		assert.Equal(t, msg.ID.String(), nested["id"])
		assert.Equal(t, msg.ChannelID.String(), nested["channel_id"])
		assert.Equal(t, "hello", nested["content"])
		assert.NotContains(t, decoded, "content")
	})

	t.Run("round trip message_created", func(t *testing.T) {
		t.Parallel()

		msg := storage.Message{
			ID:          uuid.New(),
			ChannelID:   uuid.New(),
			AuthorID:    uuid.New(),
			Content:     "hello",
			MessageType: storage.MessageTypeReply,
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   time.Now().UTC(),
		}
		env := chat.Envelope{Type: chat.EventMessageCreated, Created: &msg}

		raw, err := json.Marshal(env)
		require.NoError(t, err)

		var back chat.Envelope
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, env, back)
	})

	t.Run("round trip typing stop", func(t *testing.T) {
		t.Parallel()

		env := chat.Envelope{
			Type:   chat.EventTypingStop,
			Typing: &chat.Typing{ChannelID: uuid.New(), UserID: uuid.New()},
		}

		raw, err := json.Marshal(env)
		require.NoError(t, err)

		var back chat.Envelope
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, env, back)
	})

	t.Run("rejects payload missing for type", func(t *testing.T) {
		t.Parallel()

		_, err := json.Marshal(chat.Envelope{Type: chat.EventMessage})
		assert.Error(t, err)
	})
}
