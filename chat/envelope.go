package chat

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/relay/storage"
)

// EventType discriminates websocket frames. The value lives in the "type"
// field of the wire object, with the variant's fields flattened alongside it.
type EventType string

const (
	// EventMessage is a client request to post a message to a channel.
	EventMessage EventType = "message"
	// EventMessageCreated announces a persisted message to channel subscribers.
	EventMessageCreated EventType = "message_created"
	// EventTypingStart and EventTypingStop relay typing indicators without
	// touching storage.
	EventTypingStart EventType = "typing_start"
	EventTypingStop  EventType = "typing_stop"
)

// SendMessage is the payload of an inbound message frame. MessageType is
// optional; absent means a regular message.
type SendMessage struct {
	ChannelID   uuid.UUID            `json:"channel_id"`
	Content     string               `json:"content"`
	MessageType storage.MessageType  `json:"message_type,omitempty"`
	Attachments []storage.Attachment `json:"attachments,omitempty"`
}

// Typing is the payload of a typing indicator frame. UserID is filled by the
// server before fan-out, never trusted from the client.
type Typing struct {
	ChannelID uuid.UUID `json:"channel_id"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
}

// Envelope is one websocket frame in either direction. Exactly one of the
// payload pointers is set, matching Type.
type Envelope struct {
	Type       EventType
	NewMessage *SendMessage
	Created    *storage.Message
	Typing     *Typing
}

type eventHead struct {
	Type EventType `json:"type"`
}

type sendMessageWire struct {
	Type EventType `json:"type"`
	SendMessage
}

// createdWire nests the persisted message under a "message" key, unlike the
// other variants whose fields sit flat next to the discriminant.
type createdWire struct {
	Type    EventType       `json:"type"`
	Message storage.Message `json:"message"`
}

type typingWire struct {
	Type EventType `json:"type"`
	Typing
}

// MarshalJSON flattens the active payload next to the "type" discriminant.
func (e Envelope) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventMessage:
		if e.NewMessage == nil {
			return nil, fmt.Errorf("%w: %q without payload", ErrUnknownEventType, e.Type)
		}
		return json.Marshal(sendMessageWire{Type: e.Type, SendMessage: *e.NewMessage})
	case EventMessageCreated:
		if e.Created == nil {
			return nil, fmt.Errorf("%w: %q without payload", ErrUnknownEventType, e.Type)
		}
		return json.Marshal(createdWire{Type: e.Type, Message: *e.Created})
	case EventTypingStart, EventTypingStop:
		if e.Typing == nil {
			return nil, fmt.Errorf("%w: %q without payload", ErrUnknownEventType, e.Type)
		}
		return json.Marshal(typingWire{Type: e.Type, Typing: *e.Typing})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}
}

// UnmarshalJSON reads the discriminant first, then decodes the matching
// payload. Unknown discriminants fail with ErrUnknownEventType.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var head eventHead
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case EventMessage:
		var w sendMessageWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*e = Envelope{Type: head.Type, NewMessage: &w.SendMessage}
	case EventMessageCreated:
		var w createdWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*e = Envelope{Type: head.Type, Created: &w.Message}
	case EventTypingStart, EventTypingStop:
		var w typingWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*e = Envelope{Type: head.Type, Typing: &w.Typing}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, head.Type)
	}
	return nil
}
