package storage

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes regular chat messages from system events that are
// rendered differently by clients.
type MessageType string

const (
	MessageTypeDefault   MessageType = "default"
	MessageTypeReply     MessageType = "reply"
	MessageTypeUserJoin  MessageType = "user_join"
	MessageTypeUserLeave MessageType = "user_leave"
)

// Attachment is a file reference carried inside a message. Attachments are
// stored denormalized as a jsonb column on the messages table.
type Attachment struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
}

// Message is a persisted chat message.
type Message struct {
	ID          uuid.UUID    `json:"id"`
	ChannelID   uuid.UUID    `json:"channel_id"`
	AuthorID    uuid.UUID    `json:"author_id"`
	Content     string       `json:"content"`
	MessageType MessageType  `json:"message_type"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// User is a registered account. The password hash never leaves the backend.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Channel is a text channel belonging to a guild.
type Channel struct {
	ID        uuid.UUID `json:"id"`
	GuildID   uuid.UUID `json:"guild_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
