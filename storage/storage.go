// Package storage implements the persistence layer for users, guilds,
// channels, and messages on PostgreSQL, with an optional Redis cache for
// channel access checks.
package storage

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/relay/integration/database/pg"
)

// Migrations holds the embedded goose migration files for this schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Storage is the PostgreSQL-backed repository.
type Storage struct {
	pool *pgxpool.Pool
}

// New creates a repository on top of an established connection pool.
func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) db(ctx context.Context) dbtx {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

// dbtx is the subset of pgx operations the repository needs, satisfied by
// both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CreateUserParams carries the fields needed to register an account.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
}

// CreateUser inserts a new account and returns it with generated fields.
func (s *Storage) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	const q = `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, created_at`

	var u User
	err := s.db(ctx).QueryRow(ctx, q, params.Username, params.Email, params.PasswordHash).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UserByEmail looks up an account by email address.
func (s *Storage) UserByEmail(ctx context.Context, email string) (User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE email = $1`

	var u User
	err := s.db(ctx).QueryRow(ctx, q, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

// UserByID looks up an account by primary key.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1`

	var u User
	err := s.db(ctx).QueryRow(ctx, q, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("user by id: %w", err)
	}
	return u, nil
}

// CreateMessageParams carries the fields needed to persist a chat message.
type CreateMessageParams struct {
	ChannelID   uuid.UUID
	AuthorID    uuid.UUID
	Content     string
	MessageType MessageType
	Attachments []Attachment
}

// CreateMessage inserts a message and returns it with generated fields.
func (s *Storage) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	if params.MessageType == "" {
		params.MessageType = MessageTypeDefault
	}
	attachments := params.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	raw, err := json.Marshal(attachments)
	if err != nil {
		return Message{}, fmt.Errorf("marshal attachments: %w", err)
	}

	const q = `
		INSERT INTO messages (channel_id, author_id, content, message_type, attachments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, channel_id, author_id, content, message_type, attachments, created_at, updated_at`

	return scanMessage(s.db(ctx).QueryRow(ctx, q,
		params.ChannelID, params.AuthorID, params.Content, params.MessageType, raw))
}

// ListMessages returns up to limit messages for a channel, newest first.
func (s *Storage) ListMessages(ctx context.Context, channelID uuid.UUID, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `
		SELECT id, channel_id, author_id, content, message_type, attachments, created_at, updated_at
		FROM messages
		WHERE channel_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db(ctx).Query(ctx, q, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// UserChannels returns the IDs of every channel the user can see through
// guild membership.
func (s *Storage) UserChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const q = `
		SELECT DISTINCT c.id
		FROM channels c
		JOIN guild_members gm ON gm.guild_id = c.guild_id
		WHERE gm.user_id = $1`

	rows, err := s.db(ctx).Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("user channels: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("user channels: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user channels: %w", err)
	}
	return ids, nil
}

// UserHasChannelAccess reports whether the user is a member of the guild
// owning the channel.
func (s *Storage) UserHasChannelAccess(ctx context.Context, userID, channelID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM channels c
			JOIN guild_members gm ON gm.guild_id = c.guild_id
			WHERE c.id = $1 AND gm.user_id = $2
		)`

	var ok bool
	if err := s.db(ctx).QueryRow(ctx, q, channelID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("channel access: %w", err)
	}
	return ok, nil
}

func scanMessage(row pgx.Row) (Message, error) {
	var (
		m   Message
		raw []byte
	)
	err := row.Scan(&m.ID, &m.ChannelID, &m.AuthorID, &m.Content, &m.MessageType, &raw, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("scan message: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m.Attachments); err != nil {
			return Message{}, fmt.Errorf("unmarshal attachments: %w", err)
		}
	}
	if len(m.Attachments) == 0 {
		m.Attachments = nil
	}
	return m, nil
}
