// Package chat implements the messaging domain: posting and listing channel
// messages, relaying typing indicators, and the websocket contract that binds
// it all to the connection engine.
package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/relay/storage"
)

// Store is the persistence surface the chat domain needs.
type Store interface {
	CreateMessage(ctx context.Context, params storage.CreateMessageParams) (storage.Message, error)
	ListMessages(ctx context.Context, channelID uuid.UUID, limit int) ([]storage.Message, error)
	UserChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	UserHasChannelAccess(ctx context.Context, userID, channelID uuid.UUID) (bool, error)
}

// Service enforces channel access rules over the store.
type Service struct {
	store Store
}

// NewService creates the chat domain service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateMessage persists a message after verifying the author can post to
// the channel.
func (s *Service) CreateMessage(ctx context.Context, authorID uuid.UUID, msg SendMessage) (storage.Message, error) {
	ok, err := s.store.UserHasChannelAccess(ctx, authorID, msg.ChannelID)
	if err != nil {
		return storage.Message{}, err
	}
	if !ok {
		return storage.Message{}, ErrChannelAccessDenied
	}

	return s.store.CreateMessage(ctx, storage.CreateMessageParams{
		ChannelID:   msg.ChannelID,
		AuthorID:    authorID,
		Content:     msg.Content,
		MessageType: msg.MessageType,
		Attachments: msg.Attachments,
	})
}

// History returns recent channel messages, newest first, after verifying the
// requester can read the channel.
func (s *Service) History(ctx context.Context, userID, channelID uuid.UUID, limit int) ([]storage.Message, error) {
	ok, err := s.store.UserHasChannelAccess(ctx, userID, channelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChannelAccessDenied
	}
	return s.store.ListMessages(ctx, channelID, limit)
}

// UserChannelIDs returns every channel the user can see.
func (s *Service) UserChannelIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.store.UserChannels(ctx, userID)
}

// CanAccess reports whether the user may interact with the channel.
func (s *Service) CanAccess(ctx context.Context, userID, channelID uuid.UUID) (bool, error) {
	return s.store.UserHasChannelAccess(ctx, userID, channelID)
}
