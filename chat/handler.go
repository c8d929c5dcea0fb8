package chat

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/relay/core/ws"
	"github.com/dmitrymomot/relay/storage"
)

// MaxContentLength caps message content at the wire level, measured in bytes.
const MaxContentLength = 2000

// TokenVerifier resolves a bearer token to a user ID.
type TokenVerifier interface {
	VerifyToken(token string) (uuid.UUID, error)
}

// Handler adapts the chat domain to the websocket session engine. Channel
// IDs are the broadcast keys and Envelope is the wire message type.
type Handler struct {
	svc    *Service
	tokens TokenVerifier
	logger *slog.Logger
}

var _ ws.Handler[uuid.UUID, Envelope] = (*Handler)(nil)

// NewHandler creates the websocket contract implementation for chat.
func NewHandler(svc *Service, tokens TokenVerifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// Authenticate resolves the session token carried in the connection URL.
func (h *Handler) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	return h.tokens.VerifyToken(token)
}

// OnConnect logs the session start. Presence bookkeeping would hook in here.
func (h *Handler) OnConnect(ctx context.Context, client ws.ClientID, user uuid.UUID) error {
	h.logger.InfoContext(ctx, "chat session started",
		slog.String("client_id", client.String()),
		slog.String("user_id", user.String()))
	return nil
}

// OnDisconnect logs the session end.
func (h *Handler) OnDisconnect(client ws.ClientID) {
	h.logger.Info("chat session ended", slog.String("client_id", client.String()))
}

// Subscriptions resolves the channels the user receives events for.
func (h *Handler) Subscriptions(ctx context.Context, user uuid.UUID) ([]uuid.UUID, error) {
	return h.svc.UserChannelIDs(ctx, user)
}

// Validate rejects malformed frames before they reach Dispatch. Server-only
// event types are never accepted from clients.
func (h *Handler) Validate(msg Envelope) error {
	switch msg.Type {
	case EventMessage:
		if msg.NewMessage == nil || msg.NewMessage.ChannelID == uuid.Nil {
			return ErrMissingChannelID
		}
		if strings.TrimSpace(msg.NewMessage.Content) == "" {
			return ErrEmptyContent
		}
		if len(msg.NewMessage.Content) > MaxContentLength {
			return ErrContentTooLong
		}
		switch msg.NewMessage.MessageType {
		case "", storage.MessageTypeDefault, storage.MessageTypeReply,
			storage.MessageTypeUserJoin, storage.MessageTypeUserLeave:
			return nil
		default:
			return ErrInvalidMessageType
		}
	case EventTypingStart, EventTypingStop:
		if msg.Typing == nil || msg.Typing.ChannelID == uuid.Nil {
			return ErrMissingChannelID
		}
		return nil
	case EventMessageCreated:
		return ErrServerOnlyEvent
	default:
		return ErrUnknownEventType
	}
}

// Dispatch handles one validated frame. Posted messages are persisted and
// announced to the channel; typing indicators are relayed without storage,
// stamped with the sender so clients cannot impersonate each other.
func (h *Handler) Dispatch(ctx context.Context, _ ws.ClientID, user uuid.UUID, msg Envelope) (*ws.Outbound[uuid.UUID, Envelope], error) {
	switch msg.Type {
	case EventMessage:
		created, err := h.svc.CreateMessage(ctx, user, *msg.NewMessage)
		if err != nil {
			return nil, err
		}
		return &ws.Outbound[uuid.UUID, Envelope]{
			Key:     created.ChannelID,
			Message: Envelope{Type: EventMessageCreated, Created: &created},
		}, nil

	case EventTypingStart, EventTypingStop:
		ok, err := h.svc.CanAccess(ctx, user, msg.Typing.ChannelID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrChannelAccessDenied
		}
		return &ws.Outbound[uuid.UUID, Envelope]{
			Key:     msg.Typing.ChannelID,
			Message: Envelope{Type: msg.Type, Typing: &Typing{ChannelID: msg.Typing.ChannelID, UserID: user}},
		}, nil

	default:
		return nil, ErrUnknownEventType
	}
}
