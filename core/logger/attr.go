package logger

import (
	"log/slog"

	"github.com/google/uuid"
)

// Attribute helpers use the empty Attr pattern for nil safety, so call sites
// never need explicit nil checks.

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component tags records with the subsystem that emitted them.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// UserID creates an attribute for an authenticated user identifier.
func UserID(id uuid.UUID) slog.Attr {
	if id == uuid.Nil {
		return slog.Attr{}
	}
	return slog.String("user_id", id.String())
}

// ClientID creates an attribute for a connection identifier.
func ClientID(id uuid.UUID) slog.Attr {
	if id == uuid.Nil {
		return slog.Attr{}
	}
	return slog.String("client_id", id.String())
}

// ChannelID creates an attribute for a channel identifier.
func ChannelID(id uuid.UUID) slog.Attr {
	if id == uuid.Nil {
		return slog.Attr{}
	}
	return slog.String("channel_id", id.String())
}
