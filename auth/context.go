package auth

import (
	"context"

	"github.com/google/uuid"
)

// userIDContextKey is an unexported key type to avoid context key collisions.
type userIDContextKey struct{}

// WithUserID returns a new context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext extracts the authenticated user ID stored by the
// middleware. The second return value indicates whether one was present.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(uuid.UUID)
	return id, ok
}
