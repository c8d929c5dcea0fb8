package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AccessCache wraps Storage and caches channel access checks in Redis.
// Access checks happen on every inbound chat message, so the hot path skips
// the membership join when a fresh cache entry exists. Cache failures degrade
// to the database check rather than failing the request.
type AccessCache struct {
	*Storage

	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewAccessCache wraps store with a Redis-backed access check cache.
func NewAccessCache(store *Storage, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *AccessCache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AccessCache{Storage: store, rdb: rdb, ttl: ttl, logger: logger}
}

// UserHasChannelAccess answers from cache when possible, falling back to the
// database and populating the cache on a miss.
func (c *AccessCache) UserHasChannelAccess(ctx context.Context, userID, channelID uuid.UUID) (bool, error) {
	key := accessKey(userID, channelID)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "access cache read failed", slog.Any("error", err))
	}

	ok, err := c.Storage.UserHasChannelAccess(ctx, userID, channelID)
	if err != nil {
		return false, err
	}

	val := "0"
	if ok {
		val = "1"
	}
	if err := c.rdb.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "access cache write failed", slog.Any("error", err))
	}
	return ok, nil
}

func accessKey(userID, channelID uuid.UUID) string {
	return fmt.Sprintf("relay:access:%s:%s", userID, channelID)
}
