// Package config assembles the application configuration from environment
// variables.
package config

import (
	"time"

	"github.com/dmitrymomot/relay/auth"
	"github.com/dmitrymomot/relay/core/config"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/server"
	"github.com/dmitrymomot/relay/core/ws"
	"github.com/dmitrymomot/relay/integration/database/pg"
	"github.com/dmitrymomot/relay/integration/database/redis"
)

// Config is the full application configuration tree.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"relay"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	Log    logger.Config
	Server server.Config
	WS     ws.Config
	Pg     pg.Config
	Redis  redis.Config
	Auth   auth.Config

	// AccessCacheTTL bounds how long a channel access verdict may be served
	// from Redis before the database is consulted again.
	AccessCacheTTL time.Duration `env:"ACCESS_CACHE_TTL" envDefault:"5m"`

	// BroadcastBuffer is the per-subscriber frame buffer. When a subscriber
	// falls this many frames behind, its oldest frames are dropped.
	BroadcastBuffer int `env:"BROADCAST_BUFFER" envDefault:"100"`
}

// Load reads the configuration from the environment, applying a local .env
// file first when present.
func Load() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
