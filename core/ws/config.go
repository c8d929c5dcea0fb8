package ws

import "time"

const (
	// DefaultWriteWait is the time allowed to write one frame to the peer.
	DefaultWriteWait = 10 * time.Second

	// DefaultPongWait is the time allowed between pongs before the read
	// side gives up on the peer.
	DefaultPongWait = 60 * time.Second

	// DefaultMaxMessageSize caps inbound frame size in bytes.
	DefaultMaxMessageSize = 64 << 10
)

// Config holds session engine configuration with environment variable
// support.
type Config struct {
	// WriteWait is the per-frame write deadline.
	WriteWait time.Duration `env:"WS_WRITE_WAIT" envDefault:"10s"`

	// PongWait is the read deadline extension granted on every pong. Pings
	// are sent at 9/10 of this interval.
	PongWait time.Duration `env:"WS_PONG_WAIT" envDefault:"60s"`

	// MaxMessageSize is the maximum inbound frame size in bytes.
	MaxMessageSize int64 `env:"WS_MAX_MESSAGE_SIZE" envDefault:"65536"`

	// ReadBufferSize and WriteBufferSize size the upgrader's I/O buffers.
	ReadBufferSize  int `env:"WS_READ_BUFFER_SIZE" envDefault:"1024"`
	WriteBufferSize int `env:"WS_WRITE_BUFFER_SIZE" envDefault:"1024"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		WriteWait:       DefaultWriteWait,
		PongWait:        DefaultPongWait,
		MaxMessageSize:  DefaultMaxMessageSize,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// pingPeriod derives the keepalive interval; it must stay below PongWait so
// a healthy peer always pongs in time.
func (c Config) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}
