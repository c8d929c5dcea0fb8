package broadcast

import (
	"io"
	"log/slog"
	"sync"
)

// DefaultBufferSize is the per-subscription buffer capacity used unless
// overridden with WithBufferSize.
const DefaultBufferSize = 100

// Broadcaster is a registry of topics keyed by K, fanning published messages
// out to all current subscribers of a key. The zero value is not usable;
// create instances with New.
type Broadcaster[K comparable, M any] struct {
	mu       sync.RWMutex
	topics   map[K]*topic[M]
	capacity int
	logger   *slog.Logger
}

// Option configures a Broadcaster.
type Option[K comparable, M any] func(*Broadcaster[K, M])

// WithBufferSize sets the buffer capacity of every subscription created by
// this Broadcaster. Values below 1 are ignored.
func WithBufferSize[K comparable, M any](size int) Option[K, M] {
	return func(b *Broadcaster[K, M]) {
		if size > 0 {
			b.capacity = size
		}
	}
}

// WithLogger configures structured logging for subscriber message drops.
func WithLogger[K comparable, M any](logger *slog.Logger) Option[K, M] {
	return func(b *Broadcaster[K, M]) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Broadcaster with an empty topic registry.
func New[K comparable, M any](opts ...Option[K, M]) *Broadcaster[K, M] {
	b := &Broadcaster[K, M]{
		topics:   make(map[K]*topic[M]),
		capacity: DefaultBufferSize,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe returns a new receive handle for key, creating the topic if this
// is the first reference to it. Topic creation is atomic: concurrent first
// subscribers for the same key always land on the same topic. Subscribe never
// fails; release the handle with Subscription.Close when done.
func (b *Broadcaster[K, M]) Subscribe(key K) *Subscription[M] {
	b.mu.Lock()
	t, ok := b.topics[key]
	if !ok {
		t = newTopic[M]()
		b.topics[key] = t
	}
	b.mu.Unlock()

	return t.subscribe(b.capacity)
}

// Publish delivers msg to every current subscriber of key and returns how
// many subscribers were addressed. Publishing to a key with no topic returns
// zero and does no work. A subscriber whose buffer is full loses its oldest
// message rather than blocking the publisher; such drops are logged at
// warning level but never fail the publish.
func (b *Broadcaster[K, M]) Publish(key K, msg M) int {
	b.mu.RLock()
	t, ok := b.topics[key]
	b.mu.RUnlock()
	if !ok {
		return 0
	}

	addressed, dropped := t.publish(msg)
	if dropped > 0 {
		b.logger.Warn("slow subscribers dropped oldest buffered message",
			slog.Int("dropped", dropped),
			slog.Int("addressed", addressed))
	}
	return addressed
}

// Topics reports how many distinct topics exist. Topics are never evicted,
// so this grows with the number of distinct keys ever subscribed to.
func (b *Broadcaster[K, M]) Topics() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics)
}
