package broadcast

import (
	"sync"
	"sync/atomic"
)

// Subscription is one subscriber's receive handle into a topic. It is owned
// by exactly one consumer and must not be shared between connections.
type Subscription[M any] struct {
	ch      chan M
	detach  func(*Subscription[M])
	once    sync.Once
	dropped atomic.Int64
}

// C returns the receive channel. The channel is closed by Close; messages
// buffered before Close remain readable until drained.
func (s *Subscription[M]) C() <-chan M {
	return s.ch
}

// Dropped reports how many messages this subscription lost to drop-oldest
// backpressure since it was created.
func (s *Subscription[M]) Dropped() int64 {
	return s.dropped.Load()
}

// Close detaches the subscription from its topic and closes the receive
// channel. It is idempotent and safe to call concurrently with publishes.
func (s *Subscription[M]) Close() {
	s.once.Do(func() {
		s.detach(s)
		close(s.ch)
	})
}

// deliver enqueues msg without ever blocking. When the buffer is full the
// oldest buffered message is discarded to make room for the newest one.
// Returns false if an old message was dropped.
func (s *Subscription[M]) deliver(msg M) bool {
	select {
	case s.ch <- msg:
		return true
	default:
	}

	// Buffer full: evict the oldest entry. The consumer may have drained
	// concurrently, so both selects stay non-blocking.
	select {
	case <-s.ch:
		s.dropped.Add(1)
	default:
	}

	select {
	case s.ch <- msg:
	default:
		s.dropped.Add(1)
	}
	return false
}
