package broadcast

import "sync"

// topic is the per-key fan-out primitive: the set of live subscriptions for
// one broadcast key. Once created a topic is never replaced, so every
// publisher and subscriber of a key shares the same instance.
type topic[M any] struct {
	mu   sync.RWMutex
	subs map[*Subscription[M]]struct{}
}

func newTopic[M any]() *topic[M] {
	return &topic[M]{subs: make(map[*Subscription[M]]struct{})}
}

func (t *topic[M]) subscribe(capacity int) *Subscription[M] {
	s := &Subscription[M]{
		ch:     make(chan M, capacity),
		detach: t.remove,
	}

	t.mu.Lock()
	t.subs[s] = struct{}{}
	t.mu.Unlock()

	return s
}

// publish delivers msg to every current subscriber. It returns the number of
// subscribers addressed and how many of them had to drop their oldest
// buffered message to make room.
func (t *topic[M]) publish(msg M) (addressed, dropped int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for s := range t.subs {
		if !s.deliver(msg) {
			dropped++
		}
	}
	return len(t.subs), dropped
}

// remove detaches a subscription. Removal is exclusive with publish, so once
// remove returns no delivery can touch the subscription's channel again and
// the caller may safely close it.
func (t *topic[M]) remove(s *Subscription[M]) {
	t.mu.Lock()
	delete(t.subs, s)
	t.mu.Unlock()
}
