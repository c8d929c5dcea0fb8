package broadcast_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/core/broadcast"
)

func recvTimeout[M any](t *testing.T, sub *broadcast.Subscription[M]) M {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		require.True(t, ok, "subscription closed unexpectedly")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		panic("unreachable")
	}
}

func TestBroadcaster_Publish(t *testing.T) {
	t.Parallel()

	t.Run("delivers identical payload to all subscribers", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, string]()

		subs := make([]*broadcast.Subscription[string], 5)
		for i := range subs {
			subs[i] = b.Subscribe("room")
			defer subs[i].Close()
		}

		n := b.Publish("room", "hello")
		assert.Equal(t, 5, n)

		for _, sub := range subs {
			assert.Equal(t, "hello", recvTimeout(t, sub))
		}
	})

	t.Run("returns zero for unknown key", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, string]()
		assert.Equal(t, 0, b.Publish("nobody-home", "hello"))
		assert.Equal(t, 0, b.Topics())
	})

	t.Run("returns zero after all subscribers closed", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, int]()
		sub := b.Subscribe("room")
		sub.Close()

		assert.Equal(t, 0, b.Publish("room", 42))
		// Topic survives its last subscriber.
		assert.Equal(t, 1, b.Topics())
	})

	t.Run("keys partition delivery", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, string]()
		a := b.Subscribe("a")
		defer a.Close()
		c := b.Subscribe("c")
		defer c.Close()

		require.Equal(t, 1, b.Publish("a", "for-a"))

		assert.Equal(t, "for-a", recvTimeout(t, a))
		select {
		case msg := <-c.C():
			t.Fatalf("subscriber of other key received %q", msg)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("caught-up subscribers observe publish order", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, int](broadcast.WithBufferSize[string, int](100))
		sub := b.Subscribe("room")
		defer sub.Close()

		for i := 0; i < 50; i++ {
			b.Publish("room", i)
		}
		for i := 0; i < 50; i++ {
			assert.Equal(t, i, recvTimeout(t, sub))
		}
	})
}

func TestBroadcaster_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("concurrent first subscribes share one topic", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, string]()

		const n = 32
		subs := make([]*broadcast.Subscription[string], n)

		var start, done sync.WaitGroup
		start.Add(1)
		done.Add(n)
		for i := 0; i < n; i++ {
			go func(i int) {
				defer done.Done()
				start.Wait()
				subs[i] = b.Subscribe("fresh-key")
			}(i)
		}
		start.Done()
		done.Wait()

		require.Equal(t, 1, b.Topics())

		// One publish must reach every handle; two distinct channels for the
		// same key would leave part of the group empty-handed.
		assert.Equal(t, n, b.Publish("fresh-key", "ping"))
		for _, sub := range subs {
			assert.Equal(t, "ping", recvTimeout(t, sub))
			sub.Close()
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, string]()
		sub := b.Subscribe("room")
		sub.Close()
		sub.Close()

		_, ok := <-sub.C()
		assert.False(t, ok)
	})

	t.Run("closed subscription stops receiving", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, string]()
		stays := b.Subscribe("room")
		defer stays.Close()
		leaves := b.Subscribe("room")
		leaves.Close()

		assert.Equal(t, 1, b.Publish("room", "bye"))
		assert.Equal(t, "bye", recvTimeout(t, stays))
	})
}

func TestBroadcaster_SlowSubscriber(t *testing.T) {
	t.Parallel()

	t.Run("drops oldest keeps newest", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, int](broadcast.WithBufferSize[string, int](4))
		sub := b.Subscribe("room")
		defer sub.Close()

		// Publish well past capacity without draining. Must never block.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 20; i++ {
				b.Publish("room", i)
			}
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("publisher blocked on slow subscriber")
		}

		// The buffer holds the newest window; the tail message is present.
		got := make([]int, 0, 4)
		for n := 0; n < 4; n++ {
			got = append(got, recvTimeout(t, sub))
		}
		assert.Equal(t, 19, got[len(got)-1])
		assert.GreaterOrEqual(t, sub.Dropped(), int64(16))
	})

	t.Run("slow subscriber does not affect fast one", func(t *testing.T) {
		t.Parallel()

		b := broadcast.New[string, int](broadcast.WithBufferSize[string, int](2))
		slow := b.Subscribe("room")
		defer slow.Close()
		fast := b.Subscribe("room")
		defer fast.Close()

		for i := 0; i < 10; i++ {
			b.Publish("room", i)
			assert.Equal(t, i, recvTimeout(t, fast))
		}
		assert.Positive(t, slow.Dropped())
	})
}

func TestBroadcaster_ConcurrentPublishers(t *testing.T) {
	t.Parallel()

	b := broadcast.New[int, string](broadcast.WithBufferSize[int, string](1024))

	subs := make([]*broadcast.Subscription[string], 4)
	for i := range subs {
		subs[i] = b.Subscribe(7)
		defer subs[i].Close()
	}

	const publishers = 8
	const perPublisher = 50

	var wg sync.WaitGroup
	wg.Add(publishers)
	for p := 0; p < publishers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				b.Publish(7, fmt.Sprintf("%d-%d", p, i))
			}
		}(p)
	}
	wg.Wait()

	for _, sub := range subs {
		seen := make(map[string]struct{}, publishers*perPublisher)
		for c := 0; c < publishers*perPublisher; c++ {
			seen[recvTimeout(t, sub)] = struct{}{}
		}
		assert.Len(t, seen, publishers*perPublisher)
	}
}
