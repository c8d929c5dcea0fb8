// Package broadcast provides a topic-keyed fan-out registry for in-process
// realtime messaging.
//
// A Broadcaster maps opaque, comparable keys to topics. Topics are created
// lazily on first subscribe and live for the lifetime of the process. Each
// subscriber owns a bounded buffer with drop-oldest semantics: a subscriber
// that does not drain fast enough loses its oldest buffered messages in favor
// of the newest ones, and publishers never block on slow consumers.
//
// Example:
//
//	b := broadcast.New[string, string](
//	    broadcast.WithBufferSize[string, string](64),
//	)
//
//	sub := b.Subscribe("room-1")
//	defer sub.Close()
//
//	n := b.Publish("room-1", "hello") // n == 1
//	msg := <-sub.C()                  // "hello"
//
// Publishing to a key nobody ever subscribed to is a no-op and returns zero.
// The Broadcaster is safe for concurrent use from any number of goroutines.
package broadcast
