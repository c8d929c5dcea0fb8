package ws

import (
	"context"

	"github.com/google/uuid"
)

// ClientID identifies one physical connection for the duration of its
// session. It is generated by the engine at upgrade time and never reused.
type ClientID = uuid.UUID

// Outbound is the optional result of a dispatch: one message to publish to
// one broadcast key.
type Outbound[K comparable, M any] struct {
	Key     K
	Message M
}

// Handler is the capability interface a domain implements to drive the
// session engine. The engine guarantees the call order per session:
// Authenticate, then OnConnect, then Subscriptions, then any number of
// Validate/Dispatch pairs, and finally OnDisconnect exactly once for every
// session whose OnConnect succeeded.
type Handler[K comparable, M any] interface {
	// Authenticate validates a bearer token and resolves the user it belongs
	// to. It must not have side effects beyond verification: a failure here
	// means no other hook ever runs for the connection.
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)

	// OnConnect is called once after authentication, before any message is
	// processed. Returning an error aborts the session before the pumps
	// start, without an OnDisconnect call.
	OnConnect(ctx context.Context, client ClientID, user uuid.UUID) error

	// OnDisconnect is called exactly once at teardown for every session
	// whose OnConnect succeeded. Best effort; it cannot fail.
	OnDisconnect(client ClientID)

	// Subscriptions resolves the broadcast keys this user receives. It is
	// called once at connect time; the subscription set is fixed for the
	// session.
	Subscriptions(ctx context.Context, user uuid.UUID) ([]K, error)

	// Validate is a cheap acceptability check run before Dispatch. An error
	// drops the frame without dispatching it.
	Validate(msg M) error

	// Dispatch handles one inbound message and may return one outbound
	// message to publish. It may block on I/O; that suspends only this
	// connection's inbound pump. A nil Outbound means nothing to publish.
	Dispatch(ctx context.Context, client ClientID, user uuid.UUID, msg M) (*Outbound[K, M], error)
}
