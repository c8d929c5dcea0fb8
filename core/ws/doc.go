// Package ws provides a generic websocket session engine: it upgrades HTTP
// requests, authenticates the client, subscribes it to its broadcast topics,
// and runs the inbound and outbound pumps for the life of the connection.
//
// The engine knows nothing about message semantics. Domain behavior is
// supplied through the Handler capability interface: authentication,
// connect/disconnect hooks, subscription resolution, message validation and
// dispatch. Messages are JSON frames of the handler's message type M, fanned
// out through a broadcast.Broadcaster keyed by the handler's key type K.
//
// Example:
//
//	b := broadcast.New[uuid.UUID, chat.Envelope]()
//	svc := ws.New[uuid.UUID, chat.Envelope](chatHandler, b,
//	    ws.WithLogger[uuid.UUID, chat.Envelope](log),
//	)
//	mux.Handle("GET /api/v1/chat/ws", svc)
//
// Clients pass their bearer token as the "token" query parameter of the
// upgrade request. Missing or invalid tokens are refused with 401 before any
// handler hook runs. Per-frame failures (undecodable frame, validation or
// dispatch error) are logged and isolated to that frame; only transport
// failures end a session.
package ws
