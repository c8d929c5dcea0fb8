package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/relay/core/broadcast"
)

// Service drives websocket sessions for one Handler. It implements
// http.Handler: mount it on the route clients connect to.
type Service[K comparable, M any] struct {
	handler     Handler[K, M]
	broadcaster *broadcast.Broadcaster[K, M]
	upgrader    websocket.Upgrader
	cfg         Config
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption[K comparable, M any] func(*Service[K, M])

// WithLogger sets a custom logger for session lifecycle and frame errors.
func WithLogger[K comparable, M any](logger *slog.Logger) ServiceOption[K, M] {
	return func(s *Service[K, M]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfig replaces the engine configuration.
func WithConfig[K comparable, M any](cfg Config) ServiceOption[K, M] {
	return func(s *Service[K, M]) {
		if cfg.WriteWait > 0 {
			s.cfg.WriteWait = cfg.WriteWait
		}
		if cfg.PongWait > 0 {
			s.cfg.PongWait = cfg.PongWait
		}
		if cfg.MaxMessageSize > 0 {
			s.cfg.MaxMessageSize = cfg.MaxMessageSize
		}
		if cfg.ReadBufferSize > 0 {
			s.upgrader.ReadBufferSize = cfg.ReadBufferSize
		}
		if cfg.WriteBufferSize > 0 {
			s.upgrader.WriteBufferSize = cfg.WriteBufferSize
		}
	}
}

// WithOriginCheck overrides the upgrader's origin policy.
func WithOriginCheck[K comparable, M any](fn func(r *http.Request) bool) ServiceOption[K, M] {
	return func(s *Service[K, M]) {
		s.upgrader.CheckOrigin = fn
	}
}

// New creates a session engine bound to handler and broadcaster.
func New[K comparable, M any](handler Handler[K, M], broadcaster *broadcast.Broadcaster[K, M], opts ...ServiceOption[K, M]) *Service[K, M] {
	s := &Service[K, M]{
		handler:     handler,
		broadcaster: broadcaster,
		cfg:         DefaultConfig(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ServeHTTP authenticates and upgrades the request, then runs the session
// until the connection ends. A missing or invalid token refuses the upgrade
// with 401 before any handler hook beyond Authenticate runs.
func (s *Service[K, M]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.logger.Warn("upgrade refused", slog.Any("error", ErrMissingToken),
			slog.String("remote_addr", r.RemoteAddr))
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	user, err := s.handler.Authenticate(r.Context(), token)
	if err != nil {
		s.logger.Warn("upgrade refused",
			slog.Any("error", fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)),
			slog.String("remote_addr", r.RemoteAddr))
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Error("websocket upgrade failed", slog.Any("error", err),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	client := uuid.New()
	s.runSession(r.Context(), conn, client, user)
}

// runSession owns the connection from a successful upgrade to teardown.
func (s *Service[K, M]) runSession(ctx context.Context, conn *websocket.Conn, client ClientID, user uuid.UUID) {
	log := s.logger.With(
		slog.String("client_id", client.String()),
		slog.String("user_id", user.String()),
	)
	defer conn.Close()

	if err := s.handler.OnConnect(ctx, client, user); err != nil {
		log.Error("session aborted",
			slog.Any("error", fmt.Errorf("%w: %w", ErrConnectRejected, err)))
		return
	}
	// From here every exit path owes the handler exactly one OnDisconnect.
	defer s.handler.OnDisconnect(client)

	keys, err := s.handler.Subscriptions(ctx, user)
	if err != nil {
		log.Error("session aborted",
			slog.Any("error", fmt.Errorf("%w: subscription resolution: %w", ErrConnectRejected, err)))
		return
	}

	subs := make([]*broadcast.Subscription[M], 0, len(keys))
	for _, key := range keys {
		subs = append(subs, s.broadcaster.Subscribe(key))
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()

	log.Info("session active", slog.Int("subscriptions", len(subs)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Fan-in: one forwarder per subscription feeds the outbound pump, which
	// therefore blocks until any topic has a frame instead of polling.
	out := make(chan M)
	var forwarders sync.WaitGroup
	for _, sub := range subs {
		forwarders.Add(1)
		go func(sub *broadcast.Subscription[M]) {
			defer forwarders.Done()
			forward(ctx, sub, out)
		}(sub)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.inboundPump(gctx, conn, client, user, log) })
	g.Go(func() error { return s.outboundPump(gctx, conn, out, log) })

	// Either pump ending cancels the group context; closing the connection
	// unblocks whichever pump is parked in a read or write.
	go func() {
		<-gctx.Done()
		conn.Close()
	}()

	err = g.Wait()
	cancel()
	forwarders.Wait()

	log.Info("session closed", slog.Any("reason", err))
}

// forward moves frames from one subscription into the shared outbound
// channel. Backpressure never propagates to publishers: the subscription's
// own buffer drops oldest frames while the forwarder waits its turn here.
func forward[M any](ctx context.Context, sub *broadcast.Subscription[M], out chan<- M) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			select {
			case <-ctx.Done():
				return
			case out <- msg:
			}
		}
	}
}

// inboundPump reads frames until the transport fails, dispatching each one.
// Per-frame errors never end the session.
func (s *Service[K, M]) inboundPump(ctx context.Context, conn *websocket.Conn, client ClientID, user uuid.UUID, log *slog.Logger) error {
	conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("read failed", slog.Any("error", err))
			}
			return fmt.Errorf("inbound pump: %w", err)
		}
		s.handleFrame(ctx, client, user, data, log)
	}
}

// handleFrame runs decode, validate, dispatch and publish for one frame.
func (s *Service[K, M]) handleFrame(ctx context.Context, client ClientID, user uuid.UUID, data []byte, log *slog.Logger) {
	var msg M
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn("dropping undecodable frame", slog.Any("error", err))
		return
	}

	if err := s.handler.Validate(msg); err != nil {
		log.Warn("dropping invalid frame", slog.Any("error", err))
		return
	}

	outbound, err := s.handler.Dispatch(ctx, client, user, msg)
	if err != nil {
		log.Error("dispatch failed, frame dropped", slog.Any("error", err))
		return
	}
	if outbound == nil {
		return
	}

	n := s.broadcaster.Publish(outbound.Key, outbound.Message)
	log.Debug("frame published", slog.Int("subscribers", n))
}

// outboundPump serializes fanned-in frames to the peer and keeps the
// connection alive with pings. Write failure ends the session.
func (s *Service[K, M]) outboundPump(ctx context.Context, conn *websocket.Conn, out <-chan M, log *slog.Logger) error {
	ticker := time.NewTicker(s.cfg.pingPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-out:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Error("dropping unserializable frame", slog.Any("error", err))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return fmt.Errorf("outbound pump: %w", err)
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("outbound pump: ping: %w", err)
			}
		}
	}
}
