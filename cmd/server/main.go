package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/relay/auth"
	"github.com/dmitrymomot/relay/chat"
	"github.com/dmitrymomot/relay/config"
	"github.com/dmitrymomot/relay/core/broadcast"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/server"
	"github.com/dmitrymomot/relay/core/ws"
	"github.com/dmitrymomot/relay/integration/database/pg"
	"github.com/dmitrymomot/relay/integration/database/redis"
	"github.com/dmitrymomot/relay/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewFromConfig(cfg.Log, logger.WithAttrs(
		slog.String("app", cfg.AppName),
		slog.String("env", cfg.Env),
	))

	pool, err := pg.Connect(ctx, cfg.Pg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, storage.Migrations, "migrations", log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	store := storage.New(pool)
	cachedStore := storage.NewAccessCache(store, rdb, cfg.AccessCacheTTL, log)

	authSvc, err := auth.New(store, cfg.Auth)
	if err != nil {
		return err
	}

	chatSvc := chat.NewService(cachedStore)
	chatHandler := chat.NewHandler(chatSvc, authSvc, log.With(logger.Component("chat")))

	broadcaster := broadcast.New[uuid.UUID, chat.Envelope](
		broadcast.WithBufferSize[uuid.UUID, chat.Envelope](cfg.BroadcastBuffer),
		broadcast.WithLogger[uuid.UUID, chat.Envelope](log.With(logger.Component("broadcast"))),
	)

	wsService := ws.New[uuid.UUID, chat.Envelope](chatHandler, broadcaster,
		ws.WithConfig[uuid.UUID, chat.Envelope](cfg.WS),
		ws.WithLogger[uuid.UUID, chat.Envelope](log.With(logger.Component("ws"))),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", authSvc.HandleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", authSvc.HandleLogin)
	mux.Handle("POST /api/v1/chat/messages/history", authSvc.RequireAuth(http.HandlerFunc(chatSvc.HandleHistory)))
	mux.Handle("GET /api/v1/chat/ws", wsService)
	mux.HandleFunc("GET /health", healthHandler(pg.Healthcheck(pool), redis.Healthcheck(rdb)))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_ = response.JSON(w, http.StatusOK, map[string]string{"service": cfg.AppName})
	})

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log.With(logger.Component("server"))))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(gctx, mux))

	log.InfoContext(ctx, "service started", slog.String("addr", cfg.Server.Addr))
	return g.Wait()
}

// healthHandler probes every dependency and reports 503 when any fails.
func healthHandler(probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		_ = response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
