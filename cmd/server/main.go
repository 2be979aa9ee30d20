package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dbctrade/ordercore/internal/config"
	"github.com/dbctrade/ordercore/internal/httpx"
	"github.com/dbctrade/ordercore/internal/identity"
	"github.com/dbctrade/ordercore/internal/inventory"
	"github.com/dbctrade/ordercore/internal/order"
	"github.com/dbctrade/ordercore/internal/pkg/cache"
	"github.com/dbctrade/ordercore/internal/pkg/telemetry"
	"github.com/dbctrade/ordercore/internal/reconcile"
	"github.com/dbctrade/ordercore/internal/storage/sqlite"
)

func main() {
	telemetry.InitLogger(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.Secret == "" {
		slog.Error("AUTH_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.Otel.Endpoint)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()

	lookup := inventory.NewCachedLookup(store, cache.NewRedisCache(redisClient, cfg.ServiceName), cfg.Redis.TTL)
	engine := reconcile.NewEngine(lookup)

	service := order.NewService(store.Drafts(), store.Orders(), store, engine, store.Audits())
	resolver := identity.NewJWTResolver([]byte(cfg.Auth.Secret))

	handler := httpx.NewHandler(service, store, store.Audits(), lookup, cfg.Timeouts.Collaborator)
	router := httpx.NewRouter(handler, resolver, cfg.Timeouts.Request)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		slog.Info("order core running", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}
