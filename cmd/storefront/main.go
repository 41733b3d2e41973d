// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command storefront is the entry point for the bookstore storefront client.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the persisted preference store (YAML file or Redis).
//  4. Build the backend REST client.
//  5. Create the visitor workspace registry.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/bookstore/internal/api"
	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/catalog"
	"github.com/taibuivan/bookstore/internal/platform/config"
	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/prefs"
	redisstore "github.com/taibuivan/bookstore/internal/platform/redis"
	"github.com/taibuivan/bookstore/internal/storefront"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("backend", cfg.BackendURL),
		slog.String("prefs_backend", cfg.PrefsBackend),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Persisted Store ────────────────────────────────────────────────
	var (
		store      prefs.Store
		checkCache func(context.Context) error
	)

	switch cfg.PrefsBackend {
	case config.PrefsBackendRedis:
		rdb, err := redisstore.Connect(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		store = prefs.NewRedisStore(rdb, constants.RedisPrefixPrefs, cfg.PrefsTTL)
		checkCache = redisstore.Checker(rdb)
	default:
		fileStore, err := prefs.OpenFile(cfg.PrefsPath, log)
		must(log, err, "open preference file")
		store = fileStore
	}

	// ── 4. Backend Client ─────────────────────────────────────────────────
	client, err := backend.New(backend.Options{
		BaseURL:        cfg.BackendURL,
		Timeout:        cfg.BackendTimeout,
		RateLimitRPS:   cfg.BackendRateLimitRPS,
		RateLimitBurst: cfg.BackendRateLimitBurst,
	}, log)
	must(log, err, "create backend client")

	// The backend may still be starting; serve anyway and let /ready report it.
	if err := client.Ping(startupCtx); err != nil {
		log.Warn("backend_unreachable_at_startup", slog.Any("error", err))
	}

	// ── 5. Visitor Workspaces ─────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	registry := storefront.NewRegistry(rootCtx, storefront.Dependencies{
		Backend: client,
		Store:   store,
		Catalog: catalog.Options{Debounce: cfg.SearchDebounce},
		Logger:  log,
	}, cfg.WorkspaceIdleTTL)
	defer registry.Close()

	visitors := api.NewVisitors([]byte(cfg.SessionSecret), []byte(cfg.SessionBlockKey), registry, cfg.IsProduction())

	// ── 6. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckBackend: client.Ping,
		CheckCache:   checkCache,
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, visitors, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly", slog.Int("workspaces", registry.Len()))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
