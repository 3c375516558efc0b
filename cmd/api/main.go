// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

// Command api is the entry point for the Fabula HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
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
	"time"

	"github.com/jonasthedevonoertzen/fabula/internal/api"
	"github.com/jonasthedevonoertzen/fabula/internal/auth"
	"github.com/jonasthedevonoertzen/fabula/internal/label"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/config"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/constants"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/genai"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/migration"
	pgstore "github.com/jonasthedevonoertzen/fabula/internal/platform/postgres"
	redisstore "github.com/jonasthedevonoertzen/fabula/internal/platform/redis"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/sec"
	"github.com/jonasthedevonoertzen/fabula/internal/story"
	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Fabula] service_initializing")

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
	)

	// Root context outlives startup: the rate-limit janitor runs on it
	// until shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup gets a 30s deadline so misconfiguration is caught quickly
	// rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security & Generative Backend ──────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// The generative backend is optional: without an API key the fill and
	// narrative endpoints report 503 instead of blocking startup.
	var textGen unit.TextGenerator
	if cfg.GenAIAPIKey != "" {
		genaiClient, err := genai.NewClient(startupCtx, cfg.GenAIAPIKey, cfg.GenAIModel, log)
		must(log, err, "initialize genai client")
		textGen = genaiClient
		log.Info("genai_enabled", slog.String("model", genaiClient.Model()))
	} else {
		log.Warn("genai_disabled", slog.String("reason", "GENAI_API_KEY not set"))
	}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewPostgresUserRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	authService := auth.NewService(userRepository, resetTokenRepository, jwtSvc)
	authHandler := auth.NewHandler(authService)

	unitRepository := unit.NewPostgresRepository(pool)
	storyRepository := story.NewPostgresRepository(pool)
	labelRepository := label.NewPostgresRepository(pool)

	storyService := story.NewService(storyRepository, unitRepository, log)
	labelService := label.NewService(labelRepository, log)
	resolver := unit.NewResolver(unitRepository, storyService, log)
	unitService := unit.NewService(unitRepository, storyService, resolver, labelService, log)

	unitHandler := unit.NewHandler(unitService, textGen)
	storyHandler := story.NewHandler(storyService, unitHandler, textGen)
	labelHandler := label.NewHandler(labelService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Story:     storyHandler,
		Unit:      unitHandler,
		Label:     labelHandler,
	}

	server := api.NewServer(rootCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
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

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
