// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/clubportal/internal/cache"
	"github.com/olegiv/clubportal/internal/config"
	"github.com/olegiv/clubportal/internal/content"
	"github.com/olegiv/clubportal/internal/handler"
	"github.com/olegiv/clubportal/internal/handler/api"
	"github.com/olegiv/clubportal/internal/logging"
	"github.com/olegiv/clubportal/internal/middleware"
	"github.com/olegiv/clubportal/internal/scheduler"
	"github.com/olegiv/clubportal/internal/session"
	"github.com/olegiv/clubportal/internal/store"
	"github.com/olegiv/clubportal/internal/store/redisdoc"
	"github.com/olegiv/clubportal/internal/version"
)

// backend is a document store that can report its health.
type backend interface {
	content.Backend
	handler.Pinger
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "clubportal - tiered member content service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLUB_SESSION_SECRET     Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLUB_DB_PATH            SQLite database path (default: ./data/clubportal.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLUB_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLUB_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLUB_STORE              Document store: sqlite|redis (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLUB_REDIS_URL          Redis URL when CLUB_STORE=redis\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLUB_CACHE_USER_TTL     Member cache lifetime (default: 5m)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLUB_CACHE_ADMIN_TTL    Admin cache lifetime (default: 2m)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLUB_API_RATE_LIMIT     Member API requests per minute per IP (default: 120, 0 disables)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("clubportal %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(newLogHandler(os.Stdout, cfg))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	ctx := context.Background()
	if err := store.Migrate(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and ERROR records also go to the event log from here on
	logger = slog.New(logging.NewEventLogHandler(newLogHandler(os.Stdout, cfg), db))
	slog.SetDefault(logger)

	clk := clock.New()
	docs, closeDocs, err := openBackend(ctx, cfg, db, clk)
	if err != nil {
		return err
	}
	defer closeDocs()

	if cfg.DoSeed {
		if err := store.Seed(ctx, docs, clk.Now(), logger); err != nil {
			return fmt.Errorf("seeding content: %w", err)
		}
	}

	caches := cache.NewService(cache.Config{
		UserTTL:  cfg.CacheUserTTL,
		AdminTTL: cfg.CacheAdminTTL,
		Clock:    clk,
	}, logger)
	portal := content.NewPortal(docs, caches, logger)
	sessions := session.New(db, cfg.IsDevelopment())
	events := store.NewEvents(db)

	jobs := scheduler.New(clk, logger)
	if err := jobs.Add(scheduler.JobPublishArticles, "Publish articles whose publish time has passed",
		"* * * * *", scheduler.PublishDue(portal.Articles, clk, logger)); err != nil {
		return fmt.Errorf("registering job: %w", err)
	}
	if err := jobs.Add(scheduler.JobPruneEvents, "Delete old event log entries",
		"@daily", scheduler.PruneEvents(events, scheduler.DefaultEventRetention, clk, logger)); err != nil {
		return fmt.Errorf("registering job: %w", err)
	}
	if cfg.SchedulerEnabled {
		jobs.Start()
		defer jobs.Stop()
	}

	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"database":  handler.PingFunc(db.PingContext),
		"documents": docs,
	}, clk)
	cacheHandler := handler.NewCacheHandler(caches, logger)
	schedulerHandler := handler.NewSchedulerHandler(jobs, logger)
	eventsHandler := handler.NewEventsHandler(events, logger)
	contentAPI := api.New(portal, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Secure(cfg.IsDevelopment()))
	r.Use(sessions.LoadAndSave)
	r.Use(middleware.LoadViewer(sessions))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.APIRateLimit))
			contentAPI.MemberRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logger))
			contentAPI.AdminRoutes(r)

			r.Get("/cache", cacheHandler.Stats)
			r.Post("/cache/clear", cacheHandler.Clear)
			r.Post("/cache/{kind}/clear", cacheHandler.ClearKind)
			r.Get("/scheduler", schedulerHandler.List)
			r.Post("/scheduler/{name}/run", schedulerHandler.Trigger)
			r.Get("/events", eventsHandler.List)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env,
			"store", cfg.Store, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newLogHandler returns a text or JSON handler per cfg.LogFormat.
func newLogHandler(w io.Writer, cfg *config.Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// openBackend returns the configured document store and a func that releases it.
func openBackend(ctx context.Context, cfg *config.Config, db *sql.DB, clk clock.Clock) (backend, func(), error) {
	if !cfg.UseRedis() {
		slog.Info("documents stored in sqlite")
		return store.NewDocuments(db, clk), func() {}, nil
	}

	opts := redisdoc.DefaultOptions()
	opts.URL = cfg.RedisURL
	opts.Prefix = cfg.RedisPrefix
	opts.Clock = clk

	docs, err := redisdoc.Open(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("opening redis document store: %w", err)
	}
	slog.Info("documents stored in redis", "prefix", cfg.RedisPrefix)
	return docs, func() {
		if err := docs.Close(); err != nil {
			slog.Error("error closing redis connection", "error", err)
		}
	}, nil
}
