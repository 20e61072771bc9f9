// Package main is the entrypoint for the PartScout server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/partscout/internal/ai"
	"github.com/kiranshivaraju/partscout/internal/ai/factory"
	"github.com/kiranshivaraju/partscout/internal/api"
	"github.com/kiranshivaraju/partscout/internal/api/handler"
	mw "github.com/kiranshivaraju/partscout/internal/api/middleware"
	"github.com/kiranshivaraju/partscout/internal/api/response"
	"github.com/kiranshivaraju/partscout/internal/cache"
	"github.com/kiranshivaraju/partscout/internal/catalog"
	"github.com/kiranshivaraju/partscout/internal/config"
	"github.com/kiranshivaraju/partscout/internal/session"
	"github.com/kiranshivaraju/partscout/internal/store"
	"github.com/kiranshivaraju/partscout/internal/web"
	"github.com/kiranshivaraju/partscout/pkg/prompt"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid values
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Load vehicle catalog
	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	slog.Info("catalog loaded", "brands", cat.Len(), "path", cfg.Catalog.Path)

	// 3. Submission audit store
	auditStore, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4. Rate-limit counters
	counters, err := openCache(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer counters.Close()

	// 5. Create AI provider
	aiProvider, err := factory.NewProvider(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name(), "model", aiProvider.Model())

	// 6. Diagnosis service and browser sessions
	svc := ai.NewDiagnosisService(cat, aiProvider, ai.Options{
		Timeout:       cfg.AI.InferenceTimeout,
		SchemaVersion: prompt.SchemaVersion(cfg.AI.SchemaVersion),
		Temperature:   cfg.AI.Temperature,
		MaxTokens:     cfg.AI.MaxTokens,
		Currency:      cfg.AI.Currency,
		Limiter:       rate.NewLimiter(rate.Limit(cfg.AI.RequestsPerSecond), cfg.AI.Burst),
		Recorder:      auditStore,
	})

	sessions, err := session.NewStore(cfg.Session.Capacity, cat)
	if err != nil {
		return fmt.Errorf("create session store: %w", err)
	}
	defer sessions.Close()

	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	ui := &handler.UI{
		Catalog:   cat,
		Sessions:  sessions,
		Diagnoser: svc,
		Renderer:  renderer,
		Currency:  svc.Currency(),
		Secure:    cfg.IsProduction(),
	}

	// 7. Build router with dependencies
	deps := api.Dependencies{
		AdminAuth:     mw.NewAdminAuth(cfg.Admin.APIKeyHash),
		DiagnoseLimit: mw.NewRateLimit(counters, "diagnose", cfg.RateLimit.PerMinute),
		UILimit:       mw.NewRateLimit(counters, "ui", cfg.RateLimit.PerMinute),
		CORSOrigin:    cfg.Server.CORSOrigin,
		ServiceName:   "partscout",

		HealthHandler: healthHandler(auditStore, counters),

		ListBrands:       handler.NewListBrandsHandler(cat),
		ListModels:       handler.NewListModelsHandler(cat),
		ListYears:        handler.NewListYearsHandler(cat),
		SelectionHandler: handler.NewSelectionHandler(cat),
		DiagnoseHandler:  handler.NewDiagnoseHandler(svc, svc.Currency()),

		ListSubmissions: handler.NewListSubmissionsHandler(auditStore),
		GetSubmission:   handler.NewGetSubmissionHandler(auditStore),

		UIPage:   ui.Page,
		UISelect: ui.Select,
		UISubmit: ui.Submit,
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Diagnoses block until the provider answers or times out.
		WriteTimeout: cfg.AI.InferenceTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(cfg.Path)
}

// openStore connects to Postgres and applies migrations when a database URL
// is configured. Without one, submissions are not audited.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, func(), error) {
	if cfg.URL == "" {
		slog.Info("DATABASE_URL not set, submission audit disabled")
		return store.NopStore{}, func() {}, nil
	}

	if err := store.RunMigrations(cfg.URL); err != nil {
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	pool, err := store.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("database connected")

	return store.NewPostgresStore(pool), pool.Close, nil
}

// openCache connects to Redis when configured and falls back to in-process
// counters otherwise.
func openCache(ctx context.Context, cfg config.RedisConfig) (cache.Cache, error) {
	if cfg.URL == "" {
		slog.Info("REDIS_URL not set, using in-memory rate-limit counters")
		return cache.NewMemoryCache(), nil
	}

	redisCache, err := cache.NewRedisCache(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("create redis cache: %w", err)
	}
	if err := redisCache.Ping(ctx); err != nil {
		redisCache.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")
	return redisCache, nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
