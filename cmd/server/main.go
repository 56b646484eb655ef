// Package main is the entrypoint for the LogPulse dashboard server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kiranshivaraju/logpulse/internal/anomaly"
	"github.com/kiranshivaraju/logpulse/internal/api"
	"github.com/kiranshivaraju/logpulse/internal/api/handler"
	mw "github.com/kiranshivaraju/logpulse/internal/api/middleware"
	"github.com/kiranshivaraju/logpulse/internal/board"
	"github.com/kiranshivaraju/logpulse/internal/cache"
	"github.com/kiranshivaraju/logpulse/internal/config"
	"github.com/kiranshivaraju/logpulse/internal/dashboard"
	"github.com/kiranshivaraju/logpulse/internal/dataset"
	"github.com/kiranshivaraju/logpulse/internal/generator"
	"github.com/kiranshivaraju/logpulse/internal/store"
	"github.com/kiranshivaraju/logpulse/internal/stream"
)

const shutdownTimeout = 30 * time.Second

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(level); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(level *slog.LevelVar) error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level.Set(cfg.Server.LogLevel)
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"dataset", cfg.Dataset.Source,
		"anomaly_url", cfg.Anomaly.URL,
		"generator", cfg.Generator.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Optional Postgres archive
	var (
		pgStore store.Store
		dbPing  handler.Pinger
	)
	if cfg.Database.URL != "" {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		slog.Info("database connected")

		if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")

		ps := store.NewPostgresStore(pool)
		pgStore, dbPing = ps, ps
	}

	// 3. Optional Redis cache
	var (
		redisCache cache.Cache
		cachePing  handler.Pinger
	)
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer rc.Close()

		if err := rc.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")
		redisCache, cachePing = rc, rc
	}

	// 4. Dashboard pipeline
	loader, err := newLoader(cfg, pgStore)
	if err != nil {
		return err
	}
	analyzer := newAnalyzer(cfg.Anomaly, redisCache)

	gen, err := newGenerator(cfg)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}

	b := board.New()
	dash := dashboard.New(dashboardConfig(cfg), loader, analyzer, b, gen)
	hub := stream.NewHub(b, dash, cfg.Server.CORSOrigins)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := dash.Run(ctx); err != nil {
			slog.Error("dashboard stopped", "error", err)
		}
	}()

	// 5. Build router with dependencies
	deps := api.Dependencies{
		RateLimit:   mw.NewRateLimit(redisCache, cfg.Server.RateLimit),
		CORSOrigins: cfg.Server.CORSOrigins,

		HealthHandler:    handler.NewHealthHandler(dash, cachePing, dbPing, hub.ClientCount),
		DashboardHandler: handler.NewDashboardHandler(b),
		LogsHandler:      handler.NewLogsHandler(dash),
		GetFilterHandler: handler.NewGetFilterHandler(dash),
		SetFilterHandler: handler.NewSetFilterHandler(dash),
		StreamHandler:    hub.ServeWS,
	}

	router := api.NewRouter(deps)

	// 6. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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
	var serveErr error
	select {
	case err := <-errCh:
		serveErr = fmt.Errorf("server error: %w", err)
		stop()
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	wg.Wait()

	if serveErr != nil {
		return serveErr
	}
	slog.Info("server stopped gracefully")
	return nil
}

// newLoader picks the dataset source named by LOGPULSE_DATASET.
func newLoader(cfg *config.Config, st store.Store) (dataset.Loader, error) {
	switch {
	case cfg.Dataset.Source == config.DatasetPostgres:
		if st == nil {
			return nil, errors.New("postgres dataset requires a database connection")
		}
		return dataset.NewStoreLoader(st), nil
	case dataset.IsURL(cfg.Dataset.Source):
		return dataset.NewHTTPLoader(cfg.Dataset.Source, cfg.Dataset.Timeout), nil
	default:
		return dataset.NewFileLoader(cfg.Dataset.Source), nil
	}
}

// newAnalyzer builds the anomaly client, wrapped in a response cache when a
// cache TTL is configured. c may be nil.
func newAnalyzer(cfg config.AnomalyConfig, c cache.Cache) anomaly.Analyzer {
	var a anomaly.Analyzer = anomaly.NewHTTPClient(cfg.URL, cfg.Timeout)
	if c != nil && cfg.CacheTTL > 0 {
		a = anomaly.NewCachedAnalyzer(a, c, cfg.CacheTTL)
	}
	return a
}

// newGenerator returns nil when generation is disabled.
func newGenerator(cfg *config.Config) (*generator.Generator, error) {
	if !cfg.Generator.Enabled {
		return nil, nil
	}
	return generator.New(
		generator.WithMode(cfg.Generator.Mode),
		generator.WithLocation(cfg.Dashboard.Location),
	)
}

func dashboardConfig(cfg *config.Config) dashboard.Config {
	dc := dashboard.Config{
		Location:       cfg.Dashboard.Location,
		FeedLimit:      cfg.Dashboard.FeedLimit,
		NumericHours:   cfg.Dashboard.NumericHours,
		Window:         cfg.Anomaly.Window,
		AnomalyTimeout: cfg.Anomaly.Timeout,
		DiscardStale:   cfg.Anomaly.DiscardStale,
	}
	if cfg.Generator.Enabled {
		dc.GeneratorInterval = cfg.Generator.Interval
	}
	return dc
}
