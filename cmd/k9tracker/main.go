package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/k9tracker/k9tracker/internal/analytics"
	"github.com/k9tracker/k9tracker/internal/api"
	"github.com/k9tracker/k9tracker/internal/config"
	"github.com/k9tracker/k9tracker/internal/events"
	"github.com/k9tracker/k9tracker/internal/metrics"
	"github.com/k9tracker/k9tracker/internal/store"
	"github.com/k9tracker/k9tracker/internal/versus"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Results store (read-only)
	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open results store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("results store opened", "driver", cfg.Database.Driver)

	m := metrics.New()

	// Events (optional)
	var eventsClient events.Client
	if cfg.Events.URL != "" {
		nc, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = nc
			defer nc.Close()
			logger.Info("connected to nats", "stream", events.StreamName)
		}
	}
	reporter := events.NewReporter(eventsClient, m, logger)

	engine := versus.NewEngine(db, reporter, versus.Settings{
		ParallelThreshold: cfg.Versus.ParallelThreshold,
		Workers:           cfg.Versus.Workers,
	}, logger)

	svc := analytics.NewService(db, analytics.Settings{
		RecentEvents:  cfg.Analytics.RecentEvents,
		TopBreeds:     cfg.Analytics.TopBreeds,
		SearchLimit:   cfg.Analytics.SearchLimit,
		TopLimit:      cfg.Analytics.TopLimit,
		RegionMinRuns: cfg.Analytics.RegionMinRuns,
		JudgeMinRuns:  cfg.Analytics.JudgeMinRuns,
	}, logger)

	// API server
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(engine, svc, m, cfg.Server.RateLimitPerMinute, logger),
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(prometheus.DefaultGatherer),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	if cfg.Driver == config.DriverPostgres {
		s, err := store.NewPostgresStore(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := store.NewSQLiteStore(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
