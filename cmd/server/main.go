package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/seoforge/query-fanout/internal/aiclient"
	"github.com/seoforge/query-fanout/internal/api"
	"github.com/seoforge/query-fanout/internal/config"
	"github.com/seoforge/query-fanout/internal/engine"
	"github.com/seoforge/query-fanout/internal/observability"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	preset := flag.String("preset", "", "Named tuning preset (conservative, balanced, aggressive, ecommerce)")
	flag.Parse()

	if err := run(*configPath, *preset); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, preset string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if preset != "" {
		if err := config.ApplyPreset(cfg, preset); err != nil {
			return fmt.Errorf("applying preset: %w", err)
		}
	}

	// Initialize logger
	logger, err := observability.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting query fan-out service",
		zap.String("service", cfg.Observability.ServiceName),
	)

	// Initialize tracing
	tracerShutdown, err := observability.InitTracer(cfg.Observability.ServiceName)
	if err != nil {
		logger.Warn("tracing initialization failed, continuing without tracing", zap.Error(err))
	}

	// Initialize the local prediction engine
	eng := engine.New(cfg.Engine, logger)
	logger.Info("prediction engine initialized",
		zap.String("language", cfg.Engine.Language),
	)

	// Initialize the AI prediction client
	aiClient, err := aiclient.New(cfg.AI, logger)
	if err != nil {
		return fmt.Errorf("initializing ai client: %w", err)
	}
	logger.Info("ai client initialized",
		zap.String("model", cfg.AI.Model),
		zap.Bool("fallback_enabled", cfg.AI.FallbackEnabled),
	)

	// Initialize HTTP server
	handler := api.NewHandler(eng, aiClient, cfg.Engine.MinProbability, logger)

	healthHandler := api.NewHealthHandler(logger)
	healthHandler.Register("ai", aiClient)

	router := api.NewRouter(handler, healthHandler, cfg.Server, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	// Graceful shutdown
	logger.Info("starting graceful shutdown", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	// Shutdown tracing
	if tracerShutdown != nil {
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", zap.Error(err))
		}
	}

	logger.Info("shutdown complete")
	return nil
}
