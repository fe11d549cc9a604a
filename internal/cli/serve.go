package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpadapter "github.com/tillerhq/tiller/internal/adapters/http"
	"github.com/tillerhq/tiller/internal/config"
	"github.com/tillerhq/tiller/pkg/observability"
)

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	ConfigPath string
	Listen     string // Overrides the config file when non-empty
	Debug      bool
}

// RunServe starts the HTTP API, with a separate Prometheus scrape endpoint
// when configured, and shuts both down gracefully on SIGINT/SIGTERM.
func RunServe(opts ServeOptions) error {
	logger := createLogger(opts.Debug)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}

	sessions, err := setupPersistence(cfg.Store, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	engine, err := createEngine(ctx, cfg, logger, metrics.Hooks())
	if err != nil {
		return err
	}

	apiServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: httpadapter.NewHandler(httpadapter.NewServer(engine, sessions, httpadapter.WithLogger(logger))),
	}

	serverErrors := make(chan error, 2)

	go func() {
		logger.Info("API server listening", "address", cfg.Listen)
		serverErrors <- apiServer.ListenAndServe()
	}()

	var metricsServer *http.Server
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsListen, Handler: mux}
		go func() {
			logger.Info("metrics server listening", "address", cfg.MetricsListen)
			serverErrors <- metricsServer.ListenAndServe()
		}()
	}

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Info("shutdown signal received")
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop API server gracefully: %w", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("could not stop metrics server gracefully: %w", err)
			}
		}
		return nil
	}
}
