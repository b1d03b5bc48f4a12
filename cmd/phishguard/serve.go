package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phishguard/risk-engine/internal/api"
	"github.com/phishguard/risk-engine/internal/config"
	"github.com/phishguard/risk-engine/internal/logging"
	"github.com/phishguard/risk-engine/internal/metrics"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background threat-intelligence updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.Logging)
	logger.Info("Starting PhishGuard risk engine...")

	m := metrics.New()

	store, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.WithField("driver", cfg.Storage.Driver).Info("Storage ready")

	engine, err := newEngine(ctx, cfg, store, logger, m)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	engine.Start(ctx)
	defer engine.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewServer(engine, m.Handler(), logger).Router(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Server.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	logger.Info("PhishGuard stopped")
	return nil
}
