package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/phishguard/risk-engine/internal/config"
	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/logging"
	"github.com/phishguard/risk-engine/internal/metrics"
)

func newAnalyzeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze URL...",
		Short: "Score one or more URLs and print the verdicts as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := logging.New(cfg.Logging)
			logger.SetOutput(cmd.ErrOrStderr())

			store, err := newStorage(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			engine, err := newEngine(ctx, cfg, store, logger, metrics.New())
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}
			// Persist the statistics of this run
			defer flushState(ctx, engine, logger)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			var failed bool
			for _, rawURL := range args {
				result, err := engine.Analyze(ctx, rawURL)
				if errors.Is(err, domain.ErrInvalidURL) {
					failed = true
					if err := enc.Encode(domain.ErrorResult{Status: "error", Message: "Invalid URL"}); err != nil {
						return err
					}
					continue
				}
				if err != nil {
					return err
				}
				if err := enc.Encode(result); err != nil {
					return err
				}
			}

			if failed {
				return errors.New("one or more URLs could not be analyzed")
			}
			return nil
		},
	}
}

type flusher interface {
	Flush(ctx context.Context) error
}

// flushState persists the engine state on exit. A failure does not change the
// command's verdicts, so it is logged rather than returned.
func flushState(ctx context.Context, f flusher, logger logrus.FieldLogger) {
	if err := f.Flush(ctx); err != nil {
		logger.WithError(err).Warn("Failed to persist state")
	}
}
