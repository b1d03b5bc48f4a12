package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/phishguard/risk-engine/internal/adapters/sources"
	"github.com/phishguard/risk-engine/internal/adapters/storage"
	"github.com/phishguard/risk-engine/internal/application"
	"github.com/phishguard/risk-engine/internal/config"
	"github.com/phishguard/risk-engine/internal/domain/detection"
	"github.com/phishguard/risk-engine/internal/metrics"
	"github.com/phishguard/risk-engine/internal/ports"
)

// newStorage opens the store selected by cfg.Driver
func newStorage(ctx context.Context, cfg config.StorageConfig) (ports.Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := store.InitSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewFileStore(cfg.Path), nil
	}
}

func newReputationSource(cfg config.ReputationConfig) ports.ReputationSource {
	if cfg.Endpoint == "" {
		return sources.NewStaticReputationSource()
	}
	return sources.NewHTTPReputationSource(cfg.Endpoint, cfg.QPS, cfg.Burst)
}

func newIntelligenceSource(cfg config.IntelligenceConfig, logger *logrus.Logger) ports.IntelligenceSource {
	if len(cfg.Feeds) == 0 {
		return sources.NewStaticIntelligenceSource(sources.DefaultIntelligenceUpdate())
	}
	return sources.NewFeedIntelligenceSource(cfg.Feeds, logger)
}

// newEngine wires the adapters into an engine (dependency injection via
// constructor). The caller owns store and must close it after the engine stops.
func newEngine(ctx context.Context, cfg *config.Config, store ports.Storage, logger *logrus.Logger, m *metrics.Metrics) (*application.Engine, error) {
	return application.NewEngine(ctx, application.Options{
		Registry:      detection.NewRegistry(),
		Reputation:    newReputationSource(cfg.Reputation),
		Intelligence:  newIntelligenceSource(cfg.Intelligence, logger),
		Age:           sources.NewStaticAgeSource(),
		Storage:       store,
		Timings:       cfg.Engine.Timings(),
		SeedBlacklist: cfg.Lists.Blacklist,
		SeedWhitelist: cfg.Lists.Whitelist,
		Logger:        logger,
		Metrics:       m,
	})
}
