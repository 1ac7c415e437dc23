// Package bootstrap assembles the flow service and its dependencies from
// configuration for the serve and mcp commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/config"
	"github.com/papercomputeco/wanderwise/pkg/flow"
	"github.com/papercomputeco/wanderwise/pkg/itinerary"
	"github.com/papercomputeco/wanderwise/pkg/llm"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
	"github.com/papercomputeco/wanderwise/pkg/prompt"
)

// Version is stamped at build time with -ldflags "-X .../bootstrap.Version=...".
var Version = "dev"

// Runtime holds the components a running wanderwise process shares.
type Runtime struct {
	Config  config.Config
	Logger  *zap.Logger
	Prompts *prompt.Catalog
	Storer  merkle.Storer
	Service *flow.Service
}

// New builds a Runtime. Close releases the journal.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Runtime, error) {
	prompts, err := prompt.NewCatalog()
	if err != nil {
		return nil, err
	}
	if cfg.PromptsPath != "" {
		if err := prompts.LoadFile(cfg.PromptsPath); err != nil {
			return nil, err
		}
	}

	generator, err := llm.NewGenerator(ctx, llm.ProviderConfig{
		Provider:  cfg.Provider,
		Model:     cfg.ModelName(),
		OllamaURL: cfg.OllamaURL,
		APIKey:    cfg.GeminiAPIKey,
		Timeout:   cfg.UpstreamTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s generator: %w", cfg.Provider, err)
	}

	storer, err := OpenStorer(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}

	var backend flow.Backend
	if cfg.ItinerarySource == flow.SourceBackend {
		backend = itinerary.NewClient(itinerary.ClientConfig{
			BaseURL: cfg.BackendURL,
			Timeout: cfg.UpstreamTimeout,
		}, logger)
	}

	service := flow.New(generator, prompts, backend, storer, flow.Config{
		ItinerarySource: cfg.ItinerarySource,
		DefaultSource:   cfg.DefaultSource,
	}, logger)

	logger.Info("wanderwise ready",
		zap.String("version", Version),
		zap.String("provider", cfg.Provider),
		zap.String("model", generator.Model()),
		zap.String("itinerary_source", cfg.ItinerarySource),
	)

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Prompts: prompts,
		Storer:  storer,
		Service: service,
	}, nil
}

// Close releases the journal.
func (r *Runtime) Close() error {
	return r.Storer.Close()
}

// OpenStorer opens the SQLite journal at path, or an in-memory journal when
// path is empty.
func OpenStorer(path string, logger *zap.Logger) (merkle.Storer, error) {
	if path == "" {
		logger.Info("using in-memory journal")
		return merkle.NewMemoryStorer(), nil
	}

	storer, err := merkle.NewSQLiteStorer(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
	}
	logger.Info("using SQLite journal", zap.String("path", path))
	return storer, nil
}

// ResolveDBPath returns flagValue, or the configured journal path when the
// flag is empty. Commands that operate on a journal file require one.
func ResolveDBPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("could not load config: %w", err)
	}
	if cfg.DBPath == "" {
		return "", errors.New("no journal database: pass --db or set WANDERWISE_DB")
	}
	return cfg.DBPath, nil
}
