package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/songlens/enricher/config"
	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/infrastructure/cache"
	"github.com/songlens/enricher/internal/infrastructure/dataset"
	"github.com/songlens/enricher/internal/infrastructure/filesystem"
	"github.com/songlens/enricher/internal/infrastructure/httpclient"
	"github.com/songlens/enricher/internal/infrastructure/itunes"
	"github.com/songlens/enricher/internal/infrastructure/output"
	"github.com/songlens/enricher/internal/infrastructure/spotify"
	"github.com/songlens/enricher/internal/usecase"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// errRunLocked is returned when another run holds the output lock
var errRunLocked = errors.New("another songlens run is writing the same output")

type runDeps struct {
	fs     afero.Fs
	out    io.Writer
	logger *zap.Logger
}

// run holds <output>.lock for the whole enrichment, removes it on exit and
// prints the summary
func run(ctx context.Context, cfg *config.Config, deps runDeps) error {
	if err := deps.fs.MkdirAll(filepath.Dir(cfg.Output.Path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(cfg.Output.Path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", errRunLocked, lock.Path())
	}
	defer func() {
		// remove before unlocking
		deps.fs.Remove(lock.Path()) //nolint:errcheck
		lock.Unlock()               //nolint:errcheck
	}()

	lookups := cache.NewMemoryCache()
	service, err := buildService(ctx, cfg, deps.fs, lookups, deps.logger)
	if err != nil {
		return err
	}

	report, err := service.Run(ctx)
	if cfg.Features.Source == "api" {
		deps.logger.Debug("audio features cached", zap.Int("tracks", lookups.Size()))
	}
	if report != nil {
		fmt.Fprintln(deps.out, renderSummary(report, cfg.Output.Path, err == nil))
	}
	return err
}

// buildService wires the pipeline for cfg. Startup failures (an unusable
// dataset or rejected credentials) surface here before any file is read.
func buildService(ctx context.Context, cfg *config.Config, fs afero.Fs, lookups domain.CacheRepository, logger *zap.Logger) (*usecase.EnrichmentService, error) {
	client := httpclient.New(httpclient.Config{
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		MaxAttempts:       cfg.Retry.MaxAttempts,
		DefaultRetryAfter: cfg.Retry.DefaultRetryAfter,
		MaxDelay:          cfg.Retry.MaxDelay,
	}, logger)

	var features domain.FeatureResolver
	if cfg.Features.Source == "dataset" {
		index, err := dataset.Load(fs, cfg.Features.DatasetPath)
		if err != nil {
			return nil, err
		}
		logger.Info("dataset loaded",
			zap.String("path", cfg.Features.DatasetPath),
			zap.Int("rows", index.Len()),
			zap.Int("skipped", index.Skipped()))
		features = dataset.NewResolver(index, dataset.FallbackMode(cfg.Features.FallbackMode), cfg.Features.Seed, logger)
	}

	var webAPI *spotify.API
	if cfg.UsesSpotify() {
		auth := spotify.NewAuthenticator(client, cfg.Spotify.TokenURL, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, logger)
		if _, err := auth.Token(ctx); err != nil {
			return nil, err
		}
		webAPI = spotify.NewAPI(client, auth, cfg.Spotify.BaseURL, logger)
	}
	if cfg.Features.Source == "api" {
		features = spotify.NewFeatureClient(webAPI, lookups, cfg.Cache.TTL, logger)
	}

	var source domain.CatalogSource
	switch cfg.Catalog.Strategy {
	case "spotify":
		source = spotify.NewCatalogClient(webAPI, logger)
	default:
		source = itunes.NewClient(client, cfg.ITunes.BaseURL, logger)
	}

	return usecase.NewEnrichmentService(
		filesystem.NewScanner(fs, cfg.Input.Dir, cfg.Input.Extension),
		usecase.NewFilenameNormalizer(cfg.Catalog.NoiseTokens, logger),
		usecase.NewCatalogService(source, usecase.CatalogServiceConfig{
			Policy:        usecase.FallbackPolicy(cfg.Catalog.Fallback),
			MinSimilarity: cfg.Catalog.MinSimilarity,
		}, logger),
		features,
		output.NewJSONWriter(fs, cfg.Output.Path, logger),
		usecase.EnrichmentServiceConfig{CourtesyDelay: cfg.Pipeline.CourtesyDelay},
		logger,
	), nil
}
