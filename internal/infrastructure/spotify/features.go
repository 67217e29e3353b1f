package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/logging"
	"go.uber.org/zap"
)

// FeatureClient resolves feature vectors through the audio-features endpoint
type FeatureClient struct {
	api      *API
	cache    domain.CacheRepository
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewFeatureClient creates an API-backed feature resolver. cache may be nil.
// Distinct titles often resolve to one track, so vectors are cached by track ID.
func NewFeatureClient(api *API, cache domain.CacheRepository, cacheTTL time.Duration, logger *zap.Logger) *FeatureClient {
	return &FeatureClient{
		api:      api,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logging.OrNop(logger).Named("spotify"),
	}
}

// Name identifies the resolver in logs and reports
func (f *FeatureClient) Name() string {
	return "spotify-audio-features"
}

// ResolveFeatures fetches the audio features of match.TrackID. Any upstream
// failure yields the default vector without a genre. Only context
// cancellation and authentication failures are returned as errors.
func (f *FeatureClient) ResolveFeatures(ctx context.Context, match *domain.CatalogMatch) (*domain.FeatureResult, error) {
	if match == nil || match.TrackID == "" {
		return defaultFeatures(), nil
	}

	cacheKey := "features:spotify:" + match.TrackID
	if vector, ok := f.fromCache(ctx, cacheKey); ok {
		return &domain.FeatureResult{Features: vector, Origin: domain.FeatureOriginAPI}, nil
	}

	result, err := f.api.get(ctx, "/audio-features/"+url.PathEscape(match.TrackID), nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrAuthFailed) {
			return nil, err
		}
		f.logger.Warn("audio features unavailable, using defaults",
			zap.String("id", match.TrackID), zap.Error(err))
		return defaultFeatures(), nil
	}

	if !result.IsObject() {
		f.logger.Warn("audio features empty, using defaults", zap.String("id", match.TrackID))
		return defaultFeatures(), nil
	}

	vector := MapFeatures(result)

	if f.cache != nil {
		if err := f.cache.Set(ctx, cacheKey, vector, f.cacheTTL); err != nil {
			f.logger.Debug("cache set failed", zap.Error(err))
		}
	}

	return &domain.FeatureResult{Features: vector, Origin: domain.FeatureOriginAPI}, nil
}

func (f *FeatureClient) fromCache(ctx context.Context, key string) (domain.FeatureVector, bool) {
	if f.cache == nil {
		return domain.FeatureVector{}, false
	}
	raw, err := f.cache.Get(ctx, key)
	if err != nil {
		return domain.FeatureVector{}, false
	}
	var vector domain.FeatureVector
	if err := json.Unmarshal(raw, &vector); err != nil {
		return domain.FeatureVector{}, false
	}
	return vector, true
}

func defaultFeatures() *domain.FeatureResult {
	return &domain.FeatureResult{
		Features: domain.DefaultFeatureVector(),
		Origin:   domain.FeatureOriginDefault,
	}
}
