package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/logging"
	"go.uber.org/zap"
)

// CatalogClient resolves title guesses through the track search endpoint
type CatalogClient struct {
	api    *API
	logger *zap.Logger
}

// NewCatalogClient creates a Spotify catalog source
func NewCatalogClient(api *API, logger *zap.Logger) *CatalogClient {
	return &CatalogClient{
		api:    api,
		logger: logging.OrNop(logger).Named("spotify"),
	}
}

// Name identifies the source in logs and reports
func (c *CatalogClient) Name() string {
	return "spotify"
}

// SearchTrack requests the single best track for title.
// It returns domain.ErrTrackNotFound when the search has no items.
func (c *CatalogClient) SearchTrack(ctx context.Context, title string) (*domain.CatalogMatch, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrInvalidRequest
	}

	params := url.Values{}
	params.Set("q", title)
	params.Set("type", "track")
	params.Set("limit", "1")

	result, err := c.api.get(ctx, "/search", params)
	if err != nil {
		return nil, fmt.Errorf("spotify search %q: %w", title, err)
	}

	item := result.Get("tracks.items.0")
	if !item.Exists() {
		c.logger.Info("no tracks found", zap.String("query", title))
		return nil, domain.ErrTrackNotFound
	}

	match := MapTrack(item)
	c.logger.Debug("track found",
		zap.String("query", title), zap.String("id", match.TrackID), zap.String("title", match.Title))

	return match, nil
}

