// Package itunes resolves titles through the public iTunes Search API.
// No credentials are needed.
package itunes

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/infrastructure/httpclient"
	"github.com/songlens/enricher/internal/logging"
	"go.uber.org/zap"
)

// Client handles communication with the iTunes Search API
type Client struct {
	http    *httpclient.Client
	baseURL string
	logger  *zap.Logger
}

// NewClient creates a new iTunes catalog source
func NewClient(http *httpclient.Client, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.OrNop(logger).Named("itunes"),
	}
}

// Name identifies the source in logs and reports
func (c *Client) Name() string {
	return "itunes"
}

// SearchTrack looks up the single best song for title
func (c *Client) SearchTrack(ctx context.Context, title string) (*domain.CatalogMatch, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrInvalidRequest
	}

	params := url.Values{}
	params.Set("term", title)
	params.Set("entity", "song")
	params.Set("limit", "1")

	result, err := c.http.Get(ctx, c.baseURL+"/search?"+params.Encode(), "")
	if err != nil {
		return nil, fmt.Errorf("itunes search %q: %w", title, err)
	}

	if result.Get(pathResultCount).Int() <= 0 || !result.Get(pathFirstResult).Exists() {
		c.logger.Info("no songs found", zap.String("query", title))
		return nil, domain.ErrTrackNotFound
	}

	match := MapResult(result.Get(pathFirstResult), title)
	c.logger.Debug("song found",
		zap.String("query", title), zap.String("title", match.Title), zap.String("artist", match.Artist))

	return match, nil
}
