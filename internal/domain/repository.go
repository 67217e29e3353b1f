package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for run-scoped lookup caching.
// Get returns ErrCacheMiss for absent or expired keys.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// TokenProvider supplies bearer credentials for authenticated APIs
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// CatalogSource resolves a title guess to a canonical track identity.
// Implementations return ErrTrackNotFound when the search has no results.
type CatalogSource interface {
	Name() string
	SearchTrack(ctx context.Context, title string) (*CatalogMatch, error)
}

// FeatureResolver produces a feature vector (and optionally a genre) for a resolved track
type FeatureResolver interface {
	Name() string
	ResolveFeatures(ctx context.Context, match *CatalogMatch) (*FeatureResult, error)
}

// FileSource enumerates candidate input file names
type FileSource interface {
	List(ctx context.Context) ([]string, error)
}

// RecordWriter persists the finished catalog in one write
type RecordWriter interface {
	WriteRecords(ctx context.Context, records []SongRecord) error
}
