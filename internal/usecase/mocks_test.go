package usecase

import (
	"context"
	"time"

	"github.com/songlens/enricher/internal/domain"
)

// MockCatalogSource is a mock implementation of domain.CatalogSource
type MockCatalogSource struct {
	matches map[string]*domain.CatalogMatch
	errs    map[string]error
	queries []string
}

func NewMockCatalogSource() *MockCatalogSource {
	return &MockCatalogSource{
		matches: make(map[string]*domain.CatalogMatch),
		errs:    make(map[string]error),
	}
}

func (m *MockCatalogSource) Name() string { return "mock" }

func (m *MockCatalogSource) SearchTrack(ctx context.Context, title string) (*domain.CatalogMatch, error) {
	m.queries = append(m.queries, title)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.errs[title]; ok {
		return nil, err
	}
	if match, ok := m.matches[title]; ok {
		copied := *match
		return &copied, nil
	}
	return nil, domain.ErrTrackNotFound
}

// MockFeatureResolver is a mock implementation of domain.FeatureResolver
type MockFeatureResolver struct {
	results map[string]*domain.FeatureResult
	err     error
	titles  []string
}

func NewMockFeatureResolver() *MockFeatureResolver {
	return &MockFeatureResolver{results: make(map[string]*domain.FeatureResult)}
}

func (m *MockFeatureResolver) Name() string { return "mock" }

func (m *MockFeatureResolver) ResolveFeatures(ctx context.Context, match *domain.CatalogMatch) (*domain.FeatureResult, error) {
	m.titles = append(m.titles, match.Title)
	if m.err != nil {
		return nil, m.err
	}
	if result, ok := m.results[match.Title]; ok {
		return result, nil
	}
	return &domain.FeatureResult{Genre: "pop", Features: domain.DefaultFeatureVector(), Origin: domain.FeatureOriginFallback}, nil
}

// MockFileSource is a mock implementation of domain.FileSource
type MockFileSource struct {
	files []string
	err   error
}

func (m *MockFileSource) List(ctx context.Context) ([]string, error) {
	return m.files, m.err
}

// MockRecordWriter is a mock implementation of domain.RecordWriter
type MockRecordWriter struct {
	written [][]domain.SongRecord
	err     error
}

func (m *MockRecordWriter) WriteRecords(ctx context.Context, records []domain.SongRecord) error {
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, records)
	return nil
}

// recordingSleep captures courtesy delays instead of waiting
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}
