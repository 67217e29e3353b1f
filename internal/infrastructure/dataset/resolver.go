package dataset

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"sync"

	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/logging"
	"go.uber.org/zap"
)

// FallbackMode picks the substitute row for titles missing from the dataset
type FallbackMode string

const (
	// FallbackRandom draws a uniformly random row
	FallbackRandom FallbackMode = "random"
	// FallbackSeeded hashes the title so a title always gets the same row
	FallbackSeeded FallbackMode = "seeded"
)

// Resolver answers feature lookups from an Index it owns
type Resolver struct {
	index  *Index
	mode   FallbackMode
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver creates a dataset-backed feature resolver. A zero seed draws
// the random stream from the runtime source.
func NewResolver(index *Index, mode FallbackMode, seed uint64, logger *zap.Logger) *Resolver {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Resolver{
		index:  index,
		mode:   mode,
		logger: logging.OrNop(logger).Named("dataset"),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Name identifies the resolver in logs and reports
func (r *Resolver) Name() string {
	return "dataset"
}

// ResolveFeatures returns the dataset row matching match.Title, or a
// substitute row when there is none. It does not fail.
func (r *Resolver) ResolveFeatures(ctx context.Context, match *domain.CatalogMatch) (*domain.FeatureResult, error) {
	title := ""
	if match != nil {
		title = match.Title
	}

	if row, ok := r.index.Lookup(title); ok {
		return &domain.FeatureResult{Genre: row.Genre, Features: row.Features, Origin: domain.FeatureOriginExact}, nil
	}

	row := r.index.Row(r.fallbackRow(title))
	r.logger.Debug("no dataset match, using substitute row",
		zap.String("title", title), zap.String("substitute", row.Title), zap.String("mode", string(r.mode)))

	return &domain.FeatureResult{Genre: row.Genre, Features: row.Features, Origin: domain.FeatureOriginFallback}, nil
}

func (r *Resolver) fallbackRow(title string) int {
	n := r.index.Len()
	if r.mode == FallbackSeeded {
		h := fnv.New64a()
		h.Write([]byte(domain.TitleKey(title)))
		return int(h.Sum64() % uint64(n))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
