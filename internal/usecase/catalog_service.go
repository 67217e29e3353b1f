package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/logging"
	"go.uber.org/zap"
)

// FallbackPolicy decides what happens when the catalog cannot resolve a title
type FallbackPolicy string

const (
	// PolicySkip drops the file from the output
	PolicySkip FallbackPolicy = "skip"
	// PolicyPlaceholder substitutes a placeholder identity
	PolicyPlaceholder FallbackPolicy = "placeholder"
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	Policy        FallbackPolicy
	MinSimilarity float64
}

// CatalogService layers the fallback policy and a match-confidence check
// over a single catalog source
type CatalogService struct {
	source        domain.CatalogSource
	policy        FallbackPolicy
	minSimilarity float64
	logger        *zap.Logger
}

// NewCatalogService creates a catalog service around source
func NewCatalogService(source domain.CatalogSource, config CatalogServiceConfig, logger *zap.Logger) *CatalogService {
	policy := config.Policy
	if policy == "" {
		policy = PolicyPlaceholder
	}

	s := &CatalogService{
		source:        source,
		policy:        policy,
		minSimilarity: config.MinSimilarity,
		logger:        logging.OrNop(logger).Named("catalog"),
	}
	s.logger.Info("catalog configured", zap.String("source", source.Name()), zap.String("fallback", string(policy)))
	return s
}

// Policy returns the active fallback policy
func (s *CatalogService) Policy() FallbackPolicy {
	return s.policy
}

// Resolve looks title up in the catalog.
// Under PolicySkip every failure is returned. Under PolicyPlaceholder
// failures become a placeholder match, except fatal ones (see IsFatal).
func (s *CatalogService) Resolve(ctx context.Context, title string) (*domain.CatalogMatch, error) {
	match, err := s.source.SearchTrack(ctx, title)
	if err == nil {
		s.checkSimilarity(title, match)
		return match, nil
	}

	if IsFatal(ctx, err) || s.policy == PolicySkip {
		return nil, err
	}

	if errors.Is(err, domain.ErrTrackNotFound) {
		s.logger.Info("no catalog match, using placeholder", zap.String("title", title))
	} else {
		s.logger.Warn("catalog lookup failed, using placeholder", zap.String("title", title), zap.Error(err))
	}
	return domain.NewPlaceholderMatch(title), nil
}

// checkSimilarity warns when the catalog answered with a title far from the guess.
// It never changes the outcome.
func (s *CatalogService) checkSimilarity(guess string, match *domain.CatalogMatch) {
	if s.minSimilarity <= 0 || match == nil || match.Title == "" {
		return
	}

	similarity := TitleSimilarity(guess, match.Title)
	if similarity < s.minSimilarity {
		s.logger.Warn("low confidence catalog match",
			zap.String("guess", guess),
			zap.String("resolved", match.Title),
			zap.String("artist", match.Artist),
			zap.Float64("similarity", similarity))
	}
}

// TitleSimilarity returns the Jaro-Winkler similarity of two titles,
// ignoring case. It is 0 when either title is empty.
func TitleSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	similarity, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(similarity)
}

// IsFatal reports whether err must abort the whole run rather than skip a file
func IsFatal(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return errors.Is(err, domain.ErrAuthFailed)
}
