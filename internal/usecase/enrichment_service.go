package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/infrastructure/httpclient"
	"github.com/songlens/enricher/internal/logging"
	"go.uber.org/zap"
)

// FileState is the processing state of one input file
type FileState string

const (
	StatePending           FileState = "pending"
	StateNormalized        FileState = "normalized"
	StateResolved          FileState = "resolved"
	StateSkippedNotFound   FileState = "skipped_not_found"
	StateSkippedDuplicate  FileState = "skipped_duplicate"
	StateSkippedUnresolved FileState = "skipped_unresolved"
	StateEnriched          FileState = "enriched"
	StateAppended          FileState = "appended"
)

// FileOutcome records how one input file was handled
type FileOutcome struct {
	FileName      string
	Title         string
	State         FileState
	Placeholder   bool
	FeatureOrigin domain.FeatureOrigin
	DuplicateOf   string
	Err           error
}

// RunReport summarizes one enrichment run
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []FileOutcome
	Records    []domain.SongRecord

	Appended     int
	Placeholders int
	Duplicates   int
	NotFound     int
	Unresolved   int
}

// Scanned returns the number of input files considered
func (r *RunReport) Scanned() int {
	return len(r.Outcomes)
}

// Skipped returns the number of files that produced no record
func (r *RunReport) Skipped() int {
	return r.Duplicates + r.NotFound + r.Unresolved
}

// ErrorOutcomes returns the skipped outcomes that carry an upstream error
func (r *RunReport) ErrorOutcomes() []FileOutcome {
	var out []FileOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil && !errors.Is(o.Err, domain.ErrTrackNotFound) {
			out = append(out, o)
		}
	}
	return out
}

func (r *RunReport) record(outcome FileOutcome) {
	switch outcome.State {
	case StateAppended:
		r.Appended++
		if outcome.Placeholder {
			r.Placeholders++
		}
	case StateSkippedDuplicate:
		r.Duplicates++
	case StateSkippedNotFound:
		r.NotFound++
	case StateSkippedUnresolved:
		r.Unresolved++
	}
	r.Outcomes = append(r.Outcomes, outcome)
}

// EnrichmentServiceConfig holds configuration for the enrichment service
type EnrichmentServiceConfig struct {
	CourtesyDelay time.Duration
}

// EnrichmentService drives the sequential per-file pipeline:
// normalize -> dedup -> catalog -> features -> append, then one write
type EnrichmentService struct {
	files         domain.FileSource
	normalizer    *FilenameNormalizer
	catalog       *CatalogService
	features      domain.FeatureResolver
	writer        domain.RecordWriter
	courtesyDelay time.Duration
	logger        *zap.Logger

	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
	newRunID func() string
}

// NewEnrichmentService creates a new enrichment service with dependencies
func NewEnrichmentService(
	files domain.FileSource,
	normalizer *FilenameNormalizer,
	catalog *CatalogService,
	features domain.FeatureResolver,
	writer domain.RecordWriter,
	config EnrichmentServiceConfig,
	logger *zap.Logger,
) *EnrichmentService {
	return &EnrichmentService{
		files:         files,
		normalizer:    normalizer,
		catalog:       catalog,
		features:      features,
		writer:        writer,
		courtesyDelay: config.CourtesyDelay,
		logger:        logging.OrNop(logger).Named("enrich"),
		sleep:         httpclient.SleepContext,
		now:           time.Now,
		newRunID:      uuid.NewString,
	}
}

// Run enumerates the input files, enriches them and writes the catalog once.
// On a fatal error nothing is written and the partial report is returned
// with the error.
func (s *EnrichmentService) Run(ctx context.Context) (*RunReport, error) {
	files, err := s.files.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list input files: %w", err)
	}

	report, err := s.Enrich(ctx, files)
	if err != nil {
		return report, err
	}

	if err := s.writer.WriteRecords(ctx, report.Records); err != nil {
		return report, fmt.Errorf("write catalog: %w", err)
	}

	return report, nil
}

// Enrich processes files in the given order and collects the records
// without writing them
func (s *EnrichmentService) Enrich(ctx context.Context, files []string) (*RunReport, error) {
	report := &RunReport{
		RunID:     s.newRunID(),
		StartedAt: s.now(),
		Records:   []domain.SongRecord{},
	}
	logger := s.logger.With(zap.String("run_id", report.RunID))
	logger.Info("enrichment started", zap.Int("files", len(files)))

	seen := make(map[string]string, len(files))

	for _, fileName := range files {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = s.now()
			return report, err
		}

		outcome, record, err := s.processFile(ctx, logger, fileName, seen)
		if err != nil {
			report.FinishedAt = s.now()
			logger.Error("enrichment aborted", zap.String("file", fileName), zap.Error(err))
			return report, err
		}

		report.record(outcome)
		if record == nil {
			continue
		}
		report.Records = append(report.Records, *record)

		if err := s.sleep(ctx, s.courtesyDelay); err != nil {
			report.FinishedAt = s.now()
			return report, err
		}
	}

	report.FinishedAt = s.now()
	logger.Info("enrichment finished",
		zap.Int("appended", report.Appended),
		zap.Int("placeholders", report.Placeholders),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("not_found", report.NotFound),
		zap.Int("unresolved", report.Unresolved),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))

	return report, nil
}

// processFile runs one file through the pipeline. A nil record with a nil
// error means the file was skipped; a non-nil error is fatal.
func (s *EnrichmentService) processFile(
	ctx context.Context,
	logger *zap.Logger,
	fileName string,
	seen map[string]string,
) (FileOutcome, *domain.SongRecord, error) {
	outcome := FileOutcome{FileName: fileName, State: StatePending}

	title := s.normalizer.Normalize(fileName)
	outcome.Title = title
	outcome.State = StateNormalized

	if title == "" {
		logger.Warn("filename has no usable title, skipping", zap.String("file", fileName))
		outcome.State = StateSkippedUnresolved
		return outcome, nil, nil
	}

	key := domain.TitleKey(title)
	if earlier, dup := seen[key]; dup {
		logger.Info("duplicate title, skipping",
			zap.String("file", fileName), zap.String("title", title), zap.String("earlier_file", earlier))
		outcome.State = StateSkippedDuplicate
		outcome.DuplicateOf = earlier
		return outcome, nil, nil
	}
	seen[key] = fileName

	logger.Info("processing", zap.String("file", fileName), zap.String("title", title))

	match, err := s.catalog.Resolve(ctx, title)
	if err != nil {
		if IsFatal(ctx, err) {
			return outcome, nil, err
		}
		logger.Info("no catalog match, skipping", zap.String("title", title), zap.Error(err))
		outcome.State = StateSkippedNotFound
		outcome.Err = err
		return outcome, nil, nil
	}
	outcome.State = StateResolved
	outcome.Placeholder = match.Placeholder

	features, err := s.features.ResolveFeatures(ctx, match)
	if err != nil {
		if IsFatal(ctx, err) {
			return outcome, nil, err
		}
		logger.Warn("feature lookup failed, using defaults", zap.String("title", match.Title), zap.Error(err))
		features = &domain.FeatureResult{Features: domain.DefaultFeatureVector(), Origin: domain.FeatureOriginDefault}
	}
	outcome.FeatureOrigin = features.Origin
	outcome.State = StateEnriched

	record := domain.NewSongRecord(fileName, match, features)
	outcome.State = StateAppended

	logger.Debug("record appended",
		zap.String("file", fileName),
		zap.String("title", record.Title),
		zap.String("artist", record.Artist),
		zap.String("genre", record.Genre),
		zap.String("features", string(features.Origin)))

	return outcome, &record, nil
}
