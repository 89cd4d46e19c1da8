package ingestion

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/dahlia/internal/repositories/ingestion"
	"github.com/Ramsey-B/dahlia/pkg/cache"
	"github.com/Ramsey-B/dahlia/pkg/csvsource"
	"github.com/Ramsey-B/dahlia/pkg/events"
	"github.com/Ramsey-B/dahlia/pkg/metrics"
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/normalize"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// InvalidOrderDataMessage is returned for any CSV that cannot be normalized.
// The offending row is only logged.
const InvalidOrderDataMessage = "Invalid order data. Check the CSV contents and try again."

// TableLoader fetches and parses one CSV reference.
type TableLoader interface {
	Load(ctx context.Context, ref string) (*models.Table, error)
}

type Service struct {
	logger    ectologger.Logger
	source    TableLoader
	repo      ingestion.IngestionRepository
	cache     cache.ReportCache
	publisher events.Publisher
}

func NewService(logger ectologger.Logger, source TableLoader, repo ingestion.IngestionRepository, reportCache cache.ReportCache, publisher events.Publisher) *Service {
	return &Service{
		logger:    logger,
		source:    source,
		repo:      repo,
		cache:     reportCache,
		publisher: publisher,
	}
}

// Ingest loads every reference, normalizes the combined records and writes
// them atomically. Any failing reference fails the whole request.
func (s *Service) Ingest(ctx context.Context, refs []string) (*models.IngestionResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ingestion.Ingest")
	defer span.End()

	span.SetAttributes(attribute.Int("ingestion.sources", len(refs)))

	if len(refs) == 0 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "at least one CSV reference is required")
	}

	start := time.Now()
	defer func() {
		metrics.IngestionDuration.Observe(time.Since(start).Seconds())
	}()

	tables := make([]*models.Table, 0, len(refs))
	for _, ref := range refs {
		table, err := s.source.Load(ctx, ref)
		if err != nil {
			return nil, s.fail(ctx, err)
		}
		tables = append(tables, table)
	}

	merged := normalize.Merge(tables)
	batch, err := normalize.Derive(merged.Records)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"sources":    len(refs),
		"records":    batch.RecordCount,
		"candidates": batch.Counts(),
	}).Info("Normalized order data")

	saved, err := s.repo.Save(ctx, batch)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	metrics.IngestionBatchesTotal.WithLabelValues("success").Inc()
	metrics.IngestionRecordsTotal.Add(float64(batch.RecordCount))

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to invalidate report cache")
	}

	evt := &events.IngestedEvent{
		Type:       events.TypeOrdersIngested,
		Records:    batch.RecordCount,
		Sources:    refs,
		Candidates: batch.Counts(),
	}
	if saved != nil {
		evt.Inserted = saved.Inserted
	}
	if err := s.publisher.PublishIngested(ctx, evt); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to publish ingestion event")
	}

	return &models.IngestionResult{Records: batch.RecordCount, Sources: refs}, nil
}

// fail classifies err, records it and returns the error shown to the caller.
func (s *Service) fail(ctx context.Context, err error) error {
	var (
		fetchErr *csvsource.FetchError
		csvErr   *csvsource.ParseError
		rowErr   *normalize.ParseError
	)

	kind := "persist"
	var out error
	switch {
	case errors.As(err, &fetchErr):
		kind = "fetch"
		out = httperror.NewHTTPError(http.StatusBadRequest, fetchErr.Message())
	case errors.As(err, &csvErr), errors.As(err, &rowErr):
		kind = "parse"
		out = httperror.NewHTTPError(http.StatusBadRequest, InvalidOrderDataMessage)
	case httperror.IsHTTPError(err):
		out = err
	default:
		out = httperror.NewHTTPError(http.StatusInternalServerError, "failed to ingest order data")
	}

	metrics.IngestionBatchesTotal.WithLabelValues("failed").Inc()
	metrics.IngestionFailuresTotal.WithLabelValues(kind).Inc()
	s.logger.WithContext(ctx).WithError(err).WithField("kind", kind).Error("Ingestion failed")

	return out
}
