package analytics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/dahlia/pkg/database"
	"github.com/Ramsey-B/dahlia/pkg/filters"
	"github.com/Ramsey-B/dahlia/pkg/metrics"
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
)

const projectionView = "mv_order_details"

// Measure is the projection column summed by a monthly report.
type Measure string

const (
	MeasureUnits   Measure = "quantity"
	MeasureRevenue Measure = "selling_price"
)

// AnalyticsRepository reads aggregates from the order projection
type AnalyticsRepository interface {
	DailyTotals(ctx context.Context, measure Measure, f filters.Filters) ([]models.DailyTotal, error)
	SummaryTotals(ctx context.Context, f filters.Filters) (*models.SummaryTotals, error)
}

// Repository implements AnalyticsRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new analytics repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// DailyTotals sums measure per sale date for rows matching f, oldest first.
func (r *Repository) DailyTotals(ctx context.Context, measure Measure, f filters.Filters) ([]models.DailyTotal, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsRepository.DailyTotals")
	defer span.End()

	if measure != MeasureUnits && measure != MeasureRevenue {
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "unsupported measure %s", measure)
	}

	sb := database.NewSelectBuilder()
	sb.Select(filters.ColumnDate, fmt.Sprintf("COALESCE(SUM(%s), 0) AS total", measure))
	sb.From(projectionView)
	f.Apply(sb)
	sb.GroupBy(filters.ColumnDate)
	sb.OrderBy(filters.ColumnDate).Asc()

	query, args := sb.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"measure": measure,
		"filters": f.Key(),
	}).Debug("Reading daily totals")

	start := time.Now()
	var rows []models.DailyTotal
	err := r.db.SelectContext(ctx, &rows, query, args...)
	metrics.ReportQueryDuration.WithLabelValues(string(measure)).Observe(time.Since(start).Seconds())
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read daily totals")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read daily totals")
	}

	return rows, nil
}

// SummaryTotals counts order lines, revenue, units and cancelled lines matching f.
func (r *Repository) SummaryTotals(ctx context.Context, f filters.Filters) (*models.SummaryTotals, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsRepository.SummaryTotals")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"COUNT(*) AS total_orders",
		"COALESCE(SUM(selling_price), 0) AS total_revenue",
		"COALESCE(SUM(quantity), 0) AS total_products_sold",
		fmt.Sprintf("COUNT(*) FILTER (WHERE delivery_status = %s) AS canceled_orders", sb.Var(models.CancelledStatus)),
	)
	sb.From(projectionView)
	f.Apply(sb)

	query, args := sb.Build()

	r.logger.WithContext(ctx).WithField("filters", f.Key()).Debug("Reading summary totals")

	start := time.Now()
	var totals models.SummaryTotals
	err := r.db.GetContext(ctx, &totals, query, args...)
	metrics.ReportQueryDuration.WithLabelValues("summary").Observe(time.Since(start).Seconds())
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read summary totals")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read summary totals")
	}

	return &totals, nil
}
