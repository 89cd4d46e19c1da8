package analytics

import (
	"context"
	"math"
	"net/http"
	"sort"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/dahlia/internal/repositories/analytics"
	"github.com/Ramsey-B/dahlia/pkg/cache"
	"github.com/Ramsey-B/dahlia/pkg/filters"
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
)

const (
	ReportMonthlySalesVolume = "monthly_sales_volume"
	ReportMonthlyRevenue     = "monthly_revenue"
	ReportOrdersSummary      = "orders_summary"
)

type Service struct {
	logger ectologger.Logger
	repo   analytics.AnalyticsRepository
	cache  cache.ReportCache
}

func NewService(logger ectologger.Logger, repo analytics.AnalyticsRepository, reportCache cache.ReportCache) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
		cache:  reportCache,
	}
}

// MonthlySalesVolume sums units sold per month.
func (s *Service) MonthlySalesVolume(ctx context.Context, f filters.Filters) (*models.Series, error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.MonthlySalesVolume")
	defer span.End()

	return s.monthly(ctx, ReportMonthlySalesVolume, analytics.MeasureUnits, f)
}

// MonthlyRevenue sums selling price per month.
func (s *Service) MonthlyRevenue(ctx context.Context, f filters.Filters) (*models.Series, error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.MonthlyRevenue")
	defer span.End()

	return s.monthly(ctx, ReportMonthlyRevenue, analytics.MeasureRevenue, f)
}

func (s *Service) monthly(ctx context.Context, report string, measure analytics.Measure, f filters.Filters) (*models.Series, error) {
	var cached models.Series
	generation, found := s.fromCache(ctx, report, f, &cached)
	if found {
		return &cached, nil
	}

	rows, err := s.repo.DailyTotals(ctx, measure, f)
	if err != nil {
		return nil, err
	}

	series := GroupByMonth(rows)
	s.toCache(ctx, report, f, generation, series)
	return &series, nil
}

// OrdersSummary computes the KPI block. An empty population is an error.
func (s *Service) OrdersSummary(ctx context.Context, f filters.Filters) (*models.Summary, error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.OrdersSummary")
	defer span.End()

	var cached models.Summary
	generation, found := s.fromCache(ctx, ReportOrdersSummary, f, &cached)
	if found {
		return &cached, nil
	}

	totals, err := s.repo.SummaryTotals(ctx, f)
	if err != nil {
		return nil, err
	}

	summary, err := Summarize(totals)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("filters", f.Key()).Error("Failed to summarize orders")
		return nil, err
	}

	s.toCache(ctx, ReportOrdersSummary, f, generation, summary)
	return summary, nil
}

// GroupByMonth rolls daily totals into YYYY-MM buckets, months ascending.
// Months without rows are absent.
func GroupByMonth(rows []models.DailyTotal) models.Series {
	totals := map[string]float64{}
	for _, row := range rows {
		totals[models.MonthKey(row.Day)] += row.Total
	}

	series := models.Series{
		Labels: make([]string, 0, len(totals)),
		Values: make([]float64, 0, len(totals)),
	}
	for month := range totals {
		series.Labels = append(series.Labels, month)
	}
	sort.Strings(series.Labels)
	for _, month := range series.Labels {
		series.Values = append(series.Values, totals[month])
	}
	return series
}

// Summarize derives the KPIs. The canceled percentage is rounded to two decimals.
func Summarize(totals *models.SummaryTotals) (*models.Summary, error) {
	if totals == nil || totals.TotalOrders == 0 {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "no orders to summarize")
	}

	percentage := float64(totals.CanceledOrders) / float64(totals.TotalOrders) * 100
	return &models.Summary{
		TotalOrders:             totals.TotalOrders,
		TotalRevenue:            totals.TotalRevenue,
		TotalProductsSold:       totals.TotalProductsSold,
		CanceledOrderPercentage: math.Round(percentage*100) / 100,
	}, nil
}

// fromCache returns the cache generation the lookup ran against so the
// matching toCache cannot publish a result across an invalidation.
func (s *Service) fromCache(ctx context.Context, report string, f filters.Filters, dest any) (int64, bool) {
	generation, found, err := s.cache.Get(ctx, report, f.Key(), dest)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("report", report).Warn("Failed to read report cache")
		return generation, false
	}
	return generation, found
}

func (s *Service) toCache(ctx context.Context, report string, f filters.Filters, generation int64, value any) {
	if err := s.cache.Set(ctx, report, f.Key(), generation, value); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("report", report).Warn("Failed to write report cache")
	}
}
