package analytics

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	repo "github.com/Ramsey-B/dahlia/internal/repositories/analytics"
	"github.com/Ramsey-B/dahlia/pkg/cache"
	"github.com/Ramsey-B/dahlia/pkg/filters"
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getTestLogger() ectologger.Logger {
	return zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
}

func day(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

type fakeRepo struct {
	daily    []models.DailyTotal
	totals   *models.SummaryTotals
	measures []repo.Measure
	calls    int
	onQuery  func()
}

func (f *fakeRepo) DailyTotals(ctx context.Context, measure repo.Measure, _ filters.Filters) ([]models.DailyTotal, error) {
	f.calls++
	if f.onQuery != nil {
		f.onQuery()
	}
	f.measures = append(f.measures, measure)
	return f.daily, nil
}

func (f *fakeRepo) SummaryTotals(ctx context.Context, _ filters.Filters) (*models.SummaryTotals, error) {
	f.calls++
	return f.totals, nil
}

type memoryCache struct {
	generation int64
	entries    map[string]any
}

func (m *memoryCache) entryKey(generation int64, report, key string) string {
	return fmt.Sprintf("%d|%s|%s", generation, report, key)
}

func (m *memoryCache) Get(ctx context.Context, report, key string, dest any) (int64, bool, error) {
	value, ok := m.entries[m.entryKey(m.generation, report, key)]
	if !ok {
		return m.generation, false, nil
	}
	switch d := dest.(type) {
	case *models.Series:
		*d = value.(models.Series)
	case *models.Summary:
		*d = *value.(*models.Summary)
	}
	return m.generation, true, nil
}

func (m *memoryCache) Set(ctx context.Context, report, key string, generation int64, value any) error {
	m.entries[m.entryKey(generation, report, key)] = value
	return nil
}

func (m *memoryCache) Invalidate(ctx context.Context) error {
	m.generation++
	return nil
}

func TestGroupByMonth(t *testing.T) {
	t.Run("should bucket days by month in ascending order", func(t *testing.T) {
		series := GroupByMonth([]models.DailyTotal{
			{Day: day("2024-03-15"), Total: 2},
			{Day: day("2024-01-31"), Total: 1},
			{Day: day("2024-03-01"), Total: 3},
		})
		assert.Equal(t, []string{"2024-01", "2024-03"}, series.Labels)
		assert.Equal(t, []float64{1, 5}, series.Values)
	})

	t.Run("should return empty slices without rows", func(t *testing.T) {
		series := GroupByMonth(nil)
		assert.NotNil(t, series.Labels)
		assert.NotNil(t, series.Values)
		assert.Empty(t, series.Labels)
	})
}

func TestSummarize(t *testing.T) {
	t.Run("should compute revenue and the canceled percentage", func(t *testing.T) {
		summary, err := Summarize(&models.SummaryTotals{
			TotalOrders:       3,
			TotalRevenue:      600,
			TotalProductsSold: 3,
			CanceledOrders:    1,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), summary.TotalOrders)
		assert.Equal(t, 600.0, summary.TotalRevenue)
		assert.Equal(t, 33.33, summary.CanceledOrderPercentage)
	})

	t.Run("should fail on an empty population", func(t *testing.T) {
		_, err := Summarize(&models.SummaryTotals{})
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))
	})
}

func TestService(t *testing.T) {
	t.Run("should read units for volume and price for revenue", func(t *testing.T) {
		r := &fakeRepo{daily: []models.DailyTotal{{Day: day("2024-03-15"), Total: 4}}}
		s := NewService(getTestLogger(), r, cache.Noop{})

		volume, err := s.MonthlySalesVolume(context.Background(), filters.Filters{})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-03"}, volume.Labels)

		_, err = s.MonthlyRevenue(context.Background(), filters.Filters{})
		require.NoError(t, err)
		assert.Equal(t, []repo.Measure{repo.MeasureUnits, repo.MeasureRevenue}, r.measures)
	})

	t.Run("should serve repeated reports from the cache", func(t *testing.T) {
		r := &fakeRepo{
			daily:  []models.DailyTotal{{Day: day("2024-03-15"), Total: 4}},
			totals: &models.SummaryTotals{TotalOrders: 2, TotalRevenue: 10, TotalProductsSold: 2},
		}
		s := NewService(getTestLogger(), r, &memoryCache{entries: map[string]any{}})

		for i := 0; i < 2; i++ {
			series, err := s.MonthlyRevenue(context.Background(), filters.Filters{})
			require.NoError(t, err)
			assert.Equal(t, []float64{4}, series.Values)

			summary, err := s.OrdersSummary(context.Background(), filters.Filters{})
			require.NoError(t, err)
			assert.Equal(t, int64(2), summary.TotalOrders)
		}
		assert.Equal(t, 2, r.calls)
	})

	t.Run("should not serve a report computed before an invalidation", func(t *testing.T) {
		c := &memoryCache{entries: map[string]any{}}
		r := &fakeRepo{daily: []models.DailyTotal{{Day: day("2024-03-15"), Total: 4}}}
		r.onQuery = func() {
			require.NoError(t, c.Invalidate(context.Background()))
			r.onQuery = nil
		}
		s := NewService(getTestLogger(), r, c)

		series, err := s.MonthlyRevenue(context.Background(), filters.Filters{})
		require.NoError(t, err)
		assert.Equal(t, []float64{4}, series.Values)

		r.daily = []models.DailyTotal{{Day: day("2024-03-15"), Total: 9}}
		series, err = s.MonthlyRevenue(context.Background(), filters.Filters{})
		require.NoError(t, err)
		assert.Equal(t, []float64{9}, series.Values)
		assert.Equal(t, 2, r.calls)
	})

	t.Run("should fail the summary when nothing matches", func(t *testing.T) {
		s := NewService(getTestLogger(), &fakeRepo{totals: &models.SummaryTotals{}}, cache.Noop{})

		_, err := s.OrdersSummary(context.Background(), filters.Filters{})
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))
	})
}
