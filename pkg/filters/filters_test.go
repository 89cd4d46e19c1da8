package filters

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/dahlia/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("should return no filters for empty params", func(t *testing.T) {
		f, err := Parse(url.Values{"state": {""}})
		require.NoError(t, err)
		assert.True(t, f.IsEmpty())
		assert.Equal(t, "", f.Key())
	})

	t.Run("should parse every supported filter", func(t *testing.T) {
		f, err := Parse(url.Values{
			"date_range":       {"2024-01-01, 2024-01-31"},
			"product_category": {"Kitchen"},
			"delivery_status":  {"Cancelled"},
			"platform_id":      {"3"},
			"platform":         {"Amazon"},
			"state":            {"Greater London"},
		})
		require.NoError(t, err)
		require.NotNil(t, f.DateRange)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), f.DateRange.Start)
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), f.DateRange.End)
		require.Len(t, f.Conditions, 5)
		assert.Equal(t, Condition{Param: "platform_id", Column: "platform_id", Value: 3}, f.Conditions[2])
	})

	t.Run("should reject a malformed date range", func(t *testing.T) {
		for _, raw := range []string{"not-a-date", "2024-01-01", "2024-01-01,2024-01-31,2024-02-01", "2024-01-01,tomorrow"} {
			_, err := Parse(url.Values{"date_range": {raw}})
			require.Error(t, err, raw)
			assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
			assert.Contains(t, err.Error(), "Invalid date range format")
		}
	})

	t.Run("should reject a non integer platform id", func(t *testing.T) {
		_, err := Parse(url.Values{"platform_id": {"amazon"}})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})
}

func TestFilters_Apply(t *testing.T) {
	t.Run("should build an inclusive range and equality predicates", func(t *testing.T) {
		f, err := Parse(url.Values{"date_range": {"2024-01-01,2024-01-31"}, "state": {"Kent"}})
		require.NoError(t, err)

		sb := database.NewSelectBuilder()
		sb.Select("order_detail_id").From("mv_order_details")
		f.Apply(sb)

		query, args := sb.Build()
		assert.Contains(t, query, "date_of_sale BETWEEN $1 AND $2")
		assert.Contains(t, query, "state = $3")
		assert.Equal(t, []any{"2024-01-01", "2024-01-31", "Kent"}, args)
	})

	t.Run("should not add a where clause without filters", func(t *testing.T) {
		sb := database.NewSelectBuilder()
		sb.Select("order_detail_id").From("mv_order_details")
		Filters{}.Apply(sb)

		query, args := sb.Build()
		assert.NotContains(t, query, "WHERE")
		assert.Empty(t, args)
	})
}

func TestFilters_Key(t *testing.T) {
	a, err := Parse(url.Values{"state": {"Kent"}, "platform": {"Amazon"}})
	require.NoError(t, err)
	b, err := Parse(url.Values{"platform": {"Amazon"}, "state": {"Kent"}})
	require.NoError(t, err)

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "platform=Amazon&state=Kent", a.Key())

	t.Run("should escape values that contain separators", func(t *testing.T) {
		injected, err := Parse(url.Values{"product_category": {"Kitchen&state=Goa"}})
		require.NoError(t, err)
		split, err := Parse(url.Values{"product_category": {"Kitchen"}, "state": {"Goa"}})
		require.NoError(t, err)

		assert.NotEqual(t, split.Key(), injected.Key())
		assert.Equal(t, "product_category=Kitchen%26state%3DGoa", injected.Key())
		assert.Equal(t, "product_category=Kitchen&state=Goa", split.Key())
	})

	t.Run("should include the date range", func(t *testing.T) {
		f, err := Parse(url.Values{"date_range": {"2024-01-01,2024-01-31"}, "state": {"Goa"}})
		require.NoError(t, err)

		assert.Equal(t, "date_range=2024-01-01%2C2024-01-31&state=Goa", f.Key())
	})
}
