// Package filters parses report filters from query parameters and applies
// them to queries against the order projection.
package filters

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/dahlia/pkg/database"
	"github.com/Ramsey-B/dahlia/pkg/models"
)

const (
	ParamDateRange = "date_range"
	ColumnDate     = "date_of_sale"
)

// InvalidDateRangeMessage is returned for a date_range that is not two ISO dates.
const InvalidDateRangeMessage = "Invalid date range format. Use 'start_date,end_date'."

// Coerce converts a raw parameter into the value bound to the query.
type Coerce func(raw string) (any, error)

// Field maps a query parameter onto a projection column.
type Field struct {
	Param  string
	Column string
	Coerce Coerce
}

// Fields are the equality filters every report accepts.
var Fields = []Field{
	{Param: "product_category", Column: "category", Coerce: asString},
	{Param: "delivery_status", Column: "delivery_status", Coerce: asString},
	{Param: "platform_id", Column: "platform_id", Coerce: asInt},
	{Param: "platform", Column: "platform_name", Coerce: asString},
	{Param: "state", Column: "state", Coerce: asString},
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Condition is one parsed equality filter.
type Condition struct {
	Param  string
	Column string
	Value  any
}

// Filters is the parsed filter set. The zero value matches every row.
type Filters struct {
	DateRange  *DateRange
	Conditions []Condition
}

// Parse reads the supported parameters from values. Empty parameters are ignored.
func Parse(values url.Values) (Filters, error) {
	var f Filters

	if raw := strings.TrimSpace(values.Get(ParamDateRange)); raw != "" {
		dateRange, err := ParseDateRange(raw)
		if err != nil {
			return Filters{}, err
		}
		f.DateRange = dateRange
	}

	for _, field := range Fields {
		raw := strings.TrimSpace(values.Get(field.Param))
		if raw == "" {
			continue
		}
		value, err := field.Coerce(raw)
		if err != nil {
			return Filters{}, httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", field.Param, err.Error()))
		}
		f.Conditions = append(f.Conditions, Condition{Param: field.Param, Column: field.Column, Value: value})
	}

	return f, nil
}

// ParseDateRange reads "start,end" where both ends are YYYY-MM-DD.
func ParseDateRange(raw string) (*DateRange, error) {
	tokens := strings.Split(raw, ",")
	if len(tokens) != 2 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, InvalidDateRangeMessage)
	}

	start, err := time.Parse(models.DateLayout, strings.TrimSpace(tokens[0]))
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, InvalidDateRangeMessage)
	}
	end, err := time.Parse(models.DateLayout, strings.TrimSpace(tokens[1]))
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, InvalidDateRangeMessage)
	}

	return &DateRange{Start: start, End: end}, nil
}

// Apply adds the filters to the WHERE clause of sb.
func (f Filters) Apply(sb *database.SelectBuilder) {
	if f.DateRange != nil {
		sb.Where(sb.Between(ColumnDate, f.DateRange.Start.Format(models.DateLayout), f.DateRange.End.Format(models.DateLayout)))
	}
	for _, condition := range f.Conditions {
		sb.Where(sb.Equal(condition.Column, condition.Value))
	}
}

// IsEmpty reports whether no filter was supplied.
func (f Filters) IsEmpty() bool {
	return f.DateRange == nil && len(f.Conditions) == 0
}

// Key is a stable representation of the filters for cache keys. Values are
// query-escaped so distinct filter sets never share a key.
func (f Filters) Key() string {
	values := url.Values{}
	if f.DateRange != nil {
		values.Add(ParamDateRange, f.DateRange.Start.Format(models.DateLayout)+","+f.DateRange.End.Format(models.DateLayout))
	}
	for _, condition := range f.Conditions {
		values.Add(condition.Param, fmt.Sprint(condition.Value))
	}
	return values.Encode()
}

func asString(raw string) (any, error) {
	return raw, nil
}

func asInt(raw string) (any, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("must be an integer")
	}
	return value, nil
}
