package models

import "time"

// CancelledStatus is the delivery status counted by the canceled order percentage.
const CancelledStatus = "Cancelled"

// MonthLayout formats a date as its YYYY-MM bucket.
const MonthLayout = "2006-01"

// DateLayout is the ISO date format used by the export and by date_range.
const DateLayout = "2006-01-02"

// MonthKey returns the YYYY-MM bucket for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// DailyTotal is one aggregated day read from the projection.
type DailyTotal struct {
	Day   time.Time `db:"date_of_sale"`
	Total float64   `db:"total"`
}

// Series is a labelled chart series, months ascending.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// SummaryTotals is the raw aggregate row behind OrdersSummary.
type SummaryTotals struct {
	TotalOrders       int64   `db:"total_orders"`
	TotalRevenue      float64 `db:"total_revenue"`
	TotalProductsSold int64   `db:"total_products_sold"`
	CanceledOrders    int64   `db:"canceled_orders"`
}

type Summary struct {
	TotalOrders             int64   `json:"total_orders"`
	TotalRevenue            float64 `json:"total_revenue"`
	TotalProductsSold       int64   `json:"total_products_sold"`
	CanceledOrderPercentage float64 `json:"canceled_order_percentage"`
}
