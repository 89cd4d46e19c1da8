package visualizer

import (
	"context"
	"net/http"

	"github.com/Ramsey-B/dahlia/pkg/filters"
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// Reports computes the dashboard reports
type Reports interface {
	MonthlySalesVolume(ctx context.Context, f filters.Filters) (*models.Series, error)
	MonthlyRevenue(ctx context.Context, f filters.Filters) (*models.Series, error)
	OrdersSummary(ctx context.Context, f filters.Filters) (*models.Summary, error)
}

type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type Handler struct {
	reports Reports
}

func NewHandler(reports Reports) *Handler {
	return &Handler{reports: reports}
}

// RegisterRoutes registers the report routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/monthly_sales_volume", h.MonthlySalesVolume)
	g.GET("/monthly_revenue", h.MonthlyRevenue)
	g.GET("/orders_summary", h.OrdersSummary)
}

func (h *Handler) MonthlySalesVolume(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "visualizer.MonthlySalesVolume")
	defer span.End()

	f, err := filters.Parse(c.QueryParams())
	if err != nil {
		return err
	}

	series, err := h.reports.MonthlySalesVolume(ctx, f)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{Status: "success", Data: series})
}

func (h *Handler) MonthlyRevenue(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "visualizer.MonthlyRevenue")
	defer span.End()

	f, err := filters.Parse(c.QueryParams())
	if err != nil {
		return err
	}

	series, err := h.reports.MonthlyRevenue(ctx, f)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{Status: "success", Data: series})
}

func (h *Handler) OrdersSummary(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "visualizer.OrdersSummary")
	defer span.End()

	f, err := filters.Parse(c.QueryParams())
	if err != nil {
		return err
	}

	summary, err := h.reports.OrdersSummary(ctx, f)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{Status: "success", Data: summary})
}
