package dataloader

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
	"github.com/Ramsey-B/dahlia/pkg/utils"
	"github.com/labstack/echo/v4"
)

// Ingester runs the ingestion pipeline
type Ingester interface {
	Ingest(ctx context.Context, refs []string) (*models.IngestionResult, error)
}

type ExtractOrderDataRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,dive,required"`
}

type ExtractOrderDataResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type Handler struct {
	ingester Ingester
}

func NewHandler(ingester Ingester) *Handler {
	return &Handler{ingester: ingester}
}

// RegisterRoutes registers the data loader routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/extract_order_data", h.ExtractOrderData)
}

func (h *Handler) ExtractOrderData(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "dataloader.ExtractOrderData")
	defer span.End()

	req, err := utils.BindRequest[ExtractOrderDataRequest](c)
	if err != nil {
		return err
	}

	result, err := h.ingester.Ingest(ctx, req.URLs)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ExtractOrderDataResponse{
		Status:  "success",
		Message: fmt.Sprintf("Ingested %d records from %d sources", result.Records, len(result.Sources)),
		Count:   result.Records,
	})
}
