package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/dahlia/config"
	"github.com/Ramsey-B/dahlia/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := config.Load(t.TempDir() + "/missing.env")
	require.NoError(t, err)
	return New(cfg, zapadapter.NewZapEctoLogger(zap.NewNop(), nil), Options{})
}

func TestNewServer(t *testing.T) {
	a := newTestApp(t)
	e, checker := a.NewServer()

	t.Run("should report liveness", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("should not be ready before startup completes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.False(t, checker.IsReady())
	})

	t.Run("should expose prometheus metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "dahlia_http_requests_total")
	})

	t.Run("should reject an extract request without urls", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/data_loader/extract_order_data", strings.NewReader(`{"urls":[]}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body middleware.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "error", body.Status)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("should render unknown routes as errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/visualizer/unknown", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("should build a logger for a known level", func(t *testing.T) {
		logger, err := NewLogger("debug", true)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("should reject an unknown level", func(t *testing.T) {
		_, err := NewLogger("loud", false)
		assert.Error(t, err)
	})
}
