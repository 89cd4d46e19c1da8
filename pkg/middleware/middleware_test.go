package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEcho(handler echo.HandlerFunc) *echo.Echo {
	logger := zapadapter.NewZapEctoLogger(zap.NewNop(), nil)

	e := echo.New()
	e.HTTPErrorHandler = Error(logger)
	e.Use(Context())
	e.Use(Logger(logger))
	e.Use(Metrics())
	e.GET("/test", handler)
	return e
}

func serve(t *testing.T, e *echo.Echo, requestID string) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if requestID != "" {
		req.Header.Set(echo.HeaderXRequestID, requestID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body ErrorResponse
	if rec.Code >= http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestError(t *testing.T) {
	t.Run("should keep the message of a client error", func(t *testing.T) {
		e := newTestEcho(func(c echo.Context) error {
			return httperror.NewHTTPError(http.StatusBadRequest, "Invalid date range format")
		})

		rec, body := serve(t, e, "req-1")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "error", body.Status)
		assert.Contains(t, body.Message, "Invalid date range format")
		assert.Equal(t, "req-1", body.RequestID)
	})

	t.Run("should hide the message of a server error", func(t *testing.T) {
		e := newTestEcho(func(c echo.Context) error {
			return httperror.NewHTTPError(http.StatusInternalServerError, "pq: relation does not exist")
		})

		rec, body := serve(t, e, "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, GenericErrorMessage, body.Message)
		assert.Nil(t, body.Meta)
	})

	t.Run("should treat plain errors as server errors", func(t *testing.T) {
		e := newTestEcho(func(c echo.Context) error {
			return errors.New("boom")
		})

		rec, body := serve(t, e, "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, GenericErrorMessage, body.Message)
	})

	t.Run("should render echo errors with their code", func(t *testing.T) {
		e := newTestEcho(func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed")
		})

		rec, body := serve(t, e, "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "method not allowed", body.Message)
	})
}

func TestContext(t *testing.T) {
	t.Run("should generate a request id when none is sent", func(t *testing.T) {
		e := newTestEcho(func(c echo.Context) error {
			return c.NoContent(http.StatusNoContent)
		})

		rec, _ := serve(t, e, "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("should echo the caller's request id", func(t *testing.T) {
		e := newTestEcho(func(c echo.Context) error {
			return c.NoContent(http.StatusNoContent)
		})

		rec, _ := serve(t, e, "abc")

		assert.Equal(t, "abc", rec.Header().Get(echo.HeaderXRequestID))
	})
}
