package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct {
	err error
}

func (p pinger) PingContext(ctx context.Context) error {
	return p.err
}

func get(t *testing.T, checker *Checker, path string) (int, Response) {
	t.Helper()
	e := echo.New()
	checker.RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestChecker(t *testing.T) {
	t.Run("should be live regardless of dependencies", func(t *testing.T) {
		code, body := get(t, NewChecker(pinger{err: errors.New("down")}, nil, "1.0.0"), "/health/live")

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, StatusHealthy, body.Status)
		assert.Equal(t, "1.0.0", body.Version)
	})

	t.Run("should not be ready until startup finishes", func(t *testing.T) {
		code, body := get(t, NewChecker(pinger{}, nil, "1.0.0"), "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, StatusUnhealthy, body.Checks["startup"].Status)
	})

	t.Run("should be ready when the database answers", func(t *testing.T) {
		checker := NewChecker(pinger{}, nil, "1.0.0")
		checker.SetReady(true)

		code, body := get(t, checker, "/health/ready")

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, StatusHealthy, body.Checks["database"].Status)
		assert.NotContains(t, body.Checks, "redis")
	})

	t.Run("should be unhealthy when the database fails", func(t *testing.T) {
		code, body := get(t, NewChecker(pinger{err: errors.New("connection refused")}, nil, "1.0.0"), "/health")

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "connection refused", body.Checks["database"].Message)
	})

	t.Run("should be unhealthy without a database", func(t *testing.T) {
		code, body := get(t, NewChecker(nil, nil, "1.0.0"), "/health")

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, StatusUnhealthy, body.Checks["database"].Status)
	})
}
