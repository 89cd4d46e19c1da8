package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestScopedValues(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetRequestID(ctx))

	ctx = SetRequestID(ctx, "req-1")
	ctx = SetMethod(ctx, "GET")
	ctx = SetRoute(ctx, "/visualizer/monthly_revenue")
	ctx = SetRemoteIP(ctx, "10.0.0.1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "GET", GetMethod(ctx))
	assert.Equal(t, "/visualizer/monthly_revenue", GetRoute(ctx))
	assert.Equal(t, "10.0.0.1", GetRemoteIP(ctx))
}
