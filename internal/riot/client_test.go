package riot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/riftforge/rift-balancer/internal/errors"
	"github.com/riftforge/rift-balancer/internal/monitoring"
	"github.com/riftforge/rift-balancer/internal/resilience"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	return NewClient("test-key", "americas", monitoring.NewMetrics(), monitoring.NewLogger(), resilience.NewHealthRegistry())
}

func TestGetJSONMapsPersistentThrottlingToRateLimit(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := testClient(t)
	var out struct{}
	err := c.getJSON(context.Background(), "league", server.URL, &out)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CategoryRateLimit, appErr.Category)
	assert.Equal(t, 3, hits)
}

func TestGetJSONMapsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(t)
	var out struct{}
	err := c.getJSON(context.Background(), "summoner", server.URL, &out)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CategoryNotFound, appErr.Category)
}
