package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementRiotCalls()
	m.IncrementBalanceRuns()
	m.IncrementMatchesScored()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["error_count"])
	assert.Equal(t, 50.0, stats["error_rate_percent"])
	assert.Equal(t, 75.0, stats["cache_hit_rate_percent"])
	assert.Equal(t, int64(1), stats["riot_api_calls"])
	assert.Equal(t, int64(1), stats["balance_runs"])
	assert.Equal(t, int64(1), stats["matches_scored"])
}

func TestPercentileResponseTime(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, time.Duration(0), m.PercentileResponseTime(95))

	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}
	assert.Equal(t, 50*time.Millisecond, m.PercentileResponseTime(50))
	assert.Equal(t, 95*time.Millisecond, m.PercentileResponseTime(95))
}

func TestReset(t *testing.T) {
	m := NewMetrics()
	m.IncrementRequest()
	m.RecordResponseTime(time.Second)
	m.RecordRequestByStatus(200)

	m.Reset()

	stats := m.GetStats()
	assert.Equal(t, int64(0), stats["total_requests"])
	assert.Empty(t, m.StatusDistribution())
	assert.Equal(t, time.Duration(0), m.PercentileResponseTime(99))
}

func TestMiddlewareRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	logger := NewLogger()

	router := gin.New()
	router.Use(Middleware(m, logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))

	stats := m.GetStats()
	require.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["error_count"])

	dist := m.StatusDistribution()
	assert.Equal(t, int64(1), dist[http.StatusOK])
	assert.Equal(t, int64(1), dist[http.StatusBadRequest])
}
