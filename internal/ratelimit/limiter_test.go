package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftforge/rift-balancer/internal/monitoring"
)

func memoryLimiter(limitPerMin int) *RateLimiter {
	return NewRateLimiter(
		NewRedisClient("", "", 0),
		Config{IPLimitPerMin: limitPerMin, BurstMultiplier: 1},
		monitoring.NewMetrics(),
	)
}

func TestAllowIPFallbackBucket(t *testing.T) {
	rl := memoryLimiter(5)

	allowedCount := 0
	for i := 0; i < 20; i++ {
		result, err := rl.AllowIP(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		if result.Allowed {
			allowedCount++
		} else {
			assert.Positive(t, result.RetryAfter)
		}
	}
	// burst capacity floor is 5, the refill rate adds at most a token
	assert.GreaterOrEqual(t, allowedCount, 5)
	assert.Less(t, allowedCount, 10)
}

func TestAllowIPSeparateBucketsPerIP(t *testing.T) {
	rl := memoryLimiter(5)

	for i := 0; i < 5; i++ {
		_, err := rl.AllowIP(context.Background(), "10.0.0.1")
		require.NoError(t, err)
	}
	result, err := rl.AllowIP(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestStatsWithoutRedis(t *testing.T) {
	rl := memoryLimiter(5)
	_, err := rl.AllowIP(context.Background(), "10.0.0.1")
	require.NoError(t, err)

	stats := rl.Stats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 1, stats["fallback_limiters"])
	assert.NotContains(t, stats, "redis_pool")
}

func TestMiddlewareBlocksWith429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := memoryLimiter(5)

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	var lastCode int
	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		router.ServeHTTP(w, req)
		lastCode = w.Code
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
