// Package ratelimit throttles inbound requests per client IP, backed by a
// redis sliding window with an in-memory token bucket fallback.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"

	"github.com/riftforge/rift-balancer/internal/monitoring"
)

// Config tunes the per-IP limit.
type Config struct {
	IPLimitPerMin   int
	BurstMultiplier int
}

// DefaultConfig allows 60 requests per minute per IP.
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:   60,
		BurstMultiplier: 2,
	}
}

// Result is the outcome of one limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RateLimiter checks request budgets against redis when available and local
// token buckets otherwise.
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	config       Config
	metrics      *monitoring.Metrics

	fallbackMu sync.Mutex
	fallback   map[string]*rate.Limiter
}

// NewRateLimiter wires the limiter to redis if the client is enabled.
func NewRateLimiter(redisClient *RedisClient, config Config, metrics *monitoring.Metrics) *RateLimiter {
	rl := &RateLimiter{
		redisClient: redisClient,
		config:      config,
		metrics:     metrics,
		fallback:    make(map[string]*rate.Limiter),
	}
	if redisClient.Enabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.Client())
	}
	go rl.pruneFallback()
	return rl
}

// AllowIP checks the per-minute budget for one client IP.
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	key := fmt.Sprintf("ratelimit:ip:%s", ip)
	return rl.allow(ctx, key, rl.config.IPLimitPerMin, time.Minute)
}

func (rl *RateLimiter) allow(ctx context.Context, key string, limit int, period time.Duration) (*Result, error) {
	if rl.redisLimiter != nil {
		result, err := rl.allowRedis(ctx, key, limit, period)
		if err == nil {
			return result, nil
		}
		slog.Warn("redis rate limit check failed, using fallback", "key", key, "error", err)
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitRedisError()
		}
	} else if rl.metrics != nil {
		rl.metrics.IncrementRateLimitFallback()
	}
	return rl.allowFallback(key, limit, period), nil
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string, limit int, period time.Duration) (*Result, error) {
	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit,
		Burst:  limit,
		Period: period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check: %w", err)
	}
	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
	}, nil
}

func (rl *RateLimiter) allowFallback(key string, limit int, period time.Duration) *Result {
	rl.fallbackMu.Lock()
	limiter, ok := rl.fallback[key]
	if !ok {
		burst := limit * rl.config.BurstMultiplier
		if burst < 5 {
			burst = 5
		}
		limiter = rate.NewLimiter(rate.Limit(float64(limit)/period.Seconds()), burst)
		rl.fallback[key] = limiter
	}
	rl.fallbackMu.Unlock()

	allowed := limiter.Allow()
	remaining := int(limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(period),
	}
	if !allowed {
		result.RetryAfter = period
	}
	return result
}

// pruneFallback caps unbounded growth of per-IP buckets.
func (rl *RateLimiter) pruneFallback() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.fallbackMu.Lock()
		if len(rl.fallback) > 1000 {
			slog.Info("pruning fallback rate limiters", "count", len(rl.fallback))
			rl.fallback = make(map[string]*rate.Limiter)
		}
		rl.fallbackMu.Unlock()
	}
}

// Stats reports backend and bucket counts.
func (rl *RateLimiter) Stats() map[string]any {
	rl.fallbackMu.Lock()
	fallbackCount := len(rl.fallback)
	rl.fallbackMu.Unlock()

	stats := map[string]any{
		"redis_enabled":     rl.redisClient.Enabled(),
		"fallback_limiters": fallbackCount,
	}
	if rl.redisClient.Enabled() {
		stats["redis_pool"] = rl.redisClient.PoolStats()
	}
	return stats
}
