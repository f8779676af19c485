package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates service counters for the /metrics endpoint.
type Metrics struct {
	RequestCount  int64
	ErrorCount    int64
	CacheHits     int64
	CacheMisses   int64
	RiotAPICalls  int64
	BalanceRuns   int64
	MatchesScored int64
	StartTime     time.Time

	responseTimes []time.Duration
	responseMu    sync.RWMutex

	statusCounts map[int]int64
	statusMu     sync.RWMutex

	RateLimitIPBlocks     int64
	RateLimitRedisErrors  int64
	RateLimitFallbackHits int64
}

// NewMetrics returns a zeroed metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:     time.Now(),
		responseTimes: make([]time.Duration, 0, 1000),
		statusCounts:  make(map[int]int64),
	}
}

func (m *Metrics) IncrementRequest()   { atomic.AddInt64(&m.RequestCount, 1) }
func (m *Metrics) IncrementError()     { atomic.AddInt64(&m.ErrorCount, 1) }
func (m *Metrics) IncrementCacheHit()  { atomic.AddInt64(&m.CacheHits, 1) }
func (m *Metrics) IncrementCacheMiss() { atomic.AddInt64(&m.CacheMisses, 1) }

// IncrementRiotCalls counts one outbound Riot API request.
func (m *Metrics) IncrementRiotCalls() { atomic.AddInt64(&m.RiotAPICalls, 1) }

// IncrementBalanceRuns counts one team-building request.
func (m *Metrics) IncrementBalanceRuns() { atomic.AddInt64(&m.BalanceRuns, 1) }

// IncrementMatchesScored counts one match run through the scorer.
func (m *Metrics) IncrementMatchesScored() { atomic.AddInt64(&m.MatchesScored, 1) }

func (m *Metrics) IncrementRateLimitIPBlock()    { atomic.AddInt64(&m.RateLimitIPBlocks, 1) }
func (m *Metrics) IncrementRateLimitRedisError() { atomic.AddInt64(&m.RateLimitRedisErrors, 1) }
func (m *Metrics) IncrementRateLimitFallback()   { atomic.AddInt64(&m.RateLimitFallbackHits, 1) }

// RecordResponseTime keeps the last thousand samples for percentiles.
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	m.responseMu.Lock()
	m.responseTimes = append(m.responseTimes, duration)
	if len(m.responseTimes) > 1000 {
		m.responseTimes = m.responseTimes[1:]
	}
	m.responseMu.Unlock()
}

// RecordRequestByStatus tallies one response by HTTP status code.
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.statusMu.Lock()
	m.statusCounts[statusCode]++
	m.statusMu.Unlock()
}

// PercentileResponseTime computes the given percentile over retained samples.
func (m *Metrics) PercentileResponseTime(percentile float64) time.Duration {
	m.responseMu.RLock()
	defer m.responseMu.RUnlock()

	if len(m.responseTimes) == 0 {
		return 0
	}
	times := make([]time.Duration, len(m.responseTimes))
	copy(times, m.responseTimes)
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	idx := int(float64(len(times)-1) * percentile / 100.0)
	return times[idx]
}

// StatusDistribution copies the per-status counters.
func (m *Metrics) StatusDistribution() map[int]int64 {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()

	out := make(map[int]int64, len(m.statusCounts))
	for code, count := range m.statusCounts {
		out[code] = count
	}
	return out
}

// GetStats snapshots everything for the metrics endpoint.
func (m *Metrics) GetStats() map[string]any {
	requests := atomic.LoadInt64(&m.RequestCount)
	errCount := atomic.LoadInt64(&m.ErrorCount)
	hits := atomic.LoadInt64(&m.CacheHits)
	misses := atomic.LoadInt64(&m.CacheMisses)

	errorRate := 0.0
	if requests > 0 {
		errorRate = float64(errCount) / float64(requests) * 100
	}
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	return map[string]any{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"start_time":             m.StartTime.Format(time.RFC3339),
		"total_requests":         requests,
		"error_count":            errCount,
		"error_rate_percent":     errorRate,
		"cache_hits":             hits,
		"cache_misses":           misses,
		"cache_hit_rate_percent": hitRate,
		"riot_api_calls":         atomic.LoadInt64(&m.RiotAPICalls),
		"balance_runs":           atomic.LoadInt64(&m.BalanceRuns),
		"matches_scored":         atomic.LoadInt64(&m.MatchesScored),

		"p50_response_time_ms": float64(m.PercentileResponseTime(50)) / 1e6,
		"p95_response_time_ms": float64(m.PercentileResponseTime(95)) / 1e6,
		"p99_response_time_ms": float64(m.PercentileResponseTime(99)) / 1e6,

		"status_code_distribution": m.StatusDistribution(),

		"rate_limit_ip_blocks":     atomic.LoadInt64(&m.RateLimitIPBlocks),
		"rate_limit_redis_errors":  atomic.LoadInt64(&m.RateLimitRedisErrors),
		"rate_limit_fallback_hits": atomic.LoadInt64(&m.RateLimitFallbackHits),
	}
}

// Reset zeroes every counter. Test helper.
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.RequestCount, 0)
	atomic.StoreInt64(&m.ErrorCount, 0)
	atomic.StoreInt64(&m.CacheHits, 0)
	atomic.StoreInt64(&m.CacheMisses, 0)
	atomic.StoreInt64(&m.RiotAPICalls, 0)
	atomic.StoreInt64(&m.BalanceRuns, 0)
	atomic.StoreInt64(&m.MatchesScored, 0)
	atomic.StoreInt64(&m.RateLimitIPBlocks, 0)
	atomic.StoreInt64(&m.RateLimitRedisErrors, 0)
	atomic.StoreInt64(&m.RateLimitFallbackHits, 0)

	m.responseMu.Lock()
	m.responseTimes = m.responseTimes[:0]
	m.responseMu.Unlock()

	m.statusMu.Lock()
	m.statusCounts = make(map[int]int64)
	m.statusMu.Unlock()

	m.StartTime = time.Now()
}
