// Package resilience provides the circuit breaker, retry and pooled HTTP
// client machinery the Riot adapter calls through.
package resilience

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// CircuitState is the breaker's current disposition.
type CircuitState int32

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	}
	return "unknown"
}

// CircuitConfig tunes a breaker. Zero values fall back to defaults.
type CircuitConfig struct {
	FailureThreshold int           `json:"failure_threshold"`
	RecoveryTimeout  time.Duration `json:"recovery_timeout"`
	SuccessThreshold int           `json:"success_threshold"`
}

// CircuitBreaker trips after consecutive failures and probes recovery through
// a half-open window.
type CircuitBreaker struct {
	config      CircuitConfig
	state       int32
	failures    int32
	successes   int32
	nextAttempt atomic.Int64
}

// NewCircuitBreaker builds a breaker, filling in defaults for zero config.
func NewCircuitBreaker(config CircuitConfig) *CircuitBreaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout == 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 3
	}
	return &CircuitBreaker{config: config, state: int32(StateClosed)}
}

// Call runs fn under breaker protection. While open it fails fast with an
// OpenCircuitError until the recovery timeout elapses.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if CircuitState(atomic.LoadInt32(&cb.state)) == StateOpen {
		if time.Now().UnixNano() < cb.nextAttempt.Load() {
			return &OpenCircuitError{State: StateOpen}
		}
		atomic.StoreInt32(&cb.state, int32(StateHalfOpen))
		atomic.StoreInt32(&cb.successes, 0)
	}

	if err := fn(); err != nil {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return nil
}

func (cb *CircuitBreaker) onFailure() {
	failures := atomic.AddInt32(&cb.failures, 1)
	atomic.StoreInt32(&cb.successes, 0)

	if failures >= int32(cb.config.FailureThreshold) {
		atomic.StoreInt32(&cb.state, int32(StateOpen))
		cb.nextAttempt.Store(time.Now().Add(cb.config.RecoveryTimeout).UnixNano())
	}
}

func (cb *CircuitBreaker) onSuccess() {
	atomic.StoreInt32(&cb.failures, 0)

	if CircuitState(atomic.LoadInt32(&cb.state)) == StateHalfOpen {
		if atomic.AddInt32(&cb.successes, 1) >= int32(cb.config.SuccessThreshold) {
			atomic.StoreInt32(&cb.state, int32(StateClosed))
		}
	}
}

// State reports the current breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	return CircuitState(atomic.LoadInt32(&cb.state))
}

// Failures reports the consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	return int(atomic.LoadInt32(&cb.failures))
}

// Reset forces the breaker closed.
func (cb *CircuitBreaker) Reset() {
	atomic.StoreInt32(&cb.state, int32(StateClosed))
	atomic.StoreInt32(&cb.failures, 0)
	atomic.StoreInt32(&cb.successes, 0)
}

// OpenCircuitError is returned when a call is rejected without running.
type OpenCircuitError struct {
	State CircuitState
}

func (e *OpenCircuitError) Error() string {
	return fmt.Sprintf("circuit breaker is %s", e.State)
}

// BreakerRegistry keys breakers by dependency name.
type BreakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

func NewBreakerRegistry() *BreakerRegistry {
	return &BreakerRegistry{breakers: make(map[string]*CircuitBreaker)}
}

// GetOrCreate returns the named breaker, creating it on first use.
func (r *BreakerRegistry) GetOrCreate(name string, config CircuitConfig) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[name]; ok {
		return cb
	}
	cb := NewCircuitBreaker(config)
	r.breakers[name] = cb
	return cb
}

// Stats reports state and failure counts per breaker.
func (r *BreakerRegistry) Stats() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make(map[string]any, len(r.breakers))
	for name, cb := range r.breakers {
		stats[name] = map[string]any{
			"state":    cb.State().String(),
			"failures": cb.Failures(),
		}
	}
	return stats
}

var globalRegistry = NewBreakerRegistry()

// GetCircuitBreaker fetches a breaker from the process-wide registry.
func GetCircuitBreaker(name string, config CircuitConfig) *CircuitBreaker {
	return globalRegistry.GetOrCreate(name, config)
}

// CircuitBreakerStats reports the process-wide registry.
func CircuitBreakerStats() map[string]any {
	return globalRegistry.Stats()
}
