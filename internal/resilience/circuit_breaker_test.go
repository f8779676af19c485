package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitConfig{FailureThreshold: 3, RecoveryTimeout: time.Hour})
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		assert.Equal(t, boom, cb.Call(func() error { return boom }))
	}
	assert.Equal(t, StateOpen, cb.State())

	// open circuit rejects without running the function
	ran := false
	err := cb.Call(func() error { ran = true; return nil })
	var oce *OpenCircuitError
	require.ErrorAs(t, err, &oce)
	assert.False(t, ran)
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitConfig{FailureThreshold: 1, RecoveryTimeout: time.Nanosecond, SuccessThreshold: 2})

	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(time.Millisecond)

	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitConfig{FailureThreshold: 2})

	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	require.NoError(t, cb.Call(func() error { return nil }))
	require.Error(t, cb.Call(func() error { return errors.New("boom") }))

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 1, cb.Failures())
}

func TestBreakerRegistryReusesInstances(t *testing.T) {
	reg := NewBreakerRegistry()
	a := reg.GetOrCreate("riot-api", CircuitConfig{})
	b := reg.GetOrCreate("riot-api", CircuitConfig{FailureThreshold: 99})
	assert.Same(t, a, b)

	stats := reg.Stats()
	require.Contains(t, stats, "riot-api")
}
