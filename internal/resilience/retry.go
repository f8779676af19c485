package resilience

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/riftforge/rift-balancer/internal/errors"
)

// RetryConfig tunes attempt count and backoff shape.
type RetryConfig struct {
	MaxAttempts   int              `json:"max_attempts"`
	InitialDelay  time.Duration    `json:"initial_delay"`
	MaxDelay      time.Duration    `json:"max_delay"`
	BackoffFactor float64          `json:"backoff_factor"`
	Jitter        bool             `json:"jitter"`
	Retryable     func(error) bool `json:"-"`
}

// DefaultRetryConfig retries three times with jittered exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
		Retryable:     errors.IsRetryableError,
	}
}

// Retry runs fn with the default config.
func Retry(ctx context.Context, fn func() error) error {
	return RetryWithConfig(ctx, DefaultRetryConfig(), fn)
}

// RetryWithConfig runs fn until it succeeds, exhausts attempts, returns a
// non-retryable error, or the context ends.
func RetryWithConfig(ctx context.Context, config RetryConfig, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if config.Retryable != nil && !config.Retryable(err) {
			break
		}
		if attempt == config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDelay(config, attempt)):
		}
	}
	return lastErr
}

func backoffDelay(config RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt)))
	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	if config.Jitter && delay > 10 {
		delay += time.Duration(rand.Int63n(int64(delay / 10)))
	}
	return delay
}

// RetryHTTP retries an HTTP call, treating 408/429/5xx responses as failures
// worth another attempt. Non-retryable statuses return the response as-is.
// When attempts run out on a retryable status the final response comes back
// alongside the error with its body already closed, so callers can inspect
// the status and headers without owning the connection.
func RetryHTTP(ctx context.Context, config RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	var lastResp *http.Response
	var lastErr error

	closeLast := func() {
		if lastResp != nil {
			lastResp.Body.Close()
		}
	}

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			closeLast()
			return nil, err
		}

		resp, err := fn()
		if err == nil {
			if resp.StatusCode < 400 || !retryableStatus(resp.StatusCode) {
				closeLast()
				return resp, nil
			}
			closeLast()
			lastResp = resp
			lastErr = &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		} else {
			lastErr = err
			if config.Retryable != nil && !config.Retryable(err) {
				closeLast()
				return nil, err
			}
		}

		if attempt == config.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			closeLast()
			return nil, ctx.Err()
		case <-time.After(backoffDelay(config, attempt)):
		}
	}

	closeLast()
	return lastResp, lastErr
}

func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// HTTPError carries a failing status code through the retry loop.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return e.Status
}
