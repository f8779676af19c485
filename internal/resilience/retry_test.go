package resilience

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/riftforge/rift-balancer/internal/errors"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		Retryable:     apperrors.IsRetryableError,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return apperrors.NewNetworkError("flaky", nil)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	bad := apperrors.NewValidationError("bad input", nil)
	err := RetryWithConfig(context.Background(), fastConfig(), func() error {
		attempts++
		return bad
	})
	assert.Equal(t, 1, attempts)
	assert.Equal(t, error(bad), err)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), fastConfig(), func() error {
		attempts++
		return apperrors.NewTimeoutError("slow", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithConfig(ctx, fastConfig(), func() error {
		t.Fatal("should not run on a dead context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func TestRetryHTTPClosesBodiesOnExhaustion(t *testing.T) {
	var bodies []*trackedBody
	resp, err := RetryHTTP(context.Background(), fastConfig(), func() (*http.Response, error) {
		body := &trackedBody{Reader: strings.NewReader("throttled")}
		bodies = append(bodies, body)
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Status:     "429 Too Many Requests",
			Header:     http.Header{"Retry-After": []string{"2"}},
			Body:       body,
		}, nil
	})

	require.Error(t, err)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)

	// the last response stays inspectable but owns no open body
	require.NotNil(t, resp)
	assert.Equal(t, "2", resp.Header.Get("Retry-After"))
	require.Len(t, bodies, 3)
	for i, body := range bodies {
		assert.True(t, body.closed, "attempt %d body left open", i)
	}
}

func TestRetryHTTPSuccessBodyStaysReadable(t *testing.T) {
	failed := &trackedBody{Reader: strings.NewReader("busy")}
	attempts := 0
	resp, err := RetryHTTP(context.Background(), fastConfig(), func() (*http.Response, error) {
		attempts++
		if attempts == 1 {
			return &http.Response{StatusCode: http.StatusServiceUnavailable, Status: "503", Body: failed}, nil
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader("payload")),
		}, nil
	})

	require.NoError(t, err)
	assert.True(t, failed.closed)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	resp.Body.Close()
}

func TestBackoffDelayCapsAtMax(t *testing.T) {
	config := RetryConfig{InitialDelay: time.Second, MaxDelay: 2 * time.Second, BackoffFactor: 10}
	assert.Equal(t, 2*time.Second, backoffDelay(config, 5))
}

func TestRetryableStatus(t *testing.T) {
	assert.True(t, retryableStatus(429))
	assert.True(t, retryableStatus(503))
	assert.False(t, retryableStatus(404))
	assert.False(t, retryableStatus(200))
}
