package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ClientPool hands out pooled HTTP clients over a shared transport and runs
// requests through a circuit breaker.
type ClientPool struct {
	maxIdle     int
	maxActive   int
	idleTimeout time.Duration

	breaker *CircuitBreaker

	mu     sync.Mutex
	active int
	idle   []*pooledClient

	transport *http.Transport
}

type pooledClient struct {
	client   *http.Client
	lastUsed time.Time
}

// NewClientPool builds a pool with the given bounds wired to a breaker.
func NewClientPool(maxIdle, maxActive int, idleTimeout time.Duration, cb *CircuitBreaker) *ClientPool {
	transport := &http.Transport{
		MaxIdleConns:          maxIdle,
		MaxConnsPerHost:       maxActive,
		MaxIdleConnsPerHost:   maxIdle / 2,
		IdleConnTimeout:       idleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &ClientPool{
		maxIdle:     maxIdle,
		maxActive:   maxActive,
		idleTimeout: idleTimeout,
		breaker:     cb,
		transport:   transport,
	}
}

// Get hands out an idle client or creates one within the active bound.
func (p *ClientPool) Get() (*http.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.evictExpired()

	if len(p.idle) > 0 {
		pc := p.idle[0]
		p.idle = p.idle[1:]
		return pc.client, nil
	}
	if p.active >= p.maxActive {
		return nil, fmt.Errorf("client pool exhausted: %d/%d active", p.active, p.maxActive)
	}
	p.active++
	return &http.Client{Transport: p.transport, Timeout: 30 * time.Second}, nil
}

// Put returns a client for reuse; surplus clients are dropped.
func (p *ClientPool) Put(client *http.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.idle) < p.maxIdle {
		p.idle = append(p.idle, &pooledClient{client: client, lastUsed: time.Now()})
	}
}

func (p *ClientPool) evictExpired() {
	now := time.Now()
	kept := p.idle[:0]
	for _, pc := range p.idle {
		if now.Sub(pc.lastUsed) <= p.idleTimeout {
			kept = append(kept, pc)
		}
	}
	p.idle = kept
}

// Do runs one request under the breaker and returns the raw response.
func (p *ClientPool) Do(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	var resp *http.Response
	err := p.breaker.Call(func() error {
		client, err := p.Get()
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			p.Put(client)
			return err
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		start := time.Now()
		resp, err = client.Do(req)
		if err != nil {
			slog.Warn("request failed", "url", url, "error", err, "duration_ms", time.Since(start).Milliseconds())
			return err
		}
		slog.Debug("request completed", "url", url, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

		p.Put(client)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Stats reports pool occupancy and breaker state.
func (p *ClientPool) Stats() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()

	return map[string]any{
		"active_clients":        p.active,
		"idle_clients":          len(p.idle),
		"max_idle":              p.maxIdle,
		"max_active":            p.maxActive,
		"idle_timeout_ms":       p.idleTimeout.Milliseconds(),
		"circuit_breaker_state": p.breaker.State().String(),
	}
}

// Close drops all idle clients and tears down the shared transport.
func (p *ClientPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.transport.CloseIdleConnections()
	p.idle = nil
	p.active = 0
	return nil
}
