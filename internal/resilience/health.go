package resilience

import (
	"sync"
	"time"
)

// HealthStatus is a dependency's last observed condition.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthDown     HealthStatus = "down"
)

type serviceHealth struct {
	status      HealthStatus
	lastChecked time.Time
	lastError   string
}

// HealthRegistry tracks the condition of external dependencies so /health can
// report them without probing on every request.
type HealthRegistry struct {
	mu       sync.RWMutex
	services map[string]*serviceHealth
}

func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{services: make(map[string]*serviceHealth)}
}

// Register adds a dependency in a healthy state.
func (r *HealthRegistry) Register(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[name] = &serviceHealth{status: HealthHealthy, lastChecked: time.Now()}
}

// ReportSuccess marks a dependency healthy.
func (r *HealthRegistry) ReportSuccess(name string) {
	r.set(name, HealthHealthy, "")
}

// ReportFailure marks a dependency degraded with the failure reason.
func (r *HealthRegistry) ReportFailure(name string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.set(name, HealthDegraded, msg)
}

// ReportDown marks a dependency unavailable.
func (r *HealthRegistry) ReportDown(name string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.set(name, HealthDown, msg)
}

func (r *HealthRegistry) set(name string, status HealthStatus, lastError string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[name] = &serviceHealth{status: status, lastChecked: time.Now(), lastError: lastError}
}

// Status returns one dependency's condition.
func (r *HealthRegistry) Status(name string) HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sh, ok := r.services[name]; ok {
		return sh.status
	}
	return HealthDown
}

// Snapshot reports every registered dependency for the health endpoint.
func (r *HealthRegistry) Snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]any, len(r.services))
	for name, sh := range r.services {
		entry := map[string]any{
			"status":       string(sh.status),
			"last_checked": sh.lastChecked.UTC().Format(time.RFC3339),
		}
		if sh.lastError != "" {
			entry["last_error"] = sh.lastError
		}
		out[name] = entry
	}
	return out
}
