// Package metrics holds the process-wide Prometheus registry used by every
// collaborator's metrics implementation (pkg/metrics/prometheus). Grounded
// on dittofs's pkg/metrics package, which assumes an IsEnabled/GetRegistry
// pair wired up elsewhere in that tree; this file supplies that pair for
// curvefs-client.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and creates the process-wide
// registry. Safe to call more than once; later calls are no-ops once a
// registry already exists.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the process-wide registry, creating it if InitRegistry
// was never called. Collaborators should check IsEnabled first and pass a
// nil metrics implementation when it is false, per dittofs's zero-overhead
// convention.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return registry
}
