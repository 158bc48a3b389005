// Package metrics defines the observability interfaces for tcpkit.
//
// The server records connection and reactor lifecycle events through the
// ServerMetrics interface. Implementations are pluggable; the prometheus
// subpackage provides one backed by a process-wide registry. Passing a
// nil interface disables collection with zero overhead.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registryMu sync.RWMutex
	registry   *prometheus.Registry
)

// InitRegistry creates the process-wide Prometheus registry with the
// standard Go and process collectors. Calling it more than once is a
// no-op. Metrics constructors return nil until this has been called.
func InitRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	if registry != nil {
		return
	}
	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IsEnabled reports whether the registry has been initialized.
func IsEnabled() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry != nil
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry
}
