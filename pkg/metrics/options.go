package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option configures the metrics Manager.
type Option func(*Manager)

// WithNamespace sets the metric namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		m.namespace = namespace
	}
}

// WithSubsystem sets the metric subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		m.subsystem = subsystem
	}
}

// WithHistogramBuckets overrides the default latency histogram buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		m.histogramBuckets = buckets
	}
}

// WithRegistry registers all collectors against the given registerer instead
// of the Prometheus default.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		m.registry = reg
	}
}
