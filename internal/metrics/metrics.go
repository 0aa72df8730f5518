// Package metrics defines the Prometheus collectors for the catalog UI.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures metric registration.
type Config struct {
	// Namespace is the metrics namespace (default: "uikit").
	Namespace string

	// Buckets are the histogram buckets for bundle request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "uikit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the registered collectors.
type Metrics struct {
	catalogLoads     *prometheus.CounterVec
	selectionToggles *prometheus.CounterVec
	bundleRequests   *prometheus.CounterVec
	bundleDuration   prometheus.Histogram
	activePages      prometheus.Gauge
}

// New registers the collectors and returns them.
func New(opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		catalogLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog loads by outcome (ok, empty, malformed, unreachable)",
		}, []string{"outcome"}),

		selectionToggles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "selection_toggles_total",
			Help:      "Template selection toggles by resulting action",
		}, []string{"action"}),

		bundleRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "bundle_requests_total",
			Help:      "Bundle requests by outcome",
		}, []string{"outcome"}),

		bundleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "bundle_request_duration_seconds",
			Help:      "Duration of calls to the packaging service",
			Buckets:   cfg.Buckets,
		}),

		activePages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "active_pages",
			Help:      "Page states currently held in memory",
		}),
	}
}

// CatalogLoaded counts one catalog load.
func (m *Metrics) CatalogLoaded(outcome string) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(outcome).Inc()
}

// SelectionToggled counts one toggle; selected is the state after the toggle.
func (m *Metrics) SelectionToggled(selected bool) {
	if m == nil {
		return
	}
	action := "remove"
	if selected {
		action = "add"
	}
	m.selectionToggles.WithLabelValues(action).Inc()
}

// BundleRequested counts one bundle request. A zero duration means no call
// reached the packaging service.
func (m *Metrics) BundleRequested(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.bundleRequests.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.bundleDuration.Observe(d.Seconds())
	}
}

// PagesActive sets the active page gauge.
func (m *Metrics) PagesActive(n int) {
	if m == nil {
		return
	}
	m.activePages.Set(float64(n))
}
