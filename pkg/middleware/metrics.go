// Package middleware provides driver options for observability: Prometheus
// metrics and OpenTelemetry tracing around query dispatch and render passes.
package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lumen-ui/lumen/pkg/driver"
)

// MetricsConfig configures the Prometheus metrics option.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "lumen").
	Namespace string

	// Subsystem is the metrics subsystem (default: "driver").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for query duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics option.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets for query duration.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "lumen",
		Subsystem: "driver",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// instruments holds the Prometheus instruments for one registry.
type instruments struct {
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	rendersTotal  prometheus.Counter
	renderPatches prometheus.Histogram
	renderSeconds prometheus.Histogram
}

// The default registry gets one shared instrument set; registering twice
// would panic. Custom registries get a fresh set per call.
var (
	globalInstruments *instruments
	globalMu          sync.Mutex
)

func newInstruments(config MetricsConfig) *instruments {
	factory := promauto.With(config.Registry)

	return &instruments{
		queriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "queries_total",
			Help:        "Total queries dispatched, by query type.",
			ConstLabels: config.ConstLabels,
		}, []string{"query_type"}),

		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "query_duration_seconds",
			Help:        "Query dispatch duration in seconds.",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"query_type"}),

		rendersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total render passes.",
			ConstLabels: config.ConstLabels,
		}),

		renderPatches: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_patches",
			Help:        "Patches produced per render pass.",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		renderSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render pass duration in seconds.",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// Prometheus returns a driver option that records query counts and latencies
// plus render counts, patch sizes, and durations.
//
// A query whose program halts parks its caller and is never counted as
// finished; only its start shows up in queries_total.
//
// Example:
//
//	d := driver.RunUI(comp, initial, engine,
//	    middleware.Prometheus(middleware.WithNamespace("myapp")),
//	)
func Prometheus(opts ...MetricsOption) driver.Option {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	var m *instruments
	if config.Registry == prometheus.DefaultRegisterer {
		globalMu.Lock()
		if globalInstruments == nil {
			globalInstruments = newInstruments(config)
		}
		m = globalInstruments
		globalMu.Unlock()
	} else {
		m = newInstruments(config)
	}

	mw := func(next driver.QueryFunc) driver.QueryFunc {
		return func(query any) any {
			qt := fmt.Sprintf("%T", query)
			m.queriesTotal.WithLabelValues(qt).Inc()
			start := time.Now()
			res := next(query)
			m.queryDuration.WithLabelValues(qt).Observe(time.Since(start).Seconds())
			return res
		}
	}
	observer := func(stats driver.RenderStats) {
		m.rendersTotal.Inc()
		m.renderPatches.Observe(float64(stats.Patches))
		m.renderSeconds.Observe(stats.Elapsed.Seconds())
	}

	return driver.Options(
		driver.WithMiddleware(mw),
		driver.WithRenderObserver(observer),
	)
}
