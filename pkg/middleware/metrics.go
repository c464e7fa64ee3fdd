package middleware

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cubic-dev/ui/internal/errors"
	"github.com/cubic-dev/ui/pkg/prefetch"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "cubic").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
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
		Namespace: "cubic",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus collectors.
type metrics struct {
	hooksTotal       *prometheus.CounterVec
	hookDuration     *prometheus.HistogramVec
	prefetchTotal    *prometheus.CounterVec
	prefetchDuration *prometheus.HistogramVec
	rebuildsTotal    *prometheus.CounterVec
	rebuildDuration  prometheus.Histogram
	endpoints        prometheus.Gauge
}

// globalMetrics is the singleton metrics instance, created by the first
// call to Prometheus.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		hooksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hooks_total",
			Help:        "Total number of data hook invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "status"}),

		hookDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hook_duration_seconds",
			Help:        "Data hook duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		prefetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "prefetch_total",
			Help:        "Total number of prefetch runs",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		prefetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "prefetch_duration_seconds",
			Help:        "Prefetch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		rebuildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rebuilds_total",
			Help:        "Total number of endpoint table rebuilds",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		rebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rebuild_duration_seconds",
			Help:        "Endpoint rebuild duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		endpoints: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "endpoints",
			Help:        "Number of endpoints in the published table",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates hook middleware that records invocation counts and
// durations. Metrics are registered once; options of later calls are
// ignored.
func Prometheus(opts ...MetricsOption) prefetch.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return prefetch.MiddlewareFunc(func(ctx context.Context, call *prefetch.Call, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)
		m.hookDuration.WithLabelValues(call.Component).Observe(time.Since(start).Seconds())
		m.hooksTotal.WithLabelValues(call.Component, status(err)).Inc()
		return err
	})
}

// ObservePrefetch records a finished prefetch run. It has the
// prefetch.Observer signature and is a no-op until Prometheus is called.
func ObservePrefetch(route string, duration time.Duration, err error) {
	m := current()
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.prefetchDuration.WithLabelValues(route).Observe(duration.Seconds())
	m.prefetchTotal.WithLabelValues(route, status(err)).Inc()
}

// RecordRebuild records an endpoint rebuild. count is the published table
// size and is ignored on failure.
func RecordRebuild(count int, duration time.Duration, err error) {
	m := current()
	if m == nil {
		return
	}
	m.rebuildDuration.Observe(duration.Seconds())
	m.rebuildsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.endpoints.Set(float64(count))
	}
}

func current() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}

// status maps an error to a low-cardinality label.
func status(err error) string {
	if err == nil {
		return "success"
	}
	return categorizeError(err)
}

// categorizeError returns a category for the error.
func categorizeError(err error) string {
	switch errors.CodeOf(err) {
	case "E100":
		return "discovery"
	case "E110":
		return "resolution"
	case "E111":
		return "not_found"
	case "E112":
		return "hook"
	case "E113":
		return "timeout"
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case stderrors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
