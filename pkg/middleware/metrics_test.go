package middleware

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cubic-dev/ui/internal/errors"
	"github.com/cubic-dev/ui/pkg/prefetch"
)

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

func TestPrometheusRecordsHooks(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(reg), WithNamespace("test"))

	call := &prefetch.Call{Component: "Post"}
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("E112") }

	if err := mw.Handle(context.Background(), call, ok); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if err := mw.Handle(context.Background(), call, fail); err == nil {
		t.Fatal("Handle() should propagate the hook error")
	}

	m := globalMetrics
	if got := testutil.ToFloat64(m.hooksTotal.WithLabelValues("Post", "success")); got != 1 {
		t.Errorf("hooks_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.hooksTotal.WithLabelValues("Post", "hook")); got != 1 {
		t.Errorf("hooks_total{hook} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.hookDuration); got != 1 {
		t.Errorf("hook_duration_seconds series = %d, want 1", got)
	}
}

func TestPrometheusRegistersOnce(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	_ = Prometheus(WithRegistry(reg))
	first := globalMetrics
	_ = Prometheus(WithRegistry(reg))

	if globalMetrics != first {
		t.Error("second Prometheus() call must reuse the registered metrics")
	}
}

func TestObservePrefetch(t *testing.T) {
	resetGlobalMetricsForTest()

	// No-op before initialization.
	ObservePrefetch("/", time.Millisecond, nil)

	_ = Prometheus(WithRegistry(prometheus.NewRegistry()))
	m := globalMetrics

	ObservePrefetch("/blog/:id", 5*time.Millisecond, nil)
	ObservePrefetch("/blog/:id", 5*time.Millisecond, errors.New("E113"))
	ObservePrefetch("", time.Millisecond, errors.New("E111"))

	tests := []struct {
		route, status string
		want          float64
	}{
		{"/blog/:id", "success", 1},
		{"/blog/:id", "timeout", 1},
		{"unmatched", "not_found", 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.prefetchTotal.WithLabelValues(tt.route, tt.status)); got != tt.want {
			t.Errorf("prefetch_total{%s,%s} = %v, want %v", tt.route, tt.status, got, tt.want)
		}
	}
}

func TestRecordRebuild(t *testing.T) {
	resetGlobalMetricsForTest()
	_ = Prometheus(WithRegistry(prometheus.NewRegistry()))
	m := globalMetrics

	RecordRebuild(12, time.Millisecond, nil)
	RecordRebuild(99, time.Millisecond, errors.New("E100"))

	if got := testutil.ToFloat64(m.endpoints); got != 12 {
		t.Errorf("endpoints = %v, want 12 (failed rebuild must not change it)", got)
	}
	if got := testutil.ToFloat64(m.rebuildsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("rebuilds_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rebuildsTotal.WithLabelValues("discovery")); got != 1 {
		t.Errorf("rebuilds_total{discovery} = %v, want 1", got)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("E100"), "discovery"},
		{errors.New("E110"), "resolution"},
		{errors.New("E111"), "not_found"},
		{errors.New("E112").Wrap(stderrors.New("x")), "hook"},
		{errors.New("E113"), "timeout"},
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{stderrors.New("boom"), "error"},
	}

	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMetricsConfigDefaults(t *testing.T) {
	config := defaultMetricsConfig()
	if config.Namespace != "cubic" {
		t.Errorf("Namespace = %q, want cubic", config.Namespace)
	}

	labels := prometheus.Labels{"env": "test"}
	for _, opt := range []MetricsOption{
		WithNamespace("site"),
		WithSubsystem("ssr"),
		WithConstLabels(labels),
		WithBuckets([]float64{1, 2}),
	} {
		opt(&config)
	}
	if config.Namespace != "site" || config.Subsystem != "ssr" || config.ConstLabels["env"] != "test" || len(config.Buckets) != 2 {
		t.Errorf("options not applied: %+v", config)
	}
}
