// Package middleware provides observability middleware for the prefetch
// pipeline.
//
// This package includes:
//   - OpenTelemetry tracing of data hooks
//   - Prometheus metrics for hooks, prefetch runs and endpoint rebuilds
//   - Panic recovery for hooks
//
// # OpenTelemetry Middleware
//
// Every hook invocation gets a span carrying the component, route and
// depth. The span context is passed to the hook, so API calls made with the
// hook's context join the trace:
//
//	p := prefetch.New(factory,
//	    prefetch.Use(middleware.OpenTelemetry(
//	        middleware.WithTracerName("my-site"),
//	    )),
//	)
//
// # Prometheus Metrics
//
// Metrics collected (namespace "cubic" by default):
//   - cubic_hooks_total: hook invocations by component and status
//   - cubic_hook_duration_seconds: hook duration by component
//   - cubic_prefetch_total: prefetch runs by route and status
//   - cubic_prefetch_duration_seconds: prefetch duration by route
//   - cubic_rebuilds_total: endpoint rebuilds by status
//   - cubic_endpoints: size of the published endpoint table
//
//	p := prefetch.New(factory,
//	    prefetch.Use(middleware.Prometheus()),
//	    prefetch.WithObserver(middleware.ObservePrefetch),
//	)
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware
