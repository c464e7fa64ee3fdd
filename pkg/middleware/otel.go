package middleware

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cubic-dev/ui/pkg/prefetch"
)

// Default tracer name.
const defaultTracerName = "cubic"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "cubic").
	TracerName string

	// TracerProvider provides the tracer.
	// Default: the global provider (otel.GetTracerProvider()).
	TracerProvider trace.TracerProvider

	// IncludeRoute includes the request path and query in spans.
	// Enabled by default.
	IncludeRoute bool

	// Filter determines which hook calls to trace.
	// If nil, all calls are traced.
	Filter func(call *prefetch.Call) bool

	// AttributeExtractor adds custom attributes for each traced call.
	AttributeExtractor func(call *prefetch.Call) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeRoute enables/disables including the request path in spans.
func WithIncludeRoute(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeRoute = include
	}
}

// WithCallFilter sets a filter function for hook calls.
func WithCallFilter(filter func(call *prefetch.Call) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(call *prefetch.Call) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:   defaultTracerName,
		IncludeRoute: true,
	}
}

// OpenTelemetry creates hook middleware that opens one span per hook call.
//
// The span carries the component name, the matched endpoint route and the
// component depth, records the hook error and is the parent of any span the
// hook starts from its context.
//
// The global tracer provider is used unless WithTracerProvider is given.
// Configure it in main() before serving:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) prefetch.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	config.tracer = tp.Tracer(config.TracerName)

	return prefetch.MiddlewareFunc(func(ctx context.Context, call *prefetch.Call, next func(context.Context) error) error {
		if config.Filter != nil && !config.Filter(call) {
			return next(ctx)
		}

		attrs := []attribute.KeyValue{
			attribute.String("cubic.component", call.Component),
			attribute.String("cubic.route", call.Route.Endpoint.Route),
			attribute.Int("cubic.depth", call.Depth),
		}
		if config.IncludeRoute {
			attrs = append(attrs, attribute.String("cubic.path", call.Route.Path))
			if len(call.Route.Query) > 0 {
				attrs = append(attrs, attribute.String("cubic.query", call.Route.Query.Encode()))
			}
		}
		for name, value := range call.Route.Params {
			attrs = append(attrs, attribute.String("cubic.param."+name, value))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(call)...)
		}

		spanCtx, span := config.tracer.Start(ctx, formatSpanName(call),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next(spanCtx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

// SpanFromContext returns the hook span of ctx. Inside a traced hook it
// is the span opened for the hook; otherwise it is a no-op span.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// formatSpanName creates a span name from the call.
func formatSpanName(call *prefetch.Call) string {
	name := call.Component
	if name == "" {
		name = "anonymous@" + strconv.Itoa(call.Depth)
	}
	return fmt.Sprintf("cubic.hook %s", name)
}
