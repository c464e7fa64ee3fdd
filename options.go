package ui

import (
	"io/fs"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/cubic-dev/ui/pkg/endpoint"
	"github.com/cubic-dev/ui/pkg/prefetch"
	"github.com/cubic-dev/ui/pkg/router"
	"github.com/cubic-dev/ui/pkg/server"
)

// Option configures an App.
type Option func(*App)

// WithRegistry sets the components that render endpoints.
func WithRegistry(reg *router.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithRenderer sets the page renderer (default: server.JSONRenderer).
func WithRenderer(r server.Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithErrorHandler sets the handler for failed page requests.
func WithErrorHandler(h server.ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithAPI sets the function producing the API client handed to hooks.
func WithAPI(fn func(r *http.Request) any) Option {
	return func(a *App) {
		a.api = fn
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithFS replaces the source file system (default: os.DirFS of the
// configured source path).
func WithFS(fsys fs.FS) Option {
	return func(a *App) {
		a.fsys = fsys
	}
}

// WithLoader replaces the manifest loader chosen from configuration.
func WithLoader(l endpoint.Loader) Option {
	return func(a *App) {
		a.loader = l
	}
}

// WithEndpoints adds explicit endpoints. They win over manifest and
// discovered endpoints with the same route.
func WithEndpoints(eps ...endpoint.Endpoint) Option {
	return func(a *App) {
		a.explicit = append(a.explicit, eps...)
	}
}

// WithStore sets the per-request store constructor.
func WithStore(fn func(rc *prefetch.RenderContext) prefetch.Store) Option {
	return func(a *App) {
		a.newStore = fn
	}
}

// Use adds hook middleware after the built-in recovery, tracing and
// metrics middleware.
func Use(mw ...prefetch.Middleware) Option {
	return func(a *App) {
		a.middleware = append(a.middleware, mw...)
	}
}

// WithTracerProvider sets the tracer provider for hook spans
// (default: the global provider).
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *App) {
		a.tracerProvider = tp
	}
}

// WithHTTPMiddleware adds HTTP middleware around every route.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddleware = append(a.httpMiddleware, mw...)
	}
}
