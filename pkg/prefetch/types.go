package prefetch

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"

	"github.com/cubic-dev/ui/pkg/endpoint"
)

// ErrNotFound is returned by a Router whose Ready cannot match a route.
var ErrNotFound = stderrors.New("route not found")

// Route is the resolved route handed to every hook.
type Route struct {
	// Path is the canonical request path.
	Path string

	// Query holds the parsed query string.
	Query url.Values

	// Params holds path parameters by name (e.g., "id" for /blog/:id).
	Params map[string]string

	// Endpoint is the matched endpoint descriptor.
	Endpoint endpoint.Endpoint
}

// Param returns the named path parameter, or "".
func (r Route) Param(name string) string {
	return r.Params[name]
}

// Params is the shared context passed to every hook of a request.
type Params struct {
	Store Store
	Route Route
}

// Store is the per-request state container filled by hooks.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Snapshot() map[string]any
}

// Router resolves a pushed URL to the matched component list.
type Router interface {
	// Push sets the router location. Errors surface from Ready.
	Push(url string)

	// Ready blocks until route-level resolution completes.
	// Unmatched routes return an error wrapping ErrNotFound.
	Ready(ctx context.Context) error

	// MatchedComponents returns the top-level components of the resolved
	// route, outermost first.
	MatchedComponents() []Node

	// CurrentRoute returns the resolved route.
	CurrentRoute() Route
}

// Instance is one application instantiated for a request.
type Instance struct {
	App    any
	Router Router
	Store  Store
}

// Factory creates a fresh Instance per request.
type Factory interface {
	CreateApp(rc *RenderContext) (*Instance, error)
}

// FactoryFunc is a function adapter for Factory.
type FactoryFunc func(rc *RenderContext) (*Instance, error)

// CreateApp implements Factory.
func (f FactoryFunc) CreateApp(rc *RenderContext) (*Instance, error) {
	return f(rc)
}

// RenderContext carries a request through prefetch and render.
type RenderContext struct {
	// URL is the requested URL (path and query).
	URL string

	// API is passed unchanged to every hook.
	API any

	// Request is the originating HTTP request, if any.
	Request *http.Request

	// State is set to the store snapshot after a successful prefetch.
	State map[string]any
}
