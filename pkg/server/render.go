package server

import (
	"encoding/json"
	"net/http"

	"github.com/cubic-dev/ui/pkg/prefetch"
)

// Renderer writes the response for a prefetched page.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, app any, rc *prefetch.RenderContext) error
}

// RendererFunc is a function adapter for Renderer.
type RendererFunc func(w http.ResponseWriter, r *http.Request, app any, rc *prefetch.RenderContext) error

// Render implements Renderer.
func (f RendererFunc) Render(w http.ResponseWriter, r *http.Request, app any, rc *prefetch.RenderContext) error {
	return f(w, r, app, rc)
}

// routed is implemented by application handles that know their route,
// such as *router.Navigator.
type routed interface {
	CurrentRoute() prefetch.Route
}

// jsonPage is the JSONRenderer response body.
type jsonPage struct {
	Route  string            `json:"route,omitempty"`
	Path   string            `json:"path,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	State  map[string]any    `json:"state"`
}

// JSONRenderer renders the prefetched state as JSON. It is meant for
// debugging and for clients that hydrate from data only.
var JSONRenderer = RendererFunc(func(w http.ResponseWriter, r *http.Request, app any, rc *prefetch.RenderContext) error {
	page := jsonPage{State: rc.State}
	if page.State == nil {
		page.State = map[string]any{}
	}
	if app, ok := app.(routed); ok {
		route := app.CurrentRoute()
		page.Route = route.Endpoint.Route
		page.Path = route.Path
		page.Params = route.Params
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method == http.MethodHead {
		return nil
	}
	return json.NewEncoder(w).Encode(page)
})
