package router

import (
	"slices"

	"github.com/cubic-dev/ui/pkg/endpoint"
	"github.com/cubic-dev/ui/pkg/prefetch"
	"github.com/cubic-dev/ui/pkg/routepath"
)

// ErrNotFound is reported by a navigator whose location matches no endpoint.
var ErrNotFound = prefetch.ErrNotFound

// Registry maps endpoints to the components that render them.
type Registry struct {
	// Views maps a view file (endpoint View) to its page component.
	Views map[string]prefetch.Node

	// Files maps a handler reference (endpoint File) to its page component.
	// Used for endpoints whose view is unset or unregistered.
	Files map[string]prefetch.Node

	// Layouts maps a route prefix ("/", "/blog") to the layout wrapping
	// every page below it.
	Layouts map[string]prefetch.Node
}

// component returns the page component for ep, or nil.
func (reg *Registry) component(ep endpoint.Endpoint) prefetch.Node {
	if reg == nil {
		return nil
	}
	if ep.View != "" {
		if n, ok := reg.Views[ep.View]; ok {
			return n
		}
	}
	return reg.Files[ep.File]
}

// Match is the result of matching a path.
type Match struct {
	// Endpoint is the matched endpoint descriptor.
	Endpoint endpoint.Endpoint

	// Component is the page component, or nil when none is registered.
	Component prefetch.Node

	// Layouts are the layouts along the matched path, root to leaf.
	Layouts []prefetch.Node

	// Params are the decoded route parameters.
	Params map[string]string
}

// Components returns the layouts followed by the page component.
func (m *Match) Components() []prefetch.Node {
	out := slices.Clone(m.Layouts)
	if m.Component != nil {
		out = append(out, m.Component)
	}
	return out
}

// Router matches paths against an immutable endpoint table.
// It is safe for concurrent use.
type Router struct {
	root      *node
	endpoints []endpoint.Endpoint
}

// New builds a router from endpoints. When two patterns occupy the same
// tree position (e.g., /a/:id and /a/:slug) the first one is kept.
func New(endpoints []endpoint.Endpoint, reg *Registry) *Router {
	r := &Router{root: newNode("")}

	if reg != nil {
		for prefix, layout := range reg.Layouts {
			r.root.insert(prefix).layout = layout
		}
	}

	for _, ep := range endpoints {
		n := r.root.insert(ep.Route)
		if n.page != nil {
			continue
		}
		n.page = &page{endpoint: ep, component: reg.component(ep)}
		r.endpoints = append(r.endpoints, ep)
	}
	return r
}

// Endpoints returns the routed endpoints in table order.
func (r *Router) Endpoints() []endpoint.Endpoint {
	return slices.Clone(r.endpoints)
}

// Len returns the number of routed endpoints.
func (r *Router) Len() int {
	return len(r.endpoints)
}

// Match finds the endpoint for a canonical path.
// It returns false when no endpoint matches or a parameter cannot be decoded.
func (r *Router) Match(path string) (*Match, bool) {
	m, err := r.match(path)
	return m, err == nil
}

func (r *Router) match(path string) (*Match, error) {
	raw := make(map[string]string)
	leaf, trail, ok := r.root.match(splitPath(path), raw, nil)
	if !ok {
		return nil, ErrNotFound
	}

	params := make(map[string]string, len(raw))
	for name, value := range raw {
		decoded, err := routepath.DecodeSegment(value, leaf.isCatchAll && name == leaf.paramName)
		if err != nil {
			return nil, err
		}
		params[name] = decoded
	}

	m := &Match{
		Endpoint:  leaf.page.endpoint,
		Component: leaf.page.component,
		Params:    params,
	}
	for _, n := range trail {
		if n.layout != nil {
			m.Layouts = append(m.Layouts, n.layout)
		}
	}
	return m, nil
}

// Navigator returns a new per-request navigator.
func (r *Router) Navigator() *Navigator {
	return &Navigator{router: r}
}
