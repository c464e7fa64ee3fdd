package endpoint

import "context"

// Endpoint describes one routable page.
type Endpoint struct {
	// Route is the URL pattern (e.g., "/blog/post", "/blog/:id").
	Route string `json:"route" yaml:"route"`

	// View is the view file relative to the source root (e.g., "sites/blog/post.vue").
	View string `json:"view,omitempty" yaml:"view,omitempty"`

	// File references the handler serving the endpoint. File-derived
	// endpoints all share the configured parent handler.
	File string `json:"file" yaml:"file"`
}

// Source is the capability a host router depends on: a readable endpoint
// table that can be rebuilt in place.
type Source interface {
	// Endpoints returns the currently published table.
	Endpoints() []Endpoint

	// Rebuild re-runs discovery and replaces the published table.
	Rebuild(ctx context.Context) error
}

// Loader supplies explicit endpoints, e.g. from a manifest file.
type Loader interface {
	Load(ctx context.Context) ([]Endpoint, error)
}

// LoaderFunc is a function adapter for Loader.
type LoaderFunc func(ctx context.Context) ([]Endpoint, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context) ([]Endpoint, error) {
	return f(ctx)
}
