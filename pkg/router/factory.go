package router

import (
	"sync/atomic"

	"github.com/cubic-dev/ui/pkg/prefetch"
	"github.com/cubic-dev/ui/pkg/store"
)

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithStore sets the per-request store constructor.
// Default: an empty store.New store.
func WithStore(fn func(rc *prefetch.RenderContext) prefetch.Store) FactoryOption {
	return func(f *Factory) {
		f.newStore = fn
	}
}

// WithApp sets the application constructor. Default: the navigator itself.
func WithApp(fn func(rc *prefetch.RenderContext, nav *Navigator) any) FactoryOption {
	return func(f *Factory) {
		f.newApp = fn
	}
}

// Factory creates per-request application instances over the current
// router. Swap replaces the router atomically; requests already in flight
// keep the router they started with.
type Factory struct {
	current  atomic.Pointer[Router]
	newStore func(rc *prefetch.RenderContext) prefetch.Store
	newApp   func(rc *prefetch.RenderContext, nav *Navigator) any
}

var _ prefetch.Factory = (*Factory)(nil)

// NewFactory creates a factory over r.
func NewFactory(r *Router, opts ...FactoryOption) *Factory {
	f := &Factory{
		newStore: func(*prefetch.RenderContext) prefetch.Store {
			return store.New(nil)
		},
		newApp: func(_ *prefetch.RenderContext, nav *Navigator) any {
			return nav
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	if r == nil {
		r = New(nil, nil)
	}
	f.current.Store(r)
	return f
}

// Swap replaces the router.
func (f *Factory) Swap(r *Router) {
	f.current.Store(r)
}

// Router returns the current router.
func (f *Factory) Router() *Router {
	return f.current.Load()
}

// CreateApp implements prefetch.Factory.
func (f *Factory) CreateApp(rc *prefetch.RenderContext) (*prefetch.Instance, error) {
	nav := f.current.Load().Navigator()
	return &prefetch.Instance{
		App:    f.newApp(rc, nav),
		Router: nav,
		Store:  f.newStore(rc),
	}, nil
}
