package prefetch

import "context"

// Call describes one hook invocation.
type Call struct {
	// Component is the name of the component owning the hook.
	Component string

	// Route is the resolved route of the request.
	Route Route

	// Depth is the component depth below its top-level matched component.
	Depth int
}

// Middleware wraps hook invocations.
type Middleware interface {
	Handle(ctx context.Context, call *Call, next func(ctx context.Context) error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(ctx context.Context, call *Call, next func(ctx context.Context) error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, call *Call, next func(ctx context.Context) error) error {
	return f(ctx, call, next)
}

// Compose builds a chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func Compose(ctx context.Context, call *Call, mw []Middleware, handler func(ctx context.Context) error) error {
	if len(mw) == 0 {
		return handler(ctx)
	}

	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func(ctx context.Context) error {
			return m.Handle(ctx, call, next)
		}
	}

	return chain(ctx)
}

// Chain combines multiple middleware in order.
func Chain(mw ...Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, call *Call, next func(ctx context.Context) error) error {
		return Compose(ctx, call, mw, next)
	})
}

// Only applies mw to calls for which condition returns true.
func Only(condition func(call *Call) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, call *Call, next func(ctx context.Context) error) error {
		if !condition(call) {
			return next(ctx)
		}
		return mw.Handle(ctx, call, next)
	})
}
