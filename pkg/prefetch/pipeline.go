package prefetch

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cubic-dev/ui/internal/errors"
)

// DefaultTimeout bounds a prefetch when no timeout option is given.
const DefaultTimeout = 10 * time.Second

// Observer is notified once per finished prefetch.
// route is the matched endpoint route, or "" when resolution failed.
type Observer func(route string, duration time.Duration, err error)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeout bounds every prefetch. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Use appends hook middleware.
func Use(mw ...Middleware) Option {
	return func(p *Pipeline) {
		p.middleware = append(p.middleware, mw...)
	}
}

// WithObserver registers an observer of finished prefetches.
func WithObserver(fn Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, fn)
	}
}

// Pipeline prefetches hook data for requests. It is safe for concurrent use.
type Pipeline struct {
	factory    Factory
	timeout    time.Duration
	logger     *slog.Logger
	middleware []Middleware
	observers  []Observer
}

// New creates a pipeline over factory.
func New(factory Factory, opts ...Option) *Pipeline {
	p := &Pipeline{
		factory: factory,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prefetch instantiates the application for rc, runs every reachable hook of
// the matched components and, on success, sets rc.State to the store
// snapshot and returns the application handle.
//
// Errors carry codes E110 (resolution failed), E111 (not found),
// E112 (hook failed) and E113 (timed out). On error rc.State is left unset.
// After a timeout, hooks that ignore their context may keep running and
// writing to the request's store; that store is discarded.
func (p *Pipeline) Prefetch(ctx context.Context, rc *RenderContext) (any, error) {
	start := time.Now()
	app, route, err := p.run(ctx, rc)
	for _, fn := range p.observers {
		fn(route, time.Since(start), err)
	}
	return app, err
}

func (p *Pipeline) run(ctx context.Context, rc *RenderContext) (any, string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	inst, err := p.factory.CreateApp(rc)
	if err != nil {
		return nil, "", errors.New("E110").WithDetail("creating app for " + rc.URL).Wrap(err)
	}

	inst.Router.Push(rc.URL)

	if err := await(ctx, inst.Router.Ready); err != nil {
		return nil, "", p.resolveError(ctx, rc.URL, err)
	}

	route := inst.Router.CurrentRoute()
	params := Params{Store: inst.Store, Route: route}

	g, gctx := errgroup.WithContext(ctx)
	for _, node := range inst.Router.MatchedComponents() {
		if node == nil {
			continue
		}
		node := node
		g.Go(func() error {
			return p.branch(gctx, node, params, rc.API)
		})
	}

	if err := await(ctx, func(context.Context) error { return g.Wait() }); err != nil {
		if timedOut(ctx) {
			err = p.timeoutError(rc.URL, err)
		}
		p.logger.Warn("prefetch failed",
			"url", rc.URL,
			"route", route.Endpoint.Route,
			"error", err)
		return nil, route.Endpoint.Route, err
	}

	rc.State = inst.Store.Snapshot()
	return inst.App, route.Endpoint.Route, nil
}

// branch runs the hooks of one top-level component sequentially.
func (p *Pipeline) branch(ctx context.Context, node Node, params Params, api any) error {
	var err error
	visit(node, 0, func(n Node, depth int) bool {
		err = p.invoke(ctx, n, depth, params, api)
		return err == nil
	})
	return err
}

func (p *Pipeline) invoke(ctx context.Context, n Node, depth int, params Params, api any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	call := &Call{Component: n.NodeName(), Route: params.Route, Depth: depth}
	hook := n.DataHook()
	err := Compose(ctx, call, p.middleware, func(ctx context.Context) error {
		return hook(ctx, params, api)
	})
	if err == nil {
		return nil
	}

	// Hooks aborted by a sibling failure report the context error; the
	// sibling's error is the one that surfaces.
	if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
		return err
	}

	p.logger.Warn("data hook failed",
		"component", call.Component,
		"route", params.Route.Endpoint.Route,
		"error", err)
	return errors.New("E112").WithDetail("component " + call.Component).Wrap(err)
}

func (p *Pipeline) resolveError(ctx context.Context, url string, err error) error {
	switch {
	case timedOut(ctx):
		return p.timeoutError(url, err)
	case stderrors.Is(err, ErrNotFound):
		return errors.New("E111").WithDetail(url).Wrap(err)
	default:
		return errors.New("E110").WithDetail(url).Wrap(err)
	}
}

func (p *Pipeline) timeoutError(url string, err error) error {
	return errors.New("E113").WithDetail(url + " after " + p.timeout.String()).Wrap(err)
}

func timedOut(ctx context.Context) bool {
	return stderrors.Is(ctx.Err(), context.DeadlineExceeded)
}

// await runs fn and returns its result, or the context error as soon as ctx
// is done, even if fn has not returned.
func await(ctx context.Context, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
