package prefetch

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cubic-dev/ui/internal/errors"
	"github.com/cubic-dev/ui/pkg/endpoint"
	"github.com/cubic-dev/ui/pkg/store"
)

// fakeRouter is a Router over a fixed component list.
type fakeRouter struct {
	readyErr error
	route    Route
	nodes    []Node
	pushed   string
}

func (r *fakeRouter) Push(url string)                 { r.pushed = url }
func (r *fakeRouter) Ready(ctx context.Context) error { return r.readyErr }
func (r *fakeRouter) MatchedComponents() []Node       { return r.nodes }
func (r *fakeRouter) CurrentRoute() Route             { return r.route }

func newFactory(r *fakeRouter) (Factory, *store.Store) {
	s := store.New(nil)
	return FactoryFunc(func(rc *RenderContext) (*Instance, error) {
		return &Instance{App: "app", Router: r, Store: s}, nil
	}), s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setHook(key string, value any, delay time.Duration) Hook {
	return func(ctx context.Context, p Params, api any) error {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		p.Store.Set(key, value)
		return nil
	}
}

func TestPrefetchWaitsForAllBranches(t *testing.T) {
	r := &fakeRouter{
		route: Route{Path: "/", Endpoint: endpoint.Endpoint{Route: "/"}},
		nodes: []Node{
			NewLeaf("Fast", setHook("fast", 1, 10*time.Millisecond)),
			NewLeaf("Slow", setHook("slow", 2, 60*time.Millisecond)),
		},
	}
	factory, _ := newFactory(r)
	p := New(factory, WithLogger(quietLogger()))

	rc := &RenderContext{URL: "/"}
	start := time.Now()
	app, err := p.Prefetch(context.Background(), rc)
	if err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}

	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("Prefetch() returned after %v, before the slow branch", elapsed)
	}
	if app != "app" {
		t.Errorf("Prefetch() app = %v, want app", app)
	}
	if rc.State["fast"] != 1 || rc.State["slow"] != 2 {
		t.Errorf("State = %v, want both branches", rc.State)
	}
	if r.pushed != "/" {
		t.Errorf("pushed = %q, want /", r.pushed)
	}
}

func TestPrefetchBranchesRunConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	rendezvous := func(ctx context.Context, p Params, api any) error {
		wg.Done()
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r := &fakeRouter{nodes: []Node{NewLeaf("A", rendezvous), NewLeaf("B", rendezvous)}}
	factory, _ := newFactory(r)
	p := New(factory, WithTimeout(time.Second), WithLogger(quietLogger()))

	if _, err := p.Prefetch(context.Background(), &RenderContext{URL: "/"}); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
}

func TestPrefetchHookFailure(t *testing.T) {
	hookErr := stderrors.New("backend down")
	r := &fakeRouter{
		nodes: []Node{
			NewLeaf("Good", setHook("good", true, 0)),
			NewLeaf("Bad", func(ctx context.Context, p Params, api any) error { return hookErr }),
		},
	}
	factory, _ := newFactory(r)
	p := New(factory, WithLogger(quietLogger()))

	rc := &RenderContext{URL: "/"}
	app, err := p.Prefetch(context.Background(), rc)
	if err == nil {
		t.Fatal("Prefetch() expected error")
	}
	if app != nil {
		t.Errorf("Prefetch() app = %v, want nil", app)
	}
	if !errors.HasCode(err, "E112") {
		t.Errorf("error code = %q, want E112", errors.CodeOf(err))
	}
	if !stderrors.Is(err, hookErr) {
		t.Errorf("error should wrap hook error, got %v", err)
	}
	if rc.State != nil {
		t.Errorf("State = %v, want nil after failure", rc.State)
	}
}

func TestPrefetchFailureCancelsSiblings(t *testing.T) {
	canceled := make(chan struct{})
	r := &fakeRouter{
		nodes: []Node{
			NewLeaf("Bad", func(ctx context.Context, p Params, api any) error {
				return stderrors.New("boom")
			}),
			NewLeaf("Waiting", func(ctx context.Context, p Params, api any) error {
				<-ctx.Done()
				close(canceled)
				return ctx.Err()
			}),
		},
	}
	factory, _ := newFactory(r)
	p := New(factory, WithLogger(quietLogger()))

	_, err := p.Prefetch(context.Background(), &RenderContext{URL: "/"})
	if !errors.HasCode(err, "E112") {
		t.Fatalf("Prefetch() error = %v, want E112", err)
	}

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Error("sibling hook was not canceled")
	}
}

func TestPrefetchOnlyFirstLeafHook(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	record := func(name string) Hook {
		return func(ctx context.Context, p Params, api any) error {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, name)
			return nil
		}
	}

	r := &fakeRouter{
		nodes: []Node{
			NewComposition("Layout", nil,
				Child{Name: "header", Node: NewLeaf("Header", nil)},
				Child{Name: "main", Node: NewLeaf("First", record("First"))},
				Child{Name: "aside", Node: NewLeaf("Second", record("Second"))},
			),
		},
	}
	factory, _ := newFactory(r)
	p := New(factory, WithLogger(quietLogger()))

	if _, err := p.Prefetch(context.Background(), &RenderContext{URL: "/"}); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
	if len(calls) != 1 || calls[0] != "First" {
		t.Errorf("calls = %v, want [First]", calls)
	}
}

func TestPrefetchAwaitsCompositionHook(t *testing.T) {
	r := &fakeRouter{
		nodes: []Node{
			NewComposition("Layout", setHook("layout", "ready", 30*time.Millisecond),
				Child{Name: "main", Node: NewLeaf("Page", setHook("page", "ready", 0))},
			),
		},
	}
	factory, _ := newFactory(r)
	p := New(factory, WithLogger(quietLogger()))

	rc := &RenderContext{URL: "/"}
	if _, err := p.Prefetch(context.Background(), rc); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
	if rc.State["layout"] != "ready" || rc.State["page"] != "ready" {
		t.Errorf("State = %v, want layout and page", rc.State)
	}
}

func TestPrefetchCompositionHookFailure(t *testing.T) {
	r := &fakeRouter{
		nodes: []Node{
			NewComposition("Layout", func(ctx context.Context, p Params, api any) error {
				return stderrors.New("layout failed")
			}),
		},
	}
	factory, _ := newFactory(r)
	p := New(factory, WithLogger(quietLogger()))

	if _, err := p.Prefetch(context.Background(), &RenderContext{URL: "/"}); !errors.HasCode(err, "E112") {
		t.Errorf("Prefetch() error = %v, want E112", err)
	}
}

func TestPrefetchTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	r := &fakeRouter{
		nodes: []Node{
			// Ignores cancellation.
			NewLeaf("Hung", func(ctx context.Context, p Params, api any) error {
				<-release
				return nil
			}),
		},
	}
	factory, _ := newFactory(r)
	p := New(factory, WithTimeout(20*time.Millisecond), WithLogger(quietLogger()))

	rc := &RenderContext{URL: "/slow"}
	start := time.Now()
	_, err := p.Prefetch(context.Background(), rc)
	if !errors.HasCode(err, "E113") {
		t.Fatalf("Prefetch() error = %v, want E113", err)
	}
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error should wrap context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Prefetch() took %v, want prompt timeout", elapsed)
	}
	if rc.State != nil {
		t.Errorf("State = %v, want nil after timeout", rc.State)
	}
}

func TestPrefetchNotFound(t *testing.T) {
	r := &fakeRouter{readyErr: fmt.Errorf("no match for /missing: %w", ErrNotFound)}
	factory, _ := newFactory(r)
	p := New(factory, WithLogger(quietLogger()))

	_, err := p.Prefetch(context.Background(), &RenderContext{URL: "/missing"})
	if !errors.HasCode(err, "E111") {
		t.Fatalf("Prefetch() error = %v, want E111", err)
	}
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("error should wrap ErrNotFound, got %v", err)
	}
}

func TestPrefetchResolutionError(t *testing.T) {
	r := &fakeRouter{readyErr: stderrors.New("guard rejected")}
	factory, _ := newFactory(r)
	p := New(factory, WithLogger(quietLogger()))

	if _, err := p.Prefetch(context.Background(), &RenderContext{URL: "/"}); !errors.HasCode(err, "E110") {
		t.Errorf("Prefetch() error = %v, want E110", err)
	}
}

func TestPrefetchFactoryError(t *testing.T) {
	factory := FactoryFunc(func(rc *RenderContext) (*Instance, error) {
		return nil, stderrors.New("no app")
	})
	p := New(factory, WithLogger(quietLogger()))

	if _, err := p.Prefetch(context.Background(), &RenderContext{URL: "/"}); !errors.HasCode(err, "E110") {
		t.Errorf("Prefetch() error = %v, want E110", err)
	}
}

func TestPrefetchPassesParams(t *testing.T) {
	route := Route{
		Path:     "/blog/42",
		Params:   map[string]string{"id": "42"},
		Endpoint: endpoint.Endpoint{Route: "/blog/:id"},
	}
	api := struct{ name string }{"client"}

	var gotID string
	var gotAPI any
	r := &fakeRouter{
		route: route,
		nodes: []Node{NewLeaf("Post", func(ctx context.Context, p Params, a any) error {
			gotID = p.Route.Param("id")
			gotAPI = a
			return nil
		})},
	}
	factory, _ := newFactory(r)
	p := New(factory, WithLogger(quietLogger()))

	if _, err := p.Prefetch(context.Background(), &RenderContext{URL: "/blog/42", API: api}); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
	if gotID != "42" {
		t.Errorf("Param(id) = %q, want 42", gotID)
	}
	if gotAPI != api {
		t.Errorf("api = %v, want %v", gotAPI, api)
	}
}

func TestPrefetchNoComponents(t *testing.T) {
	r := &fakeRouter{}
	factory, s := newFactory(r)
	s.Set("seed", 1)
	p := New(factory, WithLogger(quietLogger()))

	rc := &RenderContext{URL: "/"}
	if _, err := p.Prefetch(context.Background(), rc); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
	if rc.State["seed"] != 1 {
		t.Errorf("State = %v, want seeded store", rc.State)
	}
}

func TestPrefetchMiddleware(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return MiddlewareFunc(func(ctx context.Context, call *Call, next func(context.Context) error) error {
			order = append(order, name+":"+call.Component)
			return next(ctx)
		})
	}

	r := &fakeRouter{nodes: []Node{NewLeaf("Page", setHook("k", 1, 0))}}
	factory, _ := newFactory(r)
	p := New(factory, Use(mw("outer"), mw("inner")), WithLogger(quietLogger()))

	if _, err := p.Prefetch(context.Background(), &RenderContext{URL: "/"}); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
	want := []string{"outer:Page", "inner:Page"}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestPrefetchObserver(t *testing.T) {
	r := &fakeRouter{
		route: Route{Endpoint: endpoint.Endpoint{Route: "/about"}},
		nodes: []Node{NewLeaf("About", nil)},
	}
	factory, _ := newFactory(r)

	var gotRoute string
	var gotErr error
	calls := 0
	p := New(factory, WithLogger(quietLogger()), WithObserver(func(route string, d time.Duration, err error) {
		calls++
		gotRoute = route
		gotErr = err
	}))

	if _, err := p.Prefetch(context.Background(), &RenderContext{URL: "/about"}); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
	if calls != 1 || gotRoute != "/about" || gotErr != nil {
		t.Errorf("observer got calls=%d route=%q err=%v", calls, gotRoute, gotErr)
	}
}
