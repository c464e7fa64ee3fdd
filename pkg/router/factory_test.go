package router

import (
	"context"
	"testing"

	"github.com/cubic-dev/ui/internal/errors"
	"github.com/cubic-dev/ui/pkg/endpoint"
	"github.com/cubic-dev/ui/pkg/prefetch"
)

func TestFactoryWithPipeline(t *testing.T) {
	post := prefetch.NewLeaf("Post", func(ctx context.Context, p prefetch.Params, api any) error {
		p.Store.Set("post", p.Route.Param("id"))
		return nil
	})
	shell := prefetch.NewLeaf("Shell", func(ctx context.Context, p prefetch.Params, api any) error {
		p.Store.Set("nav", []string{"home", "blog"})
		return nil
	})

	r := New(table, &Registry{
		Views:   map[string]prefetch.Node{"sites/blog/[id].vue": post},
		Layouts: map[string]prefetch.Node{"/": shell},
	})
	p := prefetch.New(NewFactory(r))

	rc := &prefetch.RenderContext{URL: "/blog/42"}
	app, err := p.Prefetch(context.Background(), rc)
	if err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}

	if rc.State["post"] != "42" {
		t.Errorf("State[post] = %v, want 42", rc.State["post"])
	}
	if _, ok := rc.State["nav"]; !ok {
		t.Error("layout hook did not run")
	}
	nav, ok := app.(*Navigator)
	if !ok {
		t.Fatalf("app = %T, want *Navigator", app)
	}
	if nav.CurrentRoute().Endpoint.Route != "/blog/:id" {
		t.Errorf("app route = %q", nav.CurrentRoute().Endpoint.Route)
	}
}

func TestFactoryNotFound(t *testing.T) {
	p := prefetch.New(NewFactory(New(table, nil)))

	_, err := p.Prefetch(context.Background(), &prefetch.RenderContext{URL: "/nope"})
	if !errors.HasCode(err, "E111") {
		t.Errorf("Prefetch() error = %v, want E111", err)
	}
}

func TestFactorySwap(t *testing.T) {
	f := NewFactory(nil)
	p := prefetch.New(f)
	ctx := context.Background()

	if _, err := p.Prefetch(ctx, &prefetch.RenderContext{URL: "/fresh"}); !errors.HasCode(err, "E111") {
		t.Fatalf("before swap: error = %v, want E111", err)
	}

	f.Swap(New([]endpoint.Endpoint{ep("/fresh", "sites/fresh.vue")}, nil))

	if _, err := p.Prefetch(ctx, &prefetch.RenderContext{URL: "/fresh"}); err != nil {
		t.Fatalf("after swap: error = %v", err)
	}
	if f.Router().Len() != 1 {
		t.Errorf("Router().Len() = %d, want 1", f.Router().Len())
	}
}

func TestFactoryOptions(t *testing.T) {
	seeded := func(rc *prefetch.RenderContext) prefetch.Store {
		s := newSeededStore()
		s.Set("url", rc.URL)
		return s
	}
	f := NewFactory(New(table, nil),
		WithStore(seeded),
		WithApp(func(rc *prefetch.RenderContext, nav *Navigator) any { return "custom" }),
	)

	rc := &prefetch.RenderContext{URL: "/about"}
	app, err := prefetch.New(f).Prefetch(context.Background(), rc)
	if err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
	if app != "custom" {
		t.Errorf("app = %v, want custom", app)
	}
	if rc.State["url"] != "/about" {
		t.Errorf("State = %v", rc.State)
	}
}

// mapStore is a minimal prefetch.Store for option tests.
type mapStore map[string]any

func newSeededStore() mapStore { return mapStore{} }

func (m mapStore) Get(k string) (any, bool) {
	v, ok := m[k]
	return v, ok
}

func (m mapStore) Set(k string, v any) { m[k] = v }

func (m mapStore) Snapshot() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
