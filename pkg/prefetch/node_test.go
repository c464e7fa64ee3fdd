package prefetch

import (
	"context"
	"testing"
)

func noop(ctx context.Context, p Params, api any) error { return nil }

func TestPlan(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want []string
	}{
		{
			name: "leaf with hook",
			node: NewLeaf("Page", noop),
			want: []string{"Page"},
		},
		{
			name: "leaf without hook",
			node: NewLeaf("Static", nil),
			want: nil,
		},
		{
			name: "composition hook then first child hook",
			node: NewComposition("Layout", noop,
				Child{Name: "a", Node: NewLeaf("A", nil)},
				Child{Name: "b", Node: NewLeaf("B", noop)},
				Child{Name: "c", Node: NewLeaf("C", noop)},
			),
			want: []string{"Layout", "B"},
		},
		{
			name: "nested composition scanned before its own hook",
			node: NewComposition("Root", nil,
				Child{Name: "shell", Node: NewComposition("Shell", noop,
					Child{Name: "nav", Node: NewLeaf("Nav", noop)},
					Child{Name: "footer", Node: NewLeaf("Footer", noop)},
				)},
				Child{Name: "after", Node: NewLeaf("After", noop)},
			),
			want: []string{"Nav", "Shell"},
		},
		{
			name: "nested composition without hook does not stop the scan",
			node: NewComposition("Root", nil,
				Child{Name: "group", Node: NewComposition("Group", nil,
					Child{Name: "x", Node: NewLeaf("X", noop)},
				)},
				Child{Name: "y", Node: NewLeaf("Y", noop)},
				Child{Name: "z", Node: NewLeaf("Z", noop)},
			),
			want: []string{"X", "Y"},
		},
		{
			name: "nil child skipped",
			node: NewComposition("Root", nil,
				Child{Name: "empty"},
				Child{Name: "page", Node: NewLeaf("Page", noop)},
			),
			want: []string{"Page"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.node)
			if len(got) != len(tt.want) {
				t.Fatalf("Plan() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Plan()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChainAndOnly(t *testing.T) {
	var seen []string
	tag := func(name string) Middleware {
		return MiddlewareFunc(func(ctx context.Context, call *Call, next func(context.Context) error) error {
			seen = append(seen, name)
			return next(ctx)
		})
	}

	mw := Chain(tag("a"), Only(func(c *Call) bool { return c.Depth == 0 }, tag("b")))

	handler := func(ctx context.Context) error {
		seen = append(seen, "hook")
		return nil
	}

	_ = mw.Handle(context.Background(), &Call{Depth: 0}, handler)
	_ = mw.Handle(context.Background(), &Call{Depth: 1}, handler)

	want := []string{"a", "b", "hook", "a", "hook"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}
