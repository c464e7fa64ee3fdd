//go:build property

package endpoint

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDiscoveryProperties validates table invariants over generated trees.
func TestDiscoveryProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	segment := gen.OneConstOf("a", "b", "blog", "index", "[id]", "docs")
	pathGen := gen.SliceOfN(3, segment).Map(func(segs []string) string {
		p := "sites"
		for _, s := range segs {
			p += "/" + s
		}
		return p
	})

	build := func(files []string) fstest.MapFS {
		fsys := fstest.MapFS{}
		for i, f := range files {
			// A path may not be both a file and a directory; suffix the leaf.
			// Leaves alternate between views, extensionless files, multi-dot
			// names and dotfiles.
			var name string
			switch i % 4 {
			case 0:
				name = fmt.Sprintf("%s_%d.vue", f, i)
			case 1:
				name = fmt.Sprintf("%s_%d", f, i)
			case 2:
				name = fmt.Sprintf("%s_%d.draft.vue", f, i)
			default:
				name = fmt.Sprintf("%s/.keep_%d", f, i)
			}
			fsys[name] = &fstest.MapFile{}
		}
		fsys["sites/.DS_Store"] = &fstest.MapFile{}
		fsys["sites/index.vue"] = &fstest.MapFile{}
		return fsys
	}

	// Property: routes in the published table are unique
	properties.Property("routes are unique", prop.ForAll(
		func(files []string) bool {
			e := NewEngine(Options{FS: build(files), SitesDir: "sites", Logger: discardLogger()})
			eps, err := e.Discover(context.Background())
			if err != nil {
				return false
			}
			seen := make(map[string]bool)
			for _, ep := range eps {
				if seen[ep.Route] {
					return false
				}
				seen[ep.Route] = true
			}
			return true
		},
		gen.SliceOf(pathGen),
	))

	// Property: every leaf file is represented by its own route
	properties.Property("one endpoint per leaf route", prop.ForAll(
		func(files []string) bool {
			fsys := build(files)
			e := NewEngine(Options{FS: fsys, SitesDir: "sites", Logger: discardLogger()})
			eps, err := e.Discover(context.Background())
			if err != nil {
				return false
			}
			want := make(map[string]bool)
			for name := range fsys {
				want[RouteFor(name, "sites")] = true
			}
			return len(eps) == len(want)
		},
		gen.SliceOf(pathGen),
	))

	// Property: a dotfile never takes the route of a sibling index view
	properties.Property("index view owns the root route", prop.ForAll(
		func(files []string) bool {
			e := NewEngine(Options{FS: build(files), SitesDir: "sites", Logger: discardLogger()})
			eps, err := e.Discover(context.Background())
			if err != nil {
				return false
			}
			for _, ep := range eps {
				if ep.Route == "/" {
					return ep.View == "sites/index.vue"
				}
			}
			return false
		},
		gen.SliceOf(pathGen),
	))

	// Property: discovery is deterministic
	properties.Property("rebuild is idempotent", prop.ForAll(
		func(files []string) bool {
			e := NewEngine(Options{FS: build(files), SitesDir: "sites", Logger: discardLogger()})
			a, errA := e.Discover(context.Background())
			b, errB := e.Discover(context.Background())
			if errA != nil || errB != nil || len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(pathGen),
	))

	properties.TestingRun(t)
}
