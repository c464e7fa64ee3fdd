// Package router matches request paths against the endpoint table and
// resolves the component tree of the matched page.
//
// Routes come from endpoint descriptors; the components they render come
// from a Registry keyed by view file, handler reference and layout prefix:
//
//	reg := &router.Registry{
//	    Views: map[string]prefetch.Node{
//	        "sites/blog/[id].vue": post,
//	    },
//	    Layouts: map[string]prefetch.Node{
//	        "/":     shell,
//	        "/blog": blogLayout,
//	    },
//	}
//	r := router.New(engine.Endpoints(), reg)
//
// A request for /blog/42 then matches /blog/:id with params id=42 and the
// matched components shell, blogLayout, post (outermost first).
//
// # Matching
//
// The table is held in a radix tree. At each level static segments win over
// parameters, which win over catch-alls; a failed branch backtracks:
//
//	/blog/new        static
//	/blog/:id        parameter
//	/docs/*path      catch-all, consumes the remaining segments
//
// # Navigators
//
// Navigator is the per-request view of a Router. It implements the
// prefetch.Router boundary (Push, Ready, MatchedComponents, CurrentRoute) so
// the prefetch pipeline never depends on this package directly.
package router
