// Package prefetch runs the data hooks of a matched component tree before a
// page is rendered on the server.
//
// For every request the pipeline creates a fresh application instance,
// pushes the requested URL into its router, waits for the router to resolve,
// and then walks the matched components. Each hook receives the shared store
// and the resolved route and is expected to fill the store as a side effect.
// When every reachable hook has returned, the store snapshot is attached to
// the render context so the client can reuse it without fetching again.
//
// # Component Trees
//
// A matched tree is built from two node kinds:
//
//	page := prefetch.NewComposition("Layout", layoutHook,
//	    prefetch.Child{Name: "header", Node: prefetch.NewLeaf("Header", nil)},
//	    prefetch.Child{Name: "main", Node: prefetch.NewLeaf("Post", postHook)},
//	    prefetch.Child{Name: "aside", Node: prefetch.NewLeaf("Related", relatedHook)},
//	)
//
// A composition invokes its own hook and then scans its children in order.
// A composition child is scanned recursively; the first child carrying a
// hook has it invoked and ends the scan. In the tree above layoutHook and
// postHook run, relatedHook does not.
//
// # Concurrency
//
// Top-level matched components run concurrently. Within one branch hooks run
// sequentially in depth-first order. The first failing hook cancels the
// context shared by the other branches and fails the whole request; no
// partial state is published.
//
// # Usage
//
//	p := prefetch.New(factory,
//	    prefetch.WithTimeout(5*time.Second),
//	    prefetch.Use(middleware.PrefetchMetrics()),
//	)
//	rc := &prefetch.RenderContext{URL: r.URL.RequestURI(), API: client, Request: r}
//	app, err := p.Prefetch(r.Context(), rc)
//	if err != nil {
//	    return err
//	}
//	render(app, rc.State)
package prefetch
