// Package endpoint discovers page endpoints from a directory tree of view files.
//
// Every leaf file below the sites directory becomes an endpoint whose route
// is derived from its path, so adding a view file is enough to expose a page:
//
//	src/
//	└── sites/
//	    ├── index.vue        → /
//	    ├── about.vue        → /about
//	    └── blog/
//	        ├── index.vue    → /blog
//	        ├── post.vue     → /blog/post
//	        └── [id].vue     → /blog/:id
//
// Explicit endpoints (custom server logic, parameterized routes, auth) are
// seeded before the walk and always win a route collision; the file-derived
// endpoint is dropped without error. Among file-derived endpoints the first
// one found in lexical depth-first order wins.
//
// # Usage
//
//	engine := endpoint.NewEngine(endpoint.Options{
//	    SourceRoot: "src",
//	    SitesDir:   "sites",
//	    Parent:     "cubic/ui/endpoint",
//	    Explicit:   []endpoint.Endpoint{{Route: "/about", File: "endpoints/about"}},
//	})
//	if err := engine.Rebuild(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	for _, ep := range engine.Endpoints() {
//	    fmt.Println(ep.Route, ep.View)
//	}
//
// The published table is replaced with a single atomic swap on every
// rebuild, so concurrent readers never observe a partially built list.
package endpoint
