// Package server is the HTTP host for server-rendered pages.
//
// A Server builds a chi router from the endpoint table, runs the prefetch
// pipeline for every matched request and hands the result to a Renderer:
//
//	srv := server.New(pipeline, &server.Config{Address: ":3000"},
//	    server.WithRenderer(renderer),
//	    server.WithMount("/metrics", promhttp.Handler()),
//	)
//	srv.Reload(engine.Endpoints())
//	engine.OnRebuild(func(eps []endpoint.Endpoint) { srv.Reload(eps) })
//	err := srv.Run(ctx)
//
// Reload swaps the router atomically; requests in flight finish on the
// router they started with.
//
// # Errors
//
// Prefetch failures go to the ErrorHandler. The default one maps
// not-found errors to 404 and timeouts to 504; anything else is a 500.
package server
