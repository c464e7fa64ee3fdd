// Package ui serves pages whose routes come from a directory of view files
// and whose data is prefetched on the server before rendering.
//
// An App discovers endpoints under the configured sites directory, merges
// explicit endpoints from a manifest, routes requests to the registered
// components and runs their data hooks:
//
//	cfg, err := config.LoadOrDefault(".")
//	app, err := ui.New(cfg,
//	    ui.WithRegistry(&router.Registry{
//	        Views: map[string]prefetch.Node{
//	            "sites/blog/post.vue": postPage,
//	        },
//	    }),
//	    ui.WithAPI(func(r *http.Request) any { return api.New(cfg.Client.APIURL) }),
//	)
//	err = app.Start(ctx)
//
// Start rebuilds the endpoint table once, starts the file watcher when
// dev.watch is set and serves until ctx is done.
package ui
