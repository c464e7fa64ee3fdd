// Package dev rebuilds the endpoint table while the sites tree is edited
// and tells connected browsers to reload.
//
// # Architecture
//
//   - Watcher: fsnotify-based, debounced file change batches
//   - Runner: rebuilds a target on every batch
//   - ReloadServer: notifies browsers of rebuilds via WebSocket
//
// # Usage
//
//	reload := dev.NewReloadServer(logger)
//	runner := dev.NewRunner(engine, dev.Options{
//	    Paths:    dev.CollectWatchPaths(cfg),
//	    Debounce: cfg.DevDebounce(),
//	    Reload:   reload,
//	})
//	go runner.Run(ctx)
//
// # Hot Reload Protocol
//
// The browser connects to /_cubic/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
package dev
