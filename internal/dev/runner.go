package dev

import (
	"context"
	"log/slog"
	"time"
)

// Rebuilder is rebuilt on every change batch. *endpoint.Engine
// implements it.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// RebuildFunc is a function adapter for Rebuilder.
type RebuildFunc func(ctx context.Context) error

// Rebuild implements Rebuilder.
func (f RebuildFunc) Rebuild(ctx context.Context) error {
	return f(ctx)
}

// Options configures a Runner.
type Options struct {
	// Paths to watch. See CollectWatchPaths.
	Paths []string

	// Ignore patterns (default: DefaultIgnore).
	Ignore []string

	// Debounce is the quiet period before a rebuild.
	Debounce time.Duration

	// Reload, when set, is notified after every rebuild.
	Reload *ReloadServer

	// Logger receives rebuild logs.
	Logger *slog.Logger
}

// Runner rebuilds a target whenever watched files change.
type Runner struct {
	target  Rebuilder
	watcher *Watcher
	reload  *ReloadServer
	logger  *slog.Logger
}

// NewRunner creates a runner for target.
func NewRunner(target Rebuilder, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		target: target,
		watcher: NewWatcher(WatcherConfig{
			Paths:    opts.Paths,
			Ignore:   opts.Ignore,
			Debounce: opts.Debounce,
			Logger:   logger,
		}),
		reload: opts.Reload,
		logger: logger.With("component", "dev"),
	}
}

// Run watches and rebuilds until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.watcher.OnChange(func(changes []Change) {
		r.rebuild(ctx, changes)
	})
	r.logger.Info("watching for changes", "paths", len(r.watcher.config.Paths))
	return r.watcher.Start(ctx)
}

// Stop stops watching.
func (r *Runner) Stop() {
	r.watcher.Stop()
}

func (r *Runner) rebuild(ctx context.Context, changes []Change) {
	first := changes[0]
	r.logger.Info("change detected",
		"path", first.Path,
		"type", first.Type.String(),
		"files", len(changes))

	if err := r.target.Rebuild(ctx); err != nil {
		r.logger.Error("rebuild failed", "error", err)
		if r.reload != nil {
			r.reload.NotifyError(err.Error())
		}
		return
	}
	if r.reload != nil {
		r.reload.NotifyReload()
	}
}
