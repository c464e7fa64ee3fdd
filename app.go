package ui

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/cubic-dev/ui/internal/config"
	"github.com/cubic-dev/ui/internal/dev"
	"github.com/cubic-dev/ui/pkg/endpoint"
	"github.com/cubic-dev/ui/pkg/manifest"
	"github.com/cubic-dev/ui/pkg/middleware"
	"github.com/cubic-dev/ui/pkg/prefetch"
	"github.com/cubic-dev/ui/pkg/router"
	"github.com/cubic-dev/ui/pkg/server"
)

// publicPrefix is the URL prefix of the public asset directory.
const publicPrefix = "/public"

// App wires discovery, routing, prefetch and the HTTP server together.
type App struct {
	config *config.Config
	logger *slog.Logger

	// Options
	registry       *router.Registry
	renderer       server.Renderer
	errorHandler   server.ErrorHandler
	api            func(r *http.Request) any
	fsys           fs.FS
	loader         endpoint.Loader
	explicit       []endpoint.Endpoint
	newStore       func(rc *prefetch.RenderContext) prefetch.Store
	middleware     []prefetch.Middleware
	tracerProvider trace.TracerProvider
	httpMiddleware []func(http.Handler) http.Handler

	// Components
	engine   *endpoint.Engine
	factory  *router.Factory
	pipeline *prefetch.Pipeline
	server   *server.Server
	reload   *dev.ReloadServer

	// rebuildMu guards publishErr, set by publish during a Rebuild.
	rebuildMu  sync.Mutex
	publishErr error
}

// New creates an App from cfg. The endpoint table is empty until Start
// or Rebuild runs.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.New()
	}
	a := &App{
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	sitesDir, err := cfg.SitesDir()
	if err != nil {
		return nil, err
	}
	if a.fsys == nil {
		a.fsys = os.DirFS(cfg.SourcePath())
	}
	if a.loader == nil {
		if a.loader, err = a.manifestLoader(); err != nil {
			return nil, err
		}
	}

	a.engine = endpoint.NewEngine(endpoint.Options{
		FS:         a.fsys,
		SourceRoot: cfg.SourcePath(),
		SitesDir:   sitesDir,
		Parent:     cfg.Endpoint.Parent,
		Explicit:   a.explicit,
		Loader:     a.loader,
		Logger:     a.logger,
	})

	var factoryOpts []router.FactoryOption
	if a.newStore != nil {
		factoryOpts = append(factoryOpts, router.WithStore(a.newStore))
	}
	a.factory = router.NewFactory(router.New(nil, a.registry), factoryOpts...)

	a.pipeline = prefetch.New(a.factory, a.pipelineOptions()...)
	a.server = server.New(a.pipeline, &server.Config{Address: cfg.Address()}, a.serverOptions()...)

	a.engine.OnRebuild(a.publish)
	return a, nil
}

// manifestLoader picks the S3 manifest when one is configured, else the
// local manifest file.
func (a *App) manifestLoader() (endpoint.Loader, error) {
	if a.config.HasS3Manifest() {
		m := a.config.Manifest
		return manifest.NewS3Store(context.Background(), m.Bucket, m.Key, m.Region)
	}
	return manifest.NewFileStore(a.config.EndpointsPath()), nil
}

func (a *App) pipelineOptions() []prefetch.Option {
	var otelOpts []middleware.OTelOption
	if a.tracerProvider != nil {
		otelOpts = append(otelOpts, middleware.WithTracerProvider(a.tracerProvider))
	}

	mw := []prefetch.Middleware{
		middleware.Recover(a.logger),
		middleware.OpenTelemetry(otelOpts...),
	}
	opts := []prefetch.Option{
		prefetch.WithTimeout(a.config.PrefetchTimeout()),
		prefetch.WithLogger(a.logger),
	}
	if a.config.Metrics.Enabled {
		mw = append(mw, middleware.Prometheus(middleware.WithNamespace(a.config.Metrics.Namespace)))
		opts = append(opts, prefetch.WithObserver(middleware.ObservePrefetch))
	}
	mw = append(mw, a.middleware...)
	return append(opts, prefetch.Use(mw...))
}

func (a *App) serverOptions() []server.Option {
	opts := []server.Option{
		server.WithLogger(a.logger),
		server.WithMiddleware(a.httpMiddleware...),
	}
	if a.renderer != nil {
		opts = append(opts, server.WithRenderer(a.renderer))
	}
	if a.errorHandler != nil {
		opts = append(opts, server.WithErrorHandler(a.errorHandler))
	}
	if a.api != nil {
		opts = append(opts, server.WithAPI(a.api))
	}
	if a.config.Metrics.Enabled {
		opts = append(opts, server.WithMount(a.config.Metrics.Path, promhttp.Handler()))
	}
	if info, err := os.Stat(a.config.PublicPath()); err == nil && info.IsDir() {
		static := server.Static(os.DirFS(a.config.PublicPath()), publicPrefix, a.config.Dev.Watch)
		opts = append(opts, server.WithMount(publicPrefix, static))
	}
	if a.config.Dev.Reload {
		a.reload = dev.NewReloadServer(a.logger)
		opts = append(opts, server.WithMount(dev.ReloadPath, a.reload))
	}
	return opts
}

// publish swaps a rebuilt table into the HTTP mux and then the router.
// When the mux cannot be rebuilt neither is swapped.
func (a *App) publish(eps []endpoint.Endpoint) {
	if err := a.server.Reload(eps); err != nil {
		a.publishErr = err
		return
	}
	a.factory.Swap(router.New(eps, a.registry))
}

// Rebuild re-runs discovery and publishes the result. On error the
// previous table stays active. A table the HTTP mux rejects is returned as
// an error and neither the mux nor the router is swapped.
func (a *App) Rebuild(ctx context.Context) error {
	a.rebuildMu.Lock()
	defer a.rebuildMu.Unlock()

	start := time.Now()
	a.publishErr = nil
	err := a.engine.Rebuild(ctx)
	if err == nil && a.publishErr != nil {
		err = a.publishErr
	}
	if a.config.Metrics.Enabled {
		middleware.RecordRebuild(a.engine.Len(), time.Since(start), err)
	}
	return err
}

// Start builds the endpoint table, starts the watcher when configured and
// serves HTTP until ctx is done. A failed first build is fatal.
func (a *App) Start(ctx context.Context) error {
	if err := a.Rebuild(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if a.config.Dev.Watch {
		runner := dev.NewRunner(a, dev.Options{
			Paths:    dev.CollectWatchPaths(a.config),
			Debounce: a.config.DevDebounce(),
			Reload:   a.reload,
			Logger:   a.logger,
		})
		g.Go(func() error {
			if err := runner.Run(gctx); err != nil && !stderrors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		return a.server.Run(gctx)
	})

	err := g.Wait()
	if a.reload != nil {
		a.reload.Close()
	}
	return err
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.server.ServeHTTP(w, r)
}

// Prefetch runs the pipeline for url outside of an HTTP request.
func (a *App) Prefetch(ctx context.Context, url string, api any) (*prefetch.RenderContext, any, error) {
	rc := &prefetch.RenderContext{URL: url, API: api}
	app, err := a.pipeline.Prefetch(ctx, rc)
	return rc, app, err
}

// Endpoints returns the published endpoint table.
func (a *App) Endpoints() []endpoint.Endpoint {
	return a.engine.Endpoints()
}

// Engine returns the discovery engine.
func (a *App) Engine() *endpoint.Engine {
	return a.engine
}

// Server returns the HTTP server.
func (a *App) Server() *server.Server {
	return a.server
}

// Config returns the App configuration.
func (a *App) Config() *config.Config {
	return a.config
}
