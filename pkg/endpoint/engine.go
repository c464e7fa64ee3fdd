package endpoint

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cubic-dev/ui/internal/errors"
)

// Options configures an Engine. All paths are explicit; the engine reads no
// global configuration.
type Options struct {
	// FS is the file system rooted at the view source root.
	// Default: os.DirFS(SourceRoot).
	FS fs.FS

	// SourceRoot is the view source root on disk. Ignored when FS is set.
	SourceRoot string

	// SitesDir is the directory walked for views, relative to the source
	// root and slash separated. Default: "sites".
	SitesDir string

	// Parent is the handler reference shared by all file-derived endpoints.
	Parent string

	// Explicit endpoints take precedence over file-derived ones.
	Explicit []Endpoint

	// Loader supplies additional explicit endpoints on every discovery,
	// after Explicit.
	Loader Loader

	// Logger receives discovery logs. Default: slog.Default().
	Logger *slog.Logger
}

// table is an immutable published endpoint list.
type table struct {
	endpoints []Endpoint
	byRoute   map[string]int
}

// Engine discovers endpoints and publishes them as an atomically replaced table.
// Engine implements Source.
type Engine struct {
	fsys     fs.FS
	sitesDir string
	parent   string
	explicit []Endpoint
	loader   Loader
	logger   *slog.Logger

	current atomic.Pointer[table]

	// rebuildMu serializes rebuilds and listener notification.
	rebuildMu sync.Mutex
	listeners []func([]Endpoint)
}

var _ Source = (*Engine)(nil)

// NewEngine creates a route discovery engine. The published table is empty
// until the first Rebuild.
func NewEngine(opts Options) *Engine {
	fsys := opts.FS
	if fsys == nil {
		fsys = os.DirFS(opts.SourceRoot)
	}
	sitesDir := opts.SitesDir
	if sitesDir == "" {
		sitesDir = "sites"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		fsys:     fsys,
		sitesDir: path.Clean(sitesDir),
		parent:   opts.Parent,
		explicit: slices.Clone(opts.Explicit),
		loader:   opts.Loader,
		logger:   logger,
	}
	e.current.Store(newTable(nil))
	return e
}

func newTable(endpoints []Endpoint) *table {
	t := &table{
		endpoints: endpoints,
		byRoute:   make(map[string]int, len(endpoints)),
	}
	for i, ep := range endpoints {
		t.byRoute[ep.Route] = i
	}
	return t
}

// collector accumulates endpoints with first-registrant-wins semantics.
type collector struct {
	endpoints []Endpoint
	seen      map[string]struct{}
	dropped   int
	logger    *slog.Logger
}

func (c *collector) add(ep Endpoint) {
	if _, exists := c.seen[ep.Route]; exists {
		c.dropped++
		c.logger.Debug("endpoint route already registered",
			"route", ep.Route,
			"view", ep.View,
			"file", ep.File)
		return
	}
	c.seen[ep.Route] = struct{}{}
	c.endpoints = append(c.endpoints, ep)
}

// Discover walks the sites directory and returns the merged endpoint list
// without publishing it. It fails only when the file system (or the explicit
// loader) cannot be read; no partial result is returned.
func (e *Engine) Discover(ctx context.Context) ([]Endpoint, error) {
	c := &collector{
		seen:   make(map[string]struct{}),
		logger: e.logger,
	}

	for _, ep := range e.explicit {
		c.add(ep)
	}
	if e.loader != nil {
		loaded, err := e.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		for _, ep := range loaded {
			c.add(ep)
		}
	}

	info, err := fs.Stat(e.fsys, e.sitesDir)
	if err != nil {
		return nil, errors.New("E100").WithDetail("reading " + e.sitesDir).Wrap(err)
	}
	if info.IsDir() {
		if err := e.walk(ctx, e.sitesDir, c); err != nil {
			return nil, err
		}
	} else {
		c.add(e.endpointFor(e.sitesDir))
	}

	if c.dropped > 0 {
		e.logger.Debug("endpoint collisions resolved", "dropped", c.dropped)
	}
	return c.endpoints, nil
}

// walk visits dir depth-first in lexical order. Entries are classified by the
// file system's own notion of directory; symlinks are not followed.
func (e *Engine) walk(ctx context.Context, dir string, c *collector) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := fs.ReadDir(e.fsys, dir)
	if err != nil {
		return errors.New("E100").WithDetail("reading " + dir).Wrap(err)
	}

	for _, entry := range entries {
		child := path.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := e.walk(ctx, child, c); err != nil {
				return err
			}
			continue
		}
		c.add(e.endpointFor(child))
	}
	return nil
}

func (e *Engine) endpointFor(view string) Endpoint {
	return Endpoint{
		Route: RouteFor(view, e.sitesDir),
		View:  view,
		File:  e.parent,
	}
}

// Rebuild re-runs discovery and publishes the result with a single atomic
// swap. On failure the previously published table stays in place.
// Concurrent calls are serialized.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	start := time.Now()
	endpoints, err := e.Discover(ctx)
	if err != nil {
		e.logger.Error("endpoint rebuild failed", "error", err)
		return err
	}

	e.current.Store(newTable(endpoints))
	e.logger.Info("endpoints rebuilt",
		"count", len(endpoints),
		"duration", time.Since(start))

	for _, fn := range e.listeners {
		fn(slices.Clone(endpoints))
	}
	return nil
}

// OnRebuild registers fn to be called with the new table after every
// successful Rebuild.
func (e *Engine) OnRebuild(fn func([]Endpoint)) {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Endpoints returns a copy of the published table.
func (e *Engine) Endpoints() []Endpoint {
	return slices.Clone(e.current.Load().endpoints)
}

// Lookup returns the published endpoint for route.
func (e *Engine) Lookup(route string) (Endpoint, bool) {
	t := e.current.Load()
	i, ok := t.byRoute[route]
	if !ok {
		return Endpoint{}, false
	}
	return t.endpoints[i], true
}

// Len returns the number of published endpoints.
func (e *Engine) Len() int {
	return len(e.current.Load().endpoints)
}
