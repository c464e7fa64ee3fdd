package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cubic-dev/ui/internal/errors"
	"github.com/cubic-dev/ui/pkg/endpoint"
	"github.com/cubic-dev/ui/pkg/prefetch"
)

// Prefetcher runs data hooks for a request. *prefetch.Pipeline
// implements it.
type Prefetcher interface {
	Prefetch(ctx context.Context, rc *prefetch.RenderContext) (any, error)
}

// PrefetcherFunc is a function adapter for Prefetcher.
type PrefetcherFunc func(ctx context.Context, rc *prefetch.RenderContext) (any, error)

// Prefetch implements Prefetcher.
func (f PrefetcherFunc) Prefetch(ctx context.Context, rc *prefetch.RenderContext) (any, error) {
	return f(ctx, rc)
}

// Option configures a Server.
type Option func(*Server)

// WithRenderer sets the page renderer (default: JSONRenderer).
func WithRenderer(r Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithErrorHandler sets the handler for failed requests.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Server) {
		s.errorHandler = h
	}
}

// WithAPI sets the function producing the API value handed to hooks.
func WithAPI(fn func(r *http.Request) any) Option {
	return func(s *Server) {
		s.api = fn
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMount mounts h at pattern ahead of the page routes.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		s.mounts = append(s.mounts, mount{pattern: pattern, handler: h})
	}
}

// WithMiddleware adds HTTP middleware around every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

type mount struct {
	pattern string
	handler http.Handler
}

// Server serves prefetched pages over HTTP.
type Server struct {
	prefetcher   Prefetcher
	config       *Config
	renderer     Renderer
	errorHandler ErrorHandler
	api          func(r *http.Request) any
	logger       *slog.Logger
	mounts       []mount
	middleware   []func(http.Handler) http.Handler

	mux atomic.Pointer[chi.Mux]

	mu         sync.Mutex
	httpServer *http.Server
	addr       net.Addr
}

// New creates a server. Until Reload is called every page request is 404.
func New(p Prefetcher, config *Config, opts ...Option) *Server {
	s := &Server{
		prefetcher:   p,
		config:       config.withDefaults(),
		renderer:     JSONRenderer,
		errorHandler: DefaultErrorHandler,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	mux, err := s.build(nil)
	if err != nil {
		// No page routes; only mounts can fail here.
		panic(err)
	}
	s.mux.Store(mux)
	return s
}

// Reload rebuilds the route table from endpoints and swaps it in. On error
// the previous table stays active.
func (s *Server) Reload(endpoints []endpoint.Endpoint) error {
	mux, err := s.build(endpoints)
	if err != nil {
		s.logger.Error("reload failed", "error", err)
		return err
	}
	s.mux.Store(mux)
	s.logger.Debug("routes reloaded", "count", len(endpoints))
	return nil
}

// build assembles a chi router. chi reports bad patterns by panicking.
func (s *Server) build(endpoints []endpoint.Endpoint) (mux *chi.Mux, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("building routes: %v", r)
		}
	}()

	mux = chi.NewRouter()
	mux.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	mux.Use(s.middleware...)

	for _, m := range s.mounts {
		mux.Mount(m.pattern, m.handler)
	}

	seen := make(map[string]bool, len(endpoints))
	for _, ep := range endpoints {
		pattern := Pattern(ep.Route)
		if seen[pattern] {
			continue
		}
		seen[pattern] = true
		mux.Get(pattern, s.servePage)
		mux.Head(pattern, s.servePage)
	}

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, r, errors.New("E111").WithDetail(r.URL.Path))
	})
	return mux, nil
}

// Pattern converts an endpoint route to a chi pattern: ":name" segments
// become "{name}" and a "*name" segment becomes a trailing "*".
func Pattern(route string) string {
	if route == "" || route == "/" {
		return "/"
	}
	segs := strings.Split(strings.Trim(route, "/"), "/")
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		if strings.HasPrefix(seg, "*") {
			out = append(out, "*")
			break
		}
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			seg = "{" + seg[1:] + "}"
		}
		out = append(out, seg)
	}
	return "/" + strings.Join(out, "/")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.Load().ServeHTTP(w, r)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	rc := &prefetch.RenderContext{
		URL:     r.URL.RequestURI(),
		Request: r,
	}
	if s.api != nil {
		rc.API = s.api(r)
	}

	app, err := s.prefetcher.Prefetch(r.Context(), rc)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := s.renderer.Render(w, r, app, rc); err != nil {
		s.logger.Error("render failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	s.mu.Lock()
	s.httpServer = srv
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.logger.Info("server starting", "address", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a running server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Addr returns the listen address once serving, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
