package router

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cubic-dev/ui/pkg/prefetch"
	"github.com/cubic-dev/ui/pkg/routepath"
)

// Navigator resolves one location against a Router. It implements
// prefetch.Router and is not safe for concurrent use.
type Navigator struct {
	router   *Router
	location string
	match    *Match
	route    prefetch.Route
}

var _ prefetch.Router = (*Navigator)(nil)

// Push sets the location to resolve. Errors are reported by Ready.
func (n *Navigator) Push(location string) {
	n.location = location
	n.match = nil
	n.route = prefetch.Route{}
}

// Ready resolves the pushed location. An unmatched location returns an
// error wrapping ErrNotFound; an invalid one returns the canonicalization
// error.
func (n *Navigator) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	loc, err := routepath.Canonicalize(n.location)
	if err != nil {
		return fmt.Errorf("invalid location %q: %w", n.location, err)
	}

	m, err := n.router.match(loc.Path)
	if err != nil {
		return fmt.Errorf("%s: %w", loc.Path, err)
	}

	query, err := url.ParseQuery(loc.Query)
	if err != nil {
		return fmt.Errorf("invalid query in %q: %w", n.location, err)
	}

	n.match = m
	n.route = prefetch.Route{
		Path:     loc.Path,
		Query:    query,
		Params:   m.Params,
		Endpoint: m.Endpoint,
	}
	return nil
}

// MatchedComponents returns the layouts and page component of the resolved
// location, outermost first. It is empty before a successful Ready.
func (n *Navigator) MatchedComponents() []prefetch.Node {
	if n.match == nil {
		return nil
	}
	return n.match.Components()
}

// CurrentRoute returns the resolved route.
func (n *Navigator) CurrentRoute() prefetch.Route {
	return n.route
}

// Match returns the resolved match, or nil before a successful Ready.
func (n *Navigator) Match() *Match {
	return n.match
}
