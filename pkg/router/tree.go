package router

import (
	"strings"

	"github.com/cubic-dev/ui/pkg/endpoint"
	"github.com/cubic-dev/ui/pkg/prefetch"
)

// page is a routable endpoint attached to a tree node.
type page struct {
	endpoint  endpoint.Endpoint
	component prefetch.Node
}

// node is a node in the radix tree.
type node struct {
	// segment is the static path segment this node matches
	segment string

	// paramName is the parameter name for param and catch-all nodes
	paramName string

	isParam    bool
	isCatchAll bool

	page   *page
	layout prefetch.Node

	// children are static segment children
	children []*node

	paramChild    *node
	catchAllChild *node
}

func newNode(segment string) *node {
	return &node{segment: segment}
}

// findChild finds a child node with an exact segment match.
func (n *node) findChild(segment string) *node {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

// addChild adds or retrieves a child node for the given segment.
func (n *node) addChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newNode(segment)
	n.children = append(n.children, child)
	return child
}

// addParamChild sets the parameter child node. A level has one parameter
// child; the first registered name is kept.
func (n *node) addParamChild(name string) *node {
	if n.paramChild != nil {
		return n.paramChild
	}
	n.paramChild = &node{isParam: true, paramName: name}
	return n.paramChild
}

// addCatchAllChild sets the catch-all child node.
func (n *node) addCatchAllChild(name string) *node {
	if n.catchAllChild != nil {
		return n.catchAllChild
	}
	n.catchAllChild = &node{isCatchAll: true, paramName: name}
	return n.catchAllChild
}

// insert adds a route pattern to the tree and returns its node.
func (n *node) insert(pattern string) *node {
	current := n
	for _, seg := range splitPath(pattern) {
		switch {
		case strings.HasPrefix(seg, "*"):
			// Catch-all consumes the rest of the path.
			return current.addCatchAllChild(seg[1:])
		case strings.HasPrefix(seg, ":"):
			current = current.addParamChild(paramName(seg))
		default:
			current = current.addChild(seg)
		}
	}
	return current
}

// match finds the page node for segments. trail holds the visited nodes,
// root first, so layouts can be collected along the matched path only.
// Param values are the raw, still escaped segments.
func (n *node) match(segments []string, params map[string]string, trail []*node) (*node, []*node, bool) {
	trail = append(trail, n)

	if len(segments) == 0 {
		if n.page != nil {
			return n, trail, true
		}
		return nil, nil, false
	}

	segment := segments[0]
	remaining := segments[1:]

	if child := n.findChild(segment); child != nil {
		if leaf, t, ok := child.match(remaining, params, trail); ok {
			return leaf, t, true
		}
	}

	if c := n.paramChild; c != nil {
		params[c.paramName] = segment
		if leaf, t, ok := c.match(remaining, params, trail); ok {
			return leaf, t, true
		}
		delete(params, c.paramName)
	}

	if c := n.catchAllChild; c != nil && c.page != nil {
		params[c.paramName] = strings.Join(segments, "/")
		return c, append(trail, c), true
	}

	return nil, nil, false
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// paramName extracts the name from ":id" or ":id:int".
func paramName(seg string) string {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx]
	}
	return seg
}
