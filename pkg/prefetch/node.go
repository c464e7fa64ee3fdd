package prefetch

import "context"

// Hook loads data for a component into p.Store before render.
// api is the opaque client handle from the render context.
type Hook func(ctx context.Context, p Params, api any) error

// Node is a matched component: either a *Composition or a *Leaf.
type Node interface {
	// NodeName returns the component name used in logs and errors.
	NodeName() string

	// DataHook returns the component's hook, or nil.
	DataHook() Hook

	isNode()
}

// Child is a named entry of a composition. Order is enumeration order.
type Child struct {
	Name string
	Node Node
}

// Composition is a component composed of named child components, such as a
// layout with named views.
type Composition struct {
	Name     string
	Hook     Hook
	Children []Child
}

// NewComposition creates a composition node.
func NewComposition(name string, hook Hook, children ...Child) *Composition {
	return &Composition{Name: name, Hook: hook, Children: children}
}

func (c *Composition) NodeName() string { return c.Name }
func (c *Composition) DataHook() Hook   { return c.Hook }
func (*Composition) isNode()            {}

// Leaf is a component without children.
type Leaf struct {
	Name string
	Hook Hook
}

// NewLeaf creates a leaf node.
func NewLeaf(name string, hook Hook) *Leaf {
	return &Leaf{Name: name, Hook: hook}
}

func (l *Leaf) NodeName() string { return l.Name }
func (l *Leaf) DataHook() Hook   { return l.Hook }
func (*Leaf) isNode()            {}

// Plan returns the names of the components whose hooks a prefetch of node
// would invoke, in invocation order.
func Plan(node Node) []string {
	var names []string
	visit(node, 0, func(n Node, _ int) bool {
		names = append(names, n.NodeName())
		return true
	})
	return names
}

// visit walks node and calls fn for every component whose hook is invoked.
// Returning false from fn stops the walk.
func visit(node Node, depth int, fn func(n Node, depth int) bool) bool {
	switch n := node.(type) {
	case *Composition:
		if n.Hook != nil && !fn(n, depth) {
			return false
		}
		return scan(n.Children, depth+1, fn)
	case *Leaf:
		if n.Hook != nil {
			return fn(n, depth)
		}
	}
	return true
}

// scan visits children in order. Composition children are scanned
// recursively; the first child with a hook is invoked and ends the scan.
func scan(children []Child, depth int, fn func(n Node, depth int) bool) bool {
	for _, child := range children {
		if child.Node == nil {
			continue
		}
		if c, ok := child.Node.(*Composition); ok {
			if !scan(c.Children, depth+1, fn) {
				return false
			}
		}
		if child.Node.DataHook() != nil {
			return fn(child.Node, depth)
		}
	}
	return true
}
