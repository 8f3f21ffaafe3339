package engine

// Graph is the root of a render graph.
type Graph struct {
	Background Color
	children   []*Object
}

// NewGraph returns an empty graph with a black background.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends objects to the root.
func (g *Graph) Add(objs ...*Object) {
	g.children = append(g.children, objs...)
}

// Remove detaches obj from the root. It reports whether obj was present.
func (g *Graph) Remove(obj *Object) bool {
	for i, c := range g.children {
		if c == obj {
			g.children = append(g.children[:i], g.children[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveIf detaches every root child matching pred and returns them.
func (g *Graph) RemoveIf(pred func(*Object) bool) []*Object {
	var removed []*Object
	kept := g.children[:0]
	for _, c := range g.children {
		if pred(c) {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(g.children); i++ {
		g.children[i] = nil
	}
	g.children = kept
	return removed
}

// Contains reports whether obj is a direct child of the root.
func (g *Graph) Contains(obj *Object) bool {
	for _, c := range g.children {
		if c == obj {
			return true
		}
	}
	return false
}

// Children returns the root's direct children. The slice must not be modified.
func (g *Graph) Children() []*Object { return g.children }

// Len returns the number of direct children.
func (g *Graph) Len() int { return len(g.children) }

// Traverse visits every object in the graph, depth first.
func (g *Graph) Traverse(fn func(*Object)) {
	for _, c := range g.children {
		c.Traverse(fn)
	}
}

// Dispose releases every geometry and empties the graph.
func (g *Graph) Dispose() {
	for _, c := range g.children {
		c.Dispose()
	}
	g.children = nil
}
