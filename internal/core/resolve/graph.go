package resolve

// =============================================================================
// Dependency Graph
// =============================================================================

// DependencyGraph is a directed graph over value paths. An edge added
// via AddDependency(from, to) means "to must resolve before from".
// Construction is purely additive; registering a node twice is a no-op.
type DependencyGraph struct {
	nodes      []string            // insertion order, for deterministic sorts
	registered map[string]bool
	dependents map[string][]string // dependency -> paths that consume it
	inDegree   map[string]int      // path -> number of unresolved dependencies
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		registered: make(map[string]bool),
		dependents: make(map[string][]string),
		inDegree:   make(map[string]int),
	}
}

// AddNode registers a value path. Idempotent.
func (g *DependencyGraph) AddNode(path string) {
	if g.registered[path] {
		return
	}
	g.registered[path] = true
	g.nodes = append(g.nodes, path)
}

// AddDependency records that from's template references to. Both paths
// are registered as nodes; a referenced path with no template of its own
// is still a valid leaf dependency.
func (g *DependencyGraph) AddDependency(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.dependents[to] = append(g.dependents[to], from)
	g.inDegree[from]++
}

// NodeCount returns the number of registered paths.
func (g *DependencyGraph) NodeCount() int {
	return len(g.nodes)
}

// TopologicalSort returns an order in which every path appears after all
// paths it depends on, using Kahn's algorithm:
//
//  1. Seed a queue with paths that have no unresolved dependencies
//  2. Pop a path, emit it, and decrement each dependent's in-degree
//  3. When a dependent's in-degree reaches 0, enqueue it
//
// When the graph has several valid orders the tie-break follows node
// registration order. If any node is left unemitted the graph has a
// cycle, and the returned CycleError names one concrete cycle chain.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = g.inDegree[node]
	}

	var queue []string
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dependent := range g.dependents[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) < len(g.nodes) {
		return nil, &CycleError{Cycle: g.findCycle()}
	}
	return order, nil
}

// findCycle reconstructs one concrete cycle for error reporting: a DFS
// over the dependent edges with an explicit recursion stack; revisiting
// a path already on the stack closes the cycle, which is the stack slice
// from that path's first occurrence through the current path.
func (g *DependencyGraph) findCycle() []string {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string
	var cycle []string

	var visit func(node string) bool
	visit = func(node string) bool {
		state[node] = onStack
		stack = append(stack, node)

		for _, next := range g.dependents[node] {
			switch state[next] {
			case onStack:
				for i, onPath := range stack {
					if onPath == next {
						cycle = append(append([]string{}, stack[i:]...), next)
						return true
					}
				}
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[node] = done
		return false
	}

	for _, node := range g.nodes {
		if state[node] == unvisited && visit(node) {
			return cycle
		}
	}
	return nil
}
