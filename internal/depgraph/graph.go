package depgraph

import (
	"sort"
	"sync"

	"github.com/avelar/adapt/internal/mastery"
)

// Mode controls how an unmet prerequisite affects a dependent topic.
type Mode string

const (
	// ModeHard excludes the dependent from queues entirely.
	ModeHard Mode = "hard"
	// ModeSoft deprioritizes the dependent without excluding it.
	ModeSoft Mode = "soft"
)

// Edge is one directed prerequisite relationship between topics. The
// dependent becomes fully eligible once the learner's mastery of the
// prerequisite reaches MinLevel.
type Edge struct {
	Prereq    string
	Dependent string
	MinLevel  mastery.Level
	Mode      Mode
}

// Graph holds the prerequisite DAG. Edits are rare and serialized; reads are
// frequent and served from an immutable snapshot that is rebuilt on every
// edit, so the read path never contends with writers.
type Graph struct {
	mu    sync.Mutex // serializes edits
	edges []Edge

	snap *Snapshot // immutable; replaced wholesale on edit
}

// New builds a graph from existing edges, validating acyclicity.
func New(edges []Edge) (*Graph, error) {
	g := &Graph{}
	g.mu.Lock()
	g.rebuild()
	g.mu.Unlock()
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddEdge inserts a prerequisite edge after checking that it keeps the graph
// acyclic. The check is incremental: only reachability from the new edge's
// dependent back to its prerequisite is explored, not the whole graph.
func (g *Graph) AddEdge(e Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e.Prereq == e.Dependent {
		return &CycleError{Path: []string{e.Prereq, e.Dependent}}
	}
	for _, existing := range g.edges {
		if existing.Prereq == e.Prereq && existing.Dependent == e.Dependent {
			return &DuplicateEdgeError{Prereq: e.Prereq, Dependent: e.Dependent}
		}
	}
	if path := g.findPath(e.Dependent, e.Prereq); path != nil {
		return &CycleError{Path: append(path, e.Dependent)}
	}

	g.edges = append(g.edges, e)
	g.rebuild()
	return nil
}

// RemoveEdge deletes the (prereq, dependent) edge. Removing an absent edge
// is a no-op.
func (g *Graph) RemoveEdge(prereq, dependent string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Prereq == prereq && e.Dependent == dependent {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	g.rebuild()
}

// Snapshot returns the current immutable read view.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snap
}

// Edges returns a copy of the current edge set, for persistence.
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// findPath walks prereq->dependent edges from start looking for goal,
// returning the path if found. Caller holds g.mu.
func (g *Graph) findPath(start, goal string) []string {
	adj := make(map[string][]string)
	for _, e := range g.edges {
		adj[e.Prereq] = append(adj[e.Prereq], e.Dependent)
	}

	type frame struct {
		node string
		path []string
	}
	stack := []frame{{node: start, path: []string{start}}}
	seen := map[string]bool{start: true}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == goal {
			return f.path
		}
		for _, next := range adj[f.node] {
			if seen[next] {
				continue
			}
			seen[next] = true
			p := make([]string, len(f.path), len(f.path)+1)
			copy(p, f.path)
			stack = append(stack, frame{node: next, path: append(p, next)})
		}
	}
	return nil
}

// rebuild recomputes the immutable snapshot. Caller holds g.mu.
func (g *Graph) rebuild() {
	prereqsOf := make(map[string][]Edge)
	dependentsOf := make(map[string][]string)
	nodes := make(map[string]bool)

	for _, e := range g.edges {
		prereqsOf[e.Dependent] = append(prereqsOf[e.Dependent], e)
		dependentsOf[e.Prereq] = append(dependentsOf[e.Prereq], e.Dependent)
		nodes[e.Prereq] = true
		nodes[e.Dependent] = true
	}

	g.snap = &Snapshot{
		prereqsOf:    prereqsOf,
		dependentsOf: dependentsOf,
		nodes:        nodes,
		topo:         topoOrder(nodes, prereqsOf, dependentsOf),
	}
}

// topoOrder runs Kahn's algorithm with sorted tie-breaking for deterministic
// output.
func topoOrder(nodes map[string]bool, prereqsOf map[string][]Edge, dependentsOf map[string][]string) []string {
	inDegree := make(map[string]int, len(nodes))
	for n := range nodes {
		inDegree[n] = len(prereqsOf[n])
	}

	var queue []string
	for n, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, n)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		deps := append([]string(nil), dependentsOf[n]...)
		sort.Strings(deps)
		for _, d := range deps {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	return order
}
