package filetype

import (
	"container/heap"
	"slices"
)

// graph is the constraint graph over a recognizer slice, indexed by position.
type graph struct {
	recs     []Recognizer
	outgoing [][]int // sorted ascending
	indeg    []int
	// constrained marks recognizers with at least one of their own
	// Before/After entries naming a registered recognizer.
	constrained []bool
}

func buildGraph(recs []Recognizer) (*graph, error) {
	index := make(map[string]int, len(recs))
	for i, r := range recs {
		if _, dup := index[r.ID]; dup {
			return nil, duplicateError(r.ID)
		}
		index[r.ID] = i
	}

	g := &graph{
		recs:        recs,
		outgoing:    make([][]int, len(recs)),
		indeg:       make([]int, len(recs)),
		constrained: make([]bool, len(recs)),
	}
	seen := make(map[[2]int]bool)
	addEdge := func(from, to int) {
		e := [2]int{from, to}
		if seen[e] {
			return
		}
		seen[e] = true
		g.outgoing[from] = append(g.outgoing[from], to)
		g.indeg[to]++
	}

	for i, r := range recs {
		for _, id := range r.Before {
			if j, ok := index[id]; ok {
				addEdge(i, j)
				g.constrained[i] = true
			}
		}
		for _, id := range r.After {
			if j, ok := index[id]; ok {
				addEdge(j, i)
				g.constrained[i] = true
			}
		}
	}
	for i := range g.outgoing {
		slices.Sort(g.outgoing[i])
	}
	return g, nil
}

// readyHeap orders ready nodes by (tier, registration index). Tier 1 holds
// unconstrained wildcards so they are only taken when nothing else is ready.
type readyHeap struct {
	nodes []int
	tier  []int
}

func (h *readyHeap) Len() int { return len(h.nodes) }
func (h *readyHeap) Less(i, j int) bool {
	a, b := h.nodes[i], h.nodes[j]
	if h.tier[a] != h.tier[b] {
		return h.tier[a] < h.tier[b]
	}
	return a < b
}
func (h *readyHeap) Swap(i, j int) { h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i] }
func (h *readyHeap) Push(x any)    { h.nodes = append(h.nodes, x.(int)) }
func (h *readyHeap) Pop() any {
	old := h.nodes
	n := len(old)
	x := old[n-1]
	h.nodes = old[:n-1]
	return x
}

// topoOrder runs Kahn's algorithm. It returns fewer than len(recs) indices when
// the graph has a cycle.
func (g *graph) topoOrder() []int {
	indeg := make([]int, len(g.indeg))
	copy(indeg, g.indeg)

	// A wildcard whose declarations all name unregistered recognizers is as
	// unconstrained as one that declares nothing.
	tier := make([]int, len(g.recs))
	for i, r := range g.recs {
		if r.Wildcard && !g.constrained[i] {
			tier[i] = 1
		}
	}

	ready := &readyHeap{tier: tier}
	for i, d := range indeg {
		if d == 0 {
			ready.nodes = append(ready.nodes, i)
		}
	}
	heap.Init(ready)

	out := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range g.outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

// findCycle extracts one cycle by deterministic DFS over registration indices.
func (g *graph) findCycle() []string {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(g.recs))
	parent := make([]int, len(g.recs))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.outgoing[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back edge u -> v closes the cycle v ... u -> v.
				for cur := u; cur != v && cur != -1; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range g.recs {
		if color[i] == white && dfs(i) {
			break
		}
	}
	if len(cycle) == 0 {
		return nil
	}

	// cycle holds u, parent(u), ..., v; reverse it to walk forward from v.
	out := make([]string, 0, len(cycle)+1)
	for i := len(cycle) - 1; i >= 0; i-- {
		out = append(out, g.recs[cycle[i]].ID)
	}
	return append(out, out[0])
}

// Sort orders recognizers by their constraints.
//
// Among recognizers whose dependencies are all placed, the one registered first
// goes next; unconstrained wildcards go only when nothing else is ready. The
// result is stable under re-sorting: Sort(Sort(x)) == Sort(x).
//
// When the constraints cannot be satisfied (a cycle, or duplicate IDs) Sort
// returns the input in registration order together with a *ConfigurationError.
func Sort(recs []Recognizer) ([]Recognizer, error) {
	fallback := make([]Recognizer, len(recs))
	copy(fallback, recs)

	g, err := buildGraph(recs)
	if err != nil {
		return fallback, err
	}

	order := g.topoOrder()
	if len(order) != len(recs) {
		return fallback, cycleError(g.findCycle())
	}

	out := make([]Recognizer, len(order))
	for i, idx := range order {
		out[i] = recs[idx]
	}
	return out, nil
}

// Validate checks that order honours every before/after edge between the
// recognizers it contains.
func Validate(order []Recognizer) error {
	pos := make(map[string]int, len(order))
	for i, r := range order {
		if _, dup := pos[r.ID]; dup {
			return duplicateError(r.ID)
		}
		pos[r.ID] = i
	}

	violated := func(first, second string) error {
		return &ConfigurationError{Kind: ErrOrderViolation, Path: []string{first, second}}
	}
	for i, r := range order {
		for _, id := range r.Before {
			if j, ok := pos[id]; ok && j <= i {
				return violated(r.ID, id)
			}
		}
		for _, id := range r.After {
			if j, ok := pos[id]; ok && j >= i {
				return violated(id, r.ID)
			}
		}
	}
	return nil
}
