// Package dijkstra implements the baseline shortest-path routine on a network.Network.
//
// It processes buses in order of increasing distance using a min-heap priority
// queue over the generic edge weight, relaxing edges and updating distances.
//
// Complexity:
//
//   - Time:  O(V² + E log V); neighbor enumeration on the dense model is O(V) per bus.
//   - Space: O(V + E), the heap may hold up to E stale entries.
//
// Notes on implementation choices:
//
//   - We perform an upfront scan of all edges to detect negative weights and fail fast.
//   - We treat any edge with weight ≥ InfEdgeThreshold as an impassable “wall”.
//   - We stop exploring once the minimum distance in the heap exceeds MaxDistance.
//   - Ties in the heap pop the smaller bus index first.
package dijkstra

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/powsybl/powsybl-optimizer/network"
)

// Dijkstra computes shortest distances from Options.Source to every bus of g,
// using the generic edge weight.
//
// Returns:
//
//   - dist: dist[v] is the minimum distance to v, +Inf if unreachable.
//   - prev: predecessor slice if ReturnPath=true (nil otherwise);
//     prev[v] == -1 for the source and unreachable buses.
//   - err:  error if inputs are invalid or if a negative weight is detected.
//
// Preconditions and validation (in order):
//  1. Source must be set (ErrNoSource).
//  2. g must be non-nil (ErrNilGraph).
//  3. Source must be in range (ErrVertexNotFound).
//  4. No edge in g can have negative weight (ErrNegativeWeight).
func Dijkstra(g *network.Network, opts ...Option) ([]float64, []int, error) {
	// 1) Build Options.
	cfg := DefaultOptions(noSource)
	for _, opt := range opts {
		opt(&cfg)
	}

	// 2) Validate inputs.
	if cfg.Source == noSource {
		return nil, nil, ErrNoSource
	}
	if g == nil {
		return nil, nil, ErrNilGraph
	}
	if cfg.Source < 0 || cfg.Source >= g.Order() {
		return nil, nil, fmt.Errorf("%w: %d", ErrVertexNotFound, cfg.Source)
	}

	// 3) Pre-scan all edges for negative weights.
	for _, b := range g.Branches() {
		if b.Weight < 0 {
			return nil, nil, fmt.Errorf("%w: edge %d→%d weight=%g", ErrNegativeWeight, b.From, b.To, b.Weight)
		}
	}

	// 4) Run.
	V := g.Order()
	r := &runner{
		g:       g,
		options: cfg,
		dist:    make([]float64, V),
		prev:    make([]int, V),
		visited: make([]bool, V),
		pq:      make(nodePQ, 0, V),
	}
	r.init()
	r.process()

	if !cfg.ReturnPath {
		return r.dist, nil, nil
	}

	return r.dist, r.prev, nil
}

// runner holds the mutable state for a single Dijkstra execution.
type runner struct {
	g       *network.Network // read-only within Dijkstra
	options Options
	dist    []float64 // current best distance per bus
	prev    []int     // predecessor on the shortest path, -1 if none
	visited []bool    // distance finalized
	pq      nodePQ    // lazy min-heap
}

// init sets all distances to +Inf, the source to 0, and seeds the heap.
func (r *runner) init() {
	for v := range r.dist {
		r.dist[v] = math.Inf(1)
		r.prev[v] = -1
	}
	r.dist[r.options.Source] = 0

	heap.Init(&r.pq)
	heap.Push(&r.pq, &nodeItem{id: r.options.Source, dist: 0})
}

// process repeatedly extracts the closest unvisited bus and relaxes its edges
// until the heap is empty or the closest entry exceeds MaxDistance.
func (r *runner) process() {
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*nodeItem)
		u := item.id

		// Stale duplicate.
		if r.visited[u] {
			continue
		}
		if item.dist > r.options.MaxDistance {
			break
		}

		r.visited[u] = true
		r.relax(u)
	}
}

// relax tries to improve the distance of every unvisited neighbor of u.
// Neighbors are visited in ascending index order.
func (r *runner) relax(u int) {
	for _, v := range r.g.Neighbors(u) {
		if r.visited[v] {
			continue
		}

		w := r.g.Weight(u, v)
		if w >= r.options.InfEdgeThreshold {
			continue
		}

		newDist := r.dist[u] + w
		if newDist > r.options.MaxDistance {
			continue
		}
		// Strictly better only, so equal-cost paths keep the first predecessor.
		if !(newDist < r.dist[v]) {
			continue
		}

		r.dist[v] = newDist
		r.prev[v] = u
		heap.Push(&r.pq, &nodeItem{id: v, dist: newDist})
	}
}

// nodeItem represents a bus and its tentative distance from the source.
type nodeItem struct {
	id   int
	dist float64
}

// nodePQ is a min-heap of *nodeItem ordered by (dist, id).
type nodePQ []*nodeItem

func (pq nodePQ) Len() int { return len(pq) }

func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}

	return pq[i].id < pq[j].id
}

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

// Push is called by heap.Push; x must be a *nodeItem.
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }

// Pop is called by heap.Pop.
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
