// SPDX-License-Identifier: MIT
//
// File: engine.go
// Role: Search, the rule-parameterized lazy Dijkstra.
//
// Determinism:
//   - Neighbors are relaxed in ascending index order; heap ties pop the smaller bus.
//
// Concurrency:
//   - visited, cost and aux are allocated per call. The network is only read.

package impedance

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/powsybl/powsybl-optimizer/network"
)

// Search computes the equivalent impedance from source to every bus of net
// under rule.
//
// Implementation:
//   - Stage 1: Validate, in order: nil network, source range, nil rule, source
//     voltage band (physical models only), then for reactance-aware rules a
//     scan of every branch for x < 0. Nothing is computed on failure.
//   - Stage 2: Seed the heap with (0, source) and InitialAux for every bus.
//   - Stage 3: Pop, skip stale entries, mark visited, and for every unvisited
//     neighbor keep rule.Combine's candidate when it is strictly cheaper.
//     The search always runs to exhaustion.
//
// Errors:
//   - ErrNilNetwork, ErrVertexNotFound, ErrNilRule.
//   - *ValidationError wrapping ErrInvalidSourceVoltage or ErrNegativeReactance.
//
// Complexity: O(V² + E log V) time, O(V + E) memory.
func Search(net *network.Network, source int, rule Rule, opts ...Option) (*Result, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validate(net, source, rule, cfg); err != nil {
		return nil, err
	}

	r := newRunner(net, source, rule)
	r.process()

	return &Result{Source: source, Rule: rule, Cost: r.cost, Aux: r.aux}, nil
}

func validate(net *network.Network, source int, rule Rule, cfg Options) error {
	if net == nil {
		return ErrNilNetwork
	}
	if source < 0 || source >= net.Order() {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrVertexNotFound, source, net.Order())
	}
	if rule == nil {
		return ErrNilRule
	}

	if !net.PerUnit() {
		v := net.TargetVoltage(source)
		// NaN fails both comparisons, so test the accepted range directly.
		if !(v >= cfg.VoltageMin && v <= cfg.VoltageMax) {
			return &ValidationError{
				Err:    ErrInvalidSourceVoltage,
				Source: source,
				Value:  v,
				Min:    cfg.VoltageMin,
				Max:    cfg.VoltageMax,
				From:   -1,
				To:     -1,
			}
		}
	}

	if rule.ReactanceAware() {
		for _, b := range net.Branches() {
			if b.X < 0 {
				return &ValidationError{
					Err:    ErrNegativeReactance,
					Source: source,
					Value:  b.X,
					From:   b.From,
					To:     b.To,
				}
			}
		}
	}

	return nil
}

// runner holds the mutable state for a single Search execution.
type runner struct {
	net     *network.Network
	rule    Rule
	cost    []float64
	aux     []Aux
	visited []bool
	pq      costPQ
}

func newRunner(net *network.Network, source int, rule Rule) *runner {
	n := net.Order()
	r := &runner{
		net:     net,
		rule:    rule,
		cost:    make([]float64, n),
		aux:     make([]Aux, n),
		visited: make([]bool, n),
		pq:      make(costPQ, 0, n),
	}
	for v := 0; v < n; v++ {
		r.cost[v] = math.Inf(1)
		r.aux[v] = InitialAux()
	}
	r.cost[source] = 0

	heap.Init(&r.pq)
	heap.Push(&r.pq, costItem{id: source, cost: 0})

	return r
}

func (r *runner) process() {
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(costItem)
		c := item.id
		if r.visited[c] {
			continue
		}
		r.visited[c] = true

		for _, n := range r.net.Neighbors(c) {
			if r.visited[n] {
				continue
			}
			b, ok := r.net.Branch(c, n)
			if !ok {
				continue
			}

			cand, candAux := r.rule.Combine(r.cost[c], r.aux[c], toEdge(b))
			// NaN candidates compare false and are never relaxed.
			if cand < r.cost[n] {
				r.cost[n] = cand
				r.aux[n] = candAux
				heap.Push(&r.pq, costItem{id: n, cost: cand})
			}
		}
	}
}

func toEdge(b network.Branch) Edge {
	return Edge{
		From:         b.From,
		To:           b.To,
		Weight:       b.Weight,
		R:            b.R,
		X:            b.X,
		Ratio:        b.Ratio,
		ReverseRatio: b.ReverseRatio,
		Susceptance:  b.Susceptance,
	}
}

type costItem struct {
	id   int
	cost float64
}

// costPQ is a min-heap of costItem ordered by (cost, id).
type costPQ []costItem

func (pq costPQ) Len() int { return len(pq) }

func (pq costPQ) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}

	return pq[i].id < pq[j].id
}

func (pq costPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *costPQ) Push(x interface{}) { *pq = append(*pq, x.(costItem)) }

func (pq *costPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
