// SPDX-License-Identifier: MIT
//
// File: queries.go
// Role: Read-only accessors, enumeration and invariant validation.
//
// Determinism:
//   - Neighbors, Regulated and Branches return ascending bus indices.
//
// Concurrency:
//   - Read locks only.

package network

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/powsybl/powsybl-optimizer/matrix"
)

// Order returns the number of buses N. It never changes after New.
func (n *Network) Order() int { return n.n }

// PerUnit reports whether values are per-unit (true) or physical (false).
func (n *Network) PerUnit() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.perUnit
}

// HasEdge reports whether a branch (or plain edge) joins u and v.
// Out-of-range indices yield false.
func (n *Network) HasEdge(u, v int) bool {
	if n.checkVertex(u) != nil || n.checkVertex(v) != nil {
		return false
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.adj[u*n.n+v] && n.adj[v*n.n+u]
}

// Neighbors returns the buses adjacent to u in ascending order.
// Out-of-range u yields nil.
//
// Complexity: O(N).
func (n *Network) Neighbors(u int) []int {
	if n.checkVertex(u) != nil {
		return nil
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	var out []int
	row := n.adj[u*n.n : (u+1)*n.n]
	for v, ok := range row {
		if ok {
			out = append(out, v)
		}
	}

	return out
}

// Branch returns the directional view of the branch u→v and true, or a zero
// Branch and false when no branch joins them.
func (n *Network) Branch(u, v int) (Branch, bool) {
	if !n.HasEdge(u, v) {
		return Branch{}, false
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.branch(u, v), true
}

// branch assembles the u→v view. Caller holds a lock and has validated (u,v).
func (n *Network) branch(u, v int) Branch {
	return Branch{
		From:               u,
		To:                 v,
		Weight:             at(n.weight, u, v),
		R:                  at(n.r, u, v),
		X:                  at(n.x, u, v),
		Ratio:              at(n.rho, u, v),
		ReverseRatio:       at(n.rho, v, u),
		Susceptance:        at(n.b, u, v),
		ReverseSusceptance: at(n.b, v, u),
	}
}

// Branches returns one directional view per branch, with From < To, ordered
// by (From, To).
//
// Complexity: O(N²).
func (n *Network) Branches() []Branch {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var out []Branch
	for u := 0; u < n.n; u++ {
		for v := u + 1; v < n.n; v++ {
			if n.adj[u*n.n+v] {
				out = append(out, n.branch(u, v))
			}
		}
	}

	return out
}

// Weight returns the generic edge weight of u—v, or NaN if there is no edge.
func (n *Network) Weight(u, v int) float64 { return n.value(n.weight, u, v) }

// Resistance returns r(u,v), or NaN if there is no edge.
func (n *Network) Resistance(u, v int) float64 { return n.value(n.r, u, v) }

// Reactance returns x(u,v), or NaN if there is no edge.
func (n *Network) Reactance(u, v int) float64 { return n.value(n.x, u, v) }

// Ratio returns the directional ratio ρ(u,v), or NaN if there is no edge.
func (n *Network) Ratio(u, v int) float64 { return n.value(n.rho, u, v) }

// Susceptance returns the directional susceptance b(u,v), or NaN if there is no edge.
func (n *Network) Susceptance(u, v int) float64 { return n.value(n.b, u, v) }

func (n *Network) value(m *matrix.Dense, u, v int) float64 {
	if !n.HasEdge(u, v) {
		return math.NaN()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	return at(m, u, v)
}

// TargetVoltage returns the target voltage of bus v (+Inf when never set,
// NaN when v is out of range).
func (n *Network) TargetVoltage(v int) float64 {
	if n.checkVertex(v) != nil {
		return math.NaN()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.targetV[v]
}

// Voltage returns the measured voltage of bus v (+Inf when never set,
// NaN when v is out of range).
func (n *Network) Voltage(v int) float64 {
	if n.checkVertex(v) != nil {
		return math.NaN()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.voltage[v]
}

// IsRegulated reports whether bus v belongs to the PV set.
func (n *Network) IsRegulated(v int) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	_, ok := n.regulated[v]

	return ok
}

// Regulated returns the PV set in ascending order.
func (n *Network) Regulated() []int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]int, 0, len(n.regulated))
	for v := range n.regulated {
		out = append(out, v)
	}
	sort.Ints(out)

	return out
}

// Validate checks the model invariants: symmetric adjacency, weight, r and x,
// and no self-loops. The directional ratio and susceptance are not checked.
//
// Errors:
//   - ErrAsymmetric (wrapped with the offending attribute) or ErrSelfLoop.
func (n *Network) Validate() error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for u := 0; u < n.n; u++ {
		if n.adj[u*n.n+u] {
			return fmt.Errorf("%w: %d", ErrSelfLoop, u)
		}
		for v := u + 1; v < n.n; v++ {
			if n.adj[u*n.n+v] != n.adj[v*n.n+u] {
				return fmt.Errorf("%w: adjacency %d-%d", ErrAsymmetric, u, v)
			}
		}
	}
	for _, sym := range []struct {
		name string
		m    *matrix.Dense
	}{{"weight", n.weight}, {"r", n.r}, {"x", n.x}} {
		ok, err := sym.m.IsSymmetric(0)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrAsymmetric, sym.name)
		}
	}

	return nil
}

// String renders the adjacency matrix, measured voltages and target voltages.
func (n *Network) String() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var b strings.Builder
	b.WriteString("\nAdjacency matrix :\n")
	for u := 0; u < n.n; u++ {
		fmt.Fprintf(&b, "%v\n", n.adj[u*n.n:(u+1)*n.n])
	}
	fmt.Fprintf(&b, "\nVoltages :\n%v\n", n.voltage)
	fmt.Fprintf(&b, "\nTarget V :\n%v", n.targetV)

	return b.String()
}

// at reads (u,v) from m; indices are validated by the caller.
func at(m *matrix.Dense, u, v int) float64 {
	val, _ := m.At(u, v)

	return val
}
