// SPDX-License-Identifier: MIT
//
// File: methods.go
// Role: Branch and bus mutation.
//
// Determinism:
//   - Every mutator validates all of its inputs before touching the model, so a
//     failed call leaves the Network unchanged.
//
// Concurrency:
//   - Mutators take the write lock.

package network

import (
	"fmt"
	"math"

	"github.com/powsybl/powsybl-optimizer/matrix"
)

// AddEdge sets a symmetric edge u—v with the given generic weight.
// It does not touch the electrical parameters; use AddBranch for lines and
// transformers. Re-adding an existing edge overwrites its weight.
//
// Errors:
//   - ErrVertexOutOfRange, ErrSelfLoop, ErrNonFinite.
//
// Complexity: O(1).
func (n *Network) AddEdge(u, v int, weight float64) error {
	if err := n.checkPair(u, v); err != nil {
		return err
	}
	if !finite(weight) {
		return fmt.Errorf("%w: edge %d-%d weight=%g", ErrNonFinite, u, v, weight)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.link(u, v)
	n.setSym(n.weight, u, v, weight)

	return nil
}

// AddBranch adds (or overwrites) the branch u—v with resistance r and reactance x.
//
// Implementation:
//   - Stage 1: Validate indices, reject x < 0 (logged and returned as ErrNegativeReactance).
//   - Stage 2: Resolve options (ratio defaults to 1, susceptance to 0) and check finiteness.
//   - Stage 3: Under the write lock set adjacency, symmetric r/x/weight and the
//     directional ratio/susceptance: ρ[u][v]=ratio, ρ[v][u]=1, b[u][v]=b, b[v][u]=0.
//
// The branch weight is set to x, so the baseline Dijkstra over a branch
// network measures plain reactance.
//
// Errors:
//   - ErrVertexOutOfRange, ErrSelfLoop, ErrNegativeReactance, ErrNonFinite.
//
// Complexity: O(1).
func (n *Network) AddBranch(u, v int, r, x float64, opts ...BranchOption) error {
	if err := n.checkPair(u, v); err != nil {
		return err
	}
	if x < 0 {
		n.logger.Warn("branch refused: negative reactance", "from", u, "to", v, "x", x)
		return fmt.Errorf("%w: branch %d-%d x=%g", ErrNegativeReactance, u, v, x)
	}

	cfg := branchConfig{ratio: 1, susceptance: 0}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, p := range []float64{r, x, cfg.ratio, cfg.susceptance} {
		if !finite(p) {
			return fmt.Errorf("%w: branch %d-%d", ErrNonFinite, u, v)
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.link(u, v)
	n.setSym(n.weight, u, v, x)
	n.setSym(n.r, u, v, r)
	n.setSym(n.x, u, v, x)
	_ = n.rho.Set(u, v, cfg.ratio)
	_ = n.rho.Set(v, u, 1)
	_ = n.b.Set(u, v, cfg.susceptance)
	_ = n.b.Set(v, u, 0)

	return nil
}

// SetImpedance overwrites r and x (and the weight) of an existing branch, symmetrically.
// Unlike AddBranch it performs no sign check: unit conversion may rescale
// values arbitrarily, and searches validate reactance themselves.
//
// Errors:
//   - ErrVertexOutOfRange, ErrSelfLoop, ErrEdgeNotFound, ErrNonFinite.
func (n *Network) SetImpedance(u, v int, r, x float64) error {
	if err := n.checkPair(u, v); err != nil {
		return err
	}
	if !finite(r) || !finite(x) {
		return fmt.Errorf("%w: branch %d-%d", ErrNonFinite, u, v)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.adj[u*n.n+v] {
		return fmt.Errorf("%w: %d-%d", ErrEdgeNotFound, u, v)
	}
	n.setSym(n.r, u, v, r)
	n.setSym(n.x, u, v, x)
	n.setSym(n.weight, u, v, x)

	return nil
}

// SetRatio overwrites the directional ratio ρ[u][v] of an existing branch.
// ρ[v][u] is left untouched.
//
// Errors:
//   - ErrVertexOutOfRange, ErrSelfLoop, ErrEdgeNotFound, ErrNonFinite.
func (n *Network) SetRatio(u, v int, rho float64) error {
	return n.setDirectional(u, v, rho, true)
}

// SetSusceptance overwrites the directional susceptance b[u][v] of an existing branch.
// b[v][u] is left untouched.
//
// Errors:
//   - ErrVertexOutOfRange, ErrSelfLoop, ErrEdgeNotFound, ErrNonFinite.
func (n *Network) SetSusceptance(u, v int, b float64) error {
	return n.setDirectional(u, v, b, false)
}

func (n *Network) setDirectional(u, v int, val float64, ratio bool) error {
	if err := n.checkPair(u, v); err != nil {
		return err
	}
	if !finite(val) {
		return fmt.Errorf("%w: branch %d-%d", ErrNonFinite, u, v)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.adj[u*n.n+v] {
		return fmt.Errorf("%w: %d-%d", ErrEdgeNotFound, u, v)
	}
	if ratio {
		_ = n.rho.Set(u, v, val)
	} else {
		_ = n.b.Set(u, v, val)
	}

	return nil
}

// SetTargetVoltage overwrites the target voltage of bus v without changing
// its regulated status (used by unit conversion).
//
// Errors:
//   - ErrVertexOutOfRange.
func (n *Network) SetTargetVoltage(v int, value float64) error {
	if err := n.checkVertex(v); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.targetV[v] = value

	return nil
}

// MarkRegulated adds bus v to the PV set and records its target voltage in one step.
//
// Errors:
//   - ErrVertexOutOfRange.
func (n *Network) MarkRegulated(v int, target float64) error {
	if err := n.checkVertex(v); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.targetV[v] = target
	n.regulated[v] = struct{}{}

	return nil
}

// SetVoltage records the measured voltage of bus v. It is informational only:
// searches and diagnostics work on target voltages.
//
// Errors:
//   - ErrVertexOutOfRange.
func (n *Network) SetVoltage(v int, value float64) error {
	if err := n.checkVertex(v); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.voltage[v] = value

	return nil
}

// SetPerUnit switches the unit mode flag. It does not rescale any value.
func (n *Network) SetPerUnit(perUnit bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.perUnit = perUnit
}

// checkVertex validates 0 <= v < N.
func (n *Network) checkVertex(v int) error {
	if v < 0 || v >= n.n {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrVertexOutOfRange, v, n.n)
	}

	return nil
}

// checkPair validates both endpoints and rejects self-loops.
func (n *Network) checkPair(u, v int) error {
	if err := n.checkVertex(u); err != nil {
		return err
	}
	if err := n.checkVertex(v); err != nil {
		return err
	}
	if u == v {
		return fmt.Errorf("%w: %d", ErrSelfLoop, u)
	}

	return nil
}

// link sets adjacency in both directions. Caller holds the write lock.
func (n *Network) link(u, v int) {
	n.adj[u*n.n+v] = true
	n.adj[v*n.n+u] = true
}

// setSym writes val at (u,v) and (v,u). Indices and finiteness are validated
// by the caller, so matrix errors cannot occur.
func (n *Network) setSym(m *matrix.Dense, u, v int, val float64) {
	_ = m.Set(u, v, val)
	_ = m.Set(v, u, val)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
