// Package network provides the in-memory transmission network model the
// coherence diagnostic runs on: a fixed set of buses (vertices indexed
// 0..N-1) joined by branches (lines or transformers) that carry electrical
// parameters.
//
// The Network N = (V,E) stores:
//
//   - Adjacency: a branch between u and v exists iff it is set in both
//     directions; at most one branch per pair, no self-loops.
//   - weight, r, x: symmetric per-branch values (weight is the generic edge
//     cost used by the baseline Dijkstra; a branch sets it to x).
//   - ρ (ratio) and b (susceptance): DIRECTIONAL. AddBranch(u, v, ...)
//     stores the given ratio on u→v and 1 on v→u, the given susceptance on
//     u→v and 0 on v→u. Search rules read both directions and rely on this
//     asymmetry.
//   - Per-bus target voltage, measured voltage and the regulated (PV) set.
//   - A perUnit flag selecting which voltage plausibility bounds apply.
//
// Construction:
//
//	net, err := network.New(3, network.WithPerUnit(false))
//	_ = net.AddBranch(0, 1, 0, 2.86, network.WithRatio(1.01))
//	_ = net.AddBranch(1, 2, 0, 0.17, network.WithRatio(0.997/2))
//	_ = net.MarkRegulated(0, 430)
//	_ = net.MarkRegulated(2, 185)
//
// Errors:
//
//	ErrBadOrder          - vertex count is not positive.
//	ErrVertexOutOfRange  - a bus index is outside [0, N).
//	ErrSelfLoop          - a branch from a bus to itself.
//	ErrNegativeReactance - AddBranch with x < 0 (the branch is refused and logged).
//	ErrEdgeNotFound      - a setter referenced a missing branch.
//	ErrNonFinite         - a NaN or ±Inf branch parameter.
//	ErrAsymmetric        - Validate found a broken symmetry invariant.
//
// Concurrency:
//
// All methods are safe for concurrent use: a sync.RWMutex guards the
// model. The model carries no per-search state, so any number of searches
// may read it at once.
package network
