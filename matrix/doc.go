// Package matrix provides the dense, row-major float64 storage used by the
// network model for its per-branch electrical parameters.
//
// The package provides:
//
//   - Dense: an r×c matrix with bounds-checked At/Set that return errors
//     instead of panicking.
//   - A numeric policy: Set rejects NaN and ±Inf by default, so a branch
//     parameter can never silently poison a shortest-path search.
//   - Deterministic visitors (Do, Apply) and a symmetry check used to verify
//     the network invariants (r and x symmetric, ρ and b directional).
//
// Matrices are best for dense or small graphs where O(V²) memory is
// acceptable, which is the case for the transmission network cases this
// module diagnoses.
package matrix
