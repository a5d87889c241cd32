// Package dijkstra provides the baseline single-source shortest-path routine
// over the generic edge weights of a network.Network.
//
// Overview:
//
//   - Dijkstra computes the minimum-weight distance from one source bus to all
//     reachable buses with a lazy-deletion binary heap (no decrease-key).
//   - Supports optional path reconstruction, distance caps, and “impassable” edge thresholds.
//   - Branches added with network.AddBranch carry weight = x, so on a branch
//     network this routine measures plain accumulated reactance. It is the
//     reference the generalized impedance engine is checked against.
//
// Determinism:
//
//   - Neighbors are relaxed in ascending index order and heap ties pop the
//     smaller bus first, so dist and prev are reproducible.
//
// Error handling (sentinel errors):
//
//   - ErrNoSource:        no Source option was given.
//   - ErrNilGraph:        a nil *network.Network was passed.
//   - ErrVertexNotFound:  the source index is out of range.
//   - ErrNegativeWeight:  some edge has a negative weight (O(E) pre-scan).
//   - ErrBadMaxDistance:  raised via panic by WithMaxDistance.
//   - ErrBadInfThreshold: raised via panic by WithInfEdgeThreshold.
//
// API reference:
//
//	func Dijkstra(
//	    g *network.Network,
//	    opts ...Option,
//	) (dist []float64, prev []int, err error)
//
//	  - dist: dist[v] = minimal distance from Source to v, or +Inf if unreachable.
//	  - prev: prev[v] = predecessor of v, -1 for the source or unreachable buses.
//	          Nil unless WithReturnPath() is given.
//
// Thread safety:
//
//   - All search state is local to the call. Concurrent calls on one network
//     are safe; mutating the network during a call is serialized per access only.
package dijkstra
