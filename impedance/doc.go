// SPDX-License-Identifier: MIT

// Package impedance computes equivalent electrical distances on a
// network.Network with a single lazy Dijkstra engine parameterized by a Rule.
//
// Overview:
//
//   - Search(net, source, rule) returns, per bus, the accumulated cost and the
//     auxiliary accumulators (ratio products, admittance products) the rule
//     threads along the cheapest path.
//   - Rules, in increasing physical fidelity: Additive (generic weight),
//     LinesReactance, LinesImpedance, SingleSideRatio, DualRatio and
//     AdmittanceProduct. Custom strategies implement Rule or use RuleFunc.
//   - Variant names the five electrical rules for configuration and flags.
//
// Transformer convention:
//
//   - The ratio ρ(u,v) applies when traversing u→v; the reverse direction
//     defaults to 1, and susceptance likewise to 0. DualRatio reads both
//     ρ(c,n) and ρ(n,c), so the asymmetry is part of the contract.
//
// Validation (before any relaxation, in order):
//
//   - ErrNilNetwork, ErrVertexNotFound, ErrNilRule.
//   - Physical models only: the source target voltage must lie in the band
//     (default [5, 450] kV, see WithVoltageBand), else ErrInvalidSourceVoltage.
//   - Reactance-aware rules only: every branch of the model, reachable or
//     not, must have x >= 0, else ErrNegativeReactance.
//
// The last two are returned as *ValidationError. Unreachable buses keep
// cost +Inf; this is data, not an error.
//
// Thread safety:
//
//   - Search keeps its visited set, costs and accumulators local to the call,
//     so concurrent searches on one network are safe.
package impedance
