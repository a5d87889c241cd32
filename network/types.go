// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Network, Branch, options, sentinel errors and the New constructor.

package network

import (
	"errors"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/powsybl/powsybl-optimizer/matrix"
)

// Sentinel errors for network model operations.
var (
	// ErrBadOrder indicates a non-positive vertex count passed to New.
	ErrBadOrder = errors.New("network: vertex count must be positive")

	// ErrVertexOutOfRange indicates a bus index outside [0, N).
	ErrVertexOutOfRange = errors.New("network: vertex out of range")

	// ErrSelfLoop indicates a branch from a bus to itself.
	ErrSelfLoop = errors.New("network: self-loop not allowed")

	// ErrNegativeReactance indicates AddBranch was called with x < 0.
	ErrNegativeReactance = errors.New("network: negative reactance")

	// ErrEdgeNotFound indicates a setter referenced a pair with no branch.
	ErrEdgeNotFound = errors.New("network: edge not found")

	// ErrNonFinite indicates a NaN or ±Inf branch parameter.
	ErrNonFinite = errors.New("network: non-finite branch parameter")

	// ErrAsymmetric indicates a symmetric attribute (adjacency, weight, r, x) differs between directions.
	ErrAsymmetric = errors.New("network: symmetric attribute differs between directions")
)

// Branch is a directional view of one branch, as seen when traversing From→To.
//
// R, X and Weight are symmetric. Ratio/Susceptance are the values stored on
// From→To; ReverseRatio/ReverseSusceptance the ones stored on To→From.
type Branch struct {
	From, To           int
	Weight             float64
	R, X               float64
	Ratio              float64 // ρ(From,To)
	ReverseRatio       float64 // ρ(To,From)
	Susceptance        float64 // b(From,To)
	ReverseSusceptance float64 // b(To,From)
}

// Option configures a Network at construction time.
type Option func(*Network)

// WithPerUnit sets the unit mode. true (the default) means per-unit values;
// false means physical kV/ohm values, for which searches apply the
// source voltage plausibility band.
func WithPerUnit(perUnit bool) Option {
	return func(n *Network) { n.perUnit = perUnit }
}

// WithLogger sets the logger used to report refused branches.
// A nil logger keeps the default.
func WithLogger(l *log.Logger) Option {
	return func(n *Network) {
		if l != nil {
			n.logger = l
		}
	}
}

// BranchOption configures the transformer parameters of a branch in AddBranch.
type BranchOption func(*branchConfig)

type branchConfig struct {
	ratio       float64
	susceptance float64
}

// WithRatio sets the transformer turns ratio applied when traversing u→v.
// The reverse direction keeps ratio 1.
func WithRatio(rho float64) BranchOption {
	return func(c *branchConfig) { c.ratio = rho }
}

// WithSusceptance sets the shunt susceptance stored on u→v.
// The reverse direction keeps susceptance 0.
func WithSusceptance(b float64) BranchOption {
	return func(c *branchConfig) { c.susceptance = b }
}

// Network is the transmission network model.
//
// mu guards every field below it. Matrices are n×n and indexed [from][to].
type Network struct {
	mu sync.RWMutex

	n       int         // vertex count, fixed at construction
	perUnit bool        // per-unit (true) or physical units (false)
	logger  *log.Logger // receives refused-branch warnings

	adj    []bool        // adj[u*n+v]: branch present in direction u→v
	weight *matrix.Dense // symmetric generic cost
	r      *matrix.Dense // symmetric resistance
	x      *matrix.Dense // symmetric reactance
	rho    *matrix.Dense // directional ratio, default 1
	b      *matrix.Dense // directional susceptance, default 0

	targetV   []float64        // target voltage per bus, +Inf until set
	voltage   []float64        // measured voltage per bus, +Inf until set
	regulated map[int]struct{} // PV set
}

// New creates a Network with n buses and no branches.
// By default the model is per-unit and logs through log.Default().
//
// Errors:
//   - ErrBadOrder if n <= 0.
//
// Complexity: O(n²) time and memory.
func New(n int, opts ...Option) (*Network, error) {
	if n <= 0 {
		return nil, ErrBadOrder
	}

	net := &Network{
		n:         n,
		perUnit:   true,
		logger:    log.Default(),
		adj:       make([]bool, n*n),
		targetV:   make([]float64, n),
		voltage:   make([]float64, n),
		regulated: make(map[int]struct{}),
	}
	for i := 0; i < n; i++ {
		net.targetV[i] = math.Inf(1)
		net.voltage[i] = math.Inf(1)
	}

	var err error
	if net.weight, err = matrix.NewDense(n, n); err != nil {
		return nil, err
	}
	if net.r, err = matrix.NewDense(n, n); err != nil {
		return nil, err
	}
	if net.x, err = matrix.NewDense(n, n); err != nil {
		return nil, err
	}
	if net.rho, err = matrix.NewFilled(n, n, 1); err != nil {
		return nil, err
	}
	if net.b, err = matrix.NewDense(n, n); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(net)
	}

	return net, nil
}
