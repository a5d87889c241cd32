// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Rule contract, per-edge and auxiliary state, Result, Options and Variant.

package impedance

import (
	"fmt"
	"math"
	"strings"
)

// Edge is the traversal c→n handed to Rule.Combine.
type Edge struct {
	From, To     int
	Weight       float64 // generic weight
	R, X         float64 // symmetric
	Ratio        float64 // ρ(c,n)
	ReverseRatio float64 // ρ(n,c)
	Susceptance  float64 // b(c,n)
}

// Aux carries the auxiliary accumulators a rule threads along a path.
// Each rule reads only the fields it needs.
type Aux struct {
	R, X       float64 // running sums (LinesImpedance)
	Rho        float64 // running ratio product (SingleSideRatio)
	Rho1, Rho2 float64 // forward and reverse ratio products
	ProdY      float64 // Π 1/x
	ProdYSigma float64 // Π (1/x + b)
}

// InitialAux returns the accumulators at the source: products 1, sums 0.
func InitialAux() Aux {
	return Aux{Rho: 1, Rho1: 1, Rho2: 1, ProdY: 1, ProdYSigma: 1}
}

// Rule is one relaxation strategy plugged into Search.
//
// Combine returns the candidate cost and accumulators for reaching e.To from
// e.From, given the cost and accumulators already reached at e.From.
// Refer maps a bus target voltage onto the source voltage base using the
// accumulators of that bus.
type Rule interface {
	Name() string
	ReactanceAware() bool
	Combine(cost float64, aux Aux, e Edge) (float64, Aux)
	Refer(target float64, aux Aux) float64
}

// RuleFunc adapts a combine closure into a Rule. Its Refer is the identity
// and it does not request the negative reactance scan.
type RuleFunc func(cost float64, aux Aux, e Edge) (float64, Aux)

func (f RuleFunc) Name() string         { return "func" }
func (f RuleFunc) ReactanceAware() bool { return false }

func (f RuleFunc) Combine(cost float64, aux Aux, e Edge) (float64, Aux) { return f(cost, aux, e) }

func (f RuleFunc) Refer(target float64, _ Aux) float64 { return target }

// Result is the output of one Search call.
// Cost[v] is +Inf for buses outside the source's connected component.
type Result struct {
	Source int
	Rule   Rule
	Cost   []float64
	Aux    []Aux
}

// Reachable reports whether v was reached by the search.
func (r *Result) Reachable(v int) bool {
	return v >= 0 && v < len(r.Cost) && !math.IsInf(r.Cost[v], 1)
}

// Options configures Search.
type Options struct {
	// VoltageMin and VoltageMax bound the source target voltage on
	// physical-unit models. Per-unit models skip the check.
	VoltageMin, VoltageMax float64
}

// Option represents a functional option for configuring Search.
type Option func(*Options)

// DefaultOptions returns the plausibility band [5, 450] kV.
func DefaultOptions() Options {
	return Options{VoltageMin: 5, VoltageMax: 450}
}

// WithVoltageBand overrides the source voltage plausibility band.
// min > max or a NaN bound panics with ErrBadVoltageBand.
func WithVoltageBand(min, max float64) Option {
	return func(o *Options) {
		if math.IsNaN(min) || math.IsNaN(max) || min > max {
			panic(ErrBadVoltageBand.Error())
		}
		o.VoltageMin, o.VoltageMax = min, max
	}
}

// Variant names one of the built-in rules for configuration files and flags.
type Variant int

const (
	VariantLinesReactance Variant = iota
	VariantLinesImpedance
	VariantSingleSideRatio
	VariantDualRatio
	VariantAdmittanceProduct
)

var variantNames = [...]string{
	VariantLinesReactance:    "lines-reactance",
	VariantLinesImpedance:    "lines-impedance",
	VariantSingleSideRatio:   "single-side-ratio",
	VariantDualRatio:         "dual-ratio",
	VariantAdmittanceProduct: "admittance-product",
}

// Variants lists every built-in variant in increasing physical fidelity.
func Variants() []Variant {
	return []Variant{
		VariantLinesReactance,
		VariantLinesImpedance,
		VariantSingleSideRatio,
		VariantDualRatio,
		VariantAdmittanceProduct,
	}
}

// ParseVariant resolves a variant name (case-insensitive).
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, name := range variantNames {
		if name == s {
			return Variant(v), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}

	return variantNames[v]
}

// Rule returns the strategy implementing v, or nil for an unknown value.
func (v Variant) Rule() Rule {
	switch v {
	case VariantLinesReactance:
		return LinesReactance{}
	case VariantLinesImpedance:
		return LinesImpedance{}
	case VariantSingleSideRatio:
		return SingleSideRatio{}
	case VariantDualRatio:
		return DualRatio{}
	case VariantAdmittanceProduct:
		return AdmittanceProduct{}
	default:
		return nil
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if v.Rule() == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}

	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so variants decode
// directly from TOML and JSON strings.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed

	return nil
}
