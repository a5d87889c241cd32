// SPDX-License-Identifier: MIT
//
// File: rules.go
// Role: The built-in relaxation rules, from plain weight to admittance products.
//
// Every per-edge term is non-negative when x >= 0 and the ratios are positive,
// which keeps the lazy search correct. Ratios are not checked: ρ == 0 yields
// Inf or NaN candidates, which are never relaxed.

package impedance

import "math"

// Additive sums the generic edge weight. On the same network it reproduces
// the baseline dijkstra package.
type Additive struct{}

func (Additive) Name() string         { return "additive" }
func (Additive) ReactanceAware() bool { return false }

func (Additive) Combine(cost float64, aux Aux, e Edge) (float64, Aux) {
	return cost + e.Weight, aux
}

func (Additive) Refer(target float64, _ Aux) float64 { return target }

// LinesReactance sums reactance, for networks without transformers.
type LinesReactance struct{}

func (LinesReactance) Name() string         { return VariantLinesReactance.String() }
func (LinesReactance) ReactanceAware() bool { return false }

func (LinesReactance) Combine(cost float64, aux Aux, e Edge) (float64, Aux) {
	return cost + e.X, aux
}

func (LinesReactance) Refer(target float64, _ Aux) float64 { return target }

// LinesImpedance sums r and x separately and costs the path by |r + jx|.
type LinesImpedance struct{}

func (LinesImpedance) Name() string         { return VariantLinesImpedance.String() }
func (LinesImpedance) ReactanceAware() bool { return false }

func (LinesImpedance) Combine(_ float64, aux Aux, e Edge) (float64, Aux) {
	aux.R += e.R
	aux.X += e.X

	return math.Sqrt(aux.R*aux.R + aux.X*aux.X), aux
}

func (LinesImpedance) Refer(target float64, _ Aux) float64 { return target }

// SingleSideRatio refers reactance to one side of each transformer:
//
//	cost' = cost·ρ + x/(ρ·Rho),  Rho' = Rho·ρ
type SingleSideRatio struct{}

func (SingleSideRatio) Name() string         { return VariantSingleSideRatio.String() }
func (SingleSideRatio) ReactanceAware() bool { return true }

func (SingleSideRatio) Combine(cost float64, aux Aux, e Edge) (float64, Aux) {
	cand := cost*e.Ratio + e.X/(e.Ratio*aux.Rho)
	aux.Rho *= e.Ratio

	return cand, aux
}

func (SingleSideRatio) Refer(target float64, aux Aux) float64 { return target * aux.Rho }

// DualRatio tracks the forward and reverse ratio products so each reactance
// is referred to the source base on both sides:
//
//	cost' = cost + x·Rho2²/(Rho1²·ρ²),  Rho1' = Rho1·ρ(c,n),  Rho2' = Rho2·ρ(n,c)
type DualRatio struct{}

func (DualRatio) Name() string         { return VariantDualRatio.String() }
func (DualRatio) ReactanceAware() bool { return true }

func (DualRatio) Combine(cost float64, aux Aux, e Edge) (float64, Aux) {
	cand := cost + e.X*referral(aux, e)
	aux.Rho1 *= e.Ratio
	aux.Rho2 *= e.ReverseRatio

	return cand, aux
}

func (DualRatio) Refer(target float64, aux Aux) float64 {
	return target * aux.Rho2 / aux.Rho1
}

// AdmittanceProduct refines DualRatio with the shunt susceptance b(c,n):
// each edge contributes 1/(1/x + b), scaled by the running ratio of
// admittance products ΠY/ΠYσ. A branch with x == 0 adds nothing and leaves
// ΠY/ΠYσ unchanged, the limit of y/(y+b) as y grows without bound.
type AdmittanceProduct struct{}

func (AdmittanceProduct) Name() string         { return VariantAdmittanceProduct.String() }
func (AdmittanceProduct) ReactanceAware() bool { return true }

func (AdmittanceProduct) Combine(cost float64, aux Aux, e Edge) (float64, Aux) {
	if e.X == 0 {
		aux.Rho1 *= e.Ratio
		aux.Rho2 *= e.ReverseRatio

		return cost, aux
	}
	y := 1 / e.X
	ySigma := y + e.Susceptance

	cand := cost + aux.ProdY/(aux.ProdYSigma*ySigma)*referral(aux, e)
	aux.Rho1 *= e.Ratio
	aux.Rho2 *= e.ReverseRatio
	aux.ProdY *= y
	aux.ProdYSigma *= ySigma

	return cand, aux
}

func (AdmittanceProduct) Refer(target float64, aux Aux) float64 {
	return target * aux.Rho2 * aux.ProdY / (aux.Rho1 * aux.ProdYSigma)
}

// referral is Rho2²/(Rho1²·ρ²) for the edge about to be traversed.
func referral(aux Aux, e Edge) float64 {
	return aux.Rho2 * aux.Rho2 / (aux.Rho1 * aux.Rho1 * e.Ratio * e.Ratio)
}
