// SPDX-License-Identifier: MIT
//
// File: diagnose.go
// Role: Diagnose and Check.

package coherence

import (
	"fmt"
	"math"

	"github.com/powsybl/powsybl-optimizer/impedance"
	"github.com/powsybl/powsybl-optimizer/network"
)

// Check runs impedance.Search from source and diagnoses the result.
//
// Errors:
//   - ErrBadThreshold, ErrNilNetwork.
//   - Any error returned by impedance.Search.
func Check(net *network.Network, source int, rule impedance.Rule, iMax float64, opts ...Option) (*Report, error) {
	if err := checkThreshold(iMax); err != nil {
		return nil, err
	}
	if net == nil {
		return nil, ErrNilNetwork
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	res, err := impedance.Search(net, source, rule, cfg.searchOpts...)
	if err != nil {
		return nil, err
	}

	return diagnose(net, res, iMax, cfg), nil
}

// Diagnose turns a completed search into a Report.
//
// For every bus i != source with finite cost it computes
// ΔV = |Refer(target(i)) - target(source)| and I = ΔV / cost[i]. A regulated
// bus with I > iMax yields a Warning, also logged at warn level.
// The network is only read.
//
// Errors:
//   - ErrBadThreshold, ErrNilNetwork, ErrNilResult, ErrResultMismatch.
func Diagnose(net *network.Network, res *impedance.Result, iMax float64, opts ...Option) (*Report, error) {
	if err := checkThreshold(iMax); err != nil {
		return nil, err
	}
	if net == nil {
		return nil, ErrNilNetwork
	}
	if res == nil || res.Rule == nil {
		return nil, ErrNilResult
	}
	if len(res.Cost) != net.Order() || len(res.Aux) != net.Order() {
		return nil, fmt.Errorf("%w: %d costs for %d buses", ErrResultMismatch, len(res.Cost), net.Order())
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return diagnose(net, res, iMax, cfg), nil
}

func diagnose(net *network.Network, res *impedance.Result, iMax float64, cfg config) *Report {
	src := res.Source
	srcTarget := net.TargetVoltage(src)

	rep := &Report{
		Source:    src,
		Rule:      res.Rule.Name(),
		Threshold: iMax,
		Cost:      res.Cost,
		Aux:       res.Aux,
		Currents:  make(map[int]float64),
		Warnings:  []Warning{},
		MaxVertex: -1,
	}

	for i, cost := range res.Cost {
		if i == src || math.IsInf(cost, 1) {
			continue
		}

		target := net.TargetVoltage(i)
		diffV := math.Abs(res.Rule.Refer(target, res.Aux[i]) - srcTarget)
		current := diffV / cost
		rep.Currents[i] = current

		if !net.IsRegulated(i) {
			continue
		}
		if rep.MaxVertex < 0 || current > rep.MaxCurrent {
			rep.MaxVertex, rep.MaxCurrent = i, current
		}
		if current > iMax {
			w := Warning{
				Source:       src,
				Vertex:       i,
				SourceTarget: srcTarget,
				VertexTarget: target,
				DiffV:        diffV,
				Admittance:   1 / cost,
				Current:      current,
				Threshold:    iMax,
			}
			rep.Warnings = append(rep.Warnings, w)
			cfg.logger.Warn("incoherent setpoints",
				"source", src, "vertex", i,
				"diff_v", diffV, "admittance", w.Admittance,
				"current", current, "threshold", iMax)
		}
	}

	cfg.logger.Debug("diagnostic done", "source", src, "rule", rep.Rule, "warnings", len(rep.Warnings))

	return rep
}

func checkThreshold(iMax float64) error {
	if math.IsNaN(iMax) || math.IsInf(iMax, 0) || iMax < 0 {
		return fmt.Errorf("%w: %g", ErrBadThreshold, iMax)
	}

	return nil
}
