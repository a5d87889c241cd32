// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Warning, Report, options and sentinel errors.

package coherence

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/powsybl/powsybl-optimizer/impedance"
)

// Sentinel errors for the diagnostic.
var (
	// ErrNilNetwork indicates a nil *network.Network.
	ErrNilNetwork = errors.New("coherence: network is nil")

	// ErrNilResult indicates Diagnose received a nil search result.
	ErrNilResult = errors.New("coherence: search result is nil")

	// ErrResultMismatch indicates a result whose size differs from the network order.
	ErrResultMismatch = errors.New("coherence: result does not match network")

	// ErrBadThreshold indicates a negative, NaN or infinite current threshold.
	ErrBadThreshold = errors.New("coherence: current threshold must be finite and non-negative")

	// ErrBadWorkers indicates a non-positive worker count.
	ErrBadWorkers = errors.New("coherence: worker count must be positive")
)

// Warning records one regulated bus whose setpoint is incoherent with the
// source: the implied circulating current exceeds Threshold.
type Warning struct {
	Source       int     `json:"source"`
	Vertex       int     `json:"vertex"`
	SourceTarget float64 `json:"source_target"`
	VertexTarget float64 `json:"vertex_target"`
	DiffV        float64 `json:"diff_v"`
	Admittance   float64 `json:"admittance"`
	Current      float64 `json:"current"`
	Threshold    float64 `json:"threshold"`
}

func (w Warning) String() string {
	return fmt.Sprintf("|V_%d - V_%d| = |%f - %f| = %f and Y = %f and I_%d_%d = %f > %f",
		w.Source, w.Vertex, w.SourceTarget, w.VertexTarget, w.DiffV,
		w.Admittance, w.Source, w.Vertex, w.Current, w.Threshold)
}

// Report is the outcome of one diagnostic.
//
// Currents holds |ΔV|/Z for every reached bus other than the source,
// regulated or not. Warnings is empty, never nil, when nothing is flagged.
// MaxVertex is -1 when no regulated bus was reached.
type Report struct {
	Source     int
	Rule       string
	Threshold  float64
	Cost       []float64
	Aux        []impedance.Aux
	Currents   map[int]float64
	Warnings   []Warning
	MaxVertex  int
	MaxCurrent float64
}

// Coherent reports whether no warning was raised.
func (r *Report) Coherent() bool { return len(r.Warnings) == 0 }

// Option configures Check, Diagnose and Sweep.
type Option func(*config)

type config struct {
	logger     *log.Logger
	searchOpts []impedance.Option
	workers    int
}

func defaultConfig() config {
	return config{logger: log.Default(), workers: runtime.NumCPU()}
}

// WithLogger sets the logger that receives warnings. A nil logger keeps the default.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSearchOptions forwards options to impedance.Search.
func WithSearchOptions(opts ...impedance.Option) Option {
	return func(c *config) { c.searchOpts = append(c.searchOpts, opts...) }
}

// WithWorkers bounds the Sweep worker pool. Defaults to runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}
