// SPDX-License-Identifier: MIT
//
// File: sweep.go
// Role: Sweep runs Check from every regulated bus on a bounded worker pool.
//
// Determinism:
//   - Reports and Failures are sorted by source regardless of completion order.

package coherence

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/powsybl/powsybl-optimizer/impedance"
	"github.com/powsybl/powsybl-optimizer/network"
	"github.com/powsybl/powsybl-optimizer/outliers"
)

// Failure is a source whose Check returned an error, typically a
// *impedance.ValidationError.
type Failure struct {
	Source int
	Err    error
}

// SweepResult collects one Report per regulated source that validated.
type SweepResult struct {
	RunID    uuid.UUID
	Rule     string
	Started  time.Time
	Elapsed  time.Duration
	Reports  []*Report
	Failures []Failure
}

// Warnings returns every warning of every report, in source order.
func (s *SweepResult) Warnings() []Warning {
	var out []Warning
	for _, r := range s.Reports {
		out = append(out, r.Warnings...)
	}

	return out
}

// Suspect is a source whose largest regulated current is an upper outlier
// among all sources of the sweep.
type Suspect struct {
	Source     int
	Vertex     int
	MaxCurrent float64
}

// Suspects ranks sources by their largest current towards a regulated bus
// and returns the outlying ones, highest current first. Sources whose
// largest current is infinite are always suspects; sources that reached no
// regulated bus are ignored.
func (s *SweepResult) Suspects(m outliers.Method, param float64) ([]Suspect, error) {
	var (
		out    []Suspect
		series []float64
		owners []*Report
	)
	for _, r := range s.Reports {
		switch {
		case r.MaxVertex < 0 || math.IsNaN(r.MaxCurrent):
		case math.IsInf(r.MaxCurrent, 1):
			out = append(out, Suspect{Source: r.Source, Vertex: r.MaxVertex, MaxCurrent: r.MaxCurrent})
		default:
			series = append(series, r.MaxCurrent)
			owners = append(owners, r)
		}
	}

	if len(series) > 0 {
		idx, err := outliers.Detect(m, series, param)
		if err != nil {
			return nil, err
		}
		for _, i := range idx {
			r := owners[i]
			out = append(out, Suspect{Source: r.Source, Vertex: r.MaxVertex, MaxCurrent: r.MaxCurrent})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].MaxCurrent > out[j].MaxCurrent })

	return out, nil
}

// Sweep runs Check from every regulated bus of net, in parallel on an ants
// pool of WithWorkers goroutines. A source that fails validation is recorded
// in Failures and does not abort the sweep.
//
// Cancelling ctx stops submitting new sources; Sweep then waits for running
// checks and returns ctx.Err().
//
// Errors:
//   - ErrBadThreshold, ErrNilNetwork, impedance.ErrNilRule, ErrBadWorkers.
//   - ctx.Err() on cancellation, or the pool construction error.
func Sweep(ctx context.Context, net *network.Network, rule impedance.Rule, iMax float64, opts ...Option) (*SweepResult, error) {
	if err := checkThreshold(iMax); err != nil {
		return nil, err
	}
	if net == nil {
		return nil, ErrNilNetwork
	}
	if rule == nil {
		return nil, impedance.ErrNilRule
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadWorkers, cfg.workers)
	}

	pool, err := ants.NewPool(cfg.workers)
	if err != nil {
		return nil, fmt.Errorf("coherence: worker pool: %w", err)
	}
	defer pool.Release()

	out := &SweepResult{RunID: uuid.New(), Rule: rule.Name(), Started: time.Now()}
	sources := net.Regulated()
	cfg.logger.Info("sweep started", "run", out.RunID, "rule", out.Rule, "sources", len(sources), "workers", cfg.workers)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(rep *Report, f *Failure) {
		mu.Lock()
		defer mu.Unlock()
		if f != nil {
			out.Failures = append(out.Failures, *f)
			return
		}
		out.Reports = append(out.Reports, rep)
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err = pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			rep, err := Check(net, src, rule, iMax, opts...)
			if err != nil {
				cfg.logger.Debug("source skipped", "source", src, "err", err)
				record(nil, &Failure{Source: src, Err: err})
				return
			}
			record(rep, nil)
		})
		if err != nil {
			wg.Done()
			record(nil, &Failure{Source: src, Err: fmt.Errorf("coherence: submit: %w", err)})
		}
	}
	wg.Wait()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out.Reports, func(i, j int) bool { return out.Reports[i].Source < out.Reports[j].Source })
	sort.Slice(out.Failures, func(i, j int) bool { return out.Failures[i].Source < out.Failures[j].Source })
	out.Elapsed = time.Since(out.Started)
	cfg.logger.Info("sweep done", "run", out.RunID, "reports", len(out.Reports),
		"failures", len(out.Failures), "warnings", len(out.Warnings()), "elapsed", out.Elapsed)

	return out, nil
}
