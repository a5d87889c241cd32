package cli

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/powsybl/powsybl-optimizer/coherence"
)

// number encodes non-finite values as null, which JSON cannot represent.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}

	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func numbers(fs []float64) []number {
	out := make([]number, len(fs))
	for i, f := range fs {
		out[i] = number(f)
	}

	return out
}

type warningJSON struct {
	Source       int    `json:"source"`
	Vertex       int    `json:"vertex"`
	SourceTarget number `json:"source_target"`
	VertexTarget number `json:"vertex_target"`
	DiffV        number `json:"diff_v"`
	Admittance   number `json:"admittance"`
	Current      number `json:"current"`
	Threshold    number `json:"threshold"`
}

type reportJSON struct {
	Source     int           `json:"source"`
	Rule       string        `json:"rule"`
	Threshold  number        `json:"threshold"`
	Coherent   bool          `json:"coherent"`
	Cost       []number      `json:"cost"`
	Warnings   []warningJSON `json:"warnings"`
	MaxVertex  int           `json:"max_vertex"`
	MaxCurrent number        `json:"max_current"`
}

func newReportJSON(r *coherence.Report) reportJSON {
	out := reportJSON{
		Source:     r.Source,
		Rule:       r.Rule,
		Threshold:  number(r.Threshold),
		Coherent:   r.Coherent(),
		Cost:       numbers(r.Cost),
		Warnings:   make([]warningJSON, 0, len(r.Warnings)),
		MaxVertex:  r.MaxVertex,
		MaxCurrent: number(r.MaxCurrent),
	}
	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, warningJSON{
			Source:       w.Source,
			Vertex:       w.Vertex,
			SourceTarget: number(w.SourceTarget),
			VertexTarget: number(w.VertexTarget),
			DiffV:        number(w.DiffV),
			Admittance:   number(w.Admittance),
			Current:      number(w.Current),
			Threshold:    number(w.Threshold),
		})
	}

	return out
}

type failureJSON struct {
	Source int    `json:"source"`
	Error  string `json:"error"`
}

type suspectJSON struct {
	Source     int    `json:"source"`
	Vertex     int    `json:"vertex"`
	MaxCurrent number `json:"max_current"`
}

type sweepJSON struct {
	RunID     string        `json:"run_id"`
	Rule      string        `json:"rule"`
	Started   time.Time     `json:"started"`
	ElapsedMS int64         `json:"elapsed_ms"`
	Reports   []reportJSON  `json:"reports"`
	Failures  []failureJSON `json:"failures"`
	Suspects  []suspectJSON `json:"suspects"`
}

func newSweepJSON(res *coherence.SweepResult, suspects []coherence.Suspect) sweepJSON {
	out := sweepJSON{
		RunID:     res.RunID.String(),
		Rule:      res.Rule,
		Started:   res.Started,
		ElapsedMS: res.Elapsed.Milliseconds(),
		Reports:   make([]reportJSON, 0, len(res.Reports)),
		Failures:  make([]failureJSON, 0, len(res.Failures)),
		Suspects:  make([]suspectJSON, 0, len(suspects)),
	}
	for _, r := range res.Reports {
		out.Reports = append(out.Reports, newReportJSON(r))
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, failureJSON{Source: f.Source, Error: f.Err.Error()})
	}
	for _, s := range suspects {
		out.Suspects = append(out.Suspects, suspectJSON{Source: s.Source, Vertex: s.Vertex, MaxCurrent: number(s.MaxCurrent)})
	}

	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
