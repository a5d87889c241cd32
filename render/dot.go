// Package render draws a network, optionally annotated with a coherence
// report, as a Graphviz diagram.
package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/powsybl/powsybl-optimizer/coherence"
	"github.com/powsybl/powsybl-optimizer/network"
)

// ToDOT converts net to an undirected Graphviz DOT graph.
// The result can be rendered with [RenderSVG].
//
// Buses are labelled with their index and target voltage, regulated buses
// are boxed. Branches are labelled with x, and with ρ when a transformer
// ratio differs from 1. When rep is non-nil the source bus is filled and
// buses carrying a warning are drawn in red.
func ToDOT(net *network.Network, rep *coherence.Report) string {
	warned := make(map[int]bool)
	source := -1
	if rep != nil {
		source = rep.Source
		for _, w := range rep.Warnings {
			warned[w.Vertex] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for v := 0; v < net.Order(); v++ {
		attrs := []string{fmt.Sprintf("label=%q", busLabel(v, net.TargetVoltage(v)))}
		if net.IsRegulated(v) {
			attrs = append(attrs, "shape=box")
		}
		if v == source {
			attrs = append(attrs, "fillcolor=lightblue", "penwidth=2")
		}
		if warned[v] {
			attrs = append(attrs, "color=red", "fontcolor=red")
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, br := range net.Branches() {
		fmt.Fprintf(&buf, "  %d -- %d [label=%q];\n", br.From, br.To, branchLabel(br))
	}

	buf.WriteString("}\n")

	return buf.String()
}

func busLabel(v int, target float64) string {
	if math.IsInf(target, 0) {
		return strconv.Itoa(v)
	}

	return fmt.Sprintf("%d\n%.4g", v, target)
}

func branchLabel(br network.Branch) string {
	label := "x=" + strconv.FormatFloat(br.X, 'g', 4, 64)
	if br.Ratio != 1 {
		label += fmt.Sprintf("\nρ%d%d=%.4g", br.From, br.To, br.Ratio)
	}
	if br.ReverseRatio != 1 {
		label += fmt.Sprintf("\nρ%d%d=%.4g", br.To, br.From, br.ReverseRatio)
	}

	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	return buf.Bytes(), nil
}
