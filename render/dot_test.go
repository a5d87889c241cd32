package render_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powsybl/powsybl-optimizer/coherence"
	"github.com/powsybl/powsybl-optimizer/impedance"
	"github.com/powsybl/powsybl-optimizer/network"
	"github.com/powsybl/powsybl-optimizer/render"
)

func threeBus(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.New(3)
	require.NoError(t, err)
	require.NoError(t, net.AddBranch(0, 1, 0, 2.86, network.WithRatio(1.01)))
	require.NoError(t, net.AddBranch(1, 2, 0, 0.17, network.WithRatio(0.997/2)))
	require.NoError(t, net.MarkRegulated(0, 430))
	require.NoError(t, net.MarkRegulated(2, 185))

	return net
}

func TestToDOT_PlainNetwork(t *testing.T) {
	dot := render.ToDOT(threeBus(t), nil)

	assert.Contains(t, dot, "graph G {")
	assert.Contains(t, dot, `  0 [label="0\n430", shape=box];`)
	assert.Contains(t, dot, `  1 [label="1"];`)
	assert.Contains(t, dot, `  0 -- 1 [label="x=2.86\nρ01=1.01"];`)
	assert.Contains(t, dot, `  1 -- 2 [label="x=0.17\nρ12=0.4985"];`)
	assert.NotContains(t, dot, "->")
	assert.NotContains(t, dot, "red")
}

func TestToDOT_Report(t *testing.T) {
	net := threeBus(t)
	rep, err := coherence.Check(net, 2, impedance.DualRatio{}, 2, coherence.WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)
	require.Len(t, rep.Warnings, 1)

	dot := render.ToDOT(net, rep)
	assert.Contains(t, dot, `  0 [label="0\n430", shape=box, color=red, fontcolor=red];`)
	assert.Contains(t, dot, `  2 [label="2\n185", shape=box, fillcolor=lightblue, penwidth=2];`)
}

func TestRenderSVG(t *testing.T) {
	svg, err := render.RenderSVG(context.Background(), render.ToDOT(threeBus(t), nil))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}
