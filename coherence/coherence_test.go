// SPDX-License-Identifier: MIT

package coherence_test

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/powsybl/powsybl-optimizer/coherence"
	"github.com/powsybl/powsybl-optimizer/impedance"
	"github.com/powsybl/powsybl-optimizer/network"
	"github.com/powsybl/powsybl-optimizer/outliers"
)

// ThreeBusSuite covers the 430 kV / 185 kV transformer chain.
type ThreeBusSuite struct {
	suite.Suite
	net    *network.Network
	logBuf bytes.Buffer
	logger *log.Logger
}

func (s *ThreeBusSuite) SetupTest() {
	net, err := network.New(3)
	s.Require().NoError(err)
	s.Require().NoError(net.AddBranch(0, 1, 0, 2.86, network.WithRatio(1.01)))
	s.Require().NoError(net.AddBranch(1, 2, 0, 0.17, network.WithRatio(0.997/2)))
	s.Require().NoError(net.MarkRegulated(0, 430))
	s.Require().NoError(net.SetTargetVoltage(1, 0))
	s.Require().NoError(net.MarkRegulated(2, 185))
	s.net = net

	s.logBuf.Reset()
	s.logger = log.New(&s.logBuf)
}

func (s *ThreeBusSuite) TestFromBus2() {
	rep, err := coherence.Check(s.net, 2, impedance.DualRatio{}, 2, coherence.WithLogger(s.logger))
	s.Require().NoError(err)

	s.InDelta(0.88072, rep.Cost[0], 1e-5)
	s.Require().Len(rep.Warnings, 1)
	w := rep.Warnings[0]
	s.Equal(2, w.Source)
	s.Equal(0, w.Vertex)
	s.Equal(185.0, w.SourceTarget)
	s.Equal(430.0, w.VertexTarget)
	s.InDelta(31.49855, w.DiffV, 1e-6)
	s.InDelta(35.7647, w.Current, 1e-4)
	s.InDelta(1/rep.Cost[0], w.Admittance, 1e-12)
	s.Equal(2.0, w.Threshold)
	s.False(rep.Coherent())
	s.Equal(0, rep.MaxVertex)
	s.Equal("dual-ratio", rep.Rule)

	s.Contains(s.logBuf.String(), "incoherent setpoints")
}

func (s *ThreeBusSuite) TestFromBus0() {
	rep, err := coherence.Check(s.net, 0, impedance.DualRatio{}, 2, coherence.WithLogger(s.logger))
	s.Require().NoError(err)

	s.InDelta(3.47427, rep.Cost[2], 1e-5)
	s.Require().Len(rep.Warnings, 1)
	s.Equal(2, rep.Warnings[0].Vertex)
	s.InDelta(18.0070, rep.Warnings[0].Current, 1e-4)
}

func (s *ThreeBusSuite) TestCurrentsCoverUnregulatedBuses() {
	rep, err := coherence.Check(s.net, 0, impedance.DualRatio{}, 2, coherence.WithLogger(s.logger))
	s.Require().NoError(err)

	// Bus 1 is not regulated: it has a current but no warning.
	s.Contains(rep.Currents, 1)
	s.NotContains(rep.Currents, 0)
	for _, w := range rep.Warnings {
		s.NotEqual(1, w.Vertex)
	}
}

func (s *ThreeBusSuite) TestHighThresholdIsCoherent() {
	rep, err := coherence.Check(s.net, 2, impedance.DualRatio{}, 100, coherence.WithLogger(s.logger))
	s.Require().NoError(err)
	s.True(rep.Coherent())
	s.NotNil(rep.Warnings)
	s.Empty(rep.Warnings)
	s.NotContains(s.logBuf.String(), "incoherent")
}

func (s *ThreeBusSuite) TestDiagnoseIsIdempotent() {
	res, err := impedance.Search(s.net, 2, impedance.DualRatio{})
	s.Require().NoError(err)

	a, err := coherence.Diagnose(s.net, res, 2, coherence.WithLogger(s.logger))
	s.Require().NoError(err)
	b, err := coherence.Diagnose(s.net, res, 2, coherence.WithLogger(s.logger))
	s.Require().NoError(err)
	s.Equal(a, b)
}

func (s *ThreeBusSuite) TestValidationFailurePropagates() {
	s.net.SetPerUnit(false)
	s.Require().NoError(s.net.SetTargetVoltage(1, 2.0))

	rep, err := coherence.Check(s.net, 1, impedance.DualRatio{}, 2)
	s.Require().ErrorIs(err, impedance.ErrInvalidSourceVoltage)
	s.Nil(rep)
}

func (s *ThreeBusSuite) TestWarningString() {
	rep, err := coherence.Check(s.net, 2, impedance.DualRatio{}, 2, coherence.WithLogger(s.logger))
	s.Require().NoError(err)
	s.Contains(rep.Warnings[0].String(), "|V_2 - V_0| = |185.000000 - 430.000000|")
	s.Contains(rep.Warnings[0].String(), "> 2.000000")
}

func TestThreeBusSuite(t *testing.T) {
	suite.Run(t, new(ThreeBusSuite))
}

func TestCheck_BadThreshold(t *testing.T) {
	net, err := network.New(1)
	require.NoError(t, err)
	for _, iMax := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := coherence.Check(net, 0, impedance.DualRatio{}, iMax)
		require.ErrorIs(t, err, coherence.ErrBadThreshold)
	}
	_, err = coherence.Check(nil, 0, impedance.DualRatio{}, 1)
	require.ErrorIs(t, err, coherence.ErrNilNetwork)
}

func TestDiagnose_Errors(t *testing.T) {
	net, err := network.New(2)
	require.NoError(t, err)

	_, err = coherence.Diagnose(net, nil, 1)
	require.ErrorIs(t, err, coherence.ErrNilResult)

	other, err := network.New(3)
	require.NoError(t, err)
	res, err := impedance.Search(other, 0, impedance.LinesReactance{})
	require.NoError(t, err)
	_, err = coherence.Diagnose(net, res, 1)
	require.ErrorIs(t, err, coherence.ErrResultMismatch)
}

func TestCheck_LinesVariantUsesRawTargets(t *testing.T) {
	net, err := network.New(2)
	require.NoError(t, err)
	require.NoError(t, net.AddBranch(0, 1, 0, 0.5, network.WithRatio(2)))
	require.NoError(t, net.MarkRegulated(0, 1.02))
	require.NoError(t, net.MarkRegulated(1, 0.98))

	rep, err := coherence.Check(net, 0, impedance.LinesReactance{}, 0.05, coherence.WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)
	// |0.98 - 1.02| / 0.5 = 0.08
	require.Len(t, rep.Warnings, 1)
	assert.InDelta(t, 0.08, rep.Warnings[0].Current, 1e-12)
}

func TestCheck_ZeroReactanceCoupler(t *testing.T) {
	net, err := network.New(4)
	require.NoError(t, err)
	require.NoError(t, net.AddBranch(0, 1, 0, 0))
	require.NoError(t, net.AddBranch(1, 2, 0, 0.5))
	require.NoError(t, net.AddBranch(1, 3, 0, 0))
	require.NoError(t, net.MarkRegulated(0, 1.0))
	require.NoError(t, net.MarkRegulated(2, 1.1))
	require.NoError(t, net.MarkRegulated(3, 1.05))
	quiet := coherence.WithLogger(log.New(&bytes.Buffer{}))

	for _, rule := range []impedance.Rule{impedance.DualRatio{}, impedance.AdmittanceProduct{}} {
		rep, err := coherence.Check(net, 0, rule, 0.1, quiet)
		require.NoError(t, err)
		require.Len(t, rep.Warnings, 2, rule.Name())
		assert.Equal(t, 2, rep.Warnings[0].Vertex)
		assert.InDelta(t, 0.2, rep.Warnings[0].Current, 1e-9)
		assert.Equal(t, 3, rep.Warnings[1].Vertex)
		assert.True(t, math.IsInf(rep.Warnings[1].Current, 1))
	}
}

// chainNetwork is a 20-bus radial feeder where bus 10 holds 1.3 pu and
// every other bus 1.0 pu.
func chainNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.New(20)
	require.NoError(t, err)
	for i := 0; i < 19; i++ {
		require.NoError(t, net.AddBranch(i, i+1, 0, 0.1))
	}
	for i := 0; i < 20; i++ {
		v := 1.0
		if i == 10 {
			v = 1.3
		}
		require.NoError(t, net.MarkRegulated(i, v))
	}

	return net
}

func TestSweep_MatchesSequentialChecks(t *testing.T) {
	net := chainNetwork(t)
	quiet := coherence.WithLogger(log.New(&bytes.Buffer{}))

	res, err := coherence.Sweep(context.Background(), net, impedance.DualRatio{}, 0.5, coherence.WithWorkers(3), quiet)
	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, [16]byte(res.RunID))
	assert.Empty(t, res.Failures)
	require.Len(t, res.Reports, net.Order())

	for i, rep := range res.Reports {
		assert.Equal(t, i, rep.Source)
		want, err := coherence.Check(net, i, impedance.DualRatio{}, 0.5, quiet)
		require.NoError(t, err)
		assert.Equal(t, want, rep)
	}
	assert.NotEmpty(t, res.Warnings())
}

func TestSweep_CollectsFailures(t *testing.T) {
	net := chainNetwork(t)
	net.SetPerUnit(false) // every per-unit target is now outside [5,450]
	quiet := coherence.WithLogger(log.New(&bytes.Buffer{}))

	res, err := coherence.Sweep(context.Background(), net, impedance.DualRatio{}, 0.5, quiet)
	require.NoError(t, err)
	assert.Empty(t, res.Reports)
	require.Len(t, res.Failures, net.Order())
	for i, f := range res.Failures {
		assert.Equal(t, i, f.Source)
		assert.ErrorIs(t, f.Err, impedance.ErrInvalidSourceVoltage)
	}
}

func TestSweep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := coherence.Sweep(ctx, chainNetwork(t), impedance.DualRatio{}, 0.5, coherence.WithLogger(log.New(&bytes.Buffer{})))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSweep_BadInputs(t *testing.T) {
	net := chainNetwork(t)
	ctx := context.Background()

	_, err := coherence.Sweep(ctx, net, nil, 1)
	require.ErrorIs(t, err, impedance.ErrNilRule)
	_, err = coherence.Sweep(ctx, net, impedance.DualRatio{}, 1, coherence.WithWorkers(0))
	require.ErrorIs(t, err, coherence.ErrBadWorkers)
	_, err = coherence.Sweep(ctx, nil, impedance.DualRatio{}, 1)
	require.ErrorIs(t, err, coherence.ErrNilNetwork)
}

func TestSweepResult_Suspects(t *testing.T) {
	net := chainNetwork(t)
	res, err := coherence.Sweep(context.Background(), net, impedance.DualRatio{}, 0.5,
		coherence.WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)

	// Bus 10 and its two neighbors see 3 A against 1.5 A or less elsewhere.
	got, err := res.Suspects(outliers.MethodZScore, 1.5)
	require.NoError(t, err)
	sources := make([]int, 0, len(got))
	for _, sp := range got {
		sources = append(sources, sp.Source)
		assert.InDelta(t, 3.0, sp.MaxCurrent, 1e-9)
	}
	assert.ElementsMatch(t, []int{9, 10, 11}, sources)

	// Q(0.75) + 1.5·IQR ≈ 2.19 with q = 0.25.
	byIQR, err := res.Suspects(outliers.MethodIQR, 0.25)
	require.NoError(t, err)
	assert.Len(t, byIQR, 3)

	_, err = res.Suspects(outliers.MethodIQR, 0.7)
	require.ErrorIs(t, err, outliers.ErrBadQuantile)
}
