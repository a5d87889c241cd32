// SPDX-License-Identifier: MIT

package matrix_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powsybl/powsybl-optimizer/matrix"
)

func TestNewDense_InvalidDimensions(t *testing.T) {
	for _, tc := range []struct{ r, c int }{{0, 1}, {1, 0}, {-1, 3}} {
		_, err := matrix.NewDense(tc.r, tc.c)
		require.ErrorIs(t, err, matrix.ErrInvalidDimensions, "shape %dx%d", tc.r, tc.c)
	}
}

func TestDense_AtSetRoundTrip(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	require.Equal(t, 2, m.Rows())
	require.Equal(t, 3, m.Cols())

	require.NoError(t, m.Set(1, 2, 4.5))
	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	// Untouched cells stay zero.
	v, err = m.At(0, 0)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestDense_OutOfRange(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	_, err = m.At(2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	err = m.Set(0, -1, 1)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.Contains(t, err.Error(), "Dense.Set(0,-1)")
}

func TestDense_NaNInfPolicy(t *testing.T) {
	m, err := matrix.NewDense(1, 1)
	require.NoError(t, err)
	require.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaNInf)
	require.ErrorIs(t, m.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)

	relaxed, err := matrix.NewDense(1, 1, matrix.WithoutNaNInfGuard())
	require.NoError(t, err)
	require.NoError(t, relaxed.Set(0, 0, math.Inf(1)))
	v, _ := relaxed.At(0, 0)
	assert.True(t, math.IsInf(v, 1))
}

func TestNewFilled(t *testing.T) {
	m, err := matrix.NewFilled(3, 3, 1)
	require.NoError(t, err)
	m.Do(func(i, j int, v float64) bool {
		assert.Equal(t, 1.0, v, "cell (%d,%d)", i, j)
		return true
	})

	_, err = matrix.NewFilled(2, 2, math.NaN())
	require.True(t, errors.Is(err, matrix.ErrNaNInf))
}

func TestDense_CloneIsIndependent(t *testing.T) {
	m, err := matrix.NewFilled(2, 2, 3)
	require.NoError(t, err)
	cp := m.Clone()
	require.NoError(t, cp.Set(0, 1, 7))

	orig, _ := m.At(0, 1)
	assert.Equal(t, 3.0, orig)
}

func TestDense_ApplyAndDoOrder(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)
	require.NoError(t, m.Apply(func(i, j int, _ float64) float64 { return float64(i*2 + j) }))

	var seen []float64
	m.Do(func(_, _ int, v float64) bool {
		seen = append(seen, v)
		return len(seen) < 3
	})
	assert.Equal(t, []float64{0, 1, 2}, seen)

	err = m.Apply(func(_, _ int, _ float64) float64 { return math.Inf(-1) })
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestDense_IsSymmetric(t *testing.T) {
	m, err := matrix.NewDense(3, 3)
	require.NoError(t, err)
	require.NoError(t, m.Set(0, 2, 1.5))
	require.NoError(t, m.Set(2, 0, 1.5))

	ok, err := m.IsSymmetric(0)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Set(1, 0, 0.1))
	ok, err = m.IsSymmetric(1e-3)
	require.NoError(t, err)
	assert.False(t, ok)

	rect, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	_, err = rect.IsSymmetric(0)
	require.ErrorIs(t, err, matrix.ErrNonSquare)
}

func TestDense_String(t *testing.T) {
	m, err := matrix.NewFilled(2, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "[1, 1]\n[1, 1]\n", m.String())
}
