// Package outliers flags unusually high values in a series.
//
// Two detectors are provided, both one-sided (upper outliers only):
//
//   - IQR(series, q):           values above Q(1-q) + 1.5·(Q(1-q) - Q(q)).
//   - ZScore(series, threshold): values with (x - mean)/(std + 1e-11) > threshold,
//     std being the sample standard deviation.
//
// Quantiles interpolate linearly between order statistics. Results are the
// indices of the flagged values, in ascending order.
package outliers

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
)

// Sentinel errors.
var (
	// ErrEmpty indicates an empty series.
	ErrEmpty = errors.New("outliers: empty series")

	// ErrNonFinite indicates a NaN or ±Inf value in the series.
	ErrNonFinite = errors.New("outliers: non-finite value in series")

	// ErrBadQuantile indicates an IQR quantile outside [0, 0.5).
	ErrBadQuantile = errors.New("outliers: quantile must be in [0, 0.5)")

	// ErrUnknownMethod indicates ParseMethod received an unknown name.
	ErrUnknownMethod = errors.New("outliers: unknown method")
)

// zEps keeps the z-score finite on constant series.
const zEps = 1e-11

// Method selects a detector.
type Method int

const (
	MethodZScore Method = iota
	MethodIQR
)

func (m Method) String() string {
	switch m {
	case MethodZScore:
		return "zscore"
	case MethodIQR:
		return "iqr"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod resolves "zscore" or "iqr" (case-insensitive).
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zscore", "z-score":
		return MethodZScore, nil
	case "iqr":
		return MethodIQR, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed

	return nil
}

// Detect dispatches to IQR (param = q) or ZScore (param = threshold).
func Detect(m Method, series []float64, param float64) ([]int, error) {
	switch m {
	case MethodZScore:
		return ZScore(series, param)
	case MethodIQR:
		return IQR(series, param)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, m)
	}
}

// IQR returns the indices of values strictly above Q(1-q) + 1.5·IQR,
// where IQR = Q(1-q) - Q(q).
func IQR(series []float64, q float64) ([]int, error) {
	if !(q >= 0 && q < 0.5) {
		return nil, fmt.Errorf("%w: %g", ErrBadQuantile, q)
	}
	if err := check(series); err != nil {
		return nil, err
	}

	sorted := append([]float64(nil), series...)
	sort.Float64s(sorted)
	lo, hi := quantile(sorted, q), quantile(sorted, 1-q)
	fence := hi + 1.5*(hi-lo)

	return above(series, func(x float64) bool { return x > fence }), nil
}

// ZScore returns the indices whose z-score exceeds threshold.
// Series shorter than two values have no sample deviation and yield no outliers.
func ZScore(series []float64, threshold float64) ([]int, error) {
	if err := check(series); err != nil {
		return nil, err
	}
	if len(series) < 2 {
		return []int{}, nil
	}

	data := stats.Float64Data(series)
	mean, err := stats.Mean(data)
	if err != nil {
		return nil, fmt.Errorf("outliers: mean: %w", err)
	}
	std, err := stats.StandardDeviationSample(data)
	if err != nil {
		return nil, fmt.Errorf("outliers: std: %w", err)
	}

	return above(series, func(x float64) bool { return (x-mean)/(std+zEps) > threshold }), nil
}

func check(series []float64) error {
	if len(series) == 0 {
		return ErrEmpty
	}
	for i, x := range series {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: index %d", ErrNonFinite, i)
		}
	}

	return nil
}

func above(series []float64, pred func(float64) bool) []int {
	out := []int{}
	for i, x := range series {
		if pred(x) {
			out = append(out, i)
		}
	}

	return out
}

// quantile interpolates linearly at position p·(n-1) of a sorted slice.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	i := int(math.Floor(pos))
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(i)

	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}
