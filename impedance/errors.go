// SPDX-License-Identifier: MIT

package impedance

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Search and the variant helpers.
var (
	// ErrNilNetwork indicates a nil *network.Network.
	ErrNilNetwork = errors.New("impedance: network is nil")

	// ErrVertexNotFound indicates a source bus outside [0, N).
	ErrVertexNotFound = errors.New("impedance: source vertex not found")

	// ErrNilRule indicates a nil Rule.
	ErrNilRule = errors.New("impedance: rule is nil")

	// ErrInvalidSourceVoltage indicates a physical-unit model whose source
	// target voltage lies outside the plausibility band.
	ErrInvalidSourceVoltage = errors.New("impedance: invalid source target voltage")

	// ErrNegativeReactance indicates a branch with x < 0 somewhere in the model.
	ErrNegativeReactance = errors.New("impedance: negative reactance")

	// ErrBadVoltageBand indicates WithVoltageBand received min > max or a NaN bound.
	ErrBadVoltageBand = errors.New("impedance: voltage band must satisfy min <= max")

	// ErrUnknownVariant indicates ParseVariant received an unknown name.
	ErrUnknownVariant = errors.New("impedance: unknown variant")
)

// ValidationError is returned when a precondition of Search fails.
// It unwraps to ErrInvalidSourceVoltage or ErrNegativeReactance.
type ValidationError struct {
	Err    error
	Source int

	// Value is the offending source target voltage or reactance.
	Value float64

	// Min and Max are the voltage band; zero for reactance failures.
	Min, Max float64

	// From and To identify the offending branch; -1 for voltage failures.
	From, To int
}

func (e *ValidationError) Error() string {
	if e.From >= 0 {
		return fmt.Sprintf("%v: branch %d-%d x=%g", e.Err, e.From, e.To, e.Value)
	}

	return fmt.Sprintf("%v: source %d target %g not in [%g,%g]", e.Err, e.Source, e.Value, e.Min, e.Max)
}

func (e *ValidationError) Unwrap() error { return e.Err }
