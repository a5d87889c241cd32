// SPDX-License-Identifier: MIT

package matrix

import "errors"

// Sentinel errors, returned wrapped with the method and indices
// (e.g. "Dense.Set(3,4): matrix: index out of range").
var (
	// ErrInvalidDimensions indicates a non-positive row or column count.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates a row or column index outside the matrix.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrNaNInf indicates a NaN or ±Inf value written to a guarded matrix.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNonSquare indicates a symmetry check on a non-square matrix.
	ErrNonSquare = errors.New("matrix: matrix is not square")
)
