// SPDX-License-Identifier: MIT

package matrix

// Matrix is the read/write surface the network model needs from its
// parameter storage. Indexers report bad indices as ErrOutOfRange.
type Matrix interface {
	Rows() int
	Cols() int
	At(i, j int) (float64, error)
	Set(i, j int, v float64) error
	// Clone returns an independent deep copy.
	Clone() Matrix
}
