package sptensor

import "errors"

// Sentinel errors returned by operators in this package.  Operators wrap them with
// context via fmt.Errorf("%w: ..."); callers match with errors.Is.  Precondition
// failures are reported before any mutation, so a returned error never leaves an
// input in a partial state.
var (
	// ErrShapeMismatch is returned when operand shapes or axis identities are
	// incompatible, e.g. the matrix operand of TTM does not share exactly one
	// axis with the tensor's sparse axes.
	ErrShapeMismatch = errors.New("sptensor: shape mismatch")

	// ErrNotSorted is returned when an operation requires a sorted tensor but the
	// tensor is unsorted, or its sort order does not end with the required axis.
	ErrNotSorted = errors.New("sptensor: tensor not sorted")

	// ErrIndexOutOfRange is returned when a coordinate violates its axis range.
	ErrIndexOutOfRange = errors.New("sptensor: index out of range")

	// ErrOverflow names index arithmetic overflow (subtracting an axis lower
	// bound, or converting to a machine index).  No operator in this package
	// returns it: that arithmetic is not checked for overflow.
	ErrOverflow = errors.New("sptensor: index arithmetic overflow")
)
