package sptensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NewDenseMatrix models a dense matrix as a COOTensor with no sparse axes and the
// two dense axes (rows, cols).  data is row-major and must span
// rows.Size()*cols.Size() elements; it is copied.
//
// To use the matrix as the TTM operand, build rows by cloning nothing: pass the
// tensor's own axis value so the identities match, and mint a fresh free axis for
// cols.
func NewDenseMatrix(rows, cols Axis, data []float64) (*COOTensor, error) {
	if len(data) != rows.Size()*cols.Size() {
		return nil, fmt.Errorf("%w: matrix data has %d elements, want %d x %d",
			ErrShapeMismatch, len(data), rows.Size(), cols.Size())
	}
	shape := []Axis{rows, cols}
	return fromRawParts(rawParts{
		shape:           shape,
		sparseAxes:      nil,
		denseAxes:       append([]Axis(nil), shape...),
		indices:         make([]int, 0),
		values:          append([]float64(nil), data...),
		sparseIsSorted:  true,
		sparseSortOrder: nil,
	}), nil
}

// NewDenseMatrixFromMat wraps a gonum matrix as a dense COOTensor.  The matrix
// dimensions must equal the axis sizes.
func NewDenseMatrixFromMat(a mat.Matrix, rows, cols Axis) (*COOTensor, error) {
	r, c := a.Dims()
	if r != rows.Size() || c != cols.Size() {
		return nil, fmt.Errorf("%w: matrix is %d x %d but the axes span %d x %d",
			ErrShapeMismatch, r, c, rows.Size(), cols.Size())
	}
	data := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data[i*c+j] = a.At(i, j)
		}
	}
	return NewDenseMatrix(rows, cols, data)
}

// ToMat exports a fully dense rank-2 COOTensor as a gonum dense matrix.  The result
// does not share storage with the receiver.
func (t *COOTensor) ToMat() (*mat.Dense, error) {
	if t.NDim() != 2 || len(t.sparseAxes) != 0 {
		return nil, fmt.Errorf("%w: ToMat requires a fully dense tensor with 2 axes", ErrShapeMismatch)
	}
	r, c := t.denseAxes[0].Size(), t.denseAxes[1].Size()
	return mat.NewDense(r, c, append([]float64(nil), t.values...)), nil
}
