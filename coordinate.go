package sptensor

import (
	"fmt"

	"gorgonia.org/tensor"
)

// COOTensor is a COOrdinate format sparse tensor.  The axes of the tensor are
// partitioned into sparse axes and dense axes: each stored block is addressed by one
// row of sparse coordinates and carries a dense sub-array spanning the dense axes.
// A fully sparse tensor has no dense axes, so each block is a single scalar; a
// semi-sparse tensor keeps one or more trailing axes dense, which is the natural
// output shape of tensor-times-matrix multiplication.
//
// Storage is block-major: indices is a flat row-major M x S matrix of sparse
// coordinates, and values is a flat C-order array with leading extent M whose
// remaining axes are the dense axes in denseAxes order.  Sorting swaps whole rows of
// indices together with whole leading slabs of values.
type COOTensor struct {
	name string

	shape      []Axis
	sparseAxes []Axis
	denseAxes  []Axis

	// indices holds M*len(sparseAxes) coordinates, row-major.
	indices []int
	// values holds M*blockSize elements, C-order, leading extent M.
	values []float64

	sparseIsSorted  bool
	sparseSortOrder []Axis
}

// Zeros creates an empty COOTensor over shape.  isDense marks which axes of shape
// are dense; the remaining axes are sparse.  The tensor starts with zero blocks and
// is vacuously sorted in sparse-axes order.
func Zeros(shape []Axis, isDense []bool) (*COOTensor, error) {
	if len(shape) != len(isDense) {
		return nil, fmt.Errorf("%w: shape has %d axes but the dense mask has %d entries",
			ErrShapeMismatch, len(shape), len(isDense))
	}
	t := &COOTensor{shape: append([]Axis(nil), shape...)}
	for i, ax := range shape {
		if isDense[i] {
			t.denseAxes = append(t.denseAxes, ax)
		} else {
			t.sparseAxes = append(t.sparseAxes, ax)
		}
	}
	t.sparseIsSorted = true
	t.sparseSortOrder = append([]Axis(nil), t.sparseAxes...)
	return t, nil
}

// rawParts mirrors the full field set of COOTensor for internal construction by
// operators that compute a complete, already-consistent tensor.
type rawParts struct {
	name            string
	shape           []Axis
	sparseAxes      []Axis
	denseAxes       []Axis
	indices         []int
	values          []float64
	sparseIsSorted  bool
	sparseSortOrder []Axis
}

// fromRawParts wires a tensor directly from its parts.
//
// # Safety
// The caller must guarantee consistency: the axis partition covers shape, indices
// has len(sparseAxes) columns, values has one blockSize slab per indices row, and
// the sort flag is truthful.
func fromRawParts(p rawParts) *COOTensor {
	return &COOTensor{
		name:            p.name,
		shape:           p.shape,
		sparseAxes:      p.sparseAxes,
		denseAxes:       p.denseAxes,
		indices:         p.indices,
		values:          p.values,
		sparseIsSorted:  p.sparseIsSorted,
		sparseSortOrder: p.sparseSortOrder,
	}
}

// Name returns the optional tensor label.
func (t *COOTensor) Name() string { return t.name }

// SetName labels the tensor.
func (t *COOTensor) SetName(name string) { t.name = name }

// Shape returns the axes of the tensor in logical order.
func (t *COOTensor) Shape() []Axis { return t.shape }

// NDim returns the number of axes.
func (t *COOTensor) NDim() int { return len(t.shape) }

// SparseAxes returns the sparse axes in storage (column) order.
func (t *COOTensor) SparseAxes() []Axis { return t.sparseAxes }

// DenseAxes returns the dense axes in block storage order.
func (t *COOTensor) DenseAxes() []Axis { return t.denseAxes }

// NumBlocks returns M, the number of stored sparse-coordinate rows.
func (t *COOTensor) NumBlocks() int {
	if len(t.sparseAxes) == 0 {
		if len(t.values) == 0 {
			return 0
		}
		// A fully dense tensor stores a single block.
		return 1
	}
	return len(t.indices) / len(t.sparseAxes)
}

// DenseBlockSize returns the number of elements of one dense block.
func (t *COOTensor) DenseBlockSize() int {
	size := 1
	for _, ax := range t.denseAxes {
		size *= ax.Size()
	}
	return size
}

// DenseBlockShape returns the extents of one dense block in denseAxes order.
func (t *COOTensor) DenseBlockShape() []int {
	shape := make([]int, len(t.denseAxes))
	for i, ax := range t.denseAxes {
		shape[i] = ax.Size()
	}
	return shape
}

// NNZ returns the number of stored logical elements, including explicit zeroes
// inside dense blocks.
func (t *COOTensor) NNZ() int { return t.NumBlocks() * t.DenseBlockSize() }

// SparseSortOrder returns the permutation of the sparse axes under which the rows of
// the tensor are lexicographically sorted.  ok is false when the tensor is unsorted,
// in which case the returned order is meaningless.
func (t *COOTensor) SparseSortOrder() (order []Axis, ok bool) {
	if !t.sparseIsSorted {
		return nil, false
	}
	return t.sparseSortOrder, true
}

// setSortOrder records a sort established by an operator.
func (t *COOTensor) setSortOrder(order []Axis) {
	t.sparseSortOrder = append(t.sparseSortOrder[:0], order...)
	t.sparseIsSorted = true
}

// clearSortOrder invalidates the recorded row order.
func (t *COOTensor) clearSortOrder() { t.sparseIsSorted = false }

// RawParts exposes the backing coordinate and value storage.  The slices alias the
// tensor; callers must not reorder or resize them.
func (t *COOTensor) RawParts() (indices []int, values []float64) {
	return t.indices, t.values
}

// PushBlock appends one block.  sparseIndex must carry one coordinate per sparse
// axis, each within its axis range, and block must match the dense block size.
// Appending invalidates the sort order.
func (t *COOTensor) PushBlock(sparseIndex []int, block []float64) error {
	if len(sparseIndex) != len(t.sparseAxes) {
		return fmt.Errorf("%w: sparse index has %d coordinates, want %d",
			ErrShapeMismatch, len(sparseIndex), len(t.sparseAxes))
	}
	if len(t.sparseAxes) == 0 && len(t.values) != 0 {
		return fmt.Errorf("%w: a fully dense tensor holds a single block", ErrShapeMismatch)
	}
	if len(block) != t.DenseBlockSize() {
		return fmt.Errorf("%w: block has %d elements, want %d",
			ErrShapeMismatch, len(block), t.DenseBlockSize())
	}
	for c, idx := range sparseIndex {
		if !t.sparseAxes[c].Contains(idx) {
			return fmt.Errorf("%w: coordinate %d outside axis %s",
				ErrIndexOutOfRange, idx, t.sparseAxes[c])
		}
	}
	t.indices = append(t.indices, sparseIndex...)
	t.values = append(t.values, block...)
	t.clearSortOrder()
	return nil
}

// Push appends one scalar element to a fully sparse tensor.
func (t *COOTensor) Push(sparseIndex []int, value float64) error {
	if len(t.denseAxes) != 0 {
		return fmt.Errorf("%w: Push requires a fully sparse tensor", ErrShapeMismatch)
	}
	return t.PushBlock(sparseIndex, []float64{value})
}

// sparseRow returns row m of indices.  The slice aliases the tensor.
func (t *COOTensor) sparseRow(m int) []int {
	s := len(t.sparseAxes)
	return t.indices[m*s : (m+1)*s]
}

// BlockValues returns the value storage viewed as a dense tensor of shape
// (M, dense block extents...).  The view shares backing memory with the receiver;
// it is a reshape, not a copy.  Returns nil for a tensor with no blocks.
func (t *COOTensor) BlockValues() *tensor.Dense {
	m := t.NumBlocks()
	if m == 0 {
		return nil
	}
	shape := append([]int{m}, t.DenseBlockShape()...)
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(t.values))
}

// FromDense converts a dense gorgonia tensor into a COOTensor with every axis
// dense.  The result stores a single block holding a copy of d's data; d must be a
// contiguous row-major float64 tensor.  Fresh axes [0, extent) are minted per
// dimension.
func FromDense(d *tensor.Dense) (*COOTensor, error) {
	data, ok := d.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("%w: dense tensor must hold float64 data", ErrShapeMismatch)
	}
	shape := make([]Axis, len(d.Shape()))
	for i, extent := range d.Shape() {
		shape[i] = NewAxis(0, extent)
	}
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

// ToDense materialises the tensor as a dense gorgonia tensor over the full logical
// shape.  Unstored positions are zero.  The result owns its storage.
func (t *COOTensor) ToDense() (*tensor.Dense, error) {
	sizes := make([]int, len(t.shape))
	total := 1
	for i, ax := range t.shape {
		sizes[i] = ax.Size()
		total *= sizes[i]
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: cannot densify a tensor with an empty axis", ErrShapeMismatch)
	}
	// C-order strides over the logical shape.
	strides := make([]int, len(sizes))
	stride := 1
	for i := len(sizes) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= sizes[i]
	}
	data := make([]float64, total)
	it := t.Iter()
	for {
		index, v, ok := it.Next()
		if !ok {
			break
		}
		offset := 0
		for i, idx := range index {
			offset += (idx - t.shape[i].Lower()) * strides[i]
		}
		data[offset] = v
	}
	if len(sizes) == 0 {
		sizes = []int{1}
	}
	return tensor.New(tensor.WithShape(sizes...), tensor.WithBacking(data)), nil
}
