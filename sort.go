package sptensor

import "fmt"

// SortCOOTensor reorders the blocks of a COOTensor in place so that the sparse
// coordinate rows are lexicographically non-decreasing under a caller-supplied axis
// order, and records that order on the tensor.  TTM requires the contracted axis to
// be the last (least significant) key; build such an order directly or with
// SortWithLastAxis.
//
// The sort is an in-place Hoare-partition quicksort over block rows with the pivot
// taken at the middle index.  Swapping a row also swaps the corresponding leading
// slab of the value storage.  Relative order of equal rows is not preserved.
type SortCOOTensor struct {
	tensor *COOTensor
	order  []Axis
}

// NewSortCOOTensor prepares a sort of t under order.  order must be a permutation of
// t's sparse axes by identity; most-significant axis first.
func NewSortCOOTensor(t *COOTensor, order []Axis) *SortCOOTensor {
	return &SortCOOTensor{tensor: t, order: append([]Axis(nil), order...)}
}

// SortWithLastAxis prepares a sort whose key keeps the sparse axes in storage order
// except that last becomes the least significant key.
func SortWithLastAxis(t *COOTensor, last Axis) *SortCOOTensor {
	order := make([]Axis, 0, len(t.sparseAxes))
	for _, ax := range t.sparseAxes {
		if !ax.Equal(last) {
			order = append(order, ax)
		}
	}
	order = append(order, last)
	return &SortCOOTensor{tensor: t, order: order}
}

// Execute runs the sort.  On success the tensor reports the given order via
// SparseSortOrder.
func (s *SortCOOTensor) Execute() error {
	t := s.tensor
	if !isAxisPermutation(s.order, t.sparseAxes) {
		return fmt.Errorf("%w: sort order %s is not a permutation of the sparse axes %s",
			ErrShapeMismatch, AxesToString(s.order), AxesToString(t.sparseAxes))
	}

	numBlocks := t.NumBlocks()
	if numBlocks > 1 {
		cols := mapAxes(s.order, t.sparseAxes)
		sorter := blockSorter{
			t:         t,
			cols:      cols,
			numCols:   len(t.sparseAxes),
			blockSize: t.DenseBlockSize(),
		}
		sorter.sort(0, numBlocks)
	}
	t.setSortOrder(s.order)
	return nil
}

// blockSorter carries the resolved key columns through the recursion.
type blockSorter struct {
	t         *COOTensor
	cols      []int
	numCols   int
	blockSize int
}

// less compares two coordinate rows position by position in key order,
// short-circuiting on the first differing column.
func (b *blockSorter) less(a, c []int) bool {
	for _, col := range b.cols {
		if a[col] != c[col] {
			return a[col] < c[col]
		}
	}
	return false
}

// swap exchanges coordinate row i with row j and the leading value slab i with
// slab j.
func (b *blockSorter) swap(i, j int) {
	ri, rj := b.t.sparseRow(i), b.t.sparseRow(j)
	for c := range ri {
		ri[c], rj[c] = rj[c], ri[c]
	}
	p := b.blockSize
	si := b.t.values[i*p : (i+1)*p]
	sj := b.t.values[j*p : (j+1)*p]
	for k := range si {
		si[k], sj[k] = sj[k], si[k]
	}
}

// sort quicksorts the block range [from, to).
func (b *blockSorter) sort(from, to int) {
	if to-from < 2 {
		return
	}
	// Copy the pivot key so scans keep a stable compare target while rows move.
	pivot := getInts(b.numCols, false)
	copy(pivot, b.t.sparseRow((from+to)/2))

	i, j := from, to-1
	for i <= j {
		for i < to && b.less(b.t.sparseRow(i), pivot) {
			i++
		}
		for j > from && b.less(pivot, b.t.sparseRow(j)) {
			j--
		}
		if i <= j {
			b.swap(i, j)
			i++
			j--
		}
	}
	putInts(pivot)

	b.sort(from, j+1)
	b.sort(i, to)
}
