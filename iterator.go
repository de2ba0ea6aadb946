package sptensor

// COOIter walks every stored logical element of a COOTensor: outer loop over blocks
// in storage order, inner loop over the dense sub-indices of each block in memory
// order (last dense axis fastest), so the value access pattern is sequential.  The
// iterator is lazy, finite and non-restartable.
//
// The index slice returned by Next is reused between calls; callers that retain it
// must copy it.
type COOIter struct {
	t *COOTensor

	numBlocks int
	blockSize int

	m int // current block
	k int // current intra-block offset

	// denseIdx is the logical dense sub-index (already offset by each dense
	// axis's lower bound), advanced like an odometer.
	denseIdx []int

	// index is the assembled logical coordinate, reused between calls.
	index []int
	// sparsePos[i] is the column of shape axis i within the sparse coordinate
	// row, or -1; densePos[i] is its ordinal among the dense axes, or -1.
	sparsePos []int
	densePos  []int
}

// Iter returns an iterator over every stored logical element, including zeroes
// stored inside dense blocks.
func (t *COOTensor) Iter() *COOIter {
	it := &COOIter{
		t:         t,
		numBlocks: t.NumBlocks(),
		blockSize: t.DenseBlockSize(),
		denseIdx:  make([]int, len(t.denseAxes)),
		index:     make([]int, len(t.shape)),
		sparsePos: mapAxes(t.shape, t.sparseAxes),
		densePos:  mapAxes(t.shape, t.denseAxes),
	}
	if it.blockSize == 0 {
		// An empty dense axis leaves nothing to visit.
		it.m = it.numBlocks
	}
	it.resetDenseIndex()
	return it
}

func (it *COOIter) resetDenseIndex() {
	for i, ax := range it.t.denseAxes {
		it.denseIdx[i] = ax.Lower()
	}
}

// advance steps the dense odometer, rolling over into the next block.
func (it *COOIter) advance() {
	it.k++
	if it.k == it.blockSize {
		it.k = 0
		it.m++
		it.resetDenseIndex()
		return
	}
	for i := len(it.denseIdx) - 1; i >= 0; i-- {
		it.denseIdx[i]++
		if it.denseIdx[i] < it.t.denseAxes[i].Upper() {
			return
		}
		it.denseIdx[i] = it.t.denseAxes[i].Lower()
	}
}

// assemble scatters the current sparse row and dense sub-index into the logical
// coordinate buffer.
func (it *COOIter) assemble() {
	var row []int
	if len(it.t.sparseAxes) > 0 {
		row = it.t.sparseRow(it.m)
	}
	for i := range it.index {
		if c := it.sparsePos[i]; c >= 0 {
			it.index[i] = row[c]
		} else {
			it.index[i] = it.denseIdx[it.densePos[i]]
		}
	}
}

// Next yields the next (logical index, value) pair.  ok is false once the sequence
// is exhausted.
func (it *COOIter) Next() (index []int, value float64, ok bool) {
	if it.m >= it.numBlocks {
		return nil, 0, false
	}
	it.assemble()
	value = it.t.values[it.m*it.blockSize+it.k]
	it.advance()
	return it.index, value, true
}

// Len returns the total number of elements the iterator will yield from a fresh
// start.
func (it *COOIter) Len() int { return it.numBlocks * it.blockSize }

// COOIterMut is COOIter with mutable access to the value.  The logical index stays
// read-only.
type COOIterMut struct {
	inner COOIter
}

// IterMut returns a mutable iterator over every stored logical element.
func (t *COOTensor) IterMut() *COOIterMut {
	return &COOIterMut{inner: *t.Iter()}
}

// Next yields the next logical index together with a pointer to the stored value.
func (it *COOIterMut) Next() (index []int, value *float64, ok bool) {
	in := &it.inner
	if in.m >= in.numBlocks {
		return nil, nil, false
	}
	in.assemble()
	value = &in.t.values[in.m*in.blockSize+in.k]
	in.advance()
	return in.index, value, true
}

// Do calls fn for every stored logical element in iteration order.  The index slice
// is reused between calls.
func (t *COOTensor) Do(fn func(index []int, v float64)) {
	it := t.Iter()
	for {
		index, v, ok := it.Next()
		if !ok {
			return
		}
		fn(index, v)
	}
}

// DoMut calls fn for every stored logical element, allowing the value to be
// updated in place.
func (t *COOTensor) DoMut(fn func(index []int, v *float64)) {
	it := t.IterMut()
	for {
		index, v, ok := it.Next()
		if !ok {
			return
		}
		fn(index, v)
	}
}
