package sptensor

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// minFibersPerTask is the smallest slice of output rows a parallel TTM worker will
// take; spawning below this wastes more on scheduling than the fibers cost.
const minFibersPerTask = 256

// numThreads returns the worker count for parallel kernels: SPTENSOR_NUM_THREADS
// when set to a positive integer, otherwise the logical-core default.
func numThreads() int {
	if s := os.Getenv("SPTENSOR_NUM_THREADS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return runtime.GOMAXPROCS(0)
}

// matchCommonAxis validates the matrix operand and resolves the contracted axis.
// The matrix must be a fully dense rank-2 COOTensor; its first axis must match
// exactly one sparse axis of the tensor by identity, and its second axis must match
// none.
func matchCommonAxis(t, m *COOTensor) (common, free Axis, commonCol int, err error) {
	if m.NDim() != 2 {
		return common, free, 0, fmt.Errorf("%w: the matrix must have 2 axes", ErrShapeMismatch)
	}
	if len(m.SparseAxes()) != 0 {
		return common, free, 0, fmt.Errorf("%w: the matrix must be fully dense", ErrShapeMismatch)
	}
	common, free = m.denseAxes[0], m.denseAxes[1]
	commonCol = findAxis(t.sparseAxes, common)
	if commonCol < 0 {
		return common, free, 0, fmt.Errorf("%w: matrix dense axis %s not found in tensor sparse axes",
			ErrShapeMismatch, common)
	}
	if findAxis(t.sparseAxes, free) >= 0 {
		return common, free, 0, fmt.Errorf("%w: there must be only one common axis", ErrShapeMismatch)
	}
	return common, free, commonCol, nil
}

// checkSortedAlong verifies the tensor is sorted with common as the least
// significant key, the fiber-grouping precondition.
func checkSortedAlong(t *COOTensor, common Axis) error {
	order, ok := t.SparseSortOrder()
	if !ok {
		return fmt.Errorf("%w: the tensor must be sorted", ErrNotSorted)
	}
	if len(order) == 0 || !order[len(order)-1].Equal(common) {
		return fmt.Errorf("%w: the tensor must be sorted along the common axis", ErrNotSorted)
	}
	return nil
}

// substituteAxis returns shape with every identity match of old replaced by new.
func substituteAxis(shape []Axis, old, new Axis) []Axis {
	out := make([]Axis, len(shape))
	for i, ax := range shape {
		if ax.Equal(old) {
			out[i] = new
		} else {
			out[i] = ax
		}
	}
	return out
}

// removeSortKey returns the tensor's sort order with ax removed.
func removeSortKey(t *COOTensor, ax Axis) []Axis {
	order, _ := t.SparseSortOrder()
	return removeAxis(order, ax)
}

// computeFiberIndices collapses adjacent coordinate rows that agree on every column
// except commonCol into fibers.  It returns the compacted output rows (commonCol
// removed, first-occurrence order) and the fiber offset vector: rows
// [fiberOffsets[f], fiberOffsets[f+1]) of the input belong to fiber f.
//
// The input must be sorted with the common axis as the last sort key; only then are
// the rows of one fiber contiguous.
func computeFiberIndices(indices []int, numBlocks, numCols, commonCol int) (outIndices []int, fiberOffsets []int) {
	outIndices = make([]int, 0, numBlocks*(numCols-1))
	fiberOffsets = make([]int, 0, numBlocks+1)
	buf := getInts(numCols-1, false)
	defer putInts(buf)

	last := -1
	for m := 0; m < numBlocks; m++ {
		if last < 0 || !rowsEqualExcept(indices, last, m, numCols, commonCol) {
			row := indices[m*numCols : (m+1)*numCols]
			copy(buf, row[:commonCol])
			copy(buf[commonCol:], row[commonCol+1:])
			outIndices = append(outIndices, buf...)
			fiberOffsets = append(fiberOffsets, m)
			last = m
		}
	}
	fiberOffsets = append(fiberOffsets, numBlocks)
	return outIndices, fiberOffsets
}

// rowsEqualExcept reports whether rows a and b of a flat numCols-column index
// matrix agree on every column other than exceptCol.
func rowsEqualExcept(indices []int, a, b, numCols, exceptCol int) bool {
	ra := indices[a*numCols : (a+1)*numCols]
	rb := indices[b*numCols : (b+1)*numCols]
	for c := numCols - 1; c >= 0; c-- {
		if c != exceptCol && ra[c] != rb[c] {
			return false
		}
	}
	return true
}

// COOTensorMulDenseMatrix multiplies a fully sparse COOTensor with a dense matrix,
// contracting the one axis they share.  The tensor must be sorted with the common
// axis as the last sort key.  The result is semi-sparse: the matrix's free axis
// becomes a dense trailing axis, and each fiber of the input collapses into one
// output block.
type COOTensorMulDenseMatrix struct {
	Tensor *COOTensor
	Matrix *COOTensor

	// MultiThread selects the data-parallel path.  Output is bitwise identical
	// to the serial path regardless of thread count.
	MultiThread bool

	tracer *Tracer
}

// NewCOOTensorMulDenseMatrix creates a new multiplication task.
func NewCOOTensorMulDenseMatrix(t, m *COOTensor) *COOTensorMulDenseMatrix {
	return &COOTensorMulDenseMatrix{Tensor: t, Matrix: m}
}

// Trace attaches a performance tracer to the task.
func (op *COOTensorMulDenseMatrix) Trace(tr *Tracer) *COOTensorMulDenseMatrix {
	op.tracer = tr
	return op
}

// Execute performs the multiplication.  Inputs are read-only; the result owns fresh
// storage.
func (op *COOTensorMulDenseMatrix) Execute() (*COOTensor, error) {
	ev := op.tracer.Start()
	defer ev.Finish("COOTensorMulDenseMatrix")

	t, m := op.Tensor, op.Matrix

	// This kernel only solves the fully sparse case.
	if len(t.denseAxes) != 0 {
		return nil, fmt.Errorf("%w: the tensor must be fully sparse", ErrShapeMismatch)
	}
	common, free, commonCol, err := matchCommonAxis(t, m)
	if err != nil {
		return nil, err
	}
	if err := checkSortedAlong(t, common); err != nil {
		return nil, err
	}

	numBlocks := t.NumBlocks()
	numCols := len(t.sparseAxes)
	rank := free.Size()

	outIndices, fiberOffsets := op.computeIndices(t.indices, numBlocks, numCols, commonCol)
	numFibers := len(fiberOffsets) - 1

	Log.Debug().
		Int("blocks", numBlocks).
		Int("fibers", numFibers).
		Int("rank", rank).
		Int("burden_bytes", numBlocks*(8+rank*8*4)).
		Msg("COOTensorMulDenseMatrix")

	k := ttmKernel{
		indices:      t.indices,
		tensorValues: t.values,
		matrixValues: m.values,
		fiberOffsets: fiberOffsets,
		numCols:      numCols,
		commonCol:    commonCol,
		commonLower:  common.Lower(),
		blockSize:    1,
		rank:         rank,
	}
	var resultValues []float64
	if op.MultiThread {
		resultValues = op.computeValuesMultiThread(&k, numFibers)
	} else {
		resultValues = op.computeValues(&k, numFibers)
	}

	return fromRawParts(rawParts{
		shape:           substituteAxis(t.shape, common, free),
		sparseAxes:      removeAxis(t.sparseAxes, common),
		denseAxes:       []Axis{free},
		indices:         outIndices,
		values:          resultValues,
		sparseIsSorted:  true,
		sparseSortOrder: removeSortKey(t, common),
	}), nil
}

func (op *COOTensorMulDenseMatrix) computeIndices(indices []int, numBlocks, numCols, commonCol int) ([]int, []int) {
	ev := op.tracer.Start()
	defer ev.Finish("COOTensorMulDenseMatrix.computeIndices")
	return computeFiberIndices(indices, numBlocks, numCols, commonCol)
}

func (op *COOTensorMulDenseMatrix) computeValues(k *ttmKernel, numFibers int) []float64 {
	ev := op.tracer.Start()
	defer ev.Finish("COOTensorMulDenseMatrix.computeValues")

	result := make([]float64, numFibers*k.rank)
	k.accumulate(result, 0, numFibers)
	return result
}

func (op *COOTensorMulDenseMatrix) computeValuesMultiThread(k *ttmKernel, numFibers int) []float64 {
	ev := op.tracer.Start()
	defer ev.Finish("COOTensorMulDenseMatrix.computeValuesMultiThread")

	result := make([]float64, numFibers*k.rank)
	parallelOverFibers(k, result, numFibers)
	return result
}

// SemiCOOTensorMulDenseMatrix multiplies a semi-sparse COOTensor with a dense
// matrix.  The tensor may carry any number of dense axes; the contracted axis must
// still be sparse, sorted last.  The result keeps the tensor's dense axes and gains
// the matrix's free axis as one more dense trailing axis.
type SemiCOOTensorMulDenseMatrix struct {
	Tensor *COOTensor
	Matrix *COOTensor

	// MultiThread selects the data-parallel path.  Output is bitwise identical
	// to the serial path regardless of thread count.
	MultiThread bool

	tracer *Tracer
}

// NewSemiCOOTensorMulDenseMatrix creates a new multiplication task.
func NewSemiCOOTensorMulDenseMatrix(t, m *COOTensor) *SemiCOOTensorMulDenseMatrix {
	return &SemiCOOTensorMulDenseMatrix{Tensor: t, Matrix: m}
}

// Trace attaches a performance tracer to the task.
func (op *SemiCOOTensorMulDenseMatrix) Trace(tr *Tracer) *SemiCOOTensorMulDenseMatrix {
	op.tracer = tr
	return op
}

// Execute performs the multiplication.  Inputs are read-only; the result owns fresh
// storage.
func (op *SemiCOOTensorMulDenseMatrix) Execute() (*COOTensor, error) {
	ev := op.tracer.Start()
	defer ev.Finish("SemiCOOTensorMulDenseMatrix")

	t, m := op.Tensor, op.Matrix

	common, free, commonCol, err := matchCommonAxis(t, m)
	if err != nil {
		return nil, err
	}
	if err := checkSortedAlong(t, common); err != nil {
		return nil, err
	}

	numBlocks := t.NumBlocks()
	numCols := len(t.sparseAxes)
	blockSize := t.DenseBlockSize()
	rank := free.Size()

	outIndices, fiberOffsets := op.computeIndices(t.indices, numBlocks, numCols, commonCol)
	numFibers := len(fiberOffsets) - 1

	Log.Debug().
		Int("blocks", numBlocks).
		Int("fibers", numFibers).
		Int("block_size", blockSize).
		Int("rank", rank).
		Msg("SemiCOOTensorMulDenseMatrix")

	k := ttmKernel{
		indices:      t.indices,
		tensorValues: t.values,
		matrixValues: m.values,
		fiberOffsets: fiberOffsets,
		numCols:      numCols,
		commonCol:    commonCol,
		commonLower:  common.Lower(),
		blockSize:    blockSize,
		rank:         rank,
	}
	var resultValues []float64
	if op.MultiThread {
		resultValues = op.computeValuesMultiThread(&k, numFibers)
	} else {
		resultValues = op.computeValues(&k, numFibers)
	}

	return fromRawParts(rawParts{
		shape:           substituteAxis(t.shape, common, free),
		sparseAxes:      removeAxis(t.sparseAxes, common),
		denseAxes:       append(append([]Axis(nil), t.denseAxes...), free),
		indices:         outIndices,
		values:          resultValues,
		sparseIsSorted:  true,
		sparseSortOrder: removeSortKey(t, common),
	}), nil
}

func (op *SemiCOOTensorMulDenseMatrix) computeIndices(indices []int, numBlocks, numCols, commonCol int) ([]int, []int) {
	ev := op.tracer.Start()
	defer ev.Finish("SemiCOOTensorMulDenseMatrix.computeIndices")
	return computeFiberIndices(indices, numBlocks, numCols, commonCol)
}

func (op *SemiCOOTensorMulDenseMatrix) computeValues(k *ttmKernel, numFibers int) []float64 {
	ev := op.tracer.Start()
	defer ev.Finish("SemiCOOTensorMulDenseMatrix.computeValues")

	result := make([]float64, numFibers*k.blockSize*k.rank)
	k.accumulate(result, 0, numFibers)
	return result
}

func (op *SemiCOOTensorMulDenseMatrix) computeValuesMultiThread(k *ttmKernel, numFibers int) []float64 {
	ev := op.tracer.Start()
	defer ev.Finish("SemiCOOTensorMulDenseMatrix.computeValuesMultiThread")

	result := make([]float64, numFibers*k.blockSize*k.rank)
	parallelOverFibers(k, result, numFibers)
	return result
}

// ttmKernel carries the resolved inputs of one TTM invocation.  blockSize is 1 for
// the fully sparse kernel and the dense block element count for the semi-sparse
// kernel; the output slab of fiber f spans blockSize*rank elements either way.
type ttmKernel struct {
	indices      []int
	tensorValues []float64
	matrixValues []float64
	fiberOffsets []int
	numCols      int
	commonCol    int
	commonLower  int
	blockSize    int
	rank         int
}

// accumulate adds the contribution of fibers [f0, f1) into result, the full output
// value array.  Each fiber writes only its own slab, which is what makes a fiber
// split safe to run concurrently.  The matrix column loop is innermost and the
// nesting is fixed, so every execution accumulates in the same order.
func (k *ttmKernel) accumulate(result []float64, f0, f1 int) {
	p := k.blockSize
	r := k.rank
	for f := f0; f < f1; f++ {
		out := result[f*p*r : (f+1)*p*r]
		for m := k.fiberOffsets[f]; m < k.fiberOffsets[f+1]; m++ {
			row := k.indices[m*k.numCols+k.commonCol] - k.commonLower
			matRow := k.matrixValues[row*r : (row+1)*r]
			block := k.tensorValues[m*p : (m+1)*p]
			for pi := 0; pi < p; pi++ {
				v := block[pi]
				dst := out[pi*r : (pi+1)*r]
				for c := 0; c < r; c++ {
					dst[c] += v * matRow[c]
				}
			}
		}
	}
}

// parallelOverFibers splits [0, numFibers) into contiguous ranges of at least
// minFibersPerTask and accumulates them concurrently.  Ranges are disjoint along
// the leading (fiber) axis, so no two workers touch the same output element, and
// within a range the accumulation order equals the serial order.
func parallelOverFibers(k *ttmKernel, result []float64, numFibers int) {
	workers := numThreads()
	chunk := (numFibers + workers - 1) / workers
	if chunk < minFibersPerTask {
		chunk = minFibersPerTask
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for f0 := 0; f0 < numFibers; f0 += chunk {
		f0, f1 := f0, f0+chunk
		if f1 > numFibers {
			f1 = numFibers
		}
		g.Go(func() error {
			k.accumulate(result, f0, f1)
			return nil
		})
	}
	// Workers cannot fail; Wait only joins them.
	_ = g.Wait()
}
