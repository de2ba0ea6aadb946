package sptensor

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// CreateRandomCOOTensor generates a fully sparse COOTensor with uniformly
// distributed distinct coordinates and normally distributed values.  Density is the
// fraction of the dense element count that is stored; coordinates are de-duplicated
// through a row-major offset set, so the result never holds two blocks at the same
// position.
//
// The result is unsorted; run SortCOOTensor before feeding it to TTM.
type CreateRandomCOOTensor struct {
	Shape   []Axis
	Density float64
	Mean    float64
	StdDev  float64

	// Seed fixes the random stream; 0 seeds from the clock.
	Seed uint64
}

// NewCreateRandomCOOTensor creates a new generation task.
func NewCreateRandomCOOTensor(shape []Axis, density, mean, stdDev float64) *CreateRandomCOOTensor {
	return &CreateRandomCOOTensor{Shape: shape, Density: density, Mean: mean, StdDev: stdDev}
}

// Execute performs the generation.
func (g *CreateRandomCOOTensor) Execute() (*COOTensor, error) {
	ndim := len(g.Shape)
	if ndim == 0 {
		return nil, fmt.Errorf("%w: cannot generate a tensor with no axes", ErrShapeMismatch)
	}
	strides, total := calcStrides(g.Shape)
	for _, ax := range g.Shape {
		if ax.IsEmpty() {
			return nil, fmt.Errorf("%w: axis %s is empty", ErrShapeMismatch, ax)
		}
	}

	numNonZeros := int(g.Density*float64(total) + 0.5)
	if numNonZeros > total {
		numNonZeros = total
	}

	src := rand.NewSource(g.seed())
	rng := rand.New(src)
	normal := distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: src}

	indices := make([]int, 0, numNonZeros*ndim)
	values := make([]float64, numNonZeros)
	seen := make(map[int]struct{}, numNonZeros)
	row := make([]int, ndim)

	for len(seen) < numNonZeros {
		offset := 0
		for ax := 0; ax < ndim; ax++ {
			row[ax] = g.Shape[ax].Lower() + rng.Intn(g.Shape[ax].Size())
			offset += (row[ax] - g.Shape[ax].Lower()) * strides[ax]
		}
		if _, dup := seen[offset]; dup {
			continue
		}
		seen[offset] = struct{}{}
		indices = append(indices, row...)
	}
	for i := range values {
		values[i] = normal.Rand()
	}

	return fromRawParts(rawParts{
		shape:           append([]Axis(nil), g.Shape...),
		sparseAxes:      append([]Axis(nil), g.Shape...),
		denseAxes:       nil,
		indices:         indices,
		values:          values,
		sparseIsSorted:  false,
		sparseSortOrder: nil,
	}), nil
}

func (g *CreateRandomCOOTensor) seed() uint64 {
	if g.Seed != 0 {
		return g.Seed
	}
	return uint64(time.Now().UnixNano())
}

// calcStrides returns the row-major strides over the axis sizes and the dense
// element count.
func calcStrides(shape []Axis) (strides []int, total int) {
	strides = make([]int, len(shape))
	total = 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = total
		total *= shape[i].Size()
	}
	return strides, total
}

// CreateRandomDenseMatrix generates a dense matrix operand with normally
// distributed values, modeled as a COOTensor (no sparse axes, leading block count
// one).
type CreateRandomDenseMatrix struct {
	Rows   Axis
	Cols   Axis
	Mean   float64
	StdDev float64

	// Seed fixes the random stream; 0 seeds from the clock.
	Seed uint64
}

// NewCreateRandomDenseMatrix creates a new generation task.
func NewCreateRandomDenseMatrix(rows, cols Axis, mean, stdDev float64) *CreateRandomDenseMatrix {
	return &CreateRandomDenseMatrix{Rows: rows, Cols: cols, Mean: mean, StdDev: stdDev}
}

// Execute performs the generation.
func (g *CreateRandomDenseMatrix) Execute() (*COOTensor, error) {
	seed := g.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	normal := distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: rand.NewSource(seed)}

	data := make([]float64, g.Rows.Size()*g.Cols.Size())
	for i := range data {
		data[i] = normal.Rand()
	}
	return NewDenseMatrix(g.Rows, g.Cols, data)
}
