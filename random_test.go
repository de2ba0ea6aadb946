package sptensor

import (
	"math"
	"testing"
)

func TestCreateRandomCOOTensor(t *testing.T) {
	shape := []Axis{NewAxis(0, 10), NewAxis(5, 15), NewAxis(0, 8)}
	gen := NewCreateRandomCOOTensor(shape, 0.05, 0.0, 1.0)
	gen.Seed = 42

	tsr, err := gen.Execute()
	if err != nil {
		t.Fatal(err)
	}

	wantNNZ := int(0.05*float64(10*10*8) + 0.5)
	if tsr.NumBlocks() != wantNNZ {
		t.Errorf("expected %d blocks but received %d", wantNNZ, tsr.NumBlocks())
	}
	if len(tsr.DenseAxes()) != 0 {
		t.Errorf("generated tensor must be fully sparse")
	}
	if _, ok := tsr.SparseSortOrder(); ok {
		t.Errorf("generated tensor must start unsorted")
	}

	// Coordinates are unique and within their axis ranges.
	seen := map[[3]int]bool{}
	for m := 0; m < tsr.NumBlocks(); m++ {
		row := tsr.sparseRow(m)
		for c, idx := range row {
			if !shape[c].Contains(idx) {
				t.Fatalf("block %d: coordinate %d outside axis %s", m, idx, shape[c])
			}
		}
		key := [3]int{row[0], row[1], row[2]}
		if seen[key] {
			t.Fatalf("duplicate coordinate %v", key)
		}
		seen[key] = true
	}

	// Same seed, same tensor.
	gen2 := NewCreateRandomCOOTensor(shape, 0.05, 0.0, 1.0)
	gen2.Seed = 42
	tsr2, err := gen2.Execute()
	if err != nil {
		t.Fatal(err)
	}
	idx1, val1 := tsr.RawParts()
	idx2, val2 := tsr2.RawParts()
	for i := range idx1 {
		if idx1[i] != idx2[i] {
			t.Fatalf("same seed produced different coordinates")
		}
	}
	for i := range val1 {
		if val1[i] != val2[i] {
			t.Fatalf("same seed produced different values")
		}
	}
}

func TestCreateRandomCOOTensorDensityClamp(t *testing.T) {
	shape := []Axis{NewAxis(0, 2), NewAxis(0, 2)}
	gen := NewCreateRandomCOOTensor(shape, 2.0, 0.0, 1.0)
	gen.Seed = 1
	tsr, err := gen.Execute()
	if err != nil {
		t.Fatal(err)
	}
	if tsr.NumBlocks() != 4 {
		t.Errorf("density above 1 must clamp to the dense element count, received %d blocks", tsr.NumBlocks())
	}
}

func TestCreateRandomDenseMatrix(t *testing.T) {
	rows, cols := NewAxis(0, 40), NewAxis(0, 30)
	gen := NewCreateRandomDenseMatrix(rows, cols, 2.0, 0.5)
	gen.Seed = 7
	m, err := gen.Execute()
	if err != nil {
		t.Fatal(err)
	}

	if m.NDim() != 2 || len(m.SparseAxes()) != 0 {
		t.Fatalf("expected a fully dense rank-2 tensor")
	}
	if m.NumBlocks() != 1 {
		t.Errorf("expected a single leading block but received %d", m.NumBlocks())
	}
	if m.NNZ() != 1200 {
		t.Errorf("expected 1200 elements but received %d", m.NNZ())
	}

	// The sample mean of 1200 draws from N(2, 0.5) stays close to 2.
	_, values := m.RawParts()
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if math.Abs(mean-2.0) > 0.1 {
		t.Errorf("sample mean %v too far from 2.0", mean)
	}
}
