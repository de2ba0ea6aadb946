package sptensor

import (
	"testing"
)

type iterElem struct {
	index []int
	value float64
}

func collect(t *COOTensor) []iterElem {
	var out []iterElem
	t.Do(func(index []int, v float64) {
		out = append(out, iterElem{index: append([]int(nil), index...), value: v})
	})
	return out
}

func checkElems(t *testing.T, got, want []iterElem) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d elements but received %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].value != want[i].value {
			t.Errorf("element %d: expected value %v but received %v", i, want[i].value, got[i].value)
		}
		if len(got[i].index) != len(want[i].index) {
			t.Fatalf("element %d: expected index %v but received %v", i, want[i].index, got[i].index)
		}
		for j := range want[i].index {
			if got[i].index[j] != want[i].index[j] {
				t.Errorf("element %d: expected index %v but received %v", i, want[i].index, got[i].index)
				break
			}
		}
	}
}

func TestIterFullySparse(t *testing.T) {
	tsr, _ := Zeros([]Axis{NewAxis(0, 2), NewAxis(0, 3)}, []bool{false, false})
	tsr.Push([]int{0, 1}, 1)
	tsr.Push([]int{1, 2}, 2)

	checkElems(t, collect(tsr), []iterElem{
		{[]int{0, 1}, 1},
		{[]int{1, 2}, 2},
	})
}

func TestIterSemiSparseTrailingDense(t *testing.T) {
	// Dense axis with a non-zero lower bound: logical dense indices start at 1.
	sparse := NewAxis(0, 2)
	dense := NewAxis(1, 3)
	tsr, _ := Zeros([]Axis{sparse, dense}, []bool{false, true})
	tsr.PushBlock([]int{0}, []float64{10, 20})
	tsr.PushBlock([]int{1}, []float64{30, 40})

	checkElems(t, collect(tsr), []iterElem{
		{[]int{0, 1}, 10},
		{[]int{0, 2}, 20},
		{[]int{1, 1}, 30},
		{[]int{1, 2}, 40},
	})
}

func TestIterInterleavedAxes(t *testing.T) {
	// The dense axis comes FIRST in the logical shape; the iterator must scatter
	// the dense sub-index into position 0 and the sparse coordinate into
	// position 1.
	dense := NewAxis(0, 2)
	sparse := NewAxis(0, 3)
	tsr, _ := Zeros([]Axis{dense, sparse}, []bool{true, false})
	tsr.PushBlock([]int{2}, []float64{5, 6})

	checkElems(t, collect(tsr), []iterElem{
		{[]int{0, 2}, 5},
		{[]int{1, 2}, 6},
	})
}

func TestIterMultipleDenseAxes(t *testing.T) {
	// Two dense axes: the last one advances fastest (memory order).
	sparse := NewAxis(0, 2)
	d1 := NewAxis(0, 2)
	d2 := NewAxis(0, 2)
	tsr, _ := Zeros([]Axis{sparse, d1, d2}, []bool{false, true, true})
	tsr.PushBlock([]int{1}, []float64{1, 2, 3, 4})

	checkElems(t, collect(tsr), []iterElem{
		{[]int{1, 0, 0}, 1},
		{[]int{1, 0, 1}, 2},
		{[]int{1, 1, 0}, 3},
		{[]int{1, 1, 1}, 4},
	})
}

func TestIterEmpty(t *testing.T) {
	tsr, _ := Zeros([]Axis{NewAxis(0, 2)}, []bool{false})
	it := tsr.Iter()
	if _, _, ok := it.Next(); ok {
		t.Errorf("empty tensor must yield nothing")
	}
	if it.Len() != 0 {
		t.Errorf("expected Len 0 but received %d", it.Len())
	}
}

func TestIterLen(t *testing.T) {
	tsr, _ := Zeros([]Axis{NewAxis(0, 4), NewAxis(0, 3)}, []bool{false, true})
	tsr.PushBlock([]int{0}, []float64{1, 2, 3})
	tsr.PushBlock([]int{2}, []float64{4, 5, 6})
	if l := tsr.Iter().Len(); l != 6 {
		t.Errorf("expected Len 6 but received %d", l)
	}
}

func TestIterMut(t *testing.T) {
	tsr, _ := Zeros([]Axis{NewAxis(0, 2), NewAxis(0, 2)}, []bool{false, true})
	tsr.PushBlock([]int{0}, []float64{1, 2})
	tsr.PushBlock([]int{1}, []float64{3, 4})

	tsr.DoMut(func(index []int, v *float64) {
		*v *= 2
	})

	_, values := tsr.RawParts()
	want := []float64{2, 4, 6, 8}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("element %d: expected %v but received %v", i, want[i], values[i])
		}
	}
}
