package sptensor

import "sync"

const pooledIntSize = 200

var intPool = sync.Pool{
	New: func() interface{} {
		return make([]int, pooledIntSize)
	},
}

// getInts returns a []int of length l.  If clear is true, the slice is zeroed.
func getInts(l int, clear bool) []int {
	w := intPool.Get().([]int)
	return useInts(w, l, clear)
}

// putInts returns w to the pool for reuse.
func putInts(w []int) {
	intPool.Put(w) //nolint:staticcheck
}

// useInts returns a []int of length l, reusing w if it is large enough.
func useInts(w []int, l int, clear bool) []int {
	if l <= cap(w) {
		w = w[:l]
		if clear {
			for i := range w {
				w[i] = 0
			}
		}
		return w
	}
	return make([]int, l)
}
