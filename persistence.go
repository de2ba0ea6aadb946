package sptensor

import (
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	_ encoding.BinaryMarshaler   = (*COOTensor)(nil)
	_ encoding.BinaryUnmarshaler = (*COOTensor)(nil)
)

const persistVersion = 1

// MarshalBinary serialises the tensor into a little-endian byte stream:
//
//	version (int64)
//	number of axes N (int64)
//	per axis: lower (int64), upper (int64), dense flag (int64),
//	          label length (int64), label bytes
//	sorted flag (int64); if sorted, sort order as sparse-axis positions (int64 each)
//	number of blocks M (int64)
//	M*S coordinates (int64 each)
//	M*blockSize values (IEEE 754 bits, uint64 each)
//
// Axis identities are process-local and are not serialised; unmarshalling mints
// fresh axes with the same bounds and labels.
func (t *COOTensor) MarshalBinary() ([]byte, error) {
	var buf []byte
	writeInt := func(v int) {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		buf = append(buf, b[:]...)
	}

	writeInt(persistVersion)
	writeInt(t.NDim())
	for _, ax := range t.shape {
		writeInt(ax.Lower())
		writeInt(ax.Upper())
		dense := 0
		if findAxis(t.denseAxes, ax) >= 0 {
			dense = 1
		}
		writeInt(dense)
		writeInt(len(ax.Label()))
		buf = append(buf, ax.Label()...)
	}

	if order, ok := t.SparseSortOrder(); ok {
		writeInt(1)
		for _, ax := range order {
			pos := findAxis(t.sparseAxes, ax)
			if pos < 0 {
				return nil, fmt.Errorf("%w: sort order names an axis outside the sparse axes", ErrShapeMismatch)
			}
			writeInt(pos)
		}
	} else {
		writeInt(0)
	}

	writeInt(t.NumBlocks())
	for _, idx := range t.indices {
		writeInt(idx)
	}
	for _, v := range t.values {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf = append(buf, b[:]...)
	}
	return buf, nil
}

// UnmarshalBinary deserialises a tensor written by MarshalBinary into the receiver,
// replacing its contents.  Fresh axis identities are minted.
func (t *COOTensor) UnmarshalBinary(data []byte) error {
	p := 0
	readInt := func() (int, error) {
		if p+8 > len(data) {
			return 0, errors.New("sptensor: truncated binary tensor data")
		}
		v := int(int64(binary.LittleEndian.Uint64(data[p : p+8])))
		p += 8
		return v, nil
	}

	version, err := readInt()
	if err != nil {
		return err
	}
	if version != persistVersion {
		return fmt.Errorf("sptensor: unsupported binary tensor version %d", version)
	}

	ndim, err := readInt()
	if err != nil {
		return err
	}
	if ndim < 0 {
		return errors.New("sptensor: negative axis count")
	}

	shape := make([]Axis, 0, ndim)
	var sparseAxes, denseAxes []Axis
	for i := 0; i < ndim; i++ {
		lower, err := readInt()
		if err != nil {
			return err
		}
		upper, err := readInt()
		if err != nil {
			return err
		}
		dense, err := readInt()
		if err != nil {
			return err
		}
		labelLen, err := readInt()
		if err != nil {
			return err
		}
		if labelLen < 0 || p+labelLen > len(data) {
			return errors.New("sptensor: truncated binary tensor data")
		}
		label := string(data[p : p+labelLen])
		p += labelLen

		ax := NewAxisBuilder().Label(label).Range(lower, upper).Build()
		shape = append(shape, ax)
		if dense != 0 {
			denseAxes = append(denseAxes, ax)
		} else {
			sparseAxes = append(sparseAxes, ax)
		}
	}

	sorted, err := readInt()
	if err != nil {
		return err
	}
	var sortOrder []Axis
	if sorted != 0 {
		sortOrder = make([]Axis, len(sparseAxes))
		for i := range sortOrder {
			pos, err := readInt()
			if err != nil {
				return err
			}
			if pos < 0 || pos >= len(sparseAxes) {
				return errors.New("sptensor: sort order position out of range")
			}
			sortOrder[i] = sparseAxes[pos]
		}
	}

	numBlocks, err := readInt()
	if err != nil {
		return err
	}
	if numBlocks < 0 {
		return errors.New("sptensor: negative block count")
	}

	indices := make([]int, numBlocks*len(sparseAxes))
	for i := range indices {
		if indices[i], err = readInt(); err != nil {
			return err
		}
	}

	blockSize := 1
	for _, ax := range denseAxes {
		blockSize *= ax.Size()
	}
	numValues := numBlocks * blockSize
	if len(sparseAxes) == 0 && numBlocks == 1 {
		numValues = blockSize
	}
	values := make([]float64, numValues)
	for i := range values {
		if p+8 > len(data) {
			return errors.New("sptensor: truncated binary tensor data")
		}
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[p : p+8]))
		p += 8
	}

	*t = *fromRawParts(rawParts{
		shape:           shape,
		sparseAxes:      sparseAxes,
		denseAxes:       denseAxes,
		indices:         indices,
		values:          values,
		sparseIsSorted:  sorted != 0,
		sparseSortOrder: sortOrder,
	})
	return nil
}
