package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// EncodeVectors stores: dim(uint32), n(uint32), then n vectors of
// float64[dim]. Positions are implicit in the order.
func EncodeVectors(vectors [][]float64) []byte {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	out := make([]byte, 0, 8+8*dim*len(vectors))
	out = binary.LittleEndian.AppendUint32(out, uint32(dim))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(vectors)))
	for _, vec := range vectors {
		for _, v := range vec {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
		}
	}
	return out
}

// DecodeVectors restores vectors written by EncodeVectors.
func DecodeVectors(data []byte) ([][]float64, error) {
	if len(data) < 8 {
		return nil, errors.New("index: invalid data")
	}
	dim := int(binary.LittleEndian.Uint32(data[0:4]))
	n := int(binary.LittleEndian.Uint32(data[4:8]))
	if want := 8 + 8*dim*n; len(data) != want {
		return nil, fmt.Errorf("index: data length %d, want %d", len(data), want)
	}
	off := 8
	vecs := make([][]float64, n)
	for i := range vecs {
		vec := make([]float64, dim)
		for j := range vec {
			vec[j] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
			off += 8
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// CheckVectors validates vectors for Build and returns their dimension.
func CheckVectors(vectors [][]float64) (int, error) {
	if len(vectors) == 0 {
		return 0, ErrEmpty
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, errors.New("index: zero-dimension vectors")
	}
	for j := range vectors {
		if len(vectors[j]) != dim {
			return 0, fmt.Errorf("index: inconsistent vector dims %d vs %d", len(vectors[j]), dim)
		}
	}
	return dim, nil
}

// CopyVectors deep-copies vectors so callers cannot mutate an index.
func CopyVectors(vectors [][]float64) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		out[i] = append([]float64(nil), v...)
	}
	return out
}
