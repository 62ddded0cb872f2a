package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode packs a vector into a BLOB of little-endian IEEE 754 float64
// values with no length prefix. A nil or empty vector encodes to nil.
func Encode(vec []float64) []byte {
	if len(vec) == 0 {
		return nil
	}
	b := make([]byte, 0, len(vec)*8)
	for _, v := range vec {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	return b
}

// Decode unpacks a BLOB produced by Encode.
func Decode(b []byte) ([]float64, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("vector: invalid blob length %d (not multiple of 8)", len(b))
	}
	vec := make([]float64, len(b)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return vec, nil
}
