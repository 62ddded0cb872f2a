package vector

import (
	"fmt"
	"math"
)

// L2Distance computes the Euclidean (L2) distance between two vectors. It
// returns an error if the vectors have different lengths.
func L2Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: L2 distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	return math.Sqrt(squaredL2(a, b)), nil
}

// MustL2Distance is L2Distance for callers that already checked dimensions.
func MustL2Distance(a, b []float64) float64 {
	return math.Sqrt(squaredL2(a, b))
}

func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Float32s narrows a vector for float32 search kernels. Narrowed copies
// only prune; reported distances always come from the float64 originals.
func Float32s(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
