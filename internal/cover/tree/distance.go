package tree

import "github.com/viant/vec/search"

// DistanceFunc measures two vectors of equal length.
type DistanceFunc func(a, b []float32) float32

// Euclidean is the tree's metric, computed with viant/vec kernels.
func Euclidean(a, b []float32) float32 {
	return search.Float32s(a).EuclideanDistance(b)
}
