package bruteforce

import (
	"fmt"

	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/vector"
)

// Index is a brute-force Euclidean kNN index. It is the reference
// implementation other indexes are checked against.
type Index struct {
	vecs [][]float64
	dim  int
}

var _ index.Index = (*Index)(nil)

// Build copies vectors into the index.
func (i *Index) Build(vectors [][]float64) error {
	dim, err := index.CheckVectors(vectors)
	if err != nil {
		return fmt.Errorf("bruteforce: %w", err)
	}
	i.vecs = index.CopyVectors(vectors)
	i.dim = dim
	return nil
}

// Query scans every vector and returns the k closest.
func (i *Index) Query(query []float64, k int) ([]index.Neighbor, error) {
	if err := index.ValidateK(k); err != nil {
		return nil, err
	}
	if len(i.vecs) == 0 {
		return nil, fmt.Errorf("bruteforce: %w", index.ErrEmpty)
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	neighbors := make([]index.Neighbor, len(i.vecs))
	for j, vec := range i.vecs {
		neighbors[j] = index.Neighbor{Position: j, Distance: vector.MustL2Distance(query, vec)}
	}
	return index.SortNeighbors(neighbors, k), nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return len(i.vecs) }

// MarshalBinary uses the shared index vector encoding.
func (i *Index) MarshalBinary() ([]byte, error) {
	return index.EncodeVectors(i.vecs), nil
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	vecs, err := index.DecodeVectors(data)
	if err != nil {
		return err
	}
	return i.Build(vecs)
}
