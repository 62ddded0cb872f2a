package index

// Index defines an exact k-nearest-neighbor index over scaled vectors. The
// position of a vector in the slice passed to Build is its identity in query
// results.
type Index interface {
	// Build constructs the index from vectors. Vectors must be non-empty and
	// share one dimension. An index is read-only after Build returns and is
	// safe for concurrent queries.
	Build(vectors [][]float64) error

	// Query returns min(k, Len()) neighbors ordered by ascending Euclidean
	// distance, ties broken by ascending position. k < 1 fails with
	// *InvalidKError.
	Query(query []float64, k int) ([]Neighbor, error)

	// Len returns the number of indexed vectors.
	Len() int

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}

// Kind names an index implementation.
type Kind string

const (
	KindAuto  Kind = "auto"
	KindBrute Kind = "brute"
	KindCover Kind = "cover"
)

// AutoCoverMinVectors is the dataset size from which KindAuto resolves to a
// cover tree.
const AutoCoverMinVectors = 4000

// Resolve maps KindAuto to a concrete kind for n vectors.
func (k Kind) Resolve(n int) Kind {
	switch k {
	case KindBrute, KindCover:
		return k
	}
	if n >= AutoCoverMinVectors {
		return KindCover
	}
	return KindBrute
}
