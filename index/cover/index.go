package cover

import (
	"fmt"
	"math"

	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/internal/cover/tree"
	"github.com/viant/heromatch/vector"
)

// Search selects the tree traversal used to bound the k-th neighbor.
type Search int

const (
	// DepthFirst descends children nearest-first.
	DepthFirst Search = iota
	// BestFirst expands nodes by ascending lower bound.
	BestFirst
)

// Option configures an Index.
type Option func(*Index)

// WithBase sets the cover tree base; values <= 1 select tree.DefaultBase.
func WithBase(base float32) Option {
	return func(i *Index) { i.base = base }
}

// WithSearch selects the kNN traversal.
func WithSearch(s Search) Option {
	return func(i *Index) { i.search = s }
}

// Index is an exact Euclidean kNN index backed by a cover tree.
//
// The tree holds float32 copies of the vectors and only narrows candidates;
// final distances are always measured on the float64 vectors with
// vector.L2Distance and ordered with index.SortNeighbors, so results equal
// the brute-force index exactly, ties included.
type Index struct {
	base   float32
	search Search
	vecs   [][]float64
	dim    int
	// maxNorm is the largest vector length, used to size rounding slack.
	maxNorm float64
	tree    *tree.Tree[int]
}

var _ index.Index = (*Index)(nil)

// New creates an empty index.
func New(opts ...Option) *Index {
	i := &Index{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Build inserts every vector and seals the tree.
func (i *Index) Build(vectors [][]float64) error {
	dim, err := index.CheckVectors(vectors)
	if err != nil {
		return fmt.Errorf("cover: %w", err)
	}
	vecs := index.CopyVectors(vectors)
	t := tree.NewTree[int](i.base)
	var maxNorm float64
	for pos, v := range vecs {
		t.Insert(pos, tree.NewPoint(vector.Float32s(v)...))
		maxNorm = math.Max(maxNorm, norm(v))
	}
	t.Seal()
	if t.Len() != len(vecs) {
		return fmt.Errorf("cover: tree holds %d points, want %d", t.Len(), len(vecs))
	}
	i.vecs, i.dim, i.maxNorm, i.tree = vecs, dim, maxNorm, t
	return nil
}

// Query finds the k-th neighbor bound through the tree, then collects every
// point within that bound and ranks them exactly.
func (i *Index) Query(query []float64, k int) ([]index.Neighbor, error) {
	if err := index.ValidateK(k); err != nil {
		return nil, err
	}
	if i.tree == nil {
		return nil, fmt.Errorf("cover: %w", index.ErrEmpty)
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("cover: query dim %d != index dim %d", len(query), i.dim)
	}
	qp := tree.NewPoint(vector.Float32s(query)...)
	var nearest []*tree.Neighbor
	if i.search == BestFirst {
		nearest = i.tree.KNearestNeighborsBestFirst(qp, k)
	} else {
		nearest = i.tree.KNearestNeighbors(qp, k)
	}
	var bound float64
	for _, n := range nearest {
		if d := vector.MustL2Distance(query, i.vecs[i.tree.Value(n.Point)]); d > bound {
			bound = d
		}
	}
	// float32 tree distances differ from exact ones by rounding that grows
	// with the distance and with the coordinates' magnitude
	radius := float32(bound + bound*1e-3 + (norm(query)+i.maxNorm)*1e-5 + 1e-6)
	candidates := i.tree.Within(qp, radius)
	neighbors := make([]index.Neighbor, 0, len(candidates))
	for _, c := range candidates {
		pos := i.tree.Value(c.Point)
		d := vector.MustL2Distance(query, i.vecs[pos])
		if d > bound {
			continue
		}
		neighbors = append(neighbors, index.Neighbor{Position: pos, Distance: d})
	}
	return index.SortNeighbors(neighbors, k), nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return len(i.vecs) }

// MarshalBinary uses the shared index vector encoding; the tree is rebuilt
// on load.
func (i *Index) MarshalBinary() ([]byte, error) {
	return index.EncodeVectors(i.vecs), nil
}

// UnmarshalBinary loads vectors and rebuilds the tree.
func (i *Index) UnmarshalBinary(data []byte) error {
	vecs, err := index.DecodeVectors(data)
	if err != nil {
		return err
	}
	return i.Build(vecs)
}

func norm(v []float64) float64 {
	return vector.MustL2Distance(v, make([]float64, len(v)))
}
