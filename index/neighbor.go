package index

import "sort"

// Neighbor is a single kNN hit.
type Neighbor struct {
	Position int
	Distance float64
}

// Less orders by distance, then by position.
func (n Neighbor) Less(other Neighbor) bool {
	if n.Distance != other.Distance {
		return n.Distance < other.Distance
	}
	return n.Position < other.Position
}

// SortNeighbors sorts in place by ascending distance, ties by ascending
// position, and truncates to at most k entries.
func SortNeighbors(neighbors []Neighbor, k int) []Neighbor {
	sort.SliceStable(neighbors, func(a, b int) bool { return neighbors[a].Less(neighbors[b]) })
	if k < len(neighbors) {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// ValidateK returns *InvalidKError when k < 1.
func ValidateK(k int) error {
	if k < 1 {
		return &InvalidKError{K: k}
	}
	return nil
}
