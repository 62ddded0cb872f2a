// Package index defines a minimal abstraction for exact nearest-neighbor
// indexes over scaled attribute vectors: build once, query for kNN by
// Euclidean distance, serialize for persistence.
//
// Implementations in this module are a brute-force baseline (bruteforce) and
// a cover-tree index (cover). Both return identical neighbor sets, distances
// and tie order for the same input.
package index
