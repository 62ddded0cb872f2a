// Package cover provides a cover-tree kNN index. The tree prunes the search
// for the k-th neighbor distance; candidates within that distance are then
// ranked exactly, so results match the bruteforce package bit for bit.
package cover
