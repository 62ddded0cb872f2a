// Package vector holds the low-level vector helpers shared by indexes and
// the SQLite layer:
//   - Euclidean distance over float64 coordinates
//   - float64 to float32 narrowing for tree pruning kernels
//   - vector encoding (BLOB) for persistence
package vector
