// Package bruteforce provides an exact kNN index that scans all vectors and
// ranks them by Euclidean distance, breaking ties by insertion position.
// For datasets of a few hundred entities it is also the fastest option.
package bruteforce
