// Package scaler fits per-attribute centering and scaling parameters from
// the reference dataset and applies them to raw vectors. The same fitted
// Params must be used for the dataset at index build time and for every
// query; nothing in this package refits at lookup time.
package scaler
