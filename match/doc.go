// Package match answers "which heroes are most like this profile" queries.
//
// A Service is built once from a dataset: it fits a scaler, scales every
// entity and builds a nearest-neighbor index. After New returns, the service
// is read-only and FindMatches may be called from any number of goroutines.
// Lazy wraps construction behind a one-time initialization barrier.
package match
