// Package dataset holds the immutable reference table of heroes used for
// similarity matching. Each entity carries exactly six attributes in a fixed
// order; the position of an entity in the dataset is its stable identity and
// is what neighbor indexes return.
//
// Datasets are validated on construction and are never partially loaded:
// any malformed record fails the whole load with a *LoadError.
package dataset
