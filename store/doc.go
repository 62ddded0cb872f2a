// Package store persists the reference dataset and fitted models in SQLite
// (modernc.org/sqlite through the engine package). It includes:
//   - the heroes table, one row per entity keyed by dataset position
//   - scaled vectors per hero, queryable with the hero_l2 SQL function
//   - model_storage, holding encoded scaler parameters and index blobs
//     together with the fingerprint of the dataset they were fit on
package store
