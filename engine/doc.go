// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections and registering the scalar SQL
// functions hero_l2 and match_score. It keeps a thin surface so the store and
// tooling share one driver instance.
package engine
