package store

import (
	"context"
	"database/sql"
)

const heroesSchema = `
CREATE TABLE IF NOT EXISTS heroes (
    position     INTEGER PRIMARY KEY,
    name         TEXT,
    intelligence REAL,
    strength     REAL,
    speed        REAL,
    durability   REAL,
    power        REAL,
    combat       REAL,
    scaled       BLOB
);
`

const modelSchema = `
CREATE TABLE IF NOT EXISTS model_storage (
    name        TEXT PRIMARY KEY,
    fingerprint TEXT NOT NULL,
    scaler      BLOB NOT NULL,
    "index"     BLOB NOT NULL,
    index_kind  TEXT NOT NULL,
    updated_at  INTEGER NOT NULL
);
`

// EnsureSchema creates the heroes and model_storage tables if they do not
// already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range []string{heroesSchema, modelSchema} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
