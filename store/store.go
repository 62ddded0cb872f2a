package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/viant/heromatch/dataset"
	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/vector"
)

// ErrModelNotFound is returned by LoadModel when no model is stored under
// the requested name.
var ErrModelNotFound = errors.New("store: model not found")

// Model is a persisted fit: scaler parameters and index encoded with their
// MarshalBinary methods, plus the fingerprint of the dataset they belong to.
type Model struct {
	Name        string
	Fingerprint uint64
	Scaler      []byte
	Index       []byte
	IndexKind   index.Kind
	UpdatedAt   time.Time
}

// Store is a SQLite-backed home for the reference dataset and fitted models.
type Store struct {
	db *sql.DB
}

// New creates a Store and ensures its schema exists.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB { return s.db }

// SaveDataset replaces the heroes table with ds in a single transaction.
// Previously stored scaled vectors are discarded.
func (s *Store) SaveDataset(ctx context.Context, ds *dataset.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM heroes`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO heroes(position, name, intelligence, strength, speed, durability, power, combat) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < ds.Len(); i++ {
		e := ds.At(i)
		a := e.Attributes
		if _, err := stmt.ExecContext(ctx, i, e.Name, a[0], a[1], a[2], a[3], a[4], a[5]); err != nil {
			return fmt.Errorf("store: insert %q: %w", e.Name, err)
		}
	}
	return tx.Commit()
}

// LoadDataset reads heroes in position order and validates them with
// dataset.New. Missing values fail with *dataset.LoadError.
func (s *Store) LoadDataset(ctx context.Context, opts ...dataset.Option) (*dataset.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, intelligence, strength, speed, durability, power, combat FROM heroes ORDER BY position`)
	if err != nil {
		return nil, &dataset.LoadError{Err: err}
	}
	defer rows.Close()

	var entities []dataset.Entity
	for record := 1; rows.Next(); record++ {
		var name sql.NullString
		var values [dataset.Dims]sql.NullFloat64
		if err := rows.Scan(&name, &values[0], &values[1], &values[2], &values[3], &values[4], &values[5]); err != nil {
			return nil, &dataset.LoadError{Record: record, Err: err}
		}
		if !name.Valid {
			return nil, &dataset.LoadError{Record: record, Field: dataset.NameColumn, Err: errors.New("missing field")}
		}
		e := dataset.Entity{Name: name.String}
		for j, v := range values {
			if !v.Valid {
				return nil, &dataset.LoadError{Record: record, Field: dataset.Attribute(j).String(), Err: errors.New("missing field")}
			}
			e.Attributes[j] = v.Float64
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &dataset.LoadError{Err: err}
	}
	return dataset.New(entities, opts...)
}

// SaveScaled stores the scaled vector of every hero, by position.
func (s *Store) SaveScaled(ctx context.Context, vectors [][]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE heroes SET scaled = ? WHERE position = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for pos, v := range vectors {
		res, err := stmt.ExecContext(ctx, vector.Encode(v), pos)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return fmt.Errorf("store: no hero at position %d", pos)
		}
	}
	return tx.Commit()
}

// Nearest ranks heroes by hero_l2 over their stored scaled vectors. It
// requires engine.RegisterFunctions to have run before the connection was
// opened, and exists as an SQL-side cross-check of the in-memory indexes.
func (s *Store) Nearest(ctx context.Context, query []float64, k int) ([]index.Neighbor, error) {
	if err := index.ValidateK(k); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT position, hero_l2(scaled, ?) AS d FROM heroes WHERE scaled IS NOT NULL ORDER BY d, position LIMIT ?`, vector.Encode(query), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []index.Neighbor
	for rows.Next() {
		var n index.Neighbor
		if err := rows.Scan(&n.Position, &n.Distance); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// SaveModel inserts or replaces a model by name.
func (s *Store) SaveModel(ctx context.Context, m Model) error {
	if m.Name == "" {
		return fmt.Errorf("store: model name is empty")
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO model_storage(name, fingerprint, scaler, "index", index_kind, updated_at) VALUES(?, ?, ?, ?, ?, ?)`,
		m.Name, strconv.FormatUint(m.Fingerprint, 16), m.Scaler, m.Index, string(m.IndexKind), time.Now().UnixNano())
	return err
}

// LoadModel returns the model stored under name, or ErrModelNotFound.
func (s *Store) LoadModel(ctx context.Context, name string) (*Model, error) {
	row := s.db.QueryRowContext(ctx, `SELECT fingerprint, scaler, "index", index_kind, updated_at FROM model_storage WHERE name = ?`, name)
	m := &Model{Name: name}
	var fingerprint, kind string
	var updated int64
	if err := row.Scan(&fingerprint, &m.Scaler, &m.Index, &kind, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	fp, err := strconv.ParseUint(fingerprint, 16, 64)
	if err != nil {
		return nil, fmt.Errorf("store: model %s: invalid fingerprint %q", name, fingerprint)
	}
	m.Fingerprint = fp
	m.UpdatedAt = time.Unix(0, updated).UTC()
	m.IndexKind = index.Kind(kind)
	return m, nil
}

// DeleteModel removes a stored model; deleting a missing model is not an error.
func (s *Store) DeleteModel(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM model_storage WHERE name = ?`, name)
	return err
}
