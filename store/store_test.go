package store

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/heromatch/dataset"
	"github.com/viant/heromatch/engine"
	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/index/bruteforce"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	require.NoError(t, engine.RegisterFunctions())
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s, err := New(context.Background(), db)
	require.NoError(t, err)
	return s
}

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]dataset.Entity{
		{Name: "A", Attributes: [dataset.Dims]float64{10, 10, 10, 10, 10, 10}},
		{Name: "B", Attributes: [dataset.Dims]float64{90, 90, 90, 90, 90, 90}},
		{Name: "C", Attributes: [dataset.Dims]float64{1.5, 2, 3, 4, 5, 6}},
	})
	require.NoError(t, err)
	return ds
}

func TestNew_NilDB(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
}

func TestStore_DatasetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	ds := testDataset(t)

	require.NoError(t, s.SaveDataset(ctx, ds))
	// saving twice replaces rather than appends
	require.NoError(t, s.SaveDataset(ctx, ds))

	loaded, err := s.LoadDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds.Entities(), loaded.Entities())
	assert.Equal(t, ds.Fingerprint(), loaded.Fingerprint())
}

func TestStore_LoadDatasetErrors(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.LoadDataset(ctx)
	assert.True(t, errors.Is(err, dataset.ErrLoad), "empty table must fail: %v", err)

	_, err = s.DB().ExecContext(ctx, `INSERT INTO heroes(position, name, intelligence, strength, speed, durability, power) VALUES(0, 'X', 1, 2, 3, 4, 5)`)
	require.NoError(t, err)
	_, err = s.LoadDataset(ctx)
	var loadErr *dataset.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, 1, loadErr.Record)
	assert.Equal(t, "combat", loadErr.Field)
}

func TestStore_Nearest(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.SaveDataset(ctx, testDataset(t)))

	rng := rand.New(rand.NewSource(5))
	vecs := make([][]float64, 3)
	for i := range vecs {
		vecs[i] = []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	}
	vecs[2] = append([]float64(nil), vecs[0]...)
	require.NoError(t, s.SaveScaled(ctx, vecs))

	brute := &bruteforce.Index{}
	require.NoError(t, brute.Build(vecs))
	q := []float64{0.1, -0.2, 0.3}
	want, err := brute.Query(q, 3)
	require.NoError(t, err)
	got, err := s.Nearest(ctx, q, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = s.Nearest(ctx, q, 0)
	assert.True(t, errors.Is(err, index.ErrInvalidK))

	assert.Error(t, s.SaveScaled(ctx, append(vecs, []float64{1, 1, 1})))
}

func TestStore_Model(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.LoadModel(ctx, "default")
	assert.ErrorIs(t, err, ErrModelNotFound)

	m := Model{
		Name:        "default",
		Fingerprint: 0xfedcba9876543210,
		Scaler:      []byte{1, 2, 3},
		Index:       []byte{4, 5},
		IndexKind:   index.KindCover,
	}
	require.NoError(t, s.SaveModel(ctx, m))
	m.Index = []byte{6}
	require.NoError(t, s.SaveModel(ctx, m))

	loaded, err := s.LoadModel(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, m.Fingerprint, loaded.Fingerprint)
	assert.Equal(t, []byte{1, 2, 3}, loaded.Scaler)
	assert.Equal(t, []byte{6}, loaded.Index)
	assert.Equal(t, index.KindCover, loaded.IndexKind)
	assert.False(t, loaded.UpdatedAt.IsZero())

	require.NoError(t, s.DeleteModel(ctx, "default"))
	_, err = s.LoadModel(ctx, "default")
	assert.ErrorIs(t, err, ErrModelNotFound)

	assert.Error(t, s.SaveModel(ctx, Model{}))
}
