package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/heromatch/engine"
	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/store"
)

func TestModel_PersistAndRestore(t *testing.T) {
	ctx := context.Background()
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	st, err := store.New(ctx, db)
	require.NoError(t, err)

	ds := loadHeroes(t)
	for _, kind := range []index.Kind{index.KindBrute, index.KindCover} {
		built, err := New(ds, WithIndexKind(kind))
		require.NoError(t, err)
		m, err := built.Model(DefaultModelName)
		require.NoError(t, err)
		require.NoError(t, st.SaveModel(ctx, m))

		loaded, err := st.LoadModel(ctx, DefaultModelName)
		require.NoError(t, err)
		restored, err := FromModel(ds, loaded)
		require.NoError(t, err)
		assert.Equal(t, kind, restored.Stats().Algorithm)

		query := []float64{60, 60, 60, 60, 60, 60}
		want, err := built.FindMatches(ctx, query, 7)
		require.NoError(t, err)
		got, err := restored.FindMatches(ctx, query, 7)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFromModel_Stale(t *testing.T) {
	ds := loadHeroes(t)
	built, err := New(ds)
	require.NoError(t, err)
	m, err := built.Model(DefaultModelName)
	require.NoError(t, err)
	m.Fingerprint++
	_, err = FromModel(ds, &m)
	assert.ErrorIs(t, err, ErrStaleModel)

	m.Fingerprint--
	m.Scaler = m.Scaler[:3]
	_, err = FromModel(ds, &m)
	assert.Error(t, err)
}
