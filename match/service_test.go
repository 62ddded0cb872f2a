package match

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/heromatch/dataset"
	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/metrics"
	"github.com/viant/heromatch/scaler"
	"github.com/viant/heromatch/score"
)

func loadHeroes(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.LoadCSVFile("../dataset/testdata/heroes.csv")
	require.NoError(t, err)
	return ds
}

func uniform(name string, v float64) dataset.Entity {
	e := dataset.Entity{Name: name}
	for i := range e.Attributes {
		e.Attributes[i] = v
	}
	return e
}

func randomDataset(t *testing.T, n int, seed int64) *dataset.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	entities := make([]dataset.Entity, n)
	for i := range entities {
		entities[i].Name = "hero"
		for j := range entities[i].Attributes {
			// coarse grid so exact duplicates and distance ties occur
			entities[i].Attributes[j] = float64(rng.Intn(5) * 25)
		}
	}
	ds, err := dataset.New(entities)
	require.NoError(t, err)
	return ds
}

func TestFindMatches_SingleNearest(t *testing.T) {
	ds, err := dataset.New([]dataset.Entity{uniform("A", 10), uniform("B", 90)})
	require.NoError(t, err)
	svc, err := New(ds)
	require.NoError(t, err)

	got, err := svc.FindMatches(context.Background(), ds.At(0).Vector(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Position)
	assert.Equal(t, "A", got[0].Entity.Name)
	assert.Equal(t, 0.0, got[0].Distance)
	assert.Equal(t, 100.0, got[0].Score)
}

func TestFindMatches_InvalidK(t *testing.T) {
	svc, err := New(loadHeroes(t))
	require.NoError(t, err)
	for _, k := range []int{0, -1} {
		_, err := svc.FindMatches(context.Background(), []float64{50, 50, 50, 50, 50, 50}, k)
		var kErr *index.InvalidKError
		require.True(t, errors.As(err, &kErr), "k=%d: %v", k, err)
		assert.Equal(t, k, kErr.K)
		assert.False(t, errors.Is(err, ErrInvalidQuery))
	}
}

func TestFindMatches_InvalidQuery(t *testing.T) {
	ds := loadHeroes(t)
	lenient, err := New(ds)
	require.NoError(t, err)
	strict, err := New(ds, WithStrictRange(true))
	require.NoError(t, err)

	testCases := []struct {
		description string
		svc         *Service
		query       []float64
		attribute   int
	}{
		{description: "five values", svc: lenient, query: []float64{1, 2, 3, 4, 5}, attribute: -1},
		{description: "seven values", svc: lenient, query: []float64{1, 2, 3, 4, 5, 6, 7}, attribute: -1},
		{description: "empty", svc: lenient, query: nil, attribute: -1},
		{description: "nan", svc: lenient, query: []float64{1, math.NaN(), 3, 4, 5, 6}, attribute: 1},
		{description: "inf", svc: lenient, query: []float64{1, 2, 3, 4, 5, math.Inf(-1)}, attribute: 5},
		{description: "strict above range", svc: strict, query: []float64{1, 2, 101, 4, 5, 6}, attribute: 2},
		{description: "strict below range", svc: strict, query: []float64{-1, 2, 3, 4, 5, 6}, attribute: 0},
	}
	for _, tc := range testCases {
		_, err := tc.svc.FindMatches(context.Background(), tc.query, 3)
		var qErr *InvalidQueryError
		require.True(t, errors.As(err, &qErr), tc.description)
		assert.Equal(t, tc.attribute, qErr.Attribute, tc.description)
		assert.True(t, errors.Is(err, ErrInvalidQuery), tc.description)
	}

	got, err := lenient.FindMatches(context.Background(), []float64{150, -20, 50, 50, 50, 50}, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFindMatches_Ordering(t *testing.T) {
	ds := loadHeroes(t)
	svc, err := New(ds)
	require.NoError(t, err)

	for _, k := range []int{1, 5, ds.Len(), ds.Len() + 10, 1000} {
		got, err := svc.FindMatches(context.Background(), []float64{80, 40, 50, 60, 70, 90}, k)
		require.NoError(t, err)
		want := k
		if want > ds.Len() {
			want = ds.Len()
		}
		require.Len(t, got, want)
		seen := map[int]bool{}
		for i, m := range got {
			assert.False(t, seen[m.Position])
			seen[m.Position] = true
			assert.Equal(t, ds.At(m.Position), m.Entity)
			assert.GreaterOrEqual(t, m.Score, 0.0)
			assert.LessOrEqual(t, m.Score, 100.0)
			if i > 0 {
				prev := got[i-1]
				assert.True(t, prev.Distance < m.Distance || (prev.Distance == m.Distance && prev.Position < m.Position))
				assert.GreaterOrEqual(t, prev.Score, m.Score)
			}
		}
	}
}

func TestFindMatches_RoundTrip(t *testing.T) {
	ds := loadHeroes(t)
	svc, err := New(ds)
	require.NoError(t, err)
	for i := 0; i < ds.Len(); i++ {
		got, err := svc.FindMatches(context.Background(), ds.At(i).Vector(), 1)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got[0].Distance, ds.At(i).Name)
		assert.Equal(t, ds.At(i).Attributes, got[0].Entity.Attributes)
	}
}

type countingRecorder struct {
	mu     sync.Mutex
	hits   int
	misses int
	size   int
	ops    map[bool]int
}

func (c *countingRecorder) IncQueryTotal(_ string, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops[success]++
}
func (c *countingRecorder) ObserveQuerySeconds(string, bool, float64) {}
func (c *countingRecorder) IncCache(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}
func (c *countingRecorder) SetDatasetSize(n int) { c.size = n }

func TestFindMatches_Cache(t *testing.T) {
	rec := &countingRecorder{ops: map[bool]int{}}
	metrics.SetRecorder(rec)
	defer metrics.SetRecorder(nil)

	ds := loadHeroes(t)
	svc, err := New(ds)
	require.NoError(t, err)
	assert.Equal(t, ds.Len(), rec.size)

	query := []float64{90, 50, 50, 80, 90, 70}
	first, err := svc.FindMatches(context.Background(), query, 4)
	require.NoError(t, err)
	first[0].Entity.Name = "mutated"

	second, err := svc.FindMatches(context.Background(), query, 4)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second[0].Entity.Name)

	third, err := svc.FindMatches(context.Background(), query, 4)
	require.NoError(t, err)
	assert.Equal(t, second, third)

	assert.Equal(t, 1, rec.misses)
	assert.Equal(t, 2, rec.hits)
	assert.Equal(t, 3, rec.ops[true])
	assert.Equal(t, 1, svc.Stats().CacheSize)

	_, err = svc.FindMatches(context.Background(), query[:2], 4)
	require.Error(t, err)
	assert.Equal(t, 1, rec.ops[false])

	uncached, err := New(ds, WithCacheSize(0))
	require.NoError(t, err)
	again, err := uncached.FindMatches(context.Background(), query, 4)
	require.NoError(t, err)
	assert.Equal(t, third, again)
	assert.Equal(t, 0, uncached.Stats().CacheSize)
}

func TestFindMatches_CoverMatchesBrute(t *testing.T) {
	ds := randomDataset(t, 400, 11)
	brute, err := New(ds, WithIndexKind(index.KindBrute), WithCacheSize(0))
	require.NoError(t, err)
	tree, err := New(ds, WithIndexKind(index.KindCover), WithCacheSize(0))
	require.NoError(t, err)
	assert.Equal(t, index.KindBrute, brute.Stats().Algorithm)
	assert.Equal(t, index.KindCover, tree.Stats().Algorithm)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		query := make([]float64, dataset.Dims)
		for j := range query {
			query[j] = float64(rng.Intn(101))
		}
		if i%5 == 0 {
			query = ds.At(rng.Intn(ds.Len())).Vector()
		}
		k := 1 + rng.Intn(15)
		want, err := brute.FindMatches(context.Background(), query, k)
		require.NoError(t, err)
		got, err := tree.FindMatches(context.Background(), query, k)
		require.NoError(t, err)
		require.Equal(t, want, got, "query %v k=%d", query, k)
	}
}

func TestFindMatches_MaxK(t *testing.T) {
	ds := randomDataset(t, 200, 9)
	query := []float64{50, 50, 50, 50, 50, 50}

	uncapped, err := New(ds)
	require.NoError(t, err)
	got, err := uncapped.FindMatches(context.Background(), query, 150)
	require.NoError(t, err)
	assert.Len(t, got, 150)

	capped, err := New(ds, WithMaxK(100))
	require.NoError(t, err)
	got, err = capped.FindMatches(context.Background(), query, 100)
	require.NoError(t, err)
	assert.Len(t, got, 100)

	_, err = capped.FindMatches(context.Background(), query, 150)
	var kErr *index.InvalidKError
	require.True(t, errors.As(err, &kErr), "%v", err)
	assert.Equal(t, 150, kErr.K)
	assert.Equal(t, 100, kErr.Max)
	assert.ErrorIs(t, err, index.ErrInvalidK)
}

// scaledDistance is the Euclidean distance after scaling every column
// with the same center and spread.
func scaledDistance(center, spread float64, a, b []float64) float64 {
	var sum float64
	for j := range a {
		d := (a[j]-center)/spread - (b[j]-center)/spread
		sum += d * d
	}
	return math.Sqrt(sum)
}

func TestFindMatches_ExactReference(t *testing.T) {
	extremes := []dataset.Entity{uniform("A", 10), uniform("B", 90)}
	quartiles := []dataset.Entity{uniform("A", 20), uniform("B", 40), uniform("C", 60), uniform("D", 80)}
	testCases := []struct {
		description string
		entities    []dataset.Entity
		kind        scaler.Kind
		center      float64
		spread      float64
		query       []float64
		positions   []int
		distances   []float64
	}{
		{
			description: "midpoint query ties",
			entities:    extremes,
			kind:        scaler.Standard,
			center:      50,
			spread:      40,
			query:       []float64{50, 50, 50, 50, 50, 50},
			positions:   []int{0, 1},
			distances:   []float64{math.Sqrt(6), math.Sqrt(6)},
		},
		{
			description: "self query",
			entities:    extremes,
			kind:        scaler.Standard,
			center:      50,
			spread:      40,
			query:       uniform("A", 10).Vector(),
			positions:   []int{0, 1},
			distances:   []float64{0, math.Sqrt(24)},
		},
		{
			description: "minmax midpoint",
			entities:    extremes,
			kind:        scaler.MinMax,
			center:      10,
			spread:      80,
			query:       []float64{50, 50, 50, 50, 50, 50},
			positions:   []int{0, 1},
			distances:   []float64{math.Sqrt(1.5), math.Sqrt(1.5)},
		},
		{
			description: "mixed query",
			entities:    quartiles,
			kind:        scaler.Standard,
			center:      50,
			spread:      math.Sqrt(500),
			query:       []float64{70, 30, 50, 80, 20, 65},
		},
		{
			description: "uniform query between rows",
			entities:    quartiles,
			kind:        scaler.Standard,
			center:      50,
			spread:      math.Sqrt(500),
			query:       []float64{55, 55, 55, 55, 55, 55},
			positions:   []int{2, 1, 3, 0},
		},
	}
	for _, tc := range testCases {
		ds, err := dataset.New(tc.entities)
		require.NoError(t, err)
		for _, kind := range []index.Kind{index.KindBrute, index.KindCover} {
			svc, err := New(ds, WithScaler(tc.kind, scaler.PolicyFail), WithIndexKind(kind))
			require.NoError(t, err, tc.description)
			params := svc.Params()
			for j := 0; j < dataset.Dims; j++ {
				require.Equal(t, tc.center, params.Center[j], tc.description)
				require.Equal(t, tc.spread, params.Spread[j], tc.description)
			}

			got, err := svc.FindMatches(context.Background(), tc.query, ds.Len())
			require.NoError(t, err, tc.description)
			require.Len(t, got, ds.Len(), tc.description)
			for i, m := range got {
				want := scaledDistance(tc.center, tc.spread, tc.query, ds.At(m.Position).Vector())
				assert.Equal(t, want, m.Distance, "%s/%s: match %d", tc.description, kind, i)
				assert.Equal(t, score.Score(want), m.Score, "%s/%s: match %d", tc.description, kind, i)
				if tc.distances != nil {
					assert.Equal(t, tc.distances[i], m.Distance, "%s/%s: match %d", tc.description, kind, i)
				}
				if tc.positions != nil {
					assert.Equal(t, tc.positions[i], m.Position, "%s/%s: match %d", tc.description, kind, i)
				}
				if i > 0 {
					assert.LessOrEqual(t, got[i-1].Distance, m.Distance, tc.description)
				}
			}
		}
	}
}

func TestService_ParamsIsCopy(t *testing.T) {
	ds := loadHeroes(t)
	svc, err := New(ds)
	require.NoError(t, err)
	query := ds.At(2).Vector()
	before, err := svc.FindMatches(context.Background(), query, 3)
	require.NoError(t, err)

	leaked := svc.Params()
	for j := range leaked.Center {
		leaked.Center[j] = 1e6
		leaked.Spread[j] = 1e-6
	}

	fresh := svc.Params()
	assert.NotEqual(t, leaked.Center, fresh.Center)
	after, err := New(ds, WithCacheSize(0))
	require.NoError(t, err)
	want, err := after.FindMatches(context.Background(), query, 3)
	require.NoError(t, err)
	assert.Equal(t, want, before)
	got, err := svc.FindMatches(context.Background(), []float64{1, 2, 3, 4, 5, 6}, 3)
	require.NoError(t, err)
	ref, err := after.FindMatches(context.Background(), []float64{1, 2, 3, 4, 5, 6}, 3)
	require.NoError(t, err)
	assert.Equal(t, ref, got)
}

func TestFindMatches_Canceled(t *testing.T) {
	svc, err := New(loadHeroes(t))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.FindMatches(ctx, []float64{50, 50, 50, 50, 50, 50}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindMatches_Concurrent(t *testing.T) {
	ds := loadHeroes(t)
	svc, err := New(ds, WithCacheSize(8))
	require.NoError(t, err)
	want, err := svc.FindMatches(context.Background(), ds.At(3).Vector(), 5)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			query := ds.At(3).Vector()
			if g%2 == 1 {
				query = ds.At(g % ds.Len()).Vector()
			}
			got, err := svc.FindMatches(context.Background(), query, 5)
			if err != nil {
				errs <- err
				return
			}
			if g%2 == 0 {
				assert.Equal(t, want, got)
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent query failed: %v", err)
	}
}

func TestNew_DegenerateColumn(t *testing.T) {
	entities := []dataset.Entity{
		{Name: "A", Attributes: [dataset.Dims]float64{50, 10, 20, 30, 40, 50}},
		{Name: "B", Attributes: [dataset.Dims]float64{50, 90, 80, 70, 60, 50}},
		{Name: "C", Attributes: [dataset.Dims]float64{50, 40, 40, 40, 40, 50}},
	}
	ds, err := dataset.New(entities)
	require.NoError(t, err)

	_, err = New(ds, WithScaler(scaler.Standard, scaler.PolicyFail))
	assert.ErrorIs(t, err, scaler.ErrDegenerateColumn)

	svc, err := New(ds)
	require.NoError(t, err)
	st := svc.Stats()
	assert.Equal(t, []string{"intelligence", "combat"}, st.Degenerate)
	assert.Equal(t, 1.0, st.Spread["intelligence"])

	got, err := svc.FindMatches(context.Background(), entities[1].Vector(), 1)
	require.NoError(t, err)
	assert.Equal(t, "B", got[0].Entity.Name)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, index.ErrEmpty)

	_, err = New(loadHeroes(t), WithIndexKind("annoy"))
	assert.Error(t, err)
}

func TestWithModel(t *testing.T) {
	ds := loadHeroes(t)
	built, err := New(ds)
	require.NoError(t, err)

	adopted, err := New(ds, WithModel(built.Params(), built.Index()))
	require.NoError(t, err)
	query := []float64{70, 30, 40, 50, 60, 80}
	want, err := built.FindMatches(context.Background(), query, 5)
	require.NoError(t, err)
	got, err := adopted.FindMatches(context.Background(), query, 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = New(ds, WithModel(built.Params(), nil))
	assert.Error(t, err)

	other, err := New(randomDataset(t, ds.Len(), 1))
	require.NoError(t, err)
	_, err = New(ds, WithModel(built.Params(), other.Index()))
	assert.Error(t, err)
}

func TestRandom(t *testing.T) {
	ds := loadHeroes(t)
	svc, err := New(ds)
	require.NoError(t, err)

	a := svc.Random(5, 42)
	b := svc.Random(5, 42)
	assert.Equal(t, a, b)
	assert.Len(t, a, 5)
	names := map[string]bool{}
	for _, e := range a {
		assert.False(t, names[e.Name])
		names[e.Name] = true
	}
	assert.Len(t, svc.Random(100, 1), ds.Len())
	assert.Empty(t, svc.Random(0, 1))
}

func TestParseIndexKind(t *testing.T) {
	for in, want := range map[string]index.Kind{"": index.KindAuto, "auto": index.KindAuto, "brute": index.KindBrute, "cover": index.KindCover} {
		got, err := ParseIndexKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseIndexKind("hnsw")
	assert.Error(t, err)
}
