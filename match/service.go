package match

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/viant/heromatch/dataset"
	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/index/bruteforce"
	"github.com/viant/heromatch/index/cover"
	"github.com/viant/heromatch/metrics"
	"github.com/viant/heromatch/scaler"
	"github.com/viant/heromatch/score"
)

// modelTolerance bounds the distance between a stored index vector and the
// freshly scaled entity when adopting a model.
const modelTolerance = 1e-4

// Match is one ranked result.
type Match struct {
	Position int            `json:"position"`
	Entity   dataset.Entity `json:"entity"`
	Distance float64        `json:"distance"`
	Score    float64        `json:"score"`
}

type cacheKey struct {
	bits [dataset.Dims]uint64
	k    int
}

// Service ranks dataset entities by similarity to a query profile.
type Service struct {
	ds      *dataset.Dataset
	params  *scaler.Params
	idx     index.Index
	kind    index.Kind
	strict  bool
	maxK    int
	cache   *lru.Cache[cacheKey, []Match]
	logger  logrus.FieldLogger
	builtAt time.Time
}

// NewIndex returns an empty index for kind, resolving KindAuto against n.
func NewIndex(kind index.Kind, n int) (index.Index, index.Kind, error) {
	kind, err := ParseIndexKind(string(kind))
	if err != nil {
		return nil, "", err
	}
	switch resolved := kind.Resolve(n); resolved {
	case index.KindBrute:
		return &bruteforce.Index{}, resolved, nil
	case index.KindCover:
		return cover.New(), resolved, nil
	default:
		return nil, "", fmt.Errorf("match: unsupported index kind %q", kind)
	}
}

// ParseIndexKind validates an index kind name.
func ParseIndexKind(s string) (index.Kind, error) {
	switch k := index.Kind(s); k {
	case index.KindAuto, index.KindBrute, index.KindCover:
		return k, nil
	case "":
		return index.KindAuto, nil
	}
	return "", fmt.Errorf("match: unknown index kind %q", s)
}

// New fits the scaler, scales the dataset and builds the index, or adopts a
// model supplied with WithModel after checking it fits ds.
func New(ds *dataset.Dataset, opts ...Option) (*Service, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("match: %w", index.ErrEmpty)
	}
	o := newOptions(opts)
	start := time.Now()
	s := &Service{ds: ds, strict: o.strict, maxK: o.maxK, logger: o.logger}

	var err error
	if o.params != nil || o.idx != nil {
		err = s.adopt(o)
	} else {
		err = s.build(o)
	}
	if err != nil {
		return nil, err
	}
	if o.cacheSize > 0 {
		if s.cache, err = lru.New[cacheKey, []Match](o.cacheSize); err != nil {
			return nil, fmt.Errorf("match: cache: %w", err)
		}
	}
	s.builtAt = time.Now()
	metrics.Default().SetDatasetSize(ds.Len())
	s.logger.WithFields(logrus.Fields{
		"entities": ds.Len(),
		"index":    s.kind,
		"scaler":   s.params.Kind,
		"elapsed":  time.Since(start),
	}).Info("match service ready")
	return s, nil
}

func (s *Service) build(o *options) error {
	params, err := scaler.FitDataset(s.ds, o.scalerKind, o.policy)
	if err != nil {
		return err
	}
	for _, col := range params.Degenerate {
		s.logger.WithField("attribute", dataset.Attribute(col).String()).Warn("degenerate column, spread set to 1")
	}
	rows, err := params.TransformDataset(s.ds)
	if err != nil {
		return err
	}
	idx, kind, err := NewIndex(o.indexKind, len(rows))
	if err != nil {
		return err
	}
	if err := idx.Build(rows); err != nil {
		return fmt.Errorf("match: build %s index: %w", kind, err)
	}
	s.params, s.idx, s.kind = params, idx, kind
	return nil
}

// adopt checks that every entity, scaled with the supplied params, is
// present in the supplied index.
func (s *Service) adopt(o *options) error {
	if o.params == nil || o.idx == nil {
		return fmt.Errorf("match: model needs both scaler params and index")
	}
	if o.params.Dim() != dataset.Dims {
		return fmt.Errorf("match: model scaler dim %d != %d", o.params.Dim(), dataset.Dims)
	}
	if o.idx.Len() != s.ds.Len() {
		return fmt.Errorf("match: model index holds %d vectors, dataset has %d", o.idx.Len(), s.ds.Len())
	}
	for i := 0; i < s.ds.Len(); i++ {
		scaled, err := o.params.Transform(s.ds.At(i).Vector())
		if err != nil {
			return err
		}
		nearest, err := o.idx.Query(scaled, 1)
		if err != nil {
			return err
		}
		if len(nearest) == 0 || nearest[0].Distance > modelTolerance {
			return fmt.Errorf("match: model does not contain entity %d (%s)", i, s.ds.At(i).Name)
		}
	}
	s.params, s.idx = o.params, o.idx
	s.kind = indexKindOf(o.idx)
	return nil
}

func indexKindOf(idx index.Index) index.Kind {
	switch idx.(type) {
	case *bruteforce.Index:
		return index.KindBrute
	case *cover.Index:
		return index.KindCover
	}
	return index.Kind(fmt.Sprintf("%T", idx))
}

// FindMatches returns the min(k, Len()) entities closest to query, nearest
// first, ties in dataset order.
func (s *Service) FindMatches(ctx context.Context, query []float64, k int) (matches []Match, err error) {
	done := metrics.TimeQuery("find_matches")
	defer func() { done(err == nil) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if err = s.validate(query); err != nil {
		return nil, err
	}
	if err = index.ValidateK(k); err != nil {
		return nil, err
	}
	if s.maxK > 0 && k > s.maxK {
		return nil, &index.InvalidKError{K: k, Max: s.maxK}
	}

	key := cacheKey{k: k}
	for i, v := range query {
		key.bits[i] = math.Float64bits(v)
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			metrics.Default().IncCache(true)
			return copyMatches(cached), nil
		}
		metrics.Default().IncCache(false)
	}

	scaled, err := s.params.Transform(query)
	if err != nil {
		return nil, err
	}
	neighbors, err := s.idx.Query(scaled, k)
	if err != nil {
		return nil, err
	}
	matches = make([]Match, len(neighbors))
	for i, n := range neighbors {
		matches[i] = Match{
			Position: n.Position,
			Entity:   s.ds.At(n.Position),
			Distance: n.Distance,
			Score:    score.Score(n.Distance),
		}
	}
	if s.cache != nil {
		s.cache.Add(key, copyMatches(matches))
		s.logger.WithFields(logrus.Fields{"k": k, "results": len(matches)}).Debug("cache miss")
	}
	return matches, nil
}

func (s *Service) validate(query []float64) error {
	if len(query) != dataset.Dims {
		return &InvalidQueryError{Attribute: -1, Reason: fmt.Sprintf("expected %d values, got %d", dataset.Dims, len(query))}
	}
	for i, v := range query {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidQueryError{Attribute: i, Reason: fmt.Sprintf("non-finite value %v", v)}
		}
		if s.strict && (v < dataset.MinValue || v > dataset.MaxValue) {
			return &InvalidQueryError{Attribute: i, Reason: fmt.Sprintf("value %v outside [%v, %v]", v, dataset.MinValue, dataset.MaxValue)}
		}
	}
	return nil
}

func copyMatches(in []Match) []Match {
	return append([]Match(nil), in...)
}

// Random returns up to n distinct entities drawn with seed.
func (s *Service) Random(n int, seed int64) []dataset.Entity {
	return s.ds.Sample(n, rand.New(rand.NewSource(seed)))
}

// Dataset returns the reference dataset.
func (s *Service) Dataset() *dataset.Dataset { return s.ds }

// Params returns a copy of the fitted scaler parameters.
func (s *Service) Params() *scaler.Params { return s.params.Clone() }

// Index returns the built index.
func (s *Service) Index() index.Index { return s.idx }

// Stats describes a built service.
type Stats struct {
	Entities    int                `json:"entities"`
	Algorithm   index.Kind         `json:"algorithm"`
	Scaler      string             `json:"scaler"`
	Center      map[string]float64 `json:"center"`
	Spread      map[string]float64 `json:"spread"`
	Degenerate  []string           `json:"degenerate,omitempty"`
	Fingerprint string             `json:"fingerprint"`
	CacheSize   int                `json:"cacheSize"`
	BuiltAt     time.Time          `json:"builtAt"`
}

// Stats reports dataset size, index algorithm and scaler parameters.
func (s *Service) Stats() Stats {
	st := Stats{
		Entities:    s.ds.Len(),
		Algorithm:   s.kind,
		Scaler:      s.params.Kind.String(),
		Center:      make(map[string]float64, dataset.Dims),
		Spread:      make(map[string]float64, dataset.Dims),
		Fingerprint: fmt.Sprintf("%016x", s.ds.Fingerprint()),
		BuiltAt:     s.builtAt,
	}
	for _, a := range dataset.Attributes() {
		st.Center[a.String()] = s.params.Center[a]
		st.Spread[a.String()] = s.params.Spread[a]
	}
	for _, col := range s.params.Degenerate {
		st.Degenerate = append(st.Degenerate, dataset.Attribute(col).String())
	}
	if s.cache != nil {
		st.CacheSize = s.cache.Len()
	}
	return st
}
