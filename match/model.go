package match

import (
	"errors"
	"fmt"

	"github.com/viant/heromatch/dataset"
	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/scaler"
	"github.com/viant/heromatch/store"
)

// DefaultModelName is the model_storage key used by the CLI.
const DefaultModelName = "default"

// ErrStaleModel reports a stored model fitted on different data.
var ErrStaleModel = errors.New("match: stored model does not match dataset")

// Model encodes the fitted scaler and index for persistence.
func (s *Service) Model(name string) (store.Model, error) {
	params, err := s.params.MarshalBinary()
	if err != nil {
		return store.Model{}, err
	}
	idx, err := s.idx.MarshalBinary()
	if err != nil {
		return store.Model{}, err
	}
	return store.Model{
		Name:        name,
		Fingerprint: s.ds.Fingerprint(),
		Scaler:      params,
		Index:       idx,
		IndexKind:   s.kind,
	}, nil
}

// FromModel rebuilds a Service from a stored model without refitting.
func FromModel(ds *dataset.Dataset, m *store.Model, opts ...Option) (*Service, error) {
	if m.Fingerprint != ds.Fingerprint() {
		return nil, fmt.Errorf("%w: model %s fingerprint %016x, dataset %016x", ErrStaleModel, m.Name, m.Fingerprint, ds.Fingerprint())
	}
	params := &scaler.Params{}
	if err := params.UnmarshalBinary(m.Scaler); err != nil {
		return nil, fmt.Errorf("match: model %s scaler: %w", m.Name, err)
	}
	kind := m.IndexKind
	if kind == "" || kind == index.KindAuto {
		kind = index.KindBrute
	}
	idx, _, err := NewIndex(kind, ds.Len())
	if err != nil {
		return nil, err
	}
	if err := idx.UnmarshalBinary(m.Index); err != nil {
		return nil, fmt.Errorf("match: model %s index: %w", m.Name, err)
	}
	return New(ds, append(opts, WithModel(params, idx))...)
}
