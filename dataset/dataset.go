package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Entity is a named hero with its six attributes in column order.
type Entity struct {
	Name       string        `json:"name"`
	Attributes [Dims]float64 `json:"attributes"`
}

// Vector returns the attributes as a fresh slice.
func (e Entity) Vector() []float64 {
	out := make([]float64, Dims)
	copy(out, e.Attributes[:])
	return out
}

// Get returns the value of a single attribute.
func (e Entity) Get(a Attribute) float64 { return e.Attributes[a] }

// Dataset is an ordered, read-only collection of entities.
type Dataset struct {
	entities    []Entity
	fingerprint uint64
}

// Option configures dataset validation.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrictRange toggles enforcement of the [0,100] attribute range.
// Range checks are on by default.
func WithStrictRange(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

func newOptions(opts []Option) *options {
	o := &options{strict: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New validates entities and returns a dataset owning a private copy of them.
func New(entities []Entity, opts ...Option) (*Dataset, error) {
	o := newOptions(opts)
	if len(entities) == 0 {
		return nil, &LoadError{Err: errors.New("no entities")}
	}
	for i, e := range entities {
		if strings.TrimSpace(e.Name) == "" {
			return nil, &LoadError{Record: i + 1, Field: "name", Err: errors.New("empty name")}
		}
		for j, v := range e.Attributes {
			if err := checkValue(v, o.strict); err != nil {
				return nil, &LoadError{Record: i + 1, Field: Attribute(j).String(), Err: err}
			}
		}
	}
	ds := &Dataset{entities: append([]Entity(nil), entities...)}
	ds.fingerprint = fingerprint(ds.entities)
	return ds, nil
}

func checkValue(v float64, strict bool) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("non-finite value %v", v)
	}
	if strict && (v < MinValue || v > MaxValue) {
		return fmt.Errorf("value %v outside [%v, %v]", v, MinValue, MaxValue)
	}
	return nil
}

// Len returns the number of entities.
func (d *Dataset) Len() int { return len(d.entities) }

// At returns the entity at position i. It panics when i is out of range,
// like a slice index.
func (d *Dataset) At(i int) Entity { return d.entities[i] }

// Entities returns a copy of all entities in position order.
func (d *Dataset) Entities() []Entity { return append([]Entity(nil), d.entities...) }

// Column returns the values of a single attribute in position order.
func (d *Dataset) Column(a Attribute) []float64 {
	out := make([]float64, len(d.entities))
	for i, e := range d.entities {
		out[i] = e.Attributes[a]
	}
	return out
}

// Columns returns all attribute columns, column-major.
func (d *Dataset) Columns() [][]float64 {
	out := make([][]float64, Dims)
	for _, a := range Attributes() {
		out[a] = d.Column(a)
	}
	return out
}

// Sample returns up to n distinct entities chosen with rng, in the order drawn.
func (d *Dataset) Sample(n int, rng *rand.Rand) []Entity {
	if n <= 0 {
		return nil
	}
	if n > len(d.entities) {
		n = len(d.entities)
	}
	perm := rng.Perm(len(d.entities))
	out := make([]Entity, n)
	for i := 0; i < n; i++ {
		out[i] = d.entities[perm[i]]
	}
	return out
}

// Fingerprint identifies the dataset contents, names and attribute bits in
// position order. Persisted models record it to detect stale data.
func (d *Dataset) Fingerprint() uint64 { return d.fingerprint }

func fingerprint(entities []Entity) uint64 {
	h := xxhash.New()
	buf := make([]byte, 8)
	for _, e := range entities {
		_, _ = h.WriteString(e.Name)
		_, _ = h.Write([]byte{0})
		for _, v := range e.Attributes {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			_, _ = h.Write(buf)
		}
	}
	return h.Sum64()
}
