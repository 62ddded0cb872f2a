package match

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/scaler"
)

// DefaultCacheSize is the number of distinct (query, k) results kept.
const DefaultCacheSize = 1024

// Option configures a Service.
type Option func(*options)

type options struct {
	scalerKind scaler.Kind
	policy     scaler.DegeneratePolicy
	indexKind  index.Kind
	params     *scaler.Params
	idx        index.Index
	strict     bool
	cacheSize  int
	maxK       int
	logger     logrus.FieldLogger
}

func newOptions(opts []Option) *options {
	o := &options{
		scalerKind: scaler.Standard,
		policy:     scaler.PolicyIdentity,
		indexKind:  index.KindAuto,
		cacheSize:  DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.logger = l
	}
	return o
}

// WithScaler selects the scaler kind and the handling of degenerate columns.
func WithScaler(kind scaler.Kind, policy scaler.DegeneratePolicy) Option {
	return func(o *options) {
		o.scalerKind = kind
		o.policy = policy
	}
}

// WithIndexKind selects the index implementation; KindAuto picks by size.
func WithIndexKind(kind index.Kind) Option {
	return func(o *options) { o.indexKind = kind }
}

// WithModel adopts prebuilt scaler parameters and an index instead of
// fitting. New verifies both against the dataset.
func WithModel(params *scaler.Params, idx index.Index) Option {
	return func(o *options) {
		o.params = params
		o.idx = idx
	}
}

// WithStrictRange rejects query values outside [0,100].
func WithStrictRange(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithCacheSize sets the result cache capacity; 0 disables caching.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithMaxK rejects requests with k above n with *index.InvalidKError. 0
// means no cap.
func WithMaxK(n int) Option {
	return func(o *options) { o.maxK = n }
}

// WithLogger sets the logger used for build and cache events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}
