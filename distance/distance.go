package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/hupe1980/seqdist/kmer"
	"github.com/hupe1980/seqdist/sequence"
)

var (
	// ErrUnknownMeasure is returned for a measure name other than edit or kmer.
	ErrUnknownMeasure = errors.New("unknown measure")

	// ErrUnknownSubMeasure is returned for a kmer variant other than cosine or euclidean.
	ErrUnknownSubMeasure = errors.New("unknown submeasure")

	// ErrInvalidMeasureOpt is returned when the measure option cannot be used.
	ErrInvalidMeasureOpt = errors.New("invalid measure option")

	// ErrEmptySequence is returned when a k-mer measure receives a zero-length sequence.
	ErrEmptySequence = errors.New("zero-length sequence")
)

// Metric identifies a measure.
type Metric int

const (
	MetricEdit Metric = iota
	MetricCosine
	MetricEuclidean
)

func (m Metric) String() string {
	switch m {
	case MetricEdit:
		return "edit"
	case MetricCosine:
		return "cosine"
	case MetricEuclidean:
		return "Euclidean"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Measure compares two sequence records.
// Implementations must be safe for concurrent use once prepared.
type Measure interface {
	// Compare returns a non-negative dissimilarity.
	Compare(a, b sequence.Record) (float64, error)
	// Describe returns a human-readable description of the configuration.
	Describe() string
	// Metric returns the metric kind.
	Metric() Metric
}

// Preparer is implemented by measures that precompute per-sequence state.
// Prepare must complete before concurrent Compare calls begin.
type Preparer interface {
	Prepare(ctx context.Context, recs []sequence.Record) error
}

// Config selects a measure by name, sub-name and option, mirroring the
// measure, submeasure and measureopt run options.
type Config struct {
	Name string
	Sub  string
	Opt  string
}

type options struct {
	logger    *slog.Logger
	indexOpts []kmer.IndexOption
}

// Option configures measure construction.
type Option func(*options)

// WithLogger sets the logger for construction warnings and cache builds.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIndexOptions passes options to the k-mer index of kmer measures.
func WithIndexOptions(opts ...kmer.IndexOption) Option {
	return func(o *options) {
		o.indexOpts = append(o.indexOpts, opts...)
	}
}

// New builds the measure described by cfg.
//
//	edit: Opt is an optional cost matrix path.
//	kmer: Sub is "cosine" (default) or "euclidean"; Opt is k (default 11).
func New(cfg Config, optFns ...Option) (Measure, error) {
	opts := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	switch cfg.Name {
	case "edit":
		if cfg.Opt == "" {
			return NewEdit(nil), nil
		}
		cm, err := LoadCostMatrix(cfg.Opt)
		if err != nil {
			return nil, err
		}
		for _, z := range cm.ZeroOffDiagonal() {
			opts.logger.Warn("cost matrix has zero substitution cost",
				"path", cfg.Opt,
				"from", string(z[0]),
				"to", string(z[1]),
			)
		}
		return NewEdit(cm), nil

	case "kmer":
		k := kmer.DefaultK
		if cfg.Opt != "" {
			v, err := strconv.Atoi(cfg.Opt)
			if err != nil {
				return nil, fmt.Errorf("%w: k %q is not an integer", ErrInvalidMeasureOpt, cfg.Opt)
			}
			k = v
		}

		idxOpts := append([]kmer.IndexOption{kmer.WithLogger(opts.logger)}, opts.indexOpts...)
		ix, err := kmer.NewIndex(k, idxOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidMeasureOpt, err)
		}

		switch cfg.Sub {
		case "", "cosine":
			return NewCosine(ix), nil
		case "euclidean":
			return NewEuclidean(ix), nil
		default:
			return nil, fmt.Errorf("%w %q: known submeasures are: cosine, euclidean", ErrUnknownSubMeasure, cfg.Sub)
		}

	default:
		return nil, fmt.Errorf("%w %q: known measures are: edit, kmer", ErrUnknownMeasure, cfg.Name)
	}
}
