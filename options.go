package seqdist

import (
	"io"
	"os"
	"time"

	"github.com/hupe1980/seqdist/internal/fs"
	"github.com/hupe1980/seqdist/sequence"
)

// DefaultProgressInterval is the minimum time between progress log lines.
const DefaultProgressInterval = 5 * time.Second

type options struct {
	logger           *Logger
	fs               fs.FileSystem
	loader           sequence.Loader
	output           io.Writer
	observer         MetricsObserver
	memoryLimit      int64
	maxBuilders      int
	progressInterval time.Duration
}

// Option configures Run.
type Option func(*options)

func newOptions(optFns ...Option) options {
	o := options{
		logger:           NoopLogger(),
		fs:               fs.Default,
		loader:           sequence.Load,
		output:           os.Stdout,
		observer:         NoopMetricsObserver{},
		progressInterval: DefaultProgressInterval,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithFileSystem sets the file system used for checkpoints.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithLoader replaces the FASTA loader.
func WithLoader(l sequence.Loader) Option {
	return func(o *options) {
		if l != nil {
			o.loader = l
		}
	}
}

// WithOutput sets where the matrix is printed when PrintResult is set.
// Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithObserver registers a metrics observer.
func WithObserver(obs MetricsObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithMemoryLimit caps the memory held by k-mer frequency tables.
// 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithCacheBuilders sets how many k-mer tables are built concurrently before
// the workers start. Default: the number of workers.
func WithCacheBuilders(n int) Option {
	return func(o *options) {
		o.maxBuilders = n
	}
}

// WithProgressInterval sets the minimum time between progress log lines.
// 0 logs every row.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}
