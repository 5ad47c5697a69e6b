package kmer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/seqdist/internal/cache"
	"github.com/hupe1980/seqdist/internal/resource"
)

// BuildInfo describes one completed table build.
type BuildInfo struct {
	SeqLen   int
	Distinct int
	Bytes    int64
	Duration time.Duration
}

type indexOptions struct {
	rc      *resource.Controller
	logger  *slog.Logger
	onBuild func(BuildInfo)
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

// WithController accounts table memory and bounds Prepopulate parallelism.
func WithController(rc *resource.Controller) IndexOption {
	return func(o *indexOptions) {
		o.rc = rc
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) IndexOption {
	return func(o *indexOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBuildHook registers a callback invoked after every table build.
func WithBuildHook(fn func(BuildInfo)) IndexOption {
	return func(o *indexOptions) {
		o.onBuild = fn
	}
}

// Index is a process-wide, grow-only cache of frequency tables keyed by the
// raw sequence string. Records with identical sequences share one table.
type Index struct {
	codec Codec
	memo  *cache.ShardedMemo[*Table]
	opts  indexOptions
}

// NewIndex returns an empty index for k-mers of length k.
func NewIndex(k int, optFns ...IndexOption) (*Index, error) {
	c, err := NewCodec(k)
	if err != nil {
		return nil, err
	}

	opts := indexOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Index{
		codec: c,
		memo:  cache.NewShardedMemo[*Table](),
		opts:  opts,
	}, nil
}

// K returns the k-mer length.
func (ix *Index) K() int { return ix.codec.k }

// Len returns the number of cached tables.
func (ix *Index) Len() int { return ix.memo.Len() }

// Stats returns cache hit and miss counts.
func (ix *Index) Stats() (hits, misses int64) { return ix.memo.Stats() }

// Get returns the table for seq, building it on first use.
func (ix *Index) Get(seq string) (*Table, error) {
	t, _, err := ix.memo.GetOrCompute(seq, func() (*Table, error) {
		return ix.build(seq)
	})
	return t, err
}

func (ix *Index) build(seq string) (*Table, error) {
	start := time.Now()

	t, err := Build(ix.codec, seq)
	if err != nil {
		return nil, err
	}

	size := t.SizeBytes()
	if err := ix.opts.rc.AcquireMemory(size); err != nil {
		return nil, fmt.Errorf("k-mer table for %d bases (%d bytes): %w", len(seq), size, err)
	}

	info := BuildInfo{
		SeqLen:   len(seq),
		Distinct: t.Len(),
		Bytes:    size,
		Duration: time.Since(start),
	}
	ix.opts.logger.Debug("k-mer table built",
		"k", ix.codec.k,
		"seq_len", info.SeqLen,
		"distinct", info.Distinct,
		"bytes", info.Bytes,
	)
	if ix.opts.onBuild != nil {
		ix.opts.onBuild(info)
	}

	return t, nil
}

// Prepopulate builds the tables of all distinct sequences before any
// comparison runs. Parallelism is bounded by the controller's builder slots.
func (ix *Index) Prepopulate(ctx context.Context, seqs []string) error {
	seen := make(map[string]struct{}, len(seqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.rc.MaxBuilders())

	for _, seq := range seqs {
		if _, ok := seen[seq]; ok {
			continue
		}
		seen[seq] = struct{}{}

		if err := gctx.Err(); err != nil {
			break
		}

		g.Go(func() error {
			if err := ix.opts.rc.AcquireBuilder(gctx); err != nil {
				return err
			}
			defer ix.opts.rc.ReleaseBuilder()

			_, err := ix.Get(seq)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
