package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/seqdist/sequence"
)

var (
	// ErrSizeMismatch is returned when the matrix and sequence counts differ.
	ErrSizeMismatch = errors.New("matrix size does not match sequence count")

	// ErrInvalidThreads is returned for a non-positive worker count.
	ErrInvalidThreads = errors.New("thread count must be positive")
)

// Comparer computes the distance between two records.
type Comparer interface {
	Compare(a, b sequence.Record) (float64, error)
}

// Store is the matrix the workers fill.
type Store interface {
	N() int
	Set(i, j int, v float64) error
	ClearRow(i int) error
}

// Checkpointer persists and restores per-worker progress.
type Checkpointer interface {
	WriteWorker(row, worker int) error
	ResumeRow(worker, nthreads int) (int, error)
}

// CellError wraps a failure at one matrix cell.
type CellError struct {
	Worker int
	Row    int
	Col    int
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("worker %d cell (%d, %d): %v", e.Worker, e.Row, e.Col, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

type options struct {
	threads  int
	restart  bool
	observer MetricsObserver
	logger   *slog.Logger
}

// Option configures a Scheduler.
type Option func(*options)

// WithThreads sets the number of workers.
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// WithRestart resumes every worker from its checkpoint instead of row zero.
func WithRestart(restart bool) Option {
	return func(o *options) {
		o.restart = restart
	}
}

// WithObserver sets the metrics observer.
func WithObserver(obs MetricsObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Stats summarizes one Run.
type Stats struct {
	// Rows is the number of rows computed by this run.
	Rows int
	// Cells is the number of Compare calls made by this run.
	Cells int64
	// Skipped is the number of rows already complete before this run.
	Skipped int
	Elapsed time.Duration
}

// Scheduler fills a Store with all pairwise distances of a sequence set.
type Scheduler struct {
	store Store
	cmp   Comparer
	seqs  []sequence.Record
	cp    Checkpointer
	opts  options
}

// New returns a scheduler. It does not start any work.
func New(store Store, cmp Comparer, seqs []sequence.Record, cp Checkpointer, optFns ...Option) (*Scheduler, error) {
	opts := options{
		threads:  1,
		observer: NoopMetricsObserver{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.threads <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreads, opts.threads)
	}
	if store.N() != len(seqs) {
		return nil, fmt.Errorf("%w: matrix is %d×%d, have %d sequences", ErrSizeMismatch, store.N(), store.N(), len(seqs))
	}

	return &Scheduler{
		store: store,
		cmp:   cmp,
		seqs:  seqs,
		cp:    cp,
		opts:  opts,
	}, nil
}

// StartRow returns the first row worker computes in this run.
func (s *Scheduler) StartRow(worker int) (int, error) {
	if !s.opts.restart {
		return worker, nil
	}
	return s.cp.ResumeRow(worker, s.opts.threads)
}

// Run computes every outstanding row. The first error cancels the other
// workers. If ctx is canceled, Run returns its error once every worker has
// finished the row it was on.
func (s *Scheduler) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	n := len(s.seqs)
	nthreads := s.opts.threads

	starts := make([]int, nthreads)
	var stats Stats
	for w := range starts {
		row, err := s.StartRow(w)
		if err != nil {
			return stats, err
		}
		starts[w] = row
		stats.Skipped += countRows(w, min(row, n), nthreads)
	}

	s.opts.logger.Info("scheduler starting",
		"sequences", n,
		"threads", nthreads,
		"restart", s.opts.restart,
		"rows_done", stats.Skipped,
	)

	var rows, cells atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < nthreads; w++ {
		g.Go(func() error {
			wstart := time.Now()
			done, err := s.work(gctx, w, starts[w], &cells)
			rows.Add(int64(done))
			s.opts.observer.OnWorkerDone(w, done, time.Since(wstart), err)
			return err
		})
	}
	err := g.Wait()

	stats.Rows = int(rows.Load())
	stats.Cells = cells.Load()
	stats.Elapsed = time.Since(start)

	return stats, err
}

func (s *Scheduler) work(ctx context.Context, worker, start int, cells *atomic.Int64) (int, error) {
	n := len(s.seqs)
	nthreads := s.opts.threads
	done := 0

	for row := start; row < n; row += nthreads {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		rowStart := time.Now()
		if s.opts.restart {
			if err := s.store.ClearRow(row); err != nil {
				return done, &CellError{Worker: worker, Row: row, Col: row, Err: err}
			}
		}

		a := s.seqs[row]
		for col := row; col < n; col++ {
			d, err := s.cmp.Compare(a, s.seqs[col])
			if err != nil {
				return done, &CellError{Worker: worker, Row: row, Col: col, Err: err}
			}
			cells.Add(1)
			if err := s.store.Set(row, col, d); err != nil {
				return done, &CellError{Worker: worker, Row: row, Col: col, Err: err}
			}
		}

		if err := s.cp.WriteWorker(row, worker); err != nil {
			return done, err
		}
		done++
		s.opts.observer.OnRow(worker, row, n-row, time.Since(rowStart))
	}

	s.opts.logger.Debug("worker finished", "worker", worker, "rows", done)
	return done, nil
}

// countRows returns how many rows owned by worker lie below limit.
func countRows(worker, limit, nthreads int) int {
	if limit <= worker {
		return 0
	}
	return (limit-worker-1)/nthreads + 1
}
