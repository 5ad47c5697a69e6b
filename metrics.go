package seqdist

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/seqdist/internal/resource"
	"github.com/hupe1980/seqdist/kmer"
)

// MetricsObserver receives run events. Implement it to integrate with
// monitoring systems like Prometheus or to drive a progress display.
// Methods are called concurrently from worker goroutines.
type MetricsObserver interface {
	// OnStart is called once before the workers start. skipped rows were
	// completed by an earlier run.
	OnStart(total, skipped int)

	// OnRow is called after a row is stored and checkpointed.
	OnRow(worker, row, cells int, duration time.Duration)

	// OnWorkerDone is called once per worker. err is nil if the worker
	// finished all of its rows.
	OnWorkerDone(worker, rows int, duration time.Duration, err error)

	// OnCacheBuild is called after a k-mer frequency table is built.
	OnCacheBuild(seqLen, distinct int, bytes int64, duration time.Duration)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnStart(int, int)                            {}
func (NoopMetricsObserver) OnRow(int, int, int, time.Duration)          {}
func (NoopMetricsObserver) OnWorkerDone(int, int, time.Duration, error) {}
func (NoopMetricsObserver) OnCacheBuild(int, int, int64, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Skipped       atomic.Int64
	Rows          atomic.Int64
	Cells         atomic.Int64
	RowTotalNanos atomic.Int64
	WorkersDone   atomic.Int64
	WorkerErrors  atomic.Int64
	CacheBuilds   atomic.Int64
	CacheBytes    atomic.Int64
}

// OnStart implements MetricsObserver.
func (b *BasicMetricsCollector) OnStart(_, skipped int) {
	b.Skipped.Store(int64(skipped))
}

// OnRow implements MetricsObserver.
func (b *BasicMetricsCollector) OnRow(_, _, cells int, duration time.Duration) {
	b.Rows.Add(1)
	b.Cells.Add(int64(cells))
	b.RowTotalNanos.Add(duration.Nanoseconds())
}

// OnWorkerDone implements MetricsObserver.
func (b *BasicMetricsCollector) OnWorkerDone(_, _ int, _ time.Duration, err error) {
	b.WorkersDone.Add(1)
	if err != nil {
		b.WorkerErrors.Add(1)
	}
}

// OnCacheBuild implements MetricsObserver.
func (b *BasicMetricsCollector) OnCacheBuild(_, _ int, bytes int64, _ time.Duration) {
	b.CacheBuilds.Add(1)
	b.CacheBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		Skipped:      b.Skipped.Load(),
		Rows:         b.Rows.Load(),
		Cells:        b.Cells.Load(),
		WorkersDone:  b.WorkersDone.Load(),
		WorkerErrors: b.WorkerErrors.Load(),
		CacheBuilds:  b.CacheBuilds.Load(),
		CacheBytes:   b.CacheBytes.Load(),
	}
	if s.Rows > 0 {
		s.RowAvgNanos = b.RowTotalNanos.Load() / s.Rows
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Skipped      int64
	Rows         int64
	Cells        int64
	RowAvgNanos  int64
	WorkersDone  int64
	WorkerErrors int64
	CacheBuilds  int64
	CacheBytes   int64
}

// runObserver forwards scheduler events to the user observer and emits
// rate-limited progress logs.
type runObserver struct {
	ctx    context.Context
	next   MetricsObserver
	logger *Logger
	rc     *resource.Controller

	total   int
	done    atomic.Int64
	started time.Time
}

func newRunObserver(ctx context.Context, next MetricsObserver, logger *Logger, rc *resource.Controller) *runObserver {
	return &runObserver{
		ctx:    ctx,
		next:   next,
		logger: logger,
		rc:     rc,
	}
}

// start resets the row counter before the scheduler runs.
func (o *runObserver) start(total, skipped int) {
	o.total = total
	o.done.Store(int64(skipped))
	o.started = time.Now()
	o.next.OnStart(total, skipped)
}

func (o *runObserver) OnRow(worker, row, cells int, d time.Duration) {
	o.next.OnRow(worker, row, cells, d)
	done := o.done.Add(1)
	if int(done) == o.total || o.rc.AllowReport() {
		o.logger.LogProgress(o.ctx, int(done), o.total, time.Since(o.started))
	}
}

func (o *runObserver) OnWorkerDone(worker, rows int, d time.Duration, err error) {
	o.next.OnWorkerDone(worker, rows, d, err)
	o.logger.LogWorkerDone(o.ctx, worker, rows, d, err)
}

func (o *runObserver) onBuild(info kmer.BuildInfo) {
	o.next.OnCacheBuild(info.SeqLen, info.Distinct, info.Bytes, info.Duration)
}
