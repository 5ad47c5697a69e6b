package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hupe1980/seqdist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// observers fans run events out to several observers.
type observers []seqdist.MetricsObserver

func (o observers) OnStart(total, skipped int) {
	for _, obs := range o {
		obs.OnStart(total, skipped)
	}
}

func (o observers) OnRow(worker, row, cells int, d time.Duration) {
	for _, obs := range o {
		obs.OnRow(worker, row, cells, d)
	}
}

func (o observers) OnWorkerDone(worker, rows int, d time.Duration, err error) {
	for _, obs := range o {
		obs.OnWorkerDone(worker, rows, d, err)
	}
}

func (o observers) OnCacheBuild(seqLen, distinct int, bytes int64, d time.Duration) {
	for _, obs := range o {
		obs.OnCacheBuild(seqLen, distinct, bytes, d)
	}
}

// progressBar renders row progress with an ETA.
type progressBar struct {
	seqdist.NoopMetricsObserver

	p   *mpb.Progress
	mu  sync.Mutex
	bar *mpb.Bar
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		p: mpb.New(mpb.WithWidth(40), mpb.WithOutput(w)),
	}
}

func (b *progressBar) OnStart(total, skipped int) {
	bar := b.p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("computed rows: ", decor.WC{W: len("computed rows: "), C: decor.DindentRight}),
			decor.Name("", decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)
	bar.SetCurrent(int64(skipped))

	b.mu.Lock()
	b.bar = bar
	b.mu.Unlock()
}

func (b *progressBar) OnRow(_, _, _ int, d time.Duration) {
	b.mu.Lock()
	bar := b.bar
	b.mu.Unlock()
	if bar != nil {
		bar.EwmaIncrBy(1, d)
	}
}

// Wait stops rendering. An unfinished bar is aborted in place.
func (b *progressBar) Wait() {
	b.mu.Lock()
	bar := b.bar
	b.mu.Unlock()
	if bar != nil && !bar.Completed() {
		bar.Abort(false)
	}
	b.p.Wait()
}

// promObserver exports run events as Prometheus metrics.
type promObserver struct {
	rowsTotal    prometheus.Gauge
	rowsSkipped  prometheus.Gauge
	rows         prometheus.Counter
	cells        prometheus.Counter
	rowLatency   prometheus.Histogram
	workers      *prometheus.CounterVec
	cacheBuilds  prometheus.Counter
	cacheBytes   prometheus.Counter
	buildLatency prometheus.Histogram
}

func newPromObserver(reg prometheus.Registerer) *promObserver {
	o := &promObserver{
		rowsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seqdist_rows",
			Help: "Number of matrix rows in the run",
		}),
		rowsSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seqdist_rows_restored",
			Help: "Rows completed by an earlier run",
		}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seqdist_rows_completed_total",
			Help: "Rows computed and checkpointed",
		}),
		cells: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seqdist_cells_completed_total",
			Help: "Matrix cells computed",
		}),
		rowLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seqdist_row_duration_seconds",
			Help:    "Time to compute and checkpoint one row",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		workers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seqdist_workers_finished_total",
			Help: "Workers that exited",
		}, []string{"status"}),
		cacheBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seqdist_kmer_tables_built_total",
			Help: "k-mer frequency tables built",
		}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seqdist_kmer_table_bytes_total",
			Help: "Estimated bytes of built k-mer tables",
		}),
		buildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seqdist_kmer_table_build_seconds",
			Help:    "Time to build one k-mer table",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		o.rowsTotal,
		o.rowsSkipped,
		o.rows,
		o.cells,
		o.rowLatency,
		o.workers,
		o.cacheBuilds,
		o.cacheBytes,
		o.buildLatency,
	)
	return o
}

func (o *promObserver) OnStart(total, skipped int) {
	o.rowsTotal.Set(float64(total))
	o.rowsSkipped.Set(float64(skipped))
}

func (o *promObserver) OnRow(_, _, cells int, d time.Duration) {
	o.rows.Inc()
	o.cells.Add(float64(cells))
	o.rowLatency.Observe(d.Seconds())
}

func (o *promObserver) OnWorkerDone(_, _ int, _ time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	o.workers.WithLabelValues(status).Inc()
}

func (o *promObserver) OnCacheBuild(_, _ int, bytes int64, d time.Duration) {
	o.cacheBuilds.Inc()
	o.cacheBytes.Add(float64(bytes))
	o.buildLatency.Observe(d.Seconds())
}

// serveMetrics exposes reg on addr under /metrics until shutdown is called.
// It returns the bound address.
func serveMetrics(addr string, reg *prometheus.Registry, logger *seqdist.Logger) (bound string, shutdown func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	bound = ln.Addr().String()
	logger.Info("serving metrics", "addr", bound)

	return bound, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
