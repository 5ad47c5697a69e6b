package main

import (
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/hupe1980/seqdist"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers_FanOut(t *testing.T) {
	a, b := &seqdist.BasicMetricsCollector{}, &seqdist.BasicMetricsCollector{}
	obs := observers{a, b}

	obs.OnStart(10, 4)
	obs.OnRow(0, 4, 6, time.Millisecond)
	obs.OnWorkerDone(0, 1, time.Second, nil)
	obs.OnCacheBuild(100, 30, 512, time.Millisecond)

	for _, c := range []*seqdist.BasicMetricsCollector{a, b} {
		s := c.GetStats()
		assert.Equal(t, int64(4), s.Skipped)
		assert.Equal(t, int64(1), s.Rows)
		assert.Equal(t, int64(6), s.Cells)
		assert.Equal(t, int64(1), s.WorkersDone)
		assert.Equal(t, int64(512), s.CacheBytes)
	}
}

func TestPromObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := newPromObserver(reg)

	o.OnStart(5, 2)
	o.OnRow(0, 2, 3, 10*time.Millisecond)
	o.OnRow(1, 3, 2, 20*time.Millisecond)
	o.OnWorkerDone(0, 1, time.Second, nil)
	o.OnWorkerDone(1, 1, time.Second, errors.New("boom"))
	o.OnCacheBuild(50, 20, 1024, time.Millisecond)

	assert.Equal(t, 5.0, promtest.ToFloat64(o.rowsTotal))
	assert.Equal(t, 2.0, promtest.ToFloat64(o.rowsSkipped))
	assert.Equal(t, 2.0, promtest.ToFloat64(o.rows))
	assert.Equal(t, 5.0, promtest.ToFloat64(o.cells))
	assert.Equal(t, 1.0, promtest.ToFloat64(o.workers.WithLabelValues("success")))
	assert.Equal(t, 1.0, promtest.ToFloat64(o.workers.WithLabelValues("error")))
	assert.Equal(t, 1024.0, promtest.ToFloat64(o.cacheBytes))
}

func TestServeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := newPromObserver(reg)
	o.OnStart(7, 0)

	addr, shutdown, err := serveMetrics("127.0.0.1:0", reg, seqdist.NoopLogger())
	require.NoError(t, err)
	defer shutdown()

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "seqdist_rows 7")
}

func TestProgressBar(t *testing.T) {
	bar := newProgressBar(io.Discard)
	bar.OnStart(3, 1)
	bar.OnRow(0, 1, 2, time.Millisecond)
	bar.Wait()

	// Wait without a bar must not block.
	newProgressBar(io.Discard).Wait()
}
