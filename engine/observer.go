package engine

import "time"

// MetricsObserver receives scheduler events.
// Implementations must be safe for concurrent use by all workers.
type MetricsObserver interface {
	// OnRow is called after a row has been computed and checkpointed.
	OnRow(worker, row, cells int, duration time.Duration)

	// OnWorkerDone is called when a worker exits, with the rows it computed.
	OnWorkerDone(worker, rows int, duration time.Duration, err error)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnRow(worker, row, cells int, duration time.Duration)             {}
func (NoopMetricsObserver) OnWorkerDone(worker, rows int, duration time.Duration, err error) {}
