package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxBuilders is the maximum number of concurrent cache builders.
	// If 0, defaults to 1.
	MaxBuilders int64

	// ReportsPerSec limits how often progress may be reported.
	// If 0, reporting is unlimited.
	ReportsPerSec float64
}

// Controller manages global resources (memory, concurrency, reporting).
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	buildSem *semaphore.Weighted

	reports *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxBuilders <= 0 {
		cfg.MaxBuilders = 1
	}

	c := &Controller{
		cfg:      cfg,
		buildSem: semaphore.NewWeighted(cfg.MaxBuilders),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.ReportsPerSec > 0 {
		c.reports = rate.NewLimiter(rate.Limit(cfg.ReportsPerSec), 1)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// MaxBuilders returns the configured builder concurrency.
func (c *Controller) MaxBuilders() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxBuilders)
}

// AcquireBuilder reserves a builder slot, blocking while all slots are busy.
func (c *Controller) AcquireBuilder(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.buildSem.Acquire(ctx, 1)
}

// TryAcquireBuilder attempts to reserve a builder slot without blocking.
func (c *Controller) TryAcquireBuilder() bool {
	if c == nil {
		return true
	}
	return c.buildSem.TryAcquire(1)
}

// ReleaseBuilder releases a builder slot.
func (c *Controller) ReleaseBuilder() {
	if c == nil {
		return
	}
	c.buildSem.Release(1)
}

// AllowReport reports whether a progress report may be emitted now.
func (c *Controller) AllowReport() bool {
	if c == nil || c.reports == nil {
		return true
	}
	return c.reports.AllowN(time.Now(), 1)
}
