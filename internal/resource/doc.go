// Package resource governs process-wide limits for a distance run.
//
// The Controller covers three resources:
//
//   - Memory: accounting and an optional hard limit for the k-mer frequency
//     cache (non-blocking, fail-fast)
//   - Builders: a cap on goroutines building k-mer tables concurrently
//   - Reports: a token bucket that throttles progress reporting so hot worker
//     loops can ask "may I log now?" cheaply
//
// # Memory
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	if err := rc.AcquireMemory(n); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops that
// always grant the request.
package resource
