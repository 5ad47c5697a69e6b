package seqdist

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/seqdist/config"
	"github.com/hupe1980/seqdist/matrix"
)

// Logger wraps slog.Logger with seqdist-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithWorker adds a worker field to the logger.
func (l *Logger) WithWorker(worker int) *Logger {
	return &Logger{
		Logger: l.Logger.With("worker", worker),
	}
}

// LogRunStart logs the effective configuration of a run.
func (l *Logger) LogRunStart(ctx context.Context, o *config.Options, n int) {
	l.InfoContext(ctx, "run starting",
		"restart", o.Restart,
		"sequences", n,
		"ncores", o.NCores,
		"measure", o.Measure,
		"submeasure", o.SubMeasure,
		"measureopt", o.MeasureOpt,
		"matrix", o.DistMatFile,
		"matrix_size", humanize.IBytes(uint64(matrix.VecSize(n))*matrix.ElemSize),
		"checkpointdir", o.CheckpointDir,
	)
}

// LogRestore logs the options recovered from a checkpoint.
func (l *Logger) LogRestore(ctx context.Context, o *config.Options, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"checkpointdir", o.CheckpointDir,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "options restored from checkpoint",
		"checkpointdir", o.CheckpointDir,
		"ncores", o.NCores,
		"fasta", o.Fasta,
		"measure", o.Measure,
	)
}

// LogWorkerDone logs the end of one worker.
func (l *Logger) LogWorkerDone(ctx context.Context, worker, rows int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "worker failed",
			"worker", worker,
			"rows", rows,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "worker completed",
		"worker", worker,
		"rows", rows,
		"duration", d,
	)
}

// LogProgress logs completed rows.
func (l *Logger) LogProgress(ctx context.Context, done, total int, elapsed time.Duration) {
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(done) / float64(total)
	}
	l.InfoContext(ctx, "progress",
		"rows", done,
		"total", total,
		"percent", humanize.FtoaWithDigits(pct, 1),
		"elapsed", elapsed.Round(time.Millisecond),
	)
}

// LogSanity reports the post-run scan. Findings are warnings only.
func (l *Logger) LogSanity(ctx context.Context, r matrix.SanityReport) {
	if r.OK() {
		l.DebugContext(ctx, "matrix sanity check passed")
		return
	}
	if r.NonZeroDiagonal > 0 {
		l.WarnContext(ctx, "non-zero diagonal entries",
			"count", r.NonZeroDiagonal,
			"samples", r.DiagonalSamples,
		)
	}
	if r.ZeroOffDiagonal > 0 {
		l.WarnContext(ctx, "zero off-diagonal entries",
			"count", r.ZeroOffDiagonal,
			"samples", r.OffDiagSamples,
		)
	}
}

// LogRunDone logs the outcome of a run.
func (l *Logger) LogRunDone(ctx context.Context, res *Result, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"kind", KindOf(err).String(),
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "run completed",
		"sequences", res.N,
		"rows", res.Stats.Rows,
		"skipped", res.Stats.Skipped,
		"cells", humanize.Comma(res.Stats.Cells),
		"elapsed", res.Stats.Elapsed.Round(time.Millisecond),
	)
}
