package seqdist

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/seqdist/checkpoint"
	"github.com/hupe1980/seqdist/config"
	"github.com/hupe1980/seqdist/distance"
	"github.com/hupe1980/seqdist/engine"
	"github.com/hupe1980/seqdist/internal/resource"
	"github.com/hupe1980/seqdist/kmer"
	"github.com/hupe1980/seqdist/matrix"
	"github.com/hupe1980/seqdist/sequence"
)

// Result describes a finished run.
type Result struct {
	// Options are the effective options. On restart they come from the
	// options checkpoint.
	Options     config.Options
	N           int
	IDs         []string
	Description string
	Metric      distance.Metric
	Stats       engine.Stats
	Sanity      matrix.SanityReport
}

// Run computes the distance matrix described by opts, or resumes it when
// opts.Restart is set. Canceling ctx stops the workers after their current
// row; the run can then be resumed.
func Run(ctx context.Context, opts config.Options, optFns ...Option) (*Result, error) {
	o := newOptions(optFns...)
	res, err := run(ctx, opts, o)
	o.logger.LogRunDone(ctx, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func run(ctx context.Context, opts config.Options, o options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, translateError("validate options", err)
	}

	cp := checkpoint.New(opts.CheckpointDir,
		checkpoint.WithFileSystem(o.fs),
		checkpoint.WithLogger(o.logger.Logger),
	)

	if opts.Restart {
		err := cp.ReadOptions(&opts)
		o.logger.LogRestore(ctx, &opts, err)
		if err != nil {
			return nil, translateError("read options checkpoint", err)
		}
		if opts.NCores <= 0 {
			return nil, translateError("read options checkpoint",
				fmt.Errorf("%w: ncores %d", checkpoint.ErrInvalidValue, opts.NCores))
		}
		if err := opts.ValidateNCores(); err != nil {
			return nil, translateError("restore options", err)
		}
	} else {
		if err := cp.Clean(); err != nil {
			return nil, translateError("clean checkpoint directory", err)
		}
		if err := cp.WriteOptions(&opts); err != nil {
			return nil, translateError("write options checkpoint", err)
		}
	}

	recs, err := o.loader(opts.Fasta)
	if err == nil && len(recs) == 0 {
		err = fmt.Errorf("%s: %w", opts.Fasta, sequence.ErrNoSequences)
	}
	if err != nil {
		return nil, translateError("load sequences", err)
	}
	n := len(recs)
	o.logger.LogRunStart(ctx, &opts, n)

	builders := o.maxBuilders
	if builders <= 0 {
		builders = opts.NCores
	}
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes: o.memoryLimit,
		MaxBuilders:      int64(builders),
		ReportsPerSec:    reportsPerSec(o),
	})
	obs := newRunObserver(ctx, o.observer, o.logger, rc)

	meas, err := distance.New(distance.Config{
		Name: opts.Measure,
		Sub:  opts.SubMeasure,
		Opt:  opts.MeasureOpt,
	},
		distance.WithLogger(o.logger.Logger),
		distance.WithIndexOptions(kmer.WithController(rc), kmer.WithBuildHook(obs.onBuild)),
	)
	if err != nil {
		return nil, translateError("build measure", err)
	}
	o.logger.InfoContext(ctx, "measure configured", "description", meas.Describe())

	if p, ok := meas.(distance.Preparer); ok {
		if err := p.Prepare(ctx, recs); err != nil {
			return nil, translateError("prepare measure", err)
		}
	}

	var m *matrix.Matrix
	if opts.Restart {
		m, err = matrix.Open(opts.DistMatFile)
		if err != nil {
			return nil, translateError("open matrix", err)
		}
	} else {
		m, err = matrix.Create(opts.DistMatFile, n)
		if err != nil {
			return nil, translateError("create matrix", err)
		}
	}
	defer m.Close()

	if !opts.Restart {
		if err := cp.InitWorkers(opts.NCores); err != nil {
			return nil, translateError("init worker checkpoints", err)
		}
	}

	sched, err := engine.New(m, meas, recs, cp,
		engine.WithThreads(opts.NCores),
		engine.WithRestart(opts.Restart),
		engine.WithObserver(obs),
		engine.WithLogger(o.logger.Logger),
	)
	if err != nil {
		return nil, translateError("schedule", err)
	}

	skipped := 0
	if opts.Restart {
		done, err := cp.Progress(n, opts.NCores)
		if err != nil {
			return nil, translateError("read worker checkpoints", err)
		}
		skipped = int(done.GetCardinality())
	}
	obs.start(n, skipped)

	stats, err := sched.Run(ctx)
	if err != nil {
		err = errors.Join(err, m.Sync())
		return nil, translateError("compute distances", err)
	}

	if err := m.Sync(); err != nil {
		return nil, translateError("sync matrix", err)
	}

	report, err := m.Sanity()
	if err != nil {
		return nil, translateError("sanity check", err)
	}
	o.logger.LogSanity(ctx, report)

	if opts.PrintResult {
		if err := m.Print(o.output); err != nil {
			return nil, translateError("print matrix", err)
		}
	}

	if err := m.Close(); err != nil {
		return nil, translateError("close matrix", err)
	}

	ids := make([]string, n)
	for i, r := range recs {
		ids[i] = r.ID
	}

	return &Result{
		Options:     opts,
		N:           n,
		IDs:         ids,
		Description: meas.Describe(),
		Metric:      meas.Metric(),
		Stats:       stats,
		Sanity:      report,
	}, nil
}

func reportsPerSec(o options) float64 {
	if o.progressInterval <= 0 {
		return 0
	}
	return 1 / o.progressInterval.Seconds()
}
