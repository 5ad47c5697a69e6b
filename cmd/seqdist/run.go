package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/seqdist"
	"github.com/hupe1980/seqdist/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type runFlags struct {
	ncores           int
	distMatFile      string
	fasta            string
	measure          string
	subMeasure       string
	measureOpt       string
	checkpointDir    string
	printResult      bool
	restart          bool
	memoryLimit      string
	progressInterval time.Duration
	progress         bool
	metricsAddr      string
}

// trackedFlags are ignored on restart because the checkpoint supplies them.
var trackedFlags = []string{"ncores", "distmatfname", "fasta", "measure", "submeasure", "measureopt", "printresult"}

func (f *runFlags) options() config.Options {
	return config.Options{
		NCores:        f.ncores,
		DistMatFile:   f.distMatFile,
		Fasta:         f.fasta,
		Measure:       f.measure,
		SubMeasure:    f.subMeasure,
		MeasureOpt:    f.measureOpt,
		CheckpointDir: f.checkpointDir,
		PrintResult:   f.printResult,
		Restart:       f.restart,
	}
}

func (f *runFlags) memoryLimitBytes() (int64, error) {
	if f.memoryLimit == "" || f.memoryLimit == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(f.memoryLimit)
	if err != nil {
		return 0, fmt.Errorf("%w: memory limit %q: %w", errUsage, f.memoryLimit, err)
	}
	return int64(n), nil
}

func runCommand(g *globalFlags) *cobra.Command {
	def := config.Default()
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute or resume a distance matrix",
		Long: `Compute the distance matrix of all sequences in a FASTA file.

Measures:
  edit   edit distance; --measureopt names an optional 4x4 cost matrix (order ACGT)
  kmer   k-mer frequency distance; --submeasure cosine|euclidean, --measureopt k (default 11)

With --restart every option except --checkpointdir is read from the checkpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, g, f)
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&f.ncores, "ncores", "n", def.NCores, "Number of worker threads")
	fl.StringVarP(&f.distMatFile, "distmatfname", "o", "", "Matrix file (memory-mapped)")
	fl.StringVarP(&f.fasta, "fasta", "f", "", "Input FASTA file")
	fl.StringVarP(&f.measure, "measure", "m", "", "Distance measure: edit or kmer")
	fl.StringVarP(&f.subMeasure, "submeasure", "s", "", "k-mer measure: cosine or euclidean")
	fl.StringVarP(&f.measureOpt, "measureopt", "x", "", "Cost matrix file (edit) or k (kmer)")
	fl.StringVarP(&f.checkpointDir, "checkpointdir", "c", def.CheckpointDir, "Checkpoint directory (must exist)")
	fl.BoolVarP(&f.printResult, "printresult", "p", false, "Print the matrix to stdout when done")
	fl.BoolVarP(&f.restart, "restart", "r", false, "Resume the run recorded in the checkpoint directory")
	fl.StringVar(&f.memoryLimit, "memory-limit", "", "Budget for cached k-mer tables, e.g. 2GiB (default unlimited)")
	fl.DurationVar(&f.progressInterval, "progress-interval", seqdist.DefaultProgressInterval, "Minimum time between progress log lines")
	fl.BoolVar(&f.progress, "progress", false, "Show a progress bar on stderr")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")

	return cmd
}

func runRun(cmd *cobra.Command, g *globalFlags, f *runFlags) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	limit, err := f.memoryLimitBytes()
	if err != nil {
		return err
	}

	opts := f.options()
	if opts.Restart {
		for _, name := range trackedFlags {
			if cmd.Flags().Changed(name) {
				logger.Warn("flag ignored on restart", "flag", name)
			}
		}
	}

	var obs observers
	if f.progress {
		bar := newProgressBar(cmd.ErrOrStderr())
		defer bar.Wait()
		obs = append(obs, bar)
	}
	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		obs = append(obs, newPromObserver(reg))
		_, shutdown, err := serveMetrics(f.metricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	_, err = seqdist.Run(cmd.Context(), opts,
		seqdist.WithLogger(logger),
		seqdist.WithObserver(obs),
		seqdist.WithOutput(cmd.OutOrStdout()),
		seqdist.WithMemoryLimit(limit),
		seqdist.WithProgressInterval(f.progressInterval),
	)
	if err != nil && seqdist.KindOf(err) == seqdist.KindInterrupted {
		logger.Warn("run interrupted; resume with --restart", "checkpointdir", opts.CheckpointDir)
	}
	return err
}
