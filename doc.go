// Package seqdist computes all pairwise distances of a set of biological
// sequences into a memory-mapped, upper-triangular matrix file.
//
// A run loads the sequences of a FASTA file, builds the configured measure
// (edit distance with an optional cost matrix, or a k-mer frequency metric),
// and fills the matrix with a fixed pool of workers. Row i is owned by worker
// i mod ncores. After every row a worker records its progress in the
// checkpoint directory, so an interrupted run can be resumed with
// Restart set and recomputes only the rows that were not finished.
//
// # Quick Start
//
//	opts := config.Default()
//	opts.Fasta = "reads.fasta"
//	opts.DistMatFile = "reads.dist"
//	opts.Measure = config.MeasureKmer
//	opts.MeasureOpt = "11"
//
//	res, err := seqdist.Run(ctx, opts, seqdist.WithLogger(seqdist.NewTextLogger(slog.LevelInfo)))
//
// Resume after an interruption:
//
//	opts := config.Options{CheckpointDir: "./seqdist.checkpoint", Restart: true}
//	res, err := seqdist.Run(ctx, opts)
//
// # Errors
//
// Run returns *Error values whose Kind tells configuration problems apart
// from I/O failures, corrupt checkpoints or matrices, broken invariants and
// interruptions. Use KindOf to classify any error.
package seqdist
