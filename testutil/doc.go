// Package testutil provides testing utilities for seqdist.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random DNA records, writing FASTA
// fixtures, and computing serial reference matrices.
//
// # Random Sequences
//
//	rng := testutil.NewRNG(seed)
//	recs := rng.Records(50, 80, 120)     // 50 records, length 80..120
//	related := rng.Mutate(recs[0].Seq, 0.05)
//
// # Ground Truth
//
//	want, err := testutil.ReferenceMatrix(recs, measure.Compare)
package testutil
