// Package kmer encodes DNA k-mers as packed integers and builds per-sequence
// k-mer frequency tables.
//
// # Packed k-mers
//
// A Kmer stores up to 32 bases in a uint64 using 2 bits per base
// (A=0, C=1, G=2, T=3). The first base of the k-mer occupies the most
// significant used bits, so integer order equals lexicographic order.
//
//	c, _ := kmer.NewCodec(4)
//	km, _ := c.Encode("ACGT") // 0b00_01_10_11
//	c.Decode(km)              // "ACGT"
//
// Append slides a window one base to the right; Next is plain integer
// increment and only serves exhaustive enumeration.
//
// # Frequency index
//
// Index memoizes one Table per distinct sequence string. Tables are built at
// most once even under concurrent access, and Prepopulate builds every table
// up front with bounded parallelism so workers only ever read.
package kmer
