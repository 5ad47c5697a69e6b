// Package matrix stores a symmetric N×N distance matrix as its upper
// triangle, diagonal included, in one memory-mapped file.
//
// # Layout
//
// Cell (i, j) with 0 <= i <= j < N lives at slot
//
//	k = j + N*i - i*(i+1)/2
//
// of a flat array of N*(N+1)/2 native-endian float64 values. The file holds
// nothing else, so its size alone determines N on reopen.
//
//	a0  a1  a2  a3
//	    a4  a5  a6
//	        a7  a8
//	            a9
//
// # Concurrency
//
// Get and Set take no locks. Concurrent writers must own disjoint cells;
// the row-striped scheduler guarantees that. Set refuses to overwrite a
// non-zero cell so that an overlapping partition is detected instead of
// silently corrupting results.
package matrix
