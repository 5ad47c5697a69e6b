// Package engine drives the pairwise comparison of a sequence set into a
// triangular distance matrix.
//
// # Row striping
//
// Row i of the upper triangle belongs to worker i mod nthreads. Each worker
// walks its rows in increasing order, fills cells (i, i) through (i, N-1) and
// then checkpoints i as its last completed row. Workers never share a cell,
// so the matrix needs no locking.
//
// # Resume
//
// On restart a worker begins at its checkpointed row plus nthreads. Each
// resumed row is cleared first because a crash may have left it half
// written. Cancellation is observed between rows only, so the checkpoint
// always names a fully written row.
package engine
