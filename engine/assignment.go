package engine

// Assignment returns, for each worker, the rows it owns in an n-row matrix.
func Assignment(n, nthreads int) [][]int {
	if nthreads <= 0 {
		return nil
	}
	out := make([][]int, nthreads)
	for w := range out {
		for row := w; row < n; row += nthreads {
			out[w] = append(out[w], row)
		}
	}
	return out
}

// Owner returns the worker that computes row.
func Owner(row, nthreads int) int {
	return row % nthreads
}
