// Package distance provides the dissimilarity measures used to fill a
// distance matrix.
//
// # Supported Metrics
//
//   - MetricEdit: Levenshtein distance, unit cost or a custom 4x4 cost matrix
//   - MetricCosine: angular distance between k-mer frequency vectors, in [0, 1]
//   - MetricEuclidean: squared Euclidean distance between k-mer frequency
//     vectors (no square root, unscaled)
//
// # Usage
//
//	m, err := distance.New(distance.Config{Name: "kmer", Sub: "cosine", Opt: "11"})
//	if p, ok := m.(distance.Preparer); ok {
//	    err = p.Prepare(ctx, records)
//	}
//	d, err := m.Compare(a, b)
package distance
