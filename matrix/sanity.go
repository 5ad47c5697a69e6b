package matrix

// Cell identifies one matrix cell.
type Cell struct {
	I, J int
}

// maxSanitySamples bounds the cells recorded per finding.
const maxSanitySamples = 10

// SanityReport summarizes suspicious cells after a run. Both findings are
// warnings; a distance of zero between distinct records is legal for
// identical sequences.
type SanityReport struct {
	NonZeroDiagonal int
	ZeroOffDiagonal int
	DiagonalSamples []Cell
	OffDiagSamples  []Cell
}

// OK reports whether nothing suspicious was found.
func (r SanityReport) OK() bool {
	return r.NonZeroDiagonal == 0 && r.ZeroOffDiagonal == 0
}

// Sanity scans the whole matrix for non-zero diagonal cells and zero
// off-diagonal cells.
func (m *Matrix) Sanity() (SanityReport, error) {
	var r SanityReport
	if m.closed.Load() {
		return r, ErrClosed
	}

	k := 0
	for i := 0; i < m.n; i++ {
		for j := i; j < m.n; j++ {
			v := m.data[k]
			k++
			switch {
			case i == j && v != 0:
				r.NonZeroDiagonal++
				if len(r.DiagonalSamples) < maxSanitySamples {
					r.DiagonalSamples = append(r.DiagonalSamples, Cell{i, j})
				}
			case i != j && v == 0:
				r.ZeroOffDiagonal++
				if len(r.OffDiagSamples) < maxSanitySamples {
					r.OffDiagSamples = append(r.OffDiagSamples, Cell{i, j})
				}
			}
		}
	}
	return r, nil
}
