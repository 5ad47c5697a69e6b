package checkpoint

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Progress returns the rows of an n-row matrix that the worker checkpoints
// mark as complete.
func (m *Manager) Progress(n, nthreads int) (*roaring.Bitmap, error) {
	if nthreads <= 0 {
		return nil, fmt.Errorf("%w: nthreads %d", ErrInvalidValue, nthreads)
	}

	done := roaring.New()
	for w := 0; w < nthreads; w++ {
		next, err := m.ResumeRow(w, nthreads)
		if err != nil {
			return nil, err
		}
		for row := w; row < next && row < n; row += nthreads {
			done.Add(uint32(row))
		}
	}
	return done, nil
}
