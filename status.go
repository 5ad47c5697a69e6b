package seqdist

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/seqdist/checkpoint"
	"github.com/hupe1980/seqdist/config"
	"github.com/hupe1980/seqdist/matrix"
)

// ErrIncomplete is returned when an operation needs a finished run.
var ErrIncomplete = errors.New("run is not complete")

// Status describes the state of a run as recorded in its checkpoint directory.
type Status struct {
	// Options are the options stored in the checkpoint.
	Options config.Options
	// N is the matrix dimension derived from the matrix file size.
	N int
	// Done holds the rows the worker checkpoints mark as complete.
	Done *roaring.Bitmap
	// MatrixBytes is the size of the matrix file.
	MatrixBytes int64
}

// Complete reports whether every row is done.
func (s *Status) Complete() bool {
	return s.N > 0 && s.Done.GetCardinality() == uint64(s.N)
}

// Pending returns the rows still to compute, up to limit (all if limit <= 0).
func (s *Status) Pending(limit int) []int {
	var rows []int
	for row := 0; row < s.N; row++ {
		if limit > 0 && len(rows) == limit {
			break
		}
		if !s.Done.Contains(uint32(row)) {
			rows = append(rows, row)
		}
	}
	return rows
}

// ReadStatus inspects the checkpoint directory dir without modifying it.
func ReadStatus(dir string, optFns ...Option) (*Status, error) {
	o := newOptions(optFns...)
	cp := checkpoint.New(dir,
		checkpoint.WithFileSystem(o.fs),
		checkpoint.WithLogger(o.logger.Logger),
	)

	st := &Status{Options: config.Options{CheckpointDir: dir}}
	if err := cp.ReadOptions(&st.Options); err != nil {
		return nil, translateError("read options checkpoint", err)
	}

	m, err := matrix.OpenReadOnly(st.Options.DistMatFile)
	if err != nil {
		return nil, translateError("open matrix", err)
	}
	st.N = m.N()
	st.MatrixBytes = m.Bytes()
	if err := m.Close(); err != nil {
		return nil, translateError("close matrix", err)
	}

	if st.Options.NCores <= 0 {
		return nil, translateError("read options checkpoint",
			fmt.Errorf("%w: ncores %d", checkpoint.ErrInvalidValue, st.Options.NCores))
	}
	st.Done, err = cp.Progress(st.N, st.Options.NCores)
	if err != nil {
		return nil, translateError("read worker checkpoints", err)
	}
	return st, nil
}

// PrintMatrix writes the square form of a matrix file to the configured output.
func PrintMatrix(path string, optFns ...Option) error {
	o := newOptions(optFns...)
	m, err := matrix.OpenReadOnly(path)
	if err != nil {
		return translateError("open matrix", err)
	}
	defer m.Close()
	return translateError("print matrix", m.Print(o.output))
}
