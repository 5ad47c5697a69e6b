package matrix

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/seqdist/internal/mmap"
)

// ElemSize is the byte size of one stored value.
const ElemSize = 8

var (
	// ErrOutOfRange is returned for indices outside 0 <= i <= j < N.
	ErrOutOfRange = errors.New("matrix index out of range")

	// ErrDoubleWrite is returned when Set targets a cell that already holds a value.
	ErrDoubleWrite = errors.New("matrix cell written twice")

	// ErrNotTriangular is returned when a file size is not N*(N+1)/2 values.
	ErrNotTriangular = errors.New("file size is not a triangular matrix")

	// ErrInvalidValue is returned for negative or non-finite distances.
	ErrInvalidValue = errors.New("invalid distance value")

	// ErrInvalidSize is returned when creating a matrix with N < 1.
	ErrInvalidSize = errors.New("matrix size must be at least 1")

	// ErrReadOnly is returned when writing to a matrix opened read-only.
	ErrReadOnly = errors.New("matrix is read-only")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("matrix is closed")
)

// IndexError reports offending indices.
type IndexError struct {
	I, J, N int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("i %d j %d: need 0 <= i <= j < %d", e.I, e.J, e.N)
}

func (e *IndexError) Unwrap() error { return ErrOutOfRange }

// VecSize returns the number of stored values for an n×n matrix.
func VecSize(n int) int {
	return n * (n + 1) / 2
}

// SizeFromVec inverts VecSize. ok is false when vecsize is not triangular.
func SizeFromVec(vecsize int) (n int, ok bool) {
	if vecsize <= 0 {
		return 0, false
	}
	n = int(math.Sqrt(float64(2 * vecsize)))
	for VecSize(n) > vecsize {
		n--
	}
	for VecSize(n+1) <= vecsize {
		n++
	}
	return n, VecSize(n) == vecsize
}

// Index returns the slot of cell (i, j) in an n×n matrix. It does not
// validate its arguments.
func Index(n, i, j int) int {
	return j + n*i - i*(i+1)/2
}

// Matrix is a memory-mapped upper-triangular matrix.
type Matrix struct {
	path    string
	n       int
	mapping *mmap.Mapping
	data    []float64
	closed  atomic.Bool
}

// Create creates or truncates path to hold an n×n matrix of zeros and maps
// it read/write.
func Create(path string, n int) (*Matrix, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	size := int64(VecSize(n)) * ElemSize
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("truncate %s to %d bytes: %w", path, size, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	m, err := mapFile(path, true)
	if err != nil {
		return nil, err
	}
	clear(m.data)
	return m, nil
}

// Open maps an existing matrix file read/write. N is recovered from the file size.
func Open(path string) (*Matrix, error) {
	return mapFile(path, true)
}

// OpenReadOnly maps an existing matrix file for reading.
func OpenReadOnly(path string) (*Matrix, error) {
	return mapFile(path, false)
}

func mapFile(path string, writable bool) (*Matrix, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size%ElemSize != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes, not a multiple of %d", ErrNotTriangular, path, size, ElemSize)
	}
	vecsize := int(size / ElemSize)
	n, ok := SizeFromVec(vecsize)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %d values", ErrNotTriangular, path, vecsize)
	}

	var mp *mmap.Mapping
	if writable {
		mp, err = mmap.OpenWritable(path)
	} else {
		mp, err = mmap.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	if mp.Size() != int(size) {
		_ = mp.Close()
		return nil, fmt.Errorf("%w: %s changed size while mapping", ErrNotTriangular, path)
	}

	b := mp.Bytes()
	return &Matrix{
		path:    path,
		n:       n,
		mapping: mp,
		data:    unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), vecsize),
	}, nil
}

// N returns the matrix dimension.
func (m *Matrix) N() int { return m.n }

// Path returns the backing file path.
func (m *Matrix) Path() string { return m.path }

// Bytes returns the size of the backing file.
func (m *Matrix) Bytes() int64 { return int64(len(m.data)) * ElemSize }

// Writable reports whether Set and ClearRow are allowed.
func (m *Matrix) Writable() bool { return m.mapping.Writable() }

func (m *Matrix) index(i, j int) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if i < 0 || j < i || j >= m.n {
		return 0, &IndexError{I: i, J: j, N: m.n}
	}
	return Index(m.n, i, j), nil
}

// Get returns cell (i, j).
func (m *Matrix) Get(i, j int) (float64, error) {
	k, err := m.index(i, j)
	if err != nil {
		return 0, err
	}
	return m.data[k], nil
}

// Set stores v in cell (i, j). The cell must still be zero.
func (m *Matrix) Set(i, j int, v float64) error {
	k, err := m.index(i, j)
	if err != nil {
		return err
	}
	if !m.mapping.Writable() {
		return ErrReadOnly
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %g at (%d, %d)", ErrInvalidValue, v, i, j)
	}
	if old := m.data[k]; old != 0 {
		return fmt.Errorf("%w: (%d, %d) already holds %g", ErrDoubleWrite, i, j, old)
	}
	m.data[k] = v
	return nil
}

// ClearRow zeroes cells (i, i) through (i, N-1).
func (m *Matrix) ClearRow(i int) error {
	start, err := m.index(i, i)
	if err != nil {
		return err
	}
	if !m.mapping.Writable() {
		return ErrReadOnly
	}
	clear(m.data[start : start+m.n-i])
	return nil
}

// Row returns a copy of cells (i, i) through (i, N-1).
func (m *Matrix) Row(i int) ([]float64, error) {
	start, err := m.index(i, i)
	if err != nil {
		return nil, err
	}
	out := make([]float64, m.n-i)
	copy(out, m.data[start:])
	return out, nil
}

// Triangle returns the stored values in slot order. The slice aliases the
// mapping and is valid only until Close.
func (m *Matrix) Triangle() []float64 {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Sync flushes modified pages to the file.
func (m *Matrix) Sync() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.mapping.Writable() {
		return nil
	}
	return m.mapping.Sync()
}

// Close unmaps the file. It is idempotent.
func (m *Matrix) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.data = nil
	return m.mapping.Close()
}
