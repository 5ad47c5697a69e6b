package matrix

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_N4(t *testing.T) {
	assert.Equal(t, 0, Index(4, 0, 0))
	assert.Equal(t, 3, Index(4, 0, 3))
	assert.Equal(t, 4, Index(4, 1, 1))
	assert.Equal(t, 9, Index(4, 3, 3))
	assert.Equal(t, 10, VecSize(4))
}

func TestIndex_Bijection(t *testing.T) {
	for n := 1; n <= 40; n++ {
		seen := make([]bool, VecSize(n))
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				k := Index(n, i, j)
				require.GreaterOrEqual(t, k, 0)
				require.Less(t, k, VecSize(n))
				require.False(t, seen[k], "n=%d (%d,%d) collides at %d", n, i, j, k)
				seen[k] = true
			}
		}
	}
}

func TestSizeFromVec(t *testing.T) {
	for n := 1; n <= 5000; n++ {
		got, ok := SizeFromVec(VecSize(n))
		require.True(t, ok)
		require.Equal(t, n, got)
	}

	for _, v := range []int{0, -1, 2, 4, 5, 7, 11} {
		_, ok := SizeFromVec(v)
		assert.False(t, ok, "vecsize %d", v)
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.mat")

	m, err := Create(path, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, m.N())
	assert.Equal(t, int64(15*ElemSize), m.Bytes())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(15*ElemSize), fi.Size())

	for i := 0; i < 5; i++ {
		for j := i; j < 5; j++ {
			if i == j {
				continue
			}
			require.NoError(t, m.Set(i, j, float64(i*10+j)+0.25))
		}
	}
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			v, err := m.Get(i, j)
			require.NoError(t, err)
			assert.Equal(t, float64(i*10+j)+0.25, v)
		}
	}

	require.NoError(t, m.Sync())
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 5, reopened.N())
	v, err := reopened.Get(2, 4)
	require.NoError(t, err)
	assert.Equal(t, 24.25, v)
}

func TestCreate_TruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.mat")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xff}, 1000), 0o644))

	m, err := Create(path, 3)
	require.NoError(t, err)
	defer m.Close()

	for _, v := range m.Triangle() {
		assert.Equal(t, 0.0, v)
	}
}

func TestCreate_InvalidSize(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "m"), 0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestOpen_NotTriangular(t *testing.T) {
	dir := t.TempDir()

	odd := filepath.Join(dir, "odd")
	require.NoError(t, os.WriteFile(odd, make([]byte, 13), 0o644))
	_, err := Open(odd)
	assert.ErrorIs(t, err, ErrNotTriangular)

	four := filepath.Join(dir, "four")
	require.NoError(t, os.WriteFile(four, make([]byte, 4*ElemSize), 0o644))
	_, err = Open(four)
	assert.ErrorIs(t, err, ErrNotTriangular)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Open(empty)
	assert.ErrorIs(t, err, ErrNotTriangular)

	_, err = Open(filepath.Join(dir, "absent"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSetGet_Errors(t *testing.T) {
	m, err := Create(filepath.Join(t.TempDir(), "m"), 3)
	require.NoError(t, err)
	defer m.Close()

	for _, c := range []Cell{{-1, 0}, {1, 0}, {0, 3}, {3, 3}} {
		_, err := m.Get(c.I, c.J)
		assert.ErrorIs(t, err, ErrOutOfRange, "%v", c)
		assert.ErrorIs(t, m.Set(c.I, c.J, 1), ErrOutOfRange, "%v", c)
	}

	var ie *IndexError
	require.ErrorAs(t, m.Set(2, 1, 1), &ie)
	assert.Equal(t, IndexError{I: 2, J: 1, N: 3}, *ie)

	assert.ErrorIs(t, m.Set(0, 1, -0.5), ErrInvalidValue)
	assert.ErrorIs(t, m.Set(0, 1, math.NaN()), ErrInvalidValue)
	assert.ErrorIs(t, m.Set(0, 1, math.Inf(1)), ErrInvalidValue)

	require.NoError(t, m.Set(0, 1, 0.5))
	assert.ErrorIs(t, m.Set(0, 1, 0.7), ErrDoubleWrite)

	// Zero is the empty marker; writing it again is not a double write.
	require.NoError(t, m.Set(0, 0, 0))
	require.NoError(t, m.Set(0, 0, 0))
}

func TestClearRow(t *testing.T) {
	m, err := Create(filepath.Join(t.TempDir(), "m"), 4)
	require.NoError(t, err)
	defer m.Close()

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			require.NoError(t, m.Set(i, j, 1))
		}
	}

	require.NoError(t, m.ClearRow(1))
	row, err := m.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, row)

	row, err = m.Row(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1, 1}, row)

	require.NoError(t, m.Set(1, 2, 2), "cleared cells accept a new value")
	assert.ErrorIs(t, m.ClearRow(4), ErrOutOfRange)
}

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m")
	m, err := Create(path, 2)
	require.NoError(t, err)
	require.NoError(t, m.Set(0, 1, 3))
	require.NoError(t, m.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	assert.False(t, ro.Writable())
	v, err := ro.Get(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	assert.ErrorIs(t, ro.Set(1, 1, 1), ErrReadOnly)
	assert.ErrorIs(t, ro.ClearRow(0), ErrReadOnly)
	assert.NoError(t, ro.Sync())
}

func TestAfterClose(t *testing.T) {
	m, err := Create(filepath.Join(t.TempDir(), "m"), 2)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = m.Get(0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Set(0, 0, 1), ErrClosed)
	assert.ErrorIs(t, m.Sync(), ErrClosed)
	assert.ErrorIs(t, m.Print(&bytes.Buffer{}), ErrClosed)
	assert.Nil(t, m.Triangle())
}

func TestPrint(t *testing.T) {
	m, err := Create(filepath.Join(t.TempDir(), "m"), 3)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Set(0, 1, 0.5))
	require.NoError(t, m.Set(0, 2, 1))
	require.NoError(t, m.Set(1, 2, 0.25))

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf))

	want := strings.Join([]string{
		"3",
		"0.00, 0.50, 1.00",
		"-1.00, 0.00, 0.25",
		"-1.00, -1.00, 0.00",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestPrint_WideValues(t *testing.T) {
	m, err := Create(filepath.Join(t.TempDir(), "m"), 2)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Set(0, 1, 123.456))

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf))

	// floor(log10(123.456))+4 = 6
	assert.Equal(t, "2\n  0.00, 123.46\n -1.00,   0.00\n", buf.String())
}

func TestPrintWidth(t *testing.T) {
	assert.Equal(t, 4, PrintWidth(0))
	assert.Equal(t, 4, PrintWidth(9.99))
	assert.Equal(t, 5, PrintWidth(10))
	assert.Equal(t, 6, PrintWidth(123.456))
	assert.Equal(t, 7, PrintWidth(1000))
}

func TestSanity(t *testing.T) {
	m, err := Create(filepath.Join(t.TempDir(), "m"), 3)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Set(0, 1, 1))
	require.NoError(t, m.Set(1, 2, 1))

	r, err := m.Sanity()
	require.NoError(t, err)
	assert.False(t, r.OK())
	assert.Equal(t, 0, r.NonZeroDiagonal)
	assert.Equal(t, 1, r.ZeroOffDiagonal)
	assert.Equal(t, []Cell{{0, 2}}, r.OffDiagSamples)

	require.NoError(t, m.Set(0, 2, 1))
	require.NoError(t, m.Set(2, 2, 0.1))

	r, err = m.Sanity()
	require.NoError(t, err)
	assert.Equal(t, 1, r.NonZeroDiagonal)
	assert.Equal(t, []Cell{{2, 2}}, r.DiagonalSamples)
	assert.Equal(t, 0, r.ZeroOffDiagonal)
}
