package export

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hupe1980/seqdist/blobstore"
	"github.com/hupe1980/seqdist/codec"
	"github.com/hupe1980/seqdist/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type triangle struct {
	n    int
	vals []float64
}

func (t *triangle) N() int              { return t.n }
func (t *triangle) Triangle() []float64 { return t.vals }

func newTriangle(n int) (*triangle, []string) {
	vals := make([]float64, matrix.VecSize(n))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			vals[matrix.Index(n, i, j)] = float64((i*31+j*17)%7) + 0.25
		}
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("seq%03d", i)
	}
	return &triangle{n: n, vals: vals}, ids
}

func TestRoundTrip(t *testing.T) {
	src, ids := newTriangle(40)

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for _, c := range []codec.Codec{codec.MsgPack{}, codec.GoJSON{}} {
			t.Run(comp.String()+"/"+c.Name(), func(t *testing.T) {
				var buf bytes.Buffer
				hdr, err := Write(&buf, src, ids, "edit distance", WithCompression(comp), WithCodec(c), WithBlockSize(1003))
				require.NoError(t, err)
				assert.Equal(t, 40, hdr.N)
				assert.Equal(t, 1000, hdr.BlockSize, "rounded down to whole values")
				assert.Equal(t, (820+124)/125, hdr.Blocks)

				a, err := Read(&buf)
				require.NoError(t, err)
				assert.Equal(t, *hdr, a.Header)
				assert.Equal(t, src.vals, a.Values)
				assert.Equal(t, 40, a.N())
				assert.Equal(t, src.vals, a.Triangle())

				v, err := a.Get(3, 9)
				require.NoError(t, err)
				assert.Equal(t, src.vals[matrix.Index(40, 3, 9)], v)

				_, err = a.Get(9, 3)
				assert.ErrorIs(t, err, matrix.ErrOutOfRange)
			})
		}
	}
}

func TestBlockSizeOption(t *testing.T) {
	assert.Equal(t, 1000, newOptions(WithBlockSize(1000)).blockSize)
	assert.Equal(t, 1000, newOptions(WithBlockSize(1007)).blockSize)
	assert.Equal(t, DefaultBlockSize, newOptions(WithBlockSize(5)).blockSize)
	assert.Equal(t, DefaultBlockSize, newOptions().blockSize)
}

func TestCompressionShrinks(t *testing.T) {
	src, ids := newTriangle(60)

	var raw, packed bytes.Buffer
	_, err := Write(&raw, src, ids, "d", WithCompression(CompressionNone))
	require.NoError(t, err)
	_, err = Write(&packed, src, ids, "d", WithCompression(CompressionZSTD))
	require.NoError(t, err)
	assert.Less(t, packed.Len(), raw.Len())
}

func TestRead_DetectsCorruption(t *testing.T) {
	src, ids := newTriangle(20)

	for _, comp := range []Compression{CompressionNone, CompressionZSTD} {
		t.Run(comp.String(), func(t *testing.T) {
			var buf bytes.Buffer
			_, err := Write(&buf, src, ids, "d", WithCompression(comp))
			require.NoError(t, err)

			data := buf.Bytes()
			data[len(data)-3] ^= 0xFF

			_, err = Read(bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestRead_Truncated(t *testing.T) {
	src, ids := newTriangle(20)
	var buf bytes.Buffer
	_, err := Write(&buf, src, ids, "d", WithCompression(CompressionNone))
	require.NoError(t, err)

	_, err = Read(bytes.NewReader(buf.Bytes()[:buf.Len()-10]))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestReadHeader_Errors(t *testing.T) {
	_, _, err := ReadHeader(bytes.NewReader([]byte("NOPE\x01\x00")))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, _, err = ReadHeader(bytes.NewReader([]byte("SQ")))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, _, err = ReadHeader(bytes.NewReader([]byte("SQDM\x09\x00")))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, _, err = ReadHeader(bytes.NewReader([]byte("SQDM\x01\x03xml")))
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestWrite_IDCount(t *testing.T) {
	src, ids := newTriangle(5)
	_, err := Write(&bytes.Buffer{}, src, ids[:4], "d")
	assert.ErrorIs(t, err, ErrIDCount)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("gzip")
	assert.ErrorIs(t, err, ErrUnknownCompression)
	assert.Equal(t, "Unknown(9)", Compression(9).String())
}

func TestWrite_FromMatrix(t *testing.T) {
	m, err := matrix.Create(filepath.Join(t.TempDir(), "m.dat"), 3)
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.Set(0, 1, 1.5))
	require.NoError(t, m.Set(0, 2, 2.5))
	require.NoError(t, m.Set(1, 2, 3.5))

	var buf bytes.Buffer
	_, err = Write(&buf, m, []string{"a", "b", "c"}, "edit distance")
	require.NoError(t, err)

	a, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1.5, 2.5, 0, 3.5, 0}, a.Values)
	assert.Equal(t, []string{"a", "b", "c"}, a.Header.IDs)
	assert.Equal(t, "edit distance", a.Header.Description)
}

func TestPublishFetch(t *testing.T) {
	ctx := context.Background()
	src, ids := newTriangle(12)

	for name, store := range map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	} {
		t.Run(name, func(t *testing.T) {
			hdr, err := Publish(ctx, store, "runs/m.sqdm", src, ids, "kmer", WithCompression(CompressionLZ4))
			require.NoError(t, err)
			assert.Equal(t, "lz4", hdr.Compression)

			a, err := Fetch(ctx, store, "runs/m.sqdm")
			require.NoError(t, err)
			assert.Equal(t, src.vals, a.Values)

			_, err = Publish(ctx, store, "runs/bad.sqdm", src, ids[:1], "kmer")
			assert.ErrorIs(t, err, ErrIDCount)

			names, err := store.List(ctx, "runs/")
			require.NoError(t, err)
			assert.Equal(t, []string{"runs/m.sqdm"}, names)

			_, err = Fetch(ctx, store, "runs/bad.sqdm")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}
