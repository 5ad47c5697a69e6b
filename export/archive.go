package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/seqdist/codec"
	"github.com/hupe1980/seqdist/internal/hash"
	"github.com/hupe1980/seqdist/matrix"
)

// Magic opens every archive.
const Magic = "SQDM"

// Version is the archive format version written by this package.
const Version uint8 = 1

// DefaultBlockSize is the raw size of a block in bytes.
const DefaultBlockSize = 256 * 1024

var (
	// ErrBadMagic is returned when the stream is not an archive.
	ErrBadMagic = errors.New("export: not a matrix archive")
	// ErrUnsupportedVersion is returned for archives from a newer format.
	ErrUnsupportedVersion = errors.New("export: unsupported archive version")
	// ErrUnknownCodec is returned when the header codec is not available.
	ErrUnknownCodec = errors.New("export: unknown header codec")
	// ErrCorrupt is returned when blocks do not match the header.
	ErrCorrupt = errors.New("export: corrupt archive")
	// ErrIDCount is returned when the ID list does not match N.
	ErrIDCount = errors.New("export: id count does not match matrix size")
)

// Header describes the archived matrix.
type Header struct {
	N           int      `json:"n" msgpack:"n"`
	Description string   `json:"description" msgpack:"description"`
	IDs         []string `json:"ids" msgpack:"ids"`
	Compression string   `json:"compression" msgpack:"compression"`
	Blocks      int      `json:"blocks" msgpack:"blocks"`
	BlockSize   int      `json:"block_size" msgpack:"block_size"`
	Checksum    uint32   `json:"crc32c" msgpack:"crc32c"`
}

// Source is what an archive is written from. *matrix.Matrix satisfies it.
type Source interface {
	N() int
	Triangle() []float64
}

type options struct {
	compression Compression
	codec       codec.Codec
	blockSize   int
}

// Option configures a Writer.
type Option func(*options)

// WithCompression selects the block compression. Default: CompressionZSTD.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec selects the header codec. Default: codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithBlockSize sets the raw block size. It is rounded down to a multiple of 8.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

func newOptions(optFns ...Option) options {
	o := options{
		compression: CompressionZSTD,
		codec:       codec.Default,
		blockSize:   DefaultBlockSize,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	o.blockSize -= o.blockSize % 8
	if o.blockSize <= 0 {
		o.blockSize = DefaultBlockSize
	}
	return o
}

func encodeValues(dst []byte, vals []float64) {
	for i, v := range vals {
		binary.LittleEndian.PutUint64(dst[i*8:], math.Float64bits(v))
	}
}

// Write streams src as an archive to w and returns the header it wrote.
// ids must hold one entry per row.
func Write(w io.Writer, src Source, ids []string, description string, optFns ...Option) (*Header, error) {
	o := newOptions(optFns...)
	n := src.N()
	if len(ids) != n {
		return nil, fmt.Errorf("%w: %d ids for n = %d", ErrIDCount, len(ids), n)
	}
	if _, ok := codec.ByName(o.codec.Name()); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, o.codec.Name())
	}
	if o.compression > CompressionZSTD {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, o.compression)
	}

	tri := src.Triangle()
	perBlock := o.blockSize / 8

	crc := hash.NewCRC32C()
	buf := make([]byte, o.blockSize)
	for off := 0; off < len(tri); off += perBlock {
		chunk := tri[off:min(off+perBlock, len(tri))]
		encodeValues(buf, chunk)
		_, _ = crc.Write(buf[:len(chunk)*8])
	}

	hdr := &Header{
		N:           n,
		Description: description,
		IDs:         ids,
		Compression: o.compression.String(),
		Blocks:      (len(tri) + perBlock - 1) / perBlock,
		BlockSize:   o.blockSize,
		Checksum:    crc.Sum32(),
	}
	hdrBytes, err := o.codec.Marshal(hdr)
	if err != nil {
		return nil, fmt.Errorf("export: encode header: %w", err)
	}

	bw := bufio.NewWriter(w)
	name := o.codec.Name()
	bw.WriteString(Magic)
	bw.WriteByte(Version)
	bw.WriteByte(uint8(len(name)))
	bw.WriteString(name)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(hdrBytes)))
	bw.Write(lenBuf[:])
	bw.Write(hdrBytes)

	for off := 0; off < len(tri); off += perBlock {
		chunk := tri[off:min(off+perBlock, len(tri))]
		encodeValues(buf, chunk)
		block, err := compressBlock(buf[:len(chunk)*8], o.compression)
		if err != nil {
			return nil, err
		}
		if _, err := bw.Write(block); err != nil {
			return nil, err
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return hdr, nil
}

// Archive is a fully decoded archive.
type Archive struct {
	Header Header
	Values []float64
}

// N returns the matrix dimension.
func (a *Archive) N() int { return a.Header.N }

// Triangle returns the values in slot order.
func (a *Archive) Triangle() []float64 { return a.Values }

// Get returns cell (i, j), i <= j.
func (a *Archive) Get(i, j int) (float64, error) {
	if i < 0 || i > j || j >= a.Header.N {
		return 0, &matrix.IndexError{I: i, J: j, N: a.Header.N}
	}
	return a.Values[matrix.Index(a.Header.N, i, j)], nil
}

// ReadHeader reads the preamble and header, leaving r positioned at the
// first block.
func ReadHeader(r io.Reader) (*Header, Compression, error) {
	var pre [len(Magic) + 2]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if string(pre[:len(Magic)]) != Magic {
		return nil, 0, ErrBadMagic
	}
	if v := pre[len(Magic)]; v != Version {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	name := make([]byte, pre[len(Magic)+1])
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, 0, fmt.Errorf("%w: codec name: %v", ErrCorrupt, err)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: header length: %v", ErrCorrupt, err)
	}
	hdrBytes := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(r, hdrBytes); err != nil {
		return nil, 0, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}

	var hdr Header
	if err := c.Unmarshal(hdrBytes, &hdr); err != nil {
		return nil, 0, fmt.Errorf("%w: decode header: %v", ErrCorrupt, err)
	}
	comp, err := ParseCompression(hdr.Compression)
	if err != nil {
		return nil, 0, err
	}
	if hdr.N < 1 || len(hdr.IDs) != hdr.N {
		return nil, 0, fmt.Errorf("%w: n = %d with %d ids", ErrCorrupt, hdr.N, len(hdr.IDs))
	}
	return &hdr, comp, nil
}

// Read decodes a whole archive and verifies its checksum.
func Read(r io.Reader) (*Archive, error) {
	br := bufio.NewReader(r)
	hdr, comp, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	want := matrix.VecSize(hdr.N)
	vals := make([]float64, 0, want)
	crc := hash.NewCRC32C()

	var bh [blockHeaderSize]byte
	for b := 0; b < hdr.Blocks; b++ {
		if _, err := io.ReadFull(br, bh[:]); err != nil {
			return nil, fmt.Errorf("%w: block %d header: %v", ErrCorrupt, b, err)
		}
		rawSize := binary.LittleEndian.Uint32(bh[0:])
		compSize := binary.LittleEndian.Uint32(bh[4:])
		if rawSize%8 != 0 || int(rawSize)/8 > want-len(vals) {
			return nil, fmt.Errorf("%w: block %d size %d", ErrCorrupt, b, rawSize)
		}

		size := rawSize
		if compSize != 0 {
			size = compSize
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrCorrupt, b, err)
		}

		raw := payload
		if compSize != 0 {
			if raw, err = decompressBlock(payload, rawSize, comp); err != nil {
				return nil, err
			}
		}
		_, _ = crc.Write(raw)
		for i := 0; i < len(raw); i += 8 {
			vals = append(vals, math.Float64frombits(binary.LittleEndian.Uint64(raw[i:])))
		}
	}

	if len(vals) != want {
		return nil, fmt.Errorf("%w: %d values, want %d", ErrCorrupt, len(vals), want)
	}
	if sum := crc.Sum32(); sum != hdr.Checksum {
		return nil, fmt.Errorf("%w: checksum %08x, want %08x", ErrCorrupt, sum, hdr.Checksum)
	}
	return &Archive{Header: *hdr, Values: vals}, nil
}
