package kmer

import (
	"errors"
	"fmt"
)

const (
	// MinK is the smallest supported k; prefixes and suffixes need k >= 2.
	MinK = 2
	// MaxK is the largest k that fits a uint64.
	MaxK = 32
	// DefaultK is used when no k is configured.
	DefaultK = 11

	bitsPerBase = 2
	baseMask    = 0x3
)

const bases = "ACGT"

var (
	// ErrInvalidK is returned for k outside [MinK, MaxK].
	ErrInvalidK = errors.New("invalid k")

	// ErrInvalidBase is returned for any symbol other than A, C, G, T.
	ErrInvalidBase = errors.New("invalid base")

	// ErrLength is returned when a string does not have exactly k bases.
	ErrLength = errors.New("k-mer length mismatch")
)

// BaseError reports an invalid symbol and its position.
type BaseError struct {
	Base byte
	Pos  int
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("invalid base %q at position %d", e.Base, e.Pos)
}

func (e *BaseError) Unwrap() error { return ErrInvalidBase }

// Kmer is a packed k-mer. Its meaning depends on the Codec that built it.
type Kmer uint64

// BaseCode returns the 2-bit code of a base, case-insensitively.
func BaseCode(b byte) (uint64, bool) {
	switch b {
	case 'A', 'a':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'G', 'g':
		return 2, true
	case 'T', 't':
		return 3, true
	default:
		return 0, false
	}
}

// Codec packs and unpacks k-mers of one fixed length.
type Codec struct {
	k    int
	mask uint64
}

// NewCodec returns a codec for k-mers of length k.
func NewCodec(k int) (Codec, error) {
	if k < MinK || k > MaxK {
		return Codec{}, fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidK, k, MinK, MaxK)
	}
	return Codec{k: k, mask: maskFor(k)}, nil
}

func maskFor(k int) uint64 {
	if k >= MaxK {
		return ^uint64(0)
	}
	return uint64(1)<<(uint(k)*bitsPerBase) - 1
}

// K returns the k-mer length.
func (c Codec) K() int { return c.k }

// Max returns the largest packed value (all T).
func (c Codec) Max() Kmer { return Kmer(c.mask) }

// Encode packs s, which must hold exactly k bases.
func (c Codec) Encode(s string) (Kmer, error) {
	if len(s) != c.k {
		return 0, fmt.Errorf("%w: %q has %d bases, want %d", ErrLength, s, len(s), c.k)
	}

	var v uint64
	for i := 0; i < len(s); i++ {
		code, ok := BaseCode(s[i])
		if !ok {
			return 0, &BaseError{Base: s[i], Pos: i}
		}
		v = v<<bitsPerBase | code
	}
	return Kmer(v), nil
}

// Decode unpacks km into an upper-case string of k bases. Bits above the
// low 2k are ignored.
func (c Codec) Decode(km Kmer) string {
	buf := make([]byte, c.k)
	v := uint64(km)
	for i := c.k - 1; i >= 0; i-- {
		buf[i] = bases[v&baseMask]
		v >>= bitsPerBase
	}
	return string(buf)
}

// Prefix drops the last base, giving a (k-1)-mer.
func (c Codec) Prefix(km Kmer) Kmer {
	return Kmer((uint64(km) & c.mask) >> bitsPerBase)
}

// Suffix drops the first base, giving a (k-1)-mer.
func (c Codec) Suffix(km Kmer) Kmer {
	return Kmer(uint64(km) & maskFor(c.k-1))
}

// Append shifts km left by one base, drops the first base and adds b at the end.
func (c Codec) Append(km Kmer, b byte) (Kmer, error) {
	code, ok := BaseCode(b)
	if !ok {
		return km, &BaseError{Base: b, Pos: -1}
	}
	return Kmer((uint64(km)<<bitsPerBase | code) & c.mask), nil
}

// Next returns the numerically following k-mer. wrapped is true when km was
// the last k-mer and the result is back at all A.
func (c Codec) Next(km Kmer) (next Kmer, wrapped bool) {
	n := (uint64(km) + 1) & c.mask
	return Kmer(n), n == 0
}
