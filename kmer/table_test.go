package kmer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Counts(t *testing.T) {
	c, _ := NewCodec(2)

	tbl, err := Build(c, "AAAC")
	require.NoError(t, err)

	aa, _ := c.Encode("AA")
	ac, _ := c.Encode("AC")
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 3, tbl.Total())
	assert.Equal(t, uint32(2), tbl.Count(aa))
	assert.Equal(t, uint32(1), tbl.Count(ac))
	assert.InDelta(t, math.Sqrt(5), tbl.Norm(), 1e-12)

	var sum uint32
	for _, n := range tbl.All() {
		sum += n
	}
	assert.Equal(t, uint32(3), sum)
}

func TestBuild_ExactlyK(t *testing.T) {
	c, _ := NewCodec(4)
	tbl, err := Build(c, "ACGT")
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Total())
}

func TestBuild_ShorterThanK(t *testing.T) {
	c, _ := NewCodec(5)
	tbl, err := Build(c, "ACG")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 0.0, tbl.Norm())
}

func TestBuild_InvalidBase(t *testing.T) {
	c, _ := NewCodec(2)
	_, err := Build(c, "ACNGT")
	require.ErrorIs(t, err, ErrInvalidBase)

	var be *BaseError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 2, be.Pos)
}

func TestTable_DotAndDistance(t *testing.T) {
	c, _ := NewCodec(2)
	a, _ := Build(c, "AAAC") // AA:2 AC:1
	b, _ := Build(c, "AACC") // AA:1 AC:1 CC:1

	assert.Equal(t, 3.0, a.Dot(b))
	assert.Equal(t, a.Dot(b), b.Dot(a))

	// (2-1)^2 + (1-1)^2 + 1^2
	assert.Equal(t, 2.0, a.SquaredDistance(b))
	assert.Equal(t, a.SquaredDistance(b), b.SquaredDistance(a))
	assert.Equal(t, 0.0, a.SquaredDistance(a))
}

func TestTable_SizeBytes(t *testing.T) {
	c, _ := NewCodec(2)
	small, _ := Build(c, "AAA")
	large, _ := Build(c, "ACGTACGTTGCA")
	assert.Greater(t, large.SizeBytes(), small.SizeBytes())
}
