package kmer

import (
	"iter"
	"maps"
	"math"
)

// Table holds k-mer occurrence counts of one sequence plus its L2 norm.
// A Table is immutable once built.
type Table struct {
	counts map[Kmer]uint32
	norm   float64
	total  int
}

// Build slides a window of width k over seq, positions 0 through len(seq)-k.
// Sequences shorter than k give an empty table.
func Build(c Codec, seq string) (*Table, error) {
	t := &Table{counts: make(map[Kmer]uint32)}
	if len(seq) < c.k {
		return t, nil
	}

	var km Kmer
	for i := 0; i < len(seq); i++ {
		next, err := c.Append(km, seq[i])
		if err != nil {
			return nil, &BaseError{Base: seq[i], Pos: i}
		}
		km = next
		if i >= c.k-1 {
			t.counts[km]++
			t.total++
		}
	}

	var sum float64
	for _, n := range t.counts {
		f := float64(n)
		sum += f * f
	}
	t.norm = math.Sqrt(sum)

	return t, nil
}

// Len returns the number of distinct k-mers.
func (t *Table) Len() int { return len(t.counts) }

// Total returns the number of k-mer windows counted.
func (t *Table) Total() int { return t.total }

// Count returns the occurrences of km.
func (t *Table) Count(km Kmer) uint32 { return t.counts[km] }

// Norm returns sqrt(sum of squared counts).
func (t *Table) Norm() float64 { return t.norm }

// All iterates over (k-mer, count) pairs in unspecified order.
func (t *Table) All() iter.Seq2[Kmer, uint32] { return maps.All(t.counts) }

// Dot returns the sum of count products over k-mers present in both tables.
func (t *Table) Dot(o *Table) float64 {
	small, large := t, o
	if len(large.counts) < len(small.counts) {
		small, large = large, small
	}

	var dot float64
	for km, n := range small.counts {
		if m, ok := large.counts[km]; ok {
			dot += float64(n) * float64(m)
		}
	}
	return dot
}

// SquaredDistance returns the squared Euclidean distance between the two
// frequency vectors.
func (t *Table) SquaredDistance(o *Table) float64 {
	var dist float64
	for km, n := range t.counts {
		d := float64(n) - float64(o.counts[km])
		dist += d * d
	}
	for km, m := range o.counts {
		if _, ok := t.counts[km]; !ok {
			f := float64(m)
			dist += f * f
		}
	}
	return dist
}

// Approximate per-entry footprint of a Go map[uint64]uint32.
const entryBytes = 24

// SizeBytes estimates the memory held by the table.
func (t *Table) SizeBytes() int64 {
	return int64(len(t.counts))*entryBytes + 64
}
