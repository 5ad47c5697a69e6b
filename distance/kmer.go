package distance

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/seqdist/kmer"
	"github.com/hupe1980/seqdist/sequence"
)

const (
	halfPi = math.Pi / 2

	// Results at or below this are floating-point noise from identical inputs.
	cosineSnap = 2.09629e-10
)

type kmerMeasure struct {
	index *kmer.Index
}

// Prepare builds the frequency table of every record before comparisons start.
func (m kmerMeasure) Prepare(ctx context.Context, recs []sequence.Record) error {
	seqs := make([]string, 0, len(recs))
	for _, r := range recs {
		if len(r.Seq) == 0 {
			return fmt.Errorf("record %q: %w", r.ID, ErrEmptySequence)
		}
		seqs = append(seqs, r.Seq)
	}
	return m.index.Prepopulate(ctx, seqs)
}

// Index returns the underlying k-mer index.
func (m kmerMeasure) Index() *kmer.Index { return m.index }

func (m kmerMeasure) tables(a, b sequence.Record) (*kmer.Table, *kmer.Table, error) {
	if len(a.Seq) == 0 {
		return nil, nil, fmt.Errorf("record %q: %w", a.ID, ErrEmptySequence)
	}
	if len(b.Seq) == 0 {
		return nil, nil, fmt.Errorf("record %q: %w", b.ID, ErrEmptySequence)
	}

	ta, err := m.index.Get(a.Seq)
	if err != nil {
		return nil, nil, fmt.Errorf("record %q: %w", a.ID, err)
	}
	tb, err := m.index.Get(b.Seq)
	if err != nil {
		return nil, nil, fmt.Errorf("record %q: %w", b.ID, err)
	}
	return ta, tb, nil
}

// Cosine is the angular distance between k-mer frequency vectors,
// acos(cos)/(pi/2), in [0, 1].
type Cosine struct {
	kmerMeasure
}

// NewCosine returns a cosine measure over ix.
func NewCosine(ix *kmer.Index) *Cosine {
	return &Cosine{kmerMeasure{index: ix}}
}

// Compare implements Measure.
func (c *Cosine) Compare(a, b sequence.Record) (float64, error) {
	ta, tb, err := c.tables(a, b)
	if err != nil {
		return 0, err
	}
	return cosineDistance(ta, tb), nil
}

// cosineDistance returns acos(cos(a, b))/(pi/2), evaluated as
// 2*atan2(|a'-b'|, |a'+b'|) over the unit vectors a', b' so that equal
// frequency vectors give exactly 0.
func cosineDistance(ta, tb *kmer.Table) float64 {
	switch {
	case ta.Len() == 0 && tb.Len() == 0:
		return 0
	case ta.Len() == 0 || tb.Len() == 0:
		return 1
	}
	if ta == tb {
		return 0
	}

	na, nb := ta.Norm(), tb.Norm()

	var diff, sum float64
	for km, n := range ta.All() {
		x := float64(n) / na
		y := float64(tb.Count(km)) / nb
		diff += (x - y) * (x - y)
		sum += (x + y) * (x + y)
	}
	for km, m := range tb.All() {
		if ta.Count(km) != 0 {
			continue
		}
		y := float64(m) / nb
		diff += y * y
		sum += y * y
	}

	d := 2 * math.Atan2(math.Sqrt(diff), math.Sqrt(sum)) / halfPi
	d = max(0, min(1, d))
	if d <= cosineSnap {
		return 0
	}
	return d
}

// Describe implements Measure.
func (c *Cosine) Describe() string {
	return fmt.Sprintf("kmer distance: k = %d, variant: cosine", c.index.K())
}

// Metric implements Measure.
func (c *Cosine) Metric() Metric { return MetricCosine }

// Euclidean is the squared Euclidean distance between k-mer frequency
// vectors. The square root is omitted.
type Euclidean struct {
	kmerMeasure
}

// NewEuclidean returns a squared Euclidean measure over ix.
func NewEuclidean(ix *kmer.Index) *Euclidean {
	return &Euclidean{kmerMeasure{index: ix}}
}

// Compare implements Measure.
func (e *Euclidean) Compare(a, b sequence.Record) (float64, error) {
	ta, tb, err := e.tables(a, b)
	if err != nil {
		return 0, err
	}
	return ta.SquaredDistance(tb), nil
}

// Describe implements Measure.
func (e *Euclidean) Describe() string {
	return fmt.Sprintf("kmer distance: k = %d, variant: Euclidean (squared)", e.index.K())
}

// Metric implements Measure.
func (e *Euclidean) Metric() Metric { return MetricEuclidean }
