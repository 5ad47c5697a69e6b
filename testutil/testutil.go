package testutil

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"

	"github.com/hupe1980/seqdist/matrix"
	"github.com/hupe1980/seqdist/sequence"
)

// Bases are the nucleotides drawn by the generators.
const Bases = "ACGT"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// DNA returns a random sequence of n bases.
func (r *RNG) DNA(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	for i := range b {
		b[i] = Bases[r.rand.Intn(len(Bases))]
	}
	return string(b)
}

// Mutate returns a copy of seq where every base is replaced by a random
// different base with probability rate.
func (r *RNG) Mutate(seq string, rate float64) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := []byte(seq)
	for i := range b {
		if r.rand.Float64() >= rate {
			continue
		}
		for {
			c := Bases[r.rand.Intn(len(Bases))]
			if c != b[i] {
				b[i] = c
				break
			}
		}
	}
	return string(b)
}

// Records returns n records with IDs seq0..seq(n-1) and lengths drawn
// uniformly from [minLen, maxLen].
func (r *RNG) Records(n, minLen, maxLen int) []sequence.Record {
	recs := make([]sequence.Record, n)
	for i := range recs {
		l := minLen
		if maxLen > minLen {
			l += r.Intn(maxLen - minLen + 1)
		}
		recs[i] = sequence.Record{ID: fmt.Sprintf("seq%d", i), Seq: r.DNA(l)}
	}
	return recs
}

// WriteFASTA writes recs in FASTA format with lines of at most width bases.
// width <= 0 writes each sequence on one line.
func WriteFASTA(w io.Writer, recs []sequence.Record, width int) error {
	bw := bufio.NewWriter(w)
	for _, rec := range recs {
		fmt.Fprintf(bw, ">%s\n", rec.ID)
		seq := rec.Seq
		wd := width
		if wd <= 0 {
			wd = max(len(seq), 1)
		}
		for len(seq) > wd {
			bw.WriteString(seq[:wd])
			bw.WriteByte('\n')
			seq = seq[wd:]
		}
		bw.WriteString(seq)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFASTAFile writes recs to path.
func WriteFASTAFile(path string, recs []sequence.Record, width int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteFASTA(f, recs, width); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReferenceMatrix computes the triangle of recs serially with compare.
func ReferenceMatrix(recs []sequence.Record, compare func(a, b sequence.Record) (float64, error)) ([]float64, error) {
	n := len(recs)
	out := make([]float64, matrix.VecSize(n))
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d, err := compare(recs[i], recs[j])
			if err != nil {
				return nil, fmt.Errorf("compare %d, %d: %w", i, j, err)
			}
			out[matrix.Index(n, i, j)] = d
		}
	}
	return out, nil
}
