// Package sequence holds the immutable sequence records a run compares and
// loads them from FASTA/FASTQ files.
package sequence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/shenwei356/bio/seqio/fastx"
)

// ErrNoSequences is returned when an input file holds no records.
var ErrNoSequences = errors.New("no sequences in input")

// Record is one (identifier, sequence) pair.
type Record struct {
	ID  string
	Seq string
}

// Less orders records lexicographically by sequence.
func Less(a, b Record) bool {
	return a.Seq < b.Seq
}

// Sort orders records by sequence, keeping the input order of equal sequences.
func Sort(recs []Record) {
	slices.SortStableFunc(recs, func(a, b Record) int {
		return strings.Compare(a.Seq, b.Seq)
	})
}

// Loader reads all records of one input.
type Loader func(path string) ([]Record, error)

// Load reads every record of a FASTA/FASTQ file (plain or compressed) in file
// order. Multi-line sequences are joined and upper-cased.
func Load(path string) ([]Record, error) {
	reader, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	var recs []Record
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read sequence %d in %s: %w", i, path, err)
		}

		recs = append(recs, Record{
			ID:  string(record.ID),
			Seq: string(bytes.ToUpper(record.Seq.Seq)),
		})
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSequences)
	}
	return recs, nil
}
