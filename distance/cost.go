package distance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/seqdist/kmer"
	"github.com/hupe1980/seqdist/matrix"
)

// CostBases is the base order of cost matrix rows and columns. It matches
// the 2-bit base codes of kmer.BaseCode.
const CostBases = "acgt"

const nbases = len(CostBases)

var (
	// ErrCostMatrixFormat is returned for missing, unparsable or surplus entries.
	ErrCostMatrixFormat = errors.New("malformed cost matrix")

	// ErrAsymmetricCost is returned when cost[i][j] != cost[j][i].
	ErrAsymmetricCost = errors.New("cost matrix is asymmetric")

	// ErrNegativeCost is returned for a negative entry.
	ErrNegativeCost = errors.New("cost matrix has a negative entry")

	// ErrUnknownBase is returned when a weighted comparison meets a base
	// outside the cost matrix alphabet.
	ErrUnknownBase = errors.New("base not in cost matrix")
)

// CostMatrix holds substitution costs over a, c, g, t. Insertions and
// deletions cost the largest entry.
type CostMatrix struct {
	cost  [nbases][nbases]float64
	indel float64
}

// LoadCostMatrix reads a cost matrix file.
func LoadCostMatrix(path string) (*CostMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cm, err := ParseCostMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("cost matrix %s: %w", path, err)
	}
	return cm, nil
}

// ParseCostMatrix reads 16 whitespace-separated numbers in row-major acgt
// order and validates them.
func ParseCostMatrix(r io.Reader) (*CostMatrix, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var cm CostMatrix
	for n := 0; n < nbases*nbases; n++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: expected %d entries, got %d", ErrCostMatrixFormat, nbases*nbases, n)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d %q is not a number", ErrCostMatrixFormat, n, sc.Text())
		}
		cm.cost[n/nbases][n%nbases] = v
	}

	if sc.Scan() {
		return nil, fmt.Errorf("%w: left-over data starting with %q", ErrCostMatrixFormat, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for i := 0; i < nbases; i++ {
		for j := i; j < nbases; j++ {
			if cm.cost[i][j] != cm.cost[j][i] {
				return nil, fmt.Errorf("%w: %c%c=%g but %c%c=%g", ErrAsymmetricCost,
					CostBases[i], CostBases[j], cm.cost[i][j], CostBases[j], CostBases[i], cm.cost[j][i])
			}
			if cm.cost[i][j] < 0 {
				return nil, fmt.Errorf("%w: %c%c=%g", ErrNegativeCost, CostBases[i], CostBases[j], cm.cost[i][j])
			}
			cm.indel = max(cm.indel, cm.cost[i][j])
		}
	}

	return &cm, nil
}

// Substitution returns the cost of replacing base a with base b.
func (cm *CostMatrix) Substitution(a, b byte) (float64, error) {
	i, ok := kmer.BaseCode(a)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBase, a)
	}
	j, ok := kmer.BaseCode(b)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBase, b)
	}
	return cm.cost[i][j], nil
}

// Indel returns the insertion/deletion cost.
func (cm *CostMatrix) Indel() float64 { return cm.indel }

// ZeroOffDiagonal returns the base pairs (i < j) whose substitution is free.
// Such matrices are legal but usually a mistake.
func (cm *CostMatrix) ZeroOffDiagonal() [][2]byte {
	var out [][2]byte
	for i := 0; i < nbases; i++ {
		for j := i + 1; j < nbases; j++ {
			if cm.cost[i][j] == 0 {
				out = append(out, [2]byte{CostBases[i], CostBases[j]})
			}
		}
	}
	return out
}

// String renders the matrix with a header row, one row per base.
func (cm *CostMatrix) String() string {
	width := matrix.PrintWidth(cm.indel)

	var b strings.Builder
	b.WriteString(" ")
	for j := 0; j < nbases; j++ {
		fmt.Fprintf(&b, "%*c", width, CostBases[j])
		if j < nbases-1 {
			b.WriteString("  ")
		}
	}
	b.WriteByte('\n')
	for i := 0; i < nbases; i++ {
		b.WriteByte(CostBases[i])
		for j := 0; j < nbases; j++ {
			fmt.Fprintf(&b, "%*.2f", width, cm.cost[i][j])
			if j < nbases-1 {
				b.WriteString(", ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
