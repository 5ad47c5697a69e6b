package distance

import (
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/hupe1980/seqdist/kmer"
	"github.com/hupe1980/seqdist/sequence"
)

// Edit is the Levenshtein distance between raw sequence strings.
type Edit struct {
	costs *CostMatrix
}

// NewEdit returns an edit measure. A nil cost matrix means unit cost.
func NewEdit(costs *CostMatrix) *Edit {
	return &Edit{costs: costs}
}

// Costs returns the cost matrix, or nil for unit cost.
func (e *Edit) Costs() *CostMatrix { return e.costs }

// Compare implements Measure.
func (e *Edit) Compare(a, b sequence.Record) (float64, error) {
	if e.costs == nil {
		return float64(levenshtein.ComputeDistance(a.Seq, b.Seq)), nil
	}

	d, err := weightedEdit(a.Seq, b.Seq, e.costs)
	if err != nil {
		return 0, fmt.Errorf("compare %q and %q: %w", a.ID, b.ID, err)
	}
	return d, nil
}

// weightedEdit is the classic two-row dynamic program with per-pair
// substitution costs and a uniform indel cost.
func weightedEdit(a, b string, cm *CostMatrix) (float64, error) {
	ia, err := toCostIndices(a)
	if err != nil {
		return 0, err
	}
	ib, err := toCostIndices(b)
	if err != nil {
		return 0, err
	}

	indel := cm.indel
	prev := make([]float64, len(ib)+1)
	curr := make([]float64, len(ib)+1)
	for j := range prev {
		prev[j] = float64(j) * indel
	}

	for i := 1; i <= len(ia); i++ {
		curr[0] = float64(i) * indel
		for j := 1; j <= len(ib); j++ {
			sub := prev[j-1] + cm.cost[ia[i-1]][ib[j-1]]
			del := prev[j] + indel
			ins := curr[j-1] + indel
			curr[j] = min(sub, del, ins)
		}
		prev, curr = curr, prev
	}

	return prev[len(ib)], nil
}

func toCostIndices(s string) ([]uint8, error) {
	out := make([]uint8, len(s))
	for i := 0; i < len(s); i++ {
		idx, ok := kmer.BaseCode(s[i])
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownBase, s[i], i)
		}
		out[i] = uint8(idx)
	}
	return out, nil
}

// Describe implements Measure.
func (e *Edit) Describe() string {
	if e.costs == nil {
		return "Levenshtein distance: unit cost per operation"
	}
	return fmt.Sprintf("Levenshtein distance: custom cost matrix, indel cost %g\n%s", e.costs.indel, e.costs)
}

// Metric implements Measure.
func (e *Edit) Metric() Metric { return MetricEdit }
