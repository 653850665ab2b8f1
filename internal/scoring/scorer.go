// Package scoring computes the per-derived-variable score frame from the
// out-of-fold cross frame: univariate significance, effect size and the
// type-aware adaptive threshold.
package scoring

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"gotreat/domain/treatment"
)

// Score builds one ScoreRow per derived variable. cols[i] holds the
// cross-frame values of descs[i]; y is the 0/1 outcome aligned to the rows.
//
// Significance comes from the F test of the one-variable linear regression
// of y on the derived column: F = R²/(1−R²)·(n−2) against F(1, n−2). Under
// pure noise p-values are uniform, so the per-type threshold
// 1/(typesPresent · countOfType) admits about one false positive across the
// whole catalogue.
func Score(descs []treatment.VariableDescriptor, cols [][]float64, y []float64) treatment.ScoreFrame {
	thresholds := Thresholds(descs)
	out := make(treatment.ScoreFrame, 0, len(descs))
	for i, desc := range descs {
		rsq, sig, moves := scoreOne(cols[i], y)
		threshold := thresholds[desc.Code]
		out = append(out, treatment.ScoreRow{
			Variable:     desc.Name,
			Origin:       desc.Origin,
			Code:         desc.Code,
			RSquared:     rsq,
			Significance: sig,
			Moves:        moves,
			Threshold:    threshold,
			Recommended:  moves && sig < threshold,
		})
	}
	return out
}

// Thresholds computes the adaptive per-code-type significance threshold
// for a descriptor catalogue: 1/(distinct code types present * count of
// variables of that type). More variables of a type lowers its threshold.
func Thresholds(descs []treatment.VariableDescriptor) map[treatment.CodeType]float64 {
	counts := make(map[treatment.CodeType]int)
	for _, d := range descs {
		counts[d.Code]++
	}
	types := len(counts)
	out := make(map[treatment.CodeType]float64, types)
	for code, n := range counts {
		out[code] = 1.0 / (float64(types) * float64(n))
	}
	return out
}

// scoreOne computes (R², significance, moves) for one cross-frame column
func scoreOne(x, y []float64) (rsq, sig float64, moves bool) {
	n := len(x)
	varX, _ := mstats.Variance(x)
	moves = varX > 0

	if n < 3 || !moves {
		return 0, 1, moves
	}
	varY := stat.Variance(y, nil)
	if varY == 0 {
		return 0, 1, moves
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, 1, moves
	}
	rsq = r * r
	if rsq >= 1 {
		return 1, 0, moves
	}

	df2 := float64(n - 2)
	f := rsq / (1 - rsq) * df2
	fDist := distuv.F{D1: 1, D2: df2}
	sig = 1 - fDist.CDF(f)
	if math.IsNaN(sig) {
		sig = 1
	}
	return rsq, sig, moves
}
