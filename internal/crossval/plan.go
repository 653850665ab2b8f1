// Package crossval builds cross-validation fold plans and realizes
// leak-free out-of-fold derived columns from them.
package crossval

import (
	"math/rand"

	"gotreat/domain/treatment"
	"gotreat/internal/errors"
)

// Plan assigns every row to exactly one fold. Folds are disjoint, covering
// and balanced; the same seed reproduces the identical assignment.
type Plan struct {
	K          int   `json:"k"`
	Seed       int64 `json:"seed"`
	Assignment []int `json:"assignment"` // row index -> fold id in [0, K)
}

// BuildPlan partitions rowCount rows into k folds. The stratified strategy
// keeps the 0/1 outcome balance approximately equal across folds; y may be
// nil for the simple strategy.
func BuildPlan(rowCount, k int, seed int64, strategy treatment.SplitStrategy, y []float64) (Plan, error) {
	if k < 2 {
		return Plan{}, errors.ConfigInvalidf("fold count must be >= 2, got %d", k)
	}
	if rowCount < k {
		return Plan{}, errors.InsufficientDataf("cannot split %d rows into %d folds", rowCount, k)
	}
	rng := rand.New(rand.NewSource(seed))
	assignment := make([]int, rowCount)

	switch strategy {
	case treatment.SplitStratified:
		if len(y) != rowCount {
			return Plan{}, errors.ConfigInvalid("stratified split requires an outcome aligned to the rows")
		}
		// Round-robin within each class after a seeded shuffle, so each
		// fold sees close to the global positive rate.
		var posRows, negRows []int
		for i := 0; i < rowCount; i++ {
			if y[i] > 0.5 {
				posRows = append(posRows, i)
			} else {
				negRows = append(negRows, i)
			}
		}
		next := 0
		for _, class := range [][]int{posRows, negRows} {
			rng.Shuffle(len(class), func(a, b int) { class[a], class[b] = class[b], class[a] })
			for _, row := range class {
				assignment[row] = next % k
				next++
			}
		}
	default:
		perm := rng.Perm(rowCount)
		for pos, row := range perm {
			assignment[row] = pos % k
		}
	}

	return Plan{K: k, Seed: seed, Assignment: assignment}, nil
}

// FoldRows returns the row indices assigned to fold i
func (p Plan) FoldRows(i int) []int {
	var out []int
	for row, fold := range p.Assignment {
		if fold == i {
			out = append(out, row)
		}
	}
	return out
}

// ComplementRows returns the row indices NOT assigned to fold i
func (p Plan) ComplementRows(i int) []int {
	var out []int
	for row, fold := range p.Assignment {
		if fold != i {
			out = append(out, row)
		}
	}
	return out
}

// AllRows returns every row index in order
func (p Plan) AllRows() []int {
	out := make([]int, len(p.Assignment))
	for i := range out {
		out[i] = i
	}
	return out
}
