// Package testkit generates synthetic frames with known structure for
// exercising the design pipeline in tests.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"gotreat/domain/frame"
)

// OutcomeColumn is the outcome column name used by all generated frames
const OutcomeColumn = "y"

// PositiveValue is the positive outcome level used by all generated frames
const PositiveValue = "pos"

// NoiseFrame builds a frame whose candidate columns are pure noise relative
// to the outcome: numeric columns n_0..n_{nNum-1}, categorical columns
// c_0..c_{nCat-1} with 4 levels each, and an independent balanced outcome.
func NoiseFrame(rows, nNum, nCat int, seed int64) *frame.Frame {
	rng := rand.New(rand.NewSource(seed))
	f := frame.New(rows)

	for j := 0; j < nNum; j++ {
		vals := make([]float64, rows)
		for i := range vals {
			vals[i] = rng.NormFloat64()
		}
		mustAdd(f, frame.NumericColumn(fmt.Sprintf("n_%d", j), vals))
	}
	for j := 0; j < nCat; j++ {
		vals := make([]string, rows)
		for i := range vals {
			vals[i] = fmt.Sprintf("lvl_%d", rng.Intn(4))
		}
		mustAdd(f, frame.CategoricalColumn(fmt.Sprintf("c_%d", j), vals))
	}

	outcome := make([]string, rows)
	for i := range outcome {
		if rng.Float64() < 0.5 {
			outcome[i] = PositiveValue
		} else {
			outcome[i] = "neg"
		}
	}
	mustAdd(f, frame.CategoricalColumn(OutcomeColumn, outcome))
	return f
}

// LevelFrame builds the three-level categorical scenario: column xc over
// rows rows with levels level_0.5, level_1 and the missing token at the
// requested proportions, plus a balanced outcome with mild signal.
func LevelFrame(rows int, seed int64) *frame.Frame {
	rng := rand.New(rand.NewSource(seed))
	f := frame.New(rows)

	xc := make([]string, rows)
	outcome := make([]string, rows)
	for i := range xc {
		switch {
		case i < int(0.4*float64(rows)):
			xc[i] = "level_0.5"
		case i < int(0.7*float64(rows)):
			xc[i] = "level_1"
		default:
			xc[i] = "" // normalized to the missing token
		}
		p := 0.3
		if xc[i] == "level_1" {
			p = 0.7
		}
		if rng.Float64() < p {
			outcome[i] = PositiveValue
		} else {
			outcome[i] = "neg"
		}
	}
	mustAdd(f, frame.CategoricalColumn("xc", xc))
	mustAdd(f, frame.CategoricalColumn(OutcomeColumn, outcome))
	return f
}

// MissingNumericFrame builds a numeric column xn with missing cells at the
// given row indices and a balanced alternating outcome.
func MissingNumericFrame(rows int, missingAt []int, seed int64) *frame.Frame {
	rng := rand.New(rand.NewSource(seed))
	f := frame.New(rows)

	vals := make([]float64, rows)
	for i := range vals {
		vals[i] = rng.NormFloat64()*2 + 10
	}
	for _, i := range missingAt {
		vals[i] = math.NaN()
	}
	mustAdd(f, frame.NumericColumn("xn", vals))

	outcome := make([]string, rows)
	for i := range outcome {
		if i%2 == 0 {
			outcome[i] = PositiveValue
		} else {
			outcome[i] = "neg"
		}
	}
	mustAdd(f, frame.CategoricalColumn(OutcomeColumn, outcome))
	return f
}

// SignalFrame builds a frame where the categorical column "plan" and the
// numeric column "usage" both carry real signal about the outcome, next to
// one pure-noise column of each kind.
func SignalFrame(rows int, seed int64) *frame.Frame {
	rng := rand.New(rand.NewSource(seed))
	f := frame.New(rows)

	plans := []string{"basic", "plus", "premium"}
	planRates := map[string]float64{"basic": 0.15, "plus": 0.45, "premium": 0.8}

	plan := make([]string, rows)
	usage := make([]float64, rows)
	noiseNum := make([]float64, rows)
	noiseCat := make([]string, rows)
	outcome := make([]string, rows)

	for i := 0; i < rows; i++ {
		plan[i] = plans[rng.Intn(len(plans))]
		noiseNum[i] = rng.NormFloat64()
		noiseCat[i] = fmt.Sprintf("g_%d", rng.Intn(3))

		p := planRates[plan[i]]
		if rng.Float64() < p {
			outcome[i] = PositiveValue
			usage[i] = rng.NormFloat64() + 2.0
		} else {
			outcome[i] = "neg"
			usage[i] = rng.NormFloat64()
		}
	}

	mustAdd(f, frame.CategoricalColumn("plan", plan))
	mustAdd(f, frame.NumericColumn("usage", usage))
	mustAdd(f, frame.NumericColumn("noise_num", noiseNum))
	mustAdd(f, frame.CategoricalColumn("noise_cat", noiseCat))
	mustAdd(f, frame.CategoricalColumn(OutcomeColumn, outcome))
	return f
}

func mustAdd(f *frame.Frame, col frame.Column) {
	if err := f.AddColumn(col); err != nil {
		panic(err)
	}
}
