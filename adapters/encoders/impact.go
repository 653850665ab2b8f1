package encoders

import (
	"math"

	"gotreat/domain/frame"
	"gotreat/domain/treatment"
	"gotreat/internal/errors"
)

// ImpactEncoder substitutes each level's shrunk log-odds delta against the
// global log-odds of the outcome. Additive smoothing pulls rare levels
// toward the global positive rate, so a level seen once cannot dominate.
// Levels unseen at apply time score 0, the global log-odds itself.
//
// The smoothed per-level score is
//
//	log((pos_l + s*p) / (neg_l + s*(1-p))) - log(p / (1-p))
//
// with s the pseudo-count, p the (Jeffreys-adjusted) global positive rate.
type ImpactEncoder struct {
	Desc      treatment.VariableDescriptor `json:"desc"`
	Smoothing float64                      `json:"smoothing"`
	Scores    map[string]float64           `json:"scores"`
}

func buildCatB(col frame.Column, cfg treatment.Config) []Encoder {
	if col.Kind != frame.KindCategorical {
		return nil
	}
	return []Encoder{&ImpactEncoder{
		Desc: treatment.VariableDescriptor{
			Name:   treatment.DerivedName(col.Name, treatment.CodeCatB),
			Origin: col.Name,
			Code:   treatment.CodeCatB,
		},
		Smoothing: cfg.Smoothing,
	}}
}

// Descriptor identifies the derived variable
func (e *ImpactEncoder) Descriptor() treatment.VariableDescriptor { return e.Desc }

// Fit computes smoothed per-level log-odds deltas over the fitting rows
func (e *ImpactEncoder) Fit(col frame.Column, y []float64, rows []int) error {
	if len(rows) == 0 {
		return errors.InsufficientDataf("column %q has no rows to fit impact code", col.Name)
	}
	type tally struct {
		n   float64
		pos float64
	}
	levels := make(map[string]*tally)
	n := 0.0
	pos := 0.0
	for _, i := range rows {
		t := levels[col.Cats[i]]
		if t == nil {
			t = &tally{}
			levels[col.Cats[i]] = t
		}
		t.n++
		n++
		if y[i] > 0.5 {
			t.pos++
			pos++
		}
	}
	// Jeffreys adjustment keeps the global rate off the 0/1 boundary
	p := (pos + 0.5) / (n + 1.0)
	global := math.Log(p / (1.0 - p))
	s := e.Smoothing
	if s <= 0 {
		s = treatment.DefaultSmoothing
	}
	e.Scores = make(map[string]float64, len(levels))
	for level, t := range levels {
		neg := t.n - t.pos
		logit := math.Log((t.pos + s*p) / (neg + s*(1.0-p)))
		e.Scores[level] = guardNaN(logit-global, 0)
	}
	return nil
}

// Apply substitutes the fitted link-space score for each row's level
func (e *ImpactEncoder) Apply(col frame.Column) ([]float64, int) {
	out := make([]float64, col.Len())
	unseen := 0
	for i, v := range col.Cats {
		if score, ok := e.Scores[v]; ok {
			out[i] = score
		} else {
			out[i] = 0
			unseen++
		}
	}
	return out, unseen
}

// Clone returns a fresh unfitted copy
func (e *ImpactEncoder) Clone() Encoder {
	return &ImpactEncoder{Desc: e.Desc, Smoothing: e.Smoothing}
}
