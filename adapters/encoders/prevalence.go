package encoders

import (
	"gotreat/domain/frame"
	"gotreat/domain/treatment"
	"gotreat/internal/errors"
)

// PrevalenceEncoder substitutes each level's training relative frequency.
// Levels unseen at apply time fall back to the smoothed novel-level
// prevalence 1/(2n), n being the fitted row count.
type PrevalenceEncoder struct {
	Desc   treatment.VariableDescriptor `json:"desc"`
	Levels map[string]float64           `json:"levels"`
	Novel  float64                      `json:"novel"`
}

func buildCatP(col frame.Column, cfg treatment.Config) []Encoder {
	if col.Kind != frame.KindCategorical {
		return nil
	}
	return []Encoder{&PrevalenceEncoder{
		Desc: treatment.VariableDescriptor{
			Name:   treatment.DerivedName(col.Name, treatment.CodeCatP),
			Origin: col.Name,
			Code:   treatment.CodeCatP,
		},
	}}
}

// Descriptor identifies the derived variable
func (e *PrevalenceEncoder) Descriptor() treatment.VariableDescriptor { return e.Desc }

// Fit computes the level frequency table over the fitting rows
func (e *PrevalenceEncoder) Fit(col frame.Column, y []float64, rows []int) error {
	if len(rows) == 0 {
		return errors.InsufficientDataf("column %q has no rows to fit prevalence", col.Name)
	}
	counts := make(map[string]int)
	for _, i := range rows {
		counts[col.Cats[i]]++
	}
	n := float64(len(rows))
	e.Levels = make(map[string]float64, len(counts))
	for level, c := range counts {
		e.Levels[level] = float64(c) / n
	}
	e.Novel = 1.0 / (2.0 * n)
	return nil
}

// Apply substitutes the fitted prevalence for each row's level
func (e *PrevalenceEncoder) Apply(col frame.Column) ([]float64, int) {
	out := make([]float64, col.Len())
	unseen := 0
	for i, v := range col.Cats {
		if p, ok := e.Levels[v]; ok {
			out[i] = p
		} else {
			out[i] = e.Novel
			unseen++
		}
	}
	return out, unseen
}

// Clone returns a fresh unfitted copy
func (e *PrevalenceEncoder) Clone() Encoder {
	return &PrevalenceEncoder{Desc: e.Desc}
}
