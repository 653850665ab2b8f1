package encoders

import (
	"gotreat/domain/frame"
	"gotreat/domain/treatment"
)

// LevEncoder emits a 0/1 indicator of equality with one categorical level.
// The missing token is a candidate level like any other. The indicator is
// parameter-free, so fold refits are trivially leak-free.
type LevEncoder struct {
	Desc treatment.VariableDescriptor `json:"desc"`
}

func buildLev(col frame.Column, cfg treatment.Config) []Encoder {
	if col.Kind != frame.KindCategorical || col.Len() == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, v := range col.Cats {
		counts[v]++
	}
	total := float64(col.Len())
	var out []Encoder
	for _, level := range col.Levels() {
		if float64(counts[level])/total < cfg.MinFraction {
			continue
		}
		out = append(out, &LevEncoder{
			Desc: treatment.VariableDescriptor{
				Name:   treatment.LevelName(col.Name, level),
				Origin: col.Name,
				Code:   treatment.CodeLev,
				Level:  level,
			},
		})
	}
	return out
}

// Descriptor identifies the derived variable
func (e *LevEncoder) Descriptor() treatment.VariableDescriptor { return e.Desc }

// Fit is a no-op; the level set was fixed at catalogue time
func (e *LevEncoder) Fit(col frame.Column, y []float64, rows []int) error { return nil }

// Apply emits the equality indicator for the encoder's level
func (e *LevEncoder) Apply(col frame.Column) ([]float64, int) {
	out := make([]float64, col.Len())
	for i, v := range col.Cats {
		if v == e.Desc.Level {
			out[i] = 1.0
		}
	}
	return out, 0
}

// Clone returns a fresh copy
func (e *LevEncoder) Clone() Encoder {
	return &LevEncoder{Desc: e.Desc}
}
