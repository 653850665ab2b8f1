// Package encoders holds the per-column treatment encoders. Each encoder
// maps one raw column onto one derived numeric column; five built-in code
// types cover cleaned numerics, missing indicators, per-level indicators,
// level prevalence and shrunk log-odds impact codes. Encoders are fitted
// twice per design: once per cross-validation fold for the leak-free cross
// frame, and once on the full training column for production use.
package encoders

import (
	"gotreat/domain/frame"
	"gotreat/domain/treatment"
)

// Encoder is the capability interface shared by all treatment code types.
// Fit learns parameters from the fitting rows only; Apply realizes the
// derived column over every row and reports how many rows fell back to
// the unseen-level value.
type Encoder interface {
	// Descriptor identifies the derived variable this encoder produces
	Descriptor() treatment.VariableDescriptor
	// Fit learns parameters from the given row subset of col, with y the
	// 0/1 outcome aligned to col. Returns an insufficient-data error when
	// the subset cannot support a fit.
	Fit(col frame.Column, y []float64, rows []int) error
	// Apply realizes the derived column over all rows of col
	Apply(col frame.Column) (vals []float64, unseen int)
	// Clone returns a fresh unfitted encoder with the same descriptor and
	// configuration, for per-fold refitting
	Clone() Encoder
}

// Builder proposes zero or more unfitted encoders for a raw column. The
// descriptor catalogue (which levels earn indicators, whether a missing
// indicator is emitted) is decided here from the full fitting column, so
// every fold refit produces the same derived schema.
type Builder func(col frame.Column, cfg treatment.Config) []Encoder

// Registry maps code types to builders in a canonical order. The default
// registry carries the five built-in code types; callers may register
// custom encoders under new code types.
type Registry struct {
	order    []treatment.CodeType
	builders map[treatment.CodeType]Builder
}

// NewRegistry creates a registry with the built-in encoder families
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[treatment.CodeType]Builder)}
	r.Register(treatment.CodeClean, buildClean)
	r.Register(treatment.CodeIsBad, buildIsBad)
	r.Register(treatment.CodeLev, buildLev)
	r.Register(treatment.CodeCatP, buildCatP)
	r.Register(treatment.CodeCatB, buildCatB)
	return r
}

// Register adds or replaces the builder for a code type
func (r *Registry) Register(code treatment.CodeType, b Builder) {
	if _, exists := r.builders[code]; !exists {
		r.order = append(r.order, code)
	}
	r.builders[code] = b
}

// Knows reports whether the registry carries the code type
func (r *Registry) Knows(code treatment.CodeType) bool {
	_, ok := r.builders[code]
	return ok
}

// Codes returns the registered code types in registration order
func (r *Registry) Codes() []treatment.CodeType {
	out := make([]treatment.CodeType, len(r.order))
	copy(out, r.order)
	return out
}

// BuildFor proposes the encoder set for one raw column, honoring the
// config's code restriction
func (r *Registry) BuildFor(col frame.Column, cfg treatment.Config) []Encoder {
	var out []Encoder
	for _, code := range r.order {
		if !cfg.AllowsCode(code) {
			continue
		}
		out = append(out, r.builders[code](col, cfg)...)
	}
	return out
}
