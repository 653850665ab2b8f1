package encoders

import (
	"math"

	"github.com/montanaflynn/stats"

	"gotreat/domain/frame"
	"gotreat/domain/treatment"
	"gotreat/internal/errors"
)

// CleanEncoder passes numeric values through, substituting a fitted
// replacement value for missing cells. Custom holds a caller-supplied
// per-column replacement function; it is consulted at fit time only, so a
// design reloaded from storage keeps the fitted Replacement without it.
type CleanEncoder struct {
	Desc        treatment.VariableDescriptor `json:"desc"`
	Strategy    treatment.ImputationStrategy `json:"strategy"`
	Constant    float64                      `json:"constant,omitempty"`
	HasConstant bool                         `json:"has_constant,omitempty"`
	Replacement float64                      `json:"replacement"`
	Custom      func([]float64) float64      `json:"-"`
}

func buildClean(col frame.Column, cfg treatment.Config) []Encoder {
	if col.Kind != frame.KindNumeric {
		return nil
	}
	enc := &CleanEncoder{
		Desc: treatment.VariableDescriptor{
			Name:   treatment.DerivedName(col.Name, treatment.CodeClean),
			Origin: col.Name,
			Code:   treatment.CodeClean,
		},
		Strategy: cfg.Imputation,
	}
	if fn, ok := cfg.ImputationFuncs[col.Name]; ok {
		enc.Custom = fn
		return []Encoder{enc}
	}
	if cfg.Imputation == treatment.ImputeConstant {
		if c, ok := cfg.ImputationConstants[col.Name]; ok {
			enc.Constant = c
			enc.HasConstant = true
		} else {
			// No constant supplied for this column, fall back to mean
			enc.Strategy = treatment.ImputeMean
		}
	}
	return []Encoder{enc}
}

// Descriptor identifies the derived variable
func (e *CleanEncoder) Descriptor() treatment.VariableDescriptor { return e.Desc }

// Fit computes the replacement value from the non-missing fitting rows
func (e *CleanEncoder) Fit(col frame.Column, y []float64, rows []int) error {
	if e.Strategy == treatment.ImputeConstant && e.HasConstant {
		e.Replacement = e.Constant
		return nil
	}
	var present []float64
	for _, i := range rows {
		if !col.IsMissing(i) {
			present = append(present, col.Nums[i])
		}
	}
	if len(present) == 0 {
		return errors.InsufficientDataf("column %q has no usable values to fit imputation", col.Name)
	}
	if e.Custom != nil {
		v := e.Custom(present)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.ConfigInvalidf("imputation function for column %q returned a non-finite value", col.Name)
		}
		e.Replacement = v
		return nil
	}
	var v float64
	var err error
	if e.Strategy == treatment.ImputeMedian {
		v, err = stats.Median(present)
	} else {
		v, err = stats.Mean(present)
	}
	if err != nil {
		return errors.Wrapf(err, "fit imputation for column %q", col.Name)
	}
	e.Replacement = v
	return nil
}

// Apply substitutes the replacement for missing cells, passing others through
func (e *CleanEncoder) Apply(col frame.Column) ([]float64, int) {
	out := make([]float64, col.Len())
	for i := range out {
		if col.IsMissing(i) {
			out[i] = e.Replacement
		} else {
			out[i] = col.Nums[i]
		}
	}
	return out, 0
}

// Clone returns a fresh unfitted copy
func (e *CleanEncoder) Clone() Encoder {
	return &CleanEncoder{Desc: e.Desc, Strategy: e.Strategy, Constant: e.Constant, HasConstant: e.HasConstant, Custom: e.Custom}
}

// IsBadEncoder emits 1.0 where the numeric cell was missing. Stateless;
// only built when the fitting column actually contains missing cells, so
// production columns are never all-zero by construction.
type IsBadEncoder struct {
	Desc treatment.VariableDescriptor `json:"desc"`
}

func buildIsBad(col frame.Column, cfg treatment.Config) []Encoder {
	if col.Kind != frame.KindNumeric || col.MissingCount() == 0 {
		return nil
	}
	return []Encoder{&IsBadEncoder{
		Desc: treatment.VariableDescriptor{
			Name:   treatment.DerivedName(col.Name, treatment.CodeIsBad),
			Origin: col.Name,
			Code:   treatment.CodeIsBad,
		},
	}}
}

// Descriptor identifies the derived variable
func (e *IsBadEncoder) Descriptor() treatment.VariableDescriptor { return e.Desc }

// Fit is a no-op; the missing indicator has no parameters
func (e *IsBadEncoder) Fit(col frame.Column, y []float64, rows []int) error { return nil }

// Apply emits the missing indicator
func (e *IsBadEncoder) Apply(col frame.Column) ([]float64, int) {
	out := make([]float64, col.Len())
	for i := range out {
		if col.IsMissing(i) {
			out[i] = 1.0
		}
	}
	return out, 0
}

// Clone returns a fresh copy
func (e *IsBadEncoder) Clone() Encoder {
	return &IsBadEncoder{Desc: e.Desc}
}

// guardNaN maps NaN/Inf onto a finite fallback
func guardNaN(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
