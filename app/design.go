// Package app orchestrates treatment design and application: it wires the
// encoder registry, the fold plan, the out-of-fold fitter and the scorer
// into the design operation, and applies fitted designs to new frames.
package app

import (
	"gotreat/adapters/encoders"
	"gotreat/domain/core"
	"gotreat/domain/treatment"
)

// TreatmentDesign is the aggregate produced by one design call: the derived
// variable catalogue, the production encoders fitted on the full training
// frame, the score frame and a snapshot of the configuration. Immutable
// after fitting; reusable across any number of Prepare calls.
type TreatmentDesign struct {
	ID            core.DesignID    `json:"id"`
	CreatedAt     core.Timestamp   `json:"created_at"`
	OutcomeColumn string           `json:"outcome_column"`
	PositiveValue string           `json:"positive_value"`
	Config        treatment.Config `json:"config"`

	Descriptors []treatment.VariableDescriptor `json:"descriptors"`
	Scores      treatment.ScoreFrame           `json:"scores"`

	// TrainingFingerprint recognizes the original training frame so Prepare
	// can raise the leakage advisory.
	TrainingFingerprint core.Fingerprint `json:"training_fingerprint"`
	TrainingRows        int              `json:"training_rows"`

	// Encoders are the production encoders, aligned index-for-index with
	// Descriptors. They were fitted on the entire training frame; the
	// out-of-fold encoders that built the cross frame are discarded after
	// scoring and never stored here.
	Encoders []encoders.Encoder `json:"-"`
}

// RecommendedVariables returns the names of derived variables flagged
// recommended by the scorer, in catalogue order.
func (d *TreatmentDesign) RecommendedVariables() []string {
	var out []string
	for _, row := range d.Scores {
		if row.Recommended {
			out = append(out, row.Variable)
		}
	}
	return out
}

// VariableNames returns the full derived-variable name set in catalogue order
func (d *TreatmentDesign) VariableNames() []string {
	out := make([]string, len(d.Descriptors))
	for i, desc := range d.Descriptors {
		out[i] = desc.Name
	}
	return out
}
