package app

import (
	"fmt"

	"gotreat/domain/frame"
	"gotreat/domain/treatment"
	"gotreat/internal/errors"
)

// PrepareOptions tunes the Prepare output
type PrepareOptions struct {
	// IncludeOutcome carries the outcome column through into the derived frame
	IncludeOutcome bool
}

// PrepareResult is the derived frame plus the non-fatal advisories raised
// while applying the production encoders
type PrepareResult struct {
	Frame        *frame.Frame
	Warnings     []treatment.Warning
	UnseenLevels int
}

// Prepare applies a fitted design's production encoders to a new frame,
// reproducing the exact derived-variable schema from design time. Nothing
// is refitted: unseen levels fall back to each encoder's documented
// degenerate value and are counted on the result. Applying a design to the
// very frame it was fitted on raises a leakage advisory, since the cross
// frame is the unbiased realization for training rows.
func Prepare(design *TreatmentDesign, f *frame.Frame, opts PrepareOptions) (*PrepareResult, error) {
	if design == nil {
		return nil, errors.InvalidInput("nil treatment design")
	}
	if f == nil || f.NumRows() == 0 {
		return nil, errors.InsufficientData("prepare frame has no rows")
	}

	result := &PrepareResult{Frame: frame.New(f.NumRows())}

	if f.Fingerprint() == design.TrainingFingerprint {
		result.Warnings = append(result.Warnings, treatment.Warning{
			Kind:    treatment.WarnLeakage,
			Message: "prepare called on the original training frame; use the design's cross frame for training-time evaluation",
		})
	}

	// Unseen-level counts per origin column. catP and catB share the same
	// observed-level set, so we keep the max per origin instead of summing.
	unseenByOrigin := make(map[string]int)

	for i, enc := range design.Encoders {
		desc := design.Descriptors[i]
		col, ok := f.Column(desc.Origin)
		if !ok {
			return nil, errors.ConfigInvalidf("column %q required by design is not present", desc.Origin)
		}
		if want, known := originKind(desc.Code); known && col.Kind != want {
			return nil, errors.ConfigInvalidf("column %q is %s but the design expects %s", desc.Origin, col.Kind, want)
		}
		vals, unseen := enc.Apply(col)
		if unseen > unseenByOrigin[desc.Origin] {
			unseenByOrigin[desc.Origin] = unseen
		}
		if err := result.Frame.AddColumn(frame.NumericColumn(desc.Name, vals)); err != nil {
			return nil, errors.Wrapf(err, "assemble derived column %q", desc.Name)
		}
	}

	for _, desc := range design.Descriptors {
		if n := unseenByOrigin[desc.Origin]; n > 0 {
			result.Warnings = append(result.Warnings, treatment.Warning{
				Kind:    treatment.WarnUnseenLevel,
				Column:  desc.Origin,
				Count:   n,
				Message: fmt.Sprintf("column %q: %d rows hold levels unseen at design time", desc.Origin, n),
			})
			result.UnseenLevels += n
			unseenByOrigin[desc.Origin] = 0 // one warning per origin
		}
	}

	if opts.IncludeOutcome {
		col, ok := f.Column(design.OutcomeColumn)
		if !ok {
			return nil, errors.ConfigInvalidf("outcome column %q requested but not present", design.OutcomeColumn)
		}
		if err := result.Frame.AddColumn(col); err != nil {
			return nil, errors.Wrap(err, "carry outcome column")
		}
	}

	return result, nil
}

// originKind is the raw column kind a built-in code type encodes. Custom
// code types registered by callers are not checked; their encoders own
// their input contract.
func originKind(code treatment.CodeType) (frame.Kind, bool) {
	switch code {
	case treatment.CodeClean, treatment.CodeIsBad:
		return frame.KindNumeric, true
	case treatment.CodeLev, treatment.CodeCatP, treatment.CodeCatB:
		return frame.KindCategorical, true
	}
	return "", false
}
