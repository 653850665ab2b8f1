package crossval

import (
	"gotreat/adapters/encoders"
	"gotreat/domain/frame"
	"gotreat/internal"
	apperrors "gotreat/internal/errors"
)

// OutOfFold realizes one cross-frame column for a derived variable: for
// each fold, a fresh encoder is fitted on the fold's complement and applied
// to the fold's own rows only. Every returned value at row r was therefore
// produced by an encoder that never saw row r.
//
// When a fold's complement cannot support a fit (no usable rows, in
// practice a degenerate column), the fold falls back to an encoder fitted
// on all rows; that global encoder still never consumes more outcome signal
// than the production path does, and it keeps one bad fold from failing the
// whole design.
func OutOfFold(col frame.Column, y []float64, proto encoders.Encoder, plan Plan, log *internal.Logger) ([]float64, error) {
	out := make([]float64, col.Len())
	var global encoders.Encoder // lazily fitted fallback

	for fold := 0; fold < plan.K; fold++ {
		enc := proto.Clone()
		err := enc.Fit(col, y, plan.ComplementRows(fold))
		if err != nil {
			if !apperrors.HasCode(err, apperrors.CodeInsufficientData) {
				return nil, apperrors.Wrapf(err, "out-of-fold fit for %q fold %d", proto.Descriptor().Name, fold)
			}
			if log != nil {
				log.Warn("fold %d complement cannot fit %q, falling back to global encoder", fold, proto.Descriptor().Name)
			}
			if global == nil {
				global = proto.Clone()
				if gerr := global.Fit(col, y, plan.AllRows()); gerr != nil {
					return nil, apperrors.Wrapf(gerr, "global fallback fit for %q", proto.Descriptor().Name)
				}
			}
			enc = global
		}
		vals, _ := enc.Apply(col)
		for _, row := range plan.FoldRows(fold) {
			out[row] = vals[row]
		}
	}
	return out, nil
}
