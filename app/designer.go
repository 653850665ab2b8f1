package app

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/semaphore"

	"gotreat/adapters/encoders"
	"gotreat/domain/core"
	"gotreat/domain/frame"
	"gotreat/domain/treatment"
	"gotreat/internal"
	"gotreat/internal/crossval"
	"gotreat/internal/errors"
	"gotreat/internal/scoring"
)

// Designer runs the treatment-design pipeline. Columns are fitted in
// parallel; each column's work is independent, and results land in
// per-column slots, so the only synchronization is the semaphore bound.
type Designer struct {
	registry *encoders.Registry
	logger   *internal.Logger
}

// NewDesigner creates a designer with the built-in encoder registry
func NewDesigner() *Designer {
	return &Designer{registry: encoders.NewRegistry(), logger: internal.DefaultLogger}
}

// NewDesignerWithRegistry creates a designer with a caller-supplied registry,
// typically the default registry extended with custom encoders
func NewDesignerWithRegistry(registry *encoders.Registry) *Designer {
	return &Designer{registry: registry, logger: internal.DefaultLogger}
}

// DesignResult carries the outputs of one design call. CrossFrame holds the
// out-of-fold realization of every derived variable on the training rows;
// it is meant for scoring and training-time evaluation, not as a substitute
// for Prepare on new data.
type DesignResult struct {
	Design     *TreatmentDesign
	Scores     treatment.ScoreFrame
	CrossFrame *frame.Frame
}

// columnResult is one column's contribution to the catalogue, kept in
// input-column order for a deterministic derived schema
type columnResult struct {
	descs    []treatment.VariableDescriptor
	prod     []encoders.Encoder
	oofCols  [][]float64
}

// Design fits a TreatmentDesign for a binary classification outcome.
// positive designates the outcome value treated as the positive class.
func (d *Designer) Design(ctx context.Context, f *frame.Frame, outcomeCol, positive string, inputCols []string, cfg treatment.Config) (*DesignResult, error) {
	cfg = cfg.Normalized()
	if err := d.validate(f, outcomeCol, inputCols, cfg); err != nil {
		return nil, err
	}

	y, err := outcomeVector(f, outcomeCol, positive)
	if err != nil {
		return nil, err
	}

	plan, err := crossval.BuildPlan(f.NumRows(), cfg.FoldCount, cfg.Seed, cfg.Split, y)
	if err != nil {
		return nil, err
	}

	results := make([]columnResult, len(inputCols))
	sem := semaphore.NewWeighted(int64(cfg.Parallelism))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for idx, name := range inputCols {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, errors.Wrap(err, "design cancelled")
		}
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			defer sem.Release(1)
			res, err := d.designColumn(f, name, y, plan, cfg)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			results[idx] = res
		}(idx, name)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	var descs []treatment.VariableDescriptor
	var prod []encoders.Encoder
	var oofCols [][]float64
	for _, res := range results {
		descs = append(descs, res.descs...)
		prod = append(prod, res.prod...)
		oofCols = append(oofCols, res.oofCols...)
	}

	scores := scoring.Score(descs, oofCols, y)

	crossFrame := frame.New(f.NumRows())
	for i, desc := range descs {
		if err := crossFrame.AddColumn(frame.NumericColumn(desc.Name, oofCols[i])); err != nil {
			return nil, errors.Wrap(err, "assemble cross frame")
		}
	}

	design := &TreatmentDesign{
		ID:                  core.DesignID(core.NewID()),
		CreatedAt:           core.Now(),
		OutcomeColumn:       outcomeCol,
		PositiveValue:       positive,
		Config:              cfg,
		Descriptors:         descs,
		Scores:              scores,
		TrainingFingerprint: f.Fingerprint(),
		TrainingRows:        f.NumRows(),
		Encoders:            prod,
	}

	d.logger.Info("designed %d derived variables from %d columns (%d recommended)",
		len(descs), len(inputCols), len(scores.Recommended()))

	return &DesignResult{Design: design, Scores: scores, CrossFrame: crossFrame}, nil
}

// designColumn fits one raw column: production encoders on all rows plus
// the out-of-fold cross-frame realization of each derived variable
func (d *Designer) designColumn(f *frame.Frame, name string, y []float64, plan crossval.Plan, cfg treatment.Config) (columnResult, error) {
	col, _ := f.Column(name)
	protos := d.registry.BuildFor(col, cfg)

	var res columnResult
	for _, proto := range protos {
		production := proto.Clone()
		if err := production.Fit(col, y, plan.AllRows()); err != nil {
			if errors.HasCode(err, errors.CodeInsufficientData) {
				// Localized shortfall: drop this derived variable, keep the design
				d.logger.Warn("skipping %q: %v", proto.Descriptor().Name, err)
				continue
			}
			return columnResult{}, errors.Wrapf(err, "fit production encoder for column %q", name)
		}
		oof, err := crossval.OutOfFold(col, y, proto, plan, d.logger)
		if err != nil {
			return columnResult{}, errors.Wrapf(err, "cross-frame for column %q", name)
		}
		res.descs = append(res.descs, proto.Descriptor())
		res.prod = append(res.prod, production)
		res.oofCols = append(res.oofCols, oof)
	}
	return res, nil
}

// validate enforces the fatal configuration checks before any fitting
func (d *Designer) validate(f *frame.Frame, outcomeCol string, inputCols []string, cfg treatment.Config) error {
	if f == nil || f.NumRows() == 0 {
		return errors.InsufficientData("design frame has no usable rows")
	}
	if !f.HasColumn(outcomeCol) {
		return errors.ConfigInvalidf("outcome column %q not present in frame", outcomeCol)
	}
	if len(inputCols) == 0 {
		return errors.ConfigInvalid("no input columns given")
	}
	for _, name := range inputCols {
		if !f.HasColumn(name) {
			return errors.ConfigInvalidf("input column %q not present in frame", name)
		}
		if name == outcomeCol {
			return errors.ConfigInvalidf("outcome column %q cannot be an input column", name)
		}
	}
	if cfg.FoldCount < 2 {
		return errors.ConfigInvalidf("fold count must be >= 2, got %d", cfg.FoldCount)
	}
	if cfg.MinFraction < 0 || cfg.MinFraction >= 1 {
		return errors.ConfigInvalidf("min fraction must be in [0, 1), got %g", cfg.MinFraction)
	}
	for _, code := range cfg.CodeRestriction {
		if !d.registry.Knows(code) {
			return errors.ConfigInvalidf("unknown code type %q in restriction", code)
		}
	}
	switch cfg.Split {
	case treatment.SplitSimple, treatment.SplitStratified:
	default:
		return errors.ConfigInvalidf("unknown split strategy %q", cfg.Split)
	}
	return nil
}

// outcomeVector maps the outcome column onto 0/1 against the positive value.
// Missing outcome cells are fatal: a row without an outcome cannot take
// part in supervised fitting, and silently dropping rows would break the
// cross-frame's row alignment.
func outcomeVector(f *frame.Frame, outcomeCol, positive string) ([]float64, error) {
	col, _ := f.Column(outcomeCol)
	y := make([]float64, col.Len())
	pos := 0

	if col.Kind == frame.KindNumeric {
		target, err := strconv.ParseFloat(positive, 64)
		if err != nil {
			return nil, errors.ConfigInvalidf("positive value %q does not parse against numeric outcome %q", positive, outcomeCol)
		}
		for i := range y {
			if col.IsMissing(i) {
				return nil, errors.InsufficientDataf("outcome column %q has a missing value at row %d", outcomeCol, i)
			}
			if col.Nums[i] == target {
				y[i] = 1
				pos++
			}
		}
	} else {
		for i := range y {
			if col.IsMissing(i) {
				return nil, errors.InsufficientDataf("outcome column %q has a missing value at row %d", outcomeCol, i)
			}
			if col.Cats[i] == positive {
				y[i] = 1
				pos++
			}
		}
	}

	if pos == 0 || pos == len(y) {
		return nil, errors.InsufficientDataf("outcome column %q is constant against positive value %q", outcomeCol, positive)
	}
	return y, nil
}
