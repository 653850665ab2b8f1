package treatment

// ImputationStrategy selects how a clean variable's replacement value is fitted
type ImputationStrategy string

const (
	ImputeMean     ImputationStrategy = "mean"
	ImputeMedian   ImputationStrategy = "median"
	ImputeConstant ImputationStrategy = "constant"
)

// Defaults for Config fields left at their zero value
const (
	DefaultFoldCount   = 3
	DefaultMinFraction = 0.02
	DefaultSmoothing   = 1.0
	DefaultParallelism = 4
)

// SplitStrategy selects how rows are assigned to cross-validation folds
type SplitStrategy string

const (
	SplitSimple     SplitStrategy = "simple"
	SplitStratified SplitStrategy = "stratified"
)

// Config holds the knobs of one treatment design. The zero value is not
// usable directly; call Normalized (or start from DefaultConfig) so the
// documented defaults are filled in.
type Config struct {
	// FoldCount is the number of cross-validation folds (>= 2)
	FoldCount int `json:"fold_count"`
	// MinFraction is the frequency floor for per-level indicator variables.
	// Zero means unset; Normalized fills the 0.02 default. To disable the
	// floor, pass any value at or below 1/rowCount: every observed level has
	// frequency >= 1/rowCount, so such a floor retains all of them, which is
	// exactly what a floor of zero would do.
	MinFraction float64 `json:"min_fraction"`
	// CodeRestriction limits which code types are designed; nil means all
	CodeRestriction []CodeType `json:"code_restriction,omitempty"`
	// Imputation selects the clean-variable replacement strategy
	Imputation ImputationStrategy `json:"imputation"`
	// ImputationConstants supplies per-column replacement values for ImputeConstant
	ImputationConstants map[string]float64 `json:"imputation_constants,omitempty"`
	// ImputationFuncs supplies per-column replacement functions, fitted over
	// the non-missing values; a column's function takes precedence over the
	// strategy. Functions must return a finite value. Not serialized: only
	// the fitted replacement survives in a stored design.
	ImputationFuncs map[string]func([]float64) float64 `json:"-"`
	// Smoothing is the catB additive pseudo-count toward the global rate
	Smoothing float64 `json:"smoothing"`
	// Split selects the fold-assignment strategy
	Split SplitStrategy `json:"split"`
	// Seed fixes the fold assignment for reproducible designs
	Seed int64 `json:"seed"`
	// Parallelism bounds concurrent per-column fitting
	Parallelism int `json:"parallelism"`
}

// DefaultConfig returns the documented default configuration
func DefaultConfig() Config {
	return Config{
		FoldCount:   DefaultFoldCount,
		MinFraction: DefaultMinFraction,
		Imputation:  ImputeMean,
		Smoothing:   DefaultSmoothing,
		Split:       SplitSimple,
		Parallelism: DefaultParallelism,
	}
}

// Normalized fills zero-valued fields with their documented defaults
func (c Config) Normalized() Config {
	if c.FoldCount == 0 {
		c.FoldCount = DefaultFoldCount
	}
	if c.MinFraction == 0 {
		c.MinFraction = DefaultMinFraction
	}
	if c.Imputation == "" {
		c.Imputation = ImputeMean
	}
	if c.Smoothing == 0 {
		c.Smoothing = DefaultSmoothing
	}
	if c.Split == "" {
		c.Split = SplitSimple
	}
	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
	return c
}

// AllowsCode reports whether the code type survives the restriction
func (c Config) AllowsCode(code CodeType) bool {
	if len(c.CodeRestriction) == 0 {
		return true
	}
	for _, r := range c.CodeRestriction {
		if r == code {
			return true
		}
	}
	return false
}
