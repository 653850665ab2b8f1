package treatment

import (
	"fmt"
	"strings"
)

// ============================================================================
// CODE TYPES
// ============================================================================

// CodeType identifies the family of a derived variable
type CodeType string

const (
	// CodeClean is a numeric column with missing cells imputed
	CodeClean CodeType = "clean"
	// CodeIsBad is a 0/1 indicator of a missing numeric cell
	CodeIsBad CodeType = "isBAD"
	// CodeLev is a 0/1 indicator of equality with one categorical level
	CodeLev CodeType = "lev"
	// CodeCatP substitutes a level's training prevalence
	CodeCatP CodeType = "catP"
	// CodeCatB substitutes a level's shrunk log-odds delta against the outcome
	CodeCatB CodeType = "catB"
)

// KnownCodeTypes returns the built-in code types in canonical order
func KnownCodeTypes() []CodeType {
	return []CodeType{CodeClean, CodeIsBad, CodeLev, CodeCatP, CodeCatB}
}

// IsKnownCodeType reports whether the code type is built in
func IsKnownCodeType(c CodeType) bool {
	for _, k := range KnownCodeTypes() {
		if c == k {
			return true
		}
	}
	return false
}

// ============================================================================
// DERIVED VARIABLE DESCRIPTORS
// ============================================================================

// VariableDescriptor identifies one derived variable. Immutable once created
// during design; uniquely keyed by Name.
type VariableDescriptor struct {
	Name   string   `json:"name"`
	Origin string   `json:"origin"`
	Code   CodeType `json:"code"`
	Level  string   `json:"level,omitempty"` // set only for lev
}

// DerivedName builds the canonical derived-variable name for a column and code
func DerivedName(origin string, code CodeType) string {
	return fmt.Sprintf("%s_%s", origin, code)
}

// LevelName builds the canonical name of a per-level indicator variable
func LevelName(origin, level string) string {
	return fmt.Sprintf("%s_lev_x_%s", origin, sanitizeLevel(level))
}

// sanitizeLevel maps a raw level value onto an identifier-safe fragment
func sanitizeLevel(level string) string {
	var b strings.Builder
	for _, r := range level {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ============================================================================
// SCORE FRAME
// ============================================================================

// ScoreRow holds the univariate scoring verdict for one derived variable
type ScoreRow struct {
	Variable     string   `json:"variable"`
	Origin       string   `json:"origin"`
	Code         CodeType `json:"code"`
	RSquared     float64  `json:"r_squared"`
	Significance float64  `json:"significance"`
	Moves        bool     `json:"moves"`
	Threshold    float64  `json:"threshold"`
	Recommended  bool     `json:"recommended"`
}

// ScoreFrame is one ScoreRow per derived variable, in catalogue order
type ScoreFrame []ScoreRow

// Recommended returns the subset of rows flagged recommended
func (s ScoreFrame) Recommended() ScoreFrame {
	var out ScoreFrame
	for _, row := range s {
		if row.Recommended {
			out = append(out, row)
		}
	}
	return out
}

// Row looks up a score row by derived-variable name
func (s ScoreFrame) Row(variable string) (ScoreRow, bool) {
	for _, row := range s {
		if row.Variable == variable {
			return row, true
		}
	}
	return ScoreRow{}, false
}

// ============================================================================
// WARNINGS
// ============================================================================

// WarningKind classifies non-fatal advisories raised during prepare
type WarningKind string

const (
	// WarnLeakage flags prepare being invoked on the original training frame
	WarnLeakage WarningKind = "leakage_risk"
	// WarnUnseenLevel flags categorical levels absent at design time
	WarnUnseenLevel WarningKind = "unseen_level"
)

// Warning is a non-fatal advisory attached to a prepare result
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Column  string      `json:"column,omitempty"`
	Count   int         `json:"count,omitempty"`
	Message string      `json:"message"`
}
