package frame

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gotreat/domain/core"
)

// Kind classifies a column's statistical type
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// MissingToken is the distinguished level standing in for a missing
// categorical cell. Numeric columns mark missing cells with NaN instead.
const MissingToken = "NA"

// Column is a named, typed sequence of raw values. Exactly one of Nums or
// Cats is populated, matching Kind.
type Column struct {
	Name string    `json:"name"`
	Kind Kind      `json:"kind"`
	Nums []float64 `json:"nums,omitempty"`
	Cats []string  `json:"cats,omitempty"`
}

// NumericColumn builds a numeric column. NaN cells are missing.
func NumericColumn(name string, vals []float64) Column {
	return Column{Name: name, Kind: KindNumeric, Nums: vals}
}

// CategoricalColumn builds a categorical column, normalizing empty cells
// to the missing token.
func CategoricalColumn(name string, vals []string) Column {
	cats := make([]string, len(vals))
	for i, v := range vals {
		if isMissingCell(v) {
			cats[i] = MissingToken
		} else {
			cats[i] = v
		}
	}
	return Column{Name: name, Kind: KindCategorical, Cats: cats}
}

// Len returns the row count of the column
func (c Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Nums)
	}
	return len(c.Cats)
}

// IsMissing reports whether row i holds a missing cell
func (c Column) IsMissing(i int) bool {
	if c.Kind == KindNumeric {
		return math.IsNaN(c.Nums[i]) || math.IsInf(c.Nums[i], 0)
	}
	return c.Cats[i] == MissingToken
}

// MissingCount returns the number of missing cells
func (c Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Levels returns the distinct categorical levels in sorted order,
// including the missing token when present.
func (c Column) Levels() []string {
	seen := make(map[string]bool)
	for _, v := range c.Cats {
		seen[v] = true
	}
	levels := make([]string, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	sort.Strings(levels)
	return levels
}

// Frame is an in-memory tabular dataset: ordered named columns of equal length
type Frame struct {
	names []string
	cols  map[string]Column
	rows  int
}

// New creates an empty frame expecting the given row count
func New(rows int) *Frame {
	return &Frame{cols: make(map[string]Column), rows: rows}
}

// NumRows returns the row count
func (f *Frame) NumRows() int {
	return f.rows
}

// Names returns the column names in insertion order
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// AddColumn appends a column, enforcing the frame's row count
func (f *Frame) AddColumn(col Column) error {
	if col.Name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if _, exists := f.cols[col.Name]; exists {
		return fmt.Errorf("duplicate column %q", col.Name)
	}
	if col.Len() != f.rows {
		return fmt.Errorf("column %q has %d rows, frame expects %d", col.Name, col.Len(), f.rows)
	}
	f.names = append(f.names, col.Name)
	f.cols[col.Name] = col
	return nil
}

// Column looks up a column by name
func (f *Frame) Column(name string) (Column, bool) {
	col, ok := f.cols[name]
	return col, ok
}

// HasColumn reports whether the frame contains the named column
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Fingerprint computes a content hash over column names, kinds and cells.
// Two frames with identical content produce identical fingerprints.
func (f *Frame) Fingerprint() core.Fingerprint {
	var b strings.Builder
	for _, name := range f.names {
		col := f.cols[name]
		b.WriteString(name)
		b.WriteByte('|')
		b.WriteString(string(col.Kind))
		b.WriteByte('|')
		if col.Kind == KindNumeric {
			for _, v := range col.Nums {
				b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
				b.WriteByte(',')
			}
		} else {
			for _, v := range col.Cats {
				b.WriteString(v)
				b.WriteByte(',')
			}
		}
		b.WriteByte('\n')
	}
	return core.NewFingerprint([]byte(b.String()))
}

// FromCells builds a frame from raw string cells with per-column type
// inference: a column is numeric when every non-missing cell parses as a
// float and at least one cell does; otherwise it is categorical.
func FromCells(headers []string, rows [][]string) (*Frame, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("no column headers")
	}
	f := New(len(rows))
	for j, name := range headers {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
		}
		if err := f.AddColumn(inferColumn(name, cells)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// inferColumn coerces raw cells into a typed column
func inferColumn(name string, cells []string) Column {
	numeric := false
	for _, cell := range cells {
		if isMissingCell(cell) {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return CategoricalColumn(name, cells)
		}
		numeric = true
	}
	if !numeric {
		// All-missing columns default to categorical
		return CategoricalColumn(name, cells)
	}
	vals := make([]float64, len(cells))
	for i, cell := range cells {
		if isMissingCell(cell) {
			vals[i] = math.NaN()
			continue
		}
		v, _ := strconv.ParseFloat(cell, 64)
		vals[i] = v
	}
	return NumericColumn(name, vals)
}

// isMissingCell recognizes the conventional spellings of a missing cell
func isMissingCell(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL", "na":
		return true
	}
	return false
}
