package core

import (
	"encoding/json"
	"strconv"
	"time"
)

// Table is the canonical, normalized representation of an ingested file.
//
// Invariants (enforced by Normalize):
//   - len(Headers) >= 1 and every header is non-empty after trimming
//   - every row has exactly len(Headers) cells
//   - no row consists solely of empty-string cells
//
// Cells hold the raw textual form; typing is derived by the analysis engine.
// A Table is never mutated after construction.
type Table struct {
	FileName string     `json:"fileName"`
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named header, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// ColumnType is the inferred classification of a column.
type ColumnType string

const (
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
	TypeString ColumnType = "string"
)

// Extremum is a column minimum or maximum. Numeric columns carry a number,
// string columns carry the lexicographic bound.
type Extremum struct {
	Number   float64
	Text     string
	IsNumber bool
}

// NumberBound returns a numeric extremum.
func NumberBound(v float64) *Extremum {
	return &Extremum{Number: v, IsNumber: true}
}

// TextBound returns a string extremum.
func TextBound(s string) *Extremum {
	return &Extremum{Text: s}
}

// String formats the bound for display.
func (e Extremum) String() string {
	if e.IsNumber {
		return strconv.FormatFloat(e.Number, 'f', -1, 64)
	}
	return e.Text
}

// MarshalJSON emits a JSON number for numeric bounds and a string otherwise.
func (e Extremum) MarshalJSON() ([]byte, error) {
	if e.IsNumber {
		return json.Marshal(e.Number)
	}
	return json.Marshal(e.Text)
}

// UnmarshalJSON accepts either form written by MarshalJSON.
func (e *Extremum) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*e = Extremum{Number: n, IsNumber: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = Extremum{Text: s}
	return nil
}

// ColumnAnalysis holds the derived type and summary statistics of one column.
// Average is set only for number columns; Min and Max are set for number and
// string columns with at least one value.
type ColumnAnalysis struct {
	ColumnName   string     `json:"columnName"`
	Type         ColumnType `json:"type"`
	UniqueValues int        `json:"uniqueValues"`
	NullCount    int        `json:"nullCount"`
	Average      *float64   `json:"average,omitempty"`
	Min          *Extremum  `json:"min,omitempty"`
	Max          *Extremum  `json:"max,omitempty"`
}

// SortDirection is the state of the tri-state sort cycle.
type SortDirection string

const (
	SortNone       SortDirection = ""
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// next advances none -> asc -> desc -> none.
func (d SortDirection) next() SortDirection {
	switch d {
	case SortNone:
		return SortAscending
	case SortAscending:
		return SortDescending
	default:
		return SortNone
	}
}

// ParseSortDirection accepts "asc"/"ascending" and "desc"/"descending".
// Anything else is treated as no sort.
func ParseSortDirection(s string) SortDirection {
	switch s {
	case "asc", "ascending":
		return SortAscending
	case "desc", "descending":
		return SortDescending
	default:
		return SortNone
	}
}

// SortSpec represents the single active sort column and direction.
type SortSpec struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// Active reports whether the sort orders rows.
func (s SortSpec) Active() bool {
	return s.Column != "" && s.Direction != SortNone
}

// FilterKind is the predicate applied by a column filter.
type FilterKind string

const (
	FilterContains    FilterKind = "contains"
	FilterEquals      FilterKind = "equals"
	FilterStartsWith  FilterKind = "startsWith"
	FilterEndsWith    FilterKind = "endsWith"
	FilterGreaterThan FilterKind = "greaterThan"
	FilterLessThan    FilterKind = "lessThan"
)

// filterKindAliases maps accepted spellings to their canonical kind.
// The short forms match the operator names used by query strings.
var filterKindAliases = map[string]FilterKind{
	"contains":    FilterContains,
	"equals":      FilterEquals,
	"eq":          FilterEquals,
	"startswith":  FilterStartsWith,
	"starts":      FilterStartsWith,
	"endswith":    FilterEndsWith,
	"ends":        FilterEndsWith,
	"greaterthan": FilterGreaterThan,
	"greater":     FilterGreaterThan,
	"gt":          FilterGreaterThan,
	"lessthan":    FilterLessThan,
	"less":        FilterLessThan,
	"lt":          FilterLessThan,
}

// ColumnFilter represents a single filter condition on a column.
type ColumnFilter struct {
	Kind    FilterKind `json:"kind"`
	Operand string     `json:"operand"`
}

// ViewResult is the display window produced by the table view engine.
type ViewResult struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"` // rows matching the filters, before the cap
	Shown   int        `json:"shown"`
	Cap     int        `json:"cap"`
	Sort    SortSpec   `json:"sort"`
}

// Summary renders the "showing N of M" line for display.
func (r ViewResult) Summary() string {
	return "Showing " + strconv.Itoa(r.Shown) + " of " + strconv.Itoa(r.Total) + " rows"
}

// FileInfo describes a candidate file before its bytes are parsed.
type FileInfo struct {
	Name string
	Size int64
}

// DatasetSummary describes a loaded dataset without its rows.
type DatasetSummary struct {
	ID       string           `json:"id"`
	FileName string           `json:"fileName"`
	Headers  []string         `json:"headers"`
	RowCount int              `json:"rowCount"`
	LoadedAt time.Time        `json:"loadedAt"`
	Analysis []ColumnAnalysis `json:"analysis"`
	View     ViewState        `json:"view"`
}
