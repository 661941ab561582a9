package core

// view.go is the table view engine: it applies a ViewState (one sort column
// plus per-column filters) to a canonical Table and returns the visible
// window.
//
// ViewState is a value. Every method that changes it returns a new state
// and leaves the receiver untouched, so a state can be shared between
// goroutines without locking.
//
// Composition order is fixed: canonical rows -> stable sort -> filters ->
// display cap. Empty cells sort last in both directions. Filters with an
// empty operand are ignored, and filters or sorts naming a column the table
// does not have are ignored too.

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// DefaultDisplayCap is the number of rows returned by a view.
const DefaultDisplayCap = 100

// ViewState is the sort and filter configuration applied to a table.
type ViewState struct {
	Sort    SortSpec                `json:"sort"`
	Filters map[string]ColumnFilter `json:"filters,omitempty"`
}

// ToggleSort advances the sort cycle for column. Requesting the active
// column steps asc -> desc -> none -> asc; any other column starts at asc.
func (v ViewState) ToggleSort(column string) ViewState {
	next := v.clone()
	if v.Sort.Column == column {
		next.Sort.Direction = v.Sort.Direction.next()
	} else {
		next.Sort = SortSpec{Column: column, Direction: SortAscending}
	}
	return next
}

// WithSort replaces the sort outright.
func (v ViewState) WithSort(column string, dir SortDirection) ViewState {
	next := v.clone()
	next.Sort = SortSpec{Column: column, Direction: dir}
	return next
}

// WithFilter sets the filter for column, replacing any previous one.
func (v ViewState) WithFilter(column string, f ColumnFilter) ViewState {
	next := v.clone()
	if next.Filters == nil {
		next.Filters = make(map[string]ColumnFilter, 1)
	}
	next.Filters[column] = f
	return next
}

// WithoutFilter removes the filter for column.
func (v ViewState) WithoutFilter(column string) ViewState {
	next := v.clone()
	delete(next.Filters, column)
	return next
}

// ClearFilters removes every filter and keeps the sort.
func (v ViewState) ClearFilters() ViewState {
	return ViewState{Sort: v.Sort}
}

// ActiveFilters counts filters that will constrain rows.
func (v ViewState) ActiveFilters() int {
	n := 0
	for _, f := range v.Filters {
		if f.Active() {
			n++
		}
	}
	return n
}

func (v ViewState) clone() ViewState {
	next := ViewState{Sort: v.Sort}
	if len(v.Filters) > 0 {
		next.Filters = make(map[string]ColumnFilter, len(v.Filters))
		for k, f := range v.Filters {
			next.Filters[k] = f
		}
	}
	return next
}

// Active reports whether the filter constrains rows.
func (f ColumnFilter) Active() bool {
	return f.Operand != ""
}

// Match reports whether cell satisfies the filter. Inactive filters match
// everything.
func (f ColumnFilter) Match(cell string) bool {
	if !f.Active() {
		return true
	}
	pred, ok := predicates[f.Kind]
	if !ok {
		return true
	}
	return pred(cell, f.Operand)
}

// ParseFilterKind resolves a predicate name, accepting the canonical
// camelCase names and short aliases case-insensitively.
func ParseFilterKind(s string) (FilterKind, error) {
	if k, ok := filterKindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown filter kind %q", s)
}

// ParseFilterExpr parses "kind:operand". The operand may itself contain
// colons.
func ParseFilterExpr(expr string) (ColumnFilter, error) {
	kind, operand, ok := strings.Cut(expr, ":")
	if !ok {
		return ColumnFilter{}, fmt.Errorf("invalid filter %q: want kind:operand", expr)
	}
	k, err := ParseFilterKind(kind)
	if err != nil {
		return ColumnFilter{}, err
	}
	return ColumnFilter{Kind: k, Operand: operand}, nil
}

// predicate tests a cell against a filter operand.
type predicate func(cell, operand string) bool

var predicates = map[FilterKind]predicate{
	FilterContains:    matchContains,
	FilterEquals:      matchEquals,
	FilterStartsWith:  matchStartsWith,
	FilterEndsWith:    matchEndsWith,
	FilterGreaterThan: matchGreaterThan,
	FilterLessThan:    matchLessThan,
}

func matchContains(cell, operand string) bool {
	return strings.Contains(strings.ToLower(cell), strings.ToLower(operand))
}

func matchEquals(cell, operand string) bool {
	return strings.EqualFold(cell, operand)
}

func matchStartsWith(cell, operand string) bool {
	return strings.HasPrefix(strings.ToLower(cell), strings.ToLower(operand))
}

func matchEndsWith(cell, operand string) bool {
	return strings.HasSuffix(strings.ToLower(cell), strings.ToLower(operand))
}

func matchGreaterThan(cell, operand string) bool {
	c, o, ok := numericPair(cell, operand)
	return ok && c > o
}

func matchLessThan(cell, operand string) bool {
	c, o, ok := numericPair(cell, operand)
	return ok && c < o
}

func numericPair(cell, operand string) (float64, float64, bool) {
	c, ok := ParseNumber(cell)
	if !ok {
		return 0, 0, false
	}
	o, ok := ParseNumber(operand)
	if !ok {
		return 0, 0, false
	}
	return c, o, true
}

// compareCells orders two non-empty cells. Numbers come first in numeric
// order, then every other cell byte-wise, so mixed columns still get a
// total order.
func compareCells(a, b string) int {
	if a == b {
		return 0
	}
	x, aNum := ParseNumber(a)
	y, bNum := ParseNumber(b)
	switch {
	case aNum && bNum:
		return cmp.Compare(x, y)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(a, b)
}

// sortRows returns a stably sorted copy of rows. Empty cells go last
// regardless of direction.
func sortRows(rows [][]string, col int, dir SortDirection) [][]string {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b []string) int {
		av, bv := a[col], b[col]
		switch {
		case av == "" && bv == "":
			return 0
		case av == "":
			return 1
		case bv == "":
			return -1
		}
		c := compareCells(av, bv)
		if dir == SortDescending {
			return -c
		}
		return c
	})
	return sorted
}

// boundFilter is a filter resolved to a column position.
type boundFilter struct {
	col    int
	filter ColumnFilter
}

// Render applies state to t and returns at most displayCap rows.
// A non-positive displayCap uses DefaultDisplayCap.
func Render(t *Table, state ViewState, displayCap int) ViewResult {
	if displayCap <= 0 {
		displayCap = DefaultDisplayCap
	}
	if t == nil {
		return ViewResult{Rows: [][]string{}, Cap: displayCap, Sort: state.Sort}
	}

	matched := Apply(t, state)

	shown := matched
	if len(shown) > displayCap {
		shown = shown[:displayCap]
	}

	return ViewResult{
		Headers: t.Headers,
		Rows:    shown,
		Total:   len(matched),
		Shown:   len(shown),
		Cap:     displayCap,
		Sort:    state.Sort,
	}
}

// Apply returns every row of t that passes the filters, in sorted order.
// The result is uncapped; Render and exports build on it.
func Apply(t *Table, state ViewState) [][]string {
	rows := t.Rows
	if state.Sort.Active() {
		if col := t.ColumnIndex(state.Sort.Column); col >= 0 {
			rows = sortRows(rows, col, state.Sort.Direction)
		}
	}

	filters := bindFilters(t, state.Filters)
	if len(filters) == 0 {
		return rows
	}

	matched := make([][]string, 0, len(rows))
	for _, row := range rows {
		if matchAll(row, filters) {
			matched = append(matched, row)
		}
	}
	return matched
}

func bindFilters(t *Table, filters map[string]ColumnFilter) []boundFilter {
	var bound []boundFilter
	for column, f := range filters {
		if !f.Active() {
			continue
		}
		col := t.ColumnIndex(column)
		if col < 0 {
			continue
		}
		bound = append(bound, boundFilter{col: col, filter: f})
	}
	return bound
}

func matchAll(row []string, filters []boundFilter) bool {
	for _, bf := range filters {
		if !bf.filter.Match(row[bf.col]) {
			return false
		}
	}
	return true
}
