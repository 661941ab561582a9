package core

// convert.go provides the value coercions shared by the analysis and view
// engines.
//
// Cells are stored as raw strings. These helpers decide whether a cell reads
// as a number or a calendar date. They do not localize: decimal separators
// are always '.', and no thousands separators or currency symbols are
// stripped.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRegex validates that a string is a plain numeric literal.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		time.RFC3339, time.RFC3339Nano,
		"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"1/2/2006 15:04", "1/2/2006 15:04:05",
		"2006-01-02", "2006/01/02", "2006.01.02", "2006-01",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
		"Mon, 02 Jan 2006 15:04:05 MST", "Mon Jan 2 2006",
		"20060102",
	}
)

// ParseNumber parses a cell as a float64.
// Surrounding whitespace is ignored; anything other than a plain numeric
// literal (including "", "NaN" and "Inf") is rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsNumber reports whether a cell parses as a number.
func IsNumber(s string) bool {
	_, ok := ParseNumber(s)
	return ok
}

// ParseDate parses a cell as a calendar date.
// Supports multiple date formats and handles 2-digit years with pivot.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot

	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// IsDate reports whether a cell parses as a calendar date.
func IsDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// InferType classifies a representative sample: number first, then date,
// then string.
func InferType(sample string) ColumnType {
	switch {
	case IsNumber(sample):
		return TypeNumber
	case IsDate(sample):
		return TypeDate
	default:
		return TypeString
	}
}

// isEmptyRow reports whether every cell is the empty string.
// Whitespace-only cells count as content.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
