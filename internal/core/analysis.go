package core

// analysis.go derives a type and summary statistics for every column.
//
// A column is typed by its FIRST non-empty value only: a column that starts
// with "12" and continues with "n/a" is still a number column. Number
// statistics are then computed over the values that do parse; the rest are
// ignored. Analysis never fails.

import (
	"math"
	"runtime"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// Analyze returns one ColumnAnalysis per header, in header order.
// Columns are processed concurrently.
func Analyze(t *Table) []ColumnAnalysis {
	if t == nil || len(t.Headers) == 0 {
		return nil
	}

	results := make([]ColumnAnalysis, len(t.Headers))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range t.Headers {
		g.Go(func() error {
			results[i] = AnalyzeColumn(t, i)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	return results
}

// AnalyzeColumn computes the analysis for the column at idx.
func AnalyzeColumn(t *Table, idx int) ColumnAnalysis {
	values := columnValues(t, idx)

	result := ColumnAnalysis{
		ColumnName: t.Headers[idx],
		Type:       TypeString,
		NullCount:  len(t.Rows) - len(values),
	}

	if len(values) == 0 {
		return result
	}

	result.Type = InferType(values[0])
	result.UniqueValues = countUnique(values)

	switch result.Type {
	case TypeNumber:
		analyzeNumbers(&result, values)
	case TypeString:
		analyzeStrings(&result, values)
	}

	return result
}

// columnValues collects the non-empty cells of a column in row order.
func columnValues(t *Table, idx int) []string {
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) && row[idx] != "" {
			values = append(values, row[idx])
		}
	}
	return values
}

func countUnique(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func analyzeNumbers(result *ColumnAnalysis, values []string) {
	nums := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if f, ok := ParseNumber(v); ok {
			nums = append(nums, f)
		}
	}

	mean, err := stats.Mean(nums)
	if err != nil {
		return
	}
	if math.IsInf(mean, 0) {
		mean = scaledMean(nums)
	}
	minV, err := stats.Min(nums)
	if err != nil {
		return
	}
	maxV, err := stats.Max(nums)
	if err != nil {
		return
	}

	if !math.IsInf(mean, 0) && !math.IsNaN(mean) {
		result.Average = &mean
	}
	result.Min = NumberBound(minV)
	result.Max = NumberBound(maxV)
}

// scaledMean divides before summing. The plain sum of large finite values
// can overflow even when their mean is representable.
func scaledMean(nums stats.Float64Data) float64 {
	n := float64(len(nums))
	var mean float64
	for _, f := range nums {
		mean += f / n
	}
	return mean
}

// analyzeStrings takes the lexicographic bounds from a sorted copy.
func analyzeStrings(result *ColumnAnalysis, values []string) {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)

	result.Min = TextBound(sorted[0])
	result.Max = TextBound(sorted[len(sorted)-1])
}
