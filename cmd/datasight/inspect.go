package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/datasight/internal/core"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Profile a file and print a sorted, filtered view of it.",
	Long: `Load FILE, print the analysis of every column, then print the first rows
of the table after applying --sort and any --filter flags.

  datasight inspect people.csv --sort age:desc --filter name=contains:al`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("sort", "", "sort column, optionally suffixed with :asc or :desc")
	inspectCmd.Flags().StringArray("filter", nil, "column filter as column=kind:operand (repeatable)")
	inspectCmd.Flags().Int("cap", core.DefaultDisplayCap, "maximum rows to print")
	inspectCmd.Flags().Bool("json", false, "print JSON instead of tables")
	rootCmd.AddCommand(inspectCmd)
}

// inspectReport is the --json output.
type inspectReport struct {
	File     string                `json:"file"`
	RowCount int                   `json:"rowCount"`
	Analysis []core.ColumnAnalysis `json:"analysis"`
	View     core.ViewResult       `json:"view"`
	State    core.ViewState        `json:"state"`
	Summary  string                `json:"summary"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	t, err := loadTable(cmd.Context(), cmd, args[0])
	if err != nil {
		return err
	}

	sortFlag, _ := cmd.Flags().GetString("sort")
	filterFlags, _ := cmd.Flags().GetStringArray("filter")
	state, err := buildViewState(t, sortFlag, filterFlags)
	if err != nil {
		return err
	}

	displayCap, _ := cmd.Flags().GetInt("cap")
	analysis := core.Analyze(t)
	result := core.Render(t, state, displayCap)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(inspectReport{
			File:     t.FileName,
			RowCount: t.RowCount(),
			Analysis: analysis,
			View:     result,
			State:    state,
			Summary:  result.Summary(),
		})
	}

	fmt.Fprintf(out, "%s: %d rows, %d columns\n\n", t.FileName, t.RowCount(), len(t.Headers))
	if err := printAnalysis(out, analysis); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := printRows(out, result); err != nil {
		return err
	}
	fmt.Fprintln(out, result.Summary())
	return nil
}

// buildViewState turns --sort and --filter values into a ViewState.
// Columns must exist in t.
func buildViewState(t *core.Table, sortFlag string, filterFlags []string) (core.ViewState, error) {
	var state core.ViewState

	if sortFlag != "" {
		spec := parseSortFlag(sortFlag)
		if t.ColumnIndex(spec.Column) < 0 {
			return state, fmt.Errorf("%w %q", core.ErrUnknownColumn, spec.Column)
		}
		state = state.WithSort(spec.Column, spec.Direction)
	}

	for _, raw := range filterFlags {
		column, expr, ok := strings.Cut(raw, "=")
		if !ok || column == "" {
			return state, fmt.Errorf("invalid filter %q: want column=kind:operand", raw)
		}
		if t.ColumnIndex(column) < 0 {
			return state, fmt.Errorf("%w %q", core.ErrUnknownColumn, column)
		}
		f, err := core.ParseFilterExpr(expr)
		if err != nil {
			return state, err
		}
		state = state.WithFilter(column, f)
	}

	return state, nil
}

// parseSortFlag splits "column[:asc|:desc]". Column names may contain
// colons, so only a recognised direction suffix is split off.
func parseSortFlag(s string) core.SortSpec {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		if dir := core.ParseSortDirection(strings.ToLower(s[i+1:])); dir != core.SortNone {
			return core.SortSpec{Column: s[:i], Direction: dir}
		}
	}
	return core.SortSpec{Column: s, Direction: core.SortAscending}
}

func printAnalysis(w io.Writer, analysis []core.ColumnAnalysis) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tUNIQUE\tNULLS\tAVERAGE\tMIN\tMAX")
	for _, a := range analysis {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			a.ColumnName, a.Type, a.UniqueValues, a.NullCount,
			formatAverage(a.Average), formatBound(a.Min), formatBound(a.Max))
	}
	return tw.Flush()
}

func printRows(w io.Writer, result core.ViewResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(result.Headers, "\t"))
	for _, row := range result.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func formatAverage(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatBound(e *core.Extremum) string {
	if e == nil {
		return "-"
	}
	return e.String()
}
