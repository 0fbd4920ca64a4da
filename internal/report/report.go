// Package report prints the human-readable run report to a writer, one
// section per pipeline step. Stdout stays reserved for this report;
// structured logs go elsewhere.
package report

import (
	"fmt"
	"io"
	"strings"

	"epicli/internal/analytics"
	"epicli/internal/cleaning"
	"epicli/internal/dataset"
	"epicli/internal/files"
)

const dateLayout = "2006-01-02"

// Writer renders report sections onto a single output stream
type Writer struct {
	out io.Writer
}

// NewWriter creates a report writer targeting out
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Preview prints the first n parsed rows in source column order. It runs
// against pre-cleaning rows, so numeric cells may still print NaN.
func (w *Writer) Preview(rows []dataset.Row, n int) {
	if n > len(rows) {
		n = len(rows)
	}
	fmt.Fprintf(w.out, "First %d Rows of the Dataset:\n", n)
	if len(rows) == 0 {
		fmt.Fprintln(w.out, "(no rows parsed)")
		return
	}

	fmt.Fprintf(w.out, "%-13s | %-12s | %-36s | %-10s | %9s | %10s | %16s | %17s\n",
		dataset.ColDateReported, dataset.ColCountryCode, dataset.ColCountry, dataset.ColWHORegion,
		dataset.ColNewCases, dataset.ColNewDeaths, dataset.ColCumulativeCases, dataset.ColCumulativeDeaths)
	fmt.Fprintln(w.out, rule(13, 12, 36, 10, 9, 10, 16, 17))

	for i := 0; i < n; i++ {
		r := &rows[i]
		date := ""
		if r.HasDate() {
			date = r.DateReported.Format(dateLayout)
		}
		fmt.Fprintf(w.out, "%-13s | %-12s | %-36s | %-10s | %9.0f | %10.0f | %16.0f | %17.0f\n",
			date, r.CountryCode, r.Country, r.WHORegion,
			r.NewCases, r.NewDeaths, r.CumulativeCases, r.CumulativeDeaths)
	}
}

// DatasetInfo prints the table structure: row count plus per-column type
// and non-null count.
func (w *Writer) DatasetInfo(info dataset.Info) {
	fmt.Fprintln(w.out, "\nDataset Info:")
	fmt.Fprintf(w.out, "Rows: %d, Columns: %d\n", info.Rows, len(info.Columns))

	fmt.Fprintf(w.out, "%-17s | %-9s | %8s\n", "Column", "Type", "Non-Null")
	fmt.Fprintln(w.out, rule(17, 9, 8))
	for _, col := range info.Columns {
		fmt.Fprintf(w.out, "%-17s | %-9s | %8d\n", col.Name, col.Type, col.NonNull)
	}
}

// MissingValues prints the pre-cleaning missing-cell count per column
func (w *Writer) MissingValues(counts []dataset.ColumnCount) {
	fmt.Fprintln(w.out, "\nMissing Values:")
	for _, col := range counts {
		fmt.Fprintf(w.out, "%-17s %8d\n", col.Name, col.Count)
	}
}

// CleaningSummary prints the drop/fill/clamp counts and confirms when the
// table is free of missing values.
func (w *Writer) CleaningSummary(res *cleaning.Result) {
	fmt.Fprintf(w.out, "\nDataset cleaned: dropped %d rows with missing core data, filled %d numerical gaps, clamped %d negative values.\n",
		res.DroppedRows, res.FilledCells, res.ClampedValues)
	if res.Complete() {
		fmt.Fprintln(w.out, "No remaining missing values in the dataset after cleaning.")
	}
}

// Summary prints the describe table for the analysis window: statistics as
// rows, numeric fields as columns.
func (w *Writer) Summary(a *analytics.Analysis) {
	fmt.Fprintln(w.out, "\nSummary Statistics (window):")
	if a.Empty() {
		fmt.Fprintf(w.out, "No rows on or after %s; statistics unavailable.\n", a.Cutoff.Format(dateLayout))
		return
	}

	fmt.Fprintf(w.out, "%-5s", "Stat")
	for _, s := range a.Summary {
		fmt.Fprintf(w.out, " | %17s", string(s.Field))
	}
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, rule(5, 17, 17, 17, 17))

	printStat := func(label string, pick func(analytics.FieldSummary) float64) {
		fmt.Fprintf(w.out, "%-5s", label)
		for _, s := range a.Summary {
			fmt.Fprintf(w.out, " | %17.2f", pick(s))
		}
		fmt.Fprintln(w.out)
	}

	fmt.Fprintf(w.out, "%-5s", "count")
	for _, s := range a.Summary {
		fmt.Fprintf(w.out, " | %17d", s.Count)
	}
	fmt.Fprintln(w.out)

	printStat("mean", func(s analytics.FieldSummary) float64 { return s.Mean })
	printStat("std", func(s analytics.FieldSummary) float64 { return s.Std })
	printStat("min", func(s analytics.FieldSummary) float64 { return s.Min })
	printStat("25%", func(s analytics.FieldSummary) float64 { return s.Q25 })
	printStat("50%", func(s analytics.FieldSummary) float64 { return s.Median })
	printStat("75%", func(s analytics.FieldSummary) float64 { return s.Q75 })
	printStat("max", func(s analytics.FieldSummary) float64 { return s.Max })
}

// Regions prints mean and sum of new cases per WHO region, ordered by
// region name.
func (w *Writer) Regions(a *analytics.Analysis) {
	fmt.Fprintln(w.out, "\nMean New Cases by WHO Region:")
	if len(a.Regions) == 0 {
		fmt.Fprintln(w.out, "(no data)")
		return
	}

	fmt.Fprintf(w.out, "%-8s | %11s | %14s\n", "Region", "Mean", "Sum")
	fmt.Fprintln(w.out, rule(8, 11, 14))
	for _, region := range a.Regions {
		fmt.Fprintf(w.out, "%-8s | %11.2f | %14.2f\n", region.Region, region.MeanNewCases, region.SumNewCases)
	}
}

// TopCountries prints the ranked mean cumulative death list. The heading
// names the configured limit; the table holds however many countries the
// window actually has.
func (w *Writer) TopCountries(a *analytics.Analysis, limit int) {
	fmt.Fprintf(w.out, "\nTop %d Countries by Mean Cumulative Deaths:\n", limit)
	if len(a.TopCountries) == 0 {
		fmt.Fprintln(w.out, "(no data)")
		return
	}

	for i, country := range a.TopCountries {
		fmt.Fprintf(w.out, "%2d. %-44s %13.2f\n", i+1, country.Country, country.MeanCumulativeDeaths)
	}
}

// Findings prints the data-driven findings bullets
func (w *Writer) Findings(a *analytics.Analysis) {
	fmt.Fprintln(w.out, "\nFindings from Analysis:")
	if len(a.Findings) == 0 {
		fmt.Fprintln(w.out, "- No findings: the analysis window is empty.")
		return
	}
	for _, finding := range a.Findings {
		fmt.Fprintf(w.out, "- %s\n", finding)
	}
}

// Artifacts prints the saved-chart manifest with per-chart captions
func (w *Writer) Artifacts(artifacts []files.Artifact) {
	fmt.Fprintln(w.out, "\nVisualizations saved as PNG files:")
	if len(artifacts) == 0 {
		fmt.Fprintln(w.out, "(none written)")
		return
	}
	for _, artifact := range artifacts {
		if artifact.Caption != "" {
			fmt.Fprintf(w.out, "- %s (%s)\n", artifact.Name, artifact.Caption)
		} else {
			fmt.Fprintf(w.out, "- %s\n", artifact.Name)
		}
	}
}

// Observations prints the data-driven closing bullets
func (w *Writer) Observations(a *analytics.Analysis) {
	fmt.Fprintln(w.out, "\nOverall Observations:")
	if len(a.Observations) == 0 {
		fmt.Fprintln(w.out, "- No observations: the analysis window is empty.")
		return
	}
	for _, observation := range a.Observations {
		fmt.Fprintf(w.out, "- %s\n", observation)
	}
}

// StageError reports a stage failure inline in the report
func (w *Writer) StageError(stage string, err error) {
	fmt.Fprintf(w.out, "\nError during %s: %v\n", stage, err)
}

// StageSkipped reports a stage that never ran and why
func (w *Writer) StageSkipped(stage, reason string) {
	fmt.Fprintf(w.out, "\nSkipped %s: %s\n", stage, reason)
}

// rule draws a separator sized to the column widths above it
func rule(widths ...int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width)
	}
	return strings.Join(parts, "-|-")
}
