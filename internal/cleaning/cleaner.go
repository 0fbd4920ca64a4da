// Package cleaning normalizes parsed daily report rows so every downstream
// stage can rely on complete identifiers and gap-free numeric fields.
package cleaning

import (
	"context"
	"log/slog"
	"math"

	"epicli/internal/dataset"
)

// Cleaner applies the dataset cleaning rules in place
type Cleaner struct {
	logger *slog.Logger
}

// New creates a Cleaner. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Result reports what cleaning changed
type Result struct {
	Rows          []dataset.Row
	InputRows     int
	DroppedRows   int
	FilledCells   int
	ClampedValues int
}

// Complete reports whether the cleaned rows are free of missing values
func (r *Result) Complete() bool {
	for i := range r.Rows {
		row := &r.Rows[i]
		if !row.HasDate() || row.CountryCode == "" {
			return false
		}
		for _, field := range dataset.StatsOrder {
			if math.IsNaN(row.Value(field)) {
				return false
			}
		}
	}
	return true
}

// Clean drops rows lacking a reporting date or country code, forward-fills
// numeric gaps per column in table row order, zero-fills gaps with no prior
// value, and clamps the counts to non-negative whole numbers.
func (c *Cleaner) Clean(ctx context.Context, rows []dataset.Row) Result {
	result := Result{InputRows: len(rows)}

	kept := make([]dataset.Row, 0, len(rows))
	for i := range rows {
		row := rows[i]
		if !row.HasDate() || row.CountryCode == "" {
			result.DroppedRows++
			continue
		}
		kept = append(kept, row)
	}

	// One column at a time: a gap takes the last valid value above it,
	// leading gaps with no history become zero.
	for _, field := range dataset.FillOrder {
		last := math.NaN()
		for i := range kept {
			v := kept[i].Value(field)
			if math.IsNaN(v) {
				if math.IsNaN(last) {
					kept[i].SetValue(field, 0)
				} else {
					kept[i].SetValue(field, last)
				}
				result.FilledCells++
				continue
			}
			last = v
		}
	}

	// Counts are whole numbers and never negative
	for i := range kept {
		for _, field := range dataset.FillOrder {
			v := kept[i].Value(field)
			if v < 0 {
				kept[i].SetValue(field, 0)
				result.ClampedValues++
			} else if rounded := math.Round(v); rounded != v {
				kept[i].SetValue(field, rounded)
			}
		}
	}

	result.Rows = kept

	c.logger.InfoContext(ctx, "dataset cleaned",
		slog.Int("input_rows", result.InputRows),
		slog.Int("dropped_rows", result.DroppedRows),
		slog.Int("filled_cells", result.FilledCells),
		slog.Int("clamped_values", result.ClampedValues))

	return result
}
