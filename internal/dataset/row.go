package dataset

import (
	"math"
	"time"
)

// Column names as they appear in the WHO global daily CSV
const (
	ColDateReported     = "Date_reported"
	ColCountryCode      = "Country_code"
	ColCountry          = "Country"
	ColWHORegion        = "WHO_region"
	ColNewCases         = "New_cases"
	ColNewDeaths        = "New_deaths"
	ColCumulativeCases  = "Cumulative_cases"
	ColCumulativeDeaths = "Cumulative_deaths"
)

// Columns lists the dataset columns in source order
var Columns = []string{
	ColDateReported,
	ColCountryCode,
	ColCountry,
	ColWHORegion,
	ColNewCases,
	ColNewDeaths,
	ColCumulativeCases,
	ColCumulativeDeaths,
}

// Row is one country-day report from the WHO dataset.
// Numeric fields hold NaN for missing source cells until cleaning fills
// them; a missing or unparseable date is the zero time.Time.
type Row struct {
	DateReported time.Time
	CountryCode  string
	Country      string
	WHORegion    string

	NewCases         float64
	NewDeaths        float64
	CumulativeCases  float64
	CumulativeDeaths float64
}

// HasDate reports whether the row carries a parsed reporting date
func (r *Row) HasDate() bool {
	return !r.DateReported.IsZero()
}

// Field identifies one of the four numeric columns
type Field string

const (
	FieldNewCases         Field = ColNewCases
	FieldNewDeaths        Field = ColNewDeaths
	FieldCumulativeCases  Field = ColCumulativeCases
	FieldCumulativeDeaths Field = ColCumulativeDeaths
)

// FillOrder is the order cleaning fills numeric gaps, cumulative totals first
var FillOrder = [4]Field{
	FieldCumulativeCases,
	FieldCumulativeDeaths,
	FieldNewCases,
	FieldNewDeaths,
}

// StatsOrder is the order numeric fields appear in statistics output
var StatsOrder = [4]Field{
	FieldNewCases,
	FieldNewDeaths,
	FieldCumulativeCases,
	FieldCumulativeDeaths,
}

// Value returns the named numeric field
func (r *Row) Value(f Field) float64 {
	switch f {
	case FieldNewCases:
		return r.NewCases
	case FieldNewDeaths:
		return r.NewDeaths
	case FieldCumulativeCases:
		return r.CumulativeCases
	case FieldCumulativeDeaths:
		return r.CumulativeDeaths
	}
	return math.NaN()
}

// SetValue sets the named numeric field
func (r *Row) SetValue(f Field, v float64) {
	switch f {
	case FieldNewCases:
		r.NewCases = v
	case FieldNewDeaths:
		r.NewDeaths = v
	case FieldCumulativeCases:
		r.CumulativeCases = v
	case FieldCumulativeDeaths:
		r.CumulativeDeaths = v
	}
}

// ColumnCount pairs a column name with a cell count for report tables
type ColumnCount struct {
	Name  string
	Count int
}

// MissingCounts returns per-column missing-cell counts over the parsed,
// pre-cleaning rows, in source column order.
func MissingCounts(rows []Row) []ColumnCount {
	counts := make([]ColumnCount, len(Columns))
	for i, name := range Columns {
		counts[i].Name = name
	}

	for i := range rows {
		r := &rows[i]
		if !r.HasDate() {
			counts[0].Count++
		}
		if r.CountryCode == "" {
			counts[1].Count++
		}
		if r.Country == "" {
			counts[2].Count++
		}
		if r.WHORegion == "" {
			counts[3].Count++
		}
		for j, f := range []Field{FieldNewCases, FieldNewDeaths, FieldCumulativeCases, FieldCumulativeDeaths} {
			if math.IsNaN(r.Value(f)) {
				counts[4+j].Count++
			}
		}
	}

	return counts
}

// ColumnInfo describes one column for the dataset info report
type ColumnInfo struct {
	Name    string
	Type    string
	NonNull int
}

// Info summarizes the parsed table structure for the console report
type Info struct {
	Rows    int
	Columns []ColumnInfo
}

// TableInfo builds the structure summary of the parsed rows
func TableInfo(rows []Row) Info {
	missing := MissingCounts(rows)

	types := []string{
		"time.Time", "string", "string", "string",
		"float64", "float64", "float64", "float64",
	}

	info := Info{Rows: len(rows), Columns: make([]ColumnInfo, len(Columns))}
	for i, name := range Columns {
		info.Columns[i] = ColumnInfo{
			Name:    name,
			Type:    types[i],
			NonNull: len(rows) - missing[i].Count,
		}
	}

	return info
}
