// Package analytics computes the descriptive statistics, group-wise
// aggregates and chart-ready series for the analysis window of the cleaned
// dataset.
package analytics

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"epicli/internal/config"
	"epicli/internal/dataset"
	"epicli/internal/errors"
)

// FieldSummary holds describe-style statistics for one numeric field.
// Quantiles use linear interpolation; Std is the sample deviation and is
// NaN below two observations.
type FieldSummary struct {
	Field  dataset.Field
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// RegionStats aggregates new cases for one WHO region
type RegionStats struct {
	Region       string
	Rows         int
	MeanNewCases float64
	SumNewCases  float64
}

// CountryDeaths ranks one country by mean cumulative deaths
type CountryDeaths struct {
	Country              string
	MeanCumulativeDeaths float64
}

// DailyTotal is the global sum of new cases for one reporting date
type DailyTotal struct {
	Date     time.Time
	NewCases float64
}

// HistogramBin counts window rows whose new-death value falls in [Low, High)
// (the last bin includes its upper bound).
type HistogramBin struct {
	Low   float64
	High  float64
	Count int
}

// Analysis bundles every aggregation result for the report and the charts
type Analysis struct {
	Cutoff     time.Time
	TotalRows  int
	WindowRows int
	Countries  int
	FirstDate  time.Time
	LastDate   time.Time

	Summary      []FieldSummary
	Regions      []RegionStats
	TopCountries []CountryDeaths
	Daily        []DailyTotal
	Histogram    []HistogramBin
	Sample       []dataset.Row

	Findings     []string
	Observations []string
}

// Empty reports whether the window filter left no rows to aggregate
func (a *Analysis) Empty() bool {
	return a.WindowRows == 0
}

// Analyzer runs the aggregation stage over cleaned rows
type Analyzer struct {
	logger *slog.Logger
	cfg    config.AnalysisConfig
	cutoff time.Time
}

// New creates an Analyzer for the configured window. The cutoff date comes
// pre-validated from config.Load.
func New(cfg config.AnalysisConfig, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cutoff, err := cfg.Cutoff()
	if err != nil {
		return nil, errors.NewAnalysisError("invalid analysis cutoff date", err)
	}
	return &Analyzer{logger: logger, cfg: cfg, cutoff: cutoff}, nil
}

// Cutoff returns the first date inside the analysis window
func (a *Analyzer) Cutoff() time.Time {
	return a.cutoff
}

// Analyze filters the cleaned rows to the window and computes every
// aggregate. An empty window yields a zero-count analysis with empty tables
// rather than an error; the report states the no-data outcome explicitly.
func (a *Analyzer) Analyze(ctx context.Context, rows []dataset.Row) *Analysis {
	window := FilterWindow(rows, a.cutoff)

	analysis := &Analysis{
		Cutoff:     a.cutoff,
		TotalRows:  len(rows),
		WindowRows: len(window),
		Summary:    Describe(window),
	}

	if len(window) == 0 {
		a.logger.WarnContext(ctx, "analysis window is empty",
			slog.Time("cutoff", a.cutoff),
			slog.Int("total_rows", len(rows)))
		return analysis
	}

	analysis.Countries = countCountries(window)
	analysis.FirstDate, analysis.LastDate = dateSpan(window)
	analysis.Regions = GroupByRegion(window)
	analysis.TopCountries = TopCountriesByDeaths(window, a.cfg.TopCountries)
	analysis.Daily = DailyTotals(window)
	analysis.Histogram = NewDeathsHistogram(window, a.cfg.HistogramBins)
	analysis.Sample = SampleRows(window, a.cfg.SampleSize, a.sampleSource())
	analysis.Findings = buildFindings(analysis)
	analysis.Observations = buildObservations(window, analysis)

	a.logger.InfoContext(ctx, "analysis window aggregated",
		slog.Time("cutoff", a.cutoff),
		slog.Int("window_rows", analysis.WindowRows),
		slog.Int("countries", analysis.Countries),
		slog.Int("regions", len(analysis.Regions)),
		slog.Int("sample_rows", len(analysis.Sample)))

	return analysis
}

// sampleSource seeds the scatter sample; zero means time-seeded
func (a *Analyzer) sampleSource() *rand.Rand {
	seed := a.cfg.SampleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// FilterWindow returns the rows reported on or after cutoff, preserving
// table order. The input is not mutated.
func FilterWindow(rows []dataset.Row, cutoff time.Time) []dataset.Row {
	window := make([]dataset.Row, 0, len(rows))
	for i := range rows {
		if !rows[i].DateReported.Before(cutoff) {
			window = append(window, rows[i])
		}
	}
	return window
}

// Describe computes count/mean/std/min/quartiles/max per numeric field in
// statistics order. Zero-count fields carry NaN statistics.
func Describe(rows []dataset.Row) []FieldSummary {
	summaries := make([]FieldSummary, 0, len(dataset.StatsOrder))

	for _, field := range dataset.StatsOrder {
		values := make([]float64, 0, len(rows))
		for i := range rows {
			v := rows[i].Value(field)
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		sort.Float64s(values)

		summary := FieldSummary{Field: field, Count: len(values)}
		if len(values) == 0 {
			nan := math.NaN()
			summary.Mean, summary.Std = nan, nan
			summary.Min, summary.Max = nan, nan
			summary.Q25, summary.Median, summary.Q75 = nan, nan, nan
		} else {
			summary.Mean = mean(values)
			summary.Std = sampleStd(values, summary.Mean)
			summary.Min = values[0]
			summary.Max = values[len(values)-1]
			summary.Q25 = quantile(values, 0.25)
			summary.Median = quantile(values, 0.50)
			summary.Q75 = quantile(values, 0.75)
		}
		summaries = append(summaries, summary)
	}

	return summaries
}

// GroupByRegion computes mean and sum of new cases per WHO region, ordered
// by region name. Means and sums are rounded to two decimals for display.
func GroupByRegion(rows []dataset.Row) []RegionStats {
	type acc struct {
		rows int
		sum  float64
	}
	groups := make(map[string]*acc)
	for i := range rows {
		region := rows[i].WHORegion
		if region == "" {
			region = "Unknown"
		}
		g, ok := groups[region]
		if !ok {
			g = &acc{}
			groups[region] = g
		}
		g.rows++
		g.sum += rows[i].NewCases
	}

	stats := make([]RegionStats, 0, len(groups))
	for region, g := range groups {
		stats = append(stats, RegionStats{
			Region:       region,
			Rows:         g.rows,
			MeanNewCases: round2(g.sum / float64(g.rows)),
			SumNewCases:  round2(g.sum),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Region < stats[j].Region
	})
	return stats
}

// TopCountriesByDeaths ranks countries by mean cumulative deaths, highest
// first, ties broken by name, truncated to limit.
func TopCountriesByDeaths(rows []dataset.Row, limit int) []CountryDeaths {
	type acc struct {
		rows int
		sum  float64
	}
	groups := make(map[string]*acc)
	for i := range rows {
		country := rows[i].Country
		if country == "" {
			country = rows[i].CountryCode
		}
		g, ok := groups[country]
		if !ok {
			g = &acc{}
			groups[country] = g
		}
		g.rows++
		g.sum += rows[i].CumulativeDeaths
	}

	ranked := make([]CountryDeaths, 0, len(groups))
	for country, g := range groups {
		ranked = append(ranked, CountryDeaths{
			Country:              country,
			MeanCumulativeDeaths: round2(g.sum / float64(g.rows)),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MeanCumulativeDeaths != ranked[j].MeanCumulativeDeaths {
			return ranked[i].MeanCumulativeDeaths > ranked[j].MeanCumulativeDeaths
		}
		return ranked[i].Country < ranked[j].Country
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// DailyTotals sums new cases per reporting date, ascending by date
func DailyTotals(rows []dataset.Row) []DailyTotal {
	totals := make(map[time.Time]float64)
	for i := range rows {
		totals[rows[i].DateReported] += rows[i].NewCases
	}

	daily := make([]DailyTotal, 0, len(totals))
	for date, sum := range totals {
		daily = append(daily, DailyTotal{Date: date, NewCases: sum})
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date.Before(daily[j].Date)
	})
	return daily
}

// NewDeathsHistogram distributes the window's new-death values over the
// requested number of equal-width bins. A degenerate value range widens by
// half a unit on each side so every value still lands in a bin.
func NewDeathsHistogram(rows []dataset.Row, bins int) []HistogramBin {
	if bins <= 0 || len(rows) == 0 {
		return nil
	}

	values := make([]float64, len(rows))
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for i := range rows {
		v := rows[i].NewDeaths
		values[i] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	histogram := make([]HistogramBin, bins)
	for i := range histogram {
		histogram[i].Low = lo + float64(i)*width
		histogram[i].High = lo + float64(i+1)*width
	}
	histogram[bins-1].High = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1 // max value belongs to the last bin
		}
		histogram[idx].Count++
	}
	return histogram
}

// SampleRows draws up to limit rows without replacement. Fewer rows than
// the limit returns a copy of everything; the input is never mutated.
func SampleRows(rows []dataset.Row, limit int, rng *rand.Rand) []dataset.Row {
	if limit <= 0 {
		return nil
	}
	if len(rows) <= limit {
		sample := make([]dataset.Row, len(rows))
		copy(sample, rows)
		return sample
	}

	sample := make([]dataset.Row, 0, limit)
	for _, idx := range rng.Perm(len(rows))[:limit] {
		sample = append(sample, rows[idx])
	}
	return sample
}

// countCountries counts distinct country names in the window
func countCountries(rows []dataset.Row) int {
	seen := make(map[string]struct{})
	for i := range rows {
		seen[rows[i].Country] = struct{}{}
	}
	return len(seen)
}

// dateSpan returns the earliest and latest reporting dates
func dateSpan(rows []dataset.Row) (first, last time.Time) {
	first, last = rows[0].DateReported, rows[0].DateReported
	for i := range rows {
		d := rows[i].DateReported
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return first, last
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
