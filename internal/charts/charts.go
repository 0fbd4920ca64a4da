// Package charts renders the four analysis visualizations as PNG images.
// Every renderer draws to an io.Writer from a fresh chart value, so no
// plotting state survives between charts; file placement belongs to the
// files package.
package charts

import (
	"io"
	"math"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"epicli/internal/analytics"
	"epicli/internal/config"
	"epicli/internal/dataset"
)

// Chart titles, matching the saved artifacts in render order
const (
	LineTitle      = "Global New COVID-19 Cases Trend"
	BarTitle       = "Average New COVID-19 Cases by WHO Region"
	HistogramTitle = "Distribution of Daily New COVID-19 Deaths"
	ScatterTitle   = "New COVID-19 Cases vs. New Deaths by Region"
)

// Renderer draws the analysis charts on a fixed canvas size
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a Renderer with the configured canvas
func NewRenderer(cfg config.ChartsConfig) *Renderer {
	return &Renderer{width: cfg.Width, height: cfg.Height}
}

// pointStyle renders points only, no connecting stroke
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// padding keeps titles and rotated tick labels inside the canvas
func padding() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 40}}
}

// LineChart draws the daily global new-case totals as a time series.
// An empty window renders the titled placeholder instead.
func (r *Renderer) LineChart(w io.Writer, daily []analytics.DailyTotal) error {
	if len(daily) == 0 {
		return r.placeholder(w, LineTitle)
	}

	times := make([]time.Time, len(daily))
	values := make([]float64, len(daily))
	maxY := 0.0
	for i, d := range daily {
		times[i] = d.Date
		values[i] = d.NewCases
		maxY = math.Max(maxY, d.NewCases)
	}

	// The renderer refuses a zero-width x-range; a lone day gets a twin
	// point one day later.
	if len(times) == 1 {
		times = append(times, times[0].AddDate(0, 0, 1))
		values = append(values, values[0])
	}

	ch := chart.Chart{
		Title:      LineTitle,
		Width:      r.width,
		Height:     r.height,
		Background: padding(),
		XAxis: chart.XAxis{
			Name:           "Date",
			Style:          chart.Style{TextRotationDegrees: 45.0},
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: chart.YAxis{
			Name:  "New Cases",
			Range: valueAxisRange(maxY),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Global New Cases",
				XValues: times,
				YValues: values,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2.0,
				},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.PNG, w)
}

// BarChart draws mean new cases per WHO region, ascending by value
func (r *Renderer) BarChart(w io.Writer, regions []analytics.RegionStats) error {
	if len(regions) == 0 {
		return r.placeholder(w, BarTitle)
	}

	ordered := make([]analytics.RegionStats, len(regions))
	copy(ordered, regions)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].MeanNewCases != ordered[j].MeanNewCases {
			return ordered[i].MeanNewCases < ordered[j].MeanNewCases
		}
		return ordered[i].Region < ordered[j].Region
	})

	bars := make([]chart.Value, 0, len(ordered))
	maxY := 0.0
	for i, region := range ordered {
		maxY = math.Max(maxY, region.MeanNewCases)
		col := paletteColor(i)
		bars = append(bars, chart.Value{
			Label: region.Region,
			Value: region.MeanNewCases,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}

	ch := chart.BarChart{
		Title:      BarTitle,
		Width:      r.width,
		Height:     r.height,
		Background: padding(),
		BarWidth:   80,
		BarSpacing: 40,
		YAxis: chart.YAxis{
			Name:  "Average New Cases per Day",
			Range: valueAxisRange(maxY),
		},
		Bars: bars,
	}

	return ch.Render(chart.PNG, w)
}

// Histogram draws the new-death distribution bins as adjacent bars,
// labeling roughly every tenth bin edge.
func (r *Renderer) Histogram(w io.Writer, bins []analytics.HistogramBin) error {
	if len(bins) == 0 {
		return r.placeholder(w, HistogramTitle)
	}

	labelEvery := len(bins) / 10
	if labelEvery < 1 {
		labelEvery = 1
	}

	bars := make([]chart.Value, len(bins))
	maxY := 0.0
	for i, bin := range bins {
		label := ""
		if i%labelEvery == 0 {
			label = formatTick(bin.Low)
		}
		maxY = math.Max(maxY, float64(bin.Count))
		bars[i] = chart.Value{
			Label: label,
			Value: float64(bin.Count),
			Style: chart.Style{
				FillColor:   chart.ColorRed,
				StrokeColor: chart.ColorBlack,
				StrokeWidth: 1.0,
			},
		}
	}

	ch := chart.BarChart{
		Title:      HistogramTitle,
		Width:      r.width,
		Height:     r.height,
		Background: padding(),
		BarWidth:   histogramBarWidth(r.width, len(bins)),
		BarSpacing: 2,
		YAxis: chart.YAxis{
			Name:  "Frequency",
			Range: valueAxisRange(maxY),
		},
		Bars: bars,
	}

	return ch.Render(chart.PNG, w)
}

// histogramBarWidth sizes bins to the canvas, leaving room for the y-axis
func histogramBarWidth(canvasWidth, bins int) int {
	w := (canvasWidth - 200) / bins
	if w < 2 {
		return 2
	}
	if w > 80 {
		return 80
	}
	return w
}

// ScatterChart draws the sampled rows as dot-only series, one per WHO
// region, with a legend. Axis ranges are padded explicitly so degenerate
// samples (all values equal) still render.
func (r *Renderer) ScatterChart(w io.Writer, sample []dataset.Row) error {
	if len(sample) == 0 {
		return r.placeholder(w, ScatterTitle)
	}

	groups := make(map[string][]dataset.Row)
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for i := range sample {
		region := sample[i].WHORegion
		if region == "" {
			region = "Unknown"
		}
		groups[region] = append(groups[region], sample[i])
		minX = math.Min(minX, sample[i].NewCases)
		maxX = math.Max(maxX, sample[i].NewCases)
		minY = math.Min(minY, sample[i].NewDeaths)
		maxY = math.Max(maxY, sample[i].NewDeaths)
	}

	regions := make([]string, 0, len(groups))
	for region := range groups {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	series := make([]chart.Series, 0, len(regions))
	for i, region := range regions {
		points := groups[region]
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for j := range points {
			xs[j] = points[j].NewCases
			ys[j] = points[j].NewDeaths
		}
		series = append(series, chart.ContinuousSeries{
			Name:    region,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(paletteColor(i)),
		})
	}

	loX, hiX := niceAxisBounds(minX, maxX)
	loY, hiY := niceAxisBounds(minY, maxY)

	ch := chart.Chart{
		Title:      ScatterTitle,
		Width:      r.width,
		Height:     r.height,
		Background: padding(),
		XAxis: chart.XAxis{
			Name:  "New Cases",
			Range: &chart.ContinuousRange{Min: loX, Max: hiX},
			Ticks: niceTicks(loX, hiX, 8),
		},
		YAxis: chart.YAxis{
			Name:  "New Deaths",
			Range: &chart.ContinuousRange{Min: loY, Max: hiY},
			Ticks: niceTicks(loY, hiY, 6),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.PNG, w)
}

// placeholder keeps the four-artifact contract alive for an empty window:
// a titled canvas with a "no data" annotation and hidden axes.
func (r *Renderer) placeholder(w io.Writer, title string) error {
	ch := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: padding(),
		XAxis:      chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis:      chart.YAxis{Style: chart.Style{Hidden: true}},
		Series: []chart.Series{
			// Invisible span so the renderer has a valid data range
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: chart.ColorTransparent},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{XValue: 0.5, YValue: 0.5, Label: "no data in analysis window"},
				},
			},
		},
	}

	return ch.Render(chart.PNG, w)
}
