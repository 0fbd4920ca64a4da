package charts

import (
	"bytes"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicli/internal/analytics"
	"epicli/internal/config"
	"epicli/internal/dataset"
)

const (
	testWidth  = 640
	testHeight = 360
)

func testRenderer() *Renderer {
	return NewRenderer(config.ChartsConfig{Width: testWidth, Height: testHeight})
}

// requirePNG decodes the buffer and checks the canvas dimensions
func requirePNG(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	require.NotZero(t, buf.Len(), "render should produce bytes")
	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, testWidth, img.Bounds().Dx())
	assert.Equal(t, testHeight, img.Bounds().Dy())
}

func day(n int) time.Time {
	return time.Date(2025, time.March, n, 0, 0, 0, 0, time.UTC)
}

func TestLineChart(t *testing.T) {
	r := testRenderer()

	t.Run("multiple days", func(t *testing.T) {
		daily := []analytics.DailyTotal{
			{Date: day(1), NewCases: 120},
			{Date: day(2), NewCases: 340},
			{Date: day(3), NewCases: 90},
			{Date: day(4), NewCases: 510},
			{Date: day(5), NewCases: 220},
		}
		var buf bytes.Buffer
		require.NoError(t, r.LineChart(&buf, daily))
		requirePNG(t, &buf)
	})

	t.Run("single day still renders", func(t *testing.T) {
		daily := []analytics.DailyTotal{{Date: day(1), NewCases: 42}}
		var buf bytes.Buffer
		require.NoError(t, r.LineChart(&buf, daily))
		requirePNG(t, &buf)
	})

	t.Run("all zero counts", func(t *testing.T) {
		daily := []analytics.DailyTotal{
			{Date: day(1), NewCases: 0},
			{Date: day(2), NewCases: 0},
		}
		var buf bytes.Buffer
		require.NoError(t, r.LineChart(&buf, daily))
		requirePNG(t, &buf)
	})

	t.Run("empty window renders placeholder", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.LineChart(&buf, nil))
		requirePNG(t, &buf)
	})
}

func TestBarChart(t *testing.T) {
	r := testRenderer()

	t.Run("multiple regions", func(t *testing.T) {
		regions := []analytics.RegionStats{
			{Region: "Europe", Rows: 10, MeanNewCases: 412.5},
			{Region: "Africa", Rows: 8, MeanNewCases: 120.25},
			{Region: "Americas", Rows: 12, MeanNewCases: 733.0},
		}
		var buf bytes.Buffer
		require.NoError(t, r.BarChart(&buf, regions))
		requirePNG(t, &buf)
	})

	t.Run("single region", func(t *testing.T) {
		regions := []analytics.RegionStats{{Region: "Europe", Rows: 3, MeanNewCases: 55}}
		var buf bytes.Buffer
		require.NoError(t, r.BarChart(&buf, regions))
		requirePNG(t, &buf)
	})

	t.Run("zero means", func(t *testing.T) {
		regions := []analytics.RegionStats{
			{Region: "Europe", Rows: 3, MeanNewCases: 0},
			{Region: "Africa", Rows: 2, MeanNewCases: 0},
		}
		var buf bytes.Buffer
		require.NoError(t, r.BarChart(&buf, regions))
		requirePNG(t, &buf)
	})

	t.Run("empty renders placeholder", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.BarChart(&buf, nil))
		requirePNG(t, &buf)
	})
}

func TestHistogram(t *testing.T) {
	r := testRenderer()

	t.Run("fifty bins", func(t *testing.T) {
		bins := make([]analytics.HistogramBin, 50)
		for i := range bins {
			bins[i] = analytics.HistogramBin{
				Low:   float64(i) * 10,
				High:  float64(i+1) * 10,
				Count: (i * 7) % 23,
			}
		}
		var buf bytes.Buffer
		require.NoError(t, r.Histogram(&buf, bins))
		requirePNG(t, &buf)
	})

	t.Run("single bin", func(t *testing.T) {
		bins := []analytics.HistogramBin{{Low: -0.5, High: 0.5, Count: 12}}
		var buf bytes.Buffer
		require.NoError(t, r.Histogram(&buf, bins))
		requirePNG(t, &buf)
	})

	t.Run("empty renders placeholder", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Histogram(&buf, nil))
		requirePNG(t, &buf)
	})
}

func TestHistogramBarWidth(t *testing.T) {
	tests := []struct {
		name   string
		canvas int
		bins   int
		want   int
	}{
		{name: "default canvas and bins", canvas: 1280, bins: 50, want: 21},
		{name: "many bins clamp to minimum", canvas: 1280, bins: 1000, want: 2},
		{name: "few bins clamp to maximum", canvas: 1280, bins: 5, want: 80},
		{name: "small canvas", canvas: 640, bins: 50, want: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, histogramBarWidth(tt.canvas, tt.bins))
		})
	}
}

func TestScatterChart(t *testing.T) {
	r := testRenderer()

	scatterRow := func(region string, cases, deaths float64) dataset.Row {
		return dataset.Row{
			DateReported: day(1),
			CountryCode:  "XX",
			Country:      "Testland",
			WHORegion:    region,
			NewCases:     cases,
			NewDeaths:    deaths,
		}
	}

	t.Run("multiple regions", func(t *testing.T) {
		sample := []dataset.Row{
			scatterRow("EURO", 100, 2),
			scatterRow("EURO", 250, 5),
			scatterRow("AFRO", 40, 1),
			scatterRow("AMRO", 900, 20),
			scatterRow("AMRO", 1200, 31),
		}
		var buf bytes.Buffer
		require.NoError(t, r.ScatterChart(&buf, sample))
		requirePNG(t, &buf)
	})

	t.Run("single point", func(t *testing.T) {
		sample := []dataset.Row{scatterRow("EURO", 10, 1)}
		var buf bytes.Buffer
		require.NoError(t, r.ScatterChart(&buf, sample))
		requirePNG(t, &buf)
	})

	t.Run("degenerate equal values", func(t *testing.T) {
		sample := []dataset.Row{
			scatterRow("EURO", 0, 0),
			scatterRow("AFRO", 0, 0),
		}
		var buf bytes.Buffer
		require.NoError(t, r.ScatterChart(&buf, sample))
		requirePNG(t, &buf)
	})

	t.Run("blank region still renders", func(t *testing.T) {
		sample := []dataset.Row{
			scatterRow("", 5, 0),
			scatterRow("EURO", 9, 1),
		}
		var buf bytes.Buffer
		require.NoError(t, r.ScatterChart(&buf, sample))
		requirePNG(t, &buf)
	})

	t.Run("empty sample renders placeholder", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.ScatterChart(&buf, nil))
		requirePNG(t, &buf)
	})
}

func TestNiceAxisBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		wantLo   float64
		wantHi   float64
	}{
		{name: "zero to hundred", min: 0, max: 100, wantLo: -10, wantHi: 110},
		{name: "equal values expand", min: 5, max: 5, wantLo: 4.9, wantHi: 6.1},
		{name: "negative span", min: -50, max: 50, wantLo: -60, wantHi: 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := niceAxisBounds(tt.min, tt.max)
			assert.InDelta(t, tt.wantLo, lo, 1e-9)
			assert.InDelta(t, tt.wantHi, hi, 1e-9)
		})
	}

	t.Run("nan falls back to unit range", func(t *testing.T) {
		lo, hi := niceAxisBounds(math.NaN(), 5)
		assert.Equal(t, 0.0, lo)
		assert.Equal(t, 1.0, hi)
	})
}

func TestValueAxisRange(t *testing.T) {
	t.Run("anchored at zero", func(t *testing.T) {
		r := valueAxisRange(100)
		assert.Equal(t, 0.0, r.Min)
		assert.InDelta(t, 110.0, r.Max, 1e-9)
	})

	t.Run("non positive max defaults to unit scale", func(t *testing.T) {
		r := valueAxisRange(0)
		assert.Equal(t, 0.0, r.Min)
		assert.InDelta(t, 1.1, r.Max, 1e-9)
	})

	t.Run("nan max defaults to unit scale", func(t *testing.T) {
		r := valueAxisRange(math.NaN())
		assert.Equal(t, 0.0, r.Min)
		assert.InDelta(t, 1.1, r.Max, 1e-9)
	})
}

func TestNiceTicks(t *testing.T) {
	t.Run("ticks stay inside the range", func(t *testing.T) {
		ticks := niceTicks(0, 110, 6)
		require.Len(t, ticks, 6)
		assert.Equal(t, 0.0, ticks[0].Value)
		assert.InDelta(t, 100.0, ticks[len(ticks)-1].Value, 1e-9)
		for _, tick := range ticks {
			assert.GreaterOrEqual(t, tick.Value, 0.0)
			assert.LessOrEqual(t, tick.Value, 110.0)
			assert.NotEmpty(t, tick.Label)
		}
	})

	t.Run("too few requested", func(t *testing.T) {
		assert.Nil(t, niceTicks(0, 10, 1))
	})

	t.Run("nan bounds", func(t *testing.T) {
		assert.Nil(t, niceTicks(math.NaN(), 10, 5))
	})
}

func TestFormatTick(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{value: 0, want: "0"},
		{value: 5000, want: "5000"},
		{value: 12.34, want: "12.3"},
		{value: 0.5, want: "0.50"},
		{value: -3.456, want: "-3.46"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatTick(tt.value), "formatTick(%v)", tt.value)
	}
}

func TestPaletteColor(t *testing.T) {
	require.Len(t, palette, 8)
	assert.Equal(t, palette[0], paletteColor(0))
	assert.Equal(t, palette[1], paletteColor(9))
	assert.Equal(t, palette[2], paletteColor(-2))
}
