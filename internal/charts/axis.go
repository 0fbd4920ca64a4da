package charts

import (
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// niceAxisBounds expands [min,max] by a small margin and rounds outward to
// round numbers so degenerate data (all values equal, single category)
// still yields a valid, readable axis range.
func niceAxisBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return 0, 1
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	pad := span * 0.05
	lo := min - pad
	hi := max + pad

	// Round one decade finer than the span so the padding stays modest
	mag := math.Pow(10, math.Floor(math.Log10(span))-1)
	if !math.IsInf(mag, 0) && mag > 0 {
		lo = math.Floor(lo/mag) * mag
		hi = math.Ceil(hi/mag) * mag
	}
	return lo, hi
}

// valueAxisRange is the padded y-range for count-like values: anchored at
// zero with a rounded-up maximum.
func valueAxisRange(max float64) *chart.ContinuousRange {
	if math.IsNaN(max) || max <= 0 {
		max = 1
	}
	_, hi := niceAxisBounds(0, max)
	return &chart.ContinuousRange{Min: 0, Max: hi}
}

// niceTicks generates up to n tick marks between [min, max] on 1/2/2.5/5
// increments scaled to the span.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}

	mag := math.Pow(10, math.Floor(math.Log10((max-min)/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil((max - min) / step)
		if count < 2 {
			count = 2
		}
		if score := math.Abs(count - float64(n)); score < bestScore {
			bestScore = score
			bestStep = step
		}
	}

	// Keep every tick inside [min, max] so none render beyond the plot box
	start := math.Ceil(min/bestStep) * bestStep
	var ticks []chart.Tick
	for v := start; v <= max+bestStep*1e-6; v += bestStep {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	if len(ticks) < 2 {
		return nil
	}
	return ticks
}

// formatTick trims decimals as magnitudes grow
func formatTick(v float64) string {
	av := math.Abs(v)
	switch {
	case v == 0:
		return "0"
	case av >= 1000:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
