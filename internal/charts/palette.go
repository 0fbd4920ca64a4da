package charts

import "github.com/wcharczuk/go-chart/v2/drawing"

// palette holds the viridis-style colors used for categorical series,
// darkest to brightest. Regions cycle through it in display order.
var palette = []drawing.Color{
	drawing.ColorFromHex("440154"),
	drawing.ColorFromHex("46327e"),
	drawing.ColorFromHex("365c8d"),
	drawing.ColorFromHex("277f8e"),
	drawing.ColorFromHex("1fa187"),
	drawing.ColorFromHex("4ac16d"),
	drawing.ColorFromHex("a0da39"),
	drawing.ColorFromHex("fde725"),
}

// paletteColor returns the i-th categorical color, wrapping when the
// category count exceeds the palette.
func paletteColor(i int) drawing.Color {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}
