package cleaning

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicli/internal/dataset"
	"epicli/internal/shared/testutil"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func validRow(d int, newCases float64) dataset.Row {
	return dataset.Row{
		DateReported:     day(d),
		CountryCode:      "AF",
		Country:          "Afghanistan",
		WHORegion:        "EMRO",
		NewCases:         newCases,
		NewDeaths:        0,
		CumulativeCases:  100,
		CumulativeDeaths: 10,
	}
}

func TestClean_DropsRowsMissingIdentifiers(t *testing.T) {
	rows := []dataset.Row{
		validRow(1, 5),
		{CountryCode: "AF", Country: "Afghanistan", WHORegion: "EMRO"},    // no date
		{DateReported: day(2), Country: "Afghanistan", WHORegion: "EMRO"}, // no code
		validRow(3, 7),
	}

	result := New(nil).Clean(context.Background(), rows)

	assert.Equal(t, 4, result.InputRows)
	assert.Equal(t, 2, result.DroppedRows)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, 5.0, result.Rows[0].NewCases)
	assert.Equal(t, 7.0, result.Rows[1].NewCases)
}

func TestClean_ForwardFillTakesPriorValue(t *testing.T) {
	rows := []dataset.Row{
		validRow(1, 12),
		validRow(2, math.NaN()),
		validRow(3, math.NaN()),
		validRow(4, 9),
		validRow(5, math.NaN()),
	}

	result := New(nil).Clean(context.Background(), rows)
	require.Len(t, result.Rows, 5)

	// A run of gaps repeats the last valid value above it
	assert.Equal(t, 12.0, result.Rows[1].NewCases)
	assert.Equal(t, 12.0, result.Rows[2].NewCases)
	assert.Equal(t, 9.0, result.Rows[4].NewCases)
	assert.Equal(t, 3, result.FilledCells)
}

func TestClean_LeadingGapBecomesZero(t *testing.T) {
	rows := []dataset.Row{
		validRow(1, math.NaN()),
		validRow(2, math.NaN()),
		validRow(3, 4),
	}

	result := New(nil).Clean(context.Background(), rows)
	require.Len(t, result.Rows, 3)

	assert.Equal(t, 0.0, result.Rows[0].NewCases)
	assert.Equal(t, 0.0, result.Rows[1].NewCases)
	assert.Equal(t, 4.0, result.Rows[2].NewCases)
}

// Three rows, one gap right after a known value: the gap takes that value.
func TestClean_ThreeRowFillScenario(t *testing.T) {
	rows := []dataset.Row{
		validRow(1, 3),
		validRow(2, math.NaN()),
		validRow(3, 8),
	}

	result := New(nil).Clean(context.Background(), rows)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, 3.0, result.Rows[1].NewCases)
	assert.Equal(t, 1, result.FilledCells)
	assert.True(t, result.Complete())
}

func TestClean_NoMissingValuesRemain(t *testing.T) {
	rows := []dataset.Row{
		{
			DateReported: day(1),
			CountryCode:  "US",
			Country:      "United States of America",
			WHORegion:    "AMRO",
			NewCases:     math.NaN(),
			NewDeaths:    math.NaN(),
			CumulativeCases:  math.NaN(),
			CumulativeDeaths: math.NaN(),
		},
		{
			DateReported: day(2),
			CountryCode:  "US",
			Country:      "United States of America",
			WHORegion:    "AMRO",
			NewCases:     10,
			NewDeaths:    math.NaN(),
			CumulativeCases:  500,
			CumulativeDeaths: math.NaN(),
		},
	}

	result := New(nil).Clean(context.Background(), rows)

	assert.True(t, result.Complete())
	for i := range result.Rows {
		for _, f := range dataset.StatsOrder {
			v := result.Rows[i].Value(f)
			assert.False(t, math.IsNaN(v), "row %d field %s still missing", i, f)
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestClean_FillsAreColumnIndependent(t *testing.T) {
	r1 := validRow(1, 5)
	r1.NewDeaths = 2
	r2 := validRow(2, math.NaN())
	r2.NewDeaths = math.NaN()
	r2.CumulativeCases = math.NaN()

	result := New(nil).Clean(context.Background(), []dataset.Row{r1, r2})
	require.Len(t, result.Rows, 2)

	filled := result.Rows[1]
	assert.Equal(t, 5.0, filled.NewCases)
	assert.Equal(t, 2.0, filled.NewDeaths)
	assert.Equal(t, 100.0, filled.CumulativeCases)
	assert.Equal(t, 3, result.FilledCells)
}

func TestClean_ClampsNegativesAndRounds(t *testing.T) {
	r1 := validRow(1, -25) // reporting correction in the source
	r2 := validRow(2, 3.4)

	result := New(nil).Clean(context.Background(), []dataset.Row{r1, r2})
	require.Len(t, result.Rows, 2)

	assert.Equal(t, 0.0, result.Rows[0].NewCases)
	assert.Equal(t, 3.0, result.Rows[1].NewCases)
	assert.Equal(t, 1, result.ClampedValues)
}

func TestClean_EmptyInput(t *testing.T) {
	result := New(nil).Clean(context.Background(), nil)

	assert.Equal(t, 0, result.InputRows)
	assert.Equal(t, 0, result.DroppedRows)
	assert.Empty(t, result.Rows)
	assert.True(t, result.Complete())
}

func TestClean_LogsCounts(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	rows := []dataset.Row{
		validRow(1, 4),
		validRow(2, math.NaN()),
		{DateReported: day(3)}, // dropped
	}

	New(logger).Clean(context.Background(), rows)

	assert.True(t, logs.ContainsMessage("dataset cleaned"))
	assert.True(t, logs.ContainsAttr("input_rows", int64(3)))
	assert.True(t, logs.ContainsAttr("dropped_rows", int64(1)))
	assert.True(t, logs.ContainsAttr("filled_cells", int64(1)))
}

func TestClean_DoesNotMutateDroppedRowCounts(t *testing.T) {
	// A dropped row must not act as a fill source
	dropped := dataset.Row{ // no country code
		DateReported:     day(1),
		NewCases:         99,
		NewDeaths:        99,
		CumulativeCases:  99,
		CumulativeDeaths: 99,
	}
	gap := validRow(2, math.NaN())

	result := New(nil).Clean(context.Background(), []dataset.Row{dropped, gap})
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 0.0, result.Rows[0].NewCases, "gap after dropped row has no prior value")
}
