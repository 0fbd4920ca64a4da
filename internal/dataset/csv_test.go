package dataset

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date_reported,Country_code,Country,WHO_region,New_cases,New_deaths,Cumulative_cases,Cumulative_deaths
2025-01-01,AF,Afghanistan,EMRO,10,1,230000,7998
2025-01-02,AF,Afghanistan,EMRO,12,0,230012,7998
2025-01-01,US,United States of America,AMRO,5000,30,103400000,1120000
`

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), first.DateReported)
	assert.Equal(t, "AF", first.CountryCode)
	assert.Equal(t, "Afghanistan", first.Country)
	assert.Equal(t, "EMRO", first.WHORegion)
	assert.Equal(t, 10.0, first.NewCases)
	assert.Equal(t, 1.0, first.NewDeaths)
	assert.Equal(t, 230000.0, first.CumulativeCases)
	assert.Equal(t, 7998.0, first.CumulativeDeaths)

	// Source row order is preserved
	assert.Equal(t, "US", rows[2].CountryCode)
}

func TestParseCSV_HeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		verify func(*testing.T, []Row)
	}{
		{
			name:  "BOM prefixed header",
			input: "\uFEFF" + sampleCSV,
			verify: func(t *testing.T, rows []Row) {
				require.Len(t, rows, 3)
				assert.Equal(t, "AF", rows[0].CountryCode)
			},
		},
		{
			name: "lowercase header fallback",
			input: "date_reported,country_code,country,who_region,new_cases,new_deaths,cumulative_cases,cumulative_deaths\n" +
				"2025-02-01,IQ,Iraq,EMRO,3,0,2465545,25375\n",
			verify: func(t *testing.T, rows []Row) {
				require.Len(t, rows, 1)
				assert.Equal(t, "IQ", rows[0].CountryCode)
				assert.Equal(t, 3.0, rows[0].NewCases)
			},
		},
		{
			name: "reordered columns",
			input: "Country,Country_code,WHO_region,Date_reported,New_deaths,New_cases,Cumulative_deaths,Cumulative_cases\n" +
				"Iraq,IQ,EMRO,2025-02-01,0,3,25375,2465545\n",
			verify: func(t *testing.T, rows []Row) {
				require.Len(t, rows, 1)
				assert.Equal(t, 3.0, rows[0].NewCases)
				assert.Equal(t, 2465545.0, rows[0].CumulativeCases)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			tt.verify(t, rows)
		})
	}
}

func TestParseCSV_MissingCells(t *testing.T) {
	input := `Date_reported,Country_code,Country,WHO_region,New_cases,New_deaths,Cumulative_cases,Cumulative_deaths
,AF,Afghanistan,EMRO,10,1,100,5
2025-01-02,,Afghanistan,EMRO,not-a-number,1,,5
2025-01-03,AF,Afghanistan,EMRO
`
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.False(t, rows[0].HasDate())
	assert.Equal(t, "", rows[1].CountryCode)
	assert.True(t, math.IsNaN(rows[1].NewCases), "malformed number should parse as missing")
	assert.True(t, math.IsNaN(rows[1].CumulativeCases), "empty cell should parse as missing")

	// Short record: all numeric cells missing
	short := rows[2]
	assert.True(t, short.HasDate())
	for _, f := range StatsOrder {
		assert.True(t, math.IsNaN(short.Value(f)), "field %s", f)
	}
}

func TestParseCSV_MissingNumericColumn(t *testing.T) {
	input := `Date_reported,Country_code,Country,WHO_region,New_cases
2025-01-01,AF,Afghanistan,EMRO,10
`
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, 10.0, rows[0].NewCases)
	assert.True(t, math.IsNaN(rows[0].NewDeaths))
	assert.True(t, math.IsNaN(rows[0].CumulativeCases))
	assert.True(t, math.IsNaN(rows[0].CumulativeDeaths))
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		errContains string
	}{
		{
			name:        "empty input",
			input:       "",
			errContains: "no header row",
		},
		{
			name:        "missing required columns",
			input:       "New_cases,New_deaths\n1,2\n",
			errContains: "required columns not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	input := "Date_reported,Country_code,Country,WHO_region,New_cases,New_deaths,Cumulative_cases,Cumulative_deaths\n"
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-03-09", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"2025/03/09", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"03/09/2025", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"09.03.2025", time.Time{}},
		{"", time.Time{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDate(tt.input), "input %q", tt.input)
	}
}
