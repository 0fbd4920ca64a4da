package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateFormats are the layouts accepted for Date_reported cells
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// ParseCSV reads daily report rows from r, preserving source row order.
// Header matching is BOM-tolerant with a case-insensitive fallback. The four
// identifying columns are required; numeric columns may be absent entirely,
// in which case their cells parse as missing. Short records are tolerated,
// the absent cells parse as missing too.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := findColumnIndices(header)
	if missing := cols.missingRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("required columns not found: %v. Header: %v", missing, header)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rows = append(rows, parseRecord(record, cols))
	}

	return rows, nil
}

// columnIndices holds the indices of dataset columns in the source header
type columnIndices struct {
	date    int
	code    int
	country int
	region  int

	newCases  int
	newDeaths int
	cumCases  int
	cumDeaths int
}

// findColumnIndices finds the indices of dataset columns in the header
func findColumnIndices(header []string) columnIndices {
	cols := columnIndices{
		date:      -1,
		code:      -1,
		country:   -1,
		region:    -1,
		newCases:  -1,
		newDeaths: -1,
		cumCases:  -1,
		cumDeaths: -1,
	}

	for i, col := range header {
		// Clean BOM and other invisible characters before matching
		cleanCol := strings.TrimSpace(col)
		cleanCol = strings.TrimPrefix(cleanCol, "\uFEFF")
		cleanCol = strings.TrimLeft(cleanCol, "​‌‍⁠\uFEFF")
		cleanCol = strings.TrimSpace(cleanCol)

		switch cleanCol {
		case ColDateReported:
			cols.date = i
		case ColCountryCode:
			cols.code = i
		case ColCountry:
			cols.country = i
		case ColWHORegion:
			cols.region = i
		case ColNewCases:
			cols.newCases = i
		case ColNewDeaths:
			cols.newDeaths = i
		case ColCumulativeCases:
			cols.cumCases = i
		case ColCumulativeDeaths:
			cols.cumDeaths = i
		default:
			// Fallback to lowercase matching
			switch strings.ToLower(cleanCol) {
			case "date_reported", "date":
				cols.date = i
			case "country_code", "code":
				cols.code = i
			case "country", "country_name":
				cols.country = i
			case "who_region", "region":
				cols.region = i
			case "new_cases":
				cols.newCases = i
			case "new_deaths":
				cols.newDeaths = i
			case "cumulative_cases":
				cols.cumCases = i
			case "cumulative_deaths":
				cols.cumDeaths = i
			}
		}
	}

	return cols
}

// missingRequired lists required identifying columns absent from the header
func (c columnIndices) missingRequired() []string {
	var missing []string
	if c.date == -1 {
		missing = append(missing, ColDateReported)
	}
	if c.code == -1 {
		missing = append(missing, ColCountryCode)
	}
	if c.country == -1 {
		missing = append(missing, ColCountry)
	}
	if c.region == -1 {
		missing = append(missing, ColWHORegion)
	}
	return missing
}

// parseRecord converts one CSV record into a Row
func parseRecord(record []string, cols columnIndices) Row {
	return Row{
		DateReported:     parseDate(cell(record, cols.date)),
		CountryCode:      cell(record, cols.code),
		Country:          cell(record, cols.country),
		WHORegion:        cell(record, cols.region),
		NewCases:         parseNumber(cell(record, cols.newCases)),
		NewDeaths:        parseNumber(cell(record, cols.newDeaths)),
		CumulativeCases:  parseNumber(cell(record, cols.cumCases)),
		CumulativeDeaths: parseNumber(cell(record, cols.cumDeaths)),
	}
}

// cell returns the trimmed value at idx, or "" when the record is short
// or the column is absent from the header.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseDate parses a reporting date, returning the zero time when no
// accepted layout matches. Cleaning drops such rows.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseNumber maps empty or malformed cells to NaN for the cleaning stage
func parseNumber(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
