package analytics

import (
	"fmt"
	"math"

	"epicli/internal/dataset"
)

const dateLayout = "2006-01-02"

// buildFindings derives the analysis findings from the aggregates instead
// of restating fixed claims about the dataset. Callers skip this for an
// empty window.
func buildFindings(a *Analysis) []string {
	findings := make([]string, 0, 5)

	findings = append(findings, fmt.Sprintf(
		"The window spans %s to %s with %d rows across %d countries/areas.",
		a.FirstDate.Format(dateLayout), a.LastDate.Format(dateLayout),
		a.WindowRows, a.Countries))

	if cases := summaryFor(a.Summary, dataset.FieldNewCases); cases != nil && cases.Count > 0 {
		if math.IsNaN(cases.Std) {
			findings = append(findings, fmt.Sprintf(
				"Global new cases average %.2f per day (too few rows for a deviation estimate).",
				cases.Mean))
		} else {
			findings = append(findings, fmt.Sprintf(
				"Global new cases average %.2f per day with a standard deviation of %.2f, indicating reporting variability.",
				cases.Mean, cases.Std))
		}
	}

	if top := highestMeanRegion(a.Regions); top != nil {
		findings = append(findings, fmt.Sprintf(
			"The %s region has the highest mean new cases (%.2f per day across %d rows).",
			top.Region, top.MeanNewCases, top.Rows))
	}

	if len(a.TopCountries) > 0 {
		leader := a.TopCountries[0]
		findings = append(findings, fmt.Sprintf(
			"%s carries the highest mean cumulative deaths (%.2f).",
			leader.Country, leader.MeanCumulativeDeaths))
	}

	if peak := peakDay(a.Daily); peak != nil {
		findings = append(findings, fmt.Sprintf(
			"Global new cases peaked on %s with %.0f reported.",
			peak.Date.Format(dateLayout), peak.NewCases))
	}

	return findings
}

// buildObservations adds the cross-field observations: case/death
// correlation, zero-death share, and the direction of the daily trend.
func buildObservations(window []dataset.Row, a *Analysis) []string {
	observations := make([]string, 0, 3)

	cases := make([]float64, len(window))
	deaths := make([]float64, len(window))
	zeroDeathRows := 0
	for i := range window {
		cases[i] = window[i].NewCases
		deaths[i] = window[i].NewDeaths
		if window[i].NewDeaths == 0 {
			zeroDeathRows++
		}
	}

	if r := pearson(cases, deaths); !math.IsNaN(r) {
		observations = append(observations, fmt.Sprintf(
			"New cases and new deaths show a %s correlation (r=%.2f).",
			correlationStrength(r), r))
	}

	observations = append(observations, fmt.Sprintf(
		"%.1f%% of country-day rows in the window report zero new deaths.",
		100*float64(zeroDeathRows)/float64(len(window))))

	if trend := trendDirection(a.Daily); trend != "" {
		observations = append(observations, trend)
	}

	return observations
}

func summaryFor(summaries []FieldSummary, field dataset.Field) *FieldSummary {
	for i := range summaries {
		if summaries[i].Field == field {
			return &summaries[i]
		}
	}
	return nil
}

func highestMeanRegion(regions []RegionStats) *RegionStats {
	var top *RegionStats
	for i := range regions {
		if top == nil || regions[i].MeanNewCases > top.MeanNewCases {
			top = &regions[i]
		}
	}
	return top
}

func peakDay(daily []DailyTotal) *DailyTotal {
	var peak *DailyTotal
	for i := range daily {
		if peak == nil || daily[i].NewCases > peak.NewCases {
			peak = &daily[i]
		}
	}
	return peak
}

// correlationStrength buckets |r| into the usual descriptive labels
func correlationStrength(r float64) string {
	abs := math.Abs(r)
	var strength string
	switch {
	case abs >= 0.7:
		strength = "strong"
	case abs >= 0.4:
		strength = "moderate"
	case abs >= 0.2:
		strength = "weak"
	default:
		strength = "negligible"
	}
	if r < 0 {
		return strength + " negative"
	}
	return strength + " positive"
}

// trendDirection compares first-half and second-half means of the daily
// totals. Halves within five percent of each other read as stable.
func trendDirection(daily []DailyTotal) string {
	if len(daily) < 2 {
		return ""
	}

	mid := len(daily) / 2
	var firstSum, secondSum float64
	for _, d := range daily[:mid] {
		firstSum += d.NewCases
	}
	for _, d := range daily[mid:] {
		secondSum += d.NewCases
	}
	firstMean := firstSum / float64(mid)
	secondMean := secondSum / float64(len(daily)-mid)

	direction := "held steady"
	if firstMean > 0 || secondMean > 0 {
		switch diff := secondMean - firstMean; {
		case math.Abs(diff) <= 0.05*math.Max(firstMean, secondMean):
			direction = "held steady"
		case diff > 0:
			direction = "rose"
		default:
			direction = "declined"
		}
	}

	return fmt.Sprintf(
		"Daily new cases %s across the window (first-half mean %.2f, second-half mean %.2f).",
		direction, firstMean, secondMean)
}
