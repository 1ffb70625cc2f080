package insights

import (
	"fmt"
	"strings"

	"github.com/vinodismyname/mcprealty/internal/dataset"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const closingNote = "This summary is rule-based and uses simple averages and year-over-year changes."

// trendBands map percent change to a phrase; the first band whose floor is exceeded wins.
var trendBands = []struct {
	above  float64
	phrase string
}{
	{8, "has grown strongly"},
	{2, "has grown moderately"},
	{-2, "has been broadly stable"},
	{-8, "has softened slightly"},
}

// TrendPhrase describes a percent change in price.
func TrendPhrase(pct float64) string {
	for _, b := range trendBands {
		if pct > b.above {
			return b.phrase
		}
	}
	return "has declined noticeably"
}

// Summarize renders a rule-based description of t, which must already be filtered to
// one locality. area is echoed as given by the caller. Statistics that cannot be
// computed are left out of the text.
func Summarize(t *dataset.Table, area string) string {
	if t == nil || t.Len() == 0 {
		return fmt.Sprintf("No data found for '%s'.", area)
	}

	t = dataset.EnsureYear(t)
	priceCols := DetectPriceColumns(t)
	demandCol, hasDemand := DetectDemandColumn(t)

	groups := groupByYear(t)
	if len(groups) == 0 {
		return fmt.Sprintf("Data is available for '%s', but year information is missing, so trends cannot be computed.", area)
	}

	var price series
	if len(priceCols) > 0 {
		for _, g := range groups {
			price.push(groupPrice(t, g.Rows, priceCols))
		}
	}

	// Only years with numeric demand take part in the demand statistics.
	demandSource := demandCol
	if !hasDemand && t.Has("total_units") {
		demandSource, hasDemand = "total_units", true
	}
	var demand series
	var demandYears []int
	if hasDemand {
		for _, g := range groups {
			if d, ok := columnMean(t, g.Rows, demandSource); ok {
				demand.push(d, true)
				demandYears = append(demandYears, g.Year)
			}
		}
	}

	minYear, maxYear := groups[0].Year, groups[len(groups)-1].Year
	parts := []string{
		fmt.Sprintf("Summary for %s:", cases.Title(language.Und).String(area)),
		fmt.Sprintf("Data is available from %d to %d (about %d year(s) of history).", minYear, maxYear, maxYear-minYear+1),
	}

	if avg, lo, hi, _, _, ok := price.stats(); ok {
		parts = append(parts, fmt.Sprintf(
			"The typical (average) price across the period is around %s. Observed yearly prices generally range between %s and %s.",
			formatNumber(round2(avg)), formatNumber(round2(lo)), formatNumber(round2(hi))))
	}

	if n := len(price.vals); n > 0 && price.present[0] && price.present[n-1] && price.vals[0] > 0 {
		first, last := price.vals[0], price.vals[n-1]
		pct := (last - first) / first * 100
		parts = append(parts, fmt.Sprintf(
			"From the first year in the dataset to the most recent year, the price %s, changing by roughly %s%% overall.",
			TrendPhrase(pct), formatNumber(round1(pct))))
	}

	if avg, lo, hi, loAt, hiAt, ok := demand.stats(); ok {
		label := strings.ReplaceAll(demandSource, "_", " ")
		parts = append(parts, fmt.Sprintf("The average demand (based on '%s') is about %s units per year.", label, formatNumber(round1(avg))))
		if loAt >= 0 && hiAt >= 0 {
			parts = append(parts, fmt.Sprintf(
				"Demand peaked around %d at roughly %s units, while the weakest year was %d with about %s units.",
				demandYears[hiAt], formatNumber(round1(hi)), demandYears[loAt], formatNumber(round1(lo))))
		} else {
			parts = append(parts, fmt.Sprintf(
				"Across the period, yearly demand tends to stay between about %s and %s units.",
				formatNumber(round1(lo)), formatNumber(round1(hi))))
		}
	}

	parts = append(parts, closingNote)
	return strings.Join(parts, " ")
}
