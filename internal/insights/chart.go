package insights

import (
	"strconv"

	"github.com/vinodismyname/mcprealty/internal/dataset"
)

// Chart holds per-year series for one locality. The three slices always have equal
// length and are aligned by ascending year; nil entries are years without data.
type Chart struct {
	Labels []string   `json:"labels" jsonschema_description:"Years in ascending order"`
	Price  []*float64 `json:"price" jsonschema_description:"Average price per year (null when unknown)"`
	Demand []*float64 `json:"demand" jsonschema_description:"Average demand per year (null when unknown)"`
}

func emptyChart() Chart {
	return Chart{Labels: []string{}, Price: []*float64{}, Demand: []*float64{}}
}

// Len returns the number of years in the chart.
func (c Chart) Len() int { return len(c.Labels) }

// BuildChart aggregates price and demand per year for the rows of t matching area.
// Columns are detected on the whole table. lastN > 0 keeps only years within lastN of
// the latest year.
func BuildChart(t *dataset.Table, area string, lastN int) Chart {
	t = dataset.EnsureYear(t)
	priceCols := DetectPriceColumns(t)
	demandCol, hasDemand := DetectDemandColumn(t)

	sub := dataset.FilterByArea(t, []string{area})
	groups := groupByYear(sub)
	if len(groups) == 0 {
		return emptyChart()
	}

	c := Chart{
		Labels: make([]string, 0, len(groups)),
		Price:  make([]*float64, 0, len(groups)),
		Demand: make([]*float64, 0, len(groups)),
	}
	for _, g := range groups {
		c.Labels = append(c.Labels, strconv.Itoa(g.Year))

		if f, ok := groupPrice(sub, g.Rows, priceCols); ok {
			c.Price = append(c.Price, ptr(round2(f)))
		} else {
			c.Price = append(c.Price, nil)
		}

		var d float64
		var ok bool
		if hasDemand {
			d, ok = columnMean(sub, g.Rows, demandCol)
		} else {
			d, ok = fallbackDemand(sub, g.Rows)
		}
		if ok {
			c.Demand = append(c.Demand, ptr(round2(d)))
		} else {
			c.Demand = append(c.Demand, nil)
		}
	}

	if lastN > 0 {
		c = c.window(groups[len(groups)-1].Year-(lastN-1), groups)
	}
	return c
}

// window keeps the entries whose year is at least cutoff.
func (c Chart) window(cutoff int, groups []yearGroup) Chart {
	out := emptyChart()
	for i, g := range groups {
		if g.Year < cutoff {
			continue
		}
		out.Labels = append(out.Labels, c.Labels[i])
		out.Price = append(out.Price, c.Price[i])
		out.Demand = append(out.Demand, c.Demand[i])
	}
	return out
}
