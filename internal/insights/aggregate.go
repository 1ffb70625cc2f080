package insights

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vinodismyname/mcprealty/internal/dataset"
)

// yearGroup is the set of row indices sharing one coerced year.
type yearGroup struct {
	Year int
	Rows []int
}

// groupByYear groups rows by coerced year in ascending order. Rows without a year are
// dropped.
func groupByYear(t *dataset.Table) []yearGroup {
	idx := make(map[int]int)
	var groups []yearGroup
	for r := 0; r < t.Len(); r++ {
		y, ok := t.Year(r)
		if !ok {
			continue
		}
		i, seen := idx[y]
		if !seen {
			i = len(groups)
			idx[y] = i
			groups = append(groups, yearGroup{Year: y})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Year < groups[b].Year })
	return groups
}

// meanOf accumulates a mean over present values.
type meanOf struct {
	sum float64
	n   int
}

func (m *meanOf) add(f float64) { m.sum += f; m.n++ }

func (m meanOf) value() (float64, bool) {
	if m.n == 0 {
		return 0, false
	}
	return m.sum / float64(m.n), true
}

// rowPrice is the mean of the numeric cells across the price columns of one row.
func rowPrice(t *dataset.Table, row int, cols []string) (float64, bool) {
	var m meanOf
	for _, c := range cols {
		if f, ok := t.Value(row, c).Float(); ok {
			m.add(f)
		}
	}
	return m.value()
}

// groupPrice is the mean over rows of each row's price; rows without any numeric price
// cell are skipped.
func groupPrice(t *dataset.Table, rows []int, cols []string) (float64, bool) {
	if len(cols) == 0 {
		return 0, false
	}
	var m meanOf
	for _, r := range rows {
		if f, ok := rowPrice(t, r, cols); ok {
			m.add(f)
		}
	}
	return m.value()
}

// columnMean is the mean of the numeric cells of col over rows.
func columnMean(t *dataset.Table, rows []int, col string) (float64, bool) {
	if !t.Has(col) {
		return 0, false
	}
	var m meanOf
	for _, r := range rows {
		if f, ok := t.Value(r, col).Float(); ok {
			m.add(f)
		}
	}
	return m.value()
}

// soldColumns lists the columns mentioning sold or sales, in table order.
func soldColumns(t *dataset.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if strings.Contains(c, "sold") || strings.Contains(c, "sales") {
			out = append(out, c)
		}
	}
	return out
}

// fallbackDemand is used when no demand column was detected: total_units if present,
// otherwise the mean of the per-column means of sold/sales columns that have data.
// DemandRules already matches those columns, so in practice this returns missing.
func fallbackDemand(t *dataset.Table, rows []int) (float64, bool) {
	if t.Has("total_units") {
		return columnMean(t, rows, "total_units")
	}
	var m meanOf
	for _, c := range soldColumns(t) {
		if f, ok := columnMean(t, rows, c); ok {
			m.add(f)
		}
	}
	return m.value()
}

// series summarizes a sequence of optional values.
type series struct {
	vals    []float64
	present []bool
}

func (s *series) push(f float64, ok bool) {
	s.vals = append(s.vals, f)
	s.present = append(s.present, ok)
}

// stats returns mean, min, max and the indices of the first min and first max over the
// present values.
func (s series) stats() (mean, lo, hi float64, loAt, hiAt int, ok bool) {
	var m meanOf
	loAt, hiAt = -1, -1
	for i, f := range s.vals {
		if !s.present[i] {
			continue
		}
		m.add(f)
		if loAt < 0 || f < lo {
			lo, loAt = f, i
		}
		if hiAt < 0 || f > hi {
			hi, hiAt = f, i
		}
	}
	mean, ok = m.value()
	return mean, lo, hi, loAt, hiAt, ok
}

// round1 and round2 round halves to even, so 0.125 becomes 0.12.
func round1(x float64) float64 { return math.RoundToEven(x*10) / 10 }
func round2(x float64) float64 { return math.RoundToEven(x*100) / 100 }

func ptr(f float64) *float64 { return &f }

// formatNumber renders a float the way the summaries print numbers: shortest
// representation, always with a fractional part ("10.0", "5250.75").
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
