package insights

import (
	"strings"

	"github.com/vinodismyname/mcprealty/internal/dataset"
)

// MatchOp is the comparison a Condition applies to a normalized column name.
type MatchOp int

const (
	OpEquals MatchOp = iota
	OpContains
	OpHasPrefix
)

// Condition tests one normalized column name.
type Condition struct {
	Op      MatchOp
	Pattern string
}

func (c Condition) match(name string) bool {
	switch c.Op {
	case OpEquals:
		return name == c.Pattern
	case OpContains:
		return strings.Contains(name, c.Pattern)
	case OpHasPrefix:
		return strings.HasPrefix(name, c.Pattern)
	default:
		return false
	}
}

// Rule matches a column when every condition holds. Lower priority wins.
type Rule struct {
	Priority int
	All      []Condition
}

func (r Rule) match(name string) bool {
	for _, c := range r.All {
		if !c.match(name) {
			return false
		}
	}
	return len(r.All) > 0
}

// RuleSet is an ordered, declarative column selection table.
type RuleSet []Rule

// Match returns the columns, in table order, matched by the best (lowest) priority tier
// that matches anything.
func (rs RuleSet) Match(columns []string) []string {
	best := -1
	var out []string
	for _, name := range columns {
		p, ok := rs.priority(name)
		if !ok {
			continue
		}
		switch {
		case best < 0 || p < best:
			best = p
			out = []string{name}
		case p == best:
			out = append(out, name)
		}
	}
	return out
}

// priority returns the best priority of any rule matching name.
func (rs RuleSet) priority(name string) (int, bool) {
	best, found := 0, false
	for _, r := range rs {
		if r.match(name) && (!found || r.Priority < best) {
			best, found = r.Priority, true
		}
	}
	return best, found
}

func contains(s string) Condition  { return Condition{Op: OpContains, Pattern: s} }
func equals(s string) Condition    { return Condition{Op: OpEquals, Pattern: s} }
func hasPrefix(s string) Condition { return Condition{Op: OpHasPrefix, Pattern: s} }

// PriceRules selects price columns: flat weighted-average rates, then any weighted-average
// rate, then anything mentioning rate or price. Every column of the winning tier is used.
var PriceRules = RuleSet{
	{Priority: 1, All: []Condition{contains("weighted_average_rate"), hasPrefix("flat")}},
	{Priority: 2, All: []Condition{contains("weighted_average_rate")}},
	{Priority: 3, All: []Condition{contains("rate")}},
	{Priority: 3, All: []Condition{contains("price")}},
}

// DemandRules selects the demand column: known volume columns by exact name in
// preference order, then the first column mentioning sold, sales, total or units.
var DemandRules = RuleSet{
	{Priority: 1, All: []Condition{equals("total_sold_igr")}},
	{Priority: 2, All: []Condition{equals("total_sales_igr")}},
	{Priority: 3, All: []Condition{equals("total_units")}},
	{Priority: 4, All: []Condition{equals("total_carpet_area_supplied_sqft")}},
	{Priority: 5, All: []Condition{contains("sold")}},
	{Priority: 5, All: []Condition{contains("sales")}},
	{Priority: 5, All: []Condition{contains("total")}},
	{Priority: 5, All: []Condition{contains("units")}},
}

// DetectPriceColumns returns zero or more price columns. Multiple columns are averaged
// row-wise by the aggregations.
func DetectPriceColumns(t *dataset.Table) []string {
	return PriceRules.Match(t.Columns())
}

// DetectDemandColumn returns the single demand column, if any.
func DetectDemandColumn(t *dataset.Table) (string, bool) {
	m := DemandRules.Match(t.Columns())
	if len(m) == 0 {
		return "", false
	}
	return m[0], true
}
