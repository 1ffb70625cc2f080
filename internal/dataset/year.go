package dataset

import (
	"math"
	"strings"

	"github.com/araddon/dateparse"
)

// CoerceYear converts a cell to a calendar year. Numbers must be whole; text that is
// not numeric goes through free-form date parsing. Anything else is missing.
func CoerceYear(v Value) (year int, ok bool) {
	if v.IsMissing() {
		return 0, false
	}
	if f, isNum := v.Float(); isNum {
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	return parseDateYear(v.Str)
}

func parseDateYear(s string) (year int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	defer func() {
		if recover() != nil {
			year, ok = 0, false
		}
	}()
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return 0, false
	}
	return t.Year(), true
}

// EnsureYear returns a copy whose ColYear column holds whole-number years or missing
// values. A table without ColYear gains an all-missing one.
func EnsureYear(t *Table) *Table {
	src, _ := t.Column(ColYear)
	years := make([]Value, t.rows)
	for r := range years {
		if r >= len(src) {
			break
		}
		if y, ok := CoerceYear(src[r]); ok {
			years[r] = Number(float64(y))
		}
	}
	return t.WithColumn(ColYear, years)
}

// Year returns the coerced year of a row.
func (t *Table) Year(row int) (int, bool) {
	return CoerceYear(t.Value(row, ColYear))
}
