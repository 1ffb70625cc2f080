package dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical column names.
const (
	ColArea     = "area"
	ColAreaNorm = "_area_norm"
	ColYear     = "year"
)

// areaAliases are checked in order; the first one present becomes ColArea.
var areaAliases = []string{
	"final_location", "area", "locality", "location", "area_name", "place",
	"neighbourhood", "neighborhood", "locality_name",
}

// yearAliases are consulted only when no ColYear column exists.
var yearAliases = []string{"yr", "year_covered", "reporting_year"}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeColumnName turns a raw header into a token of [a-z0-9_]: lower-case, fold
// accents, treat '-' and '/' as spaces, drop other punctuation, collapse whitespace
// and join words with '_'. Separator runs such as " - " become a single '_', so
// "Total Sold - IGR" is total_sold_igr. The empty header normalizes to "".
func NormalizeColumnName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if folded, _, err := transform.String(foldAccents, s); err == nil {
		s = folded
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r == '-', r == '/', unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(s), "_")
}

// NormalizeArea prepares locality text for matching: trimmed, lower-cased, with
// internal whitespace runs collapsed to one space.
func NormalizeArea(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Normalize renames every column to its normalized form, applies the area and year
// alias passes, synthesizes a missing area column and derives ColAreaNorm.
func Normalize(t *Table) *Table {
	out := &Table{data: make(map[string][]Value, len(t.data)), rows: t.rows}
	for _, name := range t.columns {
		out.put(NormalizeColumnName(name), t.data[name])
	}

	for _, cand := range areaAliases {
		if out.Has(cand) {
			out = out.Rename(cand, ColArea)
			break
		}
	}
	if !out.Has(ColArea) {
		out = out.WithColumn(ColArea, make([]Value, out.rows))
	}

	if !out.Has(ColYear) {
		for _, cand := range yearAliases {
			if out.Has(cand) {
				out = out.Rename(cand, ColYear)
				break
			}
		}
	}
	return WithAreaNorm(out)
}

// WithAreaNorm recomputes ColAreaNorm from ColArea. Missing areas normalize to "".
func WithAreaNorm(t *Table) *Table {
	area, _ := t.Column(ColArea)
	norms := make([]Value, t.rows)
	for r := 0; r < t.rows; r++ {
		var s string
		if r < len(area) {
			s = NormalizeArea(area[r].Text())
		}
		norms[r] = Value{Kind: KindString, Str: s}
	}
	return t.WithColumn(ColAreaNorm, norms)
}
