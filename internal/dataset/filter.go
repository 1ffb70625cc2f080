package dataset

import "strings"

// FilterByArea keeps rows whose ColAreaNorm contains the normalized form of any of
// the given localities. Matching is a literal substring test. ColAreaNorm is derived
// first when the table lacks it.
func FilterByArea(t *Table, areas []string) *Table {
	if t == nil {
		return Empty()
	}
	if t.Len() == 0 {
		return t.Slice(0, 0)
	}
	if !t.Has(ColAreaNorm) {
		t = WithAreaNorm(t)
	}
	needles := make([]string, 0, len(areas))
	for _, a := range areas {
		needles = append(needles, NormalizeArea(a))
	}
	norms, _ := t.Column(ColAreaNorm)
	return t.Filter(func(r int) bool {
		s := norms[r].Text()
		for _, n := range needles {
			if strings.Contains(s, n) {
				return true
			}
		}
		return false
	})
}

// DistinctAreas returns distinct non-empty ColAreaNorm values in first-seen order,
// capped at limit when limit > 0.
func DistinctAreas(t *Table, limit int) []string {
	if !t.Has(ColAreaNorm) {
		t = WithAreaNorm(t)
	}
	norms, _ := t.Column(ColAreaNorm)
	seen := make(map[string]struct{})
	var out []string
	for _, v := range norms {
		s := v.Text()
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
