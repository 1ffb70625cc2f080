package insights

import (
	"context"
	"fmt"

	"github.com/vinodismyname/mcprealty/internal/dataset"
)

// table builds a normalized table from a header and text rows.
func table(header []string, rows ...[]string) *dataset.Table {
	vals := make([][]dataset.Value, len(rows))
	for i, r := range rows {
		row := make([]dataset.Value, len(r))
		for j, c := range r {
			row[j] = dataset.Infer(c)
		}
		vals[i] = row
	}
	return dataset.Normalize(dataset.NewTable(header, vals))
}

// puneTable is a small multi-locality dataset in the shape of the preloaded workbook.
func puneTable() *dataset.Table {
	return table(
		[]string{"Final Location", "Year", "Flat - Weighted Average Rate", "Office - Weighted Average Rate", "Total Sold - IGR"},
		[]string{"Wakad", "2019", "5000", "9000", "100"},
		[]string{"Wakad", "2020", "5200", "9100", "120"},
		[]string{"Wakad Phase 2", "2020", "5400", "", "80"},
		[]string{"Wakad", "2021", "5500", "9300", "150"},
		[]string{"Aundh", "2019", "8000", "12000", "60"},
		[]string{"Aundh", "2021", "8800", "12500", "75"},
		[]string{"Baner", "n/a", "7000", "", "40"},
	)
}

// staticLoader serves prebuilt tables by source name.
type staticLoader struct {
	tables map[string]*dataset.Table
	calls  int
}

func (l *staticLoader) Load(_ context.Context, source string) (*dataset.Table, error) {
	l.calls++
	t, ok := l.tables[source]
	if !ok {
		return nil, fmt.Errorf("%w at %s", dataset.ErrDatasetNotFound, source)
	}
	return t, nil
}

func boolPtr(b bool) *bool { return &b }

func floats(vals []*float64) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		if v == nil {
			out[i] = nil
			continue
		}
		out[i] = *v
	}
	return out
}
