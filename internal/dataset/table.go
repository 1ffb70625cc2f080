package dataset

// Table is a column-oriented, schema-less table: an ordered list of column names and a
// typed value sequence per column. Tables are treated as immutable; every transform
// returns a new Table that may share untouched column slices with its source, so a
// loaded Table can be read from several goroutines.
type Table struct {
	columns []string
	data    map[string][]Value
	rows    int
}

// NewTable builds a table from a header and row-major values. Short rows are padded
// with missing values and long rows are truncated. A repeated column name keeps its
// first position and the values of its last occurrence.
func NewTable(header []string, rows [][]Value) *Table {
	t := &Table{data: make(map[string][]Value, len(header)), rows: len(rows)}
	for i, name := range header {
		col := make([]Value, len(rows))
		for r, row := range rows {
			if i < len(row) {
				col[r] = row[i]
			}
		}
		t.put(name, col)
	}
	return t
}

// Empty returns a table with the given columns and no rows.
func Empty(columns ...string) *Table {
	return NewTable(columns, nil)
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.data[name]
	return ok
}

// Column returns the values of a column. Callers must not modify the slice.
func (t *Table) Column(name string) ([]Value, bool) {
	col, ok := t.data[name]
	return col, ok
}

// Value returns a single cell; unknown columns read as missing.
func (t *Table) Value(row int, name string) Value {
	col, ok := t.data[name]
	if !ok || row < 0 || row >= len(col) {
		return Missing()
	}
	return col[row]
}

// WithColumn returns a copy with the column set. An existing column keeps its position.
func (t *Table) WithColumn(name string, values []Value) *Table {
	out := t.clone()
	col := make([]Value, t.rows)
	copy(col, values)
	out.put(name, col)
	return out
}

// Rename returns a copy with column from renamed to to. When to already exists it is
// overwritten in place and from is dropped.
func (t *Table) Rename(from, to string) *Table {
	col, ok := t.data[from]
	if !ok || from == to {
		return t
	}
	out := &Table{data: make(map[string][]Value, len(t.data)), rows: t.rows}
	_, targetExists := t.data[to]
	for _, name := range t.columns {
		switch {
		case name == from && targetExists:
			continue
		case name == from:
			out.put(to, col)
		case name == to:
			out.put(to, col)
		default:
			out.put(name, t.data[name])
		}
	}
	return out
}

// Filter returns the rows where keep reports true, in their original order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	idx := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		if keep(r) {
			idx = append(idx, r)
		}
	}
	return t.take(idx)
}

// Slice returns rows [from, to), clamped to the table bounds.
func (t *Table) Slice(from, to int) *Table {
	if from < 0 {
		from = 0
	}
	if to > t.rows {
		to = t.rows
	}
	if from >= to {
		return t.take(nil)
	}
	idx := make([]int, 0, to-from)
	for r := from; r < to; r++ {
		idx = append(idx, r)
	}
	return t.take(idx)
}

// Head returns at most the first n rows; n <= 0 keeps every row.
func (t *Table) Head(n int) *Table {
	if n <= 0 || n >= t.rows {
		return t
	}
	return t.Slice(0, n)
}

// Records renders every row as a column -> value map with missing values as "".
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, t.rows)
	for r := 0; r < t.rows; r++ {
		rec := make(map[string]any, len(t.columns))
		for _, name := range t.columns {
			rec[name] = t.data[name][r].JSON()
		}
		out[r] = rec
	}
	return out
}

func (t *Table) take(idx []int) *Table {
	out := &Table{columns: make([]string, len(t.columns)), data: make(map[string][]Value, len(t.data)), rows: len(idx)}
	copy(out.columns, t.columns)
	for _, name := range t.columns {
		src := t.data[name]
		col := make([]Value, len(idx))
		for i, r := range idx {
			col[i] = src[r]
		}
		out.data[name] = col
	}
	return out
}

func (t *Table) clone() *Table {
	out := &Table{columns: make([]string, len(t.columns)), data: make(map[string][]Value, len(t.data)), rows: t.rows}
	copy(out.columns, t.columns)
	for k, v := range t.data {
		out.data[k] = v
	}
	return out
}

func (t *Table) put(name string, col []Value) {
	if _, ok := t.data[name]; !ok {
		t.columns = append(t.columns, name)
	}
	t.data[name] = col
}
