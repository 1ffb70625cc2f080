package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func textRows(rows ...[]string) [][]Value {
	out := make([][]Value, len(rows))
	for i, r := range rows {
		out[i] = inferRow(r)
	}
	return out
}

func TestNewTable_PadsAndTruncates(t *testing.T) {
	tbl := NewTable([]string{"a", "b"}, textRows([]string{"1"}, []string{"2", "x", "extra"}))
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, []string{"a", "b"}, tbl.Columns())
	require.True(t, tbl.Value(0, "b").IsMissing())
	require.Equal(t, "x", tbl.Value(1, "b").Text())
	require.True(t, tbl.Value(0, "nope").IsMissing())
}

func TestNewTable_DuplicateNameLastWins(t *testing.T) {
	tbl := NewTable([]string{"a", "b", "a"}, textRows([]string{"1", "2", "3"}))
	require.Equal(t, []string{"a", "b"}, tbl.Columns())
	require.Equal(t, "3", tbl.Value(0, "a").Text())
}

func TestRename(t *testing.T) {
	tbl := NewTable([]string{"x", "y", "z"}, textRows([]string{"1", "2", "3"}))

	r := tbl.Rename("x", "w")
	require.Equal(t, []string{"w", "y", "z"}, r.Columns())
	require.Equal(t, "1", r.Value(0, "w").Text())

	// Target exists: overwritten at its own position, source dropped.
	r = tbl.Rename("x", "z")
	require.Equal(t, []string{"y", "z"}, r.Columns())
	require.Equal(t, "1", r.Value(0, "z").Text())

	// Original untouched.
	require.Equal(t, []string{"x", "y", "z"}, tbl.Columns())
}

func TestFilterSliceHead(t *testing.T) {
	tbl := NewTable([]string{"n"}, textRows([]string{"1"}, []string{"2"}, []string{"3"}, []string{"4"}))

	even := tbl.Filter(func(r int) bool {
		f, _ := tbl.Value(r, "n").Float()
		return int(f)%2 == 0
	})
	require.Equal(t, 2, even.Len())
	require.Equal(t, "2", even.Value(0, "n").Text())

	s := tbl.Slice(1, 10)
	require.Equal(t, 3, s.Len())
	require.Equal(t, "2", s.Value(0, "n").Text())
	require.Equal(t, 0, tbl.Slice(3, 1).Len())
	require.Equal(t, []string{"n"}, tbl.Slice(3, 1).Columns())

	require.Equal(t, 2, tbl.Head(2).Len())
	require.Equal(t, 4, tbl.Head(0).Len())
}

func TestRecords(t *testing.T) {
	tbl := NewTable([]string{"area", "price"}, textRows([]string{"wakad", "100"}, []string{"", ""}))
	recs := tbl.Records()
	require.Len(t, recs, 2)
	require.Equal(t, "wakad", recs[0]["area"])
	require.Equal(t, 100.0, recs[0]["price"])
	require.Equal(t, "", recs[1]["area"])
	require.Equal(t, "", recs[1]["price"])
}

func TestValue_InferAndFloat(t *testing.T) {
	require.Equal(t, KindNumber, Infer(" 42 ").Kind)
	require.Equal(t, KindString, Infer("Wakad").Kind)
	require.True(t, Infer("   ").IsMissing())
	require.True(t, Number(0).Kind == KindNumber)

	f, ok := String("₹ 1,200.50").Float()
	require.True(t, ok)
	require.InDelta(t, 1200.5, f, 1e-9)
	_, ok = String("n/a").Float()
	require.False(t, ok)
	require.Equal(t, "2021", Number(2021).Text())
}
