package insights

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildChart_PerYearAggregation(t *testing.T) {
	c := BuildChart(puneTable(), "wakad", 0)
	require.Equal(t, []string{"2019", "2020", "2021"}, c.Labels)
	require.Equal(t, []any{5000.0, 5300.0, 5500.0}, floats(c.Price))
	require.Equal(t, []any{100.0, 100.0, 150.0}, floats(c.Demand))
}

func TestBuildChart_Window(t *testing.T) {
	tbl := puneTable()

	c := BuildChart(tbl, "Wakad", 2)
	require.Equal(t, []string{"2020", "2021"}, c.Labels)
	require.Equal(t, []any{5300.0, 5500.0}, floats(c.Price))
	require.Equal(t, []any{100.0, 150.0}, floats(c.Demand))

	require.Equal(t, 3, BuildChart(tbl, "wakad", 10).Len())
	require.Equal(t, []string{"2021"}, BuildChart(tbl, "wakad", 1).Labels)

	// Sparse years: the window never yields more than N and may yield fewer.
	c = BuildChart(tbl, "aundh", 2)
	require.Equal(t, []string{"2021"}, c.Labels)
}

func TestBuildChart_LengthInvariant(t *testing.T) {
	tbl := puneTable()
	for _, area := range []string{"wakad", "aundh", "baner", "kothrud", ""} {
		for _, n := range []int{0, 1, 2, 5} {
			c := BuildChart(tbl, area, n)
			require.Len(t, c.Price, len(c.Labels))
			require.Len(t, c.Demand, len(c.Labels))
		}
	}
}

func TestBuildChart_Idempotent(t *testing.T) {
	tbl := puneTable()
	require.Equal(t, BuildChart(tbl, "wakad", 2), BuildChart(tbl, "wakad", 2))
}

func TestBuildChart_NoUsableRows(t *testing.T) {
	tbl := puneTable()
	for _, area := range []string{"baner", "kothrud"} {
		c := BuildChart(tbl, area, 0)
		require.NotNil(t, c.Labels)
		require.Empty(t, c.Labels)
		require.Empty(t, c.Price)
		require.Empty(t, c.Demand)
	}
}

func TestBuildChart_MultiplePriceColumnsAveraged(t *testing.T) {
	tbl := table(
		[]string{"Area", "Year", "Office - Weighted Average Rate", "Shop - Weighted Average Rate"},
		[]string{"X", "2020", "100", "200"},
		[]string{"X", "2020", "300", ""},
		[]string{"X", "2021", "abc", ""},
	)
	c := BuildChart(tbl, "x", 0)
	require.Equal(t, []string{"2020", "2021"}, c.Labels)
	require.Equal(t, []any{225.0, nil}, floats(c.Price))
	require.Equal(t, []any{nil, nil}, floats(c.Demand))
}

func TestBuildChart_Rounding(t *testing.T) {
	tbl := table(
		[]string{"Area", "Year", "Price", "Total Units"},
		[]string{"X", "2020", "100.111", "1"},
		[]string{"X", "2020", "100.222", "2"},
	)
	c := BuildChart(tbl, "x", 0)
	require.Equal(t, []any{100.17, 1.5}, []any{*c.Price[0], *c.Demand[0]})
}

func TestRoundHalfToEven(t *testing.T) {
	require.Equal(t, 0.12, round2(0.125))
	require.Equal(t, 0.38, round2(0.375))
	require.Equal(t, 0.2, round1(0.25))
	require.Equal(t, -0.2, round1(-0.25))
	require.Equal(t, 2.67, round2(2.675))
}
