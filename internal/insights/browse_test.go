package insights

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/mcprealty/internal/dataset"
	"github.com/vinodismyname/mcprealty/pkg/pagination"
)

func TestAreas(t *testing.T) {
	a, _ := newAnalyst(t)
	ctx := context.Background()

	out, err := a.Areas(ctx, AreasInput{})
	require.NoError(t, err)
	require.Equal(t, []string{"wakad", "wakad phase 2", "aundh", "baner"}, out.Areas)
	require.Equal(t, 4, out.Count)
	require.False(t, out.Truncated)

	out, err = a.Areas(ctx, AreasInput{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"wakad", "wakad phase 2"}, out.Areas)
	require.True(t, out.Truncated)

	out, err = a.Areas(ctx, AreasInput{SourceInput: SourceInput{Dataset: "other.csv"}})
	require.NoError(t, err)
	require.Equal(t, "other.csv", out.Source)
	require.Equal(t, []string{"kothrud"}, out.Areas)
}

func TestProfile(t *testing.T) {
	a, _ := newAnalyst(t)
	out, err := a.Profile(context.Background(), SourceInput{})
	require.NoError(t, err)
	require.Equal(t, 7, out.Rows)
	require.Equal(t, []string{"flat_weighted_average_rate"}, out.PriceColumns)
	require.Equal(t, "total_sold_igr", out.DemandColumn)
	require.Equal(t, 2019, out.YearMin)
	require.Equal(t, 2021, out.YearMax)
	require.Equal(t, 1, out.RowsWithoutYear)
	require.Equal(t, 4, out.DistinctAreas)
	require.Empty(t, out.Warnings)
	require.Contains(t, out.Columns, dataset.ColAreaNorm)

	out, err = a.Profile(context.Background(), SourceInput{Dataset: "other.csv"})
	require.NoError(t, err)
	require.Equal(t, []string{"price"}, out.PriceColumns)
	require.Equal(t, "", out.DemandColumn)
	require.Len(t, out.Warnings, 1)
}

func TestRows_Paging(t *testing.T) {
	a, _ := newAnalyst(t)
	ctx := context.Background()

	first, err := a.Rows(ctx, RowsInput{Area: "Wakad", PageSize: 3})
	require.NoError(t, err)
	require.Equal(t, 3, first.Returned)
	require.Equal(t, 4, first.Total)
	require.True(t, first.Truncated)
	require.NotEmpty(t, first.NextCursor)

	second, err := a.Rows(ctx, RowsInput{Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Equal(t, "wakad", second.Area)
	require.Equal(t, "preloaded.xlsx", second.Source)
	require.Equal(t, 3, second.Offset)
	require.Equal(t, 1, second.Returned)
	require.False(t, second.Truncated)
	require.Empty(t, second.NextCursor)
	require.Equal(t, 5500.0, second.Rows[0]["flat_weighted_average_rate"])
}

func TestRows_CursorErrors(t *testing.T) {
	a, loader := newAnalyst(t)
	ctx := context.Background()

	_, err := a.Rows(ctx, RowsInput{Cursor: "!!!"})
	require.ErrorIs(t, err, ErrCursorInvalid)

	_, err = a.Rows(ctx, RowsInput{})
	require.ErrorIs(t, err, ErrNoAreaIdentified)

	// The dataset changed between pages.
	tok, err := pagination.EncodeCursor(pagination.Cursor{Src: "preloaded.xlsx", A: "wakad", Off: 2, Ps: 2, Rc: 99})
	require.NoError(t, err)
	_, err = a.Rows(ctx, RowsInput{Cursor: tok})
	require.ErrorIs(t, err, ErrCursorInvalid)

	tok, err = pagination.EncodeCursor(pagination.Cursor{Src: "preloaded.xlsx", A: "wakad", Off: 50, Ps: 2})
	require.NoError(t, err)
	_, err = a.Rows(ctx, RowsInput{Cursor: tok})
	require.ErrorIs(t, err, ErrCursorInvalid)

	loader.tables = map[string]*dataset.Table{}
	_, err = a.Rows(ctx, RowsInput{Area: "wakad"})
	require.ErrorIs(t, err, dataset.ErrDatasetNotFound)
}

func TestChart(t *testing.T) {
	a, _ := newAnalyst(t)
	ctx := context.Background()

	out, err := a.Chart(ctx, ChartInput{Area: "  WAKAD ", LastNYears: 2})
	require.NoError(t, err)
	require.Equal(t, "wakad", out.Area)
	require.Equal(t, "preloaded.xlsx", out.Source)
	require.Equal(t, []string{"2020", "2021"}, out.Chart.Labels)

	_, err = a.Chart(ctx, ChartInput{Area: "   "})
	require.ErrorIs(t, err, ErrNoAreaIdentified)
}
