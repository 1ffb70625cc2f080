package insights

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/mcprealty/internal/dataset"
	"github.com/vinodismyname/mcprealty/internal/runtime"
)

func newAnalyst(t *testing.T) (*Analyst, *staticLoader) {
	t.Helper()
	loader := &staticLoader{tables: map[string]*dataset.Table{
		"preloaded.xlsx": puneTable(),
		"other.csv":      table([]string{"Locality", "Year", "Price"}, []string{"Kothrud", "2022", "9000"}),
	}}
	return &Analyst{Limits: runtime.NewLimits(1, 1), Loader: loader, DefaultSource: "preloaded.xlsx"}, loader
}

func TestAnalyze_Single(t *testing.T) {
	a, _ := newAnalyst(t)
	out, err := a.Analyze(context.Background(), AnalyzeInput{Query: "Analyze Wakad"})
	require.NoError(t, err)
	require.Equal(t, PayloadSingle, out.Type)
	require.Equal(t, "preloaded.xlsx", out.Source)
	require.Equal(t, "wakad", out.Area)
	require.Contains(t, out.Summary, "Summary for Wakad:")
	require.NotNil(t, out.Chart)
	require.Equal(t, []string{"2019", "2020", "2021"}, out.Chart.Labels)
	require.Len(t, out.Table, 4)
	require.Equal(t, 4, out.TotalRows)
	require.False(t, out.Truncated)
	require.Equal(t, "", out.Table[2]["office_weighted_average_rate"])
	require.Equal(t, 5400.0, out.Table[2]["flat_weighted_average_rate"])
}

func TestAnalyze_GrowthWindow(t *testing.T) {
	a, _ := newAnalyst(t)
	out, err := a.Analyze(context.Background(), AnalyzeInput{Query: "Show price growth for Wakad over the last 2 years"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Parsed.LastNYears)
	require.Equal(t, []string{"2020", "2021"}, out.Chart.Labels)
}

func TestAnalyze_Compare(t *testing.T) {
	a, _ := newAnalyst(t)
	a.Limits.CompareRowLimit = 2
	out, err := a.Analyze(context.Background(), AnalyzeInput{Query: "Compare Aundh and Wakad demand trends"})
	require.NoError(t, err)
	require.Equal(t, PayloadCompare, out.Type)
	require.Equal(t, []string{"aundh", "wakad"}, out.Areas)
	require.Len(t, out.Results, 2)

	w := out.Results["wakad"]
	require.Len(t, w.Table, 2)
	require.Equal(t, 4, w.TotalRows)
	require.True(t, w.Truncated)
	// The summary still covers every matching row.
	require.Contains(t, w.Summary, "Data is available from 2019 to 2021")
	require.Equal(t, []string{"2019", "2021"}, out.Results["aundh"].Chart.Labels)
	require.Empty(t, out.Area)
	require.Nil(t, out.Chart)
}

func TestAnalyze_Errors(t *testing.T) {
	ctx := context.Background()
	a, loader := newAnalyst(t)

	_, err := a.Analyze(ctx, AnalyzeInput{Query: "   "})
	require.ErrorIs(t, err, ErrEmptyQuery)
	require.Equal(t, 0, loader.calls)

	_, err = a.Analyze(ctx, AnalyzeInput{Query: "?!"})
	require.ErrorIs(t, err, ErrNoAreaIdentified)

	_, err = a.Analyze(ctx, AnalyzeInput{Query: "Analyze Wakad", SourceInput: SourceInput{UsePreloaded: boolPtr(false)}})
	require.ErrorIs(t, err, ErrNoDataset)

	_, err = a.Analyze(ctx, AnalyzeInput{Query: "Analyze Wakad", SourceInput: SourceInput{Dataset: "missing.xlsx"}})
	require.ErrorIs(t, err, dataset.ErrDatasetNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = a.Analyze(cancelled, AnalyzeInput{Query: "Compare aundh and wakad"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_NoMatchesIsNotAnError(t *testing.T) {
	a, _ := newAnalyst(t)
	out, err := a.Analyze(context.Background(), AnalyzeInput{Query: "Analyze Kothrud"})
	require.NoError(t, err)
	require.Equal(t, "No data found for 'kothrud'.", out.Summary)
	require.Empty(t, out.Chart.Labels)
	require.Empty(t, out.Table)
}

func TestAnalyze_NoMatchesKeepsTableKey(t *testing.T) {
	a, _ := newAnalyst(t)
	out, err := a.Analyze(context.Background(), AnalyzeInput{Query: "Analyze Kothrud"})
	require.NoError(t, err)
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"table":[]`)
	require.Contains(t, string(raw), `"total_rows":0`)

	out, err = a.Analyze(context.Background(), AnalyzeInput{Query: "Compare aundh and wakad"})
	require.NoError(t, err)
	raw, err = json.Marshal(out)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NotContains(t, payload, "table")
	require.Contains(t, payload, "results")
}

func TestResolveSource(t *testing.T) {
	a, _ := newAnalyst(t)

	src, err := a.ResolveSource(SourceInput{Dataset: " other.csv "})
	require.NoError(t, err)
	require.Equal(t, "other.csv", src)

	// An explicit dataset wins even when the preloaded one is declined.
	src, err = a.ResolveSource(SourceInput{Dataset: "other.csv", UsePreloaded: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, "other.csv", src)

	src, err = a.ResolveSource(SourceInput{UsePreloaded: boolPtr(true)})
	require.NoError(t, err)
	require.Equal(t, "preloaded.xlsx", src)

	a.DefaultSource = ""
	_, err = a.ResolveSource(SourceInput{})
	require.ErrorIs(t, err, ErrNoDataset)
}

func TestAnalyze_WithDatasetLoader(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pune.csv")
	body := "Final Location,Year,Flat - Weighted Average Rate,Total Sold - IGR\n" +
		"Akurdi,2019,4000,30\nAkurdi,2020,4100,35\nAkurdi,2021,4300,40\nAkurdi,2022,4400,38\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))

	a := &Analyst{
		Limits:        runtime.NewLimits(2, 2),
		Loader:        dataset.NewLoader(dataset.Options{}, nil, nil),
		DefaultSource: p,
	}
	out, err := a.Analyze(context.Background(), AnalyzeInput{Query: "Show price growth for Akurdi over the last 3 years"})
	require.NoError(t, err)
	require.Equal(t, []string{"2020", "2021", "2022"}, out.Chart.Labels)
	require.Contains(t, out.Summary, "has grown strongly, changing by roughly 10.0% overall.")
}
