package insights

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vinodismyname/mcprealty/internal/dataset"
	"github.com/vinodismyname/mcprealty/internal/query"
	"golang.org/x/sync/errgroup"
)

// PayloadType distinguishes single-locality and comparison answers.
type PayloadType string

const (
	PayloadSingle  PayloadType = "single"
	PayloadCompare PayloadType = "compare"
)

// AnalyzeInput is a free-text question plus the dataset to answer it from.
type AnalyzeInput struct {
	Query string `json:"query" validate:"required" jsonschema_description:"Question such as 'Analyze Wakad', 'Compare Aundh and Wakad' or 'Show price growth for Akurdi over the last 3 years'"`
	SourceInput
}

// AreaResult is the answer for one locality.
type AreaResult struct {
	Summary   string           `json:"summary"`
	Chart     Chart            `json:"chart"`
	Table     []map[string]any `json:"table"`
	TotalRows int              `json:"total_rows"`
	Truncated bool             `json:"truncated"`
}

// AnalyzeOutput is either a single payload (Area plus its AreaResult fields) or a compare
// payload (Results keyed by locality, in Areas order).
type AnalyzeOutput struct {
	Type   PayloadType  `json:"type"`
	Source string       `json:"source"`
	Parsed query.Parsed `json:"parsed"`

	Area      string           `json:"area,omitempty"`
	Summary   string           `json:"summary,omitempty"`
	Chart     *Chart           `json:"chart,omitempty"`
	Table     []map[string]any `json:"table,omitempty"`
	TotalRows int              `json:"total_rows,omitempty"`
	Truncated bool             `json:"truncated,omitempty"`

	Areas   []string              `json:"areas,omitempty"`
	Results map[string]AreaResult `json:"results,omitempty"`
}

// MarshalJSON always writes the row table and its counts for a single payload, so a
// locality with no matching rows still reports "table": [].
func (o AnalyzeOutput) MarshalJSON() ([]byte, error) {
	type payload AnalyzeOutput
	if o.Type != PayloadSingle {
		return json.Marshal(payload(o))
	}
	table := o.Table
	if table == nil {
		table = []map[string]any{}
	}
	return json.Marshal(struct {
		payload
		Table     []map[string]any `json:"table"`
		TotalRows int              `json:"total_rows"`
		Truncated bool             `json:"truncated"`
	}{payload(o), table, o.TotalRows, o.Truncated})
}

// Analyze loads the dataset, classifies the query and builds the matching payload.
func (a *Analyst) Analyze(ctx context.Context, in AnalyzeInput) (AnalyzeOutput, error) {
	var out AnalyzeOutput
	text := strings.TrimSpace(in.Query)
	if text == "" {
		return out, ErrEmptyQuery
	}

	src, t, err := a.load(ctx, in.SourceInput)
	if err != nil {
		return out, err
	}
	out.Source = src

	parsed, rule := query.ParseWithRule(text)
	out.Parsed = parsed
	zerolog.Ctx(ctx).Debug().
		Str("intent", string(parsed.Intent)).
		Str("rule", rule).
		Strs("areas", parsed.Areas).
		Int("last_n_years", parsed.LastNYears).
		Msg("query parsed")

	if parsed.Intent == query.IntentCompare && len(parsed.Areas) >= 2 {
		results, err := a.compare(ctx, t, parsed)
		if err != nil {
			return out, err
		}
		out.Type = PayloadCompare
		out.Areas = parsed.Areas
		out.Results = results
		return out, nil
	}

	if len(parsed.Areas) == 0 || parsed.Areas[0] == "" {
		return out, ErrNoAreaIdentified
	}
	area := parsed.Areas[0]
	res := buildAreaResult(t, area, parsed.LastNYears, a.singleRowLimit())
	if err := ctx.Err(); err != nil {
		return out, err
	}
	out.Type = PayloadSingle
	out.Area = area
	out.Summary = res.Summary
	out.Chart = &res.Chart
	out.Table = res.Table
	out.TotalRows = res.TotalRows
	out.Truncated = res.Truncated
	return out, nil
}

// compare builds each locality concurrently. A locality named twice yields one entry.
func (a *Analyst) compare(ctx context.Context, t *dataset.Table, parsed query.Parsed) (map[string]AreaResult, error) {
	built := make([]AreaResult, len(parsed.Areas))
	g, gctx := errgroup.WithContext(ctx)
	for i, area := range parsed.Areas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			built[i] = buildAreaResult(t, area, parsed.LastNYears, a.compareRowLimit())
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	results := make(map[string]AreaResult, len(built))
	for i, area := range parsed.Areas {
		results[area] = built[i]
	}
	return results, nil
}

// buildAreaResult summarizes and charts one locality. The summary covers every matching
// row; the row table is capped at rowLimit.
func buildAreaResult(t *dataset.Table, area string, lastN, rowLimit int) AreaResult {
	filtered := dataset.FilterByArea(t, []string{area})
	return AreaResult{
		Summary:   Summarize(filtered, area),
		Chart:     BuildChart(t, area, lastN),
		Table:     filtered.Head(rowLimit).Records(),
		TotalRows: filtered.Len(),
		Truncated: rowLimit > 0 && filtered.Len() > rowLimit,
	}
}
