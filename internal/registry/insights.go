package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vinodismyname/mcprealty/internal/insights"
	"github.com/vinodismyname/mcprealty/internal/query"
	"github.com/vinodismyname/mcprealty/pkg/mcperr"
	"github.com/vinodismyname/mcprealty/pkg/validation"
)

// ParseQueryInput is a free-text question to classify without loading data.
type ParseQueryInput struct {
	Query string `json:"query" validate:"required" jsonschema_description:"Question to classify"`
}

// ParseQueryOutput reports the parse and which rule produced it.
type ParseQueryOutput struct {
	Parsed query.Parsed `json:"parsed"`
	Rule   string       `json:"rule" jsonschema_description:"compare, growth, analyze, analysis_of, fallback or empty"`
}

// RegisterAnalysisTools wires analyze_query, parse_query and area_chart.
func RegisterAnalysisTools(s *server.MCPServer, reg *Registry, svc Services) {
	ts := newToolset(svc)

	analyze := mcp.NewTool(
		"analyze_query",
		mcp.WithDescription(fmt.Sprintf("Answer a natural-language question about real-estate localities. Recognised forms: 'Compare <A> and <B>' (also with/vs/versus), 'Show price growth for <A> over the last N years', 'Analyze <A>' / 'Analysis of <A>'; anything else uses its last word as the locality. Returns a rule-based summary, a per-year price/demand chart and the matching rows (capped at %d rows per locality for comparisons and %d for a single locality). Locality matching is a case-insensitive substring match, so 'wakad' also matches 'Wakad Phase 2'. Uses the preloaded dataset unless dataset is given. Errors: VALIDATION, NO_AREA_IDENTIFIED, DATASET_NOT_FOUND, UNSUPPORTED_FORMAT, LIMIT_EXCEEDED, TIMEOUT.", ts.limits.CompareRowLimit, ts.limits.SingleRowLimit)),
		mcp.WithInputSchema[insights.AnalyzeInput](),
		mcp.WithOutputSchema[insights.AnalyzeOutput](),
	)
	s.AddTool(analyze, mcp.NewTypedToolHandler(ts.analyzeQuery))
	reg.Register(analyze)

	parse := mcp.NewTool(
		"parse_query",
		mcp.WithDescription("Classify a question into intent (compare, growth, analyze), the localities it names and an optional trailing year window, without loading any dataset. Use it to check how analyze_query will read a question."),
		mcp.WithInputSchema[ParseQueryInput](),
		mcp.WithOutputSchema[ParseQueryOutput](),
	)
	s.AddTool(parse, mcp.NewTypedToolHandler(ts.parseQuery))
	reg.Register(parse)

	chart := mcp.NewTool(
		"area_chart",
		mcp.WithDescription("Return the per-year average price and demand series for one locality, optionally restricted to the trailing N years. Missing yearly values are null. Errors: VALIDATION, NO_AREA_IDENTIFIED, DATASET_NOT_FOUND."),
		mcp.WithInputSchema[insights.ChartInput](),
		mcp.WithOutputSchema[insights.ChartOutput](),
	)
	s.AddTool(chart, mcp.NewTypedToolHandler(ts.areaChart))
	reg.Register(chart)
}

func (ts *toolset) analyzeQuery(ctx context.Context, req mcp.CallToolRequest, in insights.AnalyzeInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	out, err := ts.analyst.Analyze(ctx, in)
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	return structured(out, analyzeText(out)), nil
}

func analyzeText(out insights.AnalyzeOutput) string {
	if out.Type == insights.PayloadSingle {
		return fmt.Sprintf("%s\n(rows=%d returned=%d truncated=%v years=%d)",
			out.Summary, out.TotalRows, len(out.Table), out.Truncated, out.Chart.Len())
	}
	names := make([]string, 0, len(out.Results))
	for name := range out.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := []string{fmt.Sprintf("compare areas=%v source=%s", out.Areas, out.Source)}
	for _, name := range names {
		r := out.Results[name]
		lines = append(lines, fmt.Sprintf("- %s: %s", name, r.Summary))
	}
	return strings.Join(lines, "\n")
}

func (ts *toolset) parseQuery(ctx context.Context, req mcp.CallToolRequest, in ParseQueryInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	parsed, rule := query.ParseWithRule(in.Query)
	out := ParseQueryOutput{Parsed: parsed, Rule: rule}
	text := fmt.Sprintf("intent=%s areas=%v last_n_years=%d rule=%s", parsed.Intent, parsed.Areas, parsed.LastNYears, rule)
	return structured(out, text), nil
}

func (ts *toolset) areaChart(ctx context.Context, req mcp.CallToolRequest, in insights.ChartInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	out, err := ts.analyst.Chart(ctx, in)
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	text := fmt.Sprintf("area=%s years=%d labels=%v", out.Area, out.Chart.Len(), previewList(out.Chart.Labels, 10))
	return structured(out, text), nil
}
