package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/vinodismyname/mcprealty/internal/dataset"
	"github.com/vinodismyname/mcprealty/pkg/pagination"
)

// AreasInput selects a dataset and how many localities to list.
type AreasInput struct {
	SourceInput
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=10000" jsonschema_description:"Maximum localities to return (default 200)"`
}

// AreasOutput lists distinct normalized localities in first-seen order.
type AreasOutput struct {
	Source    string   `json:"source"`
	Areas     []string `json:"areas"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated"`
}

// Areas lists distinct normalized localities, capped at in.Limit.
func (a *Analyst) Areas(ctx context.Context, in AreasInput) (AreasOutput, error) {
	out := AreasOutput{Areas: []string{}}
	src, t, err := a.load(ctx, in.SourceInput)
	if err != nil {
		return out, err
	}
	out.Source = src

	limit := in.Limit
	if limit <= 0 {
		limit = a.areaListLimit()
	}
	areas := dataset.DistinctAreas(t, limit+1)
	if len(areas) > limit {
		areas = areas[:limit]
		out.Truncated = true
	}
	if areas != nil {
		out.Areas = areas
	}
	out.Count = len(out.Areas)
	return out, nil
}

// ChartInput selects a locality and optional trailing year window.
type ChartInput struct {
	SourceInput
	Area       string `json:"area" validate:"required" jsonschema_description:"Locality to chart (substring, case-insensitive)"`
	LastNYears int    `json:"last_n_years,omitempty" validate:"omitempty,min=1,max=100" jsonschema_description:"Keep only the trailing N years"`
}

// ChartOutput is the per-year price/demand series for one locality.
type ChartOutput struct {
	Source string `json:"source"`
	Area   string `json:"area"`
	Chart  Chart  `json:"chart"`
}

// Chart builds the yearly series for in.Area without the summary or row table.
func (a *Analyst) Chart(ctx context.Context, in ChartInput) (ChartOutput, error) {
	out := ChartOutput{Chart: emptyChart()}
	area := dataset.NormalizeArea(in.Area)
	if area == "" {
		return out, ErrNoAreaIdentified
	}
	src, t, err := a.load(ctx, in.SourceInput)
	if err != nil {
		return out, err
	}
	out.Source = src
	out.Area = area
	out.Chart = BuildChart(t, area, in.LastNYears)
	return out, nil
}

// ProfileOutput describes how a dataset was interpreted.
type ProfileOutput struct {
	Source          string   `json:"source"`
	Rows            int      `json:"rows"`
	Columns         []string `json:"columns"`
	PriceColumns    []string `json:"price_columns"`
	DemandColumn    string   `json:"demand_column,omitempty"`
	YearMin         int      `json:"year_min,omitempty"`
	YearMax         int      `json:"year_max,omitempty"`
	RowsWithoutYear int      `json:"rows_without_year"`
	DistinctAreas   int      `json:"distinct_areas"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Profile reports the normalized schema, detected columns and year coverage.
func (a *Analyst) Profile(ctx context.Context, in SourceInput) (ProfileOutput, error) {
	var out ProfileOutput
	src, t, err := a.load(ctx, in)
	if err != nil {
		return out, err
	}
	t = dataset.EnsureYear(t)
	out.Source = src
	out.Rows = t.Len()
	out.Columns = t.Columns()
	out.PriceColumns = DetectPriceColumns(t)
	if out.PriceColumns == nil {
		out.PriceColumns = []string{}
	}
	out.DemandColumn, _ = DetectDemandColumn(t)
	out.DistinctAreas = len(dataset.DistinctAreas(t, 0))

	groups := groupByYear(t)
	withYear := 0
	for _, g := range groups {
		withYear += len(g.Rows)
	}
	out.RowsWithoutYear = t.Len() - withYear
	if len(groups) > 0 {
		out.YearMin, out.YearMax = groups[0].Year, groups[len(groups)-1].Year
	}

	if len(out.PriceColumns) == 0 {
		out.Warnings = append(out.Warnings, "no price column detected; price series will be empty")
	}
	if out.DemandColumn == "" {
		out.Warnings = append(out.Warnings, "no demand column detected; demand series will be empty")
	}
	if len(groups) == 0 {
		out.Warnings = append(out.Warnings, "no usable year values; trends cannot be computed")
	}
	if out.DistinctAreas == 0 {
		out.Warnings = append(out.Warnings, "no locality column or values found")
	}
	return out, nil
}

// RowsInput pages through the rows matching one locality. A cursor carries the source,
// area and offset of the next page and overrides the other fields.
type RowsInput struct {
	SourceInput
	Area     string `json:"area,omitempty" validate:"required_without=Cursor" jsonschema_description:"Locality to match (substring, case-insensitive)"`
	PageSize int    `json:"page_size,omitempty" validate:"omitempty,min=1,max=5000" jsonschema_description:"Rows per page (default: single-locality row cap)"`
	Cursor   string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
}

// RowsOutput is one page of matching rows.
type RowsOutput struct {
	Source     string           `json:"source"`
	Area       string           `json:"area"`
	Rows       []map[string]any `json:"rows"`
	Offset     int              `json:"offset"`
	Returned   int              `json:"returned"`
	Total      int              `json:"total"`
	Truncated  bool             `json:"truncated"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// Rows returns one page of the rows matching a locality.
func (a *Analyst) Rows(ctx context.Context, in RowsInput) (RowsOutput, error) {
	var out RowsOutput
	src := ""
	area := strings.TrimSpace(in.Area)
	offset, pageSize, snapshot := 0, in.PageSize, 0

	if tok := strings.TrimSpace(in.Cursor); tok != "" {
		c, err := pagination.DecodeCursor(tok)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrCursorInvalid, err)
		}
		src, area, offset, pageSize, snapshot = c.Src, c.A, c.Off, c.Ps, c.Rc
	}
	if area == "" {
		return out, ErrNoAreaIdentified
	}
	if pageSize <= 0 {
		pageSize = a.singleRowLimit()
	}

	var t *dataset.Table
	var err error
	if src != "" {
		t, err = a.Loader.Load(ctx, src)
	} else {
		src, t, err = a.load(ctx, in.SourceInput)
	}
	if err != nil {
		return out, err
	}

	filtered := dataset.FilterByArea(t, []string{area})
	total := filtered.Len()
	if snapshot > 0 && snapshot != total {
		return out, fmt.Errorf("%w: matching rows changed from %d to %d", ErrCursorInvalid, snapshot, total)
	}
	if offset > total {
		return out, fmt.Errorf("%w: offset %d beyond %d rows", ErrCursorInvalid, offset, total)
	}

	page := filtered.Slice(offset, offset+pageSize)
	out = RowsOutput{
		Source:   src,
		Area:     area,
		Rows:     page.Records(),
		Offset:   offset,
		Returned: page.Len(),
		Total:    total,
	}
	next := pagination.NextOffset(offset, page.Len())
	if next < total {
		out.Truncated = true
		tok, err := pagination.EncodeCursor(pagination.Cursor{Src: src, A: area, Off: next, Ps: pageSize, Rc: total})
		if err != nil {
			return out, fmt.Errorf("insights: encode cursor: %w", err)
		}
		out.NextCursor = tok
	}
	return out, nil
}
