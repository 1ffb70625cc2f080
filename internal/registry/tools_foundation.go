package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vinodismyname/mcprealty/internal/insights"
	"github.com/vinodismyname/mcprealty/internal/uploads"
	"github.com/vinodismyname/mcprealty/pkg/mcperr"
	"github.com/vinodismyname/mcprealty/pkg/validation"
)

// UploadDatasetInput carries a dataset file as base64.
type UploadDatasetInput struct {
	Name    string `json:"name" validate:"required,upload_name" jsonschema_description:"Original file name; the extension selects the format (.xlsx, .csv, .tsv, .sqlite)"`
	Content string `json:"content_base64" validate:"required,base64" jsonschema_description:"File bytes, standard base64 with padding"`
}

// UploadDatasetOutput reports where the upload was stored.
type UploadDatasetOutput struct {
	uploads.Saved
	Dataset string `json:"dataset" jsonschema_description:"Pass this value as dataset in later calls"`
}

// RegisterDatasetTools wires list_areas, profile_dataset, read_area_rows and upload_dataset.
func RegisterDatasetTools(s *server.MCPServer, reg *Registry, svc Services) {
	ts := newToolset(svc)

	areas := mcp.NewTool(
		"list_areas",
		mcp.WithDescription(fmt.Sprintf("List distinct normalized locality names in first-seen order (default cap %d). Use it to find spellings before calling analyze_query.", ts.limits.AreaListLimit)),
		mcp.WithInputSchema[insights.AreasInput](),
		mcp.WithOutputSchema[insights.AreasOutput](),
	)
	s.AddTool(areas, mcp.NewTypedToolHandler(ts.listAreas))
	reg.Register(areas)

	profile := mcp.NewTool(
		"profile_dataset",
		mcp.WithDescription("Describe how a dataset is interpreted: normalized columns, detected price columns, demand column, year coverage and warnings for anything the analysis cannot find."),
		mcp.WithInputSchema[insights.SourceInput](),
		mcp.WithOutputSchema[insights.ProfileOutput](),
	)
	s.AddTool(profile, mcp.NewTypedToolHandler(ts.profileDataset))
	reg.Register(profile)

	rows := mcp.NewTool(
		"read_area_rows",
		mcp.WithDescription(fmt.Sprintf("Page through every row matching a locality (default page size %d). Pass next_cursor from the previous page to continue; the cursor fixes dataset, area and offset. Errors: CURSOR_INVALID when the dataset changed between pages.", ts.limits.SingleRowLimit)),
		mcp.WithInputSchema[insights.RowsInput](),
		mcp.WithOutputSchema[insights.RowsOutput](),
	)
	s.AddTool(rows, mcp.NewTypedToolHandler(ts.readAreaRows))
	reg.Register(rows)

	upload := mcp.NewTool(
		"upload_dataset",
		mcp.WithDescription(fmt.Sprintf("Store a dataset file on the server (max %d bytes) and return the path to pass as dataset. Errors: VALIDATION, FILE_TOO_LARGE, UPLOAD_FAILED.", ts.limits.MaxUploadBytes)),
		mcp.WithInputSchema[UploadDatasetInput](),
		mcp.WithOutputSchema[UploadDatasetOutput](),
	)
	s.AddTool(upload, mcp.NewTypedToolHandler(ts.uploadDataset))
	reg.Register(upload)
}

// RegisterAll wires every tool.
func RegisterAll(s *server.MCPServer, reg *Registry, svc Services) {
	RegisterAnalysisTools(s, reg, svc)
	RegisterDatasetTools(s, reg, svc)
}

func (ts *toolset) listAreas(ctx context.Context, req mcp.CallToolRequest, in insights.AreasInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	out, err := ts.analyst.Areas(ctx, in)
	if err != nil {
		return toolError(err, mcperr.LoadFailed), nil
	}
	text := fmt.Sprintf("areas=%d truncated=%v preview=%v", out.Count, out.Truncated, previewList(out.Areas, 10))
	return structured(out, text), nil
}

func (ts *toolset) profileDataset(ctx context.Context, req mcp.CallToolRequest, in insights.SourceInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	out, err := ts.analyst.Profile(ctx, in)
	if err != nil {
		return toolError(err, mcperr.LoadFailed), nil
	}
	text := fmt.Sprintf("rows=%d cols=%d price=%v demand=%q years=%d-%d areas=%d warnings=%v",
		out.Rows, len(out.Columns), out.PriceColumns, out.DemandColumn, out.YearMin, out.YearMax, out.DistinctAreas, out.Warnings)
	return structured(out, text), nil
}

func (ts *toolset) readAreaRows(ctx context.Context, req mcp.CallToolRequest, in insights.RowsInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	out, err := ts.analyst.Rows(ctx, in)
	if err != nil {
		return toolError(err, mcperr.LoadFailed), nil
	}
	text := fmt.Sprintf("area=%s offset=%d returned=%d total=%d truncated=%v", out.Area, out.Offset, out.Returned, out.Total, out.Truncated)
	if out.NextCursor != "" {
		text += " nextCursor=" + out.NextCursor
	}
	return structured(out, text), nil
}

func (ts *toolset) uploadDataset(ctx context.Context, req mcp.CallToolRequest, in UploadDatasetInput) (*mcp.CallToolResult, error) {
	if ts.uploads == nil {
		return mcperr.New(mcperr.UploadFailed, "uploads are disabled"), nil
	}
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	body, err := base64.StdEncoding.DecodeString(in.Content)
	if err != nil {
		return mcperr.New(mcperr.Validation, "content_base64 must be standard base64"), nil
	}
	saved, err := ts.uploads.Save(ctx, in.Name, bytes.NewReader(body))
	if err != nil {
		return toolError(err, mcperr.UploadFailed), nil
	}
	out := UploadDatasetOutput{Saved: saved, Dataset: saved.Path}
	text := fmt.Sprintf("stored %s (%d bytes); pass dataset=%s", saved.Name, saved.Bytes, saved.Path)
	return structured(out, text), nil
}
