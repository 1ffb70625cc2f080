package mcperr

import (
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Code defines a canonical MCP error code used across tools.
type Code string

const (
	// Validation & Input
	Validation        Code = "VALIDATION"
	NoAreaIdentified  Code = "NO_AREA_IDENTIFIED"
	CursorInvalid     Code = "CURSOR_INVALID"
	CursorBuildFailed Code = "CURSOR_BUILD_FAILED"

	// Resource & Limits
	BusyResource  Code = "BUSY_RESOURCE"
	Timeout       Code = "TIMEOUT"
	LimitExceeded Code = "LIMIT_EXCEEDED"
	FileTooLarge  Code = "FILE_TOO_LARGE"

	// IO & Formats
	DatasetNotFound   Code = "DATASET_NOT_FOUND"
	LoadFailed        Code = "LOAD_FAILED"
	UploadFailed      Code = "UPLOAD_FAILED"
	UnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	PermissionDenied  Code = "PERMISSION_DENIED"

	// Analysis
	AnalysisFailed Code = "ANALYSIS_FAILED"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

// catalog maps canonical codes to guidance. Messages can be overridden per error.
var catalog = map[Code]Entry{
	Validation:        {Code: Validation, Message: "invalid inputs", Retryable: true, NextSteps: []string{"Correct the inputs per schema and retry", "See examples in tool description"}},
	NoAreaIdentified:  {Code: NoAreaIdentified, Message: "could not identify an area from the query", Retryable: true, NextSteps: []string{"Name a locality, e.g. 'Analyze Wakad'", "Call list_areas to see known localities"}},
	CursorInvalid:     {Code: CursorInvalid, Message: "cursor is invalid for current context", Retryable: true, NextSteps: []string{"Restart pagination from the first page", "Reuse the same dataset and area between pages"}},
	CursorBuildFailed: {Code: CursorBuildFailed, Message: "failed to encode next page cursor", Retryable: true, NextSteps: []string{"Retry or use a smaller page size"}},

	BusyResource:  {Code: BusyResource, Message: "concurrent request limit reached", Retryable: true, NextSteps: []string{"Retry after a short delay"}},
	Timeout:       {Code: Timeout, Message: "operation exceeded configured time limit", Retryable: true, NextSteps: []string{"Use a smaller dataset or increase the timeout"}},
	LimitExceeded: {Code: LimitExceeded, Message: "operation exceeded configured limits", Retryable: false, NextSteps: []string{"Split the dataset or raise max_rows"}},
	FileTooLarge:  {Code: FileTooLarge, Message: "file exceeds configured size", Retryable: false, NextSteps: []string{"Upload a smaller file or increase max_upload_bytes"}},

	DatasetNotFound:   {Code: DatasetNotFound, Message: "dataset not found", Retryable: true, NextSteps: []string{"Verify the dataset path", "Upload the file with upload_dataset and pass the returned path"}},
	LoadFailed:        {Code: LoadFailed, Message: "failed to load dataset", Retryable: true, NextSteps: []string{"Verify the file is a readable spreadsheet with a header row"}},
	UploadFailed:      {Code: UploadFailed, Message: "failed to store upload", Retryable: true, NextSteps: []string{"Check the upload directory is writable and retry"}},
	UnsupportedFormat: {Code: UnsupportedFormat, Message: "unsupported dataset format", Retryable: false, NextSteps: []string{"Use .xlsx, .csv, .tsv or a sqlite database"}},
	PermissionDenied:  {Code: PermissionDenied, Message: "insufficient permissions to access path", Retryable: false, NextSteps: []string{"Choose a file inside an allowed directory"}},

	AnalysisFailed: {Code: AnalysisFailed, Message: "analysis failed", Retryable: true, NextSteps: []string{"Retry or check the dataset has year and price columns"}},
}

// Lookup returns the catalog entry for a code.
func Lookup(code Code) (Entry, bool) {
	e, ok := catalog[code]
	return e, ok
}

// normalize builds a standard error string including next steps for MCP clients that
// surface only a message string. Format: "CODE: message" followed by a guidance tail.
func normalize(code Code, msg string) string {
	base := strings.TrimSpace(msg)
	e, ok := catalog[code]
	if !ok {
		// Unknown code; preserve as-is
		if base == "" {
			return string(code)
		}
		return fmt.Sprintf("%s: %s", string(code), base)
	}
	if base == "" {
		base = e.Message
	}
	guidance := ""
	if len(e.NextSteps) > 0 {
		guidance = " | nextSteps: " + strings.Join(e.NextSteps, "; ")
	}
	return fmt.Sprintf("%s: %s%s", e.Code, base, guidance)
}

// Text returns the normalized "CODE: message | nextSteps: ..." string.
func Text(code Code, message string) string {
	return normalize(code, message)
}

// BusyText is the message returned when request capacity is exhausted.
func BusyText(maxConcurrent int) string {
	return normalize(BusyResource, fmt.Sprintf("concurrent request limit reached (max=%d)", maxConcurrent))
}

// TimeoutText is the message returned when a call exceeds its deadline.
func TimeoutText(limit time.Duration) string {
	return normalize(Timeout, fmt.Sprintf("operation exceeded configured time limit (%s)", limit))
}

// FromText parses a "CODE: message" string, enriches it with catalog guidance,
// and returns an MCP tool error result.
func FromText(text string) *mcp.CallToolResult {
	t := strings.TrimSpace(text)
	if t == "" {
		return mcp.NewToolResultError(normalize(Validation, ""))
	}
	parts := strings.SplitN(t, ":", 2)
	code := Code(strings.TrimSpace(parts[0]))
	msg := ""
	if len(parts) > 1 {
		msg = strings.TrimSpace(parts[1])
	}
	return mcp.NewToolResultError(normalize(code, msg))
}

// New returns an MCP error result for a given code and optional message override.
func New(code Code, message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, message))
}

// Wrapf formats details and returns an MCP error result for the code.
func Wrapf(code Code, format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, fmt.Sprintf(format, args...)))
}
