package registry

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vinodismyname/mcprealty/internal/dataset"
	"github.com/vinodismyname/mcprealty/internal/insights"
	"github.com/vinodismyname/mcprealty/internal/security"
	"github.com/vinodismyname/mcprealty/internal/uploads"
	"github.com/vinodismyname/mcprealty/pkg/mcperr"
)

// classify maps a service error onto a catalog code. fallback is used for unknown errors.
func classify(err error, fallback mcperr.Code) mcperr.Code {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return mcperr.Timeout
	case errors.Is(err, insights.ErrEmptyQuery),
		errors.Is(err, insights.ErrNoDataset),
		errors.Is(err, uploads.ErrInvalidName):
		return mcperr.Validation
	case errors.Is(err, insights.ErrNoAreaIdentified):
		return mcperr.NoAreaIdentified
	case errors.Is(err, insights.ErrCursorInvalid):
		return mcperr.CursorInvalid
	case errors.Is(err, dataset.ErrDatasetNotFound):
		return mcperr.DatasetNotFound
	case errors.Is(err, dataset.ErrUnsupportedFormat),
		errors.Is(err, security.ErrUnsupportedExtension):
		return mcperr.UnsupportedFormat
	case errors.Is(err, security.ErrNotAllowed):
		return mcperr.PermissionDenied
	case errors.Is(err, dataset.ErrTooManyRows):
		return mcperr.LimitExceeded
	case errors.Is(err, uploads.ErrTooLarge):
		return mcperr.FileTooLarge
	}
	return fallback
}

// toolError renders err as an MCP tool error. The package prefix ("dataset: ") is dropped
// from the message.
func toolError(err error, fallback mcperr.Code) *mcp.CallToolResult {
	code := classify(err, fallback)
	if code == mcperr.Timeout {
		return mcperr.New(code, "")
	}
	return mcperr.New(code, detail(err))
}

func detail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 && !strings.ContainsAny(msg[:i], " /") {
		return msg[i+2:]
	}
	return msg
}
