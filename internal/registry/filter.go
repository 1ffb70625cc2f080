package registry

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// UploadToolFilter hides tools that write to the server's disk unless uploads are enabled.
type UploadToolFilter struct {
	allowUploads bool
}

// NewUploadToolFilter constructs a filter; allow mirrors the enable_uploads setting.
func NewUploadToolFilter(allow bool) *UploadToolFilter {
	return &UploadToolFilter{allowUploads: allow}
}

// FilterTools implements server tool filtering semantics.
// When uploads are disabled, tools prefixed upload_ are excluded from discovery.
func (f *UploadToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if f.allowUploads {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if strings.HasPrefix(strings.ToLower(t.Name), "upload_") {
			continue
		}
		out = append(out, t)
	}
	return out
}
