package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/llms"
	"github.com/vinodismyname/mcprealty/internal/insights"
	"github.com/vinodismyname/mcprealty/internal/runtime"
	"github.com/vinodismyname/mcprealty/internal/uploads"
)

// ToolProvider resolves MCP tool definitions.
type ToolProvider interface {
	Tools(context.Context) ([]mcp.Tool, error)
}

// Registry keeps the tool definitions registered on the server for discovery and logging.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]mcp.Tool
}

// New constructs an empty Registry ready for tool population.
func New() *Registry {
	return &Registry{
		tools: map[string]mcp.Tool{},
	}
}

// Register stores a tool definition for discovery.
func (r *Registry) Register(tool mcp.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[tool.Name] = tool
}

// Get returns a tool by name when present.
func (r *Registry) Get(name string) (mcp.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns a stable-sorted list of registered tool definitions.
func (r *Registry) Tools(ctx context.Context) ([]mcp.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]mcp.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}

	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})

	return tools, nil
}

// ModelContextSize reports the token window of the model clients are expected to run;
// unknown names fall back to the library default.
func (r *Registry) ModelContextSize(modelName string) int {
	return llms.GetModelContextSize(modelName)
}

// Services are the backends the tools call into.
type Services struct {
	Analyst *insights.Analyst
	Uploads *uploads.Store
	Limits  runtime.Limits
}

// toolset binds tool handlers to their services.
type toolset struct {
	analyst *insights.Analyst
	uploads *uploads.Store
	limits  runtime.Limits
}

func newToolset(svc Services) *toolset {
	return &toolset{analyst: svc.Analyst, uploads: svc.Uploads, limits: svc.Limits}
}

// structured attaches a concise text rendering for clients that ignore structured output.
func structured(out any, text string) *mcp.CallToolResult {
	res := mcp.NewToolResultStructured(out, text)
	res.Content = []mcp.Content{mcp.NewTextContent(text)}
	return res
}

// previewList returns a bounded preview slice for compact summaries.
func previewList(h []string, n int) []string {
	if len(h) <= n {
		return h
	}
	return h[:n]
}
