package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// toolTimer tracks in-flight tool calls by JSON-RPC request id.
type toolTimer struct {
	started sync.Map
	now     func() time.Time
}

func (t *toolTimer) start(id any) {
	t.started.Store(key(id), t.now())
}

func (t *toolTimer) stop(id any) time.Duration {
	v, ok := t.started.LoadAndDelete(key(id))
	if !ok {
		return 0
	}
	return t.now().Sub(v.(time.Time))
}

// Request ids arrive as float64, int64 or string depending on the client encoder.
func key(id any) string { return fmt.Sprint(id) }

// NewServerHooks builds mcp-go lifecycle hooks that log sessions, tool calls
// (with latency and error flag) and request errors.
func NewServerHooks(logger zerolog.Logger) *server.Hooks {
	return newServerHooks(logger, time.Now)
}

func newServerHooks(logger zerolog.Logger, now func() time.Time) *server.Hooks {
	hooks := &server.Hooks{}
	timer := &toolTimer{now: now}

	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session registered")
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session unregistered")
	})

	hooks.AddAfterListTools(func(ctx context.Context, id any, req *mcp.ListToolsRequest, res *mcp.ListToolsResult) {
		logger.Info().Int("tools", len(res.Tools)).Msg("list_tools served")
	})

	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		timer.start(id)
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
		evt := logger.Info()
		isErr := res != nil && res.IsError
		if isErr {
			evt = logger.Warn()
		}
		evt.Str("tool", req.Params.Name).
			Dur("duration", timer.stop(id)).
			Bool("is_error", isErr).
			Msg("tool call served")
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		timer.stop(id)
		logger.Error().Str("method", string(method)).Err(err).Msg("request error")
	})

	return hooks
}
