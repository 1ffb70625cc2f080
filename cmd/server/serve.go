package main

import (
	"context"
	"errors"
	"os"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/vinodismyname/mcprealty/internal/registry"
	"github.com/vinodismyname/mcprealty/internal/runtime"
	"github.com/vinodismyname/mcprealty/internal/telemetry"
	"github.com/vinodismyname/mcprealty/pkg/version"
)

var useStdio bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !useStdio {
			return errors.New("no transport selected; use --stdio to run over stdio")
		}
		logger := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		ctx := logger.WithContext(cmd.Context())
		a.probeDataset(ctx)

		srv, reg := newMCPServer(a)
		logger.Info().
			Str("version", version.Version()).
			Int("max_concurrent_requests", a.limits.MaxConcurrentRequests).
			Int("max_open_datasets", a.limits.MaxOpenDatasets).
			Int("model_context_size", reg.ModelContextSize(cfg.ModelName)).
			Bool("uploads", a.uploads != nil).
			Msg("server bootstrap configured")

		err = server.ServeStdio(srv)
		stats := a.controller.Stats()
		logger.Info().
			Int64("served", stats.Served).
			Int64("rejected", stats.Rejected).
			Int64("timed_out", stats.TimedOut).
			Msg("server stopped")
		return err
	},
}

func init() {
	serveCmd.Flags().BoolVar(&useStdio, "stdio", false, "serve MCP over stdin/stdout")
}

func newMCPServer(a *app) (*server.MCPServer, *registry.Registry) {
	mw := runtime.NewMiddleware(a.controller)
	filter := registry.NewUploadToolFilter(a.uploads != nil)

	srv := server.NewMCPServer(
		"MCP Realty Insights Server",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(telemetry.NewServerHooks(a.logger)),
		server.WithToolHandlerMiddleware(withLogger(a)),
		server.WithToolHandlerMiddleware(mw.ToolMiddleware),
		server.WithToolFilter(func(ctx context.Context, tools []mcp.Tool) []mcp.Tool { return filter.FilterTools(ctx, tools) }),
	)

	reg := registry.New()
	registry.RegisterAll(srv, reg, registry.Services{
		Analyst: a.analyst,
		Uploads: a.uploads,
		Limits:  a.limits,
	})
	return srv, reg
}

// withLogger attaches a per-call logger (tool name, call id) to the handler context.
func withLogger(a *app) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			l := a.logger.With().Str("tool", req.Params.Name).Str("call_id", uuid.NewString()).Logger()
			return next(l.WithContext(ctx), req)
		}
	}
}
