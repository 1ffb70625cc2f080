package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/mcprealty/pkg/mcperr"
)

// Middleware bounds tool calls with the Controller's request semaphore and operation timeout.
type Middleware struct {
	ctrl *Controller
}

// NewMiddleware constructs a Middleware bound to the provided Controller.
func NewMiddleware(ctrl *Controller) *Middleware {
	return &Middleware{ctrl: ctrl}
}

// ToolMiddleware implements mcp-go's tool handler middleware. Saturation yields a
// BUSY_RESOURCE tool error and an expired deadline a TIMEOUT tool error; both are
// results, not protocol errors, so clients can retry.
func (m *Middleware) ToolMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := zerolog.Ctx(ctx).With().Str("tool", req.Params.Name).Logger()
		limits := m.ctrl.limits

		if err := m.acquire(ctx); err != nil {
			m.ctrl.rejected.Add(1)
			log.Warn().Int("max", limits.MaxConcurrentRequests).Msg("request capacity exhausted")
			return mcp.NewToolResultError(mcperr.BusyText(limits.MaxConcurrentRequests)), nil
		}
		defer m.ctrl.ReleaseRequest()

		callCtx, cancel := withOptionalTimeout(ctx, limits.OperationTimeout)
		defer cancel()

		res, err := next(callCtx, req)
		if timedOut(callCtx, res, err) {
			m.ctrl.timedOut.Add(1)
			log.Warn().Dur("timeout", limits.OperationTimeout).Msg("tool call timed out")
			return mcp.NewToolResultError(mcperr.TimeoutText(limits.OperationTimeout)), nil
		}
		m.ctrl.served.Add(1)
		return res, err
	}
}

// acquire waits at most AcquireRequestTimeout for a request slot.
func (m *Middleware) acquire(ctx context.Context) error {
	ctx, cancel := withOptionalTimeout(ctx, m.ctrl.limits.AcquireRequestTimeout)
	defer cancel()
	return m.ctrl.AcquireRequest(ctx)
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// timedOut reports whether the handler ran past its deadline without producing a result
// of its own.
func timedOut(callCtx context.Context, res *mcp.CallToolResult, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return err == nil && res == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded)
}
