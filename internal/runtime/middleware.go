package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/vinodismyname/mcpviz/pkg/mcperr"
)

// Middleware enforces runtime limits for tool calls using the Controller.
// It bounds global concurrency and applies an operation timeout to each call.
type Middleware struct {
	ctrl *Controller
}

// NewMiddleware constructs a Middleware bound to the provided Controller.
func NewMiddleware(ctrl *Controller) *Middleware {
	return &Middleware{ctrl: ctrl}
}

// ToolMiddleware implements mcp-go's tool handler middleware interface.
// It acquires a request slot, applies a timeout, and guarantees release.
func (m *Middleware) ToolMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := zerolog.Ctx(ctx).With().Str("tool", req.Params.Name).Logger()

		acquireCtx := ctx
		if m.ctrl.limits.AcquireRequestTimeout > 0 {
			var cancel context.CancelFunc
			acquireCtx, cancel = context.WithTimeout(ctx, m.ctrl.limits.AcquireRequestTimeout)
			defer cancel()
		}

		if err := m.ctrl.AcquireRequest(acquireCtx); err != nil {
			log.Warn().Int("max", m.ctrl.limits.MaxConcurrentRequests).Msg("request rejected: busy")
			return mcperr.New(mcperr.BusyResource, "concurrent request limit reached, retry shortly"), nil
		}
		defer m.ctrl.ReleaseRequest()

		callCtx := ctx
		cancel := func() {}
		if m.ctrl.limits.OperationTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, m.ctrl.limits.OperationTimeout)
		}
		defer cancel()

		start := time.Now()
		res, err := next(log.WithContext(callCtx), req)
		elapsed := time.Since(start)

		// A handler that surfaced the deadline becomes a tool-level timeout.
		if errors.Is(err, context.DeadlineExceeded) || (errors.Is(callCtx.Err(), context.DeadlineExceeded) && err == nil && res == nil) {
			log.Warn().Dur("elapsed", elapsed).Msg("tool call timed out")
			return mcperr.New(mcperr.Timeout, ""), nil
		}
		ev := log.Debug()
		if err != nil || (res != nil && res.IsError) {
			ev = log.Info()
		}
		ev.Dur("elapsed", elapsed).Bool("tool_error", res != nil && res.IsError).Err(err).Msg("tool call finished")
		return res, err
	}
}
