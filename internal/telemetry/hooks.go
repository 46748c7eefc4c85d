package telemetry

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Hooks logs mcp-go server lifecycle events.
type Hooks struct {
	logger zerolog.Logger
}

// NewHooks constructs a Hooks instance with the provided logger.
func NewHooks(logger zerolog.Logger) *Hooks {
	return &Hooks{logger: logger}
}

// Server returns the mcp-go hook set bound to h.
func (h *Hooks) Server() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddOnRegisterSession(h.onRegisterSession)
	hooks.AddOnUnregisterSession(h.onUnregisterSession)
	hooks.AddAfterListTools(h.afterListTools)
	hooks.AddAfterCallTool(h.afterCallTool)
	hooks.AddOnError(h.onError)
	return hooks
}

func (h *Hooks) onRegisterSession(ctx context.Context, session server.ClientSession) {
	h.logger.Info().Str("client_session", session.SessionID()).Msg("client session registered")
}

func (h *Hooks) onUnregisterSession(ctx context.Context, session server.ClientSession) {
	h.logger.Info().Str("client_session", session.SessionID()).Msg("client session unregistered")
}

func (h *Hooks) afterListTools(ctx context.Context, id any, req *mcp.ListToolsRequest, res *mcp.ListToolsResult) {
	h.logger.Debug().Int("tools", len(res.Tools)).Msg("list_tools served")
}

// afterCallTool records the outcome; tool-level errors carry their code in
// the first text content.
func (h *Hooks) afterCallTool(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
	evt := h.logger.Info().Str("tool", req.Params.Name)
	if res != nil && res.IsError {
		evt = h.logger.Warn().Str("tool", req.Params.Name)
		if len(res.Content) > 0 {
			if tc, ok := mcp.AsTextContent(res.Content[0]); ok {
				evt = evt.Str("error", tc.Text)
			}
		}
	}
	evt.Msg("tool call served")
}

func (h *Hooks) onError(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
	h.logger.Error().Str("method", string(method)).Err(err).Msg("request error")
}
