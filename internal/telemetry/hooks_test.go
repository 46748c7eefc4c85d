package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestHooks_AfterCallTool(t *testing.T) {
	var buf bytes.Buffer
	h := NewHooks(zerolog.New(&buf))

	req := &mcp.CallToolRequest{}
	req.Params.Name = "generate_chart"

	h.afterCallTool(context.Background(), 1, req, mcp.NewToolResultText("ok"))
	require.Contains(t, buf.String(), `"level":"info","tool":"generate_chart"`)

	buf.Reset()
	h.afterCallTool(context.Background(), 2, req, mcp.NewToolResultError("CHART_UNAVAILABLE: scatter needs two columns"))
	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Contains(t, buf.String(), `"error":"CHART_UNAVAILABLE: scatter needs two columns"`)
}

func TestHooks_OnError(t *testing.T) {
	var buf bytes.Buffer
	h := NewHooks(zerolog.New(&buf))
	h.onError(context.Background(), 1, mcp.MethodToolsCall, nil, errors.New("boom"))
	require.Contains(t, buf.String(), `"method":"tools/call"`)
	require.Contains(t, buf.String(), `"error":"boom"`)
}

func TestHooks_ServerRegistersCallbacks(t *testing.T) {
	hooks := NewHooks(zerolog.Nop()).Server()
	require.Len(t, hooks.OnRegisterSession, 1)
	require.Len(t, hooks.OnUnregisterSession, 1)
	require.Len(t, hooks.OnAfterListTools, 1)
	require.Len(t, hooks.OnAfterCallTool, 1)
	require.Len(t, hooks.OnError, 1)
}
