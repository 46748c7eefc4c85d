package mcperr

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, res.IsError)
	require.Len(t, res.Content, 1)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestNew_UsesCatalogGuidance(t *testing.T) {
	got := text(t, New(ChartUnavailable, ""))
	require.Equal(t, "CHART_UNAVAILABLE: chart type cannot be built from the selection | nextSteps: Select at least two columns for scatter; Pick another chart type", got)

	got = text(t, Wrapf(InvalidSession, "session %q not found", "abc"))
	require.Contains(t, got, `INVALID_SESSION: session "abc" not found | nextSteps: `)
}

func TestFromText(t *testing.T) {
	require.Contains(t, text(t, FromText("VALIDATION: path is required")), "VALIDATION: path is required | nextSteps:")
	require.Equal(t, "WHATEVER: kept as is", text(t, FromText("WHATEVER: kept as is")))
	require.Contains(t, text(t, FromText("  ")), "VALIDATION: invalid inputs")
}

func TestCatalogComplete(t *testing.T) {
	for _, c := range []Code{
		Validation, InvalidSession, NoDataset, CursorInvalid, CursorBuildFailed,
		BusyResource, Timeout, LimitExceeded, FileTooLarge,
		ParseFailed, WriteFailed, PermissionDenied, NotFound,
		ChartUnavailable, CaptureFailed, ExportAborted, EmptyReport, AnalysisFailed,
	} {
		e, ok := Lookup(c)
		require.True(t, ok, c)
		require.NotEmpty(t, e.Message, c)
		require.NotEmpty(t, e.NextSteps, c)
	}
}
