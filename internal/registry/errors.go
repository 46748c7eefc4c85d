package registry

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vinodismyname/mcpviz/internal/analysis"
	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/internal/dataset"
	"github.com/vinodismyname/mcpviz/internal/export"
	"github.com/vinodismyname/mcpviz/internal/runtime"
	"github.com/vinodismyname/mcpviz/internal/security"
	"github.com/vinodismyname/mcpviz/internal/session"
	"github.com/vinodismyname/mcpviz/pkg/mcperr"
	"github.com/vinodismyname/mcpviz/pkg/pagination"
)

// codes maps package sentinels to catalog codes. Order matters: the first
// match wins, so more specific sentinels come first.
var codes = []struct {
	err  error
	code mcperr.Code
}{
	{session.ErrSessionNotFound, mcperr.InvalidSession},
	{session.ErrNoDataset, mcperr.NoDataset},
	{session.ErrFileTooLarge, mcperr.FileTooLarge},
	{runtime.ErrSessionLimit, mcperr.LimitExceeded},
	{security.ErrNotAllowed, mcperr.PermissionDenied},
	{security.ErrNotFound, mcperr.NotFound},
	{security.ErrUnsupportedExtension, mcperr.ParseFailed},
	{dataset.ErrParse, mcperr.ParseFailed},
	{dataset.ErrInvalidSelection, mcperr.Validation},
	{charts.ErrUnavailable, mcperr.ChartUnavailable},
	{export.ErrEmptyReport, mcperr.EmptyReport},
	{export.ErrCaptureFailure, mcperr.CaptureFailed},
	{export.ErrExportAborted, mcperr.ExportAborted},
	{analysis.ErrAnalysisFailed, mcperr.AnalysisFailed},
	{pagination.ErrInvalidCursor, mcperr.CursorInvalid},
	{context.DeadlineExceeded, mcperr.Timeout},
}

// codeFor classifies err, falling back when no sentinel matches.
func codeFor(err error, fallback mcperr.Code) mcperr.Code {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return fallback
}

// toolError turns err into a tool-level error result.
func toolError(err error, fallback mcperr.Code) *mcp.CallToolResult {
	return mcperr.New(codeFor(err, fallback), err.Error())
}
