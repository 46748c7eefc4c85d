package mcperr

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Code defines a canonical MCP error code used across tools.
type Code string

const (
	// Validation & Input
	Validation        Code = "VALIDATION"
	InvalidSession    Code = "INVALID_SESSION"
	NoDataset         Code = "NO_DATASET"
	CursorInvalid     Code = "CURSOR_INVALID"
	CursorBuildFailed Code = "CURSOR_BUILD_FAILED"

	// Resource & Limits
	BusyResource  Code = "BUSY_RESOURCE"
	Timeout       Code = "TIMEOUT"
	LimitExceeded Code = "LIMIT_EXCEEDED"
	FileTooLarge  Code = "FILE_TOO_LARGE"

	// IO & Formats
	ParseFailed      Code = "PARSE_FAILED"
	WriteFailed      Code = "WRITE_FAILED"
	PermissionDenied Code = "PERMISSION_DENIED"
	NotFound         Code = "NOT_FOUND"

	// Charts & Reports
	ChartUnavailable Code = "CHART_UNAVAILABLE"
	CaptureFailed    Code = "CAPTURE_FAILED"
	ExportAborted    Code = "EXPORT_ABORTED"
	EmptyReport      Code = "EMPTY_REPORT"

	// Analysis
	AnalysisFailed Code = "ANALYSIS_FAILED"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

// catalog maps canonical codes to guidance. Messages can be overridden per error.
var catalog = map[Code]Entry{
	Validation:        {Code: Validation, Message: "invalid inputs", Retryable: true, NextSteps: []string{"Correct the inputs per schema and retry"}},
	InvalidSession:    {Code: InvalidSession, Message: "session not found or expired", Retryable: true, NextSteps: []string{"Load the dataset again with load_dataset and use the new session_id"}},
	NoDataset:         {Code: NoDataset, Message: "session has no dataset loaded", Retryable: true, NextSteps: []string{"Call load_dataset with a path first"}},
	CursorInvalid:     {Code: CursorInvalid, Message: "cursor is invalid for current context", Retryable: true, NextSteps: []string{"Restart pagination from the first page"}},
	CursorBuildFailed: {Code: CursorBuildFailed, Message: "failed to encode next page cursor", Retryable: true, NextSteps: []string{"Retry with a smaller page size"}},

	BusyResource:  {Code: BusyResource, Message: "concurrent request limit reached", Retryable: true, NextSteps: []string{"Retry after a short delay"}},
	Timeout:       {Code: Timeout, Message: "operation exceeded configured time limit", Retryable: true, NextSteps: []string{"Select fewer columns or use a smaller dataset"}},
	LimitExceeded: {Code: LimitExceeded, Message: "operation exceeded configured limits", Retryable: true, NextSteps: []string{"Close unused sessions with close_session", "Lower the page size"}},
	FileTooLarge:  {Code: FileTooLarge, Message: "file exceeds configured size", Retryable: false, NextSteps: []string{"Use a smaller file or increase max_file_bytes"}},

	ParseFailed:      {Code: ParseFailed, Message: "failed to parse input file", Retryable: false, NextSteps: []string{"Use a .csv, .json (array of objects), .xlsx or .xls file", "Check the file is not corrupt"}},
	WriteFailed:      {Code: WriteFailed, Message: "failed to write output file", Retryable: true, NextSteps: []string{"Verify the output directory exists and is writable"}},
	PermissionDenied: {Code: PermissionDenied, Message: "path is outside the allowed directories", Retryable: false, NextSteps: []string{"Choose a path inside an allowed directory"}},
	NotFound:         {Code: NotFound, Message: "file not found", Retryable: true, NextSteps: []string{"Verify the path and retry"}},

	ChartUnavailable: {Code: ChartUnavailable, Message: "chart type cannot be built from the selection", Retryable: true, NextSteps: []string{"Select at least two columns for scatter", "Pick another chart type"}},
	CaptureFailed:    {Code: CaptureFailed, Message: "failed to capture chart image", Retryable: true, NextSteps: []string{"Retry the export", "Remove charts without plottable values"}},
	ExportAborted:    {Code: ExportAborted, Message: "export aborted, nothing was saved", Retryable: true, NextSteps: []string{"Retry the export"}},
	EmptyReport:      {Code: EmptyReport, Message: "nothing to export", Retryable: true, NextSteps: []string{"Generate a chart or run analyze_dataset first"}},

	AnalysisFailed: {Code: AnalysisFailed, Message: "analysis failed", Retryable: true, NextSteps: []string{"Retry, or switch llm_provider to heuristic"}},
}

// Lookup returns the catalog entry for code.
func Lookup(code Code) (Entry, bool) {
	e, ok := catalog[code]
	return e, ok
}

// normalize builds a standard error string including next steps for MCP clients that
// surface only a message string. Format: "CODE: message" followed by a guidance tail.
func normalize(code Code, msg string) string {
	base := strings.TrimSpace(msg)
	e, ok := catalog[code]
	if !ok {
		if base == "" {
			return string(code)
		}
		return fmt.Sprintf("%s: %s", string(code), base)
	}
	if base == "" {
		base = e.Message
	}
	guidance := ""
	if len(e.NextSteps) > 0 {
		guidance = " | nextSteps: " + strings.Join(e.NextSteps, "; ")
	}
	return fmt.Sprintf("%s: %s%s", e.Code, base, guidance)
}

// FromText parses a "CODE: message" string, enriches it with catalog guidance,
// and returns an MCP tool error result.
func FromText(text string) *mcp.CallToolResult {
	t := strings.TrimSpace(text)
	if t == "" {
		return mcp.NewToolResultError(normalize(Validation, ""))
	}
	parts := strings.SplitN(t, ":", 2)
	code := Code(strings.TrimSpace(parts[0]))
	msg := ""
	if len(parts) > 1 {
		msg = strings.TrimSpace(parts[1])
	}
	return mcp.NewToolResultError(normalize(code, msg))
}

// New returns an MCP error result for a given code and optional message override.
func New(code Code, message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, message))
}

// Wrapf formats details and returns an MCP error result for the code.
func Wrapf(code Code, format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, fmt.Sprintf(format, args...)))
}
