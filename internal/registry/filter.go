package registry

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ExportToolFilter hides tools that write files (export_*) unless the
// operator enabled exports.
type ExportToolFilter struct {
	allowExport bool
}

// NewExportToolFilter constructs a filter; allow mirrors config enable_export.
func NewExportToolFilter(allow bool) *ExportToolFilter {
	return &ExportToolFilter{allowExport: allow}
}

// Allowed reports whether a tool name passes the filter.
func (f *ExportToolFilter) Allowed(name string) bool {
	return f.allowExport || !strings.HasPrefix(strings.ToLower(name), "export_")
}

// FilterTools implements server tool filtering semantics.
func (f *ExportToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if f.allowExport {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if f.Allowed(t.Name) {
			out = append(out, t)
		}
	}
	return out
}
