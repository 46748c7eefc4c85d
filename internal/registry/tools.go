package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/vinodismyname/mcpviz/internal/analysis"
	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/internal/dataset"
	"github.com/vinodismyname/mcpviz/internal/export"
	"github.com/vinodismyname/mcpviz/internal/report"
	"github.com/vinodismyname/mcpviz/internal/runtime"
	"github.com/vinodismyname/mcpviz/internal/security"
	"github.com/vinodismyname/mcpviz/internal/session"
	"github.com/vinodismyname/mcpviz/pkg/mcperr"
	"github.com/vinodismyname/mcpviz/pkg/pagination"
	"github.com/vinodismyname/mcpviz/pkg/validation"
)

const (
	defaultPreviewRows = 5
	maxPreviewRows     = 50
)

// OutputValidator checks a path a tool is about to create.
type OutputValidator interface {
	ValidateWritePath(path, ext string) (string, error)
}

// Deps are the collaborators the tools run against.
type Deps struct {
	Limits       runtime.Limits
	Sessions     *session.Manager
	Analyzer     analysis.Analyzer
	Exporter     *export.Exporter
	Outputs      OutputValidator
	EnableExport bool
}

// --- Input / Output Schemas (typed for discovery) ---

// LoadDatasetInput defines parameters for loading a data file.
type LoadDatasetInput struct {
	Path        string `json:"path" validate:"required,data_ext" jsonschema_description:"Allowed path to a .csv, .json, .xlsx or .xls file"`
	SessionID   string `json:"session_id,omitempty" jsonschema_description:"Replace the dataset of this session instead of opening a new one"`
	PreviewRows int    `json:"preview_rows,omitempty" validate:"omitempty,min=1,max=50" jsonschema_description:"Rows to echo back as a preview (default 5, max 50)"`
}

// DatasetOutput summarizes a session's loaded dataset.
type DatasetOutput struct {
	SessionID string           `json:"session_id" jsonschema_description:"Server-assigned session ID"`
	Source    string           `json:"source"`
	Format    dataset.Format   `json:"format"`
	Rows      int              `json:"rows"`
	Columns   []string         `json:"columns"`
	Selected  []string         `json:"selected"`
	ChartType charts.Type      `json:"chart_type"`
	Preview   []dataset.Record `json:"preview"`
}

// SessionInput names a session.
type SessionInput struct {
	SessionID string `json:"session_id" validate:"required" jsonschema_description:"Session ID from load_dataset"`
}

// ColumnInfo profiles one column and marks whether it is selected.
type ColumnInfo struct {
	analysis.ColumnProfile
	Selected bool `json:"selected"`
}

// ListColumnsOutput lists every discovered column.
type ListColumnsOutput struct {
	SessionID string       `json:"session_id"`
	Rows      int          `json:"rows"`
	Columns   []ColumnInfo `json:"columns"`
}

// SelectColumnsInput replaces the column selection.
type SelectColumnsInput struct {
	SessionID string   `json:"session_id" validate:"required" jsonschema_description:"Session ID from load_dataset"`
	Columns   []string `json:"columns" validate:"required,unique" jsonschema_description:"Ordered column names; the first column is primary"`
	ChartType string   `json:"chart_type,omitempty" validate:"omitempty,chart_type" jsonschema_description:"Optionally switch the chart type"`
}

// SelectionOutput echoes the session selection.
type SelectionOutput struct {
	SessionID string      `json:"session_id"`
	Selected  []string    `json:"selected"`
	ChartType charts.Type `json:"chart_type"`
}

// GenerateChartInput builds one chart from the session selection.
type GenerateChartInput struct {
	SessionID string   `json:"session_id" validate:"required" jsonschema_description:"Session ID from load_dataset"`
	ChartType string   `json:"chart_type,omitempty" validate:"omitempty,chart_type" jsonschema_description:"bar, line, pie, scatter, radar, boxplot or heatmap; defaults to the session chart type"`
	Columns   []string `json:"columns,omitempty" validate:"omitempty,unique" jsonschema_description:"Replace the selection before building"`
}

// GenerateChartOutput is the appended chart.
type GenerateChartOutput struct {
	SessionID string      `json:"session_id"`
	Index     int         `json:"index" jsonschema_description:"Zero-based position in the session chart list"`
	Total     int         `json:"total"`
	Chart     charts.Spec `json:"chart"`
}

// AnalyzeOutput carries the analysis and the charts it produced.
type AnalyzeOutput struct {
	SessionID        string        `json:"session_id"`
	Text             string        `json:"text"`
	SuggestedColumns []string      `json:"suggested_columns"`
	Recommendations  []charts.Type `json:"recommendations"`
	Added            []string      `json:"added" jsonschema_description:"One-line descriptions of the charts appended"`
	Skipped          []charts.Type `json:"skipped" jsonschema_description:"Recommended types that could not be built"`
	Total            int           `json:"total"`
}

// ListChartsInput pages through the session charts.
type ListChartsInput struct {
	SessionID string `json:"session_id" validate:"required" jsonschema_description:"Session ID from load_dataset"`
	Cursor    string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
	PageSize  int    `json:"page_size,omitempty" validate:"omitempty,min=1,max=100" jsonschema_description:"Charts per page (default 10)"`
}

// ChartEntry is one listed chart.
type ChartEntry struct {
	Index int         `json:"index"`
	Title string      `json:"title"`
	Spec  charts.Spec `json:"spec"`
}

// PageMeta captures paging metadata.
type PageMeta struct {
	Total      int    `json:"total"`
	Returned   int    `json:"returned"`
	Truncated  bool   `json:"truncated"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// ListChartsOutput is one page of charts.
type ListChartsOutput struct {
	SessionID string       `json:"session_id"`
	Charts    []ChartEntry `json:"charts"`
	Meta      PageMeta     `json:"meta"`
}

// SectionOut is a placed report section.
type SectionOut struct {
	Kind   string   `json:"kind" jsonschema_description:"text or chart"`
	Y      float64  `json:"y" jsonschema_description:"Top offset in mm"`
	Height float64  `json:"height"`
	Lines  []string `json:"lines,omitempty"`
	Title  string   `json:"title,omitempty"`
}

// PageOut is one laid-out page.
type PageOut struct {
	Number   int          `json:"number"`
	Sections []SectionOut `json:"sections"`
}

// ReportLayoutOutput is the paginated report layout.
type ReportLayoutOutput struct {
	SessionID  string    `json:"session_id"`
	PageHeight float64   `json:"page_height"`
	Margin     float64   `json:"margin"`
	Pages      []PageOut `json:"pages"`
}

// ExportReportInput writes the report to a PDF.
type ExportReportInput struct {
	SessionID  string `json:"session_id" validate:"required" jsonschema_description:"Session ID from load_dataset"`
	OutputPath string `json:"output_path" validate:"required,pdf_ext" jsonschema_description:"Allowed path for the new .pdf file"`
}

// ExportReportOutput describes the written document.
type ExportReportOutput struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	Pages     int    `json:"pages"`
	Charts    int    `json:"charts"`
	Narrative bool   `json:"narrative" jsonschema_description:"True when the analysis text was included"`
}

// CloseSessionOutput acknowledges a closed session.
type CloseSessionOutput struct {
	Success bool `json:"success" jsonschema_description:"True when the session was closed"`
}

type handlers struct {
	Deps
	filter *ExportToolFilter
}

// RegisterTools defines every tool and wires its handler.
func RegisterTools(s *server.MCPServer, reg *Registry, deps Deps) {
	h := &handlers{Deps: deps, filter: NewExportToolFilter(deps.EnableExport)}

	add := func(tool mcp.Tool, handler server.ToolHandlerFunc) {
		s.AddTool(tool, handler)
		reg.Register(tool)
	}

	add(mcp.NewTool(
		"load_dataset",
		mcp.WithDescription("Parse a .csv, .json (array of objects), .xlsx or .xls file (first sheet only) into a dataset. Opens a new session, or replaces the dataset of session_id, which clears its charts and analysis. A file that fails to parse leaves an existing session untouched. Errors: PARSE_FAILED, FILE_TOO_LARGE, PERMISSION_DENIED, LIMIT_EXCEEDED."),
		mcp.WithInputSchema[LoadDatasetInput](),
		mcp.WithOutputSchema[DatasetOutput](),
	), mcp.NewTypedToolHandler(h.loadDataset))

	add(mcp.NewTool(
		"list_columns",
		mcp.WithDescription("List the columns discovered from the first record, with numeric/categorical kind, descriptive statistics, distinct counts, an inferred role (measure, dimension, time, id, target) and data quality warnings (missing values, duplicate IDs, negatives in count fields, >100% percents, mixed types, numbers stored as text)."),
		mcp.WithInputSchema[SessionInput](),
		mcp.WithOutputSchema[ListColumnsOutput](),
	), mcp.NewTypedToolHandler(h.listColumns))

	add(mcp.NewTool(
		"select_columns",
		mcp.WithDescription("Replace the ordered column selection (and optionally the chart type) used by generate_chart. The first column is primary: pie, heatmap and scatter x read it."),
		mcp.WithInputSchema[SelectColumnsInput](),
		mcp.WithOutputSchema[SelectionOutput](),
	), mcp.NewTypedToolHandler(h.selectColumns))

	add(mcp.NewTool(
		"generate_chart",
		mcp.WithDescription("Build a chart from the current selection and append it to the session. Scatter needs two selected columns; radar reads the first row. Errors: CHART_UNAVAILABLE, NO_DATASET."),
		mcp.WithInputSchema[GenerateChartInput](),
		mcp.WithOutputSchema[GenerateChartOutput](),
	), mcp.NewTypedToolHandler(h.generateChart))

	add(mcp.NewTool(
		"analyze_dataset",
		mcp.WithDescription("Analyze the dataset, store the narrative, and append one chart per recommended type over the suggested columns (or the current selection). Recommended types that cannot be built are reported as skipped."),
		mcp.WithInputSchema[SessionInput](),
		mcp.WithOutputSchema[AnalyzeOutput](),
	), mcp.NewTypedToolHandler(h.analyzeDataset))

	add(mcp.NewTool(
		"list_charts",
		mcp.WithDescription("Page through the session charts in creation order. Pass meta.nextCursor back as cursor; cursors are invalidated when the dataset is reloaded."),
		mcp.WithInputSchema[ListChartsInput](),
		mcp.WithOutputSchema[ListChartsOutput](),
	), mcp.NewTypedToolHandler(h.listCharts))

	add(mcp.NewTool(
		"paginate_report",
		mcp.WithDescription("Lay the report out on A4 pages without capturing or writing anything: heading and wrapped narrative when an analysis exists, then one 190x100 mm image per chart."),
		mcp.WithInputSchema[SessionInput](),
		mcp.WithOutputSchema[ReportLayoutOutput](),
	), mcp.NewTypedToolHandler(h.paginateReport))

	add(mcp.NewTool(
		"export_report",
		mcp.WithDescription("Capture every chart one at a time, paginate, and write a PDF to output_path. Any capture failure aborts the export and no file is written. Errors: CAPTURE_FAILED, EXPORT_ABORTED, EMPTY_REPORT, PERMISSION_DENIED."),
		mcp.WithInputSchema[ExportReportInput](),
		mcp.WithOutputSchema[ExportReportOutput](),
	), mcp.NewTypedToolHandler(h.exportReport))

	add(mcp.NewTool(
		"close_session",
		mcp.WithDescription("Close a session and free its slot."),
		mcp.WithInputSchema[SessionInput](),
		mcp.WithOutputSchema[CloseSessionOutput](),
	), mcp.NewTypedToolHandler(h.closeSession))
}

func (h *handlers) loadDataset(ctx context.Context, req mcp.CallToolRequest, in LoadDatasetInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	id := strings.TrimSpace(in.SessionID)
	var err error
	if id == "" {
		id, err = h.Sessions.Open(ctx, in.Path)
	} else {
		err = h.Sessions.Load(ctx, id, in.Path)
	}
	if err != nil {
		return toolError(err, mcperr.ParseFailed), nil
	}

	rows := in.PreviewRows
	if rows <= 0 {
		rows = defaultPreviewRows
	}
	rows = min(rows, maxPreviewRows)

	var out DatasetOutput
	err = h.Sessions.WithRead(id, func(st *session.State) error {
		out = DatasetOutput{
			SessionID: id,
			Source:    st.Source,
			Format:    st.Format,
			Rows:      st.Dataset.Len(),
			Columns:   st.Columns,
			Selected:  st.Selected,
			ChartType: st.ChartType,
			Preview:   st.Dataset.Records()[:min(rows, st.Dataset.Len())],
		}
		return nil
	})
	if err != nil {
		return toolError(err, mcperr.InvalidSession), nil
	}
	summary := fmt.Sprintf("session=%s source=%s rows=%d columns=%d selected=%v", id, out.Source, out.Rows, len(out.Columns), out.Selected)
	return mcp.NewToolResultStructured(out, summary), nil
}

func (h *handlers) listColumns(ctx context.Context, req mcp.CallToolRequest, in SessionInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	var out ListColumnsOutput
	err := h.Sessions.WithRead(in.SessionID, func(st *session.State) error {
		if !st.Loaded() {
			return session.ErrNoDataset
		}
		selected := make(map[string]bool, len(st.Selected))
		for _, c := range st.Selected {
			selected[c] = true
		}
		out = ListColumnsOutput{SessionID: in.SessionID, Rows: st.Dataset.Len(), Columns: make([]ColumnInfo, 0, len(st.Columns))}
		for _, name := range st.Columns {
			out.Columns = append(out.Columns, ColumnInfo{ColumnProfile: analysis.ProfileColumn(st.Dataset, name), Selected: selected[name]})
		}
		return nil
	})
	if err != nil {
		return toolError(err, mcperr.InvalidSession), nil
	}
	lines := []string{fmt.Sprintf("rows=%d columns=%d", out.Rows, len(out.Columns))}
	for _, c := range out.Columns {
		line := fmt.Sprintf("- %q kind=%s role=%s distinct=%d selected=%v", c.Name, c.Kind, c.Role, c.Distinct, c.Selected)
		if len(c.Warnings) > 0 {
			line += " warnings=" + strings.Join(c.Warnings, "; ")
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultStructured(out, strings.Join(lines, "\n")), nil
}

func (h *handlers) selectColumns(ctx context.Context, req mcp.CallToolRequest, in SelectColumnsInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	var out SelectionOutput
	err := h.Sessions.WithWrite(in.SessionID, func(st *session.State) error {
		if err := st.Select(in.Columns); err != nil {
			return err
		}
		if in.ChartType != "" {
			t, _ := charts.ParseType(in.ChartType)
			st.SetChartType(t)
		}
		out = SelectionOutput{SessionID: in.SessionID, Selected: st.Selected, ChartType: st.ChartType}
		return nil
	})
	if err != nil {
		return toolError(err, mcperr.Validation), nil
	}
	return mcp.NewToolResultStructured(out, fmt.Sprintf("selected=%v chart_type=%s", out.Selected, out.ChartType)), nil
}

func (h *handlers) generateChart(ctx context.Context, req mcp.CallToolRequest, in GenerateChartInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	var out GenerateChartOutput
	err := h.Sessions.WithWrite(in.SessionID, func(st *session.State) error {
		if len(in.Columns) > 0 {
			if err := st.Select(in.Columns); err != nil {
				return err
			}
		}
		if in.ChartType != "" {
			t, _ := charts.ParseType(in.ChartType)
			st.SetChartType(t)
		}
		spec, err := st.Generate()
		if err != nil {
			return err
		}
		out = GenerateChartOutput{SessionID: in.SessionID, Index: st.Charts.Len() - 1, Total: st.Charts.Len(), Chart: *spec}
		return nil
	})
	if err != nil {
		return toolError(err, mcperr.ChartUnavailable), nil
	}
	zerolog.Ctx(ctx).Debug().Str("session", in.SessionID).Str("chart", charts.Describe(out.Chart)).Msg("chart generated")
	return mcp.NewToolResultStructured(out, fmt.Sprintf("chart %d: %s", out.Index, charts.Describe(out.Chart))), nil
}

func (h *handlers) analyzeDataset(ctx context.Context, req mcp.CallToolRequest, in SessionInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}

	// the analyzer may be slow, so it runs outside the session lock
	var (
		ds  dataset.Dataset
		gen int64
	)
	err := h.Sessions.WithRead(in.SessionID, func(st *session.State) error {
		if !st.Loaded() {
			return session.ErrNoDataset
		}
		ds, gen = st.Dataset, st.Generation
		return nil
	})
	if err != nil {
		return toolError(err, mcperr.InvalidSession), nil
	}

	res, err := h.Analyzer.Analyze(ctx, ds)
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}

	var out AnalyzeOutput
	err = h.Sessions.WithWrite(in.SessionID, func(st *session.State) error {
		if st.Generation != gen {
			return fmt.Errorf("%w: dataset was replaced during analysis", analysis.ErrAnalysisFailed)
		}
		built, skipped, err := st.ApplyAnalysis(res)
		if err != nil {
			return err
		}
		out = AnalyzeOutput{
			SessionID:        in.SessionID,
			Text:             res.Text,
			SuggestedColumns: nonNil(res.SuggestedColumns),
			Recommendations:  nonNil(res.Recommendations),
			Added:            make([]string, 0, len(built)),
			Skipped:          nonNil(skipped),
			Total:            st.Charts.Len(),
		}
		for _, spec := range built {
			out.Added = append(out.Added, charts.Describe(spec))
		}
		return nil
	})
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	summary := fmt.Sprintf("added=%d skipped=%v\n%s", len(out.Added), out.Skipped, out.Text)
	return mcp.NewToolResultStructured(out, summary), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (h *handlers) listCharts(ctx context.Context, req mcp.CallToolRequest, in ListChartsInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}

	off, ps := 0, in.PageSize
	var cur *pagination.Cursor
	if in.Cursor != "" {
		c, err := pagination.DecodeCursor(in.Cursor)
		if err != nil {
			return toolError(err, mcperr.CursorInvalid), nil
		}
		cur, off = c, c.Off
		if ps <= 0 {
			ps = c.Ps
		}
	}
	if ps <= 0 {
		ps = h.Limits.ChartPageSize
	}
	if h.Limits.MaxChartPage > 0 {
		ps = min(ps, h.Limits.MaxChartPage)
	}

	var (
		out ListChartsOutput
		gen int64
	)
	err := h.Sessions.WithRead(in.SessionID, func(st *session.State) error {
		gen = st.Generation
		if cur != nil && !cur.Matches(in.SessionID, gen) {
			return fmt.Errorf("%w: issued for another session or dataset", pagination.ErrInvalidCursor)
		}
		page := st.Charts.Slice(off, ps)
		out = ListChartsOutput{SessionID: in.SessionID, Charts: make([]ChartEntry, 0, len(page))}
		for i, spec := range page {
			out.Charts = append(out.Charts, ChartEntry{Index: off + i, Title: spec.Title(), Spec: spec})
		}
		out.Meta = PageMeta{Total: st.Charts.Len(), Returned: len(page)}
		return nil
	})
	if err != nil {
		return toolError(err, mcperr.InvalidSession), nil
	}

	next := pagination.NextOffset(off, out.Meta.Returned)
	if next < out.Meta.Total && out.Meta.Returned > 0 {
		tok, err := pagination.EncodeCursor(pagination.Cursor{Sid: in.SessionID, Off: next, Ps: ps, Gen: gen})
		if err != nil {
			return mcperr.Wrapf(mcperr.CursorBuildFailed, "%v", err), nil
		}
		out.Meta.Truncated = true
		out.Meta.NextCursor = tok
	}

	lines := []string{fmt.Sprintf("total=%d returned=%d truncated=%v", out.Meta.Total, out.Meta.Returned, out.Meta.Truncated)}
	for _, c := range out.Charts {
		lines = append(lines, fmt.Sprintf("- %d %s", c.Index, c.Title))
	}
	return mcp.NewToolResultStructured(out, strings.Join(lines, "\n")), nil
}

// exportRequest snapshots what a report needs so layout and capture run
// without holding the session lock.
func (h *handlers) exportRequest(id string) (export.Request, error) {
	var req export.Request
	err := h.Sessions.WithRead(id, func(st *session.State) error {
		if !st.Loaded() {
			return session.ErrNoDataset
		}
		req = export.Request{Analysis: st.AnalysisText(), Charts: st.Charts.All()}
		return nil
	})
	return req, err
}

func (h *handlers) paginateReport(ctx context.Context, req mcp.CallToolRequest, in SessionInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	exp, err := h.exportRequest(in.SessionID)
	if err != nil {
		return toolError(err, mcperr.InvalidSession), nil
	}
	pages, err := h.Exporter.Preview(exp)
	if err != nil {
		return toolError(err, mcperr.EmptyReport), nil
	}

	g := h.Exporter.Geometry()
	out := ReportLayoutOutput{SessionID: in.SessionID, PageHeight: g.PageHeight, Margin: g.Margin, Pages: layoutPages(pages)}
	lines := []string{fmt.Sprintf("pages=%d", len(out.Pages))}
	for _, p := range out.Pages {
		ys := make([]string, len(p.Sections))
		for i, s := range p.Sections {
			ys[i] = fmt.Sprintf("%s@%g", s.Kind, s.Y)
		}
		lines = append(lines, fmt.Sprintf("- page %d: %s", p.Number, strings.Join(ys, " ")))
	}
	return mcp.NewToolResultStructured(out, strings.Join(lines, "\n")), nil
}

func layoutPages(pages []report.Page) []PageOut {
	out := make([]PageOut, 0, len(pages))
	for _, p := range pages {
		po := PageOut{Number: p.Number, Sections: make([]SectionOut, 0, len(p.Placements))}
		for _, pl := range p.Placements {
			so := SectionOut{Y: pl.Y, Height: pl.Section.Height()}
			switch s := pl.Section.(type) {
			case report.TextBlock:
				so.Kind, so.Lines = "text", s.Lines
			case report.ChartImage:
				so.Kind, so.Title = "chart", s.Title
			}
			po.Sections = append(po.Sections, so)
		}
		out = append(out, po)
	}
	return out
}

func (h *handlers) exportReport(ctx context.Context, req mcp.CallToolRequest, in ExportReportInput) (*mcp.CallToolResult, error) {
	if !h.filter.Allowed("export_report") {
		return mcperr.New(mcperr.PermissionDenied, "exports are disabled; set enable_export"), nil
	}
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	path, err := h.Outputs.ValidateWritePath(in.OutputPath, ".pdf")
	if err != nil {
		if errors.Is(err, security.ErrUnsupportedExtension) {
			return mcperr.New(mcperr.Validation, err.Error()), nil
		}
		return toolError(err, mcperr.PermissionDenied), nil
	}
	exp, err := h.exportRequest(in.SessionID)
	if err != nil {
		return toolError(err, mcperr.InvalidSession), nil
	}
	pages, err := h.Exporter.ExportFile(ctx, exp, path)
	if err != nil {
		return toolError(err, mcperr.WriteFailed), nil
	}
	out := ExportReportOutput{
		SessionID: in.SessionID,
		Path:      path,
		Pages:     len(pages),
		Charts:    len(exp.Charts),
		Narrative: strings.TrimSpace(exp.Analysis) != "",
	}
	return mcp.NewToolResultStructured(out, fmt.Sprintf("wrote %s pages=%d charts=%d", out.Path, out.Pages, out.Charts)), nil
}

func (h *handlers) closeSession(ctx context.Context, req mcp.CallToolRequest, in SessionInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	if err := h.Sessions.CloseSession(ctx, in.SessionID); err != nil {
		return toolError(err, mcperr.InvalidSession), nil
	}
	return mcp.NewToolResultStructured(CloseSessionOutput{Success: true}, "session closed"), nil
}
