// Package export assembles the report: it captures every chart in order,
// lays narrative and bitmaps out on pages and hands the layout to a document
// writer. Any failure aborts the whole export and nothing is written.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/internal/render"
	"github.com/vinodismyname/mcpviz/internal/report"
)

var (
	// ErrCaptureFailure wraps the error of a failed chart capture.
	ErrCaptureFailure = errors.New("export: chart capture failed")
	// ErrExportAborted is returned for every export that did not complete.
	ErrExportAborted = errors.New("export: aborted")
	// ErrEmptyReport means there was neither narrative nor a chart to export.
	ErrEmptyReport = errors.New("export: nothing to export")
)

// Heading is the title line placed above the narrative.
const Heading = "AI Analysis Report"

// Writer wraps text and writes paginated layouts.
type Writer interface {
	PageHeight() float64
	Wrap(text string, fontSize, width float64) []string
	Write(w io.Writer, pages []report.Page) error
}

// Layout holds the report geometry in document units.
type Layout struct {
	Margin            float64
	TextWidth         float64
	HeadingSize       float64
	HeadingLineHeight float64
	BodySize          float64
	BodyLineHeight    float64
	BodyAfter         float64
	ChartWidth        float64
	ChartHeight       float64
	ChartGap          float64
}

// DefaultLayout is the A4 layout: 10 mm margin, 190 mm content width,
// 190x100 chart images with a 10 mm gap.
func DefaultLayout() Layout {
	return Layout{
		Margin:            10,
		TextWidth:         190,
		HeadingSize:       16,
		HeadingLineHeight: 10,
		BodySize:          12,
		BodyLineHeight:    7,
		BodyAfter:         10,
		ChartWidth:        190,
		ChartHeight:       100,
		ChartGap:          10,
	}
}

// Request is everything one export needs.
type Request struct {
	Analysis string
	Charts   []charts.Spec
}

// Exporter runs the capture, layout and write chain.
type Exporter struct {
	capturer render.Capturer
	writer   Writer
	layout   Layout
}

// New builds an exporter. A zero layout selects DefaultLayout.
func New(c render.Capturer, w Writer, layout Layout) *Exporter {
	if layout == (Layout{}) {
		layout = DefaultLayout()
	}
	return &Exporter{capturer: c, writer: w, layout: layout}
}

// Geometry is the page frame used for pagination.
func (e *Exporter) Geometry() report.Geometry {
	return report.Geometry{PageHeight: e.writer.PageHeight(), Margin: e.layout.Margin}
}

// Preview lays the report out without capturing anything. Chart sections carry
// no image bytes; their size is fixed, so the pages match a real export.
func (e *Exporter) Preview(req Request) ([]report.Page, error) {
	if strings.TrimSpace(req.Analysis) == "" && len(req.Charts) == 0 {
		return nil, ErrEmptyReport
	}
	images := make([][]byte, len(req.Charts))
	return report.Paginate(e.sections(req, images), e.Geometry()), nil
}

// Pages captures every chart, strictly one after another, then paginates.
func (e *Exporter) Pages(ctx context.Context, req Request) ([]report.Page, error) {
	if strings.TrimSpace(req.Analysis) == "" && len(req.Charts) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrExportAborted, ErrEmptyReport)
	}

	logger := zerolog.Ctx(ctx)
	images := make([][]byte, len(req.Charts))
	for i, spec := range req.Charts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExportAborted, err)
		}
		img, err := e.capturer.Capture(ctx, spec)
		if err != nil {
			logger.Warn().Err(err).Int("chart", i+1).Str("type", string(spec.Type)).Msg("capture failed; aborting export")
			return nil, fmt.Errorf("%w: chart %d (%s): %w: %w", ErrExportAborted, i+1, spec.Type, ErrCaptureFailure, err)
		}
		images[i] = img
	}
	return report.Paginate(e.sections(req, images), e.Geometry()), nil
}

// sections orders the report: heading and narrative when there is analysis
// text, then one image per chart.
func (e *Exporter) sections(req Request, images [][]byte) []report.Section {
	l := e.layout
	var out []report.Section
	if strings.TrimSpace(req.Analysis) != "" {
		out = append(out,
			report.TextBlock{
				Lines:      []string{Heading},
				LineHeight: l.HeadingLineHeight,
				FontSize:   l.HeadingSize,
			},
			report.TextBlock{
				Lines:      e.writer.Wrap(req.Analysis, l.BodySize, l.TextWidth),
				LineHeight: l.BodyLineHeight,
				FontSize:   l.BodySize,
				After:      l.BodyAfter,
			},
		)
	}
	for i, spec := range req.Charts {
		out = append(out, report.ChartImage{
			Title:       spec.Title(),
			Image:       images[i],
			ImageWidth:  l.ChartWidth,
			ImageHeight: l.ChartHeight,
			Gap:         l.ChartGap,
		})
	}
	return out
}

// Export writes the finished document to w. Nothing reaches w unless every
// capture succeeded.
func (e *Exporter) Export(ctx context.Context, req Request, w io.Writer) ([]report.Page, error) {
	start := time.Now()
	pages, err := e.Pages(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := e.writer.Write(w, pages); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportAborted, err)
	}
	zerolog.Ctx(ctx).Info().
		Int("charts", len(req.Charts)).
		Int("pages", len(pages)).
		Dur("took", time.Since(start)).
		Msg("report exported")
	return pages, nil
}

// ExportFile exports to path atomically: the document goes to a temporary
// file in the same directory, which is renamed over path only on success.
func (e *Exporter) ExportFile(ctx context.Context, req Request, path string) ([]report.Page, error) {
	var buf bytes.Buffer
	pages, err := e.Export(ctx, req, &buf)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".mcpviz-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportAborted, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return nil, fmt.Errorf("%w: %w", ErrExportAborted, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %w", ErrExportAborted, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %w", ErrExportAborted, err)
	}
	return pages, nil
}
