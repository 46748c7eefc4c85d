package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	defaultFont = "Helvetica"
	a4Height    = 297.0
)

// PDFWriter emits paginated layouts as A4 portrait PDF documents in
// millimetres. It also owns text wrapping, since line breaks depend on the
// font metrics of the document being written.
type PDFWriter struct {
	Font string
	// Left is the x offset of every section.
	Left float64
}

// NewPDFWriter returns a writer using Helvetica with a 10 mm left edge.
func NewPDFWriter() *PDFWriter {
	return &PDFWriter{Font: defaultFont, Left: 10}
}

// PageHeight is the height of the pages Write produces.
func (w *PDFWriter) PageHeight() float64 {
	return a4Height
}

// Wrap splits text into lines no wider than width at the given font size.
// Embedded newlines always break.
func (w *PDFWriter) Wrap(text string, fontSize, width float64) []string {
	if text == "" {
		return []string{}
	}
	doc := w.newDoc()
	doc.SetFontSize(fontSize)
	return doc.SplitText(latin1(text), width)
}

// latin1 replaces runes the core PDF fonts have no metrics for.
func latin1(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xff {
			return '?'
		}
		return r
	}, s)
}

// Write renders pages to out. The document is assembled in memory first, so a
// failure leaves out untouched.
func (w *PDFWriter) Write(out io.Writer, pages []Page) error {
	doc := w.newDoc()
	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, p := range pages {
		doc.AddPage()
		for i, pl := range p.Placements {
			switch s := pl.Section.(type) {
			case TextBlock:
				w.writeText(doc, s, pl.Y, tr)
			case ChartImage:
				w.writeImage(doc, s, pl.Y, fmt.Sprintf("chart-p%d-%d", p.Number, i))
			default:
				return fmt.Errorf("report: unsupported section %T", pl.Section)
			}
		}
		if doc.Err() {
			return fmt.Errorf("report: page %d: %w", p.Number, doc.Error())
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return fmt.Errorf("report: output: %w", err)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

func (w *PDFWriter) newDoc() *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	font := w.Font
	if font == "" {
		font = defaultFont
	}
	doc.SetFont(font, "", 12)
	return doc
}

// writeText draws lines with y as the baseline of the first line.
func (w *PDFWriter) writeText(doc *fpdf.Fpdf, t TextBlock, y float64, tr func(string) string) {
	if t.FontSize > 0 {
		doc.SetFontSize(t.FontSize)
	}
	for i, line := range t.Lines {
		doc.Text(w.Left, y+float64(i)*t.LineHeight, tr(latin1(line)))
	}
}

func (w *PDFWriter) writeImage(doc *fpdf.Fpdf, c ChartImage, y float64, name string) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.Image))
	if doc.Err() {
		return
	}
	doc.ImageOptions(name, w.Left, y, c.ImageWidth, c.ImageHeight, false, opts, 0, "")
}
