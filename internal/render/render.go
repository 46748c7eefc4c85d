// Package render turns chart specs into PNG bitmaps. Renderer does the
// drawing with go-chart; Surface is the single shared canvas every capture
// goes through, one at a time.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/vinodismyname/mcpviz/internal/charts"
)

// ErrNothingToDraw is returned for specs with no finite data to plot.
var ErrNothingToDraw = errors.New("render: nothing to draw")

const (
	DefaultWidth  = 950
	DefaultHeight = 500
)

// Renderer rasterizes chart specs at a fixed pixel size.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a renderer, falling back to the default size for
// non-positive dimensions.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{Width: width, Height: height}
}

// Draw renders spec as PNG bytes.
func (r *Renderer) Draw(spec charts.Spec) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch {
	case spec.Type == charts.Heatmap:
		err = r.heatmap(spec, &buf)
	case spec.Kind == charts.KindBar:
		err = r.bars(spec, &buf)
	case spec.Kind == charts.KindLine:
		err = r.lines(spec, &buf)
	case spec.Kind == charts.KindPie:
		err = r.pie(spec, &buf)
	case spec.Kind == charts.KindScatter:
		err = r.scatter(spec, &buf)
	case spec.Kind == charts.KindRadar:
		err = r.radar(spec, &buf)
	default:
		err = fmt.Errorf("render: unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", spec.Type, err)
	}
	return buf.Bytes(), nil
}

func toDrawing(c charts.Color) drawing.Color {
	r, g, b, a := c.RGBA8()
	return drawing.Color{R: r, G: g, B: b, A: a}
}

func colorOr(c *charts.Color, fallback drawing.Color) drawing.Color {
	if c == nil {
		return fallback
	}
	return toDrawing(*c)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// span returns a non-degenerate range covering the finite values, optionally
// anchored at zero.
func span(values []float64, withZero bool) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	if withZero {
		lo, hi = 0, 0
	}
	for _, v := range values {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func (r *Renderer) frame(title string) chart.Chart {
	return chart.Chart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
	}
}

// bars draws grouped bars: for every label, one bar per series in series order.
func (r *Renderer) bars(spec charts.Spec, buf *bytes.Buffer) error {
	var bars []chart.Value
	var all []float64
	for i, label := range spec.Labels {
		for j, s := range spec.Series {
			v := 0.0
			if i < len(s.Values) && finite(float64(s.Values[i])) {
				v = float64(s.Values[i])
			}
			name := ""
			if j == 0 {
				name = label
			}
			bars = append(bars, chart.Value{
				Label: name,
				Value: v,
				Style: chart.Style{
					FillColor:   colorOr(s.BackgroundColor, chart.GetDefaultColor(j)),
					StrokeColor: colorOr(s.BackgroundColor, chart.GetDefaultColor(j)),
					StrokeWidth: 1,
				},
			})
			all = append(all, v)
		}
	}
	if len(bars) == 0 {
		return ErrNothingToDraw
	}

	width := (r.Width - 120) / len(bars)
	if width < 2 {
		width = 2
	}
	bc := chart.BarChart{
		Title:      spec.Title(),
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarWidth:   width,
		BarSpacing: 2,
		YAxis:      chart.YAxis{Range: span(all, true)},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, buf)
}

// lines draws one series per column against the row index. NaN points are
// skipped, joining their neighbours.
func (r *Renderer) lines(spec charts.Spec, buf *bytes.Buffer) error {
	var series []chart.Series
	var xs, ys []float64
	for j, s := range spec.Series {
		cs := chart.ContinuousSeries{
			Name: s.Label,
			Style: chart.Style{
				StrokeColor: colorOr(s.BorderColor, chart.GetDefaultColor(j)),
				StrokeWidth: 2,
			},
		}
		for i, v := range s.Values {
			if !finite(float64(v)) {
				continue
			}
			cs.XValues = append(cs.XValues, float64(i+1))
			cs.YValues = append(cs.YValues, float64(v))
		}
		if len(cs.XValues) == 0 {
			continue
		}
		xs = append(xs, cs.XValues...)
		ys = append(ys, cs.YValues...)
		series = append(series, cs)
	}
	if len(series) == 0 {
		return ErrNothingToDraw
	}

	ch := r.frame(spec.Title())
	ch.XAxis = chart.XAxis{Name: axisTitle(spec, true), Range: span(xs, false)}
	ch.YAxis = chart.YAxis{Name: axisTitle(spec, false), Range: span(ys, false)}
	ch.Series = series
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, buf)
}

func axisTitle(spec charts.Spec, x bool) string {
	if spec.Options.Scales == nil {
		return ""
	}
	if x {
		return spec.Options.Scales.X.Title
	}
	return spec.Options.Scales.Y.Title
}

func (r *Renderer) pie(spec charts.Spec, buf *bytes.Buffer) error {
	if len(spec.Series) == 0 {
		return ErrNothingToDraw
	}
	var values []chart.Value
	for i, label := range spec.Labels {
		if i >= len(spec.Series[0].Values) {
			break
		}
		v := float64(spec.Series[0].Values[i])
		if !finite(v) || v <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: label, Value: v})
	}
	if len(values) == 0 {
		return ErrNothingToDraw
	}
	pc := chart.PieChart{
		Title:  spec.Title(),
		Width:  r.Width,
		Height: r.Height,
		Values: values,
	}
	return pc.Render(chart.PNG, buf)
}

func (r *Renderer) scatter(spec charts.Spec, buf *bytes.Buffer) error {
	if len(spec.Series) == 0 {
		return ErrNothingToDraw
	}
	s := spec.Series[0]
	cs := chart.ContinuousSeries{
		Name: s.Label,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    chart.GetDefaultColor(0),
		},
	}
	for _, p := range s.Points {
		x, y := float64(p.X), float64(p.Y)
		if finite(x) && finite(y) {
			cs.XValues = append(cs.XValues, x)
			cs.YValues = append(cs.YValues, y)
		}
	}
	if len(cs.XValues) == 0 {
		return ErrNothingToDraw
	}

	ch := r.frame(spec.Title())
	ch.XAxis = chart.XAxis{Name: axisTitle(spec, true), Range: span(cs.XValues, false)}
	ch.YAxis = chart.YAxis{Name: axisTitle(spec, false), Range: span(cs.YValues, false)}
	ch.Series = []chart.Series{cs}
	return ch.Render(chart.PNG, buf)
}

// heatmap lays the cells out along x, one dot per row, colored per cell.
func (r *Renderer) heatmap(spec charts.Spec, buf *bytes.Buffer) error {
	if len(spec.Series) == 0 || len(spec.Series[0].Cells) == 0 {
		return ErrNothingToDraw
	}
	s := spec.Series[0]
	xs := make([]float64, len(s.Cells))
	ys := make([]float64, len(s.Cells))
	for i, c := range s.Cells {
		xs[i] = float64(c.X)
	}
	colors := s.CellColors
	cs := chart.ContinuousSeries{
		Name:    s.Label,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    10,
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				if index < len(colors) {
					return toDrawing(colors[index])
				}
				return chart.GetDefaultColor(0)
			},
		},
	}

	ch := r.frame(spec.Title())
	ch.XAxis = chart.XAxis{Name: "row", Range: span(xs, false)}
	ch.YAxis = chart.YAxis{Name: s.Label, Range: &chart.ContinuousRange{Min: -1, Max: 1}}
	ch.Series = []chart.Series{cs}
	return ch.Render(chart.PNG, buf)
}

// radar draws one spoke per label and the series polygon with radius scaled
// to the largest absolute value. NaN values sit at the centre.
func (r *Renderer) radar(spec charts.Spec, buf *bytes.Buffer) error {
	n := len(spec.Labels)
	if n == 0 || len(spec.Series) == 0 {
		return ErrNothingToDraw
	}
	s := spec.Series[0]

	scale := 0.0
	for _, v := range s.Values {
		if f := float64(v); finite(f) {
			scale = math.Max(scale, math.Abs(f))
		}
	}
	if scale == 0 {
		scale = 1
	}

	angle := func(k int) float64 { return math.Pi/2 - 2*math.Pi*float64(k)/float64(n) }
	grey := drawing.Color{R: 200, G: 200, B: 200, A: 255}

	var series []chart.Series
	var labels []chart.Value2
	for k, label := range spec.Labels {
		a := angle(k)
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{0, math.Cos(a)},
			YValues: []float64{0, math.Sin(a)},
			Style:   chart.Style{StrokeColor: grey, StrokeWidth: 1},
		})
		labels = append(labels, chart.Value2{XValue: 1.1 * math.Cos(a), YValue: 1.1 * math.Sin(a), Label: label})
	}

	poly := chart.ContinuousSeries{
		Name: s.Label,
		Style: chart.Style{
			StrokeColor: colorOr(s.BorderColor, chart.GetDefaultColor(0)),
			StrokeWidth: 2,
			DotWidth:    3,
			DotColor:    colorOr(s.BorderColor, chart.GetDefaultColor(0)),
		},
	}
	for k := 0; k <= n; k++ {
		idx := k % n
		rad := 0.0
		if idx < len(s.Values) && finite(float64(s.Values[idx])) {
			rad = float64(s.Values[idx]) / scale
		}
		a := angle(idx)
		poly.XValues = append(poly.XValues, rad*math.Cos(a))
		poly.YValues = append(poly.YValues, rad*math.Sin(a))
	}
	series = append(series, poly, chart.AnnotationSeries{Annotations: labels})

	ch := r.frame(spec.Title())
	ch.XAxis = chart.XAxis{Style: chart.Style{Hidden: true}, Range: &chart.ContinuousRange{Min: -1.4, Max: 1.4}}
	ch.YAxis = chart.YAxis{Style: chart.Style{Hidden: true}, Range: &chart.ContinuousRange{Min: -1.4, Max: 1.4}}
	ch.Series = series
	return ch.Render(chart.PNG, buf)
}
