// Package charts maps a chart type, a dataset and an ordered column selection
// to a renderable chart specification. Build is a pure function: the same
// inputs always produce the same Spec, and nothing is remembered between calls.
package charts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vinodismyname/mcpviz/internal/dataset"
	"github.com/vinodismyname/mcpviz/internal/stats"
)

// ErrUnavailable is matched by every UnavailableError.
var ErrUnavailable = errors.New("charts: chart unavailable")

// UnavailableError means no chart is produced for the request. Callers treat
// it as "nothing to add", not as a failure of the session.
type UnavailableError struct {
	Type   Type
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("charts: no %s chart: %s", e.Type, e.Reason)
}

// Is lets errors.Is(err, ErrUnavailable) match.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

var boxplotCategories = []string{"Minimum", "Q1", "Median", "Q3", "Maximum"}

// Build produces the chart spec for t over ds using the selected columns.
//
// Only the first column is read for pie and heatmap charts, and only the first
// row for radar charts. Non-numeric cells become NaN in numeric charts.
func Build(t Type, ds dataset.Dataset, cols []string) (*Spec, error) {
	if len(cols) == 0 {
		return nil, &UnavailableError{Type: t, Reason: "no columns selected"}
	}

	spec := &Spec{Type: t, Options: baseOptions(cols)}
	switch t {
	case Bar:
		spec.Kind = KindBar
		spec.Labels = entryLabels(ds.Len())
		spec.Series = columnSeries(ds, cols, func(i int) Series {
			c := seriesHue(i, len(cols), 0.5)
			return Series{BackgroundColor: &c}
		})
	case Line:
		spec.Kind = KindLine
		spec.Labels = entryLabels(ds.Len())
		spec.Series = columnSeries(ds, cols, func(i int) Series {
			c := seriesHue(i, len(cols), 1)
			return Series{BorderColor: &c, Tension: 0.1}
		})
	case Pie:
		spec.Kind = KindPie
		spec.Options.Scales = nil
		spec.Labels, spec.Series = pieSeries(ds, cols[0])
	case Scatter:
		if len(cols) < 2 {
			return nil, &UnavailableError{Type: t, Reason: "scatter needs two columns"}
		}
		spec.Kind = KindScatter
		spec.Series = []Series{scatterSeries(ds, cols[0], cols[1])}
	case Radar:
		if ds.Len() == 0 {
			return nil, &UnavailableError{Type: t, Reason: "dataset has no rows"}
		}
		spec.Kind = KindRadar
		spec.Options.Scales = nil
		spec.Labels = append([]string(nil), cols...)
		spec.Series = []Series{radarSeries(ds.Row(0), cols)}
	case Boxplot:
		spec.Kind = KindBar
		spec.Labels = append([]string(nil), boxplotCategories...)
		spec.Series = boxplotSeries(ds, cols)
	case Heatmap:
		spec.Kind = KindScatter
		spec.Options.Tooltip = Tooltip{Enabled: true, Mode: "nearest", Intersect: true, Label: "Value: {v}"}
		spec.Series = []Series{heatmapSeries(ds, cols[0])}
	default:
		return nil, &UnavailableError{Type: t, Reason: "unknown chart type"}
	}
	return spec, nil
}

func baseOptions(cols []string) Options {
	y := ""
	if len(cols) > 1 {
		y = cols[1]
	}
	return Options{
		Responsive: true,
		Legend:     Legend{Position: "top"},
		Tooltip:    Tooltip{Enabled: true, Mode: "index", Intersect: false},
		Scales: &Scales{
			X: Axis{Display: true, Title: cols[0]},
			Y: Axis{Display: true, Title: y},
		},
	}
}

// seriesHue spreads series evenly around the color wheel.
func seriesHue(i, n int, alpha float64) Color {
	return HSLA(float64(i)*360/float64(n), 70, 50, alpha)
}

func entryLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Entry %d", i+1)
	}
	return out
}

func numbers(fs []float64) []Number {
	out := make([]Number, len(fs))
	for i, f := range fs {
		out[i] = Number(f)
	}
	return out
}

func columnSeries(ds dataset.Dataset, cols []string, style func(i int) Series) []Series {
	out := make([]Series, len(cols))
	for i, col := range cols {
		s := style(i)
		s.Label = col
		s.Values = numbers(ds.Floats(col))
		out[i] = s
	}
	return out
}

func pieSeries(ds dataset.Dataset, col string) ([]string, []Series) {
	column := ds.Column(col)
	keys := make([]string, len(column))
	for i, v := range column {
		keys[i] = v.String()
	}
	counts := stats.FrequencyCount(keys)

	labels := make([]string, 0, counts.Len())
	values := make([]Number, 0, counts.Len())
	for p := counts.Oldest(); p != nil; p = p.Next() {
		labels = append(labels, p.Key)
		values = append(values, Number(p.Value))
	}
	return labels, []Series{{Values: values}}
}

func scatterSeries(ds dataset.Dataset, xcol, ycol string) Series {
	xs, ys := ds.Floats(xcol), ds.Floats(ycol)
	points := make([]Point, len(xs))
	for i := range xs {
		points[i] = Point{X: Number(xs[i]), Y: Number(ys[i])}
	}
	return Series{Label: xcol + " vs " + ycol, Points: points}
}

func radarSeries(row dataset.Record, cols []string) Series {
	values := make([]Number, len(cols))
	for i, col := range cols {
		values[i] = Number(row.Get(col).Float())
	}
	bg := RGBA(54, 162, 235, 0.2)
	border := RGBA(54, 162, 235, 1)
	return Series{
		Label:           "Data Point",
		Values:          values,
		Fill:            true,
		BackgroundColor: &bg,
		BorderColor:     &border,
	}
}

func boxplotSeries(ds dataset.Dataset, cols []string) []Series {
	out := make([]Series, len(cols))
	for i, col := range cols {
		summary := stats.FiveNumbers(ds.Floats(col))
		c := seriesHue(i, len(cols), 0.5)
		out[i] = Series{
			Label:           col,
			Values:          numbers(summary.Values()),
			BackgroundColor: &c,
		}
	}
	return out
}

// heatmapSeries colors each cell by its value relative to the column maximum:
// fixed hue 200, lightness 50% scaled by the normalized value.
func heatmapSeries(ds dataset.Dataset, col string) Series {
	vs := ds.Floats(col)
	max := stats.MaxOf(vs)

	cells := make([]Cell, len(vs))
	colors := make([]Color, len(vs))
	for i, v := range vs {
		cells[i] = Cell{X: i, Y: col, V: Number(v)}
		colors[i] = HSLA(200, 70, 50*stats.Normalize(v, max), 0.8)
	}
	return Series{Label: col, Cells: cells, CellColors: colors}
}

// Describe is a one-line summary of a spec for logs and tool output.
func Describe(s Spec) string {
	names := make([]string, 0, len(s.Series))
	for _, se := range s.Series {
		if se.Label != "" {
			names = append(names, se.Label)
		}
	}
	return fmt.Sprintf("%s series=%d [%s]", s.Type, len(s.Series), strings.Join(names, ", "))
}
