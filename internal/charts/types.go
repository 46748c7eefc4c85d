package charts

import (
	"fmt"
	"strings"
)

// Type is the chart kind a caller asks for.
type Type string

const (
	Bar     Type = "bar"
	Line    Type = "line"
	Pie     Type = "pie"
	Scatter Type = "scatter"
	Radar   Type = "radar"
	Boxplot Type = "boxplot"
	Heatmap Type = "heatmap"
)

var labels = map[Type]string{
	Bar:     "Bar Graph",
	Line:    "Line Chart",
	Pie:     "Pie Chart",
	Scatter: "Scatter Plot",
	Radar:   "Radar Chart",
	Boxplot: "Box Plot",
	Heatmap: "Heat Map",
}

// Types lists every supported chart type in menu order.
func Types() []Type {
	return []Type{Bar, Line, Pie, Scatter, Radar, Boxplot, Heatmap}
}

// Label is the display name of the chart type.
func (t Type) Label() string {
	if l, ok := labels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is one of the supported types.
func (t Type) Valid() bool {
	_, ok := labels[t]
	return ok
}

// ParseType resolves a chart tag, case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("charts: unknown chart type %q", s)
	}
	return t, nil
}

// Kind is the renderer-level chart kind. Boxplots render as bars and heatmaps
// as scatter plots.
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindPie     Kind = "pie"
	KindScatter Kind = "scatter"
	KindRadar   Kind = "radar"
)
