package charts

import (
	"math"
	"strconv"
)

// Number is a float that encodes NaN and infinities as JSON null, the way a
// chart library treats a gap.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// Point is one scatter point.
type Point struct {
	X Number `json:"x"`
	Y Number `json:"y"`
}

// Cell is one heatmap cell: row index, column name, value.
type Cell struct {
	X int    `json:"x"`
	Y string `json:"y"`
	V Number `json:"v"`
}

// Series is one named data series of a chart.
type Series struct {
	Label           string   `json:"label,omitempty"`
	Values          []Number `json:"values,omitempty"`
	Points          []Point  `json:"points,omitempty"`
	Cells           []Cell   `json:"cells,omitempty"`
	BackgroundColor *Color   `json:"background_color,omitempty"`
	BorderColor     *Color   `json:"border_color,omitempty"`
	CellColors      []Color  `json:"cell_colors,omitempty"`
	Fill            bool     `json:"fill,omitempty"`
	Tension         float64  `json:"tension,omitempty"`
}

// Legend places the series legend.
type Legend struct {
	Position string `json:"position"`
}

// Tooltip configures hover tooltips. Label, when set, is a template where
// {v} is replaced by the hovered cell value.
type Tooltip struct {
	Enabled   bool   `json:"enabled"`
	Mode      string `json:"mode"`
	Intersect bool   `json:"intersect"`
	Label     string `json:"label,omitempty"`
}

// Axis is one cartesian axis.
type Axis struct {
	Display bool   `json:"display"`
	Title   string `json:"title"`
}

// Scales holds the x and y axes. Pie and radar charts have none.
type Scales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// Options is the rendering-options bag attached to every spec.
type Options struct {
	Responsive bool    `json:"responsive"`
	Legend     Legend  `json:"legend"`
	Tooltip    Tooltip `json:"tooltip"`
	Scales     *Scales `json:"scales,omitempty"`
}

// Spec is a fully resolved chart description, ready for a renderer.
type Spec struct {
	Type    Type     `json:"type"`
	Kind    Kind     `json:"kind"`
	Labels  []string `json:"labels,omitempty"`
	Series  []Series `json:"series"`
	Options Options  `json:"options"`
}

// Title is a short human-readable caption for the chart.
func (s Spec) Title() string {
	if len(s.Series) == 1 && s.Series[0].Label != "" {
		return s.Type.Label() + ": " + s.Series[0].Label
	}
	return s.Type.Label()
}
