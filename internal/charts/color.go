package charts

import (
	"fmt"
	"math"

	"github.com/vinodismyname/mcpviz/internal/dataset"
)

// Color is a CSS color in either hsla() or rgba() form.
type Color struct {
	HSL     bool
	H, S, L float64
	R, G, B uint8
	A       float64
}

// HSLA builds a hue/saturation/lightness color; s and l are percentages.
func HSLA(h, s, l, a float64) Color {
	return Color{HSL: true, H: h, S: s, L: l, A: a}
}

// RGBA builds an 8-bit RGB color with alpha in [0,1].
func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// String renders the CSS form, e.g. "hsla(120, 70%, 50%, 0.5)".
func (c Color) String() string {
	if c.HSL {
		return fmt.Sprintf("hsla(%s, %s%%, %s%%, %s)",
			dataset.FormatNumber(c.H), dataset.FormatNumber(c.S),
			dataset.FormatNumber(c.L), dataset.FormatNumber(c.A))
	}
	if c.A == 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, dataset.FormatNumber(c.A))
}

// MarshalText encodes the CSS form.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// IsZero reports an unset color.
func (c Color) IsZero() bool { return c == Color{} }

// RGBA8 converts to 8-bit channels. NaN lightness (a heatmap cell over a NaN
// or zero maximum) is rendered as black.
func (c Color) RGBA8() (r, g, b, a uint8) {
	a = clamp8(c.A * 255)
	if !c.HSL {
		return c.R, c.G, c.B, a
	}
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	s := clampUnit(c.S / 100)
	l := clampUnit(c.L / 100)

	k := func(n float64) float64 { return math.Mod(n+h/30, 12) }
	amp := s * math.Min(l, 1-l)
	f := func(n float64) float64 {
		return l - amp*math.Max(-1, math.Min(k(n)-3, math.Min(9-k(n), 1)))
	}
	return clamp8(f(0) * 255), clamp8(f(8) * 255), clamp8(f(4) * 255), a
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
