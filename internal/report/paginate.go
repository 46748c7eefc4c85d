// Package report lays report sections out on fixed-size pages and writes the
// resulting layout as a PDF document.
//
// Paginate is pure: it never wraps text or measures images itself. Callers
// hand it sections whose heights are already known.
package report

// Section is one indivisible block of a report.
type Section interface {
	// Height is the vertical space the section occupies on a page.
	Height() float64
	// Spacing is the gap left below the section before the next one.
	Spacing() float64
}

// TextBlock is narrative text already wrapped into lines.
type TextBlock struct {
	Lines      []string
	LineHeight float64
	FontSize   float64
	After      float64
}

// Height implements Section.
func (t TextBlock) Height() float64 { return float64(len(t.Lines)) * t.LineHeight }

// Spacing implements Section.
func (t TextBlock) Spacing() float64 { return t.After }

// ChartImage is an encoded chart bitmap placed at a fixed size.
type ChartImage struct {
	Title       string
	Image       []byte
	ImageWidth  float64
	ImageHeight float64
	Gap         float64
}

// Height implements Section.
func (c ChartImage) Height() float64 { return c.ImageHeight }

// Spacing implements Section.
func (c ChartImage) Spacing() float64 { return c.Gap }

// Geometry is the usable page frame in document units.
type Geometry struct {
	PageHeight float64
	Margin     float64
}

// Bottom is the lowest y a section may reach before a page break.
func (g Geometry) Bottom() float64 { return g.PageHeight - g.Margin }

// Placement is a section positioned at a vertical offset.
type Placement struct {
	Section Section
	Y       float64
}

// Page is one output page, numbered from 1.
type Page struct {
	Number     int
	Placements []Placement
}

// Paginate walks sections top to bottom and places each at a running cursor.
// When the page already holds a placement and the next section would end below
// Geometry.Bottom, a new page starts with the cursor back at the margin.
// Sections are never split; an oversized section lands whole on a fresh page.
func Paginate(sections []Section, g Geometry) []Page {
	if len(sections) == 0 {
		return []Page{}
	}

	pages := []Page{{Number: 1}}
	cursor := g.Margin
	for _, s := range sections {
		cur := &pages[len(pages)-1]
		if len(cur.Placements) > 0 && cursor+s.Height() > g.Bottom() {
			pages = append(pages, Page{Number: len(pages) + 1})
			cur = &pages[len(pages)-1]
			cursor = g.Margin
		}
		cur.Placements = append(cur.Placements, Placement{Section: s, Y: cursor})
		cursor += s.Height() + s.Spacing()
	}
	return pages
}
