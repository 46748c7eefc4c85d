package charts

// Collection is the ordered, append-only list of charts produced for one
// dataset. It is owned by the caller; Build never touches it.
type Collection struct {
	specs []Spec
}

// Append adds a spec at the end.
func (c *Collection) Append(s Spec) {
	c.specs = append(c.specs, s)
}

// Len returns the number of charts.
func (c *Collection) Len() int { return len(c.specs) }

// All returns a copy of the charts in production order.
func (c *Collection) All() []Spec {
	out := make([]Spec, len(c.specs))
	copy(out, c.specs)
	return out
}

// Slice returns charts [off, off+n) clamped to the collection bounds.
func (c *Collection) Slice(off, n int) []Spec {
	if off < 0 {
		off = 0
	}
	if off >= len(c.specs) || n <= 0 {
		return []Spec{}
	}
	end := off + n
	if end > len(c.specs) {
		end = len(c.specs)
	}
	out := make([]Spec, end-off)
	copy(out, c.specs[off:end])
	return out
}

// Reset empties the collection. Only a fresh dataset load calls it.
func (c *Collection) Reset() {
	c.specs = nil
}
