package view

// Size is a width and height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LayoutHash folds the size hints, visibility and link id of a component
// into one value. Arithmetic wraps at 32 bits so the result is stable across
// platforms.
func LayoutHash(lo, pref, hi Size, visible bool, linkID string) int {
	h := int32(hi.Width) + int32(hi.Height)<<5
	h += int32(pref.Width)<<10 + int32(pref.Height)<<15
	h += int32(lo.Width)<<20 + int32(lo.Height)<<25
	if visible {
		h += 1324511
	}
	if linkID != "" {
		h += stringHash(linkID)
	}
	return int(h)
}

// HashOf computes LayoutHash from a component's unhinted size queries.
func HashOf(c Component) int {
	return LayoutHash(
		Size{c.MinimumWidth(-1), c.MinimumHeight(-1)},
		Size{c.PreferredWidth(-1), c.PreferredHeight(-1)},
		Size{c.MaximumWidth(-1), c.MaximumHeight(-1)},
		c.Visible(),
		c.LinkID(),
	)
}

func stringHash(s string) int32 {
	var h int32
	for _, r := range s {
		h = 31*h + int32(r)
	}
	return h
}
