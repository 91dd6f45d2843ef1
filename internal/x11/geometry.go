package x11

import "github.com/BurntSushi/xgbutil/ewmh"

// Rect is an axis-aligned rectangle in root window coordinates.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) right() int  { return r.X + r.Width }
func (r Rect) bottom() int { return r.Y + r.Height }

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.right() && y >= r.Y && y < r.bottom()
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x1, y1 := max(r.X, o.X), max(r.Y, o.Y)
	x2, y2 := min(r.right(), o.right()), min(r.bottom(), o.bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// insets accumulates the space reserved by docks along each monitor edge.
type insets struct {
	left, right, top, bottom int
}

func (in insets) zero() bool {
	return in.left == 0 && in.right == 0 && in.top == 0 && in.bottom == 0
}

// shrink removes the insets from r, keeping at least one pixel each way.
func (in insets) shrink(r Rect) Rect {
	r.X += in.left
	r.Y += in.top
	r.Width = max(1, r.Width-in.left-in.right)
	r.Height = max(1, r.Height-in.top-in.bottom)
	return r
}

// addStrut folds one dock's partial strut into acc for the given monitor.
// Strut bands are described relative to the root window edges.
func addStrut(acc *insets, monitor Rect, rootW, rootH int, sp *ewmh.WmStrutPartial) {
	if sp.Top > 0 {
		band := Rect{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top)}
		acc.top = max(acc.top, monitor.Intersect(band).Height)
	}
	if sp.Bottom > 0 {
		band := Rect{X: int(sp.BottomStartX), Y: rootH - int(sp.Bottom), Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom)}
		acc.bottom = max(acc.bottom, monitor.Intersect(band).Height)
	}
	if sp.Left > 0 {
		band := Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1}
		acc.left = max(acc.left, monitor.Intersect(band).Width)
	}
	if sp.Right > 0 {
		band := Rect{X: rootW - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1}
		acc.right = max(acc.right, monitor.Intersect(band).Width)
	}
}

// fullStrut widens a legacy _NET_WM_STRUT to span the whole root window.
func fullStrut(s *ewmh.WmStrut, rootW, rootH int) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(rootH - 1),
		RightEndY:  uint(rootH - 1),
		TopEndX:    uint(rootW - 1),
		BottomEndX: uint(rootW - 1),
	}
}

// dpi converts a pixel extent and its physical size in millimetres to dots per
// inch. Zero is returned when the physical size is unknown.
func dpi(px int, mm uint32) int {
	if mm == 0 || px <= 0 {
		return 0
	}
	return int(float64(px)*25.4/float64(mm) + 0.5)
}
