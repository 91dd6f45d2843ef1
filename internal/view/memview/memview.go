// Package memview is an in-memory widget toolkit. It backs dry runs and tests
// of the layout engine without a display server.
package memview

import (
	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/view"
)

// Screen describes the display a widget tree lives on.
type Screen struct {
	Width  int
	Height int
	DPIX   int
	DPIY   int
}

// DefaultScreen is used when no panel in the tree carries one.
var DefaultScreen = Screen{Width: 1920, Height: 1080, DPIX: 96, DPIY: 96}

// Rect is a recorded rectangle.
type Rect struct {
	X, Y, Width, Height int
}

// Widget is a leaf component.
type Widget struct {
	Name string
	Min  view.Size
	Pref view.Size
	// Max defaults to unbounded when zero.
	Max view.Size

	KindOf   view.Kind
	Bias     view.Bias
	Padding  view.Padding
	Hidden   bool
	BaseLine int
	// HeightFor, if set, gives the preferred height for a width.
	HeightFor func(width int) int

	bounds  Rect
	parent  *Panel
	changes int
}

// NewWidget creates a visible widget with the given link id and preferred size.
func NewWidget(name string, prefWidth, prefHeight int) *Widget {
	return &Widget{
		Name:     name,
		Pref:     view.Size{Width: prefWidth, Height: prefHeight},
		KindOf:   view.KindUnknown,
		BaseLine: view.NoBaseline,
	}
}

var _ view.Component = (*Widget)(nil)

func (w *Widget) Identity() any { return w }

func (w *Widget) X() int      { return w.bounds.X }
func (w *Widget) Y() int      { return w.bounds.Y }
func (w *Widget) Width() int  { return w.bounds.Width }
func (w *Widget) Height() int { return w.bounds.Height }

func (w *Widget) ScreenX() int {
	if w.parent == nil {
		return w.bounds.X
	}
	return w.parent.ScreenX() + w.bounds.X
}

func (w *Widget) ScreenY() int {
	if w.parent == nil {
		return w.bounds.Y
	}
	return w.parent.ScreenY() + w.bounds.Y
}

func (w *Widget) MinimumWidth(int) int  { return w.Min.Width }
func (w *Widget) MinimumHeight(int) int { return w.Min.Height }
func (w *Widget) PreferredWidth(int) int {
	return w.Pref.Width
}

func (w *Widget) PreferredHeight(wHint int) int {
	if w.HeightFor != nil && wHint >= 0 {
		return w.HeightFor(wHint)
	}
	return w.Pref.Height
}

func (w *Widget) MaximumWidth(int) int  { return maxOr(w.Max.Width) }
func (w *Widget) MaximumHeight(int) int { return maxOr(w.Max.Height) }

func maxOr(v int) int {
	if v <= 0 {
		return link.NotSet
	}
	return v
}

// SetBounds records the rectangle and counts it when it differs from the
// current one.
func (w *Widget) SetBounds(x, y, width, height int) {
	r := Rect{X: x, Y: y, Width: width, Height: height}
	if r == w.bounds {
		return
	}
	w.bounds = r
	w.changes++
}

// Bounds returns the last rectangle set.
func (w *Widget) Bounds() Rect { return w.bounds }

// Changes counts the SetBounds calls that moved or resized the widget.
func (w *Widget) Changes() int { return w.changes }

func (w *Widget) Visible() bool { return !w.Hidden }

func (w *Widget) Baseline(int, int) int {
	return view.AdjustBaseline(w.BaseLine, w.Padding)
}

func (w *Widget) HasBaseline() bool { return w.BaseLine != view.NoBaseline }

func (w *Widget) Parent() view.Container {
	if w.parent == nil {
		return nil
	}
	return w.parent
}

func (w *Widget) PixelUnitFactor(horizontal bool) float64 {
	s := w.screen()
	if horizontal {
		return float64(s.DPIX) / 96
	}
	return float64(s.DPIY) / 96
}

func (w *Widget) HorizontalScreenDPI() int { return w.screen().DPIX }
func (w *Widget) VerticalScreenDPI() int   { return w.screen().DPIY }
func (w *Widget) ScreenWidth() int         { return w.screen().Width }
func (w *Widget) ScreenHeight() int        { return w.screen().Height }

func (w *Widget) LinkID() string { return w.Name }

func (w *Widget) LayoutHash() int { return view.HashOf(w) }

func (w *Widget) VisualPadding() view.Padding { return w.Padding }
func (w *Widget) Kind() view.Kind             { return w.KindOf }
func (w *Widget) ContentBias() view.Bias      { return w.Bias }

func (w *Widget) setParent(p *Panel) { w.parent = p }

func (w *Widget) screen() Screen {
	for p := w.parent; p != nil; p = p.parent {
		if p.Screen != nil {
			return *p.Screen
		}
	}
	return DefaultScreen
}
