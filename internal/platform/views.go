package platform

import (
	"errors"
	"fmt"

	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/view"
)

// baseDPI is the density at which one logical pixel is one device pixel.
const baseDPI = 96

// Classifier maps a window class to a component kind and link id.
// *config.Config implements it.
type Classifier interface {
	KindFor(class string) view.Kind
	LinkIDFor(class string) string
}

// ViewOptions configures NewDisplayView.
type ViewOptions struct {
	// Layout is the link handle for the display. A fresh one is created
	// when nil, which drops any links published by earlier views.
	Layout     *link.Layout
	Classifier Classifier
	Kinds      *view.KindCache
}

type displayKey struct {
	id int
}

// DisplayView presents one display's work area as a view.Container whose
// children are the windows on it. Child coordinates are relative to the
// work area.
type DisplayView struct {
	backend Backend
	display Display
	layout  *link.Layout
	windows []*WindowView
	cells   []Rect
}

var _ view.Container = (*DisplayView)(nil)

// NewDisplayView wraps d and windows. Windows with the same link id get a
// numeric suffix in list order: kitty, kitty2, kitty3.
func NewDisplayView(b Backend, d Display, windows []Window, opts ViewOptions) *DisplayView {
	layout := opts.Layout
	if layout == nil {
		layout = link.NewLayout(fmt.Sprintf("display-%d", d.ID))
	}
	dv := &DisplayView{backend: b, display: d, layout: layout}

	kinds := opts.Kinds
	if kinds == nil {
		kinds = &view.KindCache{}
	}
	seen := map[string]int{}
	for _, w := range windows {
		id := w.AppID
		if opts.Classifier != nil {
			id = opts.Classifier.LinkIDFor(w.AppID)
		}
		if id != "" {
			seen[id]++
			if n := seen[id]; n > 1 {
				id = fmt.Sprintf("%s%d", id, n)
			}
		}
		dv.windows = append(dv.windows, &WindowView{
			parent:     dv,
			window:     w,
			linkID:     id,
			classifier: opts.Classifier,
			kinds:      kinds,
			pref:       Size{Width: w.Bounds.Width, Height: w.Bounds.Height},
		})
	}
	return dv
}

// ActiveDisplayView builds a view over the active display and its windows.
func ActiveDisplayView(b Backend, opts ViewOptions) (*DisplayView, error) {
	d, err := b.ActiveDisplay()
	if err != nil {
		return nil, fmt.Errorf("failed to get active display: %w", err)
	}
	windows, err := b.ListWindowsOnDisplay(d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}
	return NewDisplayView(b, d, windows, opts), nil
}

// Display returns the wrapped display.
func (d *DisplayView) Display() Display { return d.display }

// Windows returns the child views in list order.
func (d *DisplayView) Windows() []*WindowView {
	return append([]*WindowView(nil), d.windows...)
}

// Err joins the errors of every failed window move.
func (d *DisplayView) Err() error {
	var errs []error
	for _, w := range d.windows {
		if w.err != nil {
			errs = append(errs, w.err)
		}
	}
	return errors.Join(errs...)
}

func (d *DisplayView) Identity() any { return displayKey{id: d.display.ID} }

func (d *DisplayView) X() int       { return 0 }
func (d *DisplayView) Y() int       { return 0 }
func (d *DisplayView) Width() int   { return d.display.Usable.Width }
func (d *DisplayView) Height() int  { return d.display.Usable.Height }
func (d *DisplayView) ScreenX() int { return d.display.Usable.X }
func (d *DisplayView) ScreenY() int { return d.display.Usable.Y }

func (d *DisplayView) MinimumWidth(int) int    { return d.Width() }
func (d *DisplayView) MinimumHeight(int) int   { return d.Height() }
func (d *DisplayView) PreferredWidth(int) int  { return d.Width() }
func (d *DisplayView) PreferredHeight(int) int { return d.Height() }
func (d *DisplayView) MaximumWidth(int) int    { return d.Width() }
func (d *DisplayView) MaximumHeight(int) int   { return d.Height() }

// SetBounds is a no-op: displays are not positioned by layouts.
func (d *DisplayView) SetBounds(int, int, int, int) {}

func (d *DisplayView) Visible() bool          { return true }
func (d *DisplayView) Baseline(int, int) int  { return view.NoBaseline }
func (d *DisplayView) HasBaseline() bool      { return false }
func (d *DisplayView) Parent() view.Container { return nil }

func (d *DisplayView) PixelUnitFactor(horizontal bool) float64 {
	if horizontal {
		return float64(d.HorizontalScreenDPI()) / baseDPI
	}
	return float64(d.VerticalScreenDPI()) / baseDPI
}

func (d *DisplayView) HorizontalScreenDPI() int { return dpiOr(d.display.DPIX) }
func (d *DisplayView) VerticalScreenDPI() int   { return dpiOr(d.display.DPIY) }
func (d *DisplayView) ScreenWidth() int         { return d.display.Bounds.Width }
func (d *DisplayView) ScreenHeight() int        { return d.display.Bounds.Height }

func (d *DisplayView) LinkID() string              { return "" }
func (d *DisplayView) LayoutHash() int             { return view.HashOf(d) }
func (d *DisplayView) VisualPadding() view.Padding { return view.Padding{} }
func (d *DisplayView) Kind() view.Kind             { return view.KindPanel }
func (d *DisplayView) ContentBias() view.Bias      { return view.BiasNone }

func (d *DisplayView) Components() []view.Component {
	out := make([]view.Component, len(d.windows))
	for i, w := range d.windows {
		out[i] = w
	}
	return out
}

func (d *DisplayView) ComponentCount() int  { return len(d.windows) }
func (d *DisplayView) LeftToRight() bool    { return true }
func (d *DisplayView) Layout() *link.Layout { return d.layout }

// PaintDebugCell records the cell. X11 has no overlay to draw on, so callers
// print DebugCells instead.
func (d *DisplayView) PaintDebugCell(x, y, width, height int) {
	d.cells = append(d.cells, Rect{X: x, Y: y, Width: width, Height: height})
}

// DebugCells returns the cells recorded by PaintDebugCell.
func (d *DisplayView) DebugCells() []Rect {
	return append([]Rect(nil), d.cells...)
}

func dpiOr(v int) int {
	if v <= 0 {
		return baseDPI
	}
	return v
}

// WindowView presents one top-level window as a view.Component.
type WindowView struct {
	parent     *DisplayView
	window     Window
	linkID     string
	classifier Classifier
	kinds      *view.KindCache
	// pref is the size the window had when the view was built.
	pref Size
	err  error
}

var _ view.Component = (*WindowView)(nil)

// Window returns the wrapped window with its last applied bounds.
func (w *WindowView) Window() Window { return w.window }

func (w *WindowView) Identity() any { return w.window.ID }

func (w *WindowView) X() int       { return w.window.Bounds.X - w.parent.display.Usable.X }
func (w *WindowView) Y() int       { return w.window.Bounds.Y - w.parent.display.Usable.Y }
func (w *WindowView) Width() int   { return w.window.Bounds.Width }
func (w *WindowView) Height() int  { return w.window.Bounds.Height }
func (w *WindowView) ScreenX() int { return w.window.Bounds.X }
func (w *WindowView) ScreenY() int { return w.window.Bounds.Y }

func (w *WindowView) MinimumWidth(int) int    { return w.window.MinSize.Width }
func (w *WindowView) MinimumHeight(int) int   { return w.window.MinSize.Height }
func (w *WindowView) PreferredWidth(int) int  { return w.pref.Width }
func (w *WindowView) PreferredHeight(int) int { return w.pref.Height }

func (w *WindowView) MaximumWidth(int) int {
	if w.window.MaxSize.Width <= 0 {
		return link.NotSet
	}
	return w.window.MaxSize.Width
}

func (w *WindowView) MaximumHeight(int) int {
	if w.window.MaxSize.Height <= 0 {
		return link.NotSet
	}
	return w.window.MaxSize.Height
}

// SetBounds moves the window through the backend. Failures are kept and
// reported by DisplayView.Err.
func (w *WindowView) SetBounds(x, y, width, height int) {
	r := Rect{
		X:      w.parent.display.Usable.X + x,
		Y:      w.parent.display.Usable.Y + y,
		Width:  width,
		Height: height,
	}
	if r == w.window.Bounds {
		return
	}
	if err := w.parent.backend.MoveResize(w.window.ID, r); err != nil {
		w.err = fmt.Errorf("window %d (%s): %w", w.window.ID, w.window.AppID, err)
		return
	}
	w.err = nil
	w.window.Bounds = r
}

func (w *WindowView) Visible() bool          { return true }
func (w *WindowView) Baseline(int, int) int  { return view.NoBaseline }
func (w *WindowView) HasBaseline() bool      { return false }
func (w *WindowView) Parent() view.Container { return w.parent }

func (w *WindowView) PixelUnitFactor(horizontal bool) float64 {
	return w.parent.PixelUnitFactor(horizontal)
}

func (w *WindowView) HorizontalScreenDPI() int { return w.parent.HorizontalScreenDPI() }
func (w *WindowView) VerticalScreenDPI() int   { return w.parent.VerticalScreenDPI() }
func (w *WindowView) ScreenWidth() int         { return w.parent.ScreenWidth() }
func (w *WindowView) ScreenHeight() int        { return w.parent.ScreenHeight() }

func (w *WindowView) LinkID() string              { return w.linkID }
func (w *WindowView) LayoutHash() int             { return view.HashOf(w) }
func (w *WindowView) VisualPadding() view.Padding { return view.Padding{} }
func (w *WindowView) ContentBias() view.Bias      { return view.BiasNone }

// Kind classifies the window by class once and caches the result per window.
func (w *WindowView) Kind() view.Kind {
	return w.kinds.Lookup(w.window.ID, func() view.Kind {
		if w.classifier == nil {
			return view.KindUnknown
		}
		return w.classifier.KindFor(w.window.AppID)
	})
}
