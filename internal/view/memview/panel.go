package memview

import (
	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/view"
)

type child interface {
	view.Component
	setParent(*Panel)
}

// Panel is a container of widgets and other panels.
type Panel struct {
	Widget

	// Screen overrides the display for this subtree.
	Screen *Screen
	RTL    bool

	children []child
	layout   *link.Layout
	cells    []Rect
}

// NewPanel creates a panel of the given size with its own layout handle.
func NewPanel(name string, width, height int) *Panel {
	p := &Panel{
		Widget: *NewWidget(name, width, height),
		layout: link.NewLayout(name),
	}
	p.KindOf = view.KindPanel
	p.bounds = Rect{Width: width, Height: height}
	return p
}

var _ view.Container = (*Panel)(nil)

func (p *Panel) Identity() any { return p }

func (p *Panel) PixelUnitFactor(horizontal bool) float64 {
	s := p.screen()
	if horizontal {
		return float64(s.DPIX) / 96
	}
	return float64(s.DPIY) / 96
}

func (p *Panel) HorizontalScreenDPI() int { return p.screen().DPIX }
func (p *Panel) VerticalScreenDPI() int   { return p.screen().DPIY }
func (p *Panel) ScreenWidth() int         { return p.screen().Width }
func (p *Panel) ScreenHeight() int        { return p.screen().Height }

func (p *Panel) LayoutHash() int { return view.HashOf(p) }

// Add appends children and reparents them.
func (p *Panel) Add(children ...view.Component) {
	for _, c := range children {
		ch, ok := c.(child)
		if !ok {
			continue
		}
		ch.setParent(p)
		p.children = append(p.children, ch)
	}
}

// Remove detaches c and reports whether it was a child.
func (p *Panel) Remove(c view.Component) bool {
	for i, ch := range p.children {
		if view.Equal(ch, c) {
			ch.setParent(nil)
			p.children = append(p.children[:i], p.children[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Panel) Components() []view.Component {
	out := make([]view.Component, len(p.children))
	for i, c := range p.children {
		out[i] = c
	}
	return out
}

func (p *Panel) ComponentCount() int { return len(p.children) }
func (p *Panel) LeftToRight() bool   { return !p.RTL }
func (p *Panel) Layout() *link.Layout {
	return p.layout
}

func (p *Panel) PaintDebugCell(x, y, width, height int) {
	p.cells = append(p.cells, Rect{X: x, Y: y, Width: width, Height: height})
}

// DebugCells returns the cells painted since the last ResetDebugCells.
func (p *Panel) DebugCells() []Rect {
	return append([]Rect(nil), p.cells...)
}

func (p *Panel) ResetDebugCells() { p.cells = nil }

func (p *Panel) screen() Screen {
	if p.Screen != nil {
		return *p.Screen
	}
	return p.Widget.screen()
}
