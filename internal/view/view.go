// Package view defines the read-through projections a layout engine uses to
// inspect and position toolkit widgets. Implementations hold no layout state
// of their own; every call reads the underlying widget.
package view

import "github.com/1broseidon/gridlink/internal/link"

// NoBaseline is returned by Component.Baseline when there is none.
const NoBaseline = -1

// Bias says which dimension of a component depends on the other.
type Bias int

const (
	BiasNone Bias = iota
	// BiasHorizontal: the height depends on the width (wrapping text).
	BiasHorizontal
	// BiasVertical: the width depends on the height.
	BiasVertical
)

func (b Bias) String() string {
	switch b {
	case BiasHorizontal:
		return "horizontal"
	case BiasVertical:
		return "vertical"
	default:
		return "none"
	}
}

// Padding is the space between a component's bounds and what it visually
// draws. Layouts subtract it so that aligned edges look aligned.
type Padding struct {
	Top    int `json:"top" yaml:"top"`
	Left   int `json:"left" yaml:"left"`
	Bottom int `json:"bottom" yaml:"bottom"`
	Right  int `json:"right" yaml:"right"`
}

// IsZero reports whether no padding is set.
func (p Padding) IsZero() bool {
	return p == Padding{}
}

// Component is the view of one widget.
//
// Size hints follow the usual convention: a hint of -1 means "no hint". The
// returned sizes are never negative.
type Component interface {
	// Identity returns the toolkit object behind the view. Two views are the
	// same component iff their identities are equal.
	Identity() any

	X() int
	Y() int
	Width() int
	Height() int
	ScreenX() int
	ScreenY() int

	MinimumWidth(hHint int) int
	MinimumHeight(wHint int) int
	PreferredWidth(hHint int) int
	PreferredHeight(wHint int) int
	MaximumWidth(hHint int) int
	MaximumHeight(wHint int) int

	// SetBounds positions the widget relative to its parent. Repeating the
	// same bounds has no observable effect.
	SetBounds(x, y, width, height int)

	Visible() bool

	// Baseline returns the baseline offset for the given size, already
	// adjusted for visual padding, or NoBaseline.
	Baseline(width, height int) int
	HasBaseline() bool

	// Parent returns the enclosing container, or nil for a root.
	Parent() Container

	// PixelUnitFactor is the number of device pixels per logical pixel.
	PixelUnitFactor(horizontal bool) float64
	HorizontalScreenDPI() int
	VerticalScreenDPI() int
	ScreenWidth() int
	ScreenHeight() int

	// LinkID returns the key the component publishes its bounds under, or
	// "" when it does not take part in linking.
	LinkID() string

	// LayoutHash changes whenever anything that affects layout changes.
	LayoutHash() int

	VisualPadding() Padding
	Kind() Kind
	ContentBias() Bias
}

// Container is a Component that holds children.
type Container interface {
	Component

	// Components enumerates the children on demand.
	Components() []Component
	ComponentCount() int
	LeftToRight() bool

	// Layout returns the handle this container's link tables live under.
	Layout() *link.Layout

	// PaintDebugCell outlines one grid cell. Implementations may ignore it.
	PaintDebugCell(x, y, width, height int)
}

// Equal reports whether a and b view the same widget.
func Equal(a, b Component) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Identity() == b.Identity()
}

// AdjustBaseline moves a raw baseline offset so it is measured from the
// visual top of the component.
func AdjustBaseline(baseline int, pad Padding) int {
	if baseline == NoBaseline {
		return NoBaseline
	}
	return baseline - pad.Top
}
