package unit

import (
	"strings"

	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/view"
)

// Options tunes the built-in converters.
type Options struct {
	// DefaultDPI is assumed when no view can report one.
	DefaultDPI int
	// HorizontalScale and VerticalScale divide physical units; 2 makes an
	// inch half as many pixels.
	HorizontalScale float64
	VerticalScale   float64
	// ScreenWidth and ScreenHeight are assumed when no view can report them.
	ScreenWidth  int
	ScreenHeight int
	// Gaps maps named gaps to their size in logical pixels.
	Gaps map[string]float64
}

// DefaultGaps are the named gap sizes, in logical pixels.
func DefaultGaps() map[string]float64 {
	return map[string]float64{
		"related":   4,
		"unrelated": 7,
		"paragraph": 14,
		"indent":    9,
	}
}

var gapAliases = map[string]string{
	"r":     "related",
	"rel":   "related",
	"u":     "unrelated",
	"unrel": "unrelated",
	"para":  "paragraph",
	"i":     "indent",
	"ind":   "indent",
}

// DefaultOptions returns a 96 DPI, 1920x1080 setup with the default gaps.
func DefaultOptions() Options {
	return Options{
		DefaultDPI:      96,
		HorizontalScale: 1,
		VerticalScale:   1,
		ScreenWidth:     1920,
		ScreenHeight:    1080,
		Gaps:            DefaultGaps(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DefaultDPI <= 0 {
		o.DefaultDPI = d.DefaultDPI
	}
	if o.HorizontalScale <= 0 {
		o.HorizontalScale = d.HorizontalScale
	}
	if o.VerticalScale <= 0 {
		o.VerticalScale = d.VerticalScale
	}
	if o.ScreenWidth <= 0 {
		o.ScreenWidth = d.ScreenWidth
	}
	if o.ScreenHeight <= 0 {
		o.ScreenHeight = d.ScreenHeight
	}
	if o.Gaps == nil {
		o.Gaps = d.Gaps
	}
	return o
}

// NewDefault builds the standard pipeline. Link and alignment units are
// resolved through store.
func NewDefault(store link.Store, opts Options) *Pipeline {
	opts = opts.withDefaults()
	return NewPipeline(
		ConverterFunc(pixels),
		ConverterFunc(percent),
		physical{opts: opts},
		ConverterFunc(logical),
		screen{opts: opts},
		ConverterFunc(componentSize),
		align{store: store},
		gaps{opts: opts},
		links{store: store},
	)
}

func pixels(value float64, unit string, _ bool, _ float64, _ view.Container, _ view.Component) int {
	if unit != "" && unit != "px" {
		return Unable
	}
	return round(value)
}

func percent(value float64, unit string, _ bool, ref float64, _ view.Container, _ view.Component) int {
	if unit != "%" {
		return Unable
	}
	return round(value * ref * 0.01)
}

var perInch = map[string]float64{
	"in": 1,
	"cm": 2.54,
	"mm": 25.4,
	"pt": 72,
}

type physical struct {
	opts Options
}

func (c physical) Convert(value float64, unit string, horizontal bool, _ float64, parent view.Container, comp view.Component) int {
	scale, ok := perInch[unit]
	if !ok {
		return Unable
	}
	dpi := c.opts.DefaultDPI
	if v := screenDPI(parent, comp, horizontal); v > 0 {
		dpi = v
	}
	factor := c.opts.VerticalScale
	if horizontal {
		factor = c.opts.HorizontalScale
	}
	if factor <= 0 {
		factor = 1
	}
	return round(value * float64(dpi) / (scale * factor))
}

func screenDPI(parent view.Container, comp view.Component, horizontal bool) int {
	for _, v := range []view.Component{parent, comp} {
		if v == nil {
			continue
		}
		if horizontal {
			return v.HorizontalScreenDPI()
		}
		return v.VerticalScreenDPI()
	}
	return 0
}

func logical(value float64, unit string, horizontal bool, _ float64, parent view.Container, comp view.Component) int {
	switch unit {
	case "lp":
	case "lpx":
		horizontal = true
	case "lpy":
		horizontal = false
	default:
		return Unable
	}
	return round(value * pixelFactor(parent, comp, horizontal))
}

func pixelFactor(parent view.Container, comp view.Component, horizontal bool) float64 {
	for _, v := range []view.Component{comp, parent} {
		if v == nil {
			continue
		}
		if f := v.PixelUnitFactor(horizontal); f > 0 {
			return f
		}
	}
	return 1
}

type screen struct {
	opts Options
}

func (c screen) Convert(value float64, unit string, horizontal bool, _ float64, parent view.Container, comp view.Component) int {
	switch unit {
	case "sp":
	case "spx":
		horizontal = true
	case "spy":
		horizontal = false
	default:
		return Unable
	}
	size := c.opts.ScreenHeight
	if horizontal {
		size = c.opts.ScreenWidth
	}
	for _, v := range []view.Component{comp, parent} {
		if v == nil {
			continue
		}
		s := v.ScreenHeight()
		if horizontal {
			s = v.ScreenWidth()
		}
		if s > 0 {
			size = s
			break
		}
	}
	return round(value * float64(size) * 0.01)
}

func componentSize(_ float64, unit string, horizontal bool, _ float64, _ view.Container, comp view.Component) int {
	if unit != "min" && unit != "pref" && unit != "max" {
		return Unable
	}
	if comp == nil {
		return 0
	}
	// The hint is the current size on the other axis.
	switch {
	case unit == "min" && horizontal:
		return comp.MinimumWidth(comp.Height())
	case unit == "min":
		return comp.MinimumHeight(comp.Width())
	case unit == "pref" && horizontal:
		return comp.PreferredWidth(comp.Height())
	case unit == "pref":
		return comp.PreferredHeight(comp.Width())
	case horizontal:
		return comp.MaximumWidth(comp.Height())
	default:
		return comp.MaximumHeight(comp.Width())
	}
}

// VisualKey is the link the grid driver publishes its inset content area
// under. Alignment units are relative to it.
const VisualKey = "visual"

// ContainerKey is the link for the whole container area.
const ContainerKey = "container"

type align struct {
	store link.Store
}

// Convert places an entity of length ref at fraction value across the visual
// area: 0 is the leading edge, 0.5 centred, 1 the trailing edge.
func (c align) Convert(value float64, unit string, horizontal bool, ref float64, parent view.Container, _ view.Component) int {
	if unit != "al" {
		return Unable
	}
	if c.store == nil || parent == nil {
		return 0
	}
	start, size := link.Y, link.Height
	if horizontal {
		start, size = link.X, link.Width
	}
	st, ok := c.store.Value(parent.Layout(), VisualKey, start)
	if !ok {
		return 0
	}
	sz, ok := c.store.Value(parent.Layout(), VisualKey, size)
	if !ok {
		return 0
	}
	return round(value*(float64(max(0, sz))-ref)) + st
}

type gaps struct {
	opts Options
}

func (c gaps) Convert(value float64, unit string, horizontal bool, _ float64, parent view.Container, comp view.Component) int {
	name := strings.ToLower(unit)
	if alias, ok := gapAliases[name]; ok {
		name = alias
	}
	size, ok := c.opts.Gaps[name]
	if !ok {
		return Unable
	}
	return round(value * size * pixelFactor(parent, comp, horizontal))
}

type links struct {
	store link.Store
}

// Convert resolves "id.field" against the parent's link tables. xpos and
// ypos are the x and y fields translated to screen coordinates. A link that
// is not published yet resolves to 0.
func (c links) Convert(_ float64, unit string, _ bool, _ float64, parent view.Container, _ view.Component) int {
	id, field, onScreen, ok := ParseLinkRef(unit)
	if !ok {
		return Unable
	}
	if c.store == nil || parent == nil {
		return 0
	}
	v, ok := c.store.Value(parent.Layout(), id, field)
	if !ok {
		return 0
	}
	if onScreen {
		if field == link.X {
			return parent.ScreenX() + v
		}
		return parent.ScreenY() + v
	}
	return v
}

// ParseLinkRef splits a link reference such as "editor.x2" or
// "group.member.w". screen is set for the xpos and ypos fields.
func ParseLinkRef(ref string) (id string, field link.Field, screen bool, ok bool) {
	dot := strings.LastIndexByte(ref, '.')
	if dot <= 0 || dot == len(ref)-1 {
		return "", 0, false, false
	}
	id, suffix := ref[:dot], ref[dot+1:]
	switch suffix {
	case "xpos":
		return id, link.X, true, true
	case "ypos":
		return id, link.Y, true, true
	}
	field, ok = link.ParseField(suffix)
	if !ok {
		return "", 0, false, false
	}
	return id, field, false, true
}
