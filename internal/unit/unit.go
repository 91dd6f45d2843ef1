// Package unit turns tagged values such as "10px", "2cm", "50%" or
// "editor.x2" into pixels.
package unit

import (
	"math"
	"sync"

	"github.com/1broseidon/gridlink/internal/view"
)

// Unable is returned by a Converter that does not handle a unit.
const Unable = -87654312

// Converter converts value in unit to pixels. horizontal selects the axis,
// ref is the reference length for relative units. parent and comp may be nil;
// converters then make a best guess instead of failing.
type Converter interface {
	Convert(value float64, unit string, horizontal bool, ref float64, parent view.Container, comp view.Component) int
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(value float64, unit string, horizontal bool, ref float64, parent view.Container, comp view.Component) int

func (f ConverterFunc) Convert(value float64, unit string, horizontal bool, ref float64, parent view.Container, comp view.Component) int {
	return f(value, unit, horizontal, ref, parent, comp)
}

// Pipeline tries converters in registration order. The first result other
// than Unable wins.
type Pipeline struct {
	mu         sync.RWMutex
	converters []Converter
}

// NewPipeline creates a pipeline holding cs in order.
func NewPipeline(cs ...Converter) *Pipeline {
	p := &Pipeline{}
	for _, c := range cs {
		p.Register(c)
	}
	return p
}

// Register appends c. Nil converters are ignored.
func (p *Pipeline) Register(c Converter) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.converters = append(p.converters, c)
}

// Len returns the number of registered converters.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.converters)
}

// Convert runs the chain and returns Unable if no converter handled unit.
func (p *Pipeline) Convert(value float64, unit string, horizontal bool, ref float64, parent view.Container, comp view.Component) int {
	p.mu.RLock()
	converters := p.converters
	p.mu.RUnlock()

	for _, c := range converters {
		if px := c.Convert(value, unit, horizontal, ref, parent, comp); px != Unable {
			return px
		}
	}
	return Unable
}

// round matches the half-up rounding used for all unit results.
func round(f float64) int {
	return int(math.Floor(f + 0.5))
}
