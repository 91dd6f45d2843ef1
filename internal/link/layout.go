package link

import "weak"

// Layout identifies one layout-engine instance. Registries only hold weak
// references to it, so dropping the last strong reference is enough to let
// its link tables be reclaimed.
type Layout struct {
	name string
}

// NewLayout creates a layout handle. The name is only used in diagnostics.
func NewLayout(name string) *Layout {
	return &Layout{name: name}
}

// Name returns the diagnostic name given at creation.
func (l *Layout) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

func (l *Layout) String() string {
	if l == nil {
		return "<nil layout>"
	}
	return l.name
}

// Ref is a weak reference to a Layout. Value returns nil once the layout has
// been reclaimed.
type Ref interface {
	Value() *Layout
}

// RefFunc creates the weak reference a registry keeps for a layout.
type RefFunc func(*Layout) Ref

type weakRef struct {
	p weak.Pointer[Layout]
}

func (r weakRef) Value() *Layout {
	return r.p.Value()
}

// WeakRef is the default RefFunc, backed by the runtime's weak pointers.
func WeakRef(l *Layout) Ref {
	return weakRef{p: weak.Make(l)}
}
