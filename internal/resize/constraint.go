// Package resize describes how entities in a row or column give up or take
// space when the available length differs from what they asked for.
package resize

import (
	"fmt"
	"strconv"
)

// Weight100 is the default weight. Weights are relative, so two entities at
// 100 share space the same way two entities at 1 do.
const Weight100 = 100.0

// DefaultPriority is used for both grow and shrink priorities.
const DefaultPriority = 100

// Constraint holds the grow and shrink behaviour of one entity.
// A nil weight means the entity never resizes in that direction.
type Constraint struct {
	GrowPrio   int
	Grow       *float64
	ShrinkPrio int
	Shrink     *float64
}

// New returns the default constraint: no growth, shrink weight 100, both
// priorities 100.
func New() *Constraint {
	return &Constraint{
		GrowPrio:   DefaultPriority,
		ShrinkPrio: DefaultPriority,
		Shrink:     Weight(Weight100),
	}
}

// Weight returns a pointer to w, for filling Grow and Shrink.
func Weight(w float64) *float64 {
	return &w
}

// Priority returns the priority for the requested direction.
func (c *Constraint) Priority(grow bool) int {
	if grow {
		return c.GrowPrio
	}
	return c.ShrinkPrio
}

func (c *Constraint) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("grow %s/%d shrink %s/%d", formatWeight(c.Grow), c.GrowPrio, formatWeight(c.Shrink), c.ShrinkPrio)
}

func formatWeight(w *float64) string {
	if w == nil {
		return "-"
	}
	return strconv.FormatFloat(*w, 'g', -1, 64)
}
