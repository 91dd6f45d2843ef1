package link

import (
	"fmt"
	"math"
)

// NotSet marks a coordinate that has not been supplied.
const NotSet = math.MinInt32 + 12346

// Field selects one coordinate of a Bounds record.
type Field int

const (
	X Field = iota
	Y
	Width
	Height
	X2
	Y2
)

var fieldNames = [...]string{"x", "y", "width", "height", "x2", "y2"}

func (f Field) String() string {
	if f < X || f > Y2 {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField accepts the field suffixes used in link references ("w" and
// "h" are short forms of width and height).
func ParseField(s string) (Field, bool) {
	switch s {
	case "x":
		return X, true
	case "y":
		return Y, true
	case "w", "width":
		return Width, true
	case "h", "height":
		return Height, true
	case "x2":
		return X2, true
	case "y2":
		return Y2, true
	}
	return 0, false
}

// Bounds is the last known rectangle published under a link key.
// X2 and Y2 always equal X+Width and Y+Height when both operands are set.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	X2     int `json:"x2"`
	Y2     int `json:"y2"`
}

// NewBounds builds a record and derives the far edges.
func NewBounds(x, y, width, height int) Bounds {
	return Bounds{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		X2:     add(x, width),
		Y2:     add(y, height),
	}
}

// Get returns one field of the record. Unknown fields yield NotSet.
func (b Bounds) Get(f Field) int {
	switch f {
	case X:
		return b.X
	case Y:
		return b.Y
	case Width:
		return b.Width
	case Height:
		return b.Height
	case X2:
		return b.X2
	case Y2:
		return b.Y2
	}
	return NotSet
}

func (b Bounds) sameRect(x, y, width, height int) bool {
	return b.X == x && b.Y == y && b.Width == width && b.Height == height
}

// union grows the record so it also covers the supplied rectangle. Only the
// directions that are actually set take part. It never shrinks.
func (b *Bounds) union(x, y, width, height int) bool {
	changed := false

	if x != NotSet {
		if b.X == NotSet || x < b.X {
			b.X = x
			b.Width = sub(b.X2, x)
			changed = true
		}
		if width != NotSet {
			x2 := x + width
			if b.X2 == NotSet || x2 > b.X2 {
				b.X2 = x2
				b.Width = x2 - b.X
				changed = true
			}
		}
	}

	if y != NotSet {
		if b.Y == NotSet || y < b.Y {
			b.Y = y
			b.Height = sub(b.Y2, y)
			changed = true
		}
		if height != NotSet {
			y2 := y + height
			if b.Y2 == NotSet || y2 > b.Y2 {
				b.Y2 = y2
				b.Height = y2 - b.Y
				changed = true
			}
		}
	}

	return changed
}

func add(a, b int) int {
	if a == NotSet || b == NotSet {
		return NotSet
	}
	return a + b
}

func sub(a, b int) int {
	if a == NotSet || b == NotSet {
		return NotSet
	}
	return a - b
}
