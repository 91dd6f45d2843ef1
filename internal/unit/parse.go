package unit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/gridlink/internal/view"
)

// ErrEmpty is returned when parsing blank text.
var ErrEmpty = errors.New("empty unit value")

// Value is an amount tagged with a unit. An empty unit means pixels.
type Value struct {
	Amount float64
	Unit   string
}

func (v Value) String() string {
	amount := strconv.FormatFloat(v.Amount, 'g', -1, 64)
	if v.Unit == "" {
		return amount
	}
	if v.Amount == 1 && !startsNumeric(v.Unit) {
		if _, _, _, ok := ParseLinkRef(v.Unit); ok {
			return v.Unit
		}
	}
	return amount + v.Unit
}

// Pixels runs v through p. ok is false when no converter handled the unit.
func (v Value) Pixels(p *Pipeline, horizontal bool, ref float64, parent view.Container, comp view.Component) (int, bool) {
	px := p.Convert(v.Amount, v.Unit, horizontal, ref, parent, comp)
	return px, px != Unable
}

// Parse splits text such as "10px", "-2.5mm", "50%", "pref" or "editor.x2".
// Text without a numeric prefix has amount 1.
func Parse(s string) (Value, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Value{}, ErrEmpty
	}

	n := numericPrefix(text)
	unit := strings.TrimSpace(text[n:])
	if strings.ContainsAny(unit, " \t+") {
		return Value{}, fmt.Errorf("invalid unit value %q", s)
	}
	if n == 0 {
		if unit == "" || unit == "-" {
			return Value{}, fmt.Errorf("invalid unit value %q", s)
		}
		return Value{Amount: 1, Unit: unit}, nil
	}

	amount, err := strconv.ParseFloat(text[:n], 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid unit value %q: %w", s, err)
	}
	return Value{Amount: amount, Unit: unit}, nil
}

// MustParse is Parse for constants. It panics on malformed text.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// numericPrefix returns the length of the leading signed decimal number.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	return i
}

func startsNumeric(s string) bool {
	return numericPrefix(s) > 0
}

// Expr is a value plus a constant pixel offset, e.g. "editor.x2+8".
type Expr struct {
	Value  Value
	Offset int
}

func (e Expr) String() string {
	switch {
	case e.Offset > 0:
		return fmt.Sprintf("%s+%d", e.Value, e.Offset)
	case e.Offset < 0:
		return fmt.Sprintf("%s%d", e.Value, e.Offset)
	default:
		return e.Value.String()
	}
}

// IsLink reports whether the expression refers to another component's bounds.
func (e Expr) IsLink() bool {
	_, _, _, ok := ParseLinkRef(e.Value.Unit)
	return ok
}

// LinkID returns the id a link expression refers to, or "".
func (e Expr) LinkID() string {
	id, _, _, ok := ParseLinkRef(e.Value.Unit)
	if !ok {
		return ""
	}
	return id
}

// Pixels evaluates the expression. ok is false when the value's unit is not
// handled.
func (e Expr) Pixels(p *Pipeline, horizontal bool, ref float64, parent view.Container, comp view.Component) (int, bool) {
	px, ok := e.Value.Pixels(p, horizontal, ref, parent, comp)
	if !ok {
		return Unable, false
	}
	return px + e.Offset, true
}

// ParseExpr parses one value optionally followed by an integer offset, as in
// "editor.x2+8" or "50%-4".
func ParseExpr(s string) (Expr, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Expr{}, ErrEmpty
	}

	if i := strings.LastIndexAny(text, "+-"); i > 0 {
		tail := strings.TrimSpace(text[i+1:])
		if off, err := strconv.Atoi(tail); err == nil {
			v, err := Parse(text[:i])
			if err != nil {
				return Expr{}, err
			}
			if text[i] == '-' {
				off = -off
			}
			return Expr{Value: v, Offset: off}, nil
		}
	}

	v, err := Parse(text)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Value: v}, nil
}
