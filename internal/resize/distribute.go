package resize

import (
	"math"
	"sort"

	"github.com/1broseidon/gridlink/internal/link"
)

// NotSet marks an unbounded minimum or maximum.
const NotSet = link.NotSet

// SizeType indexes a Sizes triple.
type SizeType int

const (
	Min SizeType = iota
	Pref
	Max
)

// Sizes is the (min, pref, max) triple of one entity.
type Sizes [3]int

// NewSizes builds a triple. Use NotSet for an open bound.
func NewSizes(lo, pref, hi int) *Sizes {
	return &Sizes{lo, pref, hi}
}

// Distribute lays entities out serially in a length of bounds.
//
// Every entity starts at its start size clamped to its own min and max. If
// the total does not match bounds the difference is spread over the entities
// by weight, one priority tier at a time from the highest priority down. An
// entity that hits a bound is frozen there and the rest of the tier shares
// what it could not take. When growing and defaultPush is non-nil a second
// round hands any leftover to entities without a grow weight, using their
// push weight.
//
// constraints and defaultPush may be shorter than sizes; the last element is
// reused for the remaining entities. A nil entry in sizes gets length 0 and
// never resizes. The returned lengths are rounded cumulatively so that they
// sum to the rounded total.
func Distribute(sizes []*Sizes, constraints []*Constraint, defaultPush []*float64, start SizeType, bounds int) []int {
	lengths := make([]float64, len(sizes))
	used := 0.0
	for i, s := range sizes {
		if s == nil {
			continue
		}
		l := 0.0
		if v := s[start]; v != NotSet {
			l = float64(v)
		}
		if b := brokenBoundary(l, s[Min], s[Max]); b != NotSet {
			l = float64(b)
		}
		used += l
		lengths[i] = l
	}

	if roundHalfUp(used) == bounds || len(constraints) == 0 {
		return roundSizes(lengths)
	}

	grow := roundHalfUp(used) < bounds
	prios := priorities(len(sizes), constraints, grow)

	rounds := 1
	if grow && len(defaultPush) > 0 {
		rounds = 2
	}

	for force := 0; force < rounds; force++ {
		for p := len(prios) - 1; p >= 0; p-- {
			prio := prios[p]

			weights := make([]float64, len(sizes))
			total := 0.0
			for i, s := range sizes {
				if s == nil {
					continue
				}
				c := indexSafe(constraints, i)
				if c == nil || c.Priority(grow) != prio {
					continue
				}
				var w *float64
				switch {
				case !grow:
					w = c.Shrink
				case force == 0 || c.Grow != nil:
					w = c.Grow
				default:
					w = indexSafe(defaultPush, i)
				}
				if w != nil && *w > 0 {
					weights[i] = *w
					total += *w
				}
			}

			for hit := total > 0; hit; {
				hit = false
				toChange := float64(bounds) - used
				frozen := 0.0
				for i := 0; i < len(sizes) && total > 0.0001; i++ {
					w := weights[i]
					if w <= 0 {
						continue
					}
					delta := toChange * w / total
					next := lengths[i] + delta
					if s := sizes[i]; s != nil {
						if b := brokenBoundary(next, s[Min], s[Max]); b != NotSet {
							weights[i] = 0
							hit = true
							frozen += w
							next = float64(b)
							delta = next - lengths[i]
						}
					}
					lengths[i] = next
					used += delta
				}
				total -= frozen
			}
		}
	}

	return roundSizes(lengths)
}

func priorities(n int, constraints []*Constraint, grow bool) []int {
	seen := make(map[int]struct{})
	var out []int
	for i := 0; i < n; i++ {
		c := indexSafe(constraints, i)
		if c == nil {
			continue
		}
		p := c.Priority(grow)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func indexSafe[T any](s []*T, i int) *T {
	if len(s) == 0 {
		return nil
	}
	if i >= len(s) {
		i = len(s) - 1
	}
	return s[i]
}

// brokenBoundary returns the bound sz violates, or NotSet when sz is inside.
// An open minimum is treated as 0.
func brokenBoundary(sz float64, lower, upper int) int {
	if lower != NotSet {
		if sz < float64(lower) {
			return lower
		}
	} else if sz < 0 {
		return 0
	}
	if upper != NotSet && sz > float64(upper) {
		return upper
	}
	return NotSet
}

func roundSizes(sizes []float64) []int {
	out := make([]int, len(sizes))
	pos := 0.0
	for i, s := range sizes {
		start := roundHalfUp(pos)
		pos += s
		out[i] = roundHalfUp(pos) - start
	}
	return out
}

func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}
