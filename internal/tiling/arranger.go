package tiling

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/1broseidon/gridlink/internal/config"
	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/logging"
	"github.com/1broseidon/gridlink/internal/resize"
	"github.com/1broseidon/gridlink/internal/unit"
	"github.com/1broseidon/gridlink/internal/view"
	"github.com/charmbracelet/log"
)

// Options controls one Arrange call.
type Options struct {
	// Gap is the space between cells and around the grid, in pixels.
	Gap int
	// DryRun computes and publishes bounds without moving components.
	DryRun bool
	// Force ignores the layout hash cache.
	Force bool
	// Debug paints every grid cell on the container.
	Debug bool
}

// Placed is where one component ended up.
type Placed struct {
	LinkID string `json:"link_id,omitempty"`
	Kind   string `json:"kind"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Bounds Rect   `json:"bounds"`
}

// Result summarizes an Arrange call.
type Result struct {
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	Placements []Placed `json:"placements"`
	// Overflow counts visible components beyond a fixed grid's capacity.
	// They are left where they are.
	Overflow int  `json:"overflow,omitempty"`
	Passes   int  `json:"passes"`
	Skipped  bool `json:"skipped,omitempty"`
}

// Arranger lays out a container's visible children on a grid and publishes
// every child's bounds to a link store, so that placement expressions such as
// "editor.x2+8" can refer to siblings.
//
// Each Arrange runs one or more passes. A pass computes every child's bounds
// and writes them as temporary links. Another pass follows while links keep
// changing and some placement depends on a link. The final bounds are then
// committed and applied to the children.
type Arranger struct {
	store  link.Store
	units  *unit.Pipeline
	logger *log.Logger

	mu     sync.Mutex
	hashes map[any]uint64
}

// NewArranger creates an arranger. A nil store means link.Default, nil units
// the default pipeline over store.
func NewArranger(store link.Store, units *unit.Pipeline, logger *log.Logger) *Arranger {
	if store == nil {
		store = link.Default
	}
	if units == nil {
		units = unit.NewDefault(store, unit.DefaultOptions())
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Arranger{
		store:  store,
		units:  units,
		logger: logger,
		hashes: make(map[any]uint64),
	}
}

// Forget drops the cached layout hash for a container so the next Arrange
// runs in full.
func (a *Arranger) Forget(parent view.Container) {
	if parent == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.hashes, parent.Identity())
}

// Reset drops every cached layout hash.
func (a *Arranger) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.hashes)
}

type placement struct {
	x, y, width, height *unit.Expr
}

func (p *placement) dependsOnLinks() bool {
	for _, e := range []*unit.Expr{p.x, p.y, p.width, p.height} {
		if e != nil && e.IsLink() {
			return true
		}
	}
	return false
}

type slot struct {
	comp     view.Component
	row, col int
	cell     Rect
	key      string
	group    string
	place    *placement
	bounds   Rect
}

// Arrange lays out parent's children using layout.
func (a *Arranger) Arrange(parent view.Container, layout *config.Layout, opts Options) (*Result, error) {
	if parent == nil {
		return nil, errors.New("container is nil")
	}
	if layout == nil {
		return nil, errors.New("layout is nil")
	}

	var comps []view.Component
	for _, c := range parent.Components() {
		if c != nil && c.Visible() {
			comps = append(comps, c)
		}
	}

	rows, cols, err := GridSize(layout, len(comps))
	if err != nil {
		return nil, err
	}
	res := &Result{Rows: rows, Cols: cols}
	if capacity := rows * cols; len(comps) > capacity {
		res.Overflow = len(comps) - capacity
		comps = comps[:capacity]
	}
	if len(comps) == 0 {
		return res, nil
	}

	hash := arrangeHash(parent, comps, layout, opts)
	if !opts.Force && !opts.DryRun && a.cached(parent, hash) {
		a.logger.Debug("layout unchanged, skipping", "container", parent.Layout())
		res.Skipped = true
		return res, nil
	}

	gap := max(opts.Gap, 0)
	whole := Rect{Width: parent.Width(), Height: parent.Height()}
	area := ApplyRegion(whole, layout.TileRegion)
	pad := parent.VisualPadding()
	inner := inset(area, pad.Top+gap, pad.Left+gap, pad.Bottom+gap, pad.Right+gap)

	availW := inner.Width - (cols-1)*gap
	availH := inner.Height - (rows-1)*gap
	if availW < cols || availH < rows {
		return nil, fmt.Errorf(
			"insufficient space for layout: area=%dx%d rows=%d cols=%d gap=%d",
			area.Width, area.Height, rows, cols, gap,
		)
	}

	l := parent.Layout()
	a.store.ClearTemporaryBounds(l)
	a.store.SetBounds(l, unit.ContainerKey, whole.X, whole.Y, whole.Width, whole.Height, true, false)
	a.store.SetBounds(l, unit.VisualKey, inner.X, inner.Y, inner.Width, inner.Height, true, false)

	slots := make([]*slot, len(comps))
	colMembers := make([][]view.Component, cols)
	rowMembers := make([][]view.Component, rows)
	for i, c := range comps {
		s := &slot{comp: c, row: i / cols, col: i % cols}
		s.key, s.group = splitLinkID(c.LinkID())
		s.place, err = parsePlacement(layout.Placements, c.LinkID(), s.key)
		if err != nil {
			return nil, err
		}
		slots[i] = s
		colMembers[s.col] = append(colMembers[s.col], c)
		rowMembers[s.row] = append(rowMembers[s.row], c)
	}

	widths, err := a.sizeTracks(parent, "columns", layout.Column, colMembers, nil, true, availW)
	if err != nil {
		return nil, err
	}
	rowHints := make([][]int, rows)
	for _, s := range slots {
		rowHints[s.row] = append(rowHints[s.row], widths[s.col])
	}
	heights, err := a.sizeTracks(parent, "rows", layout.Row, rowMembers, rowHints, false, availH)
	if err != nil {
		return nil, err
	}

	ltr := parent.LeftToRight()
	visualWidths := widths
	if !ltr {
		visualWidths = make([]int, cols)
		for c := range widths {
			visualWidths[cols-1-c] = widths[c]
		}
	}
	xs := offsets(visualWidths, inner.X, gap)
	ys := offsets(heights, inner.Y, gap)

	hasLinks := false
	for _, s := range slots {
		vc := s.col
		if !ltr {
			vc = cols - 1 - s.col
		}
		s.cell = Rect{X: xs[vc], Y: ys[s.row], Width: visualWidths[vc], Height: heights[s.row]}
		if s.place != nil && s.place.dependsOnLinks() {
			hasLinks = true
		}
		if s.group != "" {
			a.store.ClearBounds(l, s.group)
		}
	}

	limit := (len(slots) << 3) + 10
	for {
		res.Passes++
		changed := false
		for _, s := range slots {
			r, err := a.place(parent, s, inner)
			if err != nil {
				return nil, err
			}
			s.bounds = r
			if a.publish(l, s, true) {
				changed = true
			}
		}
		if !changed || !hasLinks {
			break
		}
		if res.Passes >= limit {
			a.logger.Warn("unstable cyclic dependency in linked placements", "container", l, "passes", res.Passes)
			break
		}
	}

	for _, s := range slots {
		a.publish(l, s, false)
	}
	a.store.SetBounds(l, unit.ContainerKey, whole.X, whole.Y, whole.Width, whole.Height, false, false)
	a.store.SetBounds(l, unit.VisualKey, inner.X, inner.Y, inner.Width, inner.Height, false, false)
	a.store.ClearTemporaryBounds(l)

	res.Placements = make([]Placed, 0, len(slots))
	for _, s := range slots {
		if !opts.DryRun {
			s.comp.SetBounds(s.bounds.X, s.bounds.Y, s.bounds.Width, s.bounds.Height)
		}
		res.Placements = append(res.Placements, Placed{
			LinkID: s.comp.LinkID(),
			Kind:   s.comp.Kind().String(),
			Row:    s.row,
			Col:    s.col,
			Bounds: s.bounds,
		})
	}

	if opts.Debug || layout.Debug {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				parent.PaintDebugCell(xs[c], ys[r], visualWidths[c], heights[r])
			}
		}
	}

	if !opts.DryRun {
		a.mu.Lock()
		a.hashes[parent.Identity()] = hash
		a.mu.Unlock()
	}

	a.logger.Debug("arranged container",
		"container", l, "rows", rows, "cols", cols,
		"components", len(slots), "passes", res.Passes, "dry_run", opts.DryRun)
	return res, nil
}

func (a *Arranger) cached(parent view.Container, hash uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev, ok := a.hashes[parent.Identity()]
	return ok && prev == hash
}

// sizeTracks resolves the min, pref and max of every track and distributes
// avail over them. hints, when set, holds the width hint for each member of
// a row.
func (a *Arranger) sizeTracks(
	parent view.Container,
	kind string,
	track func(int) config.Track,
	members [][]view.Component,
	hints [][]int,
	horizontal bool,
	avail int,
) ([]int, error) {
	ref := float64(avail)
	sizes := make([]*resize.Sizes, len(members))
	constraints := make([]*resize.Constraint, len(members))

	for i, ms := range members {
		t := track(i)

		lo, err := a.trackValue(t.Min, 0, horizontal, ref, parent, ms)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].min: %w", kind, i, err)
		}
		pref, err := a.trackValue(t.Pref, link.NotSet, horizontal, ref, parent, ms)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].pref: %w", kind, i, err)
		}
		hi, err := a.trackValue(t.Max, link.NotSet, horizontal, ref, parent, ms)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].max: %w", kind, i, err)
		}

		for j, m := range ms {
			hint := -1
			if hints != nil {
				hint = hints[i][j]
			}
			if horizontal {
				lo = max(lo, m.MinimumWidth(hint))
				continue
			}
			lo = max(lo, m.MinimumHeight(hint))
			if t.Pref == "" && m.ContentBias() == view.BiasHorizontal {
				pref = max(pref, m.PreferredHeight(hint))
			}
		}

		if pref == link.NotSet || pref < lo {
			pref = lo
		}
		if hi != link.NotSet {
			hi = max(hi, lo)
			pref = min(pref, hi)
		}
		sizes[i] = resize.NewSizes(lo, pref, hi)
		constraints[i] = t.Constraint()
	}

	return resize.Distribute(sizes, constraints, nil, resize.Pref, avail), nil
}

// trackValue evaluates a track size for every member and returns the
// largest. Component-relative units such as "pref" thus size the track to
// its largest member.
func (a *Arranger) trackValue(expr string, def int, horizontal bool, ref float64, parent view.Container, members []view.Component) (int, error) {
	if expr == "" {
		return def, nil
	}
	v, err := unit.Parse(expr)
	if err != nil {
		return 0, err
	}

	targets := members
	if len(targets) == 0 {
		targets = []view.Component{nil}
	}
	best := link.NotSet
	for _, m := range targets {
		px, ok := v.Pixels(a.units, horizontal, ref, parent, m)
		if !ok {
			return 0, fmt.Errorf("unsupported unit %q", v.Unit)
		}
		best = max(best, px)
	}
	return best, nil
}

// place fits the component into its cell and applies its placement
// expressions. Sizes are resolved before coordinates so that alignment can
// use the final size.
func (a *Arranger) place(parent view.Container, s *slot, inner Rect) (Rect, error) {
	r := fit(s.comp, s.cell)
	p := s.place
	if p == nil {
		return r, nil
	}

	eval := func(name string, e *unit.Expr, horizontal bool, ref int) (int, error) {
		px, ok := e.Pixels(a.units, horizontal, float64(ref), parent, s.comp)
		if !ok {
			return 0, fmt.Errorf("placements.%s.%s: unsupported unit %q", s.comp.LinkID(), name, e.Value.Unit)
		}
		return px, nil
	}

	var err error
	if p.width != nil {
		if r.Width, err = eval("width", p.width, true, inner.Width); err != nil {
			return Rect{}, err
		}
		r.Width = max(r.Width, 0)
	}
	if p.height != nil {
		if r.Height, err = eval("height", p.height, false, inner.Height); err != nil {
			return Rect{}, err
		}
		r.Height = max(r.Height, 0)
	}
	if p.x != nil {
		ref := inner.Width
		if p.x.Value.Unit == "al" {
			ref = r.Width
		}
		if r.X, err = eval("x", p.x, true, ref); err != nil {
			return Rect{}, err
		}
	}
	if p.y != nil {
		ref := inner.Height
		if p.y.Value.Unit == "al" {
			ref = r.Height
		}
		if r.Y, err = eval("y", p.y, false, ref); err != nil {
			return Rect{}, err
		}
	}
	return r, nil
}

// publish writes the slot's bounds under its key and grows its group to
// cover them.
func (a *Arranger) publish(l *link.Layout, s *slot, temporary bool) bool {
	if s.key == "" {
		return false
	}
	r := s.bounds
	changed := a.store.SetBounds(l, s.key, r.X, r.Y, r.Width, r.Height, temporary, false)
	if s.group != "" && a.store.SetBounds(l, s.group, r.X, r.Y, r.Width, r.Height, temporary, true) {
		changed = true
	}
	if changed {
		a.logger.Debug("published link", "container", l, "key", s.key, "group", s.group, "bounds", r, "temporary", temporary)
	}
	return changed
}

// fit shrinks the cell to the component's maximum size and centres it.
func fit(c view.Component, cell Rect) Rect {
	w, h := cell.Width, cell.Height
	if mw := c.MaximumWidth(h); mw != link.NotSet && mw > 0 && w > mw {
		w = mw
	}
	if mh := c.MaximumHeight(w); mh != link.NotSet && mh > 0 && h > mh {
		h = mh
	}
	return Rect{
		X:      cell.X + (cell.Width-w)/2,
		Y:      cell.Y + (cell.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// splitLinkID splits "group.key" ids. Ids without a group are returned as
// the key.
func splitLinkID(id string) (key, group string) {
	if dot := strings.IndexByte(id, '.'); dot > 0 && dot < len(id)-1 {
		return id[dot+1:], id[:dot]
	}
	return id, ""
}

func parsePlacement(placements map[string]config.Placement, id, key string) (*placement, error) {
	if id == "" {
		return nil, nil
	}
	p, ok := placements[id]
	if !ok {
		if p, ok = placements[key]; !ok {
			return nil, nil
		}
	}

	out := &placement{}
	for _, f := range []struct {
		name string
		expr string
		dst  **unit.Expr
	}{
		{"x", p.X, &out.x},
		{"y", p.Y, &out.y},
		{"width", p.Width, &out.width},
		{"height", p.Height, &out.height},
	} {
		if f.expr == "" {
			continue
		}
		e, err := unit.ParseExpr(f.expr)
		if err != nil {
			return nil, fmt.Errorf("placements.%s.%s: %w", id, f.name, err)
		}
		*f.dst = &e
	}
	return out, nil
}

// offsets returns the start of each track laid out from origin with gap
// between tracks.
func offsets(lengths []int, origin, gap int) []int {
	out := make([]int, len(lengths))
	pos := origin
	for i, l := range lengths {
		out[i] = pos
		pos += l + gap
	}
	return out
}

// arrangeHash folds everything that affects an arrangement into one value.
func arrangeHash(parent view.Container, comps []view.Component, layout *config.Layout, opts Options) uint64 {
	h := fnv.New64a()
	pad := parent.VisualPadding()
	fmt.Fprintf(h, "%d %d %d %v %v %+v|", parent.Width(), parent.Height(), opts.Gap, opts.Debug, parent.LeftToRight(), pad)
	if data, err := json.Marshal(layout); err == nil {
		h.Write(data)
	}
	for _, c := range comps {
		fmt.Fprintf(h, "|%d", c.LayoutHash())
	}
	return h.Sum64()
}
