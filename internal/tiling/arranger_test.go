package tiling

import (
	"strings"
	"testing"

	"github.com/1broseidon/gridlink/internal/config"
	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/view"
	"github.com/1broseidon/gridlink/internal/view/memview"
	"github.com/google/go-cmp/cmp"
)

func newTestArranger(t *testing.T) (*Arranger, *link.Registry) {
	t.Helper()
	reg := link.NewRegistry()
	return NewArranger(reg, nil, nil), reg
}

func newPanel(w, h int, names ...string) (*memview.Panel, []*memview.Widget) {
	p := memview.NewPanel("root", w, h)
	widgets := make([]*memview.Widget, len(names))
	for i, name := range names {
		widgets[i] = memview.NewWidget(name, 0, 0)
		p.Add(widgets[i])
	}
	return p, widgets
}

func bounds(w *memview.Widget) Rect {
	b := w.Bounds()
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

func TestArrange_AutoGrid(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(1000, 500, "a", "b", "c", "d")
	layout := config.BuiltinLayouts()["grid"]

	res, err := a.Arrange(p, &layout, Options{Gap: 10})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Rows != 2 || res.Cols != 2 {
		t.Fatalf("expected 2x2 grid, got %dx%d", res.Rows, res.Cols)
	}

	want := []Rect{
		{X: 10, Y: 10, Width: 485, Height: 235},
		{X: 505, Y: 10, Width: 485, Height: 235},
		{X: 10, Y: 255, Width: 485, Height: 235},
		{X: 505, Y: 255, Width: 485, Height: 235},
	}
	for i, w := range ws {
		if got := bounds(w); got != want[i] {
			t.Fatalf("widget %s = %+v, want %+v", w.Name, got, want[i])
		}
		if res.Placements[i].Bounds != want[i] {
			t.Fatalf("placement %d = %+v, want %+v", i, res.Placements[i].Bounds, want[i])
		}
	}
	if res.Passes != 1 {
		t.Fatalf("expected a single pass without linked placements, got %d", res.Passes)
	}
}

func TestArrange_SidebarTracks(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(1000, 600, "editor", "term")
	layout := config.BuiltinLayouts()["sidebar"]

	if _, err := a.Arrange(p, &layout, Options{}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if got := bounds(ws[0]); got != (Rect{Width: 680, Height: 600}) {
		t.Fatalf("editor = %+v", got)
	}
	if got := bounds(ws[1]); got != (Rect{X: 680, Width: 320, Height: 600}) {
		t.Fatalf("term = %+v", got)
	}
}

func TestArrange_ComponentMinimumRaisesTrack(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(1000, 400, "wide", "narrow")
	ws[0].Min = view.Size{Width: 600}
	layout := config.Layout{Mode: config.LayoutModeHorizontal}

	if _, err := a.Arrange(p, &layout, Options{}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if w := ws[0].Width(); w != 800 {
		t.Fatalf("wide width = %d, want 800", w)
	}
	if w := ws[1].Width(); w != 200 {
		t.Fatalf("narrow width = %d, want 200", w)
	}
}

func TestArrange_HeightForWidth(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(500, 1000, "text", "plain")
	ws[0].Bias = view.BiasHorizontal
	ws[0].HeightFor = func(width int) int { return 50000 / width }
	layout := config.Layout{Mode: config.LayoutModeVertical, Rows: []config.Track{{}}}

	if _, err := a.Arrange(p, &layout, Options{}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if got := bounds(ws[0]); got != (Rect{Width: 500, Height: 100}) {
		t.Fatalf("text = %+v", got)
	}
}

func TestArrange_RightToLeft(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(800, 400, "first", "second")
	p.RTL = true
	layout := config.Layout{Mode: config.LayoutModeHorizontal}

	res, err := a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if x := ws[0].X(); x != 400 {
		t.Fatalf("first x = %d, want 400", x)
	}
	if x := ws[1].X(); x != 0 {
		t.Fatalf("second x = %d, want 0", x)
	}
	if res.Placements[0].Col != 0 {
		t.Fatalf("logical column should not be mirrored, got %d", res.Placements[0].Col)
	}
}

func TestArrange_MaximumSizeCentresInCell(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(800, 400, "small")
	ws[0].Max = view.Size{Width: 200}
	layout := config.Layout{Mode: config.LayoutModeHorizontal}

	if _, err := a.Arrange(p, &layout, Options{}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if got := bounds(ws[0]); got != (Rect{X: 300, Width: 200, Height: 400}) {
		t.Fatalf("small = %+v", got)
	}
}

func TestArrange_FixedGridOverflow(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(800, 400, "a", "b", "c")
	layout := config.Layout{Mode: config.LayoutModeFixed, FixedGrid: config.FixedGrid{Rows: 1, Cols: 2}}

	res, err := a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Overflow != 1 {
		t.Fatalf("expected overflow 1, got %d", res.Overflow)
	}
	if len(res.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(res.Placements))
	}
	if ws[2].Changes() != 0 {
		t.Fatalf("overflowing widget should not move")
	}
}

func TestArrange_HiddenWidgetsAreSkipped(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(800, 400, "a", "hidden", "b")
	ws[1].Hidden = true
	layout := config.Layout{Mode: config.LayoutModeHorizontal}

	res, err := a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Cols != 2 {
		t.Fatalf("expected 2 columns, got %d", res.Cols)
	}
	if ws[2].X() != 400 {
		t.Fatalf("b x = %d, want 400", ws[2].X())
	}
}

func TestArrange_InsufficientSpace(t *testing.T) {
	a, _ := newTestArranger(t)
	p, _ := newPanel(20, 10, "a", "b")
	layout := config.Layout{Mode: config.LayoutModeHorizontal}

	_, err := a.Arrange(p, &layout, Options{Gap: 20})
	if err == nil || !strings.Contains(err.Error(), "insufficient space") {
		t.Fatalf("expected insufficient space error, got %v", err)
	}
}

func TestArrange_LinkedPlacement(t *testing.T) {
	a, reg := newTestArranger(t)
	p, ws := newPanel(1000, 600, "editor", "term")
	layout := config.BuiltinLayouts()["sidebar"]
	layout.Placements = map[string]config.Placement{
		"term": {Y: "editor.y+50", Height: "editor.h-100"},
	}

	res, err := a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if got := bounds(ws[1]); got != (Rect{X: 680, Y: 50, Width: 320, Height: 500}) {
		t.Fatalf("term = %+v", got)
	}
	if res.Passes != 2 {
		t.Fatalf("expected 2 passes, got %d", res.Passes)
	}

	if v, ok := reg.Value(p.Layout(), "term", link.Y2); !ok || v != 550 {
		t.Fatalf("term.y2 = %d, %v; want 550", v, ok)
	}
	want := []link.Entry{
		{Key: "container", Bounds: link.NewBounds(0, 0, 1000, 600)},
		{Key: "editor", Bounds: link.NewBounds(0, 0, 680, 600)},
		{Key: "term", Bounds: link.NewBounds(680, 50, 320, 500)},
		{Key: "visual", Bounds: link.NewBounds(0, 0, 1000, 600)},
	}
	if diff := cmp.Diff(want, reg.Snapshot(p.Layout())); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestArrange_ForwardReferenceNeedsExtraPass(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(800, 400, "left", "right")
	layout := config.Layout{
		Mode: config.LayoutModeHorizontal,
		Placements: map[string]config.Placement{
			"left": {Height: "right.h-100"},
		},
	}

	res, err := a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if got := bounds(ws[0]); got != (Rect{Width: 400, Height: 300}) {
		t.Fatalf("left = %+v", got)
	}
	if res.Passes != 3 {
		t.Fatalf("expected 3 passes, got %d", res.Passes)
	}
}

func TestArrange_GroupCoversMembers(t *testing.T) {
	a, reg := newTestArranger(t)
	p, _ := newPanel(800, 400, "g.a", "g.b")
	layout := config.Layout{Mode: config.LayoutModeHorizontal}

	if _, err := a.Arrange(p, &layout, Options{}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	for _, tc := range []struct {
		key   string
		field link.Field
		want  int
	}{
		{"a", link.X, 0},
		{"b", link.X, 400},
		{"g", link.X, 0},
		{"g", link.Width, 800},
		{"g", link.X2, 800},
	} {
		if v, ok := reg.Value(p.Layout(), tc.key, tc.field); !ok || v != tc.want {
			t.Fatalf("%s.%s = %d, %v; want %d", tc.key, tc.field, v, ok, tc.want)
		}
	}
}

func TestArrange_AlignWithinVisualArea(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(800, 400, "dialog")
	layout := config.Layout{
		Mode: config.LayoutModeHorizontal,
		Placements: map[string]config.Placement{
			"dialog": {X: "0.5al", Width: "200"},
		},
	}

	if _, err := a.Arrange(p, &layout, Options{Gap: 10}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if got := bounds(ws[0]); got != (Rect{X: 300, Y: 10, Width: 200, Height: 380}) {
		t.Fatalf("dialog = %+v", got)
	}
}

func TestArrange_UnsupportedUnit(t *testing.T) {
	a, _ := newTestArranger(t)
	p, _ := newPanel(800, 400, "a")
	layout := config.Layout{
		Mode:       config.LayoutModeHorizontal,
		Placements: map[string]config.Placement{"a": {Width: "3bogus"}},
	}

	_, err := a.Arrange(p, &layout, Options{})
	if err == nil || !strings.Contains(err.Error(), "unsupported unit") {
		t.Fatalf("expected unsupported unit error, got %v", err)
	}
}

func TestArrange_SkipsUnchangedLayout(t *testing.T) {
	a, _ := newTestArranger(t)
	p, ws := newPanel(800, 400, "a", "b")
	layout := config.Layout{Mode: config.LayoutModeHorizontal}

	if _, err := a.Arrange(p, &layout, Options{}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	res, err := a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if !res.Skipped {
		t.Fatalf("expected second arrange to be skipped")
	}

	res, err = a.Arrange(p, &layout, Options{Force: true})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Skipped {
		t.Fatalf("forced arrange should not be skipped")
	}

	ws[0].Min = view.Size{Width: 600}
	res, err = a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Skipped {
		t.Fatalf("arrange after a size hint change should not be skipped")
	}
	if ws[0].Width() != 700 {
		t.Fatalf("a width = %d, want 700", ws[0].Width())
	}

	a.Forget(p)
	res, err = a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Skipped {
		t.Fatalf("arrange after Forget should not be skipped")
	}
}

func TestArrange_DryRunPublishesWithoutMoving(t *testing.T) {
	a, reg := newTestArranger(t)
	p, ws := newPanel(800, 400, "a", "b")
	layout := config.Layout{Mode: config.LayoutModeHorizontal}

	res, err := a.Arrange(p, &layout, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	for _, w := range ws {
		if w.Changes() != 0 {
			t.Fatalf("dry run moved %s", w.Name)
		}
	}
	if res.Placements[1].Bounds != (Rect{X: 400, Width: 400, Height: 400}) {
		t.Fatalf("b placement = %+v", res.Placements[1].Bounds)
	}
	if v, ok := reg.Value(p.Layout(), "b", link.X); !ok || v != 400 {
		t.Fatalf("b.x = %d, %v; want 400", v, ok)
	}

	res, err = a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Skipped {
		t.Fatalf("a dry run must not fill the skip cache")
	}
}

func TestArrange_DebugPaintsCells(t *testing.T) {
	a, _ := newTestArranger(t)
	p, _ := newPanel(1000, 500, "a", "b", "c", "d")
	layout := config.BuiltinLayouts()["grid"]

	if _, err := a.Arrange(p, &layout, Options{Gap: 10, Debug: true}); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	want := []memview.Rect{
		{X: 10, Y: 10, Width: 485, Height: 235},
		{X: 505, Y: 10, Width: 485, Height: 235},
		{X: 10, Y: 255, Width: 485, Height: 235},
		{X: 505, Y: 255, Width: 485, Height: 235},
	}
	if diff := cmp.Diff(want, p.DebugCells()); diff != "" {
		t.Fatalf("debug cells mismatch (-want +got):\n%s", diff)
	}
}

func TestArrange_Empty(t *testing.T) {
	a, _ := newTestArranger(t)
	p := memview.NewPanel("root", 800, 400)
	layout := config.BuiltinLayouts()["grid"]

	res, err := a.Arrange(p, &layout, Options{})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if len(res.Placements) != 0 || res.Passes != 0 {
		t.Fatalf("unexpected result for empty container: %+v", res)
	}
}
