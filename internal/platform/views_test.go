package platform

import (
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/view"
)

type classifier struct{}

func (classifier) KindFor(class string) view.Kind {
	if strings.EqualFold(class, "kitty") {
		return view.KindTextArea
	}
	return view.KindUnknown
}

func (classifier) LinkIDFor(class string) string {
	if class == "Code" {
		return "editor"
	}
	return strings.ToLower(class)
}

func testBackend() *MemoryBackend {
	b := NewMemoryBackend(Display{
		ID:     1,
		Name:   "DP-1",
		Bounds: Rect{X: 1920, Y: 0, Width: 2560, Height: 1440},
		Usable: Rect{X: 1920, Y: 32, Width: 2560, Height: 1408},
		DPIX:   144,
	})
	b.AddWindows(1,
		Window{ID: 10, AppID: "kitty", Bounds: Rect{X: 2000, Y: 100, Width: 800, Height: 600}, MinSize: Size{Width: 200, Height: 100}},
		Window{ID: 11, AppID: "Code", Bounds: Rect{X: 2100, Y: 132, Width: 1200, Height: 900}, MaxSize: Size{Width: 1600}},
		Window{ID: 12, AppID: "kitty", Bounds: Rect{X: 1920, Y: 32, Width: 400, Height: 300}},
	)
	return b
}

func TestActiveDisplayViewAssignsUniqueLinkIDs(t *testing.T) {
	dv, err := ActiveDisplayView(testBackend(), ViewOptions{Classifier: classifier{}})
	if err != nil {
		t.Fatalf("ActiveDisplayView: %v", err)
	}

	var ids []string
	for _, c := range dv.Components() {
		ids = append(ids, c.LinkID())
	}
	want := []string{"kitty", "editor", "kitty2"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("link ids = %v, want %v", ids, want)
	}
	if dv.Layout() == nil || dv.Layout().Name() != "display-1" {
		t.Fatalf("expected a display layout handle, got %v", dv.Layout())
	}
}

func TestDisplayViewGeometryIsWorkAreaRelative(t *testing.T) {
	dv, err := ActiveDisplayView(testBackend(), ViewOptions{Classifier: classifier{}})
	if err != nil {
		t.Fatalf("ActiveDisplayView: %v", err)
	}
	if dv.Width() != 2560 || dv.Height() != 1408 || dv.ScreenX() != 1920 || dv.ScreenY() != 32 {
		t.Fatalf("unexpected display geometry %dx%d at %d,%d", dv.Width(), dv.Height(), dv.ScreenX(), dv.ScreenY())
	}

	w := dv.Windows()[1]
	if w.X() != 180 || w.Y() != 100 {
		t.Fatalf("window position = %d,%d, want 180,100", w.X(), w.Y())
	}
	if w.Parent() != dv {
		t.Fatalf("window parent should be the display view")
	}
	if got := w.PixelUnitFactor(true); got != 1.5 {
		t.Fatalf("horizontal factor = %v, want 1.5", got)
	}
	if got := w.VerticalScreenDPI(); got != 96 {
		t.Fatalf("unknown vertical dpi should default to 96, got %d", got)
	}
	if w.ScreenWidth() != 2560 {
		t.Fatalf("screen width = %d", w.ScreenWidth())
	}
}

func TestWindowViewSizeHints(t *testing.T) {
	dv, _ := ActiveDisplayView(testBackend(), ViewOptions{Classifier: classifier{}})
	ws := dv.Windows()

	if ws[0].MinimumWidth(-1) != 200 || ws[0].MinimumHeight(-1) != 100 {
		t.Fatalf("unexpected minimum size")
	}
	if ws[1].MaximumWidth(-1) != 1600 {
		t.Fatalf("maximum width = %d", ws[1].MaximumWidth(-1))
	}
	if ws[1].MaximumHeight(-1) != link.NotSet {
		t.Fatalf("unset maximum height should be NotSet")
	}
	if ws[2].PreferredWidth(-1) != 400 {
		t.Fatalf("preferred width = %d", ws[2].PreferredWidth(-1))
	}
}

func TestWindowViewKindIsCached(t *testing.T) {
	cache := &view.KindCache{}
	dv, _ := ActiveDisplayView(testBackend(), ViewOptions{Classifier: classifier{}, Kinds: cache})
	ws := dv.Windows()

	if ws[0].Kind() != view.KindTextArea || ws[1].Kind() != view.KindUnknown {
		t.Fatalf("unexpected kinds %s %s", ws[0].Kind(), ws[1].Kind())
	}
	if cache.Len() != 2 {
		t.Fatalf("cache len = %d, want 2", cache.Len())
	}
}

func TestWindowViewSetBoundsMovesWindow(t *testing.T) {
	b := testBackend()
	dv, _ := ActiveDisplayView(b, ViewOptions{Classifier: classifier{}})
	w := dv.Windows()[0]

	w.SetBounds(0, 0, 1280, 1408)
	got, _ := b.WindowBounds(10)
	if got != (Rect{X: 1920, Y: 32, Width: 1280, Height: 1408}) {
		t.Fatalf("backend bounds = %+v", got)
	}
	if w.X() != 0 || w.Width() != 1280 {
		t.Fatalf("view did not track new bounds: %d %d", w.X(), w.Width())
	}
	if w.PreferredWidth(-1) != 800 {
		t.Fatalf("preferred width should keep the original size")
	}

	w.SetBounds(0, 0, 1280, 1408)
	if b.Moves() != 1 {
		t.Fatalf("repeating bounds should not move again, moves = %d", b.Moves())
	}
}

func TestDisplayViewErrCollectsFailedMoves(t *testing.T) {
	b := testBackend()
	b.FailMove[11] = errors.New("BadWindow")
	dv, _ := ActiveDisplayView(b, ViewOptions{Classifier: classifier{}})

	for _, w := range dv.Windows() {
		w.SetBounds(0, 0, 10, 10)
	}
	err := dv.Err()
	if err == nil || !strings.Contains(err.Error(), "BadWindow") || !strings.Contains(err.Error(), "Code") {
		t.Fatalf("expected joined move error, got %v", err)
	}
	if b.Moves() != 2 {
		t.Fatalf("moves = %d, want 2", b.Moves())
	}
}

func TestDisplayViewDebugCells(t *testing.T) {
	dv := NewDisplayView(testBackend(), Display{ID: 3}, nil, ViewOptions{})
	dv.PaintDebugCell(1, 2, 3, 4)
	if cells := dv.DebugCells(); len(cells) != 1 || cells[0] != (Rect{X: 1, Y: 2, Width: 3, Height: 4}) {
		t.Fatalf("unexpected cells %+v", cells)
	}
	if dv.ComponentCount() != 0 || !dv.LeftToRight() {
		t.Fatalf("unexpected empty display state")
	}
}
