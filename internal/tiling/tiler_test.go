package tiling

import (
	"errors"
	"testing"

	"github.com/1broseidon/gridlink/internal/config"
	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/platform"
)

var (
	editorStart = platform.Rect{X: 40, Y: 40, Width: 300, Height: 200}
	termStart   = platform.Rect{X: 400, Y: 100, Width: 300, Height: 200}
)

func newTestTiler(t *testing.T, mutate func(*config.Config)) (*Tiler, *platform.MemoryBackend) {
	t.Helper()
	b := platform.NewMemoryBackend(platform.Display{
		ID:     1,
		Name:   "eDP-1",
		Bounds: platform.Rect{Width: 1000, Height: 600},
		Usable: platform.Rect{Width: 1000, Height: 600},
	})
	b.AddWindows(1,
		platform.Window{ID: 1, AppID: "Code", Bounds: editorStart},
		platform.Window{ID: 2, AppID: "kitty", Bounds: termStart},
	)

	cfg := config.DefaultConfig()
	cfg.GapSize = 0
	cfg.DefaultLayout = "columns"
	cfg.LinkIDs = map[string]string{"code": "editor"}
	if mutate != nil {
		mutate(cfg)
	}
	return NewTiler(b, cfg, link.NewRegistry(), nil), b
}

func windowBounds(t *testing.T, b *platform.MemoryBackend, id platform.WindowID) platform.Rect {
	t.Helper()
	r, ok := b.WindowBounds(id)
	if !ok {
		t.Fatalf("window %d not found", id)
	}
	return r
}

func TestTiler_TileActiveDisplay(t *testing.T) {
	tiler, b := newTestTiler(t, nil)

	res, err := tiler.TileActiveDisplay(TileOptions{})
	if err != nil {
		t.Fatalf("TileActiveDisplay: %v", err)
	}
	if res.LayoutName != "columns" || res.Display.ID != 1 {
		t.Fatalf("unexpected result header: layout=%q display=%d", res.LayoutName, res.Display.ID)
	}
	if got := windowBounds(t, b, 1); got != (platform.Rect{Width: 500, Height: 600}) {
		t.Fatalf("editor = %+v", got)
	}
	if got := windowBounds(t, b, 2); got != (platform.Rect{X: 500, Width: 500, Height: 600}) {
		t.Fatalf("kitty = %+v", got)
	}
	if res.Placements[0].LinkID != "editor" || res.Placements[0].Kind != "text_area" {
		t.Fatalf("unexpected first placement %+v", res.Placements[0])
	}

	if v, ok := tiler.Value(1, "kitty", link.X); !ok || v != 500 {
		t.Fatalf("kitty.x = %d, %v; want 500", v, ok)
	}
	keys := map[string]bool{}
	for _, e := range tiler.Links(1) {
		keys[e.Key] = true
	}
	for _, k := range []string{"container", "visual", "editor", "kitty"} {
		if !keys[k] {
			t.Fatalf("expected link %q, got %v", k, keys)
		}
	}

	ws := tiler.GetWorkspace(1)
	if ws == nil || ws.PreviousGeometries[1] != editorStart || ws.LastTiledAt.IsZero() {
		t.Fatalf("workspace did not record the previous geometry: %+v", ws)
	}
}

func TestTiler_RepeatedTileDoesNotMoveAgain(t *testing.T) {
	tiler, b := newTestTiler(t, nil)

	if _, err := tiler.TileActiveDisplay(TileOptions{}); err != nil {
		t.Fatalf("TileActiveDisplay: %v", err)
	}
	moves := b.Moves()
	if _, err := tiler.TileActiveDisplay(TileOptions{}); err != nil {
		t.Fatalf("TileActiveDisplay: %v", err)
	}
	if b.Moves() != moves {
		t.Fatalf("second tile moved windows: %d -> %d", moves, b.Moves())
	}
}

func TestTiler_DryRun(t *testing.T) {
	tiler, b := newTestTiler(t, nil)

	res, err := tiler.TileActiveDisplay(TileOptions{DryRun: true, Layout: "rows"})
	if err != nil {
		t.Fatalf("TileActiveDisplay: %v", err)
	}
	if b.Moves() != 0 {
		t.Fatalf("dry run moved %d windows", b.Moves())
	}
	if res.Placements[1].Bounds != (Rect{Y: 300, Width: 1000, Height: 300}) {
		t.Fatalf("kitty placement = %+v", res.Placements[1].Bounds)
	}
	if v, ok := tiler.Value(1, "kitty", link.Y); !ok || v != 300 {
		t.Fatalf("kitty.y = %d, %v; want 300", v, ok)
	}
	if ws := tiler.GetWorkspace(1); len(ws.PreviousGeometries) != 0 {
		t.Fatalf("dry run should not record undo state")
	}
}

func TestTiler_Undo(t *testing.T) {
	tiler, b := newTestTiler(t, nil)

	if _, err := tiler.TileActiveDisplay(TileOptions{}); err != nil {
		t.Fatalf("TileActiveDisplay: %v", err)
	}
	if err := tiler.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := windowBounds(t, b, 1); got != editorStart {
		t.Fatalf("editor = %+v, want %+v", got, editorStart)
	}
	if got := windowBounds(t, b, 2); got != termStart {
		t.Fatalf("kitty = %+v, want %+v", got, termStart)
	}
	if err := tiler.Undo(); err != nil {
		t.Fatalf("second Undo: %v", err)
	}
}

func TestTiler_ScreenPadding(t *testing.T) {
	tiler, b := newTestTiler(t, func(cfg *config.Config) {
		cfg.ScreenPadding = config.Margins{Top: 20, Left: 10, Right: 10}
	})

	if _, err := tiler.TileActiveDisplay(TileOptions{}); err != nil {
		t.Fatalf("TileActiveDisplay: %v", err)
	}
	if got := windowBounds(t, b, 1); got != (platform.Rect{X: 10, Y: 20, Width: 490, Height: 580}) {
		t.Fatalf("editor = %+v", got)
	}
	if v, ok := tiler.Value(1, "editor", link.X); !ok || v != 0 {
		t.Fatalf("links should be relative to the padded area, editor.x = %d, %v", v, ok)
	}
}

func TestTiler_ScreenPaddingTooLarge(t *testing.T) {
	tiler, _ := newTestTiler(t, func(cfg *config.Config) {
		cfg.ScreenPadding = config.Margins{Left: 600, Right: 600}
	})
	if _, err := tiler.TileActiveDisplay(TileOptions{}); err == nil {
		t.Fatalf("expected error when padding consumes the display")
	}
}

func TestTiler_LinkedPlacementFromConfig(t *testing.T) {
	tiler, b := newTestTiler(t, func(cfg *config.Config) {
		layout := cfg.Layouts["sidebar"]
		layout.Placements = map[string]config.Placement{
			"kitty": {Y: "editor.y+100", Height: "editor.h-200"},
		}
		cfg.Layouts["dev"] = layout
	})

	res, err := tiler.TileActiveDisplay(TileOptions{Layout: "dev"})
	if err != nil {
		t.Fatalf("TileActiveDisplay: %v", err)
	}
	if got := windowBounds(t, b, 2); got != (platform.Rect{X: 680, Y: 100, Width: 320, Height: 400}) {
		t.Fatalf("kitty = %+v", got)
	}
	if res.Passes < 2 {
		t.Fatalf("expected at least 2 passes, got %d", res.Passes)
	}
}

func TestTiler_MoveFailureIsReported(t *testing.T) {
	tiler, b := newTestTiler(t, nil)
	boom := errors.New("boom")
	b.FailMove[2] = boom

	res, err := tiler.TileActiveDisplay(TileOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected move error, got %v", err)
	}
	if res == nil || len(res.Placements) != 2 {
		t.Fatalf("expected a result next to the error, got %+v", res)
	}
	if got := windowBounds(t, b, 1); got != (platform.Rect{Width: 500, Height: 600}) {
		t.Fatalf("editor should still move, got %+v", got)
	}
}

func TestTiler_UnknownLayout(t *testing.T) {
	tiler, _ := newTestTiler(t, nil)
	if _, err := tiler.TileActiveDisplay(TileOptions{Layout: "nope"}); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
	if err := tiler.SetActiveLayout("nope"); err == nil {
		t.Fatalf("expected SetActiveLayout error for unknown layout")
	}
}

func TestTiler_CycleActiveLayout(t *testing.T) {
	tiler, _ := newTestTiler(t, nil)

	names := config.DefaultConfig().LayoutNames()
	start := tiler.GetActiveLayoutName()
	idx := -1
	for i, n := range names {
		if n == start {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("active layout %q not in %v", start, names)
	}

	next, err := tiler.CycleActiveLayout(1)
	if err != nil {
		t.Fatalf("CycleActiveLayout: %v", err)
	}
	if want := names[(idx+1)%len(names)]; next != want {
		t.Fatalf("next = %q, want %q", next, want)
	}
	prev, err := tiler.CycleActiveLayout(-1)
	if err != nil {
		t.Fatalf("CycleActiveLayout: %v", err)
	}
	if prev != start {
		t.Fatalf("prev = %q, want %q", prev, start)
	}
}

func TestTiler_UpdateConfigFallsBackToDefault(t *testing.T) {
	tiler, _ := newTestTiler(t, func(cfg *config.Config) {
		cfg.Layouts["dev"] = config.Layout{Mode: config.LayoutModeVertical, TileRegion: config.TileRegion{Type: config.RegionFull}}
	})
	if err := tiler.SetActiveLayout("dev"); err != nil {
		t.Fatalf("SetActiveLayout: %v", err)
	}

	cfg := config.DefaultConfig()
	tiler.UpdateConfig(cfg)
	if got := tiler.GetActiveLayoutName(); got != cfg.DefaultLayout {
		t.Fatalf("active layout = %q, want %q", got, cfg.DefaultLayout)
	}
}

func TestTiler_UndoStateCarriesAcrossTilers(t *testing.T) {
	first, b := newTestTiler(t, nil)
	if _, err := first.TileActiveDisplay(TileOptions{}); err != nil {
		t.Fatalf("TileActiveDisplay: %v", err)
	}
	state := first.UndoState()
	if len(state[1]) != 2 {
		t.Fatalf("expected 2 captured windows, got %+v", state)
	}

	second := NewTiler(b, config.DefaultConfig(), link.NewRegistry(), nil)
	if got := second.UndoState(); len(got) != 0 {
		t.Fatalf("fresh tiler should have no undo state, got %+v", got)
	}
	second.RestoreUndoState(state)
	if err := second.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := windowBounds(t, b, 2); got != termStart {
		t.Fatalf("kitty = %+v, want %+v", got, termStart)
	}
	if got := second.UndoState(); len(got) != 0 {
		t.Fatalf("undo state should be consumed, got %+v", got)
	}
}
