package tiling

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/1broseidon/gridlink/internal/config"
	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/logging"
	"github.com/1broseidon/gridlink/internal/platform"
	"github.com/1broseidon/gridlink/internal/unit"
	"github.com/1broseidon/gridlink/internal/view"
	"github.com/charmbracelet/log"
)

// Workspace tracks the tiling state for a display.
type Workspace struct {
	DisplayID          int
	Layout             *link.Layout
	LastTiledAt        time.Time
	PreviousGeometries map[platform.WindowID]platform.Rect
}

// TileOptions selects the layout and mode of one tiling run.
type TileOptions struct {
	// Layout names a configured layout; empty uses the active one.
	Layout string
	DryRun bool
	Force  bool
	Debug  bool
}

// TileResult is an arrangement of one display.
type TileResult struct {
	*Result
	Display    platform.Display `json:"display"`
	LayoutName string           `json:"layout"`
	// DebugCells is filled when debug painting was requested.
	DebugCells []platform.Rect `json:"debug_cells,omitempty"`
}

// Tiler arranges the windows of the active display and remembers enough to
// undo the last run. Every display keeps one link layout for its lifetime, so
// published links stay queryable between runs.
type Tiler struct {
	mu           sync.RWMutex
	backend      platform.Backend
	config       *config.Config
	registry     *link.Registry
	arranger     *Arranger
	kinds        *view.KindCache
	logger       *log.Logger
	activeLayout string
	workspaces   map[int]*Workspace
}

// NewTiler creates a tiler. A nil registry means link.Default.
func NewTiler(backend platform.Backend, cfg *config.Config, registry *link.Registry, logger *log.Logger) *Tiler {
	if registry == nil {
		registry = link.Default
	}
	if logger == nil {
		logger = logging.Discard()
	}
	t := &Tiler{
		backend:    backend,
		registry:   registry,
		kinds:      &view.KindCache{},
		logger:     logger,
		workspaces: make(map[int]*Workspace),
	}
	t.setConfigLocked(cfg)
	return t
}

// Registry returns the link store the tiler publishes to.
func (t *Tiler) Registry() *link.Registry { return t.registry }

// Units returns the unit pipeline built from the current config.
func (t *Tiler) Units() *unit.Pipeline {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.arranger.units
}

// TileActiveDisplay arranges every window on the active display. Windows
// that could not be moved are reported in the error next to a valid result.
func (t *Tiler) TileActiveDisplay(opts TileOptions) (*TileResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	name := opts.Layout
	if name == "" {
		name = t.activeLayoutLocked()
	}
	layout, err := t.config.GetLayout(name)
	if err != nil {
		return nil, err
	}

	dv, ws, err := t.displayViewLocked()
	if err != nil {
		return nil, err
	}
	t.logger.Info("tiling display",
		"display", dv.Display().Name, "layout", name, "mode", layout.Mode,
		"windows", dv.ComponentCount(), "dry_run", opts.DryRun)

	previous := make(map[platform.WindowID]platform.Rect, dv.ComponentCount())
	for _, w := range dv.Windows() {
		previous[w.Window().ID] = w.Window().Bounds
	}

	res, err := t.arranger.Arrange(dv, layout, Options{
		Gap:    t.config.GapSize,
		DryRun: opts.DryRun,
		Force:  opts.Force,
		Debug:  opts.Debug,
	})
	if err != nil {
		return nil, err
	}
	if res.Overflow > 0 {
		t.logger.Warn("layout capacity exceeded, leaving windows in place", "layout", name, "overflow", res.Overflow)
	}
	if moveErr := dv.Err(); moveErr != nil {
		t.logger.Error("some windows could not be moved", "err", moveErr)
	}

	if !opts.DryRun && !res.Skipped {
		ws.PreviousGeometries = previous
		ws.LastTiledAt = time.Now()
	}

	return &TileResult{
		Result:     res,
		Display:    dv.Display(),
		LayoutName: name,
		DebugCells: dv.DebugCells(),
	}, dv.Err()
}

// Undo restores the windows of the active display to the geometry captured
// before the last tiling run.
func (t *Tiler) Undo() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	display, err := t.backend.ActiveDisplay()
	if err != nil {
		return err
	}
	ws := t.workspaces[display.ID]
	if ws == nil || len(ws.PreviousGeometries) == 0 {
		return nil
	}

	var firstErr error
	for id, r := range ws.PreviousGeometries {
		if err := t.backend.MoveResize(id, r); err != nil {
			t.logger.Warn("failed to restore window", "window", id, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	ws.PreviousGeometries = nil
	t.arranger.Reset()
	return firstErr
}

// Displays lists the backend's displays and the id of the active one.
func (t *Tiler) Displays() ([]platform.Display, int, error) {
	displays, err := t.backend.Displays()
	if err != nil {
		return nil, 0, err
	}
	active, err := t.backend.ActiveDisplay()
	if err != nil {
		return displays, 0, err
	}
	return displays, active.ID, nil
}

// UndoState is the window geometry captured before the last tiling run,
// keyed by display id.
type UndoState map[int]map[platform.WindowID]platform.Rect

// UndoState returns a copy of the geometry Undo would restore.
func (t *Tiler) UndoState() UndoState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := UndoState{}
	for id, ws := range t.workspaces {
		if len(ws.PreviousGeometries) == 0 {
			continue
		}
		out[id] = maps.Clone(ws.PreviousGeometries)
	}
	return out
}

// RestoreUndoState replaces the geometry Undo would restore, typically with
// state saved by an earlier process.
func (t *Tiler) RestoreUndoState(state UndoState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, previous := range state {
		ws := t.workspaceLocked(id)
		ws.PreviousGeometries = maps.Clone(previous)
	}
}

// Links returns the links published for a display, sorted by key.
func (t *Tiler) Links(displayID int) []link.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ws := t.workspaces[displayID]
	if ws == nil {
		return nil
	}
	return t.registry.Snapshot(ws.Layout)
}

// Value reads one published link field on a display.
func (t *Tiler) Value(displayID int, key string, field link.Field) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ws := t.workspaces[displayID]
	if ws == nil {
		return 0, false
	}
	return t.registry.Value(ws.Layout, key, field)
}

// ActiveDisplayView returns a view over the active display wired to the
// tiler's link layout and config.
func (t *Tiler) ActiveDisplayView() (*platform.DisplayView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	dv, _, err := t.displayViewLocked()
	return dv, err
}

// GetWorkspace returns a copy of the workspace for a display.
func (t *Tiler) GetWorkspace(displayID int) *Workspace {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ws := t.workspaces[displayID]
	if ws == nil {
		return nil
	}
	out := *ws
	out.PreviousGeometries = maps.Clone(ws.PreviousGeometries)
	return &out
}

// GetActiveLayoutName returns the current active layout name.
func (t *Tiler) GetActiveLayoutName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeLayoutLocked()
}

// SetActiveLayout sets the layout used when TileOptions.Layout is empty.
func (t *Tiler) SetActiveLayout(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.config.GetLayout(name); err != nil {
		return err
	}
	t.activeLayout = name
	return nil
}

// CycleActiveLayout moves to the next/previous layout in sorted order.
func (t *Tiler) CycleActiveLayout(delta int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := t.config.LayoutNames()
	if len(names) == 0 {
		return "", fmt.Errorf("no layouts configured")
	}

	current := t.activeLayoutLocked()
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}

	n := len(names)
	next := ((idx+delta)%n + n) % n
	t.activeLayout = names[next]
	return t.activeLayout, nil
}

// UpdateConfig swaps the configuration. The unit pipeline is rebuilt and
// the active layout falls back to the default when it no longer exists.
func (t *Tiler) UpdateConfig(cfg *config.Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setConfigLocked(cfg)
}

func (t *Tiler) setConfigLocked(cfg *config.Config) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	t.config = cfg
	units := unit.NewDefault(t.registry, cfg.Units.Options())
	t.arranger = NewArranger(t.registry, units, t.logger)

	if t.activeLayout == "" {
		t.activeLayout = cfg.DefaultLayout
		return
	}
	if _, err := cfg.GetLayout(t.activeLayout); err != nil {
		t.activeLayout = cfg.DefaultLayout
	}
}

func (t *Tiler) activeLayoutLocked() string {
	if t.activeLayout != "" {
		return t.activeLayout
	}
	return t.config.DefaultLayout
}

// displayViewLocked builds a view of the active display with screen_padding
// removed from its work area.
func (t *Tiler) displayViewLocked() (*platform.DisplayView, *Workspace, error) {
	display, err := t.backend.ActiveDisplay()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get active display: %w", err)
	}

	p := t.config.ScreenPadding
	u := display.Usable
	u.X += p.Left
	u.Y += p.Top
	u.Width -= p.Left + p.Right
	u.Height -= p.Top + p.Bottom
	if u.Width < 1 || u.Height < 1 {
		return nil, nil, fmt.Errorf("screen_padding leaves no usable space: %dx%d at %d,%d", u.Width, u.Height, u.X, u.Y)
	}
	display.Usable = u

	windows, err := t.backend.ListWindowsOnDisplay(display.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list windows: %w", err)
	}

	ws := t.workspaceLocked(display.ID)
	dv := platform.NewDisplayView(t.backend, display, windows, platform.ViewOptions{
		Layout:     ws.Layout,
		Classifier: t.config,
		Kinds:      t.kinds,
	})
	return dv, ws, nil
}

func (t *Tiler) workspaceLocked(displayID int) *Workspace {
	ws := t.workspaces[displayID]
	if ws == nil {
		ws = &Workspace{DisplayID: displayID, Layout: link.NewLayout(fmt.Sprintf("display-%d", displayID))}
		t.registry.Register(ws.Layout)
		t.workspaces[displayID] = ws
	}
	return ws
}
