package platform

import (
	"fmt"
	"sync"
)

// MemoryBackend is a Backend over fixed displays and windows. Moves are
// applied to the stored windows and counted.
type MemoryBackend struct {
	mu       sync.Mutex
	displays []Display
	windows  map[int][]Window
	moves    int
	// FailMove, when set, makes MoveResize fail for that window.
	FailMove map[WindowID]error
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns a backend with the given displays. The first
// display is the active one.
func NewMemoryBackend(displays ...Display) *MemoryBackend {
	return &MemoryBackend{
		displays: displays,
		windows:  map[int][]Window{},
		FailMove: map[WindowID]error{},
	}
}

// AddWindows places windows on a display.
func (m *MemoryBackend) AddWindows(displayID int, windows ...Window) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[displayID] = append(m.windows[displayID], windows...)
}

// Moves counts successful MoveResize calls that changed a window.
func (m *MemoryBackend) Moves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moves
}

// WindowBounds returns a window's current bounds.
func (m *MemoryBackend) WindowBounds(id WindowID) (Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ws := range m.windows {
		for _, w := range ws {
			if w.ID == id {
				return w.Bounds, true
			}
		}
	}
	return Rect{}, false
}

func (m *MemoryBackend) Displays() ([]Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Display(nil), m.displays...), nil
}

func (m *MemoryBackend) ActiveDisplay() (Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.displays) == 0 {
		return Display{}, fmt.Errorf("no displays")
	}
	return m.displays[0], nil
}

func (m *MemoryBackend) ListWindowsOnDisplay(displayID int) ([]Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.displays {
		if d.ID == displayID {
			return append([]Window(nil), m.windows[displayID]...), nil
		}
	}
	return nil, fmt.Errorf("display with id %d not found", displayID)
}

func (m *MemoryBackend) MoveResize(id WindowID, bounds Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailMove[id]; err != nil {
		return err
	}
	for d, ws := range m.windows {
		for i := range ws {
			if ws[i].ID != id {
				continue
			}
			if ws[i].Bounds != bounds {
				m.windows[d][i].Bounds = bounds
				m.moves++
			}
			return nil
		}
	}
	return fmt.Errorf("window %d not found", id)
}
