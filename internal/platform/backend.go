package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size is a width and height. Zero means the window did not say.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Bounds Rect   `json:"bounds"`
	Usable Rect   `json:"usable"`
	// DPIX and DPIY are zero when the display does not report its size.
	DPIX int `json:"dpi_x,omitempty"`
	DPIY int `json:"dpi_y,omitempty"`
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID      WindowID `json:"id"`
	PID     int      `json:"pid,omitempty"`
	AppID   string   `json:"app_id"`
	Title   string   `json:"title"`
	Bounds  Rect     `json:"bounds"`
	MinSize Size     `json:"min_size"`
	MaxSize Size     `json:"max_size"`
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveDisplay() (Display, error)
	ListWindowsOnDisplay(displayID int) ([]Window, error)
	// MoveResize places the window so that its outer frame covers bounds.
	MoveResize(windowID WindowID, bounds Rect) error
}

func containsPoint(r Rect, x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}
