package x11

import (
	"slices"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Extents are the window manager decoration sizes around a client.
type Extents struct {
	Left, Right, Top, Bottom int
}

// Client describes a managed top-level window.
type Client struct {
	ID    xproto.Window
	PID   int
	Class string
	Title string
	// Bounds is the frame rectangle: the client area plus Frame.
	Bounds Rect
	Frame  Extents
	// Size hints from WM_NORMAL_HINTS, zero when unset.
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
}

var skippedTypes = []string{
	"_NET_WM_WINDOW_TYPE_DESKTOP",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_WINDOW_TYPE_SPLASH",
	"_NET_WM_WINDOW_TYPE_NOTIFICATION",
}

// Clients returns the normal, visible windows on the current desktop in
// client list order.
func (c *Connection) Clients() ([]Client, error) {
	ids, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, err
	}
	current, desktopErr := ewmh.CurrentDesktopGet(c.XUtil)

	out := make([]Client, 0, len(ids))
	for _, id := range ids {
		if !c.isNormal(id) || c.isHidden(id) {
			continue
		}
		if desktopErr == nil {
			d, err := ewmh.WmDesktopGet(c.XUtil, id)
			if err == nil && d != 0xFFFFFFFF && d != current {
				continue
			}
		}
		if cl, ok := c.Client(id); ok {
			out = append(out, cl)
		}
	}
	return out, nil
}

// Client reads one window's metadata. ok is false when its geometry cannot
// be read, usually because it was destroyed.
func (c *Connection) Client(id xproto.Window) (Client, bool) {
	r, ok := c.WindowRect(id)
	if !ok {
		return Client{}, false
	}

	cl := Client{ID: id, Class: c.class(id), Title: c.title(id)}
	if pid, err := ewmh.WmPidGet(c.XUtil, id); err == nil {
		cl.PID = int(pid)
	}
	if fe, err := ewmh.FrameExtentsGet(c.XUtil, id); err == nil {
		cl.Frame = Extents{Left: fe.Left, Right: fe.Right, Top: fe.Top, Bottom: fe.Bottom}
	}
	cl.Bounds = Rect{
		X:      r.X - cl.Frame.Left,
		Y:      r.Y - cl.Frame.Top,
		Width:  r.Width + cl.Frame.Left + cl.Frame.Right,
		Height: r.Height + cl.Frame.Top + cl.Frame.Bottom,
	}
	if nh, err := icccm.WmNormalHintsGet(c.XUtil, id); err == nil {
		if nh.Flags&icccm.SizeHintPMinSize != 0 {
			cl.MinWidth, cl.MinHeight = int(nh.MinWidth), int(nh.MinHeight)
		}
		if nh.Flags&icccm.SizeHintPMaxSize != 0 {
			cl.MaxWidth, cl.MaxHeight = int(nh.MaxWidth), int(nh.MaxHeight)
		}
	}
	return cl, true
}

// WindowRect returns the client area of a window in root coordinates.
func (c *Connection) WindowRect(id xproto.Window) (Rect, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(id)).Reply()
	if err != nil {
		return Rect{}, false
	}
	pos, err := xproto.TranslateCoordinates(c.XUtil.Conn(), id, c.Root, 0, 0).Reply()
	if err != nil {
		return Rect{}, false
	}
	return Rect{X: int(pos.DstX), Y: int(pos.DstY), Width: int(geom.Width), Height: int(geom.Height)}, true
}

// MoveResize places a window so that its frame covers r. Maximized state is
// dropped first.
func (c *Connection) MoveResize(id xproto.Window, frame Extents, r Rect) error {
	c.unmaximize(id)

	w := max(1, r.Width-frame.Left-frame.Right)
	h := max(1, r.Height-frame.Top-frame.Bottom)
	if err := ewmh.MoveresizeWindow(c.XUtil, id, r.X, r.Y, w, h); err != nil {
		xwindow.New(c.XUtil, id).MoveResize(r.X, r.Y, w, h)
	}
	return nil
}

// ActiveWindow returns the focused window.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

func (c *Connection) unmaximize(id xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, id)
	if err != nil {
		return
	}
	for _, s := range []string{"_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT"} {
		if slices.Contains(states, s) {
			ewmh.WmStateReq(c.XUtil, id, ewmh.StateRemove, s)
		}
	}
}

func (c *Connection) isNormal(id xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, id)
	if err != nil {
		return true
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		if slices.Contains(skippedTypes, t) {
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) isHidden(id xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, id)
	if err != nil {
		return false
	}
	return slices.Contains(states, "_NET_WM_STATE_HIDDEN") || slices.Contains(states, "_NET_WM_STATE_FULLSCREEN")
}

func (c *Connection) class(id xproto.Window) string {
	wc, err := icccm.WmClassGet(c.XUtil, id)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wc.Class)
}

func (c *Connection) title(id xproto.Window) string {
	if t, err := ewmh.WmNameGet(c.XUtil, id); err == nil && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if t, err := icccm.WmNameGet(c.XUtil, id); err == nil {
		return strings.TrimSpace(t)
	}
	return ""
}
