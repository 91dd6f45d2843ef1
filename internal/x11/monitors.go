package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor is one active RandR output.
type Monitor struct {
	ID     int
	Name   string
	Bounds Rect
	// WorkArea is Bounds minus panels and docks.
	WorkArea Rect
	// DPIX and DPIY are zero when the output does not report its
	// physical size.
	DPIX, DPIY int
}

// Monitors lists the active monitors. Work areas are not computed; use
// ActiveMonitor or WorkArea for that.
func (c *Connection) Monitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		m := Monitor{
			ID:     i,
			Name:   fmt.Sprintf("Monitor%d", i),
			Bounds: Rect{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)},
		}
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			m.Name = string(out.Name)
			m.DPIX = dpi(m.Bounds.Width, out.MmWidth)
			m.DPIY = dpi(m.Bounds.Height, out.MmHeight)
		}
		m.WorkArea = m.Bounds
		monitors = append(monitors, m)
	}
	return monitors, nil
}

// ActiveMonitor returns the monitor holding the focused window, falling back
// to the one under the pointer and then the first. Its WorkArea is filled in.
func (c *Connection) ActiveMonitor() (Monitor, error) {
	monitors, err := c.Monitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	idx := -1
	if win, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && win != 0 {
		if r, ok := c.WindowRect(win); ok {
			idx = monitorAt(monitors, r.X+r.Width/2, r.Y+r.Height/2)
		}
	}
	if idx < 0 {
		if p, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
			idx = monitorAt(monitors, int(p.RootX), int(p.RootY))
		}
	}
	if idx < 0 {
		idx = 0
	}

	m := monitors[idx]
	m.WorkArea = c.WorkArea(m.Bounds)
	return m, nil
}

// WorkArea returns bounds minus dock struts. When no dock reserves space on
// the monitor, the EWMH work area of the current desktop is intersected
// instead.
func (c *Connection) WorkArea(bounds Rect) Rect {
	if in, ok := c.dockInsets(bounds); ok {
		return in.shrink(bounds)
	}

	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return bounds
	}
	desktop := 0
	if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
		desktop = int(cur)
	}
	wa := areas[desktop]
	clipped := bounds.Intersect(Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)})
	if clipped.Empty() {
		return bounds
	}
	return clipped
}

func (c *Connection) dockInsets(monitor Rect) (insets, bool) {
	root, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return insets{}, false
	}
	rootW, rootH := int(root.Width), int(root.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return insets{}, false
	}

	var acc insets
	for _, win := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
		if err != nil || !slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			addStrut(&acc, monitor, rootW, rootH, sp)
			continue
		}
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			addStrut(&acc, monitor, rootW, rootH, fullStrut(s, rootW, rootH))
		}
	}
	return acc, !acc.zero()
}

func monitorAt(monitors []Monitor, x, y int) int {
	for i := range monitors {
		if monitors[i].Bounds.Contains(x, y) {
			return i
		}
	}
	return -1
}
