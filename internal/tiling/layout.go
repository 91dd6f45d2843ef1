package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/gridlink/internal/config"
)

// Rect represents a position and size relative to the arranged container.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CalculateGrid determines the near-square grid dimensions for n cells.
func CalculateGrid(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}

	// Columns first (ceiling of square root), then the rows needed.
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return rows, cols
}

// GridSize returns the grid dimensions a layout uses for n components.
// Fixed grids may hold fewer cells than n.
func GridSize(layout *config.Layout, n int) (rows, cols int, err error) {
	if n <= 0 {
		return 0, 0, nil
	}
	switch layout.Mode {
	case config.LayoutModeAuto:
		rows, cols = CalculateGrid(n)
	case config.LayoutModeFixed:
		rows, cols = layout.FixedGrid.Rows, layout.FixedGrid.Cols
	case config.LayoutModeVertical:
		rows, cols = n, 1
	case config.LayoutModeHorizontal:
		rows, cols = 1, n
	default:
		return 0, 0, fmt.Errorf("unsupported layout mode: %q", layout.Mode)
	}
	if rows <= 0 || cols <= 0 {
		return 0, 0, fmt.Errorf("invalid grid dimensions: rows=%d cols=%d", rows, cols)
	}
	return rows, cols, nil
}

// ApplyRegion applies the tile region to an area, returning adjusted bounds.
func ApplyRegion(area Rect, region config.TileRegion) Rect {
	adjusted := area

	switch region.Type {
	case config.RegionLeftHalf:
		adjusted.Width = area.Width / 2
	case config.RegionRightHalf:
		adjusted.X = area.X + area.Width/2
		adjusted.Width = area.Width / 2
	case config.RegionTopHalf:
		adjusted.Height = area.Height / 2
	case config.RegionBottomHalf:
		adjusted.Y = area.Y + area.Height/2
		adjusted.Height = area.Height / 2
	case config.RegionCustom:
		adjusted.X = area.X + (area.Width * region.XPercent / 100)
		adjusted.Y = area.Y + (area.Height * region.YPercent / 100)
		adjusted.Width = area.Width * region.WidthPercent / 100
		adjusted.Height = area.Height * region.HeightPercent / 100
	}

	adjusted.Width = max(adjusted.Width, 1)
	adjusted.Height = max(adjusted.Height, 1)
	return adjusted
}

// inset shrinks r by the given edges.
func inset(r Rect, top, left, bottom, right int) Rect {
	return Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - left - right,
		Height: r.Height - top - bottom,
	}
}
