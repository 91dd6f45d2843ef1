package config

const DefaultBuiltinLayout = "grid"

// BuiltinLayouts returns the built-in layout library.
//
// These are always available to users without needing to define them in YAML.
// Users can define additional custom layouts in their config file.
func BuiltinLayouts() map[string]Layout {
	grow := func(w float64) *float64 { return &w }
	return map[string]Layout{
		"grid": {
			Mode:       LayoutModeAuto,
			TileRegion: TileRegion{Type: RegionFull},
		},
		"columns": {
			Mode:       LayoutModeHorizontal,
			TileRegion: TileRegion{Type: RegionFull},
		},
		"rows": {
			Mode:       LayoutModeVertical,
			TileRegion: TileRegion{Type: RegionFull},
		},
		"half-left": {
			Mode:       LayoutModeAuto,
			TileRegion: TileRegion{Type: RegionLeftHalf},
		},
		"half-right": {
			Mode:       LayoutModeAuto,
			TileRegion: TileRegion{Type: RegionRightHalf},
		},
		"sidebar": {
			Mode:       LayoutModeFixed,
			TileRegion: TileRegion{Type: RegionFull},
			FixedGrid:  FixedGrid{Rows: 1, Cols: 2},
			Columns: []Track{
				{Pref: "70%", Grow: grow(2)},
				{Min: "320px", Pref: "30%", Grow: grow(1)},
			},
		},
		"stacked": {
			Mode:       LayoutModeFixed,
			TileRegion: TileRegion{Type: RegionFull},
			FixedGrid:  FixedGrid{Rows: 2, Cols: 1},
			Rows: []Track{
				{Pref: "65%", Grow: grow(2)},
				{Min: "120px", Pref: "35%", Grow: grow(1)},
			},
		},
	}
}
