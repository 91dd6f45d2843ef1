package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	log_level
//	display
//	gap_size
//	screen_padding.top
//	default_layout
//	units.default_dpi
//	units.named_gaps.<name>
//	kind_rules.<pattern>
//	link_ids.<class>
//	layouts.<name>.mode
//	layouts.<name>.tile_region.type
//	layouts.<name>.fixed_grid.rows
//	layouts.<name>.placements.<id>.x
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	parts := strings.Split(path, ".")
	if len(parts) >= 2 && parts[0] == "layouts" {
		if _, ok := BuiltinLayouts()[parts[1]]; ok {
			return value, Source{Kind: SourceBuiltin, Name: parts[1]}, nil
		}
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	want := func(n int) error {
		if len(parts) != n {
			return fmt.Errorf("unsupported path %q", path)
		}
		return nil
	}

	switch parts[0] {
	case "log_level":
		return cfg.LogLevel, want(1)
	case "display":
		return cfg.Display, want(1)
	case "gap_size":
		return cfg.GapSize, want(1)
	case "default_layout":
		return cfg.DefaultLayout, want(1)
	case "screen_padding":
		if len(parts) == 1 {
			return cfg.ScreenPadding, nil
		}
		if err := want(2); err != nil {
			return nil, err
		}
		switch parts[1] {
		case "top":
			return cfg.ScreenPadding.Top, nil
		case "bottom":
			return cfg.ScreenPadding.Bottom, nil
		case "left":
			return cfg.ScreenPadding.Left, nil
		case "right":
			return cfg.ScreenPadding.Right, nil
		}
	case "units":
		if len(parts) == 1 {
			return cfg.Units, nil
		}
		switch parts[1] {
		case "default_dpi":
			return cfg.Units.DefaultDPI, want(2)
		case "horizontal_scale":
			return cfg.Units.HorizontalScale, want(2)
		case "vertical_scale":
			return cfg.Units.VerticalScale, want(2)
		case "named_gaps":
			if len(parts) == 2 {
				return cfg.Units.NamedGaps, nil
			}
			if v, ok := cfg.Units.NamedGaps[parts[2]]; ok {
				return v, nil
			}
			return nil, fmt.Errorf("named gap %q not found", parts[2])
		}
	case "kind_rules":
		return lookupMap(cfg.KindRules, parts, path)
	case "link_ids":
		return lookupMap(cfg.LinkIDs, parts, path)
	case "layouts":
		return lookupLayout(cfg, parts, path)
	}
	return nil, fmt.Errorf("unsupported path %q", path)
}

func lookupMap(m map[string]string, parts []string, path string) (any, error) {
	switch len(parts) {
	case 1:
		return m, nil
	case 2:
		if v, ok := m[parts[1]]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("%q not found", path)
	}
	return nil, fmt.Errorf("unsupported path %q", path)
}

func lookupLayout(cfg *Config, parts []string, path string) (any, error) {
	if len(parts) < 2 {
		return cfg.LayoutNames(), nil
	}
	layout, ok := cfg.Layouts[parts[1]]
	if !ok {
		return nil, fmt.Errorf("layout %q not found", parts[1])
	}
	if len(parts) == 2 {
		return layout, nil
	}

	switch strings.Join(parts[2:], ".") {
	case "mode":
		return layout.Mode, nil
	case "debug":
		return layout.Debug, nil
	case "tile_region.type":
		return layout.TileRegion.Type, nil
	case "fixed_grid.rows":
		return layout.FixedGrid.Rows, nil
	case "fixed_grid.cols":
		return layout.FixedGrid.Cols, nil
	case "columns":
		return layout.Columns, nil
	case "rows":
		return layout.Rows, nil
	}

	if parts[2] == "placements" && len(parts) >= 4 {
		p, ok := layout.Placements[parts[3]]
		if !ok {
			return nil, fmt.Errorf("placement %q not found in layout %q", parts[3], parts[1])
		}
		if len(parts) == 4 {
			return p, nil
		}
		if len(parts) == 5 {
			switch parts[4] {
			case "x":
				return p.X, nil
			case "y":
				return p.Y, nil
			case "width":
				return p.Width, nil
			case "height":
				return p.Height, nil
			}
		}
	}
	return nil, fmt.Errorf("unsupported path %q", path)
}
