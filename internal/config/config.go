package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/1broseidon/gridlink/internal/resize"
	"github.com/1broseidon/gridlink/internal/unit"
	"github.com/1broseidon/gridlink/internal/view"
	"gopkg.in/yaml.v3"
)

// Margins represents padding around the usable area of a display.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// LayoutMode defines how the grid dimensions are chosen.
type LayoutMode string

const (
	LayoutModeAuto       LayoutMode = "auto"       // Near-square grid based on count.
	LayoutModeFixed      LayoutMode = "fixed"      // Specific rows × cols.
	LayoutModeVertical   LayoutMode = "vertical"   // Single column stack.
	LayoutModeHorizontal LayoutMode = "horizontal" // Single row side-by-side.
)

// RegionType defines tile region presets.
type RegionType string

const (
	RegionFull       RegionType = "full"
	RegionLeftHalf   RegionType = "left-half"
	RegionRightHalf  RegionType = "right-half"
	RegionTopHalf    RegionType = "top-half"
	RegionBottomHalf RegionType = "bottom-half"
	RegionCustom     RegionType = "custom"
)

// TileRegion defines which part of the container the grid occupies.
type TileRegion struct {
	Type          RegionType `yaml:"type"`
	XPercent      int        `yaml:"x_percent,omitempty"`      // 0-100
	YPercent      int        `yaml:"y_percent,omitempty"`      // 0-100
	WidthPercent  int        `yaml:"width_percent,omitempty"`  // 0-100
	HeightPercent int        `yaml:"height_percent,omitempty"` // 0-100
}

// FixedGrid defines specific grid dimensions.
type FixedGrid struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// Track sizes one grid row or column. Sizes are unit values such as "200px",
// "30%" or "pref"; an empty size is unconstrained.
type Track struct {
	Min            string   `yaml:"min,omitempty"`
	Pref           string   `yaml:"pref,omitempty"`
	Max            string   `yaml:"max,omitempty"`
	Grow           *float64 `yaml:"grow,omitempty"`
	GrowPriority   *int     `yaml:"grow_priority,omitempty"`
	Shrink         *float64 `yaml:"shrink,omitempty"`
	ShrinkPriority *int     `yaml:"shrink_priority,omitempty"`
}

// DefaultTrack grows and shrinks evenly with its siblings.
func DefaultTrack() Track {
	grow := resize.Weight100
	return Track{Grow: &grow}
}

// Constraint converts the track's weights into a resize constraint.
func (t Track) Constraint() *resize.Constraint {
	c := resize.New()
	if t.Grow != nil {
		c.Grow = resize.Weight(*t.Grow)
	}
	if t.GrowPriority != nil {
		c.GrowPrio = *t.GrowPriority
	}
	if t.Shrink != nil {
		c.Shrink = resize.Weight(*t.Shrink)
	}
	if t.ShrinkPriority != nil {
		c.ShrinkPrio = *t.ShrinkPriority
	}
	return c
}

// Placement overrides the cell bounds of one component. Each coordinate is a
// unit expression ("editor.x2+8", "50%", "0.5al"); empty keeps the cell value.
type Placement struct {
	X      string `yaml:"x,omitempty"`
	Y      string `yaml:"y,omitempty"`
	Width  string `yaml:"width,omitempty"`
	Height string `yaml:"height,omitempty"`
}

// Layout defines a grid configuration.
type Layout struct {
	Mode       LayoutMode `yaml:"mode"`
	TileRegion TileRegion `yaml:"tile_region"`
	FixedGrid  FixedGrid  `yaml:"fixed_grid,omitempty"`
	Columns    []Track    `yaml:"columns,omitempty"`
	Rows       []Track    `yaml:"rows,omitempty"`
	// Placements is keyed by component link id.
	Placements map[string]Placement `yaml:"placements,omitempty"`
	// Debug outlines every grid cell on containers that support it.
	Debug bool `yaml:"debug,omitempty"`
}

// Column returns the track for column i. Missing tracks reuse the last one
// configured, or DefaultTrack when none is.
func (l *Layout) Column(i int) Track {
	return trackAt(l.Columns, i)
}

// Row is Column for rows.
func (l *Layout) Row(i int) Track {
	return trackAt(l.Rows, i)
}

func trackAt(tracks []Track, i int) Track {
	if len(tracks) == 0 {
		return DefaultTrack()
	}
	if i >= len(tracks) {
		i = len(tracks) - 1
	}
	return tracks[i]
}

// Units configures the unit conversion pipeline.
type Units struct {
	DefaultDPI      int                `yaml:"default_dpi"`
	// HorizontalScale and VerticalScale divide physical units (in, cm, mm,
	// pt): at 96 DPI a scale of 2 makes 1in 48 pixels.
	HorizontalScale float64            `yaml:"horizontal_scale"`
	VerticalScale   float64            `yaml:"vertical_scale"`
	NamedGaps       map[string]float64 `yaml:"named_gaps"`
}

// Options returns the pipeline options for these settings.
func (u Units) Options() unit.Options {
	opts := unit.DefaultOptions()
	if u.DefaultDPI > 0 {
		opts.DefaultDPI = u.DefaultDPI
	}
	if u.HorizontalScale > 0 {
		opts.HorizontalScale = u.HorizontalScale
	}
	if u.VerticalScale > 0 {
		opts.VerticalScale = u.VerticalScale
	}
	if len(u.NamedGaps) > 0 {
		gaps := make(map[string]float64, len(u.NamedGaps))
		for name, size := range u.NamedGaps {
			gaps[strings.ToLower(name)] = size
		}
		opts.Gaps = gaps
	}
	return opts
}

// Config holds the application configuration.
type Config struct {
	Include       IncludeList       `yaml:"include,omitempty"`
	LogLevel      string            `yaml:"log_level"`
	Display       string            `yaml:"display,omitempty"`
	GapSize       int               `yaml:"gap_size"`
	ScreenPadding Margins           `yaml:"screen_padding"`
	DefaultLayout string            `yaml:"default_layout"`
	Layouts       map[string]Layout `yaml:"layouts"`
	Units         Units             `yaml:"units"`
	// KindRules maps a WM_CLASS substring to a component kind name.
	KindRules map[string]string `yaml:"kind_rules,omitempty"`
	// LinkIDs maps a WM_CLASS (case-insensitive) to the link id its window
	// publishes under. Unmapped windows use their lowercased class.
	LinkIDs map[string]string `yaml:"link_ids,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		GapSize:       8,
		DefaultLayout: DefaultBuiltinLayout,
		Layouts:       BuiltinLayouts(),
		Units: Units{
			DefaultDPI:      96,
			HorizontalScale: 1,
			VerticalScale:   1,
			NamedGaps:       unit.DefaultGaps(),
		},
		KindRules: defaultKindRules(),
		LinkIDs:   map[string]string{},
	}
}

// Save writes the configuration to the standard location.
//
// Builtin layouts that were not changed are left out of the file.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	save.Include = nil
	save.Layouts = layoutsForSave(c.Layouts)

	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func layoutsForSave(layouts map[string]Layout) map[string]Layout {
	builtin := BuiltinLayouts()
	out := make(map[string]Layout)
	for name, layout := range layouts {
		if base, ok := builtin[name]; ok && reflect.DeepEqual(base, layout) {
			continue
		}
		out[name] = layout
	}
	return out
}

// GetLayout retrieves a layout by name with validation.
func (c *Config) GetLayout(name string) (*Layout, error) {
	layout, ok := c.Layouts[name]
	if !ok {
		return nil, fmt.Errorf("layout %q not found", name)
	}

	if err := validateLayout(&layout); err != nil {
		return nil, fmt.Errorf("invalid layout %q: %w", name, err)
	}

	return &layout, nil
}

// GetDefaultLayout retrieves the default layout.
func (c *Config) GetDefaultLayout() (*Layout, error) {
	return c.GetLayout(c.DefaultLayout)
}

// LayoutNames returns the configured layout names in sorted order.
func (c *Config) LayoutNames() []string {
	names := make([]string, 0, len(c.Layouts))
	for name := range c.Layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KindFor classifies a window class using kind_rules. The longest matching
// substring wins so that specific rules beat generic ones.
func (c *Config) KindFor(class string) view.Kind {
	lower := strings.ToLower(class)
	best := ""
	kind := view.KindUnknown
	for pattern, name := range c.KindRules {
		p := strings.ToLower(pattern)
		if p == "" || !strings.Contains(lower, p) || len(p) <= len(best) {
			continue
		}
		k, err := view.ParseKind(name)
		if err != nil {
			continue
		}
		best, kind = p, k
	}
	return kind
}

// LinkIDFor returns the link id for a window class.
func (c *Config) LinkIDFor(class string) string {
	for pattern, id := range c.LinkIDs {
		if strings.EqualFold(pattern, class) {
			return id
		}
	}
	return strings.ToLower(strings.TrimSpace(class))
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.GapSize < 0 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be >= 0")}
	}
	if c.ScreenPadding.Top < 0 || c.ScreenPadding.Bottom < 0 || c.ScreenPadding.Left < 0 || c.ScreenPadding.Right < 0 {
		return &ValidationError{Path: "screen_padding", Err: fmt.Errorf("screen_padding values must be >= 0")}
	}

	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	if c.DefaultLayout == "" {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout is required")}
	}
	if _, ok := c.Layouts[c.DefaultLayout]; !ok {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout %q not found in layouts", c.DefaultLayout)}
	}
	for _, name := range c.LayoutNames() {
		layout := c.Layouts[name]
		if err := validateLayout(&layout); err != nil {
			return &ValidationError{Path: "layouts." + name, Err: err}
		}
	}

	if c.Units.DefaultDPI < 0 {
		return &ValidationError{Path: "units.default_dpi", Err: fmt.Errorf("default_dpi must be >= 0")}
	}
	if c.Units.HorizontalScale < 0 {
		return &ValidationError{Path: "units.horizontal_scale", Err: fmt.Errorf("horizontal_scale must be >= 0")}
	}
	if c.Units.VerticalScale < 0 {
		return &ValidationError{Path: "units.vertical_scale", Err: fmt.Errorf("vertical_scale must be >= 0")}
	}
	for name, size := range c.Units.NamedGaps {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "units.named_gaps", Err: fmt.Errorf("named_gaps contains an empty name")}
		}
		if size < 0 {
			return &ValidationError{Path: "units.named_gaps." + name, Err: fmt.Errorf("gap size must be >= 0")}
		}
	}

	for pattern, name := range c.KindRules {
		if strings.TrimSpace(pattern) == "" {
			return &ValidationError{Path: "kind_rules", Err: fmt.Errorf("kind_rules contains an empty class pattern")}
		}
		if _, err := view.ParseKind(name); err != nil {
			return &ValidationError{Path: "kind_rules." + pattern, Err: err}
		}
	}
	for class, id := range c.LinkIDs {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: "link_ids", Err: fmt.Errorf("link_ids contains an empty class name")}
		}
		if strings.TrimSpace(id) == "" {
			return &ValidationError{Path: "link_ids." + class, Err: fmt.Errorf("link id must not be empty")}
		}
	}

	return nil
}

// validateLayout checks if a layout configuration is valid.
func validateLayout(layout *Layout) error {
	switch layout.Mode {
	case LayoutModeAuto, LayoutModeFixed, LayoutModeVertical, LayoutModeHorizontal:
	default:
		return fmt.Errorf("invalid mode %q", layout.Mode)
	}

	if layout.Mode == LayoutModeFixed {
		if layout.FixedGrid.Rows <= 0 || layout.FixedGrid.Cols <= 0 {
			return fmt.Errorf("fixed mode requires rows and cols to be positive")
		}
	}

	switch layout.TileRegion.Type {
	case RegionFull, RegionLeftHalf, RegionRightHalf, RegionTopHalf, RegionBottomHalf:
		// ok
	case RegionCustom:
		r := layout.TileRegion
		if r.XPercent < 0 || r.XPercent > 100 {
			return fmt.Errorf("x_percent must be between 0 and 100")
		}
		if r.YPercent < 0 || r.YPercent > 100 {
			return fmt.Errorf("y_percent must be between 0 and 100")
		}
		if r.WidthPercent <= 0 || r.WidthPercent > 100 {
			return fmt.Errorf("width_percent must be between 1 and 100")
		}
		if r.HeightPercent <= 0 || r.HeightPercent > 100 {
			return fmt.Errorf("height_percent must be between 1 and 100")
		}
		if r.XPercent+r.WidthPercent > 100 {
			return fmt.Errorf("x_percent + width_percent must be <= 100")
		}
		if r.YPercent+r.HeightPercent > 100 {
			return fmt.Errorf("y_percent + height_percent must be <= 100")
		}
	default:
		return fmt.Errorf("invalid region type %q", layout.TileRegion.Type)
	}

	if err := validateTracks("columns", layout.Columns); err != nil {
		return err
	}
	if err := validateTracks("rows", layout.Rows); err != nil {
		return err
	}

	ids := make([]string, 0, len(layout.Placements))
	for id := range layout.Placements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := layout.Placements[id]
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("placements contains an empty link id")
		}
		for _, f := range []struct{ name, expr string }{
			{"x", p.X}, {"y", p.Y}, {"width", p.Width}, {"height", p.Height},
		} {
			if f.expr == "" {
				continue
			}
			if _, err := unit.ParseExpr(f.expr); err != nil {
				return fmt.Errorf("placements.%s.%s: %w", id, f.name, err)
			}
		}
	}

	return nil
}

func validateTracks(kind string, tracks []Track) error {
	for i, t := range tracks {
		for _, f := range []struct{ name, value string }{
			{"min", t.Min}, {"pref", t.Pref}, {"max", t.Max},
		} {
			if f.value == "" {
				continue
			}
			if _, err := unit.Parse(f.value); err != nil {
				return fmt.Errorf("%s[%d].%s: %w", kind, i, f.name, err)
			}
		}
		if t.Grow != nil && *t.Grow < 0 {
			return fmt.Errorf("%s[%d].grow must be >= 0", kind, i)
		}
		if t.Shrink != nil && *t.Shrink < 0 {
			return fmt.Errorf("%s[%d].shrink must be >= 0", kind, i)
		}
	}
	return nil
}

func defaultKindRules() map[string]string {
	return map[string]string{
		"alacritty": "text_area",
		"kitty":     "text_area",
		"ghostty":   "text_area",
		"terminal":  "text_area",
		"xterm":     "text_area",
		"wezterm":   "text_area",
		"code":      "text_area",
		"firefox":   "panel",
		"chromium":  "panel",
		"chrome":    "panel",
		"dialog":    "panel",
	}
}
