package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/gridlink/internal/view"
	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_ValidAndHasBuiltinLayouts(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if _, ok := cfg.Layouts[DefaultBuiltinLayout]; !ok {
		t.Fatalf("expected builtin %q to exist in layouts", DefaultBuiltinLayout)
	}
	for _, name := range cfg.LayoutNames() {
		if _, err := cfg.GetLayout(name); err != nil {
			t.Fatalf("builtin layout %q invalid: %v", name, err)
		}
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
	if res.Config.GapSize != 8 {
		t.Fatalf("expected default gap_size 8, got %d", res.Config.GapSize)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.DefaultLayout != DefaultBuiltinLayout {
		t.Fatalf("expected default_layout %q, got %q", DefaultBuiltinLayout, res.Config.DefaultLayout)
	}
}

func TestLoadFromPath_CustomLayoutKeepsBuiltins(t *testing.T) {
	data := `
default_layout: dev
layouts:
  dev:
    mode: fixed
    tile_region:
      type: full
    fixed_grid:
      rows: 1
      cols: 2
    columns:
      - pref: 60%
        grow: 1
      - min: 200px
        grow: 1
        shrink_priority: 50
    placements:
      term:
        y: editor.y
        height: editor.h-20
units:
  named_gaps:
    gutter: 12
`
	path := writeConfig(t, t.TempDir(), "config.yaml", strings.TrimSpace(data)+"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if _, ok := cfg.Layouts["grid"]; !ok {
		t.Fatalf("builtin layouts should survive a user layouts block")
	}

	dev, err := cfg.GetDefaultLayout()
	if err != nil {
		t.Fatalf("default layout: %v", err)
	}
	if len(dev.Columns) != 2 || dev.Columns[0].Pref != "60%" {
		t.Fatalf("unexpected columns: %+v", dev.Columns)
	}
	c := dev.Column(1).Constraint()
	if c.ShrinkPrio != 50 || c.Grow == nil || *c.Grow != 1 {
		t.Fatalf("unexpected constraint %s", c)
	}
	if dev.Column(5).Min != "200px" {
		t.Fatalf("missing columns should reuse the last track")
	}
	want := Placement{Y: "editor.y", Height: "editor.h-20"}
	if diff := cmp.Diff(want, dev.Placements["term"]); diff != "" {
		t.Fatalf("placement mismatch (-want +got):\n%s", diff)
	}

	opts := cfg.Units.Options()
	if opts.Gaps["gutter"] != 12 {
		t.Fatalf("expected gutter gap in unit options, got %v", opts.Gaps)
	}
	if opts.DefaultDPI != 96 {
		t.Fatalf("expected default dpi 96, got %d", opts.DefaultDPI)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.d/10-base.yaml", "gap_size: 5\nlog_level: debug\n")
	writeConfig(t, dir, "config.d/20-override.yaml", "gap_size: 6\n")
	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"gap_size: 7",
		"",
	}, "\n")
	path := writeConfig(t, dir, "config.yaml", main)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.GapSize != 7 {
		t.Fatalf("expected gap_size to be 7, got %d", res.Config.GapSize)
	}
	if res.Config.LogLevel != "debug" {
		t.Fatalf("expected log_level from include, got %q", res.Config.LogLevel)
	}
	if len(res.Files) != 3 || !strings.HasSuffix(res.Files[2], "config.yaml") {
		t.Fatalf("unexpected load order %v", res.Files)
	}
	if res.Config.Include != nil {
		t.Fatalf("include list should not leak into the effective config")
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	data := `
layouts:
  broken:
    mode: fixed
    tile_region:
      type: full
    placements:
      term:
        x: "10 px px"
`
	path := writeConfig(t, t.TempDir(), "config.yaml", strings.TrimSpace(data)+"\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "layouts.broken" {
		t.Fatalf("expected path layouts.broken, got %q", verr.Path)
	}
	if verr.Source.Kind != SourceFile || verr.Source.Line != 3 {
		t.Fatalf("expected file source at line 3, got %+v", verr.Source)
	}
	if !strings.Contains(err.Error(), path+":3:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "loud" }, path: "log_level"},
		{name: "gap", mutate: func(c *Config) { c.GapSize = -1 }, path: "gap_size"},
		{name: "padding", mutate: func(c *Config) { c.ScreenPadding.Left = -3 }, path: "screen_padding"},
		{name: "default layout", mutate: func(c *Config) { c.DefaultLayout = "nope" }, path: "default_layout"},
		{name: "mode", mutate: func(c *Config) {
			c.Layouts["x"] = Layout{Mode: "spiral", TileRegion: TileRegion{Type: RegionFull}}
		}, path: "layouts.x"},
		{name: "fixed grid", mutate: func(c *Config) {
			c.Layouts["x"] = Layout{Mode: LayoutModeFixed, TileRegion: TileRegion{Type: RegionFull}}
		}, path: "layouts.x"},
		{name: "custom region", mutate: func(c *Config) {
			c.Layouts["x"] = Layout{Mode: LayoutModeAuto, TileRegion: TileRegion{Type: RegionCustom, XPercent: 60, WidthPercent: 50, HeightPercent: 10}}
		}, path: "layouts.x"},
		{name: "track unit", mutate: func(c *Config) {
			c.Layouts["x"] = Layout{Mode: LayoutModeAuto, TileRegion: TileRegion{Type: RegionFull}, Rows: []Track{{Min: "1 2 3"}}}
		}, path: "layouts.x"},
		{name: "negative weight", mutate: func(c *Config) {
			w := -1.0
			c.Layouts["x"] = Layout{Mode: LayoutModeAuto, TileRegion: TileRegion{Type: RegionFull}, Columns: []Track{{Grow: &w}}}
		}, path: "layouts.x"},
		{name: "dpi", mutate: func(c *Config) { c.Units.DefaultDPI = -1 }, path: "units.default_dpi"},
		{name: "gap size", mutate: func(c *Config) { c.Units.NamedGaps["related"] = -4 }, path: "units.named_gaps.related"},
		{name: "kind rule", mutate: func(c *Config) { c.KindRules["foo"] = "gizmo" }, path: "kind_rules.foo"},
		{name: "link id", mutate: func(c *Config) { c.LinkIDs["Code"] = " " }, path: "link_ids.Code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q (%v)", tt.path, verr.Path, err)
			}
		})
	}
}

func TestKindForAndLinkIDFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KindRules["gnome-terminal"] = "scroll_pane"
	cfg.LinkIDs["Code"] = "editor"

	if got := cfg.KindFor("Alacritty"); got != view.KindTextArea {
		t.Fatalf("KindFor(Alacritty) = %s", got)
	}
	if got := cfg.KindFor("Gnome-terminal-server"); got != view.KindScrollPane {
		t.Fatalf("longest rule should win, got %s", got)
	}
	if got := cfg.KindFor("Gimp"); got != view.KindUnknown {
		t.Fatalf("unmatched class should be unknown, got %s", got)
	}
	if got := cfg.LinkIDFor("code"); got != "editor" {
		t.Fatalf("LinkIDFor(code) = %q", got)
	}
	if got := cfg.LinkIDFor(" Firefox "); got != "firefox" {
		t.Fatalf("LinkIDFor(Firefox) = %q", got)
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "gap_size: 4\nlayouts:\n  mine:\n    mode: auto\n    tile_region:\n      type: full\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "gap_size")
	if err != nil {
		t.Fatalf("explain gap_size: %v", err)
	}
	if val != 4 || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("unexpected explain result %v %+v", val, src)
	}

	val, src, err = Explain(res, "layouts.grid.mode")
	if err != nil {
		t.Fatalf("explain builtin: %v", err)
	}
	if val != LayoutModeAuto || src.Kind != SourceBuiltin || src.Name != "grid" {
		t.Fatalf("unexpected builtin explain %v %+v", val, src)
	}

	_, src, err = Explain(res, "units.named_gaps.related")
	if err != nil || src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %+v %v", src, err)
	}

	if _, _, err := Explain(res, "layouts.grid.bogus"); err == nil {
		t.Fatalf("expected error for unsupported path")
	}
}

func TestSaveTo_RoundTripsCustomLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GapSize = 3
	cfg.Layouts["mine"] = Layout{
		Mode:       LayoutModeVertical,
		TileRegion: TileRegion{Type: RegionRightHalf},
		Placements: map[string]Placement{"term": {X: "editor.x2+8"}},
	}
	path := filepath.Join(t.TempDir(), "out", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "sidebar:") {
		t.Fatalf("unchanged builtin layouts should not be saved:\n%s", data)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff(cfg.Layouts["mine"], res.Config.Layouts["mine"]); diff != "" {
		t.Fatalf("layout mismatch after save (-want +got):\n%s", diff)
	}
	if res.Config.GapSize != 3 {
		t.Fatalf("gap_size = %d, want 3", res.Config.GapSize)
	}
}
