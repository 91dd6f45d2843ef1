package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/gridlink/internal/config"
)

func runConfig(args []string) int {
	return runConfigTo(os.Stdout, os.Stderr, args)
}

func runConfigTo(stdout, stderr io.Writer, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  gridlink config validate [--path PATH]")
		fmt.Fprintln(stderr, "  gridlink config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(stderr, "  gridlink config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/gridlink/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, "config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/gridlink/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			_ = printEffective // default
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return 1
			}
			for _, f := range res.Files {
				fmt.Fprintf(stdout, "# loaded: %s\n", f)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprint(stdout, string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/gridlink/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}

		fmt.Fprintf(stdout, "path: %s\n", queryPath)
		fmt.Fprintf(stdout, "source: %s\n", formatSource(src))
		fmt.Fprintf(stdout, "value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceBuiltin:
		if src.Name != "" {
			return "builtin:" + src.Name
		}
		return "builtin"
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gridlink layout list [--path PATH] [--json]")
}

type layoutJSON struct {
	Name       string            `json:"name"`
	Default    bool              `json:"default"`
	Mode       string            `json:"mode"`
	Region     string            `json:"tile_region"`
	FixedGrid  *config.FixedGrid `json:"fixed_grid,omitempty"`
	Columns    int               `json:"columns"`
	Rows       int               `json:"rows"`
	Placements []string          `json:"placements,omitempty"`
}

func runLayout(args []string) int {
	return runLayoutTo(os.Stdout, os.Stderr, args)
}

func runLayoutTo(stdout, stderr io.Writer, args []string) int {
	if len(args) == 0 {
		printLayoutUsage(stderr)
		return 2
	}
	switch args[0] {
	case "list":
	case "help", "-h", "--help":
		printLayoutUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown layout command: %s\n\n", args[0])
		printLayoutUsage(stderr)
		return 2
	}

	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/gridlink/config.yaml)")
	jsonOut := fs.Bool("json", false, "Print layouts as JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	cfg := res.Config

	layouts := make([]layoutJSON, 0, len(cfg.Layouts))
	for _, name := range cfg.LayoutNames() {
		l := cfg.Layouts[name]
		entry := layoutJSON{
			Name:    name,
			Default: name == cfg.DefaultLayout,
			Mode:    string(l.Mode),
			Region:  string(l.TileRegion.Type),
			Columns: len(l.Columns),
			Rows:    len(l.Rows),
		}
		if l.Mode == config.LayoutModeFixed {
			fg := l.FixedGrid
			entry.FixedGrid = &fg
		}
		for id := range l.Placements {
			entry.Placements = append(entry.Placements, id)
		}
		sort.Strings(entry.Placements)
		layouts = append(layouts, entry)
	}

	if *jsonOut {
		return writeJSON(stdout, layouts)
	}
	rows := make([][]string, 0, len(layouts))
	for _, l := range layouts {
		name := l.Name
		if l.Default {
			name += " (default)"
		}
		grid := "-"
		if l.FixedGrid != nil {
			grid = fmt.Sprintf("%dx%d", l.FixedGrid.Rows, l.FixedGrid.Cols)
		}
		rows = append(rows, []string{name, l.Mode, l.Region, grid, strings.Join(l.Placements, ",")})
	}
	renderTable(stdout, []string{"layout", "mode", "region", "grid", "placements"}, rows)
	return 0
}
