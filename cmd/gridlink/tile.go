package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/tiling"
	"github.com/1broseidon/gridlink/internal/unit"
	"github.com/1broseidon/gridlink/internal/view"
)

func runTile(args []string) int {
	fs := flag.NewFlagSet("tile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	common := addCommonFlags(fs)
	layout := fs.String("layout", "", "Layout to apply (default: config default_layout)")
	dryRun := fs.Bool("dry-run", false, "Compute the arrangement without moving windows")
	debug := fs.Bool("debug", false, "Report the grid cells")
	jsonOut := fs.Bool("json", false, "Print the result as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridlink tile [--layout NAME] [--dry-run] [--debug] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Arrange the windows of the active display.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "tile takes no arguments")
		fs.Usage()
		return 2
	}

	_, s, err := common.open(context.Background())
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	res, err := s.tiler.TileActiveDisplay(tiling.TileOptions{
		Layout: *layout,
		DryRun: *dryRun,
		Debug:  *debug,
	})
	if res == nil {
		return fail(err)
	}
	if !*dryRun {
		rememberUndo(s)
	}

	code := 0
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	if *jsonOut {
		if c := writeJSON(os.Stdout, res); c != 0 {
			return c
		}
		return code
	}

	fmt.Printf("%s: %s, %dx%d grid, %d pass(es)\n", res.Display.Name, res.LayoutName, res.Rows, res.Cols, res.Passes)
	rows := make([][]string, 0, len(res.Placements))
	for _, p := range res.Placements {
		rows = append(rows, []string{
			p.LinkID, p.Kind,
			strconv.Itoa(p.Row), strconv.Itoa(p.Col),
			formatRect(p.Bounds.X, p.Bounds.Y, p.Bounds.Width, p.Bounds.Height),
		})
	}
	renderTable(os.Stdout, []string{"link", "kind", "row", "col", "bounds"}, rows)
	if res.Overflow > 0 {
		fmt.Printf("%d window(s) did not fit the layout and were left in place\n", res.Overflow)
	}
	for _, c := range res.DebugCells {
		fmt.Printf("cell %s\n", formatRect(c.X, c.Y, c.Width, c.Height))
	}
	return code
}

func runLinks(args []string) int {
	fs := flag.NewFlagSet("links", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	common := addCommonFlags(fs)
	layout := fs.String("layout", "", "Layout to compute links for (default: config default_layout)")
	jsonOut := fs.Bool("json", false, "Print the links as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridlink links [--layout NAME] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Compute the layout without moving windows and print the bounds")
		fmt.Fprintln(os.Stderr, "published under each link id. Coordinates are relative to the")
		fmt.Fprintln(os.Stderr, "display's usable area.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	_, s, err := common.open(context.Background())
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	res, err := s.tiler.TileActiveDisplay(tiling.TileOptions{Layout: *layout, DryRun: true, Force: true})
	if err != nil {
		return fail(err)
	}

	entries := s.tiler.Links(res.Display.ID)
	if *jsonOut {
		return writeJSON(os.Stdout, entries)
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		b := e.Bounds
		rows = append(rows, []string{
			e.Key,
			strconv.Itoa(b.X), strconv.Itoa(b.Y),
			strconv.Itoa(b.Width), strconv.Itoa(b.Height),
			strconv.Itoa(b.X2), strconv.Itoa(b.Y2),
		})
	}
	renderTable(os.Stdout, []string{"key", "x", "y", "w", "h", "x2", "y2"}, rows)
	return 0
}

func runValue(args []string) int {
	fs := flag.NewFlagSet("value", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	common := addCommonFlags(fs)
	layout := fs.String("layout", "", "Layout to compute links for (default: config default_layout)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridlink value [--layout NAME] <ref>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Resolve a link reference such as editor.x2, kitty.h or editor.xpos+8")
		fmt.Fprintln(os.Stderr, "against a dry-run arrangement of the active display.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "value requires <ref>")
		return 2
	}

	expr, err := unit.ParseExpr(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	_, field, _, ok := unit.ParseLinkRef(expr.Value.Unit)
	if !ok {
		fmt.Fprintf(os.Stderr, "%q is not a link reference\n", fs.Arg(0))
		return 2
	}

	_, s, err := common.open(context.Background())
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	if _, err := s.tiler.TileActiveDisplay(tiling.TileOptions{Layout: *layout, DryRun: true, Force: true}); err != nil {
		return fail(err)
	}
	dv, err := s.tiler.ActiveDisplayView()
	if err != nil {
		return fail(err)
	}
	horizontal := field == link.X || field == link.Width || field == link.X2
	px, ok := expr.Pixels(s.tiler.Units(), horizontal, 0, dv, nil)
	if !ok {
		return fail(fmt.Errorf("cannot resolve %q", fs.Arg(0)))
	}
	fmt.Println(px)
	return 0
}

func runConvert(args []string) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	common := addCommonFlags(fs)
	vertical := fs.Bool("vertical", false, "Convert along the vertical axis")
	reference := fs.Float64("reference", 0, "Reference length for % and al (default: usable display length)")
	offline := fs.Bool("offline", false, "Do not connect to the display; use configured default metrics")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridlink convert [--vertical] [--reference PX] [--offline] <value>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Convert a unit value to pixels using the active display's DPI.")
		fmt.Fprintln(os.Stderr, "Units: px % in cm mm pt lp lpx lpy sp spx spy min pref max al,")
		fmt.Fprintln(os.Stderr, "named gaps (related, unrelated, paragraph, indent, ...) and links.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "convert requires <value>")
		return 2
	}
	v, err := unit.Parse(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	var (
		units  *unit.Pipeline
		parent view.Container
		ref    = *reference
	)
	if *offline {
		res, err := loadConfig(common.configPath)
		if err != nil {
			return fail(err)
		}
		units = unit.NewDefault(link.Default, res.Config.Units.Options())
	} else {
		_, s, err := common.open(context.Background())
		if err != nil {
			return fail(err)
		}
		defer s.Close()
		dv, err := s.tiler.ActiveDisplayView()
		if err != nil {
			return fail(err)
		}
		units, parent = s.tiler.Units(), dv
		if ref == 0 {
			ref = float64(dv.Width())
			if *vertical {
				ref = float64(dv.Height())
			}
		}
	}

	px, ok := v.Pixels(units, !*vertical, ref, parent, nil)
	if !ok {
		return fail(fmt.Errorf("unsupported unit %q", v.Unit))
	}
	fmt.Println(px)
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	common := addCommonFlags(fs)
	jsonOut := fs.Bool("json", false, "Print the displays as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	_, s, err := common.open(context.Background())
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	displays, active, err := s.tiler.Displays()
	if err != nil {
		return fail(err)
	}
	if *jsonOut {
		return writeJSON(os.Stdout, displays)
	}
	rows := make([][]string, 0, len(displays))
	for _, d := range displays {
		mark := ""
		if d.ID == active {
			mark = "*"
		}
		rows = append(rows, []string{
			mark + d.Name,
			formatRect(d.Bounds.X, d.Bounds.Y, d.Bounds.Width, d.Bounds.Height),
			formatRect(d.Usable.X, d.Usable.Y, d.Usable.Width, d.Usable.Height),
			fmt.Sprintf("%dx%d", d.DPIX, d.DPIY),
		})
	}
	renderTable(os.Stdout, []string{"display", "bounds", "usable", "dpi"}, rows)
	return 0
}

func formatRect(x, y, w, h int) string {
	return fmt.Sprintf("%dx%d+%d+%d", w, h, x, y)
}
