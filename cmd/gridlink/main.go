package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "tile":
		os.Exit(runTile(os.Args[2:]))
	case "undo":
		os.Exit(runUndo(os.Args[2:]))
	case "links":
		os.Exit(runLinks(os.Args[2:]))
	case "value":
		os.Exit(runValue(os.Args[2:]))
	case "convert":
		os.Exit(runConvert(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gridlink <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tile                Arrange the windows of the active display")
	fmt.Fprintln(w, "  undo                Undo the last tiling run")
	fmt.Fprintln(w, "  links               Show the bounds each window would be linked to")
	fmt.Fprintln(w, "  value <ref>         Resolve a link reference such as editor.x2+8")
	fmt.Fprintln(w, "  convert <value>     Convert a unit value (10mm, 50%, related) to pixels")
	fmt.Fprintln(w, "  displays            List displays, work areas and DPI")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout list         List available layouts")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'gridlink <command> --help' for command-specific options.")
}
