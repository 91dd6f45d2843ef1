package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/gridlink/internal/config"
	"github.com/1broseidon/gridlink/internal/logging"
	"github.com/1broseidon/gridlink/internal/tiling"
)

const (
	ServerName    = "gridlink"
	ServerVersion = "0.1.0"
)

// Server exposes the tiler over MCP so that agents can arrange windows and
// query the links published for them.
type Server struct {
	mcpServer *mcpsdk.Server
	tiler     *tiling.Tiler
	config    *config.Config
	logger    *log.Logger
}

// NewServer creates a new MCP server backed by tiler.
func NewServer(tiler *tiling.Tiler, cfg *config.Config, logger *log.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		tiler:  tiler,
		config: cfg,
		logger: logger.WithPrefix("mcp"),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving on stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange_display",
		Description: "Arrange every window on the active display using a configured layout. Returns where each window was placed. Placements may refer to other windows' bounds through links such as editor.x2+8.",
	}, s.handleArrangeDisplay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "undo_arrange",
		Description: "Restore the windows of the active display to where they were before the last arrange_display call.",
	}, s.handleUndo)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List the connected displays with their bounds, usable work area and DPI.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_links",
		Description: "List the bounds published for each window link id on a display by the last arrangement. Coordinates are relative to the display's usable area.",
	}, s.handleListLinks)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_link_value",
		Description: "Resolve one link reference such as editor.x2, kitty.h or editor.xpos against the active display. Unpublished links resolve to 0.",
	}, s.handleGetLinkValue)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "convert_unit",
		Description: "Convert a unit value (px, %, mm, cm, in, pt, lp, sp, named gaps such as related or paragraph, al) to pixels on the active display.",
	}, s.handleConvertUnit)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List the configured layout names and the active one.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_layout",
		Description: "Set the active layout by name, or cycle through layouts in sorted order.",
	}, s.handleSetLayout)
}
