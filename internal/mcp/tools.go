package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/platform"
	"github.com/1broseidon/gridlink/internal/tiling"
	"github.com/1broseidon/gridlink/internal/unit"
	"github.com/1broseidon/gridlink/internal/view"
)

func (s *Server) handleArrangeDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, args ArrangeDisplayInput) (*mcpsdk.CallToolResult, ArrangeDisplayOutput, error) {
	res, err := s.tiler.TileActiveDisplay(tiling.TileOptions{
		Layout: args.Layout,
		DryRun: args.DryRun,
		Force:  args.Force,
	})
	if res == nil {
		s.logger.Error("arrange failed", "layout", args.Layout, "err", err)
		return nil, ArrangeDisplayOutput{}, err
	}

	out := ArrangeDisplayOutput{
		Display:    res.Display.Name,
		Layout:     res.LayoutName,
		Rows:       res.Rows,
		Cols:       res.Cols,
		Passes:     res.Passes,
		Skipped:    res.Skipped,
		Overflow:   res.Overflow,
		Placements: res.Placements,
	}
	if out.Placements == nil {
		out.Placements = []tiling.Placed{}
	}
	if err != nil {
		out.MoveErrors = err.Error()
	}
	s.logger.Info("arranged display",
		"display", out.Display, "layout", out.Layout,
		"windows", len(out.Placements), "skipped", out.Skipped, "dry_run", args.DryRun)
	return nil, out, nil
}

func (s *Server) handleUndo(_ context.Context, _ *mcpsdk.CallToolRequest, _ UndoInput) (*mcpsdk.CallToolResult, UndoOutput, error) {
	if err := s.tiler.Undo(); err != nil {
		return nil, UndoOutput{}, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: "Restored window geometry from before the last arrangement"},
		},
	}, UndoOutput{Restored: true}, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	displays, active, err := s.tiler.Displays()
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}
	if displays == nil {
		displays = []platform.Display{}
	}
	return nil, ListDisplaysOutput{Active: active, Displays: displays}, nil
}

func (s *Server) handleListLinks(_ context.Context, _ *mcpsdk.CallToolRequest, args ListLinksInput) (*mcpsdk.CallToolResult, ListLinksOutput, error) {
	var id int
	if args.DisplayID != nil {
		id = *args.DisplayID
	} else {
		_, active, err := s.tiler.Displays()
		if err != nil {
			return nil, ListLinksOutput{}, err
		}
		id = active
	}

	links := s.tiler.Links(id)
	if links == nil {
		links = []link.Entry{}
	}
	return nil, ListLinksOutput{DisplayID: id, Links: links}, nil
}

func (s *Server) handleGetLinkValue(_ context.Context, _ *mcpsdk.CallToolRequest, args GetLinkValueInput) (*mcpsdk.CallToolResult, GetLinkValueOutput, error) {
	expr, err := unit.ParseExpr(args.Ref)
	if err != nil {
		return nil, GetLinkValueOutput{}, err
	}
	id, field, _, ok := unit.ParseLinkRef(expr.Value.Unit)
	if !ok {
		return nil, GetLinkValueOutput{}, fmt.Errorf("%q is not a link reference (want id.field, e.g. editor.x2)", args.Ref)
	}

	dv, err := s.tiler.ActiveDisplayView()
	if err != nil {
		return nil, GetLinkValueOutput{}, err
	}
	horizontal := field == link.X || field == link.Width || field == link.X2
	px, ok := expr.Pixels(s.tiler.Units(), horizontal, 0, dv, nil)
	if !ok {
		return nil, GetLinkValueOutput{}, fmt.Errorf("cannot resolve %q", args.Ref)
	}
	_, published := s.tiler.Value(dv.Display().ID, id, field)

	return nil, GetLinkValueOutput{Ref: expr.String(), Value: px, Published: published}, nil
}

func (s *Server) handleConvertUnit(_ context.Context, _ *mcpsdk.CallToolRequest, args ConvertUnitInput) (*mcpsdk.CallToolResult, ConvertUnitOutput, error) {
	v, err := unit.Parse(args.Value)
	if err != nil {
		return nil, ConvertUnitOutput{}, err
	}

	var parent view.Container
	ref := args.Reference
	if dv, err := s.tiler.ActiveDisplayView(); err == nil {
		parent = dv
		if ref == 0 {
			ref = float64(dv.Width())
			if args.Vertical {
				ref = float64(dv.Height())
			}
		}
	} else {
		s.logger.Warn("no active display, converting with default metrics", "err", err)
	}

	px, ok := v.Pixels(s.tiler.Units(), !args.Vertical, ref, parent, nil)
	if !ok {
		return nil, ConvertUnitOutput{}, fmt.Errorf("unsupported unit %q", v.Unit)
	}
	return nil, ConvertUnitOutput{Value: v.String(), Pixels: px}, nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	return nil, ListLayoutsOutput{
		Active:  s.tiler.GetActiveLayoutName(),
		Layouts: s.config.LayoutNames(),
	}, nil
}

func (s *Server) handleSetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SetLayoutInput) (*mcpsdk.CallToolResult, SetLayoutOutput, error) {
	if args.Name != "" {
		if err := s.tiler.SetActiveLayout(args.Name); err != nil {
			return nil, SetLayoutOutput{}, err
		}
		return nil, SetLayoutOutput{Active: args.Name}, nil
	}
	if args.Cycle == 0 {
		return nil, SetLayoutOutput{}, fmt.Errorf("either name or cycle is required")
	}
	name, err := s.tiler.CycleActiveLayout(args.Cycle)
	if err != nil {
		return nil, SetLayoutOutput{}, err
	}
	return nil, SetLayoutOutput{Active: name}, nil
}
