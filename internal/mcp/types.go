package mcp

import (
	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/platform"
	"github.com/1broseidon/gridlink/internal/tiling"
)

// ArrangeDisplayInput is the input for the arrange_display tool.
type ArrangeDisplayInput struct {
	Layout string `json:"layout,omitempty" jsonschema:"Layout name from config (default: the active layout)"`
	DryRun bool   `json:"dry_run,omitempty" jsonschema:"When true, compute and publish bounds without moving any window"`
	Force  bool   `json:"force,omitempty" jsonschema:"When true, arrange even if nothing changed since the last run"`
}

// ArrangeDisplayOutput is the output for the arrange_display tool.
type ArrangeDisplayOutput struct {
	Display    string          `json:"display"`
	Layout     string          `json:"layout"`
	Rows       int             `json:"rows"`
	Cols       int             `json:"cols"`
	Passes     int             `json:"passes"`
	Skipped    bool            `json:"skipped"`
	Overflow   int             `json:"overflow,omitempty"`
	Placements []tiling.Placed `json:"placements"`
	// MoveErrors lists windows that were placed but could not be moved.
	MoveErrors string `json:"move_errors,omitempty"`
}

// UndoInput is the input for the undo_arrange tool.
type UndoInput struct{}

// UndoOutput is the output for the undo_arrange tool.
type UndoOutput struct {
	Restored bool `json:"restored"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Active   int                `json:"active"`
	Displays []platform.Display `json:"displays"`
}

// ListLinksInput is the input for the list_links tool.
type ListLinksInput struct {
	DisplayID *int `json:"display_id,omitempty" jsonschema:"Display id (default: the active display)"`
}

// ListLinksOutput is the output for the list_links tool.
type ListLinksOutput struct {
	DisplayID int          `json:"display_id"`
	Links     []link.Entry `json:"links"`
}

// GetLinkValueInput is the input for the get_link_value tool.
type GetLinkValueInput struct {
	Ref string `json:"ref" jsonschema:"required,Link reference such as editor.x2 or kitty.ypos, optionally with an integer offset (editor.x2+8)"`
}

// GetLinkValueOutput is the output for the get_link_value tool.
type GetLinkValueOutput struct {
	Ref       string `json:"ref"`
	Value     int    `json:"value"`
	Published bool   `json:"published"`
}

// ConvertUnitInput is the input for the convert_unit tool.
type ConvertUnitInput struct {
	Value     string  `json:"value" jsonschema:"required,Unit value such as 10mm, 2cm, 50%, related or 12lp"`
	Vertical  bool    `json:"vertical,omitempty" jsonschema:"Convert along the vertical axis (default: horizontal)"`
	Reference float64 `json:"reference,omitempty" jsonschema:"Reference length in pixels for percentages and alignment (default: the usable display length)"`
}

// ConvertUnitOutput is the output for the convert_unit tool.
type ConvertUnitOutput struct {
	Value  string `json:"value"`
	Pixels int    `json:"pixels"`
}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Active  string   `json:"active"`
	Layouts []string `json:"layouts"`
}

// SetLayoutInput is the input for the set_layout tool.
type SetLayoutInput struct {
	Name  string `json:"name,omitempty" jsonschema:"Layout to activate"`
	Cycle int    `json:"cycle,omitempty" jsonschema:"When name is empty, move this many layouts forward (negative: backward) in sorted order"`
}

// SetLayoutOutput is the output for the set_layout tool.
type SetLayoutOutput struct {
	Active string `json:"active"`
}
