package engine

import (
	"encoding/json"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and paints them in order inside a group
// translated by the camera.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "path", "text", "note", "image", "draft", "net", "selection", "cursor"
	LayerID     string        `json:"layerId,omitempty"`     // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Width       float64       `json:"width,omitempty"`       // Local box size
	Height      float64       `json:"height,omitempty"`      //
	Path        []PathCommand `json:"path,omitempty"`        // Canvas2D path for rectangles and ellipses
	D           string        `json:"d,omitempty"`           // SVG path data for strokes
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Selection outline color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Text        string        `json:"text,omitempty"`        // Text and note content
	TextColor   string        `json:"textColor,omitempty"`   //
	FontSize    float64       `json:"fontSize,omitempty"`    //
	Href        string        `json:"href,omitempty"`        // Image source
	Bounds      *geom.Rect    `json:"bounds,omitempty"`      // Selection box and net
	Handles     []Handle      `json:"handles,omitempty"`     // Resize handles of the selection box
	Position    *geom.Point   `json:"position,omitempty"`    // Cursor position
}

// Handle is a resize handle of the selection box.
type Handle struct {
	Side geom.Side `json:"side"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// CompileDrawCommands generates a draw command buffer from a scene.
// Commands are in painter's order (back to front).
func CompileDrawCommands(sc *Scene) []DrawCommand {
	if sc == nil {
		return nil
	}

	commands := make([]DrawCommand, 0, len(sc.Nodes))
	for _, node := range sc.Nodes {
		commands = append(commands, compileNode(node))
	}
	return commands
}

// compileNode generates the draw command for a node.
func compileNode(node *SceneNode) DrawCommand {
	cmd := DrawCommand{
		LayerID:   node.ID,
		Transform: node.Transform.ToSlice(),
		Width:     node.Width,
		Height:    node.Height,
		Fill:      node.Fill,
		Stroke:    node.SelectionColor,
	}
	if node.SelectionColor != "" {
		cmd.StrokeWidth = 1
	}

	switch node.Type {
	case document.LayerTypeRectangle, document.LayerTypeEllipse:
		cmd.Op = "path"
		cmd.Path = node.Path
	case document.LayerTypePath:
		cmd.Op = "path"
		cmd.D = node.D
	case document.LayerTypeText:
		cmd.Op = "text"
		cmd.Text = node.Text
		cmd.TextColor = node.TextColor
		cmd.FontSize = node.FontSize
		cmd.Fill = ""
	case document.LayerTypeNote:
		cmd.Op = "note"
		cmd.Text = node.Text
		cmd.TextColor = node.TextColor
		cmd.FontSize = node.FontSize
	case document.LayerTypeImage:
		cmd.Op = "image"
		cmd.Href = node.Href
	}

	return cmd
}

// DraftCommand renders an in-progress pencil stroke in canvas space.
func DraftCommand(points []geom.StrokePoint, fill document.Color, size float64) DrawCommand {
	return DrawCommand{
		Op:   "draft",
		D:    strokePath(points, size),
		Fill: fill.CSS(),
	}
}

// SelectionBoxCommand outlines the selection bounds and places the eight
// resize handles on it.
func SelectionBoxCommand(bounds geom.Rect, color string, withHandles bool) DrawCommand {
	cmd := DrawCommand{
		Op:          "selection",
		Bounds:      &bounds,
		Stroke:      color,
		StrokeWidth: 1,
	}
	if !withHandles {
		return cmd
	}

	box := geom.TransformRect{
		Width:     bounds.Width,
		Height:    bounds.Height,
		Transform: geom.InitTransform(bounds.Min()),
	}
	for _, side := range geom.Sides {
		p, err := geom.HandlePosition(side, box)
		if err != nil {
			continue
		}
		cmd.Handles = append(cmd.Handles, Handle{Side: side, X: p.X, Y: p.Y})
	}
	return cmd
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geom.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
