package engine

import (
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

// Scene is the render-ready state of a board: every layer resolved into
// paint-order nodes with their selection colors.
type Scene struct {
	Nodes []*SceneNode
}

// SceneNode is a resolved layer ready for rendering.
type SceneNode struct {
	ID        string
	Type      document.LayerType
	Transform geom.Matrix2D
	Width     float64
	Height    float64

	// Render data (resolved from the layer)
	Path      []PathCommand // rectangles and ellipses
	D         string        // outlined freehand strokes
	Fill      string
	TextColor string
	Text      string
	FontSize  float64
	Href      string

	// Outline color when some connection selects the layer
	SelectionColor string

	// Hit testing
	Bounds geom.Rect // axis-aligned bounding box in canvas space
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], etc.
type PathCommand []interface{}

// BuildScene resolves every layer of the board in paint order.
// selectionColors maps layer ids to the outline color of whoever selects them.
// pencilSize is used for path layers that do not carry their own size.
func BuildScene(board *document.Board, selectionColors map[string]string, pencilSize float64) *Scene {
	sc := &Scene{
		Nodes: make([]*SceneNode, 0, len(board.LayerIDs)),
	}

	for _, id := range board.LayerIDs {
		layer, ok := board.Layers[id]
		if !ok {
			continue
		}
		node := buildNode(id, layer, pencilSize)
		node.SelectionColor = selectionColors[id]
		sc.Nodes = append(sc.Nodes, node)
	}

	return sc
}

// HitTest returns the topmost layer under p, or "". Node bounds reject
// most misses before the layer's own transform is inverted.
func (sc *Scene) HitTest(board *document.Board, p geom.Point) string {
	for i := len(sc.Nodes) - 1; i >= 0; i-- {
		node := sc.Nodes[i]
		if !node.Bounds.Contains(p.X, p.Y) {
			continue
		}
		if l, ok := board.Layers[node.ID]; ok && l.Contains(p) {
			return node.ID
		}
	}
	return ""
}

// buildNode resolves one layer.
func buildNode(id string, layer document.Layer, pencilSize float64) *SceneNode {
	node := &SceneNode{
		ID:        id,
		Type:      layer.Type,
		Transform: layer.Transform,
		Width:     layer.Width,
		Height:    layer.Height,
		Bounds:    layer.TransformRect().Bounds(),
	}
	if layer.Fill != nil {
		node.Fill = layer.Fill.CSS()
	}

	switch layer.Type {
	case document.LayerTypeRectangle:
		node.Path = generateRectPath(layer.Width, layer.Height)

	case document.LayerTypeEllipse:
		node.Path = generateEllipsePath(layer.Width, layer.Height)

	case document.LayerTypePath:
		size := layer.Size
		if size <= 0 {
			size = pencilSize
		}
		node.D = strokePath(layer.Points, size)
		if node.Fill == "" {
			node.Fill = document.Black.CSS()
		}

	case document.LayerTypeText:
		node.Text = layer.Value
		node.FontSize = layer.FontSize()
		node.TextColor = node.Fill
		if node.TextColor == "" {
			node.TextColor = document.Black.CSS()
		}

	case document.LayerTypeNote:
		node.Text = layer.Value
		node.FontSize = layer.FontSize()
		node.TextColor = document.Black.CSS()
		if layer.Fill != nil {
			node.TextColor = layer.Fill.ContrastingText()
		}

	case document.LayerTypeImage:
		node.Href = layer.Value
	}

	return node
}

// strokePath outlines pencil samples and returns the SVG path data.
func strokePath(points []geom.StrokePoint, size float64) string {
	return geom.StrokeToSVGPath(geom.OutlineStroke(points, geom.DefaultStrokeOptions(size)))
}

// generateRectPath generates path commands for a rectangle.
func generateRectPath(w, h float64) []PathCommand {
	return []PathCommand{
		{"M", 0.0, 0.0},
		{"L", w, 0.0},
		{"L", w, h},
		{"L", 0.0, h},
		{"Z"},
	}
}

// generateEllipsePath generates path commands for the ellipse inscribed in
// the w x h box using bezier curves.
func generateEllipsePath(w, h float64) []PathCommand {
	rx, ry := w/2, h/2
	cx, cy := rx, ry

	// Magic number for bezier approximation of a circle/ellipse
	// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	// Four bezier curves to approximate an ellipse
	return []PathCommand{
		{"M", cx + rx, cy},
		{"C", cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		{"C", cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		{"C", cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		{"C", cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		{"Z"},
	}
}
