package document

import (
	"github.com/inamate/whiteboard/backend-go/internal/geom"
	"github.com/inamate/whiteboard/backend-go/internal/typeid"
)

// NewSampleBoard returns a small board with one layer of every kind the
// playground can draw without assets.
func NewSampleBoard(boardID string) *Board {
	board := NewBoard(boardID)

	add := func(l Layer) {
		id := typeid.NewLayerID()
		board.LayerIDs = append(board.LayerIDs, id)
		board.Layers[id] = l
	}

	rect, _ := NewShapeLayer(LayerTypeRectangle,
		geom.Point{X: 120, Y: 120}, geom.Point{X: 320, Y: 240}, MustParseColor("#e94560"))
	add(rect)

	ellipse, _ := NewShapeLayer(LayerTypeEllipse,
		geom.Point{X: 400, Y: 140}, geom.Point{X: 520, Y: 260}, MustParseColor("#0f3460"))
	add(ellipse)

	note, _ := NewShapeLayer(LayerTypeNote,
		geom.Point{X: 600, Y: 120}, geom.Point{X: 800, Y: 320}, MustParseColor("#fde68a"))
	note.Value = "Drag a handle past the opposite edge to flip me"
	add(note)

	text, _ := NewShapeLayer(LayerTypeText,
		geom.Point{X: 120, Y: 320}, geom.Point{X: 420, Y: 380}, Black)
	text.Value = "Whiteboard"
	add(text)

	// mirrored rectangle
	flipped, _ := NewShapeLayer(LayerTypeRectangle,
		geom.Point{X: 460, Y: 320}, geom.Point{X: 560, Y: 380}, MustParseColor("#16a34a"))
	flipped.Transform = geom.Scale(-1, 1).Translated(flipped.X+flipped.Width, flipped.Y)
	add(flipped)

	var stroke []geom.StrokePoint
	for i := 0; i <= 12; i++ {
		x := 120 + float64(i)*20
		y := 460 + float64((i%4)*(4-i%4))*8
		stroke = append(stroke, geom.NewStrokePoint(x, y, 0.5))
	}
	path, _ := NewPathLayer(stroke, Black, 8)
	add(path)

	return board
}
