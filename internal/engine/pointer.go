package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/inamate/whiteboard/backend-go/internal/collab"
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
	"github.com/inamate/whiteboard/backend-go/internal/typeid"
)

// PointerDown handles a press on the empty canvas.
func (e *Engine) PointerDown(ev PointerEvent) {
	point := e.camera.ToCanvas(ev.ClientX, ev.ClientY)
	e.gesture = uuid.NewString()

	switch e.canvas.Mode {
	case ModeInserting:
		e.canvas.Origin = pointPtr(point)
		e.canvas.Current = pointPtr(point)
		return
	case ModePencil:
		e.me.PencilDraft = []geom.StrokePoint{geom.NewStrokePoint(point.X, point.Y, ev.Pressure)}
		e.publishPresence()
		return
	}

	e.canvas = CanvasState{Mode: ModePressing, Origin: pointPtr(point)}
}

// LayerPointerDown handles a press on a layer: it selects the layer unless
// it already is selected and starts translating the selection.
func (e *Engine) LayerPointerDown(ev PointerEvent, layerID string) error {
	if e.canvas.Mode == ModePencil || e.canvas.Mode == ModeInserting {
		return nil
	}

	var err error
	e.state.View(func(b *document.Board) {
		_, err = b.Layer(layerID)
	})
	if err != nil {
		return err
	}

	e.gesture = uuid.NewString()
	e.state.Pause()

	point := e.camera.ToCanvas(ev.ClientX, ev.ClientY)
	if !e.isSelected(layerID) {
		e.setSelection([]string{layerID})
	}
	e.canvas = CanvasState{Mode: ModeTranslating, Current: pointPtr(point)}
	return nil
}

// ResizeHandlePointerDown starts resizing the selection from the given
// handle. The pre-drag geometry is captured once here and every following
// move resizes from it.
func (e *Engine) ResizeHandlePointerDown(corner geom.Side) error {
	if !corner.Valid() {
		return fmt.Errorf("%w: %d", geom.ErrInvalidSide, uint8(corner))
	}
	ids, layers := e.selectedLayers()
	if len(ids) == 0 {
		return ErrNoSelection
	}

	var bounds geom.Rect
	e.state.View(func(b *document.Board) {
		bounds, _ = b.SelectionBounds(ids)
	})

	e.gesture = uuid.NewString()
	e.state.Pause()

	e.snapshot = make(map[string]geom.TransformRect, len(ids))
	for _, id := range ids {
		e.snapshot[id] = layers[id].TransformRect()
	}
	e.groupStart = geom.TransformRect{
		Width:     bounds.Width,
		Height:    bounds.Height,
		Transform: geom.InitTransform(bounds.Min()),
	}
	e.canvas = CanvasState{Mode: ModeResizing, InitialBounds: &bounds, Corner: corner}
	return nil
}

// PointerMove advances the current gesture. It returns the batch the move
// applied, if any.
func (e *Engine) PointerMove(ev PointerEvent) (*collab.Batch, error) {
	current := e.camera.ToCanvas(ev.ClientX, ev.ClientY)
	e.me.Cursor = pointPtr(current)
	defer e.publishPresence()

	switch e.canvas.Mode {
	case ModePressing:
		if e.canvas.Origin != nil && manhattan(*e.canvas.Origin, current) > e.cfg.SelectionNetThreshold {
			e.canvas = CanvasState{Mode: ModeSelectionNet, Origin: e.canvas.Origin, Current: pointPtr(current)}
		}

	case ModeSelectionNet:
		e.canvas.Current = pointPtr(current)
		var ids []string
		e.state.View(func(b *document.Board) {
			ids = b.IntersectingLayers(*e.canvas.Origin, current)
		})
		e.me.Selection = ids

	case ModeTranslating:
		return e.translateSelection(current)

	case ModeResizing:
		return e.resizeSelection(current, ev.resizeOptions())

	case ModeInserting:
		if ev.primaryDown() && e.canvas.Origin != nil {
			e.canvas.Current = pointPtr(current)
		}

	case ModePencil:
		if ev.primaryDown() {
			e.continueDrawing(current, ev.Pressure)
		}
	}

	return nil, nil
}

// PointerUp finishes the current gesture.
func (e *Engine) PointerUp(ev PointerEvent) (*collab.Batch, error) {
	point := e.camera.ToCanvas(ev.ClientX, ev.ClientY)
	defer e.publishPresence()
	defer e.state.Resume()
	e.snapshot = nil

	switch e.canvas.Mode {
	case ModeNone, ModePressing:
		e.canvas = CanvasState{Mode: ModeNone}
		return e.unselectLayers()

	case ModeInserting:
		return e.insertLayer(point)

	case ModePencil:
		return e.insertPath()

	default:
		e.canvas = CanvasState{Mode: ModeNone}
		return nil, nil
	}
}

// PointerLeave hides the local cursor from the others.
func (e *Engine) PointerLeave() {
	e.me.Cursor = nil
	e.publishPresence()
}

func (e *Engine) isSelected(id string) bool {
	for _, sel := range e.me.Selection {
		if sel == id {
			return true
		}
	}
	return false
}

// translateSelection moves every selected layer by the pointer delta in
// canvas space.
func (e *Engine) translateSelection(point geom.Point) (*collab.Batch, error) {
	if e.canvas.Current == nil {
		return nil, nil
	}
	offset := point.Sub(*e.canvas.Current)
	e.canvas.Current = pointPtr(point)
	if offset.X == 0 && offset.Y == 0 {
		return nil, nil
	}

	ids, layers := e.selectedLayers()
	ops := make([]collab.Operation, 0, len(ids))
	for _, id := range ids {
		l := layers[id]
		l.Transform = l.Transform.Translated(offset.X, offset.Y)
		p := geom.TransformedRectPoint(l.Width, l.Height, l.Transform)
		l.X, l.Y = p.X, p.Y
		ops = append(ops, collab.UpdateLayer(id, l))
	}
	return e.apply(ops)
}

// resizeSelection resizes from the geometry captured by
// ResizeHandlePointerDown. A single layer is resized directly; a group is
// scaled around the pivot of its pre-drag bounding box.
func (e *Engine) resizeSelection(point geom.Point, opts geom.ResizeOptions) (*collab.Batch, error) {
	if len(e.snapshot) == 0 {
		return nil, nil
	}
	ids, layers := e.selectedLayers()

	var geometries map[string]geom.Geometry
	if len(e.snapshot) == 1 {
		for id, prev := range e.snapshot {
			rect, err := geom.ResizeRect(e.canvas.Corner, point, prev, opts)
			if err != nil {
				return nil, fmt.Errorf("resize %s: %w", id, err)
			}
			geometries = map[string]geom.Geometry{id: geom.GeometryOf(rect)}
		}
	} else {
		var err error
		geometries, err = geom.ResizeGroup(e.canvas.Corner, point, e.groupStart, e.snapshot, opts)
		if err != nil {
			return nil, fmt.Errorf("resize group: %w", err)
		}
	}

	ops := make([]collab.Operation, 0, len(geometries))
	for _, id := range ids {
		g, ok := geometries[id]
		if !ok {
			continue
		}
		ops = append(ops, collab.UpdateLayer(id, layers[id].WithGeometry(g)))
	}
	return e.apply(ops)
}

// continueDrawing appends a pencil sample. A sample on top of a lone first
// sample is dropped so a click does not produce a zero-length stroke.
func (e *Engine) continueDrawing(point geom.Point, pressure float64) {
	draft := e.me.PencilDraft
	if draft == nil {
		return
	}
	if len(draft) == 1 && draft[0].X() == point.X && draft[0].Y() == point.Y {
		return
	}
	e.me.PencilDraft = append(draft, geom.NewStrokePoint(point.X, point.Y, pressure))
}

// insertPath turns the pencil draft into a path layer. Strokes with fewer
// than two samples are discarded. The engine stays in pencil mode.
func (e *Engine) insertPath() (*collab.Batch, error) {
	draft := e.me.PencilDraft
	e.me.PencilDraft = nil
	if len(draft) < 2 {
		return nil, nil
	}
	if err := e.checkLayerLimit(); err != nil {
		return nil, err
	}

	layer, err := document.NewPathLayer(draft, e.palette.Pen, e.palette.PencilSize)
	if err != nil {
		return nil, err
	}
	id := typeid.NewLayerID()
	batch, err := e.apply([]collab.Operation{collab.InsertLayer(id, layer)})
	if err != nil {
		return nil, err
	}
	e.log.Debug("path inserted", "layer", id, "points", len(layer.Points))
	return batch, nil
}

// insertLayer places the armed layer type over the drag from the press
// point to point. Drags shorter than the insert threshold keep the engine
// in inserting mode without inserting anything.
func (e *Engine) insertLayer(point geom.Point) (*collab.Batch, error) {
	origin := e.canvas.Origin
	e.canvas.Origin, e.canvas.Current = nil, nil
	if origin == nil || manhattan(*origin, point) < e.cfg.InsertLayerThreshold {
		return nil, nil
	}
	if err := e.checkLayerLimit(); err != nil {
		return nil, err
	}

	t := e.canvas.LayerType
	fill := e.palette.Shape
	if t == document.LayerTypeText {
		fill = e.palette.Text
	}
	layer, err := document.NewShapeLayer(t, *origin, point, fill)
	if err != nil {
		return nil, err
	}

	id := typeid.NewLayerID()
	batch, err := e.apply([]collab.Operation{collab.InsertLayer(id, layer)})
	if err != nil {
		return nil, err
	}
	e.log.Debug("layer inserted", "layer", id, "type", t)

	e.me.Selection = []string{id}
	e.canvas = CanvasState{Mode: ModeNone}
	return batch, nil
}

// unselectLayers clears the selection and removes text layers left empty.
func (e *Engine) unselectLayers() (*collab.Batch, error) {
	e.me.Selection = nil

	var empty []string
	e.state.View(func(b *document.Board) {
		empty = b.EmptyTextLayers()
	})
	ops := make([]collab.Operation, 0, len(empty))
	for _, id := range empty {
		ops = append(ops, collab.DeleteLayer(id))
	}
	return e.apply(ops)
}
