package engine

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/inamate/whiteboard/backend-go/internal/collab"
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
	"github.com/inamate/whiteboard/backend-go/internal/typeid"
)

// DeleteSelection removes every selected layer.
func (e *Engine) DeleteSelection() (*collab.Batch, error) {
	ids, _ := e.selectedLayers()
	ops := make([]collab.Operation, 0, len(ids))
	for _, id := range ids {
		ops = append(ops, collab.DeleteLayer(id))
	}

	e.gesture = uuid.NewString()
	batch, err := e.apply(ops)
	if err != nil {
		return nil, err
	}
	e.setSelection(nil)
	return batch, nil
}

// SetFill recolors the selection and remembers c as the last used color.
func (e *Engine) SetFill(c document.Color) (*collab.Batch, error) {
	e.palette.LastUsed = &c

	ids, layers := e.selectedLayers()
	ops := make([]collab.Operation, 0, len(ids))
	for _, id := range ids {
		l := layers[id]
		fill := c
		l.Fill = &fill
		ops = append(ops, collab.UpdateLayer(id, l))
	}

	e.gesture = uuid.NewString()
	return e.apply(ops)
}

// UpdateText replaces the value of a text or note layer.
func (e *Engine) UpdateText(layerID, value string) (*collab.Batch, error) {
	var (
		l   document.Layer
		err error
	)
	e.state.View(func(b *document.Board) {
		l, err = b.Layer(layerID)
	})
	if err != nil {
		return nil, err
	}
	if l.Type != document.LayerTypeText && l.Type != document.LayerTypeNote {
		return nil, fmt.Errorf("%w: %s has no text", document.ErrInvalidLayer, l.Type)
	}
	if l.Value == value {
		return nil, nil
	}

	l.Value = value
	e.gesture = uuid.NewString()
	return e.apply([]collab.Operation{collab.UpdateLayer(layerID, l)})
}

// BringToFront moves the selection to the top of the paint order, keeping
// the relative order of the selected layers.
func (e *Engine) BringToFront() (*collab.Batch, error) {
	return e.reorder(func(order []string, indices []int) []collab.Operation {
		var ops []collab.Operation
		n, k := len(order), len(indices)
		for i := k - 1; i >= 0; i-- {
			ops = appendMove(ops, &order, indices[i], n-1-(k-1-i))
		}
		return ops
	})
}

// SendToBack moves the selection to the bottom of the paint order, keeping
// the relative order of the selected layers.
func (e *Engine) SendToBack() (*collab.Batch, error) {
	return e.reorder(func(order []string, indices []int) []collab.Operation {
		var ops []collab.Operation
		for i, from := range indices {
			ops = appendMove(ops, &order, from, i)
		}
		return ops
	})
}

// reorder collects the paint-order indices of the selected layers and
// applies the moves plan derives from them.
func (e *Engine) reorder(plan func(order []string, indices []int) []collab.Operation) (*collab.Batch, error) {
	var order []string
	e.state.View(func(b *document.Board) {
		order = slices.Clone(b.LayerIDs)
	})

	var indices []int
	for i, id := range order {
		if e.isSelected(id) {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return nil, nil
	}

	e.gesture = uuid.NewString()
	return e.apply(plan(order, indices))
}

// appendMove records a move of the layer at from to to, applying it to order
// so later moves see the updated positions. No-op moves are skipped.
func appendMove(ops []collab.Operation, order *[]string, from, to int) []collab.Operation {
	if from == to {
		return ops
	}
	ids := *order
	id := ids[from]
	ids = slices.Delete(ids, from, from+1)
	ids = slices.Insert(ids, to, id)
	*order = ids
	return append(ops, collab.MoveLayer(id, to))
}

// DropImage inserts a dropped image at its natural size, centered in the
// viewport, and selects it.
func (e *Engine) DropImage(data []byte) (*collab.Batch, error) {
	img, err := e.prober.Probe(data)
	if err != nil {
		return nil, fmt.Errorf("drop image: %w", err)
	}
	if err := e.checkLayerLimit(); err != nil {
		return nil, err
	}

	origin := geom.Point{
		X: e.viewport.Width/2 - img.Width/2 - e.camera.X,
		Y: e.viewport.Height/2 - img.Height/2 - e.camera.Y,
	}
	layer := document.NewImageLayer(origin, img.Width, img.Height, img.DataURL)

	id := typeid.NewLayerID()
	e.gesture = uuid.NewString()
	batch, err := e.apply([]collab.Operation{collab.InsertLayer(id, layer)})
	if err != nil {
		return nil, err
	}
	e.log.Info("image dropped", "layer", id, "type", img.ContentType, "width", img.Width, "height", img.Height)

	e.setSelection([]string{id})
	e.canvas = CanvasState{Mode: ModeNone}
	return batch, nil
}
