// Package replay drives an engine from a recorded gesture script, for
// reproducing board edits outside the browser.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/inamate/whiteboard/backend-go/internal/collab"
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/engine"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingField  = errors.New("missing field")
)

// lastInserted may be used as a layer id to refer to the most recently
// inserted layer.
const lastInserted = "$last"

// Script is a recorded session.
type Script struct {
	Viewport *geom.Size `json:"viewport,omitempty"`
	Steps    []Step     `json:"steps"`
}

// Step is one recorded input.
type Step struct {
	Action    string               `json:"action"`
	Event     *engine.PointerEvent `json:"event,omitempty"`
	LayerID   string               `json:"layerId,omitempty"`
	LayerType *document.LayerType  `json:"layerType,omitempty"`
	Side      geom.Side            `json:"side,omitempty"`
	Color     string               `json:"color,omitempty"`
	Value     string               `json:"value,omitempty"`
	DeltaX    float64              `json:"deltaX,omitempty"`
	DeltaY    float64              `json:"deltaY,omitempty"`
	Selection []string             `json:"selection,omitempty"`
	Image     []byte               `json:"image,omitempty"` // base64 in JSON
}

// Load decodes a script.
func Load(r io.Reader) (*Script, error) {
	var s Script
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &s, nil
}

// Runner replays scripts against an engine.
type Runner struct {
	eng  *engine.Engine
	log  *slog.Logger
	last string
}

// NewRunner creates a runner for eng. A nil logger uses slog.Default.
func NewRunner(eng *engine.Engine, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{eng: eng, log: logger}
}

// Run executes every step in order and returns the batches they applied.
// It stops at the first failing step.
func (r *Runner) Run(s *Script) ([]collab.Batch, error) {
	if s.Viewport != nil {
		r.eng.SetViewport(s.Viewport.Width, s.Viewport.Height)
	}

	var batches []collab.Batch
	for i, step := range s.Steps {
		batch, err := r.step(step)
		if err != nil {
			return batches, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
		if batch == nil {
			continue
		}
		for _, op := range batch.Operations {
			if op.Type == collab.OpLayerInsert {
				r.last = op.LayerID
			}
		}
		r.log.Debug("step applied", "step", i, "action", step.Action, "seq", batch.Seq)
		batches = append(batches, *batch)
	}
	return batches, nil
}

func (r *Runner) layerID(step Step) string {
	if step.LayerID == lastInserted {
		return r.last
	}
	return step.LayerID
}

func (r *Runner) step(step Step) (*collab.Batch, error) {
	switch step.Action {
	case "wheel":
		r.eng.Wheel(step.DeltaX, step.DeltaY)
		return nil, nil
	case "startInserting":
		if step.LayerType == nil {
			return nil, fmt.Errorf("%w: layerType", ErrMissingField)
		}
		return nil, r.eng.StartInserting(*step.LayerType)
	case "startPencil":
		r.eng.StartPencil()
		return nil, nil
	case "cancel":
		r.eng.Cancel()
		return nil, nil
	case "select":
		ids := make([]string, len(step.Selection))
		for i, id := range step.Selection {
			ids[i] = r.layerID(Step{LayerID: id})
		}
		r.eng.SetSelection(ids)
		return nil, nil
	case "resizeHandlePointerDown":
		return nil, r.eng.ResizeHandlePointerDown(step.Side)
	case "deleteSelection":
		return r.eng.DeleteSelection()
	case "setFill":
		c, err := document.ParseColor(step.Color)
		if err != nil {
			return nil, err
		}
		return r.eng.SetFill(c)
	case "updateText":
		return r.eng.UpdateText(r.layerID(step), step.Value)
	case "bringToFront":
		return r.eng.BringToFront()
	case "sendToBack":
		return r.eng.SendToBack()
	case "undo":
		return r.eng.Undo()
	case "redo":
		return r.eng.Redo()
	case "dropImage":
		return r.eng.DropImage(step.Image)
	}

	if step.Event == nil {
		if !isPointerAction(step.Action) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, step.Action)
		}
		return nil, fmt.Errorf("%w: event", ErrMissingField)
	}
	ev := *step.Event

	switch step.Action {
	case "pointerDown":
		r.eng.PointerDown(ev)
		return nil, nil
	case "layerPointerDown":
		return nil, r.eng.LayerPointerDown(ev, r.layerID(step))
	case "pointerMove":
		return r.eng.PointerMove(ev)
	case "pointerUp":
		return r.eng.PointerUp(ev)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, step.Action)
	}
}

func isPointerAction(action string) bool {
	switch action {
	case "pointerDown", "layerPointerDown", "pointerMove", "pointerUp":
		return true
	}
	return false
}
