package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/inamate/whiteboard/backend-go/internal/asset"
	"github.com/inamate/whiteboard/backend-go/internal/collab"
	"github.com/inamate/whiteboard/backend-go/internal/config"
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
	"github.com/inamate/whiteboard/backend-go/internal/typeid"
)

var (
	ErrLayerLimit  = errors.New("layer limit reached")
	ErrNoSelection = errors.New("nothing selected")
)

// Engine owns the board, the local user's canvas state and the presence of
// everyone else on the board. The frontend forwards pointer and keyboard
// input to it and mirrors the returned batches into the shared store.
//
// An Engine is not safe for concurrent use; the browser drives it from a
// single thread.
type Engine struct {
	cfg *config.Config
	log *slog.Logger

	// Document state
	state  *collab.BoardState
	prober *asset.Prober

	// Collaboration
	presence *collab.PresenceManager
	self     int
	me       collab.Presence

	// Local canvas state
	canvas   CanvasState
	camera   Camera
	viewport geom.Size
	palette  Palette

	// Gesture state, reset on every pointer down
	gesture    string
	snapshot   map[string]geom.TransformRect
	groupStart geom.TransformRect
}

// NewEngine creates an engine with an empty board. A nil cfg uses
// config.Default and a nil logger uses slog.Default.
func NewEngine(cfg *config.Config, logger *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		cfg:      cfg,
		log:      logger,
		state:    collab.NewBoardState(document.NewBoard(typeid.NewBoardID())),
		prober:   asset.NewProber(cfg.MaxImageBytes),
		presence: collab.NewPresenceManager(),
		palette:  paletteFrom(cfg),
	}
	e.publishPresence()
	return e
}

// --- Commands (frontend → backend) ---

// LoadBoard replaces the board with one decoded from JSON. Selection,
// history and canvas state are reset.
func (e *Engine) LoadBoard(data []byte) error {
	var board document.Board
	if err := json.Unmarshal(data, &board); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}
	if board.Layers == nil {
		board.Layers = map[string]document.Layer{}
	}
	if err := board.Validate(); err != nil {
		return err
	}
	e.reset(&board)
	e.log.Info("board loaded", "board", board.ID, "layers", board.Len())
	return nil
}

// LoadSampleBoard loads the built-in sample board.
func (e *Engine) LoadSampleBoard(boardID string) {
	e.reset(document.NewSampleBoard(boardID))
}

func (e *Engine) reset(board *document.Board) {
	e.state = collab.NewBoardState(board)
	e.canvas = CanvasState{Mode: ModeNone}
	e.me.Selection = nil
	e.me.PencilDraft = nil
	e.snapshot = nil
	e.publishPresence()
}

// SetConnectionID sets the id the local user is known by to the others.
func (e *Engine) SetConnectionID(id int) {
	if id == e.self {
		return
	}
	e.presence.Remove(e.self)
	e.self = id
	e.publishPresence()
}

// SetViewport records the canvas element size, used to center dropped
// images.
func (e *Engine) SetViewport(width, height float64) {
	e.viewport = geom.Size{Width: width, Height: height}
}

// Wheel pans the camera by the wheel delta.
func (e *Engine) Wheel(deltaX, deltaY float64) {
	e.camera.X -= deltaX
	e.camera.Y -= deltaY
}

// StartInserting arms the insertion of a layer of type t on the next drag.
func (e *Engine) StartInserting(t document.LayerType) error {
	if !t.Insertable() {
		return fmt.Errorf("%w: %s cannot be inserted", document.ErrInvalidLayer, t)
	}
	e.canvas = CanvasState{Mode: ModeInserting, LayerType: t}
	return nil
}

// StartPencil switches to freehand drawing.
func (e *Engine) StartPencil() {
	e.canvas = CanvasState{Mode: ModePencil}
}

// StartTyping marks that the user is editing the text of the selection.
func (e *Engine) StartTyping() {
	e.canvas = CanvasState{Mode: ModeTyping}
}

// Cancel abandons the current gesture and returns to the default mode.
func (e *Engine) Cancel() {
	e.state.Resume()
	e.snapshot = nil
	e.me.PencilDraft = nil
	e.canvas = CanvasState{Mode: ModeNone}
	e.publishPresence()
}

// SetPalette replaces the drawing settings.
func (e *Engine) SetPalette(p Palette) {
	if p.PencilSize <= 0 {
		p.PencilSize = e.cfg.PencilSize
	}
	e.palette = p
	e.publishPresence()
}

// SetSelection selects the given layers. Unknown ids are dropped.
func (e *Engine) SetSelection(ids []string) {
	e.me.Selection = slices.Clone(ids)
	e.pruneSelection()
	e.publishPresence()
}

// SetRemotePresence stores the presence of another connection.
func (e *Engine) SetRemotePresence(connectionID int, p collab.Presence) {
	if connectionID == e.self {
		return
	}
	e.presence.Update(connectionID, &p)
}

// RemoveRemotePresence forgets a connection that left the board.
func (e *Engine) RemoveRemotePresence(connectionID int) {
	if connectionID == e.self {
		return
	}
	e.presence.Remove(connectionID)
}

// ApplyRemote applies a batch produced by another connection. It does not
// enter the local undo history.
func (e *Engine) ApplyRemote(batch collab.Batch) error {
	if batch.ID != "" {
		if err := typeid.Validate(batch.ID, typeid.PrefixBatch); err != nil {
			e.log.Warn("remote batch rejected", "batch", batch.ID, "error", err)
			return fmt.Errorf("%w: %w", collab.ErrInvalidOperation, err)
		}
	}
	if _, err := e.state.ApplyRemote(batch.Gesture, batch.Operations); err != nil {
		e.log.Warn("remote batch rejected", "batch", batch.ID, "error", err)
		return err
	}
	e.pruneSelection()
	return nil
}

// Undo reverts the latest local change.
func (e *Engine) Undo() (*collab.Batch, error) {
	batch, err := e.state.Undo()
	if err != nil {
		return nil, err
	}
	e.pruneSelection()
	return &batch, nil
}

// Redo reapplies the latest undone change.
func (e *Engine) Redo() (*collab.Batch, error) {
	batch, err := e.state.Redo()
	if err != nil {
		return nil, err
	}
	e.pruneSelection()
	return &batch, nil
}

// --- Queries (frontend ← backend) ---

// Render returns the draw commands for the current frame, back to front:
// layers, other connections' pencil drafts, the local draft, the selection
// box or selection net, then other connections' cursors.
func (e *Engine) Render() []DrawCommand {
	board := e.state.Board()
	colors := e.presence.SelectionColors(e.self, e.cfg.SelfSelectionColor)
	commands := CompileDrawCommands(BuildScene(board, colors, e.palette.PencilSize))

	others := e.others()
	for _, id := range others.ids {
		p := others.presences[id]
		if len(p.PencilDraft) == 0 {
			continue
		}
		fill := document.Black
		if p.PenColor != nil {
			fill = *p.PenColor
		}
		size := p.PenSize
		if size <= 0 {
			size = e.palette.PencilSize
		}
		commands = append(commands, DraftCommand(p.PencilDraft, fill, size))
	}

	if len(e.me.PencilDraft) > 0 {
		commands = append(commands, DraftCommand(e.me.PencilDraft, e.palette.Pen, e.palette.PencilSize))
	}

	if e.canvas.Mode == ModeSelectionNet && e.canvas.Origin != nil && e.canvas.Current != nil {
		net := geom.RectFromPoints(*e.canvas.Origin, *e.canvas.Current)
		commands = append(commands, DrawCommand{
			Op:          "net",
			Bounds:      &net,
			Stroke:      e.cfg.SelfSelectionColor,
			StrokeWidth: 1,
		})
	} else if bounds, ok := board.SelectionBounds(e.me.Selection); ok {
		withHandles := e.canvas.Mode != ModeTranslating
		commands = append(commands, SelectionBoxCommand(bounds, e.cfg.SelfSelectionColor, withHandles))
	}

	for _, id := range others.ids {
		p := others.presences[id]
		if p.Cursor == nil {
			continue
		}
		pos := *p.Cursor
		commands = append(commands, DrawCommand{
			Op:       "cursor",
			Position: &pos,
			Fill:     collab.ConnectionColor(id),
			Text:     fmt.Sprintf("User %d", id),
		})
	}

	return commands
}

// RenderJSON returns Render serialized for the frontend.
func (e *Engine) RenderJSON() string {
	result, err := DrawCommandsToJSON(e.Render())
	if err != nil {
		e.log.Error("marshal draw commands", "error", err)
	}
	return result
}

type presenceSet struct {
	ids       []int
	presences map[int]*collab.Presence
}

func (e *Engine) others() presenceSet {
	all := e.presence.GetAll()
	delete(all, e.self)
	return presenceSet{ids: slices.Sorted(maps.Keys(all)), presences: all}
}

// HitTest returns the topmost layer at the canvas point, or "".
func (e *Engine) HitTest(x, y float64) string {
	var id string
	e.state.View(func(b *document.Board) {
		id = BuildScene(b, nil, e.palette.PencilSize).HitTest(b, geom.Point{X: x, Y: y})
	})
	return id
}

// SelectionBounds returns the bounding box of the selection; false when
// nothing is selected.
func (e *Engine) SelectionBounds() (geom.Rect, bool) {
	var (
		bounds geom.Rect
		ok     bool
	)
	e.state.View(func(b *document.Board) {
		bounds, ok = b.SelectionBounds(e.me.Selection)
	})
	return bounds, ok
}

// Selection returns the ids of the selected layers in selection order.
func (e *Engine) Selection() []string {
	return slices.Clone(e.me.Selection)
}

// CanvasState returns the pointer state machine.
func (e *Engine) CanvasState() CanvasState {
	return e.canvas
}

// Camera returns the pan offset.
func (e *Engine) Camera() Camera {
	return e.camera
}

// Palette returns the drawing settings.
func (e *Engine) Palette() Palette {
	return e.palette
}

// Board returns a copy of the board.
func (e *Engine) Board() *document.Board {
	return e.state.Board()
}

// Presence returns the local presence for broadcasting to the others.
func (e *Engine) Presence() collab.Presence {
	p, ok := e.presence.Get(e.self)
	if !ok {
		return collab.Presence{}
	}
	return *p
}

// CanUndo reports whether there is a local change to undo.
func (e *Engine) CanUndo() bool { return e.state.CanUndo() }

// CanRedo reports whether there is an undone change to redo.
func (e *Engine) CanRedo() bool { return e.state.CanRedo() }

// --- Internal helpers ---

// apply applies ops as one batch tagged with the current gesture. An empty
// ops list is not an error and yields a nil batch.
func (e *Engine) apply(ops []collab.Operation) (*collab.Batch, error) {
	if len(ops) == 0 {
		return nil, nil
	}
	batch, err := e.state.Apply(e.gesture, ops)
	if err != nil {
		e.log.Warn("batch rejected", "gesture", e.gesture, "operations", len(ops), "error", err)
		return nil, err
	}
	e.log.Debug("batch applied", "batch", batch.ID, "seq", batch.Seq, "operations", len(batch.Operations))
	return &batch, nil
}

func (e *Engine) setSelection(ids []string) {
	e.me.Selection = ids
	e.publishPresence()
}

// pruneSelection drops selected ids whose layers no longer exist.
func (e *Engine) pruneSelection() {
	if len(e.me.Selection) == 0 {
		return
	}
	var kept []string
	e.state.View(func(b *document.Board) {
		for _, id := range e.me.Selection {
			if _, ok := b.Layers[id]; ok {
				kept = append(kept, id)
			}
		}
	})
	e.setSelection(kept)
}

func (e *Engine) publishPresence() {
	p := collab.Presence{
		Selection:   slices.Clone(e.me.Selection),
		PencilDraft: slices.Clone(e.me.PencilDraft),
		PenSize:     e.palette.PencilSize,
	}
	if e.me.Cursor != nil {
		p.Cursor = pointPtr(*e.me.Cursor)
	}
	pen := e.palette.Pen
	p.PenColor = &pen
	e.presence.Update(e.self, &p)
}

// selectedLayers returns the selected layers that exist, in selection order.
func (e *Engine) selectedLayers() ([]string, map[string]document.Layer) {
	ids := make([]string, 0, len(e.me.Selection))
	layers := make(map[string]document.Layer, len(e.me.Selection))
	e.state.View(func(b *document.Board) {
		for _, id := range e.me.Selection {
			if l, ok := b.Layers[id]; ok {
				ids = append(ids, id)
				layers[id] = l.Clone()
			}
		}
	})
	return ids, layers
}

func (e *Engine) checkLayerLimit() error {
	var n int
	e.state.View(func(b *document.Board) { n = b.Len() })
	if n >= e.cfg.MaxLayers {
		return fmt.Errorf("%w: %d layers", ErrLayerLimit, n)
	}
	return nil
}
