package collab

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/typeid"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNothingToRedo    = errors.New("nothing to redo")
)

// historyEntry is one undoable step. inverse restores the state before
// forward was applied.
type historyEntry struct {
	forward []Operation
	inverse []Operation
}

// BoardState holds the authoritative board for a room
type BoardState struct {
	mu     sync.RWMutex
	board  *document.Board
	seq    int64
	opLog  []Batch // applied batches, in order
	undo   []historyEntry
	redo   []historyEntry
	paused *historyEntry // open entry while history is paused
}

// NewBoardState creates a new board state from an initial board
func NewBoardState(board *document.Board) *BoardState {
	return &BoardState{
		board: board.Clone(),
		opLog: make([]Batch, 0),
	}
}

// Board returns a copy of the current board
func (bs *BoardState) Board() *document.Board {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.board.Clone()
}

// View calls fn with the current board. fn must not keep or mutate it.
func (bs *BoardState) View(fn func(*document.Board)) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	fn(bs.board)
}

// Seq returns the sequence number of the last applied batch.
func (bs *BoardState) Seq() int64 {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.seq
}

// Log returns the applied batches.
func (bs *BoardState) Log() []Batch {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return slices.Clone(bs.opLog)
}

// Apply applies every operation or none of them and returns the recorded
// batch. gesture correlates the batch with the pointer gesture that caused
// it and may be empty.
func (bs *BoardState) Apply(gesture string, ops []Operation) (Batch, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	batch, inverse, err := bs.applyLocked(gesture, ops)
	if err != nil {
		return Batch{}, err
	}
	bs.record(batch.Operations, inverse)
	return batch, nil
}

// ApplyRemote applies a batch received from another connection. It is
// logged like any other batch but never enters the undo history.
func (bs *BoardState) ApplyRemote(gesture string, ops []Operation) (Batch, error) {
	for i, op := range ops {
		if op.ID == "" {
			continue
		}
		if err := typeid.Validate(op.ID, typeid.PrefixOp); err != nil {
			return Batch{}, fmt.Errorf("%w: operation %d: %w", ErrInvalidOperation, i, err)
		}
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	batch, _, err := bs.applyLocked(gesture, ops)
	return batch, err
}

// applyLocked applies ops on a copy and swaps it in on success (caller must hold lock)
func (bs *BoardState) applyLocked(gesture string, ops []Operation) (Batch, []Operation, error) {
	next := bs.board.Clone()
	applied := make([]Operation, 0, len(ops))
	inverse := make([]Operation, 0, len(ops))
	now := GetServerTimestamp()

	for i, op := range ops {
		if op.ID == "" {
			op.ID = typeid.NewOpID()
		}
		op.Timestamp = now

		inv, err := applyOperation(next, &op)
		if err != nil {
			return Batch{}, nil, fmt.Errorf("operation %d (%s %s): %w", i, op.Type, op.LayerID, err)
		}
		applied = append(applied, op)
		inverse = append(inverse, inv)
	}
	slices.Reverse(inverse)

	bs.board = next
	bs.seq++
	batch := Batch{
		ID:         typeid.NewBatchID(),
		Seq:        bs.seq,
		Gesture:    gesture,
		Operations: applied,
	}
	bs.opLog = append(bs.opLog, batch)

	return batch, inverse, nil
}

func (bs *BoardState) record(forward, inverse []Operation) {
	if len(forward) == 0 {
		return
	}
	bs.redo = nil

	if bs.paused != nil {
		bs.paused.forward = append(bs.paused.forward, forward...)
		bs.paused.inverse = append(slices.Clone(inverse), bs.paused.inverse...)
		return
	}
	bs.undo = append(bs.undo, historyEntry{forward: forward, inverse: inverse})
}

// Pause starts coalescing every following batch into a single history
// entry, so a whole drag undoes in one step.
func (bs *BoardState) Pause() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.paused == nil {
		bs.paused = &historyEntry{}
	}
}

// Resume closes the entry opened by Pause.
func (bs *BoardState) Resume() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.resumeLocked()
}

func (bs *BoardState) resumeLocked() {
	if bs.paused == nil {
		return
	}
	if len(bs.paused.forward) > 0 {
		bs.undo = append(bs.undo, *bs.paused)
	}
	bs.paused = nil
}

// CanUndo reports whether Undo has anything to revert.
func (bs *BoardState) CanUndo() bool {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return len(bs.undo) > 0 || (bs.paused != nil && len(bs.paused.forward) > 0)
}

// CanRedo reports whether Redo has anything to reapply.
func (bs *BoardState) CanRedo() bool {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return len(bs.redo) > 0
}

// Undo reverts the latest history entry and returns the batch it applied.
// Entries whose inverse no longer applies, because a remote batch removed
// or replaced what they touched, are dropped and the next one is tried.
func (bs *BoardState) Undo() (Batch, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.resumeLocked()
	var lastErr error
	for len(bs.undo) > 0 {
		entry := bs.undo[len(bs.undo)-1]
		bs.undo = bs.undo[:len(bs.undo)-1]

		batch, _, err := bs.applyLocked("", clearIDs(entry.inverse))
		if err != nil {
			lastErr = err
			continue
		}
		bs.redo = append(bs.redo, entry)
		return batch, nil
	}
	if lastErr != nil {
		return Batch{}, fmt.Errorf("undo: %w: %w", ErrNothingToUndo, lastErr)
	}
	return Batch{}, ErrNothingToUndo
}

// Redo reapplies the latest undone entry, dropping entries that no longer
// apply the same way Undo does.
func (bs *BoardState) Redo() (Batch, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	var lastErr error
	for len(bs.redo) > 0 {
		entry := bs.redo[len(bs.redo)-1]
		bs.redo = bs.redo[:len(bs.redo)-1]

		batch, _, err := bs.applyLocked("", clearIDs(entry.forward))
		if err != nil {
			lastErr = err
			continue
		}
		bs.undo = append(bs.undo, entry)
		return batch, nil
	}
	if lastErr != nil {
		return Batch{}, fmt.Errorf("redo: %w: %w", ErrNothingToRedo, lastErr)
	}
	return Batch{}, ErrNothingToRedo
}

func clearIDs(ops []Operation) []Operation {
	out := slices.Clone(ops)
	for i := range out {
		out[i].ID = ""
	}
	return out
}

// applyOperation mutates board and returns the operation that reverts it.
// It fills op.Previous and op.PreviousIndex.
func applyOperation(board *document.Board, op *Operation) (Operation, error) {
	switch op.Type {
	case OpLayerInsert:
		return applyInsert(board, op)
	case OpLayerUpdate:
		return applyUpdate(board, op)
	case OpLayerDelete:
		return applyDelete(board, op)
	case OpLayerMove:
		return applyMove(board, op)
	default:
		return Operation{}, fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
}

func applyInsert(board *document.Board, op *Operation) (Operation, error) {
	if op.Layer == nil {
		return Operation{}, fmt.Errorf("%w: insert without layer", ErrInvalidOperation)
	}
	if _, exists := board.Layers[op.LayerID]; exists {
		return Operation{}, fmt.Errorf("%w: layer %s already exists", ErrInvalidOperation, op.LayerID)
	}
	if err := op.Layer.Validate(); err != nil {
		return Operation{}, err
	}

	index := len(board.LayerIDs)
	if op.Index != nil {
		if *op.Index < 0 || *op.Index > len(board.LayerIDs) {
			return Operation{}, fmt.Errorf("%w: insert index %d out of range", ErrInvalidOperation, *op.Index)
		}
		index = *op.Index
	}

	board.Layers[op.LayerID] = op.Layer.Clone()
	board.LayerIDs = slices.Insert(board.LayerIDs, index, op.LayerID)

	return DeleteLayer(op.LayerID), nil
}

func applyUpdate(board *document.Board, op *Operation) (Operation, error) {
	prev, err := board.Layer(op.LayerID)
	if err != nil {
		return Operation{}, err
	}
	if op.Layer == nil {
		return Operation{}, fmt.Errorf("%w: update without layer", ErrInvalidOperation)
	}
	if err := op.Layer.Validate(); err != nil {
		return Operation{}, err
	}

	board.Layers[op.LayerID] = op.Layer.Clone()
	op.Previous = layerPtr(prev)

	return UpdateLayer(op.LayerID, prev), nil
}

func applyDelete(board *document.Board, op *Operation) (Operation, error) {
	prev, err := board.Layer(op.LayerID)
	if err != nil {
		return Operation{}, err
	}
	index := board.IndexOf(op.LayerID)

	delete(board.Layers, op.LayerID)
	if index >= 0 {
		board.LayerIDs = slices.Delete(board.LayerIDs, index, index+1)
	}
	op.Previous = layerPtr(prev)
	op.PreviousIndex = intPtr(index)

	inv := InsertLayer(op.LayerID, prev)
	if index >= 0 {
		inv.Index = intPtr(index)
	}
	return inv, nil
}

func applyMove(board *document.Board, op *Operation) (Operation, error) {
	from := board.IndexOf(op.LayerID)
	if from < 0 {
		return Operation{}, fmt.Errorf("%w: %s", document.ErrLayerNotFound, op.LayerID)
	}
	if op.Index == nil || *op.Index < 0 || *op.Index >= len(board.LayerIDs) {
		return Operation{}, fmt.Errorf("%w: move index out of range", ErrInvalidOperation)
	}
	to := *op.Index

	board.LayerIDs = slices.Delete(board.LayerIDs, from, from+1)
	board.LayerIDs = slices.Insert(board.LayerIDs, to, op.LayerID)
	op.PreviousIndex = intPtr(from)

	return MoveLayer(op.LayerID, from), nil
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
