package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

func rectLayer(x, y float64) document.Layer {
	l, _ := document.NewShapeLayer(document.LayerTypeRectangle,
		geom.Point{X: x, Y: y}, geom.Point{X: x + 10, Y: y + 10}, document.White)
	return l
}

func newState(t *testing.T, ids ...string) *BoardState {
	t.Helper()
	bs := NewBoardState(document.NewBoard("board_test"))
	for i, id := range ids {
		_, err := bs.Apply("", []Operation{InsertLayer(id, rectLayer(float64(i*20), 0))})
		require.NoError(t, err)
	}
	return bs
}

func TestApplyInsertUpdateDeleteMove(t *testing.T) {
	bs := newState(t, "a", "b", "c")
	assert.Equal(t, []string{"a", "b", "c"}, bs.Board().LayerIDs)
	assert.Equal(t, int64(3), bs.Seq())

	moved := rectLayer(100, 100)
	batch, err := bs.Apply("gesture-1", []Operation{
		UpdateLayer("a", moved),
		MoveLayer("a", 2),
		DeleteLayer("b"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), batch.Seq)
	assert.Equal(t, "gesture-1", batch.Gesture)
	require.Len(t, batch.Operations, 3)
	assert.NotEmpty(t, batch.Operations[0].ID)
	assert.NotNil(t, batch.Operations[0].Previous)
	assert.Equal(t, 0, *batch.Operations[1].PreviousIndex)
	assert.Equal(t, 0, *batch.Operations[2].PreviousIndex)

	board := bs.Board()
	assert.Equal(t, []string{"c", "a"}, board.LayerIDs)
	assert.Equal(t, moved.Box(), board.Layers["a"].Box())
	assert.Len(t, bs.Log(), 4)
}

func TestApplyIsAtomic(t *testing.T) {
	bs := newState(t, "a")

	_, err := bs.Apply("", []Operation{
		DeleteLayer("a"),
		DeleteLayer("missing"),
	})
	require.ErrorIs(t, err, document.ErrLayerNotFound)

	board := bs.Board()
	assert.Equal(t, []string{"a"}, board.LayerIDs)
	assert.Equal(t, int64(1), bs.Seq())
}

func TestApplyRejectsBadOperations(t *testing.T) {
	bs := newState(t, "a")

	tests := []struct {
		name string
		op   Operation
		err  error
	}{
		{"unknown type", Operation{Type: "layer.spin", LayerID: "a"}, ErrUnknownOperation},
		{"duplicate insert", InsertLayer("a", rectLayer(0, 0)), ErrInvalidOperation},
		{"insert out of range", Operation{Type: OpLayerInsert, LayerID: "z", Layer: ptr(rectLayer(0, 0)), Index: intPtr(5)}, ErrInvalidOperation},
		{"invalid layer", InsertLayer("z", document.Layer{Type: document.LayerTypeText, Width: -1}), document.ErrInvalidLayer},
		{"update missing", UpdateLayer("z", rectLayer(0, 0)), document.ErrLayerNotFound},
		{"move out of range", MoveLayer("a", 1), ErrInvalidOperation},
		{"move missing", MoveLayer("z", 0), document.ErrLayerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bs.Apply("", []Operation{tt.op})
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func ptr(l document.Layer) *document.Layer { return &l }

func TestUndoRedo(t *testing.T) {
	bs := newState(t, "a", "b")

	_, err := bs.Apply("", []Operation{DeleteLayer("a")})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, bs.Board().LayerIDs)

	_, err = bs.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, bs.Board().LayerIDs)
	assert.True(t, bs.CanRedo())

	_, err = bs.Redo()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, bs.Board().LayerIDs)

	// undo everything, including both inserts
	for range 3 {
		_, err = bs.Undo()
		require.NoError(t, err)
	}
	assert.Empty(t, bs.Board().LayerIDs)

	_, err = bs.Undo()
	require.ErrorIs(t, err, ErrNothingToUndo)
	assert.False(t, bs.CanUndo())
}

func TestNewBatchClearsRedo(t *testing.T) {
	bs := newState(t, "a")
	_, err := bs.Undo()
	require.NoError(t, err)
	require.True(t, bs.CanRedo())

	_, err = bs.Apply("", []Operation{InsertLayer("b", rectLayer(0, 0))})
	require.NoError(t, err)
	assert.False(t, bs.CanRedo())

	_, err = bs.Redo()
	require.ErrorIs(t, err, ErrNothingToRedo)
}

func TestPauseCoalescesGesture(t *testing.T) {
	bs := newState(t, "a")
	start := bs.Board().Layers["a"]

	bs.Pause()
	for i := 1; i <= 5; i++ {
		_, err := bs.Apply("drag", []Operation{UpdateLayer("a", rectLayer(float64(i*10), 0))})
		require.NoError(t, err)
	}
	bs.Resume()

	assert.InDelta(t, 50, bs.Board().Layers["a"].X, 1e-9)

	_, err := bs.Undo()
	require.NoError(t, err)
	assert.Equal(t, start, bs.Board().Layers["a"])

	_, err = bs.Redo()
	require.NoError(t, err)
	assert.InDelta(t, 50, bs.Board().Layers["a"].X, 1e-9)
}

func TestUndoWhilePausedClosesGesture(t *testing.T) {
	bs := newState(t, "a")

	bs.Pause()
	_, err := bs.Apply("", []Operation{MoveLayer("a", 0)})
	require.NoError(t, err)
	require.True(t, bs.CanUndo())

	_, err = bs.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, bs.Board().LayerIDs)
}

func TestBoardStateCopiesInput(t *testing.T) {
	board := document.NewBoard("board_test")
	bs := NewBoardState(board)

	l := rectLayer(0, 0)
	_, err := bs.Apply("", []Operation{InsertLayer("a", l)})
	require.NoError(t, err)

	assert.Empty(t, board.LayerIDs)
	got := bs.Board()
	got.LayerIDs[0] = "mutated"
	assert.Equal(t, []string{"a"}, bs.Board().LayerIDs)
}

func TestApplyRemoteSkipsHistory(t *testing.T) {
	bs := NewBoardState(document.NewBoard("board_test"))

	batch, err := bs.ApplyRemote("remote", []Operation{InsertLayer("a", rectLayer(0, 0))})
	require.NoError(t, err)
	assert.Equal(t, int64(1), batch.Seq)
	assert.Equal(t, "remote", batch.Gesture)
	assert.Equal(t, []string{"a"}, bs.Board().LayerIDs)
	assert.False(t, bs.CanUndo())

	_, err = bs.ApplyRemote("", []Operation{DeleteLayer("missing")})
	require.ErrorIs(t, err, document.ErrLayerNotFound)
	assert.Equal(t, int64(1), bs.Seq())
}

func TestUndoSkipsEntriesInvalidatedByRemote(t *testing.T) {
	bs := newState(t, "a", "b")

	_, err := bs.ApplyRemote("remote", []Operation{DeleteLayer("b")})
	require.NoError(t, err)

	_, err = bs.Undo()
	require.NoError(t, err)
	assert.Empty(t, bs.Board().LayerIDs)
	assert.False(t, bs.CanUndo())

	_, err = bs.Undo()
	require.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoReportsWhenEveryEntryIsInvalid(t *testing.T) {
	bs := newState(t, "a")

	_, err := bs.ApplyRemote("remote", []Operation{DeleteLayer("a")})
	require.NoError(t, err)

	_, err = bs.Undo()
	require.ErrorIs(t, err, ErrNothingToUndo)
	require.ErrorIs(t, err, document.ErrLayerNotFound)
	assert.False(t, bs.CanUndo())
	assert.False(t, bs.CanRedo())
}

func TestRedoSkipsEntriesInvalidatedByRemote(t *testing.T) {
	bs := newState(t, "a")
	_, err := bs.Apply("", []Operation{UpdateLayer("a", rectLayer(50, 0))})
	require.NoError(t, err)

	_, err = bs.Undo()
	require.NoError(t, err)
	_, err = bs.Undo()
	require.NoError(t, err)
	require.True(t, bs.CanRedo())

	// The redo of the insert collides with a remote insert of the same id.
	_, err = bs.ApplyRemote("remote", []Operation{InsertLayer("a", rectLayer(0, 0))})
	require.NoError(t, err)

	_, err = bs.Redo()
	require.NoError(t, err)
	assert.InDelta(t, 50, bs.Board().Layers["a"].X, 1e-9)
	assert.False(t, bs.CanRedo())
}

func TestApplyRemoteRejectsMalformedOperationID(t *testing.T) {
	bs := newState(t)

	op := InsertLayer("a", rectLayer(0, 0))
	op.ID = "layer_01h455vb4pex5vsknk084sn02q"
	_, err := bs.ApplyRemote("", []Operation{op})
	require.ErrorIs(t, err, ErrInvalidOperation)

	op.ID = "not an id"
	_, err = bs.ApplyRemote("", []Operation{op})
	require.ErrorIs(t, err, ErrInvalidOperation)
	assert.Empty(t, bs.Board().LayerIDs)

	local, err := bs.Apply("", []Operation{InsertLayer("b", rectLayer(0, 0))})
	require.NoError(t, err)
	update := UpdateLayer("b", rectLayer(5, 0))
	update.ID = local.Operations[0].ID
	_, err = bs.ApplyRemote("", []Operation{update})
	require.NoError(t, err)
}
