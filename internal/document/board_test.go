package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

func boardOf(layers ...Layer) *Board {
	b := NewBoard("board_test")
	for i, l := range layers {
		id := string(rune('a' + i))
		b.LayerIDs = append(b.LayerIDs, id)
		b.Layers[id] = l
	}
	return b
}

func boxLayer(x, y, w, h float64) Layer {
	return Layer{
		Type:      LayerTypeRectangle,
		X:         x,
		Y:         y,
		Width:     w,
		Height:    h,
		Transform: geom.Translate(x, y),
	}
}

func TestBoardSelectionBounds(t *testing.T) {
	b := boardOf(boxLayer(10, 10, 20, 20), boxLayer(-5, 30, 10, 5), boxLayer(500, 500, 1, 1))

	got, ok := b.SelectionBounds([]string{"a", "b", "missing"})
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: -5, Y: 10, Width: 35, Height: 25}, got)

	_, ok = b.SelectionBounds(nil)
	assert.False(t, ok)
	_, ok = b.SelectionBounds([]string{"missing"})
	assert.False(t, ok)
}

func TestBoardIntersectingLayers(t *testing.T) {
	b := boardOf(boxLayer(0, 0, 10, 10), boxLayer(10, 0, 10, 10), boxLayer(30, 30, 5, 5))

	// marquee ending exactly at x=10 touches b without overlapping it
	assert.Equal(t, []string{"a"}, b.IntersectingLayers(geom.Point{X: 10, Y: 5}, geom.Point{X: -3, Y: 2}))
	assert.Equal(t, []string{"a", "b"}, b.IntersectingLayers(geom.Point{X: 5, Y: 5}, geom.Point{X: 15, Y: 6}))
	assert.Equal(t, []string{"a", "b", "c"}, b.IntersectingLayers(geom.Point{X: 100, Y: 100}, geom.Point{X: -1, Y: -1}))
	assert.Empty(t, b.IntersectingLayers(geom.Point{X: 50, Y: 50}, geom.Point{X: 60, Y: 60}))
}

func TestBoardEmptyTextLayers(t *testing.T) {
	empty := boxLayer(0, 0, 10, 10)
	empty.Type = LayerTypeText
	filled := empty
	filled.Value = "x"
	note := boxLayer(0, 0, 10, 10)
	note.Type = LayerTypeNote

	b := boardOf(empty, filled, note, empty)
	assert.Equal(t, []string{"a", "d"}, b.EmptyTextLayers())
}

func TestBoardCloneAndValidate(t *testing.T) {
	b := NewSampleBoard("board_sample")
	require.NoError(t, b.Validate())
	assert.Equal(t, 6, b.Len())

	c := b.Clone()
	c.LayerIDs[0] = "other"
	delete(c.Layers, b.LayerIDs[1])
	assert.NotEqual(t, "other", b.LayerIDs[0])
	assert.Equal(t, 6, b.Len())
	assert.Error(t, c.Validate())

	_, err := b.Layer("nope")
	require.ErrorIs(t, err, ErrLayerNotFound)
	assert.Equal(t, -1, b.IndexOf("nope"))
	assert.Equal(t, 2, b.IndexOf(b.LayerIDs[2]))
}

func TestSampleBoardPositionsMatchTransforms(t *testing.T) {
	b := NewSampleBoard("board_sample")
	for _, id := range b.LayerIDs {
		l := b.Layers[id]
		p := geom.TransformedRectPoint(l.Width, l.Height, l.Transform)
		assert.InDelta(t, l.X, p.X, 1e-9, "layer %s", l.Type)
		assert.InDelta(t, l.Y, p.Y, 1e-9, "layer %s", l.Type)
	}
}
