package export

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/engine"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

func redBoard(t *testing.T) *document.Board {
	t.Helper()
	board := document.NewBoard("board_test")
	l, err := document.NewShapeLayer(document.LayerTypeRectangle,
		geom.Point{X: 10, Y: 20}, geom.Point{X: 110, Y: 70}, document.MustParseColor("#ff0000"))
	require.NoError(t, err)
	board.LayerIDs = append(board.LayerIDs, "a")
	board.Layers["a"] = l
	return board
}

func TestBoardSVG(t *testing.T) {
	res, err := BoardSVG(redBoard(t), Options{Padding: 5})
	require.NoError(t, err)

	assert.Equal(t, geom.Rect{X: 5, Y: 15, Width: 110, Height: 60}, res.Bounds)
	svg := string(res.SVG)
	assert.Contains(t, svg, `viewBox="5 15 110 60"`)
	assert.Contains(t, svg, `<path transform="matrix(1 0 0 1 10 20)" d="M 0 0 L 100 0 L 100 50 L 0 50 Z" fill="#ff0000"/>`)
}

func TestBoardSVGEmpty(t *testing.T) {
	_, err := BoardSVG(document.NewBoard("board_test"), Options{})
	require.ErrorIs(t, err, ErrEmptyBoard)
}

func TestSVGEscapesText(t *testing.T) {
	cmds := []engine.DrawCommand{
		{Op: "text", Width: 100, Height: 20, Text: "a < b & c", TextColor: "#000000", FontSize: 10},
		{Op: "selection", Bounds: &geom.Rect{Width: 1, Height: 1}},
	}
	svg := string(SVG(cmds, geom.Rect{Width: 100, Height: 20}, nil))

	assert.Contains(t, svg, "a &lt; b &amp; c")
	assert.NotContains(t, svg, "selection")
}

func TestPathData(t *testing.T) {
	got := pathData([]engine.PathCommand{{"M", 0.0, 0.5}, {"C", 1.0, 2.0, 3.0, 4.0, 5.0, 6.0}, {"Z"}})
	assert.Equal(t, "M 0 0.5 C 1 2 3 4 5 6 Z", got)
}

func TestBoardPNG(t *testing.T) {
	data, err := BoardPNG(redBoard(t), Options{Padding: 5}, 1)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 110, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())

	r, g, _, a := img.At(55, 30).RGBA()
	assert.Greater(t, r, uint32(0xc000))
	assert.Less(t, g, uint32(0x4000))
	assert.Greater(t, a, uint32(0xc000))

	_, _, _, a = img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0), a, "padding stays transparent")
}

func TestPNGRejectsBadSize(t *testing.T) {
	_, err := PNG([]byte(`<svg viewBox="0 0 1 1"></svg>`), 0, 10)
	require.ErrorIs(t, err, ErrInvalidSize)
}
