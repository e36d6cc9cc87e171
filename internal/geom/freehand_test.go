package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsToPath(t *testing.T) {
	path, err := PointsToPath([]StrokePoint{{5, 5, 1}, {15, 5, 1}, {15, 15, 1}})
	require.NoError(t, err)

	assert.Equal(t, 5.0, path.X)
	assert.Equal(t, 5.0, path.Y)
	assert.Equal(t, 10.0, path.Width)
	assert.Equal(t, 10.0, path.Height)
	assert.Equal(t, Translate(5, 5), path.Transform)
	assert.Equal(t, []StrokePoint{{0, 0, 1}, {10, 0, 1}, {10, 10, 1}}, path.Points)
}

func TestPointsToPathKeepsPressure(t *testing.T) {
	path, err := PointsToPath([]StrokePoint{
		NewStrokePoint(-3, 8, 0.2),
		NewStrokePoint(4, -2, 0.9),
	})
	require.NoError(t, err)

	assert.Equal(t, Geometry{X: -3, Y: -2, Width: 7, Height: 10, Transform: Translate(-3, -2)}, path.Geometry)
	assert.Equal(t, 0.2, path.Points[0].Pressure())
	assert.Equal(t, 0.9, path.Points[1].Pressure())
	assert.Equal(t, Point{X: 0, Y: 10}, path.Points[0].Point())
}

func TestPointsToPathRejectsShortStrokes(t *testing.T) {
	for _, points := range [][]StrokePoint{nil, {}, {{1, 1, 0.5}}} {
		_, err := PointsToPath(points)
		require.ErrorIs(t, err, ErrInsufficientPoints)
	}
}

func TestStrokeToSVGPath(t *testing.T) {
	assert.Equal(t, "", StrokeToSVGPath(nil))

	got := StrokeToSVGPath([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}})
	assert.Equal(t, "M 0 0 Q 0 0 5 0 10 0 10 5 10 10 5 5 Z", got)

	got = StrokeToSVGPath([]Point{{X: 1.5, Y: -2}})
	assert.Equal(t, "M 1.5 -2 Q 1.5 -2 1.5 -2 Z", got)
}
