package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBox(t *testing.T) {
	box, ok := BoundingBox([]Rect{
		{X: 10, Y: 10, Width: 20, Height: 20},
		{X: -5, Y: 30, Width: 10, Height: 5},
	})
	require.True(t, ok)
	assert.Equal(t, Rect{X: -5, Y: 10, Width: 35, Height: 25}, box)

	_, ok = BoundingBox(nil)
	assert.False(t, ok)

	// zero-area rects still count
	box, ok = BoundingBox([]Rect{{X: 3, Y: 4}, {X: 7, Y: 1}})
	require.True(t, ok)
	assert.Equal(t, Rect{X: 3, Y: 1, Width: 4, Height: 3}, box)
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"touching right edge", Rect{X: 10, Y: 0, Width: 5, Height: 5}, false},
		{"touching bottom edge", Rect{X: 0, Y: 10, Width: 5, Height: 5}, false},
		{"touching corner", Rect{X: 10, Y: 10, Width: 5, Height: 5}, false},
		{"overlapping", Rect{X: 9, Y: 9, Width: 5, Height: 5}, true},
		{"contained", Rect{X: 2, Y: 2, Width: 1, Height: 1}, true},
		{"disjoint", Rect{X: 20, Y: 20, Width: 1, Height: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(a))
		})
	}
}

func TestRectFromPoints(t *testing.T) {
	want := Rect{X: -5, Y: 2, Width: 15, Height: 8}
	assert.Equal(t, want, RectFromPoints(Point{X: 10, Y: 2}, Point{X: -5, Y: 10}))
	assert.Equal(t, want, RectFromPoints(Point{X: -5, Y: 10}, Point{X: 10, Y: 2}))
}

func TestTransformedRectPoint(t *testing.T) {
	tests := []struct {
		name string
		tf   Matrix2D
		want Point
	}{
		{"translation", Translate(7, 9), Point{X: 7, Y: 9}},
		{"flip x", Matrix2D{-1, 0, 0, 1, 100, 20}, Point{X: 60, Y: 20}},
		{"flip y", Matrix2D{1, 0, 0, -1, 0, 50}, Point{X: 0, Y: 30}},
		{"flip both", Matrix2D{-1, 0, 0, -1, 0, 0}, Point{X: -40, Y: -20}},
		{"rotated quarter turn", Rotate(0.5 * 3.141592653589793), Point{X: -20, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requirePointInDelta(t, tt.want, TransformedRectPoint(40, 20, tt.tf))
		})
	}
}

func TestRecomputeTransformRect(t *testing.T) {
	r := RecomputeTransformRect(TransformRect{
		Width:     10,
		Height:    20,
		Transform: Matrix2D{-3, 0, 0, 0.5, 4, 4},
	})

	assert.InDelta(t, 30, r.Width, eps)
	assert.InDelta(t, 10, r.Height, eps)
	assert.True(t, Matrix2D{-1, 0, 0, 1, 4, 4}.ApproxEqual(r.Transform, eps), "transform %v", r.Transform)

	// the canvas footprint is unchanged
	before := Matrix2D{-3, 0, 0, 0.5, 4, 4}.TransformRect(Rect{Width: 10, Height: 20})
	after := r.Bounds()
	assert.InDelta(t, before.X, after.X, eps)
	assert.InDelta(t, before.Y, after.Y, eps)
	assert.InDelta(t, before.Width, after.Width, eps)
	assert.InDelta(t, before.Height, after.Height, eps)
}

func TestGeometryOf(t *testing.T) {
	g := GeometryOf(TransformRect{Width: 40, Height: 10, Transform: Matrix2D{-1, 0, 0, 1, 100, 5}})
	assert.Equal(t, Geometry{X: 60, Y: 5, Width: 40, Height: 10, Transform: Matrix2D{-1, 0, 0, 1, 100, 5}}, g)
	assert.Equal(t, TransformRect{Width: 40, Height: 10, Transform: g.Transform}, g.Rect())
}
