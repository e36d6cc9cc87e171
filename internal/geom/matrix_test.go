package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func requirePointInDelta(t *testing.T, want, got Point) {
	t.Helper()
	require.InDelta(t, want.X, got.X, eps, "x of %v", got)
	require.InDelta(t, want.Y, got.Y, eps, "y of %v", got)
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// translate after scale
	m := Translate(10, 0).Multiply(Scale(2, 2))
	requirePointInDelta(t, Point{X: 12, Y: 2}, m.Apply(Point{X: 1, Y: 1}))

	// scale after translate
	m = Scale(2, 2).Multiply(Translate(10, 0))
	requirePointInDelta(t, Point{X: 22, Y: 2}, m.Apply(Point{X: 1, Y: 1}))
}

func TestMatrixAppendPrepend(t *testing.T) {
	base := Translate(5, 5)

	appended := base.Append(Scale(2, 3))
	requirePointInDelta(t, Point{X: 7, Y: 8}, appended.Apply(Point{X: 1, Y: 1}))

	prepended := base.Prepend(Scale(2, 3))
	requirePointInDelta(t, Point{X: 12, Y: 18}, prepended.Apply(Point{X: 1, Y: 1}))
}

func TestMatrixTranslatedScaled(t *testing.T) {
	m := Scale(-1, 1).Translated(100, 20)
	assert.Equal(t, Matrix2D{-1, 0, 0, 1, 100, 20}, m)

	m = Translate(10, 10).Scaled(2, 2)
	assert.Equal(t, Matrix2D{2, 0, 0, 2, 20, 20}, m)
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix2D
	}{
		{"identity", Identity()},
		{"translation", Translate(-40, 12.5)},
		{"scale", Scale(3, 0.25)},
		{"flip x", Scale(-1, 1).Translated(100, 0)},
		{"flip both", Scale(-2, -0.5).Translated(7, -9)},
		{"rotation", RotateDegrees(33).Translated(3, 4)},
		{"skew", Matrix2D{1, 0.4, -0.7, 1.2, 15, -2}},
	}

	points := []Point{{}, {X: 1, Y: 1}, {X: -250.75, Y: 33}, {X: 1e4, Y: -1e3}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := tt.m.Invert()
			require.NoError(t, err)

			for _, p := range points {
				got := inv.Apply(tt.m.Apply(p))
				require.InDelta(t, p.X, got.X, 1e-7)
				require.InDelta(t, p.Y, got.Y, 1e-7)
			}

			assert.True(t, tt.m.Multiply(inv).ApproxEqual(Identity(), 1e-9))
		})
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	for _, m := range []Matrix2D{{}, Scale(0, 1), Scale(1, 0), {1, 2, 2, 4, 0, 0}} {
		_, err := m.Invert()
		require.ErrorIs(t, err, ErrSingularMatrix)

		_, err = m.ApplyInverse(Point{X: 1, Y: 1})
		require.ErrorIs(t, err, ErrSingularMatrix)
	}
}

func TestMatrixDecomposeSign(t *testing.T) {
	tests := []struct {
		name   string
		m      Matrix2D
		sx, sy float64
	}{
		{"identity", Identity(), 1, 1},
		{"flip x", Scale(-3, 2), -1, 1},
		{"flip y", Scale(1, -0.1), 1, -1},
		{"flip both", Scale(-1, -1).Translated(5, 5), -1, -1},
		{"zero counts positive", Matrix2D{0, 1, -1, 0, 0, 0}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := tt.m.DecomposeSign()
			assert.Equal(t, tt.sx, sx)
			assert.Equal(t, tt.sy, sy)
		})
	}
}

func TestMatrixDecomposeScale(t *testing.T) {
	sx, sy := RotateDegrees(60).Multiply(Scale(2, -3)).DecomposeScale()
	assert.InDelta(t, 2, sx, eps)
	assert.InDelta(t, 3, sy, eps)
}

func TestMatrixTransformRect(t *testing.T) {
	r := Rotate(math.Pi/2).TransformRect(Rect{Width: 10, Height: 20})
	assert.InDelta(t, -20, r.X, eps)
	assert.InDelta(t, 0, r.Y, eps)
	assert.InDelta(t, 20, r.Width, eps)
	assert.InDelta(t, 10, r.Height, eps)
}

func TestInitTransform(t *testing.T) {
	m := InitTransform(Point{X: 12, Y: -4})
	assert.Equal(t, Matrix2D{1, 0, 0, 1, 12, -4}, m)
	assert.Equal(t, Point{X: 12, Y: -4}, m.Translation())
	assert.True(t, InitTransform(Point{}).IsIdentity())
}
