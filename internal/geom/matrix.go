package geom

import (
	"errors"
	"math"
)

// ErrSingularMatrix is returned when inverting a matrix whose determinant is zero.
var ErrSingularMatrix = errors.New("singular matrix")

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// Where:
// - a, d = scale
// - b, c = skew/rotation
// - e, f = translation
//
// A layer's transform maps its local coordinates (origin at the top-left of
// its unflipped box) into canvas coordinates.
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Matrix2D {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// RotateDegrees returns a rotation matrix (angle in degrees).
func RotateDegrees(degrees float64) Matrix2D {
	return Rotate(degrees * math.Pi / 180.0)
}

// InitTransform returns the translation-only transform placing the local
// origin at origin. Every freshly inserted layer starts with one.
func InitTransform(origin Point) Matrix2D {
	return Translate(origin.X, origin.Y)
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],        // a
		m[1]*other[0] + m[3]*other[1],        // b
		m[0]*other[2] + m[2]*other[3],        // c
		m[1]*other[2] + m[3]*other[3],        // d
		m[0]*other[4] + m[2]*other[5] + m[4], // e
		m[1]*other[4] + m[3]*other[5] + m[5], // f
	}
}

// Append post-multiplies: the result applies other in local space before m.
func (m Matrix2D) Append(other Matrix2D) Matrix2D {
	return m.Multiply(other)
}

// Prepend pre-multiplies: the result applies m, then other in canvas space.
func (m Matrix2D) Prepend(other Matrix2D) Matrix2D {
	return other.Multiply(m)
}

// Translated returns m followed by a canvas-space translation.
func (m Matrix2D) Translated(dx, dy float64) Matrix2D {
	return m.Prepend(Translate(dx, dy))
}

// Scaled returns m followed by a canvas-space scale about the canvas origin.
func (m Matrix2D) Scaled(sx, sy float64) Matrix2D {
	return m.Prepend(Scale(sx, sy))
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Apply maps p from local to canvas space.
func (m Matrix2D) Apply(p Point) Point {
	x, y := m.TransformPoint(p.X, p.Y)
	return Point{X: x, Y: y}
}

// ApplyVector maps a direction vector, ignoring translation.
func (m Matrix2D) ApplyVector(v Point) Point {
	return Point{X: m[0]*v.X + m[2]*v.Y, Y: m[1]*v.X + m[3]*v.Y}
}

// TransformRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Matrix2D) TransformRect(r Rect) Rect {
	x0, y0 := m.TransformPoint(r.X, r.Y)
	x1, y1 := m.TransformPoint(r.X+r.Width, r.Y)
	x2, y2 := m.TransformPoint(r.X+r.Width, r.Y+r.Height)
	x3, y3 := m.TransformPoint(r.X, r.Y+r.Height)

	minX := min(x0, x1, x2, x3)
	minY := min(y0, y1, y2, y3)
	maxX := max(x0, x1, x2, x3)
	maxY := max(y0, y1, y2, y3)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Determinant returns the determinant of the matrix.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix.
// A zero determinant yields ErrSingularMatrix; callers must not substitute identity.
func (m Matrix2D) Invert() (Matrix2D, error) {
	det := m.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Matrix2D{}, ErrSingularMatrix
	}

	invDet := 1.0 / det
	return Matrix2D{
		m[3] * invDet,
		-m[1] * invDet,
		-m[2] * invDet,
		m[0] * invDet,
		(m[2]*m[5] - m[3]*m[4]) * invDet,
		(m[1]*m[4] - m[0]*m[5]) * invDet,
	}, nil
}

// ApplyInverse maps a canvas point into local space.
func (m Matrix2D) ApplyInverse(p Point) (Point, error) {
	inv, err := m.Invert()
	if err != nil {
		return Point{}, err
	}
	return inv.Apply(p), nil
}

// DecomposeSign reports the sign of the a and d components.
// Zero counts as positive so handle placement never collapses.
func (m Matrix2D) DecomposeSign() (sx, sy float64) {
	return signOrOne(m[0]), signOrOne(m[3])
}

// DecomposeScale returns the lengths of the transformed local unit axes.
func (m Matrix2D) DecomposeScale() (sx, sy float64) {
	return math.Hypot(m[0], m[1]), math.Hypot(m[2], m[3])
}

// Linear returns the matrix with its translation removed.
func (m Matrix2D) Linear() Matrix2D {
	return Matrix2D{m[0], m[1], m[2], m[3], 0, 0}
}

// Translation returns the e, f components.
func (m Matrix2D) Translation() Point {
	return Point{X: m[4], Y: m[5]}
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	return m.ApproxEqual(Identity(), 1e-10)
}

// ApproxEqual compares every component within eps.
func (m Matrix2D) ApproxEqual(other Matrix2D, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}

func signOrOne(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
