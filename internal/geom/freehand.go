package geom

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInsufficientPoints is returned when a freehand stroke has fewer than two samples.
var ErrInsufficientPoints = errors.New("stroke needs at least 2 points")

// StrokePoint is a pressure-sampled pointer position: [x, y, pressure].
type StrokePoint [3]float64

// NewStrokePoint builds a sample.
func NewStrokePoint(x, y, pressure float64) StrokePoint {
	return StrokePoint{x, y, pressure}
}

// X returns the x coordinate.
func (p StrokePoint) X() float64 { return p[0] }

// Y returns the y coordinate.
func (p StrokePoint) Y() float64 { return p[1] }

// Pressure returns the pen pressure in [0, 1].
func (p StrokePoint) Pressure() float64 { return p[2] }

// Point drops the pressure.
func (p StrokePoint) Point() Point { return Point{X: p[0], Y: p[1]} }

// PathGeometry is a freehand stroke re-expressed in its own local space.
type PathGeometry struct {
	Geometry
	Points []StrokePoint
}

// PointsToPath computes the AABB of the samples and rebases every sample on
// its top-left corner. The transform is translation-only at that corner.
func PointsToPath(points []StrokePoint) (PathGeometry, error) {
	if len(points) < 2 {
		return PathGeometry{}, ErrInsufficientPoints
	}

	left, top := points[0].X(), points[0].Y()
	right, bottom := left, top
	for _, p := range points[1:] {
		left = min(left, p.X())
		top = min(top, p.Y())
		right = max(right, p.X())
		bottom = max(bottom, p.Y())
	}

	local := make([]StrokePoint, len(points))
	for i, p := range points {
		local[i] = StrokePoint{p.X() - left, p.Y() - top, p.Pressure()}
	}

	return PathGeometry{
		Geometry: Geometry{
			X:         left,
			Y:         top,
			Width:     right - left,
			Height:    bottom - top,
			Transform: InitTransform(Point{X: left, Y: top}),
		},
		Points: local,
	}, nil
}

// StrokeToSVGPath turns an outlined stroke polygon into a closed SVG path.
// Each vertex becomes a quadratic control point whose curve ends at the
// midpoint to the next vertex, which rounds off every corner.
func StrokeToSVGPath(polygon []Point) string {
	if len(polygon) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("M ")
	writeCoords(&b, polygon[0])
	b.WriteString(" Q")

	for i, p0 := range polygon {
		p1 := polygon[(i+1)%len(polygon)]
		b.WriteByte(' ')
		writeCoords(&b, p0)
		b.WriteByte(' ')
		writeCoords(&b, Point{X: (p0.X + p1.X) / 2, Y: (p0.Y + p1.Y) / 2})
	}

	b.WriteString(" Z")
	return b.String()
}

func writeCoords(b *strings.Builder, p Point) {
	b.WriteString(formatNumber(p.X))
	b.WriteByte(' ')
	b.WriteString(formatNumber(p.Y))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
