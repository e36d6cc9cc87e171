package geom

// TransformRect is a layer's local size plus the transform placing it on the
// canvas. Resize operates on this unit.
type TransformRect struct {
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Transform Matrix2D `json:"transform"`
}

// LocalBounds returns the untransformed local box.
func (r TransformRect) LocalBounds() Rect {
	return Rect{Width: r.Width, Height: r.Height}
}

// Bounds returns the canvas-space AABB of the transformed box.
func (r TransformRect) Bounds() Rect {
	return r.Transform.TransformRect(r.LocalBounds())
}

// Geometry is the full set of geometric fields written back to a layer.
// X and Y always equal TopLeft() of the transform rect.
type Geometry struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Transform Matrix2D `json:"transform"`
}

// GeometryOf derives the persisted fields from a transform rect.
func GeometryOf(r TransformRect) Geometry {
	p := TransformedRectPoint(r.Width, r.Height, r.Transform)
	return Geometry{
		X:         p.X,
		Y:         p.Y,
		Width:     r.Width,
		Height:    r.Height,
		Transform: r.Transform,
	}
}

// Rect returns the transform rect part of g.
func (g Geometry) Rect() TransformRect {
	return TransformRect{Width: g.Width, Height: g.Height, Transform: g.Transform}
}

// BoundingBox returns the minimal AABB covering every rect.
// The second result is false when rects is empty.
func BoundingBox(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}

	first := rects[0]
	left := first.X
	right := first.X + first.Width
	top := first.Y
	bottom := first.Y + first.Height

	for _, r := range rects[1:] {
		left = min(left, r.X)
		right = max(right, r.X+r.Width)
		top = min(top, r.Y)
		bottom = max(bottom, r.Y+r.Height)
	}

	return Rect{
		X:      left,
		Y:      top,
		Width:  right - left,
		Height: bottom - top,
	}, true
}

// TransformedSize projects the local width and height edge vectors through
// the linear part of the transform and returns their lengths.
func TransformedSize(r TransformRect) Size {
	linear := r.Transform.Linear()
	return Size{
		Width:  linear.ApplyVector(Point{X: r.Width}).Len(),
		Height: linear.ApplyVector(Point{Y: r.Height}).Len(),
	}
}

// RecomputeTransformRect moves any stretch carried by the transform into the
// width and height fields, leaving the transform with unit-length axes.
func RecomputeTransformRect(r TransformRect) TransformRect {
	size := TransformedSize(r)

	scaleX, scaleY := 1.0, 1.0
	if size.Width != 0 {
		scaleX = r.Width / size.Width
	}
	if size.Height != 0 {
		scaleY = r.Height / size.Height
	}

	return TransformRect{
		Width:     size.Width,
		Height:    size.Height,
		Transform: r.Transform.Append(Scale(scaleX, scaleY)),
	}
}

// TransformedRectPoint returns the canvas position of the box's visual
// top-left corner, i.e. the minimum corner of its transformed AABB.
// For pure scale/flip transforms this is the local corner selected by the
// signs of a and d.
func TransformedRectPoint(width, height float64, transform Matrix2D) Point {
	return transform.TransformRect(Rect{Width: width, Height: height}).Min()
}
