package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSide is returned for a resize handle outside the eight valid ones.
var ErrInvalidSide = errors.New("invalid resize handle")

// Side identifies a resize handle. Edges are single bits; a corner is the sum
// of two adjacent edges.
type Side uint8

const (
	SideTop    Side = 1
	SideBottom Side = 2
	SideLeft   Side = 4
	SideRight  Side = 8

	SideTopLeft     = SideTop | SideLeft
	SideTopRight    = SideTop | SideRight
	SideBottomLeft  = SideBottom | SideLeft
	SideBottomRight = SideBottom | SideRight
)

// Sides lists every valid handle, clockwise from the top-left corner.
var Sides = []Side{
	SideTopLeft, SideTop, SideTopRight, SideRight,
	SideBottomRight, SideBottom, SideBottomLeft, SideLeft,
}

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTopLeft:
		return "top-left"
	case SideTopRight:
		return "top-right"
	case SideBottomLeft:
		return "bottom-left"
	case SideBottomRight:
		return "bottom-right"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// Valid reports whether s names one of the eight handles.
func (s Side) Valid() bool {
	_, ok := resizePolicies[s]
	return ok
}

// ResizeOptions tunes ResizeRect.
type ResizeOptions struct {
	// NoChangeSize keeps width/height fixed and moves the stretch into the
	// transform. Group resize runs the selection box in this mode.
	NoChangeSize bool
	// KeepRatio preserves the original aspect ratio.
	KeepRatio bool
	// FromCenter pins the center instead of the opposite handle.
	FromCenter bool
}

// resizePolicy describes one handle.
type resizePolicy struct {
	// pivot is the local point that stays fixed on screen.
	pivot func(width, height float64) Point
	// newSize derives the signed size from the local pointer position.
	newSize func(local, pivot Point, r TransformRect) Size
	// widthBased picks the axis driving a keep-ratio resize.
	widthBased func(widthLarger bool) bool
	// fromCenter expands a half-size measured from the center.
	fromCenter func(s Size) Size
}

func doubleSize(s Size) Size {
	return Size{Width: s.Width * 2, Height: s.Height * 2}
}

func doubleWidth(s Size) Size {
	return Size{Width: s.Width * 2, Height: s.Height}
}

func doubleHeight(s Size) Size {
	return Size{Width: s.Width, Height: s.Height * 2}
}

func largerAxis(widthLarger bool) bool { return widthLarger }
func alwaysWidth(bool) bool            { return true }
func alwaysHeight(bool) bool           { return false }

var resizePolicies = map[Side]resizePolicy{
	SideTopLeft: {
		pivot: func(w, h float64) Point { return Point{X: w, Y: h} },
		newSize: func(local, pivot Point, _ TransformRect) Size {
			return Size{Width: pivot.X - local.X, Height: pivot.Y - local.Y}
		},
		widthBased: largerAxis,
		fromCenter: doubleSize,
	},
	SideTop: {
		pivot: func(w, h float64) Point { return Point{X: w / 2, Y: h} },
		newSize: func(local, pivot Point, r TransformRect) Size {
			return Size{Width: r.Width, Height: pivot.Y - local.Y}
		},
		widthBased: alwaysHeight,
		fromCenter: doubleHeight,
	},
	SideTopRight: {
		pivot: func(_, h float64) Point { return Point{X: 0, Y: h} },
		newSize: func(local, pivot Point, _ TransformRect) Size {
			return Size{Width: local.X - pivot.X, Height: pivot.Y - local.Y}
		},
		widthBased: largerAxis,
		fromCenter: doubleSize,
	},
	SideRight: {
		pivot: func(_, h float64) Point { return Point{X: 0, Y: h / 2} },
		newSize: func(local, pivot Point, r TransformRect) Size {
			return Size{Width: local.X - pivot.X, Height: r.Height}
		},
		widthBased: alwaysWidth,
		fromCenter: doubleWidth,
	},
	SideBottomRight: {
		pivot: func(float64, float64) Point { return Point{} },
		newSize: func(local, pivot Point, _ TransformRect) Size {
			return Size{Width: local.X - pivot.X, Height: local.Y - pivot.Y}
		},
		widthBased: largerAxis,
		fromCenter: doubleSize,
	},
	SideBottom: {
		pivot: func(w, _ float64) Point { return Point{X: w / 2, Y: 0} },
		newSize: func(local, pivot Point, r TransformRect) Size {
			return Size{Width: r.Width, Height: local.Y - pivot.Y}
		},
		widthBased: alwaysHeight,
		fromCenter: doubleHeight,
	},
	SideBottomLeft: {
		pivot: func(w, _ float64) Point { return Point{X: w, Y: 0} },
		newSize: func(local, pivot Point, _ TransformRect) Size {
			return Size{Width: pivot.X - local.X, Height: local.Y - pivot.Y}
		},
		widthBased: largerAxis,
		fromCenter: doubleSize,
	},
	SideLeft: {
		pivot: func(w, h float64) Point { return Point{X: w, Y: h / 2} },
		newSize: func(local, pivot Point, r TransformRect) Size {
			return Size{Width: pivot.X - local.X, Height: r.Height}
		},
		widthBased: alwaysWidth,
		fromCenter: doubleWidth,
	},
}

// Pivot returns the local point that stays fixed while side is dragged.
func (s Side) Pivot(width, height float64) (Point, error) {
	policy, ok := resizePolicies[s]
	if !ok {
		return Point{}, fmt.Errorf("%w: %d", ErrInvalidSide, uint8(s))
	}
	return policy.pivot(width, height), nil
}

// HandlePosition returns the canvas position of the handle for side on r.
// The handle sits opposite its pivot.
func HandlePosition(s Side, r TransformRect) (Point, error) {
	pivot, err := s.Pivot(r.Width, r.Height)
	if err != nil {
		return Point{}, err
	}
	local := Point{X: r.Width - pivot.X, Y: r.Height - pivot.Y}
	return r.Transform.Apply(local), nil
}

// ResizeRect computes the new size and transform of r when handle side is
// dragged to the canvas point p. The pivot opposite the handle keeps its
// canvas position. A pointer crossing the pivot flips the shape through the
// sign of the scale, so the returned size is never negative.
func ResizeRect(side Side, p Point, r TransformRect, opts ResizeOptions) (TransformRect, error) {
	policy, ok := resizePolicies[side]
	if !ok {
		return TransformRect{}, fmt.Errorf("%w: %d", ErrInvalidSide, uint8(side))
	}

	local, err := r.Transform.ApplyInverse(p)
	if err != nil {
		return TransformRect{}, fmt.Errorf("resize %s: %w", side, err)
	}

	pivotOf := policy.pivot
	if opts.FromCenter {
		pivotOf = func(w, h float64) Point { return Point{X: w / 2, Y: h / 2} }
	}
	pivot := pivotOf(r.Width, r.Height)

	size := policy.newSize(local, pivot, r)
	if opts.FromCenter {
		size = policy.fromCenter(size)
	}
	if opts.KeepRatio && r.Width != 0 && r.Height != 0 {
		size = keepRatio(policy, size, r)
	}

	var out TransformRect
	var scale Matrix2D
	if opts.NoChangeSize {
		out.Width, out.Height = r.Width, r.Height
		scale = Scale(ratio(size.Width, r.Width), ratio(size.Height, r.Height))
	} else {
		out.Width, out.Height = math.Abs(size.Width), math.Abs(size.Height)
		scale = Scale(signOrOne(size.Width), signOrOne(size.Height))
	}

	out.Transform = r.Transform.Append(scale)

	globalPivot := r.Transform.Apply(pivot)
	newGlobalPivot := out.Transform.Apply(pivotOf(out.Width, out.Height))
	offset := globalPivot.Sub(newGlobalPivot)
	out.Transform = out.Transform.Prepend(Translate(offset.X, offset.Y))

	return out, nil
}

func ratio(size, original float64) float64 {
	if original == 0 {
		return 1
	}
	return size / original
}

func keepRatio(policy resizePolicy, size Size, r TransformRect) Size {
	aspect := r.Width / r.Height
	widthLarger := math.Abs(size.Width)/r.Width > math.Abs(size.Height)/r.Height

	if policy.widthBased(widthLarger) {
		size.Height = signOrOne(size.Height) * math.Abs(size.Width) / aspect
	} else {
		size.Width = signOrOne(size.Width) * math.Abs(size.Height) * aspect
	}
	return size
}

// ResizeGroup resizes every layer of a multi-selection together.
//
// start is the selection's bounding rect captured before the drag and
// snapshot holds each layer's pre-drag transform rect. Both must come from
// the same pre-drag state for the whole gesture: recomputing them from
// partially resized layers compounds error.
func ResizeGroup(side Side, p Point, start TransformRect, snapshot map[string]TransformRect, opts ResizeOptions) (map[string]Geometry, error) {
	opts.NoChangeSize = true
	newRect, err := ResizeRect(side, p, start, opts)
	if err != nil {
		return nil, err
	}

	inv, err := start.Transform.Invert()
	if err != nil {
		return nil, fmt.Errorf("group resize: %w", err)
	}
	delta := newRect.Transform.Append(inv)

	result := make(map[string]Geometry, len(snapshot))
	for id, prev := range snapshot {
		rect := RecomputeTransformRect(TransformRect{
			Width:     prev.Width,
			Height:    prev.Height,
			Transform: prev.Transform.Prepend(delta),
		})
		rect.Transform = restoreCollapsedAxes(rect.Transform, prev.Transform)
		result[id] = GeometryOf(rect)
	}

	return result, nil
}

// restoreCollapsedAxes replaces a zero-length axis column of tf with the unit
// vector along the same axis of prev, keeping tf invertible while the size
// field for that axis is zero.
func restoreCollapsedAxes(tf, prev Matrix2D) Matrix2D {
	sx, sy := tf.DecomposeScale()
	px, py := prev.DecomposeScale()
	if sx == 0 && px != 0 {
		tf[0], tf[1] = prev[0]/px, prev[1]/px
	}
	if sy == 0 && py != 0 {
		tf[2], tf[3] = prev[2]/py, prev[3]/py
	}
	return tf
}
