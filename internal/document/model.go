package document

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

var (
	ErrLayerNotFound = errors.New("layer not found")
	ErrInvalidLayer  = errors.New("invalid layer")
)

// LayerType tags the layer variant. It is stored as a number.
type LayerType int

const (
	LayerTypeRectangle LayerType = iota
	LayerTypeEllipse
	LayerTypePath
	LayerTypeText
	LayerTypeNote
	LayerTypeImage
)

func (t LayerType) String() string {
	switch t {
	case LayerTypeRectangle:
		return "rectangle"
	case LayerTypeEllipse:
		return "ellipse"
	case LayerTypePath:
		return "path"
	case LayerTypeText:
		return "text"
	case LayerTypeNote:
		return "note"
	case LayerTypeImage:
		return "image"
	default:
		return fmt.Sprintf("layer(%d)", int(t))
	}
}

// Valid reports whether t is a known variant.
func (t LayerType) Valid() bool {
	return t >= LayerTypeRectangle && t <= LayerTypeImage
}

// Insertable reports whether t can be placed by dragging out a box.
func (t LayerType) Insertable() bool {
	switch t {
	case LayerTypeRectangle, LayerTypeEllipse, LayerTypeText, LayerTypeNote:
		return true
	default:
		return false
	}
}

const (
	maxFontSize   = 96
	textFontScale = 0.5
	noteFontScale = 0.15
)

// Layer is one shape on the board, in the shape the shared store keeps it.
//
// X and Y are the canvas position of the visual top-left corner and always
// move together with Width, Height and Transform.
type Layer struct {
	Type      LayerType          `json:"type"`
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Transform geom.Matrix2D      `json:"transform"`
	Fill      *Color             `json:"fill,omitempty"`
	Value     string             `json:"value,omitempty"`
	Points    []geom.StrokePoint `json:"points,omitempty"`
	Size      float64            `json:"size,omitempty"` // pencil size, path layers only
}

// Box returns the layer's x, y, width and height as a rect.
func (l Layer) Box() geom.Rect {
	return geom.Rect{X: l.X, Y: l.Y, Width: l.Width, Height: l.Height}
}

// TransformRect returns the part of the layer the resize engine works on.
func (l Layer) TransformRect() geom.TransformRect {
	return geom.TransformRect{Width: l.Width, Height: l.Height, Transform: l.Transform}
}

// WithGeometry returns a copy of l with all geometric fields replaced.
func (l Layer) WithGeometry(g geom.Geometry) Layer {
	l.X, l.Y = g.X, g.Y
	l.Width, l.Height = g.Width, g.Height
	l.Transform = g.Transform
	return l
}

// Contains reports whether the canvas point p falls inside the layer's
// transformed box. A singular transform falls back to the stored box.
func (l Layer) Contains(p geom.Point) bool {
	local, err := l.Transform.ApplyInverse(p)
	if err != nil {
		return l.Box().Contains(p.X, p.Y)
	}
	return local.X >= 0 && local.X <= l.Width && local.Y >= 0 && local.Y <= l.Height
}

// FontSize returns the font size a text or note layer renders with, or 0
// for other layers.
func (l Layer) FontSize() float64 {
	var scale float64
	switch l.Type {
	case LayerTypeText:
		scale = textFontScale
	case LayerTypeNote:
		scale = noteFontScale
	default:
		return 0
	}
	return min(l.Height*scale, l.Width*scale, maxFontSize)
}

// Clone returns a deep copy.
func (l Layer) Clone() Layer {
	if l.Fill != nil {
		fill := *l.Fill
		l.Fill = &fill
	}
	if l.Points != nil {
		l.Points = append([]geom.StrokePoint(nil), l.Points...)
	}
	return l
}

// Validate checks the layer invariants.
func (l Layer) Validate() error {
	if !l.Type.Valid() {
		return fmt.Errorf("%w: unknown type %d", ErrInvalidLayer, int(l.Type))
	}
	for _, v := range []float64{l.X, l.Y, l.Width, l.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite geometry", ErrInvalidLayer)
		}
	}
	if l.Width < 0 || l.Height < 0 {
		return fmt.Errorf("%w: negative size %vx%v", ErrInvalidLayer, l.Width, l.Height)
	}
	for _, v := range l.Transform {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite transform", ErrInvalidLayer)
		}
	}
	if l.Transform.Determinant() == 0 {
		return fmt.Errorf("%w: singular transform %v", ErrInvalidLayer, l.Transform.ToSlice())
	}
	if l.Type == LayerTypePath && len(l.Points) < 2 {
		return fmt.Errorf("%w: path with %d points", ErrInvalidLayer, len(l.Points))
	}
	return nil
}

// NewShapeLayer places a rectangle, ellipse, text or note layer spanning the
// drag from origin to current.
func NewShapeLayer(t LayerType, origin, current geom.Point, fill Color) (Layer, error) {
	if !t.Insertable() {
		return Layer{}, fmt.Errorf("%w: %s cannot be inserted", ErrInvalidLayer, t)
	}

	box := geom.RectFromPoints(origin, current)
	return Layer{
		Type:      t,
		X:         box.X,
		Y:         box.Y,
		Width:     box.Width,
		Height:    box.Height,
		Transform: geom.InitTransform(box.Min()),
		Fill:      &fill,
	}, nil
}

// NewPathLayer turns a finished pencil stroke into a path layer.
func NewPathLayer(points []geom.StrokePoint, fill Color, size float64) (Layer, error) {
	path, err := geom.PointsToPath(points)
	if err != nil {
		return Layer{}, err
	}

	layer := Layer{Type: LayerTypePath, Fill: &fill, Points: path.Points, Size: size}
	return layer.WithGeometry(path.Geometry), nil
}

// NewImageLayer places an image at origin with its natural size. value is
// the image source, usually a data URL.
func NewImageLayer(origin geom.Point, width, height float64, value string) Layer {
	return Layer{
		Type:      LayerTypeImage,
		X:         origin.X,
		Y:         origin.Y,
		Width:     width,
		Height:    height,
		Transform: geom.InitTransform(origin),
		Value:     value,
	}
}
