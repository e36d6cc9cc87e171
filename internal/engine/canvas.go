package engine

import (
	"fmt"
	"math"

	"github.com/inamate/whiteboard/backend-go/internal/config"
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

// CanvasMode is what the pointer is currently doing.
type CanvasMode int

const (
	ModeNone CanvasMode = iota
	ModePressing
	ModeSelectionNet
	ModeTranslating
	ModeInserting
	ModeResizing
	ModePencil
	ModeTyping
)

func (m CanvasMode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModePressing:
		return "pressing"
	case ModeSelectionNet:
		return "selection-net"
	case ModeTranslating:
		return "translating"
	case ModeInserting:
		return "inserting"
	case ModeResizing:
		return "resizing"
	case ModePencil:
		return "pencil"
	case ModeTyping:
		return "typing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// CanvasState is the pointer state machine. Which fields are set depends on
// Mode:
//   - Pressing: Origin
//   - SelectionNet: Origin, Current
//   - Translating: Current
//   - Inserting: LayerType, and Origin/Current once the drag started
//   - Resizing: InitialBounds, Corner
type CanvasState struct {
	Mode          CanvasMode         `json:"mode"`
	Origin        *geom.Point        `json:"origin,omitempty"`
	Current       *geom.Point        `json:"current,omitempty"`
	LayerType     document.LayerType `json:"layerType,omitempty"`
	InitialBounds *geom.Rect         `json:"initialBounds,omitempty"`
	Corner        geom.Side          `json:"corner,omitempty"`
}

// Camera is the canvas pan offset in screen pixels.
type Camera struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToCanvas converts a client position into canvas coordinates.
func (c Camera) ToCanvas(clientX, clientY float64) geom.Point {
	return geom.Point{
		X: math.Round(clientX) - c.X,
		Y: math.Round(clientY) - c.Y,
	}
}

// PointerEvent is the subset of a DOM pointer event the engine reads.
type PointerEvent struct {
	ClientX  float64 `json:"clientX"`
	ClientY  float64 `json:"clientY"`
	Pressure float64 `json:"pressure"`
	Buttons  int     `json:"buttons"`
	Shift    bool    `json:"shiftKey"`
	Alt      bool    `json:"altKey"`
}

const primaryButton = 1

func (e PointerEvent) primaryDown() bool {
	return e.Buttons == primaryButton
}

// resizeOptions maps modifier keys onto the resize options.
func (e PointerEvent) resizeOptions() geom.ResizeOptions {
	return geom.ResizeOptions{KeepRatio: e.Shift, FromCenter: e.Alt}
}

// Palette holds the last used drawing settings.
type Palette struct {
	Shape      document.Color `json:"shape"`
	Pen        document.Color `json:"pen"`
	Text       document.Color `json:"text"`
	PencilSize float64        `json:"pencilSize"`
	// LastUsed is the last color applied to a selection.
	LastUsed *document.Color `json:"lastUsed,omitempty"`
}

func paletteFrom(cfg *config.Config) Palette {
	parse := func(s string, fallback document.Color) document.Color {
		c, err := document.ParseColor(s)
		if err != nil {
			return fallback
		}
		return c
	}
	return Palette{
		Shape:      parse(cfg.ShapeColor, document.White),
		Pen:        parse(cfg.PenColor, document.Black),
		Text:       parse(cfg.TextColor, document.Black),
		PencilSize: cfg.PencilSize,
	}
}

func manhattan(a, b geom.Point) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

func pointPtr(p geom.Point) *geom.Point { return &p }
