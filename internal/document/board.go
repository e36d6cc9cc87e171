package document

import (
	"fmt"
	"slices"

	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

// Board mirrors the shared store: a layer map plus the paint order.
type Board struct {
	ID       string           `json:"id"`
	LayerIDs []string         `json:"layerIds"`
	Layers   map[string]Layer `json:"layers"`
}

// NewBoard creates an empty board.
func NewBoard(id string) *Board {
	return &Board{
		ID:       id,
		LayerIDs: []string{},
		Layers:   map[string]Layer{},
	}
}

// Clone returns a deep copy.
func (b *Board) Clone() *Board {
	out := &Board{
		ID:       b.ID,
		LayerIDs: slices.Clone(b.LayerIDs),
		Layers:   make(map[string]Layer, len(b.Layers)),
	}
	if out.LayerIDs == nil {
		out.LayerIDs = []string{}
	}
	for id, l := range b.Layers {
		out.Layers[id] = l.Clone()
	}
	return out
}

// Len returns the number of layers.
func (b *Board) Len() int {
	return len(b.Layers)
}

// Layer looks a layer up by id.
func (b *Board) Layer(id string) (Layer, error) {
	l, ok := b.Layers[id]
	if !ok {
		return Layer{}, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	return l, nil
}

// IndexOf returns the paint position of id, or -1.
func (b *Board) IndexOf(id string) int {
	return slices.Index(b.LayerIDs, id)
}

// Validate checks that the order and the map agree and every layer is valid.
func (b *Board) Validate() error {
	if len(b.LayerIDs) != len(b.Layers) {
		return fmt.Errorf("board %s: %d ids for %d layers", b.ID, len(b.LayerIDs), len(b.Layers))
	}
	for _, id := range b.LayerIDs {
		l, ok := b.Layers[id]
		if !ok {
			return fmt.Errorf("board %s: %w: %s", b.ID, ErrLayerNotFound, id)
		}
		if err := l.Validate(); err != nil {
			return fmt.Errorf("board %s: layer %s: %w", b.ID, id, err)
		}
	}
	return nil
}

// SelectionBounds returns the AABB of the given layers. Unknown ids are
// skipped; the second result is false when nothing remains.
func (b *Board) SelectionBounds(ids []string) (geom.Rect, bool) {
	rects := make([]geom.Rect, 0, len(ids))
	for _, id := range ids {
		if l, ok := b.Layers[id]; ok {
			rects = append(rects, l.Box())
		}
	}
	return geom.BoundingBox(rects)
}

// IntersectingLayers returns, in paint order, the layers whose box overlaps
// the marquee spanned by a and b. Layers that only touch it are excluded.
func (b *Board) IntersectingLayers(a, c geom.Point) []string {
	net := geom.RectFromPoints(a, c)

	ids := []string{}
	for _, id := range b.LayerIDs {
		l, ok := b.Layers[id]
		if !ok {
			continue
		}
		if net.Overlaps(l.Box()) {
			ids = append(ids, id)
		}
	}
	return ids
}

// EmptyTextLayers lists text layers without a value, in paint order.
func (b *Board) EmptyTextLayers() []string {
	var ids []string
	for _, id := range b.LayerIDs {
		if l, ok := b.Layers[id]; ok && l.Type == LayerTypeText && l.Value == "" {
			ids = append(ids, id)
		}
	}
	return ids
}
