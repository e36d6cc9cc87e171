package collab

import (
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

const (
	OpLayerInsert = "layer.insert"
	OpLayerUpdate = "layer.update"
	OpLayerDelete = "layer.delete"
	OpLayerMove   = "layer.move"
)

// --- Operation Types ---

// Operation represents a board mutation
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	LayerID   string `json:"layerId"`

	// For layer.insert / layer.update: the complete new value
	Layer *document.Layer `json:"layer,omitempty"`
	// For layer.update / layer.delete: the value being replaced
	Previous *document.Layer `json:"previous,omitempty"`

	// For layer.insert / layer.move: target paint position, nil appends
	Index *int `json:"index,omitempty"`
	// For layer.delete / layer.move: position before the operation
	PreviousIndex *int `json:"previousIndex,omitempty"`
}

// Batch is a group of operations applied atomically.
type Batch struct {
	ID         string      `json:"id"`
	Seq        int64       `json:"seq"`
	Gesture    string      `json:"gesture,omitempty"`
	Operations []Operation `json:"operations"`
}

// Presence is the ephemeral per-connection state.
type Presence struct {
	Cursor      *geom.Point        `json:"cursor"`
	Selection   []string           `json:"selection"`
	PencilDraft []geom.StrokePoint `json:"pencilDraft"`
	PenColor    *document.Color    `json:"penColor"`
	PenSize     float64            `json:"penSize,omitempty"`
}

func intPtr(v int) *int { return &v }

func layerPtr(l document.Layer) *document.Layer {
	c := l.Clone()
	return &c
}

// InsertLayer builds a layer.insert appending the layer.
func InsertLayer(id string, l document.Layer) Operation {
	return Operation{Type: OpLayerInsert, LayerID: id, Layer: layerPtr(l)}
}

// UpdateLayer builds a layer.update replacing the layer value.
func UpdateLayer(id string, l document.Layer) Operation {
	return Operation{Type: OpLayerUpdate, LayerID: id, Layer: layerPtr(l)}
}

// DeleteLayer builds a layer.delete.
func DeleteLayer(id string) Operation {
	return Operation{Type: OpLayerDelete, LayerID: id}
}

// MoveLayer builds a layer.move to the given paint position.
func MoveLayer(id string, index int) Operation {
	return Operation{Type: OpLayerMove, LayerID: id, Index: intPtr(index)}
}
