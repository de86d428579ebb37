package canvas

import (
	"errors"
	"fmt"

	"github.com/dshills/logicflow/pkg/graph"
	"github.com/dshills/logicflow/pkg/logging"
	"github.com/dshills/logicflow/pkg/palette"
)

// ErrEmptyDrop is returned when a drop carries no kind. The drop is ignored.
var ErrEmptyDrop = errors.New("drop carries no node kind")

// NodeCreator is the subset of the graph store a drop needs
type NodeCreator interface {
	CreateNode(kind graph.Kind, pos graph.Position) (graph.NodeID, error)
}

// DropEvent is a palette token released over the canvas
type DropEvent struct {
	Payload palette.DragPayload
	Client  Point
}

// DropHandler turns palette drops into new nodes
type DropHandler struct {
	creator   NodeCreator
	projector Projector
	logger    logging.Logger
}

// NewDropHandler creates a handler placing nodes through projector
func NewDropHandler(creator NodeCreator, projector Projector, logger logging.Logger) *DropHandler {
	return &DropHandler{
		creator:   creator,
		projector: projector,
		logger:    logging.OrNoOp(logger),
	}
}

// DragOver returns the drop effect the canvas advertises while a token hovers over it
func (h *DropHandler) DragOver() string {
	return palette.EffectMove
}

// Drop creates a node of the payload's kind at the projected drop point.
// Payloads under a foreign format or with no kind return ErrEmptyDrop.
func (h *DropHandler) Drop(ev DropEvent) (graph.NodeID, error) {
	if ev.Payload.Format != palette.DragFormat || ev.Payload.Data == "" {
		h.logger.Debug("ignoring drop without a node kind")
		return "", ErrEmptyDrop
	}

	pos := h.projector.Project(ev.Client)
	id, err := h.creator.CreateNode(ev.Payload.Kind(), pos)
	if err != nil {
		return "", fmt.Errorf("drop %s: %w", ev.Payload.Data, err)
	}

	h.logger.Debug("dropped %s at (%.1f, %.1f)", id, pos.X, pos.Y)
	return id, nil
}
