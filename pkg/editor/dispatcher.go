package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/logicflow/pkg/graph"
	"github.com/dshills/logicflow/pkg/logging"
)

// Command is one committed edit: a partial data update for a single node.
type Command struct {
	NodeID graph.NodeID
	Patch  graph.Patch
}

// Sink accepts commands from editors and other producers.
type Sink interface {
	Emit(cmd Command) error
}

// Invalidator is told when a node's data changed so cached layout can be recomputed.
type Invalidator interface {
	UpdateNodeInternals(id graph.NodeID)
}

// Patcher is the subset of the graph store the dispatcher mutates.
type Patcher interface {
	PatchNodeData(id graph.NodeID, patch graph.Patch) (bool, error)
}

// Dispatcher is the single place where edit commands are applied to the store.
type Dispatcher struct {
	store       Patcher
	invalidator Invalidator
	logger      logging.Logger
	queue       chan Command
}

var _ Sink = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. invalidator may be nil.
func NewDispatcher(store Patcher, invalidator Invalidator, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		store:       store,
		invalidator: invalidator,
		logger:      logging.OrNoOp(logger),
		queue:       make(chan Command, 64),
	}
}

// Emit applies cmd synchronously.
//
// A command for a node that no longer exists is dropped without error: it can only
// happen when a deletion races an in-flight edit. Schema violations are returned.
func (d *Dispatcher) Emit(cmd Command) error {
	if len(cmd.Patch) == 0 {
		return nil
	}

	changed, err := d.store.PatchNodeData(cmd.NodeID, cmd.Patch)
	if err != nil {
		if errors.Is(err, graph.ErrNodeNotFound) {
			d.logger.Warn("dropping edit for deleted node %s", cmd.NodeID)
			return nil
		}
		d.logger.Error("rejected edit for node %s: %v", cmd.NodeID, err)
		return fmt.Errorf("apply edit: %w", err)
	}
	if !changed {
		return nil
	}

	if d.invalidator != nil {
		d.invalidator.UpdateNodeInternals(cmd.NodeID)
	}
	return nil
}

// Enqueue hands cmd to Run from any goroutine. It blocks while the queue is full
// or until ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, cmd Command) error {
	select {
	case d.queue <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run applies queued commands in order until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-d.queue:
			if err := d.Emit(cmd); err != nil {
				d.logger.Error("queued edit failed: %v", err)
			}
		}
	}
}
