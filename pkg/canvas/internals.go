package canvas

import (
	"sync"

	"github.com/dshills/logicflow/pkg/graph"
)

// HandleLayout is the cached connection-point layout of one node
type HandleLayout struct {
	Inputs   []graph.HandleID
	Outputs  []graph.HandleID
	Revision int
}

// Internals caches per-node handle layout. Every data commit invalidates the
// node's entry so the next render recomputes it.
type Internals struct {
	registry *graph.Registry

	mu      sync.Mutex
	layouts map[graph.NodeID]HandleLayout
	stale   map[graph.NodeID]bool
	kinds   map[graph.NodeID]graph.Kind
}

// NewInternals creates an empty cache. A nil registry uses graph.DefaultRegistry().
func NewInternals(registry *graph.Registry) *Internals {
	if registry == nil {
		registry = graph.DefaultRegistry()
	}
	return &Internals{
		registry: registry,
		layouts:  make(map[graph.NodeID]HandleLayout),
		stale:    make(map[graph.NodeID]bool),
		kinds:    make(map[graph.NodeID]graph.Kind),
	}
}

// Track registers a node so its layout can be computed
func (in *Internals) Track(id graph.NodeID, kind graph.Kind) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.kinds[id] = kind
	in.stale[id] = true
}

// UpdateNodeInternals marks the node's layout stale
func (in *Internals) UpdateNodeInternals(id graph.NodeID) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.kinds[id]; ok {
		in.stale[id] = true
	}
}

// Stale reports whether the node's layout must be recomputed
func (in *Internals) Stale(id graph.NodeID) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stale[id]
}

// Layout returns the node's handle layout, recomputing it when stale
func (in *Internals) Layout(id graph.NodeID) (HandleLayout, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	kind, ok := in.kinds[id]
	if !ok {
		return HandleLayout{}, &graph.NodeNotFoundError{ID: id, Operation: "layout"}
	}
	if !in.stale[id] {
		return in.layouts[id], nil
	}

	spec, err := in.registry.Lookup(kind)
	if err != nil {
		return HandleLayout{}, err
	}
	layout := HandleLayout{
		Inputs:   append([]graph.HandleID(nil), spec.InputPorts...),
		Outputs:  append([]graph.HandleID(nil), spec.OutputPorts...),
		Revision: in.layouts[id].Revision + 1,
	}
	in.layouts[id] = layout
	in.stale[id] = false
	return layout, nil
}

// Forget drops a deleted node from the cache
func (in *Internals) Forget(id graph.NodeID) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.kinds, id)
	delete(in.layouts, id)
	delete(in.stale, id)
}
