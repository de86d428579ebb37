package graph

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dshills/logicflow/pkg/logging"
)

// ChangeType categorizes store mutations delivered to listeners.
type ChangeType string

const (
	ChangeNodeAdded    ChangeType = "node.added"
	ChangeNodeData     ChangeType = "node.data"
	ChangeNodeMoved    ChangeType = "node.moved"
	ChangeNodeSelected ChangeType = "node.selected"
	ChangeNodeRemoved  ChangeType = "node.removed"
	ChangeEdgeAdded    ChangeType = "edge.added"
	ChangeEdgeRemoved  ChangeType = "edge.removed"
)

// ChangeEvent describes one applied mutation.
type ChangeEvent struct {
	Type   ChangeType
	NodeID NodeID
	EdgeID EdgeID
}

// Listener receives change events after the mutation has been applied.
type Listener func(ChangeEvent)

// Edge is a directed wiring from one node's output port to another node's input port.
type Edge struct {
	ID           EdgeID   `json:"id,omitempty"`
	Source       NodeID   `json:"source"`
	SourceHandle HandleID `json:"sourceHandle"`
	Target       NodeID   `json:"target"`
	TargetHandle HandleID `json:"targetHandle"`
}

// Touches reports whether the edge references id as source or target
func (e Edge) Touches(id NodeID) bool {
	return e.Source == id || e.Target == id
}

// Snapshot is an immutable copy of the graph at one point in time.
type Snapshot struct {
	Nodes []Node
	Edges []Edge
}

// Store is the authoritative in-memory graph. Every persistent mutation goes through it.
//
// Mutations are expected on the UI event loop; the mutex covers evaluation results
// that complete on another goroutine.
type Store struct {
	registry *Registry
	logger   logging.Logger
	now      func() time.Time

	mu        sync.RWMutex
	nodes     map[NodeID]*Node
	order     []NodeID
	edges     []Edge
	lastStamp int64

	listenersMu sync.RWMutex
	listeners   []Listener
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the store logger
func WithLogger(l logging.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logging.OrNoOp(l)
	}
}

// WithClock overrides the time source used for node IDs
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty graph backed by registry
func NewStore(registry *Registry, opts ...StoreOption) *Store {
	if registry == nil {
		registry = DefaultRegistry()
	}
	s := &Store{
		registry: registry,
		logger:   logging.NoOpLogger{},
		now:      time.Now,
		nodes:    make(map[NodeID]*Node),
		edges:    make([]Edge, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the store validates kinds against
func (s *Store) Registry() *Registry {
	return s.registry
}

// Subscribe registers a listener and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	s.listeners = append(s.listeners, l)
	idx := len(s.listeners) - 1
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	}
}

func (s *Store) emit(events ...ChangeEvent) {
	s.listenersMu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.listenersMu.RUnlock()

	for _, ev := range events {
		for _, l := range listeners {
			if l != nil {
				l(ev)
			}
		}
	}
}

// nextID allocates "{kind}_{millis}". Stamps strictly increase so IDs are never reused,
// even after deletion or when two nodes are created within the same millisecond.
func (s *Store) nextID(kind Kind) NodeID {
	stamp := s.now().UnixMilli()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	s.lastStamp = stamp
	return NodeID(string(kind) + "_" + strconv.FormatInt(stamp, 10))
}

// CreateNode appends a node of kind at pos seeded with the registry defaults
func (s *Store) CreateNode(kind Kind, pos Position) (NodeID, error) {
	spec, err := s.registry.Lookup(kind)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	id := s.nextID(kind)
	s.nodes[id] = &Node{
		ID:       id,
		Kind:     kind,
		Position: pos,
		Data:     spec.DefaultData(),
	}
	s.order = append(s.order, id)
	s.mu.Unlock()

	s.logger.Debug("created %s node %s at (%.1f, %.1f)", kind, id, pos.X, pos.Y)
	s.emit(ChangeEvent{Type: ChangeNodeAdded, NodeID: id})
	return id, nil
}

// Node returns a copy of the node with the given id
func (s *Store) Node(id NodeID) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return Node{}, &NodeNotFoundError{ID: id, Operation: "read"}
	}
	return n.Clone(), nil
}

// Nodes returns copies of all nodes in insertion order
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Edges returns a copy of the edge list in insertion order
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]Edge, 0, len(s.edges)), s.edges...)
}

// Snapshot returns a consistent copy of nodes and edges
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		nodes = append(nodes, s.nodes[id].Clone())
	}
	return Snapshot{
		Nodes: nodes,
		Edges: append(make([]Edge, 0, len(s.edges)), s.edges...),
	}
}

// Len returns the number of nodes
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// PatchNodeData shallow-merges patch into the node's data.
// It reports whether anything changed; an unchanged patch mutates nothing and emits no event.
// A field outside the kind schema yields a *SchemaViolationError and leaves the node untouched.
func (s *Store) PatchNodeData(id NodeID, patch Patch) (bool, error) {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return false, &NodeNotFoundError{ID: id, Operation: "patch"}
	}

	spec, err := s.registry.Lookup(n.Kind)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	for field := range patch {
		if !spec.HasField(field) {
			s.mu.Unlock()
			return false, &SchemaViolationError{ID: id, Kind: n.Kind, Field: field, Reason: "field is not part of the kind schema"}
		}
	}

	updated, err := n.Data.apply(patch)
	if err != nil {
		s.mu.Unlock()
		var sv *SchemaViolationError
		if errors.As(err, &sv) {
			sv.ID, sv.Kind = id, n.Kind
			return false, sv
		}
		return false, fmt.Errorf("patch %s: %w", id, err)
	}
	if updated.Equal(n.Data) {
		s.mu.Unlock()
		return false, nil
	}
	n.Data = updated
	s.mu.Unlock()

	s.logger.Debug("patched node %s: %v", id, patch)
	s.emit(ChangeEvent{Type: ChangeNodeData, NodeID: id})
	return true, nil
}

// MoveNode updates the canvas-owned position. It never counts as a data mutation.
func (s *Store) MoveNode(id NodeID, pos Position) error {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return &NodeNotFoundError{ID: id, Operation: "move"}
	}
	if n.Position == pos {
		s.mu.Unlock()
		return nil
	}
	n.Position = pos
	s.mu.Unlock()

	s.emit(ChangeEvent{Type: ChangeNodeMoved, NodeID: id})
	return nil
}

// Select sets the transient selection flag
func (s *Store) Select(id NodeID, selected bool) error {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return &NodeNotFoundError{ID: id, Operation: "select"}
	}
	if n.Selected == selected {
		s.mu.Unlock()
		return nil
	}
	n.Selected = selected
	s.mu.Unlock()

	s.emit(ChangeEvent{Type: ChangeNodeSelected, NodeID: id})
	return nil
}

// Connect appends an edge. Cycles, duplicates and type-incompatible wiring are accepted;
// semantic checks belong to the compiler and the evaluator. Both endpoints must exist
// so that no edge ever dangles.
func (s *Store) Connect(source NodeID, sourceHandle HandleID, target NodeID, targetHandle HandleID) (EdgeID, error) {
	s.mu.Lock()
	if _, ok := s.nodes[source]; !ok {
		s.mu.Unlock()
		return "", &NodeNotFoundError{ID: source, Operation: "connect"}
	}
	if _, ok := s.nodes[target]; !ok {
		s.mu.Unlock()
		return "", &NodeNotFoundError{ID: target, Operation: "connect"}
	}

	edge := Edge{
		ID:           NewEdgeID(),
		Source:       source,
		SourceHandle: sourceHandle,
		Target:       target,
		TargetHandle: targetHandle,
	}
	s.edges = append(s.edges, edge)
	s.mu.Unlock()

	s.logger.Debug("connected %s.%s -> %s.%s", source, sourceHandle, target, targetHandle)
	s.emit(ChangeEvent{Type: ChangeEdgeAdded, EdgeID: edge.ID})
	return edge.ID, nil
}

// DeleteNode removes a node and every edge that references it
func (s *Store) DeleteNode(id NodeID) error {
	s.mu.Lock()
	if _, ok := s.nodes[id]; !ok {
		s.mu.Unlock()
		return &NodeNotFoundError{ID: id, Operation: "delete"}
	}

	delete(s.nodes, id)
	newOrder := make([]NodeID, 0, len(s.order))
	for _, existing := range s.order {
		if existing != id {
			newOrder = append(newOrder, existing)
		}
	}
	s.order = newOrder

	events := []ChangeEvent{{Type: ChangeNodeRemoved, NodeID: id}}
	newEdges := make([]Edge, 0, len(s.edges))
	for _, edge := range s.edges {
		if edge.Touches(id) {
			events = append(events, ChangeEvent{Type: ChangeEdgeRemoved, EdgeID: edge.ID})
			continue
		}
		newEdges = append(newEdges, edge)
	}
	s.edges = newEdges
	s.mu.Unlock()

	s.logger.Debug("deleted node %s and %d edge(s)", id, len(events)-1)
	s.emit(events...)
	return nil
}

// DeleteEdges removes every edge matching pred and returns how many were removed
func (s *Store) DeleteEdges(pred func(Edge) bool) int {
	s.mu.Lock()
	var events []ChangeEvent
	newEdges := make([]Edge, 0, len(s.edges))
	for _, edge := range s.edges {
		if pred(edge) {
			events = append(events, ChangeEvent{Type: ChangeEdgeRemoved, EdgeID: edge.ID})
			continue
		}
		newEdges = append(newEdges, edge)
	}
	s.edges = newEdges
	s.mu.Unlock()

	s.emit(events...)
	return len(events)
}

// DeleteEdge removes the edge with the given ID
func (s *Store) DeleteEdge(id EdgeID) error {
	if s.DeleteEdges(func(e Edge) bool { return e.ID == id }) == 0 {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	return nil
}
