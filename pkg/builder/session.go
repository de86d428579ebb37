// Package builder wires the graph-building pieces into one editing session:
// palette drops create nodes, editors commit through the dispatcher, and
// evaluations compile the store and merge results back into it.
package builder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dshills/logicflow/pkg/canvas"
	"github.com/dshills/logicflow/pkg/compiler"
	"github.com/dshills/logicflow/pkg/editor"
	"github.com/dshills/logicflow/pkg/evaluation"
	"github.com/dshills/logicflow/pkg/graph"
	"github.com/dshills/logicflow/pkg/logging"
	"github.com/dshills/logicflow/pkg/palette"
)

// Options configures a Session. Evaluator is required to evaluate.
type Options struct {
	Registry  *graph.Registry
	Evaluator evaluation.Evaluator
	Timeout   time.Duration
	Projector canvas.Projector
	Logger    logging.Logger
}

// Session is one in-memory graph with its editors.
//
// Editors are kept in step with the store through change events. Result
// merges from StartEvaluation arrive on the request goroutine, so callers
// that evaluate asynchronously read editors through WithEditor.
type Session struct {
	registry   *graph.Registry
	store      *graph.Store
	palette    *palette.Palette
	internals  *canvas.Internals
	dispatcher *editor.Dispatcher
	drop       *canvas.DropHandler
	runner     *evaluation.Runner
	logger     logging.Logger

	mu          sync.Mutex
	editors     map[graph.NodeID]editor.Editor
	unsubscribe func()
}

// NewSession creates an empty session
func NewSession(opts Options) *Session {
	registry := opts.Registry
	if registry == nil {
		registry = graph.DefaultRegistry()
	}
	logger := logging.OrNoOp(opts.Logger)
	projector := opts.Projector
	if projector == nil {
		projector = canvas.NewViewport(0, 0)
	}

	store := graph.NewStore(registry, graph.WithLogger(logger))
	internals := canvas.NewInternals(registry)
	dispatcher := editor.NewDispatcher(store, internals, logger)

	s := &Session{
		registry:   registry,
		store:      store,
		palette:    palette.New(registry),
		internals:  internals,
		dispatcher: dispatcher,
		drop:       canvas.NewDropHandler(store, projector, logger),
		logger:     logger,
		editors:    make(map[graph.NodeID]editor.Editor),
	}
	if opts.Evaluator != nil {
		s.runner = evaluation.NewRunner(store, opts.Evaluator, dispatcher, opts.Timeout, logger)
	}
	s.unsubscribe = store.Subscribe(s.onChange)
	return s
}

// Close detaches the session from its store
func (s *Session) Close() {
	s.unsubscribe()
}

// Store returns the graph store
func (s *Session) Store() *graph.Store { return s.store }

// Palette returns the node palette
func (s *Session) Palette() *palette.Palette { return s.palette }

// Internals returns the per-node layout cache
func (s *Session) Internals() *canvas.Internals { return s.internals }

// Dispatcher returns the command sink editors commit through
func (s *Session) Dispatcher() *editor.Dispatcher { return s.dispatcher }

// DragOver returns the drop effect the canvas advertises
func (s *Session) DragOver() string { return s.drop.DragOver() }

// Drop creates a node from a palette drop
func (s *Session) Drop(ev canvas.DropEvent) (graph.NodeID, error) {
	return s.drop.Drop(ev)
}

// AddNode creates a node of kind at pos
func (s *Session) AddNode(kind graph.Kind, pos graph.Position) (graph.NodeID, error) {
	return s.store.CreateNode(kind, pos)
}

// Connect wires an output handle to an input handle.
// A connection to a node deleted in the meantime is dropped: the returned ID is
// empty and the error nil.
func (s *Session) Connect(source graph.NodeID, sourceHandle graph.HandleID, target graph.NodeID, targetHandle graph.HandleID) (graph.EdgeID, error) {
	id, err := s.store.Connect(source, sourceHandle, target, targetHandle)
	if errors.Is(err, graph.ErrNodeNotFound) {
		s.logger.Warn("dropping connection %s -> %s: %v", source, target, err)
		return "", nil
	}
	return id, err
}

// DeleteNode removes a node and its edges
func (s *Session) DeleteNode(id graph.NodeID) error {
	return s.store.DeleteNode(id)
}

// DeleteEdge removes one edge
func (s *Session) DeleteEdge(id graph.EdgeID) error {
	return s.store.DeleteEdge(id)
}

// Editor returns the editor of a node
func (s *Session) Editor(id graph.NodeID) (editor.Editor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ed, ok := s.editors[id]
	return ed, ok
}

// WithEditor runs fn with the node's editor while holding the session lock.
// fn must only read: a commit from inside fn would wait on the same lock.
func (s *Session) WithEditor(id graph.NodeID, fn func(editor.Editor)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ed, ok := s.editors[id]
	if ok {
		fn(ed)
	}
	return ok
}

// Payload compiles the current graph
func (s *Session) Payload() compiler.Payload {
	return compiler.Compile(s.store.Snapshot())
}

// Lint returns advisory diagnostics for the current graph. They never block evaluation.
func (s *Session) Lint() []graph.Diagnostic {
	return graph.Lint(s.registry, s.store.Snapshot())
}

// Evaluate runs one evaluation and waits for it
func (s *Session) Evaluate(ctx context.Context) (evaluation.Results, error) {
	if s.runner == nil {
		return nil, &evaluation.EvaluationError{Message: "No evaluator configured"}
	}
	return s.runner.Trigger(ctx)
}

// StartEvaluation runs one evaluation in the background. done may be nil.
func (s *Session) StartEvaluation(ctx context.Context, done func(evaluation.Results, error)) error {
	if s.runner == nil {
		return &evaluation.EvaluationError{Message: "No evaluator configured"}
	}
	return s.runner.Start(ctx, done)
}

// Evaluating reports whether the trigger is disabled by a pending request
func (s *Session) Evaluating() bool {
	return s.runner != nil && s.runner.Pending()
}

// ErrorMessage is the evaluation error line shown to the user, empty when none
func (s *Session) ErrorMessage() string {
	if s.runner == nil {
		return ""
	}
	return evaluation.UserMessage(s.runner.LastError())
}

func (s *Session) onChange(ev graph.ChangeEvent) {
	switch ev.Type {
	case graph.ChangeNodeAdded:
		node, err := s.store.Node(ev.NodeID)
		if err != nil {
			return
		}
		ed, err := editor.New(node, s.dispatcher)
		if err != nil {
			s.logger.Error("no editor for node %s: %v", ev.NodeID, err)
			return
		}
		s.internals.Track(node.ID, node.Kind)
		s.mu.Lock()
		s.editors[node.ID] = ed
		s.mu.Unlock()

	case graph.ChangeNodeData:
		node, err := s.store.Node(ev.NodeID)
		if err != nil {
			return
		}
		s.mu.Lock()
		if ed, ok := s.editors[node.ID]; ok {
			ed.Sync(node.Data)
		}
		s.mu.Unlock()

	case graph.ChangeNodeRemoved:
		s.internals.Forget(ev.NodeID)
		s.mu.Lock()
		delete(s.editors, ev.NodeID)
		s.mu.Unlock()
	}
}
