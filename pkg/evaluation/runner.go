package evaluation

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dshills/logicflow/pkg/compiler"
	"github.com/dshills/logicflow/pkg/editor"
	"github.com/dshills/logicflow/pkg/graph"
	"github.com/dshills/logicflow/pkg/logging"
)

// GraphSource provides the graph to evaluate
type GraphSource interface {
	Snapshot() graph.Snapshot
	Nodes() []graph.Node
}

// ApplyResults writes results into the result nodes among nodes.
// Result nodes missing from results keep their value; other kinds are never touched.
// Either every write lands or none does: values are checked before anything is
// written, and a failed write restores the nodes already patched.
func ApplyResults(sink editor.Sink, nodes []graph.Node, results Results) error {
	type write struct {
		id    graph.NodeID
		value float64
		prior any
	}

	var writes []write
	for _, n := range nodes {
		if n.Kind != graph.KindResult {
			continue
		}
		v, ok := results[n.ID]
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &EvaluationError{Message: fmt.Sprintf("Invalid result for node %s", n.ID)}
		}
		w := write{id: n.ID, value: v}
		if d, ok := n.Data.(*graph.ResultData); ok {
			if prior, has := d.Value(); has {
				w.prior = prior
			}
		}
		writes = append(writes, w)
	}

	for i, w := range writes {
		err := sink.Emit(editor.Command{NodeID: w.id, Patch: graph.Patch{graph.FieldResult: w.value}})
		if err == nil {
			continue
		}
		for _, done := range writes[:i] {
			_ = sink.Emit(editor.Command{NodeID: done.id, Patch: graph.Patch{graph.FieldResult: done.prior}})
		}
		return &EvaluationError{Message: MessageFailed, Cause: err}
	}
	return nil
}

// Runner triggers evaluations one at a time and merges their results.
// A trigger while a request is pending is refused, so responses can never
// be merged out of order.
type Runner struct {
	source    GraphSource
	evaluator Evaluator
	sink      editor.Sink
	logger    logging.Logger
	timeout   time.Duration

	mu      sync.Mutex
	pending bool
	lastErr error
}

// NewRunner creates a runner. A non-positive timeout means the evaluator's own.
func NewRunner(source GraphSource, evaluator Evaluator, sink editor.Sink, timeout time.Duration, logger logging.Logger) *Runner {
	return &Runner{
		source:    source,
		evaluator: evaluator,
		sink:      sink,
		logger:    logging.OrNoOp(logger),
		timeout:   timeout,
	}
}

// Pending reports whether a request is outstanding
func (r *Runner) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// LastError returns the error of the most recent trigger, nil after a success
func (r *Runner) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Trigger compiles the current graph, evaluates it and merges the results, blocking until done.
func (r *Runner) Trigger(ctx context.Context) (Results, error) {
	payload, err := r.begin()
	if err != nil {
		return nil, err
	}
	return r.run(ctx, payload)
}

// Start is Trigger without blocking the caller. done, if non-nil, runs on the
// request goroutine once the results are merged or the request failed.
// Refusals (in flight, empty graph) are returned directly and done is not called.
func (r *Runner) Start(ctx context.Context, done func(Results, error)) error {
	payload, err := r.begin()
	if err != nil {
		return err
	}
	go func() {
		results, err := r.run(ctx, payload)
		if done != nil {
			done(results, err)
		}
	}()
	return nil
}

// begin claims the pending slot and compiles the graph
func (r *Runner) begin() (compiler.Payload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending {
		return compiler.Payload{}, ErrEvaluationInFlight
	}

	snap := r.source.Snapshot()
	if len(snap.Nodes) == 0 {
		r.lastErr = &EvaluationError{Message: MessageNoNodes}
		return compiler.Payload{}, r.lastErr
	}

	r.pending = true
	r.lastErr = nil
	return compiler.Compile(snap), nil
}

func (r *Runner) run(ctx context.Context, payload compiler.Payload) (results Results, err error) {
	defer func() {
		r.mu.Lock()
		r.pending = false
		r.lastErr = err
		r.mu.Unlock()
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.logger.Debug("evaluating %d nodes, %d edges", len(payload.Nodes), len(payload.Edges))
	results, err = r.evaluator.Evaluate(ctx, payload)
	if err != nil {
		r.logger.Error("evaluation failed: %v", err)
		return nil, err
	}

	if err := ApplyResults(r.sink, r.source.Nodes(), results); err != nil {
		r.logger.Error("merging results failed: %v", err)
		return nil, err
	}
	r.logger.Debug("evaluation returned %d results", len(results))
	return results, nil
}
