// Package evaluator is a reference implementation of the evaluation service.
//
// It accepts the same request the client sends, orders the graph
// topologically and computes every node. Rejections of the graph are
// *errors.OperationalError values whose Detail is the message returned to the
// caller; any other error is an internal failure.
package evaluator

import (
	"context"
	"fmt"
	"math"

	"github.com/dshills/logicflow/pkg/compiler"
	lferrors "github.com/dshills/logicflow/pkg/errors"
	"github.com/dshills/logicflow/pkg/evaluation"
	"github.com/dshills/logicflow/pkg/graph"
	"github.com/dshills/logicflow/pkg/logging"
)

// Evaluator computes compiled graphs
type Evaluator struct {
	programs *programs
	logger   logging.Logger
}

var _ evaluation.Evaluator = (*Evaluator)(nil)

// New creates an evaluator
func New(logger logging.Logger) (*Evaluator, error) {
	p, err := compilePrograms()
	if err != nil {
		return nil, err
	}
	return &Evaluator{programs: p, logger: logging.OrNoOp(logger)}, nil
}

// Evaluate computes every node of payload and returns the values of result nodes
// that received one.
func (e *Evaluator) Evaluate(ctx context.Context, payload compiler.Payload) (evaluation.Results, error) {
	order, err := topologicalSort(payload)
	if err != nil {
		return nil, err
	}

	nodes := make(map[graph.NodeID]compiler.WireNode, len(payload.Nodes))
	for _, n := range payload.Nodes {
		nodes[n.ID] = n
	}
	incoming := make(map[graph.NodeID][]graph.NodeID)
	for _, edge := range payload.Edges {
		incoming[edge.Target] = append(incoming[edge.Target], edge.Source)
	}

	computed := make(map[graph.NodeID]float64, len(order))
	results := make(evaluation.Results)

	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		node := nodes[id]
		value, ok, err := e.evaluateNode(node, incoming[id], computed)
		if err != nil {
			e.logger.Debug("node %s failed: %v", id, err)
			return nil, err
		}
		if !ok {
			continue
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, lferrors.NewOperationalError("evaluating node", string(id),
				fmt.Sprintf("Node %s produced a non-finite result", id), nil)
		}

		computed[id] = value
		if node.Kind == graph.KindResult {
			results[id] = value
		}
	}

	e.logger.Debug("evaluated %d nodes, %d results", len(order), len(results))
	return results, nil
}

// evaluateNode computes one node. ok is false for a result node with nothing to show.
func (e *Evaluator) evaluateNode(node compiler.WireNode, inputs []graph.NodeID, computed map[graph.NodeID]float64) (float64, bool, error) {
	switch d := node.Data.(type) {
	case *graph.ConstantData:
		return d.Value, true, nil
	case *graph.VariableData:
		return d.Value, true, nil
	case *graph.OperationData:
		v, err := e.evaluateOperation(node.ID, d, inputs, computed)
		return v, err == nil, err
	case *graph.ConditionalData:
		v, err := e.evaluateConditional(node.ID, d, computed)
		return v, err == nil, err
	case *graph.ResultData:
		if len(inputs) == 0 {
			return 0, false, nil
		}
		v, ok := computed[inputs[0]]
		return v, ok, nil
	default:
		return 0, false, lferrors.NewOperationalError("evaluating node", string(node.ID),
			fmt.Sprintf("Unknown node kind: %s", node.Kind), nil)
	}
}

func (e *Evaluator) evaluateOperation(id graph.NodeID, d *graph.OperationData, inputs []graph.NodeID, computed map[graph.NodeID]float64) (float64, error) {
	const operation = "evaluating operation"

	if len(inputs) < 2 {
		return 0, lferrors.NewOperationalError(operation, string(id),
			fmt.Sprintf("Operation node %s requires at least 2 inputs, found %d", id, len(inputs)), nil)
	}

	values := make([]float64, 0, len(inputs))
	for _, src := range inputs {
		v, ok := computed[src]
		if !ok {
			return 0, lferrors.NewOperationalError(operation, string(id),
				fmt.Sprintf("Input node %s for operation %s not yet computed", src, id), nil)
		}
		values = append(values, v)
	}

	switch d.Operation {
	case "":
		return 0, lferrors.NewOperationalError(operation, string(id),
			fmt.Sprintf("Operation node %s missing operation type", id), nil)
	case graph.OpPower, graph.OpModulo:
		name := "Power"
		if d.Operation == graph.OpModulo {
			name = "Modulo"
		}
		if len(values) != 2 {
			return 0, lferrors.NewOperationalError(operation, string(id),
				fmt.Sprintf("%s operation requires exactly 2 inputs", name), nil).
				WithAttrs(map[string]any{"inputs": len(values)})
		}
		if d.Operation == graph.OpModulo && values[1] == 0 {
			return 0, lferrors.NewOperationalError(operation, string(id), "Modulo by zero", nil)
		}
	case graph.OpDivide:
		for _, v := range values[1:] {
			if v == 0 {
				return 0, lferrors.NewOperationalError(operation, string(id), "Division by zero", nil)
			}
		}
	case graph.OpAdd, graph.OpSubtract, graph.OpMultiply:
	default:
		return 0, lferrors.NewOperationalError(operation, string(id),
			fmt.Sprintf("Unknown operation: %s", d.Operation), nil)
	}

	acc := values[0]
	for _, v := range values[1:] {
		next, err := e.programs.apply(d.Operation, acc, v)
		if err != nil {
			return 0, fmt.Errorf("node %s: %w", id, err)
		}
		acc = next
	}
	return acc, nil
}

func (e *Evaluator) evaluateConditional(id graph.NodeID, d *graph.ConditionalData, computed map[graph.NodeID]float64) (float64, error) {
	const operation = "evaluating conditional"

	if len(d.ConditionInputs) != 2 {
		return 0, lferrors.NewOperationalError(operation, string(id),
			fmt.Sprintf("Conditional node %s must have exactly 2 condition inputs", id), nil)
	}

	var operands [2]float64
	for i, src := range d.ConditionInputs {
		v, ok := computed[src]
		if !ok {
			return 0, lferrors.NewOperationalError(operation, string(id),
				fmt.Sprintf("Condition input node %s not yet computed", src), nil)
		}
		operands[i] = v
	}

	if !d.Condition.Valid() {
		return 0, lferrors.NewOperationalError(operation, string(id),
			fmt.Sprintf("Unknown condition: %s", d.Condition), nil)
	}
	holds, err := e.programs.compare(d.Condition, operands[0], operands[1])
	if err != nil {
		return 0, fmt.Errorf("node %s: %w", id, err)
	}
	if holds {
		return d.TrueValue, nil
	}
	return d.FalseValue, nil
}
