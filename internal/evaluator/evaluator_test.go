package evaluator

import (
	"context"
	"testing"

	"github.com/dshills/logicflow/pkg/compiler"
	lferrors "github.com/dshills/logicflow/pkg/errors"
	"github.com/dshills/logicflow/pkg/evaluation"
	"github.com/dshills/logicflow/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(id graph.NodeID, v float64) compiler.WireNode {
	return compiler.WireNode{ID: id, Kind: graph.KindConstant, Data: &graph.ConstantData{Value: v}}
}

func operation(id graph.NodeID, op graph.Operator) compiler.WireNode {
	return compiler.WireNode{ID: id, Kind: graph.KindOperation, Data: &graph.OperationData{Operation: op}}
}

func result(id graph.NodeID) compiler.WireNode {
	return compiler.WireNode{ID: id, Kind: graph.KindResult, Data: &graph.ResultData{}}
}

func conditional(id graph.NodeID, cmp graph.Comparison, inputs ...graph.NodeID) compiler.WireNode {
	return compiler.WireNode{ID: id, Kind: graph.KindConditional, Data: &graph.ConditionalData{
		Condition:       cmp,
		ConditionInputs: inputs,
		TrueValue:       graph.ConditionalTrueValue,
		FalseValue:      graph.ConditionalFalseValue,
	}}
}

func edge(src, tgt graph.NodeID, th graph.HandleID) compiler.WireEdge {
	return compiler.WireEdge{Source: src, SourceHandle: graph.HandleOutput, Target: tgt, TargetHandle: th}
}

// binary wires a and b into an operation feeding result r
func binary(a, b float64, op graph.Operator) compiler.Payload {
	return compiler.Payload{
		Nodes: []compiler.WireNode{constant("a", a), constant("b", b), operation("op", op), result("r")},
		Edges: []compiler.WireEdge{
			edge("a", "op", graph.HandleInput1),
			edge("b", "op", graph.HandleInput2),
			edge("op", "r", graph.HandleResultInput),
		},
	}
}

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := New(nil)
	require.NoError(t, err)
	return e
}

func TestEvaluate_Operators(t *testing.T) {
	tests := []struct {
		op   graph.Operator
		a, b float64
		want float64
	}{
		{graph.OpAdd, 2, 3, 5},
		{graph.OpSubtract, 2, 3, -1},
		{graph.OpMultiply, 2, 3, 6},
		{graph.OpDivide, 3, 2, 1.5},
		{graph.OpPower, 2, 10, 1024},
		{graph.OpModulo, 7, 3, 1},
		{graph.OpModulo, -7, 3, 2},
		{graph.OpModulo, 7, -3, -2},
	}

	e := newEvaluator(t)
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			got, err := e.Evaluate(context.Background(), binary(tt.a, tt.b, tt.op))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got["r"], 1e-9)
		})
	}
}

func TestEvaluate_FoldsMoreThanTwoInputs(t *testing.T) {
	p := compiler.Payload{
		Nodes: []compiler.WireNode{constant("a", 20), constant("b", 5), constant("c", 3), operation("op", graph.OpSubtract), result("r")},
		Edges: []compiler.WireEdge{
			edge("a", "op", graph.HandleInput1),
			edge("b", "op", graph.HandleInput2),
			edge("c", "op", graph.HandleInput2),
			edge("op", "r", graph.HandleResultInput),
		},
	}

	got, err := newEvaluator(t).Evaluate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, evaluation.Results{"r": 12}, got)
}

func TestEvaluate_Conditional(t *testing.T) {
	tests := []struct {
		cmp  graph.Comparison
		a, b float64
		want float64
	}{
		{graph.CmpGreater, 3, 2, 1},
		{graph.CmpLess, 3, 2, -1},
		{graph.CmpEqual, 2, 2, 1},
		{graph.CmpGreaterEqual, 1, 2, -1},
		{graph.CmpLessEqual, 2, 2, 1},
		{graph.CmpNotEqual, 2, 2, -1},
	}

	e := newEvaluator(t)
	for _, tt := range tests {
		t.Run(string(tt.cmp), func(t *testing.T) {
			p := compiler.Payload{
				Nodes: []compiler.WireNode{constant("a", tt.a), constant("b", tt.b), conditional("k", tt.cmp, "a", "b"), result("r")},
				Edges: []compiler.WireEdge{
					edge("a", "k", graph.HandleConditionInput1),
					edge("b", "k", graph.HandleConditionInput2),
					edge("k", "r", graph.HandleResultInput),
				},
			}
			got, err := e.Evaluate(context.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got["r"])
		})
	}
}

func TestEvaluate_ConditionOperandOrderFollowsInputs(t *testing.T) {
	p := compiler.Payload{
		Nodes: []compiler.WireNode{constant("a", 1), constant("b", 5), conditional("k", graph.CmpGreater, "b", "a"), result("r")},
		Edges: []compiler.WireEdge{
			edge("b", "k", graph.HandleConditionInput2),
			edge("a", "k", graph.HandleConditionInput1),
			edge("k", "r", graph.HandleResultInput),
		},
	}

	got, err := newEvaluator(t).Evaluate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got["r"])
}

func TestEvaluate_ResultsOmitUncomputed(t *testing.T) {
	p := compiler.Payload{
		Nodes: []compiler.WireNode{constant("a", 4), result("wired"), result("lonely")},
		Edges: []compiler.WireEdge{edge("a", "wired", graph.HandleResultInput)},
	}

	got, err := newEvaluator(t).Evaluate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, evaluation.Results{"wired": 4}, got)
}

func TestEvaluate_Errors(t *testing.T) {
	cyclic := binary(1, 2, graph.OpAdd)
	cyclic.Edges = append(cyclic.Edges, edge("op", "a", graph.HandleInput1))

	lonelyOp := compiler.Payload{
		Nodes: []compiler.WireNode{constant("a", 1), operation("op", graph.OpAdd)},
		Edges: []compiler.WireEdge{edge("a", "op", graph.HandleInput1)},
	}

	threePower := compiler.Payload{
		Nodes: []compiler.WireNode{constant("a", 1), constant("b", 2), constant("c", 3), operation("op", graph.OpPower)},
		Edges: []compiler.WireEdge{
			edge("a", "op", graph.HandleInput1),
			edge("b", "op", graph.HandleInput2),
			edge("c", "op", graph.HandleInput2),
		},
	}

	oneInputCond := compiler.Payload{
		Nodes: []compiler.WireNode{constant("a", 1), conditional("k", graph.CmpGreater, "a")},
		Edges: []compiler.WireEdge{edge("a", "k", graph.HandleConditionInput1)},
	}

	dangling := compiler.Payload{
		Nodes: []compiler.WireNode{result("r")},
		Edges: []compiler.WireEdge{edge("ghost", "r", graph.HandleResultInput)},
	}

	tests := []struct {
		name    string
		payload compiler.Payload
		want    string
	}{
		{"cycle", cyclic, "Graph contains cycles, evaluation not possible"},
		{"operation missing input", lonelyOp, "Operation node op requires at least 2 inputs, found 1"},
		{"division by zero", binary(1, 0, graph.OpDivide), "Division by zero"},
		{"modulo by zero", binary(1, 0, graph.OpModulo), "Modulo by zero"},
		{"power arity", threePower, "Power operation requires exactly 2 inputs"},
		{"conditional arity", oneInputCond, "Conditional node k must have exactly 2 condition inputs"},
		{"unknown operator", binary(1, 2, "^"), "Unknown operation: ^"},
		{"unknown node in edge", dangling, "Graph error: edge references unknown node ghost"},
		{"non finite", binary(-8, 0.5, graph.OpPower), "Node op produced a non-finite result"},
	}

	e := newEvaluator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Evaluate(context.Background(), tt.payload)
			var opErr *lferrors.OperationalError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, tt.want, opErr.Detail)
		})
	}
}

func TestEvaluate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEvaluator(t).Evaluate(ctx, binary(1, 2, graph.OpAdd))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFloorMod(t *testing.T) {
	assert.Equal(t, 1.0, floorMod(7, 3))
	assert.Equal(t, 2.0, floorMod(-7, 3))
	assert.Equal(t, -2.0, floorMod(7, -3))
	assert.Equal(t, 0.0, floorMod(6, 3))
	assert.InDelta(t, 0.5, floorMod(5.5, 1), 1e-12)
}
