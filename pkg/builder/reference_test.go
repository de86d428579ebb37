package builder

import (
	"context"
	"testing"
	"time"

	"github.com/dshills/logicflow/internal/testutil"
	"github.com/dshills/logicflow/pkg/editor"
	"github.com/dshills/logicflow/pkg/evaluation"
	"github.com/dshills/logicflow/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ConditionalAgainstReferenceEvaluator(t *testing.T) {
	client, err := evaluation.NewClient(evaluation.Config{URL: testutil.StartEvaluator(t), Timeout: 5 * time.Second})
	require.NoError(t, err)

	s := NewSession(Options{Evaluator: client, Timeout: 5 * time.Second})
	defer s.Close()

	small := drop(t, s, graph.KindConstant, 0, 0)
	big := drop(t, s, graph.KindVariable, 0, 0)
	cond := drop(t, s, graph.KindConditional, 0, 0)
	res := drop(t, s, graph.KindResult, 0, 0)

	ed, _ := s.Editor(small)
	ed.(*editor.ConstantEditor).InputValue("1")
	require.NoError(t, ed.(*editor.ConstantEditor).BlurValue())
	ed, _ = s.Editor(big)
	ed.(*editor.VariableEditor).InputValue("10")
	require.NoError(t, ed.(*editor.VariableEditor).BlurValue())

	// operand order follows edge insertion, not handle names
	_, err = s.Connect(big, graph.HandleOutput, cond, graph.HandleConditionInput2)
	require.NoError(t, err)
	_, err = s.Connect(small, graph.HandleOutput, cond, graph.HandleConditionInput1)
	require.NoError(t, err)
	_, err = s.Connect(cond, graph.HandleOutput, res, graph.HandleResultInput)
	require.NoError(t, err)

	_, err = s.Evaluate(context.Background())
	require.NoError(t, err)

	ed, _ = s.Editor(res)
	assert.Equal(t, "1", ed.(*editor.ResultView).Text(), "10 > 1")

	// flipping the comparison re-evaluates to the false output
	ed, _ = s.Editor(cond)
	require.NoError(t, ed.(*editor.ConditionalEditor).SelectCondition(graph.CmpLess))
	_, err = s.Evaluate(context.Background())
	require.NoError(t, err)

	ed, _ = s.Editor(res)
	assert.Equal(t, "-1", ed.(*editor.ResultView).Text())
}

func TestSession_ReferenceEvaluatorErrorSurfaces(t *testing.T) {
	client, err := evaluation.NewClient(evaluation.Config{URL: testutil.StartEvaluator(t)})
	require.NoError(t, err)

	s := NewSession(Options{Evaluator: client})
	defer s.Close()

	c := drop(t, s, graph.KindConstant, 0, 0)
	op := drop(t, s, graph.KindOperation, 0, 0)
	res := drop(t, s, graph.KindResult, 0, 0)
	_, err = s.Connect(c, graph.HandleOutput, op, graph.HandleInput1)
	require.NoError(t, err)
	_, err = s.Connect(op, graph.HandleOutput, res, graph.HandleResultInput)
	require.NoError(t, err)

	_, err = s.Evaluate(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Operation node "+string(op)+" requires at least 2 inputs, found 1", s.ErrorMessage())

	ed, _ := s.Editor(res)
	assert.Equal(t, "No result yet", ed.(*editor.ResultView).Text())
}
