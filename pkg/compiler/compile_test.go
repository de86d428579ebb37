package compiler

import (
	"encoding/json"
	"testing"

	"github.com/dshills/logicflow/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *graph.Store {
	t.Helper()
	return graph.NewStore(nil)
}

func mustCreate(t *testing.T, s *graph.Store, kind graph.Kind) graph.NodeID {
	t.Helper()
	id, err := s.CreateNode(kind, graph.Position{})
	require.NoError(t, err)
	return id
}

func mustConnect(t *testing.T, s *graph.Store, src graph.NodeID, tgt graph.NodeID, th graph.HandleID) graph.EdgeID {
	t.Helper()
	id, err := s.Connect(src, graph.HandleOutput, tgt, th)
	require.NoError(t, err)
	return id
}

func TestCompile_ConditionInputsFollowEdgeOrder(t *testing.T) {
	tests := []struct {
		name      string
		bFirst    bool
		wantOrder func(a, b graph.NodeID) []graph.NodeID
	}{
		{
			name:      "handle order matches edge order",
			wantOrder: func(a, b graph.NodeID) []graph.NodeID { return []graph.NodeID{a, b} },
		},
		{
			name:      "reversed insertion",
			bFirst:    true,
			wantOrder: func(a, b graph.NodeID) []graph.NodeID { return []graph.NodeID{b, a} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			a := mustCreate(t, s, graph.KindConstant)
			b := mustCreate(t, s, graph.KindConstant)
			cond := mustCreate(t, s, graph.KindConditional)

			if tt.bFirst {
				mustConnect(t, s, b, cond, graph.HandleConditionInput2)
				mustConnect(t, s, a, cond, graph.HandleConditionInput1)
			} else {
				mustConnect(t, s, a, cond, graph.HandleConditionInput1)
				mustConnect(t, s, b, cond, graph.HandleConditionInput2)
			}

			payload := Compile(s.Snapshot())
			n, ok := payload.Node(cond)
			require.True(t, ok)
			assert.Equal(t, tt.wantOrder(a, b), n.Data.(*graph.ConditionalData).ConditionInputs)
		})
	}
}

func TestCompile_ConditionInputsReplaceStoredValue(t *testing.T) {
	s := newStore(t)
	a := mustCreate(t, s, graph.KindConstant)
	cond := mustCreate(t, s, graph.KindConditional)
	_, err := s.PatchNodeData(cond, graph.Patch{graph.FieldConditionInputs: []graph.NodeID{"stale_1", "stale_2"}})
	require.NoError(t, err)

	mustConnect(t, s, a, cond, graph.HandleConditionInput1)
	// operand edges into other handles are ignored
	other := mustCreate(t, s, graph.KindOperation)
	mustConnect(t, s, a, other, graph.HandleInput1)

	payload := Compile(s.Snapshot())
	n, _ := payload.Node(cond)
	assert.Equal(t, []graph.NodeID{a}, n.Data.(*graph.ConditionalData).ConditionInputs)

	stored, err := s.Node(cond)
	require.NoError(t, err)
	assert.Equal(t, []graph.NodeID{"stale_1", "stale_2"}, stored.Data.(*graph.ConditionalData).ConditionInputs,
		"compiling must not mutate the store")
}

func TestCompile_UnwiredConditionalHasEmptyInputs(t *testing.T) {
	s := newStore(t)
	mustCreate(t, s, graph.KindConditional)

	raw, err := json.Marshal(Compile(s.Snapshot()))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"condition_inputs":[]`)
}

func TestCompile_ConstantsIntoOperation(t *testing.T) {
	s := newStore(t)
	two := mustCreate(t, s, graph.KindConstant)
	three := mustCreate(t, s, graph.KindConstant)
	add := mustCreate(t, s, graph.KindOperation)
	_, err := s.PatchNodeData(two, graph.Patch{graph.FieldValue: 2.0})
	require.NoError(t, err)
	_, err = s.PatchNodeData(three, graph.Patch{graph.FieldValue: 3.0})
	require.NoError(t, err)
	e1 := mustConnect(t, s, two, add, graph.HandleInput1)
	e2 := mustConnect(t, s, three, add, graph.HandleInput2)

	payload := Compile(s.Snapshot())

	assert.Equal(t, []WireEdge{
		{ID: e1, Source: two, SourceHandle: graph.HandleOutput, Target: add, TargetHandle: graph.HandleInput1},
		{ID: e2, Source: three, SourceHandle: graph.HandleOutput, Target: add, TargetHandle: graph.HandleInput2},
	}, payload.Edges)

	require.Len(t, payload.Nodes, 3)
	n, _ := payload.Node(two)
	assert.Equal(t, &graph.ConstantData{Value: 2}, n.Data)
	n, _ = payload.Node(three)
	assert.Equal(t, &graph.ConstantData{Value: 3}, n.Data)
}

func TestCompile_StripsTransientFields(t *testing.T) {
	s := newStore(t)
	id := mustCreate(t, s, graph.KindVariable)
	require.NoError(t, s.MoveNode(id, graph.Position{X: 40, Y: 80}))
	require.NoError(t, s.Select(id, true))

	raw, err := json.Marshal(Compile(s.Snapshot()))
	require.NoError(t, err)

	var generic map[string][]map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	require.Len(t, generic["nodes"], 1)

	node := generic["nodes"][0]
	assert.ElementsMatch(t, []string{"id", "kind", "data"}, keys(node))
	assert.Equal(t, map[string]any{"name": "x", "value": 0.0}, node["data"])
}

func TestCompile_EmptyAndDegenerateGraphs(t *testing.T) {
	payload := Compile(graph.Snapshot{})
	assert.NotNil(t, payload.Nodes)
	assert.NotNil(t, payload.Edges)

	// dangling edge and lone operation still compile
	s := newStore(t)
	op := mustCreate(t, s, graph.KindOperation)
	snap := s.Snapshot()
	snap.Edges = append(snap.Edges, graph.Edge{Source: "ghost", SourceHandle: graph.HandleOutput, Target: op, TargetHandle: graph.HandleInput1})

	payload = Compile(snap)
	assert.Len(t, payload.Nodes, 1)
	assert.Len(t, payload.Edges, 1)
}

func TestCompile_OutputPassesSchema(t *testing.T) {
	s := newStore(t)
	for _, kind := range graph.DefaultRegistry().Kinds() {
		mustCreate(t, s, kind)
	}

	raw, err := json.Marshal(Compile(s.Snapshot()))
	require.NoError(t, err)
	assert.NoError(t, ValidatePayload(raw))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
