package evaluation

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dshills/logicflow/pkg/compiler"
	"github.com/dshills/logicflow/pkg/editor"
	"github.com/dshills/logicflow/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      *graph.Store
	dispatcher *editor.Dispatcher
	results    []graph.NodeID
}

func newFixture(t *testing.T, results int) *fixture {
	t.Helper()
	store := graph.NewStore(nil)
	f := &fixture{store: store, dispatcher: editor.NewDispatcher(store, nil, nil)}

	c, err := store.CreateNode(graph.KindConstant, graph.Position{})
	require.NoError(t, err)
	for i := 0; i < results; i++ {
		id, err := store.CreateNode(graph.KindResult, graph.Position{})
		require.NoError(t, err)
		_, err = store.Connect(c, graph.HandleOutput, id, graph.HandleResultInput)
		require.NoError(t, err)
		f.results = append(f.results, id)
	}
	return f
}

func (f *fixture) result(t *testing.T, id graph.NodeID) (float64, bool) {
	t.Helper()
	n, err := f.store.Node(id)
	require.NoError(t, err)
	return n.Data.(*graph.ResultData).Value()
}

type stubEvaluator struct {
	results Results
	err     error
	block   chan struct{}
	calls   int
}

func (s *stubEvaluator) Evaluate(ctx context.Context, _ compiler.Payload) (Results, error) {
	s.calls++
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, &EvaluationError{Message: "request failed: " + ctx.Err().Error(), Cause: ctx.Err()}
		}
	}
	return s.results, s.err
}

func TestRunner_SuccessUpdatesOnlyNamedResult(t *testing.T) {
	f := newFixture(t, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":{"`+string(f.results[0])+`":5},"status":"success"}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)
	r := NewRunner(f.store, client, f.dispatcher, time.Second, nil)

	_, err = r.Trigger(context.Background())
	require.NoError(t, err)

	v, ok := f.result(t, f.results[0])
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = f.result(t, f.results[1])
	assert.False(t, ok)
	assert.NoError(t, r.LastError())
	assert.False(t, r.Pending())
}

func TestRunner_FailureLeavesResultsUnchanged(t *testing.T) {
	f := newFixture(t, 2)
	_, err := f.store.PatchNodeData(f.results[0], graph.Patch{graph.FieldResult: 7.0})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail":"Operation node operation_1 requires at least 2 inputs"}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)
	r := NewRunner(f.store, client, f.dispatcher, time.Second, nil)

	_, err = r.Trigger(context.Background())
	require.ErrorIs(t, err, ErrEvaluation)
	assert.Equal(t, "Operation node operation_1 requires at least 2 inputs", UserMessage(r.LastError()))

	v, ok := f.result(t, f.results[0])
	assert.True(t, ok)
	assert.Equal(t, 7.0, v)
	_, ok = f.result(t, f.results[1])
	assert.False(t, ok)
	assert.False(t, r.Pending())
}

func TestRunner_EmptyGraphSkipsRequest(t *testing.T) {
	stub := &stubEvaluator{}
	store := graph.NewStore(nil)
	r := NewRunner(store, stub, editor.NewDispatcher(store, nil, nil), 0, nil)

	_, err := r.Trigger(context.Background())
	require.ErrorIs(t, err, ErrEvaluation)
	assert.Equal(t, MessageNoNodes, UserMessage(err))
	assert.Zero(t, stub.calls)
	assert.False(t, r.Pending())
}

func TestRunner_RefusesSecondTrigger(t *testing.T) {
	f := newFixture(t, 1)
	stub := &stubEvaluator{results: Results{f.results[0]: 1}, block: make(chan struct{})}
	r := NewRunner(f.store, stub, f.dispatcher, 0, nil)

	done := make(chan error, 1)
	require.NoError(t, r.Start(context.Background(), func(_ Results, err error) { done <- err }))
	assert.True(t, r.Pending())

	_, err := r.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrEvaluationInFlight)
	assert.ErrorIs(t, r.Start(context.Background(), nil), ErrEvaluationInFlight)

	close(stub.block)
	require.NoError(t, <-done)
	assert.False(t, r.Pending())

	v, ok := f.result(t, f.results[0])
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestRunner_TimeoutClearsPending(t *testing.T) {
	f := newFixture(t, 1)
	stub := &stubEvaluator{block: make(chan struct{})}
	defer close(stub.block)
	r := NewRunner(f.store, stub, f.dispatcher, 20*time.Millisecond, nil)

	_, err := r.Trigger(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, r.Pending())
	assert.Equal(t, err, r.LastError())

	// trigger is usable again
	stub.block = nil
	stub.results = Results{}
	_, err = r.Trigger(context.Background())
	assert.NoError(t, err)
}

func TestApplyResults_IgnoresNonResultNodes(t *testing.T) {
	store := graph.NewStore(nil)
	c, err := store.CreateNode(graph.KindConstant, graph.Position{})
	require.NoError(t, err)

	err = ApplyResults(editor.NewDispatcher(store, nil, nil), store.Nodes(), Results{c: 42})
	require.NoError(t, err)

	n, err := store.Node(c)
	require.NoError(t, err)
	assert.Equal(t, &graph.ConstantData{Value: 0}, n.Data)
}

// failingSink forwards to a dispatcher but rejects every write of a value to one node
type failingSink struct {
	next   editor.Sink
	failOn graph.NodeID
}

func (s *failingSink) Emit(cmd editor.Command) error {
	if cmd.NodeID == s.failOn && cmd.Patch[graph.FieldResult] != nil {
		return errors.New("write rejected")
	}
	return s.next.Emit(cmd)
}

func TestApplyResults_FailedWriteRestoresEarlierNodes(t *testing.T) {
	f := newFixture(t, 3)
	require.NoError(t, f.dispatcher.Emit(editor.Command{NodeID: f.results[0], Patch: graph.Patch{graph.FieldResult: 3.0}}))

	sink := &failingSink{next: f.dispatcher, failOn: f.results[2]}
	err := ApplyResults(sink, f.store.Nodes(), Results{f.results[0]: 5, f.results[1]: 6, f.results[2]: 7})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEvaluation))
	assert.Equal(t, MessageFailed, UserMessage(err))

	v, ok := f.result(t, f.results[0])
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
	_, ok = f.result(t, f.results[1])
	assert.False(t, ok)
	_, ok = f.result(t, f.results[2])
	assert.False(t, ok)
}

func TestApplyResults_NonFiniteValueWritesNothing(t *testing.T) {
	f := newFixture(t, 2)

	err := ApplyResults(f.dispatcher, f.store.Nodes(), Results{f.results[0]: 1, f.results[1]: math.Inf(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEvaluation))

	for _, id := range f.results {
		_, ok := f.result(t, id)
		assert.False(t, ok, id)
	}
}
