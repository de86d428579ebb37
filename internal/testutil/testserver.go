// Package testutil starts evaluation services for tests.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dshills/logicflow/internal/evaluator"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

// StartEvaluator serves the reference evaluator for the duration of the test
// and returns its /evaluate URL.
func StartEvaluator(t testing.TB) string {
	t.Helper()

	ev, err := evaluator.New(nil)
	if err != nil {
		t.Fatalf("failed to create evaluator: %v", err)
	}

	srv := httptest.NewServer(adaptor.FiberApp(evaluator.NewServer(ev, nil).App()))
	t.Cleanup(srv.Close)
	return srv.URL + "/evaluate"
}

// StubEvaluator answers every request with a fixed status and body and records what it received.
type StubEvaluator struct {
	URL string

	mu     sync.Mutex
	bodies []string
}

// StartStubEvaluator serves status and body for the duration of the test
func StartStubEvaluator(t testing.TB, status int, body string) *StubEvaluator {
	t.Helper()

	stub := &StubEvaluator{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		stub.mu.Lock()
		stub.bodies = append(stub.bodies, string(raw))
		stub.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	stub.URL = srv.URL
	return stub
}

// Requests returns the bodies received so far
func (s *StubEvaluator) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bodies...)
}
