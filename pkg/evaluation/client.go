// Package evaluation posts compiled graphs to the evaluator and merges the
// returned values into result nodes.
package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dshills/logicflow/pkg/compiler"
	"github.com/dshills/logicflow/pkg/graph"
	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds a request when the config gives none
const DefaultTimeout = 30 * time.Second

// Results maps result node ids to their evaluated values
type Results map[graph.NodeID]float64

// Evaluator sends one payload and returns its results
type Evaluator interface {
	Evaluate(ctx context.Context, payload compiler.Payload) (Results, error)
}

// Config holds the evaluator endpoint settings
type Config struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// Client is an Evaluator over HTTP JSON
type Client struct {
	url        string
	headers    map[string]string
	httpClient *http.Client
}

var _ Evaluator = (*Client)(nil)

// NewClient creates a client for cfg.URL
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("evaluator URL cannot be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		url:     cfg.URL,
		headers: cfg.Headers,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Evaluate posts payload. Every failure, including a non-2xx status or a body
// without a results object, is returned as *EvaluationError.
func (c *Client) Evaluate(ctx context.Context, payload compiler.Payload) (Results, error) {
	reqJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, &EvaluationError{Message: fmt.Sprintf("failed to encode request: %v", err), Cause: err}
	}
	return c.post(ctx, reqJSON)
}

// EvaluateRaw posts an already encoded payload
func (c *Client) EvaluateRaw(ctx context.Context, body []byte) (Results, error) {
	return c.post(ctx, body)
}

func (c *Client) post(ctx context.Context, body []byte) (Results, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &EvaluationError{Message: fmt.Sprintf("failed to create request: %v", err), Cause: err}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &EvaluationError{Message: fmt.Sprintf("request failed: %v", err), Cause: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &EvaluationError{
			Message:    fmt.Sprintf("failed to read response: %v", err),
			StatusCode: httpResp.StatusCode,
			Cause:      err,
		}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		msg := MessageFailed
		if detail := gjson.GetBytes(respBody, "detail"); detail.Type == gjson.String && detail.Str != "" {
			msg = detail.Str
		}
		return nil, &EvaluationError{Message: msg, StatusCode: httpResp.StatusCode}
	}

	results, err := parseResults(respBody)
	if err != nil {
		return nil, &EvaluationError{Message: err.Error(), StatusCode: httpResp.StatusCode, Cause: err}
	}
	return results, nil
}

// parseResults extracts the results object. Null entries mean "not computed" and are skipped.
func parseResults(body []byte) (Results, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed response: invalid JSON")
	}

	field := gjson.GetBytes(body, "results")
	if !field.IsObject() {
		return nil, fmt.Errorf("malformed response: missing results")
	}

	results := make(Results)
	var bad string
	field.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Number:
			results[graph.NodeID(key.String())] = value.Num
		case gjson.Null:
		default:
			bad = key.String()
			return false
		}
		return true
	})
	if bad != "" {
		return nil, fmt.Errorf("malformed response: result %q is not a number", bad)
	}
	return results, nil
}
