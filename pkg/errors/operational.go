package errors

import (
	"fmt"
	"time"
)

// OperationalError is a failure while evaluating a graph, tagged with the
// operation that failed and the node it concerns.
//
// Detail is the message reported to the client; Error adds timestamp and
// context for logs.
type OperationalError struct {
	Operation  string         // What was being done, e.g. "evaluating operation"
	NodeID     string         // Which node (if applicable)
	Detail     string         // Client-facing message
	Timestamp  time.Time      // When the error occurred
	Attributes map[string]any // Additional context (optional)
	Cause      error          // Underlying error (optional)
}

// NewOperationalError creates an OperationalError reported to the client as detail.
//
// Example:
//
//	if b == 0 {
//	    return NewOperationalError("evaluating operation", nodeID, "Division by zero", nil)
//	}
func NewOperationalError(operation, nodeID, detail string, cause error) *OperationalError {
	return &OperationalError{
		Operation: operation,
		NodeID:    nodeID,
		Detail:    detail,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// WithAttrs attaches context attributes and returns e
func (e *OperationalError) WithAttrs(attrs map[string]any) *OperationalError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]any, len(attrs))
	}
	for k, v := range attrs {
		e.Attributes[k] = v
	}
	return e
}

// Error implements the error interface.
//
// Format: "[timestamp] operation: node={id}: {detail}"
// If node ID is empty, it's omitted from the message.
func (e *OperationalError) Error() string {
	if e == nil {
		return "<nil OperationalError>"
	}

	timestamp := e.Timestamp.Format(time.RFC3339)
	msg := e.Detail
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	if e.NodeID != "" {
		return fmt.Sprintf("[%s] %s: node=%s: %s", timestamp, e.Operation, e.NodeID, msg)
	}
	return fmt.Sprintf("[%s] %s: %s", timestamp, e.Operation, msg)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
