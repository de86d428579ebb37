package graph

import (
	"errors"
	"fmt"
)

// Common graph errors
var (
	// ErrUnknownKind is returned when a node kind is not registered
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrNodeNotFound is returned when a mutation references a missing node
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when an edge ID does not exist
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrSchemaViolation is returned when a patch names a field outside the node's kind schema.
	// It indicates a programming error in the caller.
	ErrSchemaViolation = errors.New("schema violation")
)

// UnknownKindError reports an attempt to use an unregistered kind.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown node kind: %q", string(e.Kind))
}

// Is makes errors.Is(err, ErrUnknownKind) succeed.
func (e *UnknownKindError) Is(target error) bool {
	return target == ErrUnknownKind
}

// NodeNotFoundError reports a mutation that referenced a stale node ID.
type NodeNotFoundError struct {
	ID        NodeID
	Operation string
}

func (e *NodeNotFoundError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("node not found: %s", e.ID)
	}
	return fmt.Sprintf("%s: node not found: %s", e.Operation, e.ID)
}

// Is makes errors.Is(err, ErrNodeNotFound) succeed.
func (e *NodeNotFoundError) Is(target error) bool {
	return target == ErrNodeNotFound
}

// SchemaViolationError reports a patch field that does not belong to the node's kind,
// or a value of the wrong type for a field that does.
type SchemaViolationError struct {
	ID     NodeID
	Kind   Kind
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation on %s node %s: field %q: %s", e.Kind, e.ID, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrSchemaViolation) succeed.
func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchemaViolation
}
