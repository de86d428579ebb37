package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/logicflow/pkg/graph"
)

// Payload is the body of one evaluation request
type Payload struct {
	Nodes []WireNode `json:"nodes"`
	Edges []WireEdge `json:"edges"`
}

// WireNode is a node as the evaluator sees it: identity, kind and schema fields only
type WireNode struct {
	ID   graph.NodeID `json:"id"`
	Kind graph.Kind   `json:"kind"`
	Data graph.Data   `json:"data"`
}

// UnmarshalJSON decodes data according to the node's kind
func (n *WireNode) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID   graph.NodeID    `json:"id"`
		Kind graph.Kind      `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	data, err := graph.UnmarshalData(aux.Kind, aux.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", aux.ID, err)
	}

	n.ID = aux.ID
	n.Kind = aux.Kind
	n.Data = data
	return nil
}

// WireEdge carries topology only. ID is passed through when the canvas assigned one.
type WireEdge struct {
	ID           graph.EdgeID   `json:"id,omitempty"`
	Source       graph.NodeID   `json:"source"`
	SourceHandle graph.HandleID `json:"sourceHandle"`
	Target       graph.NodeID   `json:"target"`
	TargetHandle graph.HandleID `json:"targetHandle"`
}

// Node returns the wire node with the given id
func (p Payload) Node(id graph.NodeID) (WireNode, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return WireNode{}, false
}

// Decode validates raw against the request schema and decodes it
func Decode(raw []byte) (Payload, error) {
	if err := ValidatePayload(raw); err != nil {
		return Payload{}, err
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("decoding payload: %w", err)
	}
	if p.Nodes == nil {
		p.Nodes = []WireNode{}
	}
	if p.Edges == nil {
		p.Edges = []WireEdge{}
	}
	return p, nil
}
