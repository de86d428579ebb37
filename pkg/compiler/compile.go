// Package compiler turns a graph snapshot into the payload of an evaluation request.
//
// Compile is total: it accepts any graph state, including disconnected nodes and
// missing operands, and leaves semantic rejection to the evaluator.
package compiler

import "github.com/dshills/logicflow/pkg/graph"

// Compile builds the request payload for snap.
//
// Every conditional node's condition_inputs is rebuilt from the edges that target
// its condition-input handles, in edge-list order. Edges pass through unchanged.
func Compile(snap graph.Snapshot) Payload {
	nodes := make([]WireNode, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		var data graph.Data
		if n.Data != nil {
			data = n.Data.Clone()
		}
		if c, ok := data.(*graph.ConditionalData); ok {
			c.ConditionInputs = ConditionInputs(n.ID, snap.Edges)
		}
		nodes = append(nodes, WireNode{ID: n.ID, Kind: n.Kind, Data: data})
	}

	edges := make([]WireEdge, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		edges = append(edges, WireEdge{
			ID:           e.ID,
			Source:       e.Source,
			SourceHandle: e.SourceHandle,
			Target:       e.Target,
			TargetHandle: e.TargetHandle,
		})
	}

	return Payload{Nodes: nodes, Edges: edges}
}

// ConditionInputs returns the sources wired into id's condition-input handles in edge-list order
func ConditionInputs(id graph.NodeID, edges []graph.Edge) []graph.NodeID {
	inputs := []graph.NodeID{}
	for _, e := range edges {
		if e.Target == id && e.TargetHandle.IsConditionInput() {
			inputs = append(inputs, e.Source)
		}
	}
	return inputs
}
