package evaluator

import (
	"fmt"

	"github.com/dshills/logicflow/pkg/compiler"
	lferrors "github.com/dshills/logicflow/pkg/errors"
	"github.com/dshills/logicflow/pkg/graph"
)

// MessageCycle is reported for graphs that cannot be ordered
const MessageCycle = "Graph contains cycles, evaluation not possible"

// topologicalSort orders the payload's nodes so every edge source precedes its target.
// Ties keep payload order.
func topologicalSort(payload compiler.Payload) ([]graph.NodeID, error) {
	const operation = "sorting graph"

	adjacency := make(map[graph.NodeID][]graph.NodeID, len(payload.Nodes))
	inDegree := make(map[graph.NodeID]int, len(payload.Nodes))

	for _, node := range payload.Nodes {
		if _, dup := inDegree[node.ID]; dup {
			return nil, lferrors.NewOperationalError(operation, string(node.ID),
				fmt.Sprintf("Graph error: duplicate node id %s", node.ID), nil)
		}
		inDegree[node.ID] = 0
		adjacency[node.ID] = []graph.NodeID{}
	}

	for _, edge := range payload.Edges {
		for _, end := range []graph.NodeID{edge.Source, edge.Target} {
			if _, ok := inDegree[end]; !ok {
				return nil, lferrors.NewOperationalError(operation, string(end),
					fmt.Sprintf("Graph error: edge references unknown node %s", end), nil)
			}
		}
		adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
		inDegree[edge.Target]++
	}

	// Kahn's algorithm: start with nodes that have no incoming edges
	queue := make([]graph.NodeID, 0, len(payload.Nodes))
	for _, node := range payload.Nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	order := make([]graph.NodeID, 0, len(payload.Nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, next := range adjacency[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(payload.Nodes) {
		return nil, lferrors.NewOperationalError(operation, "", MessageCycle, nil)
	}
	return order, nil
}
