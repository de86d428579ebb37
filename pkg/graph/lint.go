package graph

import (
	"fmt"
)

// Severity of a lint diagnostic
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one finding produced by Lint.
type Diagnostic struct {
	NodeID   NodeID
	EdgeID   EdgeID
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	switch {
	case d.NodeID != "":
		return fmt.Sprintf("%s: node %s: %s", d.Severity, d.NodeID, d.Message)
	case d.EdgeID != "":
		return fmt.Sprintf("%s: edge %s: %s", d.Severity, d.EdgeID, d.Message)
	default:
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
}

// Lint reports problems the evaluator is likely to reject. It is advisory only:
// compilation never depends on it and an empty result does not guarantee success.
func Lint(registry *Registry, snap Snapshot) []Diagnostic {
	if registry == nil {
		registry = DefaultRegistry()
	}

	var diags []Diagnostic
	kinds := make(map[NodeID]Kind, len(snap.Nodes))
	for _, n := range snap.Nodes {
		kinds[n.ID] = n.Kind
	}

	incoming := make(map[NodeID][]Edge)
	for _, e := range snap.Edges {
		incoming[e.Target] = append(incoming[e.Target], e)

		srcKind, srcOK := kinds[e.Source]
		tgtKind, tgtOK := kinds[e.Target]
		if !srcOK || !tgtOK {
			diags = append(diags, Diagnostic{EdgeID: e.ID, Severity: SeverityError, Message: "edge references a missing node"})
			continue
		}
		if spec, err := registry.Lookup(srcKind); err == nil && !spec.HasOutput(e.SourceHandle) {
			diags = append(diags, Diagnostic{EdgeID: e.ID, Severity: SeverityWarning,
				Message: fmt.Sprintf("%s node has no output port %q", srcKind, e.SourceHandle)})
		}
		if spec, err := registry.Lookup(tgtKind); err == nil && !spec.HasInput(e.TargetHandle) {
			diags = append(diags, Diagnostic{EdgeID: e.ID, Severity: SeverityWarning,
				Message: fmt.Sprintf("%s node has no input port %q", tgtKind, e.TargetHandle)})
		}
	}

	for _, n := range snap.Nodes {
		in := incoming[n.ID]
		switch n.Kind {
		case KindOperation:
			if len(in) < 2 {
				diags = append(diags, Diagnostic{NodeID: n.ID, Severity: SeverityError,
					Message: fmt.Sprintf("operation requires at least 2 inputs, found %d", len(in))})
			}
		case KindConditional:
			operands := 0
			for _, e := range in {
				if e.TargetHandle.IsConditionInput() {
					operands++
				}
			}
			if operands != 2 {
				diags = append(diags, Diagnostic{NodeID: n.ID, Severity: SeverityError,
					Message: fmt.Sprintf("conditional must have exactly 2 condition inputs, found %d", operands)})
			}
		case KindResult:
			if len(in) == 0 {
				diags = append(diags, Diagnostic{NodeID: n.ID, Severity: SeverityWarning,
					Message: "result is not connected"})
			}
		}
	}

	if cycleAt := findCycle(snap); cycleAt != "" {
		diags = append(diags, Diagnostic{NodeID: cycleAt, Severity: SeverityError,
			Message: "graph contains a cycle"})
	}

	return diags
}

// findCycle performs depth-first search and returns a node on a cycle, or "" if acyclic
func findCycle(snap Snapshot) NodeID {
	if len(snap.Edges) == 0 {
		return ""
	}

	adjacency := make(map[NodeID][]NodeID)
	for _, e := range snap.Edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}

	// 0=unvisited, 1=visiting, 2=visited
	state := make(map[NodeID]int)

	var dfs func(NodeID) NodeID
	dfs = func(id NodeID) NodeID {
		switch state[id] {
		case 1:
			return id
		case 2:
			return ""
		}
		state[id] = 1
		for _, next := range adjacency[id] {
			if found := dfs(next); found != "" {
				return found
			}
		}
		state[id] = 2
		return ""
	}

	for _, n := range snap.Nodes {
		if state[n.ID] == 0 {
			if found := dfs(n.ID); found != "" {
				return found
			}
		}
	}
	return ""
}
