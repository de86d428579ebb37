package graph

import (
	"github.com/google/uuid"
)

// NodeID is a unique identifier for a node within a graph
type NodeID string

// String returns the string representation of the NodeID
func (n NodeID) String() string {
	return string(n)
}

// EdgeID is a unique identifier for an edge within a graph
type EdgeID string

// String returns the string representation of the EdgeID
func (e EdgeID) String() string {
	return string(e)
}

// NewEdgeID generates a new unique EdgeID
func NewEdgeID() EdgeID {
	return EdgeID(uuid.New().String())
}

// Kind identifies one of the fixed node variants
type Kind string

const (
	KindConstant    Kind = "constant"
	KindVariable    Kind = "variable"
	KindOperation   Kind = "operation"
	KindResult      Kind = "result"
	KindConditional Kind = "conditional"
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	return string(k)
}

// HandleID names a connection point on a node
type HandleID string

// Handles exposed by the built-in node kinds.
const (
	HandleOutput          HandleID = "output"
	HandleInput1          HandleID = "input-1"
	HandleInput2          HandleID = "input-2"
	HandleConditionInput1 HandleID = "condition-input-1"
	HandleConditionInput2 HandleID = "condition-input-2"
	HandleResultInput     HandleID = "input"
)

// IsConditionInput reports whether h is one of the conditional operand handles
func (h HandleID) IsConditionInput() bool {
	return h == HandleConditionInput1 || h == HandleConditionInput2
}

// Position is a point in canvas coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Operator is the arithmetic operator of an operation node
type Operator string

const (
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
	OpPower    Operator = "**"
	OpModulo   Operator = "%"
)

// Operators returns every supported operator in display order
func Operators() []Operator {
	return []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide, OpPower, OpModulo}
}

// Valid reports whether o is a supported operator
func (o Operator) Valid() bool {
	for _, op := range Operators() {
		if op == o {
			return true
		}
	}
	return false
}

// Comparison is the relational operator of a conditional node
type Comparison string

const (
	CmpGreater      Comparison = ">"
	CmpLess         Comparison = "<"
	CmpEqual        Comparison = "=="
	CmpGreaterEqual Comparison = ">="
	CmpLessEqual    Comparison = "<="
	CmpNotEqual     Comparison = "!="
)

// Comparisons returns every supported comparison in display order
func Comparisons() []Comparison {
	return []Comparison{CmpGreater, CmpLess, CmpEqual, CmpGreaterEqual, CmpLessEqual, CmpNotEqual}
}

// Valid reports whether c is a supported comparison
func (c Comparison) Valid() bool {
	for _, cmp := range Comparisons() {
		if cmp == c {
			return true
		}
	}
	return false
}

// Conditional outputs are fixed; they are reasserted whenever the comparison changes.
const (
	ConditionalTrueValue  = 1.0
	ConditionalFalseValue = -1.0
)
