package graph

import (
	"encoding/json"
	"fmt"
)

// Field names of the node data schemas. They double as the wire keys.
const (
	FieldValue           = "value"
	FieldName            = "name"
	FieldOperation       = "operation"
	FieldResult          = "result"
	FieldCondition       = "condition"
	FieldConditionInputs = "condition_inputs"
	FieldTrueValue       = "true_value"
	FieldFalseValue      = "false_value"
)

// Data is the kind-specific payload of a node.
// Exactly one concrete type exists per Kind.
type Data interface {
	Kind() Kind
	// Clone returns a deep copy that shares no mutable state with the receiver.
	Clone() Data
	// Equal reports whether other holds the same field values.
	Equal(other Data) bool
	// apply returns a copy with patch merged in by key.
	apply(p Patch) (Data, error)
}

// Patch is a partial data update keyed by field name. Fields not named are preserved.
type Patch map[string]any

// ConstantData holds a fixed numeric value
type ConstantData struct {
	Value float64 `json:"value"`
}

func (d *ConstantData) Kind() Kind { return KindConstant }

func (d *ConstantData) Clone() Data {
	c := *d
	return &c
}

func (d *ConstantData) Equal(other Data) bool {
	o, ok := other.(*ConstantData)
	return ok && o.Value == d.Value
}

func (d *ConstantData) apply(p Patch) (Data, error) {
	out := *d
	for field, raw := range p {
		switch field {
		case FieldValue:
			v, ok := toFloat(raw)
			if !ok {
				return nil, fieldTypeError(field, "number", raw)
			}
			out.Value = v
		default:
			return nil, unknownFieldError(field)
		}
	}
	return &out, nil
}

// VariableData holds a named numeric value
type VariableData struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (d *VariableData) Kind() Kind { return KindVariable }

func (d *VariableData) Clone() Data {
	c := *d
	return &c
}

func (d *VariableData) Equal(other Data) bool {
	o, ok := other.(*VariableData)
	return ok && o.Name == d.Name && o.Value == d.Value
}

func (d *VariableData) apply(p Patch) (Data, error) {
	out := *d
	for field, raw := range p {
		switch field {
		case FieldName:
			s, ok := raw.(string)
			if !ok {
				return nil, fieldTypeError(field, "string", raw)
			}
			out.Name = s
		case FieldValue:
			v, ok := toFloat(raw)
			if !ok {
				return nil, fieldTypeError(field, "number", raw)
			}
			out.Value = v
		default:
			return nil, unknownFieldError(field)
		}
	}
	return &out, nil
}

// OperationData selects the arithmetic operator applied to the inputs
type OperationData struct {
	Operation Operator `json:"operation"`
}

func (d *OperationData) Kind() Kind { return KindOperation }

func (d *OperationData) Clone() Data {
	c := *d
	return &c
}

func (d *OperationData) Equal(other Data) bool {
	o, ok := other.(*OperationData)
	return ok && o.Operation == d.Operation
}

func (d *OperationData) apply(p Patch) (Data, error) {
	out := *d
	for field, raw := range p {
		switch field {
		case FieldOperation:
			var op Operator
			switch v := raw.(type) {
			case Operator:
				op = v
			case string:
				op = Operator(v)
			default:
				return nil, fieldTypeError(field, "operator", raw)
			}
			if !op.Valid() {
				return nil, &SchemaViolationError{Field: field, Reason: fmt.Sprintf("unsupported operator %q", string(op))}
			}
			out.Operation = op
		default:
			return nil, unknownFieldError(field)
		}
	}
	return &out, nil
}

// ResultData carries the value computed by the evaluator. A nil Result means not yet computed.
type ResultData struct {
	Result *float64 `json:"result"`
}

func (d *ResultData) Kind() Kind { return KindResult }

func (d *ResultData) Clone() Data {
	if d.Result == nil {
		return &ResultData{}
	}
	v := *d.Result
	return &ResultData{Result: &v}
}

func (d *ResultData) Equal(other Data) bool {
	o, ok := other.(*ResultData)
	if !ok {
		return false
	}
	if d.Result == nil || o.Result == nil {
		return d.Result == nil && o.Result == nil
	}
	return *d.Result == *o.Result
}

// Value returns the computed result and whether one is present.
func (d *ResultData) Value() (float64, bool) {
	if d.Result == nil {
		return 0, false
	}
	return *d.Result, true
}

func (d *ResultData) apply(p Patch) (Data, error) {
	out := d.Clone().(*ResultData)
	for field, raw := range p {
		switch field {
		case FieldResult:
			if raw == nil {
				out.Result = nil
				continue
			}
			if ptr, ok := raw.(*float64); ok {
				if ptr == nil {
					out.Result = nil
					continue
				}
				raw = *ptr
			}
			v, ok := toFloat(raw)
			if !ok {
				return nil, fieldTypeError(field, "number or null", raw)
			}
			out.Result = &v
		default:
			return nil, unknownFieldError(field)
		}
	}
	return out, nil
}

// ConditionalData compares two upstream values and emits TrueValue or FalseValue.
// ConditionInputs is derived from graph topology when the graph is compiled.
type ConditionalData struct {
	Condition       Comparison `json:"condition"`
	ConditionInputs []NodeID   `json:"condition_inputs"`
	TrueValue       float64    `json:"true_value"`
	FalseValue      float64    `json:"false_value"`
}

func (d *ConditionalData) Kind() Kind { return KindConditional }

func (d *ConditionalData) Clone() Data {
	c := *d
	c.ConditionInputs = append(make([]NodeID, 0, len(d.ConditionInputs)), d.ConditionInputs...)
	return &c
}

func (d *ConditionalData) Equal(other Data) bool {
	o, ok := other.(*ConditionalData)
	if !ok {
		return false
	}
	if o.Condition != d.Condition || o.TrueValue != d.TrueValue || o.FalseValue != d.FalseValue {
		return false
	}
	if len(o.ConditionInputs) != len(d.ConditionInputs) {
		return false
	}
	for i := range d.ConditionInputs {
		if d.ConditionInputs[i] != o.ConditionInputs[i] {
			return false
		}
	}
	return true
}

func (d *ConditionalData) apply(p Patch) (Data, error) {
	out := d.Clone().(*ConditionalData)
	for field, raw := range p {
		switch field {
		case FieldCondition:
			var cmp Comparison
			switch v := raw.(type) {
			case Comparison:
				cmp = v
			case string:
				cmp = Comparison(v)
			default:
				return nil, fieldTypeError(field, "comparison", raw)
			}
			if !cmp.Valid() {
				return nil, &SchemaViolationError{Field: field, Reason: fmt.Sprintf("unsupported comparison %q", string(cmp))}
			}
			out.Condition = cmp
		case FieldConditionInputs:
			ids, ok := toNodeIDs(raw)
			if !ok {
				return nil, fieldTypeError(field, "list of node IDs", raw)
			}
			out.ConditionInputs = ids
		case FieldTrueValue:
			v, ok := toFloat(raw)
			if !ok {
				return nil, fieldTypeError(field, "number", raw)
			}
			out.TrueValue = v
		case FieldFalseValue:
			v, ok := toFloat(raw)
			if !ok {
				return nil, fieldTypeError(field, "number", raw)
			}
			out.FalseValue = v
		default:
			return nil, unknownFieldError(field)
		}
	}
	return out, nil
}

// Node is one typed unit of the graph. Kind never changes after creation.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     Kind     `json:"kind"`
	Position Position `json:"position"`
	Data     Data     `json:"data"`
	Selected bool     `json:"selected,omitempty"`
}

// Clone returns a deep copy of the node
func (n Node) Clone() Node {
	c := n
	if n.Data != nil {
		c.Data = n.Data.Clone()
	}
	return c
}

// UnmarshalData decodes a wire data object into the concrete type for kind
func UnmarshalData(kind Kind, raw []byte) (Data, error) {
	var data Data
	switch kind {
	case KindConstant:
		data = &ConstantData{}
	case KindVariable:
		data = &VariableData{}
	case KindOperation:
		data = &OperationData{}
	case KindResult:
		data = &ResultData{}
	case KindConditional:
		data = &ConditionalData{ConditionInputs: []NodeID{}}
	default:
		return nil, &UnknownKindError{Kind: kind}
	}

	if len(raw) == 0 || string(raw) == "null" {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("decoding %s data: %w", kind, err)
	}
	if c, ok := data.(*ConditionalData); ok && c.ConditionInputs == nil {
		c.ConditionInputs = []NodeID{}
	}
	return data, nil
}

func unknownFieldError(field string) error {
	return &SchemaViolationError{Field: field, Reason: "field is not part of the kind schema"}
}

func fieldTypeError(field, want string, got any) error {
	return &SchemaViolationError{Field: field, Reason: fmt.Sprintf("expected %s, got %T", want, got)}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toNodeIDs(v any) ([]NodeID, bool) {
	switch ids := v.(type) {
	case []NodeID:
		return append(make([]NodeID, 0, len(ids)), ids...), true
	case []string:
		out := make([]NodeID, 0, len(ids))
		for _, id := range ids {
			out = append(out, NodeID(id))
		}
		return out, true
	case []any:
		out := make([]NodeID, 0, len(ids))
		for _, id := range ids {
			s, ok := id.(string)
			if !ok {
				return nil, false
			}
			out = append(out, NodeID(s))
		}
		return out, true
	case nil:
		return []NodeID{}, true
	default:
		return nil, false
	}
}
