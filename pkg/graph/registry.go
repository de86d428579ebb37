package graph

import (
	"fmt"
	"sync"
)

// Spec declares a node kind: its default data, editable schema and connection points.
type Spec struct {
	Kind        Kind
	DisplayName string
	Description string
	// Fields lists the data keys a node of this kind may carry.
	Fields []string
	// InputPorts and OutputPorts are ordered top to bottom as rendered.
	InputPorts  []HandleID
	OutputPorts []HandleID
	// Defaults builds a fresh default payload; it must return a new value on every call.
	Defaults func() Data
}

// DefaultData returns a fresh copy of the kind's default payload
func (s Spec) DefaultData() Data {
	return s.Defaults()
}

// HasField reports whether field belongs to the kind's schema
func (s Spec) HasField(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// HasInput reports whether h is one of the kind's input ports
func (s Spec) HasInput(h HandleID) bool {
	for _, p := range s.InputPorts {
		if p == h {
			return true
		}
	}
	return false
}

// HasOutput reports whether h is one of the kind's output ports
func (s Spec) HasOutput(h HandleID) bool {
	for _, p := range s.OutputPorts {
		if p == h {
			return true
		}
	}
	return false
}

// Registry holds the set of node kinds known to the application.
// Every other component is kind-agnostic beyond what it can learn here.
type Registry struct {
	mu    sync.RWMutex
	specs map[Kind]Spec
	order []Kind
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[Kind]Spec),
	}
}

// DefaultRegistry returns a registry populated with the built-in kinds
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, spec := range builtinSpecs() {
		// builtins are distinct by construction
		_ = r.Register(spec)
	}
	return r
}

// Register adds a kind. Registering the same kind twice is an error.
func (r *Registry) Register(spec Spec) error {
	if spec.Kind == "" {
		return fmt.Errorf("register: empty kind")
	}
	if spec.Defaults == nil {
		return fmt.Errorf("register %s: missing default data", spec.Kind)
	}
	if got := spec.Defaults().Kind(); got != spec.Kind {
		return fmt.Errorf("register %s: default data is of kind %s", spec.Kind, got)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.Kind]; exists {
		return fmt.Errorf("register %s: kind already registered", spec.Kind)
	}
	r.specs[spec.Kind] = spec
	r.order = append(r.order, spec.Kind)
	return nil
}

// Lookup returns the spec for kind or an *UnknownKindError
func (r *Registry) Lookup(kind Kind) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[kind]
	if !ok {
		return Spec{}, &UnknownKindError{Kind: kind}
	}
	return spec, nil
}

// Kinds returns the registered kinds in registration order
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Kind(nil), r.order...)
}

// Specs returns the registered specs in registration order
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.order))
	for _, k := range r.order {
		specs = append(specs, r.specs[k])
	}
	return specs
}

func builtinSpecs() []Spec {
	return []Spec{
		{
			Kind:        KindConstant,
			DisplayName: "Constant",
			Description: "Fixed numeric value",
			Fields:      []string{FieldValue},
			OutputPorts: []HandleID{HandleOutput},
			Defaults: func() Data {
				return &ConstantData{Value: 0}
			},
		},
		{
			Kind:        KindVariable,
			DisplayName: "Variable",
			Description: "Named numeric value",
			Fields:      []string{FieldName, FieldValue},
			OutputPorts: []HandleID{HandleOutput},
			Defaults: func() Data {
				return &VariableData{Name: "x", Value: 0}
			},
		},
		{
			Kind:        KindOperation,
			DisplayName: "Operation",
			Description: "Arithmetic on two inputs",
			Fields:      []string{FieldOperation},
			InputPorts:  []HandleID{HandleInput1, HandleInput2},
			OutputPorts: []HandleID{HandleOutput},
			Defaults: func() Data {
				return &OperationData{Operation: OpAdd}
			},
		},
		{
			Kind:        KindResult,
			DisplayName: "Result",
			Description: "Displays the evaluated value",
			Fields:      []string{FieldResult},
			InputPorts:  []HandleID{HandleResultInput},
			Defaults: func() Data {
				return &ResultData{}
			},
		},
		{
			Kind:        KindConditional,
			DisplayName: "Conditional",
			Description: "Compares two inputs",
			Fields:      []string{FieldCondition, FieldConditionInputs, FieldTrueValue, FieldFalseValue},
			InputPorts:  []HandleID{HandleConditionInput1, HandleConditionInput2},
			OutputPorts: []HandleID{HandleOutput},
			Defaults: func() Data {
				return &ConditionalData{
					Condition:       CmpGreater,
					ConditionInputs: []NodeID{},
					TrueValue:       ConditionalTrueValue,
					FalseValue:      ConditionalFalseValue,
				}
			},
		},
	}
}
