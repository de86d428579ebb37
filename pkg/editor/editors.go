package editor

import (
	"errors"
	"fmt"

	"github.com/dshills/logicflow/pkg/graph"
)

// ErrInvalidOption is returned when a selection control is given a value it does not offer.
var ErrInvalidOption = errors.New("invalid option")

// Editor is the in-canvas form for one node. It holds drafts only; committed
// values live in the store and reach the editor through Sync.
type Editor interface {
	NodeID() graph.NodeID
	Kind() graph.Kind
	// Sync refreshes committed values from the store without discarding an edit in progress.
	Sync(data graph.Data)
}

// New builds the editor for node, routing commits to sink
func New(node graph.Node, sink Sink) (Editor, error) {
	switch d := node.Data.(type) {
	case *graph.ConstantData:
		return newConstantEditor(node.ID, d, sink), nil
	case *graph.VariableData:
		return newVariableEditor(node.ID, d, sink), nil
	case *graph.OperationData:
		return newOperationEditor(node.ID, d, sink), nil
	case *graph.ResultData:
		return newResultView(node.ID, d), nil
	case *graph.ConditionalData:
		return newConditionalEditor(node.ID, d, sink), nil
	default:
		return nil, &graph.UnknownKindError{Kind: node.Kind}
	}
}

// commitNumber emits field's draft under key when it changed.
// On a rejected emit the field is rolled back to its previous value.
func commitNumber(sink Sink, id graph.NodeID, key string, f *NumberField) error {
	prev := f.Committed()
	v, changed := f.Commit()
	if !changed {
		return nil
	}
	if err := sink.Emit(Command{NodeID: id, Patch: graph.Patch{key: v}}); err != nil {
		f.Sync(prev)
		return err
	}
	return nil
}

// ConstantEditor edits a constant's value; it commits on blur.
type ConstantEditor struct {
	id    graph.NodeID
	sink  Sink
	value *NumberField
}

func newConstantEditor(id graph.NodeID, d *graph.ConstantData, sink Sink) *ConstantEditor {
	return &ConstantEditor{id: id, sink: sink, value: NewNumberField(d.Value)}
}

func (e *ConstantEditor) NodeID() graph.NodeID { return e.id }
func (e *ConstantEditor) Kind() graph.Kind     { return graph.KindConstant }

// Value exposes the value field for rendering
func (e *ConstantEditor) Value() *NumberField { return e.value }

// InputValue records a keystroke
func (e *ConstantEditor) InputValue(text string) { e.value.Input(text) }

// BlurValue commits the value draft
func (e *ConstantEditor) BlurValue() error {
	return commitNumber(e.sink, e.id, graph.FieldValue, e.value)
}

func (e *ConstantEditor) Sync(data graph.Data) {
	if d, ok := data.(*graph.ConstantData); ok {
		e.value.Sync(d.Value)
	}
}

// VariableEditor edits a variable's name and value; both commit on blur.
type VariableEditor struct {
	id    graph.NodeID
	sink  Sink
	name  *TextField
	value *NumberField
}

func newVariableEditor(id graph.NodeID, d *graph.VariableData, sink Sink) *VariableEditor {
	return &VariableEditor{
		id:    id,
		sink:  sink,
		name:  NewTextField(d.Name),
		value: NewNumberField(d.Value),
	}
}

func (e *VariableEditor) NodeID() graph.NodeID { return e.id }
func (e *VariableEditor) Kind() graph.Kind     { return graph.KindVariable }

// Name exposes the name field for rendering
func (e *VariableEditor) Name() *TextField { return e.name }

// Value exposes the value field for rendering
func (e *VariableEditor) Value() *NumberField { return e.value }

// InputName records a keystroke in the name field
func (e *VariableEditor) InputName(text string) { e.name.Input(text) }

// BlurName commits the name draft
func (e *VariableEditor) BlurName() error {
	prev := e.name.Committed()
	name, changed := e.name.Commit()
	if !changed {
		return nil
	}
	if err := e.sink.Emit(Command{NodeID: e.id, Patch: graph.Patch{graph.FieldName: name}}); err != nil {
		e.name.Sync(prev)
		return err
	}
	return nil
}

// InputValue records a keystroke in the value field
func (e *VariableEditor) InputValue(text string) { e.value.Input(text) }

// BlurValue commits the value draft
func (e *VariableEditor) BlurValue() error {
	return commitNumber(e.sink, e.id, graph.FieldValue, e.value)
}

func (e *VariableEditor) Sync(data graph.Data) {
	if d, ok := data.(*graph.VariableData); ok {
		e.name.Sync(d.Name)
		e.value.Sync(d.Value)
	}
}

// OperationEditor selects the operator; a selection commits immediately.
type OperationEditor struct {
	id        graph.NodeID
	sink      Sink
	operation *SelectField[graph.Operator]
}

func newOperationEditor(id graph.NodeID, d *graph.OperationData, sink Sink) *OperationEditor {
	return &OperationEditor{
		id:        id,
		sink:      sink,
		operation: NewSelectField(graph.Operators(), d.Operation),
	}
}

func (e *OperationEditor) NodeID() graph.NodeID { return e.id }
func (e *OperationEditor) Kind() graph.Kind     { return graph.KindOperation }

// Operation returns the selected operator
func (e *OperationEditor) Operation() graph.Operator { return e.operation.Value() }

// Options returns the selectable operators
func (e *OperationEditor) Options() []graph.Operator { return e.operation.Options() }

// SelectOperation commits op
func (e *OperationEditor) SelectOperation(op graph.Operator) error {
	prev := e.operation.Value()
	changed, ok := e.operation.Select(op)
	if !ok {
		return fmt.Errorf("%w: operator %q", ErrInvalidOption, string(op))
	}
	if !changed {
		return nil
	}
	if err := e.sink.Emit(Command{NodeID: e.id, Patch: graph.Patch{graph.FieldOperation: op}}); err != nil {
		e.operation.Sync(prev)
		return err
	}
	return nil
}

func (e *OperationEditor) Sync(data graph.Data) {
	if d, ok := data.(*graph.OperationData); ok {
		e.operation.Sync(d.Operation)
	}
}

// ConditionalEditor selects the comparison. The true/false outputs are not editable:
// every comparison change reasserts them as +1 and -1.
type ConditionalEditor struct {
	id         graph.NodeID
	sink       Sink
	condition  *SelectField[graph.Comparison]
	trueValue  float64
	falseValue float64
}

func newConditionalEditor(id graph.NodeID, d *graph.ConditionalData, sink Sink) *ConditionalEditor {
	return &ConditionalEditor{
		id:         id,
		sink:       sink,
		condition:  NewSelectField(graph.Comparisons(), d.Condition),
		trueValue:  d.TrueValue,
		falseValue: d.FalseValue,
	}
}

func (e *ConditionalEditor) NodeID() graph.NodeID { return e.id }
func (e *ConditionalEditor) Kind() graph.Kind     { return graph.KindConditional }

// Condition returns the selected comparison
func (e *ConditionalEditor) Condition() graph.Comparison { return e.condition.Value() }

// Options returns the selectable comparisons
func (e *ConditionalEditor) Options() []graph.Comparison { return e.condition.Options() }

// TrueValue returns the committed output for a satisfied comparison
func (e *ConditionalEditor) TrueValue() float64 { return e.trueValue }

// FalseValue returns the committed output for a failed comparison
func (e *ConditionalEditor) FalseValue() float64 { return e.falseValue }

// SelectCondition commits cmp together with the fixed outputs
func (e *ConditionalEditor) SelectCondition(cmp graph.Comparison) error {
	prev := e.condition.Value()
	changed, ok := e.condition.Select(cmp)
	if !ok {
		return fmt.Errorf("%w: comparison %q", ErrInvalidOption, string(cmp))
	}
	if !changed {
		return nil
	}
	err := e.sink.Emit(Command{NodeID: e.id, Patch: graph.Patch{
		graph.FieldCondition:  cmp,
		graph.FieldTrueValue:  graph.ConditionalTrueValue,
		graph.FieldFalseValue: graph.ConditionalFalseValue,
	}})
	if err != nil {
		e.condition.Sync(prev)
		return err
	}
	e.trueValue, e.falseValue = graph.ConditionalTrueValue, graph.ConditionalFalseValue
	return nil
}

func (e *ConditionalEditor) Sync(data graph.Data) {
	if d, ok := data.(*graph.ConditionalData); ok {
		e.condition.Sync(d.Condition)
		e.trueValue = d.TrueValue
		e.falseValue = d.FalseValue
	}
}

// ResultView displays an evaluated result. It has nothing to edit.
type ResultView struct {
	id     graph.NodeID
	result *float64
}

func newResultView(id graph.NodeID, d *graph.ResultData) *ResultView {
	v := &ResultView{id: id}
	v.Sync(d)
	return v
}

func (v *ResultView) NodeID() graph.NodeID { return v.id }
func (v *ResultView) Kind() graph.Kind     { return graph.KindResult }

// Result returns the last evaluated value, if any
func (v *ResultView) Result() (float64, bool) {
	if v.result == nil {
		return 0, false
	}
	return *v.result, true
}

// Text returns what the node displays
func (v *ResultView) Text() string {
	if r, ok := v.Result(); ok {
		return FormatNumber(r)
	}
	return "No result yet"
}

func (v *ResultView) Sync(data graph.Data) {
	d, ok := data.(*graph.ResultData)
	if !ok {
		return
	}
	if r, present := d.Value(); present {
		v.result = &r
	} else {
		v.result = nil
	}
}

// OperationLabel returns the option text shown for op
func OperationLabel(op graph.Operator) string {
	switch op {
	case graph.OpAdd:
		return "Addition (+)"
	case graph.OpSubtract:
		return "Subtraction (-)"
	case graph.OpMultiply:
		return "Multiplication (*)"
	case graph.OpDivide:
		return "Division (/)"
	case graph.OpPower:
		return "Power (**)"
	case graph.OpModulo:
		return "Modulo (%)"
	default:
		return string(op)
	}
}

// ConditionLabel returns the option text shown for cmp
func ConditionLabel(cmp graph.Comparison) string {
	switch cmp {
	case graph.CmpGreater:
		return "Greater Than (>)"
	case graph.CmpLess:
		return "Less Than (<)"
	case graph.CmpEqual:
		return "Equal To (==)"
	case graph.CmpGreaterEqual:
		return "Greater Than or Equal (>=)"
	case graph.CmpLessEqual:
		return "Less Than or Equal (<=)"
	case graph.CmpNotEqual:
		return "Not Equal (!=)"
	default:
		return string(cmp)
	}
}
