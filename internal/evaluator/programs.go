package evaluator

import (
	"fmt"
	"math"

	"github.com/dshills/logicflow/pkg/graph"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// operands is the environment every operator program runs against
type operands struct {
	A float64 `expr:"a"`
	B float64 `expr:"b"`
}

// programs holds one compiled expression per operator and comparison.
// They are compiled once and are safe for concurrent use.
type programs struct {
	arithmetic  map[graph.Operator]*vm.Program
	comparisons map[graph.Comparison]*vm.Program
}

func compilePrograms() (*programs, error) {
	p := &programs{
		arithmetic:  make(map[graph.Operator]*vm.Program),
		comparisons: make(map[graph.Comparison]*vm.Program),
	}

	for _, op := range graph.Operators() {
		// floored modulo is not expressible with expr's integer %
		if op == graph.OpModulo {
			continue
		}
		program, err := expr.Compile(fmt.Sprintf("a %s b", op), expr.Env(operands{}), expr.AsFloat64())
		if err != nil {
			return nil, fmt.Errorf("compiling operator %s: %w", op, err)
		}
		p.arithmetic[op] = program
	}

	for _, cmp := range graph.Comparisons() {
		program, err := expr.Compile(fmt.Sprintf("a %s b", cmp), expr.Env(operands{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling comparison %s: %w", cmp, err)
		}
		p.comparisons[cmp] = program
	}

	return p, nil
}

// apply runs op on a and b
func (p *programs) apply(op graph.Operator, a, b float64) (float64, error) {
	if op == graph.OpModulo {
		return floorMod(a, b), nil
	}

	program, ok := p.arithmetic[op]
	if !ok {
		return 0, fmt.Errorf("unknown operation: %s", op)
	}
	out, err := vm.Run(program, operands{A: a, B: b})
	if err != nil {
		return 0, err
	}
	return out.(float64), nil
}

// compare runs cmp on a and b
func (p *programs) compare(cmp graph.Comparison, a, b float64) (bool, error) {
	program, ok := p.comparisons[cmp]
	if !ok {
		return false, fmt.Errorf("unknown condition: %s", cmp)
	}
	out, err := vm.Run(program, operands{A: a, B: b})
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

// floorMod returns a mod b with the sign of b
func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
