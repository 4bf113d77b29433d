package expr

import (
	"fmt"
	"sync/atomic"
)

// Label identifies a Variable. Two Variable nodes carrying the same Label
// denote the same quantity regardless of structural differences in their
// wrapped expressions, and must share one cached derivative.
type Label struct {
	id int64
}

var labelCounter atomic.Int64

// NewLabel creates a fresh label.
func NewLabel() *Label {
	return &Label{id: labelCounter.Add(1)}
}

// ID returns the stable numeric id of the label.
func (l *Label) ID() int64 { return l.id }

func (l *Label) String() string { return fmt.Sprintf("s%d", l.id) }

// Variable wraps an expression under a label so that derivatives can be
// taken with respect to it and sub-expression sharing is made explicit.
type Variable struct {
	base
	label *Label
}

// NewVariable wraps e under a fresh label.
func NewVariable(e Expr) *Variable {
	return NewVariableWithLabel(e, NewLabel())
}

// NewVariableWithLabel wraps e under the given label.
func NewVariableWithLabel(e Expr, l *Label) *Variable {
	if l == nil {
		panic("expr: nil variable label")
	}
	return &Variable{base: newBase(e.Shape(), e), label: l}
}

// Label returns the variable's label.
func (v *Variable) Label() *Label { return v.label }

// Wrapped returns the expression the variable denotes.
func (v *Variable) Wrapped() Expr { return v.operands[0] }

func (v *Variable) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 1 {
		panic("expr: Variable.Reconstruct takes one operand")
	}
	if sameOperands(v.operands, operands) {
		return v
	}
	return NewVariableWithLabel(operands[0], v.label)
}

func (v *Variable) String() string {
	return fmt.Sprintf("var%d(%s)", v.label.id, v.Wrapped())
}

func (v *Variable) equalLocal(o Expr) bool { return v.label == o.(*Variable).label }
