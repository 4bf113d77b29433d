package expr

import "fmt"

// CondOp identifies a binary comparison operator.
type CondOp int

// Comparison operators.
const (
	OpEQ CondOp = iota
	OpNE
	OpLE
	OpGE
	OpLT
	OpGT
)

func (op CondOp) String() string {
	switch op {
	case OpEQ:
		return "=="
	case OpNE:
		return "!="
	case OpLE:
		return "<="
	case OpGE:
		return ">="
	case OpLT:
		return "<"
	case OpGT:
		return ">"
	}
	return fmt.Sprintf("cond(%d)", int(op))
}

// Condition is implemented by the boolean-valued node kinds. Conditions
// appear only as the first operand of a Conditional and have no tensor
// value or derivative of their own.
type Condition interface {
	Expr
	isCondition()
}

// BinaryCondition compares two true scalar expressions.
type BinaryCondition struct {
	base
	op CondOp
}

// NewBinaryCondition builds the comparison l op r of two true scalars.
func NewBinaryCondition(op CondOp, l, r Expr) *BinaryCondition {
	if !IsTrueScalar(l) || !IsTrueScalar(r) {
		panic("expr: comparing non-scalar expressions")
	}
	return &BinaryCondition{base: newBase(Shape{}, l, r), op: op}
}

// Op returns the comparison operator.
func (e *BinaryCondition) Op() CondOp { return e.op }

// Left returns the left operand.
func (e *BinaryCondition) Left() Expr { return e.operands[0] }

// Right returns the right operand.
func (e *BinaryCondition) Right() Expr { return e.operands[1] }

func (e *BinaryCondition) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 2 {
		panic("expr: BinaryCondition.Reconstruct takes two operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewBinaryCondition(e.op, operands[0], operands[1])
}

func (e *BinaryCondition) String() string {
	return fmt.Sprintf("%s %s %s", e.Left(), e.op, e.Right())
}

func (e *BinaryCondition) equalLocal(o Expr) bool { return e.op == o.(*BinaryCondition).op }

func (e *BinaryCondition) isCondition() {}

// NotCondition negates a condition.
type NotCondition struct {
	base
}

// NewNotCondition negates c.
func NewNotCondition(c Condition) *NotCondition {
	return &NotCondition{base: newBase(Shape{}, c)}
}

// Operand returns the negated condition.
func (e *NotCondition) Operand() Condition { return e.operands[0].(Condition) }

func (e *NotCondition) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 1 {
		panic("expr: NotCondition.Reconstruct takes one operand")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewNotCondition(operands[0].(Condition))
}

func (e *NotCondition) String() string { return fmt.Sprintf("!(%s)", e.operands[0]) }

func (e *NotCondition) isCondition() {}

// Conditional selects between two equally shaped branches based on a
// condition.
type Conditional struct {
	base
}

// NewConditional builds "cond ? t : f". Both branches must share shape.
func NewConditional(cond Condition, t, f Expr) Expr {
	if !t.Shape().Equal(f.Shape()) {
		panic(fmt.Sprintf("expr: conditional branches with shapes %s and %s", t.Shape(), f.Shape()))
	}
	return &Conditional{base: newBase(t.Shape().Clone(), cond, t, f)}
}

// Condition returns the selecting condition.
func (e *Conditional) Condition() Condition { return e.operands[0].(Condition) }

// TrueBranch returns the branch taken when the condition holds.
func (e *Conditional) TrueBranch() Expr { return e.operands[1] }

// FalseBranch returns the branch taken otherwise.
func (e *Conditional) FalseBranch() Expr { return e.operands[2] }

func (e *Conditional) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 3 {
		panic("expr: Conditional.Reconstruct takes three operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewConditional(operands[0].(Condition), operands[1], operands[2])
}

func (e *Conditional) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", e.operands[0], e.operands[1], e.operands[2])
}
