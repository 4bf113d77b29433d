package expr

import "fmt"

// Side selects which side of an interior facet a restriction takes its
// trace value from.
type Side int

// Restriction sides.
const (
	PositiveSide Side = iota
	NegativeSide
)

func (s Side) String() string {
	if s == PositiveSide {
		return "+"
	}
	return "-"
}

// Restricted is the trace value of a discontinuous quantity on one side
// of an interior facet.
type Restricted struct {
	base
	side Side
}

// NewRestricted restricts f to the given side.
func NewRestricted(f Expr, side Side) Expr {
	// Restricting a restriction is a modeling error.
	if _, ok := f.(*Restricted); ok {
		panic("expr: restriction of an already restricted expression")
	}
	return &Restricted{base: newBase(f.Shape().Clone(), f), side: side}
}

// Side returns which side the restriction selects.
func (e *Restricted) Side() Side { return e.side }

func (e *Restricted) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 1 {
		panic("expr: Restricted.Reconstruct takes one operand")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewRestricted(operands[0], e.side)
}

func (e *Restricted) String() string {
	return fmt.Sprintf("(%s)(%s)", e.operands[0], e.side)
}

func (e *Restricted) equalLocal(o Expr) bool { return e.side == o.(*Restricted).side }
