package expr

import (
	"fmt"
	"sync/atomic"
)

// Terminal is implemented by the leaf node kinds. Terminals have no
// operands and, unless the differentiation context says otherwise, are
// independent of any differentiation variable.
type Terminal interface {
	Expr
	isTerminal()
}

func (z *Zero) isTerminal()       {}
func (v *IntValue) isTerminal()   {}
func (v *FloatValue) isTerminal() {}
func (id *Identity) isTerminal()  {}
func (m *MultiIndex) isTerminal() {}

var formCounter atomic.Int64

// SpatialCoordinate is the spatial coordinate field x. It is scalar in one
// dimension and a vector of length dim otherwise.
type SpatialCoordinate struct {
	base
	dim int
}

// NewSpatialCoordinate builds the coordinate field for the given spatial
// dimension.
func NewSpatialCoordinate(dim int) *SpatialCoordinate {
	if dim <= 0 {
		panic(fmt.Sprintf("expr: spatial dimension must be positive, got %d", dim))
	}
	sh := Shape{}
	if dim > 1 {
		sh = Shape{dim}
	}
	return &SpatialCoordinate{base: base{shape: sh}, dim: dim}
}

// Dim returns the spatial dimension.
func (x *SpatialCoordinate) Dim() int { return x.dim }

func (x *SpatialCoordinate) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: SpatialCoordinate.Reconstruct takes no operands")
	}
	return x
}

func (x *SpatialCoordinate) String() string { return "x" }

func (x *SpatialCoordinate) equalLocal(o Expr) bool { return x.dim == o.(*SpatialCoordinate).dim }

func (x *SpatialCoordinate) isTerminal() {}

// FacetNormal is the outward unit normal on a facet.
type FacetNormal struct {
	base
	dim int
}

// NewFacetNormal builds the facet normal for the given spatial dimension.
func NewFacetNormal(dim int) *FacetNormal {
	if dim <= 0 {
		panic(fmt.Sprintf("expr: spatial dimension must be positive, got %d", dim))
	}
	return &FacetNormal{base: base{shape: Shape{dim}}, dim: dim}
}

// Dim returns the spatial dimension.
func (n *FacetNormal) Dim() int { return n.dim }

func (n *FacetNormal) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: FacetNormal.Reconstruct takes no operands")
	}
	return n
}

func (n *FacetNormal) String() string { return "n" }

func (n *FacetNormal) equalLocal(o Expr) bool { return n.dim == o.(*FacetNormal).dim }

func (n *FacetNormal) isTerminal() {}

// Constant is a global constant value, unknown at compile time but
// independent of the spatial coordinate.
type Constant struct {
	base
	id int64
}

// NewConstant builds a constant of the given shape with a fresh identity.
func NewConstant(shape Shape) *Constant {
	if err := shape.Validate(); err != nil {
		panic("expr: " + err.Error())
	}
	return &Constant{base: base{shape: shape.Clone()}, id: formCounter.Add(1)}
}

// ID returns the constant's identity.
func (c *Constant) ID() int64 { return c.id }

func (c *Constant) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: Constant.Reconstruct takes no operands")
	}
	return c
}

func (c *Constant) String() string { return fmt.Sprintf("c%d", c.id) }

func (c *Constant) equalLocal(o Expr) bool { return c.id == o.(*Constant).id }

func (c *Constant) isTerminal() {}

// Coefficient is an unknown field (a known function in the assembled
// system, unknown to the symbolic layer). Identity is by id, not by
// structural comparison.
type Coefficient struct {
	base
	id int64
}

// NewCoefficient builds a coefficient field of the given shape.
func NewCoefficient(shape Shape) *Coefficient {
	if err := shape.Validate(); err != nil {
		panic("expr: " + err.Error())
	}
	return &Coefficient{base: base{shape: shape.Clone()}, id: formCounter.Add(1)}
}

// ID returns the coefficient's identity.
func (c *Coefficient) ID() int64 { return c.id }

func (c *Coefficient) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: Coefficient.Reconstruct takes no operands")
	}
	return c
}

func (c *Coefficient) String() string { return fmt.Sprintf("w%d", c.id) }

func (c *Coefficient) equalLocal(o Expr) bool { return c.id == o.(*Coefficient).id }

func (c *Coefficient) isTerminal() {}

// Argument is a form argument (test or trial function), identified by its
// number in the form.
type Argument struct {
	base
	number int
}

// NewArgument builds a form argument of the given shape and number.
func NewArgument(shape Shape, number int) *Argument {
	if err := shape.Validate(); err != nil {
		panic("expr: " + err.Error())
	}
	return &Argument{base: base{shape: shape.Clone()}, number: number}
}

// Number returns the argument number.
func (a *Argument) Number() int { return a.number }

func (a *Argument) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: Argument.Reconstruct takes no operands")
	}
	return a
}

func (a *Argument) String() string { return fmt.Sprintf("v%d", a.number) }

func (a *Argument) equalLocal(o Expr) bool { return a.number == o.(*Argument).number }

func (a *Argument) isTerminal() {}

// IsSpatiallyConstant reports whether e has no spatial dependence at all:
// it contains no coordinate, facet normal, coefficient, argument or
// unresolved derivative node.
func IsSpatiallyConstant(e Expr) bool {
	switch e.(type) {
	case *SpatialCoordinate, *FacetNormal, *Coefficient, *Argument,
		*SpatialDerivative, *VariableDerivative, *CoefficientDerivative:
		return false
	}
	for _, op := range e.Operands() {
		if !IsSpatiallyConstant(op) {
			return false
		}
	}
	return true
}
