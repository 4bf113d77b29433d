package expr

import "fmt"

// ConstantValue is implemented by the literal value kinds (Zero, IntValue,
// FloatValue, Identity). Differentiation treats them all as terminals.
type ConstantValue interface {
	Expr
	isConstantValue()
}

// Zero is a typed zero tensor. Two Zero nodes with different signatures
// are not interchangeable even though both are numerically "0": the
// shape, free indices and index dimensions are part of the meaning.
type Zero struct {
	base
}

// NewZero builds a zero with an explicit signature. fi and idims may be
// nil for a plain scalar zero.
func NewZero(shape Shape, fi []*Index, idims map[*Index]int) *Zero {
	if err := shape.Validate(); err != nil {
		panic("expr: " + err.Error())
	}
	cp := make(map[*Index]int, len(idims))
	for i, d := range idims {
		cp[i] = d
	}
	return &Zero{base{shape: shape.Clone(), fi: append([]*Index(nil), fi...), idims: cp}}
}

// ScalarZero builds the plain scalar zero with no free indices.
func ScalarZero() *Zero {
	return NewZero(Shape{}, nil, nil)
}

func (z *Zero) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: Zero.Reconstruct takes no operands")
	}
	return z
}

func (z *Zero) String() string {
	if z.shape.Scalar() && len(z.fi) == 0 {
		return "0"
	}
	return fmt.Sprintf("0<%s>", z.shape)
}

func (z *Zero) equalLocal(o Expr) bool {
	oz := o.(*Zero)
	if len(z.fi) != len(oz.fi) {
		return false
	}
	for k := range z.fi {
		if z.fi[k] != oz.fi[k] {
			return false
		}
	}
	return true
}

func (z *Zero) isConstantValue() {}

// IsZero reports whether e is a structural Zero of any signature.
func IsZero(e Expr) bool {
	_, ok := e.(*Zero)
	return ok
}

// IntValue is an integer literal. It may carry free indices: the ones
// derivative of a variable with free indices is an IntValue(1) scoped to
// those indices.
type IntValue struct {
	base
	value int
}

// NewIntValue builds a plain scalar integer literal.
func NewIntValue(v int) *IntValue {
	return &IntValue{base: base{shape: Shape{}}, value: v}
}

// NewIntValueWithIndices builds an integer literal carrying explicit free
// indices and their dimensions.
func NewIntValueWithIndices(v int, fi []*Index, idims map[*Index]int) *IntValue {
	cp := make(map[*Index]int, len(idims))
	for i, d := range idims {
		cp[i] = d
	}
	return &IntValue{
		base:  base{shape: Shape{}, fi: append([]*Index(nil), fi...), idims: cp},
		value: v,
	}
}

// Value returns the literal value.
func (v *IntValue) Value() int { return v.value }

func (v *IntValue) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: IntValue.Reconstruct takes no operands")
	}
	return v
}

func (v *IntValue) String() string { return fmt.Sprintf("%d", v.value) }

func (v *IntValue) equalLocal(o Expr) bool { return v.value == o.(*IntValue).value }

func (v *IntValue) isConstantValue() {}

// FloatValue is a floating-point literal.
type FloatValue struct {
	base
	value float64
}

// NewFloatValue builds a scalar float literal.
func NewFloatValue(v float64) *FloatValue {
	return &FloatValue{base: base{shape: Shape{}}, value: v}
}

// Value returns the literal value.
func (v *FloatValue) Value() float64 { return v.value }

func (v *FloatValue) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: FloatValue.Reconstruct takes no operands")
	}
	return v
}

func (v *FloatValue) String() string { return fmt.Sprintf("%g", v.value) }

func (v *FloatValue) equalLocal(o Expr) bool { return v.value == o.(*FloatValue).value }

func (v *FloatValue) isConstantValue() {}

// Identity is the n-by-n identity matrix.
type Identity struct {
	base
	dim int
}

// NewIdentity builds the identity matrix of the given dimension.
func NewIdentity(dim int) *Identity {
	if dim <= 0 {
		panic(fmt.Sprintf("expr: identity dimension must be positive, got %d", dim))
	}
	return &Identity{base: base{shape: Shape{dim, dim}}, dim: dim}
}

// Dim returns the matrix dimension.
func (id *Identity) Dim() int { return id.dim }

func (id *Identity) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: Identity.Reconstruct takes no operands")
	}
	return id
}

func (id *Identity) String() string { return fmt.Sprintf("I_%d", id.dim) }

func (id *Identity) equalLocal(o Expr) bool { return id.dim == o.(*Identity).dim }

func (id *Identity) isConstantValue() {}

// IsConstantValue reports whether e is a literal constant node.
func IsConstantValue(e Expr) bool {
	_, ok := e.(ConstantValue)
	return ok
}

// IsScalar reports whether e has scalar shape. Free indices are allowed.
func IsScalar(e Expr) bool {
	return e.Shape().Scalar()
}

// IsTrueScalar reports whether e has scalar shape and no free indices.
func IsTrueScalar(e Expr) bool {
	return e.Shape().Scalar() && len(e.FreeIndices()) == 0
}
