package expr

import (
	"fmt"
	"strings"
)

// Sum is the sum of two or more operands of equal shape and free indices.
type Sum struct {
	base
}

// NewSum sums the given operands. Structural zeros are dropped, integer
// literals are folded, and a sum that collapses to a single operand is
// that operand.
func NewSum(operands ...Expr) Expr {
	if len(operands) == 0 {
		panic("expr: empty sum")
	}
	sh := operands[0].Shape()
	for _, op := range operands[1:] {
		if !op.Shape().Equal(sh) {
			panic(fmt.Sprintf("expr: summing shapes %s and %s", sh, op.Shape()))
		}
	}

	var kept []Expr
	intAccum := 0
	haveInt := false
	for _, op := range operands {
		switch t := op.(type) {
		case *Zero:
			continue
		case *IntValue:
			if len(t.FreeIndices()) == 0 {
				intAccum += t.value
				haveInt = true
				continue
			}
		}
		kept = append(kept, op)
	}
	if haveInt && intAccum != 0 {
		kept = append(kept, NewIntValue(intAccum))
	}

	switch len(kept) {
	case 0:
		b := newBase(sh, operands...)
		return NewZero(sh, b.fi, SubDict(b.idims, b.fi))
	case 1:
		return kept[0]
	}
	return &Sum{base: newBase(sh.Clone(), kept...)}
}

func (e *Sum) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewSum(operands...)
}

func (e *Sum) String() string {
	parts := make([]string, len(e.operands))
	for k, op := range e.operands {
		parts[k] = op.String()
	}
	return strings.Join(parts, " + ")
}

// Product is the product of two or more scalar-shaped operands. Operands
// may carry free indices; the product's free indices are their union.
type Product struct {
	base
}

// NewProduct multiplies the given scalar operands. A structural zero
// operand collapses the product to a signed Zero, and plain integer
// literals are folded.
func NewProduct(operands ...Expr) Expr {
	if len(operands) == 0 {
		panic("expr: empty product")
	}
	for _, op := range operands {
		if !op.Shape().Scalar() {
			panic(fmt.Sprintf("expr: product operand with shape %s, expecting scalars", op.Shape()))
		}
	}

	for _, op := range operands {
		if IsZero(op) {
			b := newBase(Shape{}, operands...)
			return NewZero(Shape{}, b.fi, SubDict(b.idims, b.fi))
		}
	}

	var kept []Expr
	intAccum := 1
	for _, op := range operands {
		if t, ok := op.(*IntValue); ok && len(t.FreeIndices()) == 0 {
			intAccum *= t.value
			continue
		}
		kept = append(kept, op)
	}
	if intAccum == 0 {
		b := newBase(Shape{}, operands...)
		return NewZero(Shape{}, b.fi, SubDict(b.idims, b.fi))
	}
	if len(kept) == 0 {
		return NewIntValue(intAccum)
	}
	if intAccum != 1 {
		kept = append([]Expr{NewIntValue(intAccum)}, kept...)
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &Product{base: newBase(Shape{}, kept...)}
}

func (e *Product) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewProduct(operands...)
}

func (e *Product) String() string {
	parts := make([]string, len(e.operands))
	for k, op := range e.operands {
		if needsParens(op) {
			parts[k] = "(" + op.String() + ")"
		} else {
			parts[k] = op.String()
		}
	}
	return strings.Join(parts, " * ")
}

func needsParens(e Expr) bool {
	switch e.(type) {
	case *Sum, *Division:
		return true
	}
	return false
}

// Division divides a scalar-shaped numerator (free indices allowed) by a
// true scalar denominator.
type Division struct {
	base
}

// NewDivision builds f/g. The numerator must be scalar-shaped and the
// denominator a true scalar.
func NewDivision(f, g Expr) Expr {
	if !IsScalar(f) {
		panic(fmt.Sprintf("expr: division numerator with shape %s", f.Shape()))
	}
	if !IsTrueScalar(g) {
		panic("expr: division denominator must be a true scalar")
	}
	if IsZero(g) {
		panic("expr: division by structural zero")
	}
	if IsZero(f) {
		return f
	}
	if one, ok := g.(*IntValue); ok && one.value == 1 {
		return f
	}
	return &Division{base: newBase(Shape{}, f, g)}
}

// Numerator returns the dividend.
func (e *Division) Numerator() Expr { return e.operands[0] }

// Denominator returns the divisor.
func (e *Division) Denominator() Expr { return e.operands[1] }

func (e *Division) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 2 {
		panic("expr: Division.Reconstruct takes two operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewDivision(operands[0], operands[1])
}

func (e *Division) String() string {
	num := e.Numerator().String()
	if needsParens(e.Numerator()) {
		num = "(" + num + ")"
	}
	den := e.Denominator().String()
	switch e.Denominator().(type) {
	case *Sum, *Product, *Division:
		den = "(" + den + ")"
	}
	return num + " / " + den
}

// Power is f**g for true scalar base and exponent.
type Power struct {
	base
}

// NewPower builds f**g. Both operands must be true scalars. f**1 folds to
// f and f**0 to one.
func NewPower(f, g Expr) Expr {
	if !IsTrueScalar(f) {
		panic("expr: power base must be a true scalar")
	}
	if !IsTrueScalar(g) {
		panic("expr: power exponent must be a true scalar")
	}
	if n, ok := g.(*IntValue); ok {
		switch n.value {
		case 0:
			return NewIntValue(1)
		case 1:
			return f
		}
	}
	return &Power{base: newBase(Shape{}, f, g)}
}

// Base returns the base operand.
func (e *Power) Base() Expr { return e.operands[0] }

// Exponent returns the exponent operand.
func (e *Power) Exponent() Expr { return e.operands[1] }

func (e *Power) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 2 {
		panic("expr: Power.Reconstruct takes two operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewPower(operands[0], operands[1])
}

func (e *Power) String() string {
	b := e.Base().String()
	switch e.Base().(type) {
	case *Sum, *Product, *Division, *Power:
		b = "(" + b + ")"
	}
	return fmt.Sprintf("%s**%s", b, e.Exponent())
}

// Abs is the absolute value, applied componentwise.
type Abs struct {
	base
}

// NewAbs builds |f|.
func NewAbs(f Expr) Expr {
	if IsZero(f) {
		return f
	}
	return &Abs{base: newBase(f.Shape().Clone(), f)}
}

func (e *Abs) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 1 {
		panic("expr: Abs.Reconstruct takes one operand")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewAbs(operands[0])
}

func (e *Abs) String() string { return fmt.Sprintf("abs(%s)", e.operands[0]) }

// Sign is the sign of a scalar expression. Its derivative is zero almost
// everywhere, which is how the differentiation engine treats it.
type Sign struct {
	base
}

// NewSign builds sign(f) for a scalar-shaped f.
func NewSign(f Expr) Expr {
	if !IsScalar(f) {
		panic(fmt.Sprintf("expr: sign of expression with shape %s", f.Shape()))
	}
	if IsZero(f) {
		return f
	}
	return &Sign{base: newBase(Shape{}, f)}
}

func (e *Sign) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 1 {
		panic("expr: Sign.Reconstruct takes one operand")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewSign(operands[0])
}

func (e *Sign) String() string { return fmt.Sprintf("sign(%s)", e.operands[0]) }

// Add sums two expressions of equal shape.
func Add(a, b Expr) Expr { return NewSum(a, b) }

// Sub subtracts b from a.
func Sub(a, b Expr) Expr { return NewSum(a, Neg(b)) }

// Neg negates an expression of any shape.
func Neg(a Expr) Expr {
	switch t := a.(type) {
	case *Zero:
		return a
	case *IntValue:
		if len(t.FreeIndices()) == 0 {
			return NewIntValue(-t.value)
		}
	case *FloatValue:
		return NewFloatValue(-t.value)
	}
	if a.Shape().Scalar() {
		return NewProduct(NewIntValue(-1), a)
	}
	s, ii := AsScalar(a)
	return AsTensor(NewProduct(NewIntValue(-1), s), ii)
}

// Mul multiplies two expressions, at most one of which may be non-scalar;
// the non-scalar operand is scalarized and the result re-tensorized over
// its indices.
func Mul(a, b Expr) Expr {
	ar, br := a.Shape().Rank(), b.Shape().Rank()
	switch {
	case ar == 0 && br == 0:
		return NewProduct(a, b)
	case ar > 0 && br == 0:
		s, ii := AsScalar(a)
		return AsTensor(NewProduct(s, b), ii)
	case ar == 0 && br > 0:
		s, ii := AsScalar(b)
		return AsTensor(NewProduct(a, s), ii)
	}
	panic("expr: product of two non-scalar expressions")
}

// Div divides an expression of any shape by a true scalar.
func Div(a, b Expr) Expr {
	if a.Shape().Scalar() {
		return NewDivision(a, b)
	}
	s, ii := AsScalar(a)
	return AsTensor(NewDivision(s, b), ii)
}
