package expr

import "fmt"

// MathFn identifies one of the supported transcendental functions.
type MathFn int

// Supported math functions.
const (
	FnSqrt MathFn = iota
	FnExp
	FnLn
	FnCos
	FnSin
	FnTan
	FnAcos
	FnAsin
	FnAtan
	FnErf
)

var mathFnNames = map[MathFn]string{
	FnSqrt: "sqrt",
	FnExp:  "exp",
	FnLn:   "ln",
	FnCos:  "cos",
	FnSin:  "sin",
	FnTan:  "tan",
	FnAcos: "acos",
	FnAsin: "asin",
	FnAtan: "atan",
	FnErf:  "erf",
}

func (f MathFn) String() string {
	if name, ok := mathFnNames[f]; ok {
		return name
	}
	return fmt.Sprintf("mathfn(%d)", int(f))
}

// MathFunction applies a transcendental function to a true scalar
// argument.
type MathFunction struct {
	base
	fn MathFn
}

// NewMathFunction applies fn to the true scalar f.
func NewMathFunction(fn MathFn, f Expr) Expr {
	if !IsTrueScalar(f) {
		panic(fmt.Sprintf("expr: %s of a non-scalar argument", fn))
	}
	return &MathFunction{base: newBase(Shape{}, f), fn: fn}
}

// Fn returns which function is applied.
func (e *MathFunction) Fn() MathFn { return e.fn }

// Argument returns the function argument.
func (e *MathFunction) Argument() Expr { return e.operands[0] }

func (e *MathFunction) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 1 {
		panic("expr: MathFunction.Reconstruct takes one operand")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewMathFunction(e.fn, operands[0])
}

func (e *MathFunction) String() string {
	return fmt.Sprintf("%s(%s)", e.fn, e.operands[0])
}

func (e *MathFunction) equalLocal(o Expr) bool { return e.fn == o.(*MathFunction).fn }

// Convenience constructors for the individual functions.

// NewSqrt builds sqrt(f).
func NewSqrt(f Expr) Expr { return NewMathFunction(FnSqrt, f) }

// NewExp builds exp(f).
func NewExp(f Expr) Expr { return NewMathFunction(FnExp, f) }

// NewLn builds ln(f).
func NewLn(f Expr) Expr { return NewMathFunction(FnLn, f) }

// NewCos builds cos(f).
func NewCos(f Expr) Expr { return NewMathFunction(FnCos, f) }

// NewSin builds sin(f).
func NewSin(f Expr) Expr { return NewMathFunction(FnSin, f) }

// NewTan builds tan(f).
func NewTan(f Expr) Expr { return NewMathFunction(FnTan, f) }

// NewAcos builds acos(f).
func NewAcos(f Expr) Expr { return NewMathFunction(FnAcos, f) }

// NewAsin builds asin(f).
func NewAsin(f Expr) Expr { return NewMathFunction(FnAsin, f) }

// NewAtan builds atan(f).
func NewAtan(f Expr) Expr { return NewMathFunction(FnAtan, f) }

// NewErf builds erf(f).
func NewErf(f Expr) Expr { return NewMathFunction(FnErf, f) }

// BesselFamily identifies one of the four Bessel function families.
type BesselFamily int

// Bessel function families.
const (
	BesselJ BesselFamily = iota
	BesselY
	BesselI
	BesselK
)

func (f BesselFamily) String() string {
	switch f {
	case BesselJ:
		return "bessel_J"
	case BesselY:
		return "bessel_Y"
	case BesselI:
		return "bessel_I"
	case BesselK:
		return "bessel_K"
	}
	return fmt.Sprintf("bessel(%d)", int(f))
}

// Bessel is a Bessel function of integer order. The order operand is an
// integer literal and is never differentiated.
type Bessel struct {
	base
	family BesselFamily
}

// NewBessel builds a Bessel function of the given family, integer order nu
// and true scalar argument f.
func NewBessel(family BesselFamily, nu, f Expr) Expr {
	if _, ok := nu.(*IntValue); !ok {
		panic("expr: Bessel function order must be an integer literal")
	}
	if !IsTrueScalar(f) {
		panic(fmt.Sprintf("expr: %s of a non-scalar argument", family))
	}
	return &Bessel{base: newBase(Shape{}, nu, f), family: family}
}

// Family returns the Bessel family.
func (e *Bessel) Family() BesselFamily { return e.family }

// Order returns the integer order operand.
func (e *Bessel) Order() *IntValue { return e.operands[0].(*IntValue) }

// Argument returns the function argument.
func (e *Bessel) Argument() Expr { return e.operands[1] }

func (e *Bessel) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 2 {
		panic("expr: Bessel.Reconstruct takes two operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewBessel(e.family, operands[0], operands[1])
}

func (e *Bessel) String() string {
	return fmt.Sprintf("%s(%s, %s)", e.family, e.Order(), e.Argument())
}

func (e *Bessel) equalLocal(o Expr) bool { return e.family == o.(*Bessel).family }
