package expr

import "fmt"

// Compound tensor operators. These kinds are expressible in terms of the
// primitive operators and are expected to be eliminated by an upstream
// expansion pass before differentiation; the engine in internal/ad has
// rules for only a subset of them, behind an opt-in.

// Transposed is the matrix transpose.
type Transposed struct {
	base
}

// NewTransposed builds the transpose of a rank-2 expression.
func NewTransposed(a Expr) Expr {
	sh := a.Shape()
	if sh.Rank() != 2 {
		panic(fmt.Sprintf("expr: transpose of shape %s", sh))
	}
	return &Transposed{base: newBase(Shape{sh[1], sh[0]}, a)}
}

func (e *Transposed) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewTransposed(operands[0])
}

func (e *Transposed) String() string { return fmt.Sprintf("transpose(%s)", e.operands[0]) }

// Trace is the matrix trace.
type Trace struct {
	base
}

// NewTrace builds the trace of a square rank-2 expression.
func NewTrace(a Expr) Expr {
	sh := a.Shape()
	if sh.Rank() != 2 || sh[0] != sh[1] {
		panic(fmt.Sprintf("expr: trace of shape %s", sh))
	}
	return &Trace{base: newBase(Shape{}, a)}
}

func (e *Trace) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewTrace(operands[0])
}

func (e *Trace) String() string { return fmt.Sprintf("tr(%s)", e.operands[0]) }

// Deviatoric is the deviatoric (trace-free) part of a square matrix.
type Deviatoric struct {
	base
}

// NewDeviatoric builds the deviatoric part of a square rank-2 expression.
func NewDeviatoric(a Expr) Expr {
	sh := a.Shape()
	if sh.Rank() != 2 || sh[0] != sh[1] {
		panic(fmt.Sprintf("expr: deviatoric of shape %s", sh))
	}
	return &Deviatoric{base: newBase(sh.Clone(), a)}
}

func (e *Deviatoric) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewDeviatoric(operands[0])
}

func (e *Deviatoric) String() string { return fmt.Sprintf("dev(%s)", e.operands[0]) }

// Outer is the outer product a ⊗ b.
type Outer struct {
	base
}

// NewOuter builds the outer product of two expressions.
func NewOuter(a, b Expr) Expr {
	return &Outer{base: newBase(a.Shape().Concat(b.Shape()), a, b)}
}

func (e *Outer) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewOuter(operands[0], operands[1])
}

func (e *Outer) String() string { return fmt.Sprintf("outer(%s, %s)", e.operands[0], e.operands[1]) }

// Inner is the full contraction a : b of two equally shaped expressions.
type Inner struct {
	base
}

// NewInner builds the inner product of two equally shaped expressions.
func NewInner(a, b Expr) Expr {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("expr: inner product of shapes %s and %s", a.Shape(), b.Shape()))
	}
	return &Inner{base: newBase(Shape{}, a, b)}
}

func (e *Inner) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewInner(operands[0], operands[1])
}

func (e *Inner) String() string { return fmt.Sprintf("inner(%s, %s)", e.operands[0], e.operands[1]) }

// Dot contracts the last dimension of a with the first dimension of b.
type Dot struct {
	base
}

// NewDot builds the dot product of two expressions of rank one or higher.
func NewDot(a, b Expr) Expr {
	ash, bsh := a.Shape(), b.Shape()
	if ash.Rank() == 0 || bsh.Rank() == 0 {
		panic("expr: dot product requires operands of rank 1 or higher")
	}
	if ash[ash.Rank()-1] != bsh[0] {
		panic(fmt.Sprintf("expr: dot product of shapes %s and %s", ash, bsh))
	}
	sh := ash[:ash.Rank()-1].Concat(bsh[1:])
	return &Dot{base: newBase(sh, a, b)}
}

func (e *Dot) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewDot(operands[0], operands[1])
}

func (e *Dot) String() string { return fmt.Sprintf("dot(%s, %s)", e.operands[0], e.operands[1]) }

// Cross is the three-dimensional cross product.
type Cross struct {
	base
}

// NewCross builds the cross product of two 3-vectors.
func NewCross(a, b Expr) Expr {
	three := Shape{3}
	if !a.Shape().Equal(three) || !b.Shape().Equal(three) {
		panic(fmt.Sprintf("expr: cross product of shapes %s and %s", a.Shape(), b.Shape()))
	}
	return &Cross{base: newBase(Shape{3}, a, b)}
}

func (e *Cross) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewCross(operands[0], operands[1])
}

func (e *Cross) String() string { return fmt.Sprintf("cross(%s, %s)", e.operands[0], e.operands[1]) }

// Determinant is the determinant of a square matrix.
type Determinant struct {
	base
}

// NewDeterminant builds the determinant of a square rank-2 expression.
func NewDeterminant(a Expr) Expr {
	sh := a.Shape()
	if sh.Rank() != 2 || sh[0] != sh[1] {
		panic(fmt.Sprintf("expr: determinant of shape %s", sh))
	}
	return &Determinant{base: newBase(Shape{}, a)}
}

func (e *Determinant) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewDeterminant(operands[0])
}

func (e *Determinant) String() string { return fmt.Sprintf("det(%s)", e.operands[0]) }

// Cofactor is the cofactor matrix of a square matrix.
type Cofactor struct {
	base
}

// NewCofactor builds the cofactor matrix of a square rank-2 expression.
func NewCofactor(a Expr) Expr {
	sh := a.Shape()
	if sh.Rank() != 2 || sh[0] != sh[1] {
		panic(fmt.Sprintf("expr: cofactor of shape %s", sh))
	}
	return &Cofactor{base: newBase(sh.Clone(), a)}
}

func (e *Cofactor) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewCofactor(operands[0])
}

func (e *Cofactor) String() string { return fmt.Sprintf("cofac(%s)", e.operands[0]) }

// Inverse is the matrix inverse.
type Inverse struct {
	base
}

// NewInverse builds the inverse of a square rank-2 expression.
func NewInverse(a Expr) Expr {
	sh := a.Shape()
	if sh.Rank() != 2 || sh[0] != sh[1] {
		panic(fmt.Sprintf("expr: inverse of shape %s", sh))
	}
	return &Inverse{base: newBase(sh.Clone(), a)}
}

func (e *Inverse) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewInverse(operands[0])
}

func (e *Inverse) String() string { return fmt.Sprintf("inv(%s)", e.operands[0]) }

// Divergence contracts the last axis of a field against the spatial
// gradient.
type Divergence struct {
	base
}

// NewDivergence builds the divergence of a rank >= 1 expression.
func NewDivergence(f Expr) Expr {
	sh := f.Shape()
	if sh.Rank() == 0 {
		panic("expr: divergence of a scalar expression")
	}
	return &Divergence{base: newBase(sh[:sh.Rank()-1].Clone(), f)}
}

func (e *Divergence) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewDivergence(operands[0])
}

func (e *Divergence) String() string { return fmt.Sprintf("div(%s)", e.operands[0]) }

// Curl is the three-dimensional curl.
type Curl struct {
	base
}

// NewCurl builds the curl of a 3-vector field.
func NewCurl(f Expr) Expr {
	if !f.Shape().Equal(Shape{3}) {
		panic(fmt.Sprintf("expr: curl of shape %s", f.Shape()))
	}
	return &Curl{base: newBase(Shape{3}, f)}
}

func (e *Curl) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewCurl(operands[0])
}

func (e *Curl) String() string { return fmt.Sprintf("curl(%s)", e.operands[0]) }

// Gradient appends one spatial axis to the shape of a field.
type Gradient struct {
	base
	dim int
}

// NewGradient builds the spatial gradient of f in the given dimension.
func NewGradient(f Expr, dim int) Expr {
	if dim <= 0 {
		panic(fmt.Sprintf("expr: spatial dimension must be positive, got %d", dim))
	}
	return &Gradient{base: newBase(f.Shape().Concat(Shape{dim}), f), dim: dim}
}

// Dim returns the spatial dimension.
func (e *Gradient) Dim() int { return e.dim }

func (e *Gradient) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewGradient(operands[0], e.dim)
}

func (e *Gradient) String() string { return fmt.Sprintf("grad(%s)", e.operands[0]) }

func (e *Gradient) equalLocal(o Expr) bool { return e.dim == o.(*Gradient).dim }
