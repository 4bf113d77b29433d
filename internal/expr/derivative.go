package expr

import "fmt"

// SpatialDerivative is the unresolved derivative d(f)/dx_i of f with
// respect to one spatial coordinate component, addressed by a fixed
// component or a symbolic index bound to the spatial dimension.
type SpatialDerivative struct {
	base
	dim int
}

// NewSpatialDerivative marks the derivative of f in the coordinate
// direction given by entry, for the given spatial dimension.
func NewSpatialDerivative(f Expr, entry IndexEntry, dim int) Expr {
	if dim <= 0 {
		panic(fmt.Sprintf("expr: spatial dimension must be positive, got %d", dim))
	}
	if fx, ok := entry.(FixedIndex); ok && (int(fx) < 0 || int(fx) >= dim) {
		panic(fmt.Sprintf("expr: spatial component %d out of range for dimension %d", int(fx), dim))
	}
	mi := NewMultiIndex([]IndexEntry{entry}, []int{dim})
	b := newBase(f.Shape().Clone(), f, mi)
	if idx, ok := entry.(*Index); ok {
		b.fi = UniqueIndices(b.fi, []*Index{idx})
		b.idims[idx] = dim
	}
	return &SpatialDerivative{base: b, dim: dim}
}

// Operand returns the differentiated expression.
func (e *SpatialDerivative) Operand() Expr { return e.operands[0] }

// Entry returns the coordinate component entry.
func (e *SpatialDerivative) Entry() IndexEntry {
	return e.operands[1].(*MultiIndex).Entries()[0]
}

// Dim returns the spatial dimension.
func (e *SpatialDerivative) Dim() int { return e.dim }

func (e *SpatialDerivative) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 2 {
		panic("expr: SpatialDerivative.Reconstruct takes two operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewSpatialDerivative(operands[0], operands[1].(*MultiIndex).Entries()[0], e.dim)
}

func (e *SpatialDerivative) String() string {
	return fmt.Sprintf("d(%s)/dx[%s]", e.Operand(), e.Entry())
}

func (e *SpatialDerivative) equalLocal(o Expr) bool { return e.dim == o.(*SpatialDerivative).dim }

// VariableDerivative is the unresolved derivative of f with respect to a
// labeled variable.
type VariableDerivative struct {
	base
}

// NewVariableDerivative marks the derivative of f with respect to v.
func NewVariableDerivative(f Expr, v *Variable) Expr {
	sh := f.Shape().Concat(v.Shape())
	return &VariableDerivative{base: newBase(sh, f, v)}
}

// Operand returns the differentiated expression.
func (e *VariableDerivative) Operand() Expr { return e.operands[0] }

// Variable returns the differentiation variable.
func (e *VariableDerivative) Variable() *Variable { return e.operands[1].(*Variable) }

func (e *VariableDerivative) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 2 {
		panic("expr: VariableDerivative.Reconstruct takes two operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewVariableDerivative(operands[0], operands[1].(*Variable))
}

func (e *VariableDerivative) String() string {
	return fmt.Sprintf("d(%s)/d%s", e.Operand(), e.Variable().Label())
}

// CoefficientDerivatives supplies externally known partial derivatives of
// compound coefficients, keyed by coefficient identity. Each entry holds
// one derivative expression per direction of the Gateaux derivative it is
// used in (a single entry is matched against a single direction).
type CoefficientDerivatives struct {
	data map[*Coefficient][]Expr
}

// NewCoefficientDerivatives builds a partial-derivative table.
func NewCoefficientDerivatives(data map[*Coefficient][]Expr) *CoefficientDerivatives {
	cp := make(map[*Coefficient][]Expr, len(data))
	for w, dw := range data {
		cp[w] = append([]Expr(nil), dw...)
	}
	return &CoefficientDerivatives{data: cp}
}

// Get returns the derivative expressions registered for w.
func (cd *CoefficientDerivatives) Get(w *Coefficient) ([]Expr, bool) {
	if cd == nil {
		return nil, false
	}
	dw, ok := cd.data[w]
	return dw, ok
}

// Len returns the number of registered coefficients.
func (cd *CoefficientDerivatives) Len() int {
	if cd == nil {
		return 0
	}
	return len(cd.data)
}

// CoefficientDerivative is the unresolved Gateaux derivative of a form
// expression with respect to a tuple of coefficients, in matching
// directions.
type CoefficientDerivative struct {
	base
	coefficients []*Coefficient
	directions   []Expr
	table        *CoefficientDerivatives
}

// NewCoefficientDerivative marks the directional derivative of f with
// respect to the given coefficients, in the given directions. The table
// may be nil when no compound-coefficient derivatives are known.
func NewCoefficientDerivative(f Expr, coefficients []*Coefficient, directions []Expr, table *CoefficientDerivatives) Expr {
	if len(coefficients) == 0 {
		panic("expr: coefficient derivative without coefficients")
	}
	if len(coefficients) != len(directions) {
		panic(fmt.Sprintf("expr: %d coefficients with %d directions", len(coefficients), len(directions)))
	}
	for k, w := range coefficients {
		if !w.Shape().Equal(directions[k].Shape()) {
			panic(fmt.Sprintf("expr: direction %d with shape %s for coefficient of shape %s",
				k, directions[k].Shape(), w.Shape()))
		}
	}
	return &CoefficientDerivative{
		base:         newBase(f.Shape().Clone(), f),
		coefficients: append([]*Coefficient(nil), coefficients...),
		directions:   append([]Expr(nil), directions...),
		table:        table,
	}
}

// Operand returns the differentiated expression.
func (e *CoefficientDerivative) Operand() Expr { return e.operands[0] }

// Coefficients returns the differentiation coefficients.
func (e *CoefficientDerivative) Coefficients() []*Coefficient { return e.coefficients }

// Directions returns the direction fields, one per coefficient.
func (e *CoefficientDerivative) Directions() []Expr { return e.directions }

// Table returns the partial-derivative table, possibly nil.
func (e *CoefficientDerivative) Table() *CoefficientDerivatives { return e.table }

func (e *CoefficientDerivative) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 1 {
		panic("expr: CoefficientDerivative.Reconstruct takes one operand")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewCoefficientDerivative(operands[0], e.coefficients, e.directions, e.table)
}

func (e *CoefficientDerivative) String() string {
	return fmt.Sprintf("d(%s)/dw", e.Operand())
}

func (e *CoefficientDerivative) equalLocal(o Expr) bool {
	oc := o.(*CoefficientDerivative)
	if len(e.coefficients) != len(oc.coefficients) {
		return false
	}
	for k := range e.coefficients {
		if e.coefficients[k] != oc.coefficients[k] {
			return false
		}
	}
	return e.table == oc.table
}
