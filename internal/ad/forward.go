// Package ad implements forward-mode symbolic differentiation of
// tensor-valued expression DAGs.
//
// The engine walks an expression bottom-up, producing a (primal,
// derivative) pair for every node. The walk is memoized on node identity:
// a sub-expression shared by several parents is differentiated exactly
// once per run. Three differentiation-variable semantics are layered on
// one generic skeleton:
//
//   - spatial: derivative with respect to one spatial coordinate
//     component (SpatialDerivative markers),
//   - variable: derivative with respect to a labeled sub-expression
//     (VariableDerivative markers),
//   - coefficient: Gateaux derivative with respect to coefficient fields
//     in given directions (CoefficientDerivative markers).
//
// Apply inspects the marker kind and dispatches accordingly. All state is
// per run; concurrent runs need no locking because they share nothing
// mutable.
package ad

import (
	"fmt"
	"math"

	"github.com/formlab/symform/internal/expr"
)

// pair is one memoized visit result.
type pair struct {
	primal expr.Expr
	deriv  expr.Expr
}

// forwardAD is the per-run differentiation context. The differentiation
// variable is described by its extra shape, extra free indices and their
// dimensions; the three specializations configure the hook fields.
type forwardAD struct {
	spatialDim     int
	varShape       expr.Shape
	varFreeIndices []*expr.Index
	varIndexDims   map[*expr.Index]int

	// cache memoizes visits on node identity; variableCache memoizes on
	// label identity so structurally distinct Variable instances with
	// one label share a derivative.
	cache         map[expr.Expr]pair
	variableCache map[*expr.Label]pair

	diag          Diagnostics
	compoundRules bool

	// Specialization hooks. A nil hook means the generic rule applies.
	spatialCoordinate func(o *expr.SpatialCoordinate) (expr.Expr, expr.Expr, error)
	formArgument      func(o expr.Expr) (expr.Expr, expr.Expr, error)
	variableRule      func(o *expr.Variable) (expr.Expr, expr.Expr, error)
	coefficientRule   func(o *expr.Coefficient) (expr.Expr, expr.Expr, error)
}

// newForwardAD builds a run context. Both caches are always constructed
// here; no code path may observe a nil cache.
func newForwardAD(spatialDim int, varShape expr.Shape, vfi []*expr.Index, vid map[*expr.Index]int, diag Diagnostics, compoundRules bool) *forwardAD {
	idims := make(map[*expr.Index]int, len(vid))
	for i, d := range vid {
		idims[i] = d
	}
	if diag == nil {
		diag = Discard
	}
	return &forwardAD{
		spatialDim:     spatialDim,
		varShape:       varShape.Clone(),
		varFreeIndices: append([]*expr.Index(nil), vfi...),
		varIndexDims:   idims,
		cache:          make(map[expr.Expr]pair),
		variableCache:  make(map[*expr.Label]pair),
		diag:           diag,
		compoundRules:  compoundRules,
	}
}

// visit returns the (possibly rebuilt) primal and the derivative of o,
// memoized for the run.
func (v *forwardAD) visit(o expr.Expr) (expr.Expr, expr.Expr, error) {
	if r, ok := v.cache[o]; ok {
		return r.primal, r.deriv, nil
	}
	f, fp, err := v.dispatch(o)
	if err != nil {
		return nil, nil, err
	}
	v.cache[o] = pair{primal: f, deriv: fp}
	return f, fp, nil
}

// dispatch applies the differentiation rule for o's kind.
func (v *forwardAD) dispatch(o expr.Expr) (expr.Expr, expr.Expr, error) {
	switch t := o.(type) {
	case *expr.MultiIndex:
		// The nil derivative is a sentinel; no rule may consume it.
		return o, nil, nil

	case *expr.SpatialCoordinate:
		if v.spatialCoordinate != nil {
			return v.spatialCoordinate(t)
		}
		return o, v.zeroDiff(o), nil

	case *expr.Coefficient:
		if v.coefficientRule != nil {
			return v.coefficientRule(t)
		}
		if v.formArgument != nil {
			return v.formArgument(t)
		}
		return o, v.zeroDiff(o), nil

	case *expr.Argument:
		if v.formArgument != nil {
			return v.formArgument(t)
		}
		return o, v.zeroDiff(o), nil

	case *expr.Variable:
		if v.variableRule != nil {
			return v.variableRule(t)
		}
		return v.variable(t)

	case expr.Terminal:
		return o, v.zeroDiff(o), nil

	case *expr.Indexed:
		return v.indexed(t)
	case *expr.ListTensor:
		return v.listTensor(t)
	case *expr.ComponentTensor:
		return v.componentTensor(t)
	case *expr.IndexSum:
		return v.indexSum(t)

	case *expr.Sum:
		return v.sum(t)
	case *expr.Product:
		return v.product(t)
	case *expr.Division:
		return v.division(t)
	case *expr.Power:
		return v.power(t)
	case *expr.Abs:
		return v.abs(t)
	case *expr.Sign:
		return v.sign(t)

	case *expr.MathFunction:
		return v.mathFunction(t)
	case *expr.Bessel:
		return v.bessel(t)

	case *expr.Restricted:
		return v.restricted(t)

	case *expr.BinaryCondition:
		return v.binaryCondition(t)
	case *expr.NotCondition:
		return v.notCondition(t)
	case *expr.Conditional:
		return v.conditional(t)

	case *expr.SpatialDerivative:
		return v.spatialDerivative(t)
	case *expr.VariableDerivative, *expr.CoefficientDerivative:
		return nil, nil, fmt.Errorf("%w: unresolved %T reached the forward visitor", ErrInternal, o)

	case *expr.Cross, *expr.Determinant, *expr.Cofactor, *expr.Inverse:
		return nil, nil, fmt.Errorf("%w: %T has no derivative rule, eliminate compound operators before differentiation", ErrMissingRule, o)

	case *expr.Transposed, *expr.Trace, *expr.Deviatoric, *expr.Divergence,
		*expr.Curl, *expr.Gradient, *expr.Outer, *expr.Inner, *expr.Dot:
		if v.compoundRules {
			return v.compound(o)
		}
		return nil, nil, fmt.Errorf("%w: %T has no derivative rule, eliminate compound operators before differentiation", ErrMissingRule, o)
	}
	return nil, nil, fmt.Errorf("%w: %T", ErrMissingRule, o)
}

// zeroDiff builds the signed zero derivative for o: o's shape extended by
// the variable's extra shape, o's free indices extended by the variable's
// extra index when not already present.
func (v *forwardAD) zeroDiff(o expr.Expr) expr.Expr {
	sh := o.Shape().Concat(v.varShape)
	fi := o.FreeIndices()
	idims := copyIdims(o.IndexDimensions())
	for _, i := range v.varFreeIndices {
		if _, ok := idims[i]; !ok {
			fi = expr.UniqueIndices(fi, []*expr.Index{i})
			idims[i] = v.varIndexDims[i]
		}
	}
	return expr.NewZero(sh, fi, idims)
}

// onesDiff builds the identity ("ones") derivative of a node whose shape
// equals the differentiation variable's shape: a contraction of one
// explicit identity per shape dimension, re-tensorized, scaled by a
// free-index-carrying one when free indices are present.
func (v *forwardAD) onesDiff(o expr.Expr) (expr.Expr, error) {
	if !o.Shape().Equal(v.varShape) {
		return nil, fmt.Errorf("%w: identity derivative for shape %s against variable shape %s",
			ErrPrecondition, o.Shape(), v.varShape)
	}
	fi := o.FreeIndices()
	idims := copyIdims(o.IndexDimensions())
	for _, i := range v.varFreeIndices {
		if _, ok := idims[i]; !ok {
			fi = expr.UniqueIndices(fi, []*expr.Index{i})
			idims[i] = v.varIndexDims[i]
		}
	}
	one := expr.NewIntValueWithIndices(1, fi, idims)
	sh := o.Shape()
	if sh.Scalar() {
		return one, nil
	}

	var res expr.Expr
	var ind1, ind2 []*expr.Index
	for _, d := range sh {
		ij := expr.NewIndices(2)
		dij := expr.NewIndexed(expr.NewIdentity(d), ij[0], ij[1])
		if res == nil {
			res = dij
		} else {
			res = expr.NewProduct(res, dij)
		}
		ind1 = append(ind1, ij[0])
		ind2 = append(ind2, ij[1])
	}
	fp := expr.AsTensor(res, append(ind1, ind2...))
	if len(fi) > 0 {
		fp = expr.Mul(fp, one)
	}
	return fp, nil
}

// variable is the generic rule: a Variable is a label, so its derivative
// is the derivative of the wrapped expression, cached per label.
func (v *forwardAD) variable(o *expr.Variable) (expr.Expr, expr.Expr, error) {
	l := o.Label()
	if r, ok := v.variableCache[l]; ok {
		return r.primal, r.deriv, nil
	}
	e2, ep, err := v.visit(o.Wrapped())
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, e2)
	v.variableCache[l] = pair{primal: o2, deriv: ep}
	return o2, ep, nil
}

func (v *forwardAD) indexed(o *expr.Indexed) (expr.Expr, expr.Expr, error) {
	A, mi := o.Tensor(), o.Ix()
	A2, Ap, err := v.visit(A)
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, A2, mi)
	if expr.IsZero(Ap) {
		return o2, v.zeroDiff(o2), nil
	}
	// The derivative has the variable's extra rank beyond the indexed
	// slots. Index those extra dimensions by fresh indices and re-bind
	// them so the result carries exactly the variable's extra indices.
	r := Ap.Shape().Rank() - mi.Len()
	var op expr.Expr
	if r > 0 {
		ii := expr.NewIndices(r)
		entries := append(append([]expr.IndexEntry(nil), mi.Entries()...), expr.IndexEntries(ii)...)
		op = expr.AsTensor(expr.NewIndexed(Ap, entries...), ii)
	} else {
		op = expr.NewIndexed(Ap, mi.Entries()...)
	}
	return o2, op, nil
}

func (v *forwardAD) listTensor(o *expr.ListTensor) (expr.Expr, expr.Expr, error) {
	comps := o.Components()
	primals := make([]expr.Expr, len(comps))
	derivs := make([]expr.Expr, len(comps))
	for k, c := range comps {
		f, fp, err := v.visit(c)
		if err != nil {
			return nil, nil, err
		}
		primals[k], derivs[k] = f, fp
	}
	o2 := reuse(o, primals...)
	return o2, expr.NewListTensor(derivs...), nil
}

func (v *forwardAD) componentTensor(o *expr.ComponentTensor) (expr.Expr, expr.Expr, error) {
	A2, Ap, err := v.visit(o.Scalar())
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, A2, o.Operands()[1])
	if expr.IsZero(Ap) {
		return o2, v.zeroDiff(o2), nil
	}
	sAp, jj := expr.AsScalar(Ap)
	ii := append(append([]*expr.Index(nil), o.Indices()...), jj...)
	return o2, expr.NewComponentTensor(sAp, ii), nil
}

func (v *forwardAD) indexSum(o *expr.IndexSum) (expr.Expr, expr.Expr, error) {
	i := o.Index()
	// Moving a derivative inside a sum that binds the differentiation
	// variable's own index would silently accumulate terms. An example
	// is (v[i]*v[i]).dx(i), where i is bound inside the derivative.
	for _, j := range v.varFreeIndices {
		if j == i {
			return nil, nil, fmt.Errorf("%w: summation index %s is also a free index of the differentiation variable; reuse indices less across independent sub-expressions", ErrIndexCollision, i)
		}
	}
	A2, Ap, err := v.visit(o.Summand())
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, A2, o.Operands()[1])
	return o2, expr.NewIndexSum(Ap, i), nil
}

func (v *forwardAD) sum(o *expr.Sum) (expr.Expr, expr.Expr, error) {
	ops := o.Operands()
	primals := make([]expr.Expr, len(ops))
	derivs := make([]expr.Expr, len(ops))
	for k, op := range ops {
		f, fp, err := v.visit(op)
		if err != nil {
			return nil, nil, err
		}
		primals[k], derivs[k] = f, fp
	}
	o2 := reuse(o, primals...)
	return o2, expr.NewSum(derivs...), nil
}

// product implements the generalized product rule: each operand's
// derivative is scalarized over its extra indices, substituted into the
// product, re-tensorized and accumulated.
func (v *forwardAD) product(o *expr.Product) (expr.Expr, expr.Expr, error) {
	ops := o.Operands()
	primals := make([]expr.Expr, len(ops))
	derivs := make([]expr.Expr, len(ops))
	for k, op := range ops {
		f, fp, err := v.visit(op)
		if err != nil {
			return nil, nil, err
		}
		primals[k], derivs[k] = f, fp
	}
	o2 := reuse(o, primals...)

	acc := v.zeroDiff(o2)
	for k := range ops {
		sdop, ii := expr.AsScalar(derivs[k])
		fpops := make([]expr.Expr, len(primals))
		copy(fpops, primals)
		fpops[k] = sdop
		p := expr.AsTensor(expr.NewProduct(fpops...), ii)
		acc = expr.Add(acc, p)
	}
	return o2, acc, nil
}

func (v *forwardAD) division(o *expr.Division) (expr.Expr, expr.Expr, error) {
	f, fp, err := v.visit(o.Numerator())
	if err != nil {
		return nil, nil, err
	}
	g, gp, err := v.visit(o.Denominator())
	if err != nil {
		return nil, nil, err
	}
	if !expr.IsScalar(f) {
		return nil, nil, fmt.Errorf("%w: non-scalar numerator in division", ErrPrecondition)
	}
	if !expr.IsTrueScalar(g) {
		return nil, nil, fmt.Errorf("%w: non-scalar denominator in division", ErrPrecondition)
	}
	o2 := reuse(o, f, g)

	// (f/g)' == (f' - (f/g)*g') / g, with the extra indices of (f/g)
	// and g' made explicit before multiplying.
	so, oi := expr.AsScalar(o2)
	sgp, gi := expr.AsScalar(gp)
	oGp := expr.NewProduct(so, sgp)
	if len(oi)+len(gi) > 0 {
		oGp = expr.AsTensor(oGp, append(append([]*expr.Index(nil), oi...), gi...))
	}
	op := expr.Div(expr.Sub(fp, oGp), g)
	return o2, op, nil
}

func (v *forwardAD) power(o *expr.Power) (expr.Expr, expr.Expr, error) {
	f, fp, err := v.visit(o.Base())
	if err != nil {
		return nil, nil, err
	}
	g, gp, err := v.visit(o.Exponent())
	if err != nil {
		return nil, nil, err
	}
	if !expr.IsTrueScalar(f) {
		return nil, nil, fmt.Errorf("%w: non-scalar base in power", ErrPrecondition)
	}
	if !expr.IsTrueScalar(g) {
		return nil, nil, fmt.Errorf("%w: non-scalar exponent in power", ErrPrecondition)
	}

	// (f**g)' via f**(g-1) * (f'*g + f*ln(f)*g'); the node itself is
	// rewritten as f*f**(g-1) to share the new sub-expression.
	fgm1 := expr.NewPower(f, expr.Sub(g, expr.NewIntValue(1)))
	op := expr.Mul(fgm1, expr.Add(expr.Mul(fp, g), expr.Mul(expr.Mul(f, expr.NewLn(f)), gp)))
	o2 := expr.Mul(f, fgm1)
	return o2, op, nil
}

func (v *forwardAD) abs(o *expr.Abs) (expr.Expr, expr.Expr, error) {
	f, fp, err := v.visit(o.Operands()[0])
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, f)
	return o2, expr.Mul(expr.NewSign(f), fp), nil
}

func (v *forwardAD) sign(o *expr.Sign) (expr.Expr, expr.Expr, error) {
	f, _, err := v.visit(o.Operands()[0])
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, f)
	// sign is piecewise constant: its derivative vanishes almost
	// everywhere.
	return o2, v.zeroDiff(o2), nil
}

// erfChainFactor is 2/sqrt(pi).
var erfChainFactor = 2.0 / math.Sqrt(math.Pi)

func (v *forwardAD) mathFunction(o *expr.MathFunction) (expr.Expr, expr.Expr, error) {
	f, fp, err := v.visit(o.Argument())
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, f)

	one := expr.NewIntValue(1)
	two := expr.NewIntValue(2)
	var op expr.Expr
	switch o.Fn() {
	case expr.FnSqrt:
		op = expr.Div(fp, expr.Mul(two, o2))
	case expr.FnExp:
		op = expr.Mul(fp, o2)
	case expr.FnLn:
		if expr.IsZero(f) {
			return nil, nil, fmt.Errorf("%w: derivative of ln of a structural zero (division by zero)", ErrDomain)
		}
		op = expr.Div(fp, f)
	case expr.FnCos:
		op = expr.Neg(expr.Mul(fp, expr.NewSin(f)))
	case expr.FnSin:
		op = expr.Mul(fp, expr.NewCos(f))
	case expr.FnTan:
		op = expr.Div(expr.Mul(fp, two), expr.Add(expr.NewCos(expr.Mul(two, f)), one))
	case expr.FnAcos:
		op = expr.Neg(expr.Div(fp, expr.NewSqrt(expr.Sub(one, expr.NewPower(f, two)))))
	case expr.FnAsin:
		op = expr.Div(fp, expr.NewSqrt(expr.Sub(one, expr.NewPower(f, two))))
	case expr.FnAtan:
		op = expr.Div(fp, expr.Add(one, expr.NewPower(f, two)))
	case expr.FnErf:
		op = expr.Mul(fp, expr.Mul(expr.NewFloatValue(erfChainFactor), expr.NewExp(expr.Neg(expr.NewPower(f, two)))))
	default:
		return nil, nil, fmt.Errorf("%w: math function %s", ErrMissingRule, o.Fn())
	}
	return o2, op, nil
}

// bessel applies the standard recurrences. The order operand is never
// differentiated.
func (v *forwardAD) bessel(o *expr.Bessel) (expr.Expr, expr.Expr, error) {
	nu2, nup, err := v.visit(o.Order())
	if err != nil {
		return nil, nil, err
	}
	if nup != nil && !expr.IsZero(nup) {
		return nil, nil, fmt.Errorf("%w: differentiation of a Bessel function with respect to its order is not supported", ErrPrecondition)
	}
	f, fp, err := v.visit(o.Argument())
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, nu2, f)

	family := o.Family()
	nu := o.Order().Value()
	var rec expr.Expr
	if nu == 0 {
		b1 := expr.NewBessel(family, expr.NewIntValue(1), f)
		switch family {
		case expr.BesselI:
			rec = b1
		default: // J, Y, K
			rec = expr.Neg(b1)
		}
	} else {
		lower := expr.NewBessel(family, expr.NewIntValue(nu-1), f)
		upper := expr.NewBessel(family, expr.NewIntValue(nu+1), f)
		half := expr.NewFloatValue(0.5)
		switch family {
		case expr.BesselJ, expr.BesselY:
			rec = expr.Mul(half, expr.Sub(lower, upper))
		case expr.BesselI:
			rec = expr.Mul(half, expr.Add(lower, upper))
		case expr.BesselK:
			rec = expr.Neg(expr.Mul(half, expr.Add(lower, upper)))
		}
	}
	return o2, expr.Mul(rec, fp), nil
}

// restricted commutes differentiation with restriction: (f±)' == (f')±.
func (v *forwardAD) restricted(o *expr.Restricted) (expr.Expr, expr.Expr, error) {
	f, fp, err := v.visit(o.Operands()[0])
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, f)
	if expr.IsConstantValue(fp) {
		return o2, fp, nil
	}
	return o2, expr.NewRestricted(fp, o.Side()), nil
}

func (v *forwardAD) binaryCondition(o *expr.BinaryCondition) (expr.Expr, expr.Expr, error) {
	l, lp, err := v.visit(o.Left())
	if err != nil {
		return nil, nil, err
	}
	r, rp, err := v.visit(o.Right())
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, l, r)
	if nonzeroDeriv(lp) || nonzeroDeriv(rp) {
		v.diag.Warnf("differentiating a conditional with a condition that depends on the differentiation variable; this is probably not a good idea")
	}
	return o2, nil, nil
}

func (v *forwardAD) notCondition(o *expr.NotCondition) (expr.Expr, expr.Expr, error) {
	c, cp, err := v.visit(o.Operand())
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, c)
	if nonzeroDeriv(cp) {
		v.diag.Warnf("differentiating a conditional with a condition that depends on the differentiation variable; this is probably not a good idea")
	}
	return o2, nil, nil
}

func (v *forwardAD) conditional(o *expr.Conditional) (expr.Expr, expr.Expr, error) {
	c, _, err := v.visit(o.Condition())
	if err != nil {
		return nil, nil, err
	}
	t, tp, err := v.visit(o.TrueBranch())
	if err != nil {
		return nil, nil, err
	}
	f, fp, err := v.visit(o.FalseBranch())
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, c, t, f)
	if expr.IsZero(tp) && expr.IsZero(fp) {
		return o2, v.zeroDiff(o2), nil
	}
	cond, ok := c.(expr.Condition)
	if !ok {
		return nil, nil, fmt.Errorf("%w: conditional with non-condition first operand %T", ErrInternal, c)
	}
	return o2, expr.NewConditional(cond, tp, fp), nil
}

// spatialDerivative handles an already-applied spatial derivative on a
// non-terminal by commuting inward. When the inner derivative has no
// spatial dependence at all the result is a signed zero rather than a
// derivative of a constant.
func (v *forwardAD) spatialDerivative(o *expr.SpatialDerivative) (expr.Expr, expr.Expr, error) {
	f, fp, err := v.visit(o.Operand())
	if err != nil {
		return nil, nil, err
	}
	o2 := reuse(o, f, o.Operands()[1])
	entry := o.Entry()
	if expr.IsSpatiallyConstant(fp) {
		fi := fp.FreeIndices()
		idims := copyIdims(fp.IndexDimensions())
		if idx, ok := entry.(*expr.Index); ok {
			if _, has := idims[idx]; !has {
				fi = expr.UniqueIndices(fi, []*expr.Index{idx})
				idims[idx] = o.Dim()
			}
		}
		return o2, expr.NewZero(fp.Shape(), fi, idims), nil
	}
	return o2, expr.NewSpatialDerivative(fp, entry, o.Dim()), nil
}

// reuse returns o when the operands are identical, otherwise a rebuilt
// node of the same kind.
func reuse(o expr.Expr, operands ...expr.Expr) expr.Expr {
	old := o.Operands()
	if len(old) == len(operands) {
		same := true
		for k := range old {
			if old[k] != operands[k] {
				same = false
				break
			}
		}
		if same {
			return o
		}
	}
	return o.Reconstruct(operands...)
}

func nonzeroDeriv(d expr.Expr) bool {
	return d != nil && !expr.IsZero(d)
}

func copyIdims(idims map[*expr.Index]int) map[*expr.Index]int {
	cp := make(map[*expr.Index]int, len(idims))
	for i, d := range idims {
		cp[i] = d
	}
	return cp
}
