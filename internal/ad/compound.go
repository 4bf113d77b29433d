package ad

import (
	"fmt"

	"github.com/formlab/symform/internal/expr"
)

// compound applies the commuting derivative rules for compound tensor
// operators. These rules are only sound when the differentiation variable
// adds neither shape nor indices to a derivative, so anything else is
// rejected. Cross products, determinants, cofactors and inverses never
// reach here; dispatch rejects them unconditionally.
func (v *forwardAD) compound(o expr.Expr) (expr.Expr, expr.Expr, error) {
	if !v.varShape.Scalar() || len(v.varFreeIndices) > 0 {
		return nil, nil, fmt.Errorf("%w: compound rule for %T requires a scalar differentiation variable without free indices", ErrMissingRule, o)
	}

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

	switch t := o.(type) {
	case *expr.Transposed:
		return o2, expr.NewTransposed(derivs[0]), nil
	case *expr.Trace:
		return o2, expr.NewTrace(derivs[0]), nil
	case *expr.Deviatoric:
		return o2, expr.NewDeviatoric(derivs[0]), nil
	case *expr.Divergence:
		return o2, v.spatialCompound(derivs[0], func(fp expr.Expr) expr.Expr {
			return expr.NewDivergence(fp)
		}, t.Shape()), nil
	case *expr.Curl:
		return o2, v.spatialCompound(derivs[0], func(fp expr.Expr) expr.Expr {
			return expr.NewCurl(fp)
		}, t.Shape()), nil
	case *expr.Gradient:
		return o2, v.spatialCompound(derivs[0], func(fp expr.Expr) expr.Expr {
			return expr.NewGradient(fp, t.Dim())
		}, t.Shape()), nil
	case *expr.Outer:
		return o2, expr.Add(expr.NewOuter(derivs[0], primals[1]), expr.NewOuter(primals[0], derivs[1])), nil
	case *expr.Inner:
		return o2, expr.Add(expr.NewInner(derivs[0], primals[1]), expr.NewInner(primals[0], derivs[1])), nil
	case *expr.Dot:
		return o2, expr.Add(expr.NewDot(derivs[0], primals[1]), expr.NewDot(primals[0], derivs[1])), nil
	}
	return nil, nil, fmt.Errorf("%w: %T", ErrMissingRule, o)
}

// spatialCompound commutes a spatial compound operator with the inner
// derivative, short-circuiting to a signed zero when the inner derivative
// has no spatial dependence.
func (v *forwardAD) spatialCompound(fp expr.Expr, rebuild func(expr.Expr) expr.Expr, shape expr.Shape) expr.Expr {
	if expr.IsSpatiallyConstant(fp) {
		fi := fp.FreeIndices()
		return expr.NewZero(shape.Clone(), fi, expr.SubDict(fp.IndexDimensions(), fi))
	}
	return rebuild(fp)
}
