package ad

import (
	"fmt"

	"github.com/formlab/symform/internal/expr"
)

// newCoefficientAD builds a run context for the Gateaux derivative with
// respect to a tuple of coefficient fields in matching direction fields.
// Coefficients not in the tuple fall back to a caller-supplied partial
// derivative table; a coefficient missing from the table differentiates
// to zero with a warning, once per coefficient.
func newCoefficientAD(spatialDim int, coefficients []*expr.Coefficient, directions []expr.Expr, table *expr.CoefficientDerivatives, diag Diagnostics, compoundRules bool) (*forwardAD, error) {
	if len(coefficients) != len(directions) {
		return nil, fmt.Errorf("%w: %d coefficients against %d directions", ErrPrecondition, len(coefficients), len(directions))
	}
	for k, w := range coefficients {
		if !w.Shape().Equal(directions[k].Shape()) {
			return nil, fmt.Errorf("%w: direction shape %s does not match coefficient shape %s",
				ErrPrecondition, directions[k].Shape(), w.Shape())
		}
	}

	v := newForwardAD(spatialDim, expr.Shape{}, nil, nil, diag, compoundRules)
	warned := make(map[*expr.Coefficient]bool)

	v.coefficientRule = func(o *expr.Coefficient) (expr.Expr, expr.Expr, error) {
		for k, w := range coefficients {
			if w == o {
				return o, directions[k], nil
			}
		}

		gs, ok := table.Get(o)
		if !ok {
			if !warned[o] {
				warned[o] = true
				v.diag.Warnf("assuming d%s/dw = 0, coefficient is not in the derivative table", o)
			}
			return o, v.zeroDiff(o), nil
		}
		// One table entry applies to all directions, otherwise one entry
		// per direction.
		if len(gs) != 1 && len(gs) != len(directions) {
			return nil, nil, fmt.Errorf("%w: %d derivative table entries for %s against %d directions",
				ErrPrecondition, len(gs), o, len(directions))
		}

		acc := v.zeroDiff(o)
		for k, dir := range directions {
			g := gs[0]
			if len(gs) == len(directions) {
				g = gs[k]
			}
			term, err := contractDirection(g, dir)
			if err != nil {
				return nil, nil, err
			}
			acc = expr.Add(acc, term)
		}
		return o, acc, nil
	}
	return v, nil
}

// contractDirection computes the inner product of a partial derivative g
// with a direction field over the direction's own shape: scalarize g,
// multiply by the direction indexed with g's trailing indices, sum those
// indices out and re-tensorize over the leading ones.
func contractDirection(g, dir expr.Expr) (expr.Expr, error) {
	so, oi := expr.AsScalar(g)
	rv := dir.Shape().Rank()
	if len(oi) < rv {
		return nil, fmt.Errorf("%w: derivative table entry of shape %s cannot be contracted with a direction of shape %s",
			ErrPrecondition, g.Shape(), dir.Shape())
	}
	if rv == 0 {
		if len(oi) == 0 {
			return expr.Mul(so, dir), nil
		}
		return expr.AsTensor(expr.Mul(so, dir), oi), nil
	}

	oi1 := oi[:len(oi)-rv]
	oi2 := oi[len(oi)-rv:]
	prod := expr.NewProduct(so, expr.NewIndexed(dir, expr.IndexEntries(oi2)...))
	for _, j := range oi2 {
		prod = expr.NewIndexSum(prod, j)
	}
	if len(oi1) == 0 {
		return prod, nil
	}
	return expr.AsTensor(prod, oi1), nil
}
