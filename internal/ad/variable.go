package ad

import (
	"github.com/formlab/symform/internal/expr"
)

// newVariableAD builds a run context for differentiation with respect to
// a labeled Variable. Variables are matched by label identity, so every
// instance carrying the target's label differentiates to the identity
// structure of the target's shape.
func newVariableAD(target *expr.Variable, diag Diagnostics, compoundRules bool) (*forwardAD, error) {
	v := newForwardAD(0, target.Shape(), target.FreeIndices(), target.IndexDimensions(), diag, compoundRules)

	v.variableRule = func(o *expr.Variable) (expr.Expr, expr.Expr, error) {
		l := o.Label()
		if r, ok := v.variableCache[l]; ok {
			return r.primal, r.deriv, nil
		}
		var o2, op expr.Expr
		if l == target.Label() {
			ones, err := v.onesDiff(o)
			if err != nil {
				return nil, nil, err
			}
			o2, op = o, ones
		} else {
			e2, ep, err := v.visit(o.Wrapped())
			if err != nil {
				return nil, nil, err
			}
			o2, op = reuse(o, e2), ep
		}
		v.variableCache[l] = pair{primal: o2, deriv: op}
		return o2, op, nil
	}
	return v, nil
}
