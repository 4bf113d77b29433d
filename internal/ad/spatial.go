package ad

import (
	"fmt"

	"github.com/formlab/symform/internal/expr"
)

// newSpatialAD builds a run context for differentiation with respect to
// one spatial coordinate component. The component is either a fixed
// integer or a symbolic index bound to the spatial dimension; a symbolic
// component becomes an extra free index of every derivative.
func newSpatialAD(spatialDim int, entry expr.IndexEntry, diag Diagnostics, compoundRules bool) (*forwardAD, error) {
	var vfi []*expr.Index
	vid := make(map[*expr.Index]int)
	switch e := entry.(type) {
	case *expr.Index:
		vfi = []*expr.Index{e}
		vid[e] = spatialDim
	case expr.FixedIndex:
		if int(e) < 0 || int(e) >= spatialDim {
			return nil, fmt.Errorf("%w: spatial component %d outside dimension %d", ErrPrecondition, int(e), spatialDim)
		}
	default:
		return nil, fmt.Errorf("%w: spatial derivative component must be a fixed or symbolic index, got %T", ErrPrecondition, entry)
	}

	v := newForwardAD(spatialDim, expr.Shape{}, vfi, vid, diag, compoundRules)

	// dx_j/dx_i is the identity column for the component, or 1 when the
	// coordinate is itself scalar.
	v.spatialCoordinate = func(o *expr.SpatialCoordinate) (expr.Expr, expr.Expr, error) {
		if o.Shape().Scalar() {
			return o, expr.NewIntValue(1), nil
		}
		j := expr.NewIndex()
		col := expr.NewIndexed(expr.NewIdentity(spatialDim), j, entry)
		return o, expr.AsTensor(col, []*expr.Index{j}), nil
	}

	// Unknown fields keep a deferred spatial derivative marker. Reusing
	// the same symbolic index inside and outside the derivative is the
	// caller's responsibility; the index-sum rule catches the collision.
	v.formArgument = func(o expr.Expr) (expr.Expr, expr.Expr, error) {
		return o, expr.NewSpatialDerivative(o, entry, spatialDim), nil
	}
	return v, nil
}
