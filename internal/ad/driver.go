package ad

import (
	"fmt"
	"log/slog"

	"github.com/formlab/symform/internal/expr"
)

// Option configures one differentiation run.
type Option func(*config)

type config struct {
	diag          Diagnostics
	compoundRules bool
}

// WithDiagnostics routes non-fatal warnings to d instead of the default
// slog-backed sink.
func WithDiagnostics(d Diagnostics) Option {
	return func(c *config) { c.diag = d }
}

// WithCompoundRules enables the commuting rules for compound tensor
// operators (transpose, trace, deviatoric, div, curl, grad, outer, inner,
// dot). By default those operators are rejected with ErrMissingRule and
// should be eliminated before differentiation.
func WithCompoundRules() Option {
	return func(c *config) { c.compoundRules = true }
}

// Apply differentiates the operand of one derivative marker node. The
// marker kind selects the run semantics: SpatialDerivative runs a spatial
// component derivative, VariableDerivative a labeled-variable derivative,
// CoefficientDerivative a Gateaux derivative. spatialDim is the spatial
// dimension of the surrounding geometry.
func Apply(marker expr.Expr, spatialDim int, opts ...Option) (expr.Expr, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.diag == nil {
		cfg.diag = newRunDiagnostics(slog.Default())
	}

	var (
		v       *forwardAD
		operand expr.Expr
		err     error
	)
	switch t := marker.(type) {
	case *expr.SpatialDerivative:
		if t.Dim() != spatialDim {
			return nil, fmt.Errorf("%w: derivative marker dimension %d does not match spatial dimension %d",
				ErrPrecondition, t.Dim(), spatialDim)
		}
		v, err = newSpatialAD(spatialDim, t.Entry(), cfg.diag, cfg.compoundRules)
		operand = t.Operand()
	case *expr.VariableDerivative:
		v, err = newVariableAD(t.Variable(), cfg.diag, cfg.compoundRules)
		operand = t.Operand()
	case *expr.CoefficientDerivative:
		v, err = newCoefficientAD(spatialDim, t.Coefficients(), t.Directions(), t.Table(), cfg.diag, cfg.compoundRules)
		operand = t.Operand()
	default:
		return nil, fmt.Errorf("%w: %T is not a derivative marker", ErrPrecondition, marker)
	}
	if err != nil {
		return nil, err
	}
	_, d, err := v.visit(operand)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Expand rewrites every derivative marker in e, innermost first, into its
// computed derivative and returns the marker-free expression. Shared
// sub-expressions are rewritten once.
func Expand(e expr.Expr, spatialDim int, opts ...Option) (expr.Expr, error) {
	cache := make(map[expr.Expr]expr.Expr)
	var walk func(expr.Expr) (expr.Expr, error)
	walk = func(o expr.Expr) (expr.Expr, error) {
		if r, ok := cache[o]; ok {
			return r, nil
		}
		ops := o.Operands()
		newOps := make([]expr.Expr, len(ops))
		for k, op := range ops {
			w, err := walk(op)
			if err != nil {
				return nil, err
			}
			newOps[k] = w
		}
		o2 := reuse(o, newOps...)
		switch o2.(type) {
		case *expr.SpatialDerivative, *expr.VariableDerivative, *expr.CoefficientDerivative:
			d, err := Apply(o2, spatialDim, opts...)
			if err != nil {
				return nil, err
			}
			o2 = d
		}
		cache[o] = o2
		return o2, nil
	}
	return walk(e)
}
