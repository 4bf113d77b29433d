package ad

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlab/symform/internal/expr"
)

// recorder is a Diagnostics sink that keeps every warning for assertions.
type recorder struct {
	msgs []string
}

func (r *recorder) Warnf(format string, args ...any) {
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func spatialMarker(f expr.Expr, component int, dim int) expr.Expr {
	return expr.NewSpatialDerivative(f, expr.FixedIndex(component), dim)
}

func TestVisit_Memoized(t *testing.T) {
	v, err := newSpatialAD(2, expr.FixedIndex(0), Discard, false)
	require.NoError(t, err)

	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	f := expr.NewSin(x0)

	f1, d1, err := v.visit(f)
	require.NoError(t, err)
	require.Len(t, v.cache, 3) // f, x0 and x each visited once

	f2, d2, err := v.visit(f)
	require.NoError(t, err)

	// The cached pair comes back by identity, and no extra rule ran.
	assert.True(t, f1 == f2)
	assert.True(t, d1 == d2)
	assert.Len(t, v.cache, 3)
}

func TestVisit_ZeroDiffInvariant(t *testing.T) {
	// With a symbolic differentiation index, every derivative gains that
	// index on top of the node's own signature.
	i := expr.NewIndex()
	v, err := newSpatialAD(3, i, Discard, false)
	require.NoError(t, err)

	c := expr.NewConstant(expr.Shape{2})
	_, d, err := v.visit(c)
	require.NoError(t, err)

	assert.Equal(t, expr.Shape{2}, d.Shape())
	assert.Equal(t, []*expr.Index{i}, d.FreeIndices())
	assert.Equal(t, 3, d.IndexDimensions()[i])
}

func TestVisit_SumRule(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	x1 := expr.NewIndexed(x, expr.FixedIndex(1))

	d, err := Apply(spatialMarker(expr.NewSum(x0, x1), 0, 2), 2)
	require.NoError(t, err)
	// d(x0 + x1)/dx0 folds to 1.
	assert.True(t, expr.Equal(d, expr.NewIntValue(1)))
}

func TestVisit_DivisionRule(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	x1 := expr.NewIndexed(x, expr.FixedIndex(1))
	f := expr.NewDivision(x0, x1)

	d, err := Apply(spatialMarker(f, 0, 2), 2)
	require.NoError(t, err)

	// (x0/x1)' wrt x0 is (1 - (x0/x1)*0)/x1 == 1/x1.
	assert.True(t, expr.Equal(d, expr.NewDivision(expr.NewIntValue(1), x1)))
}

func TestVisit_AbsRule(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))

	d, err := Apply(spatialMarker(expr.NewAbs(x0), 0, 2), 2)
	require.NoError(t, err)
	assert.True(t, expr.Equal(d, expr.NewSign(x0)))
}

func TestVisit_SignRuleIsZero(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))

	d, err := Apply(spatialMarker(expr.NewSign(x0), 0, 2), 2)
	require.NoError(t, err)
	assert.True(t, expr.IsZero(d))
}

func TestVisit_ChainRules(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	one := expr.NewIntValue(1)
	two := expr.NewIntValue(2)

	cases := []struct {
		name string
		f    expr.Expr
		want expr.Expr
	}{
		{"sqrt", expr.NewSqrt(x0), expr.NewDivision(one, expr.NewProduct(two, expr.NewSqrt(x0)))},
		{"exp", expr.NewExp(x0), expr.NewExp(x0)},
		{"ln", expr.NewLn(x0), expr.NewDivision(one, x0)},
		{"cos", expr.NewCos(x0), expr.Neg(expr.NewSin(x0))},
		{"sin", expr.NewSin(x0), expr.NewCos(x0)},
		{"tan", expr.NewTan(x0), expr.NewDivision(two, expr.Add(expr.NewCos(expr.NewProduct(two, x0)), one))},
		{"acos", expr.NewAcos(x0), expr.Neg(expr.NewDivision(one, expr.NewSqrt(expr.Sub(one, expr.NewPower(x0, two)))))},
		{"asin", expr.NewAsin(x0), expr.NewDivision(one, expr.NewSqrt(expr.Sub(one, expr.NewPower(x0, two))))},
		{"atan", expr.NewAtan(x0), expr.NewDivision(one, expr.Add(one, expr.NewPower(x0, two)))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Apply(spatialMarker(tc.f, 0, 2), 2)
			require.NoError(t, err)
			assert.True(t, expr.Equal(d, tc.want), "got %s, want %s", d, tc.want)
		})
	}
}

func TestVisit_LnOfZeroIsDomainError(t *testing.T) {
	f := expr.NewLn(expr.ScalarZero())

	_, err := Apply(spatialMarker(f, 0, 2), 2)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestVisit_BesselZeroOrder(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))

	d, err := Apply(spatialMarker(expr.NewBessel(expr.BesselJ, expr.NewIntValue(0), x0), 0, 2), 2)
	require.NoError(t, err)
	want := expr.Neg(expr.NewBessel(expr.BesselJ, expr.NewIntValue(1), x0))
	assert.True(t, expr.Equal(d, want), "got %s, want %s", d, want)

	d, err = Apply(spatialMarker(expr.NewBessel(expr.BesselI, expr.NewIntValue(0), x0), 0, 2), 2)
	require.NoError(t, err)
	assert.True(t, expr.Equal(d, expr.NewBessel(expr.BesselI, expr.NewIntValue(1), x0)))
}

func TestVisit_BesselRecurrence(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	half := expr.NewFloatValue(0.5)

	d, err := Apply(spatialMarker(expr.NewBessel(expr.BesselJ, expr.NewIntValue(2), x0), 0, 2), 2)
	require.NoError(t, err)
	want := expr.Mul(half, expr.Sub(
		expr.NewBessel(expr.BesselJ, expr.NewIntValue(1), x0),
		expr.NewBessel(expr.BesselJ, expr.NewIntValue(3), x0)))
	assert.True(t, expr.Equal(d, want), "got %s, want %s", d, want)

	d, err = Apply(spatialMarker(expr.NewBessel(expr.BesselK, expr.NewIntValue(2), x0), 0, 2), 2)
	require.NoError(t, err)
	want = expr.Neg(expr.Mul(half, expr.Add(
		expr.NewBessel(expr.BesselK, expr.NewIntValue(1), x0),
		expr.NewBessel(expr.BesselK, expr.NewIntValue(3), x0))))
	assert.True(t, expr.Equal(d, want), "got %s, want %s", d, want)
}

func TestVisit_ConditionWarnsOnDependentCondition(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	cond := expr.NewBinaryCondition(expr.OpLT, x0, expr.NewIntValue(1))
	c := expr.NewConditional(cond, x0, expr.ScalarZero())

	rec := &recorder{}
	d, err := Apply(spatialMarker(c, 0, 2), 2, WithDiagnostics(rec))
	require.NoError(t, err)

	assert.Len(t, rec.msgs, 1)
	got, ok := d.(*expr.Conditional)
	require.True(t, ok)
	assert.True(t, expr.Equal(got.TrueBranch(), expr.NewIntValue(1)))
	assert.True(t, expr.IsZero(got.FalseBranch()))
}

func TestVisit_ConditionalBothBranchesConstant(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	cond := expr.NewBinaryCondition(expr.OpGT, x0, expr.NewIntValue(0))
	c := expr.NewConditional(cond, expr.NewIntValue(2), expr.NewIntValue(3))

	rec := &recorder{}
	d, err := Apply(spatialMarker(c, 0, 2), 2, WithDiagnostics(rec))
	require.NoError(t, err)

	assert.True(t, expr.IsZero(d))
	// The condition depends on x, so the warning still fires.
	assert.Len(t, rec.msgs, 1)
}

func TestVisit_ConditionalConstantBranchesTensorVariable(t *testing.T) {
	u := expr.NewCoefficient(expr.Shape{})
	v := expr.NewVariable(expr.NewCoefficient(expr.Shape{2}))
	cond := expr.NewBinaryCondition(expr.OpLT, u, expr.NewIntValue(1))
	c := expr.NewConditional(cond, expr.NewIntValue(2), expr.NewIntValue(3))

	d, err := Apply(expr.NewVariableDerivative(c, v), 2)
	require.NoError(t, err)
	// The collapsed zero carries the variable's extra shape.
	assert.True(t, expr.IsZero(d))
	assert.Equal(t, expr.Shape{2}, d.Shape())

	// Feeding the conditional into a product must keep the shapes of
	// the product-rule terms aligned.
	f := expr.NewProduct(c, expr.NewIndexed(v, expr.FixedIndex(0)))
	d, err = Apply(expr.NewVariableDerivative(f, v), 2)
	require.NoError(t, err)
	assert.Equal(t, expr.Shape{2}, d.Shape())
}

func TestVisit_ConditionalConstantBranchesKeepsSymbolicIndex(t *testing.T) {
	w := expr.NewCoefficient(expr.Shape{})
	cond := expr.NewBinaryCondition(expr.OpGT, w, expr.NewIntValue(0))
	c := expr.NewConditional(cond, expr.NewIntValue(2), expr.NewIntValue(3))

	i := expr.NewIndex()
	run, err := newSpatialAD(2, i, Discard, false)
	require.NoError(t, err)

	_, d, err := run.visit(c)
	require.NoError(t, err)
	require.True(t, expr.IsZero(d))
	assert.Equal(t, []*expr.Index{i}, d.FreeIndices())
	assert.Equal(t, 2, d.IndexDimensions()[i])
}

func TestVisit_RestrictedCommutes(t *testing.T) {
	w := expr.NewCoefficient(expr.Shape{})
	v := expr.NewArgument(expr.Shape{}, 0)
	f := expr.NewRestricted(w, expr.PositiveSide)

	marker := expr.NewCoefficientDerivative(f, []*expr.Coefficient{w}, []expr.Expr{v}, nil)
	d, err := Apply(marker, 2)
	require.NoError(t, err)
	assert.True(t, expr.Equal(d, expr.NewRestricted(v, expr.PositiveSide)))
}

func TestVisit_RestrictedConstantDerivativeUnwrapped(t *testing.T) {
	w := expr.NewCoefficient(expr.Shape{})
	g := expr.NewCoefficient(expr.Shape{})
	v := expr.NewArgument(expr.Shape{}, 0)
	f := expr.NewRestricted(g, expr.PositiveSide)

	marker := expr.NewCoefficientDerivative(f, []*expr.Coefficient{w}, []expr.Expr{v}, nil)
	d, err := Apply(marker, 2, WithDiagnostics(Discard))
	require.NoError(t, err)
	// dg/dw is a constant zero; no restriction is wrapped around it.
	assert.True(t, expr.IsZero(d))
}

func TestVisit_IndexedAndComponentTensor(t *testing.T) {
	// d(w[i] v[i])/dw contracted against a direction keeps shape and
	// indices intact through the indexing rules.
	w := expr.NewCoefficient(expr.Shape{2})
	dir := expr.NewArgument(expr.Shape{2}, 0)
	i := expr.NewIndex()
	f := expr.NewIndexSum(expr.NewProduct(expr.NewIndexed(w, i), expr.NewIndexed(w, i)), i)

	marker := expr.NewCoefficientDerivative(f, []*expr.Coefficient{w}, []expr.Expr{dir}, nil)
	d, err := Apply(marker, 2)
	require.NoError(t, err)

	assert.Equal(t, expr.Shape{}, d.Shape())
	assert.Empty(t, d.FreeIndices())
}

func TestVisit_ListTensorRule(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	x1 := expr.NewIndexed(x, expr.FixedIndex(1))
	f := expr.NewListTensor(x0, x1)

	d, err := Apply(spatialMarker(f, 0, 2), 2)
	require.NoError(t, err)
	require.IsType(t, &expr.ListTensor{}, d)
	lt := d.(*expr.ListTensor)
	assert.True(t, expr.Equal(lt.Components()[0], expr.NewIntValue(1)))
	assert.True(t, expr.IsZero(lt.Components()[1]))
}

func TestVisit_UnresolvedMarkerIsInternalError(t *testing.T) {
	w := expr.NewCoefficient(expr.Shape{})
	v := expr.NewVariable(w)
	inner := expr.NewVariableDerivative(v, v)

	_, err := Apply(spatialMarker(inner, 0, 2), 2)
	assert.ErrorIs(t, err, ErrInternal)
}
