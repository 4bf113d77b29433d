package ad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlab/symform/internal/expr"
)

func TestApply_CompoundRejectedByDefault(t *testing.T) {
	A := expr.NewCoefficient(expr.Shape{2, 2})
	f := expr.NewTrace(A)

	_, err := Apply(spatialMarker(f, 0, 2), 2)
	assert.ErrorIs(t, err, ErrMissingRule)
}

func TestApply_CrossAlwaysRejected(t *testing.T) {
	a := expr.NewCoefficient(expr.Shape{3})
	b := expr.NewCoefficient(expr.Shape{3})
	f := expr.NewCross(a, b)

	_, err := Apply(spatialMarker(f, 0, 3), 3, WithCompoundRules())
	assert.ErrorIs(t, err, ErrMissingRule)
}

func TestApply_DeterminantFamilyAlwaysRejected(t *testing.T) {
	A := expr.NewCoefficient(expr.Shape{2, 2})

	for _, f := range []expr.Expr{
		expr.NewDeterminant(A),
		expr.NewCofactor(A),
		expr.NewInverse(A),
	} {
		_, err := Apply(spatialMarker(f, 0, 2), 2, WithCompoundRules())
		assert.ErrorIs(t, err, ErrMissingRule)
	}
}

func TestApply_CompoundTraceCommutes(t *testing.T) {
	A := expr.NewCoefficient(expr.Shape{2, 2})
	f := expr.NewTrace(A)

	d, err := Apply(spatialMarker(f, 0, 2), 2, WithCompoundRules())
	require.NoError(t, err)

	want := expr.NewTrace(expr.NewSpatialDerivative(A, expr.FixedIndex(0), 2))
	assert.True(t, expr.Equal(d, want), "got %s, want %s", d, want)
}

func TestApply_CompoundInnerProductRule(t *testing.T) {
	a := expr.NewCoefficient(expr.Shape{2})
	b := expr.NewCoefficient(expr.Shape{2})
	f := expr.NewInner(a, b)

	d, err := Apply(spatialMarker(f, 0, 2), 2, WithCompoundRules())
	require.NoError(t, err)

	da := expr.NewSpatialDerivative(a, expr.FixedIndex(0), 2)
	db := expr.NewSpatialDerivative(b, expr.FixedIndex(0), 2)
	want := expr.Add(expr.NewInner(da, b), expr.NewInner(a, db))
	assert.True(t, expr.Equal(d, want), "got %s, want %s", d, want)
}

func TestApply_CompoundGradientOfConstant(t *testing.T) {
	c := expr.NewConstant(expr.Shape{})
	f := expr.NewGradient(c, 2)

	d, err := Apply(spatialMarker(f, 0, 2), 2, WithCompoundRules())
	require.NoError(t, err)
	require.IsType(t, &expr.Zero{}, d)
	assert.Equal(t, expr.Shape{2}, d.Shape())
}

func TestApply_CompoundRequiresScalarVariable(t *testing.T) {
	A := expr.NewCoefficient(expr.Shape{2, 2})
	v := expr.NewVariable(expr.NewCoefficient(expr.Shape{2}))
	f := expr.NewTrace(A)

	_, err := Apply(expr.NewVariableDerivative(f, v), 2, WithCompoundRules())
	assert.ErrorIs(t, err, ErrMissingRule)
}
