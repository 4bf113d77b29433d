package ad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlab/symform/internal/expr"
)

func TestApply_RejectsNonMarker(t *testing.T) {
	f := expr.NewCoefficient(expr.Shape{})
	_, err := Apply(f, 2)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestApply_RejectsDimensionMismatch(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))

	_, err := Apply(spatialMarker(x0, 0, 2), 3)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestExpand_RewritesMarkerInPlace(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	x1 := expr.NewIndexed(x, expr.FixedIndex(1))
	marker := spatialMarker(expr.NewSin(x0), 0, 2)
	f := expr.NewProduct(marker, x1)

	e, err := Expand(f, 2)
	require.NoError(t, err)

	want := expr.NewProduct(expr.NewCos(x0), x1)
	assert.True(t, expr.Equal(e, want), "got %s, want %s", e, want)
}

func TestExpand_NestedMarkers(t *testing.T) {
	w := expr.NewCoefficient(expr.Shape{})
	v := expr.NewVariable(w)
	inner := expr.NewVariableDerivative(expr.NewPower(v, expr.NewIntValue(2)), v)
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	f := expr.NewProduct(inner, x0)

	e, err := Expand(f, 2)
	require.NoError(t, err)

	want := expr.NewProduct(expr.NewProduct(expr.NewIntValue(2), v), x0)
	assert.True(t, expr.Equal(e, want), "got %s, want %s", e, want)
}

func TestExpand_MarkerFreeExpressionUnchanged(t *testing.T) {
	x := expr.NewSpatialCoordinate(2)
	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
	f := expr.NewSin(x0)

	e, err := Expand(f, 2)
	require.NoError(t, err)
	assert.Equal(t, f, e)
}

func TestExpand_PropagatesErrors(t *testing.T) {
	f := expr.NewLn(expr.ScalarZero())
	_, err := Expand(spatialMarker(f, 0, 2), 2)
	assert.ErrorIs(t, err, ErrDomain)
}
