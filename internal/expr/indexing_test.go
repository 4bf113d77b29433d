package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndexed_FreeIndices(t *testing.T) {
	A := NewCoefficient(Shape{2, 3})
	i, j := NewIndex(), NewIndex()

	e := NewIndexed(A, i, j)
	assert.Equal(t, Shape{}, e.Shape())
	assert.Equal(t, []*Index{i, j}, e.FreeIndices())
	assert.Equal(t, map[*Index]int{i: 2, j: 3}, e.IndexDimensions())

	// Fixed entries contribute no free indices.
	e = NewIndexed(A, FixedIndex(0), j)
	assert.Equal(t, []*Index{j}, e.FreeIndices())
}

func TestNewIndexed_OutOfRangePanics(t *testing.T) {
	A := NewCoefficient(Shape{2})
	assert.Panics(t, func() { NewIndexed(A, FixedIndex(2)) })
	assert.Panics(t, func() { NewIndexed(A, FixedIndex(0), FixedIndex(0)) })
}

func TestNewIndexed_ZeroFolds(t *testing.T) {
	i := NewIndex()
	z := NewZero(Shape{2}, nil, nil)

	e := NewIndexed(z, i)
	require.IsType(t, &Zero{}, e)
	assert.Equal(t, Shape{}, e.Shape())
	assert.Equal(t, []*Index{i}, e.FreeIndices())
}

func TestNewIndexed_IdentityFolds(t *testing.T) {
	id := NewIdentity(3)

	assert.Equal(t, NewIntValue(1), NewIndexed(id, FixedIndex(1), FixedIndex(1)))
	assert.IsType(t, &Zero{}, NewIndexed(id, FixedIndex(0), FixedIndex(2)))

	// A symbolic entry keeps the node.
	i := NewIndex()
	e := NewIndexed(id, i, FixedIndex(0))
	require.IsType(t, &Indexed{}, e)
	assert.Equal(t, []*Index{i}, e.FreeIndices())
}

func TestNewIndexed_ComponentTensorSubstitutes(t *testing.T) {
	A := NewCoefficient(Shape{2})
	i := NewIndex()
	ct := NewComponentTensor(NewIndexed(NewIdentity(2), i, FixedIndex(0)), []*Index{i})

	// Indexing the component tensor substitutes the bound index.
	assert.Equal(t, NewIntValue(1), NewIndexed(ct, FixedIndex(0)))
	assert.IsType(t, &Zero{}, NewIndexed(ct, FixedIndex(1)))

	// Sanity: a plain tensor does not fold.
	assert.IsType(t, &Indexed{}, NewIndexed(A, FixedIndex(0)))
}

func TestNewIndexed_ListTensorSelectsComponent(t *testing.T) {
	f := NewCoefficient(Shape{})
	g := NewCoefficient(Shape{})
	lt := NewListTensor(f, g)

	assert.Equal(t, Expr(g), NewIndexed(lt, FixedIndex(1)))
}

func TestNewIndexSum_BindsIndex(t *testing.T) {
	A := NewCoefficient(Shape{3})
	i := NewIndex()
	e := NewIndexSum(NewIndexed(A, i), i)

	require.IsType(t, &IndexSum{}, e)
	assert.Equal(t, Shape{}, e.Shape())
	assert.Empty(t, e.FreeIndices())
}

func TestNewIndexSum_RequiresFreeIndex(t *testing.T) {
	f := NewCoefficient(Shape{})
	assert.Panics(t, func() { NewIndexSum(f, NewIndex()) })
}

func TestNewIndexSum_ZeroFolds(t *testing.T) {
	i := NewIndex()
	z := NewZero(Shape{}, []*Index{i}, map[*Index]int{i: 3})

	e := NewIndexSum(z, i)
	require.IsType(t, &Zero{}, e)
	assert.Empty(t, e.FreeIndices())
}

func TestNewComponentTensor_BindsIndices(t *testing.T) {
	A := NewCoefficient(Shape{2, 3})
	i, j := NewIndex(), NewIndex()
	s := NewIndexed(A, i, j)

	// Rebinding in swapped order transposes the shape.
	e := NewComponentTensor(s, []*Index{j, i})
	require.IsType(t, &ComponentTensor{}, e)
	assert.Equal(t, Shape{3, 2}, e.Shape())
	assert.Empty(t, e.FreeIndices())
}

func TestNewComponentTensor_InverseOfIndexed(t *testing.T) {
	A := NewCoefficient(Shape{2, 3})
	i, j := NewIndex(), NewIndex()

	// as_tensor(A[i,j], (i,j)) is A again.
	e := NewComponentTensor(NewIndexed(A, i, j), []*Index{i, j})
	assert.Equal(t, Expr(A), e)
}

func TestAsScalarAsTensor_Roundtrip(t *testing.T) {
	A := NewCoefficient(Shape{2, 3})

	s, ii := AsScalar(A)
	require.Len(t, ii, 2)
	assert.Equal(t, Shape{}, s.Shape())
	assert.Equal(t, ii, s.FreeIndices())

	assert.Equal(t, Expr(A), AsTensor(s, ii))
}

func TestAsScalar_ScalarUnchanged(t *testing.T) {
	f := NewCoefficient(Shape{})
	s, ii := AsScalar(f)
	assert.Equal(t, Expr(f), s)
	assert.Empty(t, ii)
	assert.Equal(t, Expr(f), AsTensor(f, nil))
}

func TestNewListTensor_AllZeroFolds(t *testing.T) {
	z := ScalarZero()
	e := NewListTensor(z, z)
	require.IsType(t, &Zero{}, e)
	assert.Equal(t, Shape{2}, e.Shape())
}
