package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual_Structural(t *testing.T) {
	f := NewCoefficient(Shape{})
	g := NewCoefficient(Shape{})

	assert.True(t, Equal(f, f))
	// Distinct coefficients are distinct fields even with equal shapes.
	assert.False(t, Equal(f, g))

	assert.True(t, Equal(NewSin(f), NewSin(f)))
	assert.False(t, Equal(NewSin(f), NewCos(f)))
	assert.True(t, Equal(NewProduct(f, g), NewProduct(f, g)))
	assert.False(t, Equal(NewProduct(f, g), NewProduct(g, f)))
}

func TestEqual_IndicesByIdentity(t *testing.T) {
	A := NewCoefficient(Shape{2})
	i, j := NewIndex(), NewIndex()

	assert.True(t, Equal(NewIndexed(A, i), NewIndexed(A, i)))
	assert.False(t, Equal(NewIndexed(A, i), NewIndexed(A, j)))
}

func TestEqual_Nil(t *testing.T) {
	f := NewCoefficient(Shape{})
	assert.False(t, Equal(f, nil))
	assert.False(t, Equal(nil, f))
	assert.True(t, Equal(nil, nil))
}

func TestReconstruct_ReusesNode(t *testing.T) {
	f := NewCoefficient(Shape{})
	g := NewCoefficient(Shape{})
	p := NewProduct(f, g)

	assert.Equal(t, Expr(p), p.Reconstruct(f, g))
	assert.NotEqual(t, Expr(p), p.Reconstruct(g, f))
}

func TestReplaceIndices(t *testing.T) {
	A := NewCoefficient(Shape{2, 2})
	i, j := NewIndex(), NewIndex()
	e := NewIndexed(A, i, j)

	// Unmapped expressions come back unchanged by identity.
	assert.Equal(t, e, ReplaceIndices(e, map[*Index]IndexEntry{NewIndex(): FixedIndex(0)}))

	r := ReplaceIndices(e, map[*Index]IndexEntry{i: FixedIndex(1)})
	ix, ok := r.(*Indexed)
	require.True(t, ok)
	assert.Equal(t, []IndexEntry{FixedIndex(1), j}, ix.Ix().Entries())
	assert.Equal(t, []*Index{j}, r.FreeIndices())
}

func TestReplaceIndices_SymbolicToSymbolic(t *testing.T) {
	A := NewCoefficient(Shape{3})
	i, k := NewIndex(), NewIndex()
	e := NewIndexed(A, i)

	r := ReplaceIndices(e, map[*Index]IndexEntry{i: k})
	assert.Equal(t, []*Index{k}, r.FreeIndices())
	// The replacement inherits the slot's dimension.
	assert.Equal(t, map[*Index]int{k: 3}, SubDict(r.IndexDimensions(), r.FreeIndices()))
}

func TestVariable_LabelIdentity(t *testing.T) {
	f := NewCoefficient(Shape{})
	v1 := NewVariable(f)
	v2 := NewVariableWithLabel(f, v1.Label())
	v3 := NewVariable(f)

	assert.True(t, Equal(v1, v2))
	assert.False(t, Equal(v1, v3))
	assert.Equal(t, v1.Label(), v2.Label())
}

func TestIsSpatiallyConstant(t *testing.T) {
	assert.True(t, IsSpatiallyConstant(NewIntValue(2)))
	assert.True(t, IsSpatiallyConstant(NewConstant(Shape{})))
	assert.False(t, IsSpatiallyConstant(NewSpatialCoordinate(2)))
	assert.False(t, IsSpatiallyConstant(NewCoefficient(Shape{})))
	assert.False(t, IsSpatiallyConstant(NewSin(NewIndexed(NewSpatialCoordinate(2), FixedIndex(0)))))
	assert.True(t, IsSpatiallyConstant(NewSum(NewIntValue(1), NewIntValue(2))))
}
