// Copyright 2026 Formlab. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package expr is the public surface of the symbolic expression model.
//
// Expressions are immutable, tensor-valued nodes forming a DAG: shared
// sub-expressions are the same object, and node identity is what the
// differentiation engine memoizes on. Constructors perform light local
// canonicalization (dropping zeros in sums, folding indexing into
// component tensors); full algebraic simplification is out of scope.
//
// Example:
//
//	import (
//	    "github.com/formlab/symform/ad"
//	    "github.com/formlab/symform/expr"
//	)
//
//	func main() {
//	    x := expr.NewSpatialCoordinate(2)
//	    x0 := expr.NewIndexed(x, expr.FixedIndex(0))
//	    f := expr.NewSin(x0)
//
//	    d, err := ad.Apply(expr.NewSpatialDerivative(f, expr.FixedIndex(0), 2), 2)
//	    // d is cos(x[0])
//	    _ = d
//	    _ = err
//	}
package expr

import "github.com/formlab/symform/internal/expr"

// Expr is one node of an immutable expression DAG.
type Expr = expr.Expr

// Shape is the tensor shape of an expression value.
type Shape = expr.Shape

// Index is an opaque symbolic tensor index with identity semantics.
type Index = expr.Index

// FixedIndex is a literal component position inside a multi-index.
type FixedIndex = expr.FixedIndex

// IndexEntry is one slot of a multi-index: a symbolic *Index or a
// FixedIndex.
type IndexEntry = expr.IndexEntry

// MultiIndex is an ordered sequence of index entries.
type MultiIndex = expr.MultiIndex

// Label names a Variable; two Variable instances with one Label are the
// same differentiation variable.
type Label = expr.Label

// Variable is a labeled sub-expression.
type Variable = expr.Variable

// Terminal is implemented by the leaf node kinds.
type Terminal = expr.Terminal

// ConstantValue is implemented by the literal value kinds.
type ConstantValue = expr.ConstantValue

// Condition is implemented by the boolean-valued node kinds.
type Condition = expr.Condition

// Zero is a typed zero tensor carrying shape and free indices.
type Zero = expr.Zero

// Coefficient is an unknown field the engine can differentiate with
// respect to.
type Coefficient = expr.Coefficient

// CoefficientDerivatives supplies externally known partial derivatives
// of compound coefficients.
type CoefficientDerivatives = expr.CoefficientDerivatives

// Side selects the restriction side on an interior facet.
type Side = expr.Side

// Restriction sides.
const (
	PositiveSide = expr.PositiveSide
	NegativeSide = expr.NegativeSide
)

// CondOp identifies a binary comparison operator.
type CondOp = expr.CondOp

// Comparison operators.
const (
	OpEQ = expr.OpEQ
	OpNE = expr.OpNE
	OpLE = expr.OpLE
	OpGE = expr.OpGE
	OpLT = expr.OpLT
	OpGT = expr.OpGT
)

// MathFn identifies a scalar math function.
type MathFn = expr.MathFn

// BesselFamily identifies one of the four Bessel function families.
type BesselFamily = expr.BesselFamily

// Bessel function families.
const (
	BesselJ = expr.BesselJ
	BesselY = expr.BesselY
	BesselI = expr.BesselI
	BesselK = expr.BesselK
)

// Index construction.
var (
	NewIndex   = expr.NewIndex
	NewIndices = expr.NewIndices
	NewLabel   = expr.NewLabel
)

// Terminal constructors.
var (
	NewZero              = expr.NewZero
	ScalarZero           = expr.ScalarZero
	NewIntValue          = expr.NewIntValue
	NewFloatValue        = expr.NewFloatValue
	NewIdentity          = expr.NewIdentity
	NewSpatialCoordinate = expr.NewSpatialCoordinate
	NewFacetNormal       = expr.NewFacetNormal
	NewConstant          = expr.NewConstant
	NewCoefficient       = expr.NewCoefficient
	NewArgument          = expr.NewArgument
)

// Variables.
var (
	NewVariable          = expr.NewVariable
	NewVariableWithLabel = expr.NewVariableWithLabel
)

// Indexing and tensor construction.
var (
	NewIndexed         = expr.NewIndexed
	NewIndexSum        = expr.NewIndexSum
	NewComponentTensor = expr.NewComponentTensor
	NewListTensor      = expr.NewListTensor
	AsScalar           = expr.AsScalar
	AsTensor           = expr.AsTensor
)

// Algebra.
var (
	NewSum      = expr.NewSum
	NewProduct  = expr.NewProduct
	NewDivision = expr.NewDivision
	NewPower    = expr.NewPower
	NewAbs      = expr.NewAbs
	NewSign     = expr.NewSign
	Add         = expr.Add
	Sub         = expr.Sub
	Neg         = expr.Neg
	Mul         = expr.Mul
	Div         = expr.Div
)

// Scalar math functions.
var (
	NewSqrt   = expr.NewSqrt
	NewExp    = expr.NewExp
	NewLn     = expr.NewLn
	NewCos    = expr.NewCos
	NewSin    = expr.NewSin
	NewTan    = expr.NewTan
	NewAcos   = expr.NewAcos
	NewAsin   = expr.NewAsin
	NewAtan   = expr.NewAtan
	NewErf    = expr.NewErf
	NewBessel = expr.NewBessel
)

// Compound tensor algebra.
var (
	NewTransposed  = expr.NewTransposed
	NewTrace       = expr.NewTrace
	NewDeviatoric  = expr.NewDeviatoric
	NewOuter       = expr.NewOuter
	NewInner       = expr.NewInner
	NewDot         = expr.NewDot
	NewCross       = expr.NewCross
	NewDeterminant = expr.NewDeterminant
	NewCofactor    = expr.NewCofactor
	NewInverse     = expr.NewInverse
	NewDivergence  = expr.NewDivergence
	NewCurl        = expr.NewCurl
	NewGradient    = expr.NewGradient
)

// Restriction and conditionals.
var (
	NewRestricted      = expr.NewRestricted
	NewBinaryCondition = expr.NewBinaryCondition
	NewNotCondition    = expr.NewNotCondition
	NewConditional     = expr.NewConditional
)

// Derivative markers.
var (
	NewSpatialDerivative      = expr.NewSpatialDerivative
	NewVariableDerivative     = expr.NewVariableDerivative
	NewCoefficientDerivative  = expr.NewCoefficientDerivative
	NewCoefficientDerivatives = expr.NewCoefficientDerivatives
)

// Queries and structural helpers.
var (
	Equal               = expr.Equal
	ReplaceIndices      = expr.ReplaceIndices
	UniqueIndices       = expr.UniqueIndices
	IsZero              = expr.IsZero
	IsConstantValue     = expr.IsConstantValue
	IsScalar            = expr.IsScalar
	IsTrueScalar        = expr.IsTrueScalar
	IsSpatiallyConstant = expr.IsSpatiallyConstant
)
