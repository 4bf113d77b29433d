// Copyright 2026 Formlab. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ad provides forward-mode symbolic differentiation of
// tensor-valued expression DAGs.
//
// The engine computes derivatives of expressions built with package expr
// with respect to a spatial coordinate component, a labeled variable, or
// a tuple of coefficient fields (Gateaux derivative). Every run owns its
// caches, so concurrent runs need no synchronization.
//
// Example:
//
//	x := expr.NewSpatialCoordinate(2)
//	x0 := expr.NewIndexed(x, expr.FixedIndex(0))
//	f := expr.NewSin(x0)
//
//	d, err := ad.Apply(expr.NewSpatialDerivative(f, expr.FixedIndex(0), 2), 2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(d) // cos(x[0])
package ad

import "github.com/formlab/symform/internal/ad"

// Diagnostics receives non-fatal reports from a differentiation run.
type Diagnostics = ad.Diagnostics

// Option configures one differentiation run.
type Option = ad.Option

// Sentinel errors. Every fatal condition returned by Apply or Expand
// wraps one of these.
var (
	ErrMissingRule    = ad.ErrMissingRule
	ErrIndexCollision = ad.ErrIndexCollision
	ErrPrecondition   = ad.ErrPrecondition
	ErrDomain         = ad.ErrDomain
	ErrInternal       = ad.ErrInternal
)

// Run configuration and entry points.
var (
	WithDiagnostics   = ad.WithDiagnostics
	WithCompoundRules = ad.WithCompoundRules
	Apply             = ad.Apply
	Expand            = ad.Expand
)

// Discard is a Diagnostics sink that drops everything.
var Discard = ad.Discard
