// Package expr implements the immutable expression node model for
// tensor-valued symbolic forms.
//
// Expressions form a DAG: the same node object may be shared by several
// parents, and nodes are never mutated after construction. Every node
// caches its tensor shape, its set of free (unbound) symbolic indices and
// the dimension of each of those indices, so that consumers (notably the
// forward-mode differentiation engine in internal/ad) can query signatures
// without re-walking the tree.
//
// The node catalogue is closed: Expr is a sealed interface and only the
// kinds defined in this package exist. Constructors perform the light,
// local canonicalization the rest of the system depends on (dropping
// zeros in sums, collapsing products with zero, folding indexing into
// component tensors); full simplification is deliberately out of scope.
package expr

import (
	"fmt"
	"reflect"
)

// Expr is one node of an immutable expression DAG.
//
// Expr is a sealed interface: all implementations live in this package
// and are pointer types, so nodes can be used directly as map keys with
// identity semantics.
type Expr interface {
	// Operands returns the child expressions, in order. Terminals
	// return nil.
	Operands() []Expr

	// Shape returns the tensor shape of the expression value.
	Shape() Shape

	// FreeIndices returns the unbound symbolic indices of the
	// expression, deterministically ordered.
	FreeIndices() []*Index

	// IndexDimensions maps each known symbolic index to its dimension.
	// Its key set is a superset of FreeIndices.
	IndexDimensions() map[*Index]int

	// Reconstruct builds a node of the same kind with new operands,
	// returning the receiver when every operand is identical.
	Reconstruct(operands ...Expr) Expr

	fmt.Stringer

	// equalLocal compares non-operand payload against a node of the
	// same concrete type. Sealing method.
	equalLocal(o Expr) bool
}

// base carries the cached signature shared by all node kinds.
type base struct {
	shape    Shape
	operands []Expr
	fi       []*Index
	idims    map[*Index]int
}

func (b *base) Shape() Shape                    { return b.shape }
func (b *base) Operands() []Expr                { return b.operands }
func (b *base) FreeIndices() []*Index           { return b.fi }
func (b *base) IndexDimensions() map[*Index]int { return b.idims }

func (b *base) equalLocal(o Expr) bool { return true }

// newBase computes the default signature for a node: free indices are the
// union of the operands' free indices and index dimensions are merged
// across operands. Binding node kinds adjust the result afterwards.
func newBase(shape Shape, operands ...Expr) base {
	var fi []*Index
	idims := make(map[*Index]int)
	seen := make(map[*Index]bool)
	for _, op := range operands {
		for _, i := range op.FreeIndices() {
			if !seen[i] {
				seen[i] = true
				fi = append(fi, i)
			}
		}
		for i, d := range op.IndexDimensions() {
			idims[i] = d
		}
	}
	return base{shape: shape, operands: operands, fi: fi, idims: idims}
}

// sameOperands reports whether the given operands are identical (by node
// identity) to the node's current operands.
func sameOperands(old []Expr, operands []Expr) bool {
	if len(old) != len(operands) {
		return false
	}
	for k := range old {
		if old[k] != operands[k] {
			return false
		}
	}
	return true
}

// Equal reports structural equality of two expressions. Symbolic indices
// and labels compare by identity; everything else compares by kind,
// payload and operands.
//
// Note that the differentiation engine's memoization is keyed on node
// identity, not on this relation: structurally equal nodes occupying
// different DAG positions keep independent results.
func Equal(a, b Expr) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !a.Shape().Equal(b.Shape()) {
		return false
	}
	if !a.equalLocal(b) {
		return false
	}
	aops, bops := a.Operands(), b.Operands()
	if len(aops) != len(bops) {
		return false
	}
	for k := range aops {
		if !Equal(aops[k], bops[k]) {
			return false
		}
	}
	return true
}

// ReplaceIndices rebuilds e with every free occurrence of an index in m
// replaced by the mapped entry. Nodes without any occurrence are returned
// unchanged (by identity).
func ReplaceIndices(e Expr, m map[*Index]IndexEntry) Expr {
	if len(m) == 0 {
		return e
	}
	if mi, ok := e.(*MultiIndex); ok {
		entries := make([]IndexEntry, len(mi.entries))
		dims := make([]int, len(mi.entries))
		changed := false
		for k, entry := range mi.entries {
			entries[k] = entry
			idx, symbolic := entry.(*Index)
			if !symbolic {
				continue
			}
			// A replacement index inherits the slot's dimension.
			dims[k] = mi.idims[idx]
			if repl, hit := m[idx]; hit {
				entries[k] = repl
				changed = true
			}
		}
		if !changed {
			return e
		}
		return NewMultiIndex(entries, dims)
	}
	ops := e.Operands()
	if len(ops) == 0 {
		return e
	}
	newOps := make([]Expr, len(ops))
	changed := false
	for k, op := range ops {
		newOps[k] = ReplaceIndices(op, m)
		if newOps[k] != op {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return e.Reconstruct(newOps...)
}
