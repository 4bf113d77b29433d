package expr

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Index is an opaque symbolic tensor index. Two indices denote the same
// slot only when they are the same object; the numeric id exists for
// deterministic printing, not for equality.
type Index struct {
	id int64
}

var indexCounter atomic.Int64

// NewIndex creates a fresh symbolic index, distinct from every other.
func NewIndex() *Index {
	return &Index{id: indexCounter.Add(1)}
}

// NewIndices creates n fresh symbolic indices.
func NewIndices(n int) []*Index {
	ii := make([]*Index, n)
	for k := range ii {
		ii[k] = NewIndex()
	}
	return ii
}

// ID returns the stable numeric id of the index.
func (i *Index) ID() int64 { return i.id }

func (i *Index) String() string { return fmt.Sprintf("i%d", i.id) }

func (i *Index) isIndexEntry() {}

// FixedIndex is a literal component position inside a multi-index.
type FixedIndex int

func (f FixedIndex) String() string { return fmt.Sprintf("%d", int(f)) }

func (f FixedIndex) isIndexEntry() {}

// IndexEntry is one slot of a multi-index: either a symbolic *Index or a
// literal FixedIndex.
type IndexEntry interface {
	fmt.Stringer
	isIndexEntry()
}

// MultiIndex is the expression node holding an ordered sequence of index
// entries. It appears only as an operand of the indexing and derivative
// node kinds and has no tensor value of its own.
type MultiIndex struct {
	entries []IndexEntry
	idims   map[*Index]int
}

// NewMultiIndex builds a multi-index over the given entries. dims supplies
// the dimension of each symbolic entry, in entry order.
func NewMultiIndex(entries []IndexEntry, dims []int) *MultiIndex {
	if len(entries) != len(dims) {
		panic(fmt.Sprintf("expr: multi-index with %d entries but %d dimensions", len(entries), len(dims)))
	}
	idims := make(map[*Index]int)
	for k, e := range entries {
		if idx, ok := e.(*Index); ok {
			idims[idx] = dims[k]
		}
	}
	return &MultiIndex{entries: append([]IndexEntry(nil), entries...), idims: idims}
}

// Entries returns the ordered index entries.
func (m *MultiIndex) Entries() []IndexEntry { return m.entries }

// Len returns the number of entries.
func (m *MultiIndex) Len() int { return len(m.entries) }

// Indices returns the symbolic entries in order, skipping fixed ones.
func (m *MultiIndex) Indices() []*Index {
	var out []*Index
	for _, e := range m.entries {
		if idx, ok := e.(*Index); ok {
			out = append(out, idx)
		}
	}
	return out
}

// Shape of a multi-index is the empty shape; it carries no tensor value.
func (m *MultiIndex) Shape() Shape { return Shape{} }

// FreeIndices of a multi-index node is empty. Whether its symbolic entries
// are free or binding is decided by the parent node kind.
func (m *MultiIndex) FreeIndices() []*Index { return nil }

// IndexDimensions maps each symbolic entry to its dimension.
func (m *MultiIndex) IndexDimensions() map[*Index]int { return m.idims }

// Operands of a multi-index is empty.
func (m *MultiIndex) Operands() []Expr { return nil }

// Reconstruct returns the receiver; a multi-index has no operands.
func (m *MultiIndex) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 0 {
		panic("expr: MultiIndex.Reconstruct takes no operands")
	}
	return m
}

func (m *MultiIndex) String() string {
	parts := make([]string, len(m.entries))
	for k, e := range m.entries {
		parts[k] = e.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func (m *MultiIndex) equalLocal(o Expr) bool {
	om := o.(*MultiIndex)
	if len(m.entries) != len(om.entries) {
		return false
	}
	for k := range m.entries {
		if m.entries[k] != om.entries[k] {
			return false
		}
	}
	return true
}

// UniqueIndices merges index sequences, preserving first-seen order and
// dropping duplicates.
func UniqueIndices(seqs ...[]*Index) []*Index {
	var out []*Index
	seen := make(map[*Index]bool)
	for _, seq := range seqs {
		for _, i := range seq {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	return out
}

// SubDict restricts an index-dimension map to the given indices.
func SubDict(idims map[*Index]int, fi []*Index) map[*Index]int {
	out := make(map[*Index]int, len(fi))
	for _, i := range fi {
		if d, ok := idims[i]; ok {
			out[i] = d
		}
	}
	return out
}

// removeIndex returns fi without the given index.
func removeIndex(fi []*Index, i *Index) []*Index {
	var out []*Index
	for _, j := range fi {
		if j != i {
			out = append(out, j)
		}
	}
	return out
}

// removeIndices returns fi without any index in drop.
func removeIndices(fi []*Index, drop []*Index) []*Index {
	dropSet := make(map[*Index]bool, len(drop))
	for _, i := range drop {
		dropSet[i] = true
	}
	var out []*Index
	for _, j := range fi {
		if !dropSet[j] {
			out = append(out, j)
		}
	}
	return out
}
