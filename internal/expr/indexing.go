package expr

import "fmt"

// Indexed is component access A[jj] into a tensor-valued expression. The
// result is scalar-shaped; symbolic entries of jj become free indices.
type Indexed struct {
	base
}

// NewIndexed indexes a with the given entries, one per dimension of a's
// shape. Indexing a structural Zero yields a scalar Zero with the right
// free indices, and indexing into a component tensor, list tensor or
// identity folds away the intermediate node.
func NewIndexed(a Expr, entries ...IndexEntry) Expr {
	sh := a.Shape()
	if len(entries) != sh.Rank() {
		panic(fmt.Sprintf("expr: indexing rank-%d expression with %d entries", sh.Rank(), len(entries)))
	}
	for k, e := range entries {
		if f, ok := e.(FixedIndex); ok && (int(f) < 0 || int(f) >= sh[k]) {
			panic(fmt.Sprintf("expr: fixed index %d out of range for dimension %d", int(f), sh[k]))
		}
	}
	dims := make([]int, len(entries))
	copy(dims, sh)

	switch t := a.(type) {
	case *Zero:
		fi, idims := indexedSignature(a, entries, dims)
		return NewZero(Shape{}, fi, idims)
	case *Identity:
		f0, ok0 := entries[0].(FixedIndex)
		f1, ok1 := entries[1].(FixedIndex)
		if ok0 && ok1 {
			if f0 == f1 {
				return NewIntValue(1)
			}
			return ScalarZero()
		}
	case *ComponentTensor:
		// A[ii] as tensor, then indexed by jj: substitute ii -> jj in
		// the scalar body.
		bound := t.Indices()
		m := make(map[*Index]IndexEntry, len(bound))
		for k, i := range bound {
			m[i] = entries[k]
		}
		return ReplaceIndices(t.Scalar(), m)
	case *ListTensor:
		if f, ok := entries[0].(FixedIndex); ok {
			comp := t.Components()[int(f)]
			if len(entries) == 1 {
				return comp
			}
			return NewIndexed(comp, entries[1:]...)
		}
	}

	mi := NewMultiIndex(entries, dims)
	fi, idims := indexedSignature(a, entries, dims)
	b := base{shape: Shape{}, operands: []Expr{a, mi}, fi: fi, idims: idims}
	return &Indexed{base: b}
}

// indexedSignature merges a's free indices with the symbolic entries.
func indexedSignature(a Expr, entries []IndexEntry, dims []int) ([]*Index, map[*Index]int) {
	idims := make(map[*Index]int)
	for i, d := range a.IndexDimensions() {
		idims[i] = d
	}
	var extra []*Index
	for k, e := range entries {
		if idx, ok := e.(*Index); ok {
			extra = append(extra, idx)
			idims[idx] = dims[k]
		}
	}
	return UniqueIndices(a.FreeIndices(), extra), idims
}

// Tensor returns the indexed expression.
func (e *Indexed) Tensor() Expr { return e.operands[0] }

// Ix returns the multi-index operand.
func (e *Indexed) Ix() *MultiIndex { return e.operands[1].(*MultiIndex) }

func (e *Indexed) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 2 {
		panic("expr: Indexed.Reconstruct takes two operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewIndexed(operands[0], operands[1].(*MultiIndex).Entries()...)
}

func (e *Indexed) String() string {
	return fmt.Sprintf("%s[%s]", e.Tensor(), e.Ix())
}

// IndexSum sums its scalar summand over one bound index.
type IndexSum struct {
	base
}

// NewIndexSum binds index i in a and sums over its dimension. The index
// must be free in a with a known dimension.
func NewIndexSum(a Expr, i *Index) Expr {
	dim, ok := a.IndexDimensions()[i]
	if !ok {
		panic(fmt.Sprintf("expr: index sum over %s with unknown dimension", i))
	}
	free := false
	for _, j := range a.FreeIndices() {
		if j == i {
			free = true
			break
		}
	}
	if !free {
		panic(fmt.Sprintf("expr: index sum over %s which is not free in the summand", i))
	}
	fi := removeIndex(a.FreeIndices(), i)
	if z, ok := a.(*Zero); ok {
		return NewZero(z.Shape(), fi, SubDict(a.IndexDimensions(), fi))
	}
	mi := NewMultiIndex([]IndexEntry{i}, []int{dim})
	idims := make(map[*Index]int)
	for j, d := range a.IndexDimensions() {
		idims[j] = d
	}
	b := base{shape: a.Shape().Clone(), operands: []Expr{a, mi}, fi: fi, idims: idims}
	return &IndexSum{base: b}
}

// Summand returns the summed expression.
func (e *IndexSum) Summand() Expr { return e.operands[0] }

// Index returns the bound index.
func (e *IndexSum) Index() *Index {
	return e.operands[1].(*MultiIndex).Entries()[0].(*Index)
}

func (e *IndexSum) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 2 {
		panic("expr: IndexSum.Reconstruct takes two operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewIndexSum(operands[0], operands[1].(*MultiIndex).Entries()[0].(*Index))
}

func (e *IndexSum) String() string {
	return fmt.Sprintf("sum_%s %s", e.Index(), e.Summand())
}

// ComponentTensor rebinds the free indices ii of a scalar expression as
// tensor dimensions: (A[ii] as tensor).
type ComponentTensor struct {
	base
}

// NewComponentTensor binds the indices ii of the scalar expression a into
// a tensor of shape given by their dimensions.
func NewComponentTensor(a Expr, ii []*Index) Expr {
	if !a.Shape().Scalar() {
		panic("expr: component tensor of a non-scalar expression")
	}
	idimsA := a.IndexDimensions()
	sh := make(Shape, len(ii))
	for k, i := range ii {
		d, ok := idimsA[i]
		if !ok {
			panic(fmt.Sprintf("expr: component tensor binds %s with unknown dimension", i))
		}
		sh[k] = d
	}
	fi := removeIndices(a.FreeIndices(), ii)
	if IsZero(a) {
		return NewZero(sh, fi, SubDict(idimsA, fi))
	}
	// as_tensor(A[ii], ii) is A itself.
	if ix, ok := a.(*Indexed); ok {
		entries := ix.Ix().Entries()
		if len(entries) == len(ii) {
			match := true
			for k := range ii {
				if entries[k] != IndexEntry(ii[k]) {
					match = false
					break
				}
			}
			if match && !anyIndexIn(ix.Tensor().FreeIndices(), ii) {
				return ix.Tensor()
			}
		}
	}
	dims := make([]int, len(ii))
	entries := make([]IndexEntry, len(ii))
	for k, i := range ii {
		dims[k] = sh[k]
		entries[k] = i
	}
	mi := NewMultiIndex(entries, dims)
	idims := make(map[*Index]int)
	for j, d := range idimsA {
		idims[j] = d
	}
	b := base{shape: sh, operands: []Expr{a, mi}, fi: fi, idims: idims}
	return &ComponentTensor{base: b}
}

func anyIndexIn(fi []*Index, ii []*Index) bool {
	for _, i := range ii {
		for _, j := range fi {
			if i == j {
				return true
			}
		}
	}
	return false
}

// Scalar returns the bound scalar expression.
func (e *ComponentTensor) Scalar() Expr { return e.operands[0] }

// Indices returns the bound indices in shape order.
func (e *ComponentTensor) Indices() []*Index {
	return e.operands[1].(*MultiIndex).Indices()
}

func (e *ComponentTensor) Reconstruct(operands ...Expr) Expr {
	if len(operands) != 2 {
		panic("expr: ComponentTensor.Reconstruct takes two operands")
	}
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewComponentTensor(operands[0], operands[1].(*MultiIndex).Indices())
}

func (e *ComponentTensor) String() string {
	return fmt.Sprintf("as_tensor(%s, %s)", e.Scalar(), e.operands[1])
}

// ListTensor builds a tensor from explicit components along the leading
// dimension.
type ListTensor struct {
	base
}

// NewListTensor wraps the given components, which must share shape and
// free indices, into a tensor of one higher rank.
func NewListTensor(components ...Expr) Expr {
	if len(components) == 0 {
		panic("expr: empty list tensor")
	}
	sh0 := components[0].Shape()
	allZero := true
	for _, c := range components {
		if !c.Shape().Equal(sh0) {
			panic("expr: list tensor components with mismatching shapes")
		}
		if !IsZero(c) {
			allZero = false
		}
	}
	sh := Shape{len(components)}.Concat(sh0)
	if allZero {
		b := newBase(sh, components...)
		return NewZero(sh, b.fi, SubDict(b.idims, b.fi))
	}
	return &ListTensor{base: newBase(sh, components...)}
}

// Components returns the component expressions.
func (e *ListTensor) Components() []Expr { return e.operands }

func (e *ListTensor) Reconstruct(operands ...Expr) Expr {
	if sameOperands(e.operands, operands) {
		return e
	}
	return NewListTensor(operands...)
}

func (e *ListTensor) String() string {
	s := "["
	for k, c := range e.operands {
		if k > 0 {
			s += ", "
		}
		s += c.String()
	}
	return s + "]"
}

// AsScalar converts e to its scalar-with-explicit-indices form: a scalar
// expression indexed by fresh trailing indices, plus those indices. A
// scalar e is returned unchanged with no indices.
func AsScalar(e Expr) (Expr, []*Index) {
	r := e.Shape().Rank()
	if r == 0 {
		return e, nil
	}
	ii := NewIndices(r)
	entries := make([]IndexEntry, r)
	for k, i := range ii {
		entries[k] = i
	}
	return NewIndexed(e, entries...), ii
}

// AsTensor is the inverse of AsScalar: it rebinds the given indices of a
// scalar expression as tensor dimensions. With no indices e is returned
// unchanged.
func AsTensor(e Expr, ii []*Index) Expr {
	if len(ii) == 0 {
		return e
	}
	return NewComponentTensor(e, ii)
}

// IndexEntries converts a slice of symbolic indices to index entries.
func IndexEntries(ii []*Index) []IndexEntry {
	out := make([]IndexEntry, len(ii))
	for k, i := range ii {
		out[k] = i
	}
	return out
}
