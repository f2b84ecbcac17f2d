package relation

import "github.com/wbrown/relcore/value"

// Reorder is a projection that permutes output columns. NewOrder must be a
// permutation of the child's post-elimination bindings. It carries no
// elimination set of its own, and may not appear as the right child of a
// Join (the join would not know how to key into it).
type Reorder struct {
	Child    Relation
	NewOrder []value.Binding
}

func (*Reorder) sealed() {}

func (r *Reorder) bindingsBeforeEliminate() []value.Binding { return r.NewOrder }
func (r *Reorder) BindingsAfterEliminate() []value.Binding  { return r.NewOrder }

func (r *Reorder) EliminateTempVars(used map[value.Binding]struct{}) error {
	return r.Child.EliminateTempVars(used)
}

func (r *Reorder) fillPredicateBindingIndices() { r.Child.fillPredicateBindingIndices() }

func (r *Reorder) Iter(tx SessionTx, epoch *uint32, useDelta map[TempStoreID]struct{}) TupleIterator {
	oldOrder := r.Child.BindingsAfterEliminate()
	if len(r.NewOrder) != len(oldOrder) {
		return newErrIterator(newLogicError("reorder: new order %v is not a permutation of child bindings %v", r.NewOrder, oldOrder))
	}
	pos := bindingIndex(oldOrder)
	seen := make(map[value.Binding]struct{}, len(r.NewOrder))
	indices := make([]int, len(r.NewOrder))
	for i, b := range r.NewOrder {
		idx, ok := pos[b]
		if !ok {
			return newErrIterator(newLogicError("reorder: binding %q not found in child bindings %v", b, oldOrder))
		}
		if _, dup := seen[b]; dup {
			return newErrIterator(newLogicError("reorder: binding %q repeated in new order %v", b, r.NewOrder))
		}
		seen[b] = struct{}{}
		indices[i] = idx
	}
	inner := r.Child.Iter(tx, epoch, useDelta)
	return newMapIterator(inner, func(t value.Tuple) value.Tuple {
		out := make(value.Tuple, len(indices))
		for i, idx := range indices {
			out[i] = t[idx]
		}
		return out
	})
}
