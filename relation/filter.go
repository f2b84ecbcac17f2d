package relation

import "github.com/wbrown/relcore/value"

// Filter wraps a parent relation and a predicate expression. After
// elimination, it drops columns in its own elimination set from emitted
// tuples.
type Filter struct {
	Parent      Relation
	Pred        Expr
	toEliminate map[value.Binding]struct{}
}

func (*Filter) sealed() {}

func (f *Filter) bindingsBeforeEliminate() []value.Binding {
	return f.Parent.BindingsAfterEliminate()
}

func (f *Filter) BindingsAfterEliminate() []value.Binding {
	before := f.bindingsBeforeEliminate()
	if len(f.toEliminate) == 0 {
		return before
	}
	out := make([]value.Binding, 0, len(before))
	for _, b := range before {
		if _, drop := f.toEliminate[b]; !drop {
			out = append(out, b)
		}
	}
	return out
}

func (f *Filter) EliminateTempVars(used map[value.Binding]struct{}) error {
	for _, b := range f.bindingsBeforeEliminate() {
		if _, ok := used[b]; !ok {
			if f.toEliminate == nil {
				f.toEliminate = make(map[value.Binding]struct{})
			}
			f.toEliminate[b] = struct{}{}
		}
	}
	next := extendUsed(used, f.Pred.Bindings())
	return f.Parent.EliminateTempVars(next)
}

func (f *Filter) fillPredicateBindingIndices() {
	f.Parent.fillPredicateBindingIndices()
	pos := bindingIndex(f.Parent.BindingsAfterEliminate())
	f.Pred.FillBindingIndices(pos)
}

func (f *Filter) Iter(tx SessionTx, epoch *uint32, useDelta map[TempStoreID]struct{}) TupleIterator {
	bindings := f.Parent.BindingsAfterEliminate()
	elim := eliminateIndices(bindings, f.toEliminate)
	inner := f.Parent.Iter(tx, epoch, useDelta)
	return newFilterMapIterator(inner, func(t value.Tuple) (value.Tuple, bool, error) {
		ok, err := f.Pred.EvalPred(t)
		if err != nil {
			return nil, false, &PredicateError{Err: err}
		}
		if !ok {
			return nil, false, nil
		}
		return project(t, elim), true, nil
	})
}
