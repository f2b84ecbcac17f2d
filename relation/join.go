package relation

import "github.com/wbrown/relcore/value"

// Join is the inner-join dispatcher. Its physical strategy is chosen by the
// structural shape of the right child (spec §4.6): Fixed delegates to
// Fixed.join, Triple to Triple.join, Derived to either prefix_join or a
// materialized join depending on join_is_prefix, Join/Filter always
// materialize, and Reorder is a logic error.
type Join struct {
	Left, Right Relation
	Joiner      Joiner
	toEliminate map[value.Binding]struct{}
}

func (*Join) sealed() {}

func (j *Join) bindingsBeforeEliminate() []value.Binding {
	left := j.Left.BindingsAfterEliminate()
	right := j.Right.BindingsAfterEliminate()
	out := make([]value.Binding, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

func (j *Join) BindingsAfterEliminate() []value.Binding {
	before := j.bindingsBeforeEliminate()
	if len(j.toEliminate) == 0 {
		return before
	}
	out := make([]value.Binding, 0, len(before))
	for _, b := range before {
		if _, drop := j.toEliminate[b]; !drop {
			out = append(out, b)
		}
	}
	return out
}

func (j *Join) EliminateTempVars(used map[value.Binding]struct{}) error {
	for _, b := range j.bindingsBeforeEliminate() {
		if _, ok := used[b]; !ok {
			if j.toEliminate == nil {
				j.toEliminate = make(map[value.Binding]struct{})
			}
			j.toEliminate[b] = struct{}{}
		}
	}
	// Join keys are never eliminated below the join.
	if err := j.Left.EliminateTempVars(extendUsed(used, j.Joiner.LeftKeys)); err != nil {
		return err
	}
	return j.Right.EliminateTempVars(extendUsed(used, j.Joiner.RightKeys))
}

func (j *Join) fillPredicateBindingIndices() {
	j.Left.fillPredicateBindingIndices()
	j.Right.fillPredicateBindingIndices()
}

// IsUnit short-circuits *display*, not iteration (see debug.go): iteration
// always goes through the normal dispatch below. A Unit left side supplies
// one empty probe tuple, so whichever strategy the right child selects
// emits the right's own rows.

func (j *Join) Iter(tx SessionTx, epoch *uint32, useDelta map[TempStoreID]struct{}) TupleIterator {
	bindings := j.bindingsBeforeEliminate()
	elim := eliminateIndices(bindings, j.toEliminate)
	leftBindings := j.Left.BindingsAfterEliminate()
	rightBindings := j.Right.BindingsAfterEliminate()

	switch right := j.Right.(type) {
	case *Fixed:
		leftIdx, rightIdx, err := j.Joiner.joinIndices(leftBindings, rightBindings)
		if err != nil {
			return newErrIterator(err)
		}
		return right.join(j.Left.Iter(tx, epoch, useDelta), leftIdx, rightIdx, elim)
	case *Triple:
		leftIdx, rightIdx, err := j.Joiner.joinIndices(leftBindings, rightBindings)
		if err != nil {
			return newErrIterator(err)
		}
		return right.join(j.Left.Iter(tx, epoch, useDelta), leftIdx, rightIdx, tx, elim)
	case *Derived:
		leftIdx, rightIdx, err := j.Joiner.joinIndices(leftBindings, rightBindings)
		if err != nil {
			return newErrIterator(err)
		}
		if right.joinIsPrefix(rightIdx) {
			return right.prefixJoin(j.Left.Iter(tx, epoch, useDelta), leftIdx, rightIdx, elim, epoch, useDelta)
		}
		return j.materializedJoin(tx, elim, epoch, useDelta)
	case *Join, *Filter:
		return j.materializedJoin(tx, elim, epoch, useDelta)
	case *Reorder:
		return newErrIterator(newLogicError("joining on reordered relation %v is not supported; push Reorder above joins (left %v)", right.NewOrder, leftBindings))
	default:
		return newErrIterator(newLogicError("unknown relation kind %T as join right child", right))
	}
}

// materializedJoin drains the right child into a transaction-scoped
// throwaway store keyed by its join columns (moved to the front), then
// probes it by prefix for each left tuple, restoring original column
// order on emit (spec §4.6).
func (j *Join) materializedJoin(tx SessionTx, elim map[int]struct{}, epoch *uint32, useDelta map[TempStoreID]struct{}) TupleIterator {
	rightBindings := j.Right.BindingsAfterEliminate()
	leftIdx, rightIdx, err := j.Joiner.joinIndices(j.Left.BindingsAfterEliminate(), rightBindings)
	if err != nil {
		return newErrIterator(err)
	}
	rightJoinSet := make(map[int]struct{}, len(rightIdx))
	for _, i := range rightIdx {
		rightJoinSet[i] = struct{}{}
	}
	storeOrder := append([]int(nil), rightIdx...)
	for i := 0; i < len(rightBindings); i++ {
		if _, ok := rightJoinSet[i]; !ok {
			storeOrder = append(storeOrder, i)
		}
	}
	// invertIndices[k] = position within storeOrder whose value was
	// originally at position k in the *store order's rank*, i.e. the
	// permutation that restores storeOrder back to ascending rank order.
	invertIndices := invertPermutationByRank(storeOrder)

	throwaway := tx.NewThrowaway()
	rightIter := j.Right.Iter(tx, epoch, useDelta)
	if err := drainAll(rightIter, func(t value.Tuple) error {
		stored := make(value.Tuple, len(storeOrder))
		for i, idx := range storeOrder {
			stored[i] = t[idx]
		}
		return throwaway.Put(stored, 0)
	}); err != nil {
		return newErrIterator(wrapStorageErr("materialized_join_drain", err))
	}

	leftIter := j.Left.Iter(tx, epoch, useDelta)
	return newFlatMapIterator(leftIter, func(lt value.Tuple) (TupleIterator, error) {
		prefix := make(value.Tuple, len(leftIdx))
		for i, idx := range leftIdx {
			prefix[i] = lt[idx]
		}
		inner := throwaway.ScanPrefix(prefix)
		return newMapIterator(inner, func(found value.Tuple) value.Tuple {
			out := make(value.Tuple, 0, len(lt)+len(found))
			out = append(out, lt...)
			for _, i := range invertIndices {
				out = append(out, found[i])
			}
			return project(out, elim)
		}), nil
	})
}

// invertPermutationByRank returns, for storeOrder (a permutation of
// 0..n-1), the sequence of indices into storeOrder sorted by the value
// they hold — i.e. the inverse permutation needed to restore original
// column order from the reordered stored tuple.
func invertPermutationByRank(storeOrder []int) []int {
	type pair struct{ idx, val int }
	pairs := make([]pair, len(storeOrder))
	for i, v := range storeOrder {
		pairs[i] = pair{i, v}
	}
	out := make([]int, len(pairs))
	for rank := 0; rank < len(pairs); rank++ {
		for _, p := range pairs {
			if p.val == rank {
				out[rank] = p.idx
				break
			}
		}
	}
	return out
}

// NegJoin evaluates a negated join directly against a Triple or Derived
// right side: it keeps a probe (left) tuple iff no matching row exists on
// the right. This mirrors the teacher/original's neg_join helpers, which
// are invoked by the (out-of-scope) rule compiler when lowering "not"
// clauses rather than through the ordinary Join dispatcher — there is no
// Join.toEliminate bookkeeping here because a negated join never grows the
// output's column set.
func NegJoin(left, right Relation, leftKeys, rightKeys []value.Binding, tx SessionTx) TupleIterator {
	joiner := Joiner{LeftKeys: leftKeys, RightKeys: rightKeys}
	leftIdx, rightIdx, err := joiner.joinIndices(left.BindingsAfterEliminate(), right.BindingsAfterEliminate())
	if err != nil {
		return newErrIterator(err)
	}
	probe := left.Iter(tx, nil, nil)
	switch r := right.(type) {
	case *Triple:
		return r.negJoin(probe, leftIdx, rightIdx, tx)
	case *Derived:
		if len(rightIdx) == 0 {
			_ = probe.Close()
			return newErrIterator(newLogicError("neg_join requires at least one join key"))
		}
		return r.negJoin(probe, leftIdx, rightIdx)
	default:
		_ = probe.Close()
		return newErrIterator(newLogicError("neg_join is only defined for Triple or Derived right sides, got %T", right))
	}
}
