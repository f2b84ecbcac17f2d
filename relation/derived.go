package relation

import (
	"sort"

	"github.com/wbrown/relcore/value"
)

// Derived is a scan over a named temp-store, supporting epoch-aware delta
// reads for semi-naive Datalog evaluation.
type Derived struct {
	Bindings []value.Binding
	Store    TempStore
}

func (*Derived) sealed() {}

func (d *Derived) bindingsBeforeEliminate() []value.Binding { return d.Bindings }
func (d *Derived) BindingsAfterEliminate() []value.Binding  { return d.Bindings }
func (d *Derived) EliminateTempVars(map[value.Binding]struct{}) error { return nil }
func (d *Derived) fillPredicateBindingIndices()                       {}

// scanEpoch resolves (epoch, use_delta) to the concrete temp-store epoch to
// read, per spec §4.3: epoch==0 is empty, epoch==nil reads the full store,
// otherwise a delta-tracked store reads epoch-1 and everything else reads
// the full store (epoch 0).
func (d *Derived) scanEpoch(epoch *uint32, useDelta map[TempStoreID]struct{}) (empty bool, scanEpoch uint32) {
	if epoch != nil && *epoch == 0 {
		return true, 0
	}
	if epoch == nil {
		return false, 0
	}
	if _, ok := useDelta[d.Store.ID()]; ok {
		return false, *epoch - 1
	}
	return false, 0
}

func (d *Derived) Iter(_ SessionTx, epoch *uint32, useDelta map[TempStoreID]struct{}) TupleIterator {
	empty, se := d.scanEpoch(epoch, useDelta)
	if empty {
		return newEmptyIterator()
	}
	return d.Store.ScanAllForEpoch(se)
}

// joinIsPrefix reports whether sorting rightIdx yields [0, 1, ..., n-1],
// meaning the probe can key directly into the temp-store via a key prefix.
func (d *Derived) joinIsPrefix(rightIdx []int) bool {
	sorted := append([]int(nil), rightIdx...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i {
			return false
		}
	}
	return true
}

// leftToPrefixOrder sorts the paired (left[i], right[i]) by right[i], so the
// resulting left-side order matches the temp-store's stored key order.
func leftToPrefixOrder(leftIdx, rightIdx []int) []int {
	type pair struct{ l, r int }
	pairs := make([]pair, len(leftIdx))
	for i := range leftIdx {
		pairs[i] = pair{leftIdx[i], rightIdx[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].r < pairs[j].r })
	out := make([]int, len(pairs))
	for i, p := range pairs {
		out[i] = p.l
	}
	return out
}

// prefixJoin is the build-side strategy used when joinIsPrefix holds: key
// directly into the temp-store via a prefix scan.
func (d *Derived) prefixJoin(probe TupleIterator, leftIdx, rightIdx []int, elim map[int]struct{}, epoch *uint32, useDelta map[TempStoreID]struct{}) TupleIterator {
	empty, se := d.scanEpoch(epoch, useDelta)
	if empty {
		_ = probe.Close()
		return newEmptyIterator()
	}
	order := leftToPrefixOrder(leftIdx, rightIdx)
	return newFlatMapIterator(probe, func(lt value.Tuple) (TupleIterator, error) {
		prefix := make(value.Tuple, len(order))
		for i, idx := range order {
			prefix[i] = lt[idx]
		}
		inner := d.Store.ScanPrefixForEpoch(prefix, se)
		return newMapIterator(inner, func(found value.Tuple) value.Tuple {
			out := make(value.Tuple, 0, len(lt)+len(found))
			out = append(out, lt...)
			out = append(out, found...)
			return project(out, elim)
		}), nil
	})
}

// negJoin drops a probe tuple iff a matching stored tuple exists. The
// longest already-identity prefix of rightIdx is used to key the prefix
// scan; full equality over every paired column is then checked per hit.
func (d *Derived) negJoin(probe TupleIterator, leftIdx, rightIdx []int) TupleIterator {
	p := 0
	for p < len(rightIdx) && rightIdx[p] == p {
		p++
	}
	prefixLeft := leftIdx[:p]
	return newFilterMapIterator(probe, func(lt value.Tuple) (value.Tuple, bool, error) {
		prefix := make(value.Tuple, len(prefixLeft))
		for i, idx := range prefixLeft {
			prefix[i] = lt[idx]
		}
		it := d.Store.ScanPrefixForEpoch(prefix, 0)
		defer it.Close()
		for it.Next() {
			found := it.Tuple()
			matched := true
			for i := range leftIdx {
				if !value.Equal(lt[leftIdx[i]], found[rightIdx[i]]) {
					matched = false
					break
				}
			}
			if matched {
				return nil, false, nil
			}
		}
		if err := it.Err(); err != nil {
			return nil, false, wrapStorageErr("scan_prefix", err)
		}
		return lt, true, nil
	})
}
