package relation

import "github.com/wbrown/relcore/value"

// Fixed is an inline literal table with declared column names. The Unit
// form (empty Bindings, one empty row) is the identity for cartesian join.
type Fixed struct {
	Bindings    []value.Binding
	Data        []value.Tuple
	toEliminate map[value.Binding]struct{}
}

func (*Fixed) sealed() {}

func (f *Fixed) bindingsBeforeEliminate() []value.Binding { return f.Bindings }

func (f *Fixed) BindingsAfterEliminate() []value.Binding {
	if len(f.toEliminate) == 0 {
		return f.Bindings
	}
	out := make([]value.Binding, 0, len(f.Bindings))
	for _, b := range f.Bindings {
		if _, drop := f.toEliminate[b]; !drop {
			out = append(out, b)
		}
	}
	return out
}

func (f *Fixed) EliminateTempVars(used map[value.Binding]struct{}) error {
	for _, b := range f.Bindings {
		if _, ok := used[b]; !ok {
			if f.toEliminate == nil {
				f.toEliminate = make(map[value.Binding]struct{})
			}
			f.toEliminate[b] = struct{}{}
		}
	}
	return nil
}

func (f *Fixed) fillPredicateBindingIndices() {}

func (f *Fixed) Iter(SessionTx, *uint32, map[TempStoreID]struct{}) TupleIterator {
	elim := eliminateIndices(f.Bindings, f.toEliminate)
	rows := make([]value.Tuple, len(f.Data))
	for i, row := range f.Data {
		rows[i] = project(row.Clone(), elim)
	}
	return newSliceIterator(rows)
}

// join is Fixed's role as the build side of a join: given the probe
// iterator and the (probe, build) join index pairs, dispatch to the
// hash-probe or singleton-match strategy described in spec §4.1. Build rows
// are first projected to this node's own post-elimination columns, which
// are the columns rightIdx indexes.
func (f *Fixed) join(probe TupleIterator, leftIdx, rightIdx []int, elim map[int]struct{}) TupleIterator {
	own := eliminateIndices(f.Bindings, f.toEliminate)
	switch len(f.Data) {
	case 0:
		_ = probe.Close()
		return newEmptyIterator()
	case 1:
		row := project(f.Data[0].Clone(), own)
		rightVals := make(value.Tuple, len(rightIdx))
		for i, idx := range rightIdx {
			rightVals[i] = row[idx]
		}
		return newFilterMapIterator(probe, func(t value.Tuple) (value.Tuple, bool, error) {
			for i, idx := range leftIdx {
				if !value.Equal(t[idx], rightVals[i]) {
					return nil, false, nil
				}
			}
			out := make(value.Tuple, 0, len(t)+len(row))
			out = append(out, t...)
			out = append(out, row...)
			return project(out, elim), true, nil
		})
	default:
		mapping := make(map[string][]value.Tuple)
		for _, raw := range f.Data {
			row := project(raw.Clone(), own)
			k := keyFor(row, rightIdx)
			mapping[k] = append(mapping[k], row)
		}
		return newFlatMapIterator(probe, func(t value.Tuple) (TupleIterator, error) {
			k := keyFor(t, leftIdx)
			matches, ok := mapping[k]
			if !ok {
				return newEmptyIterator(), nil
			}
			out := make([]value.Tuple, len(matches))
			for i, row := range matches {
				combined := make(value.Tuple, 0, len(t)+len(row))
				combined = append(combined, t...)
				combined = append(combined, row...)
				out[i] = project(combined, elim)
			}
			return newSliceIterator(out), nil
		})
	}
}

// keyFor builds a comparable string key from the values at idx, for use as
// a hash-map key in the multi-row Fixed join. It panics on no types beyond
// what value.Value may hold; fmt.Sprintf handles every concrete value kind.
func keyFor(t value.Tuple, idx []int) string {
	var buf []byte
	for _, i := range idx {
		buf = append(buf, []byte(value.KeyPart(t[i]))...)
		buf = append(buf, 0)
	}
	return string(buf)
}
