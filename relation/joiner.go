package relation

import "github.com/wbrown/relcore/value"

// Joiner resolves named join keys to positional indices on both sides of a
// Join. Invariant: LeftKeys and RightKeys have equal length; corresponding
// positions name columns to be equated.
type Joiner struct {
	LeftKeys  []value.Binding
	RightKeys []value.Binding
}

// joinIndices translates LeftKeys[i] <-> RightKeys[i] into positional
// indices into leftBindings/rightBindings. Fails with a LogicError naming
// the missing key if any key is not found on its side.
func (j Joiner) joinIndices(leftBindings, rightBindings []value.Binding) (left, right []int, err error) {
	leftPos := bindingIndex(leftBindings)
	rightPos := bindingIndex(rightBindings)
	left = make([]int, 0, len(j.LeftKeys))
	right = make([]int, 0, len(j.LeftKeys))
	for i, lk := range j.LeftKeys {
		rk := j.RightKeys[i]
		lp, ok := leftPos[lk]
		if !ok {
			return nil, nil, newLogicError(
				"join key is wrong: left binding %q not found: left %v vs right %v", lk, leftBindings, rightBindings)
		}
		rp, ok := rightPos[rk]
		if !ok {
			return nil, nil, newLogicError(
				"join key is wrong: right binding %q not found: left %v vs right %v", rk, leftBindings, rightBindings)
		}
		left = append(left, lp)
		right = append(right, rp)
	}
	return left, right, nil
}
