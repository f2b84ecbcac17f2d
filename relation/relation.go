// Package relation is the relational execution core of a Datalog-style
// triple store query engine. It accepts a tree of relational algebra
// operators and produces a lazy stream of result tuples by executing joins
// against a transactional storage layer (SessionTx) and temporary derived
// tables (TempStore).
package relation

import (
	"github.com/wbrown/relcore/value"
)

// Relation is a closed sum of six node kinds. It is modeled as a sealed
// Go interface rather than a virtual-method hierarchy: Join inspects the
// concrete type of its right child with a type switch to choose a physical
// join strategy, the same way cozo's relation.rs matches on its Rust enum.
type Relation interface {
	sealed()

	// bindingsBeforeEliminate returns this node's output columns before
	// its own elimination set (if any) is applied.
	bindingsBeforeEliminate() []value.Binding

	// BindingsAfterEliminate returns the columns this node actually emits.
	BindingsAfterEliminate() []value.Binding

	// EliminateTempVars runs the top-down elimination pass: used is the set
	// of bindings this node's consumer needs. Fixed, Join and Filter record
	// their other outputs as eliminated; nodes with children pass used down,
	// grown by what they need themselves (Join adds its keys, Filter adds
	// predicate vars).
	EliminateTempVars(used map[value.Binding]struct{}) error

	// fillPredicateBindingIndices runs the post-order index-fill pass.
	fillPredicateBindingIndices()

	// Iter produces a lazy tuple stream for this node.
	Iter(tx SessionTx, epoch *uint32, useDelta map[TempStoreID]struct{}) TupleIterator

	// Debug renders the node (and its children) as a plain-text tree, the
	// way cozo's impl Debug for Relation does. Use DebugColor for the
	// colorized variant the teacher's OutputFormatter produces.
	Debug() string
}

// --- constructors (spec §6 core surface) ---------------------------------

// Unit returns the identity relation for cartesian join: empty bindings,
// one empty row.
func Unit() Relation {
	return &Fixed{Data: []value.Tuple{{}}}
}

// IsUnit reports whether r is the Unit relation.
func IsUnit(r Relation) bool {
	f, ok := r.(*Fixed)
	return ok && len(f.Bindings) == 0 && len(f.Data) == 1
}

// NewFixed builds an inline literal relation. Every row in data must have
// length equal to len(bindings).
func NewFixed(bindings []value.Binding, data []value.Tuple) Relation {
	return &Fixed{Bindings: append([]value.Binding(nil), bindings...), Data: data}
}

// NewSinglet builds a one-row Fixed relation.
func NewSinglet(bindings []value.Binding, row value.Tuple) Relation {
	return NewFixed(bindings, []value.Tuple{row})
}

// NewTriple builds a scan over (entity, attribute, value) facts.
func NewTriple(attr value.Attribute, vld value.Validity, eBinding, vBinding value.Binding) Relation {
	return &Triple{Attr: attr, Vld: vld, Bindings: [2]value.Binding{eBinding, vBinding}}
}

// NewDerived builds a scan over a named temp-store.
func NewDerived(bindings []value.Binding, store TempStore) Relation {
	return &Derived{Bindings: append([]value.Binding(nil), bindings...), Store: store}
}

// NewReorder wraps child with a column permutation. new_order must be a
// permutation of child's post-elimination bindings (checked at Iter time).
func NewReorder(child Relation, newOrder []value.Binding) Relation {
	return &Reorder{Child: child, NewOrder: append([]value.Binding(nil), newOrder...)}
}

// NewFilter wraps parent with a predicate expression.
func NewFilter(parent Relation, pred Expr) Relation {
	return &Filter{Parent: parent, Pred: pred}
}

// NewJoin builds an inner equi-join of left and right keyed by left_keys
// <-> right_keys (equal length, paired positionally).
func NewJoin(left, right Relation, leftKeys, rightKeys []value.Binding) Relation {
	return &Join{
		Left:  left,
		Right: right,
		Joiner: Joiner{
			LeftKeys:  append([]value.Binding(nil), leftKeys...),
			RightKeys: append([]value.Binding(nil), rightKeys...),
		},
	}
}

// NewCartesianJoin is Join with no equi-keys.
func NewCartesianJoin(left, right Relation) Relation {
	return NewJoin(left, right, nil, nil)
}

// --- shared helpers --------------------------------------------------------

// eliminateIndices maps a node's own elimination set (by binding name) onto
// the positional indices of bindings, matching cozo's get_eliminate_indices.
func eliminateIndices(bindings []value.Binding, eliminate map[value.Binding]struct{}) map[int]struct{} {
	if len(eliminate) == 0 {
		return nil
	}
	out := make(map[int]struct{}, len(eliminate))
	for i, b := range bindings {
		if _, ok := eliminate[b]; ok {
			out[i] = struct{}{}
		}
	}
	return out
}

// project drops the positions named in elim from t, preserving order. A
// nil/empty elim returns t unchanged (no copy).
func project(t value.Tuple, elim map[int]struct{}) value.Tuple {
	if len(elim) == 0 {
		return t
	}
	out := make(value.Tuple, 0, len(t)-len(elim))
	for i, v := range t {
		if _, drop := elim[i]; drop {
			continue
		}
		out = append(out, v)
	}
	return out
}

// bindingIndex builds a name->position map, used throughout for resolving
// join keys, reorder permutations and predicate bindings.
func bindingIndex(bindings []value.Binding) map[value.Binding]int {
	m := make(map[value.Binding]int, len(bindings))
	for i, b := range bindings {
		m[b] = i
	}
	return m
}

func extendUsed(used map[value.Binding]struct{}, extra []value.Binding) map[value.Binding]struct{} {
	out := make(map[value.Binding]struct{}, len(used)+len(extra))
	for b := range used {
		out[b] = struct{}{}
	}
	for _, b := range extra {
		out[b] = struct{}{}
	}
	return out
}

// BindingsAfterEliminate is the exported entry point matching spec §6.
// It simply forwards to the interface method; defined here so callers
// never need to reach into node internals.
func BindingsAfterEliminate(r Relation) []value.Binding { return r.BindingsAfterEliminate() }

// EliminateTempVars runs the elimination pass starting from the given used
// set (typically the query's Find/output columns).
func EliminateTempVars(r Relation, used []value.Binding) error {
	set := make(map[value.Binding]struct{}, len(used))
	for _, b := range used {
		set[b] = struct{}{}
	}
	return r.EliminateTempVars(set)
}

// FillPredicateBindingIndices runs the post-order index-fill pass over the
// whole tree; must run once, after EliminateTempVars and before Iter.
func FillPredicateBindingIndices(r Relation) { r.fillPredicateBindingIndices() }

// Iter is the exported entry point matching spec §6.
func Iter(r Relation, tx SessionTx, epoch *uint32, useDelta map[TempStoreID]struct{}) TupleIterator {
	return r.Iter(tx, epoch, useDelta)
}
