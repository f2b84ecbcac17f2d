// Package expr is a reference implementation of the relation.Expr contract:
// a small tree of comparison and boolean-combinator predicates over tuple
// columns, grounded in the teacher's datalog/query/predicate.go. It has no
// dependency on package relation; any type here satisfies relation.Expr
// structurally because its method set matches.
package expr

import (
	"fmt"

	"github.com/wbrown/relcore/value"
)

// Term resolves to a value.Value against a positional tuple, either by
// looking up a bound column (Variable) or returning a fixed literal
// (Constant).
type Term interface {
	Bindings() []value.Binding
	FillBindingIndices(pos map[value.Binding]int)
	Resolve(t value.Tuple) (value.Value, error)
	String() string
}

// Variable names a tuple column by binding; its index is resolved once by
// FillBindingIndices before evaluation begins.
type Variable struct {
	Name value.Binding
	idx  int
	set  bool
}

func (v *Variable) Bindings() []value.Binding { return []value.Binding{v.Name} }

func (v *Variable) FillBindingIndices(pos map[value.Binding]int) {
	v.idx = pos[v.Name]
	v.set = true
}

func (v *Variable) Resolve(t value.Tuple) (value.Value, error) {
	if !v.set {
		return nil, fmt.Errorf("expr: variable %q used before FillBindingIndices", v.Name)
	}
	if v.idx < 0 || v.idx >= len(t) {
		return nil, fmt.Errorf("expr: variable %q index %d out of range for tuple of length %d", v.Name, v.idx, len(t))
	}
	return t[v.idx], nil
}

func (v *Variable) String() string { return string(v.Name) }

// Constant is a literal value with no free bindings.
type Constant struct {
	Value value.Value
}

func (c *Constant) Bindings() []value.Binding                { return nil }
func (c *Constant) FillBindingIndices(map[value.Binding]int) {}
func (c *Constant) Resolve(value.Tuple) (value.Value, error)  { return c.Value, nil }
func (c *Constant) String() string                            { return fmt.Sprintf("%v", c.Value) }

func mergeBindings(terms ...Term) []value.Binding {
	seen := make(map[value.Binding]struct{})
	var out []value.Binding
	for _, t := range terms {
		for _, b := range t.Bindings() {
			if _, ok := seen[b]; !ok {
				seen[b] = struct{}{}
				out = append(out, b)
			}
		}
	}
	return out
}
