package expr

import (
	"fmt"

	"github.com/wbrown/relcore/value"
)

// CompareOp is a comparison operator, mirroring the teacher's
// query.CompareOp constants.
type CompareOp string

const (
	OpEQ  CompareOp = "="
	OpNE  CompareOp = "!="
	OpLT  CompareOp = "<"
	OpLTE CompareOp = "<="
	OpGT  CompareOp = ">"
	OpGTE CompareOp = ">="
)

// Comparison implements the relation.Expr contract for a single binary
// comparison, e.g. [(< ?x 10)].
type Comparison struct {
	Op    CompareOp
	Left  Term
	Right Term
}

func (c *Comparison) Bindings() []value.Binding { return mergeBindings(c.Left, c.Right) }

func (c *Comparison) FillBindingIndices(pos map[value.Binding]int) {
	c.Left.FillBindingIndices(pos)
	c.Right.FillBindingIndices(pos)
}

func (c *Comparison) EvalPred(t value.Tuple) (bool, error) {
	lv, err := c.Left.Resolve(t)
	if err != nil {
		return false, err
	}
	rv, err := c.Right.Resolve(t)
	if err != nil {
		return false, err
	}
	cmp := value.Compare(lv, rv)
	switch c.Op {
	case OpEQ:
		return cmp == 0, nil
	case OpNE:
		return cmp != 0, nil
	case OpLT:
		return cmp < 0, nil
	case OpLTE:
		return cmp <= 0, nil
	case OpGT:
		return cmp > 0, nil
	case OpGTE:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("expr: unknown comparison operator %q", c.Op)
	}
}

func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Op, c.Left, c.Right)
}

// Predicate is the relation.Expr-shaped contract every boolean-valued node
// in this package satisfies. It is defined locally, not imported from
// package relation, so this package stays free of a dependency on it.
type Predicate interface {
	Bindings() []value.Binding
	FillBindingIndices(pos map[value.Binding]int)
	EvalPred(t value.Tuple) (bool, error)
}

// And is a short-circuiting conjunction of predicates.
type And struct{ Preds []Predicate }

func (a *And) Bindings() []value.Binding {
	seen := make(map[value.Binding]struct{})
	var out []value.Binding
	for _, p := range a.Preds {
		for _, b := range p.Bindings() {
			if _, ok := seen[b]; !ok {
				seen[b] = struct{}{}
				out = append(out, b)
			}
		}
	}
	return out
}

func (a *And) FillBindingIndices(pos map[value.Binding]int) {
	for _, p := range a.Preds {
		p.FillBindingIndices(pos)
	}
}

func (a *And) EvalPred(t value.Tuple) (bool, error) {
	for _, p := range a.Preds {
		ok, err := p.EvalPred(t)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Or is a short-circuiting disjunction of predicates.
type Or struct{ Preds []Predicate }

func (o *Or) Bindings() []value.Binding {
	seen := make(map[value.Binding]struct{})
	var out []value.Binding
	for _, p := range o.Preds {
		for _, b := range p.Bindings() {
			if _, ok := seen[b]; !ok {
				seen[b] = struct{}{}
				out = append(out, b)
			}
		}
	}
	return out
}

func (o *Or) FillBindingIndices(pos map[value.Binding]int) {
	for _, p := range o.Preds {
		p.FillBindingIndices(pos)
	}
}

func (o *Or) EvalPred(t value.Tuple) (bool, error) {
	for _, p := range o.Preds {
		ok, err := p.EvalPred(t)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Not inverts a predicate's result, mirroring the teacher's
// NotEqualPredicate pattern generalized to any sub-predicate.
type Not struct{ Pred Predicate }

func (n *Not) Bindings() []value.Binding                { return n.Pred.Bindings() }
func (n *Not) FillBindingIndices(pos map[value.Binding]int) { n.Pred.FillBindingIndices(pos) }

func (n *Not) EvalPred(t value.Tuple) (bool, error) {
	ok, err := n.Pred.EvalPred(t)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
