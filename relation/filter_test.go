package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/relcore/expr"
	"github.com/wbrown/relcore/value"
)

func TestFilterKeepsMatchingRows(t *testing.T) {
	child := NewFixed([]value.Binding{"x"}, []value.Tuple{{int64(1)}, {int64(5)}, {int64(9)}})
	pred := &expr.Comparison{Op: expr.OpGT, Left: &expr.Variable{Name: "x"}, Right: &expr.Constant{Value: int64(3)}}
	f := NewFilter(child, pred)
	FillPredicateBindingIndices(f)

	it := f.Iter(nil, nil, nil)
	tuples, err := collect(it)
	require.NoError(t, err)
	assert.Equal(t, []value.Tuple{{int64(5)}, {int64(9)}}, tuples)
}

func TestFilterEliminatesOwnColumnsButKeepsPredicateVars(t *testing.T) {
	child := NewFixed([]value.Binding{"x", "y"}, []value.Tuple{{int64(1), "a"}, {int64(2), "b"}})
	pred := &expr.Comparison{Op: expr.OpEQ, Left: &expr.Variable{Name: "x"}, Right: &expr.Constant{Value: int64(2)}}
	f := NewFilter(child, pred)
	// Only "y" is requested downstream; "x" is needed by the predicate so
	// must survive in the child even though Filter itself drops it on emit.
	require.NoError(t, EliminateTempVars(f, []value.Binding{"y"}))
	FillPredicateBindingIndices(f)

	assert.Equal(t, []value.Binding{"y"}, f.BindingsAfterEliminate())

	it := f.Iter(nil, nil, nil)
	tuples, err := collect(it)
	require.NoError(t, err)
	assert.Equal(t, []value.Tuple{{"b"}}, tuples)
}

func TestFilterWrapsPredicateErrors(t *testing.T) {
	child := NewFixed([]value.Binding{"x"}, []value.Tuple{{int64(1)}})
	f := NewFilter(child, failingExpr{})
	it := f.Iter(nil, nil, nil)
	_, err := collect(it)
	require.Error(t, err)
	var predErr *PredicateError
	assert.ErrorAs(t, err, &predErr)
}

type failingExpr struct{}

func (failingExpr) Bindings() []value.Binding            { return nil }
func (failingExpr) FillBindingIndices(map[value.Binding]int) {}
func (failingExpr) EvalPred(value.Tuple) (bool, error) {
	return false, assert.AnError
}
