package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/relcore/value"
)

func bind(b value.Binding, i int) map[value.Binding]int { return map[value.Binding]int{b: i} }

func TestComparisonEval(t *testing.T) {
	cmp := &Comparison{Op: OpLT, Left: &Variable{Name: "x"}, Right: &Constant{Value: int64(10)}}
	cmp.FillBindingIndices(map[value.Binding]int{"x": 0})

	ok, err := cmp.EvalPred(value.Tuple{int64(5)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cmp.EvalPred(value.Tuple{int64(50)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestComparisonBindings(t *testing.T) {
	cmp := &Comparison{Op: OpEQ, Left: &Variable{Name: "x"}, Right: &Variable{Name: "y"}}
	assert.ElementsMatch(t, []value.Binding{"x", "y"}, cmp.Bindings())
}

func TestAndOrNot(t *testing.T) {
	lt := &Comparison{Op: OpLT, Left: &Variable{Name: "x"}, Right: &Constant{Value: int64(10)}}
	gt := &Comparison{Op: OpGT, Left: &Variable{Name: "x"}, Right: &Constant{Value: int64(0)}}
	and := &And{Preds: []Predicate{lt, gt}}
	and.FillBindingIndices(map[value.Binding]int{"x": 0})

	ok, err := and.EvalPred(value.Tuple{int64(5)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = and.EvalPred(value.Tuple{int64(50)})
	require.NoError(t, err)
	assert.False(t, ok)

	not := &Not{Pred: and}
	ok, err = not.EvalPred(value.Tuple{int64(50)})
	require.NoError(t, err)
	assert.True(t, ok)

	or := &Or{Preds: []Predicate{lt, gt}}
	or.FillBindingIndices(map[value.Binding]int{"x": 0})
	ok, err = or.EvalPred(value.Tuple{int64(-5)})
	require.NoError(t, err)
	assert.True(t, ok) // -5 satisfies lt but not gt; Or needs only one
}

func TestFunctionPredicateStartsWith(t *testing.T) {
	fp := &FunctionPredicate{Fn: "str/starts-with?", Args: []Term{
		&Variable{Name: "s"},
		&Constant{Value: "foo"},
	}}
	fp.FillBindingIndices(map[value.Binding]int{"s": 0})

	ok, err := fp.EvalPred(value.Tuple{"foobar"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fp.EvalPred(value.Tuple{"barfoo"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFunctionPredicateUnknown(t *testing.T) {
	fp := &FunctionPredicate{Fn: "nope", Args: nil}
	_, err := fp.EvalPred(value.Tuple{})
	require.Error(t, err)
}
