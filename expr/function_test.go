package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/relcore/value"
)

func TestFunctionPredicateEndsWithAndIncludes(t *testing.T) {
	pos := map[value.Binding]int{"s": 0}

	ends := &FunctionPredicate{Fn: "str/ends-with?", Args: []Term{&Variable{Name: "s"}, &Constant{Value: ".go"}}}
	ends.FillBindingIndices(pos)
	ok, err := ends.EvalPred(value.Tuple{"main.go"})
	require.NoError(t, err)
	assert.True(t, ok)

	includes := &FunctionPredicate{Fn: "str/includes?", Args: []Term{&Variable{Name: "s"}, &Constant{Value: "ai"}}}
	includes.FillBindingIndices(pos)
	ok, err = includes.EvalPred(value.Tuple{"main.go"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFunctionPredicateWrongArgTypeIsFalseNotError(t *testing.T) {
	f := &FunctionPredicate{Fn: "str/starts-with?", Args: []Term{&Constant{Value: int64(5)}, &Constant{Value: "a"}}}
	ok, err := f.EvalPred(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFunctionPredicateWrongArgCountErrors(t *testing.T) {
	f := &FunctionPredicate{Fn: "str/starts-with?", Args: []Term{&Constant{Value: "only-one"}}}
	_, err := f.EvalPred(nil)
	assert.Error(t, err)
}
