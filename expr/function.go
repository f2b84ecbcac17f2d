package expr

import (
	"fmt"
	"strings"

	"github.com/wbrown/relcore/value"
)

// FunctionPredicate applies a named builtin to a fixed argument list,
// mirroring the teacher's FunctionPredicate ("str/starts-with?" etc) but
// resolving arguments through Term rather than raw pattern elements.
type FunctionPredicate struct {
	Fn   string
	Args []Term
}

func (f *FunctionPredicate) Bindings() []value.Binding { return mergeBindings(f.Args...) }

func (f *FunctionPredicate) FillBindingIndices(pos map[value.Binding]int) {
	for _, a := range f.Args {
		a.FillBindingIndices(pos)
	}
}

func (f *FunctionPredicate) EvalPred(t value.Tuple) (bool, error) {
	impl, ok := builtins[f.Fn]
	if !ok {
		return false, fmt.Errorf("expr: unknown predicate function %q", f.Fn)
	}
	vals := make([]value.Value, len(f.Args))
	for i, a := range f.Args {
		v, err := a.Resolve(t)
		if err != nil {
			return false, err
		}
		vals[i] = v
	}
	return impl(vals)
}

func (f *FunctionPredicate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s", f.Fn)
	for _, a := range f.Args {
		fmt.Fprintf(&b, " %s", a)
	}
	b.WriteString(")")
	return b.String()
}

var builtins = map[string]func([]value.Value) (bool, error){
	"str/starts-with?": func(args []value.Value) (bool, error) {
		if len(args) != 2 {
			return false, fmt.Errorf("str/starts-with? requires 2 arguments, got %d", len(args))
		}
		s, ok := args[0].(string)
		if !ok {
			return false, nil
		}
		prefix, ok := args[1].(string)
		if !ok {
			return false, nil
		}
		return strings.HasPrefix(s, prefix), nil
	},
	"str/ends-with?": func(args []value.Value) (bool, error) {
		if len(args) != 2 {
			return false, fmt.Errorf("str/ends-with? requires 2 arguments, got %d", len(args))
		}
		s, ok := args[0].(string)
		if !ok {
			return false, nil
		}
		suffix, ok := args[1].(string)
		if !ok {
			return false, nil
		}
		return strings.HasSuffix(s, suffix), nil
	},
	"str/includes?": func(args []value.Value) (bool, error) {
		if len(args) != 2 {
			return false, fmt.Errorf("str/includes? requires 2 arguments, got %d", len(args))
		}
		s, ok := args[0].(string)
		if !ok {
			return false, nil
		}
		sub, ok := args[1].(string)
		if !ok {
			return false, nil
		}
		return strings.Contains(s, sub), nil
	},
}
