package relation

import (
	"fmt"

	"github.com/wbrown/relcore/value"
)

// TypeError is an alias for value.TypeError: it is raised at the point a
// Value is narrowed to a concrete Go type (e.g. value.AsEntityID), which
// lives in package value, but is one of the four error kinds named by
// spec §7 alongside LogicError/StorageError/PredicateError.
type TypeError = value.TypeError

// LogicError reports a structural violation detected at plan time: an
// unknown join key, an impossible |R| in the triple-join dispatch, a
// Reorder used as a join's right child, or a non-permutation new_order.
// Join-key and Reorder errors name the offending bindings; triple-join
// shape errors name the offending index lists, and errors about an
// unsupported right child name its Go type.
type LogicError struct {
	msg string
}

func (e *LogicError) Error() string { return "logic error: " + e.msg }

func newLogicError(format string, args ...interface{}) *LogicError {
	return &LogicError{msg: fmt.Sprintf(format, args...)}
}

// StorageError wraps any failure surfaced from a triple or temp-store scan.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func wrapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// PredicateError wraps a failure from Expr.EvalPred.
type PredicateError struct {
	Err error
}

func (e *PredicateError) Error() string { return fmt.Sprintf("predicate evaluation error: %v", e.Err) }
func (e *PredicateError) Unwrap() error { return e.Err }
