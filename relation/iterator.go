package relation

import "github.com/wbrown/relcore/value"

// TupleIterator is a lazy, failable sequence of tuples. Every Relation node
// is pull-based: a consumer calls Next once per tuple, and each node pulls
// from its child only on demand. On the first error, Next returns false and
// Err reports it; the stream is not required to be consumed further, but a
// caller that keeps calling Next after an error may observe later items
// surface further errors of their own (spec §7).
type TupleIterator interface {
	Next() bool
	Tuple() value.Tuple
	Err() error
	Close() error
}

// emptyIterator never yields a tuple.
type emptyIterator struct{}

func (emptyIterator) Next() bool         { return false }
func (emptyIterator) Tuple() value.Tuple { return nil }
func (emptyIterator) Err() error         { return nil }
func (emptyIterator) Close() error       { return nil }

func newEmptyIterator() TupleIterator { return emptyIterator{} }

// errIterator immediately fails with a fixed error, the way the original
// does when a materialization step (e.g. draining a build side) fails
// before any left tuple is even pulled.
type errIterator struct{ err error }

func (e *errIterator) Next() bool         { return false }
func (e *errIterator) Tuple() value.Tuple { return nil }
func (e *errIterator) Err() error         { return e.err }
func (e *errIterator) Close() error       { return nil }

func newErrIterator(err error) TupleIterator { return &errIterator{err: err} }

// sliceIterator walks a pre-built slice of tuples, cloning each on Tuple()
// is not required since the slice already owns distinct tuples.
type sliceIterator struct {
	tuples []value.Tuple
	idx    int
}

func newSliceIterator(tuples []value.Tuple) TupleIterator {
	return &sliceIterator{tuples: tuples, idx: -1}
}

func (s *sliceIterator) Next() bool {
	s.idx++
	return s.idx < len(s.tuples)
}
func (s *sliceIterator) Tuple() value.Tuple { return s.tuples[s.idx] }
func (s *sliceIterator) Err() error         { return nil }
func (s *sliceIterator) Close() error       { return nil }

// filterMapIterator applies fn to each tuple from inner, keeping the
// result when keep is true. It implements the shape used by ev_join,
// neg_*_join and Filter: one input tuple yields at most one output tuple.
type filterMapIterator struct {
	inner TupleIterator
	fn    func(value.Tuple) (out value.Tuple, keep bool, err error)
	cur   value.Tuple
	err   error
	done  bool
}

func newFilterMapIterator(inner TupleIterator, fn func(value.Tuple) (value.Tuple, bool, error)) TupleIterator {
	return &filterMapIterator{inner: inner, fn: fn}
}

func (f *filterMapIterator) Next() bool {
	if f.done {
		return false
	}
	for f.inner.Next() {
		out, keep, err := f.fn(f.inner.Tuple())
		if err != nil {
			f.err = err
			f.done = true
			return false
		}
		if keep {
			f.cur = out
			return true
		}
	}
	if err := f.inner.Err(); err != nil {
		f.err = err
	}
	f.done = true
	return false
}
func (f *filterMapIterator) Tuple() value.Tuple { return f.cur }
func (f *filterMapIterator) Err() error         { return f.err }
func (f *filterMapIterator) Close() error       { return f.inner.Close() }

// flatMapIterator expands each tuple from left into zero or more output
// tuples via gen, which builds a fresh TupleIterator per left tuple. This
// is the shape used by every join variant that can emit multiple rows per
// probe tuple (cartesian, e_join, v_ref_join, v_index_join,
// v_no_index_join, prefix_join, materialized join, Fixed's hash join).
type flatMapIterator struct {
	left TupleIterator
	gen  func(value.Tuple) (TupleIterator, error)
	cur  TupleIterator
	tup  value.Tuple
	err  error
	done bool
}

func newFlatMapIterator(left TupleIterator, gen func(value.Tuple) (TupleIterator, error)) TupleIterator {
	return &flatMapIterator{left: left, gen: gen}
}

func (f *flatMapIterator) Next() bool {
	if f.done {
		return false
	}
	for {
		if f.cur != nil {
			if f.cur.Next() {
				f.tup = f.cur.Tuple()
				return true
			}
			if err := f.cur.Err(); err != nil {
				f.err = err
				f.done = true
				_ = f.cur.Close()
				return false
			}
			_ = f.cur.Close()
			f.cur = nil
		}
		if !f.left.Next() {
			if err := f.left.Err(); err != nil {
				f.err = err
			}
			f.done = true
			return false
		}
		next, err := f.gen(f.left.Tuple())
		if err != nil {
			f.err = err
			f.done = true
			return false
		}
		f.cur = next
	}
}
func (f *flatMapIterator) Tuple() value.Tuple { return f.tup }
func (f *flatMapIterator) Err() error         { return f.err }
func (f *flatMapIterator) Close() error       { return f.left.Close() }

// mapIterator transforms every tuple from inner with fn; used by Reorder.
type mapIterator struct {
	inner TupleIterator
	fn    func(value.Tuple) value.Tuple
}

func newMapIterator(inner TupleIterator, fn func(value.Tuple) value.Tuple) TupleIterator {
	return &mapIterator{inner: inner, fn: fn}
}
func (m *mapIterator) Next() bool         { return m.inner.Next() }
func (m *mapIterator) Tuple() value.Tuple { return m.fn(m.inner.Tuple()) }
func (m *mapIterator) Err() error         { return m.inner.Err() }
func (m *mapIterator) Close() error       { return m.inner.Close() }

// drainAll pulls every remaining tuple from it, returning the first error
// encountered (if any). Used where a join strategy must fully drain a
// build-side iterator to populate a throwaway store before probing.
func drainAll(it TupleIterator, visit func(value.Tuple) error) error {
	defer it.Close()
	for it.Next() {
		if err := visit(it.Tuple()); err != nil {
			return err
		}
	}
	return it.Err()
}
