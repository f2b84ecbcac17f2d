package relation

import "github.com/wbrown/relcore/value"

// TempStoreID identifies a transaction-scoped scratch store. Callers use it
// to build use_delta sets for semi-naive evaluation.
type TempStoreID int64

// AEVRow is one result of SessionTx.TripleAScan: every triple for an
// attribute, as of a validity.
type AEVRow struct {
	Attr value.AttrID
	E    value.EntityID
	V    value.Value
}

// EAVRow is one result of SessionTx.TripleEAScan: triples for one entity.
type EAVRow struct {
	E    value.EntityID
	Attr value.AttrID
	V    value.Value
}

// AVERow is one result of SessionTx.TripleAVScan: triples found by indexed
// value.
type AVERow struct {
	Attr value.AttrID
	V    value.Value
	E    value.EntityID
}

// VAERow is one result of SessionTx.TripleVRefAScan: reverse-reference
// lookups, (value_eid, attr, e_id).
type VAERow struct {
	VEid value.EntityID
	Attr value.AttrID
	E    value.EntityID
}

// AEVIterator, EAVIterator, AVEIterator and VAEIterator are lazy, failable
// sequences over the storage layer's scan results. They follow the same
// Next/Err/Close shape as TupleIterator (see iterator.go), with a typed
// Row() in place of Tuple(), so callers never pay for a type assertion.
type AEVIterator interface {
	Next() bool
	Row() AEVRow
	Err() error
	Close() error
}

type EAVIterator interface {
	Next() bool
	Row() EAVRow
	Err() error
	Close() error
}

type AVEIterator interface {
	Next() bool
	Row() AVERow
	Err() error
	Close() error
}

type VAEIterator interface {
	Next() bool
	Row() VAERow
	Err() error
	Close() error
}

// SessionTx is the transactional storage surface this engine consumes. It
// is shared read-only across a relation tree for the duration of one
// iteration; the engine never mutates it except through NewThrowaway.
type SessionTx interface {
	// TripleAScan returns all triples for an attribute as of vld.
	TripleAScan(attr value.AttrID, vld value.Validity) AEVIterator
	// TripleEAScan returns triples for one entity/attribute pair.
	TripleEAScan(e value.EntityID, attr value.AttrID, vld value.Validity) EAVIterator
	// TripleAVScan returns triples matching an indexed value.
	TripleAVScan(attr value.AttrID, v value.Value, vld value.Validity) AVEIterator
	// TripleVRefAScan returns the reverse-reference scan: entities whose
	// ref-typed attribute points at vEid.
	TripleVRefAScan(vEid value.EntityID, attr value.AttrID, vld value.Validity) VAEIterator
	// EAVExists is a point existence check.
	EAVExists(e value.EntityID, attr value.AttrID, v value.Value, vld value.Validity) (bool, error)
	// NewThrowaway allocates a fresh transaction-scoped scratch store.
	NewThrowaway() TempStore
}

// TempStore is the transaction-scoped, ordered key-value scratch space
// backing Derived relations and materialized joins. A prefix matches the
// leading columns of stored tuples, and every scan yields the full stored
// tuple, prefix columns included.
type TempStore interface {
	ID() TempStoreID
	Put(t value.Tuple, epoch uint32) error
	ScanPrefix(prefix value.Tuple) TupleIterator
	ScanPrefixForEpoch(prefix value.Tuple, epoch uint32) TupleIterator
	ScanAllForEpoch(epoch uint32) TupleIterator
}

// Expr is the predicate-evaluation and binding-resolution contract Filter
// consumes. A concrete implementation lives in package expr.
type Expr interface {
	// Bindings returns the free variables referenced by this expression.
	Bindings() []value.Binding
	// FillBindingIndices resolves binding names to positional indices,
	// once, before iteration begins.
	FillBindingIndices(pos map[value.Binding]int)
	// EvalPred evaluates the predicate against a positional tuple.
	EvalPred(t value.Tuple) (bool, error)
}
