// Package storage is a reference implementation of the relation package's
// SessionTx/TempStore contracts, backed by github.com/dgraph-io/badger/v4
// the way the teacher's datalog/storage/badger_store.go backs its own Store
// interface. It exists to exercise relation against a real transactional
// store in tests and the demo command; the query compiler, planner and
// rule-level fixed-point orchestration that would normally populate it are
// out of scope.
package storage

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/wbrown/relcore/relation"
	"github.com/wbrown/relcore/value"
)

// DB wraps a badger.DB, offering BeginTx the way the teacher's BadgerStore
// does.
type DB struct {
	db            *badger.DB
	nextThrowaway int64
}

// Open opens (or creates) a badger database at path. Pass "" for an
// in-memory-only instance, matching badger's own convention.
func Open(path string) (*DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open badger: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// BeginTx starts a read-write transaction and wraps it as a relation.SessionTx.
func (d *DB) BeginTx() *BadgerTx {
	return &BadgerTx{db: d, txn: d.db.NewTransaction(true)}
}

// BadgerTx implements relation.SessionTx over a single badger transaction.
type BadgerTx struct {
	db  *DB
	txn *badger.Txn
}

var _ relation.SessionTx = (*BadgerTx)(nil)

// Commit persists every PutTriple call made through this transaction.
func (t *BadgerTx) Commit() error { return t.txn.Commit() }

// Discard abandons the transaction without persisting writes.
func (t *BadgerTx) Discard() { t.txn.Discard() }

// PutTriple writes one fact into the AEV and EAV indices, plus the AVE
// index when the attribute is indexed and the VAE index when it is
// ref-typed. This is the mutation
// surface a compiler/loader would use to populate a SessionTx; it is not
// part of relation.SessionTx itself, which is read-only from the engine's
// point of view.
func (t *BadgerTx) PutTriple(e value.EntityID, attr value.Attribute, v value.Value, vld value.Validity) error {
	if err := t.txn.Set(aevKey(attr.ID, vld, e, v), nil); err != nil {
		return fmt.Errorf("storage: aev put: %w", err)
	}
	if err := t.txn.Set(eavKey(e, attr.ID, vld, v), nil); err != nil {
		return fmt.Errorf("storage: eav put: %w", err)
	}
	if attr.ShouldIndex() {
		if err := t.txn.Set(aveKey(attr.ID, v, vld, e), nil); err != nil {
			return fmt.Errorf("storage: ave put: %w", err)
		}
	}
	if attr.IsRefType() {
		vEid, err := value.AsEntityID(v)
		if err != nil {
			return err
		}
		if err := t.txn.Set(vaeKey(vEid, attr.ID, vld, e), nil); err != nil {
			return fmt.Errorf("storage: vae put: %w", err)
		}
	}
	return nil
}

func (t *BadgerTx) TripleAScan(attr value.AttrID, vld value.Validity) relation.AEVIterator {
	prefix := aevPrefix(attr, vld)
	it := newKeyIterator(t.txn, prefix)
	return &aevScanIterator{it: it, prefixLen: len(prefix)}
}

func (t *BadgerTx) TripleEAScan(e value.EntityID, attr value.AttrID, vld value.Validity) relation.EAVIterator {
	prefix := eavPrefix(e, attr, vld)
	it := newKeyIterator(t.txn, prefix)
	return &eavScanIterator{it: it, e: e, attr: attr}
}

func (t *BadgerTx) TripleAVScan(attr value.AttrID, v value.Value, vld value.Validity) relation.AVEIterator {
	prefix := avePrefix(attr, v, vld)
	it := newKeyIterator(t.txn, prefix)
	return &aveScanIterator{it: it, attr: attr, v: v}
}

func (t *BadgerTx) TripleVRefAScan(vEid value.EntityID, attr value.AttrID, vld value.Validity) relation.VAEIterator {
	prefix := vaePrefix(vEid, attr, vld)
	it := newKeyIterator(t.txn, prefix)
	return &vaeScanIterator{it: it, vEid: vEid, attr: attr}
}

func (t *BadgerTx) EAVExists(e value.EntityID, attr value.AttrID, v value.Value, vld value.Validity) (bool, error) {
	_, err := t.txn.Get(eavKey(e, attr, vld, v))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: eav exists: %w", err)
	}
	return true, nil
}

func (t *BadgerTx) NewThrowaway() relation.TempStore {
	id := atomic.AddInt64(&t.db.nextThrowaway, 1)
	return &BadgerTempStore{txn: t.txn, id: id}
}

// keyIterator walks every key under prefix within one badger transaction.
// It is the shared cursor underneath the four typed scan adapters below,
// mirroring the teacher's BadgerIterator (Seek-then-Next, bounded by a
// prefix rather than an explicit end key since every component here is
// self-delimiting).
type keyIterator struct {
	it      *badger.Iterator
	prefix  []byte
	started bool
}

func newKeyIterator(txn *badger.Txn, prefix []byte) *keyIterator {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	return &keyIterator{it: it, prefix: prefix}
}

func (k *keyIterator) next() ([]byte, bool) {
	if !k.started {
		k.it.Seek(k.prefix)
		k.started = true
	} else {
		k.it.Next()
	}
	if !k.it.ValidForPrefix(k.prefix) {
		return nil, false
	}
	return k.it.Item().KeyCopy(nil), true
}

func (k *keyIterator) close() error {
	k.it.Close()
	return nil
}

type aevScanIterator struct {
	it        *keyIterator
	prefixLen int
	row       relation.AEVRow
	err       error
}

func (a *aevScanIterator) Next() bool {
	key, ok := a.it.next()
	if !ok {
		return false
	}
	rest := key[a.prefixLen:]
	e, n, err := decodeValue(rest)
	if err != nil {
		a.err = err
		return false
	}
	v, _, err := decodeValue(rest[n:])
	if err != nil {
		a.err = err
		return false
	}
	eid, ok := e.(value.EntityID)
	if !ok {
		a.err = fmt.Errorf("storage: aev scan decoded non-entity %T for E", e)
		return false
	}
	a.row = relation.AEVRow{E: eid, V: v}
	return true
}
func (a *aevScanIterator) Row() relation.AEVRow { return a.row }
func (a *aevScanIterator) Err() error           { return a.err }
func (a *aevScanIterator) Close() error         { return a.it.close() }

type eavScanIterator struct {
	it   *keyIterator
	e    value.EntityID
	attr value.AttrID
	row  relation.EAVRow
	err  error
}

func (a *eavScanIterator) Next() bool {
	key, ok := a.it.next()
	if !ok {
		return false
	}
	rest := key[len(a.it.prefix):]
	v, _, err := decodeValue(rest)
	if err != nil {
		a.err = err
		return false
	}
	a.row = relation.EAVRow{E: a.e, Attr: a.attr, V: v}
	return true
}
func (a *eavScanIterator) Row() relation.EAVRow { return a.row }
func (a *eavScanIterator) Err() error           { return a.err }
func (a *eavScanIterator) Close() error         { return a.it.close() }

type aveScanIterator struct {
	it   *keyIterator
	attr value.AttrID
	v    value.Value
	row  relation.AVERow
	err  error
}

func (a *aveScanIterator) Next() bool {
	key, ok := a.it.next()
	if !ok {
		return false
	}
	rest := key[len(a.it.prefix):]
	e, _, err := decodeValue(rest)
	if err != nil {
		a.err = err
		return false
	}
	eid, ok := e.(value.EntityID)
	if !ok {
		a.err = fmt.Errorf("storage: ave scan decoded non-entity %T for E", e)
		return false
	}
	a.row = relation.AVERow{Attr: a.attr, V: a.v, E: eid}
	return true
}
func (a *aveScanIterator) Row() relation.AVERow { return a.row }
func (a *aveScanIterator) Err() error           { return a.err }
func (a *aveScanIterator) Close() error         { return a.it.close() }

type vaeScanIterator struct {
	it   *keyIterator
	vEid value.EntityID
	attr value.AttrID
	row  relation.VAERow
	err  error
}

func (a *vaeScanIterator) Next() bool {
	key, ok := a.it.next()
	if !ok {
		return false
	}
	rest := key[len(a.it.prefix):]
	e, _, err := decodeValue(rest)
	if err != nil {
		a.err = err
		return false
	}
	eid, ok := e.(value.EntityID)
	if !ok {
		a.err = fmt.Errorf("storage: vae scan decoded non-entity %T for E", e)
		return false
	}
	a.row = relation.VAERow{VEid: a.vEid, Attr: a.attr, E: eid}
	return true
}
func (a *vaeScanIterator) Row() relation.VAERow { return a.row }
func (a *vaeScanIterator) Err() error           { return a.err }
func (a *vaeScanIterator) Close() error         { return a.it.close() }
